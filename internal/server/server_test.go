package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/ppiankov/folio/internal/feed"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test</title>
    <item>
      <title>Zero Trust 101</title>
      <link>https://medium.com/p/zt</link>
      <category>Security</category>
      <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<img src="//miro.medium.com/max/800/abc.png">]]></description>
    </item>
  </channel>
</rss>`

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fixture struct {
	srv      *Server
	store    *cache.Store
	upstream *atomic.Int32
}

func newFixture(t *testing.T, status int, blogPath string) *fixture {
	t.Helper()

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, testFeed)
	}))
	t.Cleanup(upstream.Close)

	store := cache.New(cache.NewMemory())
	client, err := feed.NewClient(upstream.URL, feed.NewDirect(feed.NewHTTPClient(5*time.Second, "")), store)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	loader := feed.NewLoader(client, nil)
	t.Cleanup(loader.Close)

	srv := New(loader, store, Options{
		AllowedOrigins: []string{"http://localhost:5173"},
		BlogPath:       blogPath,
	})
	return &fixture{srv: srv, store: store, upstream: &calls}
}

func (f *fixture) do(t *testing.T, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")
	rec := f.do(t, http.MethodGet, "/api/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestArticles_NetworkThenCache(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")

	var first feed.State
	decode(t, f.do(t, http.MethodGet, "/api/articles", nil), &first)
	if first.Origin != feed.OriginNetwork || len(first.Articles) != 1 {
		t.Fatalf("first = %+v", first)
	}
	if first.Articles[0].Thumbnail != "https://miro.medium.com/max/800/abc.png" {
		t.Errorf("thumbnail = %q", first.Articles[0].Thumbnail)
	}
	if first.Loading || first.Error != "" {
		t.Errorf("first = %+v", first)
	}

	var second feed.State
	decode(t, f.do(t, http.MethodGet, "/api/articles", nil), &second)
	if second.Origin != feed.OriginCache {
		t.Errorf("origin = %q, want cache", second.Origin)
	}
	if n := f.upstream.Load(); n != 1 {
		t.Errorf("upstream calls = %d, want 1", n)
	}
}

func TestArticles_UpstreamFailure(t *testing.T) {
	f := newFixture(t, http.StatusServiceUnavailable, "")

	rec := f.do(t, http.MethodGet, "/api/articles", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var st feed.State
	decode(t, rec, &st)
	if st.Origin != feed.OriginFallback || st.Error == "" {
		t.Errorf("state = %+v", st)
	}
	if len(st.Articles) != 3 {
		t.Errorf("got %d articles, want the fallback list", len(st.Articles))
	}
}

func TestRefresh_BypassesCache(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")
	f.do(t, http.MethodGet, "/api/articles", nil)

	rec := f.do(t, http.MethodPost, "/api/articles/refresh", nil)
	var st feed.State
	decode(t, rec, &st)
	if st.Origin != feed.OriginNetwork {
		t.Errorf("origin = %q, want network", st.Origin)
	}
	if n := f.upstream.Load(); n != 2 {
		t.Errorf("upstream calls = %d, want 2", n)
	}
}

func TestCacheEndpoints(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")

	var empty cacheStatus
	decode(t, f.do(t, http.MethodGet, "/api/cache", nil), &empty)
	if empty.Present || empty.Backend != "memory" {
		t.Errorf("status = %+v", empty)
	}

	f.do(t, http.MethodGet, "/api/articles", nil)

	var full cacheStatus
	decode(t, f.do(t, http.MethodGet, "/api/cache", nil), &full)
	if !full.Present || full.Count != 1 || full.Expired || full.Version != cache.EntryVersion {
		t.Errorf("status = %+v", full)
	}
	if full.SavedAt == nil {
		t.Error("savedAt missing")
	}

	if rec := f.do(t, http.MethodDelete, "/api/cache", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if _, ok := f.store.Get(context.Background()); ok {
		t.Error("cache should be empty after delete")
	}
}

func TestBlog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "article.json")
	doc := `{"articles":[{"source":"medium","content":"c","image":"/i.png","title":"Hello"}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newFixture(t, http.StatusOK, path)

	var body struct {
		Articles []map[string]string `json:"articles"`
		Error    string              `json:"error"`
	}
	decode(t, f.do(t, http.MethodGet, "/api/blog", nil), &body)
	if len(body.Articles) != 1 || body.Articles[0]["title"] != "Hello" {
		t.Errorf("body = %+v", body)
	}
	if body.Error != "" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestBlog_MissingDocument(t *testing.T) {
	f := newFixture(t, http.StatusOK, filepath.Join(t.TempDir(), "missing.json"))

	rec := f.do(t, http.MethodGet, "/api/blog", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Articles []map[string]string `json:"articles"`
		Error    string              `json:"error"`
	}
	decode(t, rec, &body)
	if body.Articles == nil || len(body.Articles) != 0 {
		t.Errorf("articles = %#v, want []", body.Articles)
	}
	if body.Error == "" {
		t.Error("expected error message")
	}
}

func TestRequestIDReused(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")
	rec := f.do(t, http.MethodGet, "/api/health", http.Header{requestIDHeader: {"req-123"}})
	if got := rec.Header().Get(requestIDHeader); got != "req-123" {
		t.Errorf("request id = %q, want req-123", got)
	}
}

func TestCORS(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")

	rec := f.do(t, http.MethodGet, "/api/health", http.Header{"Origin": {"http://localhost:5173"}})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow origin = %q", got)
	}

	pre := f.do(t, http.MethodOptions, "/api/articles", http.Header{
		"Origin":                        {"http://localhost:5173"},
		"Access-Control-Request-Method": {"GET"},
	})
	if pre.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", pre.Code)
	}
}

func TestCORSConfig_Wildcard(t *testing.T) {
	cfg := corsConfig([]string{"*"})
	if !cfg.AllowAllOrigins || cfg.AllowCredentials || len(cfg.AllowOrigins) != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	f := newFixture(t, http.StatusOK, "")
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
