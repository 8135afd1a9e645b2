package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/cache"
)

const zeroTrustFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Stories by Moetez Afif on Medium</title>
    <item>
      <title>Zero Trust 101</title>
      <link>https://medium.com/@moetezafif/zero-trust-101</link>
      <guid>https://medium.com/p/abc</guid>
      <category>Security</category>
      <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>Intro</p><img src="//miro.medium.com/max/800/abc.png">]]></description>
    </item>
  </channel>
</rss>`

const richFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Test</title>
    <item>
      <title>Full Content</title>
      <link>https://medium.com/p/full</link>
      <category>Cloud</category>
      <category>AWS</category>
      <category>IAM</category>
      <pubDate>Tue, 16 Jan 2024 10:00:00 GMT</pubDate>
      <description><![CDATA[<p>summary</p><img src="https://example.com/summary.png">]]></description>
      <content:encoded><![CDATA[<p>lead</p><figure><img src="https://cdn-images-1.medium.com/max/1024/1*lead.png"></figure>]]></content:encoded>
    </item>
    <item>
      <description>no title, no link, no date</description>
    </item>
  </channel>
</rss>`

func newTestStore() (*cache.Store, *cache.Memory) {
	backend := cache.NewMemory()
	return cache.New(backend), backend
}

func serveBody(t *testing.T, status int, body string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newDirectClient(t *testing.T, feedURL string, store *cache.Store, opts ...Option) *Client {
	t.Helper()
	c, err := NewClient(feedURL, NewDirect(NewHTTPClient(5*time.Second, "")), store, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetchArticles_ZeroTrustScenario(t *testing.T) {
	ts := serveBody(t, http.StatusOK, zeroTrustFeed, nil)
	store, _ := newTestStore()
	c := newDirectClient(t, ts.URL, store)

	res := c.FetchArticles(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Origin != OriginNetwork {
		t.Errorf("origin = %q, want network", res.Origin)
	}
	if len(res.Articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(res.Articles))
	}

	a := res.Articles[0]
	if a.Title != "Zero Trust 101" {
		t.Errorf("title = %q", a.Title)
	}
	if a.Thumbnail != "https://miro.medium.com/max/800/abc.png" {
		t.Errorf("thumbnail = %q", a.Thumbnail)
	}
	if !reflect.DeepEqual(a.Categories, []string{"Security"}) {
		t.Errorf("categories = %v", a.Categories)
	}
	if a.PublishedAt != "2024-01-15T10:00:00Z" {
		t.Errorf("published = %q", a.PublishedAt)
	}
	if a.Link != "https://medium.com/@moetezafif/zero-trust-101" {
		t.Errorf("link = %q", a.Link)
	}

	cached, ok := store.Get(context.Background())
	if !ok {
		t.Fatal("result not cached")
	}
	if !reflect.DeepEqual(cached, res.Articles) {
		t.Errorf("cached list differs from result")
	}
}

func TestFetchArticles_PrefersContentAndDefaults(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	ts := serveBody(t, http.StatusOK, richFeed, nil)
	store, _ := newTestStore()
	c := newDirectClient(t, ts.URL, store, WithClock(func() time.Time { return now }))

	res := c.FetchArticles(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Articles) != 2 {
		t.Fatalf("got %d articles, want 2 (malformed item kept)", len(res.Articles))
	}

	full := res.Articles[0]
	if full.Thumbnail != "https://cdn-images-1.medium.com/max/1024/1*lead.png" {
		t.Errorf("thumbnail = %q, want content image", full.Thumbnail)
	}
	if !strings.Contains(full.Description, "<figure>") {
		t.Errorf("description should be the full content, got %q", full.Description)
	}
	if !reflect.DeepEqual(full.Categories, []string{"Cloud", "AWS", "IAM"}) {
		t.Errorf("categories = %v, want source order", full.Categories)
	}

	bare := res.Articles[1]
	if bare.Title != article.DefaultTitle {
		t.Errorf("title = %q, want default", bare.Title)
	}
	if bare.Link != article.DefaultLink {
		t.Errorf("link = %q, want default", bare.Link)
	}
	if bare.PublishedAt != "2026-04-01T12:00:00Z" {
		t.Errorf("published = %q, want now", bare.PublishedAt)
	}
	if bare.Categories == nil || len(bare.Categories) != 0 {
		t.Errorf("categories = %#v, want empty", bare.Categories)
	}
	if bare.Thumbnail != "" {
		t.Errorf("thumbnail = %q, want empty", bare.Thumbnail)
	}
}

func TestFetchArticles_CacheHitSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	ts := serveBody(t, http.StatusOK, zeroTrustFeed, &calls)
	store, _ := newTestStore()
	c := newDirectClient(t, ts.URL, store)

	first := c.FetchArticles(context.Background())
	second := c.FetchArticles(context.Background())

	if calls.Load() != 1 {
		t.Errorf("network calls = %d, want 1", calls.Load())
	}
	if second.Origin != OriginCache {
		t.Errorf("origin = %q, want cache", second.Origin)
	}
	if !reflect.DeepEqual(first.Articles, second.Articles) {
		t.Error("cached articles differ from fetched ones")
	}
}

func TestFetchArticles_FailuresFallBack(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"not found", http.StatusNotFound, ""},
		{"empty body", http.StatusOK, "   \n"},
		{"html page", http.StatusOK, "<html><body><p>maintenance</p></body></html>"},
		{"not a feed", http.StatusOK, "hello world"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := serveBody(t, tt.status, tt.body, nil)
			store, backend := newTestStore()
			c := newDirectClient(t, ts.URL, store)

			res := c.FetchArticles(context.Background())
			if res.Err == nil || res.Err.Error() == "" {
				t.Fatal("expected a descriptive error")
			}
			if !errors.Is(res.Err, ErrBadResponse) {
				t.Errorf("error %v should wrap ErrBadResponse", res.Err)
			}
			if res.Origin != OriginFallback {
				t.Errorf("origin = %q, want fallback", res.Origin)
			}
			if !reflect.DeepEqual(res.Articles, article.Fallback()) {
				t.Error("expected the fallback list")
			}

			if _, ok := store.Get(context.Background()); ok {
				t.Error("fallback must not be cached")
			}
			if _, err := backend.Read(context.Background(), cache.Key); !errors.Is(err, cache.ErrNotFound) {
				t.Errorf("backend should be empty, got %v", err)
			}
		})
	}
}

func TestFetchArticles_OversizedBody(t *testing.T) {
	body := zeroTrustFeed + "<!--" + strings.Repeat("x", maxBodyBytes) + "-->"
	ts := serveBody(t, http.StatusOK, body, nil)
	store, backend := newTestStore()
	c := newDirectClient(t, ts.URL, store)

	res := c.FetchArticles(context.Background())
	if !errors.Is(res.Err, ErrBadResponse) {
		t.Fatalf("error %v should wrap ErrBadResponse", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "body exceeds 4 MiB") {
		t.Errorf("error = %q", res.Err)
	}
	if res.Origin != OriginFallback {
		t.Errorf("origin = %q, want fallback", res.Origin)
	}
	if _, err := backend.Read(context.Background(), cache.Key); !errors.Is(err, cache.ErrNotFound) {
		t.Errorf("backend should be empty, got %v", err)
	}
}

func TestFetchArticles_NetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	store, _ := newTestStore()
	c := newDirectClient(t, url, store)

	res := c.FetchArticles(context.Background())
	if res.Err == nil {
		t.Fatal("expected error")
	}
	if len(res.Articles) == 0 {
		t.Fatal("expected fallback articles")
	}
	if _, ok := store.Get(context.Background()); ok {
		t.Error("fallback must not be cached")
	}
}

func TestFetchArticles_RetriesNetworkAfterFailure(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, zeroTrustFeed)
	}))
	defer ts.Close()

	store, _ := newTestStore()
	c := newDirectClient(t, ts.URL, store)

	if res := c.FetchArticles(context.Background()); res.Origin != OriginFallback {
		t.Fatalf("first fetch origin = %q, want fallback", res.Origin)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want exactly one attempt", calls.Load())
	}
	if res := c.FetchArticles(context.Background()); res.Origin != OriginNetwork {
		t.Fatalf("second fetch origin = %q, want network", res.Origin)
	}
}

func TestRelayAdapter(t *testing.T) {
	const feedURL = "https://medium.com/feed/@moetezafif"

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("url"); got != feedURL {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0 (compatible; folio") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = fmt.Fprint(w, zeroTrustFeed)
	}))
	defer ts.Close()

	relay, err := NewRelay(NewHTTPClient(5*time.Second, ""), ts.URL+"/raw")
	if err != nil {
		t.Fatalf("NewRelay: %v", err)
	}
	if relay.Name() != "relay" {
		t.Errorf("name = %q", relay.Name())
	}

	items, err := relay.Items(context.Background(), feedURL)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Zero Trust 101" {
		t.Fatalf("items = %+v", items)
	}
}

func TestNewRelay_RequiresURL(t *testing.T) {
	if _, err := NewRelay(http.DefaultClient, ""); err == nil {
		t.Fatal("expected error for empty relay url")
	}
}

func TestNewClient_Validation(t *testing.T) {
	store, _ := newTestStore()
	adapter := NewDirect(http.DefaultClient)

	if _, err := NewClient("", adapter, store); err == nil {
		t.Error("expected error for empty feed url")
	}
	if _, err := NewClient("https://example.com/feed", nil, store); err == nil {
		t.Error("expected error for nil adapter")
	}
	if _, err := NewClient("https://example.com/feed", adapter, nil); err == nil {
		t.Error("expected error for nil store")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-01-15 10:20:30", "2024-01-15T10:20:30Z"},
		{"2024-01-15T10:20:30Z", "2024-01-15T10:20:30Z"},
		{"Mon, 15 Jan 2024 10:20:30 +0000", "2024-01-15T10:20:30Z"},
		{"", ""},
		{"someday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseDate(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Errorf("parseDate(%q) = %v, want nil", tt.in, got)
				}
				return
			}
			if got == nil {
				t.Fatalf("parseDate(%q) = nil", tt.in)
			}
			if s := article.FormatTime(*got); s != tt.want {
				t.Errorf("parseDate(%q) = %s, want %s", tt.in, s, tt.want)
			}
		})
	}
}
