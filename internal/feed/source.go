// Package feed turns a remote article feed into normalized articles, with a
// cache in front and a fixed fallback list behind.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; folio/1.0; +https://github.com/ppiankov/folio)"
	maxBodyBytes     = 4 << 20
)

// ErrBadResponse covers every unusable upstream answer: non-2xx status,
// empty body and malformed payload.
var ErrBadResponse = errors.New("bad feed response")

// Item is a raw feed entry before normalization.
type Item struct {
	Title       string
	Link        string
	Published   string     // date as written by the source
	PublishedAt *time.Time // parsed date, nil when unparseable or absent
	Content     string     // full body (content:encoded and friends)
	Description string     // summary
	Categories  []string
	Image       string // image the feed itself advertises, if any
}

// Adapter returns the items of the feed at feedURL.
type Adapter interface {
	// Name identifies the adapter in logs.
	Name() string

	Items(ctx context.Context, feedURL string) ([]Item, error)
}

// userAgentTransport injects a User-Agent header into every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns a client with the given timeout and User-Agent.
// A zero timeout means no timeout.
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: userAgent},
	}
}

// get performs a GET and returns the body, folding status and emptiness
// checks into ErrBadResponse.
func get(ctx context.Context, client *http.Client, target string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrBadResponse, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxBodyBytes {
		return nil, fmt.Errorf("%w: body exceeds %d MiB", ErrBadResponse, maxBodyBytes>>20)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("%w: empty body", ErrBadResponse)
	}
	return data, nil
}

var dateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate tries the date layouts seen in RSS, Atom and feed-to-JSON output.
func parseDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}
