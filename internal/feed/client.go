package feed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/folio/internal/article"
	"github.com/ppiankov/folio/internal/cache"
	"github.com/ppiankov/folio/internal/extract"
)

// Origin says where the articles in a Result came from.
type Origin string

const (
	OriginCache    Origin = "cache"
	OriginNetwork  Origin = "network"
	OriginFallback Origin = "fallback"
)

// Result is the outcome of one fetch. Articles is never empty on failure:
// it then holds the fallback list and Err explains why.
type Result struct {
	Articles []article.Article
	Err      error
	Origin   Origin
}

// Client fetches one feed through an Adapter, normalizes its items and keeps
// the outcome in a cache.Store.
type Client struct {
	feedURL   string
	adapter   Adapter
	store     *cache.Store
	extractor *extract.Extractor
	now       func() time.Time
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithExtractor replaces the default thumbnail extractor.
func WithExtractor(e *extract.Extractor) Option {
	return func(c *Client) {
		if e != nil {
			c.extractor = e
		}
	}
}

// WithClock overrides the time source used for missing dates.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a client for feedURL.
func NewClient(feedURL string, adapter Adapter, store *cache.Store, opts ...Option) (*Client, error) {
	if strings.TrimSpace(feedURL) == "" {
		return nil, errors.New("feed: url is required")
	}
	if adapter == nil {
		return nil, errors.New("feed: adapter is required")
	}
	if store == nil {
		return nil, errors.New("feed: cache store is required")
	}

	c := &Client{
		feedURL:   feedURL,
		adapter:   adapter,
		store:     store,
		extractor: extract.New(),
		now:       time.Now,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FeedURL returns the feed address.
func (c *Client) FeedURL() string {
	return c.feedURL
}

// Store returns the cache the client reads and writes.
func (c *Client) Store() *cache.Store {
	return c.store
}

// FetchArticles returns cached articles when fresh, otherwise fetches the
// feed once. Any failure yields the fallback list and is not cached.
func (c *Client) FetchArticles(ctx context.Context) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	if cached, ok := c.store.Get(ctx); ok {
		c.log.Debug("articles served from cache", "count", len(cached))
		return Result{Articles: cached, Origin: OriginCache}
	}

	start := time.Now()
	items, err := c.adapter.Items(ctx, c.feedURL)
	if err != nil {
		c.log.Error("feed fetch failed, using fallback",
			"adapter", c.adapter.Name(), "feed", c.feedURL, "error", err)
		return Result{Articles: article.Fallback(), Err: err, Origin: OriginFallback}
	}

	articles := make([]article.Article, 0, len(items))
	for _, it := range items {
		articles = append(articles, c.toArticle(it))
	}

	c.store.Set(ctx, articles)
	c.log.Info("feed fetched",
		"adapter", c.adapter.Name(), "count", len(articles), "took", time.Since(start).Round(time.Millisecond))

	return Result{Articles: articles, Origin: OriginNetwork}
}

func (c *Client) toArticle(it Item) article.Article {
	body := it.Content
	if strings.TrimSpace(body) == "" {
		body = it.Description
	}

	thumb, stage := c.extractor.Match(body, it.Link)
	if thumb == "" && it.Image != "" {
		thumb, stage = extract.Normalize(it.Image), "feed"
	}
	if thumb == "" {
		c.log.Debug("no thumbnail found", "title", it.Title)
	} else {
		c.log.Debug("thumbnail extracted", "title", it.Title, "stage", stage)
	}

	published := it.Published
	if it.PublishedAt != nil {
		published = article.FormatTime(*it.PublishedAt)
	}

	return article.Normalize(article.Article{
		Title:       it.Title,
		Link:        it.Link,
		Thumbnail:   thumb,
		PublishedAt: published,
		Description: body,
		Categories:  append([]string(nil), it.Categories...),
	}, c.now())
}
