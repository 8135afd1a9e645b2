// Package cache keeps the last successfully fetched article list under a
// single fixed key with a one hour time-to-live.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ppiankov/folio/internal/article"
)

const (
	// Key is the only key the store ever writes.
	Key = "medium_articles_cache"

	// TTL is how long an entry stays fresh.
	TTL = time.Hour

	// EntryVersion is bumped whenever the stored JSON layout changes. Entries
	// with any other version are discarded on read.
	EntryVersion = 1
)

// Entry is the JSON document stored under Key.
type Entry struct {
	Version   int               `json:"version"`
	Timestamp int64             `json:"timestamp"` // epoch milliseconds
	Data      []article.Article `json:"data"`
}

// SavedAt returns the entry timestamp as a time.Time.
func (e Entry) SavedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Store reads and writes the article cache entry. Storage failures never
// reach the caller: a failed read is a miss and a failed write is dropped.
type Store struct {
	backend Backend
	now     func() time.Time
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for swallowed storage errors.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a store on top of backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying storage.
func (s *Store) Backend() Backend {
	return s.backend
}

// Get returns the cached list if it is present and fresh. Expired, corrupted
// and unknown-version entries are removed and reported as a miss.
func (s *Store) Get(ctx context.Context) ([]article.Article, bool) {
	entry, ok := s.read(ctx, true)
	if !ok {
		return nil, false
	}
	if s.Expired(entry) {
		s.log.Debug("cache entry expired", "age", s.now().Sub(entry.SavedAt()).Round(time.Second))
		s.remove(ctx)
		return nil, false
	}
	return entry.Data, true
}

// Set overwrites the entry with list stamped at the current time.
func (s *Store) Set(ctx context.Context, list []article.Article) {
	if ctx == nil {
		ctx = context.Background()
	}
	data, err := json.Marshal(Entry{
		Version:   EntryVersion,
		Timestamp: s.now().UnixMilli(),
		Data:      list,
	})
	if err != nil {
		s.log.Warn("cache encode failed", "error", err)
		return
	}
	if err := s.backend.Write(ctx, Key, string(data)); err != nil {
		s.log.Warn("cache write failed", "backend", s.backend.Name(), "error", err)
		return
	}
	s.log.Debug("cache written", "articles", len(list))
}

// Clear removes the entry.
func (s *Store) Clear(ctx context.Context) {
	s.remove(ctx)
}

// Inspect returns the stored entry without applying expiry. It reports false
// when there is no readable entry and never modifies the backend.
func (s *Store) Inspect(ctx context.Context) (Entry, bool) {
	return s.read(ctx, false)
}

// Expired reports whether entry is older than TTL.
func (s *Store) Expired(entry Entry) bool {
	return s.now().UnixMilli()-entry.Timestamp > TTL.Milliseconds()
}

// read decodes the stored entry. With evict set, unreadable entries are
// deleted.
func (s *Store) read(ctx context.Context, evict bool) (Entry, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := s.backend.Read(ctx, Key)
	if errors.Is(err, ErrNotFound) {
		return Entry{}, false
	}
	if err != nil {
		s.log.Warn("cache read failed", "backend", s.backend.Name(), "error", err)
		return Entry{}, false
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		s.log.Warn("cache entry corrupted", "error", err, "clearing", evict)
		if evict {
			s.remove(ctx)
		}
		return Entry{}, false
	}
	if entry.Version != EntryVersion {
		s.log.Info("cache entry version mismatch", "version", entry.Version, "want", EntryVersion, "clearing", evict)
		if evict {
			s.remove(ctx)
		}
		return Entry{}, false
	}
	return entry, true
}

func (s *Store) remove(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.backend.Delete(ctx, Key); err != nil {
		s.log.Warn("cache delete failed", "backend", s.backend.Name(), "error", err)
	}
}
