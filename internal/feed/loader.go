package feed

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ppiankov/folio/internal/article"
	"golang.org/x/sync/singleflight"
)

// Fetcher is the part of Client the Loader needs.
type Fetcher interface {
	FetchArticles(ctx context.Context) Result
}

// State is what a view renders: the current list, whether a fetch is
// running, and the last error message ("" when none).
type State struct {
	Articles  []article.Article `json:"articles"`
	Loading   bool              `json:"loading"`
	Error     string            `json:"error"`
	Origin    Origin            `json:"source,omitempty"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// Loader holds the article state for long-lived views. Concurrent refreshes
// share a single fetch, and nothing is applied once the loader is closed.
type Loader struct {
	fetcher Fetcher
	group   singleflight.Group
	log     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	closed  bool
	subs    map[int]chan State
	nextSub int
}

// NewLoader creates a loader around f. Call Close when the view goes away.
func NewLoader(f Fetcher, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		fetcher: f,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		state:   State{Articles: []article.Article{}},
		subs:    make(map[int]chan State),
	}
}

// State returns a snapshot of the current state.
func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return snapshot(l.state)
}

// Refresh runs a fetch, or joins the one already running, and returns the
// resulting state. If ctx ends first, Refresh returns the current state and
// the fetch keeps going for the other waiters.
func (l *Loader) Refresh(ctx context.Context) State {
	if ctx == nil {
		ctx = context.Background()
	}

	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return l.State()
	}

	ch := l.group.DoChan("articles", func() (any, error) {
		l.update(func(s *State) { s.Loading = true })
		res := l.fetcher.FetchArticles(l.ctx)
		l.apply(res)
		return l.State(), nil
	})

	select {
	case r := <-ch:
		if r.Shared {
			l.log.Debug("joined in-flight article fetch")
		}
		return r.Val.(State)
	case <-ctx.Done():
		return l.State()
	}
}

// Subscribe returns a channel that receives the latest state after every
// change, and a function to stop receiving. Slow readers only see the most
// recent state.
func (l *Loader) Subscribe() (<-chan State, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan State, 1)
	if l.closed {
		close(ch)
		return ch, func() {}
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if c, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(c)
			}
		})
	}
}

// Close cancels any running fetch and detaches all subscribers.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.cancel()
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}

func (l *Loader) apply(res Result) {
	l.update(func(s *State) {
		s.Articles = res.Articles
		s.Loading = false
		s.Origin = res.Origin
		s.Error = ""
		if res.Err != nil {
			s.Error = res.Err.Error()
		}
		s.UpdatedAt = time.Now()
	})
}

func (l *Loader) update(fn func(*State)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		l.log.Debug("loader closed, dropping state update")
		return
	}
	fn(&l.state)

	snap := snapshot(l.state)
	for _, ch := range l.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func snapshot(s State) State {
	s.Articles = article.Clone(s.Articles)
	return s
}
