// Package render writes a fetched article list for humans and scripts.
package render

import (
	"io"
	"time"

	"github.com/ppiankov/folio/internal/article"
)

// Input is everything a formatter needs to render one fetch.
type Input struct {
	Feed     string // feed address
	Source   string // cache, network or fallback
	Error    string // fetch error, "" when none
	Articles []article.Article
	Now      time.Time // reference for relative dates; zero means time.Now
}

// Formatter writes a formatted article list to w.
type Formatter interface {
	Format(w io.Writer, input Input) error
}

// New returns the formatter for name: terminal, json or markdown.
func New(name string, color bool) (Formatter, bool) {
	switch name {
	case "", "terminal":
		return NewTerminal(color), true
	case "json":
		return NewJSON(), true
	case "markdown", "md":
		return NewMarkdown(), true
	}
	return nil, false
}

func (in Input) now() time.Time {
	if in.Now.IsZero() {
		return time.Now()
	}
	return in.Now
}
