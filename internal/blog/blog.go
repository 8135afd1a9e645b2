// Package blog reads the static article document served next to the feed.
package blog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Entry is one article in the static document.
type Entry struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Image   string `json:"image"`
	Title   string `json:"title"`
}

type document struct {
	Articles []Entry `json:"articles"`
}

// Parse decodes a document of the form {"articles": [...]}.
func Parse(r io.Reader) ([]Entry, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode blog document: %w", err)
	}
	if doc.Articles == nil {
		return []Entry{}, nil
	}
	return doc.Articles, nil
}

// LoadFile parses the document at path.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open blog document: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f)
}

// Entries is LoadFile for views: on failure it still returns an empty,
// non-nil list alongside the error.
func Entries(path string) ([]Entry, error) {
	entries, err := LoadFile(path)
	if err != nil {
		return []Entry{}, err
	}
	return entries, nil
}
