// Package article defines the normalized article record shared by the feed
// client, the cache and every presentation surface.
package article

import (
	"strings"
	"time"
)

const (
	DefaultTitle = "Untitled"
	DefaultLink  = "#"
)

// Article is a single normalized feed entry.
type Article struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Thumbnail   string   `json:"thumbnail"`
	PublishedAt string   `json:"pubDate"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

// Normalize fills missing fields with their defaults. Each field is handled
// on its own so one bad value never discards the rest of the record.
func Normalize(a Article, now time.Time) Article {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		a.Title = DefaultTitle
	}
	a.Link = strings.TrimSpace(a.Link)
	if a.Link == "" {
		a.Link = DefaultLink
	}
	a.PublishedAt = strings.TrimSpace(a.PublishedAt)
	if a.PublishedAt == "" {
		a.PublishedAt = FormatTime(now)
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	return a
}

// FormatTime renders t the way PublishedAt is stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Published parses PublishedAt. It reports false for raw source dates that
// are not RFC 3339.
func (a Article) Published() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, a.PublishedAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var fallback = []Article{
	{
		Title:       "Zero Trust Architecture: A Practical Introduction",
		Link:        "https://medium.com/@moetezafif",
		Thumbnail:   "",
		PublishedAt: "2024-01-15T00:00:00Z",
		Description: "Why perimeter security is no longer enough, and how to start moving services toward identity-aware access.",
		Categories:  []string{"Security", "Zero Trust"},
	},
	{
		Title:       "Hardening Kubernetes Clusters Step by Step",
		Link:        "https://medium.com/@moetezafif",
		Thumbnail:   "",
		PublishedAt: "2023-11-02T00:00:00Z",
		Description: "Network policies, pod security admission and RBAC reviews for small production clusters.",
		Categories:  []string{"Kubernetes", "DevSecOps"},
	},
	{
		Title:       "Building a Home Lab for Cloud Security Practice",
		Link:        "https://medium.com/@moetezafif",
		Thumbnail:   "",
		PublishedAt: "2023-08-20T00:00:00Z",
		Description: "A low-cost setup for experimenting with SIEM pipelines, IaC scanning and cloud misconfiguration drills.",
		Categories:  []string{"Cloud", "Security"},
	},
}

// Fallback returns a fresh copy of the fixed list shown when the live feed
// cannot be used. Callers may modify the result.
func Fallback() []Article {
	return Clone(fallback)
}

// Clone deep-copies a list of articles.
func Clone(list []Article) []Article {
	if list == nil {
		return nil
	}
	out := make([]Article, len(list))
	for i, a := range list {
		out[i] = a
		if a.Categories != nil {
			out[i].Categories = append([]string{}, a.Categories...)
		}
	}
	return out
}
