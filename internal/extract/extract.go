// Package extract finds a representative thumbnail URL inside raw feed
// content. Matchers run in a fixed order and the first usable hit wins.
package extract

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

var schemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)

// Extractor runs an ordered matcher cascade. The zero value is not usable;
// call New or use ExtractThumbnail.
type Extractor struct {
	matchers []Matcher
}

// New returns an extractor over the given matchers. With no arguments it uses
// DefaultMatchers.
func New(matchers ...Matcher) *Extractor {
	if len(matchers) == 0 {
		matchers = DefaultMatchers()
	}
	return &Extractor{matchers: matchers}
}

var defaultExtractor = New()

// ExtractThumbnail returns the first image URL found in raw, normalized to an
// absolute URL, or "" when there is none.
func ExtractThumbnail(raw string) string {
	u, _ := defaultExtractor.Match(raw, "")
	return u
}

// ExtractFrom is ExtractThumbnail with root-relative sources resolved
// against base (typically the article link).
func (e *Extractor) ExtractFrom(raw, base string) string {
	u, _ := e.Match(raw, base)
	return u
}

// Match returns the normalized URL and the name of the matcher that produced
// it. Both are empty when nothing matched.
func (e *Extractor) Match(raw, base string) (string, string) {
	if strings.TrimSpace(raw) == "" {
		return "", ""
	}
	for _, m := range e.matchers {
		candidate := m.Find(raw)
		if candidate == "" {
			continue
		}
		if u := resolve(candidate, base); u != "" {
			return u, m.Name
		}
	}
	return "", ""
}

// Normalize makes a captured URL absolute: protocol-relative URLs get an
// https: prefix, scheme-less ones get https://, anything else is unchanged.
func Normalize(u string) string {
	u = strings.TrimSpace(html.UnescapeString(u))
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case schemeRe.MatchString(u):
		return u
	default:
		return "https://" + u
	}
}

// resolve turns a candidate into an absolute URL. Root-relative paths need a
// base with a host; without one the candidate is unusable.
func resolve(candidate, base string) string {
	c := strings.TrimSpace(html.UnescapeString(candidate))
	if strings.HasPrefix(c, "/") && !strings.HasPrefix(c, "//") {
		b, err := url.Parse(strings.TrimSpace(base))
		if err != nil || b.Host == "" {
			return ""
		}
		ref, err := url.Parse(c)
		if err != nil {
			return ""
		}
		if b.Scheme == "" {
			b.Scheme = "https"
		}
		return b.ResolveReference(ref).String()
	}
	return Normalize(c)
}
