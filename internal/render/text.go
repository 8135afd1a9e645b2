package render

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/ppiankov/folio/internal/article"
	"golang.org/x/net/html"
)

const excerptLen = 160

var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"figure": true, "figcaption": true, "blockquote": true, "pre": true, "img": true,
}

// PlainText returns the visible text of an HTML fragment with whitespace
// collapsed. Script and style bodies are dropped.
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.TextToken:
			if !skip {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				skip = true
			case blockTags[tag]:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "script" || tag == "style":
				skip = false
			case blockTags[tag]:
				b.WriteByte(' ')
			}
		}
	}
}

// Truncate shortens s to at most n runes, cutting at a word boundary when
// one is close, and marks the cut with "...".
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}

// Excerpt is the plain-text, truncated description of a.
func Excerpt(a article.Article) string {
	return Truncate(PlainText(a.Description), excerptLen)
}

// Date renders the publication date of a as "Jan 15, 2024 (2 years ago)".
// Dates that do not parse are shown as written.
func Date(a article.Article, now time.Time) string {
	t, ok := a.Published()
	if !ok {
		return a.PublishedAt
	}
	return t.Format("Jan 2, 2006") + " (" + humanize.RelTime(t, now, "ago", "from now") + ")"
}
