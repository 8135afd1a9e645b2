package render

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownFormatter formats articles as Markdown.
type MarkdownFormatter struct{}

// NewMarkdown creates a Markdown formatter.
func NewMarkdown() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Format writes the articles as Markdown to w.
func (f *MarkdownFormatter) Format(w io.Writer, input Input) error {
	fmt.Fprintf(w, "# Articles\n\n")
	fmt.Fprintf(w, "%d articles from <%s> (%s)\n\n", len(input.Articles), input.Feed, input.Source)
	if input.Error != "" {
		fmt.Fprintf(w, "> Feed unavailable: %s\n\n", input.Error)
	}

	if len(input.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	now := input.now()
	for _, a := range input.Articles {
		fmt.Fprintf(w, "## [%s](%s)\n\n", a.Title, a.Link)

		meta := "*" + Date(a, now) + "*"
		if len(a.Categories) > 0 {
			tags := make([]string, len(a.Categories))
			for i, c := range a.Categories {
				tags[i] = "`" + c + "`"
			}
			meta += " " + strings.Join(tags, " ")
		}
		fmt.Fprintf(w, "%s\n\n", meta)

		if a.Thumbnail != "" {
			fmt.Fprintf(w, "![%s](%s)\n\n", a.Title, a.Thumbnail)
		}
		if ex := Excerpt(a); ex != "" {
			fmt.Fprintf(w, "%s\n\n", ex)
		}
	}

	return nil
}
