package render

import (
	"fmt"
	"io"
	"strings"
)

// TerminalFormatter formats articles for terminal output.
type TerminalFormatter struct {
	color bool
}

// NewTerminal creates a terminal formatter. Set color=true for ANSI colors.
func NewTerminal(color bool) *TerminalFormatter {
	return &TerminalFormatter{color: color}
}

// Format writes one block per article to w.
func (f *TerminalFormatter) Format(w io.Writer, input Input) error {
	header := fmt.Sprintf("folio - %d articles from %s (%s)", len(input.Articles), input.Feed, input.Source)
	fmt.Fprintln(w, f.bold(header))
	if input.Error != "" {
		fmt.Fprintln(w, f.yellow("! feed unavailable: "+input.Error))
	}
	fmt.Fprintln(w)

	if len(input.Articles) == 0 {
		fmt.Fprintln(w, "No articles found.")
		return nil
	}

	now := input.now()
	for _, a := range input.Articles {
		fmt.Fprintf(w, "  %s\n", f.green(f.bold(a.Title)))

		meta := Date(a, now)
		if len(a.Categories) > 0 {
			meta += " · " + strings.Join(a.Categories, ", ")
		}
		fmt.Fprintf(w, "      %s\n", f.dim(meta))

		if ex := Excerpt(a); ex != "" {
			fmt.Fprintf(w, "      %s\n", ex)
		}
		fmt.Fprintf(w, "      %s\n", f.dim(a.Link))
		if a.Thumbnail != "" {
			fmt.Fprintf(w, "      %s\n", f.dim("image: "+a.Thumbnail))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// ANSI helpers, no-op when color=false.

func (f *TerminalFormatter) bold(s string) string {
	if !f.color {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func (f *TerminalFormatter) green(s string) string {
	if !f.color {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func (f *TerminalFormatter) yellow(s string) string {
	if !f.color {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func (f *TerminalFormatter) dim(s string) string {
	if !f.color {
		return s
	}
	return "\033[2m" + s + "\033[0m"
}
