package render

import (
	"encoding/json"
	"io"
)

type jsonOutput struct {
	Meta     jsonMeta      `json:"meta"`
	Articles []jsonArticle `json:"articles"`
}

type jsonMeta struct {
	Feed   string `json:"feed"`
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

type jsonArticle struct {
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Thumbnail   string   `json:"thumbnail"`
	PubDate     string   `json:"pubDate"`
	Description string   `json:"description"`
	Excerpt     string   `json:"excerpt"`
	Categories  []string `json:"categories"`
}

// JSONFormatter formats articles as JSON.
type JSONFormatter struct{}

// NewJSON creates a JSON formatter.
func NewJSON() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes the articles as JSON to w.
func (f *JSONFormatter) Format(w io.Writer, input Input) error {
	out := jsonOutput{
		Meta: jsonMeta{
			Feed:   input.Feed,
			Source: input.Source,
			Count:  len(input.Articles),
			Error:  input.Error,
		},
		Articles: make([]jsonArticle, 0, len(input.Articles)),
	}
	for _, a := range input.Articles {
		cats := a.Categories
		if cats == nil {
			cats = []string{}
		}
		out.Articles = append(out.Articles, jsonArticle{
			Title:       a.Title,
			Link:        a.Link,
			Thumbnail:   a.Thumbnail,
			PubDate:     a.PublishedAt,
			Description: a.Description,
			Excerpt:     Excerpt(a),
			Categories:  cats,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
