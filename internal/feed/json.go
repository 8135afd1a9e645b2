package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const DefaultJSONAPIURL = "https://api.rss2json.com/v1/api.json"

// JSONAdapter reads a feed through a feed-to-JSON conversion API that
// answers with {"status": "ok", "items": [...]}.
type JSONAdapter struct {
	client *http.Client
	apiURL string
}

// NewJSON creates an adapter for the conversion API at apiURL. The feed
// address is passed in the rss_url query parameter.
func NewJSON(client *http.Client, apiURL string) (*JSONAdapter, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, errors.New("json api: url is required")
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("json api: %w", err)
	}
	return &JSONAdapter{client: client, apiURL: apiURL}, nil
}

func (a *JSONAdapter) Name() string {
	return "json"
}

type jsonFeed struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Items   []json.RawMessage `json:"items"`
}

func (a *JSONAdapter) Items(ctx context.Context, feedURL string) ([]Item, error) {
	u, err := url.Parse(a.apiURL)
	if err != nil {
		return nil, fmt.Errorf("json api: %w", err)
	}
	q := u.Query()
	q.Set("rss_url", feedURL)
	u.RawQuery = q.Encode()

	body, err := get(ctx, a.client, u.String(), nil)
	if err != nil {
		return nil, err
	}

	var doc jsonFeed
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrBadResponse, err)
	}
	if doc.Status != "ok" {
		msg := doc.Message
		if msg == "" {
			msg = "no message"
		}
		return nil, fmt.Errorf("%w: status %q: %s", ErrBadResponse, doc.Status, msg)
	}
	if doc.Items == nil {
		return nil, fmt.Errorf("%w: items missing", ErrBadResponse)
	}

	items := make([]Item, 0, len(doc.Items))
	for _, raw := range doc.Items {
		items = append(items, decodeJSONItem(raw))
	}
	return items, nil
}

// decodeJSONItem reads each field on its own so a wrongly typed field only
// blanks that field.
func decodeJSONItem(raw json.RawMessage) Item {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Item{}
	}

	published := jsonString(fields["pubDate"])
	item := Item{
		Title:       jsonString(fields["title"]),
		Link:        jsonString(fields["link"]),
		Published:   published,
		PublishedAt: parseDate(published),
		Content:     jsonString(fields["content"]),
		Description: jsonString(fields["description"]),
		Categories:  jsonStrings(fields["categories"]),
		Image:       jsonString(fields["thumbnail"]),
	}
	if item.Image == "" {
		var enc struct {
			Link string `json:"link"`
			Type string `json:"type"`
		}
		if err := json.Unmarshal(fields["enclosure"], &enc); err == nil && strings.HasPrefix(enc.Type, "image/") {
			item.Image = enc.Link
		}
	}
	return item
}

func jsonString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func jsonStrings(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if s := jsonString(raw); s != "" {
		return []string{s}
	}
	return nil
}
