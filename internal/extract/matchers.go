package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Matcher finds a candidate image URL in raw content. Find returns "" when
// the matcher has nothing to offer.
type Matcher struct {
	Name string
	Find func(raw string) string
}

var (
	// Medium serves article images from two CDNs; the older host is checked first.
	// A match never ends on sentence punctuation.
	cdnImagesRe = regexp.MustCompile(`(?i)https?://cdn-images-\d+\.medium\.com/[^\s"'<>()]*[^\s"'<>().,;:!?]`)
	miroImageRe = regexp.MustCompile(`(?i)https?://miro\.medium\.com/[^\s"'<>()]*[^\s"'<>().,;:!?]`)

	bareImageRe = regexp.MustCompile(
		`(?i)(?:https?:)?(?://)?(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}(?::\d+)?/[^\s"'<>()]*?\.(?:png|jpe?g|gif|webp)\b(?:\?[^\s"'<>()]*)?`,
	)
)

// FigureImage matches an <img> nested in a <figure>, the usual lead image of
// a feed embed.
var FigureImage = Matcher{
	Name: "figure",
	Find: func(raw string) string {
		return firstImgSrc(raw, "figure img")
	},
}

// ImgTag matches the src of any <img> tag.
var ImgTag = Matcher{
	Name: "img",
	Find: func(raw string) string {
		return firstImgSrc(raw, "img")
	},
}

// CDNImage matches a Medium CDN image URL anywhere in the text.
var CDNImage = Matcher{
	Name: "cdn",
	Find: func(raw string) string {
		if m := cdnImagesRe.FindString(raw); m != "" {
			return m
		}
		return miroImageRe.FindString(raw)
	},
}

// BareImageURL matches any URL ending in a common image extension, with an
// optional query string.
var BareImageURL = Matcher{
	Name: "bare",
	Find: func(raw string) string {
		return bareImageRe.FindString(raw)
	},
}

// DefaultMatchers returns the standard cascade, most specific first.
func DefaultMatchers() []Matcher {
	return []Matcher{FigureImage, ImgTag, CDNImage, BareImageURL}
}

func firstImgSrc(raw, selector string) string {
	if !strings.Contains(strings.ToLower(raw), "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}

	var src string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v := usableSrc(s); v != "" {
			src = v
			return false
		}
		return true
	})
	return src
}

func usableSrc(s *goquery.Selection) string {
	src := strings.TrimSpace(s.AttrOr("src", ""))
	if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
		return ""
	}
	// Medium appends a 1x1 stat pixel to every post body.
	if s.AttrOr("width", "") == "1" && s.AttrOr("height", "") == "1" {
		return ""
	}
	return src
}
