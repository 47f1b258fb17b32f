package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"jinaai/internal/wire"
)

const (
	excerptLen    = 200
	hitSeparator  = "\n\n---\n"
	noResultsText = "No results found."
)

// excerptPolicy strips all markup from hit content. Policies are safe for
// concurrent use once built.
var excerptPolicy = bluemonday.StrictPolicy()

func renderHits(hits []wire.Hit) string {
	if len(hits) == 0 {
		return noResultsText
	}
	blocks := make([]string, len(hits))
	for i, h := range hits {
		blocks[i] = renderHit(i+1, h)
	}
	return strings.Join(blocks, hitSeparator)
}

func renderHit(n int, h wire.Hit) string {
	if h.Raw != "" || isBlank(h) {
		return fmt.Sprintf("[%d] %s", n, h.Raw)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d] %s\n  URL: %s", n, firstNonEmpty(h.Title, "Untitled Result"), firstNonEmpty(h.URL, "N/A"))

	if img := firstNonEmpty(h.ScreenshotURL, h.PageshotURL); img != "" {
		fmt.Fprintf(&sb, "\n  Screenshot: An image is available. Please display it.\n  <img src=%q alt=%q style=\"max-width: 100%%; height: auto; border: 1px solid #ccc;\" />",
			img, "Screenshot of "+firstNonEmpty(h.Title, h.URL))
	}
	if h.Description != "" {
		sb.WriteString("\n  Description: " + h.Description)
	}
	if h.Text != "" {
		sb.WriteString("\n  Text: " + h.Text)
	}
	if body := firstNonEmpty(h.ParsedContent, h.Content); body != "" {
		sb.WriteString("\n  Content: " + Excerpt(body, excerptLen))
	}
	if h.Date != "" {
		sb.WriteString("\n  Date: " + h.Date)
	}
	if h.Tokens > 0 {
		fmt.Fprintf(&sb, "\n  Tokens: %d", h.Tokens)
	}
	return sb.String()
}

// Excerpt strips tags from s, flattens whitespace and cuts it to limit
// runes. "..." is appended only when something was cut.
func Excerpt(s string, limit int) string {
	// Keep words on either side of a removed tag apart.
	cleaned := excerptPolicy.Sanitize(strings.ReplaceAll(escapeStrayBrackets(s), "<", " <"))
	cleaned = flatten(html.UnescapeString(cleaned))

	if utf8.RuneCountInString(cleaned) <= limit {
		return cleaned
	}
	runes := []rune(cleaned)
	return strings.TrimRight(string(runes[:limit]), " ") + "..."
}

func isBlank(h wire.Hit) bool {
	return h == wire.Hit{}
}
