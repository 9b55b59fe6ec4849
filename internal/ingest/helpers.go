package ingest

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = bluemonday.StrictPolicy()

// cleanText collapses runs of whitespace and trims the string.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// HTMLToText converts an HTML fragment to plain text with normalized
// whitespace. Upstream description fields routinely carry markup.
func HTMLToText(html string) string {
	if !strings.ContainsRune(html, '<') {
		return cleanText(html)
	}
	sanitized := stripPolicy.Sanitize(html)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(sanitized))
	if err != nil {
		return cleanText(sanitized)
	}
	return cleanText(doc.Text())
}

// TruncateText cuts a string to at most maxLen bytes, appending ellipsis if
// truncated. The cut backs off to a rune boundary so accented text never
// yields invalid UTF-8.
func TruncateText(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	cut := maxLen
	if maxLen > 3 {
		cut = maxLen - 3
	}
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if maxLen > 3 {
		return text[:cut] + "..."
	}
	return text[:cut]
}
