package ingest

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var isoDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// deadlineLayouts are tried in order after the ISO fast path. Upstream feeds
// mix ISO stamps with French and slash-separated forms.
var deadlineLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2 January 2006",
	"02 January 2006",
	"January 2, 2006",
}

var frenchMonths = map[string]string{
	"janvier":   "January",
	"février":   "February",
	"fevrier":   "February",
	"mars":      "March",
	"avril":     "April",
	"mai":       "May",
	"juin":      "June",
	"juillet":   "July",
	"août":      "August",
	"aout":      "August",
	"septembre": "September",
	"octobre":   "October",
	"novembre":  "November",
	"décembre":  "December",
	"decembre":  "December",
}

var frenchDateRe = regexp.MustCompile(`(?i)(\d{1,2})(?:er)?\s+([\p{L}û]+)\s+(\d{4})`)

// NormalizeDeadline reduces any upstream deadline value to YYYY-MM-DD.
// Unparseable or absent values yield "", never an invalid-date sentinel.
func NormalizeDeadline(text string) string {
	text = cleanText(text)
	if text == "" {
		return ""
	}

	// An embedded ISO date wins regardless of surrounding prose.
	if m := isoDateRe.FindString(text); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t.Format("2006-01-02")
		}
	}

	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if t, ok := parseFrenchDate(text); ok {
		return t.Format("2006-01-02")
	}

	return ""
}

// parseFrenchDate handles forms like "15 mars 2026" or "1er juillet 2026".
func parseFrenchDate(text string) (time.Time, bool) {
	m := frenchDateRe.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	month, ok := frenchMonths[strings.ToLower(m[2])]
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse("2 January 2006", fmt.Sprintf("%s %s %s", m[1], month, m[3]))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
