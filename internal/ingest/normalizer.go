package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mlebreton/veille-aap/internal/models"
)

// fieldSynonyms lists, per canonical field, the upstream key names accepted
// for it in priority order. The first key holding a non-empty value wins.
// Kept as data so supporting a new upstream schema is an additive edit.
var fieldSynonyms = map[string][]string{
	"id":        {"id", "slug", "uid", "name", "title"},
	"title":     {"title", "name", "intitule", "label"},
	"type":      {"type", "types", "nature", "kind", "kinds"},
	"category":  {"category", "categories", "tags", "thematiques", "themes"},
	"axis":      {"axis", "axe", "axes", "priority", "priorites"},
	"territory": {"territory", "territoire", "territories", "perimeters", "perimetres", "location", "zone"},
	"deadline":  {"deadline", "date_submission_deadline", "closing_date", "date_limite", "date_cloture", "echeance"},
	"url":       {"url", "link", "external_url", "source_url", "lien"},
	"summary":   {"summary", "description", "short_description", "resume"},
}

// Normalize converts one raw upstream record into a canonical Opportunity.
// index is the record's position in the feed; it seeds the fallback
// identifier when no identifier-like field is usable. That fallback is
// deterministic for a given position but not stable across upstream
// reorderings, which can re-associate annotations after a reload.
func Normalize(raw RawRecord, index int) models.Opportunity {
	id := resolveField(raw, "id")
	if id == "" {
		id = fmt.Sprintf("op-%d", index)
	}

	title := cleanText(resolveField(raw, "title"))
	if title == "" {
		title = "Sans titre"
	}

	return models.Opportunity{
		ID:        id,
		Title:     title,
		Type:      cleanText(resolveField(raw, "type")),
		Category:  cleanText(resolveField(raw, "category")),
		Axis:      cleanText(resolveField(raw, "axis")),
		Territory: cleanText(resolveField(raw, "territory")),
		Deadline:  NormalizeDeadline(resolveField(raw, "deadline")),
		SourceURL: strings.TrimSpace(resolveField(raw, "url")),
		Summary:   TruncateText(HTMLToText(resolveField(raw, "summary")), 500),
		Raw:       raw,
	}
}

// NormalizeAll normalizes a feed in order, preserving source positions.
func NormalizeAll(records []RawRecord) []models.Opportunity {
	opps := make([]models.Opportunity, 0, len(records))
	for i, raw := range records {
		opps = append(opps, Normalize(raw, i))
	}
	return opps
}

func resolveField(raw RawRecord, field string) string {
	for _, key := range fieldSynonyms[field] {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if s := stringifyValue(v); s != "" {
			return s
		}
	}
	return ""
}

// stringifyValue flattens an upstream value to a string. Lists are
// comma-joined; objects contribute their name/title when they have one.
func stringifyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []any:
		var parts []string
		for _, item := range val {
			if s := stringifyValue(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case map[string]any:
		for _, key := range []string{"name", "title", "label"} {
			if s, ok := val[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return ""
	}
}
