// Package collector refreshes the opportunity seed dataset from the
// Aides-territoires API. It runs as a one-shot batch job, outside the
// tracker's request path, and only ever touches the seed file: a failed run
// leaves the previous seed intact.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mlebreton/veille-aap/internal/config"
	"github.com/mlebreton/veille-aap/internal/ingest"
	"github.com/mlebreton/veille-aap/internal/models"
)

const sourceName = "Aides-territoires API"

const attributionText = "Données issues de l'API Aides-territoires (Licence Ouverte v2.0). " +
	"Réutilisation sous réserve du respect des conditions d'utilisation et de l'attribution."

const (
	pageSize = 50
	maxPages = 80
)

var seedDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// SeedRecord is one entry of the seed dataset, in the shape the tracker's
// normalizer synonym tables already understand.
type SeedRecord struct {
	ID                  string `json:"id,omitempty"`
	Title               string `json:"title"`
	Issuer              string `json:"issuer"`
	Deadline            string `json:"deadline,omitempty"`
	Calendar            any    `json:"calendar,omitempty"`
	URL                 string `json:"url,omitempty"`
	Description         string `json:"description"`
	Territory           any    `json:"territory,omitempty"`
	Tags                any    `json:"tags,omitempty"`
	Type                string `json:"type"`
	Amount              any    `json:"amount,omitempty"`
	Source              string `json:"source"`
	SourceLastCheckedAt string `json:"source_last_checked_at"`
	DiscoveredAt        string `json:"discovered_at"`
}

type seedPayload struct {
	Meta          models.Meta  `json:"_meta"`
	Opportunities []SeedRecord `json:"opportunities"`
}

type apiPage struct {
	Results []map[string]any `json:"results"`
	Next    any              `json:"next"`
}

type Collector struct {
	cfg       config.CollectorConfig
	retriever ingest.Retriever
	now       func() time.Time
}

func New(cfg config.CollectorConfig, retriever ingest.Retriever) *Collector {
	return &Collector{cfg: cfg, retriever: retriever, now: time.Now}
}

// Run performs one collection cycle: probe the API candidates, page through
// fresh results, merge them with the existing seed, and rewrite the seed
// file. Any failure before the final write preserves the existing seed.
func (c *Collector) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	log.Printf("[%s] Starting collection for territory %s", runID, c.cfg.TerritoryCode)

	existing := readExistingSeed(c.cfg.OutputPath)

	api, err := c.selectEndpoint(ctx)
	if err != nil {
		return fmt.Errorf("collector: %w", err)
	}

	fresh, err := c.fetchItems(ctx, api)
	if err != nil {
		return fmt.Errorf("collector: %w", err)
	}

	merged := MergeWithExisting(existing, fresh)
	if err := c.writeSeed(merged); err != nil {
		return fmt.Errorf("collector: %w", err)
	}

	log.Printf("[%s] Collected %d items (%d merged)", runID, len(fresh), len(merged))
	return nil
}

// selectEndpoint probes the API candidates in order and keeps the first one
// answering with parseable JSON.
func (c *Collector) selectEndpoint(ctx context.Context) (string, error) {
	for _, candidate := range c.cfg.APICandidates {
		if _, err := c.apiGet(ctx, candidate, url.Values{"page": {"1"}, "page_size": {"1"}}); err != nil {
			log.Printf("Cannot use %s (%v)", candidate, err)
			continue
		}
		log.Printf("Using API endpoint: %s", candidate)
		return candidate, nil
	}
	return "", errors.New("no reachable API endpoint")
}

func (c *Collector) apiGet(ctx context.Context, base string, params url.Values) (apiPage, error) {
	location := base
	if len(params) > 0 {
		location = base + "?" + params.Encode()
	}
	body, err := c.retriever.Retrieve(ctx, location)
	if err != nil {
		return apiPage{}, err
	}
	var page apiPage
	if err := json.Unmarshal(body, &page); err != nil {
		return apiPage{}, fmt.Errorf("unexpected API payload: %w", err)
	}
	return page, nil
}

func (c *Collector) fetchItems(ctx context.Context, api string) ([]SeedRecord, error) {
	var items []SeedRecord
	threshold := c.now().UTC().AddDate(0, 0, -c.cfg.FreshnessDays)

	for page := 1; page <= maxPages && len(items) < c.cfg.MaxItems; page++ {
		data, err := c.apiGet(ctx, api, url.Values{
			"page":      {strconv.Itoa(page)},
			"page_size": {strconv.Itoa(pageSize)},
			"ordering":  {"-date_updated"},
		})
		if err != nil {
			return nil, err
		}
		if len(data.Results) == 0 {
			break
		}

		for _, raw := range data.Results {
			if !c.territoryMatches(raw) {
				continue
			}
			item, ok := c.normalizeItem(raw)
			if !ok {
				continue
			}
			if !c.includeByKeywords(item) {
				continue
			}
			if updated := parseSeedDate(stringValue(raw, "date_updated", "updated_at", "updated")); updated != "" {
				if t, err := time.Parse("2006-01-02", updated); err == nil && t.Before(threshold) {
					continue
				}
			}
			items = append(items, item)
			if len(items) >= c.cfg.MaxItems {
				break
			}
		}

		if !hasNext(data.Next) {
			break
		}
	}

	return items, nil
}

// normalizeItem reshapes one API result into a seed record. Records with no
// title or no detectable AAP/AMI type are dropped.
func (c *Collector) normalizeItem(raw map[string]any) (SeedRecord, bool) {
	title := stringValue(raw, "name", "title")
	if title == "" {
		return SeedRecord{}, false
	}

	typ := c.detectType(raw)
	if typ == "" {
		return SeedRecord{}, false
	}

	link := stringValue(raw, "url", "external_url", "source_url")
	id := strings.TrimSpace(stringValue(raw, "id"))
	if link == "" && id != "" {
		link = "https://aides-territoires.beta.gouv.fr/aides/" + id
	}

	now := c.now().UTC().Format(time.RFC3339)
	issuer := stringValue(raw, "provider_name", "issuer")
	if issuer == "" {
		issuer = "Inconnu"
	}

	return SeedRecord{
		ID:                  id,
		Title:               strings.TrimSpace(title),
		Issuer:              issuer,
		Deadline:            parseSeedDate(stringValue(raw, "date_submission_deadline", "deadline", "closing_date")),
		Calendar:            firstValue(raw, "calendar", "period"),
		URL:                 link,
		Description:         ingest.HTMLToText(stringValue(raw, "description", "short_description")),
		Territory:           firstValue(raw, "perimeters", "territories"),
		Tags:                firstValue(raw, "tags", "categories"),
		Type:                typ,
		Amount:              firstValue(raw, "amount", "financial_amount"),
		Source:              sourceName,
		SourceLastCheckedAt: now,
		DiscoveredAt:        now,
	}, true
}

// detectType classifies a record as AMI or AAP from its type-ish fields and
// text corpus. AMI is checked first: AMI calls often mention "projets" too.
func (c *Collector) detectType(raw map[string]any) string {
	var candidates []string
	for _, key := range []string{"type", "types", "nature", "kinds", "category"} {
		switch v := raw[key].(type) {
		case []any:
			for _, item := range v {
				candidates = append(candidates, strings.ToUpper(fmt.Sprint(item)))
			}
		case nil:
		default:
			candidates = append(candidates, strings.ToUpper(fmt.Sprint(v)))
		}
	}
	corpus := strings.Join(append(candidates, strings.ToUpper(textFields(raw))), " ")

	if strings.Contains(corpus, "AMI") ||
		strings.Contains(corpus, "MANIFESTATION D'INTÉRÊT") ||
		strings.Contains(corpus, "MANIFESTATION D’INTÉRÊT") {
		if c.typeIncluded("AMI") {
			return "AMI"
		}
		return ""
	}
	if strings.Contains(corpus, "AAP") ||
		strings.Contains(corpus, "APPEL À PROJETS") ||
		strings.Contains(corpus, "APPEL A PROJETS") {
		if c.typeIncluded("AAP") {
			return "AAP"
		}
		return ""
	}
	return ""
}

func (c *Collector) typeIncluded(typ string) bool {
	for _, t := range c.cfg.IncludeTypes {
		if strings.EqualFold(t, typ) {
			return true
		}
	}
	return false
}

// territoryMatches checks the territory code (or a Réunion mention) against
// the record's perimeter fields, falling back to the whole record.
func (c *Collector) territoryMatches(raw map[string]any) bool {
	scope := firstValue(raw, "perimeters", "territories", "location")
	if scope == nil {
		scope = raw
	}
	blob, err := json.Marshal(scope)
	if err != nil {
		return false
	}
	lower := strings.ToLower(string(blob))
	return strings.Contains(lower, strings.ToLower(c.cfg.TerritoryCode)) ||
		strings.Contains(lower, "réunion") ||
		strings.Contains(lower, "reunion")
}

func (c *Collector) includeByKeywords(item SeedRecord) bool {
	var tags []string
	if list, ok := item.Tags.([]any); ok {
		for _, t := range list {
			tags = append(tags, fmt.Sprint(t))
		}
	}
	text := strings.ToLower(strings.Join([]string{
		item.Title, item.Description, item.Issuer, item.Type, strings.Join(tags, " "),
	}, " "))

	for _, word := range c.cfg.KeywordsExclude {
		if word != "" && strings.Contains(text, strings.ToLower(word)) {
			return false
		}
	}
	if len(c.cfg.KeywordsInclude) == 0 {
		return true
	}
	for _, word := range c.cfg.KeywordsInclude {
		if word != "" && strings.Contains(text, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// Dedupe keeps the first record per URL, falling back to title+deadline for
// records without one.
func Dedupe(items []SeedRecord) []SeedRecord {
	seen := make(map[string]bool, len(items))
	var out []SeedRecord
	for _, item := range items {
		link := strings.ToLower(strings.TrimSpace(item.URL))
		key := "url::" + link
		if link == "" {
			key = "title_deadline::" + strings.ToLower(strings.TrimSpace(item.Title)) + "::" + item.Deadline
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// MergeWithExisting combines the previous seed with fresh results, existing
// entries winning duplicates, ordered by deadline then discovery time.
// Undated entries sort last via the far-future substitution.
func MergeWithExisting(existing, fresh []SeedRecord) []SeedRecord {
	merged := Dedupe(append(append([]SeedRecord{}, existing...), fresh...))

	sort.SliceStable(merged, func(i, j int) bool {
		da, db := merged[i].Deadline, merged[j].Deadline
		if da == "" {
			da = "9999-12-31"
		}
		if db == "" {
			db = "9999-12-31"
		}
		if da != db {
			return da < db
		}
		return merged[i].DiscoveredAt < merged[j].DiscoveredAt
	})
	return merged
}

func (c *Collector) writeSeed(opps []SeedRecord) error {
	now := c.now().UTC().Format(time.RFC3339)
	payload := seedPayload{
		Meta: models.Meta{
			GeneratedAt: now,
			Sources: []models.MetaSource{{
				Name:            sourceName,
				LastCheckedAt:   now,
				AttributionText: attributionText,
			}},
		},
		Opportunities: opps,
	}

	blob, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	if err := os.WriteFile(c.cfg.OutputPath, append(blob, '\n'), 0o644); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}
	return nil
}

func readExistingSeed(path string) []SeedRecord {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var payload seedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return payload.Opportunities
}

// parseSeedDate extracts a YYYY-MM-DD date embedded anywhere in the value.
func parseSeedDate(value string) string {
	return seedDateRe.FindString(value)
}

// textFields concatenates the record's prose-ish fields for type detection.
func textFields(raw map[string]any) string {
	var bits []string
	for _, key := range []string{"name", "title", "description", "short_description", "provider_name", "author"} {
		if s := stringValue(raw, key); s != "" {
			bits = append(bits, s)
		}
	}
	return strings.Join(bits, " ")
}

func stringValue(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstValue(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := raw[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func hasNext(next any) bool {
	switch v := next.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}
