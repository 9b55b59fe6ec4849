// Package snapshot serializes the full tracker state for backup and
// transfer between devices.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/mlebreton/veille-aap/internal/models"
)

// Payload is the wire form of a snapshot. Opportunities carries the raw
// upstream originals, not the normalized records, so a re-import runs the
// exact same normalization as the original load. Local carries the full
// overlay mapping. Both fields are optional and independent: a nil field on
// import leaves the corresponding store untouched.
type Payload struct {
	Meta          *models.Meta                  `json:"_meta,omitempty"`
	Opportunities *[]map[string]any             `json:"opportunities,omitempty"`
	Local         *map[string]models.Annotation `json:"local,omitempty"`
}

// Build assembles a full-state payload from the current dataset and overlay.
func Build(meta models.Meta, opps []models.Opportunity, local map[string]models.Annotation) Payload {
	raws := make([]map[string]any, 0, len(opps))
	for _, opp := range opps {
		raw := opp.Raw
		if raw == nil {
			// Synthetic records (tests, manual entries) have no original;
			// fall back to the normalized shape so the export stays total.
			raw = map[string]any{
				"id":        opp.ID,
				"title":     opp.Title,
				"type":      opp.Type,
				"category":  opp.Category,
				"axis":      opp.Axis,
				"territory": opp.Territory,
				"deadline":  opp.Deadline,
				"url":       opp.SourceURL,
			}
		}
		raws = append(raws, raw)
	}
	return Payload{Meta: &meta, Opportunities: &raws, Local: &local}
}

// Encode renders a payload as indented JSON, the on-disk snapshot format.
func Encode(p Payload) ([]byte, error) {
	blob, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return blob, nil
}

// Decode parses a snapshot payload. Field absence is preserved through the
// pointer fields so import can tell "absent" from "empty".
func Decode(blob []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(blob, &p); err != nil {
		return Payload{}, fmt.Errorf("snapshot: decode: %w", err)
	}
	return p, nil
}
