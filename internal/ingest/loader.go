package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/mlebreton/veille-aap/internal/models"
)

// ErrAllSourcesFailed reports that every candidate location was unreachable
// or held unparseable JSON. Callers keep their previous dataset in that case.
var ErrAllSourcesFailed = errors.New("no dataset source available")

// Loader tries an ordered, fixed list of candidate locations and consumes
// exactly one: the first whose body parses as JSON. Later candidates are
// never consulted after a success, so datasets from different sources are
// never mixed.
type Loader struct {
	Candidates []string
	Retriever  Retriever
}

func NewLoader(candidates []string, retriever Retriever) *Loader {
	return &Loader{Candidates: candidates, Retriever: retriever}
}

// Load returns the first successfully retrieved and parsed dataset, or
// ErrAllSourcesFailed wrapping the per-candidate failures.
func (l *Loader) Load(ctx context.Context) (models.Dataset, error) {
	var failures []string
	for _, location := range l.Candidates {
		body, err := l.Retriever.Retrieve(ctx, location)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", location, err))
			continue
		}
		ds, err := DecodeDataset(body)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", location, err))
			continue
		}
		log.Printf("Loaded %d opportunities from %s", len(ds.Opportunities), location)
		return ds, nil
	}
	return models.Dataset{}, fmt.Errorf("%w: %s", ErrAllSourcesFailed, strings.Join(failures, "; "))
}

// wrappedPayload is the meta-carrying legal shape. The record list may sit
// under either "opportunities" or "items".
type wrappedPayload struct {
	Meta          *models.Meta `json:"_meta"`
	Opportunities []RawRecord  `json:"opportunities"`
	Items         []RawRecord  `json:"items"`
}

// DecodeDataset parses one of the two legal payload shapes: a bare array of
// raw records, or an object with _meta and an opportunities/items list.
// Unparseable JSON is an error (the candidate is skipped); any other
// parseable shape decodes to zero opportunities without error, matching the
// documented treatment of malformed and absent data as identical.
func DecodeDataset(body []byte) (models.Dataset, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return models.Dataset{}, errors.New("empty payload")
	}

	switch trimmed[0] {
	case '[':
		var records []RawRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return models.Dataset{}, fmt.Errorf("invalid record array: %w", err)
		}
		return models.Dataset{Opportunities: NormalizeAll(records)}, nil
	case '{':
		var payload wrappedPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return models.Dataset{}, fmt.Errorf("invalid dataset object: %w", err)
		}
		records := payload.Opportunities
		if records == nil {
			records = payload.Items
		}
		ds := models.Dataset{Opportunities: NormalizeAll(records)}
		if payload.Meta != nil {
			ds.Meta = *payload.Meta
		}
		return ds, nil
	default:
		// Parseable but not a legal shape (bare string, number, ...):
		// zero opportunities, not an error.
		var v any
		if err := json.Unmarshal(trimmed, &v); err != nil {
			return models.Dataset{}, fmt.Errorf("invalid payload: %w", err)
		}
		return models.Dataset{}, nil
	}
}
