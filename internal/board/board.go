// Package board is the data-layer facade the presentation layer talks to.
// It holds the loaded dataset, joins it with the overlay on demand, and
// routes every write through the overlay store.
package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mlebreton/veille-aap/internal/ingest"
	"github.com/mlebreton/veille-aap/internal/models"
	"github.com/mlebreton/veille-aap/internal/overlay"
	"github.com/mlebreton/veille-aap/internal/pipeline"
	"github.com/mlebreton/veille-aap/internal/query"
	"github.com/mlebreton/veille-aap/internal/snapshot"
)

// Board owns the merged view. Dataset and overlay are stored independently;
// the pairing happens at read time and is never persisted.
type Board struct {
	mu      sync.RWMutex
	loader  *ingest.Loader
	overlay *overlay.Store

	meta models.Meta
	opps []models.Opportunity
}

func New(loader *ingest.Loader, ov *overlay.Store) *Board {
	return &Board{loader: loader, overlay: ov}
}

// Reload fetches the dataset through the loader's candidate list. On
// failure the previous dataset (possibly empty on first launch) is kept and
// the error is returned as an advisory for the caller to surface.
func (b *Board) Reload(ctx context.Context) error {
	ds, err := b.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	b.mu.Lock()
	b.meta = ds.Meta
	b.opps = ds.Opportunities
	b.mu.Unlock()
	return nil
}

// Meta returns the current dataset header.
func (b *Board) Meta() models.Meta {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.meta
}

// CurrentMergedView joins every opportunity with its annotation,
// materializing defaults for unannotated ones.
func (b *Board) CurrentMergedView() []models.Entry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.mergedViewLocked()
}

func (b *Board) mergedViewLocked() []models.Entry {
	entries := make([]models.Entry, 0, len(b.opps))
	for _, opp := range b.opps {
		entries = append(entries, models.Entry{
			Opportunity: opp,
			Annotation:  b.overlay.Get(opp.ID),
		})
	}
	return entries
}

// Get returns the merged entry for id.
func (b *Board) Get(id string) (models.Entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, opp := range b.opps {
		if opp.ID == id {
			return models.Entry{Opportunity: opp, Annotation: b.overlay.Get(id)}, true
		}
	}
	return models.Entry{}, false
}

// Query filters and sorts the merged view.
func (b *Board) Query(f query.Filter) []models.Entry {
	b.mu.RLock()
	entries := b.mergedViewLocked()
	b.mu.RUnlock()
	return query.Apply(entries, f, time.Now())
}

// PatchAnnotation applies a partial annotation update for id.
func (b *Board) PatchAnnotation(id string, p models.AnnotationPatch) (models.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlay.Patch(id, p)
}

// PatchScore applies a partial score update for id.
func (b *Board) PatchScore(id string, p models.ScorePatch) (models.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlay.PatchScore(id, p)
}

// Move shifts the status of id one column in the pipeline order. Unknown
// statuses and moves past either end are silent no-ops: the current
// annotation comes back unchanged and nothing is written.
func (b *Board) Move(id string, direction int) (models.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.overlay.Get(id)
	next, ok := pipeline.Move(current.Status, direction)
	if !ok {
		return current, nil
	}
	return b.overlay.Patch(id, models.AnnotationPatch{Status: &next})
}

// SetStatus jumps the status of id directly; the pipeline order only
// constrains relative moves, not direct edits.
func (b *Board) SetStatus(id, status string) (models.Annotation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.overlay.Patch(id, models.AnnotationPatch{Status: &status})
}

// ExportSnapshot captures meta, the raw upstream originals, and the full
// overlay mapping.
func (b *Board) ExportSnapshot() snapshot.Payload {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return snapshot.Build(b.meta, b.opps, b.overlay.All())
}

// ImportSnapshot applies a snapshot payload. A present opportunities list
// replaces the dataset exactly as a fresh load would, re-running every
// record through the normalizer; a present local mapping replaces the whole
// overlay and persists immediately. Each field is applied independently.
// The overlay write is the only step that can fail, so it goes first: a
// failed import leaves both stores untouched.
func (b *Board) ImportSnapshot(blob []byte) error {
	p, err := snapshot.Decode(blob)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	var opps []models.Opportunity
	if p.Opportunities != nil {
		records := make([]ingest.RawRecord, 0, len(*p.Opportunities))
		for _, raw := range *p.Opportunities {
			records = append(records, raw)
		}
		opps = ingest.NormalizeAll(records)
	}

	if p.Local != nil {
		if err := b.overlay.Replace(*p.Local); err != nil {
			return err
		}
	}

	if p.Opportunities != nil {
		b.opps = opps
		if p.Meta != nil {
			b.meta = *p.Meta
		} else {
			b.meta = models.Meta{}
		}
	}
	return nil
}
