// Package overlay owns the mapping from opportunity identifier to the
// user-authored annotation, persisted as one serialized blob in a durable
// slot so that dataset reloads never disturb it.
package overlay

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/mlebreton/veille-aap/internal/models"
	"github.com/mlebreton/veille-aap/internal/pipeline"
	"github.com/mlebreton/veille-aap/internal/storage"
)

// DefaultNamespace is the slot key the overlay blob lives under.
const DefaultNamespace = "veille-aap.local.v1"

// Store hydrates the overlay from its slot once at construction and writes
// the full mapping back synchronously after every mutation. A mutation is
// only visible in memory once its persisted write succeeded.
type Store struct {
	slot      storage.Slot
	namespace string
	entries   map[string]models.Annotation
}

// NewStore hydrates a store from slot. An absent blob starts empty; a
// corrupt one degrades to empty as well, with an advisory in the log.
func NewStore(slot storage.Slot, namespace string) *Store {
	s := &Store{
		slot:      slot,
		namespace: namespace,
		entries:   make(map[string]models.Annotation),
	}

	blob, err := slot.Read(namespace)
	switch {
	case errors.Is(err, storage.ErrAbsent):
		// First run, nothing stored yet.
	case err != nil:
		log.Printf("overlay: storage read failed, starting empty: %v", err)
	default:
		var entries map[string]models.Annotation
		if err := json.Unmarshal(blob, &entries); err != nil {
			log.Printf("overlay: corrupt blob in %s, starting empty: %v", namespace, err)
		} else if entries != nil {
			s.entries = entries
		}
	}
	return s
}

// DefaultAnnotation is the zero-state evaluation: first pipeline status,
// empty strings, zeroed score.
func DefaultAnnotation() models.Annotation {
	return models.Annotation{Status: pipeline.Default()}
}

// Get returns the stored annotation for id, or a fresh default when none
// exists. Reading never writes anything.
func (s *Store) Get(id string) models.Annotation {
	if a, ok := s.entries[id]; ok {
		return a
	}
	return DefaultAnnotation()
}

// Has reports whether id has a persisted annotation.
func (s *Store) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// All returns a copy of the full mapping.
func (s *Store) All() map[string]models.Annotation {
	out := make(map[string]models.Annotation, len(s.entries))
	for id, a := range s.entries {
		out[id] = a
	}
	return out
}

// Patch shallow-merges the non-nil fields of p into the annotation for id,
// creating it from defaults first, and persists the full mapping. The
// merged annotation is returned.
func (s *Store) Patch(id string, p models.AnnotationPatch) (models.Annotation, error) {
	a := s.Get(id)
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Owner != nil {
		a.Owner = *p.Owner
	}
	if p.Notes != nil {
		a.Notes = *p.Notes
	}
	if p.NextAction != nil {
		a.NextAction = *p.NextAction
	}
	if p.NextDate != nil {
		a.NextDate = *p.NextDate
	}
	if err := s.commit(id, a); err != nil {
		return s.Get(id), err
	}
	return a, nil
}

// PatchScore applies the same merge discipline to the score sub-record.
func (s *Store) PatchScore(id string, p models.ScorePatch) (models.Annotation, error) {
	a := s.Get(id)
	if p.StrategicFit != nil {
		a.Score.StrategicFit = *p.StrategicFit
	}
	if p.Eligibility != nil {
		a.Score.Eligibility = *p.Eligibility
	}
	if p.Effort != nil {
		a.Score.Effort = *p.Effort
	}
	if p.Impact != nil {
		a.Score.Impact = *p.Impact
	}
	if p.Timing != nil {
		a.Score.Timing = *p.Timing
	}
	if p.Blockers != nil {
		a.Score.Blockers = *p.Blockers
	}
	if err := s.commit(id, a); err != nil {
		return s.Get(id), err
	}
	return a, nil
}

// Replace swaps in an entirely new mapping, persisting it first. Used by
// snapshot import; it is the only path that removes entries.
func (s *Store) Replace(entries map[string]models.Annotation) error {
	next := make(map[string]models.Annotation, len(entries))
	for id, a := range entries {
		next[id] = a
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

// commit persists the mapping with id set to a, then applies it in memory.
// On a failed write the in-memory state is left untouched, so "patched but
// not persisted" is never observable.
func (s *Store) commit(id string, a models.Annotation) error {
	next := make(map[string]models.Annotation, len(s.entries)+1)
	for k, v := range s.entries {
		next[k] = v
	}
	next[id] = a
	if err := s.persist(next); err != nil {
		return err
	}
	s.entries = next
	return nil
}

func (s *Store) persist(entries map[string]models.Annotation) error {
	blob, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("overlay: encode: %w", err)
	}
	if err := s.slot.Write(s.namespace, blob); err != nil {
		return fmt.Errorf("overlay: persist: %w", err)
	}
	return nil
}
