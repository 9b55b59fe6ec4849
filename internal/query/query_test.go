package query

import (
	"testing"
	"time"

	"github.com/mlebreton/veille-aap/internal/models"
)

var now = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

func entry(id, deadline string) models.Entry {
	return models.Entry{
		Opportunity: models.Opportunity{ID: id, Title: "Appel " + id, Deadline: deadline},
	}
}

func ids(entries []models.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Opportunity.ID)
	}
	return out
}

func TestApply_DeadlineRange(t *testing.T) {
	entries := []models.Entry{
		entry("dated", "2024-01-01"),
		entry("undated", ""),
	}

	// An absent deadline reads as far future: a max bound excludes it.
	got := Apply(entries, Filter{DeadlineMax: "2023-12-31"}, now)
	if len(got) != 0 {
		t.Fatalf("max bound must exclude both, got %v", ids(got))
	}

	got = Apply(entries, Filter{DeadlineMax: "2024-06-01"}, now)
	if len(got) != 1 || got[0].Opportunity.ID != "dated" {
		t.Fatalf("expected only the dated entry, got %v", ids(got))
	}

	// A min bound is inclusive and excludes undated entries: the far-future
	// substitution applies to the max bound and to sorting only.
	got = Apply(entries, Filter{DeadlineMin: "2024-01-01"}, now)
	if len(got) != 1 || got[0].Opportunity.ID != "dated" {
		t.Fatalf("min bound must admit only the dated entry, got %v", ids(got))
	}
}

func TestApply_SortPlacesUndatedLast(t *testing.T) {
	entries := []models.Entry{
		entry("undated", ""),
		entry("dated", "2024-06-01"),
	}

	got := Apply(entries, Filter{}, now)
	if want := []string{"dated", "undated"}; got[0].Opportunity.ID != want[0] || got[1].Opportunity.ID != want[1] {
		t.Fatalf("asc sort must place the dated entry first, got %v", ids(got))
	}

	got = Apply(entries, Filter{SortDesc: true}, now)
	if got[0].Opportunity.ID != "undated" {
		t.Fatalf("desc sort must place the undated entry first, got %v", ids(got))
	}
}

func TestApply_SortIsStable(t *testing.T) {
	entries := []models.Entry{
		entry("a", "2026-09-01"),
		entry("b", "2026-09-01"),
		entry("c", "2026-09-01"),
	}
	got := Apply(entries, Filter{}, now)
	if want := []string{"a", "b", "c"}; got[0].Opportunity.ID != want[0] ||
		got[1].Opportunity.ID != want[1] || got[2].Opportunity.ID != want[2] {
		t.Fatalf("ties must keep source order, got %v", ids(got))
	}
}

func TestApply_UrgentOnly(t *testing.T) {
	entries := []models.Entry{
		entry("soon", "2026-08-27"),    // 3 days out
		entry("later", "2026-09-24"),   // a month out
		entry("undated", ""),           // never urgent
		entry("overdue", "2026-08-20"), // past deadlines stay urgent
	}

	got := Apply(entries, Filter{UrgentOnly: true}, now)
	if len(got) != 2 {
		t.Fatalf("expected soon+overdue, got %v", ids(got))
	}
	for _, e := range got {
		if e.Opportunity.ID == "later" || e.Opportunity.ID == "undated" {
			t.Fatalf("unexpected entry %s in urgent view", e.Opportunity.ID)
		}
	}
}

func TestApply_SearchSpansAnnotationNotes(t *testing.T) {
	entries := []models.Entry{
		{
			Opportunity: models.Opportunity{ID: "a", Title: "Rénovation urbaine", Deadline: "2026-09-01"},
			Annotation:  models.Annotation{Notes: "voir dossier FEDER"},
		},
		{
			Opportunity: models.Opportunity{ID: "b", Title: "Mobilité douce", Deadline: "2026-09-02"},
		},
	}

	got := Apply(entries, Filter{Search: "feder"}, now)
	if len(got) != 1 || got[0].Opportunity.ID != "a" {
		t.Fatalf("search must be case-insensitive and span notes, got %v", ids(got))
	}

	got = Apply(entries, Filter{Search: "MOBILITÉ"}, now)
	if len(got) != 1 || got[0].Opportunity.ID != "b" {
		t.Fatalf("search must match titles case-insensitively, got %v", ids(got))
	}
}

func TestApply_ExactClausesAndConjunction(t *testing.T) {
	entries := []models.Entry{
		{Opportunity: models.Opportunity{ID: "a", Type: "AAP", Territory: "La Réunion"}},
		{Opportunity: models.Opportunity{ID: "b", Type: "AMI", Territory: "La Réunion"}},
		{Opportunity: models.Opportunity{ID: "c", Type: "AAP", Territory: "Mayotte"}},
	}

	got := Apply(entries, Filter{Type: "AAP", Territory: "La Réunion"}, now)
	if len(got) != 1 || got[0].Opportunity.ID != "a" {
		t.Fatalf("clauses must be conjunctive, got %v", ids(got))
	}

	// An empty clause is always true.
	got = Apply(entries, Filter{Type: ""}, now)
	if len(got) != 3 {
		t.Fatalf("empty filter must admit all, got %v", ids(got))
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	entries := []models.Entry{
		entry("b", "2026-09-02"),
		entry("a", "2026-09-01"),
	}
	Apply(entries, Filter{}, now)
	if entries[0].Opportunity.ID != "b" {
		t.Fatal("Apply must not reorder its input")
	}
}

func TestDaysUntil(t *testing.T) {
	if got := DaysUntil("", now); got != 999 {
		t.Errorf("missing deadline = %d, want 999", got)
	}
	if got := DaysUntil("bogus", now); got != 999 {
		t.Errorf("unparseable deadline = %d, want 999", got)
	}
	if got := DaysUntil("2026-08-27", now); got != 3 {
		t.Errorf("three days out = %d, want 3", got)
	}
	if got := DaysUntil("2026-08-24", now); got != 0 {
		t.Errorf("due today = %d, want 0", got)
	}
}
