// Package query filters and sorts the merged (opportunity, annotation) view.
// It is a pure read: inputs are never mutated.
package query

import (
	"sort"
	"strings"
	"time"

	"github.com/mlebreton/veille-aap/internal/models"
)

// farFuture stands in for a missing deadline in the max bound and in
// sorting, so undated calls read as "effectively never due".
const farFuture = "9999-12-31"

// missingDeadlineDays is the days-until value assigned to undated calls by
// the urgency clause; they are never urgent.
const missingDeadlineDays = 999

// urgentWithinDays is the urgency window.
const urgentWithinDays = 7

// Filter is a conjunction of independent clauses. A zero value for any
// clause means "always true".
type Filter struct {
	Search      string
	Type        string
	Category    string
	Axis        string
	Territory   string
	DeadlineMin string // inclusive, YYYY-MM-DD; never satisfied by undated entries
	DeadlineMax string // inclusive, YYYY-MM-DD
	UrgentOnly  bool
	SortDesc    bool
}

// Apply returns the entries admitted by f, ordered by deadline. The sort is
// stable: ties keep source order. now anchors the urgency clause.
func Apply(entries []models.Entry, f Filter, now time.Time) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if matches(e, f, now) {
			out = append(out, e)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		di := effectiveDeadline(out[i].Opportunity.Deadline)
		dj := effectiveDeadline(out[j].Opportunity.Deadline)
		if f.SortDesc {
			return di > dj
		}
		return di < dj
	})
	return out
}

func matches(e models.Entry, f Filter, now time.Time) bool {
	opp := e.Opportunity

	if f.Search != "" {
		haystack := strings.ToLower(strings.Join([]string{
			opp.Title, opp.Type, opp.Category, opp.Axis, opp.Territory, e.Annotation.Notes,
		}, " "))
		if !strings.Contains(haystack, strings.ToLower(f.Search)) {
			return false
		}
	}

	if f.Type != "" && opp.Type != f.Type {
		return false
	}
	if f.Category != "" && opp.Category != f.Category {
		return false
	}
	if f.Axis != "" && opp.Axis != f.Axis {
		return false
	}
	if f.Territory != "" && opp.Territory != f.Territory {
		return false
	}

	// A min bound asks for calls still open at that date; an undated call
	// gives no such guarantee, so it is excluded rather than read as far
	// future. The max bound keeps the substitution: far future exceeds any
	// max.
	if f.DeadlineMin != "" && (opp.Deadline == "" || opp.Deadline < f.DeadlineMin) {
		return false
	}
	if f.DeadlineMax != "" && effectiveDeadline(opp.Deadline) > f.DeadlineMax {
		return false
	}

	if f.UrgentOnly && DaysUntil(opp.Deadline, now) >= urgentWithinDays {
		return false
	}

	return true
}

func effectiveDeadline(deadline string) string {
	if deadline == "" {
		return farFuture
	}
	return deadline
}

// DaysUntil returns whole days from now's date to the deadline. A missing or
// unparseable deadline counts as 999 days out.
func DaysUntil(deadline string, now time.Time) int {
	if deadline == "" {
		return missingDeadlineDays
	}
	due, err := time.Parse("2006-01-02", deadline)
	if err != nil {
		return missingDeadlineDays
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}
