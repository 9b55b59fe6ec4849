// Package pipeline defines the fixed kanban stages an opportunity moves
// through and the score-based recommendation rule.
package pipeline

import (
	"strings"

	"github.com/mlebreton/veille-aap/internal/models"
)

// Statuses is the authoritative total order of the pipeline. It drives
// kanban column layout and relative moves; direct status edits may jump
// anywhere in it.
var Statuses = []string{
	"À qualifier",
	"En analyse",
	"Go",
	"No-Go",
	"Déposé",
	"Abandonné",
}

// Default is the status a freshly referenced opportunity starts in.
func Default() string {
	return Statuses[0]
}

// IndexOf returns the position of status in the pipeline order, or -1.
func IndexOf(status string) int {
	for i, s := range Statuses {
		if s == status {
			return i
		}
	}
	return -1
}

// Move returns the status direction steps (+1 or -1) from current.
// Unknown statuses (a corrupted overlay) and moves past either end report
// ok=false; callers treat that as a no-op, never as an error.
func Move(current string, direction int) (string, bool) {
	idx := IndexOf(current)
	if idx < 0 {
		return current, false
	}
	target := idx + direction
	if target < 0 || target >= len(Statuses) {
		return current, false
	}
	return Statuses[target], true
}

// Recommendation labels, in decreasing order of enthusiasm.
const (
	RecommendGo      = "Go"
	RecommendDig     = "À approfondir"
	RecommendNoGo    = "No-Go"
	RecommendBlocked = "No-Go (blockers)"
)

// Recommend derives a recommendation from the score alone; it is never
// persisted. Non-blank blockers veto the numeric total outright. Otherwise
// the five criteria sum to at most 25: 20 and up is a Go, 12 to 19 warrants
// a closer look, below 12 is a No-Go.
func Recommend(score models.ScoreCard) string {
	if strings.TrimSpace(score.Blockers) != "" {
		return RecommendBlocked
	}
	total := score.Total()
	switch {
	case total >= 20:
		return RecommendGo
	case total >= 12:
		return RecommendDig
	default:
		return RecommendNoGo
	}
}
