package pipeline

import (
	"testing"

	"github.com/mlebreton/veille-aap/internal/models"
)

func TestMove(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		direction int
		want      string
		wantOK    bool
	}{
		{"forward from first", "À qualifier", 1, "En analyse", true},
		{"backward from second", "En analyse", -1, "À qualifier", true},
		{"backward from first is a no-op", "À qualifier", -1, "À qualifier", false},
		{"forward from last is a no-op", "Abandonné", 1, "Abandonné", false},
		{"unknown status is a no-op", "corrompu", 1, "corrompu", false},
		{"forward into last", "Déposé", 1, "Abandonné", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Move(tt.current, tt.direction)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Move(%q, %d) = (%q, %v), want (%q, %v)",
					tt.current, tt.direction, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStatusOrder(t *testing.T) {
	want := []string{"À qualifier", "En analyse", "Go", "No-Go", "Déposé", "Abandonné"}
	if len(Statuses) != len(want) {
		t.Fatalf("expected %d statuses, got %d", len(want), len(Statuses))
	}
	for i, s := range want {
		if Statuses[i] != s {
			t.Errorf("status %d: expected %q, got %q", i, s, Statuses[i])
		}
	}
	if Default() != "À qualifier" {
		t.Errorf("default status must be the first stage, got %q", Default())
	}
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name  string
		score models.ScoreCard
		want  string
	}{
		{
			name:  "full marks without blockers",
			score: models.ScoreCard{StrategicFit: 5, Eligibility: 5, Effort: 5, Impact: 5, Timing: 5},
			want:  "Go",
		},
		{
			name:  "blockers veto a perfect score",
			score: models.ScoreCard{StrategicFit: 5, Eligibility: 5, Effort: 5, Impact: 5, Timing: 5, Blockers: "missing permit"},
			want:  "No-Go (blockers)",
		},
		{
			name:  "whitespace-only blockers do not veto",
			score: models.ScoreCard{StrategicFit: 5, Eligibility: 5, Effort: 5, Impact: 5, Timing: 5, Blockers: "   "},
			want:  "Go",
		},
		{
			name:  "total 20 is the Go threshold",
			score: models.ScoreCard{StrategicFit: 4, Eligibility: 4, Effort: 4, Impact: 4, Timing: 4},
			want:  "Go",
		},
		{
			name:  "total 15 warrants a closer look",
			score: models.ScoreCard{StrategicFit: 3, Eligibility: 3, Effort: 3, Impact: 3, Timing: 3},
			want:  "À approfondir",
		},
		{
			name:  "total 12 is the lower threshold",
			score: models.ScoreCard{StrategicFit: 4, Eligibility: 4, Effort: 4},
			want:  "À approfondir",
		},
		{
			name:  "total 8 is a No-Go",
			score: models.ScoreCard{StrategicFit: 2, Eligibility: 2, Effort: 2, Impact: 2},
			want:  "No-Go",
		},
		{
			name:  "zero score is a No-Go",
			score: models.ScoreCard{},
			want:  "No-Go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Recommend(tt.score); got != tt.want {
				t.Errorf("Recommend() = %q, want %q", got, tt.want)
			}
		})
	}
}
