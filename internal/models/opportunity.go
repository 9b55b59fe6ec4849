package models

// Opportunity is one normalized AAP/AMI call. It is derived from an upstream
// record at load time and immutable for the lifetime of a loaded dataset.
// Raw keeps the original record verbatim so that exports reproduce the exact
// upstream shape, not the normalized one.
type Opportunity struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Type      string         `json:"type"`
	Category  string         `json:"category"`
	Axis      string         `json:"axis"`
	Territory string         `json:"territory"`
	Deadline  string         `json:"deadline"` // YYYY-MM-DD, or "" when absent/unparseable
	SourceURL string         `json:"source_url"`
	Summary   string         `json:"summary"`
	Raw       map[string]any `json:"raw"`
}

// ScoreCard holds the five evaluation criteria plus free-text blockers.
// The 0-5 range is a presentation concern and is not enforced here.
type ScoreCard struct {
	StrategicFit int    `json:"strategic_fit"`
	Eligibility  int    `json:"eligibility"`
	Effort       int    `json:"effort"`
	Impact       int    `json:"impact"`
	Timing       int    `json:"timing"`
	Blockers     string `json:"blockers"`
}

// Total sums the five numeric criteria. Blockers are excluded.
func (s ScoreCard) Total() int {
	return s.StrategicFit + s.Eligibility + s.Effort + s.Impact + s.Timing
}

// Annotation is the user-authored evaluation of one opportunity, keyed by
// opportunity ID and stored independently of the upstream dataset. Entries
// outlive the opportunity they annotate: a delisted call keeps its annotation
// until an import replaces the whole mapping.
type Annotation struct {
	Status     string    `json:"status"`
	Owner      string    `json:"owner"`
	Notes      string    `json:"notes"`
	NextAction string    `json:"next_action"`
	NextDate   string    `json:"next_date"`
	Score      ScoreCard `json:"score"`
}

// AnnotationPatch is a partial annotation update. Nil fields are left
// untouched so two patches touching different fields never clobber each other.
type AnnotationPatch struct {
	Status     *string `json:"status,omitempty"`
	Owner      *string `json:"owner,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	NextAction *string `json:"next_action,omitempty"`
	NextDate   *string `json:"next_date,omitempty"`
}

// ScorePatch is a partial score update with the same nil-means-keep contract.
type ScorePatch struct {
	StrategicFit *int    `json:"strategic_fit,omitempty"`
	Eligibility  *int    `json:"eligibility,omitempty"`
	Effort       *int    `json:"effort,omitempty"`
	Impact       *int    `json:"impact,omitempty"`
	Timing       *int    `json:"timing,omitempty"`
	Blockers     *string `json:"blockers,omitempty"`
}

// MetaSource describes one upstream source credited in the dataset header.
type MetaSource struct {
	Name            string `json:"name,omitempty"`
	LastCheckedAt   string `json:"last_checked_at,omitempty"`
	AttributionText string `json:"attribution_text,omitempty"`
}

// Meta is the dataset header. It is pass-through data, displayed but never
// interpreted beyond that.
type Meta struct {
	GeneratedAt string       `json:"generated_at,omitempty"`
	Sources     []MetaSource `json:"sources,omitempty"`
}

// Dataset is one loaded upstream feed.
type Dataset struct {
	Meta          Meta
	Opportunities []Opportunity
}

// Entry pairs an opportunity with its annotation for display. It is produced
// by a read-time join and never persisted.
type Entry struct {
	Opportunity Opportunity `json:"opportunity"`
	Annotation  Annotation  `json:"annotation"`
}
