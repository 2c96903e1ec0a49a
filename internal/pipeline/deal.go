package pipeline

import "time"

// Deal is a normalized pipeline record. The raw stage and relevance labels
// are retained verbatim next to their canonical forms so the original
// source value stays auditable after canonicalization.
//
// Deals are created by ingestion and overwritten on re-ingestion of the
// same external id (last write wins by ingestion timestamp). Nothing in
// this system deletes a deal; removal from a projections board is
// overlay-local state, not a deal mutation.
type Deal struct {
	// ID is the stable external identifier from the source system.
	ID string `json:"id"`

	// Rep is the owning sales representative.
	Rep string `json:"rep"`

	// Value is the deal's monetary value.
	Value float64 `json:"value"`

	RawStage string `json:"raw_stage"`
	Stage    Stage  `json:"stage"`

	RawRelevance string    `json:"raw_relevance"`
	Relevance    Relevance `json:"relevance"`

	CreatedAt time.Time `json:"created_at"`

	// StageEnteredAt is when the deal entered its current stage, when the
	// source provides it.
	StageEnteredAt *time.Time `json:"stage_entered_at,omitempty"`

	// IngestedAt is when this record was last written by an ingestion run.
	IngestedAt time.Time `json:"ingested_at"`
}

// WindowTime returns the timestamp used for time-window membership: the
// stage-entry timestamp when present, else the creation timestamp.
func (d Deal) WindowTime() time.Time {
	if d.StageEnteredAt != nil && !d.StageEnteredAt.IsZero() {
		return *d.StageEnteredAt
	}
	return d.CreatedAt
}

// TimeWindow is a half-open interval [From, To). A zero From means no lower
// bound and a zero To means no upper bound, so the zero TimeWindow matches
// every deal (the unwindowed totals used for portfolio-wide checks).
type TimeWindow struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether the window is unbounded on both sides.
func (w TimeWindow) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}

// Contains reports whether t falls inside the window.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

// MonthWindow returns the calendar-month window containing the given year
// and month, in UTC.
func MonthWindow(year int, month time.Month) TimeWindow {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return TimeWindow{From: from, To: from.AddDate(0, 1, 0)}
}

// MonthWindows returns consecutive calendar-month windows covering from
// through to (inclusive of both months), oldest first. It returns nil when
// to precedes from.
func MonthWindows(from, to time.Time) []TimeWindow {
	start := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil
	}

	var windows []TimeWindow
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		windows = append(windows, MonthWindow(cur.Year(), cur.Month()))
	}
	return windows
}
