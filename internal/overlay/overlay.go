// Package overlay implements the projections-board overlay: per-view,
// per-deal user state (board ordering, permanent removals, probability
// overrides) layered on top of the externally-owned deal snapshot, and the
// merge algorithm that reconciles the two on every board load.
//
// The overlay never mutates deals. Removing a deal from a board sets an
// overlay flag; the deal itself lives on in the store and in every other
// view. Overlay entries likewise outlive their deals: an entry whose deal
// id is missing from the current snapshot is retained, not purged, so a
// flag set before a deal temporarily disappears from a filtered view is
// still there when the deal comes back.
package overlay

import (
	"errors"
	"fmt"
	"sort"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
)

// SchemaVersion identifies the persisted overlay record layout. Loading a
// record with an unknown version is an error, never a best-effort read.
const SchemaVersion = 1

// ErrOverrideRange is returned when a probability override falls outside
// the [0,1] scale shared with the stage defaults.
var ErrOverrideRange = errors.New("probability override must be between 0 and 1")

// ErrSchemaVersion is returned when persisted overlay state carries a
// schema version this build does not understand.
var ErrSchemaVersion = errors.New("unsupported overlay schema version")

// ErrEmptyDealID is returned when a save payload references an empty deal id.
var ErrEmptyDealID = errors.New("empty deal id")

// ErrDuplicateDealID is returned when a save payload's order list names the
// same deal id twice.
var ErrDuplicateDealID = errors.New("duplicate deal id in order list")

// Entry is the overlay state for one deal within one view.
//
// A deal with no Entry is untracked: it appears on the board after all
// ordered deals, in snapshot order. Once the board is saved the deal gets
// an Entry with a Position. Deleted is terminal: it survives the deal's
// own field changes and any re-ingestion, and only another explicit save
// could ever clear it.
type Entry struct {
	// Position defines the deal's board slot. Lower sorts first.
	Position int `json:"position"`

	// Deleted permanently removes the deal from this view's board. This
	// is overlay-local: the deal itself is never deleted.
	Deleted bool `json:"deleted"`

	// ProbabilityOverride replaces the stage default for this deal in
	// this view, on the same [0,1] scale. Nil means use the default.
	ProbabilityOverride *float64 `json:"probability_override,omitempty"`
}

// EffectiveProbability returns the override when present, else the stage
// default.
func (e Entry) EffectiveProbability(s pipeline.Stage) float64 {
	if e.ProbabilityOverride != nil {
		return *e.ProbabilityOverride
	}
	return pipeline.DefaultProbability(s)
}

// State is the complete overlay for one view, keyed by deal id. It is
// saved and loaded as one atomic unit; there is no per-entry mutation API
// because a partial write that records deletions but loses overrides is a
// correctness failure, not a degradation.
type State struct {
	SchemaVersion int              `json:"schema_version"`
	Entries       map[string]Entry `json:"entries"`
}

// NewState returns an empty overlay at the current schema version.
func NewState() State {
	return State{SchemaVersion: SchemaVersion, Entries: make(map[string]Entry)}
}

// Validate checks that the state is usable by this build.
func (s State) Validate() error {
	if s.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, s.SchemaVersion, SchemaVersion)
	}
	for id, e := range s.Entries {
		if e.ProbabilityOverride != nil {
			if p := *e.ProbabilityOverride; p < 0 || p > 1 {
				return fmt.Errorf("deal %q: %w (got %v)", id, ErrOverrideRange, p)
			}
		}
	}
	return nil
}

// Overrides returns the probability overrides of all non-deleted entries,
// keyed by deal id, for view-scoped aggregation.
func (s State) Overrides() map[string]float64 {
	out := make(map[string]float64)
	for id, e := range s.Entries {
		if e.Deleted || e.ProbabilityOverride == nil {
			continue
		}
		out[id] = *e.ProbabilityOverride
	}
	return out
}

// maxPosition returns the highest stored position across all entries, or
// -1 for an empty state. Absent and deleted deals count: provisional
// positions handed out by Merge must never collide with any stored one.
func (s State) maxPosition() int {
	max := -1
	for _, e := range s.Entries {
		if e.Position > max {
			max = e.Position
		}
	}
	return max
}

// BuildState assembles a full view state from the board's save payload:
// the ordered deal-id list, the removed ids, and the per-deal probability
// overrides. Every referenced deal gets exactly one entry.
//
// Positions are assigned from the order list's indices. Ids that appear
// only as deleted or only with an override are placed after the ordered
// ids, in sorted-id order, so every entry holds a distinct position and
// repeated saves cannot collide.
func BuildState(order []string, deleted []string, overrides map[string]float64) (State, error) {
	st := NewState()

	for i, id := range order {
		if id == "" {
			return State{}, fmt.Errorf("order list entry %d: %w", i, ErrEmptyDealID)
		}
		if _, dup := st.Entries[id]; dup {
			return State{}, fmt.Errorf("%w: %q", ErrDuplicateDealID, id)
		}
		st.Entries[id] = Entry{Position: i}
	}

	// Collect ids that need an entry but carry no board slot.
	var extra []string
	for _, id := range deleted {
		if id == "" {
			return State{}, fmt.Errorf("deleted list: %w", ErrEmptyDealID)
		}
		if _, ok := st.Entries[id]; !ok {
			extra = append(extra, id)
		}
	}
	for id, p := range overrides {
		if id == "" {
			return State{}, fmt.Errorf("overrides: %w", ErrEmptyDealID)
		}
		if p < 0 || p > 1 {
			return State{}, fmt.Errorf("deal %q: %w (got %v)", id, ErrOverrideRange, p)
		}
		if _, ok := st.Entries[id]; !ok {
			extra = append(extra, id)
		}
	}

	sort.Strings(extra)
	next := len(order)
	for _, id := range extra {
		if _, ok := st.Entries[id]; ok {
			continue // listed in both deleted and overrides
		}
		st.Entries[id] = Entry{Position: next}
		next++
	}

	for _, id := range deleted {
		e := st.Entries[id]
		e.Deleted = true
		st.Entries[id] = e
	}
	for id, p := range overrides {
		p := p
		e := st.Entries[id]
		e.ProbabilityOverride = &p
		st.Entries[id] = e
	}

	return st, nil
}
