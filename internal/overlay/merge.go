package overlay

import (
	"sort"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
)

// BoardEntry is one merged board row: a live deal joined with its overlay
// state. The board UI renders Visible entries in sequence order and treats
// Visible=false as absent; the hidden tail exists so callers can audit
// what the overlay is suppressing.
type BoardEntry struct {
	Deal pipeline.Deal `json:"deal"`

	// Probability is the effective close probability: the view's
	// override when present, else the stage default.
	Probability float64 `json:"probability"`

	// Position is the entry's board slot. For untracked deals it is a
	// provisional slot past every stored position; saving the board
	// makes it permanent.
	Position int `json:"position"`

	Visible bool `json:"visible"`
}

// Merge reconciles a live deal snapshot with a view's overlay state.
//
// Each live deal produces exactly one BoardEntry. Overlay-deleted deals
// are never part of the visible sequence, no matter how often ingestion
// rewrites them; they trail the output with Visible=false, ordered by
// deal id. Visible deals order by stored position (ties by deal id), with
// untracked deals following in snapshot-arrival order under provisional
// positions drawn from a counter starting past the highest stored
// position, so a later save cannot collide with existing slots.
//
// Merge is pure: it never modifies st, and calling it twice with the same
// inputs yields identical output. Overlay entries whose deal id is absent
// from live contribute nothing but stay in st untouched.
func Merge(live []pipeline.Deal, st State) []BoardEntry {
	var visible, hidden []BoardEntry

	next := st.maxPosition() + 1
	for _, d := range live {
		e, tracked := st.Entries[d.ID]

		switch {
		case tracked && e.Deleted:
			hidden = append(hidden, BoardEntry{
				Deal:        d,
				Probability: e.EffectiveProbability(d.Stage),
				Position:    e.Position,
			})
		case tracked:
			visible = append(visible, BoardEntry{
				Deal:        d,
				Probability: e.EffectiveProbability(d.Stage),
				Position:    e.Position,
				Visible:     true,
			})
		default:
			visible = append(visible, BoardEntry{
				Deal:        d,
				Probability: pipeline.DefaultProbability(d.Stage),
				Position:    next,
				Visible:     true,
			})
			next++
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Position != visible[j].Position {
			return visible[i].Position < visible[j].Position
		}
		return visible[i].Deal.ID < visible[j].Deal.ID
	})
	sort.SliceStable(hidden, func(i, j int) bool {
		return hidden[i].Deal.ID < hidden[j].Deal.ID
	})

	return append(visible, hidden...)
}

// VisibleDeals returns the deals of the visible entries, in board order.
// View-scoped aggregation runs over this slice with State.Overrides so
// rollups and the board always agree on which deals exist.
func VisibleDeals(entries []BoardEntry) []pipeline.Deal {
	deals := make([]pipeline.Deal, 0, len(entries))
	for _, e := range entries {
		if e.Visible {
			deals = append(deals, e.Deal)
		}
	}
	return deals
}
