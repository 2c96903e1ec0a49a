package overlay

import (
	"errors"
	"testing"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
)

func fptr(f float64) *float64 { return &f }

// ----------------------------------------------------------------------------
// Entry Tests
// ----------------------------------------------------------------------------

func TestEntryEffectiveProbability(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		stage pipeline.Stage
		want  float64
	}{
		{
			name:  "override wins over stage default",
			entry: Entry{ProbabilityOverride: fptr(0.9)},
			stage: pipeline.StageProposalSent,
			want:  0.9,
		},
		{
			name:  "no override falls back to stage default",
			entry: Entry{},
			stage: pipeline.StageLegals,
			want:  0.85,
		},
		{
			name:  "zero override is a real override",
			entry: Entry{ProbabilityOverride: fptr(0)},
			stage: pipeline.StageLegals,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.EffectiveProbability(tt.stage); got != tt.want {
				t.Errorf("EffectiveProbability(%q) = %v, want %v", tt.stage, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// State Tests
// ----------------------------------------------------------------------------

func TestStateValidate(t *testing.T) {
	ok := NewState()
	ok.Entries["d1"] = Entry{Position: 0, ProbabilityOverride: fptr(0.5)}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() on well-formed state = %v, want nil", err)
	}

	stale := State{SchemaVersion: 99, Entries: map[string]Entry{}}
	if err := stale.Validate(); !errors.Is(err, ErrSchemaVersion) {
		t.Errorf("Validate() with unknown schema version = %v, want ErrSchemaVersion", err)
	}

	bad := NewState()
	bad.Entries["d1"] = Entry{ProbabilityOverride: fptr(1.5)}
	if err := bad.Validate(); !errors.Is(err, ErrOverrideRange) {
		t.Errorf("Validate() with out-of-range override = %v, want ErrOverrideRange", err)
	}
}

func TestStateOverrides(t *testing.T) {
	st := NewState()
	st.Entries["kept"] = Entry{Position: 0, ProbabilityOverride: fptr(0.7)}
	st.Entries["deleted"] = Entry{Position: 1, Deleted: true, ProbabilityOverride: fptr(0.4)}
	st.Entries["plain"] = Entry{Position: 2}

	got := st.Overrides()
	if len(got) != 1 {
		t.Fatalf("Overrides() returned %d entries, want 1", len(got))
	}
	if got["kept"] != 0.7 {
		t.Errorf("Overrides()[kept] = %v, want 0.7", got["kept"])
	}
}

// ----------------------------------------------------------------------------
// BuildState Tests
// ----------------------------------------------------------------------------

func TestBuildState(t *testing.T) {
	st, err := BuildState(
		[]string{"d3", "d1", "d2"},
		[]string{"d2", "gone"},
		map[string]float64{"d1": 0.9},
	)
	if err != nil {
		t.Fatalf("BuildState() error = %v", err)
	}

	if st.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", st.SchemaVersion, SchemaVersion)
	}

	// Positions follow the order list
	if st.Entries["d3"].Position != 0 || st.Entries["d1"].Position != 1 || st.Entries["d2"].Position != 2 {
		t.Errorf("positions = d3:%d d1:%d d2:%d, want 0/1/2",
			st.Entries["d3"].Position, st.Entries["d1"].Position, st.Entries["d2"].Position)
	}

	// Deletion applies on top of ordering
	if !st.Entries["d2"].Deleted {
		t.Error("d2 should be deleted")
	}

	// An id only in the deleted list still gets an entry, placed after
	// the ordered ids
	gone, ok := st.Entries["gone"]
	if !ok {
		t.Fatal("deleted-only id has no entry")
	}
	if !gone.Deleted {
		t.Error("deleted-only entry not flagged deleted")
	}
	if gone.Position != 3 {
		t.Errorf("deleted-only entry Position = %d, want 3 (after ordered ids)", gone.Position)
	}

	if o := st.Entries["d1"].ProbabilityOverride; o == nil || *o != 0.9 {
		t.Errorf("d1 override = %v, want 0.9", o)
	}
}

func TestBuildState_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		order     []string
		deleted   []string
		overrides map[string]float64
	}{
		{name: "duplicate order id", order: []string{"d1", "d1"}},
		{name: "empty order id", order: []string{""}},
		{name: "empty deleted id", deleted: []string{""}},
		{name: "override above one", overrides: map[string]float64{"d1": 1.01}},
		{name: "negative override", overrides: map[string]float64{"d1": -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildState(tt.order, tt.deleted, tt.overrides); err == nil {
				t.Error("BuildState() error = nil, want rejection")
			}
		})
	}
}

func TestBuildState_DistinctPositions(t *testing.T) {
	st, err := BuildState(
		[]string{"a", "b"},
		[]string{"x"},
		map[string]float64{"y": 0.5, "z": 0.25},
	)
	if err != nil {
		t.Fatalf("BuildState() error = %v", err)
	}

	seen := make(map[int]string)
	for id, e := range st.Entries {
		if other, dup := seen[e.Position]; dup {
			t.Errorf("position %d assigned to both %q and %q", e.Position, other, id)
		}
		seen[e.Position] = id
	}
}
