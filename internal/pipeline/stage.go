package pipeline

import "strings"

// Stage is a canonical deal stage. Raw source labels are translated into
// these values by NormalizeStage and are never compared directly anywhere
// else in the system.
type Stage string

// Canonical stages in funnel order. StageUnmapped is the sentinel for raw
// labels outside the known-variant set; it is a first-class bucket in
// aggregation, never hidden.
const (
	StageInbox         Stage = "Inbox"
	StageIntroAttended Stage = "IntroAttended"
	StagePOABooked     Stage = "POABooked"
	StageProposalSent  Stage = "ProposalSent"
	StageLegals        Stage = "Legals"
	StageClosedWon     Stage = "ClosedWon"
	StageClosedLost    Stage = "ClosedLost"
	StageStalled       Stage = "Stalled"
	StageNotRelevant   Stage = "NotRelevant"
	StageUnmapped      Stage = "Unmapped"
)

// AllStages lists every canonical stage, including the Unmapped sentinel,
// in canonical enumeration order. This order is the tie-break for
// aggregation output and the display order for stage-grouped views.
var AllStages = []Stage{
	StageInbox,
	StageIntroAttended,
	StagePOABooked,
	StageProposalSent,
	StageLegals,
	StageClosedWon,
	StageClosedLost,
	StageStalled,
	StageNotRelevant,
	StageUnmapped,
}

// stageAliases is the closed alias table mapping every known raw stage
// variant to its canonical stage. The single-letter prefixes ("A Closed",
// "B Legals", ...) are a sort hack from the legacy CRM and carry no meaning
// beyond identifying the stage.
//
// The table is deliberately package-private: adding a variant here is the
// only way to extend the mapping, so call sites cannot grow their own
// string comparisons again.
var stageAliases = map[string]Stage{
	"Inbox":            StageInbox,
	"New":              StageInbox,
	"Intro Attended":   StageIntroAttended,
	"E Intro Attended": StageIntroAttended,
	"POA Booked":       StagePOABooked,
	"D POA Booked":     StagePOABooked,
	"Proposal Sent":    StageProposalSent,
	"C Proposal Sent":  StageProposalSent,
	"Legals":           StageLegals,
	"B Legals":         StageLegals,
	"Won":              StageClosedWon,
	"Signed":           StageClosedWon,
	"Closed Won":       StageClosedWon,
	"A Closed":         StageClosedWon,
	"Lost":             StageClosedLost,
	"Closed Lost":      StageClosedLost,
	"Stalled":          StageStalled,
	"On Hold":          StageStalled,
	"Not Relevant":     StageNotRelevant,
}

// closedStages is the terminal set excluded from active-pipeline views.
// Every view derives its exclusion from this one set so no view's filter
// can drift from another's.
var closedStages = map[Stage]bool{
	StageClosedWon:   true,
	StageClosedLost:  true,
	StageNotRelevant: true,
}

// stageOrder indexes AllStages for ordering comparisons.
var stageOrder = func() map[Stage]int {
	m := make(map[Stage]int, len(AllStages))
	for i, s := range AllStages {
		m[s] = i
	}
	return m
}()

// NormalizeStage maps a raw stage label to its canonical stage.
//
// Matching is exact and case-sensitive against the closed alias table after
// leading/trailing whitespace is trimmed. Anything outside the table,
// including an empty label, yields StageUnmapped.
func NormalizeStage(raw string) Stage {
	if s, ok := stageAliases[strings.TrimSpace(raw)]; ok {
		return s
	}
	return StageUnmapped
}

// ParseStage interprets s as a canonical stage identifier (e.g. "POABooked").
// It is for query parameters and stored values, not raw source labels;
// use NormalizeStage for those.
func ParseStage(s string) (Stage, bool) {
	st := Stage(s)
	if _, ok := stageOrder[st]; ok {
		return st, true
	}
	return "", false
}

// Active reports whether the stage belongs to the active pipeline, defined
// as the enumeration minus the closed/not-relevant terminal set. Unmapped
// counts as active so unresolved labels stay visible in working views.
func (s Stage) Active() bool {
	return !closedStages[s]
}

// Order returns the stage's position in canonical enumeration order.
// Unknown values sort after every canonical stage.
func (s Stage) Order() int {
	if i, ok := stageOrder[s]; ok {
		return i
	}
	return len(AllStages)
}

func (s Stage) String() string { return string(s) }
