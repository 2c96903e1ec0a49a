package pipeline

// stageProbabilities assigns every canonical stage its default close
// probability on a [0,1] scale. The table must stay exhaustive over
// AllStages: probability_test.go walks the enumeration and fails on any
// stage missing here, so a new stage cannot silently weight to zero.
//
// Inbox, Stalled and Unmapped carry 0.0 as not-yet-probable rather than
// lost: they stay in active-pipeline counts but contribute nothing to
// projected revenue until they advance.
var stageProbabilities = map[Stage]float64{
	StageInbox:         0.0,
	StageIntroAttended: 0.25,
	StagePOABooked:     0.50,
	StageProposalSent:  0.50,
	StageLegals:        0.85,
	StageClosedWon:     1.0,
	StageClosedLost:    0.0,
	StageStalled:       0.0,
	StageNotRelevant:   0.0,
	StageUnmapped:      0.0,
}

// DefaultProbability returns the default close probability for a canonical
// stage. Projections multiply deal value by this weight unless a per-deal
// overlay override applies.
//
// The function is total over the canonical enumeration. A lookup miss can
// only mean the enumeration grew without a matching table row, which the
// exhaustiveness test catches; the zero fallback here never applies to a
// canonical stage.
func DefaultProbability(s Stage) float64 {
	return stageProbabilities[s]
}
