package pipeline

import "strings"

// Relevance is a canonical meeting/deal relevance category.
type Relevance string

const (
	RelevanceRelevant     Relevance = "Relevant"
	RelevanceQuestionable Relevance = "Questionable"
	RelevanceNotRelevant  Relevance = "NotRelevant"
	RelevanceUnassigned   Relevance = "Unassigned"
	RelevanceUnmapped     Relevance = "Unmapped"
)

// AllRelevances lists the canonical relevance categories plus the Unmapped
// sentinel, in display order.
var AllRelevances = []Relevance{
	RelevanceRelevant,
	RelevanceQuestionable,
	RelevanceNotRelevant,
	RelevanceUnassigned,
	RelevanceUnmapped,
}

// relevanceAliases is the closed alias table for relevance labels. The
// source data carries both "Not relevant" and "Not Relevant"; matching is
// case-sensitive, so both spellings are listed rather than folded.
var relevanceAliases = map[string]Relevance{
	"Relevant":     RelevanceRelevant,
	"Questionable": RelevanceQuestionable,
	"Not relevant": RelevanceNotRelevant,
	"Not Relevant": RelevanceNotRelevant,
	"Unassigned":   RelevanceUnassigned,
}

// relevanceOrder indexes AllRelevances for ordering comparisons.
var relevanceOrder = func() map[Relevance]int {
	m := make(map[Relevance]int, len(AllRelevances))
	for i, r := range AllRelevances {
		m[r] = i
	}
	return m
}()

// NormalizeRelevance maps a raw relevance label to its canonical category.
//
// Empty input means the source never assigned a relevance and yields
// RelevanceUnassigned. Unknown non-empty input yields RelevanceUnmapped,
// surfaced in aggregation the same way unmapped stages are.
//
// The UI filter sentinel "all" is not a value and must be rejected before
// reaching this function; the ingestion boundary enforces that.
func NormalizeRelevance(raw string) Relevance {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RelevanceUnassigned
	}
	if r, ok := relevanceAliases[trimmed]; ok {
		return r
	}
	return RelevanceUnmapped
}

// ParseRelevance interprets s as a canonical relevance identifier.
func ParseRelevance(s string) (Relevance, bool) {
	r := Relevance(s)
	if _, ok := relevanceOrder[r]; ok {
		return r, true
	}
	return "", false
}

// Order returns the relevance's position in display order. Unknown values
// sort last.
func (r Relevance) Order() int {
	if i, ok := relevanceOrder[r]; ok {
		return i
	}
	return len(AllRelevances)
}

func (r Relevance) String() string { return string(r) }
