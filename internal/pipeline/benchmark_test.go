package pipeline

import (
	"fmt"
	"testing"
	"time"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

// BenchmarkNormalizeStage benchmarks stage label normalization.
// This is a hot path during batch ingestion: every record passes through it.
func BenchmarkNormalizeStage(b *testing.B) {
	testCases := []string{
		"Legals",
		"B Legals",           // legacy sort prefix
		"  Proposal Sent  ",  // whitespace
		"Closed Won",
		"Some Unknown Stage", // unmapped
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeStage(tc)
		}
	}
}

// BenchmarkNormalizeStage_Canonical benchmarks the most common case: the
// label is already canonical.
func BenchmarkNormalizeStage_Canonical(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeStage("Legals")
	}
}

// BenchmarkNormalizeStage_Unmapped benchmarks the miss path.
func BenchmarkNormalizeStage_Unmapped(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NormalizeStage("Some Unknown Stage")
	}
}

// BenchmarkNormalizeRelevance benchmarks relevance label normalization.
func BenchmarkNormalizeRelevance(b *testing.B) {
	testCases := []string{
		"Relevant",
		"Not relevant",
		"Not Relevant",
		"",
		"maybe", // unmapped
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			NormalizeRelevance(tc)
		}
	}
}

// BenchmarkDefaultProbability benchmarks the stage weight lookup.
func BenchmarkDefaultProbability(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, s := range AllStages {
			DefaultProbability(s)
		}
	}
}

// ============================================================================
// Aggregation Benchmarks
// ============================================================================

// BenchmarkAggregate benchmarks a grouped rollup over a realistic snapshot.
func BenchmarkAggregate(b *testing.B) {
	deals := benchDeals(500)
	opts := AggregateOptions{GroupBy: GroupByStage}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Aggregate(deals, opts)
	}
}

// BenchmarkAggregate_Large benchmarks a portfolio-sized snapshot.
func BenchmarkAggregate_Large(b *testing.B) {
	deals := benchDeals(5000)
	opts := AggregateOptions{GroupBy: GroupByRep}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Aggregate(deals, opts)
	}
}

// BenchmarkAggregate_WithOverrides benchmarks view-scoped weighting where a
// tenth of the deals carry probability overrides.
func BenchmarkAggregate_WithOverrides(b *testing.B) {
	deals := benchDeals(500)
	overrides := make(map[string]float64, len(deals)/10)
	for i := 0; i < len(deals); i += 10 {
		overrides[deals[i].ID] = 0.9
	}
	opts := AggregateOptions{GroupBy: GroupByStage, Overrides: overrides}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Aggregate(deals, opts)
	}
}

// BenchmarkAggregateMonthly benchmarks a year of month buckets.
func BenchmarkAggregateMonthly(b *testing.B) {
	deals := benchDeals(1000)
	opts := AggregateOptions{GroupBy: GroupByNone}
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		AggregateMonthly(deals, opts, from, to)
	}
}

// ============================================================================
// Parallel Benchmarks
// ============================================================================

// BenchmarkAggregateParallel exercises the aggregator from concurrent
// goroutines; it is pure and shares no state between calls.
func BenchmarkAggregateParallel(b *testing.B) {
	deals := benchDeals(500)
	opts := AggregateOptions{GroupBy: GroupByStage}

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			Aggregate(deals, opts)
		}
	})
}

// BenchmarkNormalizeStageParallel benchmarks parallel normalization.
func BenchmarkNormalizeStageParallel(b *testing.B) {
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			NormalizeStage("B Legals")
		}
	})
}

// ============================================================================
// Helper Functions
// ============================================================================

// benchDeals generates a deterministic snapshot spread over stages, reps,
// and months of 2025.
func benchDeals(n int) []Deal {
	reps := []string{"alice", "bob", "carol", "dave"}

	deals := make([]Deal, n)
	for i := 0; i < n; i++ {
		stage := AllStages[i%len(AllStages)]
		deals[i] = Deal{
			ID:        fmt.Sprintf("deal-%04d", i),
			Rep:       reps[i%len(reps)],
			Value:     float64(1000 + i),
			Stage:     stage,
			Relevance: RelevanceRelevant,
			CreatedAt: time.Date(2025, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC),
		}
	}
	return deals
}
