// Package pipeline provides the canonical data model and pure computations
// for sales-pipeline records: label canonicalization, close-probability
// weighting, and windowed aggregation.
//
// This package is the single authority on what a stage or relevance value
// means. Raw labels from external sources (CRM exports, spreadsheets) arrive
// as free-form strings with years of accumulated synonyms; every consumer
// (dashboards, the projections board, forecasts) must agree on one
// translation or the same deal gets counted differently by different views.
// All translation happens here, once, and everything downstream operates on
// the canonical enumerations only.
//
// # Canonicalization
//
// [NormalizeStage] and [NormalizeRelevance] map raw strings to the canonical
// enumerations via closed alias tables. Matching is exact after whitespace
// trimming; there is no fuzzy matching. Unknown non-empty input maps to the
// distinguished [StageUnmapped]/[RelevanceUnmapped] value, which aggregation
// surfaces as its own bucket so data-quality regressions are visible in
// totals instead of silently absorbed by a default mapping.
//
// # Probability Weighting
//
// [DefaultProbability] assigns each canonical stage its default
// likelihood-to-close on a [0,1] scale. The mapping is total over the
// enumeration and implemented without a fallback arm: a stage added to the
// enumeration but not the table fails the exhaustiveness test rather than
// silently weighting to zero.
//
// # Aggregation
//
// [Aggregate] produces grouped, time-windowed rollups (deal counts, raw
// value sums, probability-weighted sums) from a deal snapshot. It is
// read-only, allocates its own output, and orders buckets deterministically
// so identical inputs always produce identical sequences.
//
// All functions in this package are pure: no I/O, no clocks, no hidden
// state. Persistence and transport live in internal/store and internal/web.
package pipeline
