package pipeline

import (
	"sort"
	"time"
)

// GroupBy selects the dimension an aggregation partitions by.
type GroupBy string

const (
	GroupByNone      GroupBy = "none"
	GroupByRep       GroupBy = "rep"
	GroupByStage     GroupBy = "stage"
	GroupByRelevance GroupBy = "relevance"
)

// ParseGroupBy interprets a query-parameter value as a GroupBy. An empty
// string means no grouping.
func ParseGroupBy(s string) (GroupBy, bool) {
	switch GroupBy(s) {
	case "", GroupByNone:
		return GroupByNone, true
	case GroupByRep:
		return GroupByRep, true
	case GroupByStage:
		return GroupByStage, true
	case GroupByRelevance:
		return GroupByRelevance, true
	}
	return "", false
}

// Bucket is one (window, dimension-value) rollup. Buckets are derived on
// every query and never persisted.
type Bucket struct {
	Window  TimeWindow `json:"window"`
	GroupBy GroupBy    `json:"group_by"`

	// Key is the dimension value this bucket covers: a canonical stage or
	// relevance identifier, a rep name, or empty for ungrouped totals.
	Key string `json:"key"`

	Count    int     `json:"count"`
	ValueSum float64 `json:"value_sum"`

	// WeightedSum is Σ value × effective close probability.
	WeightedSum float64 `json:"weighted_sum"`
}

// AggregateOptions control one Aggregate call.
type AggregateOptions struct {
	// Window restricts membership by each deal's WindowTime. The zero
	// window is unbounded and admits every deal.
	Window TimeWindow

	// GroupBy partitions the output; GroupByNone yields a single bucket.
	GroupBy GroupBy

	// ActiveOnly excludes the closed/not-relevant terminal stages, using
	// the one derived predicate every view shares.
	ActiveOnly bool

	// Overrides maps deal id to a [0,1] probability and takes precedence
	// over stage defaults. Populate it from a view's overlay when the
	// aggregation runs in that view's context; leave nil for portfolio
	// and company-wide rollups.
	Overrides map[string]float64
}

// Aggregate rolls a deal snapshot up into buckets.
//
// Only dimension values with at least one member produce a bucket, except
// under GroupByNone, which always yields exactly one bucket so an empty
// window still reports zeros. Output order is deterministic: count
// descending, ties broken by canonical enumeration order for stages,
// declaration order for relevances, and lexically for reps, so identical
// inputs always produce identical sequences.
func Aggregate(deals []Deal, opts AggregateOptions) []Bucket {
	byKey := make(map[string]*Bucket)

	for _, d := range deals {
		if opts.ActiveOnly && !d.Stage.Active() {
			continue
		}
		if !opts.Window.Contains(d.WindowTime()) {
			continue
		}

		key := bucketKey(d, opts.GroupBy)
		b, ok := byKey[key]
		if !ok {
			b = &Bucket{Window: opts.Window, GroupBy: opts.GroupBy, Key: key}
			byKey[key] = b
		}

		p, overridden := opts.Overrides[d.ID]
		if !overridden {
			p = DefaultProbability(d.Stage)
		}

		b.Count++
		b.ValueSum += d.Value
		b.WeightedSum += d.Value * p
	}

	if opts.GroupBy == GroupByNone && len(byKey) == 0 {
		return []Bucket{{Window: opts.Window, GroupBy: GroupByNone}}
	}

	buckets := make([]Bucket, 0, len(byKey))
	for _, b := range byKey {
		buckets = append(buckets, *b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return lessByDimension(opts.GroupBy, buckets[i].Key, buckets[j].Key)
	})

	return buckets
}

// AggregateMonthly runs one Aggregate per calendar month from the month of
// from through the month of to, concatenating the buckets oldest month
// first. The Window field of opts is ignored; each month supplies its own.
func AggregateMonthly(deals []Deal, opts AggregateOptions, from, to time.Time) []Bucket {
	var out []Bucket
	for _, w := range MonthWindows(from, to) {
		monthOpts := opts
		monthOpts.Window = w
		out = append(out, Aggregate(deals, monthOpts)...)
	}
	return out
}

func bucketKey(d Deal, g GroupBy) string {
	switch g {
	case GroupByRep:
		return d.Rep
	case GroupByStage:
		return string(d.Stage)
	case GroupByRelevance:
		return string(d.Relevance)
	default:
		return ""
	}
}

func lessByDimension(g GroupBy, a, b string) bool {
	switch g {
	case GroupByStage:
		return Stage(a).Order() < Stage(b).Order()
	case GroupByRelevance:
		return Relevance(a).Order() < Relevance(b).Order()
	default:
		return a < b
	}
}
