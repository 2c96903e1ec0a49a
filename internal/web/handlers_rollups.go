package web

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/halcyonfield/pipeboard/internal/overlay"
	"github.com/halcyonfield/pipeboard/internal/pipeline"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// rollupQuery is the parsed parameter set shared by the JSON and CSV
// rollup handlers.
type rollupQuery struct {
	opts    pipeline.AggregateOptions
	from    time.Time
	to      time.Time
	monthly bool
	view    string
}

// parseRollupQuery interprets from/to/group_by/active/view. from and to
// come together or not at all; with both present the rollup becomes a
// calendar-month series, otherwise it is a single unwindowed pass.
func parseRollupQuery(r *http.Request) (rollupQuery, error) {
	var q rollupQuery

	groupBy, ok := pipeline.ParseGroupBy(r.URL.Query().Get("group_by"))
	if !ok {
		return q, fmt.Errorf("unknown group_by %q", r.URL.Query().Get("group_by"))
	}
	q.opts.GroupBy = groupBy

	if v := r.URL.Query().Get("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return q, fmt.Errorf("invalid active %q: use true or false", v)
		}
		q.opts.ActiveOnly = active
	}

	from, hasFrom, err := parseTimeParam(r, "from")
	if err != nil {
		return q, err
	}
	to, hasTo, err := parseTimeParam(r, "to")
	if err != nil {
		return q, err
	}
	switch {
	case hasFrom != hasTo:
		return q, errors.New("from and to must be provided together")
	case hasFrom:
		if to.Before(from) {
			return q, fmt.Errorf("to %s precedes from %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
		}
		q.from, q.to, q.monthly = from, to, true
	}

	q.view = strings.TrimSpace(r.URL.Query().Get("view"))
	return q, nil
}

// rollupBuckets loads the deal snapshot, applies the view overlay when one
// is named, and aggregates. In a view's context the rollup runs over that
// view's visible board (overlay-deleted deals excluded, overrides applied),
// so the board and its rollups always agree. Without a view it uses stage
// defaults over the full snapshot.
func (s *Server) rollupBuckets(ctx context.Context, q rollupQuery) ([]pipeline.Bucket, error) {
	deals, err := s.store.ListDeals(ctx, store.DealFilter{})
	if err != nil {
		return nil, err
	}

	if q.view != "" {
		st, err := s.store.LoadOverlay(ctx, q.view)
		if err != nil {
			s.recordOverlayLoad("failed")
			return nil, err
		}
		s.recordOverlayLoad("ok")

		deals = overlay.VisibleDeals(overlay.Merge(deals, st))
		q.opts.Overrides = st.Overrides()
	}

	if q.monthly {
		return pipeline.AggregateMonthly(deals, q.opts, q.from, q.to), nil
	}
	return pipeline.Aggregate(deals, q.opts), nil
}

// handleRollups returns aggregation buckets as JSON.
func (s *Server) handleRollups(w http.ResponseWriter, r *http.Request) {
	q, err := parseRollupQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets, err := s.rollupBuckets(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, rollupResponse{Buckets: buckets, Count: len(buckets)})
}

// handleRollupsExport streams the same rollup as a CSV download.
func (s *Server) handleRollupsExport(w http.ResponseWriter, r *http.Request) {
	q, err := parseRollupQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	buckets, err := s.rollupBuckets(r.Context(), q)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Set headers for streaming download
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("rollups_%s.csv", timestamp)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// Create CSV writer that writes directly to response
	csvWriter := csv.NewWriter(w)

	// Write header row first
	if err := csvWriter.Write([]string{
		"Window Start", "Window End", "Group By", "Key",
		"Count", "Value Sum", "Weighted Sum",
	}); err != nil {
		return
	}

	// Batch flushing for performance: flush every N rows
	const flushInterval = 1000

	for i, b := range buckets {
		if err := csvWriter.Write([]string{
			formatWindowTime(b.Window.From),
			formatWindowTime(b.Window.To),
			string(b.GroupBy),
			b.Key,
			strconv.Itoa(b.Count),
			formatAmount(b.ValueSum),
			formatAmount(b.WeightedSum),
		}); err != nil {
			return
		}

		if (i+1)%flushInterval == 0 {
			csvWriter.Flush()
			if err := csvWriter.Error(); err != nil {
				return
			}
			// Flush HTTP response for chunked transfer
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}

	// Final flush
	csvWriter.Flush()
}
