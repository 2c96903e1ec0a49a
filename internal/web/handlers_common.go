// This file contains shared utilities and response envelopes used across
// handlers.
package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// maxIngestBody is the maximum allowed batch request body (32MB).
const maxIngestBody = 32 * 1024 * 1024

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseTimeParam parses a query parameter as RFC 3339 or as a bare date.
// The second return reports whether the parameter was present.
func parseTimeParam(r *http.Request, name string) (time.Time, bool, error) {
	val := strings.TrimSpace(r.URL.Query().Get(name))
	if val == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true, nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid %s %q: use RFC 3339 or YYYY-MM-DD", name, val)
	}
	return t, true, nil
}

// formatWindowTime renders a window boundary for CSV export. The zero time
// means unbounded and renders empty.
func formatWindowTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// formatAmount renders a monetary sum for CSV export: whole amounts drop
// the decimals, everything else keeps two.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// dealListResponse wraps the deal listing for JSON encoding.
type dealListResponse struct {
	Deals []pipeline.Deal `json:"deals"`
	Count int             `json:"count"`
}

// unmappedLabelsResponse wraps the unmapped-label listing for JSON encoding.
type unmappedLabelsResponse struct {
	Labels []store.UnmappedLabel `json:"labels"`
	Count  int                   `json:"count"`
}

// batchListResponse wraps the ingestion history for JSON encoding.
type batchListResponse struct {
	Batches []store.Batch `json:"batches"`
	Count   int           `json:"count"`
}

// rollupResponse wraps aggregation buckets for JSON encoding.
type rollupResponse struct {
	Buckets []pipeline.Bucket `json:"buckets"`
	Count   int               `json:"count"`
}

// viewListResponse wraps the view listing for JSON encoding.
type viewListResponse struct {
	Views []store.View `json:"views"`
	Count int          `json:"count"`
}
