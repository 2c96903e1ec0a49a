package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halcyonfield/pipeboard/internal/metrics"
)

// Metrics records request counts, durations, and error counts for every
// routed request. A nil collector disables instrumentation entirely.
//
// The path label is chi's route pattern ("/api/board/{view}"), never the
// raw URL path, so per-view and per-deal URLs cannot blow up the label
// cardinality.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r)

			// The route pattern is only known after routing has run.
			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unrouted"
			}

			m.RecordRequest(r.Method, pattern, ww.status, time.Since(start).Seconds())
		})
	}
}
