// Package web provides the HTTP server and JSON API for the pipeline board.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/halcyonfield/pipeboard/internal/config"
	"github.com/halcyonfield/pipeboard/internal/ingest"
	"github.com/halcyonfield/pipeboard/internal/metrics"
	"github.com/halcyonfield/pipeboard/internal/overlay"
	"github.com/halcyonfield/pipeboard/internal/pipeline"
	"github.com/halcyonfield/pipeboard/internal/store"
	mw "github.com/halcyonfield/pipeboard/internal/web/middleware"
)

// Store is the persistence surface the handlers consume. *store.Store
// satisfies it; tests substitute a fake.
type Store interface {
	Ping(ctx context.Context) error
	ListDeals(ctx context.Context, filter store.DealFilter) ([]pipeline.Deal, error)
	UnmappedStageLabels(ctx context.Context) ([]store.UnmappedLabel, error)
	ListBatches(ctx context.Context, limit int) ([]store.Batch, error)
	LoadOverlay(ctx context.Context, view string) (overlay.State, error)
	SaveOverlay(ctx context.Context, view string, st overlay.State) (string, error)
	ListViews(ctx context.Context) ([]store.View, error)
}

// Server is the HTTP server for the pipeline board service.
type Server struct {
	cfg     *config.Config
	store   Store
	ingest  *ingest.Service
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance. The metrics collector may be nil,
// which disables the /metrics endpoint and request instrumentation.
func NewServer(cfg *config.Config, st Store, svc *ingest.Service, m *metrics.Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		ingest:  svc,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)

	// Behind a known proxy fleet, take the client IP from forwarded headers
	// only when the connection itself comes from a trusted CIDR. With no
	// proxies configured, fall back to chi's permissive RealIP.
	if len(s.cfg.Security.TrustedProxies) > 0 {
		s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	} else {
		s.router.Use(middleware.RealIP)
	}

	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders)

	if s.metrics != nil {
		s.router.Use(mw.Metrics(s.metrics.HTTP))
	}

	if s.cfg.Rate.Enabled {
		limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
		s.router.Use(limiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Probes and telemetry
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		// Deal listing and data quality
		r.Get("/deals", s.handleListDeals)
		r.Get("/labels/unmapped", s.handleUnmappedLabels)

		// Rollups
		r.Get("/rollups", s.handleRollups)
		r.Get("/rollups/export", s.handleRollupsExport)

		// Ingestion history and queue state
		r.Get("/batches", s.handleListBatches)
		r.Get("/batches/queue", s.handleBatchQueue)

		// Board views
		r.Get("/views", s.handleListViews)
		r.Get("/board/{view}", s.handleBoard)

		// Mutations sit behind the API key check when one is configured.
		r.Group(func(r chi.Router) {
			r.Use(mw.APIKeyAuth(&s.cfg.Security))

			r.Put("/board/{view}", s.handleSaveBoard)

			r.Group(func(r chi.Router) {
				// The batch endpoint gets its own, tighter rate limit.
				if s.cfg.Rate.Enabled {
					ingestLimiter := newRateLimiter(s.cfg.Rate.IngestLimit, time.Minute)
					r.Use(ingestLimiter.middleware)
				}
				r.Post("/batches", s.handleIngestBatch)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.cfg.Server.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The API serves JSON and CSV only; forbid all resource loading
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	// Check if we have tokens left
	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// Use X-Real-IP if set (by RealIP middleware)
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response.
// Logs the full error server-side but returns a sanitized message to the client.
func writeError(w http.ResponseWriter, status int, message string) {
	// Log full error for debugging/audit
	slog.Warn("http error", "status", status, "message", message)

	// Sanitize before sending to client
	safeMessage := sanitizeErrorMessage(message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, safeMessage)
}

// sanitizeErrorMessage keeps connection strings, SQL fragments, and file
// paths out of client-visible messages. Handler-authored messages pass
// through untouched.
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range []string{"postgres://", "postgresql://", "sqlstate", "syntax error", "dial tcp"} {
		if strings.Contains(lower, marker) {
			return "internal error"
		}
	}
	return message
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
