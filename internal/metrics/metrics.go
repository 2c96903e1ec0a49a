// Package metrics provides Prometheus collectors for pipeline observability.
//
// All collectors register against a private registry rather than the
// process-global one, so tests can construct as many instances as they
// need without duplicate-registration panics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry

	Ingest  *IngestMetrics
	HTTP    *HTTPMetrics
	Overlay *OverlayMetrics
}

// New creates a Metrics instance, initializing all collectors against a
// fresh registry. It returns an error if any collector fails to register.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	ingestMetrics, err := NewIngestMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create ingest metrics: %w", err)
	}

	httpMetrics, err := NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP metrics: %w", err)
	}

	overlayMetrics, err := NewOverlayMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create overlay metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Ingest:   ingestMetrics,
		HTTP:     httpMetrics,
		Overlay:  overlayMetrics,
	}, nil
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
