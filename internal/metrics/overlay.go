package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OverlayMetrics contains Prometheus metrics for board overlay operations.
type OverlayMetrics struct {
	registry *prometheus.Registry

	savesTotal    *prometheus.CounterVec
	loadsTotal    *prometheus.CounterVec
	mergeDuration prometheus.Histogram
}

// NewOverlayMetrics creates and registers new overlay metrics.
func NewOverlayMetrics(registry *prometheus.Registry) (*OverlayMetrics, error) {
	m := &OverlayMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *OverlayMetrics) initMetrics() {
	m.savesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_saves_total",
			Help: "Total number of board overlay save operations",
		},
		[]string{"status"}, // status: success, invalid, error
	)

	m.loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "overlay_loads_total",
			Help: "Total number of board overlay load operations",
		},
		[]string{"status"}, // status: success, error
	)

	m.mergeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "overlay_merge_duration_seconds",
			Help:    "Time taken to merge live deals with a board overlay",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
		},
	)
}

func (m *OverlayMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.savesTotal,
		m.loadsTotal,
		m.mergeDuration,
	}
}

// Describe implements the Collector interface.
func (m *OverlayMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface.
func (m *OverlayMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordSave records a board overlay save with its outcome.
func (m *OverlayMetrics) RecordSave(status string) {
	m.savesTotal.WithLabelValues(status).Inc()
}

// RecordLoad records a board overlay load with its outcome.
func (m *OverlayMetrics) RecordLoad(status string) {
	m.loadsTotal.WithLabelValues(status).Inc()
}

// RecordMergeDuration records the time taken by one merge.
func (m *OverlayMetrics) RecordMergeDuration(duration float64) {
	m.mergeDuration.Observe(duration)
}
