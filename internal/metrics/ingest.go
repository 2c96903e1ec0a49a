package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for batch ingestion.
type IngestMetrics struct {
	registry *prometheus.Registry

	recordsTotal        *prometheus.CounterVec
	rejectionsTotal     *prometheus.CounterVec
	unmappedStagesTotal prometheus.Counter
	batchesTotal        *prometheus.CounterVec
	batchDuration       prometheus.Histogram
	batchSize           prometheus.Histogram
}

// NewIngestMetrics creates and registers new ingest metrics.
func NewIngestMetrics(registry *prometheus.Registry) (*IngestMetrics, error) {
	m := &IngestMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *IngestMetrics) initMetrics() {
	m.recordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_records_total",
			Help: "Total number of deal records processed by ingestion",
		},
		[]string{"status"}, // status: accepted, rejected
	)

	m.rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rejections_total",
			Help: "Total number of rejected deal records by reason",
		},
		[]string{"reason"}, // reason: missing_id, negative_value, missing_created_at, relevance_all
	)

	m.unmappedStagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_unmapped_stages_total",
			Help: "Total number of accepted records whose raw stage label had no canonical mapping",
		},
	)

	m.batchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_batches_total",
			Help: "Total number of ingest batches",
		},
		[]string{"status"}, // status: committed, failed, rejected
	)

	m.batchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_duration_seconds",
			Help:    "Time taken to process an ingest batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	m.batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_batch_size_records",
			Help:    "Number of records per ingest batch",
			Buckets: prometheus.ExponentialBuckets(1, 10, 6), // 1 to 100k records
		},
	)
}

func (m *IngestMetrics) getCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.recordsTotal,
		m.rejectionsTotal,
		m.unmappedStagesTotal,
		m.batchesTotal,
		m.batchDuration,
		m.batchSize,
	}
}

// Describe implements the Collector interface.
func (m *IngestMetrics) Describe(ch chan<- *prometheus.Desc) {
	for _, collector := range m.getCollectors() {
		collector.Describe(ch)
	}
}

// Collect implements the Collector interface.
func (m *IngestMetrics) Collect(ch chan<- prometheus.Metric) {
	for _, collector := range m.getCollectors() {
		collector.Collect(ch)
	}
}

// RecordAccepted records n accepted deal records.
func (m *IngestMetrics) RecordAccepted(n int) {
	m.recordsTotal.WithLabelValues("accepted").Add(float64(n))
}

// RecordRejection records one rejected record with its reason.
func (m *IngestMetrics) RecordRejection(reason string) {
	m.recordsTotal.WithLabelValues("rejected").Inc()
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordUnmappedStage records an accepted record that fell into the
// unmapped stage bucket.
func (m *IngestMetrics) RecordUnmappedStage() {
	m.unmappedStagesTotal.Inc()
}

// RecordBatch records a completed batch with its outcome and duration.
func (m *IngestMetrics) RecordBatch(status string, records int, duration float64) {
	m.batchesTotal.WithLabelValues(status).Inc()
	m.batchDuration.Observe(duration)
	m.batchSize.Observe(float64(records))
}
