// Package ingest is the admission boundary for pipeline snapshots. It
// validates tokenized deal records, normalizes their labels to the
// canonical sets, stamps them with the batch's ingestion timestamp, and
// upserts them last-write-wins. Every run leaves an audit row behind.
//
// Contract preconditions are enforced here, never in the core: records
// with a missing id, a negative value, or a missing creation time are
// rejected row-by-row with reasons, as is the UI filter sentinel "all"
// showing up as a relevance label. Unknown stage labels are NOT errors;
// they map to the unmapped bucket and are counted for review.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonfield/pipeboard/internal/logging"
	"github.com/halcyonfield/pipeboard/internal/metrics"
	"github.com/halcyonfield/pipeboard/internal/pipeline"
	"github.com/halcyonfield/pipeboard/internal/store"
)

// ErrEmptyBatch is returned when a batch carries no records at all. A
// snapshot source posting nothing is a collaborator fault, not a run.
var ErrEmptyBatch = errors.New("batch contains no records")

// ErrBatchTooLarge is returned when a batch exceeds the configured record
// limit.
var ErrBatchTooLarge = errors.New("batch exceeds the record limit")

// Rejection reasons, also used as metric labels.
const (
	ReasonMissingID        = "missing_id"
	ReasonNegativeValue    = "negative_value"
	ReasonMissingCreatedAt = "missing_created_at"
	ReasonRelevanceAll     = "relevance_all"
)

// Record is one tokenized snapshot row as posted by a source. Stage and
// relevance arrive as the source's raw labels; canonicalization happens
// here.
type Record struct {
	ID             string     `json:"id"`
	Rep            string     `json:"rep"`
	Value          float64    `json:"value"`
	RawStage       string     `json:"stage"`
	RawRelevance   string     `json:"relevance"`
	CreatedAt      time.Time  `json:"created_at"`
	StageEnteredAt *time.Time `json:"stage_entered_at,omitempty"`
}

// RejectedRecord reports one record that failed admission, by its position
// in the posted batch.
type RejectedRecord struct {
	Index  int    `json:"index"`
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Result summarizes one admitted batch.
type Result struct {
	BatchID    string           `json:"batch_id"`
	Source     string           `json:"source"`
	Received   int              `json:"received"`
	Accepted   int              `json:"accepted"`
	Rejected   []RejectedRecord `json:"rejected,omitempty"`
	Unmapped   int              `json:"unmapped"`
	ReceivedAt time.Time        `json:"received_at"`
}

// Store is the persistence surface the ingest service needs.
type Store interface {
	UpsertDeals(ctx context.Context, deals []pipeline.Deal) error
	InsertBatch(ctx context.Context, b store.Batch) error
}

// Service admits snapshot batches.
type Service struct {
	store           Store
	limiter         *BatchLimiter
	metrics         *metrics.IngestMetrics
	maxBatchRecords int
}

// NewService creates the ingestion service. A nil metrics collector
// disables instrumentation; maxBatchRecords <= 0 disables the size limit.
func NewService(st Store, limiter *BatchLimiter, m *metrics.IngestMetrics, maxBatchRecords int) *Service {
	if limiter == nil {
		limiter = NewBatchLimiter(DefaultMaxConcurrentBatches, DefaultMaxWaitTime)
	}
	return &Service{
		store:           st,
		limiter:         limiter,
		metrics:         m,
		maxBatchRecords: maxBatchRecords,
	}
}

// Limiter exposes the batch limiter for shutdown draining and status.
func (s *Service) Limiter() *BatchLimiter {
	return s.limiter
}

// IngestBatch validates, normalizes and persists one snapshot batch.
//
// Row-level failures do not abort the batch; they are reported in the
// result with reasons while the valid rows proceed. Batch-level failures
// (empty batch, oversized batch, storage errors) abort with an error and
// persist nothing.
func (s *Service) IngestBatch(ctx context.Context, source string, records []Record) (Result, error) {
	if len(records) == 0 {
		return Result{}, ErrEmptyBatch
	}
	if s.maxBatchRecords > 0 && len(records) > s.maxBatchRecords {
		return Result{}, fmt.Errorf("%w: %d records, limit %d", ErrBatchTooLarge, len(records), s.maxBatchRecords)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return Result{}, err
	}
	defer s.limiter.Release()

	start := time.Now()
	receivedAt := start.UTC()
	batchID := uuid.New().String()

	result := Result{
		BatchID:    batchID,
		Source:     source,
		Received:   len(records),
		ReceivedAt: receivedAt,
	}

	deals := make([]pipeline.Deal, 0, len(records))
	for i, r := range records {
		if reason, ok := validateRecord(r); !ok {
			result.Rejected = append(result.Rejected, RejectedRecord{
				Index:  i,
				ID:     strings.TrimSpace(r.ID),
				Reason: reason,
			})
			if s.metrics != nil {
				s.metrics.RecordRejection(reason)
			}
			continue
		}

		d := pipeline.Deal{
			ID:             strings.TrimSpace(r.ID),
			Rep:            strings.TrimSpace(r.Rep),
			Value:          r.Value,
			RawStage:       r.RawStage,
			Stage:          pipeline.NormalizeStage(r.RawStage),
			RawRelevance:   r.RawRelevance,
			Relevance:      pipeline.NormalizeRelevance(r.RawRelevance),
			CreatedAt:      r.CreatedAt,
			StageEnteredAt: r.StageEnteredAt,
			IngestedAt:     receivedAt,
		}
		if d.Stage == pipeline.StageUnmapped {
			result.Unmapped++
			if s.metrics != nil {
				s.metrics.RecordUnmappedStage()
			}
		}
		deals = append(deals, d)
	}
	result.Accepted = len(deals)

	if err := s.store.UpsertDeals(ctx, deals); err != nil {
		if s.metrics != nil {
			s.metrics.RecordBatch("failed", result.Received, time.Since(start).Seconds())
		}
		return Result{}, fmt.Errorf("persist batch %s: %w", batchID, err)
	}

	batch := store.Batch{
		ID:         batchID,
		Source:     source,
		Received:   result.Received,
		Accepted:   result.Accepted,
		Rejected:   len(result.Rejected),
		Unmapped:   result.Unmapped,
		ReceivedAt: receivedAt,
	}
	if err := s.store.InsertBatch(ctx, batch); err != nil {
		if s.metrics != nil {
			s.metrics.RecordBatch("failed", result.Received, time.Since(start).Seconds())
		}
		return Result{}, fmt.Errorf("record batch %s: %w", batchID, err)
	}

	if s.metrics != nil {
		s.metrics.RecordAccepted(result.Accepted)
		s.metrics.RecordBatch("committed", result.Received, time.Since(start).Seconds())
	}

	logging.FromContext(ctx).Info("batch ingested",
		"batch_id", batchID,
		"source", source,
		"received", result.Received,
		"accepted", result.Accepted,
		"rejected", len(result.Rejected),
		"unmapped", result.Unmapped,
		"duration", time.Since(start),
	)

	return result, nil
}

// validateRecord checks one record against the admission preconditions.
// Returns the rejection reason and false when the record must not enter
// the store.
func validateRecord(r Record) (string, bool) {
	if strings.TrimSpace(r.ID) == "" {
		return ReasonMissingID, false
	}
	if r.Value < 0 {
		return ReasonNegativeValue, false
	}
	if r.CreatedAt.IsZero() {
		return ReasonMissingCreatedAt, false
	}
	// "all" is the dashboards' filter wildcard; stored it would corrupt
	// every relevance rollup.
	if strings.TrimSpace(r.RawRelevance) == "all" {
		return ReasonRelevanceAll, false
	}
	return "", true
}
