package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/halcyonfield/pipeboard/internal/pipeline"
)

const upsertDealSQL = `
INSERT INTO deals (id, rep, value, raw_stage, stage, raw_relevance, relevance,
                   created_at, stage_entered_at, ingested_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    rep              = EXCLUDED.rep,
    value            = EXCLUDED.value,
    raw_stage        = EXCLUDED.raw_stage,
    stage            = EXCLUDED.stage,
    raw_relevance    = EXCLUDED.raw_relevance,
    relevance        = EXCLUDED.relevance,
    created_at       = EXCLUDED.created_at,
    stage_entered_at = EXCLUDED.stage_entered_at,
    ingested_at      = EXCLUDED.ingested_at
WHERE deals.ingested_at <= EXCLUDED.ingested_at`

const selectDealColumns = `
SELECT id, rep, value, raw_stage, stage, raw_relevance, relevance,
       created_at, stage_entered_at, ingested_at
FROM deals`

// UpsertDeals writes a batch of deals in one transaction. Re-ingestion of a
// known id is last-write-wins by ingestion timestamp: a row already carrying
// a newer ingested_at is left untouched.
func (s *Store) UpsertDeals(ctx context.Context, deals []pipeline.Deal) error {
	if len(deals) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, d := range deals {
		_, err := tx.Exec(ctx, upsertDealSQL,
			d.ID,
			d.Rep,
			d.Value,
			d.RawStage,
			string(d.Stage),
			d.RawRelevance,
			string(d.Relevance),
			d.CreatedAt,
			ToPgTimestamptz(d.StageEnteredAt),
			d.IngestedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert deal %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DealFilter narrows ListDeals output. Zero values mean no filtering on
// that field.
type DealFilter struct {
	Stage pipeline.Stage
	Rep   string
}

// ListDeals returns deals matching the filter, ordered by creation time
// then id for deterministic output.
func (s *Store) ListDeals(ctx context.Context, filter DealFilter) ([]pipeline.Deal, error) {
	query := selectDealColumns + `
WHERE ($1 = '' OR stage = $1)
  AND ($2 = '' OR rep = $2)
ORDER BY created_at, id`

	rows, err := s.pool.Query(ctx, query, string(filter.Stage), filter.Rep)
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer rows.Close()

	var deals []pipeline.Deal
	for rows.Next() {
		var (
			d         pipeline.Deal
			stage     string
			relevance string
			enteredAt pgtype.Timestamptz
		)
		if err := rows.Scan(&d.ID, &d.Rep, &d.Value, &d.RawStage, &stage,
			&d.RawRelevance, &relevance, &d.CreatedAt, &enteredAt, &d.IngestedAt); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		d.Stage = pipeline.Stage(stage)
		d.Relevance = pipeline.Relevance(relevance)
		d.StageEnteredAt = PgTimestamptzToPtr(enteredAt)
		deals = append(deals, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	return deals, nil
}

// UnmappedLabel describes a raw stage label that failed canonical mapping,
// with how often and when it showed up. Surfaced for data-quality review.
type UnmappedLabel struct {
	RawStage  string    `json:"raw_stage"`
	Count     int64     `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// UnmappedStageLabels returns the distinct raw stage labels currently
// normalized to the unmapped bucket, most frequent first.
func (s *Store) UnmappedStageLabels(ctx context.Context) ([]UnmappedLabel, error) {
	query := `
SELECT raw_stage, COUNT(*), MIN(ingested_at), MAX(ingested_at)
FROM deals
WHERE stage = $1
GROUP BY raw_stage
ORDER BY COUNT(*) DESC, raw_stage`

	rows, err := s.pool.Query(ctx, query, string(pipeline.StageUnmapped))
	if err != nil {
		return nil, fmt.Errorf("list unmapped labels: %w", err)
	}
	defer rows.Close()

	var labels []UnmappedLabel
	for rows.Next() {
		var l UnmappedLabel
		if err := rows.Scan(&l.RawStage, &l.Count, &l.FirstSeen, &l.LastSeen); err != nil {
			return nil, fmt.Errorf("scan unmapped label: %w", err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unmapped labels: %w", err)
	}
	return labels, nil
}
