package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Batch is the audit record written for every ingest run.
type Batch struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Received   int       `json:"received"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
	Unmapped   int       `json:"unmapped"`
	ReceivedAt time.Time `json:"received_at"`
}

// InsertBatch records one ingest run.
func (s *Store) InsertBatch(ctx context.Context, b Batch) error {
	_, err := s.pool.Exec(ctx, `
INSERT INTO ingest_batches (id, source, received, accepted, rejected, unmapped, received_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ToPgUUID(b.ID), b.Source, b.Received, b.Accepted, b.Rejected, b.Unmapped, b.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert batch %s: %w", b.ID, err)
	}
	return nil
}

// ListBatches returns the most recent ingest runs, newest first.
// A non-positive limit falls back to 50.
func (s *Store) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx, `
SELECT id, source, received, accepted, rejected, unmapped, received_at
FROM ingest_batches
ORDER BY received_at DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			b  Batch
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &b.Source, &b.Received, &b.Accepted, &b.Rejected, &b.Unmapped, &b.ReceivedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.ID = PgUUIDToString(id)
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return batches, nil
}
