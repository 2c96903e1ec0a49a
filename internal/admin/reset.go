// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ResetTimeout is the maximum duration for database reset operations.
const ResetTimeout = 30 * time.Second

// ResetDBs handles database reset operations.
type ResetDBs struct {
	Pool *pgxpool.Pool
}

type dbResetFn func(ctx context.Context) error

// ResetAll truncates all pipeline tables: deals, overlay state, and the
// ingest audit trail. This is a destructive operation - use with caution.
func (r *ResetDBs) ResetAll(ctx context.Context) error {
	return r.runResets(ctx, []dbResetFn{
		r.resetOverlays,
		r.resetDeals,
		r.resetBatches,
	})
}

func (r *ResetDBs) runResets(ctx context.Context, resets []dbResetFn) error {
	for _, reset := range resets {
		if err := reset(ctx); err != nil {
			return err
		}
	}
	return nil
}

// resetOverlays truncates entries and views in one statement so the
// foreign key between them never blocks the truncate.
func (r *ResetDBs) resetOverlays(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, `TRUNCATE TABLE overlay_entries, overlay_views`); err != nil {
		return fmt.Errorf("reset overlays: %w", err)
	}
	return nil
}

func (r *ResetDBs) resetDeals(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, `TRUNCATE TABLE deals`); err != nil {
		return fmt.Errorf("reset deals: %w", err)
	}
	return nil
}

func (r *ResetDBs) resetBatches(ctx context.Context) error {
	if _, err := r.Pool.Exec(ctx, `TRUNCATE TABLE ingest_batches`); err != nil {
		return fmt.Errorf("reset batches: %w", err)
	}
	return nil
}
