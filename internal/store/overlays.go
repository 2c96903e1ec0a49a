package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/halcyonfield/pipeboard/internal/overlay"
)

// LoadOverlay reads the overlay state persisted for a view. A view with no
// persisted state yields a fresh empty state, not an error. A persisted
// record with an unknown schema version is an error.
func (s *Store) LoadOverlay(ctx context.Context, view string) (overlay.State, error) {
	var version int
	err := s.pool.QueryRow(ctx,
		`SELECT schema_version FROM overlay_views WHERE view = $1`, view,
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return overlay.NewState(), nil
	}
	if err != nil {
		return overlay.State{}, fmt.Errorf("load overlay %q: %w", view, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT deal_id, position, deleted, probability_override
		 FROM overlay_entries WHERE view = $1`, view)
	if err != nil {
		return overlay.State{}, fmt.Errorf("load overlay %q: %w", view, err)
	}
	defer rows.Close()

	st := overlay.State{
		SchemaVersion: version,
		Entries:       make(map[string]overlay.Entry),
	}
	for rows.Next() {
		var (
			dealID   string
			entry    overlay.Entry
			override pgtype.Float8
		)
		if err := rows.Scan(&dealID, &entry.Position, &entry.Deleted, &override); err != nil {
			return overlay.State{}, fmt.Errorf("scan overlay entry: %w", err)
		}
		entry.ProbabilityOverride = PgFloat8ToPtr(override)
		st.Entries[dealID] = entry
	}
	if err := rows.Err(); err != nil {
		return overlay.State{}, fmt.Errorf("load overlay %q: %w", view, err)
	}

	if err := st.Validate(); err != nil {
		return overlay.State{}, fmt.Errorf("load overlay %q: %w", view, err)
	}
	return st, nil
}

// SaveOverlay replaces the view's persisted state with st in one
// transaction and returns the revision id stamped on the write. A failed
// save leaves the prior state intact; concurrent saves serialize at the
// database and the last writer wins, never torn. The revision tells
// clients which write won.
func (s *Store) SaveOverlay(ctx context.Context, view string, st overlay.State) (string, error) {
	if err := st.Validate(); err != nil {
		return "", fmt.Errorf("save overlay %q: %w", view, err)
	}

	revision := uuid.New().String()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO overlay_views (view, schema_version, revision, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (view) DO UPDATE SET
    schema_version = EXCLUDED.schema_version,
    revision       = EXCLUDED.revision,
    updated_at     = EXCLUDED.updated_at`,
		view, st.SchemaVersion, ToPgUUID(revision), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("save overlay %q: %w", view, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM overlay_entries WHERE view = $1`, view); err != nil {
		return "", fmt.Errorf("save overlay %q: %w", view, err)
	}

	for dealID, entry := range st.Entries {
		_, err := tx.Exec(ctx, `
INSERT INTO overlay_entries (view, deal_id, position, deleted, probability_override)
VALUES ($1, $2, $3, $4, $5)`,
			view, dealID, entry.Position, entry.Deleted, ToPgFloat8(entry.ProbabilityOverride))
		if err != nil {
			return "", fmt.Errorf("save overlay entry %s: %w", dealID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return revision, nil
}

// View describes a board view with persisted overlay state.
type View struct {
	Name      string    `json:"name"`
	Revision  string    `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
	Entries   int64     `json:"entries"`
}

// ListViews enumerates views that have persisted overlay state.
func (s *Store) ListViews(ctx context.Context) ([]View, error) {
	rows, err := s.pool.Query(ctx, `
SELECT v.view, v.revision, v.updated_at, COUNT(e.deal_id)
FROM overlay_views v
LEFT JOIN overlay_entries e ON e.view = v.view
GROUP BY v.view, v.revision, v.updated_at
ORDER BY v.view`)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	var views []View
	for rows.Next() {
		var (
			v        View
			revision pgtype.UUID
		)
		if err := rows.Scan(&v.Name, &revision, &v.UpdatedAt, &v.Entries); err != nil {
			return nil, fmt.Errorf("scan view: %w", err)
		}
		v.Revision = PgUUIDToString(revision)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	return views, nil
}
