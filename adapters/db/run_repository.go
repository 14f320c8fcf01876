// Package db stores analysis runs in postgres or sqlite through sqlx.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"drawlab/domain/core"
	"drawlab/domain/result"
	"drawlab/internal/errors"
	"drawlab/ports"

	"github.com/jmoiron/sqlx"
)

// RunRepositoryImpl implements RunRepository on a sqlx handle. Queries are
// written with ? placeholders and rebound for the handle's driver.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new SQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Save inserts the bundle. Saving an existing run id fails.
func (r *RunRepositoryImpl) Save(ctx context.Context, bundle *result.Bundle) error {
	bundleJSON, err := json.Marshal(bundle)
	if err != nil {
		return errors.Wrap(err, "failed to encode bundle")
	}
	settingsJSON, err := json.Marshal(bundle.Settings)
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}

	summary := bundle.RunSummary()
	_, err = r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO analysis_runs (id, source, fingerprint, draw_count, candidate_count, settings, bundle, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`), summary.RunID.String(), summary.Source, summary.Fingerprint.String(), summary.Draws, summary.Candidates,
		string(settingsJSON), string(bundleJSON), summary.CreatedAt.UTC())
	if err != nil {
		return errors.DatabaseError("failed to insert run", err)
	}
	return nil
}

// Get loads a run by id.
func (r *RunRepositoryImpl) Get(ctx context.Context, id core.RunID) (*result.Bundle, error) {
	var bundleJSON string
	err := r.db.GetContext(ctx, &bundleJSON, r.db.Rebind(`
		SELECT bundle
		FROM analysis_runs
		WHERE id = ?
	`), id.String())
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.NewNotFoundError("run", id.String())
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to load run", err)
	}

	var bundle result.Bundle
	if err := json.Unmarshal([]byte(bundleJSON), &bundle); err != nil {
		return nil, errors.DatabaseError("stored bundle is corrupt", err)
	}
	bundle.RestoreDraws()
	return &bundle, nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]result.RunSummary, error) {
	summaries := []result.RunSummary{}
	err := r.db.SelectContext(ctx, &summaries, r.db.Rebind(`
		SELECT id, source, fingerprint, draw_count, candidate_count, created_at
		FROM analysis_runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`), limit)
	if err != nil {
		return nil, errors.DatabaseError("failed to list runs", err)
	}
	return summaries, nil
}
