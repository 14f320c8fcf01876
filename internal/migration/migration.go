package migration

import (
	"context"
	"fmt"

	"drawlab/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. The statements
// are picked by the driver the handle was opened with.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	dialect, err := dialectFor(db.DriverName())
	if err != nil {
		return err
	}

	if err := r.createAnalysisRunsTable(ctx, db, dialect); err != nil {
		return errors.Wrap(err, "failed to create analysis_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

type dialect struct {
	idType   string
	jsonType string
	timeType string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "postgres":
		return dialect{idType: "UUID", jsonType: "JSONB", timeType: "TIMESTAMP WITH TIME ZONE"}, nil
	case "sqlite3":
		return dialect{idType: "TEXT", jsonType: "TEXT", timeType: "TIMESTAMP"}, nil
	}
	return dialect{}, errors.ConfigInvalid(fmt.Sprintf("no migrations for database driver %q", driver))
}

func (r *MigrationRunner) createAnalysisRunsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id %s PRIMARY KEY,
			source TEXT NOT NULL DEFAULT '',
			fingerprint VARCHAR(64) NOT NULL,
			draw_count INTEGER NOT NULL,
			candidate_count INTEGER NOT NULL,
			settings %s NOT NULL,
			bundle %s NOT NULL,
			created_at %s NOT NULL
		)
	`, d.idType, d.jsonType, d.jsonType, d.timeType))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_created_at ON analysis_runs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_runs_fingerprint ON analysis_runs(fingerprint)`,
	}

	for _, indexSQL := range indexes {
		if _, err := db.ExecContext(ctx, indexSQL); err != nil {
			return err
		}
	}
	return nil
}
