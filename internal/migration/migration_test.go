package migration

import (
	"context"
	"testing"

	apperrors "drawlab/internal/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Migrator = (*MigrationRunner)(nil)

func TestRun_CreatesRunsTableAndIsRepeatable(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	runner := NewRunner()
	require.NoError(t, runner.Run(context.Background(), db))
	require.NoError(t, runner.Run(context.Background(), db), "migrations must be idempotent")

	var columns []string
	rows, err := db.Queryx(`SELECT name FROM pragma_table_info('analysis_runs')`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	assert.ElementsMatch(t, []string{
		"id", "source", "fingerprint", "draw_count", "candidate_count", "settings", "bundle", "created_at",
	}, columns)
}

func TestDialectFor_UnknownDriver(t *testing.T) {
	_, err := dialectFor("mysql")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))

	d, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "JSONB", d.jsonType)
}
