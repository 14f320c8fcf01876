package db

import (
	"context"
	"testing"
	"time"

	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"
	apperrors "drawlab/internal/errors"
	"drawlab/internal/migration"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(context.Background(), db))
	return db
}

func testBundle(created time.Time) *result.Bundle {
	return &result.Bundle{
		RunID:       core.NewRunID(),
		Source:      "history.xlsx",
		Fingerprint: core.ComputeSeriesHash([][]int{{1, 2, 3}}),
		Summary:     "summary",
		Statistics:  result.Statistics{Draws: 3, Frequency: result.FrequencyTable{1: 1, 2: 1, 3: 1}},
		Patterns:    []result.Pattern{{Kind: result.PatternSumBand, Name: "Sum band", Confidence: 0.5}},
		Candidates: []result.Candidate{
			result.NewCandidate(draw.New(1, 2, 4), 1, 0),
			result.NewCandidate(draw.New(1, 4, 5), 3, 1),
		},
		Settings:  result.Settings{K: 3, N: 5, TargetCount: 2, Seed: 42},
		Attempts:  3,
		CreatedAt: created,
	}
}

func TestRunRepository_SaveAndGet(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))
	ctx := context.Background()
	bundle := testBundle(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	require.NoError(t, repo.Save(ctx, bundle))

	got, err := repo.Get(ctx, bundle.RunID)
	require.NoError(t, err)
	assert.Equal(t, bundle.RunID, got.RunID)
	assert.Equal(t, bundle.Fingerprint, got.Fingerprint)
	assert.Equal(t, bundle.CandidateRows(), got.CandidateRows())
	assert.Equal(t, "1 4 5", got.Candidates[1].Draw.String())
	assert.Equal(t, bundle.Settings, got.Settings)
	assert.Equal(t, bundle.Statistics.Frequency, got.Statistics.Frequency)
	assert.True(t, bundle.CreatedAt.Equal(got.CreatedAt))

	err = repo.Save(ctx, bundle)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestRunRepository_GetMissing(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))

	_, err := repo.Get(context.Background(), core.NewRunID())
	require.Error(t, err)
	assert.True(t, core.IsNotFoundError(err))
}

func TestRunRepository_ListRecent(t *testing.T) {
	repo := NewRunRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []core.RunID
	for i := 0; i < 3; i++ {
		b := testBundle(base.Add(time.Duration(i) * time.Hour))
		require.NoError(t, repo.Save(ctx, b))
		ids = append(ids, b.RunID)
	}

	got, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].RunID)
	assert.Equal(t, ids[1], got[1].RunID)
	assert.Equal(t, 3, got[0].Draws)
	assert.Equal(t, 2, got[0].Candidates)
	assert.Equal(t, "history.xlsx", got[0].Source)
}
