package app

import (
	"testing"

	"drawlab/domain/draw"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPredictions(t *testing.T) {
	series, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, exampleRows())
	require.NoError(t, err)

	report := VerifyPredictions(series, [][]int{
		{5, 1, 2}, // novel, unsorted input
		{4, 3, 2}, // in history
		{1, 2, 5}, // repeats the first prediction
		{1, 2},    // wrong size
		{1, 2, 9}, // out of range
	})

	require.Len(t, report.Checks, 5)
	assert.Equal(t, 1, report.Novel)
	assert.Equal(t, 1, report.Collisions)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 2, report.Invalid)
	assert.False(t, report.AllNovel())

	first := report.Checks[0]
	assert.True(t, first.Valid)
	assert.True(t, first.Novel)
	assert.Equal(t, []int{1, 2, 5}, first.Numbers)

	assert.True(t, report.Checks[1].InHistory)
	assert.False(t, report.Checks[1].Novel)

	assert.True(t, report.Checks[2].Duplicate)
	assert.Equal(t, 0, report.Checks[2].DuplicateOf)

	assert.False(t, report.Checks[3].Valid)
	assert.Equal(t, "expected 3 numbers, got 2", report.Checks[3].Reason)
	assert.Equal(t, "number 9 outside [1, 5]", report.Checks[4].Reason)
}

func TestVerifyPredictions_AllNovel(t *testing.T) {
	series, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, exampleRows())
	require.NoError(t, err)

	report := VerifyPredictions(series, [][]int{{1, 2, 4}, {1, 4, 5}})
	assert.True(t, report.AllNovel())

	assert.False(t, VerifyPredictions(series, nil).AllNovel())
}
