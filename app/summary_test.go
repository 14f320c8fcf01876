package app

import (
	"strings"
	"testing"

	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/analysis/returns"
	"drawlab/internal/analysis/statistics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleBundle(t *testing.T) *result.Bundle {
	t.Helper()
	series, err := draw.NewSeries(draw.Rules{K: 3, N: 5}, exampleRows())
	require.NoError(t, err)
	st, err := statistics.Compute(series)
	require.NoError(t, err)

	return &result.Bundle{
		Statistics: st,
		Returns:    returns.Compute(series, returns.DefaultBlockSize),
		Candidates: []result.Candidate{result.NewCandidate(draw.New(1, 4, 5), 1, 0)},
		Settings:   smallEngine().Settings(),
		Attempts:   1,
	}
}

func TestSummarize(t *testing.T) {
	b := exampleBundle(t)

	text := Summarize(b)
	assert.Contains(t, text, "Analyzed 3 draws of 3 numbers from 1 to 5.")
	assert.Contains(t, text, "averaged 9.00")
	assert.Contains(t, text, "Even to odd ratio was 4:5.")
	assert.Contains(t, text, "Most drawn: 3. Least drawn: 1 5.")
	assert.Contains(t, text, "No structural pattern")
	assert.Contains(t, text, "Generated 1 new candidate(s) in 1 attempt(s)")
	assert.Equal(t, text, Summarize(b))

	b.Patterns = []result.Pattern{
		{Name: "Stable returns", Confidence: 0.9},
		{Name: "Hot numbers", Confidence: 0.8},
		{Name: "Sum band", Confidence: 0.7},
		{Name: "Parity skew", Confidence: 0.6},
	}
	text = Summarize(b)
	assert.Contains(t, text, "Detected 4 pattern(s); strongest: Stable returns (90%), Hot numbers (80%), Sum band (70%).")
	assert.NotContains(t, text, "Parity skew")
}

func TestDescribeReturns(t *testing.T) {
	b := exampleBundle(t)

	text := DescribeReturns(b)
	assert.Contains(t, text, "Compared 2 consecutive pairs; on average 2.00 numbers repeated")
	assert.Contains(t, text, "1 block(s) of 3, the last one partial.")
	assert.Contains(t, text, "The latest draw repeated 2 number(s) from the previous one (3 4).")
	assert.Contains(t, text, "from the latest draw 3 4 5.")

	b.Returns = result.ReturnAnalysis{}
	assert.True(t, strings.HasPrefix(DescribeReturns(b), "Fewer than two draws"))
}
