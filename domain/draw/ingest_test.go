package draw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCells(t *testing.T) {
	cells := []string{"Concurso", " 07 ", "12", "3.0", "2.5", "", "-4", "2024-01-02", "25"}
	assert.Equal(t, []int{7, 12, 3, 25}, ParseCells(cells))
}

func TestCollect(t *testing.T) {
	rows := []RawRow{
		{Line: 1, Cells: []string{"draw", "a", "b", "c"}}, // header, no numbers
		{Line: 2, Cells: []string{"1", "2", "3"}},
		{Line: 3, Cells: []string{"2", "3", "3"}}, // duplicate
		{Line: 4, Cells: []string{"2", "3", "4"}},
		{Line: 5, Cells: []string{"1", "2"}},      // short
		{Line: 6, Cells: []string{"3", "4", "9"}}, // out of range
		{Line: 7, Cells: []string{"5", "4", "3"}},
	}

	in, err := Collect(Rules{K: 3, N: 5}, "test.csv", rows)
	require.NoError(t, err)

	assert.Equal(t, "test.csv", in.Source)
	assert.Equal(t, 7, in.Rows)
	assert.Equal(t, 1, in.Skipped)
	assert.Equal(t, 3, in.Accepted())
	require.Len(t, in.Discarded, 3)
	assert.Equal(t, 3, in.Discarded[0].Line)
	assert.Equal(t, "duplicate number 3", in.Discarded[0].Reason)
	assert.Equal(t, 5, in.Discarded[1].Line)
	assert.Equal(t, "number 9 outside [1, 5]", in.Discarded[2].Reason)

	last, ok := in.Series.Last()
	require.True(t, ok)
	assert.Equal(t, "3 4 5", last.String())
}

func TestCollectInvalidRules(t *testing.T) {
	_, err := Collect(Rules{K: 0, N: 5}, "x", nil)
	assert.Error(t, err)
}
