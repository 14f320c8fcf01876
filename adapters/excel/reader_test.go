package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"drawlab/domain/draw"
	apperrors "drawlab/internal/errors"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var smallRules = draw.Rules{K: 3, N: 5}

func TestDetectFileType(t *testing.T) {
	tests := []struct {
		name string
		want FileType
	}{
		{"history.xlsx", FileTypeXLSX},
		{"HISTORY.XLSX", FileTypeXLSX},
		{"history.csv", FileTypeCSV},
		{"history.txt", FileTypeText},
		{"history.pdf", ""},
		{"history", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFileType(tt.name))
		})
	}
}

func TestReadSeries_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Contest", "B1", "B2", "B3"},
		{"first", 1, 2, 3},
		{"second", 2, 3, 4},
		{"bad", 1, 1, 2},
		{"third", 3, 4, 5},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	reader := NewDrawReaderFromBytes("history.xlsx", buf.Bytes(), DefaultReaderConfig(), zerolog.Nop())
	got, err := reader.ReadSeries(context.Background(), smallRules)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, got.Series.Rows())
	assert.Equal(t, 5, got.Rows)
	assert.Equal(t, 1, got.Skipped)
	require.Len(t, got.Discarded, 1)
	assert.Equal(t, 4, got.Discarded[0].Line)
	assert.Equal(t, "duplicate number 1", got.Discarded[0].Reason)
	assert.Equal(t, "history.xlsx", got.Source)
}

func TestReadSeries_CSVDelimiters(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"comma", "1,2,3\n2,3,4\n"},
		{"semicolon", "1;2;3\n2;3;4\n"},
		{"tab", "1\t2\t3\n2\t3\t4\n"},
		{"quoted", "\"1\",\"2\",\"3\"\n\"2\",\"3\",\"4\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewDrawReaderFromBytes("h.csv", []byte(tt.content), DefaultReaderConfig(), zerolog.Nop())
			got, err := reader.ReadSeries(context.Background(), smallRules)
			require.NoError(t, err)
			assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}}, got.Series.Rows())
		})
	}
}

func TestReadSeries_TextFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	content := "# exported results\n01 02 03\n\n2, 3, 4\n3 4 5 6\n5 4 3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := NewDrawReader(path, DefaultReaderConfig(), zerolog.Nop()).ReadSeries(context.Background(), smallRules)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, got.Series.Rows())
	require.Len(t, got.Discarded, 1)
	assert.Equal(t, 5, got.Discarded[0].Line)
	assert.Equal(t, "expected 3 numbers, got 4", got.Discarded[0].Reason)
	assert.Equal(t, 2, got.Skipped)
}

func TestReadSeries_Errors(t *testing.T) {
	_, err := NewDrawReaderFromBytes("history.pdf", []byte("%PDF"), DefaultReaderConfig(), zerolog.Nop()).
		ReadSeries(context.Background(), smallRules)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	_, err = NewDrawReader(filepath.Join(t.TempDir(), "missing.csv"), DefaultReaderConfig(), zerolog.Nop()).
		ReadSeries(context.Background(), smallRules)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = NewDrawReaderFromBytes("broken.xlsx", []byte("not a zip"), DefaultReaderConfig(), zerolog.Nop()).
		ReadSeries(context.Background(), smallRules)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDrawReaderFromBytes("h.csv", []byte("1,2,3"), DefaultReaderConfig(), zerolog.Nop()).ReadSeries(ctx, smallRules)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteCandidatesXLSX_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.xlsx")
	rows := [][]int{{1, 2, 4}, {1, 4, 5}}
	require.NoError(t, WriteCandidatesXLSX(path, rows))

	got, err := NewDrawReader(path, DefaultReaderConfig(), zerolog.Nop()).ReadSeries(context.Background(), smallRules)
	require.NoError(t, err)
	assert.Equal(t, rows, got.Series.Rows())
	assert.Empty(t, got.Discarded)
}
