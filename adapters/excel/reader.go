// Package excel reads draw histories from spreadsheets and delimited text
// files and writes candidate batches back out as spreadsheets.
package excel

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"drawlab/domain/draw"
	"drawlab/internal/errors"
	"drawlab/ports"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// DrawReader turns a spreadsheet or text export into a draw series. Each
// row is one draw, oldest first; only whole-number cells are kept, so dates,
// labels and contest ids in other columns must be non-numeric or removed.
type DrawReader struct {
	name     string
	fileType FileType
	path     string
	data     []byte
	config   ReaderConfig
	logger   zerolog.Logger
}

var _ ports.SeriesReader = (*DrawReader)(nil)

// NewDrawReader creates a reader for a file on disk.
func NewDrawReader(path string, config ReaderConfig, logger zerolog.Logger) *DrawReader {
	return &DrawReader{
		name:     filepath.Base(path),
		fileType: DetectFileType(path),
		path:     path,
		config:   config,
		logger:   logger.With().Str("component", "draw_reader").Logger(),
	}
}

// NewDrawReaderFromBytes creates a reader for uploaded content. name is used
// for type detection and reporting.
func NewDrawReaderFromBytes(name string, data []byte, config ReaderConfig, logger zerolog.Logger) *DrawReader {
	return &DrawReader{
		name:     name,
		fileType: DetectFileType(name),
		data:     data,
		config:   config,
		logger:   logger.With().Str("component", "draw_reader").Logger(),
	}
}

// ReadSeries reads every row and validates it against rules. Malformed rows
// are reported in the result, not returned as errors.
func (r *DrawReader) ReadSeries(ctx context.Context, rules draw.Rules) (*draw.Ingested, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.fileType == "" {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported file type %q: expected .xlsx, .csv or .txt", filepath.Ext(r.name)))
	}

	start := time.Now()
	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ingested, err := draw.Collect(rules, r.name, rows)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err)
	}

	r.logger.Info().
		Str("file", r.name).
		Str("type", string(r.fileType)).
		Int("rows", ingested.Rows).
		Int("accepted", ingested.Accepted()).
		Int("discarded", len(ingested.Discarded)).
		Int("skipped", ingested.Skipped).
		Dur("elapsed", time.Since(start)).
		Msg("draw file read")
	for _, issue := range ingested.Discarded {
		r.logger.Debug().Int("line", issue.Line).Ints("numbers", issue.Numbers).Str("reason", issue.Reason).Msg("row discarded")
	}
	return &ingested, nil
}

func (r *DrawReader) open() (io.ReadCloser, error) {
	if r.data != nil {
		return io.NopCloser(bytes.NewReader(r.data)), nil
	}
	file, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, fmt.Sprintf("%s file not found: %s", strings.ToUpper(string(r.fileType)), r.path))
		}
		return nil, errors.Wrap(err, "failed to open draw file")
	}
	return file, nil
}

func (r *DrawReader) readRows() ([]draw.RawRow, error) {
	src, err := r.open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	switch r.fileType {
	case FileTypeXLSX:
		return r.readExcelRows(src)
	case FileTypeCSV:
		return r.readCSVRows(src)
	default:
		return readTextRows(src)
	}
}

// readExcelRows reads the configured sheet, or the first one.
func (r *DrawReader) readExcelRows(src io.Reader) ([]draw.RawRow, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheet := r.config.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return []draw.RawRow{}, nil
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read sheet %q: %v", sheet, err))
	}
	out := make([]draw.RawRow, len(rows))
	for i, cells := range rows {
		out[i] = draw.RawRow{Line: i + 1, Cells: cells}
	}
	return out, nil
}

func (r *DrawReader) readCSVRows(src io.Reader) ([]draw.RawRow, error) {
	content, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV file")
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = r.config.Comma
	if reader.Comma == 0 {
		reader.Comma = detectComma(content)
	}
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var out []draw.RawRow
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.InvalidInput(fmt.Sprintf("failed to parse CSV file: %v", err))
		}
		line, _ := reader.FieldPos(0)
		out = append(out, draw.RawRow{Line: line, Cells: cells})
	}
	return out, nil
}

// readTextRows splits each line on whitespace, commas and semicolons.
func readTextRows(src io.Reader) ([]draw.RawRow, error) {
	var out []draw.RawRow
	scanner := bufio.NewScanner(src)
	line := 0
	for scanner.Scan() {
		line++
		cells := strings.FieldsFunc(scanner.Text(), func(c rune) bool {
			return unicode.IsSpace(c) || c == ',' || c == ';'
		})
		out = append(out, draw.RawRow{Line: line, Cells: cells})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read text file")
	}
	return out, nil
}

// detectComma picks the delimiter that occurs most on the first non-empty
// line, preferring comma on ties.
func detectComma(content []byte) rune {
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		best, bestCount := ',', strings.Count(line, ",")
		for _, c := range []rune{';', '\t'} {
			if n := strings.Count(line, string(c)); n > bestCount {
				best, bestCount = c, n
			}
		}
		return best
	}
	return ','
}
