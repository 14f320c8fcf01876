package draw

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"drawlab/domain/core"
)

// RawRow is one row of cells as produced by a file or feed reader.
type RawRow struct {
	Line  int      `json:"line"` // 1-based position in the source
	Cells []string `json:"cells"`
}

// RowIssue records a row that held numbers but could not become a draw.
type RowIssue struct {
	Line    int    `json:"line"`
	Numbers []int  `json:"numbers"`
	Reason  string `json:"reason"`
}

// Ingested is the result of turning raw rows into a series.
type Ingested struct {
	Source    string     `json:"source"`
	Series    Series     `json:"-"`
	Rows      int        `json:"rows"`
	Skipped   int        `json:"skipped"` // rows without any number
	Discarded []RowIssue `json:"discarded"`
}

// Accepted returns the number of rows that became draws.
func (in Ingested) Accepted() int { return in.Series.Len() }

// Collect keeps the integer cells of every row, drops rows without numbers,
// validates the rest against rules and records the malformed ones instead of
// failing. Row order is preserved, so rows must arrive oldest first.
func Collect(rules Rules, source string, rows []RawRow) (Ingested, error) {
	if err := rules.Validate(); err != nil {
		return Ingested{}, err
	}

	out := Ingested{Source: source, Rows: len(rows), Discarded: []RowIssue{}}
	draws := make([]Draw, 0, len(rows))
	for _, row := range rows {
		numbers := ParseCells(row.Cells)
		if len(numbers) == 0 {
			out.Skipped++
			continue
		}
		if err := rules.Check(-1, numbers); err != nil {
			out.Discarded = append(out.Discarded, RowIssue{
				Line:    row.Line,
				Numbers: numbers,
				Reason:  reasonOf(err),
			})
			continue
		}
		draws = append(draws, New(numbers...))
	}

	out.Series = Series{rules: rules, draws: draws}
	return out, nil
}

// ParseCells returns the cells that hold a non-negative whole number. Cells
// such as "07", "7" and "7.0" all yield 7; text, dates and fractions are
// ignored.
func ParseCells(cells []string) []int {
	numbers := []int{}
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if n, err := strconv.Atoi(cell); err == nil {
			if n >= 0 {
				numbers = append(numbers, n)
			}
			continue
		}
		if f, err := strconv.ParseFloat(cell, 64); err == nil && f >= 0 && f == math.Trunc(f) && f <= math.MaxInt32 {
			numbers = append(numbers, int(f))
		}
	}
	return numbers
}

func reasonOf(err error) string {
	var malformed *core.MalformedDrawError
	if errors.As(err, &malformed) {
		return malformed.Reason
	}
	return err.Error()
}
