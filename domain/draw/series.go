package draw

import (
	"drawlab/domain/core"
)

// Series is the chronological list of historical draws, oldest first. It is
// immutable once built.
type Series struct {
	rules Rules
	draws []Draw
}

// NewSeries validates every row against rules and builds the series. The first
// offending row is returned as a *core.MalformedDrawError.
func NewSeries(rules Rules, rows [][]int) (Series, error) {
	if err := rules.Validate(); err != nil {
		return Series{}, err
	}
	draws := make([]Draw, 0, len(rows))
	for i, row := range rows {
		if err := rules.Check(i, row); err != nil {
			return Series{}, err
		}
		draws = append(draws, New(row...))
	}
	return Series{rules: rules, draws: draws}, nil
}

// FromDraws builds a series from already constructed draws, re-checking each.
func FromDraws(rules Rules, draws []Draw) (Series, error) {
	rows := make([][]int, len(draws))
	for i, d := range draws {
		rows[i] = d.numbers
	}
	return NewSeries(rules, rows)
}

// Rules returns the rules the series was validated against.
func (s Series) Rules() Rules { return s.rules }

// Len returns the number of draws.
func (s Series) Len() int { return len(s.draws) }

// IsEmpty reports whether the series holds no draws.
func (s Series) IsEmpty() bool { return len(s.draws) == 0 }

// At returns the i-th draw (0 is the oldest).
func (s Series) At(i int) Draw { return s.draws[i] }

// Last returns the most recent draw and false when the series is empty.
func (s Series) Last() (Draw, bool) {
	if len(s.draws) == 0 {
		return Draw{}, false
	}
	return s.draws[len(s.draws)-1], true
}

// Draws returns a copy of the draws.
func (s Series) Draws() []Draw {
	return append([]Draw(nil), s.draws...)
}

// Rows returns the sorted numbers of every draw.
func (s Series) Rows() [][]int {
	rows := make([][]int, len(s.draws))
	for i, d := range s.draws {
		rows[i] = d.Numbers()
	}
	return rows
}

// Keys returns the set of draw identities present in the series.
func (s Series) Keys() map[Key]struct{} {
	keys := make(map[Key]struct{}, len(s.draws))
	for _, d := range s.draws {
		keys[d.Key()] = struct{}{}
	}
	return keys
}

// Fingerprint hashes the series contents.
func (s Series) Fingerprint() core.Hash {
	rows := make([][]int, len(s.draws))
	for i, d := range s.draws {
		rows[i] = d.numbers
	}
	return core.ComputeSeriesHash(rows)
}
