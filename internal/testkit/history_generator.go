// Package testkit generates synthetic draw histories for tests, demos and the
// CLI simulate command.
package testkit

import (
	"fmt"
	"math/rand"

	"drawlab/domain/draw"
)

// HistoryConfig configures the synthetic history generator
type HistoryConfig struct {
	K     int   `json:"k"`
	N     int   `json:"n"`
	Draws int   `json:"draws"`
	Seed  int64 `json:"seed"`

	// HotNumbers are drawn with HotWeight times the base weight, which lets
	// tests plant a frequency skew.
	HotNumbers []int   `json:"hot_numbers,omitempty"`
	HotWeight  float64 `json:"hot_weight,omitempty"`

	// Carry forces this many numbers of the previous draw into the next one,
	// planting a stable return size. Zero leaves returns to chance.
	Carry int `json:"carry,omitempty"`
}

// DefaultHistoryConfig mirrors a 15-of-25 lottery with a few hundred draws.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		K:     15,
		N:     25,
		Draws: 300,
		Seed:  42,
	}
}

// HistoryGenerator produces deterministic draw histories
type HistoryGenerator struct {
	config HistoryConfig
	rng    *rand.Rand
}

// NewHistoryGenerator creates a new generator seeded from config.Seed
func NewHistoryGenerator(config HistoryConfig) *HistoryGenerator {
	return &HistoryGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate returns the raw rows of a synthetic history.
func (g *HistoryGenerator) Generate() ([][]int, error) {
	rules := draw.Rules{K: g.config.K, N: g.config.N}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if g.config.Carry < 0 || g.config.Carry > g.config.K {
		return nil, fmt.Errorf("carry must be within [0, %d], got %d", g.config.K, g.config.Carry)
	}

	weights := make([]float64, g.config.N+1)
	for n := 1; n <= g.config.N; n++ {
		weights[n] = 1
	}
	if g.config.HotWeight > 0 {
		for _, n := range g.config.HotNumbers {
			if n >= 1 && n <= g.config.N {
				weights[n] = g.config.HotWeight
			}
		}
	}

	rows := make([][]int, 0, g.config.Draws)
	var previous []int
	for i := 0; i < g.config.Draws; i++ {
		row := g.nextRow(weights, previous)
		rows = append(rows, row)
		previous = row
	}
	return rows, nil
}

// Series generates a validated series.
func (g *HistoryGenerator) Series() (draw.Series, error) {
	rows, err := g.Generate()
	if err != nil {
		return draw.Series{}, err
	}
	return draw.NewSeries(draw.Rules{K: g.config.K, N: g.config.N}, rows)
}

// MustSeries is Series for tests; it panics on invalid configuration.
func (g *HistoryGenerator) MustSeries() draw.Series {
	s, err := g.Series()
	if err != nil {
		panic(fmt.Sprintf("testkit: %v", err))
	}
	return s
}

func (g *HistoryGenerator) nextRow(weights []float64, previous []int) []int {
	chosen := make(map[int]bool, g.config.K)
	row := make([]int, 0, g.config.K)

	if g.config.Carry > 0 && len(previous) > 0 {
		for _, idx := range g.rng.Perm(len(previous))[:g.config.Carry] {
			chosen[previous[idx]] = true
			row = append(row, previous[idx])
		}
	}

	// When a carry is planted the rest of the draw avoids the previous one so
	// the return size stays exactly Carry.
	excluded := map[int]bool{}
	if g.config.Carry > 0 && len(previous) > 0 && g.config.N-len(previous) >= g.config.K-g.config.Carry {
		for _, n := range previous {
			excluded[n] = true
		}
	}

	for len(row) < g.config.K {
		total := 0.0
		for n := 1; n <= g.config.N; n++ {
			if !chosen[n] && !excluded[n] {
				total += weights[n]
			}
		}
		target := g.rng.Float64() * total
		pick := 0
		for n := 1; n <= g.config.N; n++ {
			if chosen[n] || excluded[n] {
				continue
			}
			pick = n
			target -= weights[n]
			if target <= 0 {
				break
			}
		}
		chosen[pick] = true
		row = append(row, pick)
	}
	return row
}
