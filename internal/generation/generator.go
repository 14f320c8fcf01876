// Package generation produces candidate draws biased toward the observed
// statistics and filters them for novelty against the history.
package generation

import (
	"fmt"
	"math"
	"math/rand"

	"drawlab/domain/draw"
	"drawlab/domain/result"
)

// Defaults for Config.
const (
	DefaultBiasStrength    = 1.0
	DefaultSumTolerance    = 10.0
	DefaultParityTolerance = 2.0
	DefaultMaxResamples    = 200
)

// Config tunes how strongly candidates follow the history.
type Config struct {
	// BiasStrength scales how much a number's historical frequency raises its
	// sampling weight. Zero samples uniformly.
	BiasStrength float64
	// SumTolerance is the accepted distance between a candidate's sum and the
	// historical average sum.
	SumTolerance float64
	// ParityTolerance is the accepted distance between a candidate's even
	// count and the historical evens per draw.
	ParityTolerance float64
	// MaxResamples bounds the reject-and-resample loop of one Generate call.
	// When it runs out the closest sample seen is returned.
	MaxResamples int
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		BiasStrength:    DefaultBiasStrength,
		SumTolerance:    DefaultSumTolerance,
		ParityTolerance: DefaultParityTolerance,
		MaxResamples:    DefaultMaxResamples,
	}
}

// Basis is the historical evidence a generator draws from.
type Basis struct {
	Rules          draw.Rules
	Frequency      result.FrequencyTable
	AverageSum     float64
	Parity         result.ParityRatio
	Draws          int
	LastDraw       draw.Draw
	ExpectedReturn float64
}

// NewBasis assembles a basis from engine outputs.
func NewBasis(rules draw.Rules, st result.Statistics, ret result.ReturnAnalysis) Basis {
	b := Basis{
		Rules:      rules,
		Frequency:  st.Frequency,
		AverageSum: st.AverageSum,
		Parity:     st.Parity,
		Draws:      st.Draws,
	}
	if ret.Latest != nil {
		b.LastDraw = draw.New(ret.Latest.LastDraw...)
		b.ExpectedReturn = ret.Latest.ExpectedReturn
	}
	return b
}

// ExpectedEvens returns the average even count per historical draw.
func (b Basis) ExpectedEvens() float64 {
	if b.Draws == 0 {
		return float64(b.Rules.K) * float64(b.Rules.EvenCount()) / float64(b.Rules.N)
	}
	return float64(b.Parity.Even) / float64(b.Draws)
}

// Generator samples draws of K distinct numbers. It is not safe for
// concurrent use; the random stream is part of its state.
type Generator struct {
	basis   Basis
	config  Config
	rng     *rand.Rand
	weights []float64 // indexed by number, 0 unused
}

// NewGenerator validates the basis and precomputes sampling weights.
func NewGenerator(basis Basis, config Config, rng *rand.Rand) (*Generator, error) {
	if err := basis.Rules.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("generator requires a random source")
	}
	if config.BiasStrength < 0 || config.SumTolerance < 0 || config.ParityTolerance < 0 {
		return nil, fmt.Errorf("bias strength and tolerances must not be negative")
	}
	if config.MaxResamples < 1 {
		config.MaxResamples = DefaultMaxResamples
	}
	if basis.LastDraw.Len() > 0 {
		if err := basis.Rules.Check(-1, basis.LastDraw.Numbers()); err != nil {
			return nil, err
		}
	}

	g := &Generator{basis: basis, config: config, rng: rng}
	g.weights = g.computeWeights()
	return g, nil
}

// Weight returns the sampling weight of n.
func (g *Generator) Weight(n int) float64 {
	if n < 1 || n >= len(g.weights) {
		return 0
	}
	return g.weights[n]
}

func (g *Generator) computeWeights() []float64 {
	weights := make([]float64, g.basis.Rules.N+1)
	maxCount := float64(g.basis.Frequency.Max())
	for n := 1; n <= g.basis.Rules.N; n++ {
		w := 1.0
		if maxCount > 0 {
			w += g.config.BiasStrength * float64(g.basis.Frequency.Count(n)) / maxCount
		}
		weights[n] = w
	}
	return weights
}

// Generate returns one draw whose sum and parity fall within the configured
// tolerance of the history, resampling until they do or the resample budget
// runs out.
func (g *Generator) Generate() (draw.Draw, error) {
	var best draw.Draw
	bestScore := math.Inf(1)

	for i := 0; i < g.config.MaxResamples; i++ {
		d := g.sample()
		sumDev, parityDev := g.deviation(d)
		if sumDev <= g.config.SumTolerance && parityDev <= g.config.ParityTolerance {
			return d, nil
		}
		score := sumDev/math.Max(g.config.SumTolerance, 1) + parityDev/math.Max(g.config.ParityTolerance, 1)
		if score < bestScore {
			best, bestScore = d, score
		}
	}
	return best, nil
}

func (g *Generator) deviation(d draw.Draw) (float64, float64) {
	sumDev := math.Abs(float64(d.Sum()) - g.basis.AverageSum)
	parityDev := math.Abs(float64(d.Evens()) - g.basis.ExpectedEvens())
	return sumDev, parityDev
}

// sample draws the returned part from the last draw and the rest from the
// other numbers, both weighted by frequency.
func (g *Generator) sample() draw.Draw {
	k, n := g.basis.Rules.K, g.basis.Rules.N

	var fromLast, others []int
	for num := 1; num <= n; num++ {
		if g.basis.LastDraw.Contains(num) {
			fromLast = append(fromLast, num)
		} else {
			others = append(others, num)
		}
	}

	returned := g.returnCount(len(fromLast), len(others))
	picked := g.weightedTake(fromLast, returned)
	picked = append(picked, g.weightedTake(others, k-returned)...)
	return draw.New(picked...)
}

// returnCount draws how many numbers to carry over from the last draw: the
// expected return rounded stochastically so its mean matches, clamped to what
// the pools can supply.
func (g *Generator) returnCount(lastPool, otherPool int) int {
	k := g.basis.Rules.K
	expected := g.basis.ExpectedReturn
	whole := math.Floor(expected)
	count := int(whole)
	if g.rng.Float64() < expected-whole {
		count++
	}

	low := k - otherPool
	if low < 0 {
		low = 0
	}
	high := lastPool
	if high > k {
		high = k
	}
	if count < low {
		count = low
	}
	if count > high {
		count = high
	}
	return count
}

// weightedTake picks count distinct numbers from pool, each step choosing
// proportionally to weight among those not yet taken.
func (g *Generator) weightedTake(pool []int, count int) []int {
	remaining := append([]int(nil), pool...)
	taken := make([]int, 0, count)

	for len(taken) < count && len(remaining) > 0 {
		total := 0.0
		for _, num := range remaining {
			total += g.weights[num]
		}
		target := g.rng.Float64() * total
		idx := len(remaining) - 1
		for i, num := range remaining {
			target -= g.weights[num]
			if target < 0 {
				idx = i
				break
			}
		}
		taken = append(taken, remaining[idx])
		remaining = append(remaining[:idx], remaining[idx+1:]...)
	}
	return taken
}
