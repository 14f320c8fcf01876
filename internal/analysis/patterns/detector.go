// Package patterns turns series statistics into named, confidence-scored
// structural patterns. Every rule is a pure function of its inputs.
package patterns

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/analysis/statistics"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultZThreshold is the |z| a frequency or parity deviation must reach.
const DefaultZThreshold = 2.0

// minSumBandDraws is the smallest series the sum-band rule looks at.
const minSumBandDraws = 5

// Input is everything a rule may look at.
type Input struct {
	Series  draw.Series
	Stats   result.Statistics
	Returns result.ReturnAnalysis
}

// Rule inspects the input and returns zero or more patterns.
type Rule interface {
	Name() string
	Evaluate(in Input) []result.Pattern
}

// Detector runs the rule set and orders the findings.
type Detector struct {
	rules []Rule
}

// NewDetector creates a detector with the standard rule set.
func NewDetector(zThreshold float64) *Detector {
	if zThreshold <= 0 {
		zThreshold = DefaultZThreshold
	}
	return &Detector{
		rules: []Rule{
			&FrequencySkewRule{ZThreshold: zThreshold},
			&SumBandRule{},
			&ParitySkewRule{ZThreshold: zThreshold},
			&ReturnStabilityRule{},
		},
	}
}

// NewDetectorWithRules creates a detector with a custom rule set.
func NewDetectorWithRules(rules ...Rule) *Detector {
	return &Detector{rules: rules}
}

// Detect evaluates every rule. Patterns are ordered by confidence, highest
// first, ties broken by name.
func (d *Detector) Detect(series draw.Series, st result.Statistics, ret result.ReturnAnalysis) []result.Pattern {
	in := Input{Series: series, Stats: st, Returns: ret}

	found := []result.Pattern{}
	for _, rule := range d.rules {
		for _, p := range rule.Evaluate(in) {
			p.Confidence = clamp01(p.Confidence)
			found = append(found, p)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Confidence != found[j].Confidence {
			return found[i].Confidence > found[j].Confidence
		}
		return found[i].Name < found[j].Name
	})
	return found
}

// twoSided maps |z| to 2Φ(|z|)-1, which grows monotonically from 0 to 1.
func twoSided(z float64) float64 {
	return 2*distuv.UnitNormal.CDF(math.Abs(z)) - 1
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func joinInts(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}

// FrequencySkewRule flags numbers whose count deviates from the binomial
// expectation D*K/N by at least ZThreshold standard deviations.
type FrequencySkewRule struct {
	ZThreshold float64
}

func (r *FrequencySkewRule) Name() string { return "frequency_skew" }

func (r *FrequencySkewRule) Evaluate(in Input) []result.Pattern {
	rules := in.Series.Rules()
	draws := float64(in.Stats.Draws)
	if draws == 0 || rules.N == 0 {
		return nil
	}

	p := float64(rules.K) / float64(rules.N)
	expected := draws * p
	sd := math.Sqrt(draws * p * (1 - p))
	if sd == 0 {
		return nil
	}

	type scored struct {
		n int
		z float64
	}
	var hot, cold []scored
	chi2 := 0.0
	for n := 1; n <= rules.N; n++ {
		count := float64(in.Stats.Frequency.Count(n))
		chi2 += (count - expected) * (count - expected) / expected
		z := (count - expected) / sd
		switch {
		case z >= r.ZThreshold:
			hot = append(hot, scored{n, z})
		case z <= -r.ZThreshold:
			cold = append(cold, scored{n, z})
		}
	}
	uniformP := distuv.ChiSquared{K: float64(rules.N - 1)}.Survival(chi2)

	build := func(kind result.PatternKind, name, adjective string, group []scored) result.Pattern {
		sort.Slice(group, func(i, j int) bool {
			if math.Abs(group[i].z) != math.Abs(group[j].z) {
				return math.Abs(group[i].z) > math.Abs(group[j].z)
			}
			return group[i].n < group[j].n
		})
		nums := make([]int, len(group))
		for i, g := range group {
			nums[i] = g.n
		}
		strongest := group[0]
		return result.Pattern{
			Kind: kind,
			Name: name,
			Description: fmt.Sprintf(
				"%d number(s) appear %s than the uniform expectation of %.1f draws: %s. "+
					"Strongest is %d with %d occurrences (z=%.2f). Chi-square uniformity p=%.4f.",
				len(group), adjective, expected, joinInts(nums),
				strongest.n, in.Stats.Frequency.Count(strongest.n), strongest.z, uniformP),
			Confidence: twoSided(strongest.z),
			Statistic:  strongest.z,
			Numbers:    nums,
		}
	}

	var out []result.Pattern
	if len(hot) > 0 {
		out = append(out, build(result.PatternFrequencyHot, "Hot numbers", "more often", hot))
	}
	if len(cold) > 0 {
		out = append(out, build(result.PatternFrequencyCold, "Cold numbers", "less often", cold))
	}
	return out
}

// SumBandRule flags series whose draw sums concentrate in a narrow band
// around their mean more than independent uniform draws would.
type SumBandRule struct{}

func (r *SumBandRule) Name() string { return "sum_band" }

func (r *SumBandRule) Evaluate(in Input) []result.Pattern {
	rules := in.Series.Rules()
	if in.Stats.Draws < minSumBandDraws {
		return nil
	}

	// variance of the sum of K numbers drawn without replacement from 1..N
	uniformVar := float64(rules.K*(rules.N-rules.K)*(rules.N+1)) / 12
	if uniformVar <= 0 {
		return nil
	}
	halfWidth := 0.5 * math.Sqrt(uniformVar)
	low, high := in.Stats.AverageSum-halfWidth, in.Stats.AverageSum+halfWidth

	inside := 0
	for _, s := range statistics.Sums(in.Series) {
		if s >= low && s <= high {
			inside++
		}
	}

	draws := float64(in.Stats.Draws)
	observed := float64(inside) / draws
	expected := twoSided(0.5)
	z := (observed - expected) / math.Sqrt(expected*(1-expected)/draws)
	if z < 1 {
		return nil
	}

	return []result.Pattern{{
		Kind: result.PatternSumBand,
		Name: "Sum band clustering",
		Description: fmt.Sprintf(
			"%.0f%% of draws sum to between %.0f and %.0f (expected about %.0f%% for random draws); "+
				"average sum %.1f.",
			observed*100, math.Ceil(low), math.Floor(high), expected*100, in.Stats.AverageSum),
		Confidence: twoSided(z),
		Statistic:  z,
	}}
}

// ParitySkewRule flags a share of even numbers away from the share of even
// numbers in [1, N].
type ParitySkewRule struct {
	ZThreshold float64
}

func (r *ParitySkewRule) Name() string { return "parity_skew" }

func (r *ParitySkewRule) Evaluate(in Input) []result.Pattern {
	rules := in.Series.Rules()
	if in.Stats.Draws == 0 || rules.N < 2 {
		return nil
	}

	q := float64(rules.EvenCount()) / float64(rules.N)
	k := float64(rules.K)
	// hypergeometric variance of evens per draw, summed over draws
	variance := float64(in.Stats.Draws) * k * q * (1 - q) * float64(rules.N-rules.K) / float64(rules.N-1)
	if variance <= 0 {
		return nil
	}
	expected := float64(in.Stats.Draws) * k * q
	z := (float64(in.Stats.Parity.Even) - expected) / math.Sqrt(variance)
	if math.Abs(z) < r.ZThreshold {
		return nil
	}

	name, side := "Even-heavy parity", "even"
	if z < 0 {
		name, side = "Odd-heavy parity", "odd"
	}
	return []result.Pattern{{
		Kind: result.PatternParitySkew,
		Name: name,
		Description: fmt.Sprintf(
			"Draws lean %s: even:odd is %s, an average of %.2f evens per draw against %.2f expected (z=%.2f).",
			side, in.Stats.Parity, in.Stats.ExpectedEvens(), k*q, z),
		Confidence: twoSided(z),
		Statistic:  z,
	}}
}

// ReturnStabilityRule flags return sizes that vary less than chance would
// make them vary between independent draws.
type ReturnStabilityRule struct{}

func (r *ReturnStabilityRule) Name() string { return "return_stability" }

func (r *ReturnStabilityRule) Evaluate(in Input) []result.Pattern {
	recs := in.Returns.Records
	if len(recs) < 2 {
		return nil
	}
	rules := in.Series.Rules()

	sizes := make(stats.Float64Data, len(recs))
	for i, rec := range recs {
		sizes[i] = float64(rec.Size)
	}
	mean, _ := stats.Mean(sizes)
	variance, _ := stats.PopulationVariance(sizes)
	if mean == 0 {
		return nil
	}

	n, k := float64(rules.N), float64(rules.K)
	chanceVar := 0.0
	if rules.N > 1 {
		chanceVar = k * (k / n) * ((n - k) / n) * ((n - k) / (n - 1))
	}
	if chanceVar <= 0 || variance >= chanceVar {
		return nil
	}

	cv := math.Sqrt(variance) / mean
	return []result.Pattern{{
		Kind: result.PatternReturnStability,
		Name: "Stable return size",
		Description: fmt.Sprintf(
			"Consecutive draws share %.2f numbers on average with variance %.2f, below the %.2f expected by chance "+
				"(coefficient of variation %.2f over %d comparisons).",
			mean, variance, chanceVar, cv, len(recs)),
		Confidence: 1 / (1 + cv),
		Statistic:  cv,
	}}
}
