package result

import (
	"fmt"
	"sort"
	"time"

	"drawlab/domain/core"
	"drawlab/domain/draw"
)

// FrequencyTable maps a number to how many draws contained it. Numbers that
// never appeared are absent; Count reports them as zero.
type FrequencyTable map[int]int

// Count returns the occurrences of n, zero when absent.
func (f FrequencyTable) Count(n int) int {
	return f[n]
}

// Total returns the sum of every count.
func (f FrequencyTable) Total() int {
	total := 0
	for _, c := range f {
		total += c
	}
	return total
}

// Max returns the highest count in the table.
func (f FrequencyTable) Max() int {
	highest := 0
	for _, c := range f {
		if c > highest {
			highest = c
		}
	}
	return highest
}

// Numbers returns the observed numbers in ascending order.
func (f FrequencyTable) Numbers() []int {
	nums := make([]int, 0, len(f))
	for n := range f {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}

// ParityRatio holds raw even and odd counts across the series. It is not
// reduced so the sample size is preserved.
type ParityRatio struct {
	Even int `json:"even"`
	Odd  int `json:"odd"`
}

func (p ParityRatio) String() string {
	return fmt.Sprintf("%d:%d", p.Even, p.Odd)
}

// EvenShare returns the fraction of even numbers, zero when there are none.
func (p ParityRatio) EvenShare() float64 {
	total := p.Even + p.Odd
	if total == 0 {
		return 0
	}
	return float64(p.Even) / float64(total)
}

// Statistics is the output of the statistics engine.
type Statistics struct {
	Draws      int            `json:"draws"`
	Frequency  FrequencyTable `json:"frequency"`
	AverageSum float64        `json:"average_sum"`
	SumStdDev  float64        `json:"sum_std_dev"`
	MinSum     int            `json:"min_sum"`
	MaxSum     int            `json:"max_sum"`
	Parity     ParityRatio    `json:"parity"`
}

// ExpectedEvens returns the mean number of even numbers per draw.
func (s Statistics) ExpectedEvens() float64 {
	if s.Draws == 0 {
		return 0
	}
	return float64(s.Parity.Even) / float64(s.Draws)
}

// ReturnRecord compares a draw with the one before it.
type ReturnRecord struct {
	Index    int     `json:"index"` // index of the current draw in the series
	Previous []int   `json:"previous"`
	Current  []int   `json:"current"`
	Returned []int   `json:"returned"`
	Size     int     `json:"size"`
	Ratio    float64 `json:"ratio"`
}

// BlockSummary aggregates consecutive return records.
type BlockSummary struct {
	Index    int     `json:"index"`
	Start    int     `json:"start"` // first record position, inclusive
	End      int     `json:"end"`   // last record position, inclusive
	Records  int     `json:"records"`
	MeanSize float64 `json:"mean_size"`
	Variance float64 `json:"variance"`
	Partial  bool    `json:"partial"`
}

// LatestReturn is the return analysis anchored on the most recent draw.
type LatestReturn struct {
	Record         *ReturnRecord `json:"record,omitempty"`
	LastDraw       []int         `json:"last_draw"`
	ExpectedReturn float64       `json:"expected_return"`
}

// ReturnAnalysis is the output of the return analyzer.
type ReturnAnalysis struct {
	BlockSize int            `json:"block_size"`
	Records   []ReturnRecord `json:"records"`
	Blocks    []BlockSummary `json:"blocks"`
	Latest    *LatestReturn  `json:"latest,omitempty"`
}

// Sizes returns the size of every record in order.
func (r ReturnAnalysis) Sizes() []int {
	sizes := make([]int, len(r.Records))
	for i, rec := range r.Records {
		sizes[i] = rec.Size
	}
	return sizes
}

// PatternKind discriminates the rule that produced a pattern.
type PatternKind string

const (
	PatternFrequencyHot    PatternKind = "frequency_hot"
	PatternFrequencyCold   PatternKind = "frequency_cold"
	PatternSumBand         PatternKind = "sum_band"
	PatternParitySkew      PatternKind = "parity_skew"
	PatternReturnStability PatternKind = "return_stability"
)

// Pattern is a named structural observation with a heuristic confidence.
type Pattern struct {
	Kind        PatternKind `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Confidence  float64     `json:"confidence"`
	Statistic   float64     `json:"statistic"`
	Numbers     []int       `json:"numbers,omitempty"`
}

// Percent returns the confidence as a whole percentage.
func (p Pattern) Percent() int {
	return int(p.Confidence * 100)
}

// Candidate is a generated draw with its provenance.
type Candidate struct {
	Draw       draw.Draw `json:"-"`
	Numbers    []int     `json:"numbers"`
	Round      int       `json:"round"`
	Rejections int       `json:"rejections"`
}

// NewCandidate fills Numbers from the draw.
func NewCandidate(d draw.Draw, round, rejections int) Candidate {
	return Candidate{Draw: d, Numbers: d.Numbers(), Round: round, Rejections: rejections}
}

// Settings echoes the configuration a bundle was produced with.
type Settings struct {
	K               int     `json:"k"`
	N               int     `json:"n"`
	TargetCount     int     `json:"target_count"`
	BlockSize       int     `json:"block_size"`
	MaxAttempts     int     `json:"max_attempts"`
	SumTolerance    float64 `json:"sum_tolerance"`
	ParityTolerance float64 `json:"parity_tolerance"`
	BiasStrength    float64 `json:"bias_strength"`
	Seed            int64   `json:"seed"`
	ZThreshold      float64 `json:"z_threshold"`
}

// Bundle is everything one analysis run produces.
type Bundle struct {
	RunID          core.RunID     `json:"run_id"`
	Source         string         `json:"source,omitempty"`
	Fingerprint    core.Hash      `json:"fingerprint"`
	Summary        string         `json:"summary"`
	ReturnAnalysis string         `json:"return_analysis"`
	Statistics     Statistics     `json:"statistics"`
	Returns        ReturnAnalysis `json:"returns"`
	Patterns       []Pattern      `json:"patterns"`
	Candidates     []Candidate    `json:"candidates"`
	Settings       Settings       `json:"settings"`
	Attempts       int            `json:"attempts"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CandidateRows returns the numbers of every candidate in generation order.
func (b *Bundle) CandidateRows() [][]int {
	rows := make([][]int, len(b.Candidates))
	for i, c := range b.Candidates {
		rows[i] = append([]int(nil), c.Numbers...)
	}
	return rows
}

// RunSummary is the listing view of a stored run.
type RunSummary struct {
	RunID       core.RunID `json:"run_id" db:"id"`
	Source      string     `json:"source" db:"source"`
	Fingerprint core.Hash  `json:"fingerprint" db:"fingerprint"`
	Draws       int        `json:"draws" db:"draw_count"`
	Candidates  int        `json:"candidates" db:"candidate_count"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// RestoreDraws rebuilds the candidate draws from their numbers after the
// bundle was decoded from JSON.
func (b *Bundle) RestoreDraws() {
	for i := range b.Candidates {
		b.Candidates[i].Draw = draw.New(b.Candidates[i].Numbers...)
	}
}

// RunSummary returns the listing view of the bundle.
func (b *Bundle) RunSummary() RunSummary {
	return RunSummary{
		RunID:       b.RunID,
		Source:      b.Source,
		Fingerprint: b.Fingerprint,
		Draws:       b.Statistics.Draws,
		Candidates:  len(b.Candidates),
		CreatedAt:   b.CreatedAt,
	}
}
