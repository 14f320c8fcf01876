// Package statistics computes descriptive statistics over a draw series.
package statistics

import (
	"drawlab/domain/core"
	"drawlab/domain/draw"
	"drawlab/domain/result"

	"github.com/montanaflynn/stats"
)

// Compute returns the frequency table, sum distribution and parity counts of
// the series. It never mutates the series and returns identical results for
// identical input.
func Compute(series draw.Series) (result.Statistics, error) {
	if series.IsEmpty() {
		return result.Statistics{}, core.NewEmptyInputError("statistics")
	}

	freq := make(result.FrequencyTable)
	sums := make(stats.Float64Data, 0, series.Len())
	parity := result.ParityRatio{}
	minSum, maxSum := 0, 0

	for i, d := range series.Draws() {
		for _, n := range d.Numbers() {
			freq[n]++
			if n%2 == 0 {
				parity.Even++
			} else {
				parity.Odd++
			}
		}

		sum := d.Sum()
		sums = append(sums, float64(sum))
		if i == 0 || sum < minSum {
			minSum = sum
		}
		if i == 0 || sum > maxSum {
			maxSum = sum
		}
	}

	mean, err := stats.Mean(sums)
	if err != nil {
		return result.Statistics{}, err
	}
	stdDev, err := stats.StandardDeviationPopulation(sums)
	if err != nil {
		return result.Statistics{}, err
	}

	return result.Statistics{
		Draws:      series.Len(),
		Frequency:  freq,
		AverageSum: mean,
		SumStdDev:  stdDev,
		MinSum:     minSum,
		MaxSum:     maxSum,
		Parity:     parity,
	}, nil
}

// Sums returns the per-draw sums in series order.
func Sums(series draw.Series) []float64 {
	sums := make([]float64, series.Len())
	for i := 0; i < series.Len(); i++ {
		sums[i] = float64(series.At(i).Sum())
	}
	return sums
}
