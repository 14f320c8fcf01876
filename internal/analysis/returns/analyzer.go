// Package returns compares consecutive draws and summarizes the comparisons
// in fixed-size blocks.
package returns

import (
	"drawlab/domain/draw"
	"drawlab/domain/result"

	"github.com/montanaflynn/stats"
)

// DefaultBlockSize is the number of records aggregated per block.
const DefaultBlockSize = 3

// Compute builds one record per adjacent pair of draws, groups the records in
// blocks of blockSize (the trailing block may be shorter and is flagged
// Partial) and anchors a latest-return view on the most recent draw.
// A series with fewer than two draws yields no records and no blocks.
func Compute(series draw.Series, blockSize int) result.ReturnAnalysis {
	if blockSize < 1 {
		blockSize = DefaultBlockSize
	}

	analysis := result.ReturnAnalysis{
		BlockSize: blockSize,
		Records:   []result.ReturnRecord{},
		Blocks:    []result.BlockSummary{},
	}

	k := series.Rules().K
	for i := 1; i < series.Len(); i++ {
		prev, cur := series.At(i-1), series.At(i)
		returned := prev.Intersect(cur)
		ratio := 0.0
		if k > 0 {
			ratio = float64(len(returned)) / float64(k)
		}
		analysis.Records = append(analysis.Records, result.ReturnRecord{
			Index:    i,
			Previous: prev.Numbers(),
			Current:  cur.Numbers(),
			Returned: returned,
			Size:     len(returned),
			Ratio:    ratio,
		})
	}

	analysis.Blocks = summarizeBlocks(analysis.Records, blockSize)

	if last, ok := series.Last(); ok {
		latest := &result.LatestReturn{
			LastDraw:       last.Numbers(),
			ExpectedReturn: ExpectedReturn(analysis.Records, series.Rules()),
		}
		if n := len(analysis.Records); n > 0 {
			rec := analysis.Records[n-1]
			latest.Record = &rec
		}
		analysis.Latest = latest
	}

	return analysis
}

// ExpectedReturn is the mean record size, or the overlap expected between two
// independent uniform draws (K*K/N) when there are no records.
func ExpectedReturn(records []result.ReturnRecord, rules draw.Rules) float64 {
	if len(records) == 0 {
		if rules.N == 0 {
			return 0
		}
		return float64(rules.K*rules.K) / float64(rules.N)
	}
	mean, _ := stats.Mean(sizesOf(records))
	return mean
}

func summarizeBlocks(records []result.ReturnRecord, blockSize int) []result.BlockSummary {
	blocks := []result.BlockSummary{}
	for start := 0; start < len(records); start += blockSize {
		end := start + blockSize
		if end > len(records) {
			end = len(records)
		}
		sizes := sizesOf(records[start:end])
		mean, _ := stats.Mean(sizes)
		variance, _ := stats.PopulationVariance(sizes)

		blocks = append(blocks, result.BlockSummary{
			Index:    len(blocks),
			Start:    start,
			End:      end - 1,
			Records:  end - start,
			MeanSize: mean,
			Variance: variance,
			Partial:  end-start < blockSize,
		})
	}
	return blocks
}

func sizesOf(records []result.ReturnRecord) stats.Float64Data {
	sizes := make(stats.Float64Data, len(records))
	for i, r := range records {
		sizes[i] = float64(r.Size)
	}
	return sizes
}
