package app

import (
	"fmt"
	"strings"

	"drawlab/domain/result"
)

// summaryPatternLimit caps how many patterns the summary names.
const summaryPatternLimit = 3

// Summarize writes the narrative overview of a bundle. The text depends only
// on the bundle contents, so equal bundles yield equal summaries.
func Summarize(b *result.Bundle) string {
	st := b.Statistics
	var sb strings.Builder

	fmt.Fprintf(&sb, "Analyzed %d draws of %d numbers from 1 to %d.", st.Draws, b.Settings.K, b.Settings.N)
	fmt.Fprintf(&sb, " Draw sums averaged %.2f (std dev %.2f, range %d to %d).",
		st.AverageSum, st.SumStdDev, st.MinSum, st.MaxSum)
	fmt.Fprintf(&sb, " Even to odd ratio was %s.", st.Parity)

	if hot, cold := extremes(st.Frequency); len(hot) > 0 {
		fmt.Fprintf(&sb, " Most drawn: %s. Least drawn: %s.", joinInts(hot), joinInts(cold))
	}

	if len(b.Patterns) == 0 {
		sb.WriteString(" No structural pattern crossed the detection threshold.")
	} else {
		n := len(b.Patterns)
		if n > summaryPatternLimit {
			n = summaryPatternLimit
		}
		names := make([]string, n)
		for i := 0; i < n; i++ {
			names[i] = fmt.Sprintf("%s (%d%%)", b.Patterns[i].Name, b.Patterns[i].Percent())
		}
		fmt.Fprintf(&sb, " Detected %d pattern(s); strongest: %s.", len(b.Patterns), strings.Join(names, ", "))
	}

	fmt.Fprintf(&sb, " Generated %d new candidate(s) in %d attempt(s), none present in the history.",
		len(b.Candidates), b.Attempts)
	sb.WriteString(" Confidence figures describe the history and do not predict future draws.")
	return sb.String()
}

// DescribeReturns writes the return-analysis narrative of a bundle.
func DescribeReturns(b *result.Bundle) string {
	ret := b.Returns
	if len(ret.Records) == 0 {
		return "Fewer than two draws: there are no consecutive draws to compare."
	}

	var sb strings.Builder
	sizes := ret.Sizes()
	total := 0
	for _, s := range sizes {
		total += s
	}
	fmt.Fprintf(&sb, "Compared %d consecutive pairs; on average %.2f numbers repeated from one draw to the next.",
		len(sizes), float64(total)/float64(len(sizes)))

	partial := 0
	for _, blk := range ret.Blocks {
		if blk.Partial {
			partial++
		}
	}
	fmt.Fprintf(&sb, " %d block(s) of %d", len(ret.Blocks), ret.BlockSize)
	if partial > 0 {
		sb.WriteString(", the last one partial")
	}
	sb.WriteString(".")

	if latest := ret.Latest; latest != nil {
		if latest.Record != nil {
			fmt.Fprintf(&sb, " The latest draw repeated %d number(s) from the previous one (%s).",
				latest.Record.Size, joinInts(latest.Record.Returned))
		}
		fmt.Fprintf(&sb, " Candidates aim for about %.2f returning number(s) from the latest draw %s.",
			latest.ExpectedReturn, joinInts(latest.LastDraw))
	}
	return sb.String()
}

// extremes returns the numbers sharing the highest and the lowest count,
// ascending. Numbers never drawn are not in the table and are ignored.
func extremes(freq result.FrequencyTable) (hot, cold []int) {
	numbers := freq.Numbers()
	if len(numbers) == 0 {
		return nil, nil
	}
	maxCount := freq.Max()
	minCount := maxCount
	for _, n := range numbers {
		if c := freq.Count(n); c < minCount {
			minCount = c
		}
	}
	for _, n := range numbers {
		if freq.Count(n) == maxCount {
			hot = append(hot, n)
		}
		if freq.Count(n) == minCount {
			cold = append(cold, n)
		}
	}
	return hot, cold
}

func joinInts(values []int) string {
	if len(values) == 0 {
		return "none"
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, " ")
}
