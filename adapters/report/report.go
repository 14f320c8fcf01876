// Package report renders analysis bundles as candidate lists, Markdown, HTML
// and JSON.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"drawlab/domain/result"
	"drawlab/internal/errors"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// barWidth is the length of the longest frequency bar.
const barWidth = 20

// Format names an output rendering.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names and a few common aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown report format %q (want text, markdown, html or json)", s))
}

// Render produces the bundle in the given format.
func Render(b *result.Bundle, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(CandidatesText(b)), nil
	case FormatMarkdown:
		return []byte(Markdown(b)), nil
	case FormatHTML:
		return HTMLDocument(b), nil
	case FormatJSON:
		return JSON(b)
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}

// ContentType returns the MIME type of a format.
func ContentType(format Format) string {
	switch format {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// CandidatesText lists one candidate per line, numbers separated by single
// spaces, in generation order.
func CandidatesText(b *result.Bundle) string {
	var sb strings.Builder
	for _, row := range b.CandidateRows() {
		sb.WriteString(joinInts(row, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// JSON encodes the full bundle.
func JSON(b *result.Bundle) ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// Markdown renders the human-readable report.
func Markdown(b *result.Bundle) string {
	var sb strings.Builder
	st := b.Statistics

	sb.WriteString("# Draw analysis\n\n")
	fmt.Fprintf(&sb, "Run `%s`", b.RunID)
	if b.Source != "" {
		fmt.Fprintf(&sb, " on `%s`", codeSpan(b.Source))
	}
	fmt.Fprintf(&sb, " (series `%s`, %s)\n\n", b.Fingerprint.Short(), b.CreatedAt.UTC().Format("2006-01-02 15:04 UTC"))

	sb.WriteString("## Summary\n\n")
	sb.WriteString(b.Summary)
	sb.WriteString("\n\n")

	sb.WriteString("## Metrics\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Draws | %d |\n", st.Draws)
	fmt.Fprintf(&sb, "| Average sum | %.2f |\n", st.AverageSum)
	fmt.Fprintf(&sb, "| Sum std dev | %.2f |\n", st.SumStdDev)
	fmt.Fprintf(&sb, "| Sum range | %d to %d |\n", st.MinSum, st.MaxSum)
	fmt.Fprintf(&sb, "| Even:odd | %s |\n", st.Parity)
	sb.WriteString("\n")

	sb.WriteString("## Patterns\n\n")
	if len(b.Patterns) == 0 {
		sb.WriteString("No pattern crossed the detection threshold.\n\n")
	} else {
		for _, p := range b.Patterns {
			fmt.Fprintf(&sb, "- **%s** (%d%% confidence): %s\n", p.Name, p.Percent(), p.Description)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Number frequency\n\n")
	writeFrequency(&sb, b)

	sb.WriteString("## Returns\n\n")
	sb.WriteString(b.ReturnAnalysis)
	sb.WriteString("\n\n")
	if len(b.Returns.Blocks) > 0 {
		sb.WriteString("| Block | Draw pairs | Mean repeated | Variance |\n|---|---|---|---|\n")
		for _, blk := range b.Returns.Blocks {
			label := fmt.Sprint(blk.Index + 1)
			if blk.Partial {
				label += " (partial)"
			}
			fmt.Fprintf(&sb, "| %s | %d | %.2f | %.2f |\n", label, blk.Records, blk.MeanSize, blk.Variance)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Candidates\n\n")
	if len(b.Candidates) == 0 {
		sb.WriteString("No candidates.\n\n")
	} else {
		sb.WriteString("| # | Numbers | Attempt | Rejected before |\n|---|---|---|---|\n")
		for i, c := range b.Candidates {
			fmt.Fprintf(&sb, "| %d | %s | %d | %d |\n", i+1, joinInts(c.Numbers, " "), c.Round, c.Rejections)
		}
		sb.WriteString("\n")
	}

	s := b.Settings
	fmt.Fprintf(&sb, "_Settings: %d of %d, %d candidates, seed %d, bias %.2f, sum tolerance %.1f, parity tolerance %.1f, block size %d._\n\n",
		s.K, s.N, s.TargetCount, s.Seed, s.BiasStrength, s.SumTolerance, s.ParityTolerance, s.BlockSize)
	sb.WriteString("_Confidence figures are descriptive heuristics, not predictions._\n")
	return sb.String()
}

func writeFrequency(sb *strings.Builder, b *result.Bundle) {
	freq := b.Statistics.Frequency
	maxCount := freq.Max()
	sb.WriteString("| Number | Count | |\n|---|---|---|\n")
	for n := 1; n <= b.Settings.N; n++ {
		count := freq.Count(n)
		bar := 0
		if maxCount > 0 {
			bar = count * barWidth / maxCount
		}
		fmt.Fprintf(sb, "| %d | %d | %s |\n", n, count, strings.Repeat("█", bar))
	}
	sb.WriteString("\n")
}

// HTML renders the Markdown report to an HTML fragment.
func HTML(b *result.Bundle) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(Markdown(b)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank | html.SkipHTML | html.Safelink})
	return markdown.Render(doc, renderer)
}

// HTMLDocument wraps HTML in a standalone page.
func HTMLDocument(b *result.Bundle) []byte {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>Draw analysis %s</title>\n", b.RunID)
	sb.WriteString("</head>\n<body>\n")
	sb.Write(HTML(b))
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String())
}

// codeSpan keeps a user-supplied value inside a single-line code span.
func codeSpan(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '`':
			return '\''
		case r < ' ' || r == 0x7f:
			return ' '
		}
		return r
	}, s)
}

func joinInts(values []int, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, sep)
}
