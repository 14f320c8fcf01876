package main

import (
	"fmt"
	"io"
	"strings"

	"drawlab/app"
	"drawlab/domain/draw"
	"drawlab/domain/result"
	"drawlab/internal/errors"

	"github.com/fatih/color"
)

// maxListedIssues caps the discarded rows echoed to the console.
const maxListedIssues = 10

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("✗")
)

func printError(w io.Writer, err error) {
	code := errors.GetCode(err)
	label := color.New(color.FgRed, color.Bold).Sprint("error")
	if code != "" && code != errors.CodeInternalError {
		fmt.Fprintf(w, "%s [%s]: %v\n", label, code, err)
		return
	}
	fmt.Fprintf(w, "%s: %v\n", label, err)
}

func printIngest(w io.Writer, in *draw.Ingested) {
	fmt.Fprintf(w, "%s %s: %d draws read from %d rows\n", okMark, in.Source, in.Accepted(), in.Rows)
	if in.Skipped > 0 {
		fmt.Fprintf(w, "  %d rows without numbers skipped\n", in.Skipped)
	}
	if len(in.Discarded) == 0 {
		return
	}
	fmt.Fprintf(w, "%s %d malformed rows discarded\n", warnMark, len(in.Discarded))
	for i, issue := range in.Discarded {
		if i == maxListedIssues {
			fmt.Fprintf(w, "  ... and %d more\n", len(in.Discarded)-maxListedIssues)
			break
		}
		fmt.Fprintf(w, "  line %d: %s\n", issue.Line, color.New(color.FgYellow).Sprint(issue.Reason))
	}
}

func printNarrative(w io.Writer, bundle *result.Bundle) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bundle.Summary)
	fmt.Fprintln(w, bundle.ReturnAnalysis)
	fmt.Fprintf(w, "%s\n", color.New(color.Faint).Sprintf("run %s", bundle.RunID))
	fmt.Fprintln(w)
}

func printSaved(w io.Writer, rows int, path string) {
	fmt.Fprintf(w, "%s %d rows written to %s\n", okMark, rows, color.New(color.FgCyan).Sprint(path))
}

func printVerification(w io.Writer, report app.VerificationReport) {
	for _, check := range report.Checks {
		numbers := formatNumbers(check.Numbers)
		switch {
		case !check.Valid:
			fmt.Fprintf(w, "%s #%d %s  %s\n", failMark, check.Index+1, numbers, color.New(color.FgRed).Sprint("invalid: "+check.Reason))
		case check.InHistory:
			fmt.Fprintf(w, "%s #%d %s  %s\n", failMark, check.Index+1, numbers, color.New(color.FgRed).Sprint("already drawn"))
		case check.Duplicate:
			fmt.Fprintf(w, "%s #%d %s  %s\n", warnMark, check.Index+1, numbers,
				color.New(color.FgYellow).Sprintf("repeats #%d", check.DuplicateOf+1))
		default:
			fmt.Fprintf(w, "%s #%d %s  %s\n", okMark, check.Index+1, numbers, color.New(color.FgGreen).Sprint("novel"))
		}
	}

	summary := fmt.Sprintf("%d/%d novel, %d invalid, %d already drawn, %d repeated",
		report.Novel, len(report.Checks), report.Invalid, report.Collisions, report.Duplicates)
	if report.AllNovel() {
		fmt.Fprintln(w, color.New(color.FgGreen, color.Bold).Sprint(summary))
		return
	}
	fmt.Fprintln(w, color.New(color.FgRed, color.Bold).Sprint(summary))
}

func formatNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = fmt.Sprintf("%02d", n)
	}
	return strings.Join(parts, " ")
}
