package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"drawlab/adapters/excel"
	"drawlab/adapters/report"
	"drawlab/app"
	"drawlab/domain/result"
	"drawlab/internal/config"
	"drawlab/internal/container"
	"drawlab/internal/errors"
	"drawlab/ports"

	"github.com/spf13/cobra"
)

// outputFlags are shared by the commands that print a bundle.
type outputFlags struct {
	format string
	out    string
}

func addOutputFlags(cmd *cobra.Command) *outputFlags {
	f := &outputFlags{}
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "report format: text, markdown, html or json")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "also write the candidates to a .txt or .xlsx file")
	return f
}

func newAnalyzeCmd(env *cliEnv) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a draw history file (.xlsx, .csv or .txt)",
		Args:  cobra.ExactArgs(1),
	}
	engineF := addEngineFlags(cmd)
	outF := addOutputFlags(cmd)
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet to read from an .xlsx file (default: first)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		engine, err := env.engine(cmd, engineF)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(outF.format)
		if err != nil {
			return err
		}

		readerCfg := excel.DefaultReaderConfig()
		readerCfg.Sheet = sheet
		reader := excel.NewDrawReader(args[0], readerCfg, env.logger)

		c, err := env.openContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer c.Close()
		return runAnalysis(cmd, c, reader, engine, format, outF.out)
	}
	return cmd
}

// runAnalysis is the tail shared by analyze and fetch.
func runAnalysis(cmd *cobra.Command, c *container.Container, reader ports.SeriesReader, engine config.EngineConfig, format report.Format, out string) error {
	ingested, err := reader.ReadSeries(cmd.Context(), engine.Rules())
	if err != nil {
		return err
	}
	printIngest(cmd.ErrOrStderr(), ingested)

	bundle, err := c.Analysis.Analyze(cmd.Context(), app.AnalysisRequest{
		Series: ingested.Series,
		Source: ingested.Source,
		Engine: engine,
	})
	if err != nil {
		return err
	}

	// Plain text output is the candidate list alone, so the narrative goes to stderr.
	if format == report.FormatText {
		printNarrative(cmd.ErrOrStderr(), bundle)
	}

	body, err := report.Render(bundle, format)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(body); err != nil {
		return err
	}

	if out != "" {
		if err := writeCandidates(out, bundle); err != nil {
			return err
		}
		printSaved(cmd.ErrOrStderr(), len(bundle.Candidates), out)
	}
	return nil
}

func writeCandidates(path string, bundle *result.Bundle) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return excel.WriteCandidatesXLSX(path, bundle.CandidateRows())
	case ".txt":
		return writeFile(path, []byte(report.CandidatesText(bundle)))
	case ".csv":
		return writeRows(path, bundle.CandidateRows(), ",")
	default:
		return errors.InvalidInput(fmt.Sprintf("unsupported output file %q: expected .txt, .csv or .xlsx", path))
	}
}

func writeRows(path string, rows [][]int, sep string) error {
	var buf bytes.Buffer
	if err := writeRowsTo(&buf, rows, sep); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeRowsTo(w io.Writer, rows [][]int, sep string) error {
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, n := range row {
			cells[i] = strconv.Itoa(n)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, sep)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write "+path)
	}
	return nil
}
