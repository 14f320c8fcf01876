package main

import (
	"fmt"
	"os"

	feed "drawlab/adapters/api"
	"drawlab/adapters/excel"
	"drawlab/app"
	"drawlab/internal/errors"

	"github.com/spf13/cobra"
)

func newVerifyCmd(env *cliEnv) *cobra.Command {
	var sheet string
	cmd := &cobra.Command{
		Use:   "verify <series-file> <predictions.json>",
		Short: "Check externally produced predictions against a draw history",
		Long: `Verify reads a draw history and a JSON batch of predictions and reports,
for each prediction, whether it is a valid draw, whether it already occurred
in the history and whether it repeats an earlier prediction. The command
fails unless every prediction is novel.`,
		Args: cobra.ExactArgs(2),
	}
	engineF := addEngineFlags(cmd)
	cmd.Flags().StringVar(&sheet, "sheet", "", "worksheet to read from an .xlsx file (default: first)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		engine, err := env.engine(cmd, engineF)
		if err != nil {
			return err
		}

		readerCfg := excel.DefaultReaderConfig()
		readerCfg.Sheet = sheet
		ingested, err := excel.NewDrawReader(args[0], readerCfg, env.logger).ReadSeries(cmd.Context(), engine.Rules())
		if err != nil {
			return err
		}
		printIngest(cmd.ErrOrStderr(), ingested)

		raw, err := os.ReadFile(args[1])
		if err != nil {
			return errors.Wrap(err, "failed to read predictions")
		}
		predictions, err := feed.ParsePredictions(raw)
		if err != nil {
			return err
		}

		report := app.VerifyPredictions(ingested.Series, predictions)
		printVerification(cmd.OutOrStdout(), report)
		if !report.AllNovel() {
			return fmt.Errorf("%d of %d predictions are not novel", len(report.Checks)-report.Novel, len(report.Checks))
		}
		return nil
	}
	return cmd
}
