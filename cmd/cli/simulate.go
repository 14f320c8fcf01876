package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"drawlab/adapters/excel"
	"drawlab/internal/errors"
	"drawlab/internal/testkit"

	"github.com/spf13/cobra"
)

func newSimulateCmd(env *cliEnv) *cobra.Command {
	defaults := testkit.DefaultHistoryConfig()
	cfg := defaults
	var out string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic draw history",
		Long: `Simulate writes a deterministic synthetic history, optionally skewed toward
some hot numbers or carrying numbers from one draw to the next, for demos and
for trying the analyze command on known structure.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := testkit.NewHistoryGenerator(cfg).Generate()
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			env.logger.Debug().Int("draws", len(rows)).Int64("seed", cfg.Seed).Msg("history generated")

			if out == "" {
				return writeRowsTo(cmd.OutOrStdout(), rows, " ")
			}
			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx":
				err = excel.WriteCandidatesXLSX(out, rows)
			case ".csv":
				err = writeRows(out, rows, ",")
			case ".txt":
				err = writeRows(out, rows, " ")
			default:
				err = errors.InvalidInput(fmt.Sprintf("unsupported output file %q: expected .txt, .csv or .xlsx", out))
			}
			if err != nil {
				return err
			}
			printSaved(cmd.ErrOrStderr(), len(rows), out)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.IntVarP(&cfg.K, "k", "k", defaults.K, "numbers per draw")
	fs.IntVarP(&cfg.N, "n", "n", defaults.N, "size of the number universe")
	fs.IntVarP(&cfg.Draws, "draws", "d", defaults.Draws, "draws to generate")
	fs.Int64Var(&cfg.Seed, "seed", defaults.Seed, "random seed")
	fs.IntSliceVar(&cfg.HotNumbers, "hot", nil, "numbers drawn more often than the rest")
	fs.Float64Var(&cfg.HotWeight, "hot-weight", 3, "weight multiplier of the hot numbers")
	fs.IntVar(&cfg.Carry, "carry", 0, "numbers carried from each draw into the next")
	fs.StringVarP(&out, "out", "o", "", "write to a .txt, .csv or .xlsx file instead of stdout")
	return cmd
}
