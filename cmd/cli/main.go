package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"drawlab/internal/config"
	"drawlab/internal/container"
	"drawlab/internal/logging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cliEnv is shared by every subcommand once the root has loaded config.
type cliEnv struct {
	config *config.Config
	logger zerolog.Logger
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	env := &cliEnv{}
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "drawlab",
		Short:         "Analyze lottery draw histories and generate new candidate draws",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			// Console runs stay quiet unless asked.
			level := "warn"
			if verbose {
				level = "debug"
			}
			env.config = cfg
			env.logger = logging.New(logging.Config{Level: level, Pretty: true, Output: os.Stderr})
			logging.SetGlobalLogger(env.logger)
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddCommand(
		newAnalyzeCmd(env),
		newVerifyCmd(env),
		newFetchCmd(env),
		newSimulateCmd(env),
	)
	return rootCmd
}

func (e *cliEnv) openContainer(ctx context.Context) (*container.Container, error) {
	return container.New(ctx, e.config, e.logger)
}
