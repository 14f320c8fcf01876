package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"drawlab/internal/logging"
	"drawlab/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var driver, url string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the analysis run store schema",
		Example: `  migrate --driver postgres --url postgres://localhost/drawlab?sslmode=disable
  migrate --driver sqlite3 --url ./drawlab.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if driver == "" || driver == "memory" || url == "" {
				return fmt.Errorf("--driver (postgres or sqlite3) and --url are required")
			}
			logger := logging.New(logging.Config{Level: os.Getenv("LOG_LEVEL"), Pretty: true})

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := sqlx.ConnectContext(ctx, driver, url)
			if err != nil {
				return fmt.Errorf("failed to connect to %s: %w", driver, err)
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Run(ctx, db); err != nil {
				return err
			}
			logger.Info().Str("driver", driver).Str("version", runner.Version()).Msg("migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&driver, "driver", os.Getenv("DATABASE_DRIVER"), "database driver: postgres or sqlite3")
	cmd.Flags().StringVar(&url, "url", os.Getenv("DATABASE_URL"), "database connection URL or sqlite path")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "migration timeout")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
