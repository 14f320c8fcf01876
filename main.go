package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"drawlab/internal/config"
	"drawlab/internal/container"
	"drawlab/internal/logging"
	"drawlab/ui"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; the environment wins over it.
	_ = godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.New(logging.Config{Level: appConfig.Logging.Level, Pretty: appConfig.Logging.Pretty})
	logging.SetGlobalLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(ctx, appConfig, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize container")
	}
	defer c.Close()

	app, err := ui.NewApp(ui.Config{
		Port:          appConfig.Server.Port,
		MaxUpload:     appConfig.Server.MaxUploadBytes,
		MaxConcurrent: appConfig.Server.MaxConcurrentAnalyses,
		Engine:        appConfig.Engine,
		Log:           logger,
	}, c.Analysis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create UI app")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()
	logger.Info().Msgf("drawlab UI on http://localhost:%s", appConfig.Server.Port)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("UI server failed")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("UI server shutdown failed")
		}
	}
}
