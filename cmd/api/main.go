package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drawlab/internal/api"
	"drawlab/internal/config"
	"drawlab/internal/container"
	"drawlab/internal/logging"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
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

	handler := api.NewHandler(c.Analysis, appConfig.Engine,
		appConfig.Server.MaxConcurrentAnalyses, appConfig.Server.MaxUploadBytes, logger)
	router := api.NewRouter(handler, appConfig.Server.GinMode)
	router.MaxMultipartMemory = appConfig.Server.MaxUploadBytes

	server := &http.Server{
		Addr:              ":" + appConfig.Server.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logger.Info().Str("addr", server.Addr).Msg("starting API server")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("API server failed")
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down API server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("API server shutdown failed")
		}
	}
}
