package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwise1/reportnow/config"
	deps "github.com/bwise1/reportnow/internal/debs"
	api "github.com/bwise1/reportnow/internal/http/rest"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	allowConnectionsAfterShutdown = 1 * time.Second
)

func main() {
	cfg := config.New()
	setUpLogger(cfg)

	ctx := context.Background()
	deps := deps.New(ctx, cfg)

	if deps.DB != nil && cfg.RunMigrations {
		if err := deps.DB.Migrate(); err != nil {
			log.Error().Err(err).Msg("failed to run migrations, continuing with the existing schema")
		}
	}

	a := api.New(cfg, deps)
	go deps.WebSocket.Run()
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server running")
		if err := a.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-stopChan

	log.Info().Dur("grace", allowConnectionsAfterShutdown).Msg("request to shutdown server")
	waitTimer := time.NewTimer(allowConnectionsAfterShutdown)
	<-waitTimer.C

	log.Info().Msg("shutting down server...")
	if err := a.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	deps.Close()
	log.Info().Msg("shutdown complete")
}

func setUpLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
