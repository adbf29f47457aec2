package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/utafrali/bookshelf/internal/config"
	"github.com/utafrali/bookshelf/internal/fakeapi"
	"github.com/utafrali/bookshelf/pkg/logger"
	"github.com/utafrali/bookshelf/pkg/tracing"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.LoadMockAPI()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("bookshelf-mockapi", cfg.LogLevel)
	log.Info("starting mock backend",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.Bool("seed", cfg.Seed),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	srv, err := fakeapi.New(serverConfig(cfg), log)
	if err != nil {
		log.Error("failed to initialize mock backend", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Run blocks until the signal context is canceled.
	if err := fakeapi.NewApp(cfg.Addr(), srv, log).Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("mock backend stopped")
}

// serverConfig maps the environment settings onto the backend.
func serverConfig(cfg *config.MockAPI) fakeapi.Config {
	return fakeapi.Config{
		JWTSecret:   cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		BcryptCost:  cfg.BcryptCost,
		Seed:        cfg.Seed,
		CORSOrigins: cfg.CORSOrigins,
	}
}
