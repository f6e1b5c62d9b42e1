// Command server runs the nutrition tracker API.
//
// Configuration comes from the environment, optionally seeded from a .env
// file in the working directory. FATSECRET_CONSUMER_KEY and
// FATSECRET_CONSUMER_SECRET are required.
package main

import (
	"log/slog"
	"os"

	"github.com/sakif/nutrition-tracker/internal/config"
	"github.com/sakif/nutrition-tracker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
