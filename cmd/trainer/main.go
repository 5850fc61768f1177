package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/cli"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// The practice client works without a config file; the defaults match
	// the server's.
	cfg := config.Default()
	if path := os.Getenv("TRAINER_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	deps := &cli.Dependencies{
		Config: cfg,
		Logger: logger,
	}

	return cli.NewRootCmd(deps).Execute()
}
