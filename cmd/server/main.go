package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/config"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/metrics"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/recognition"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/server"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/store"
	"github.com/quaneh2/vietnamese-pronunciation-trainer/internal/words"
)

const (
	defaultConfigPath = "configs/config.yaml"
	serviceName       = "vietnamese-pronunciation-trainer"
	serviceVersion    = "1.0.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger based on configuration
	logger := initLogger(cfg.Logging)

	// Log service startup
	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
		slog.String("config_path", *configPath),
	)

	// Log configuration summary (without sensitive data)
	logger.Info("Configuration loaded",
		slog.String("listen_address", cfg.Server.ListenAddr()),
		slog.Int("max_recording_ms", cfg.Audio.MaxRecordingMs),
		slog.String("recognition_provider", cfg.Recognition.Provider),
		slog.String("recognition_language", cfg.Recognition.Language),
		slog.Bool("store_enabled", cfg.Store.Enabled),
		slog.Int("word_count", words.Count()),
		slog.String("log_level", cfg.Logging.Level),
	)

	// Initialize Prometheus metrics
	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	// Initialize the recognition provider and checker
	provider, err := newProvider(cfg.Recognition, appMetrics)
	if err != nil {
		logger.Error("Failed to create recognition provider", slog.String("error", err.Error()))
		os.Exit(1)
	}
	checker := recognition.NewChecker(provider, cfg.Recognition.Language, logger)
	logger.Info("Recognition gateway initialized",
		slog.String("provider", provider.Name()),
	)

	// Open the attempt store (if enabled)
	var attemptStore *store.Store
	if cfg.Store.Enabled {
		attemptStore, err = store.Open(cfg.Store.Path, logger)
		if err != nil {
			logger.Error("Failed to open attempt store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("Attempt store opened", slog.String("path", cfg.Store.Path))
	}

	// Initialize and start the HTTP API server
	var serverStore server.AttemptStore
	if attemptStore != nil {
		serverStore = attemptStore
	}
	httpServer := server.NewHTTPServer(cfg, logger, checker, serverStore, appMetrics)
	if err := httpServer.Start(); err != nil {
		logger.Error("Failed to start HTTP server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...",
		slog.String("address", cfg.Server.ListenAddr()),
	)

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	logger.Info("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	if attemptStore != nil {
		if err := attemptStore.Close(); err != nil {
			logger.Error("Error closing attempt store", slog.String("error", err.Error()))
		}
	}

	// Final gateway statistics
	stats := checker.GatewayStats()
	logger.Info("Final recognition statistics",
		slog.Uint64("total_requests", stats.TotalRequests),
		slog.Uint64("success_requests", stats.SuccessRequests),
		slog.Uint64("failed_requests", stats.FailedRequests),
		slog.Uint64("total_retries", stats.TotalRetries),
	)

	logger.Info("Service stopped")
}

// newProvider builds the configured speech recognition provider.
func newProvider(cfg config.RecognitionConfig, m *metrics.Metrics) (recognition.Provider, error) {
	switch cfg.Provider {
	case "whisper":
		return recognition.NewWhisperClient(recognition.WhisperConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.ResolveAPIKey(),
			Model:    cfg.Model,
			Timeout:  cfg.GetTimeoutDuration(),
		}, m)
	default:
		return recognition.NewGoogleClient(recognition.GoogleConfig{
			Endpoint:      cfg.Endpoint,
			APIKey:        cfg.ResolveAPIKey(),
			Timeout:       cfg.GetTimeoutDuration(),
			MaxRetries:    cfg.MaxRetries,
			MaxConcurrent: cfg.MaxConcurrent,
			PhraseBoost:   cfg.PhraseBoost,
		}, m)
	}
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	// Parse log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo // default fallback
	}

	// Configure handler options
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug, // Add source info for debug level
	}

	// Determine output destination
	var output *os.File
	switch cfg.Output {
	case "stderr":
		output = os.Stderr
	case "stdout", "":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stdout\n", cfg.Output, err)
			output = os.Stdout
		} else {
			output = file
		}
	}

	// Create handler based on format
	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	case "text", "":
		handler = slog.NewTextHandler(output, opts)
	default:
		// Default to text format
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
