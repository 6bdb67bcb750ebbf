package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fcaptcha/fcaptcha-go/internal/access"
	"github.com/fcaptcha/fcaptcha-go/internal/config"
	"github.com/fcaptcha/fcaptcha-go/internal/httpapi"
	"github.com/fcaptcha/fcaptcha-go/internal/maintenance"
	"github.com/fcaptcha/fcaptcha-go/internal/puzzle"
	"github.com/fcaptcha/fcaptcha-go/internal/replay"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("Starting fcaptcha server...")

	// Load configuration
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger.Info("Configuration loaded",
		"bind_address", cfg.BindAddress,
		"bind_port", cfg.BindPort,
		"access_ttl", cfg.AccessTTL,
		"puzzle_ttl", cfg.PuzzleTTL)

	// Initialize core state and services
	accessTracker := access.NewTracker()
	replayStore := replay.NewStore()

	builder := puzzle.NewBuilder(accessTracker, cfg.SecretKey)
	verifier := puzzle.NewVerifier(replayStore, cfg.SecretKey)
	verifier.Logger = logger

	registry := prometheus.NewRegistry()

	httpCfg := httpapi.Config{
		BindAddress:       cfg.BindAddress,
		BindPort:          cfg.BindPort,
		ShutdownTimeout:   10 * time.Second,
		TrustForwardedFor: false,
		AccessTTL:         cfg.AccessTTL,
		PuzzleTTL:         cfg.PuzzleTTL,
	}

	srv := httpapi.NewServer(httpCfg, builder, verifier, cfg.APIKey, logger, registry)

	// Periodic eviction sweep for both maps; see design note on the
	// known resource-growth gap in the unswept-map approach.
	sweepInterval := time.Duration(cfg.AccessTTL) * time.Second / 2
	if puzzleHalf := time.Duration(cfg.PuzzleTTL) * time.Second / 2; puzzleHalf < sweepInterval {
		sweepInterval = puzzleHalf
	}
	sweeper := maintenance.New(sweepInterval, logger)
	sweeper.Add("access", accessTracker, cfg.AccessTTL)
	sweeper.Add("replay", replayStore, cfg.PuzzleTTL)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sweeper.Run(ctx)

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("Received shutdown signal", "signal", sig)
		cancel()

		logger.Info("Waiting for server to shut down gracefully...")
		if err := <-errChan; err != nil {
			logger.Error("Server shutdown error", "error", err)
			log.Fatal(err)
		}

	case err := <-errChan:
		cancel()
		if err != nil {
			logger.Error("Server error", "error", err)
			log.Fatal(err)
		}
		logger.Info("Server exited without error")
	}

	logger.Info("Server stopped")
}
