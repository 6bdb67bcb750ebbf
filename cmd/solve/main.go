package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/fcaptcha/fcaptcha-go/internal/solveclient"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	baseURL := flag.String("server", "http://127.0.0.1:8080", "base URL of the fcaptcha server")
	sitekey := flag.String("sitekey", "NOT-AN-API-KEY", "sitekey to request a puzzle with")
	secret := flag.String("secret", "NOT-AN-API-KEY", "secret to submit the solved puzzle with")
	solveTimeout := flag.Duration("solve-timeout", 30*time.Second, "max time to spend solving")
	flag.Parse()

	logger.Info("Starting fcaptcha demo solver...", "server", *baseURL)

	c := solveclient.NewClient(solveclient.Config{
		BaseURL:        *baseURL,
		Sitekey:        *sitekey,
		Secret:         *secret,
		ConnectTimeout: 10 * time.Second,
		SolveTimeout:   *solveTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *solveTimeout+10*time.Second)
	defer cancel()

	start := time.Now()
	success, err := c.Solve(ctx)
	if err != nil {
		logger.Error("Failed to solve puzzle", "error", err)
		log.Fatal(err)
	}

	logger.Info("Puzzle solved and submitted", "success", success, "duration", time.Since(start))
}
