package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricealert/packages/config"
	"pricealert/packages/db"
	"pricealert/packages/logging"
	"pricealert/packages/metrics"
	"pricealert/packages/pipeline"
	"pricealert/packages/worker"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on system environment variables.")
	}
	cfg := config.Load()
	logging.Setup(cfg, "pricealert-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("--- Starting Price Alert Worker ---")

	if err := cfg.RequireDatabase(); err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	go metrics.ExposeMetrics(cfg.MetricsAddr)

	storage, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	if err := storage.EnsureSchema(ctx); err != nil {
		slog.Error("Failed to ensure schema", "error", err)
		os.Exit(1)
	}

	coordinator, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		slog.Error("Failed to build extraction pipeline", "error", err)
		os.Exit(1)
	}

	appWorker := worker.New(cfg, storage, coordinator)

	slog.Info("Worker scheduled",
		"interval", cfg.SleepInterval.String(),
		"recheck_after", cfg.RecheckAfter.String(),
		"max_workers", cfg.MaxWorkers,
		"batch_size", cfg.BatchSize,
	)

	ticker := time.NewTicker(cfg.SleepInterval)
	defer ticker.Stop()

	appWorker.ProcessBatch(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("Shutdown signal received. Exiting...")
			return
		case <-ticker.C:
			slog.Debug("Worker cycle starting")
			appWorker.ProcessBatch(ctx)
		}
	}
}
