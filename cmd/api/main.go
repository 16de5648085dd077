package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricealert/packages/api"
	"pricealert/packages/cache"
	"pricealert/packages/config"
	"pricealert/packages/db"
	"pricealert/packages/logging"
	"pricealert/packages/metrics"
	"pricealert/packages/pipeline"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on system environment variables.")
	}
	cfg := config.Load()
	logging.Setup(cfg, "pricealert-api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("--- Starting Price Alert API ---")

	coordinator, err := pipeline.NewFromConfig(cfg)
	if err != nil {
		slog.Error("Failed to build extraction pipeline", "error", err)
		os.Exit(1)
	}

	var resultCache api.ResultCache
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			slog.Warn("Result cache disabled", "error", err)
		} else {
			defer client.Close()
			resultCache = cache.New(client, cfg.CachePrefix, cfg.CacheTTL)
			slog.Info("Result cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	var trackers api.TrackerStore
	if cfg.DatabaseURL != "" {
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
		trackers = storage
	}

	go metrics.ExposeMetrics(cfg.MetricsAddr)

	app := api.NewApp(api.NewHandler(coordinator, resultCache, trackers))
	go func() {
		slog.Info("HTTP API server starting", "addr", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			slog.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signal received. Exiting...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
}
