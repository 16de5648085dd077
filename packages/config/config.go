// Package config
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"
)

var ErrMissingDatabaseURL = errors.New("missing required environment variable: DATABASE_URL")

type Config struct {
	HTTPAddr    string
	MetricsAddr string

	FetchTimeout  time.Duration
	MaxWorkers    int
	BatchSize     int
	SleepInterval time.Duration
	RecheckAfter  time.Duration

	DatabaseURL string

	// Empty RedisAddr disables the result cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	CachePrefix   string

	CurrencyRulesFile string

	LogFile  string
	LogLevel string
}

func Load() Config {
	cfg := Config{}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8081")
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "0.0.0.0:9093")

	cfg.FetchTimeout = getDuration("FETCH_TIMEOUT", 8*time.Second)
	cfg.MaxWorkers = getInt("MAX_WORKERS", 3, 1)
	cfg.BatchSize = getInt("BATCH_SIZE", 100, 1)
	cfg.SleepInterval = getDuration("SLEEP_INTERVAL", 30*time.Minute)
	cfg.RecheckAfter = getDuration("RECHECK_AFTER", 6*time.Hour)

	cfg.DatabaseURL = getEnv("DATABASE_URL", "")

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisDB = getInt("REDIS_DB", 0, 0)
	cfg.CacheTTL = getDuration("CACHE_TTL", 10*time.Minute)
	cfg.CachePrefix = getEnv("CACHE_PREFIX", "pricealert:result:")

	cfg.CurrencyRulesFile = getEnv("CURRENCY_RULES_FILE", "")

	cfg.LogFile = getEnv("LOG_FILE", "")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg
}

// RequireDatabase is called by binaries that cannot run without Postgres.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return ErrMissingDatabaseURL
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal, minVal int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal {
		slog.Warn("Invalid integer setting, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return v
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		slog.Warn("Invalid duration setting, using default", "key", key, "value", raw, "default", defaultVal)
		return defaultVal
	}
	return v
}
