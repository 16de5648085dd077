package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "FETCH_TIMEOUT", "MAX_WORKERS", "REDIS_ADDR", "DATABASE_URL", "CACHE_TTL"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	// Set-but-empty values fall back to defaults for typed settings only.
	assert.Equal(t, "", cfg.HTTPAddr)
	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.ErrorIs(t, cfg.RequireDatabase(), ErrMissingDatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("MAX_WORKERS", "12")
	t.Setenv("REDIS_DB", "0")
	t.Setenv("RECHECK_AFTER", "90m")
	t.Setenv("DATABASE_URL", "postgres://localhost/pricealert")

	cfg := Load()
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 12, cfg.MaxWorkers)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.RecheckAfter)
	assert.NoError(t, cfg.RequireDatabase())
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	t.Setenv("MAX_WORKERS", "-4")
	t.Setenv("BATCH_SIZE", "lots")
	t.Setenv("SLEEP_INTERVAL", "-1m")

	cfg := Load()
	assert.Equal(t, 8*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 30*time.Minute, cfg.SleepInterval)
}
