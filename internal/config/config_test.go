package config

import (
	"testing"

	"gomeasure/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.7, cfg.Validation.MinF1)
	assert.Equal(t, 0.6, cfg.Validation.MinKappa)
	assert.Equal(t, 1000, cfg.Bootstrap.Resamples)
	assert.Equal(t, 0.95, cfg.Bootstrap.Confidence)
	assert.Equal(t, int64(42), cfg.Bootstrap.Seed)
	assert.True(t, cfg.Bootstrap.Seeded)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MIN_F1", "0.8")
	t.Setenv("BOOTSTRAP_RESAMPLES", "250")
	t.Setenv("BOOTSTRAP_SEEDED", "false")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:records.db")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0.8, cfg.Thresholds().MinF1)
	boot := cfg.BootstrapSettings()
	assert.Equal(t, 250, boot.Resamples)
	assert.False(t, boot.Seeded)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadUnparseableFallsBack(t *testing.T) {
	t.Setenv("BOOTSTRAP_RESAMPLES", "many")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Bootstrap.Resamples)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]map[string]string{
		"confidence out of range": {"BOOTSTRAP_CONFIDENCE": "1.5"},
		"unknown driver":          {"STORAGE_DRIVER": "mongo"},
		"database without url":    {"STORAGE_DRIVER": "postgres"},
		"bad log level":           {"LOG_LEVEL": "chatty"},
		"f1 above one":            {"MIN_F1": "1.2"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
