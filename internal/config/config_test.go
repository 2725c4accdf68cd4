package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/cleaned_crypto.csv", cfg.Dataset.Path)
	assert.Equal(t, 30, cfg.Analytics.ForecastHorizonDays)
	assert.Equal(t, 30, cfg.Analytics.SeasonalPeriod)
	assert.Equal(t, 5, cfg.Analytics.VolatilityTopN)
	assert.True(t, cfg.Analytics.DropIncompleteDates)
	assert.True(t, cfg.Server.RateLimit.Enabled)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CRYPTOPULSE_SERVER_PORT", "9090")
	t.Setenv("CRYPTOPULSE_ANALYTICS_FORECAST_HORIZON_DAYS", "60")
	t.Setenv("CRYPTOPULSE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 60, cfg.Analytics.ForecastHorizonDays)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
server:
  port: 7070
dataset:
  path: /srv/data/crypto.csv
analytics:
  seasonal_period: 14
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "/srv/data/crypto.csv", cfg.Dataset.Path)
	assert.Equal(t, 14, cfg.Analytics.SeasonalPeriod)
	// Untouched fields still get their defaults.
	assert.Equal(t, 30, cfg.Analytics.ForecastHorizonDays)
}

func TestLoad_AmbientVariablesDoNotLeak(t *testing.T) {
	// Unprefixed variables must never feed the configuration; $PATH in
	// particular is set in every environment and must not become the
	// dataset path.
	t.Setenv("PORT", "1234")
	t.Setenv("LEVEL", "error")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "data/cleaned_crypto.csv", cfg.Dataset.Path)
	assert.NotEqual(t, os.Getenv("PATH"), cfg.Dataset.Path)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileBeatsDefaults(t *testing.T) {
	// Every defaulted field must still be overridable from the file when
	// its environment variable is unset.
	content := "logging:\n  level: warn\nserver:\n  rate_limit:\n    enabled: false\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.Server.RateLimit.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	content := "server:\n  port: 7070\n"
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("CRYPTOPULSE_SERVER_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("CRYPTOPULSE_LOGGING_LEVEL", "verbose")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
