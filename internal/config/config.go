// Package config loads application configuration from an optional YAML file
// overlaid by CRYPTOPULSE_-prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// CRYPTOPULSE_SERVER_PORT. Fields deliberately carry no envconfig name
// tags: a named tag also registers the bare, unprefixed name as an
// alternative key, which lets ambient variables like $PATH leak into the
// configuration.
const envPrefix = "CRYPTOPULSE"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Dataset   DatasetConfig   `yaml:"dataset"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int             `yaml:"port" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" split_words:"true"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" split_words:"true"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" split_words:"true"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" split_words:"true"`
}

// RateLimitConfig contains request rate limiting configuration.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled"`
	RPS     float64 `yaml:"rps" validate:"gt=0"`
	Burst   int     `yaml:"burst" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" split_words:"true"`
}

// DatasetConfig locates the cleaned historical dataset.
type DatasetConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// AnalyticsConfig carries the default parameters of the analytical views.
type AnalyticsConfig struct {
	ForecastHorizonDays int  `yaml:"forecast_horizon_days" split_words:"true" validate:"gt=0,lte=365"`
	SeasonalPeriod      int  `yaml:"seasonal_period" split_words:"true" validate:"gte=2"`
	VolatilityTopN      int  `yaml:"volatility_top_n" split_words:"true" validate:"gt=0"`
	DropIncompleteDates bool `yaml:"drop_incomplete_dates" split_words:"true"`
}

// defaultConfig returns the built-in defaults. They are applied in code
// rather than through envconfig default tags so that a YAML file can
// override them; envconfig defaults are written unconditionally whenever
// the environment variable is unset.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stdout",
			FilePath: "logs/cryptopulse.log",
		},
		Dataset: DatasetConfig{
			Path: "data/cleaned_crypto.csv",
		},
		Analytics: AnalyticsConfig{
			ForecastHorizonDays: 30,
			SeasonalPeriod:      30,
			VolatilityTopN:      5,
			DropIncompleteDates: true,
		},
	}
}

// Load builds the configuration in precedence order: built-in defaults,
// then the YAML file (when configFile is non-empty and exists), then
// environment variables, then struct validation.
func Load(configFile string) (*Config, error) {
	cfg := defaultConfig()

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			data, err := os.ReadFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", configFile, err)
			}
		}
	}

	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
