// Package config provides application configuration management.
// It loads configuration from environment variables with support for .env files.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Sweep   SweepConfig
	Amadeus AmadeusConfig
	Redis   RedisConfig
	Policy  PolicyConfig
	Logging LoggingConfig
	App     AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
}

// SweepConfig holds fan-out and timeout settings for the offer sweep.
type SweepConfig struct {
	GlobalTimeout time.Duration `env:"SWEEP_GLOBAL_TIMEOUT" envDefault:"20s"`
	LegTimeout    time.Duration `env:"SWEEP_LEG_TIMEOUT" envDefault:"8s"`
	Concurrency   int           `env:"SWEEP_CONCURRENCY" envDefault:"4"`
}

// AmadeusConfig holds offer-source credentials and tuning.
type AmadeusConfig struct {
	BaseURL    string        `env:"AMADEUS_BASE_URL" envDefault:"https://test.api.amadeus.com"`
	APIKey     string        `env:"AMADEUS_API_KEY"`
	APISecret  string        `env:"AMADEUS_API_SECRET"`
	Currency   string        `env:"AMADEUS_CURRENCY" envDefault:"EUR"`
	MaxResults int           `env:"AMADEUS_MAX_RESULTS" envDefault:"50"`
	Timeout    time.Duration `env:"AMADEUS_TIMEOUT" envDefault:"10s"`

	// RequestsPerSecond and BurstSize throttle calls to the source
	RequestsPerSecond float64 `env:"AMADEUS_RPS" envDefault:"10"`
	BurstSize         int     `env:"AMADEUS_BURST" envDefault:"20"`
}

// RedisConfig holds cache backend settings. An empty address disables the
// cache entirely.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// PolicyConfig points at the ranking policy document. An empty path selects
// the embedded default policy.
type PolicyConfig struct {
	Path string `env:"POLICY_PATH"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first (optional - won't fail if missing).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics on error.
// Use this in main() where configuration is required to start.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// validate checks configuration values for correctness.
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	if cfg.Server.ReadTimeout <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Sweep.GlobalTimeout <= 0 {
		return fmt.Errorf("SWEEP_GLOBAL_TIMEOUT must be positive")
	}
	if cfg.Sweep.LegTimeout <= 0 {
		return fmt.Errorf("SWEEP_LEG_TIMEOUT must be positive")
	}

	// Each leg must be able to finish inside the global window.
	if cfg.Sweep.LegTimeout >= cfg.Sweep.GlobalTimeout {
		return fmt.Errorf("SWEEP_LEG_TIMEOUT (%s) should be less than SWEEP_GLOBAL_TIMEOUT (%s)",
			cfg.Sweep.LegTimeout, cfg.Sweep.GlobalTimeout)
	}

	if cfg.Sweep.Concurrency < 1 {
		return fmt.Errorf("SWEEP_CONCURRENCY must be at least 1, got %d", cfg.Sweep.Concurrency)
	}

	if cfg.Amadeus.RequestsPerSecond <= 0 {
		return fmt.Errorf("AMADEUS_RPS must be positive")
	}
	if cfg.Amadeus.BurstSize < 1 {
		return fmt.Errorf("AMADEUS_BURST must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console; got %q", cfg.Logging.Format)
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[cfg.App.Env] {
		return fmt.Errorf("APP_ENV must be one of: development, staging, production; got %q", cfg.App.Env)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// CacheEnabled reports whether a cache backend is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}
