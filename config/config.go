// Package config builds the process configuration once at startup.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// RSVP_* environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// DefaultDeadline keeps a development server open. Production must set its own.
const DefaultDeadline = "2027-01-10T23:59:59+08:00"

// Config holds the complete server configuration.
type Config struct {
	// Environment is "development" or "production"
	Environment string `yaml:"environment" env:"RSVP_ENV"`

	// ListenAddr is the HTTP listen address
	ListenAddr string `yaml:"listen_addr" env:"RSVP_LISTEN_ADDR"`

	// BaseURL prefixes edit links: <base_url>/edit/<token>
	BaseURL string `yaml:"base_url" env:"RSVP_BASE_URL"`

	// Deadline closes RSVPs, RFC 3339. Example: "2027-01-10T23:59:59+08:00"
	Deadline string `yaml:"deadline" env:"RSVP_DEADLINE"`

	// Locale selects user-facing messages: "ms" or "en"
	Locale string `yaml:"locale" env:"RSVP_LOCALE"`

	// LogLevel is a zap level name
	LogLevel string `yaml:"log_level" env:"RSVP_LOG_LEVEL"`

	Redis RedisConfig `yaml:"redis"`

	// RequireSharedStore refuses to start without Redis.
	// Unset means true in production and false otherwise.
	RequireSharedStore *bool `yaml:"require_shared_store" env:"RSVP_REQUIRE_SHARED_STORE"`

	Sheet SheetConfig `yaml:"sheet"`
	Retry RetryConfig `yaml:"retry"`

	deadline time.Time
}

// RedisConfig configures the shared counter store.
type RedisConfig struct {
	Addr        string        `yaml:"addr" env:"RSVP_REDIS_ADDR"`
	Password    string        `yaml:"password" env:"RSVP_REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"RSVP_REDIS_DB"`
	PingTimeout time.Duration `yaml:"ping_timeout" env:"RSVP_REDIS_PING_TIMEOUT"`
}

// SheetConfig configures the record store.
type SheetConfig struct {
	Path           string        `yaml:"path" env:"RSVP_SHEET_PATH"`
	Timeout        time.Duration `yaml:"timeout" env:"RSVP_SHEET_TIMEOUT"`
	QuotaPerSecond float64       `yaml:"quota_per_second" env:"RSVP_SHEET_QUOTA_PER_SECOND"`
	QuotaBurst     int           `yaml:"quota_burst" env:"RSVP_SHEET_QUOTA_BURST"`
}

// RetryConfig bounds retries of record store calls.
type RetryConfig struct {
	Attempts  uint          `yaml:"attempts" env:"RSVP_RETRY_ATTEMPTS"`
	BaseDelay time.Duration `yaml:"base_delay" env:"RSVP_RETRY_BASE_DELAY"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Environment: EnvDevelopment,
		ListenAddr:  ":8080",
		BaseURL:     "http://localhost:3000",
		Deadline:    DefaultDeadline,
		Locale:      "ms",
		LogLevel:    "info",
		Redis: RedisConfig{
			PingTimeout: 2 * time.Second,
		},
		Sheet: SheetConfig{
			Path:           "rsvp.db",
			Timeout:        10 * time.Second,
			QuotaPerSecond: 1,
			QuotaBurst:     100,
		},
		Retry: RetryConfig{
			Attempts:  3,
			BaseDelay: time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse environment: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read config file: %v", ErrInvalidConfig, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks the configuration and resolves derived values.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("%w: environment must be %q or %q, got %q", ErrInvalidConfig, EnvDevelopment, EnvProduction, c.Environment)
	}

	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("%w: listen address is required", ErrInvalidConfig)
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: base url must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.BaseURL)
	}

	if c.IsProduction() && c.Deadline == DefaultDeadline {
		return fmt.Errorf("%w: deadline must be set explicitly in production", ErrInvalidConfig)
	}
	deadline, err := time.Parse(time.RFC3339, c.Deadline)
	if err != nil {
		return fmt.Errorf("%w: deadline: %v", ErrInvalidConfig, err)
	}
	c.deadline = deadline

	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("%w: locale %q: %v", ErrInvalidConfig, c.Locale, err)
	}

	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}

	if c.Redis.PingTimeout <= 0 {
		return fmt.Errorf("%w: redis ping timeout must be positive", ErrInvalidConfig)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("%w: redis db must be non-negative", ErrInvalidConfig)
	}

	if strings.TrimSpace(c.Sheet.Path) == "" {
		return fmt.Errorf("%w: sheet path is required", ErrInvalidConfig)
	}
	if c.Sheet.Timeout <= 0 {
		return fmt.Errorf("%w: sheet timeout must be positive", ErrInvalidConfig)
	}
	if c.Sheet.QuotaPerSecond <= 0 || c.Sheet.QuotaBurst <= 0 {
		return fmt.Errorf("%w: sheet quota must be positive", ErrInvalidConfig)
	}

	if c.Retry.Attempts == 0 {
		return fmt.Errorf("%w: retry attempts must be at least 1", ErrInvalidConfig)
	}
	if c.Retry.BaseDelay <= 0 {
		return fmt.Errorf("%w: retry base delay must be positive", ErrInvalidConfig)
	}

	return nil
}

// DeadlineTime returns the parsed deadline. Valid after Validate.
func (c *Config) DeadlineTime() time.Time {
	return c.deadline
}

// IsProduction reports whether the process runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// SharedStoreRequired resolves RequireSharedStore against the environment.
func (c *Config) SharedStoreRequired() bool {
	if c.RequireSharedStore != nil {
		return *c.RequireSharedStore
	}
	return c.IsProduction()
}
