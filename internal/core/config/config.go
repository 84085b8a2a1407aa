package config

import (
	"time"

	"github.com/vietddude/coach/internal/infra/provider"
	redisclient "github.com/vietddude/coach/internal/infra/redis"
	"github.com/vietddude/coach/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Generator GeneratorConfig    `yaml:"generator"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// GeneratorConfig holds generation pipeline settings.
type GeneratorConfig struct {
	Provider      provider.Config `yaml:"provider"`
	Timeout       time.Duration   `yaml:"timeout"`
	RetryAttempts int             `yaml:"retry_attempts"`
	RetryDelay    time.Duration   `yaml:"retry_delay"`
	UseExternalAI *bool           `yaml:"use_external_ai"`
	UseFallback   *bool           `yaml:"use_fallback"`
	HistoryLimit  int             `yaml:"history_limit"`
}
