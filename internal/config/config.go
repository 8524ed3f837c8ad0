// Package config loads leadkit settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	ZeroBounce ZeroBounceConfig `yaml:"zerobounce"`
	Batch      BatchConfig      `yaml:"batch"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ZeroBounceConfig holds the validation service settings.
type ZeroBounceConfig struct {
	// APIKey authenticates every call. VITE_ZEROBOUNCE_API_KEY is accepted
	// for existing .env files.
	APIKey string `env:"ZEROBOUNCE_API_KEY" envAlt:"VITE_ZEROBOUNCE_API_KEY" yaml:"api_key"`

	APIURL  string        `env:"ZEROBOUNCE_API_URL" default:"https://api.zerobounce.net/v2" yaml:"api_url"`
	BulkURL string        `env:"ZEROBOUNCE_BULK_URL" default:"https://bulkapi.zerobounce.net/v2" yaml:"bulk_url"`
	Timeout time.Duration `env:"ZEROBOUNCE_TIMEOUT" default:"5m" yaml:"timeout"`
}

// BatchConfig holds batch validation settings.
type BatchConfig struct {
	PollInterval time.Duration `env:"BATCH_POLL_INTERVAL" default:"5s" yaml:"poll_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" default:"0.0.0.0" yaml:"host"`
	Port            int           `env:"SERVER_PORT" default:"8080" yaml:"port"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s" yaml:"read_timeout"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s" yaml:"write_timeout"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s" yaml:"shutdown_timeout"`

	// MaxUploadSize caps multipart request bodies in bytes (default: 32MB).
	MaxUploadSize int64 `env:"SERVER_MAX_UPLOAD_SIZE" default:"33554432" yaml:"max_upload_size"`
}

// StorageConfig holds the artifact storage location.
type StorageConfig struct {
	DataDir string `env:"DATA_DIR" default:"./data" yaml:"data_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `env:"LOG_LEVEL" default:"info" yaml:"level"`

	// Format is text or json.
	Format string `env:"LOG_FORMAT" default:"text" yaml:"format"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
