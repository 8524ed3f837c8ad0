package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"leadkit/internal/core/domain"
)

// FileEnv names the environment variable pointing at an optional YAML file.
const FileEnv = "LEADKIT_CONFIG"

// Load builds the configuration from defaults, the YAML file named by
// LEADKIT_CONFIG (if any) and the environment, then validates it.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(FileEnv))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}
	v := reflect.ValueOf(cfg).Elem()

	if err := walk(v, fromDefault); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &domain.ConfigError{Detail: fmt.Sprintf("read %s: %v", path, err)}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Detail: fmt.Sprintf("parse %s: %v", path, err)}
		}
	}

	if err := walk(v, fromEnv); err != nil {
		return nil, &domain.ConfigError{Detail: err.Error()}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// source yields the raw value for a field, or "" to leave it unchanged.
type source func(field reflect.StructField) (value, name string)

func fromDefault(f reflect.StructField) (string, string) {
	return f.Tag.Get("default"), f.Name
}

func fromEnv(f reflect.StructField) (string, string) {
	name := f.Tag.Get("env")
	if name == "" {
		return "", ""
	}
	value := os.Getenv(name)
	if value == "" {
		if alt := f.Tag.Get("envAlt"); alt != "" {
			value = os.Getenv(alt)
		}
	}
	return value, name
}

// walk recursively assigns every settable field from src.
func walk(v reflect.Value, src source) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := walk(fieldVal, src); err != nil {
				return err
			}
			continue
		}

		value, name := src(field)
		if value == "" {
			continue
		}
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}
	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// Validate reports every invalid setting at once. A missing API key is not
// an error here; operations that call the service reject it themselves.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.ZeroBounce.APIURL) == "" {
		errs = append(errs, "ZEROBOUNCE_API_URL must not be empty")
	}
	if strings.TrimSpace(c.ZeroBounce.BulkURL) == "" {
		errs = append(errs, "ZEROBOUNCE_BULK_URL must not be empty")
	}
	if c.ZeroBounce.Timeout <= 0 {
		errs = append(errs, "ZEROBOUNCE_TIMEOUT must be positive")
	}

	if c.Batch.PollInterval <= 0 {
		errs = append(errs, "BATCH_POLL_INTERVAL must be positive")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		errs = append(errs, "server timeouts must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.MaxUploadSize <= 0 {
		errs = append(errs, "SERVER_MAX_UPLOAD_SIZE must be positive")
	}

	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, "DATA_DIR must not be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return &domain.ConfigError{Detail: "validation failed:\n  - " + strings.Join(errs, "\n  - ")}
	}
	return nil
}

// HasAPIKey reports whether a service credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.ZeroBounce.APIKey) != ""
}

// String returns a representation safe for logs; the API key is masked.
func (c *Config) String() string {
	key := "[NOT SET]"
	if c.HasAPIKey() {
		key = "[MASKED]"
	}
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "ZeroBounce: {APIKey: %s, APIURL: %q, BulkURL: %q, Timeout: %s}, ",
		key, c.ZeroBounce.APIURL, c.ZeroBounce.BulkURL, c.ZeroBounce.Timeout)
	fmt.Fprintf(&b, "Batch: {PollInterval: %s}, ", c.Batch.PollInterval)
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Storage: {DataDir: %q}, ", c.Storage.DataDir)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
