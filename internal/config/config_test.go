package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"leadkit/internal/core/domain"
)

// clearEnv blanks every variable the loader reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		FileEnv,
		"ZEROBOUNCE_API_KEY", "VITE_ZEROBOUNCE_API_KEY", "ZEROBOUNCE_API_URL", "ZEROBOUNCE_BULK_URL", "ZEROBOUNCE_TIMEOUT",
		"BATCH_POLL_INTERVAL",
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
		"SERVER_SHUTDOWN_TIMEOUT", "SERVER_MAX_UPLOAD_SIZE",
		"DATA_DIR", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ZeroBounce.BulkURL != "https://bulkapi.zerobounce.net/v2" {
		t.Errorf("BulkURL = %q", cfg.ZeroBounce.BulkURL)
	}
	if cfg.ZeroBounce.Timeout != 5*time.Minute {
		t.Errorf("Timeout = %v", cfg.ZeroBounce.Timeout)
	}
	if cfg.Batch.PollInterval != 5*time.Second {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" || cfg.Server.MaxUploadSize != 32<<20 {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Storage.DataDir != "./data" {
		t.Errorf("DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.HasAPIKey() {
		t.Error("HasAPIKey() = true with no key set")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZEROBOUNCE_API_KEY", "k1")
	t.Setenv("BATCH_POLL_INTERVAL", "250ms")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ZeroBounce.APIKey != "k1" || cfg.Batch.PollInterval != 250*time.Millisecond ||
		cfg.Server.Port != 9090 || cfg.Logging.Format != "json" {
		t.Errorf("cfg = %s", cfg)
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_ZEROBOUNCE_API_KEY", "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ZeroBounce.APIKey != "legacy" {
		t.Errorf("APIKey = %q, want legacy", cfg.ZeroBounce.APIKey)
	}

	t.Setenv("ZEROBOUNCE_API_KEY", "primary")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ZeroBounce.APIKey != "primary" {
		t.Errorf("APIKey = %q, want primary", cfg.ZeroBounce.APIKey)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "leadkit.yaml")
	yml := `zerobounce:
  api_key: from-file
  timeout: 30s
batch:
  poll_interval: 2s
storage:
  data_dir: /var/lib/leadkit
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("DATA_DIR", "/tmp/override")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ZeroBounce.APIKey != "from-file" || cfg.ZeroBounce.Timeout != 30*time.Second {
		t.Errorf("ZeroBounce = %+v", cfg.ZeroBounce)
	}
	if cfg.Batch.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v", cfg.Batch.PollInterval)
	}
	if cfg.Storage.DataDir != "/tmp/override" {
		t.Errorf("DataDir = %q, env should win over the file", cfg.Storage.DataDir)
	}
	if cfg.ZeroBounce.APIURL != "https://api.zerobounce.net/v2" {
		t.Errorf("APIURL = %q, default should survive the file", cfg.ZeroBounce.APIURL)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantMsg []string
	}{
		{
			name:    "bad duration",
			env:     map[string]string{"BATCH_POLL_INTERVAL": "soon"},
			wantMsg: []string{"BATCH_POLL_INTERVAL"},
		},
		{
			name:    "missing file",
			env:     map[string]string{FileEnv: "/nonexistent/leadkit.yaml"},
			wantMsg: []string{"/nonexistent/leadkit.yaml"},
		},
		{
			name: "every invalid value reported",
			env: map[string]string{
				"SERVER_PORT":         "70000",
				"BATCH_POLL_INTERVAL": "0s",
				"LOG_LEVEL":           "loud",
			},
			wantMsg: []string{"SERVER_PORT", "BATCH_POLL_INTERVAL", "LOG_LEVEL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Load() error = %v, want ConfigError", err)
			}
			for _, m := range tt.wantMsg {
				if !strings.Contains(err.Error(), m) {
					t.Errorf("error %q does not mention %s", err, m)
				}
			}
		})
	}
}

func TestConfig_StringMasksKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZEROBOUNCE_API_KEY", "super-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := cfg.String()
	if strings.Contains(s, "super-secret") || !strings.Contains(s, "[MASKED]") {
		t.Errorf("String() = %s", s)
	}
}
