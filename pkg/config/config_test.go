package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Store.Backend != "sqlite" {
		t.Errorf("Store.Backend = %q, want sqlite", cfg.Store.Backend)
	}
	if !cfg.Store.SQLite.WALMode {
		t.Error("Store.SQLite.WALMode = false, want true by default")
	}
	if cfg.Events.Emitter.MaxAttempts != 3 {
		t.Errorf("Emitter.MaxAttempts = %d, want 3", cfg.Events.Emitter.MaxAttempts)
	}
	if cfg.Engine.UpdateAttempts != 3 {
		t.Errorf("Engine.UpdateAttempts = %d, want 3", cfg.Engine.UpdateAttempts)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("Server.ListenAddress = %q, want %q", cfg.Server.ListenAddress, DefaultListenAddress)
	}
	if !cfg.Logging.RedactPII {
		t.Error("Logging.RedactPII = false, want true by default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true by default")
	}
}

func TestLoadConfigExplicitFalseSurvives(t *testing.T) {
	path := writeConfigFile(t, `
logging:
  redact_pii: false
metrics:
  enabled: false
store:
  sqlite:
    wal_mode: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Logging.RedactPII {
		t.Error("Logging.RedactPII = true, explicit false should survive defaults")
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, explicit false should survive defaults")
	}
	if cfg.Store.SQLite.WALMode {
		t.Error("Store.SQLite.WALMode = true, explicit false should survive defaults")
	}
}

func TestLoadConfigValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown store backend", "store:\n  backend: postgres\n"},
		{"unknown source mode", "source:\n  mode: s3\n"},
		{"git mode without url", "source:\n  mode: git\n"},
		{"bad listen address", "server:\n  listen_address: not-an-address\n"},
		{"unknown log level", "logging:\n  level: verbose\n"},
		{"unknown log format", "logging:\n  format: logfmt\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("LoadConfig succeeded, want validation error")
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "{}\n")

	t.Setenv("ELEU_SERVER_LISTEN_ADDRESS", "0.0.0.0:9090")
	t.Setenv("ELEU_ENGINE_UPDATE_ATTEMPTS", "5")
	t.Setenv("ELEU_EVENTS_EMITTER_RETRY_BACKOFF", "250ms")
	t.Setenv("ELEU_LOGGING_REDACT_PII", "false")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want env override", cfg.Server.ListenAddress)
	}
	if cfg.Engine.UpdateAttempts != 5 {
		t.Errorf("UpdateAttempts = %d, want 5", cfg.Engine.UpdateAttempts)
	}
	if cfg.Events.Emitter.RetryBackoff != 250*time.Millisecond {
		t.Errorf("RetryBackoff = %v, want 250ms", cfg.Events.Emitter.RetryBackoff)
	}
	if cfg.Logging.RedactPII {
		t.Error("RedactPII = true, want env override to false")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadConfig succeeded for missing file")
	}
}
