package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != DefaultHTTPAddr {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Sync.BatchSize != DefaultSyncBatchSize {
		t.Fatalf("batch size = %d", cfg.Sync.BatchSize)
	}
	if cfg.Auth.ExpiresIn() != 24*time.Hour {
		t.Fatalf("expires in = %v", cfg.Auth.ExpiresIn())
	}
	if cfg.LLM.Timeout() <= 0 {
		t.Fatalf("llm timeout = %v", cfg.LLM.Timeout())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = ":9090"

[auth]
jwt_secret = "file-secret"
jwt_expires_in = "1h"

[llm]
base_url = "http://localhost:11434/v1"
model = "llama3"
timeout_seconds = 5

[sync]
batch_size = 10
schedule = "@hourly"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.ExpiresIn() != time.Hour {
		t.Fatalf("expires in = %v", cfg.Auth.ExpiresIn())
	}
	if cfg.LLM.Timeout() != 5*time.Second {
		t.Fatalf("timeout = %v", cfg.LLM.Timeout())
	}
	if cfg.Sync.BatchSize != 10 || cfg.Sync.Schedule != "@hourly" {
		t.Fatalf("sync = %+v", cfg.Sync)
	}
	// Unset sections keep their defaults.
	if cfg.Postgres.Host != DefaultPGHost {
		t.Fatalf("pg host = %q", cfg.Postgres.Host)
	}
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("SIMPLE_JWT_SECRET", "env-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
}
