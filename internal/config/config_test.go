package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8787" || cfg.WriteDebounce != 300*time.Millisecond || cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PRYSMA_AUTH_MODE", "Token")
	t.Setenv("PRYSMA_WRITE_DEBOUNCE", "50ms")
	t.Setenv("PRYSMA_DB_PATH", "/tmp/x.sqlite")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AuthMode != AuthToken || cfg.WriteDebounce != 50*time.Millisecond || cfg.DBPath != "/tmp/x.sqlite" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("PRYSMA_AUTH_MODE", "oauth")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown auth mode")
	}
	t.Setenv("PRYSMA_AUTH_MODE", "none")
	t.Setenv("PRYSMA_WRITE_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
