package store

import (
	"path/filepath"
	"testing"
)

func TestConfig_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PRYSMA_CONFIG_DIR", dir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if cfg.CurrentUserID != "" {
		t.Fatalf("expected empty config, got %+v", cfg)
	}

	cfg.CurrentUserID = "user-a"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.CurrentUserID != "user-a" {
		t.Fatalf("unexpected current user: %q", got.CurrentUserID)
	}

	p, err := DefaultDBPath(got)
	if err != nil {
		t.Fatalf("db path: %v", err)
	}
	if p != filepath.Join(dir, "prysma.sqlite") {
		t.Fatalf("unexpected db path %q", p)
	}
	p, _ = DefaultDBPath(&LocalConfig{DBPath: " /tmp/x.sqlite "})
	if p != "/tmp/x.sqlite" {
		t.Fatalf("explicit db path not honored: %q", p)
	}
}
