package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const dbFileName = "prysma.sqlite"

// LocalConfig is the per-machine CLI state in ~/.prysma/config.json.
type LocalConfig struct {
	// CurrentUserID is the profile the CLI and TUI act on when --user is not given.
	CurrentUserID string `json:"currentUserId,omitempty"`

	// DBPath overrides the default database location (~/.prysma/prysma.sqlite).
	DBPath string `json:"dbPath,omitempty"`

	// SessionSecret signs web session tokens when PRYSMA_SESSION_SECRET is unset.
	// Generated on first use.
	SessionSecret string `json:"sessionSecret,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.prysma).
	if v := strings.TrimSpace(os.Getenv("PRYSMA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".prysma"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultDBPath resolves the database file: explicit config wins, then ~/.prysma/prysma.sqlite.
func DefaultDBPath(cfg *LocalConfig) (string, error) {
	if cfg != nil && strings.TrimSpace(cfg.DBPath) != "" {
		return filepath.Clean(strings.TrimSpace(cfg.DBPath)), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dbFileName), nil
}

func LoadConfig() (*LocalConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &LocalConfig{}, nil
		}
		return nil, errors.Wrap(err, "read config")
	}
	var cfg LocalConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return &cfg, nil
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *LocalConfig) error {
	if cfg == nil {
		return errors.New("nil config")
	}
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	// Unique temp name + rename: the CLI, TUI and web server may all write this file.
	return atomicWriteFile(dir, "config.json.*.tmp", path, b, 0o600)
}
