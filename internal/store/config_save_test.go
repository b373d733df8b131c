package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSaveConfig_ConcurrentWriters_DoesNotCorruptConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("PRYSMA_CONFIG_DIR", cfgDir)

	if err := SaveConfig(&LocalConfig{CurrentUserID: "seed"}); err != nil {
		t.Fatalf("SaveConfig(seed): %v", err)
	}

	const n = 64
	errCh := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cfg, err := LoadConfig()
			if err != nil {
				errCh <- err
				return
			}
			cfg.CurrentUserID = fmt.Sprintf("user-%d", i)
			if err := SaveConfig(cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent load/save: %v", err)
	}

	b, err := os.ReadFile(filepath.Join(cfgDir, "config.json"))
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var got LocalConfig
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("config.json corrupted: %v\n%s", err, string(b))
	}
	if !strings.HasPrefix(got.CurrentUserID, "user-") {
		t.Fatalf("unexpected current user: %q", got.CurrentUserID)
	}

	leftovers, _ := filepath.Glob(filepath.Join(cfgDir, "config.json.*.tmp"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}
