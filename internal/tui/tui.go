// Package tui is the interactive terminal editor for a card layout.
package tui

import (
	"context"
	"time"

	"prysma/internal/layout"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
)

const flushTimeout = 10 * time.Second

// Prefs is the editor state restored on launch and reported back on quit.
type Prefs struct {
	// Pane is one of: main|social
	Pane       string
	Preview    bool
	SelectedID string
}

// Run opens the editor on a loaded controller and blocks until the user quits. Queued writes
// are flushed before it returns.
func Run(ctx context.Context, c *layout.Controller, prefs Prefs) (Prefs, error) {
	applyColorProfilePreference()

	m := newEditorModel(c)
	m.applyPrefs(prefs)
	final, runErr := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if em, ok := final.(editorModel); ok {
		prefs = em.prefs()
	}

	fctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := c.Flush(fctx); err != nil && runErr == nil {
		return prefs, errors.Wrap(err, "flush layout")
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return prefs, runErr
	}
	return prefs, c.Err()
}
