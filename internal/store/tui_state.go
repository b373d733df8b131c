package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const tuiStateFileName = "tui_state.json"

// TUIState stores small, user-facing editor state for restoring the last screen on relaunch.
// It lives next to config.json. Callers should tolerate missing or invalid data.
type TUIState struct {
	Version int `json:"version"`

	// Editors is keyed by user id.
	Editors map[string]EditorState `json:"editors,omitempty"`
}

type EditorState struct {
	// Pane is one of: main|social
	Pane              string `json:"pane,omitempty"`
	ShowPreview       bool   `json:"showPreview,omitempty"`
	SelectedSectionID string `json:"selectedSectionId,omitempty"`
}

func tuiStatePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tuiStateFileName), nil
}

func LoadTUIState() (*TUIState, error) {
	path, err := tuiStatePath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &TUIState{Version: 1}, nil
		}
		return nil, err
	}
	var st TUIState
	if err := json.Unmarshal(b, &st); err != nil {
		// Corrupted: treat as missing.
		return &TUIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

func SaveTUIState(st *TUIState) error {
	if st == nil {
		return nil
	}
	path, err := tuiStatePath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, tuiStateFileName+".*.tmp", path, b, 0o644)
}

// Editor returns the saved state for userID (zero value when none).
func (st *TUIState) Editor(userID string) EditorState {
	if st == nil {
		return EditorState{}
	}
	return st.Editors[strings.TrimSpace(userID)]
}

func (st *TUIState) SetEditor(userID string, es EditorState) {
	userID = strings.TrimSpace(userID)
	if st == nil || userID == "" {
		return
	}
	if st.Editors == nil {
		st.Editors = map[string]EditorState{}
	}
	st.Editors[userID] = es
}
