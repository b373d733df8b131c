package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PRYSMA_CONFIG_DIR", dir)

	// Missing file => default state.
	st0, err := LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}
	if got := st0.Editor("alice"); got != (EditorState{}) {
		t.Fatalf("expected zero editor state; got %#v", got)
	}

	want := EditorState{Pane: "social", ShowPreview: true, SelectedSectionID: "sec-1"}
	st0.SetEditor("alice", want)
	st0.SetEditor("", EditorState{Pane: "main"})
	if err := SaveTUIState(st0); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}

	got, err := LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if !reflect.DeepEqual(got.Editors, map[string]EditorState{"alice": want}) {
		t.Fatalf("round trip mismatch: %#v", got.Editors)
	}
}

func TestTUIState_CorruptFileIsIgnored(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PRYSMA_CONFIG_DIR", dir)
	if err := os.WriteFile(filepath.Join(dir, tuiStateFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := LoadTUIState()
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.Version != 1 || len(st.Editors) != 0 {
		t.Fatalf("expected default state; got %#v", st)
	}
}
