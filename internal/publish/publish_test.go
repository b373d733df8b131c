package publish

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prysma/internal/layout"
	"prysma/internal/model"
)

func testState() layout.State {
	return layout.State{
		UserID: "alice",
		Card: []model.Section{
			{ID: "s1", Type: "bio", Title: "About", Value: model.TextValue("Hi <b>there</b>"), Area: model.AreaMain},
		},
		SocialBar: []model.Section{
			{ID: "s2", Type: "github", Title: "GitHub", Value: model.TextValue("https://github.com/alice"), Area: model.AreaSocialBar},
		},
	}
}

func TestWriteCard_WritesAllFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	res, err := WriteCard(testState(), dir, WriteOptions{Title: "Alice"})
	if err != nil {
		t.Fatalf("WriteCard: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected 3 files, got %v", res.Written)
	}

	md, err := os.ReadFile(filepath.Join(dir, "alice", "card.md"))
	if err != nil {
		t.Fatalf("read md: %v", err)
	}
	if !strings.Contains(string(md), "## About") {
		t.Fatalf("markdown missing heading:\n%s", md)
	}

	page, err := os.ReadFile(filepath.Join(dir, "alice", "card.html"))
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	if !strings.Contains(string(page), "<title>Alice</title>") || strings.Contains(string(page), "<b>there</b>") {
		t.Fatalf("unexpected html:\n%s", page)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "alice", "sections.json"))
	if err != nil {
		t.Fatalf("read sections: %v", err)
	}
	var secs []model.Section
	if err := json.Unmarshal(raw, &secs); err != nil {
		t.Fatalf("decode sections: %v", err)
	}
	if len(secs) != 2 || secs[0].ID != "s1" || secs[1].ID != "s2" {
		t.Fatalf("sections not in card-then-social order: %#v", secs)
	}
}

func TestWriteCard_RefusesOverwrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := WriteCard(testState(), dir, WriteOptions{}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := WriteCard(testState(), dir, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Fatalf("expected overwrite error, got %v", err)
	}
	if _, err := WriteCard(testState(), dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteCard_RejectsBadInput(t *testing.T) {
	t.Parallel()
	st := testState()
	st.UserID = "../x"
	if _, err := WriteCard(st, t.TempDir(), WriteOptions{}); err == nil {
		t.Fatalf("expected error for path-like user id")
	}
	if _, err := WriteCard(testState(), " ", WriteOptions{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}
