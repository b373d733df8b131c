// Package publish writes a card to disk: markdown, a standalone HTML page and the raw section list.
package publish

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"prysma/internal/layout"
	"prysma/internal/render"

	"github.com/pkg/errors"
)

const (
	markdownFile = "card.md"
	htmlFile     = "card.html"
	sectionsFile = "sections.json"
)

type WriteOptions struct {
	Overwrite bool
	// Title is the HTML page title. Empty uses the user id.
	Title string
}

type WriteResult struct {
	Written []string `json:"written"`
}

// WriteCard writes st under toDir/<userId>/. Existing files are kept unless opt.Overwrite is set.
func WriteCard(st layout.State, toDir string, opt WriteOptions) (WriteResult, error) {
	userID := strings.TrimSpace(st.UserID)
	if userID == "" {
		return WriteResult{}, errors.New("missing user id")
	}
	if strings.ContainsAny(userID, `/\`) || userID == "." || userID == ".." {
		return WriteResult{}, errors.Errorf("user id %q is not usable as a directory name", userID)
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}

	outDir := filepath.Join(filepath.Clean(toDir), userID)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	title := strings.TrimSpace(opt.Title)
	if title == "" {
		title = userID
	}
	var page bytes.Buffer
	if err := render.Page(&page, title, userID, st); err != nil {
		return WriteResult{}, errors.Wrap(err, "render page")
	}
	secs, err := json.MarshalIndent(st.Sections(), "", "  ")
	if err != nil {
		return WriteResult{}, errors.Wrap(err, "encode sections")
	}

	files := []struct {
		name string
		body []byte
	}{
		{markdownFile, []byte(render.Markdown(st))},
		{htmlFile, page.Bytes()},
		{sectionsFile, append(secs, '\n')},
	}
	// Check everything first so a refused export writes nothing.
	if !opt.Overwrite {
		for _, f := range files {
			p := filepath.Join(outDir, f.name)
			if _, err := os.Stat(p); err == nil {
				return WriteResult{}, errors.New("file exists (use --overwrite): " + p)
			}
		}
	}
	res := WriteResult{Written: make([]string, 0, len(files))}
	for _, f := range files {
		p := filepath.Join(outDir, f.name)
		if err := os.WriteFile(p, f.body, 0o644); err != nil {
			return res, err
		}
		res.Written = append(res.Written, p)
	}
	return res, nil
}
