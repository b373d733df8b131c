package render

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	renderersMu sync.Mutex
	// Keyed by style and wrap width. Fixed styles only: auto style queries the terminal.
	renderers = map[string]*glamour.TermRenderer{}
)

// Terminal renders md for a terminal of the given width. On renderer failure the markdown is
// returned as is.
func Terminal(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style := Style()
	key := style + ":" + strconv.Itoa(width)

	renderersMu.Lock()
	r := renderers[key]
	renderersMu.Unlock()

	if r == nil {
		cfg := styles.DarkStyleConfig
		if style == styles.LightStyle {
			cfg = styles.LightStyleConfig
		}
		zero := uint(0)
		cfg.Document.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		renderersMu.Lock()
		if existing := renderers[key]; existing != nil {
			r = existing
		} else {
			renderers[key] = rr
			r = rr
		}
		renderersMu.Unlock()
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// Style picks the glamour style: PRYSMA_MD_STYLE, then COLORFGBG, then lipgloss background
// detection.
func Style() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("PRYSMA_MD_STYLE"))) {
	case styles.LightStyle:
		return styles.LightStyle
	case styles.DarkStyle:
		return styles.DarkStyle
	}
	// COLORFGBG is "fg;bg"; xterm palette entries 7-15 are light.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return styles.LightStyle
			}
			return styles.DarkStyle
		}
	}
	if lipgloss.HasDarkBackground() {
		return styles.DarkStyle
	}
	return styles.LightStyle
}
