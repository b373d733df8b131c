package tui

import (
	"fmt"
	"strings"

	"prysma/internal/layout"
	"prysma/internal/model"
	"prysma/internal/render"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type pane int

const (
	paneMain pane = iota
	paneSocial
)

func (p pane) area() model.Area {
	if p == paneSocial {
		return model.AreaSocialBar
	}
	return model.AreaMain
}

func (p pane) label() string {
	if p == paneSocial {
		return "Social bar"
	}
	return "Main card"
}

type editorMode int

const (
	modeBrowse editorMode = iota
	modePicker
	modeEditTitle
)

// saveErrMsg carries a save failure from the controller's error channel.
type saveErrMsg struct{ err error }

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

type editorModel struct {
	ctrl *layout.Controller
	st   layout.State
	keys keyMap
	help help.Model

	pane   pane
	cursor [2]int
	// carrying is the id of the section picked up with space, if any.
	carrying string

	mode      editorMode
	picker    list.Model
	input     textinput.Model
	editingID string

	preview bool
	width   int
	height  int
	status  string
	saveErr string
}

func newEditorModel(c *layout.Controller) editorModel {
	ti := textinput.New()
	ti.Prompt = "Title: "
	ti.CharLimit = 120
	return editorModel{
		ctrl:  c,
		st:    c.State(),
		keys:  defaultKeys(),
		help:  help.New(),
		input: ti,
		width: 80,
	}
}

func (m editorModel) Init() tea.Cmd {
	return waitForSaveErr(m.ctrl.Errors())
}

func waitForSaveErr(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return saveErrMsg{err: err}
	}
}

func (m editorModel) sections(p pane) []model.Section {
	if p == paneSocial {
		return m.st.SocialBar
	}
	return m.st.Card
}

func (m editorModel) selected() (model.Section, bool) {
	xs := m.sections(m.pane)
	i := m.cursor[m.pane]
	if i < 0 || i >= len(xs) {
		return model.Section{}, false
	}
	return xs[i], true
}

// refresh pulls the controller state and keeps both cursors in range.
func (m *editorModel) refresh(st layout.State) {
	m.st = st
	if st.Err == nil {
		m.saveErr = ""
	}
	for _, p := range []pane{paneMain, paneSocial} {
		n := len(m.sections(p))
		m.cursor[p] = min(max(m.cursor[p], 0), max(n-1, 0))
	}
}

// focusSection moves the pane and cursor onto section id.
func (m *editorModel) focusSection(id string) {
	for _, p := range []pane{paneMain, paneSocial} {
		for i, s := range m.sections(p) {
			if s.ID == id {
				m.pane = p
				m.cursor[p] = i
				return
			}
		}
	}
}

func (m *editorModel) applyPrefs(p Prefs) {
	if p.Pane == "social" {
		m.pane = paneSocial
	}
	m.preview = p.Preview
	if p.SelectedID != "" {
		m.focusSection(p.SelectedID)
	}
}

func (m editorModel) prefs() Prefs {
	p := Prefs{Pane: "main", Preview: m.preview}
	if m.pane == paneSocial {
		p.Pane = "social"
	}
	if s, ok := m.selected(); ok {
		p.SelectedID = s.ID
	}
	return p
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.mode == modePicker {
			m.picker.SetSize(msg.Width, max(msg.Height-2, 5))
		}
		return m, nil
	case saveErrMsg:
		m.saveErr = msg.err.Error()
		m.refresh(m.ctrl.State())
		return m, waitForSaveErr(m.ctrl.Errors())
	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeEditTitle:
			return m.updateEditTitle(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor[m.pane] = max(m.cursor[m.pane]-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.cursor[m.pane] = min(m.cursor[m.pane]+1, max(len(m.sections(m.pane))-1, 0))
	case key.Matches(msg, m.keys.SwitchPane):
		m.pane = 1 - m.pane
	case key.Matches(msg, m.keys.MoveUp), key.Matches(msg, m.keys.MoveDown):
		m.moveSelected(key.Matches(msg, m.keys.MoveUp))
	case key.Matches(msg, m.keys.Grab):
		m.grabOrDrop()
	case key.Matches(msg, m.keys.Cancel):
		if m.carrying != "" {
			m.carrying = ""
			m.refresh(m.ctrl.DragCancel())
			m.status = "Drag cancelled"
		}
	case key.Matches(msg, m.keys.Add):
		m.mode = modePicker
		m.picker = newPicker(m.ctrl.PresentTypes(), m.width, max(m.height-2, 12))
	case key.Matches(msg, m.keys.Delete):
		if sec, ok := m.selected(); ok {
			m.refresh(m.ctrl.Remove(sec.ID))
			m.status = "Removed " + sectionLabel(sec)
		}
	case key.Matches(msg, m.keys.Edit):
		if sec, ok := m.selected(); ok {
			m.mode = modeEditTitle
			m.editingID = sec.ID
			m.input.SetValue(sec.Title)
			m.input.CursorEnd()
			return m, m.input.Focus()
		}
	case key.Matches(msg, m.keys.Preview):
		m.preview = !m.preview
	case key.Matches(msg, m.keys.Copy):
		if err := writeClipboard(render.Markdown(m.st)); err != nil {
			m.status = "Copy failed: " + err.Error()
		} else {
			m.status = "Copied card markdown"
		}
	}
	return m, nil
}

func (m *editorModel) moveSelected(up bool) {
	sec, ok := m.selected()
	if !ok {
		return
	}
	to := m.cursor[m.pane] + 1
	if up {
		to = m.cursor[m.pane] - 1
	}
	if to < 0 || to >= len(m.sections(m.pane)) {
		return
	}
	st, err := m.ctrl.Move(sec.ID, m.pane.area(), to)
	if err != nil {
		m.status = err.Error()
		return
	}
	m.refresh(st)
	m.cursor[m.pane] = to
}

// grabOrDrop picks up the selected section, or drops the carried one at the cursor.
func (m *editorModel) grabOrDrop() {
	if m.carrying == "" {
		sec, ok := m.selected()
		if !ok {
			return
		}
		st, err := m.ctrl.DragStart(layout.DragEvent{SectionID: sec.ID})
		if err != nil {
			m.status = err.Error()
			return
		}
		m.refresh(st)
		m.carrying = sec.ID
		m.status = "Carrying " + sectionLabel(sec) + ": move and press space to drop"
		return
	}

	idx := m.cursor[m.pane]
	id := m.carrying
	m.carrying = ""
	m.drop(layout.DragEvent{SectionID: id, Target: m.pane.area(), Index: &idx})
}

func (m *editorModel) drop(ev layout.DragEvent) {
	res, st, err := m.ctrl.DragEnd(ev)
	m.refresh(st)
	if err != nil {
		m.status = err.Error()
		return
	}
	switch res.Outcome {
	case layout.DropIgnored:
		m.status = "Only social links can go on the social bar"
	case layout.DropRedirected:
		m.status = "Social links live on the social bar"
	case layout.DropAdded:
		m.status = "Added " + sectionLabel(*res.Section)
	}
	if res.Section != nil {
		m.focusSection(res.Section.ID)
	}
}

func (m editorModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc", "q":
			m.mode = modeBrowse
			return m, nil
		case "enter":
			m.mode = modeBrowse
			it, ok := m.picker.SelectedItem().(catalogItem)
			if !ok {
				return m, nil
			}
			idx := len(m.sections(m.pane))
			if len(m.sections(m.pane)) > 0 {
				idx = m.cursor[m.pane] + 1
			}
			m.drop(layout.DragEvent{CatalogType: it.entry.Type, Target: m.pane.area(), Index: &idx})
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m editorModel) updateEditTitle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		m.mode = modeBrowse
		m.input.Blur()
		title := strings.TrimSpace(m.input.Value())
		st, err := m.ctrl.Update(m.editingID, layout.Patch{Title: &title})
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.refresh(st)
		m.status = "Title updated"
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func sectionLabel(s model.Section) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return s.Type
}

func (m editorModel) View() string {
	if m.mode == modePicker {
		return m.picker.View()
	}

	var b strings.Builder
	header := fmt.Sprintf("prysma · %s", m.st.UserID)
	if m.st.Saving {
		header += " · saving…"
	}
	b.WriteString(styleHeader().Render(header))
	b.WriteString("\n")

	if m.preview {
		b.WriteString(render.Terminal(render.Markdown(m.st), max(m.width-2, 20)))
	} else {
		paneW := max((m.width-2)/2-4, 16)
		paneH := max(len(m.st.Card), len(m.st.SocialBar), 3)
		left := stylePane(m.pane == paneMain).Render(fitPane(m.renderPane(paneMain, paneW), paneW, paneH+1))
		right := stylePane(m.pane == paneSocial).Render(fitPane(m.renderPane(paneSocial, paneW), paneW, paneH+1))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	}
	b.WriteString("\n")

	if m.mode == modeEditTitle {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	switch {
	case m.saveErr != "":
		b.WriteString(styleError().Render("Save failed: " + m.saveErr))
	case m.st.Error != "":
		b.WriteString(styleError().Render(m.st.Error))
	case m.status != "":
		b.WriteString(m.status)
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m editorModel) renderPane(p pane, width int) string {
	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Render(p.label()))
	xs := m.sections(p)
	if len(xs) == 0 {
		lines = append(lines, styleMuted().Render("(empty)"))
	}
	for i, s := range xs {
		ln := fitLine(sectionLabel(s)+" "+styleMuted().Render(s.Type), width-2)
		switch {
		case s.ID == m.carrying:
			ln = styleCarried().Render("✥ " + ln)
		case p == m.pane && i == m.cursor[p]:
			ln = styleSelected().Render("› " + ln)
		default:
			ln = "  " + ln
		}
		lines = append(lines, ln)
	}
	return strings.Join(lines, "\n")
}
