package tui

import (
	"prysma/internal/catalog"

	"github.com/charmbracelet/bubbles/list"
)

// catalogItem is one entry in the add-section picker.
type catalogItem struct {
	entry catalog.Entry
}

func (i catalogItem) Title() string       { return i.entry.Name }
func (i catalogItem) Description() string { return i.entry.Category + " · " + i.entry.Type }
func (i catalogItem) FilterValue() string { return i.entry.Name + " " + i.entry.Type }

func pickerItems(present []string) []list.Item {
	var items []list.Item
	for _, g := range catalog.Available(present) {
		for _, e := range g.Entries {
			items = append(items, catalogItem{entry: e})
		}
	}
	return items
}

func newPicker(present []string, width, height int) list.Model {
	l := list.New(pickerItems(present), list.NewDefaultDelegate(), width, height)
	l.Title = "Add section"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}
