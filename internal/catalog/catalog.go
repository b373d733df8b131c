// Package catalog is the static registry of section types a card can hold.
package catalog

import (
	"strings"

	"prysma/internal/model"
)

const (
	CategoryAbout   = "About"
	CategoryWork    = "Work"
	CategoryContact = "Contact"
	CategorySocial  = "Social"
	CategoryLayout  = "Layout"
)

var categoryOrder = []string{CategoryAbout, CategoryWork, CategoryContact, CategorySocial, CategoryLayout}

// Entry is the display metadata for one section type.
type Entry struct {
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Icon            string          `json:"icon"`
	Category        string          `json:"category"`
	EditorComponent string          `json:"editorComponent,omitempty"`
	Kind            model.ValueKind `json:"kind"`
	Social          bool            `json:"social,omitempty"`
}

type Group struct {
	Category string  `json:"category"`
	Entries  []Entry `json:"entries"`
}

// Defaults is what a freshly added section of a type starts with.
type Defaults struct {
	Title           string
	Value           model.Value
	EditorComponent string
}

const (
	fallbackTitle  = "Custom Section"
	fallbackEditor = "TextEditor"
)

func entry(typ, name, icon, category, editor string) Entry {
	return Entry{
		Type:            typ,
		Name:            name,
		Icon:            icon,
		Category:        category,
		EditorComponent: editor,
		Kind:            model.KindForType(typ),
		Social:          category == CategorySocial,
	}
}

var entries = []Entry{
	entry("bio", "Bio", "user", CategoryAbout, "TextAreaEditor"),
	entry("headline", "Headline", "type", CategoryAbout, "TextEditor"),
	entry("skills", "Skills", "sparkles", CategoryAbout, "TagsEditor"),

	entry("projects", "Projects", "briefcase", CategoryWork, "ProjectsEditor"),
	entry("services", "Services", "package", CategoryWork, "ServicesEditor"),
	entry("experience", "Experience", "building", CategoryWork, "ExperienceEditor"),
	entry("education", "Education", "graduation-cap", CategoryWork, "ExperienceEditor"),
	entry("testimonials", "Testimonials", "quote", CategoryWork, "TestimonialsEditor"),

	entry("email", "Email", "mail", CategoryContact, "TextEditor"),
	entry("phone", "Phone", "phone", CategoryContact, "TextEditor"),
	entry("location", "Location", "map-pin", CategoryContact, "TextEditor"),
	entry("website", "Website", "globe", CategoryContact, "LinkEditor"),
	entry("booking", "Booking link", "calendar", CategoryContact, "LinkEditor"),

	entry("linkedin", "LinkedIn", "linkedin", CategorySocial, "SocialLinkEditor"),
	entry("github", "GitHub", "github", CategorySocial, "SocialLinkEditor"),
	entry("twitter", "X / Twitter", "twitter", CategorySocial, "SocialLinkEditor"),
	entry("instagram", "Instagram", "instagram", CategorySocial, "SocialLinkEditor"),
	entry("youtube", "YouTube", "youtube", CategorySocial, "SocialLinkEditor"),
	entry("tiktok", "TikTok", "music", CategorySocial, "SocialLinkEditor"),
	entry("facebook", "Facebook", "facebook", CategorySocial, "SocialLinkEditor"),
	entry("dribbble", "Dribbble", "dribbble", CategorySocial, "SocialLinkEditor"),
	entry("behance", "Behance", "pen-tool", CategorySocial, "SocialLinkEditor"),
	entry("medium", "Medium", "book-open", CategorySocial, "SocialLinkEditor"),
	entry("whatsapp", "WhatsApp", "message-circle", CategorySocial, "SocialLinkEditor"),
	entry("telegram", "Telegram", "send", CategorySocial, "SocialLinkEditor"),

	entry("divider", "Divider", "minus", CategoryLayout, ""),
}

var byType = func() map[string]Entry {
	m := make(map[string]Entry, len(entries))
	for _, e := range entries {
		m[e.Type] = e
	}
	return m
}()

// Lookup returns the entry for typ.
func Lookup(typ string) (Entry, bool) {
	e, ok := byType[strings.TrimSpace(typ)]
	return e, ok
}

// All returns every entry in registry order.
func All() []Entry {
	return append([]Entry(nil), entries...)
}

// DefaultsFor returns the starting title, value and editor for typ. Unknown types get a generic
// text section. Every call returns a fresh value.
func DefaultsFor(typ string) Defaults {
	e, ok := Lookup(typ)
	if !ok {
		return Defaults{
			Title:           fallbackTitle,
			Value:           model.TextValue(""),
			EditorComponent: fallbackEditor,
		}
	}
	return Defaults{
		Title:           e.Name,
		Value:           model.ZeroValue(e.Kind),
		EditorComponent: e.EditorComponent,
	}
}

// IsSocialType reports whether typ belongs on the social bar.
func IsSocialType(typ string) bool {
	e, ok := Lookup(typ)
	return ok && e.Social
}

func SocialTypes() []string {
	var out []string
	for _, e := range entries {
		if e.Social {
			out = append(out, e.Type)
		}
	}
	return out
}

func Categories() []string {
	return append([]string(nil), categoryOrder...)
}

// ListByCategory groups all entries in category order.
func ListByCategory() []Group {
	return Available(nil)
}

// Available groups the entries whose type is not in present. Empty groups are dropped.
func Available(present []string) []Group {
	skip := map[string]bool{}
	for _, t := range present {
		skip[strings.TrimSpace(t)] = true
	}
	out := make([]Group, 0, len(categoryOrder))
	for _, cat := range categoryOrder {
		g := Group{Category: cat}
		for _, e := range entries {
			if e.Category != cat || skip[e.Type] {
				continue
			}
			g.Entries = append(g.Entries, e)
		}
		if len(g.Entries) > 0 {
			out = append(out, g)
		}
	}
	return out
}
