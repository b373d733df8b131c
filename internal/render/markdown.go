// Package render turns a card layout into markdown and renders it for terminals.
package render

import (
	"fmt"
	"strings"

	"prysma/internal/catalog"
	"prysma/internal/layout"
	"prysma/internal/model"
)

// Markdown builds a markdown document of the card: one heading per main-card section followed by
// its value, then the social bar as a single line of links.
func Markdown(st layout.State) string {
	var b strings.Builder
	for i, s := range st.Card {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSection(&b, s)
	}

	if len(st.SocialBar) > 0 {
		if len(st.Card) > 0 {
			b.WriteString("\n---\n\n")
		}
		links := make([]string, 0, len(st.SocialBar))
		for _, s := range st.SocialBar {
			links = append(links, socialLink(s))
		}
		b.WriteString(strings.Join(links, " · "))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "_This card has no sections yet._\n"
	}
	return b.String()
}

func writeSection(b *strings.Builder, s model.Section) {
	if _, ok := s.Value.(model.EmptyValue); ok || model.KindForType(s.Type) == model.KindEmpty {
		b.WriteString("---\n")
		return
	}
	fmt.Fprintf(b, "## %s\n\n", sectionTitle(s))

	switch v := s.Value.(type) {
	case model.TextValue:
		if t := strings.TrimSpace(string(v)); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		} else {
			b.WriteString("_Empty_\n")
		}
	case model.ProjectsValue:
		for _, p := range v {
			line := "- **" + orDash(p.Title) + "**"
			if p.URL != "" {
				line = "- [**" + orDash(p.Title) + "**](" + p.URL + ")"
			}
			if p.Description != "" {
				line += ": " + p.Description
			}
			if len(p.Tags) > 0 {
				line += " `" + strings.Join(p.Tags, "` `") + "`"
			}
			b.WriteString(line + "\n")
		}
		emptyList(b, len(v))
	case model.ServicesValue:
		for _, sv := range v {
			line := "- **" + orDash(sv.Title) + "**"
			if sv.Price != "" {
				line += " (" + sv.Price + ")"
			}
			if sv.Description != "" {
				line += ": " + sv.Description
			}
			b.WriteString(line + "\n")
		}
		emptyList(b, len(v))
	case model.ExperienceValue:
		for _, e := range v {
			line := "- **" + orDash(e.Role) + "**"
			if e.Company != "" {
				line += ", " + e.Company
			}
			if span := dateSpan(e.Start, e.End); span != "" {
				line += " (" + span + ")"
			}
			b.WriteString(line + "\n")
			if e.Description != "" {
				b.WriteString("  " + e.Description + "\n")
			}
		}
		emptyList(b, len(v))
	case model.TestimonialsValue:
		for _, t := range v {
			fmt.Fprintf(b, "> %s\n>\n> %s\n\n", t.Quote, attribution(t))
		}
		emptyList(b, len(v))
	case model.RawValue:
		b.WriteString("```json\n")
		b.WriteString(strings.TrimSpace(string(v)))
		b.WriteString("\n```\n")
	default:
		b.WriteString("_Empty_\n")
	}
}

func sectionTitle(s model.Section) string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	if e, ok := catalog.Lookup(s.Type); ok {
		return e.Name
	}
	return s.Type
}

func socialLink(s model.Section) string {
	name := sectionTitle(s)
	if v, ok := s.Value.(model.TextValue); ok {
		if u := strings.TrimSpace(string(v)); u != "" {
			return "[" + name + "](" + u + ")"
		}
	}
	return name
}

func attribution(t model.Testimonial) string {
	who := "— " + orDash(t.Author)
	if t.Role != "" {
		who += ", " + t.Role
	}
	return who
}

func dateSpan(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – present"
	case start == "":
		return end
	}
	return start + " – " + end
}

func emptyList(b *strings.Builder, n int) {
	if n == 0 {
		b.WriteString("_Empty_\n")
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
