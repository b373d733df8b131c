package render

import (
	"strings"
	"testing"

	"prysma/internal/layout"
	"prysma/internal/model"
)

func TestMarkdown(t *testing.T) {
	st := layout.State{
		Card: []model.Section{
			{ID: "1", Type: "bio", Title: "About", Value: model.TextValue("Designer in Lisbon.")},
			{ID: "2", Type: "projects", Title: "Work", Value: model.ProjectsValue{{Title: "Site", URL: "https://example.com", Tags: []string{"go"}}}},
			{ID: "3", Type: "divider", Value: model.EmptyValue{}},
			{ID: "4", Type: "services", Title: "", Value: model.ServicesValue{}},
		},
		SocialBar: []model.Section{
			{ID: "5", Type: "github", Title: "GitHub", Value: model.TextValue("https://github.com/x"), Area: model.AreaSocialBar},
			{ID: "6", Type: "linkedin", Title: "LinkedIn", Value: model.TextValue(""), Area: model.AreaSocialBar},
		},
	}
	md := Markdown(st)
	for _, want := range []string{
		"## About\n\nDesigner in Lisbon.",
		"- [**Site**](https://example.com) `go`",
		"---\n",
		"## Services\n\n_Empty_",
		"[GitHub](https://github.com/x) · LinkedIn",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}
}

func TestMarkdown_EmptyCard(t *testing.T) {
	if got := Markdown(layout.State{}); !strings.Contains(got, "no sections") {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTerminal(t *testing.T) {
	t.Setenv("PRYSMA_MD_STYLE", "dark")
	out := Terminal("## Hello\n\nworld", 40)
	if !strings.Contains(out, "Hello") || !strings.Contains(out, "world") {
		t.Fatalf("unexpected render %q", out)
	}
	if Terminal("   ", 40) != "" {
		t.Fatalf("blank markdown should render empty")
	}
}

func TestHTML_EscapesRawHTML(t *testing.T) {
	out := string(HTML("## Bio\n\n<script>alert(1)</script> :wave:"))
	if !strings.Contains(out, "<h2>Bio</h2>") {
		t.Fatalf("missing heading in %q", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html passed through: %q", out)
	}
	if !strings.Contains(out, "👋") {
		t.Fatalf("emoji shortcode not expanded: %q", out)
	}
}
