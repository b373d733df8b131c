package catalog

import (
	"testing"

	"prysma/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultsFor_Idempotent(t *testing.T) {
	for _, e := range All() {
		a := DefaultsFor(e.Type)
		b := DefaultsFor(e.Type)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("%s: defaults differ between calls (-a +b):\n%s", e.Type, diff)
		}
	}
}

func TestDefaultsFor_UnknownTypeFallsBack(t *testing.T) {
	d := DefaultsFor("hologram")
	if d.Title != "Custom Section" || d.EditorComponent != "TextEditor" {
		t.Fatalf("unexpected fallback defaults: %+v", d)
	}
	if _, ok := d.Value.(model.TextValue); !ok {
		t.Fatalf("expected text fallback value, got %T", d.Value)
	}
}

func TestEntries_HaveKnownKindAndUniqueType(t *testing.T) {
	seen := map[string]bool{}
	for _, e := range All() {
		if seen[e.Type] {
			t.Fatalf("duplicate catalog type %q", e.Type)
		}
		seen[e.Type] = true
		if e.Kind == model.KindUnknown {
			t.Fatalf("catalog type %q has no value kind", e.Type)
		}
	}
	if _, ok := Lookup("portfolio"); ok {
		t.Fatalf("legacy portfolio type must not be offered by the catalog")
	}
}

func TestSocialTypes(t *testing.T) {
	social := SocialTypes()
	if len(social) == 0 {
		t.Fatalf("expected social types")
	}
	for _, typ := range social {
		if !IsSocialType(typ) {
			t.Fatalf("IsSocialType(%q)=false", typ)
		}
	}
	for _, typ := range []string{"projects", "bio", "email", "unknown"} {
		if IsSocialType(typ) {
			t.Fatalf("IsSocialType(%q)=true", typ)
		}
	}
}

func TestAvailable_ExcludesPresentTypesAndDropsEmptyGroups(t *testing.T) {
	groups := Available([]string{"divider", "bio"})
	for _, g := range groups {
		if g.Category == CategoryLayout {
			t.Fatalf("layout group should be dropped once divider is present")
		}
		for _, e := range g.Entries {
			if e.Type == "bio" || e.Type == "divider" {
				t.Fatalf("present type %q still offered", e.Type)
			}
		}
	}

	all := ListByCategory()
	var cats []string
	total := 0
	for _, g := range all {
		cats = append(cats, g.Category)
		total += len(g.Entries)
	}
	if diff := cmp.Diff(Categories(), cats); diff != "" {
		t.Fatalf("category order (-want +got):\n%s", diff)
	}
	if total != len(All()) {
		t.Fatalf("grouped %d entries, want %d", total, len(All()))
	}
}
