package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSectionUnmarshal_DecodesValueByType(t *testing.T) {
	raw := `[
		{"id":"s1","type":"projects","title":"Work","value":[{"title":"Site","url":"https://example.com","tags":["go"]}]},
		{"id":"s2","type":"skills","title":"Skills","value":"Go, SQL"},
		{"id":"s3","type":"divider","title":""},
		{"id":"s4","type":"linkedin","title":"LinkedIn","value":"https://linkedin.com/in/x","area":"social_bar"}
	]`
	var got []Section
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(got))
	}
	if pv, ok := got[0].Value.(ProjectsValue); !ok || len(pv) != 1 || pv[0].Title != "Site" {
		t.Fatalf("unexpected projects value: %#v", got[0].Value)
	}
	if tv, ok := got[1].Value.(TextValue); !ok || string(tv) != "Go, SQL" {
		t.Fatalf("unexpected skills value: %#v", got[1].Value)
	}
	if _, ok := got[2].Value.(EmptyValue); !ok {
		t.Fatalf("expected empty value for divider, got %#v", got[2].Value)
	}
	if !got[3].InSocialBar() {
		t.Fatalf("expected linkedin in social bar")
	}
	if got[0].Area.Normalize() != AreaMain {
		t.Fatalf("expected absent area to normalize to main, got %q", got[0].Area.Normalize())
	}
}

func TestSectionUnmarshal_KeepsMismatchedPayloadVerbatim(t *testing.T) {
	// A legacy row stored an object where the type expects a string.
	raw := `{"id":"s1","type":"bio","title":"About","value":{"text":"hello"}}`
	var s Section
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rv, ok := s.Value.(RawValue)
	if !ok {
		t.Fatalf("expected RawValue, got %T", s.Value)
	}
	if string(rv) != `{"text":"hello"}` {
		t.Fatalf("unexpected raw payload: %s", rv)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal back: %v", err)
	}
	if diff := cmp.Diff(map[string]any{"text": "hello"}, back["value"]); diff != "" {
		t.Fatalf("payload changed (-want +got):\n%s", diff)
	}
}

func TestSectionMarshal_NilValueUsesKindZero(t *testing.T) {
	b, err := json.Marshal(Section{ID: "s1", Type: "services", Title: "Services"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"s1","type":"services","title":"Services","value":[]}`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
}

func TestCloneSections_DoesNotAlias(t *testing.T) {
	orig := []Section{{ID: "s1", Type: "projects", Value: ProjectsValue{{Title: "A", Tags: []string{"x"}}}}}
	cp := CloneSections(orig)
	cp[0].Value.(ProjectsValue)[0].Tags[0] = "changed"
	if orig[0].Value.(ProjectsValue)[0].Tags[0] != "x" {
		t.Fatalf("clone aliases the original tags slice")
	}
	if got := CloneSections(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSectionValid(t *testing.T) {
	cases := map[string]struct {
		s    Section
		want bool
	}{
		"ok":         {Section{ID: "a", Type: "bio"}, true},
		"missing id": {Section{Type: "bio"}, false},
		"blank type": {Section{ID: "a", Type: "  "}, false},
	}
	for name, tc := range cases {
		if got := tc.s.Valid(); got != tc.want {
			t.Fatalf("%s: Valid()=%v want %v", name, got, tc.want)
		}
	}
}
