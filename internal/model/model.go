package model

import (
	"encoding/json"
	"strings"
	"time"
)

type Area string

const (
	AreaMain      Area = "main"
	AreaSocialBar Area = "social_bar"
)

// Normalize maps the empty area to AreaMain. Unknown tags are kept as-is.
func (a Area) Normalize() Area {
	if strings.TrimSpace(string(a)) == "" {
		return AreaMain
	}
	return a
}

// Section is one placed section on a user's card.
type Section struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Value           Value  `json:"value"`
	Area            Area   `json:"area,omitempty"`
	EditorComponent string `json:"editorComponent,omitempty"`
}

// InSocialBar reports whether s is placed on the social strip. An absent area means the main card.
func (s Section) InSocialBar() bool {
	return s.Area == AreaSocialBar
}

// Valid reports whether s carries the fields required for persistence.
func (s Section) Valid() bool {
	return strings.TrimSpace(s.ID) != "" && strings.TrimSpace(s.Type) != ""
}

// Clone returns a deep copy so snapshots handed to callers never alias controller state.
func (s Section) Clone() Section {
	out := s
	if s.Value != nil {
		out.Value = s.Value.clone()
	}
	return out
}

type sectionWire struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Title           string          `json:"title"`
	Value           json.RawMessage `json:"value,omitempty"`
	Area            Area            `json:"area,omitempty"`
	EditorComponent string          `json:"editorComponent,omitempty"`
}

func (s Section) MarshalJSON() ([]byte, error) {
	v := s.Value
	if v == nil {
		v = ZeroValue(KindForType(s.Type))
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionWire{
		ID:              s.ID,
		Type:            s.Type,
		Title:           s.Title,
		Value:           raw,
		Area:            s.Area,
		EditorComponent: s.EditorComponent,
	})
}

// UnmarshalJSON decodes value according to the kind implied by type.
func (s *Section) UnmarshalJSON(b []byte) error {
	var w sectionWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	v, err := DecodeValue(KindForType(w.Type), w.Value)
	if err != nil {
		return err
	}
	*s = Section{
		ID:              w.ID,
		Type:            w.Type,
		Title:           w.Title,
		Value:           v,
		Area:            w.Area,
		EditorComponent: w.EditorComponent,
	}
	return nil
}

// CloneSections deep-copies xs. The result is never nil.
func CloneSections(xs []Section) []Section {
	out := make([]Section, 0, len(xs))
	for _, s := range xs {
		out = append(out, s.Clone())
	}
	return out
}

// Profile is the user-profile row the sections column hangs off.
type Profile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
