package model

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

var errInvalidPayload = errors.New("section value is not valid JSON")

// ValueKind names the payload shape a section type carries.
type ValueKind string

const (
	KindText         ValueKind = "text"
	KindProjects     ValueKind = "projects"
	KindServices     ValueKind = "services"
	KindExperience   ValueKind = "experience"
	KindTestimonials ValueKind = "testimonials"
	KindEmpty        ValueKind = "empty"
	KindUnknown      ValueKind = "unknown"
)

var kindByType = map[string]ValueKind{
	"bio":          KindText,
	"headline":     KindText,
	"skills":       KindText,
	"email":        KindText,
	"phone":        KindText,
	"location":     KindText,
	"website":      KindText,
	"booking":      KindText,
	"projects":     KindProjects,
	"portfolio":    KindProjects, // legacy name of projects
	"services":     KindServices,
	"experience":   KindExperience,
	"education":    KindExperience,
	"testimonials": KindTestimonials,
	"divider":      KindEmpty,

	"linkedin":  KindText,
	"github":    KindText,
	"twitter":   KindText,
	"instagram": KindText,
	"youtube":   KindText,
	"tiktok":    KindText,
	"facebook":  KindText,
	"dribbble":  KindText,
	"behance":   KindText,
	"medium":    KindText,
	"whatsapp":  KindText,
	"telegram":  KindText,
}

// KindForType returns the payload kind for a section type, or KindUnknown.
func KindForType(sectionType string) ValueKind {
	if k, ok := kindByType[sectionType]; ok {
		return k
	}
	return KindUnknown
}

// Value is the section payload. Each kind has exactly one concrete type.
type Value interface {
	Kind() ValueKind
	clone() Value
}

type TextValue string

func (TextValue) Kind() ValueKind  { return KindText }
func (v TextValue) clone() Value   { return v }
func (v TextValue) String() string { return string(v) }

type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	URL         string   `json:"url,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type ProjectsValue []Project

func (ProjectsValue) Kind() ValueKind { return KindProjects }
func (v ProjectsValue) clone() Value {
	out := make(ProjectsValue, 0, len(v))
	for _, p := range v {
		p.Tags = append([]string(nil), p.Tags...)
		out = append(out, p)
	}
	return out
}

func (v ProjectsValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Project(v))
}

type Service struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

type ServicesValue []Service

func (ServicesValue) Kind() ValueKind { return KindServices }
func (v ServicesValue) clone() Value   { return append(ServicesValue{}, v...) }

func (v ServicesValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Service(v))
}

type Experience struct {
	Role        string `json:"role"`
	Company     string `json:"company,omitempty"`
	Start       string `json:"start,omitempty"` // YYYY-MM
	End         string `json:"end,omitempty"`   // YYYY-MM, empty = present
	Description string `json:"description,omitempty"`
}

type ExperienceValue []Experience

func (ExperienceValue) Kind() ValueKind { return KindExperience }
func (v ExperienceValue) clone() Value   { return append(ExperienceValue{}, v...) }

func (v ExperienceValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Experience(v))
}

type Testimonial struct {
	Author string `json:"author"`
	Role   string `json:"role,omitempty"`
	Quote  string `json:"quote"`
}

type TestimonialsValue []Testimonial

func (TestimonialsValue) Kind() ValueKind { return KindTestimonials }
func (v TestimonialsValue) clone() Value   { return append(TestimonialsValue{}, v...) }

func (v TestimonialsValue) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Testimonial(v))
}

type EmptyValue struct{}

func (EmptyValue) Kind() ValueKind { return KindEmpty }
func (EmptyValue) clone() Value     { return EmptyValue{} }

func (EmptyValue) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// RawValue keeps payloads of unknown types (or payloads that do not match their type's shape)
// verbatim so a load/save cycle never drops data.
type RawValue []byte

func (RawValue) Kind() ValueKind { return KindUnknown }
func (v RawValue) clone() Value   { return append(RawValue{}, v...) }

func (v RawValue) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(v)) == 0 {
		return []byte("null"), nil
	}
	return append([]byte(nil), v...), nil
}

// ZeroValue returns the empty payload for kind.
func ZeroValue(kind ValueKind) Value {
	switch kind {
	case KindText:
		return TextValue("")
	case KindProjects:
		return ProjectsValue{}
	case KindServices:
		return ServicesValue{}
	case KindExperience:
		return ExperienceValue{}
	case KindTestimonials:
		return TestimonialsValue{}
	case KindEmpty:
		return EmptyValue{}
	default:
		return RawValue(nil)
	}
}

// DecodeValue decodes raw as kind. Absent or null payloads yield the kind's zero value.
// Payloads that do not fit the kind are preserved as RawValue instead of failing the whole list.
func DecodeValue(kind ValueKind, raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ZeroValue(kind), nil
	}

	var (
		v   Value
		err error
	)
	switch kind {
	case KindText:
		var s string
		err = json.Unmarshal(trimmed, &s)
		v = TextValue(s)
	case KindProjects:
		var xs []Project
		err = json.Unmarshal(trimmed, &xs)
		v = ProjectsValue(nonNil(xs))
	case KindServices:
		var xs []Service
		err = json.Unmarshal(trimmed, &xs)
		v = ServicesValue(nonNil(xs))
	case KindExperience:
		var xs []Experience
		err = json.Unmarshal(trimmed, &xs)
		v = ExperienceValue(nonNil(xs))
	case KindTestimonials:
		var xs []Testimonial
		err = json.Unmarshal(trimmed, &xs)
		v = TestimonialsValue(nonNil(xs))
	case KindEmpty:
		// Non-null payload on an empty kind: keep it.
		return RawValue(append([]byte(nil), trimmed...)), nil
	default:
		if !json.Valid(trimmed) {
			return nil, errInvalidPayload
		}
		return RawValue(append([]byte(nil), trimmed...)), nil
	}
	if err != nil {
		return RawValue(append([]byte(nil), trimmed...)), nil
	}
	return v, nil
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}
