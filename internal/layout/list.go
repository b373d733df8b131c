package layout

import (
	"prysma/internal/model"
)

// partition stably orders xs as main-card sections followed by social-bar sections.
// Relative order inside each area is preserved.
func partition(xs []model.Section) []model.Section {
	out := make([]model.Section, 0, len(xs))
	for _, s := range xs {
		if !s.InSocialBar() {
			out = append(out, s)
		}
	}
	for _, s := range xs {
		if s.InSocialBar() {
			out = append(out, s)
		}
	}
	return out
}

func filterArea(xs []model.Section, social bool) []model.Section {
	out := make([]model.Section, 0, len(xs))
	for _, s := range xs {
		if s.InSocialBar() == social {
			out = append(out, s.Clone())
		}
	}
	return out
}

func indexOfID(xs []model.Section, id string) int {
	for i := range xs {
		if xs[i].ID == id {
			return i
		}
	}
	return -1
}

func removeAt(xs []model.Section, i int) []model.Section {
	out := make([]model.Section, 0, len(xs))
	out = append(out, xs[:i]...)
	return append(out, xs[i+1:]...)
}

func insertAtIndex(xs []model.Section, i int, s model.Section) []model.Section {
	out := make([]model.Section, 0, len(xs)+1)
	out = append(out, xs[:i]...)
	out = append(out, s)
	return append(out, xs[i:]...)
}

// insertInArea places s at position idx within its area's view of the (partitioned) list.
// idx < 0 or past the end appends to the area.
func insertInArea(xs []model.Section, s model.Section, idx int) []model.Section {
	social := s.InSocialBar()
	var members []int
	firstSocial := len(xs)
	for i := range xs {
		if xs[i].InSocialBar() {
			if i < firstSocial {
				firstSocial = i
			}
		}
		if xs[i].InSocialBar() == social {
			members = append(members, i)
		}
	}

	var pos int
	switch {
	case idx >= 0 && idx < len(members):
		pos = members[idx]
	case len(members) > 0:
		pos = members[len(members)-1] + 1
	case social:
		pos = len(xs)
	default:
		pos = firstSocial
	}
	return insertAtIndex(xs, pos, s)
}

// moveIndex removes the element at from and reinserts it at to.
func moveIndex(xs []model.Section, from, to int) []model.Section {
	s := xs[from]
	rest := removeAt(xs, from)
	return insertAtIndex(rest, to, s)
}

func sectionTypes(xs []model.Section) []string {
	out := make([]string, 0, len(xs))
	for _, s := range xs {
		out = append(out, s.Type)
	}
	return out
}
