package layout

import (
	"strings"

	"prysma/internal/catalog"
	"prysma/internal/model"
)

// DragEvent is what a drag-and-drop surface reports. Exactly one of SectionID (an existing
// section being moved) or CatalogType (a new section dragged out of the catalog) is set.
type DragEvent struct {
	SectionID   string     `json:"sectionId,omitempty"`
	CatalogType string     `json:"catalogType,omitempty"`
	Target      model.Area `json:"target,omitempty"`
	// Index is the drop position within Target. Nil appends.
	Index *int `json:"index,omitempty"`
}

type DropOutcome string

const (
	DropAdded      DropOutcome = "added"
	DropMoved      DropOutcome = "moved"
	DropRedirected DropOutcome = "redirected"
	DropIgnored    DropOutcome = "ignored"
)

type DropResult struct {
	Outcome DropOutcome    `json:"outcome"`
	Section *model.Section `json:"section,omitempty"`
}

func (ev DragEvent) index() int {
	if ev.Index == nil {
		return -1
	}
	return *ev.Index
}

// ValidTargets lists the areas a section of sectionType may be dropped on.
func ValidTargets(sectionType string) []model.Area {
	if catalog.IsSocialType(sectionType) {
		return []model.Area{model.AreaSocialBar}
	}
	return []model.Area{model.AreaMain}
}

// DragStart records the active drag so surfaces can highlight targets. The list is not touched.
func (c *Controller) DragStart(ev DragEvent) (State, error) {
	ev.SectionID = strings.TrimSpace(ev.SectionID)
	ev.CatalogType = strings.TrimSpace(ev.CatalogType)
	if (ev.SectionID == "") == (ev.CatalogType == "") {
		return c.State(), ErrInvalidDrag
	}

	c.mu.Lock()
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return st, err
	}
	if ev.SectionID != "" && indexOfID(c.sections, ev.SectionID) < 0 {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, ErrSectionNotFound
	}
	c.dragging = &ev
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st, nil
}

// DragEnd applies a drop:
//   - a non-social type dropped on the social bar is ignored;
//   - a social type dropped on the main card goes to the social bar instead;
//   - otherwise a catalog drop adds a section at Index and a section drop moves it there.
func (c *Controller) DragEnd(ev DragEvent) (DropResult, State, error) {
	ev.SectionID = strings.TrimSpace(ev.SectionID)
	ev.CatalogType = strings.TrimSpace(ev.CatalogType)
	target := ev.Target.Normalize()
	if (ev.SectionID == "") == (ev.CatalogType == "") ||
		(target != model.AreaMain && target != model.AreaSocialBar) {
		c.clearDrag()
		return DropResult{Outcome: DropIgnored}, c.State(), ErrInvalidDrag
	}

	c.mu.Lock()
	c.dragging = nil
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return DropResult{Outcome: DropIgnored}, st, err
	}

	existing := -1
	sectionType := ev.CatalogType
	if ev.SectionID != "" {
		existing = indexOfID(c.sections, ev.SectionID)
		if existing < 0 {
			st := c.stateLocked()
			c.mu.Unlock()
			c.notify(st)
			return DropResult{Outcome: DropIgnored}, st, ErrSectionNotFound
		}
		sectionType = c.sections[existing].Type
	}

	social := catalog.IsSocialType(sectionType)
	if target == model.AreaSocialBar && !social {
		st := c.stateLocked()
		c.mu.Unlock()
		c.notify(st)
		return DropResult{Outcome: DropIgnored}, st, nil
	}

	res := DropResult{}
	index := ev.index()
	if target == model.AreaMain && social {
		target = model.AreaSocialBar
		// The drop position referred to the main card; append to the social bar.
		index = -1
		res.Outcome = DropRedirected
	}

	var placed model.Section
	switch {
	case existing < 0:
		placed = c.newSectionLocked(sectionType)
		placed.Area = target
		c.sections = insertInArea(c.sections, placed, index)
		c.enqueueLocked()
		if res.Outcome == "" {
			res.Outcome = DropAdded
		}
	case res.Outcome == DropRedirected && c.sections[existing].InSocialBar():
		// Already on the social bar: keep its position.
		placed = c.sections[existing]
	default:
		c.moveLocked(existing, target, index)
		placed = c.sections[indexOfID(c.sections, ev.SectionID)]
		if res.Outcome == "" {
			res.Outcome = DropMoved
		}
	}
	cp := placed.Clone()
	res.Section = &cp
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return res, st, nil
}

// DragCancel forgets the active drag without touching the list.
func (c *Controller) DragCancel() State {
	c.mu.Lock()
	c.dragging = nil
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st
}

func (c *Controller) clearDrag() {
	c.mu.Lock()
	c.dragging = nil
	c.mu.Unlock()
}
