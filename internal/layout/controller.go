// Package layout keeps a user's card sections in memory, applies edits optimistically and
// persists the full list in the background.
package layout

import (
	"context"
	"strings"
	"sync"
	"time"

	"prysma/internal/catalog"
	"prysma/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Persister reads and writes the whole section list of a user.
type Persister interface {
	FetchSections(ctx context.Context, userID string) ([]model.Section, error)
	SaveSections(ctx context.Context, userID string, sections []model.Section) error
}

const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultWriteTimeout = 10 * time.Second
	errChanSize         = 16

	legacyPortfolioType = "portfolio"
	projectsType        = "projects"
)

// State is an immutable snapshot of a controller, safe to hand to renderers.
type State struct {
	UserID    string          `json:"userId"`
	Card      []model.Section `json:"card"`
	SocialBar []model.Section `json:"socialBar"`
	Dragging  *DragEvent      `json:"dragging,omitempty"`
	Saving    bool            `json:"saving"`
	Error     string          `json:"error,omitempty"`
	Err       error           `json:"-"`
}

// Sections returns the combined list: card sections followed by social bar sections.
func (s State) Sections() []model.Section {
	out := make([]model.Section, 0, len(s.Card)+len(s.SocialBar))
	out = append(out, s.Card...)
	return append(out, s.SocialBar...)
}

// Patch edits a section. Nil fields are left alone.
type Patch struct {
	Title *string
	Value model.Value
}

type Controller struct {
	persister Persister
	log       *zap.Logger
	newID     func() string
	onChange  func(State)
	writer    *Writer
	errCh     chan error

	mu       sync.Mutex
	userID   string
	loaded   bool
	sections []model.Section
	dragging *DragEvent
	loadErr  error
	saveErr  error
	seq      uint64
}

type options struct {
	log          *zap.Logger
	newID        func() string
	onChange     func(State)
	debounce     time.Duration
	writeTimeout time.Duration
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithIDGenerator overrides section id generation (uuid by default).
func WithIDGenerator(f func() string) Option {
	return func(o *options) { o.newID = f }
}

// WithOnChange registers a hook run after every mutation and every write result.
// It is called without internal locks held.
func WithOnChange(f func(State)) Option {
	return func(o *options) { o.onChange = f }
}

// WithDebounce sets how long the write queue waits for more edits before saving.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.debounce = d }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *options) { o.writeTimeout = d }
}

func New(p Persister, opts ...Option) *Controller {
	o := options{
		log:          zap.NewNop(),
		newID:        uuid.NewString,
		debounce:     DefaultDebounce,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	c := &Controller{
		persister: p,
		log:       o.log.Named("layout"),
		newID:     o.newID,
		onChange:  o.onChange,
		errCh:     make(chan error, errChanSize),
		sections:  []model.Section{},
	}
	c.writer = NewWriter(p.SaveSections, WriterOpts{
		Debounce: o.debounce,
		Timeout:  o.writeTimeout,
		OnResult: c.onWriteResult,
	})
	return c
}

// Load fetches the section list for userID. It runs once per user identity: calling it again
// for the loaded user returns the current in-memory state without touching the store, so
// in-flight local edits are never clobbered by a stale read. Switching users flushes queued
// writes for the previous user first.
//
// Failures are recorded in the error field and yield an empty list. The user stays unloaded:
// mutations return the load error and the next Load fetches again.
func (c *Controller) Load(ctx context.Context, userID string) State {
	userID = strings.TrimSpace(userID)

	c.mu.Lock()
	if c.loaded && c.userID == userID {
		st := c.stateLocked()
		c.mu.Unlock()
		return st
	}
	prev := c.userID
	c.userID = userID
	c.loaded = false
	c.sections = []model.Section{}
	c.dragging = nil
	c.loadErr = nil
	c.saveErr = nil
	c.mu.Unlock()

	if prev != "" && prev != userID {
		if err := c.writer.Flush(ctx); err != nil {
			c.log.Warn("flush before user switch", zap.String("user", prev), zap.Error(err))
		}
	}

	var (
		secs []model.Section
		err  error
	)
	if userID == "" {
		err = ErrNoUser
	} else {
		secs, err = c.persister.FetchSections(ctx, userID)
	}

	c.mu.Lock()
	if c.userID != userID {
		// Superseded by a concurrent Load for another user.
		st := c.stateLocked()
		c.mu.Unlock()
		return st
	}
	// A failed fetch leaves the user unloaded so the next Load retries and edits cannot
	// overwrite the stored list with an empty one.
	c.loaded = userID != "" && err == nil
	if err != nil {
		c.loadErr = wrapKind(ErrLoad, err)
		c.sections = []model.Section{}
		c.log.Error("load sections", zap.String("user", userID), zap.Error(err))
	} else {
		c.sections = c.normalizeLocked(secs)
		c.log.Debug("loaded sections", zap.String("user", userID), zap.Int("count", len(c.sections)))
	}
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st
}

// normalizeLocked applies the portfolio -> projects rename, gives duplicate ids a fresh id and
// orders the list main card first. Sections whose area does not match their type are left
// where they are.
func (c *Controller) normalizeLocked(in []model.Section) []model.Section {
	out := make([]model.Section, 0, len(in))
	seen := map[string]bool{}
	for _, s := range in {
		if s.Type == legacyPortfolioType {
			s.Type = projectsType
		}
		if seen[s.ID] {
			old := s.ID
			s.ID = c.uniqueIDLocked(out)
			c.log.Warn("duplicate section id reassigned", zap.String("old", old), zap.String("new", s.ID))
		}
		seen[s.ID] = true
		out = append(out, s)
	}
	return partition(out)
}

func (c *Controller) uniqueIDLocked(xs []model.Section) string {
	for {
		id := c.newID()
		if id != "" && indexOfID(xs, id) < 0 {
			return id
		}
	}
}

func (c *Controller) newSectionLocked(sectionType string) model.Section {
	d := catalog.DefaultsFor(sectionType)
	area := model.AreaMain
	if catalog.IsSocialType(sectionType) {
		area = model.AreaSocialBar
	}
	return model.Section{
		ID:              c.uniqueIDLocked(c.sections),
		Type:            sectionType,
		Title:           d.Title,
		Value:           d.Value,
		Area:            area,
		EditorComponent: d.EditorComponent,
	}
}

// Add appends a new section of sectionType built from catalog defaults. Social types go to the
// social bar. The change is visible immediately; the save happens in the background.
func (c *Controller) Add(sectionType string) (model.Section, State, error) {
	sectionType = strings.TrimSpace(sectionType)
	if sectionType == "" {
		return model.Section{}, c.State(), ErrEmptyType
	}

	c.mu.Lock()
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return model.Section{}, st, err
	}
	sec := c.newSectionLocked(sectionType)
	c.sections = insertInArea(c.sections, sec, -1)
	c.enqueueLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.log.Debug("section added", zap.String("user", st.UserID), zap.String("type", sectionType), zap.String("id", sec.ID))
	c.notify(st)
	return sec.Clone(), st, nil
}

// Remove drops the section with id. Unknown ids are a no-op.
func (c *Controller) Remove(id string) State {
	c.mu.Lock()
	i := indexOfID(c.sections, strings.TrimSpace(id))
	if !c.loaded || i < 0 {
		st := c.stateLocked()
		c.mu.Unlock()
		return st
	}
	c.sections = removeAt(c.sections, i)
	c.enqueueLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st
}

// Reorder moves the section at from to position to in the combined list (card sections
// followed by social bar sections). Areas are not changed: a section moved past the boundary
// stays in its own area, at the nearest edge.
func (c *Controller) Reorder(from, to int) (State, error) {
	c.mu.Lock()
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return st, err
	}
	n := len(c.sections)
	if from < 0 || from >= n || to < 0 || to >= n {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, ErrIndexOutOfRange
	}
	if from == to {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, nil
	}
	c.sections = partition(moveIndex(c.sections, from, to))
	c.enqueueLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st, nil
}

// Move places section id at index within area. A negative or too-large index appends. Only
// social types may go to the social bar.
func (c *Controller) Move(id string, area model.Area, index int) (State, error) {
	area = area.Normalize()
	if area != model.AreaMain && area != model.AreaSocialBar {
		return c.State(), ErrInvalidDrag
	}

	c.mu.Lock()
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return st, err
	}
	i := indexOfID(c.sections, strings.TrimSpace(id))
	if i < 0 {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, ErrSectionNotFound
	}
	if area == model.AreaSocialBar && !catalog.IsSocialType(c.sections[i].Type) {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, ErrNotSocial
	}
	c.moveLocked(i, area, index)
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st, nil
}

func (c *Controller) moveLocked(i int, area model.Area, index int) {
	sec := c.sections[i]
	sec.Area = area
	c.sections = insertInArea(removeAt(c.sections, i), sec, index)
	c.enqueueLocked()
}

// Update edits the title and/or value of section id. The value must match the kind of the
// section's type; sections of unknown types accept any value.
func (c *Controller) Update(id string, p Patch) (State, error) {
	c.mu.Lock()
	if !c.loaded {
		st, err := c.stateLocked(), c.notLoadedErrLocked()
		c.mu.Unlock()
		return st, err
	}
	i := indexOfID(c.sections, strings.TrimSpace(id))
	if i < 0 {
		st := c.stateLocked()
		c.mu.Unlock()
		return st, ErrSectionNotFound
	}
	sec := c.sections[i]
	if p.Value != nil {
		want := model.KindForType(sec.Type)
		if want != model.KindUnknown && p.Value.Kind() != want {
			st := c.stateLocked()
			c.mu.Unlock()
			return st, ErrValueKind
		}
	}

	next := append([]model.Section(nil), c.sections...)
	if p.Title != nil {
		next[i].Title = *p.Title
	}
	if p.Value != nil {
		next[i].Value = p.Value
	}
	c.sections = next
	c.enqueueLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
	return st, nil
}

func (c *Controller) enqueueLocked() {
	c.seq++
	c.writer.Enqueue(writeJob{
		userID:   c.userID,
		sections: model.CloneSections(c.sections),
		seq:      c.seq,
	})
}

func (c *Controller) onWriteResult(userID string, seq uint64, err error) {
	if err != nil {
		c.log.Error("save sections", zap.String("user", userID), zap.Uint64("seq", seq), zap.Error(err))
	} else {
		c.log.Debug("saved sections", zap.String("user", userID), zap.Uint64("seq", seq))
	}

	c.mu.Lock()
	if userID != c.userID {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.saveErr = wrapKind(ErrSave, err)
		c.sendErr(c.saveErr)
	} else {
		c.saveErr = nil
	}
	st := c.stateLocked()
	c.mu.Unlock()

	c.notify(st)
}

// sendErr never blocks: when the channel is full the oldest error is dropped.
func (c *Controller) sendErr(err error) {
	select {
	case c.errCh <- err:
		return
	default:
	}
	select {
	case <-c.errCh:
	default:
	}
	select {
	case c.errCh <- err:
	default:
	}
}

func (c *Controller) notify(st State) {
	if c.onChange != nil {
		c.onChange(st)
	}
}

func (c *Controller) stateLocked() State {
	st := State{
		UserID:    c.userID,
		Card:      filterArea(c.sections, false),
		SocialBar: filterArea(c.sections, true),
		Saving:    c.writer.Pending(),
	}
	if c.dragging != nil {
		d := *c.dragging
		st.Dragging = &d
	}
	if err := c.errLocked(); err != nil {
		st.Err = err
		st.Error = err.Error()
	}
	return st
}

// notLoadedErrLocked is the error mutations return before a successful Load.
func (c *Controller) notLoadedErrLocked() error {
	if c.loadErr != nil {
		return c.loadErr
	}
	return ErrNoUser
}

func (c *Controller) errLocked() error {
	if c.saveErr != nil {
		return c.saveErr
	}
	return c.loadErr
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// CardSections returns a copy of the main card sections in order.
func (c *Controller) CardSections() []model.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterArea(c.sections, false)
}

// SocialBarSections returns a copy of the social bar sections in order.
func (c *Controller) SocialBarSections() []model.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filterArea(c.sections, true)
}

// Sections returns a copy of the full list.
func (c *Controller) Sections() []model.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return model.CloneSections(c.sections)
}

// PresentTypes lists the section types currently on the card, for catalog filtering.
func (c *Controller) PresentTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sectionTypes(c.sections)
}

func (c *Controller) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// Err returns the last recorded load or save failure.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errLocked()
}

// Errors delivers save failures as they happen.
func (c *Controller) Errors() <-chan error { return c.errCh }

// Flush blocks until every queued write has been attempted.
func (c *Controller) Flush(ctx context.Context) error {
	return c.writer.Flush(ctx)
}

// Close flushes queued writes and stops the write queue.
func (c *Controller) Close(ctx context.Context) error {
	return c.writer.Close(ctx)
}
