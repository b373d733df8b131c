package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"prysma/internal/catalog"
	"prysma/internal/config"
	"prysma/internal/layout"
	"prysma/internal/model"
	"prysma/internal/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	errUnauthorized = errors.New("missing or invalid session token")
	errForbidden    = errors.New("token does not grant access to this user")
	errBadBody      = errors.New("invalid request body")
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	exclude := strings.TrimSpace(r.URL.Query().Get("exclude"))
	if exclude == "" {
		writeJSON(w, http.StatusOK, map[string]any{"groups": catalog.ListByCategory()})
		return
	}
	c, ok := s.controllerForRequest(w, r, exclude)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": catalog.Available(c.PresentTypes())})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.State())
}

type addSectionRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleSectionAdd(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	var req addSectionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	sec, st, err := c.Add(req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"section": sec, "state": st})
}

type editSectionRequest struct {
	Title *string         `json:"title"`
	Value json.RawMessage `json:"value"`
}

func (s *Server) handleSectionEdit(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	var req editSectionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id := r.PathValue("sectionId")
	sec, found := findSection(c.Sections(), id)
	if !found {
		s.writeError(w, layout.ErrSectionNotFound)
		return
	}

	patch := layout.Patch{Title: req.Title}
	if len(req.Value) > 0 {
		v, err := model.DecodeValue(model.KindForType(sec.Type), req.Value)
		if err != nil {
			s.writeError(w, errors.Wrap(errBadBody, err.Error()))
			return
		}
		patch.Value = v
	}
	st, err := c.Update(id, patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleSectionRemove(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Remove(r.PathValue("sectionId")))
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

func (s *Server) handleReorder(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	var req reorderRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.From == nil || req.To == nil {
		s.writeError(w, errors.Wrap(errBadBody, "from and to are required"))
		return
	}
	st, err := c.Reorder(*req.From, *req.To)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	var ev layout.DragEvent
	if err := decodeBody(r, &ev); err != nil {
		s.writeError(w, err)
		return
	}
	st, err := c.DragStart(ev)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":        st,
		"validTargets": validTargetsFor(c, ev),
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	c, ok := s.controllerForRequest(w, r, r.PathValue("userId"))
	if !ok {
		return
	}
	var ev layout.DragEvent
	if err := decodeBody(r, &ev); err != nil {
		s.writeError(w, err)
		return
	}
	res, st, err := c.DragEnd(ev)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": res, "state": st})
}

func validTargetsFor(c *layout.Controller, ev layout.DragEvent) []model.Area {
	typ := strings.TrimSpace(ev.CatalogType)
	if typ == "" {
		if sec, ok := findSection(c.Sections(), ev.SectionID); ok {
			typ = sec.Type
		}
	}
	return layout.ValidTargets(typ)
}

func findSection(xs []model.Section, id string) (model.Section, bool) {
	id = strings.TrimSpace(id)
	for _, s := range xs {
		if s.ID == id {
			return s, true
		}
	}
	return model.Section{}, false
}

// controllerForRequest authorizes the caller for userID, checks the profile exists and returns the
// user's loaded controller. On failure it writes the error response and returns false.
func (s *Server) controllerForRequest(w http.ResponseWriter, r *http.Request, userID string) (*layout.Controller, bool) {
	userID = strings.TrimSpace(userID)
	if err := s.authorize(r, userID); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	if _, err := s.store.GetProfile(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return nil, false
	}
	c, err := s.controllerFor(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return c, true
}

func (s *Server) authorize(r *http.Request, userID string) error {
	if s.cfg.AuthMode != config.AuthToken {
		return nil
	}
	tok := tokenFromRequest(r)
	if tok == "" {
		return errUnauthorized
	}
	claims, err := VerifyToken(s.cfg.SessionSecret, tok)
	if err != nil {
		return errors.Wrap(errUnauthorized, err.Error())
	}
	if claims.UserID != userID {
		return errForbidden
	}
	return nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errBadBody, err.Error())
	}
	return nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, store.ErrNotFound), errors.Is(err, layout.ErrSectionNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadBody),
		errors.Is(err, layout.ErrEmptyType),
		errors.Is(err, layout.ErrIndexOutOfRange),
		errors.Is(err, layout.ErrValueKind),
		errors.Is(err, layout.ErrInvalidDrag),
		errors.Is(err, layout.ErrNotSocial),
		errors.Is(err, layout.ErrNoUser):
		return http.StatusBadRequest
	case errors.Is(err, ErrClosed), errors.Is(err, layout.ErrLoad):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
