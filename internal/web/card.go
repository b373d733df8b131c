package web

import (
	"net/http"

	"prysma/internal/render"

	"go.uber.org/zap"
)

// handleCardPage serves a read-only HTML preview of the card.
func (s *Server) handleCardPage(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	c, ok := s.controllerForRequest(w, r, userID)
	if !ok {
		return
	}
	title := userID
	if p, err := s.store.GetProfile(r.Context(), userID); err == nil && p.DisplayName != "" {
		title = p.DisplayName
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Page(w, title, userID, c.State()); err != nil {
		s.log.Warn("render card page", zap.String("user", userID), zap.Error(err))
	}
}
