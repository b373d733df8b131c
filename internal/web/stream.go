package web

import (
	"net/http"
	"time"

	"prysma/internal/layout"
	"prysma/internal/model"

	"github.com/starfederation/datastar-go/datastar"
)

// layoutSignals is the datastar signal set pushed to layout editors.
type layoutSignals struct {
	Card      []model.Section   `json:"card"`
	SocialBar []model.Section   `json:"socialBar"`
	Dragging  *layout.DragEvent `json:"dragging"`
	Saving    bool              `json:"saving"`
	Error     string            `json:"error"`
}

func signalsFor(st layout.State) layoutSignals {
	return layoutSignals{
		Card:      st.Card,
		SocialBar: st.SocialBar,
		Dragging:  st.Dragging,
		Saving:    st.Saving,
		Error:     st.Error,
	}
}

// handleLayoutStream sends the current layout as datastar signals, then a fresh snapshot after
// every mutation or write result until the client goes away.
func (s *Server) handleLayoutStream(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	c, ok := s.controllerForRequest(w, r, userID)
	if !ok {
		return
	}

	ch, cancel := s.hubs.hubFor(userID).subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)
	_ = sse.MarshalAndPatchSignals(signalsFor(c.State()))

	keepAlive := time.NewTicker(s.cfg.KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			if err := sse.MarshalAndPatchSignals(signalsFor(c.State())); err != nil {
				return
			}
		}
	}
}
