package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	service "github.com/okian/rally/internal/app"
)

// PlayersHandler serves the roster and stateless chart renders.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleList handles GET /players requests.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.Players(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleGet handles GET /players/{id} requests.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	data, err := h.deps.PlayerData(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// HandleChart handles GET /players/{id}/charts/{kind}?width=&format=&at=
// requests. at is a millisecond offset into the animation.
func (h *PlayersHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	req, err := renderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	body, contentType, err := h.deps.RenderChart(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func renderRequest(r *http.Request) (service.RenderRequest, error) {
	q := r.URL.Query()
	req := service.RenderRequest{
		Player: r.PathValue("id"),
		Kind:   r.PathValue("kind"),
		Format: q.Get("format"),
	}
	if v := q.Get("width"); v != "" {
		width, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: width %q", ErrBadRequest, v)
		}
		req.Width = width
	}
	if v := q.Get("at"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms < 0 {
			return req, fmt.Errorf("%w: at %q", ErrBadRequest, v)
		}
		req.At = time.Duration(ms) * time.Millisecond
	}
	return req, nil
}
