package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/rally/internal/adapters/mount"
	"github.com/okian/rally/internal/domain/tooltip"
)

// PanelsHandler serves the mounted player panels.
type PanelsHandler struct {
	deps PanelDependencies
}

// NewPanelsHandler creates a new panels handler.
func NewPanelsHandler(deps PanelDependencies) *PanelsHandler {
	return &PanelsHandler{deps: deps}
}

type playerRequest struct {
	Player string `json:"player"`
}

type resizeRequest struct {
	Width *float64 `json:"width"`
}

type pointerRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Inside bool    `json:"inside"`
}

type pointerResponse struct {
	Event   tooltip.Event `json:"event"`
	Tooltip tooltip.State `json:"tooltip"`
}

// HandleList handles GET /panels requests.
func (h *PanelsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Panels())
}

// HandleAdd handles POST /panels requests. An empty player lets the
// service pick one.
func (h *PanelsHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	p, err := h.deps.AddPanel(r.Context(), req.Player)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /panels/{id} requests.
func (h *PanelsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.deps.Panel(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleSelect handles PUT /panels/{id} requests.
func (h *PanelsHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Player == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing player", ErrBadRequest))
		return
	}
	p, err := h.deps.SelectPlayer(r.Context(), r.PathValue("id"), req.Player)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRemove handles DELETE /panels/{id} requests.
func (h *PanelsHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.RemovePanel(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResize handles POST /panels/{id}/resize requests. Charts redraw
// asynchronously, so the request is only acknowledged.
func (h *PanelsHandler) HandleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Width == nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing width", ErrBadRequest))
		return
	}
	if err := h.deps.ResizePanel(r.Context(), r.PathValue("id"), *req.Width); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandleChart handles GET /panels/{id}/charts/{kind} requests with the
// latest committed SVG.
func (h *PanelsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	out, err := h.deps.PanelChart(r.Context(), r.PathValue("id"), r.PathValue("kind"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("X-Render-Passes", strconv.Itoa(out.Passes))
	w.Header().Set("X-Commit-Version", strconv.Itoa(out.Version))
	w.Header().Set("Cache-Control", "no-store")
	if out.Version == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out.Document)
}

// HandlePointer handles POST /panels/{id}/charts/{kind}/pointer requests.
func (h *PanelsHandler) HandlePointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	ev, state, err := h.deps.Pointer(r.Context(), r.PathValue("id"), r.PathValue("kind"),
		mount.Pointer{X: req.X, Y: req.Y, Inside: req.Inside})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pointerResponse{Event: ev, Tooltip: state})
}
