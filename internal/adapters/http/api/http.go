// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/rally/internal/adapters/mount"
	"github.com/okian/rally/internal/adapters/repository"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/domain/tooltip"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	PlayerDependencies
	PanelDependencies
}

// PlayerDependencies covers roster reads and stateless renders.
type PlayerDependencies interface {
	Players(ctx context.Context) ([]repository.Player, error)
	PlayerData(ctx context.Context, name string) (service.PlayerData, error)
	RenderChart(ctx context.Context, req service.RenderRequest) ([]byte, string, error)
}

// PanelDependencies covers the mounted panels.
type PanelDependencies interface {
	Panels() []service.PanelInfo
	Panel(id string) (service.PanelInfo, error)
	AddPanel(ctx context.Context, player string) (service.PanelInfo, error)
	RemovePanel(ctx context.Context, id string) error
	SelectPlayer(ctx context.Context, id, player string) (service.PanelInfo, error)
	ResizePanel(ctx context.Context, id string, width float64) error
	PanelChart(ctx context.Context, id, kind string) (service.ChartOutput, error)
	Pointer(ctx context.Context, id, kind string, p mount.Pointer) (tooltip.Event, tooltip.State, error)
}

// Server wires HTTP routes for the chart API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	playersHandler   *PlayersHandler
	panelsHandler    *PanelsHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		playersHandler:   NewPlayersHandler(deps),
		panelsHandler:    NewPanelsHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
	mux.HandleFunc("GET /players/{id}/charts/{kind}", MetricsMiddleware(s.playersHandler.HandleChart, "player_chart"))

	mux.HandleFunc("GET /panels", MetricsMiddleware(s.panelsHandler.HandleList, "panels"))
	mux.HandleFunc("POST /panels", MetricsMiddleware(s.panelsHandler.HandleAdd, "panels"))
	mux.HandleFunc("GET /panels/{id}", MetricsMiddleware(s.panelsHandler.HandleGet, "panel"))
	mux.HandleFunc("PUT /panels/{id}", MetricsMiddleware(s.panelsHandler.HandleSelect, "panel"))
	mux.HandleFunc("DELETE /panels/{id}", MetricsMiddleware(s.panelsHandler.HandleRemove, "panel"))
	mux.HandleFunc("POST /panels/{id}/resize", MetricsMiddleware(s.panelsHandler.HandleResize, "panel_resize"))
	mux.HandleFunc("GET /panels/{id}/charts/{kind}", MetricsMiddleware(s.panelsHandler.HandleChart, "panel_chart"))
	mux.HandleFunc("POST /panels/{id}/charts/{kind}/pointer", MetricsMiddleware(s.panelsHandler.HandlePointer, "panel_pointer"))
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates service sentinels to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrPanelNotFound),
		errors.Is(err, service.ErrUnknownChart):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrInvalidWidth),
		errors.Is(err, service.ErrInvalidFormat),
		errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, service.ErrPanelLimit),
		errors.Is(err, service.ErrPanelPinned),
		errors.Is(err, mount.ErrUnmounted):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}
