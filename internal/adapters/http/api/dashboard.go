package api

import (
	"net/http"
)

// dashboardHandler serves the browser panel host.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard requests. The page mounts one
// panel per pinned player, reports its width on resize and forwards
// pointer samples so tooltips follow the cursor.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}
