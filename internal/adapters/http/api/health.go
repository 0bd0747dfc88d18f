package api

import (
	"net/http"
)

// HealthHandler reports whether the card service is dispatching events.
type HealthHandler struct {
	statsProvider StatsProvider
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(statsProvider StatsProvider) *HealthHandler {
	return &HealthHandler{statsProvider: statsProvider}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth handles GET /healthz. A stopped service answers 503.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	if started, _ := h.statsProvider.GetStats()["started"].(bool); !started {
		writeError(w, http.StatusServiceUnavailable, "not_running", ErrNotRunning)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
