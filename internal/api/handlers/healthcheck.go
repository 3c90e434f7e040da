package handlers

import (
	"context"
	"net/http"
)

// StorePinger reports whether the backing database is reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store StorePinger
}

func NewHealthHandler(store StorePinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles GET /healthcheck. Database reachability decides between a 200
// and a 503.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorEnvelope{
			Success: false,
			Code:    http.StatusServiceUnavailable,
			Message: "database unreachable",
		})
		return
	}

	writeData(w, http.StatusOK, map[string]any{
		"status":   "Server is up",
		"database": "Connected",
	}, "Health check passed.")
}
