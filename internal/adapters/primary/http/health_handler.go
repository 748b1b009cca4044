package http

import (
	"context"
	"net/http"
	"time"
)

// Pinger is the subset of the database pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and database health.
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	WriteJSON(w, code, map[string]string{"status": status})
}

// Live handles GET /health/live; the process answering is the check.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready; ready means the database is reachable.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}
