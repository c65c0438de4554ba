package handlers

import (
	"context"
	"net/http"
	"time"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type HealthHandler struct {
	started time.Time
	checks  map[string]Check
}

func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{started: time.Now(), checks: checks}
}

// HealthResponse represents the health check result
type HealthResponse struct {
	Status    string            `json:"status" example:"OK"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    float64           `json:"uptime" example:"12.5"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health pings every dependency
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.started).Seconds(),
		Checks:    make(map[string]string, len(h.checks)),
	}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = "down"
			resp.Status = "DEGRADED"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}
	writeJSON(w, status, resp)
}

// Root describes the service
// @Summary Service info
// @Tags System
// @Produce json
// @Success 200 {object} map[string]any
// @Router / [get]
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Support Platform API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": []string{
			"/api/v1/users", "/api/v1/posts", "/api/v1/support", "/api/v1/payment", "/api/v1/ai",
		},
	})
}
