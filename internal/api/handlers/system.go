package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/wonny/muhtasib/backend/pkg/database"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// HealthChecker reports database health. *database.DB satisfies it.
type HealthChecker interface {
	HealthCheck(ctx context.Context) (*database.HealthStatus, error)
}

// SystemHandler serves service-level endpoints
type SystemHandler struct {
	db      HealthChecker
	env     string
	started time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db HealthChecker, env string) *SystemHandler {
	return &SystemHandler{db: db, env: env, started: time.Now()}
}

// Health reports service and database health
// GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status, err := h.db.HealthCheck(ctx)
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "degraded",
			"service":  "muhtasib",
			"database": status,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  "muhtasib",
		"database": status,
	})
}

// Info describes the running service
// GET /info
func (h *SystemHandler) Info(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "muhtasib",
		"version": Version,
		"env":     h.env,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}
