package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/boardgen-api/internal/api/shared"
)

// HealthHandler serves GET /health, reporting database connectivity.
type HealthHandler struct {
	pingDB func(ctx context.Context) error
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler. pingDB checks database
// reachability and may be nil when no database is configured.
func NewHealthHandler(pingDB func(ctx context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		pingDB: pingDB,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if h.pingDB != nil {
		if err := h.pingDB(r.Context()); err != nil {
			h.logger.Error("database ping failed", "error", err)
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		}
	}

	shared.RespondWithJSON(w, r, status, resp)
}
