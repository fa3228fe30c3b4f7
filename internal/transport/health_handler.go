package transport

import (
	"context"
	"net/http"

	"santafe-store/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HealthChecker reports the state of a backing service
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// HealthHandler reports database availability
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.Health)
}

// Health answers 200 when the database is reachable and 503 otherwise
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.db.Health(r.Context())

	if stats["status"] != "up" {
		middleware.RespondWithJSON(w, http.StatusServiceUnavailable, middleware.Response{
			Success: false,
			Data:    map[string]interface{}{"database": stats},
			Message: "database unavailable",
		})
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{"database": stats})
}
