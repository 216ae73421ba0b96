package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"crimestats/internal/models"
)

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness.
type HealthHandler struct {
	templateFeatures int
	db               Pinger
}

// NewHealthHandler creates a new health handler. db may be nil.
func NewHealthHandler(templateFeatures int, db Pinger) *HealthHandler {
	return &HealthHandler{templateFeatures: templateFeatures, db: db}
}

// Healthz returns 200 while the process can serve, or 503 when the database
// is configured and unreachable.
func (h *HealthHandler) Healthz(c fiber.Ctx) error {
	resp := models.HealthResponse{Status: "ok", TemplateFeatures: h.templateFeatures}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
		}
	}
	return c.JSON(resp)
}
