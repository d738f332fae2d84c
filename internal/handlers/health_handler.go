package handlers

import (
	"time"

	"productsapi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports liveness and database readiness.
type HealthHandler struct {
	ready func() bool
}

// NewHealthHandler creates a HealthHandler. ready reports whether the
// database bootstrap succeeded.
func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

// RegisterRoutes registers /health and /ready.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
	router.Get("/ready", h.HandleReady)
}

// HandleHealth always answers 200 while the process is serving.
// @Summary Liveness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	database := "connected"
	if !h.ready() {
		database = "disconnected"
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Format(time.RFC3339),
		"database": database,
	})
}

// HandleReady answers 503 until the database bootstrap has succeeded.
// @Summary Readiness
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} models.ErrorResponse
// @Router /ready [get]
func (h *HealthHandler) HandleReady(c *fiber.Ctx) error {
	if !h.ready() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{Error: "database unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// HandleAPI is the demo endpoint mounted in test mode.
// @Summary Demo endpoint
// @Tags Health
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /api [get]
func HandleAPI(c *fiber.Ctx) error {
	return c.JSON(models.MessageResponse{Msg: "Desde API"})
}
