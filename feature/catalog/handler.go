package catalog

import (
	"errors"

	"dat-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for catalog jobs.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/catalog")
	group.Post("/process", h.HandleProcess)
	group.Get("/health", h.HandleHealth)
}

// HandleProcess runs a catalog job.
// @Summary Process Catalog
// @Description Load DAT documents from storage, merge, filter and write the processed catalog.
// @Tags catalog
// @Accept json
// @Produce json
// @Param request body Request true "Processing options"
// @Success 200 {object} Report "Processing report"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "No inputs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /catalog/process [post]
func (h *Handler) HandleProcess(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	var req Request
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	report, err := h.service.Process(c.Context(), req)
	if err != nil {
		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, ErrInvalidRequest), errors.Is(err, ErrNoDatabase):
			status = fiber.StatusBadRequest
		case errors.Is(err, ErrNoInputs):
			status = fiber.StatusNotFound
		}
		l.Error("Catalog processing failed", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}

// HandleHealth checks storage connectivity.
// @Summary Catalog Health
// @Description Check that the catalog storage bucket is reachable.
// @Tags catalog
// @Produce json
// @Success 200 {object} map[string]string "OK"
// @Failure 503 {object} map[string]string "Service Unavailable"
// @Router /catalog/health [get]
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	if err := h.service.Health(c.Context()); err != nil {
		logger.WithRayID(h.service.logger, c).Warn("Catalog health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
