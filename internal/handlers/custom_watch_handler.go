package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"watchshop/internal/middleware"
	"watchshop/internal/services"
)

// CustomWatchHandler handles HTTP requests for custom watches.
type CustomWatchHandler struct {
	service *services.AssemblyService
	logger  *zap.Logger
}

// NewCustomWatchHandler creates a new CustomWatchHandler.
func NewCustomWatchHandler(service *services.AssemblyService, logger *zap.Logger) *CustomWatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomWatchHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the custom watch routes.
func (h *CustomWatchHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/custom-watches")
	routes.Post("/", h.HandleAssemble)
	routes.Get("/", h.HandleListOwn)
}

// HandleAssemble assembles a custom watch for the caller.
func (h *CustomWatchHandler) HandleAssemble(c *fiber.Ctx) error {
	var req services.AssembleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}
	identity := middleware.CurrentIdentity(c)
	customWatch, err := h.service.Assemble(c.UserContext(), identity.UserID, req)
	if err != nil {
		return respondError(c, h.logger, "Could not assemble custom watch", err)
	}
	return c.Status(fiber.StatusCreated).JSON(customWatch)
}

// HandleListOwn lists the custom watches assembled by the caller.
func (h *CustomWatchHandler) HandleListOwn(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	customWatches, err := h.service.ListOwn(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve custom watches", err)
	}
	return c.JSON(customWatches)
}
