package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"watchshop/internal/models"
	"watchshop/internal/services"
)

// CatalogHandler handles HTTP requests for watches and components.
type CatalogHandler struct {
	service *services.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers browsing routes on user and administration routes on admin.
func (h *CatalogHandler) RegisterRoutes(user, admin fiber.Router) {
	user.Get("/watches", h.HandleGetWatches)
	user.Get("/watches/:id", h.HandleGetWatchByID)
	user.Get("/components", h.HandleGetComponents)
	user.Get("/components/:id", h.HandleGetComponentByID)

	admin.Post("/watches", h.HandleCreateWatch)
	admin.Put("/watches/:id", h.HandleUpdateWatch)
	admin.Delete("/watches/:id", h.HandleDeleteWatch)
	admin.Post("/components", h.HandleCreateComponent)
	admin.Put("/components/:id", h.HandleUpdateComponent)
	admin.Delete("/components/:id", h.HandleDeleteComponent)
	admin.Get("/catalog/:kind/:id", h.HandleLookup)
}

// HandleGetWatches retrieves all watches.
func (h *CatalogHandler) HandleGetWatches(c *fiber.Ctx) error {
	watches, err := h.service.GetAllWatches(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve watches", err)
	}
	return c.JSON(watches)
}

// HandleGetWatchByID retrieves a single watch by its ID.
func (h *CatalogHandler) HandleGetWatchByID(c *fiber.Ctx) error {
	watch, err := h.service.GetWatchByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve watch", err)
	}
	return c.JSON(watch)
}

// HandleCreateWatch creates a new watch with its initial stock.
func (h *CatalogHandler) HandleCreateWatch(c *fiber.Ctx) error {
	var watch models.Watch
	if err := c.BodyParser(&watch); err != nil {
		return badRequestBody(c, err)
	}
	watch.ID = ""
	if err := h.service.CreateWatch(c.UserContext(), &watch); err != nil {
		return respondError(c, h.logger, "Could not create watch", err)
	}
	return c.Status(fiber.StatusCreated).JSON(watch)
}

// HandleUpdateWatch updates an existing watch. Stock in the body is ignored.
func (h *CatalogHandler) HandleUpdateWatch(c *fiber.Ctx) error {
	var watch models.Watch
	if err := c.BodyParser(&watch); err != nil {
		return badRequestBody(c, err)
	}
	watch.ID = c.Params("id")
	if err := h.service.UpdateWatch(c.UserContext(), &watch); err != nil {
		return respondError(c, h.logger, "Could not update watch", err)
	}
	updated, err := h.service.GetWatchByID(c.UserContext(), watch.ID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve watch", err)
	}
	return c.JSON(updated)
}

// HandleDeleteWatch deletes a watch by its ID.
func (h *CatalogHandler) HandleDeleteWatch(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteWatch(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "Could not delete watch", err)
	}
	return c.JSON(fiber.Map{
		"message": "Watch " + id + " deleted successfully",
	})
}

// HandleGetComponents retrieves all components.
func (h *CatalogHandler) HandleGetComponents(c *fiber.Ctx) error {
	components, err := h.service.GetAllComponents(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve components", err)
	}
	return c.JSON(components)
}

// HandleGetComponentByID retrieves a single component by its ID.
func (h *CatalogHandler) HandleGetComponentByID(c *fiber.Ctx) error {
	component, err := h.service.GetComponentByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve component", err)
	}
	return c.JSON(component)
}

// HandleCreateComponent creates a new component with its initial stock.
func (h *CatalogHandler) HandleCreateComponent(c *fiber.Ctx) error {
	var component models.Component
	if err := c.BodyParser(&component); err != nil {
		return badRequestBody(c, err)
	}
	component.ID = ""
	if err := h.service.CreateComponent(c.UserContext(), &component); err != nil {
		return respondError(c, h.logger, "Could not create component", err)
	}
	return c.Status(fiber.StatusCreated).JSON(component)
}

// HandleUpdateComponent updates an existing component. Stock in the body is ignored.
func (h *CatalogHandler) HandleUpdateComponent(c *fiber.Ctx) error {
	var component models.Component
	if err := c.BodyParser(&component); err != nil {
		return badRequestBody(c, err)
	}
	component.ID = c.Params("id")
	if err := h.service.UpdateComponent(c.UserContext(), &component); err != nil {
		return respondError(c, h.logger, "Could not update component", err)
	}
	updated, err := h.service.GetComponentByID(c.UserContext(), component.ID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve component", err)
	}
	return c.JSON(updated)
}

// HandleDeleteComponent deletes a component by its ID.
func (h *CatalogHandler) HandleDeleteComponent(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteComponent(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "Could not delete component", err)
	}
	return c.JSON(fiber.Map{
		"message": "Component " + id + " deleted successfully",
	})
}

// HandleLookup returns the current price and stock of a watch, component or custom watch.
func (h *CatalogHandler) HandleLookup(c *fiber.Ctx) error {
	ref := models.ProductRef{Kind: models.ProductKind(c.Params("kind")), ID: c.Params("id")}
	snapshot, err := h.service.Lookup(c.UserContext(), ref)
	if err != nil {
		return respondError(c, h.logger, "Could not look up catalog entry", err)
	}
	return c.JSON(snapshot)
}
