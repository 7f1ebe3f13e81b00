package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"watchshop/internal/middleware"
	"watchshop/internal/services"
)

// IdempotencyKeyHeader carries the client key that makes order submission safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	logger  *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the caller's order routes on user and the order management routes on admin.
func (h *OrderHandler) RegisterRoutes(user, admin fiber.Router) {
	orderRoutes := user.Group("/orders")
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/", h.HandleGetOwnOrders)
	orderRoutes.Get("/:id", h.HandleGetOwnOrder)

	adminRoutes := admin.Group("/orders")
	adminRoutes.Get("/", h.HandleGetOrders)
	adminRoutes.Get("/:id", h.HandleGetOrderByID)
	adminRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places an order for the caller.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}

	identity := middleware.CurrentIdentity(c)
	order, replayed, err := h.service.PlaceOrder(c.UserContext(), identity.UserID, c.Get(IdempotencyKeyHeader), req)
	if err != nil {
		return respondError(c, h.logger, "Could not create order", err)
	}
	if replayed {
		return c.Status(fiber.StatusOK).JSON(order)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOwnOrders lists the caller's orders.
func (h *OrderHandler) HandleGetOwnOrders(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	orders, err := h.service.ListOrdersForUser(c.UserContext(), identity.UserID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOwnOrder retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOwnOrder(c *fiber.Ctx) error {
	identity := middleware.CurrentIdentity(c)
	order, err := h.service.GetOrderForUser(c.UserContext(), identity.UserID, c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetOrderByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve order", err)
	}
	return c.JSON(order)
}

// UpdateStatusRequest represents the request body for a status change.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequestBody(c, err)
	}

	order, err := h.service.SetStatus(c.UserContext(), c.Params("id"), req.Status)
	if err != nil {
		return respondError(c, h.logger, "Could not update order status", err)
	}
	return c.JSON(order)
}
