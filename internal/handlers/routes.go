package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"watchshop/internal/middleware"
	"watchshop/internal/services"
)

// API bundles every HTTP handler of the store.
type API struct {
	Auth          *AuthHandler
	Catalog       *CatalogHandler
	CustomWatches *CustomWatchHandler
	Orders        *OrderHandler
}

// NewAPI creates the handlers for the given services.
func NewAPI(auth *services.AuthService, catalog *services.CatalogService, assembly *services.AssemblyService, orders *services.OrderService, logger *zap.Logger) API {
	return API{
		Auth:          NewAuthHandler(auth, logger),
		Catalog:       NewCatalogHandler(catalog, logger),
		CustomWatches: NewCustomWatchHandler(assembly, logger),
		Orders:        NewOrderHandler(orders, logger),
	}
}

// Register mounts the API under router. Authentication routes are public, every other route
// needs a valid token, and routes under /admin also need the admin role.
func (a API) Register(router fiber.Router, authService *services.AuthService, logger *zap.Logger) {
	// Public routes first: the protected group below applies to every later route under router.
	a.Auth.RegisterRoutes(router)

	protected := router.Group("", middleware.AuthRequired(authService, logger))
	admin := protected.Group("/admin", middleware.AdminOnly())

	a.Catalog.RegisterRoutes(protected, admin)
	a.CustomWatches.RegisterRoutes(protected)
	a.Orders.RegisterRoutes(protected, admin)
}
