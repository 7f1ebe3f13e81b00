package repositories

import (
	"context"

	"watchshop/internal/models"
)

// WatchRepository defines the interface for watch data access.
type WatchRepository interface {
	GetAll() ([]models.Watch, error)
	GetByID(id string) (*models.Watch, error)
	Create(watch *models.Watch) error
	// Update writes every editable column except stock.
	Update(watch *models.Watch) error
	Delete(id string) error
}

// ComponentRepository defines the interface for component data access.
type ComponentRepository interface {
	GetAll() ([]models.Component, error)
	GetByID(id string) (*models.Component, error)
	// GetByIDs returns the components that exist, in the order of ids.
	GetByIDs(ids []string) ([]models.Component, error)
	Create(component *models.Component) error
	// Update writes every editable column except stock.
	Update(component *models.Component) error
	Delete(id string) error
}

// CustomWatchRepository defines the interface for custom watch data access.
// Custom watches are never updated or deleted once created.
type CustomWatchRepository interface {
	Create(customWatch *models.CustomWatch) error
	GetByID(id string) (*models.CustomWatch, error)
	// GetByIDForOwner returns ErrNotFound both for unknown ids and for watches owned by someone else.
	GetByIDForOwner(id, userID string) (*models.CustomWatch, error)
	ListByOwner(userID string) ([]models.CustomWatch, error)
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	// Create persists the order row and all of its items.
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
}

// InventoryRepository mutates stock counters of watches and components.
type InventoryRepository interface {
	// DecrementStock subtracts quantity only if the counter stays non-negative,
	// otherwise it returns ErrInsufficientStock and leaves the counter untouched.
	DecrementStock(ref models.ProductRef, quantity int) error
	IncrementStock(ref models.ProductRef, quantity int) error
}

// Repositories bundles the repositories that share one unit of work.
type Repositories struct {
	Watches       WatchRepository
	Components    ComponentRepository
	CustomWatches CustomWatchRepository
	Orders        OrderRepository
	Inventory     InventoryRepository
}

// Store hands out repositories, either standalone or bound to a transaction.
type Store interface {
	// Repos returns repositories outside of any transaction, for plain reads and admin edits.
	Repos(ctx context.Context) Repositories
	// Atomic runs fn in a single transaction. Reads made through the repositories passed to fn
	// lock the rows they return until the transaction ends. If fn returns an error nothing
	// written through those repositories is kept.
	Atomic(ctx context.Context, fn func(repos Repositories) error) error
}
