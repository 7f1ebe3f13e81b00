package services

import (
	"errors"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// InventoryLedger is the only writer of stock counters. It is always bound to the
// repositories of a unit of work opened by AssemblyService or OrderService.
type InventoryLedger struct {
	inventory repositories.InventoryRepository
	catalog   *CatalogLookup
}

// NewInventoryLedger creates an InventoryLedger writing through repos.Inventory.
func NewInventoryLedger(repos repositories.Repositories) *InventoryLedger {
	return &InventoryLedger{
		inventory: repos.Inventory,
		catalog:   NewCatalogLookup(repos),
	}
}

// DecrementStock takes quantity units of ref out of stock. The decrement is conditional in the
// store, so two callers racing for the last unit cannot both succeed.
func (l *InventoryLedger) DecrementStock(ref models.ProductRef, quantity int) error {
	if quantity <= 0 {
		return invalidField("quantity", "must be greater than 0")
	}
	err := l.inventory.DecrementStock(ref, quantity)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrInsufficientStock):
		snap, lookupErr := l.catalog.Snapshot(ref)
		if lookupErr != nil {
			return lookupErr
		}
		return &InsufficientStockError{ProductID: ref.ID, Name: snap.Name, Requested: quantity, Available: *snap.Stock}
	case errors.Is(err, repositories.ErrNotFound):
		return &NotFoundError{Resource: string(ref.Kind), ID: ref.ID}
	}
	return err
}

// IncrementStock puts quantity units of ref back into stock.
func (l *InventoryLedger) IncrementStock(ref models.ProductRef, quantity int) error {
	if quantity <= 0 {
		return invalidField("quantity", "must be greater than 0")
	}
	if err := l.inventory.IncrementStock(ref, quantity); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return &NotFoundError{Resource: string(ref.Kind), ID: ref.ID}
		}
		return err
	}
	return nil
}
