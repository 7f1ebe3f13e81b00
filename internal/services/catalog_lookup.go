package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// StockSnapshot is the price and stock of a catalog entry at the moment it was read.
// Stock is nil for custom watches, which have no counter of their own.
type StockSnapshot struct {
	Kind  models.ProductKind `json:"kind"`
	ID    string             `json:"id"`
	Name  string             `json:"name"`
	Price decimal.Decimal    `json:"price"`
	Stock *int               `json:"stock,omitempty"`
}

// CatalogLookup resolves references to their current catalog rows.
// Bound to the repositories of a unit of work, its reads see (and lock) the same rows the
// unit of work later mutates.
type CatalogLookup struct {
	repos repositories.Repositories
}

// NewCatalogLookup creates a CatalogLookup reading through repos.
func NewCatalogLookup(repos repositories.Repositories) *CatalogLookup {
	return &CatalogLookup{repos: repos}
}

func lookupError(err error, resource, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return err
}

// Watch resolves a watch id.
func (c *CatalogLookup) Watch(id string) (*models.Watch, error) {
	watch, err := c.repos.Watches.GetByID(id)
	if err != nil {
		return nil, lookupError(err, "watch", id)
	}
	return watch, nil
}

// Component resolves a component id.
func (c *CatalogLookup) Component(id string) (*models.Component, error) {
	component, err := c.repos.Components.GetByID(id)
	if err != nil {
		return nil, lookupError(err, "component", id)
	}
	return component, nil
}

// Components resolves every id, in order. Ids that do not resolve are reported together
// in an UnknownComponentsError.
func (c *CatalogLookup) Components(ids []string) ([]models.Component, error) {
	components, err := c.repos.Components.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(components) == len(ids) {
		return components, nil
	}
	found := make(map[string]bool, len(components))
	for _, comp := range components {
		found[comp.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return nil, &UnknownComponentsError{IDs: missing}
}

// CustomWatch resolves a custom watch id among the watches owned by ownerID.
// Someone else's custom watch is reported exactly like an unknown id.
func (c *CatalogLookup) CustomWatch(id, ownerID string) (*models.CustomWatch, error) {
	customWatch, err := c.repos.CustomWatches.GetByIDForOwner(id, ownerID)
	if err != nil {
		return nil, lookupError(err, "custom watch", id)
	}
	return customWatch, nil
}

// Snapshot returns the current price and stock behind ref.
func (c *CatalogLookup) Snapshot(ref models.ProductRef) (*StockSnapshot, error) {
	snap := &StockSnapshot{Kind: ref.Kind, ID: ref.ID}
	switch ref.Kind {
	case models.KindWatch:
		w, err := c.Watch(ref.ID)
		if err != nil {
			return nil, err
		}
		stock := w.Stock
		snap.Name, snap.Price, snap.Stock = w.Name, w.Price, &stock
	case models.KindComponent:
		comp, err := c.Component(ref.ID)
		if err != nil {
			return nil, err
		}
		stock := comp.Stock
		snap.Name, snap.Price, snap.Stock = comp.Name, comp.Price, &stock
	case models.KindCustomWatch:
		cw, err := c.repos.CustomWatches.GetByID(ref.ID)
		if err != nil {
			return nil, lookupError(err, "custom watch", ref.ID)
		}
		snap.Name, snap.Price = cw.Name, cw.TotalPrice
	default:
		return nil, invalidField("kind", fmt.Sprintf("unknown product kind %q", ref.Kind))
	}
	return snap, nil
}
