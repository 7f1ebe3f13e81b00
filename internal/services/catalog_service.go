package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// CatalogService handles administration and browsing of watches and components.
// It never changes stock: initial stock is taken at creation and updates keep the stored value.
type CatalogService struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store repositories.Store, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		store:  store,
		logger: logger,
	}
}

// GetAllWatches retrieves all watches.
func (s *CatalogService) GetAllWatches(ctx context.Context) ([]models.Watch, error) {
	return s.store.Repos(ctx).Watches.GetAll()
}

// GetWatchByID retrieves a single watch by its ID.
func (s *CatalogService) GetWatchByID(ctx context.Context, id string) (*models.Watch, error) {
	return NewCatalogLookup(s.store.Repos(ctx)).Watch(id)
}

// CreateWatch validates and stores a new watch.
func (s *CatalogService) CreateWatch(ctx context.Context, watch *models.Watch) error {
	watch.Name = strings.TrimSpace(watch.Name)
	watch.Reference = strings.TrimSpace(watch.Reference)
	if err := Validate(watch); err != nil {
		return err
	}
	if err := s.store.Repos(ctx).Watches.Create(watch); err != nil {
		return err
	}
	s.logger.Info("watch created", zap.String("watch_id", watch.ID), zap.String("reference", watch.Reference))
	return nil
}

// UpdateWatch validates and stores the editable fields of a watch.
func (s *CatalogService) UpdateWatch(ctx context.Context, watch *models.Watch) error {
	watch.Name = strings.TrimSpace(watch.Name)
	watch.Reference = strings.TrimSpace(watch.Reference)
	if err := Validate(watch); err != nil {
		return err
	}
	if err := s.store.Repos(ctx).Watches.Update(watch); err != nil {
		return lookupError(err, "watch", watch.ID)
	}
	return nil
}

// DeleteWatch deletes a watch by its ID.
func (s *CatalogService) DeleteWatch(ctx context.Context, id string) error {
	if err := s.store.Repos(ctx).Watches.Delete(id); err != nil {
		return lookupError(err, "watch", id)
	}
	s.logger.Info("watch deleted", zap.String("watch_id", id))
	return nil
}

// GetAllComponents retrieves all components.
func (s *CatalogService) GetAllComponents(ctx context.Context) ([]models.Component, error) {
	return s.store.Repos(ctx).Components.GetAll()
}

// GetComponentByID retrieves a single component by its ID.
func (s *CatalogService) GetComponentByID(ctx context.Context, id string) (*models.Component, error) {
	return NewCatalogLookup(s.store.Repos(ctx)).Component(id)
}

// CreateComponent validates and stores a new component.
func (s *CatalogService) CreateComponent(ctx context.Context, component *models.Component) error {
	component.Name = strings.TrimSpace(component.Name)
	if err := Validate(component); err != nil {
		return err
	}
	if err := s.store.Repos(ctx).Components.Create(component); err != nil {
		return err
	}
	s.logger.Info("component created", zap.String("component_id", component.ID), zap.String("type", string(component.Type)))
	return nil
}

// UpdateComponent validates and stores the editable fields of a component. Custom watches
// already assembled keep the total price they were created with.
func (s *CatalogService) UpdateComponent(ctx context.Context, component *models.Component) error {
	component.Name = strings.TrimSpace(component.Name)
	if err := Validate(component); err != nil {
		return err
	}
	if err := s.store.Repos(ctx).Components.Update(component); err != nil {
		return lookupError(err, "component", component.ID)
	}
	return nil
}

// DeleteComponent deletes a component by its ID.
func (s *CatalogService) DeleteComponent(ctx context.Context, id string) error {
	if err := s.store.Repos(ctx).Components.Delete(id); err != nil {
		return lookupError(err, "component", id)
	}
	return nil
}

// Lookup returns the current price and stock behind ref.
func (s *CatalogService) Lookup(ctx context.Context, ref models.ProductRef) (*StockSnapshot, error) {
	return NewCatalogLookup(s.store.Repos(ctx)).Snapshot(ref)
}
