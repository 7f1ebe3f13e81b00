package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// AssembleRequest is the input for assembling a custom watch.
type AssembleRequest struct {
	Name         string   `json:"name" validate:"required,max=100"`
	ComponentIDs []string `json:"component_ids" validate:"required,min=1,dive,required"`
}

// AssemblyService turns a set of components into a persisted custom watch.
type AssemblyService struct {
	store  repositories.Store
	logger *zap.Logger
}

// NewAssemblyService creates a new AssemblyService.
func NewAssemblyService(store repositories.Store, logger *zap.Logger) *AssemblyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssemblyService{
		store:  store,
		logger: logger,
	}
}

// Assemble validates the components, prices the custom watch at the sum of their current prices,
// stores it with one link per component and takes one unit of each component out of stock,
// all in one unit of work.
func (s *AssemblyService) Assemble(ctx context.Context, userID string, req AssembleRequest) (*models.CustomWatch, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := Validate(req); err != nil {
		return nil, err
	}
	ids := uniqueIDs(req.ComponentIDs)

	var created *models.CustomWatch
	err := s.store.Atomic(ctx, func(repos repositories.Repositories) error {
		catalog := NewCatalogLookup(repos)
		ledger := NewInventoryLedger(repos)

		components, err := catalog.Components(ids)
		if err != nil {
			return err
		}
		var soldOut []string
		for _, comp := range components {
			if comp.Stock <= 0 {
				soldOut = append(soldOut, comp.Name)
			}
		}
		if len(soldOut) > 0 {
			return &OutOfStockError{Names: soldOut}
		}

		total := decimal.Zero
		links := make([]models.CustomWatchComponent, len(components))
		for i, comp := range components {
			total = total.Add(comp.Price)
			links[i] = models.CustomWatchComponent{ComponentID: comp.ID, Position: i}
		}
		customWatch := &models.CustomWatch{
			Name:       req.Name,
			TotalPrice: total,
			UserID:     userID,
			Components: links,
		}
		if err := repos.CustomWatches.Create(customWatch); err != nil {
			return err
		}
		for _, comp := range components {
			if err := ledger.DecrementStock(models.ComponentRef(comp.ID), 1); err != nil {
				return err
			}
		}

		created, err = repos.CustomWatches.GetByID(customWatch.ID)
		return err
	})
	if err != nil {
		return nil, transactionError("assemble custom watch", err)
	}

	s.logger.Info("custom watch assembled",
		zap.String("custom_watch_id", created.ID),
		zap.String("user_id", userID),
		zap.Int("components", len(created.Components)),
		zap.String("total_price", created.TotalPrice.StringFixed(2)))
	return created, nil
}

// ListOwn returns the custom watches assembled by userID.
func (s *AssemblyService) ListOwn(ctx context.Context, userID string) ([]models.CustomWatch, error) {
	return s.store.Repos(ctx).CustomWatches.ListByOwner(userID)
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
