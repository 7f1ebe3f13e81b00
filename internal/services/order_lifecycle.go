package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// SetStatus moves an order to status. Cancelling puts the quantity of every watch line back
// into stock in the same unit of work; custom watch lines are not restocked and their
// components stay consumed. Setting the status an order already has changes nothing, so
// cancelling twice restocks once. CANCELLED and DELIVERED orders cannot move to another status.
func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	next := models.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return nil, &InvalidStatusError{Status: status}
	}

	var (
		updated  *models.Order
		previous models.OrderStatus
		changed  bool
	)
	err := s.store.Atomic(ctx, func(repos repositories.Repositories) error {
		order, err := repos.Orders.GetByID(orderID)
		if err != nil {
			return lookupError(err, "order", orderID)
		}
		previous = order.Status
		if previous == next {
			updated = order
			return nil
		}
		if previous.Terminal() {
			return &InvalidTransitionError{From: previous, To: next}
		}

		if err := repos.Orders.UpdateStatus(order.ID, next); err != nil {
			return err
		}
		if next == models.OrderCancelled {
			if err := s.restock(NewInventoryLedger(repos), order); err != nil {
				return err
			}
		}

		changed = true
		updated, err = repos.Orders.GetByID(order.ID)
		return err
	})
	if err != nil {
		return nil, transactionError("set order status", err)
	}

	if changed {
		s.logger.Info("order status changed",
			zap.String("order_id", updated.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(next)))
		publishEvent(s.publisher, s.logger, newOrderEvent(EventOrderStatusChanged, updated, previous))
	}
	return updated, nil
}

func (s *OrderService) restock(ledger *InventoryLedger, order *models.Order) error {
	for _, item := range order.Items {
		if item.WatchID == nil {
			continue
		}
		err := ledger.IncrementStock(models.WatchRef(*item.WatchID), item.Quantity)
		if errors.Is(err, ErrNotFound) {
			// The watch was removed from the catalog after the order was placed.
			s.logger.Warn("skipping restock of deleted watch",
				zap.String("order_id", order.ID),
				zap.String("watch_id", *item.WatchID))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
