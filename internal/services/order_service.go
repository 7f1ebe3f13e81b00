package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
)

// OrderLineRequest is one requested order line. Exactly one of WatchID and CustomWatchID is set.
type OrderLineRequest struct {
	WatchID       string `json:"watch_id" validate:"required_without=CustomWatchID,excluded_with=CustomWatchID"`
	CustomWatchID string `json:"custom_watch_id"`
	Quantity      int    `json:"quantity" validate:"gt=0"`
}

// CreateOrderRequest is the input for placing an order.
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store       repositories.Store
	publisher   EventPublisher
	idempotency IdempotencyStore
	logger      *zap.Logger
}

// NewOrderService creates a new OrderService. publisher and idempotency may be nil.
func NewOrderService(store repositories.Store, publisher EventPublisher, idempotency IdempotencyStore, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		store:       store,
		publisher:   publisher,
		idempotency: idempotency,
		logger:      logger,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.Repos(ctx).Orders.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.store.Repos(ctx).Orders.GetByID(id)
	if err != nil {
		return nil, lookupError(err, "order", id)
	}
	return order, nil
}

// ListOrdersForUser retrieves the orders placed by userID.
func (s *OrderService) ListOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.store.Repos(ctx).Orders.ListByUser(userID)
}

// GetOrderForUser retrieves one of userID's orders. Orders of other users are reported as not found.
func (s *OrderService) GetOrderForUser(ctx context.Context, userID, id string) (*models.Order, error) {
	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, &NotFoundError{Resource: "order", ID: id}
	}
	return order, nil
}

// CreateOrder validates every line against the catalog, prices the order from the prices read
// during validation, and stores the order, its items and the watch stock decrements in one unit
// of work. Custom watch lines do not touch component stock, which assembly already consumed.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*models.Order, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	var created *models.Order
	err := s.store.Atomic(ctx, func(repos repositories.Repositories) error {
		catalog := NewCatalogLookup(repos)
		ledger := NewInventoryLedger(repos)

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(req.Items))
		// requested sums the quantity of every line naming the same watch.
		requested := make(map[string]int)
		for i, line := range req.Items {
			item := models.OrderItem{Quantity: line.Quantity, Position: i}
			if line.WatchID != "" {
				watch, err := catalog.Watch(line.WatchID)
				if err != nil {
					return err
				}
				requested[watch.ID] += line.Quantity
				if watch.Stock < requested[watch.ID] {
					return &InsufficientStockError{
						ProductID: watch.ID,
						Name:      watch.Name,
						Requested: requested[watch.ID],
						Available: watch.Stock,
					}
				}
				watchID := watch.ID
				item.WatchID = &watchID
				item.Price = watch.Price
			} else {
				customWatch, err := catalog.CustomWatch(line.CustomWatchID, userID)
				if err != nil {
					return err
				}
				customWatchID := customWatch.ID
				item.CustomWatchID = &customWatchID
				item.Price = customWatch.TotalPrice
			}
			total = total.Add(item.LineTotal())
			items = append(items, item)
		}

		order := &models.Order{
			UserID:      userID,
			Items:       items,
			TotalAmount: total,
			Status:      models.OrderPending,
		}
		if err := repos.Orders.Create(order); err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.WatchID == nil {
				continue
			}
			if err := ledger.DecrementStock(models.WatchRef(*item.WatchID), item.Quantity); err != nil {
				return err
			}
		}

		var err error
		created, err = repos.Orders.GetByID(order.ID)
		return err
	})
	if err != nil {
		return nil, transactionError("create order", err)
	}

	s.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("user_id", userID),
		zap.Int("items", len(created.Items)),
		zap.String("total_amount", created.TotalAmount.StringFixed(2)))
	publishEvent(s.publisher, s.logger, newOrderEvent(EventOrderCreated, created, ""))
	return created, nil
}

// PlaceOrder is CreateOrder guarded by a client-supplied idempotency key. Resubmitting a key that
// already produced an order returns that order with replayed set; resubmitting while the first
// request is still running fails with ErrDuplicateRequest. A failed attempt frees the key.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, idempotencyKey string, req CreateOrderRequest) (order *models.Order, replayed bool, err error) {
	if idempotencyKey == "" || s.idempotency == nil {
		order, err = s.CreateOrder(ctx, userID, req)
		return order, false, err
	}

	key := orderIdempotencyKey(userID, idempotencyKey)
	claimed, err := s.idempotency.Claim(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	if !claimed {
		orderID, err := s.idempotency.Recall(ctx, key)
		if err != nil {
			return nil, false, fmt.Errorf("failed to recall idempotency key: %w", err)
		}
		if orderID == "" {
			return nil, false, ErrDuplicateRequest
		}
		order, err = s.GetOrderForUser(ctx, userID, orderID)
		return order, err == nil, err
	}

	order, err = s.CreateOrder(ctx, userID, req)
	if err != nil {
		if releaseErr := s.idempotency.Release(ctx, key); releaseErr != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("user_id", userID), zap.Error(releaseErr))
		}
		return nil, false, err
	}
	s.remember(ctx, key, order.ID)
	return order, false, nil
}

// remember records orderID under key, trying twice. If both attempts fail the claim stays
// pending until the store expires it.
func (s *OrderService) remember(ctx context.Context, key, orderID string) {
	err := s.idempotency.Remember(ctx, key, orderID)
	if err == nil {
		return
	}
	s.logger.Warn("failed to remember idempotency key, retrying", zap.String("order_id", orderID), zap.Error(err))
	if err = s.idempotency.Remember(ctx, key, orderID); err != nil {
		s.logger.Warn("failed to remember idempotency key", zap.String("order_id", orderID), zap.Error(err))
	}
}
