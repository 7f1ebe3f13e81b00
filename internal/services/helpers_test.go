package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"watchshop/internal/database"
	"watchshop/internal/models"
	"watchshop/internal/repositories"
	"watchshop/internal/services"
)

// stores runs fn against the GORM store on in-memory SQLite and against the MemoryStore.
func stores(t *testing.T, fn func(t *testing.T, store repositories.Store)) {
	t.Run("gorm", func(t *testing.T) {
		db, err := database.Connect(database.DriverSQLite, "file:"+uuid.New().String()+"?mode=memory&cache=shared", zap.NewNop())
		require.NoError(t, err)
		fn(t, repositories.NewGORMStore(db))
	})
	t.Run("memory", func(t *testing.T) { fn(t, repositories.NewMemoryStore()) })
}

func seedWatch(t *testing.T, store repositories.Store, name, price string, stock int) *models.Watch {
	t.Helper()
	watch := &models.Watch{
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		Reference: "REF-" + uuid.New().String()[:8],
	}
	require.NoError(t, store.Repos(context.Background()).Watches.Create(watch))
	return watch
}

func seedComponent(t *testing.T, store repositories.Store, name string, componentType models.ComponentType, price string, stock int) *models.Component {
	t.Helper()
	component := &models.Component{
		Name:  name,
		Type:  componentType,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	require.NoError(t, store.Repos(context.Background()).Components.Create(component))
	return component
}

func watchStock(t *testing.T, store repositories.Store, id string) int {
	t.Helper()
	watch, err := store.Repos(context.Background()).Watches.GetByID(id)
	require.NoError(t, err)
	return watch.Stock
}

func componentStock(t *testing.T, store repositories.Store, id string) int {
	t.Helper()
	component, err := store.Repos(context.Background()).Components.GetByID(id)
	require.NoError(t, err)
	return component.Stock
}

func watchLine(id string, quantity int) services.OrderLineRequest {
	return services.OrderLineRequest{WatchID: id, Quantity: quantity}
}

func customWatchLine(id string, quantity int) services.OrderLineRequest {
	return services.OrderLineRequest{CustomWatchID: id, Quantity: quantity}
}

func orderOf(lines ...services.OrderLineRequest) services.CreateOrderRequest {
	return services.CreateOrderRequest{Items: lines}
}

// recordingPublisher keeps every published order event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []services.OrderEvent
	keys   []string
}

func (p *recordingPublisher) Publish(exchange, routingKey string, body []byte) error {
	var event services.OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Events() []services.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]services.OrderEvent(nil), p.events...)
}

// memoryIdempotency is an in-process services.IdempotencyStore.
type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{keys: make(map[string]string)}
}

func (m *memoryIdempotency) Claim(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = ""
	return true, nil
}

func (m *memoryIdempotency) Remember(ctx context.Context, key, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = orderID
	return nil
}

func (m *memoryIdempotency) Recall(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[key], nil
}

func (m *memoryIdempotency) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

// flakyRemember fails the first failures calls to Remember.
type flakyRemember struct {
	*memoryIdempotency
	failures int
}

func (f *flakyRemember) Remember(ctx context.Context, key, orderID string) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("i/o timeout")
	}
	f.mu.Unlock()
	return f.memoryIdempotency.Remember(ctx, key, orderID)
}

// failingOrders makes every order insert fail, as a broken database would.
type failingOrders struct {
	repositories.OrderRepository
}

func (failingOrders) Create(*models.Order) error {
	return errors.New("connection reset by peer")
}

// brokenStore is a MemoryStore whose units of work cannot insert orders.
type brokenStore struct {
	*repositories.MemoryStore
}

func (s brokenStore) Atomic(ctx context.Context, fn func(repos repositories.Repositories) error) error {
	return s.MemoryStore.Atomic(ctx, func(repos repositories.Repositories) error {
		repos.Orders = failingOrders{repos.Orders}
		return fn(repos)
	})
}
