package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchshop/internal/models"
	"watchshop/internal/repositories"
	"watchshop/internal/services"
)

func TestOrderService_SetStatus_CancelRestocks(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	watch := seedWatch(t, store, "Seamaster", "100.00", 3)
	publisher := &recordingPublisher{}
	service := services.NewOrderService(store, publisher, nil, nil)

	order, err := service.CreateOrder(ctx, "user-1", orderOf(watchLine(watch.ID, 2)))
	require.NoError(t, err)
	require.Equal(t, 1, watchStock(t, store, watch.ID))

	cancelled, err := service.SetStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 3, watchStock(t, store, watch.ID))

	// Cancelling again changes nothing.
	again, err := service.SetStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, again.Status)
	assert.Equal(t, 3, watchStock(t, store, watch.ID))

	events := publisher.Events()
	require.Len(t, events, 2)
	assert.Equal(t, services.EventOrderStatusChanged, events[1].Type)
	assert.Equal(t, models.OrderPending, events[1].PreviousStatus)
	assert.Equal(t, models.OrderCancelled, events[1].Status)
}

func TestOrderService_SetStatus_Progression(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	watch := seedWatch(t, store, "Seamaster", "100.00", 3)
	service := services.NewOrderService(store, nil, nil, nil)

	order, err := service.CreateOrder(ctx, "user-1", orderOf(watchLine(watch.ID, 1)))
	require.NoError(t, err)

	for _, status := range []string{"PROCESSING", " SHIPPED ", "DELIVERED"} {
		updated, err := service.SetStatus(ctx, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(strings.TrimSpace(status)), updated.Status)
	}
	assert.Equal(t, 2, watchStock(t, store, watch.ID))

	_, err = service.SetStatus(ctx, order.ID, "CANCELLED")
	var transition *services.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, models.OrderDelivered, transition.From)
	assert.Equal(t, models.OrderCancelled, transition.To)
	assert.Equal(t, 2, watchStock(t, store, watch.ID))
}

func TestOrderService_SetStatus_CancelledIsFinal(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	watch := seedWatch(t, store, "Seamaster", "100.00", 3)
	service := services.NewOrderService(store, nil, nil, nil)

	order, err := service.CreateOrder(ctx, "user-1", orderOf(watchLine(watch.ID, 1)))
	require.NoError(t, err)
	_, err = service.SetStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)

	_, err = service.SetStatus(ctx, order.ID, "PENDING")
	var transition *services.InvalidTransitionError
	require.ErrorAs(t, err, &transition)

	reloaded, err := service.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, reloaded.Status)
	assert.Equal(t, 3, watchStock(t, store, watch.ID))
}

func TestOrderService_SetStatus_InvalidInput(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	watch := seedWatch(t, store, "Seamaster", "100.00", 3)
	service := services.NewOrderService(store, nil, nil, nil)

	order, err := service.CreateOrder(ctx, "user-1", orderOf(watchLine(watch.ID, 1)))
	require.NoError(t, err)

	for _, status := range []string{"", "cancelled", "LOST"} {
		_, err := service.SetStatus(ctx, order.ID, status)
		var invalid *services.InvalidStatusError
		require.ErrorAs(t, err, &invalid, "status %q", status)
		assert.Equal(t, status, invalid.Status)
	}

	// The status is checked before the order is looked up.
	_, err = service.SetStatus(ctx, uuid.New().String(), "LOST")
	var invalid *services.InvalidStatusError
	assert.ErrorAs(t, err, &invalid)

	_, err = service.SetStatus(ctx, uuid.New().String(), "SHIPPED")
	var notFound *services.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "order", notFound.Resource)

	reloaded, err := service.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, reloaded.Status)
}

func TestOrderService_SetStatus_CancelCustomWatchLine(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	dial := seedComponent(t, store, "Blue Dial", models.ComponentDial, "50.00", 2)
	customWatch, err := services.NewAssemblyService(store, nil).Assemble(ctx, "user-1", services.AssembleRequest{
		Name:         "Mine",
		ComponentIDs: []string{dial.ID},
	})
	require.NoError(t, err)
	require.Equal(t, 1, componentStock(t, store, dial.ID))

	service := services.NewOrderService(store, nil, nil, nil)
	order, err := service.CreateOrder(ctx, "user-1", orderOf(customWatchLine(customWatch.ID, 1)))
	require.NoError(t, err)

	_, err = service.SetStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, 1, componentStock(t, store, dial.ID))
}

func TestOrderService_SetStatus_CancelAfterWatchDeleted(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewMemoryStore()
	kept := seedWatch(t, store, "Seamaster", "100.00", 3)
	dropped := seedWatch(t, store, "Aqua Terra", "150.00", 3)
	service := services.NewOrderService(store, nil, nil, nil)

	order, err := service.CreateOrder(ctx, "user-1", orderOf(watchLine(dropped.ID, 1), watchLine(kept.ID, 1)))
	require.NoError(t, err)
	require.NoError(t, services.NewCatalogService(store, nil).DeleteWatch(ctx, dropped.ID))

	cancelled, err := service.SetStatus(ctx, order.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.Equal(t, 3, watchStock(t, store, kept.ID))
}
