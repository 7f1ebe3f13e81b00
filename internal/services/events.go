package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"watchshop/internal/models"
)

const (
	// OrderExchange is the topic exchange order events are published to.
	OrderExchange = "orders"

	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher delivers a message body to an exchange under a routing key.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the JSON body of every order event.
type OrderEvent struct {
	EventID        string             `json:"event_id"`
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	UserID         string             `json:"user_id"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	ItemCount      int                `json:"item_count"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order, previous models.OrderStatus) OrderEvent {
	return OrderEvent{
		EventID:        uuid.New().String(),
		Type:           eventType,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		TotalAmount:    order.TotalAmount,
		ItemCount:      len(order.Items),
		OccurredAt:     time.Now().UTC(),
	}
}

// publishEvent runs after commit. A failed publish is logged and never undoes the committed order.
func publishEvent(publisher EventPublisher, logger *zap.Logger, event OrderEvent) {
	if publisher == nil {
		logger.Debug("event publisher not configured, skipping", zap.String("event_type", event.Type))
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal order event", zap.String("order_id", event.OrderID), zap.Error(err))
		return
	}
	if err := publisher.Publish(OrderExchange, event.Type, body); err != nil {
		logger.Warn("failed to publish order event",
			zap.String("order_id", event.OrderID),
			zap.String("event_type", event.Type),
			zap.Error(err))
		return
	}
	logger.Debug("published order event", zap.String("order_id", event.OrderID), zap.String("event_type", event.Type))
}

// DecodeOrderEvent parses a message body produced by publishEvent.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return event, fmt.Errorf("failed to decode order event: %w", err)
	}
	if event.Type == "" || event.OrderID == "" {
		return event, fmt.Errorf("failed to decode order event: missing type or order_id")
	}
	return event, nil
}
