package rabbitmq_test

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchshop/pkg/rabbitmq"
)

func getClient(t *testing.T) *rabbitmq.Client {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		t.Skip("RABBITMQ_URL not set")
	}
	suffix := uuid.New().String()[:8]
	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:      url,
		Exchange: "orders-test-" + suffix,
		Queue:    "order_queue_test_" + suffix,
	}, nil)
	if err != nil {
		t.Skipf("RabbitMQ not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestPublishAndConsume(t *testing.T) {
	client := getClient(t)

	received := make(chan amqp.Delivery, 1)
	require.NoError(t, client.ConsumeOrderEvents(func(msg amqp.Delivery) error {
		received <- msg
		return nil
	}))

	require.NoError(t, client.Publish(client.Exchange(), "order.created", []byte(`{"type":"order.created"}`)))

	select {
	case msg := <-received:
		assert.Equal(t, "order.created", msg.RoutingKey)
		assert.JSONEq(t, `{"type":"order.created"}`, string(msg.Body))
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}
