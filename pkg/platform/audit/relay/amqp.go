package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	audit "marketlevy/pkg/platform/audit"
)

const exchangeType = "topic"

// AMQPBroker publishes outbox entries to a durable topic exchange with
// routing key "audit.<event_type>".
type AMQPBroker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPBroker dials url with a short retry loop and declares the exchange.
func NewAMQPBroker(url, exchange string, logger *slog.Logger) (*AMQPBroker, error) {
	var (
		conn *amqp.Connection
		err  error
	)
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to amqp broker", "attempt", i+1, "error", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to amqp broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		exchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &AMQPBroker{conn: conn, ch: ch, exchange: exchange}, nil
}

func routingKey(eventType string) string {
	return "audit." + eventType
}

func (b *AMQPBroker) Publish(ctx context.Context, entry audit.OutboxEntry) error {
	return b.ch.PublishWithContext(ctx,
		b.exchange,                  // exchange
		routingKey(entry.EventType), // routing key
		false,                       // mandatory
		false,                       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    entry.ID.String(),
			Body:         entry.Payload,
		},
	)
}

func (b *AMQPBroker) Close() error {
	_ = b.ch.Close()
	return b.conn.Close()
}
