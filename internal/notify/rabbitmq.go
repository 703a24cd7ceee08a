package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ricirt/hubgateway/internal/domain"
)

// AMQPChannel is the slice of *amqp.Channel the publisher needs.
type AMQPChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes notifications to a durable topic exchange,
// routed by RoutingKey.
type RabbitPublisher struct {
	exchange string

	mu      sync.Mutex
	channel AMQPChannel
	conn    *amqp.Connection
}

var _ Publisher = (*RabbitPublisher)(nil)

// NewRabbitPublisher dials RabbitMQ and declares the exchange.
func NewRabbitPublisher(amqpURL, exchange string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := NewRabbitPublisherWithChannel(ch, exchange)
	p.conn = conn
	return p, nil
}

// NewRabbitPublisherWithChannel publishes on an already-open channel whose
// exchange is declared by the caller.
func NewRabbitPublisherWithChannel(ch AMQPChannel, exchange string) *RabbitPublisher {
	return &RabbitPublisher{exchange: exchange, channel: ch}
}

func (p *RabbitPublisher) Publish(ctx context.Context, n domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	body, err := encode(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		RoutingKey(n),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    n.CreatedAt,
			Type:         n.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.Type, err)
	}
	return nil
}

// Close shuts down the channel and, when owned, the connection.
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.channel.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
