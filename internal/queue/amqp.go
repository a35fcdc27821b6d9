package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"regapi/internal/config"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes events as persistent JSON messages to a durable queue on the default exchange.
type AMQP struct {
	conn  *amqp.Connection
	mu    sync.Mutex
	ch    channel
	queue string
}

// NewAMQP dials the broker, opens a channel and declares the queue.
func NewAMQP(cfg config.RabbitMQConfig) (*AMQP, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("rabbitmq url is required")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		cfg.Queue, // name
		true,      // durable
		false,     // autoDelete
		false,     // exclusive
		false,     // noWait
		nil,       // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &AMQP{conn: conn, ch: ch, queue: cfg.Queue}, nil
}

// PublishRegistrationCreated sends the event. Channels are not safe for
// concurrent publishing, so calls are serialized.
func (p *AMQP) PublishRegistrationCreated(ctx context.Context, event RegistrationCreatedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt,
		Type:         "registration.created",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQP) Close() error {
	chErr := p.ch.Close()
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
