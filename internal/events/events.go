// ABOUTME: Measurement change notifications published after a write commits.
// ABOUTME: RabbitMQ publisher via amqp091-go, plus a no-op publisher when unconfigured.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/vitals/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Action names what happened to a measurement.
type Action string

const (
	Created Action = "created"
	Updated Action = "updated"
	Deleted Action = "deleted"
)

// DefaultQueue is the queue used when none is configured.
const DefaultQueue = "vitals.measurements"

const publishTimeout = 5 * time.Second

// MeasurementEvent describes one committed measurement change.
type MeasurementEvent struct {
	Action        Action             `json:"action"`
	Kind          models.Kind        `json:"kind"`
	MeasurementID uuid.UUID          `json:"measurement_id"`
	UserID        uuid.UUID          `json:"user_id,omitempty"`
	Values        map[string]float64 `json:"values,omitempty"`
	OccurredAt    time.Time          `json:"occurred_at"`
}

// NewMeasurementEvent builds an event for m stamped now.
func NewMeasurementEvent(action Action, m *models.Measurement) MeasurementEvent {
	return MeasurementEvent{
		Action:        action,
		Kind:          m.Kind,
		MeasurementID: m.ID,
		UserID:        m.UserID,
		Values:        m.Values,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers measurement events.
type Publisher interface {
	Publish(ctx context.Context, e MeasurementEvent) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish does nothing.
func (NopPublisher) Publish(context.Context, MeasurementEvent) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }

// AMQPPublisher sends events as JSON to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
}

// DialAMQP connects to url and declares queue.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	if url == "" {
		return nil, errors.New("amqp url is empty")
	}
	if queue == "" {
		queue = DefaultQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &AMQPPublisher{conn: conn, channel: ch, queue: queue}, nil
}

// Publish sends e to the queue.
func (p *AMQPPublisher) Publish(ctx context.Context, e MeasurementEvent) error {
	body, err := Encode(e)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.OccurredAt,
			Type:         string(e.Action),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s event: %w", e.Action, err)
	}
	return nil
}

// Close closes the channel and connection.
func (p *AMQPPublisher) Close() error {
	chErr := p.channel.Close()
	connErr := p.conn.Close()
	return errors.Join(chErr, connErr)
}

// Encode serializes e as published on the wire.
func Encode(e MeasurementEvent) ([]byte, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return body, nil
}
