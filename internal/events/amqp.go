package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher sends events as persistent JSON messages to a durable
// queue through the default exchange. It dials per publish.
type AMQPPublisher struct {
	url   string
	queue string
	dial  func(url string) (*amqp.Connection, error)
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue, dial: amqp.Dial}
}

// Publish declares the queue if needed and publishes ev to it.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	conn, err := p.dial(p.url)
	if err != nil {
		return fmt.Errorf("amqp dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("amqp channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("amqp declare %s: %w", p.queue, err)
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
