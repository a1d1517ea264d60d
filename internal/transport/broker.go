// Package transport implements the worker's two external transports: the
// AMQP-compatible message broker (queue consumption, lifecycle-event
// publishing) and the HTTP client used for scene download, job-status
// polling, and frame upload. Both surface ordinary errors to the engine;
// neither ever panics the process, per the engine's own error-handling
// design.
package transport

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/pkg/errors"
)

// LifecycleEvent is one of the per-Task routing-key prefixes published on
// the worker-scoped topic exchange.
type LifecycleEvent string

const (
	EventStart  LifecycleEvent = "start"
	EventFinish LifecycleEvent = "finish"
	EventError  LifecycleEvent = "error"
	EventStat   LifecycleEvent = "stat"
	EventHeart  LifecycleEvent = "heart"
)

// Delivery is one message popped off the work queue, not yet acknowledged.
type Delivery struct {
	Tag  uint64
	Body []byte
}

// Broker is the engine's view of the message bus: pull at most one Task
// payload per call, ack exactly once, and publish lifecycle events.
type Broker interface {
	// Intake pulls at most one message from the work queue without
	// auto-ack. ok is false if the queue was empty.
	Intake(ctx context.Context) (d Delivery, ok bool, err error)
	// Ack acknowledges a previously delivered message by tag.
	Ack(ctx context.Context, tag uint64) error
	// Publish emits an event on the worker-scoped topic exchange with
	// routing key "{event}.{workerID}".
	Publish(ctx context.Context, event LifecycleEvent, workerID string, body []byte) error
}

// AMQPBroker is the production Broker backed by a single channel against a
// durable "work" queue and a topic exchange, grounded on
// github.com/rabbitmq/amqp091-go's standard consume/publish/ack surface.
type AMQPBroker struct {
	channel      *amqp.Channel
	queueName    string
	exchangeName string
}

// NewAMQPBroker declares the durable work queue and the topic exchange on
// ch, returning a Broker ready for use.
func NewAMQPBroker(ch *amqp.Channel, queueName, exchangeName string) (*AMQPBroker, error) {
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "transport: declaring queue %q", queueName)
	}
	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "transport: declaring exchange %q", exchangeName)
	}
	return &AMQPBroker{channel: ch, queueName: queueName, exchangeName: exchangeName}, nil
}

// Intake implements Broker.
func (b *AMQPBroker) Intake(ctx context.Context) (Delivery, bool, error) {
	msg, ok, err := b.channel.Get(b.queueName, false)
	if err != nil {
		return Delivery{}, false, errors.Wrap(err, "transport: basic.get from work queue")
	}
	if !ok {
		return Delivery{}, false, nil
	}
	return Delivery{Tag: msg.DeliveryTag, Body: msg.Body}, true, nil
}

// Ack implements Broker.
func (b *AMQPBroker) Ack(ctx context.Context, tag uint64) error {
	if err := b.channel.Ack(tag, false); err != nil {
		return errors.Wrapf(err, "transport: acking delivery tag %d", tag)
	}
	return nil
}

// Publish implements Broker.
func (b *AMQPBroker) Publish(ctx context.Context, event LifecycleEvent, workerID string, body []byte) error {
	routingKey := fmt.Sprintf("%s.%s", event, workerID)
	err := b.channel.PublishWithContext(ctx, b.exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "application/octet-stream",
		Body:        body,
	})
	if err != nil {
		return errors.Wrapf(err, "transport: publishing to routing key %q", routingKey)
	}
	return nil
}
