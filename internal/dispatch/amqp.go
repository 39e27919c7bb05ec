package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher sends tasks to a durable RabbitMQ queue.
type AMQPPublisher struct {
	channel    publishChannel
	exchange   string
	routingKey string
}

// NewAMQPPublisher declares the exchange, the queue and their binding. The
// queue name doubles as the routing key.
func NewAMQPPublisher(conn *amqp.Connection, exchange, queue string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareTopology(ch, exchange, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &AMQPPublisher{channel: ch, exchange: exchange, routingKey: queue}, nil
}

func (p *AMQPPublisher) Dispatch(ctx context.Context, task Task) error {
	body, err := json.Marshal(task)
	if err != nil {
		return err
	}
	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		p.routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.JobID,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish task %s: %w", task.JobID, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	return p.channel.Close()
}

// AMQPConsumer pulls tasks from the queue and runs them one at a time per
// prefetch slot.
type AMQPConsumer struct {
	channel  *amqp.Channel
	queue    string
	handler  Handler
	logger   zerolog.Logger
	prefetch int
}

func NewAMQPConsumer(conn *amqp.Connection, exchange, queue string, prefetch int, handler Handler, logger zerolog.Logger) (*AMQPConsumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := declareTopology(ch, exchange, queue); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		_ = ch.Close()
		return nil, err
	}
	return &AMQPConsumer{channel: ch, queue: queue, handler: handler, logger: logger, prefetch: prefetch}, nil
}

// Start consumes until ctx ends or the channel closes. In-flight tasks are
// awaited before returning.
func (c *AMQPConsumer) Start(ctx context.Context) error {
	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	sem := make(chan struct{}, c.prefetch)
	defer func() {
		for i := 0; i < cap(sem); i++ {
			sem <- struct{}{}
		}
	}()
	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("dispatch: consumer shutting down")
			return nil
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn().Msg("dispatch: amqp channel closed")
				return nil
			}
			sem <- struct{}{}
			go func(msg amqp.Delivery) {
				defer func() { <-sem }()
				c.handle(ctx, msg)
			}(msg)
		}
	}
}

// handle acks every decodable task that ran to an outcome. Failures are
// recorded on the job, so redelivery would only repeat them. A task cut
// short by shutdown is requeued for the next worker.
func (c *AMQPConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var task Task
	if err := json.Unmarshal(msg.Body, &task); err != nil || task.JobID == "" {
		c.logger.Error().Err(err).Str("message_id", msg.MessageId).Msg("dispatch: undecodable task")
		_ = msg.Nack(false, false)
		return
	}
	if err := c.handler(ctx, task); err != nil {
		if ctx.Err() != nil {
			c.logger.Warn().Err(err).Str("job_id", task.JobID).Msg("dispatch: task interrupted, requeued")
			_ = msg.Nack(false, true)
			return
		}
		c.logger.Error().Err(err).Str("job_id", task.JobID).Msg("dispatch: task failed")
	}
	_ = msg.Ack(false)
}

func (c *AMQPConsumer) Close() error {
	return c.channel.Close()
}

func declareTopology(ch *amqp.Channel, exchange, queue string) error {
	if err := ch.ExchangeDeclare(exchange, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(queue, queue, exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

var _ Dispatcher = (*AMQPPublisher)(nil)
