package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/streadway/amqp"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// AMQPQueue publishes JSON payloads to durable RabbitMQ queues named after
// the topic. Subscribers receive the raw message body ([]byte).
type AMQPQueue struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	strategy retry.Strategy

	mu       sync.Mutex
	declared map[string]bool
}

func NewAMQPQueue(url string, strategy retry.Strategy) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}
	return &AMQPQueue{
		conn:     conn,
		ch:       ch,
		strategy: strategy,
		declared: map[string]bool{},
	}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	if err := q.declare(topic); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	return retry.Do(func() error {
		return q.ch.Publish(
			"",    // default exchange
			topic, // routing key
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Body:         body,
			},
		)
	}, q.strategy)
}

// Subscribe consumes the topic's queue on its own goroutine. A delivery is
// acked once handler succeeds and dropped after the retry strategy is exhausted.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	if err := q.declare(topic); err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume %s: %w", topic, err)
	}

	go func() {
		for d := range msgs {
			body := d.Body
			if err := retry.Do(func() error { return handler(body) }, q.strategy); err != nil {
				zlog.Logger.Error().Err(err).Str("topic", topic).Msg("dropping message after retries")
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
		zlog.Logger.Info().Str("topic", topic).Msg("consumer stopped")
	}()
	return nil
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

var _ Queue = (*AMQPQueue)(nil)
