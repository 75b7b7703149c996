// internal/queue/queue.go
package queue

import (
	"errors"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

// OutreachEventsTopic carries dispatcher events to whoever listens.
const OutreachEventsTopic = "outreach_events"

var ErrNoSubscribers = errors.New("no subscribers for topic")

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers each payload to every subscriber of its topic
// before Publish returns, so subscribers see payloads in publish order.
type InMemoryQueue struct {
	mu       sync.RWMutex
	handlers map[string][]func(payload any) error
	strategy retry.Strategy
}

// NewInMemoryQueue creates a queue that retries a failing handler per strategy.
func NewInMemoryQueue(strategy retry.Strategy) *InMemoryQueue {
	if strategy.Attempts < 1 {
		strategy.Attempts = 1
	}
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		strategy: strategy,
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.RLock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.RUnlock()

	if len(handlers) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	for _, handler := range handlers {
		err := retry.Do(func() error { return handler(payload) }, q.strategy)
		if err != nil {
			zlog.Logger.Error().Err(err).Str("topic", topic).Int("attempts", q.strategy.Attempts).Msg("subscriber permanently failed")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

var _ Queue = (*InMemoryQueue)(nil)
