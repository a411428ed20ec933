package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Gabrieexl/proyecto-calidad/internal/logging"
	"github.com/Gabrieexl/proyecto-calidad/internal/model"
)

// TopicClientChanges carries a model.ClientChange after every confirmed write.
const TopicClientChanges = "client_changes"

var ErrNoSubscribers = errors.New("no subscribers")

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue delivers each published payload to every subscriber in its
// own goroutine, retrying failed handlers with linear backoff.
type InMemoryQueue struct {
	mu         sync.Mutex
	handlers   map[string][]func(payload any) error
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(logger *zap.Logger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers:   make(map[string][]func(payload any) error),
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
		Logger:     logger,
	}
}

// JobPayload wraps a message payload with retry info
type JobPayload struct {
	Topic      string
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("%w for topic %s", ErrNoSubscribers, topic)
	}

	for _, handler := range handlers {
		go q.processJob(handler, JobPayload{Topic: topic, Payload: payload, MaxRetries: q.MaxRetries})
	}
	return nil
}

// processJob handles retries and errors
func (q *InMemoryQueue) processJob(handler func(payload any) error, job JobPayload) {
	log := logging.OrNop(q.Logger).With(zap.String("topic", job.Topic))
	for {
		err := handler(job.Payload)
		if err == nil {
			log.Debug("job processed", zap.Any("payload", job.Payload))
			return
		}

		job.RetryCount++
		if job.RetryCount > job.MaxRetries {
			log.Warn("job permanently failed", zap.Int("attempts", job.RetryCount), zap.Error(err))
			return
		}
		log.Info("job failed, retrying", zap.Int("attempt", job.RetryCount), zap.Int("max_retries", job.MaxRetries), zap.Error(err))

		time.Sleep(time.Duration(job.RetryCount) * q.RetryDelay)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// DecodeClientChange accepts the in-process payload or the raw JSON body
// delivered by AMQPQueue.
func DecodeClientChange(payload any) (model.ClientChange, error) {
	switch p := payload.(type) {
	case model.ClientChange:
		return p, nil
	case json.RawMessage:
		var c model.ClientChange
		err := json.Unmarshal(p, &c)
		return c, err
	default:
		return model.ClientChange{}, fmt.Errorf("unexpected payload type %T", payload)
	}
}

var _ Queue = (*InMemoryQueue)(nil)
