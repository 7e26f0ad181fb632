// Package async wraps an eventstream.Publisher in a bounded worker pool so
// publishing never sits on the push path.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/chatspace-app/chatspace/pkg/eventstream"
)

var (
	defaultNumWorkers     uint = 3
	defaultQueueSize      uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

var (
	// ErrQueueFull is returned when an event was dropped because the queue
	// had no room.
	ErrQueueFull = errors.New("event queue full")

	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("publisher closed")
)

// Config is the configuration options for the pool.
type Config struct {
	// Publisher delivers events. Required.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each delivery (defaults to 10s).
	PublishTimeout time.Duration

	Logger *slog.Logger
}

// Pool publishes events asynchronously.
type Pool struct {
	config *Config
	queue  chan *eventstream.PushEvent
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}

	if c.PublishTimeout <= 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		config: c,
		queue:  make(chan *eventstream.PushEvent, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Publish queues event for delivery. When the queue is full the event is
// dropped and ErrQueueFull is returned.
func (p *Pool) Publish(_ context.Context, event *eventstream.PushEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return ErrQueueFull
	}
}

// Close stops accepting events, waits for queued ones to drain and closes
// the wrapped publisher.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()

	return p.config.Publisher.Close()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", "worker_id", id)

	for event := range p.queue {
		p.deliver(event)
	}

	p.logger.Debug("event worker stopped", "worker_id", id)
}

func (p *Pool) deliver(event *eventstream.PushEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Error("event publish failed",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err,
		)
		return
	}

	p.logger.Debug("event published",
		"event_id", event.EventID,
		"event_type", event.EventType,
	)
}
