// Package push drives a single content push from trigger to settled outcome.
//
// A Flow is one invocation: Idle, then InFlight while the adapter call is
// pending, then Succeeded or Failed. A second Push while InFlight is
// refused with ErrInFlight. A settled Flow may be pushed again; there is no
// automatic retry.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatspace-app/chatspace/pkg/eventstream"
	"github.com/chatspace-app/chatspace/pkg/eventstream/nop"
	"github.com/chatspace-app/chatspace/pkg/integration"
)

// DefaultTimeout bounds a push when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// ErrInFlight is returned when a push is requested while the same flow is
// still waiting on its previous one.
var ErrInFlight = errors.New("push already in flight")

// State is the lifecycle position of a Flow.
type State int

const (
	StateIdle State = iota
	StateInFlight
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInFlight:
		return "in_flight"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolver materializes the adapter for an integration key. It is
// satisfied by *registry.Registry.
type Resolver interface {
	Resolve(ctx context.Context, key string) (integration.Integration, bool, error)
}

// Result is the outcome of a successful push. It is not retained beyond
// the flow that produced it.
type Result struct {
	Key       string        `json:"key"`
	Reference string        `json:"reference"`
	Duration  time.Duration `json:"-"`
}

// Config is shared by every flow a caller creates.
type Config struct {
	// Resolver looks up the integration on every push. Required.
	Resolver Resolver

	// Timeout bounds each push, DefaultTimeout when zero.
	Timeout time.Duration

	// Publisher receives one event per settled push. Defaults to nop.
	Publisher eventstream.Publisher

	Logger *slog.Logger
}

func (c *Config) validate() error {
	if c.Resolver == nil {
		return errors.New("resolver is required")
	}
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	return nil
}

// Flow is one content-push invocation.
type Flow struct {
	id     string
	config *Config
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	result Result
	err    error
}

// NewFlow creates an Idle flow.
func NewFlow(c *Config) (*Flow, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return newFlow(c), nil
}

func newFlow(c *Config) *Flow {
	id := uuid.NewString()
	return &Flow{
		id:     id,
		config: c,
		logger: c.Logger.With("flow_id", id),
	}
}

// ID identifies the flow in logs.
func (f *Flow) ID() string {
	return f.id
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the error of the last settled push, nil unless Failed.
func (f *Flow) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Result returns the result of the last settled push, zero unless
// Succeeded.
func (f *Flow) Result() Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.result
}

// Push sends content to the integration stored under key and waits for the
// outcome. title may be empty. Every failure leaves the flow Failed and is
// returned; UserMessage turns it into text for the user.
func (f *Flow) Push(ctx context.Context, key, content, title string) (Result, error) {
	if err := f.begin(); err != nil {
		return Result{}, err
	}
	return f.run(ctx, key, content, title)
}

func (f *Flow) begin() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateInFlight {
		return ErrInFlight
	}

	f.state = StateInFlight
	f.result = Result{}
	f.err = nil
	return nil
}

func (f *Flow) run(ctx context.Context, key, content, title string) (Result, error) {
	start := time.Now()

	pushCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	f.logger.Debug("push started",
		"integration", key,
		"content_bytes", len(content),
	)

	instance, ref, err := f.store(pushCtx, key, content, title)
	res := Result{Key: key, Reference: ref, Duration: time.Since(start)}
	if err != nil {
		res.Reference = ""
	}

	f.settle(res, err)
	f.report(ctx, instance, content, title, res, err)

	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (f *Flow) store(ctx context.Context, key, content, title string) (string, string, error) {
	in, ok, err := f.config.Resolver.Resolve(ctx, key)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", &integration.NotConfiguredError{Key: key}
	}

	ref, err := in.StoreContent(ctx, content, title)
	if err != nil {
		// Adapters classify their own transport failures; anything else
		// that raced the deadline is still a timeout.
		if _, typed := integration.AsPushError(err); !typed && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = integration.TransportError(key, fmt.Errorf("%w: %w", context.DeadlineExceeded, err))
		}
		return in.Instance(), "", err
	}
	if ref == "" {
		return in.Instance(), "", integration.MalformedError(key, "empty reference", nil)
	}

	return in.Instance(), ref, nil
}

func (f *Flow) settle(res Result, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.state = StateFailed
		f.err = err
		return
	}

	f.state = StateSucceeded
	f.result = res
}

func (f *Flow) report(ctx context.Context, instance, content, title string, res Result, err error) {
	eventType := eventstream.EventTypePushSucceeded
	if err != nil {
		eventType = eventstream.EventTypePushFailed
	}

	event := eventstream.NewPushEvent(eventType)
	event.Integration = eventstream.IntegrationMeta{Key: res.Key, Instance: instance}
	event.Title = title
	event.ContentBytes = len(content)
	event.Reference = res.Reference
	event.DurationMs = res.Duration.Milliseconds()

	if err != nil {
		meta := &eventstream.PushErrorMeta{Kind: "unknown", Message: UserMessage(err)}
		if pe, ok := integration.AsPushError(err); ok {
			meta.Kind = pe.Kind.String()
			meta.Status = pe.Status
		} else if integration.IsNotConfigured(err) {
			meta.Kind = "not_configured"
		}
		event.Error = meta

		f.logger.Warn("push failed",
			"integration", res.Key,
			"instance", instance,
			"kind", meta.Kind,
			"duration_ms", event.DurationMs,
			"error", err,
		)
	} else {
		f.logger.Info("push succeeded",
			"integration", res.Key,
			"instance", instance,
			"reference", res.Reference,
			"duration_ms", event.DurationMs,
		)
	}

	if perr := f.config.Publisher.Publish(context.WithoutCancel(ctx), event); perr != nil {
		f.logger.Error("failed to publish push event",
			"event_id", event.EventID,
			"error", perr,
		)
	}
}
