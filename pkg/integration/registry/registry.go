// Package registry resolves stored integration settings into live adapters.
//
// The registry holds no state besides its factories: every List and
// Resolve reads the settings store, so an edit made through any settings
// surface is seen by the very next push.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/integration/minima"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

// ErrUnsupported is returned when a stored key has no registered adapter.
var ErrUnsupported = errors.New("unsupported integration")

// Option configures a Registry.
type Option func(*Registry)

// WithFactory registers (or replaces) the adapter factory for key.
func WithFactory(key string, f integration.Factory) Option {
	return func(r *Registry) {
		r.factories[storage.NormalizeKey(key)] = f
	}
}

// Registry lists configured integrations and builds adapters on demand.
type Registry struct {
	store     storage.Driver
	factories map[string]integration.Factory
}

// New creates a Registry over store with the given factories.
func New(store storage.Driver, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		factories: make(map[string]integration.Factory),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default creates a Registry with every built-in adapter registered.
func Default(store storage.Driver, opts ...Option) *Registry {
	return New(store, append([]Option{WithFactory(minima.Key, minima.Factory())}, opts...)...)
}

// Supported returns the registered adapter keys in order.
func (r *Registry) Supported() []string {
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsSupported reports whether key has a registered adapter.
func (r *Registry) IsSupported(key string) bool {
	_, ok := r.factories[storage.NormalizeKey(key)]
	return ok
}

// List returns every stored configuration, credentials included, ordered by
// key.
func (r *Registry) List(ctx context.Context) ([]integration.Config, error) {
	configs, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	return configs, nil
}

// Configured returns the public view of every stored configuration.
func (r *Registry) Configured(ctx context.Context) ([]integration.Summary, error) {
	configs, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]integration.Summary, 0, len(configs))
	for _, cfg := range configs {
		summaries = append(summaries, cfg.Summary())
	}
	return summaries, nil
}

// Resolve builds the adapter for key from its stored configuration. A key
// with nothing stored yields (nil, false, nil).
func (r *Registry) Resolve(ctx context.Context, key string) (integration.Integration, bool, error) {
	key = storage.NormalizeKey(key)

	cfg, err := r.store.Get(ctx, key)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resolving integration %q: %w", key, err)
	}

	factory, ok := r.factories[key]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnsupported, key)
	}

	in, err := factory(cfg)
	if err != nil {
		return nil, false, fmt.Errorf("building integration %q: %w", key, err)
	}

	return in, true, nil
}
