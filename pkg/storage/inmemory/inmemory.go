// Package inmemory provides a map-backed storage.Driver for tests and
// throwaway servers.
package inmemory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	mu      sync.RWMutex
	configs map[string]integration.Config
}

// NewDriver creates an empty in-memory store.
func NewDriver() *Driver {
	return &Driver{
		configs: make(map[string]integration.Config),
	}
}

func (d *Driver) Put(_ context.Context, cfg integration.Config) error {
	cfg, err := storage.ValidateForPut(cfg)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.configs[cfg.Key] = cfg
	return nil
}

func (d *Driver) Get(_ context.Context, key string) (integration.Config, error) {
	key = storage.NormalizeKey(key)

	d.mu.RLock()
	defer d.mu.RUnlock()

	cfg, ok := d.configs[key]
	if !ok {
		return integration.Config{}, storage.ErrNotFound{Key: key}
	}
	return cfg, nil
}

func (d *Driver) Delete(_ context.Context, key string) error {
	key = storage.NormalizeKey(key)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.configs[key]; !ok {
		return storage.ErrNotFound{Key: key}
	}
	delete(d.configs, key)
	return nil
}

func (d *Driver) List(_ context.Context) ([]integration.Config, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]integration.Config, 0, len(d.configs))
	for _, cfg := range d.configs {
		out = append(out, cfg)
	}

	slices.SortFunc(out, func(a, b integration.Config) int {
		return strings.Compare(a.Key, b.Key)
	})

	return out, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
