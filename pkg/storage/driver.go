// Package storage persists integration configurations: one record of
// instance + credential per integration key.
package storage

import (
	"context"

	"github.com/chatspace-app/chatspace/pkg/integration"
)

// Driver is the settings store the registry reads from. Writes come only
// from the settings surfaces (CLI, API); the push path only reads.
type Driver interface {
	// Put creates or overwrites the configuration for cfg.Key.
	Put(ctx context.Context, cfg integration.Config) error

	// Get returns the configuration for key, or ErrNotFound.
	Get(ctx context.Context, key string) (integration.Config, error)

	// Delete removes the configuration for key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error

	// List returns every stored configuration ordered by key.
	List(ctx context.Context) ([]integration.Config, error)

	// Close closes the store and releases any resources.
	Close() error
}
