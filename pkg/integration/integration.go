// Package integration defines the capability every external content store
// provides: take a piece of chat content and return a durable reference to
// where it was stored.
package integration

import (
	"context"
	"errors"
	"strings"
)

// ErrInvalidConfig is returned by adapter constructors when a Config is
// missing its key, instance or credential.
var ErrInvalidConfig = errors.New("invalid integration config")

// Integration is implemented once per external service.
//
// StoreContent performs exactly one outbound call and no local mutation. An
// empty title means "no title"; the adapter substitutes its own default.
// Empty content is passed through; rejecting it is the service's decision.
// Implementations must be safe for concurrent use.
type Integration interface {
	// Key identifies the adapter variant, e.g. "minima".
	Key() string

	// Instance is the service-specific endpoint the adapter was built for.
	Instance() string

	// StoreContent stores content and returns the durable reference URL.
	// Failures are reported as *PushError.
	StoreContent(ctx context.Context, content, title string) (string, error)
}

// Config is one stored integration: at most one per Key.
type Config struct {
	Key      string `json:"key" toml:"-"`
	Instance string `json:"instance" toml:"instance"`
	APIKey   string `json:"-" toml:"api_key"`
}

// Validate checks that every field is present. The credential format is
// not inspected.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Key) == "" {
		missing = append(missing, "key")
	}
	if strings.TrimSpace(c.Instance) == "" {
		missing = append(missing, "instance")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "api key")
	}
	if len(missing) > 0 {
		return &configError{missing: missing}
	}
	return nil
}

// Summary is the public view of a Config. It never carries the credential.
type Summary struct {
	Key      string `json:"key"`
	Instance string `json:"instance"`
}

// Summary drops the credential from c.
func (c Config) Summary() Summary {
	return Summary{Key: c.Key, Instance: c.Instance}
}

// Factory builds an Integration from a stored Config.
type Factory func(Config) (Integration, error)

type configError struct {
	missing []string
}

func (e *configError) Error() string {
	return ErrInvalidConfig.Error() + ": missing " + strings.Join(e.missing, ", ")
}

func (e *configError) Unwrap() error {
	return ErrInvalidConfig
}
