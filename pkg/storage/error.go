package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/chatspace-app/chatspace/pkg/integration"
)

// ErrNotFound is returned when no configuration is stored for a key.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	if e.Key == "" {
		return "integration config not found"
	}

	return "integration config not found: " + e.Key
}

// IsNotFound reports whether err is, or wraps, an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}

// ValidateForPut normalises the key and rejects incomplete configs. Every
// driver calls it before writing.
func ValidateForPut(cfg integration.Config) (integration.Config, error) {
	cfg.Key = strings.ToLower(strings.TrimSpace(cfg.Key))
	cfg.Instance = strings.TrimSpace(cfg.Instance)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if err := cfg.Validate(); err != nil {
		return integration.Config{}, fmt.Errorf("storing integration config: %w", err)
	}

	return cfg, nil
}

// NormalizeKey lower-cases and trims an integration key for lookups.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
