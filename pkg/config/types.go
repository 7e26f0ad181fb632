package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the persistent chatspace configuration stored as
// config.toml in the .chatspace/ directory.
type Config struct {
	Version int           `toml:"version"`
	Storage StorageConfig `toml:"storage"`
	API     APIConfig     `toml:"api"`
	Client  ClientConfig  `toml:"client"`
	Push    PushConfig    `toml:"push"`
	Space   SpaceConfig   `toml:"space"`
	Events  EventsConfig  `toml:"events"`
}

// StorageConfig selects where integration settings are kept.
type StorageConfig struct {
	// Driver is one of "file", "sqlite", "postgres" or "memory".
	Driver      string `toml:"driver,omitempty"`
	SQLitePath  string `toml:"sqlite_path,omitempty"`
	PostgresDSN string `toml:"postgres_dsn,omitempty"`
}

// APIConfig holds API server settings.
type APIConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ClientConfig holds settings for CLI commands that talk to a running
// chatspace server. Values are full URLs.
type ClientConfig struct {
	APITarget string `toml:"api_target,omitempty"`
}

// PushConfig bounds every content push.
type PushConfig struct {
	Timeout string `toml:"timeout,omitempty"`
}

// TimeoutDuration parses Timeout, falling back to the default on empty or
// invalid values.
func (p PushConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(p.Timeout)
	if err != nil || d <= 0 {
		return defaultPushTimeout
	}
	return d
}

// SpaceConfig configures the Space actions client.
type SpaceConfig struct {
	BaseURL     string `toml:"base_url,omitempty"`
	AccessToken string `toml:"access_token,omitempty"`
}

// EventsConfig configures where push events are published.
type EventsConfig struct {
	// Provider is "none" or "kafka".
	Provider string `toml:"provider,omitempty"`
	// Brokers is a comma separated list of host:port pairs.
	Brokers string `toml:"brokers,omitempty"`
	Topic   string `toml:"topic,omitempty"`
}

// BrokerList splits Brokers into trimmed, non-empty addresses.
func (e EventsConfig) BrokerList() []string {
	var out []string
	for b := range strings.SplitSeq(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get    func(c *Config) string
	set    func(c *Config, v string) error
	secret bool
}

func oneOf(key string, allowed ...string) func(string) error {
	return func(v string) error {
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("invalid value for %s: %q (allowed: %s)", key, v, strings.Join(allowed, ", "))
	}
}

var (
	validStorageDriver  = oneOf("storage.driver", StorageDriverFile, StorageDriverSQLite, StorageDriverPostgres, StorageDriverMemory)
	validEventsProvider = oneOf("events.provider", EventsProviderNone, EventsProviderKafka)
)

// configKeys is the authoritative map of all supported config keys.
var configKeys = map[string]configKeyInfo{
	"storage.driver": {
		get: func(c *Config) string { return c.Storage.Driver },
		set: func(c *Config, v string) error {
			if err := validStorageDriver(v); err != nil {
				return err
			}
			c.Storage.Driver = v
			return nil
		},
	},
	"storage.sqlite_path": {
		get: func(c *Config) string { return c.Storage.SQLitePath },
		set: func(c *Config, v string) error { c.Storage.SQLitePath = v; return nil },
	},
	"storage.postgres_dsn": {
		get:    func(c *Config) string { return c.Storage.PostgresDSN },
		set:    func(c *Config, v string) error { c.Storage.PostgresDSN = v; return nil },
		secret: true,
	},
	"api.listen": {
		get: func(c *Config) string { return c.API.Listen },
		set: func(c *Config, v string) error { c.API.Listen = v; return nil },
	},
	"client.api_target": {
		get: func(c *Config) string { return c.Client.APITarget },
		set: func(c *Config, v string) error { c.Client.APITarget = v; return nil },
	},
	"push.timeout": {
		get: func(c *Config) string { return c.Push.Timeout },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for push.timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("invalid value for push.timeout: %s must be positive", v)
			}
			c.Push.Timeout = v
			return nil
		},
	},
	"space.base_url": {
		get: func(c *Config) string { return c.Space.BaseURL },
		set: func(c *Config, v string) error { c.Space.BaseURL = strings.TrimRight(v, "/"); return nil },
	},
	"space.access_token": {
		get:    func(c *Config) string { return c.Space.AccessToken },
		set:    func(c *Config, v string) error { c.Space.AccessToken = v; return nil },
		secret: true,
	},
	"events.provider": {
		get: func(c *Config) string { return c.Events.Provider },
		set: func(c *Config, v string) error {
			if err := validEventsProvider(v); err != nil {
				return err
			}
			c.Events.Provider = v
			return nil
		},
	},
	"events.brokers": {
		get: func(c *Config) string { return c.Events.Brokers },
		set: func(c *Config, v string) error { c.Events.Brokers = v; return nil },
	},
	"events.topic": {
		get: func(c *Config) string { return c.Events.Topic },
		set: func(c *Config, v string) error { c.Events.Topic = v; return nil },
	},
}
