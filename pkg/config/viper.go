package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/chatspace-app/chatspace/pkg/dotdir"
)

// spaceTokenEnv is read when space.access_token is unset everywhere else.
const spaceTokenEnv = "SPACE_ACCESS_TOKEN"

// InitViper creates and returns a configured *viper.Viper.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (CHATSPACE_API_LISTEN, CHATSPACE_PUSH_TIMEOUT, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")

	target, err := dotdir.NewManager().Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}
	v.AddConfigPath(target)

	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("CHATSPACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materialises a Config from the merged viper view.
func FromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Version: v.GetInt("version"),
		Storage: StorageConfig{
			Driver:      v.GetString("storage.driver"),
			SQLitePath:  v.GetString("storage.sqlite_path"),
			PostgresDSN: v.GetString("storage.postgres_dsn"),
		},
		API: APIConfig{
			Listen: v.GetString("api.listen"),
		},
		Client: ClientConfig{
			APITarget: v.GetString("client.api_target"),
		},
		Push: PushConfig{
			Timeout: v.GetString("push.timeout"),
		},
		Space: SpaceConfig{
			BaseURL:     v.GetString("space.base_url"),
			AccessToken: v.GetString("space.access_token"),
		},
		Events: EventsConfig{
			Provider: v.GetString("events.provider"),
			Brokers:  v.GetString("events.brokers"),
			Topic:    v.GetString("events.topic"),
		},
	}

	if cfg.Space.AccessToken == "" {
		cfg.Space.AccessToken = os.Getenv(spaceTokenEnv)
	}

	applyDefaults(cfg)

	return cfg
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", d.Storage.PostgresDSN)

	v.SetDefault("api.listen", d.API.Listen)
	v.SetDefault("client.api_target", d.Client.APITarget)

	v.SetDefault("push.timeout", d.Push.Timeout)

	v.SetDefault("space.base_url", d.Space.BaseURL)
	v.SetDefault("space.access_token", d.Space.AccessToken)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
}
