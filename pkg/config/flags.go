package config

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag. Commands reference
// flags by registry key rather than hard-coding names, shorthands, defaults
// and descriptions inline, so "chatspace serve" and "chatspace push" cannot
// drift apart on a shared flag.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "api.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagAPIListen      = "api-listen"
	FlagAPITarget      = "api-target"
	FlagStorageDriver  = "storage-driver"
	FlagSQLite         = "sqlite"
	FlagPostgresDSN    = "postgres-dsn"
	FlagPushTimeout    = "push-timeout"
	FlagSpaceBaseURL   = "space-base-url"
	FlagEventsProvider = "events-provider"
	FlagEventsBrokers  = "events-brokers"
	FlagEventsTopic    = "events-topic"
)

// Registry holds the flag definitions shared by chatspace commands.
var Registry = FlagSet{
	FlagAPIListen:      {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the API server to listen on"},
	FlagAPITarget:      {Name: "api-target", ViperKey: "client.api_target", Description: "chatspace API server URL"},
	FlagStorageDriver:  {Name: "storage", ViperKey: "storage.driver", Description: "Integration settings store (file, sqlite, postgres, memory)"},
	FlagSQLite:         {Name: "sqlite", Shorthand: "s", ViperKey: "storage.sqlite_path", Description: "Path to the SQLite database"},
	FlagPostgresDSN:    {Name: "postgres-dsn", ViperKey: "storage.postgres_dsn", Description: "PostgreSQL connection string"},
	FlagPushTimeout:    {Name: "timeout", ViperKey: "push.timeout", Description: "Upper bound for a single content push"},
	FlagSpaceBaseURL:   {Name: "space-url", ViperKey: "space.base_url", Description: "Space API base URL"},
	FlagEventsProvider: {Name: "events", ViperKey: "events.provider", Description: "Push event publisher (none, kafka)"},
	FlagEventsBrokers:  {Name: "kafka-brokers", ViperKey: "events.brokers", Description: "Comma separated Kafka brokers"},
	FlagEventsTopic:    {Name: "kafka-topic", ViperKey: "events.topic", Description: "Kafka topic for push events"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddDurationFlag registers a duration flag on cmd from the given FlagSet.
func AddDurationFlag(cmd *cobra.Command, fs FlagSet, key string, target *time.Duration) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultDuration(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().DurationVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().DurationVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using
// definitions from fs. Call it in PreRunE after InitViper to connect flags to
// the precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

func defaultDuration(viperKey string) time.Duration {
	v := viper.New()
	setViperDefaults(v)
	return v.GetDuration(viperKey)
}
