package config

import "time"

const (
	StorageDriverFile     = "file"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	EventsProviderNone  = "none"
	EventsProviderKafka = "kafka"
)

const (
	defaultStorageDriver = StorageDriverFile
	defaultSQLiteFile    = "chatspace.sqlite"

	defaultAPIListen       = ":8082"
	defaultClientAPITarget = "http://localhost:8082"

	defaultPushTimeout = 30 * time.Second

	defaultSpaceBaseURL = "https://deta.space/api/v0"

	defaultEventsProvider = EventsProviderNone
	defaultEventsTopic    = "chatspace.pushes"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
		},
		Push: PushConfig{
			Timeout: defaultPushTimeout.String(),
		},
		Space: SpaceConfig{
			BaseURL: defaultSpaceBaseURL,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}

// DefaultSQLiteFile is the database file name used inside the .chatspace/
// directory when storage.driver is sqlite and no path is configured.
func DefaultSQLiteFile() string {
	return defaultSQLiteFile
}
