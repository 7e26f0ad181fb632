// Package storageutils opens the storage.Driver selected in config.
package storageutils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chatspace-app/chatspace/pkg/config"
	"github.com/chatspace-app/chatspace/pkg/dotdir"
	"github.com/chatspace-app/chatspace/pkg/storage"
	"github.com/chatspace-app/chatspace/pkg/storage/file"
	"github.com/chatspace-app/chatspace/pkg/storage/inmemory"
	"github.com/chatspace-app/chatspace/pkg/storage/postgres"
	"github.com/chatspace-app/chatspace/pkg/storage/sqlite"
)

// SQLiteEnvVar overrides the SQLite database location when no path is
// configured.
const SQLiteEnvVar = "CHATSPACE_SQLITE"

// NewDriver opens the driver named by cfg.Driver. configDir is the
// .chatspace/ override used by the file driver and the default SQLite path.
func NewDriver(ctx context.Context, cfg config.StorageConfig, configDir string) (storage.Driver, error) {
	switch cfg.Driver {
	case config.StorageDriverFile, "":
		return file.NewDriver(configDir)

	case config.StorageDriverMemory:
		return inmemory.NewDriver(), nil

	case config.StorageDriverSQLite:
		path, err := ResolveSQLitePath(cfg.SQLitePath, configDir)
		if err != nil {
			return nil, err
		}
		return sqlite.NewDriver(ctx, path)

	case config.StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.driver is %q but storage.postgres_dsn is empty", cfg.Driver)
		}
		return postgres.NewDriver(ctx, cfg.PostgresDSN)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// ResolveSQLitePath picks the database file: explicit path, then
// $CHATSPACE_SQLITE, then chatspace.sqlite inside the .chatspace/ directory.
func ResolveSQLitePath(override, configDir string) (string, error) {
	if override != "" {
		return override, nil
	}

	if envPath := strings.TrimSpace(os.Getenv(SQLiteEnvVar)); envPath != "" {
		return envPath, nil
	}

	path, err := dotdir.NewManager().File(configDir, config.DefaultSQLiteFile())
	if err != nil {
		return "", fmt.Errorf("resolving sqlite path: %w", err)
	}
	return path, nil
}
