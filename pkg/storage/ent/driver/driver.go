// Package entdriver implements storage.Driver on any database/sql handle,
// building dialect-correct SQL with ent's query builder. The sqlite and
// postgres packages open the connection and embed EntDriver.
package entdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/chatspace-app/chatspace/pkg/integration"
	"github.com/chatspace-app/chatspace/pkg/storage"
)

const (
	tableIntegrations = "integrations"

	colKey       = "integration_key"
	colInstance  = "instance"
	colAPIKey    = "api_key"
	colUpdatedAt = "updated_at"
)

// EntDriver provides storage operations over an ent SQL driver.
type EntDriver struct {
	drv     *entsql.Driver
	dialect string
	now     func() time.Time
}

// New wraps db for the given ent dialect (dialect.SQLite or
// dialect.Postgres) and creates the integrations table when missing.
func New(ctx context.Context, dialectName string, db *sql.DB) (*EntDriver, error) {
	switch dialectName {
	case dialect.SQLite, dialect.Postgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialectName)
	}

	ed := &EntDriver{
		drv:     entsql.OpenDB(dialectName, db),
		dialect: dialectName,
		now:     time.Now,
	}

	if err := ed.migrate(ctx); err != nil {
		ed.drv.Close()
		return nil, err
	}

	return ed, nil
}

func (ed *EntDriver) migrate(ctx context.Context) error {
	timeType := "datetime"
	if ed.dialect == dialect.Postgres {
		timeType = "timestamptz"
	}

	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s varchar(255) NOT NULL PRIMARY KEY,
	%s text NOT NULL,
	%s text NOT NULL,
	%s %s NOT NULL
)`, tableIntegrations, colKey, colInstance, colAPIKey, colUpdatedAt, timeType)

	if err := ed.drv.Exec(ctx, ddl, []any{}, nil); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Put upserts cfg keyed by its integration key.
func (ed *EntDriver) Put(ctx context.Context, cfg integration.Config) error {
	cfg, err := storage.ValidateForPut(cfg)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(ed.dialect).
		Insert(tableIntegrations).
		Columns(colKey, colInstance, colAPIKey, colUpdatedAt).
		Values(cfg.Key, cfg.Instance, cfg.APIKey, ed.now().UTC()).
		OnConflict(
			entsql.ConflictColumns(colKey),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := ed.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("failed to store integration config: %w", err)
	}

	return nil
}

// Get returns the config stored for key.
func (ed *EntDriver) Get(ctx context.Context, key string) (integration.Config, error) {
	key = storage.NormalizeKey(key)

	b := entsql.Dialect(ed.dialect)
	query, args := b.Select(colKey, colInstance, colAPIKey).
		From(b.Table(tableIntegrations)).
		Where(entsql.EQ(colKey, key)).
		Query()

	configs, err := ed.query(ctx, query, args)
	if err != nil {
		return integration.Config{}, err
	}
	if len(configs) == 0 {
		return integration.Config{}, storage.ErrNotFound{Key: key}
	}

	return configs[0], nil
}

// Delete removes the config stored for key.
func (ed *EntDriver) Delete(ctx context.Context, key string) error {
	key = storage.NormalizeKey(key)

	query, args := entsql.Dialect(ed.dialect).
		Delete(tableIntegrations).
		Where(entsql.EQ(colKey, key)).
		Query()

	var res sql.Result
	if err := ed.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("failed to delete integration config: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound{Key: key}
	}

	return nil
}

// List returns all configs ordered by key.
func (ed *EntDriver) List(ctx context.Context) ([]integration.Config, error) {
	b := entsql.Dialect(ed.dialect)
	query, args := b.Select(colKey, colInstance, colAPIKey).
		From(b.Table(tableIntegrations)).
		OrderBy(colKey).
		Query()

	return ed.query(ctx, query, args)
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.drv.Close()
}

func (ed *EntDriver) query(ctx context.Context, query string, args []any) ([]integration.Config, error) {
	rows := &entsql.Rows{}
	if err := ed.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("failed to query integration configs: %w", err)
	}
	defer rows.Close()

	var configs []integration.Config
	for rows.Next() {
		var cfg integration.Config
		if err := rows.Scan(&cfg.Key, &cfg.Instance, &cfg.APIKey); err != nil {
			return nil, fmt.Errorf("failed to scan integration config: %w", err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to iterate integration configs: %w", err)
	}

	return configs, nil
}
