// Package sqlite provides a SQLite-backed integration settings store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	_ "github.com/mattn/go-sqlite3"

	entdriver "github.com/chatspace-app/chatspace/pkg/storage/ent/driver"
)

// Driver implements storage.Driver using SQLite via the ent driver.
type Driver struct {
	*entdriver.EntDriver
}

// NewDriver opens (or creates) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(ctx context.Context, dbPath string) (*Driver, error) {
	// github.com/mattn/go-sqlite3 registers itself as "sqlite3"
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	ed, err := entdriver.New(ctx, dialect.SQLite, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{EntDriver: ed}, nil
}
