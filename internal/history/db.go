// Package history persists the evaluation history of optimization runs in a
// sqlite database: every parameter combination scored by the objective,
// together with the round and acquisition utility it was selected at.
package history

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the sqlite connection used for history persistence.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the history database at path and applies all
// pending migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	// Serialize writers; sqlite handles one writer at a time anyway and
	// this avoids gratuitous SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)

	wrapped := &DB{db}
	if err := wrapped.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return wrapped, nil
}

// migrateUp applies all pending embedded migrations. It is a no-op when the
// schema is already at the latest version.
func (db *DB) migrateUp() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading embedded migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating sqlite migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}
	// Note: we don't close m here because it would close the underlying DB
	// connection.

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// retryOnBusy retries op on transient sqlite lock contention with a short
// backoff. Non-busy errors fail immediately.
func retryOnBusy(op func() error) error {
	const maxAttempts = 5
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !isBusyErr(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return err
}

func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
