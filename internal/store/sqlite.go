package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	sqlite "modernc.org/sqlite"
)

// SQLITE_CONSTRAINT_FOREIGNKEY extended result code.
const sqliteConstraintForeignKey = 787

// SQLiteStore implements the Store interface using a SQLite database.
type SQLiteStore struct {
	db  *sqlx.DB
	hub *feedHub

	// writeMu serializes mutations with their feed publication so
	// subscribers observe events in apply order.
	writeMu sync.Mutex
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode and foreign-key enforcement, and runs any pending
// schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// A single connection keeps in-memory databases coherent and
	// avoids SQLITE_BUSY between concurrent writers.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Foreign keys must be on: assignment validation relies on the
	// store rejecting writes that reference unknown users.
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db, hub: newFeedHub()}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close shuts down the change feed and closes the underlying database
// connection. All open subscriptions are closed.
func (s *SQLiteStore) Close() error {
	s.hub.closeAll()
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	// Check if schema_version table exists.
	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration %d: %w", m.version, err)
		}
	}

	return nil
}

// classify wraps a raw driver error as a *Error with the right kind.
// Foreign-key violations are detected through the driver's structured
// result code, not by matching on message text.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) && se.Code() == sqliteConstraintForeignKey {
		return &Error{Kind: KindForeignKey, Op: op, Err: err}
	}
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// notFound builds a KindNotFound error for the given row.
func notFound(op string, id int64) error {
	return &Error{Kind: KindNotFound, Op: fmt.Sprintf("%s: row %d not found", op, id)}
}
