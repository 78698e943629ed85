// Package database persists the URL history used for duplicate-link
// detection. Storage is sqlite in WAL mode; the store is append-only plus
// one aggregate query.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the database connection and provides access to the URL history.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (creating if needed) the URL history database at dbPath.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}

	if err := db.configureWAL(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to configure WAL mode: %w", err)
	}

	if err := db.runMigrations(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// NewTest creates an in-memory database with the full schema applied.
func NewTest() (*DB, error) {
	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	db := &DB{conn: conn, path: ":memory:"}

	if err := db.runMigrations(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations on test database: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// configureWAL enables Write-Ahead Logging for better concurrency.
func (db *DB) configureWAL() error {
	var journalMode string
	if err := db.conn.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("failed to enable WAL mode: got %s instead", journalMode)
	}

	if _, err := db.conn.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to configure synchronous mode: %w", err)
	}

	// Wait instead of failing when the writer holds the lock.
	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("failed to configure busy timeout: %w", err)
	}

	return nil
}
