package database

import "fmt"

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_urls",
		SQL: `
			CREATE TABLE IF NOT EXISTS urls (
				id INTEGER PRIMARY KEY,
				seen INTEGER NOT NULL,
				channel TEXT NOT NULL,
				nick TEXT NOT NULL,
				url TEXT NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_urls_url_channel ON urls(url, channel);
			CREATE INDEX IF NOT EXISTS idx_urls_seen ON urls(seen);
		`,
	},
}

// runMigrations applies all pending migrations in version order.
func (db *DB) runMigrations() error {
	if err := db.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	currentVersion, err := db.getCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		if err := db.applyMigration(migration); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w",
				migration.Version, migration.Name, err)
		}
	}

	return nil
}

func (db *DB) ensureMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty BOOLEAN NOT NULL DEFAULT 0
		)
	`
	_, err := db.conn.Exec(query)
	return err
}

func (db *DB) getCurrentVersion() (int, error) {
	var version int
	err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations WHERE dirty = 0").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

func (db *DB) applyMigration(migration Migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec("INSERT INTO schema_migrations (version, dirty) VALUES (?, 1)", migration.Version); err != nil {
		return fmt.Errorf("failed to mark migration dirty: %w", err)
	}

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if _, err := tx.Exec("UPDATE schema_migrations SET dirty = 0 WHERE version = ?", migration.Version); err != nil {
		return fmt.Errorf("failed to mark migration clean: %w", err)
	}

	return tx.Commit()
}
