package storage

import (
	"database/sql"
	"fmt"
)

// Schema version tracking
const currentSchemaVersion = 2

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createBaselineTables(tx); err != nil {
			return err
		}
		if err := createFactsCacheTable(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations runs any pending schema migrations
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	switch {
	case version == currentSchemaVersion:
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	case version > currentSchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	case version == 0:
		// Interrupted initialization: the tables use IF NOT EXISTS.
		return db.initializeSchema()
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)
	return db.WithTx(func(tx *sql.Tx) error {
		for v := version; v < currentSchemaVersion; v++ {
			migrate, ok := migrations[v+1]
			if !ok {
				return fmt.Errorf("no migration to schema version %d", v+1)
			}
			if err := migrate(tx); err != nil {
				return fmt.Errorf("migration to version %d failed: %w", v+1, err)
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// migrations maps a schema version to the step that produces it from the
// previous version.
var migrations = map[int]func(*sql.Tx) error{
	2: createFactsCacheTable,
}

// getSchemaVersion gets the current schema version
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)

	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

// setSchemaVersion sets the schema version
func setSchemaVersion(tx *sql.Tx, version int) error {
	_, err := tx.Exec("DELETE FROM schema_version")
	if err != nil {
		return err
	}
	_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

// createSchemaVersionTable creates the schema_version tracking table
func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createBaselineTables creates baseline_runs and baseline_entries. An entry
// belongs to the run that first recorded its fingerprint.
func createBaselineTables(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS baseline_runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			tool_version TEXT NOT NULL,
			entry_count INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS baseline_entries (
			fingerprint TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES baseline_runs(id) ON DELETE CASCADE,
			rule_id TEXT NOT NULL,
			symbol_kind TEXT NOT NULL,
			symbol_name TEXT NOT NULL,
			container TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL DEFAULT '',
			line INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_baseline_entries_rule ON baseline_entries(rule_id)`)
	return err
}

// createFactsCacheTable creates facts_cache, one row per fact source.
func createFactsCacheTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS facts_cache (
			source TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			format TEXT NOT NULL,
			symbol_count INTEGER NOT NULL DEFAULT 0,
			symbols_zst BLOB NOT NULL,
			created_at TEXT NOT NULL
		)
	`)
	return err
}
