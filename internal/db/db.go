// Package db opens the site's SQLite database and applies its schema.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 2

// Init opens (creating if needed) the database at path and migrates it.
func Init(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// Pragmas in the DSN apply to every pooled connection.
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(path, 0o600)
	return db, nil
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// 0 -> 1: contact messages and privacy-conscious visitor tracking
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS messages (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  email      TEXT NOT NULL,
		  subject    TEXT NOT NULL,
		  body       TEXT NOT NULL,
		  timestamp  INTEGER NOT NULL,
		  read       INTEGER NOT NULL DEFAULT 0,
		  status     TEXT NOT NULL DEFAULT 'new'
		);

		CREATE INDEX IF NOT EXISTS idx_messages_timestamp
		ON messages(timestamp DESC);

		CREATE TABLE IF NOT EXISTS visitors (
		  id         INTEGER PRIMARY KEY AUTOINCREMENT,
		  hashed_ip  TEXT NOT NULL,
		  user_agent TEXT,
		  path       TEXT,
		  timestamp  INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visitors_timestamp
		ON visitors(timestamp DESC);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// 1 -> 2: persisted catalog snapshots
	if version < 2 {
		schema := `
		CREATE TABLE IF NOT EXISTS catalog_cache (
		  key       TEXT PRIMARY KEY,
		  payload   BLOB NOT NULL,
		  stored_at INTEGER NOT NULL
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 2 failed: %w", err)
		}
		if err := SetUserVersion(db, 2); err != nil {
			return err
		}
	}

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version)); err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
