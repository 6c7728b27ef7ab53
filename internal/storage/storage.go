// Package storage persists normalized events in SQLite, one row per
// calendar-day occurrence, keyed by (origin_url, start_time, end_time).
package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding events and categories.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	place_title TEXT NOT NULL DEFAULT '',
	city        TEXT NOT NULL,
	address     TEXT NOT NULL DEFAULT '',
	start_time  TEXT NOT NULL,
	end_time    TEXT NOT NULL,
	cover       TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	origin_url  TEXT NOT NULL,
	posted_id   INTEGER NOT NULL DEFAULT 0,
	origin      TEXT NOT NULL DEFAULT '',
	booking_url TEXT NOT NULL DEFAULT '',
	language    TEXT NOT NULL DEFAULT '',
	UNIQUE (origin_url, start_time, end_time)
);

CREATE TABLE IF NOT EXISTS categories (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS event_categories (
	event_id    INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
	category_id INTEGER NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
	PRIMARY KEY (event_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_events_posted ON events(posted_id);
CREATE INDEX IF NOT EXISTS idx_events_origin ON events(origin);
`

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" for an ephemeral database in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases coherent and serializes
	// writers, which SQLite wants anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
