// Package store provides the SQLite persistence layer for notes,
// categories, tags, and their associations.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/starford/mannaz/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS categories (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS notes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	content     TEXT NOT NULL DEFAULT '',
	category_id INTEGER DEFAULT 1 REFERENCES categories(id) ON DELETE SET NULL,
	is_pinned   INTEGER NOT NULL DEFAULT 0,
	is_favorite INTEGER NOT NULL DEFAULT 0,
	is_deleted  INTEGER NOT NULL DEFAULT 0,
	deleted_at  DATETIME,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS note_tags (
	note_id INTEGER NOT NULL REFERENCES notes(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	PRIMARY KEY (note_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_notes_category ON notes(category_id);
CREATE INDEX IF NOT EXISTS idx_notes_deleted  ON notes(is_deleted);
CREATE INDEX IF NOT EXISTS idx_notes_updated  ON notes(updated_at);
CREATE INDEX IF NOT EXISTS idx_notes_pinned   ON notes(is_pinned);
CREATE INDEX IF NOT EXISTS idx_notes_favorite ON notes(is_favorite);
CREATE INDEX IF NOT EXISTS idx_notetags_note  ON note_tags(note_id);
CREATE INDEX IF NOT EXISTS idx_notetags_tag   ON note_tags(tag_id);
CREATE INDEX IF NOT EXISTS idx_tags_name      ON tags(name);
`

// migrateSQL carries forward-compatible column additions for databases
// created before the trash feature. A "duplicate column name" error means
// the column is already there and is ignored.
var migrateSQL = []string{
	`ALTER TABLE notes ADD COLUMN is_deleted INTEGER NOT NULL DEFAULT 0`,
	`ALTER TABLE notes ADD COLUMN deleted_at DATETIME`,
}

// DefaultCategories are seeded on every startup with upsert-ignore
// semantics. "Default" takes id 1 on a fresh database and is the fallback
// category for new notes.
var DefaultCategories = []string{"Default", "Work", "Study", "Life"}

// DB wraps a sql.DB with note-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database, applies the schema, runs
// forward-compatible migrations, and seeds the default categories.
// It is idempotent and safe to call on an existing database file.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	for _, stmt := range migrateSQL {
		if _, err := conn.Exec(stmt); err != nil && !isDuplicateColumn(err) {
			conn.Close()
			return nil, fmt.Errorf("store: migrate: %w", err)
		}
	}
	for _, name := range DefaultCategories {
		if _, err := conn.Exec(`INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
			conn.Close()
			return nil, fmt.Errorf("store: seed categories: %w", err)
		}
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func isDuplicateColumn(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate column name")
}

// translateConstraint maps a sqlite unique-constraint violation to
// apperr.ErrConflict so callers never see raw driver errors for name
// collisions. Other errors pass through unchanged.
func translateConstraint(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) &&
		(se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return apperr.ErrConflict
	}
	return err
}
