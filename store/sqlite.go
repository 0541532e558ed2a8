package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a persistent Store backed by a local SQLite database. Values are
// stored as JSON blobs, so anything round-trippable through encoding/json can
// be registered.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at the given path, enables WAL
// mode, and migrates the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("schema migration failed: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// migrate creates the params table if it doesn't exist.
func (s *SQLite) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS params (
		name TEXT PRIMARY KEY,
		value JSON NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create params table: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, name string) (any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM params WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query param %q: %w", name, err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("failed to decode param %q: %w", name, err)
	}
	return value, nil
}

func (s *SQLite) Set(ctx context.Context, name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode param %q: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO params (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, name, raw)
	if err != nil {
		return fmt.Errorf("failed to store param %q: %w", name, err)
	}
	return nil
}

func (s *SQLite) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM params ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list params: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan param name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM params"); err != nil {
		return fmt.Errorf("failed to clear params: %w", err)
	}
	return nil
}
