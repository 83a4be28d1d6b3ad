// Package snapshot is the local persisted fallback cache: the last known
// JSON payload per collection plus the time it was written, surviving
// process restarts.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no snapshot has been written for the collection.
var ErrNotFound = errors.New("snapshot not found")

// Store persists collection snapshots in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot database at path. ":memory:" gives
// an ephemeral store for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS snapshots (
    collection TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    written_at TEXT NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the stored snapshot for the collection. The written-at
// timestamp is stored as ISO-8601 in UTC.
func (s *Store) Save(ctx context.Context, collection string, payload []byte, writtenAt time.Time) error {
	query := `
		INSERT INTO snapshots (collection, payload, written_at)
		VALUES (?, ?, ?)
		ON CONFLICT(collection) DO UPDATE SET
			payload = excluded.payload,
			written_at = excluded.written_at
	`

	_, err := s.db.ExecContext(ctx, query, collection, string(payload), writtenAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", collection, err)
	}
	return nil
}

// Load returns the stored snapshot and its write time.
func (s *Store) Load(ctx context.Context, collection string) ([]byte, time.Time, error) {
	query := `
		SELECT payload, written_at
		FROM snapshots
		WHERE collection = ?
	`

	var payload, writtenAt string
	err := s.db.QueryRowContext(ctx, query, collection).Scan(&payload, &writtenAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot for %s: %w", collection, err)
	}

	at, err := time.Parse(time.RFC3339, writtenAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse snapshot timestamp for %s: %w", collection, err)
	}

	return []byte(payload), at, nil
}

// Delete removes the stored snapshot for the collection, if any.
func (s *Store) Delete(ctx context.Context, collection string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE collection = ?`, collection); err != nil {
		return fmt.Errorf("failed to delete snapshot for %s: %w", collection, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
