// Package poster caches normalized poster artwork keyed by filename.
package poster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when no poster is cached under a filename.
var ErrNotFound = errors.New("poster not found")

// Store persists poster bytes in sqlite.
type Store struct {
	db *sql.DB
}

// NewStore creates a poster store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Lookup reports whether a poster is cached under filename.
func (s *Store) Lookup(ctx context.Context, filename string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM posters WHERE filename = ?", filename,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup poster: %w", err)
	}
	return n > 0, nil
}

// Push stores poster bytes under filename. Concurrent writers for the same
// filename are last-write-wins.
func (s *Store) Push(ctx context.Context, filename string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posters (filename, data, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET data = excluded.data, created_at = excluded.created_at`,
		filename, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("push poster: %w", err)
	}
	return nil
}

// Get retrieves cached poster bytes.
// Returns ErrNotFound if nothing is cached under filename.
func (s *Store) Get(ctx context.Context, filename string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM posters WHERE filename = ?", filename,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get poster %s: %w", filename, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get poster %s: %w", filename, err)
	}
	return data, nil
}
