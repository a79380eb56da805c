package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	name       TEXT PRIMARY KEY,
	sequence   INTEGER NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);`

const upsert = `
INSERT INTO checkpoints (name, sequence, updated_at)
VALUES (?, ?, strftime('%s', 'now'))
ON CONFLICT(name) DO UPDATE SET
	sequence   = excluded.sequence,
	updated_at = excluded.updated_at;`

// SQLiteStore persists checkpoints in a local SQLite database
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the checkpoint database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint database %q: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create checkpoint schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Save records the position for one name, replacing any previous one
func (s *SQLiteStore) Save(ctx context.Context, name string, sequence int64) error {
	if _, err := s.db.ExecContext(ctx, upsert, name, sequence); err != nil {
		return fmt.Errorf("failed to save checkpoint %q: %w", name, err)
	}
	return nil
}

// SaveAll records every position in a single transaction so a crash
// never leaves a half-written snapshot
func (s *SQLiteStore) SaveAll(ctx context.Context, positions map[string]int64) error {
	if len(positions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin checkpoint transaction: %w", err)
	}

	for name, sequence := range positions {
		if _, err := tx.ExecContext(ctx, upsert, name, sequence); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to save checkpoint %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit checkpoint transaction: %w", err)
	}
	return nil
}

// Load returns the recorded position for name, and whether one exists
func (s *SQLiteStore) Load(ctx context.Context, name string) (int64, bool, error) {
	var sequence int64
	err := s.db.QueryRowContext(ctx, `SELECT sequence FROM checkpoints WHERE name = ?`, name).Scan(&sequence)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load checkpoint %q: %w", name, err)
	}
	return sequence, true, nil
}

// Close releases the underlying database handle
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
