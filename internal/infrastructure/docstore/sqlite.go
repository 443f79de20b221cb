package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/macronotes/backend/internal/domain"
)

// SQLiteStore persists macros blocks as ordered line lists keyed by
// block ID. Lines are stored newline-joined; block IDs are opaque.
type SQLiteStore struct {
	db *sql.DB
}

// New opens (or creates) the blocks database at dbPath and ensures the
// schema exists.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open blocks database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS blocks (
        id TEXT PRIMARY KEY,
        lines TEXT NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_blocks_updated_at ON blocks(updated_at);
    `
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetBlockLines returns the ordered raw line list of one block,
// including its id: line and all bullets.
func (s *SQLiteStore) GetBlockLines(ctx context.Context, id string) ([]string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT lines FROM blocks WHERE id = ?`, id).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrBlockNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}

// SaveBlockLines replaces the block's line list, creating the block if
// it does not exist.
func (s *SQLiteStore) SaveBlockLines(ctx context.Context, id string, lines []string) error {
	query := `
        INSERT INTO blocks (id, lines, updated_at) VALUES (?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET lines = excluded.lines, updated_at = excluded.updated_at
    `
	if _, err := s.db.ExecContext(ctx, query, id, strings.Join(lines, "\n"), time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return nil
}

// ListBlockIDs returns all stored block IDs in lexical order.
func (s *SQLiteStore) ListBlockIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM blocks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFailure, err)
	}
	return ids, nil
}
