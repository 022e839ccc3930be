package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	models "github.com/CodeAndHammer/mysterybox/internal/models"
	util "github.com/CodeAndHammer/mysterybox/internal/util"
)

const createStateTable = `
CREATE TABLE IF NOT EXISTS game_state (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	document TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore keeps the JSON document in a single-row table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := util.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createStateTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create game_state table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*models.GameState, error) {
	var document string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM game_state WHERE id = 1`).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewEmptyState(), nil
		}
		return nil, fmt.Errorf("failed to query game state: %w", err)
	}
	return decodeState([]byte(document))
}

func (s *SQLiteStore) Save(ctx context.Context, state *models.GameState) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	q := `
	INSERT OR REPLACE INTO game_state (id, document, updated_at)
	VALUES (1, ?, CURRENT_TIMESTAMP);
	`
	if _, err := s.db.ExecContext(ctx, q, string(data)); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
