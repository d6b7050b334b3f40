// Package sqlite stores checkpoints in a single SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/cinegraph/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	thread_id     TEXT NOT NULL,
	namespace     TEXT NOT NULL,
	checkpoint_id TEXT NOT NULL,
	step          INTEGER NOT NULL,
	next_node     TEXT NOT NULL DEFAULT '',
	payload       TEXT NOT NULL,
	updated_at    DATETIME NOT NULL,
	PRIMARY KEY (thread_id, namespace, checkpoint_id)
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_updated ON checkpoints(updated_at);
`

// Store implements ports.CheckpointStore on SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (or creates) the database at path and prepares the schema.
func New(path string) (*Store, error) {
	if path == "" {
		path = filepath.Join(".cinegraph", "checkpoints.db")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY and keeps :memory: on one connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000;`); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save upserts the checkpoint row.
func (s *Store) Save(ctx context.Context, cp *domain.Checkpoint) error {
	payload, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	updated := cp.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checkpoints (thread_id, namespace, checkpoint_id, step, next_node, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (thread_id, namespace, checkpoint_id) DO UPDATE SET
			step = excluded.step,
			next_node = excluded.next_node,
			payload = excluded.payload,
			updated_at = excluded.updated_at`,
		cp.Key.ThreadID, cp.Key.Namespace, cp.Key.CheckpointID,
		cp.Step, string(cp.Next), string(payload), updated,
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load reads the checkpoint payload for key.
func (s *Store) Load(ctx context.Context, key domain.CheckpointKey) (*domain.Checkpoint, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM checkpoints WHERE thread_id = ? AND namespace = ? AND checkpoint_id = ?`,
		key.ThreadID, key.Namespace, key.CheckpointID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCheckpointNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal([]byte(payload), &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the row for key.
func (s *Store) Delete(ctx context.Context, key domain.CheckpointKey) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM checkpoints WHERE thread_id = ? AND namespace = ? AND checkpoint_id = ?`,
		key.ThreadID, key.Namespace, key.CheckpointID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// List returns every key, most recently updated first.
func (s *Store) List(ctx context.Context) ([]domain.CheckpointKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT thread_id, namespace, checkpoint_id FROM checkpoints ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var keys []domain.CheckpointKey
	for rows.Next() {
		var k domain.CheckpointKey
		if err := rows.Scan(&k.ThreadID, &k.Namespace, &k.CheckpointID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
