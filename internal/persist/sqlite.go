package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteStore is the local single-file backend: one row per layout holding
// the latest envelope as a JSON blob.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "planbay.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS layouts (
		layout_id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		payload BLOB NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create layouts table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, layoutID, name string, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO layouts (layout_id, name, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(layout_id) DO UPDATE SET name = excluded.name,
			payload = excluded.payload, updated_at = excluded.updated_at`,
		layoutID, name, payload, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert layout: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadLatest(ctx context.Context, layoutID string) (Envelope, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM layouts WHERE layout_id = ?`, layoutID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Envelope{}, ErrNotFound
		}
		return Envelope{}, fmt.Errorf("load layout: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode layout: %w", err)
	}
	return env, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layout_id, name, updated_at FROM layouts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []LayoutInfo
	for rows.Next() {
		var info LayoutInfo
		if err := rows.Scan(&info.ID, &info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, layoutID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM layouts WHERE layout_id = ?`, layoutID)
	if err != nil {
		return fmt.Errorf("delete layout: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
