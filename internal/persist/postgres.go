package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planbay/planbay/internal/typeid"
)

// PostgresStore keeps a versioned snapshot row per save, newest version
// wins on load.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	_, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS layout_snapshots (
		id TEXT PRIMARY KEY,
		layout_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		version INT NOT NULL,
		document JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return nil, fmt.Errorf("create snapshots table: %w", err)
	}
	_, err = pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS layout_snapshots_layout_version
		ON layout_snapshots (layout_id, version DESC)`)
	if err != nil {
		return nil, fmt.Errorf("create snapshots index: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, layoutID, name string, env Envelope) error {
	doc, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	var version int32
	err = s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM layout_snapshots WHERE layout_id = $1`,
		layoutID).Scan(&version)
	if err != nil {
		return fmt.Errorf("current version: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO layout_snapshots (id, layout_id, name, version, document) VALUES ($1, $2, $3, $4, $5)`,
		typeid.NewSnapshotID(), layoutID, name, version+1, doc)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadLatest(ctx context.Context, layoutID string) (Envelope, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM layout_snapshots WHERE layout_id = $1 ORDER BY version DESC LIMIT 1`,
		layoutID).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Envelope{}, ErrNotFound
		}
		return Envelope{}, fmt.Errorf("load snapshot: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(doc, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return env, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT ON (layout_id) layout_id, name, created_at
		FROM layout_snapshots ORDER BY layout_id, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var out []LayoutInfo
	for rows.Next() {
		var info LayoutInfo
		var createdAt time.Time
		if err := rows.Scan(&info.ID, &info.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		info.UpdatedAt = createdAt.UTC().Format(time.RFC3339)
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Delete(ctx context.Context, layoutID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM layout_snapshots WHERE layout_id = $1`, layoutID)
	if err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close is a no-op: the pool is owned by main.
func (s *PostgresStore) Close() error { return nil }
