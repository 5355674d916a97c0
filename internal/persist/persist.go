// Package persist stores layout snapshots. Two backends share the same
// contract: Postgres for deployments and a local SQLite file otherwise.
package persist

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("layout not found")

// LayoutInfo is the listing row for a persisted layout.
type LayoutInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updatedAt"`
}

// Store persists one envelope per layout, newest wins.
type Store interface {
	SaveSnapshot(ctx context.Context, layoutID, name string, env Envelope) error
	LoadLatest(ctx context.Context, layoutID string) (Envelope, error)
	List(ctx context.Context) ([]LayoutInfo, error)
	Delete(ctx context.Context, layoutID string) error
	Close() error
}
