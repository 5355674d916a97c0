// Package api exposes the layout engine over HTTP: named layouts backed by
// snapshot persistence, with mutations submitted as operations.
package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/planbay/planbay/internal/editor"
	"github.com/planbay/planbay/internal/persist"
	"github.com/planbay/planbay/internal/scene"
	"github.com/planbay/planbay/internal/typeid"
)

var ErrNotFound = errors.New("layout not found")

// Session is one open layout: an editor instance bound to a layout id.
type Session struct {
	ID     string
	Editor *editor.Editor
}

// Service keeps open sessions in memory and snapshots them to the persist
// store. One editor per layout; reopening a layout reuses the live session.
type Service struct {
	store     persist.Store
	retention time.Duration
	opts      editor.Options

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewService(store persist.Store, retention time.Duration, opts editor.Options) *Service {
	if opts.Catalog == nil {
		opts.Catalog = scene.DefaultCatalog()
	}
	return &Service{
		store:     store,
		retention: retention,
		opts:      opts,
		sessions:  make(map[string]*Session),
	}
}

func (s *Service) newSession(id string) *Session {
	return &Session{ID: id, Editor: editor.New(s.opts)}
}

// Create starts a new named layout and persists its initial snapshot.
func (s *Service) Create(ctx context.Context, name string) (*Session, error) {
	sess := s.newSession(typeid.NewLayoutID())
	sess.Editor.NewLayout(name)

	if err := s.saveSession(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Open returns the live session for a layout, restoring it from the latest
// persisted snapshot when needed. A stale or incompatible snapshot is
// treated as absent.
func (s *Service) Open(ctx context.Context, layoutID string) (*Session, error) {
	s.mu.Lock()
	if sess, ok := s.sessions[layoutID]; ok {
		s.mu.Unlock()
		return sess, nil
	}
	s.mu.Unlock()

	env, err := s.store.LoadLatest(ctx, layoutID)
	if err != nil {
		if errors.Is(err, persist.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load layout: %w", err)
	}
	if !env.Usable(s.retention, time.Now()) {
		return nil, ErrNotFound
	}

	sess := s.newSession(layoutID)
	sess.Editor.LoadScene(env.State)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[layoutID]; ok {
		return existing, nil
	}
	s.sessions[layoutID] = sess
	return sess, nil
}

// Save snapshots the session's current scene.
func (s *Service) Save(ctx context.Context, layoutID string) error {
	sess, err := s.Open(ctx, layoutID)
	if err != nil {
		return err
	}
	return s.saveSession(ctx, sess)
}

func (s *Service) saveSession(ctx context.Context, sess *Session) error {
	sc := sess.Editor.Scene()
	env := persist.NewEnvelope(sc)
	if err := s.store.SaveSnapshot(ctx, sess.ID, sc.Metadata.Name, env); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// List enumerates persisted layouts.
func (s *Service) List(ctx context.Context) ([]persist.LayoutInfo, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	return infos, nil
}

// Delete drops a layout's session and every persisted snapshot.
func (s *Service) Delete(ctx context.Context, layoutID string) error {
	s.mu.Lock()
	delete(s.sessions, layoutID)
	s.mu.Unlock()

	err := s.store.Delete(ctx, layoutID)
	if errors.Is(err, persist.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
