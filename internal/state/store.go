// Package state holds the single authoritative scene model. Every read
// returns a deep copy and every write funnels through the store, so no
// caller can mutate a history snapshot after the fact.
package state

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/planbay/planbay/internal/scene"
)

// Subscriber receives a deep copy of the scene after every committed write.
type Subscriber func(scene.Scene)

// Store is the authoritative scene holder. All methods are safe for
// concurrent use; notification is synchronous with the write.
type Store struct {
	mu      sync.Mutex
	current scene.Scene
	subs    map[int]Subscriber
	nextSub int
}

func New() *Store {
	return &Store{
		current: scene.NewEmptyScene("Untitled Layout"),
		subs:    make(map[int]Subscriber),
	}
}

// GetState returns a deep copy of the scene. Render handles are transient
// and absent from the copy.
func (s *Store) GetState() scene.Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Subscribe registers a subscriber and returns its unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Get reads a dotted path ("floorPlan.widthFt", "items.0.angleDeg") from
// the scene. A missing or malformed path reads as absent, never panics.
func (s *Store) Get(path string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(s.current)
	if err != nil {
		slog.Error("state get: marshal scene", "error", err)
		return nil, false
	}
	res := gjson.GetBytes(data, path)
	if !res.Exists() {
		return nil, false
	}
	return res.Value(), true
}

// Set writes a single dotted path. Returns false (and logs) when the path
// or value cannot be applied; the scene is untouched in that case.
func (s *Store) Set(path string, value any) bool {
	s.mu.Lock()
	data, err := json.Marshal(s.current)
	if err != nil {
		s.mu.Unlock()
		slog.Error("state set: marshal scene", "error", err)
		return false
	}
	updated, err := sjson.SetBytes(data, path, value)
	if err != nil {
		s.mu.Unlock()
		slog.Warn("state set: bad path", "path", path, "error", err)
		return false
	}
	if !s.adoptLocked(updated) {
		s.mu.Unlock()
		slog.Warn("state set: value does not fit scene", "path", path)
		return false
	}
	snapshot := s.touchAndSnapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return true
}

// SetState deep-merges a partial scene object: nested maps merge key by
// key, everything else replaces. Subscribers see the merged scene.
func (s *Store) SetState(partial map[string]any) bool {
	if len(partial) == 0 {
		return true
	}
	s.mu.Lock()
	data, err := json.Marshal(s.current)
	if err != nil {
		s.mu.Unlock()
		slog.Error("state merge: marshal scene", "error", err)
		return false
	}
	var base map[string]any
	if err := json.Unmarshal(data, &base); err != nil {
		s.mu.Unlock()
		slog.Error("state merge: decode scene", "error", err)
		return false
	}
	merged, err := json.Marshal(deepMerge(base, partial))
	if err != nil {
		s.mu.Unlock()
		slog.Warn("state merge: encode merged scene", "error", err)
		return false
	}
	if !s.adoptLocked(merged) {
		s.mu.Unlock()
		slog.Warn("state merge: partial does not fit scene")
		return false
	}
	snapshot := s.touchAndSnapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return true
}

// LoadState replaces the floor plan, items, settings, and metadata from a
// saved scene, defaulting missing or malformed fields instead of failing.
// The modified timestamp is taken from the loaded metadata, not stamped,
// so replaying a snapshot restores it bit for bit.
func (s *Store) LoadState(saved scene.Scene) {
	s.mu.Lock()
	handles := s.handlesLocked()
	next := sanitize(saved)
	reattachHandles(&next, handles)
	s.current = next
	snapshot := s.current.Clone()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Reset restores the empty default scene, preserving only user settings.
func (s *Store) Reset() {
	s.mu.Lock()
	settings := s.current.Settings
	s.current = scene.NewEmptyScene(s.current.Metadata.Name)
	if settings != nil {
		s.current.Settings = settings
	}
	snapshot := s.current.Clone()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
}

// Mutate applies fn to a working copy of the scene and commits the result.
// It exists for multi-field writes (add item, reorder) that would be
// awkward as path sets; fn returning false abandons the write.
func (s *Store) Mutate(fn func(*scene.Scene) bool) bool {
	s.mu.Lock()
	working := s.current.Clone()
	if !fn(&working) {
		s.mu.Unlock()
		return false
	}
	handles := s.handlesLocked()
	reattachHandles(&working, handles)
	s.current = working
	snapshot := s.touchAndSnapshotLocked()
	subs := s.subscribersLocked()
	s.mu.Unlock()

	notify(subs, snapshot)
	return true
}

// SetRenderHandle attaches or clears the opaque renderer reference for an
// item. Handles are transient: no timestamp update, no notification, and
// they never appear in snapshots.
func (s *Store) SetRenderHandle(itemID string, handle any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.current.ItemIndex(itemID); i >= 0 {
		s.current.Items[i].RenderHandle = handle
	}
}

// RenderHandle returns the renderer reference for an item, which may be
// absent at any time.
func (s *Store) RenderHandle(itemID string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.current.ItemIndex(itemID); i >= 0 && s.current.Items[i].RenderHandle != nil {
		return s.current.Items[i].RenderHandle, true
	}
	return nil, false
}

// adoptLocked decodes raw JSON into the scene, keeping render handles from
// the previous state. Returns false when the JSON no longer fits the model.
func (s *Store) adoptLocked(raw []byte) bool {
	var next scene.Scene
	if err := json.Unmarshal(raw, &next); err != nil {
		return false
	}
	handles := s.handlesLocked()
	next = sanitize(next)
	reattachHandles(&next, handles)
	s.current = next
	return true
}

func (s *Store) touchAndSnapshotLocked() scene.Scene {
	s.current.Metadata.UpdatedAt = scene.Timestamp(time.Now())
	return s.current.Clone()
}

func (s *Store) subscribersLocked() []Subscriber {
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) handlesLocked() map[string]any {
	handles := make(map[string]any)
	for i := range s.current.Items {
		if s.current.Items[i].RenderHandle != nil {
			handles[s.current.Items[i].ID] = s.current.Items[i].RenderHandle
		}
	}
	return handles
}

func reattachHandles(sc *scene.Scene, handles map[string]any) {
	for i := range sc.Items {
		if h, ok := handles[sc.Items[i].ID]; ok {
			sc.Items[i].RenderHandle = h
		}
	}
}

func notify(subs []Subscriber, snapshot scene.Scene) {
	for _, fn := range subs {
		// Each subscriber gets its own copy so none can poison another.
		fn(snapshot.Clone())
	}
}
