// Package history keeps a capped stack of deep scene snapshots with a
// cursor, giving the editor linear undo/redo. A reference-counted
// suppression gate collapses compound operations into single entries: one
// logical user action produces at most one history entry, no matter how
// many primitive mutations it triggers.
package history

import (
	"log/slog"
	"sync"

	"github.com/planbay/planbay/internal/scene"
	"github.com/planbay/planbay/internal/state"
)

// DefaultMaxStates caps the stack when no override is configured.
const DefaultMaxStates = 50

// EventKind tags history observer notifications.
type EventKind string

const (
	EventUndo  EventKind = "undo"
	EventRedo  EventKind = "redo"
	EventClear EventKind = "clear"
)

// Event is delivered to observers after an undo/redo completes; Scene is
// the restored snapshot.
type Event struct {
	Kind  EventKind
	Scene scene.Scene
}

// Manager owns the snapshot stack. Index 0 is the initial empty snapshot
// and always remains reachable; it is never itself undoable past.
type Manager struct {
	mu        sync.Mutex
	store     *state.Store
	states    []scene.Scene
	current   int // cursor into states; -1 means "no history"
	maxStates int
	depth     int  // batch suppression refcount
	replaying bool // capture disabled during undo/redo
	observers []func(Event)
}

// New builds a manager over the store and seeds the stack with the store's
// current scene as the initial snapshot. The cap is clamped to at least 2
// so eviction can never drive the cursor negative.
func New(store *state.Store, maxStates int) *Manager {
	if maxStates < 2 {
		maxStates = DefaultMaxStates
	}
	m := &Manager{
		store:     store,
		maxStates: maxStates,
		current:   -1,
	}
	m.Save()
	return m
}

// OnEvent registers an observer for undo/redo/clear notifications.
func (m *Manager) OnEvent(fn func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Save captures the store's current scene as a new history entry. It is a
// no-op while suppressed (inside a batch or a replay). Saving truncates
// any redo branch; when the stack exceeds the cap the oldest entry is
// evicted and the cursor shifts so it still points at the same snapshot.
func (m *Manager) Save() {
	m.mu.Lock()
	if m.depth > 0 || m.replaying {
		m.mu.Unlock()
		return
	}
	snapshot := m.store.GetState()
	m.states = append(m.states[:m.current+1], snapshot)
	m.current++
	if len(m.states) > m.maxStates {
		evict := len(m.states) - m.maxStates
		m.states = m.states[evict:]
		m.current -= evict
		if m.current < 0 {
			// Unreachable while maxStates >= 2; kept as a guard so a
			// future cap change cannot strand the cursor.
			slog.Error("history cursor underflow after eviction", "current", m.current)
			m.current = 0
		}
	}
	m.mu.Unlock()
}

// Undo steps the cursor back one entry and loads that snapshot into the
// store. Undoing past the initial snapshot is a no-op; the return value
// reports whether anything happened.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	if m.current <= 0 {
		m.mu.Unlock()
		return false
	}
	m.replaying = true
	m.current--
	snapshot := m.states[m.current]
	m.mu.Unlock()

	m.store.LoadState(snapshot)

	m.mu.Lock()
	m.replaying = false
	observers := append([]func(Event){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(Event{Kind: EventUndo, Scene: snapshot.Clone()})
	}
	return true
}

// Redo steps the cursor forward one entry, valid only while the cursor is
// before the stack's end.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	if m.current < 0 || m.current >= len(m.states)-1 {
		m.mu.Unlock()
		return false
	}
	m.replaying = true
	m.current++
	snapshot := m.states[m.current]
	m.mu.Unlock()

	m.store.LoadState(snapshot)

	m.mu.Lock()
	m.replaying = false
	observers := append([]func(Event){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(Event{Kind: EventRedo, Scene: snapshot.Clone()})
	}
	return true
}

// Clear empties the stack so undo cannot reach a previous project's state.
// The caller is expected to Save a fresh initial snapshot after resetting
// the store.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.states = nil
	m.current = -1
	observers := append([]func(Event){}, m.observers...)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(Event{Kind: EventClear})
	}
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current >= 0 && m.current < len(m.states)-1
}

// Len returns the number of stored snapshots.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}

// Index returns the cursor position, -1 when there is no history.
func (m *Manager) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Suppressed reports whether capture is currently gated off.
func (m *Manager) Suppressed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.depth > 0 || m.replaying
}
