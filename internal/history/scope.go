package history

// Scope is a reference-counted suppression guard. Acquire one before a
// compound operation; every primitive mutation inside may call Save, which
// stays a no-op until the outermost scope releases, at which point exactly
// one entry is captured. Release is idempotent and must run on every exit
// path, so callers pair Begin with defer:
//
//	scope := h.Begin()
//	defer scope.Release()
//	// ... many mutations ...
type Scope struct {
	manager *Manager
	active  bool
}

// Begin increments the suppression depth and returns the scope that will
// release it.
func (m *Manager) Begin() *Scope {
	m.mu.Lock()
	m.depth++
	m.mu.Unlock()
	return &Scope{manager: m, active: true}
}

// Release decrements the suppression depth; when the outermost scope
// releases, a single Save captures the batch. Safe to call multiple times;
// only the first has effect.
func (s *Scope) Release() {
	if !s.active {
		return
	}
	s.active = false

	m := s.manager
	m.mu.Lock()
	if m.depth > 0 {
		m.depth--
	}
	outermost := m.depth == 0
	m.mu.Unlock()

	if outermost {
		m.Save()
	}
}

// Cancel releases the scope without capturing an entry, for interactive
// actions that were abandoned and batches that turned out to change
// nothing. Mutations already applied still affect the scene; the next
// uncancelled save will include them.
func (s *Scope) Cancel() {
	if !s.active {
		return
	}
	s.active = false

	m := s.manager
	m.mu.Lock()
	if m.depth > 0 {
		m.depth--
	}
	m.mu.Unlock()
}

// Batch runs fn inside a suppression scope, releasing it on every exit
// path including panics, then captures the batch as one entry.
func (m *Manager) Batch(fn func()) {
	scope := m.Begin()
	defer scope.Release()
	fn()
}
