package history

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/planbay/planbay/internal/scene"
	"github.com/planbay/planbay/internal/state"
)

func newTestStore() *state.Store {
	return state.New()
}

func setName(t *testing.T, s *state.Store, name string) {
	t.Helper()
	if !s.Set("metadata.name", name) {
		t.Fatalf("set name %q failed", name)
	}
}

func addItem(t *testing.T, s *state.Store, id string) {
	t.Helper()
	ok := s.Mutate(func(sc *scene.Scene) bool {
		sc.Items = append(sc.Items, scene.Item{ID: id, TemplateID: "tpl_car", LengthFt: 15, WidthFt: 6})
		return true
	})
	if !ok {
		t.Fatalf("add item %q failed", id)
	}
}

func sceneJSON(t *testing.T, s *state.Store) string {
	t.Helper()
	data, err := json.Marshal(s.GetState())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestInitialSnapshotAlwaysReachable(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)

	if h.Len() != 1 || h.Index() != 0 {
		t.Fatalf("len=%d index=%d, want 1/0", h.Len(), h.Index())
	}
	if h.Undo() {
		t.Error("undo past the initial snapshot must be a no-op")
	}
	if h.CanUndo() {
		t.Error("CanUndo with only the initial snapshot")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)

	setName(t, s, "first")
	h.Save()
	before := sceneJSON(t, s)

	setName(t, s, "second")
	h.Save()
	after := sceneJSON(t, s)

	if !h.Undo() {
		t.Fatal("undo failed")
	}
	if got := sceneJSON(t, s); got != before {
		t.Errorf("undo state mismatch:\n got %s\nwant %s", got, before)
	}

	if !h.Redo() {
		t.Fatal("redo failed")
	}
	if got := sceneJSON(t, s); got != after {
		t.Errorf("redo state mismatch:\n got %s\nwant %s", got, after)
	}
}

func TestSaveTruncatesRedoBranch(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)

	setName(t, s, "a")
	h.Save()
	setName(t, s, "b")
	h.Save()

	h.Undo()
	if !h.CanRedo() {
		t.Fatal("expected a redo branch")
	}

	setName(t, s, "c")
	h.Save()

	if h.CanRedo() {
		t.Error("save must discard the redo branch")
	}
	if h.Len() != 3 { // initial, "a", "c"
		t.Errorf("len = %d, want 3", h.Len())
	}
}

func TestBatchAtomicity(t *testing.T) {
	s := newTestStore()
	h := New(s, 20)
	before := h.Len()

	h.Batch(func() {
		for i := 0; i < 5; i++ {
			addItem(t, s, fmt.Sprintf("item_%d", i))
			h.Save() // suppressed
		}
	})

	if got := h.Len() - before; got != 1 {
		t.Errorf("batch produced %d entries, want 1", got)
	}
	if len(s.GetState().Items) != 5 {
		t.Error("batch mutations lost")
	}
}

func TestNestedBatchesSaveOnce(t *testing.T) {
	s := newTestStore()
	h := New(s, 20)
	before := h.Len()

	outer := h.Begin()
	addItem(t, s, "item_outer")
	h.Save()

	inner := h.Begin()
	addItem(t, s, "item_inner")
	h.Save()
	inner.Release()

	if h.Len() != before {
		t.Error("inner release captured an entry before the outermost")
	}

	outer.Release()
	if got := h.Len() - before; got != 1 {
		t.Errorf("nested batches produced %d entries, want 1", got)
	}
}

func TestBatchReleasesOnPanic(t *testing.T) {
	s := newTestStore()
	h := New(s, 20)

	func() {
		defer func() { _ = recover() }()
		h.Batch(func() {
			addItem(t, s, "item_panic")
			panic("mid-batch failure")
		})
	}()

	if h.Suppressed() {
		t.Fatal("suppression leaked after panic")
	}
	// Capture works again afterwards.
	setName(t, s, "after")
	before := h.Len()
	h.Save()
	if h.Len() != before+1 {
		t.Error("save did not capture after recovered panic")
	}
}

func TestScopeReleaseIdempotent(t *testing.T) {
	s := newTestStore()
	h := New(s, 20)

	scope := h.Begin()
	scope.Release()
	scope.Release()
	scope.Release()

	if h.Suppressed() {
		t.Error("depth went negative or stuck")
	}
	// A later Begin must suppress again.
	scope = h.Begin()
	if !h.Suppressed() {
		t.Error("fresh scope did not suppress")
	}
	scope.Release()
}

func TestCancelCapturesNothing(t *testing.T) {
	s := newTestStore()
	h := New(s, 20)
	before := h.Len()

	scope := h.Begin()
	addItem(t, s, "item_cancelled")
	scope.Cancel()

	if h.Len() != before {
		t.Error("cancelled scope captured an entry")
	}
	if h.Suppressed() {
		t.Error("cancel left suppression on")
	}
}

func TestHistoryCapEvictsOldest(t *testing.T) {
	s := newTestStore()
	const maxStates = 6
	h := New(s, maxStates)

	for i := 0; i < maxStates+5; i++ {
		setName(t, s, fmt.Sprintf("rev-%d", i))
		h.Save()
	}

	if h.Len() != maxStates {
		t.Errorf("len = %d, want %d", h.Len(), maxStates)
	}
	if h.Index() != maxStates-1 {
		t.Errorf("cursor = %d, want newest at %d", h.Index(), maxStates-1)
	}

	// Walking all the way back lands on the oldest surviving entry, which
	// is rev-5 after five evictions (initial snapshot plus rev-0..rev-4
	// were pushed out).
	for h.CanUndo() {
		h.Undo()
	}
	if got := s.GetState().Metadata.Name; got != "rev-5" {
		t.Errorf("oldest surviving entry = %q, want rev-5", got)
	}
	if h.Index() != 0 {
		t.Errorf("cursor after full undo = %d, want 0", h.Index())
	}
}

func TestCapClampedToSane(t *testing.T) {
	s := newTestStore()
	h := New(s, 1) // would make the cursor underflow; clamped instead

	for i := 0; i < 5; i++ {
		setName(t, s, fmt.Sprintf("v%d", i))
		h.Save()
	}
	if h.Index() < 0 {
		t.Fatal("cursor underflow")
	}
	if !h.CanUndo() {
		t.Error("clamped cap lost undo entirely")
	}
}

func TestClearDropsEverything(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)
	setName(t, s, "old project")
	h.Save()

	h.Clear()

	if h.Len() != 0 || h.Index() != -1 {
		t.Errorf("len=%d index=%d after clear", h.Len(), h.Index())
	}
	if h.Undo() || h.Redo() {
		t.Error("undo/redo after clear must be no-ops")
	}

	// New-project flow: reset then seed a fresh initial snapshot.
	s.Reset()
	h.Save()
	if h.Len() != 1 || h.Index() != 0 {
		t.Errorf("reseed gave len=%d index=%d", h.Len(), h.Index())
	}
	if h.CanUndo() {
		t.Error("fresh project can reach the old one")
	}
}

func TestUndoRedoNotifyObservers(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)

	var events []EventKind
	var lastName string
	h.OnEvent(func(e Event) {
		events = append(events, e.Kind)
		lastName = e.Scene.Metadata.Name
	})

	setName(t, s, "observed")
	h.Save()
	h.Undo()
	h.Redo()

	if len(events) != 2 || events[0] != EventUndo || events[1] != EventRedo {
		t.Fatalf("events = %v", events)
	}
	if lastName != "observed" {
		t.Errorf("redo payload name = %q", lastName)
	}
}

func TestSaveDuringReplayIsSuppressed(t *testing.T) {
	s := newTestStore()
	h := New(s, 10)

	// A store subscriber that tries to save on every change, as a
	// render-driven listener would.
	s.Subscribe(func(scene.Scene) { h.Save() })

	setName(t, s, "x")
	h.Save()
	lenBefore := h.Len()

	h.Undo()
	if h.Len() > lenBefore {
		t.Error("replay-triggered save captured an entry")
	}
}
