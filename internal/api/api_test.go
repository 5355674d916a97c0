package api

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/planbay/planbay/internal/editor"
	"github.com/planbay/planbay/internal/persist"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := persist.NewSQLiteStore(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, 7*24*time.Hour, editor.Options{})
}

func f(v float64) *float64 { return &v }

func TestCreateOpenSaveRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Create(ctx, "Garage")
	if err != nil {
		t.Fatal(err)
	}
	if sess.Editor.Scene().Metadata.Name != "Garage" {
		t.Error("layout name not applied")
	}

	if _, err := sess.Apply(Operation{Type: "floorplan.set", WidthFt: 40, HeightFt: 30, EntryZone: "bottom"}); err != nil {
		t.Fatal(err)
	}
	added, err := sess.Apply(Operation{Type: "item.add", TemplateID: "tpl_car", X: f(0), Y: f(0)})
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Save(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}

	// Drop the in-memory session and reopen from the snapshot.
	svc.mu.Lock()
	delete(svc.sessions, sess.ID)
	svc.mu.Unlock()

	reopened, err := svc.Open(ctx, sess.ID)
	if err != nil {
		t.Fatal(err)
	}
	sc := reopened.Editor.Scene()
	if sc.FloorPlan == nil || sc.FloorPlan.WidthFt != 40 {
		t.Error("floor plan lost across reopen")
	}
	if len(sc.Items) != 1 || sc.Items[0].ID != added.ItemID {
		t.Error("items lost across reopen")
	}
	// A restored layout starts with fresh history.
	if reopened.Editor.Undo() {
		t.Error("undo crossed the persistence boundary")
	}
}

func TestOpenUnknownLayout(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Open(context.Background(), "layout_ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestStaleSnapshotTreatedAsAbsent(t *testing.T) {
	store, err := persist.NewSQLiteStore(filepath.Join(t.TempDir(), "stale.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	svc := NewService(store, 7*24*time.Hour, editor.Options{})
	sess, err := svc.Create(ctx, "Old")
	if err != nil {
		t.Fatal(err)
	}

	// Overwrite the snapshot with one past the retention window.
	env := persist.NewEnvelope(sess.Editor.Scene())
	env.Timestamp = time.Now().Add(-30 * 24 * time.Hour).UTC().Format(time.RFC3339)
	if err := store.SaveSnapshot(ctx, sess.ID, "Old", env); err != nil {
		t.Fatal(err)
	}
	svc.mu.Lock()
	delete(svc.sessions, sess.ID)
	svc.mu.Unlock()

	if _, err := svc.Open(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale snapshot restored: %v", err)
	}
}

func TestApplyDispatch(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.Create(context.Background(), "Ops")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Apply(Operation{Type: "floorplan.set", WidthFt: 40, HeightFt: 30, EntryZone: "bottom"}); err != nil {
		t.Fatal(err)
	}

	added, err := sess.Apply(Operation{Type: "item.add", TemplateID: "tpl_car", X: f(0), Y: f(0)})
	if err != nil || added.ItemID == "" {
		t.Fatalf("item.add: %v %+v", err, added)
	}

	if _, err := sess.Apply(Operation{Type: "item.move", ItemID: added.ItemID, X: f(3), Y: f(4)}); err != nil {
		t.Fatal(err)
	}
	sc := sess.Editor.Scene()
	got, _ := sc.Item(added.ItemID)
	if got.X != 3 || got.Y != 4 {
		t.Errorf("item at (%v, %v)", got.X, got.Y)
	}

	undo, err := sess.Apply(Operation{Type: "history.undo"})
	if err != nil || !undo.Applied {
		t.Fatalf("undo: %v %+v", err, undo)
	}
	sc = sess.Editor.Scene()
	got, _ = sc.Item(added.ItemID)
	if got.X != 0 {
		t.Errorf("undo left x = %v", got.X)
	}

	if _, err := sess.Apply(Operation{Type: "item.move", ItemID: added.ItemID}); !errors.Is(err, ErrBadOperation) {
		t.Errorf("move without coordinates: %v", err)
	}
	if _, err := sess.Apply(Operation{Type: "cook.dinner"}); !errors.Is(err, ErrBadOperation) {
		t.Errorf("unknown op: %v", err)
	}
}

func TestBatchOperationOneHistoryEntry(t *testing.T) {
	svc := newTestService(t)
	sess, err := svc.Create(context.Background(), "Batch")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Apply(Operation{Type: "floorplan.set", WidthFt: 40, HeightFt: 30, EntryZone: "bottom"}); err != nil {
		t.Fatal(err)
	}
	before := sess.Editor.History().Len()

	result, err := sess.Apply(Operation{Type: "batch", Ops: []Operation{
		{Type: "item.add", TemplateID: "tpl_car", X: f(-5), Y: f(0)},
		{Type: "item.add", TemplateID: "tpl_shelf", X: f(5), Y: f(0)},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Created) != 2 {
		t.Errorf("created = %v", result.Created)
	}
	if got := sess.Editor.History().Len() - before; got != 1 {
		t.Errorf("batch produced %d history entries, want 1", got)
	}
}
