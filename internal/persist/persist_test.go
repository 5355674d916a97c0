package persist

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/planbay/planbay/internal/scene"
)

func testScene() scene.Scene {
	sc := scene.NewEmptyScene("Garage")
	sc.FloorPlan = &scene.FloorPlan{
		ID: "plan_test", WidthFt: 40, HeightFt: 30,
		Locked: true, EntryZone: scene.EntryBottom,
	}
	sc.Items = []scene.Item{
		{ID: "item_a", TemplateID: "tpl_car", X: 1, Y: 2, LengthFt: 15, WidthFt: 6},
	}
	return sc
}

func TestEnvelopeUsable(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour

	tests := []struct {
		name      string
		version   string
		timestamp string
		retention time.Duration
		want      bool
	}{
		{"fresh", EnvelopeVersion, now.Add(-time.Hour).Format(time.RFC3339), week, true},
		{"version mismatch", "planbay/0", now.Format(time.RFC3339), week, false},
		{"older than retention", EnvelopeVersion, now.Add(-8 * 24 * time.Hour).Format(time.RFC3339), week, false},
		{"retention disabled", EnvelopeVersion, now.Add(-400 * 24 * time.Hour).Format(time.RFC3339), 0, true},
		{"garbage timestamp", EnvelopeVersion, "yesterday", week, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := Envelope{Version: tt.version, Timestamp: tt.timestamp}
			if got := env.Usable(tt.retention, now); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvelopeNeverCarriesRenderHandles(t *testing.T) {
	sc := testScene()
	sc.Items[0].RenderHandle = "canvas-obj"

	env := NewEnvelope(sc)
	data, err := json.Marshal(env)
	if err != nil {
		t.Fatal(err)
	}

	var decoded Envelope
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.State.Items[0].RenderHandle != nil {
		t.Error("render handle survived serialization")
	}
	if decoded.State.Items[0].ID != "item_a" {
		t.Error("item lost in round trip")
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	ctx := context.Background()

	if _, err := store.LoadLatest(ctx, "layout_missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing layout: %v", err)
	}

	env := NewEnvelope(testScene())
	if err := store.SaveSnapshot(ctx, "layout_1", "Garage", env); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadLatest(ctx, "layout_1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Version != EnvelopeVersion {
		t.Errorf("version = %q", loaded.Version)
	}
	if loaded.State.FloorPlan == nil || loaded.State.FloorPlan.WidthFt != 40 {
		t.Error("floor plan lost")
	}
	if len(loaded.State.Items) != 1 || loaded.State.Items[0].ID != "item_a" {
		t.Error("items lost")
	}

	// Second save for the same layout replaces, not duplicates.
	updated := NewEnvelope(testScene())
	updated.State.Items[0].X = 9
	if err := store.SaveSnapshot(ctx, "layout_1", "Garage", updated); err != nil {
		t.Fatal(err)
	}
	loaded, err = store.LoadLatest(ctx, "layout_1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.State.Items[0].X != 9 {
		t.Error("save did not replace the previous snapshot")
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].ID != "layout_1" || infos[0].Name != "Garage" {
		t.Errorf("list = %+v", infos)
	}

	if err := store.Delete(ctx, "layout_1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "layout_1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
}
