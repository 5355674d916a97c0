package state

import (
	"testing"

	"github.com/planbay/planbay/internal/scene"
)

func TestGetSetPath(t *testing.T) {
	s := New()

	if !s.Set("metadata.name", "Workshop") {
		t.Fatal("set metadata.name failed")
	}
	got, ok := s.Get("metadata.name")
	if !ok || got != "Workshop" {
		t.Errorf("Get(metadata.name) = %v, %v", got, ok)
	}

	if !s.Set("settings.showGrid", true) {
		t.Fatal("set settings.showGrid failed")
	}
	got, ok = s.Get("settings.showGrid")
	if !ok || got != true {
		t.Errorf("Get(settings.showGrid) = %v, %v", got, ok)
	}
}

func TestGetMissingPath(t *testing.T) {
	s := New()
	if _, ok := s.Get("floorPlan.widthFt"); ok {
		t.Error("nil floor plan field should read as absent")
	}
	if _, ok := s.Get("items.5.x"); ok {
		t.Error("out of range item should read as absent")
	}
	if _, ok := s.Get("metadata.name.deeper"); ok {
		t.Error("indexing into a string should read as absent")
	}
}

func TestSetRejectsMismatchedValue(t *testing.T) {
	s := New()
	before := s.GetState()

	// "items" must be an array of items; a scalar cannot be adopted.
	if s.Set("items", 42) {
		t.Error("scalar items accepted")
	}
	after := s.GetState()
	if len(after.Items) != len(before.Items) {
		t.Error("failed set mutated the scene")
	}
}

func TestSetStateDeepMerge(t *testing.T) {
	s := New()
	s.Set("settings.showGrid", true)

	ok := s.SetState(map[string]any{
		"settings": map[string]any{"snapToGrid": false},
		"metadata": map[string]any{"name": "Merged"},
	})
	if !ok {
		t.Fatal("SetState failed")
	}

	st := s.GetState()
	if st.Settings["showGrid"] != true {
		t.Error("merge dropped existing settings key")
	}
	if st.Settings["snapToGrid"] != false {
		t.Error("merge missed new settings key")
	}
	if st.Metadata.Name != "Merged" {
		t.Errorf("metadata.name = %q", st.Metadata.Name)
	}
	if st.Metadata.UpdatedAt == "" {
		t.Error("modified timestamp not stamped")
	}
}

func TestSubscribersGetIndependentCopies(t *testing.T) {
	s := New()

	var first scene.Scene
	s.Subscribe(func(sc scene.Scene) {
		// A hostile subscriber mutates what it is given.
		sc.Settings["evil"] = true
		first = sc
	})
	var second scene.Scene
	s.Subscribe(func(sc scene.Scene) { second = sc })

	s.Set("settings.showGrid", true)

	if _, leaked := second.Settings["evil"]; leaked {
		t.Error("mutation leaked between subscribers")
	}
	if _, leaked := s.GetState().Settings["evil"]; leaked {
		t.Error("mutation leaked into the store")
	}
	if first.Settings["showGrid"] != true || second.Settings["showGrid"] != true {
		t.Error("subscribers missed the write")
	}
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	calls := 0
	off := s.Subscribe(func(scene.Scene) { calls++ })

	s.Set("metadata.name", "one")
	off()
	s.Set("metadata.name", "two")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestResetPreservesSettings(t *testing.T) {
	s := New()
	s.Set("settings.showGrid", true)
	s.Mutate(func(sc *scene.Scene) bool {
		sc.FloorPlan = &scene.FloorPlan{ID: "plan_x", WidthFt: 20, HeightFt: 20, Locked: true, EntryZone: scene.EntryBottom}
		sc.Items = append(sc.Items, scene.Item{ID: "item_x", TemplateID: "tpl_car", LengthFt: 15, WidthFt: 6})
		return true
	})

	s.Reset()

	st := s.GetState()
	if st.FloorPlan != nil || len(st.Items) != 0 {
		t.Error("reset kept layout state")
	}
	if st.Settings["showGrid"] != true {
		t.Error("reset dropped user settings")
	}
}

func TestLoadStateDefaultsMalformedFields(t *testing.T) {
	s := New()
	s.LoadState(scene.Scene{
		FloorPlan: &scene.FloorPlan{ID: "plan_bad", WidthFt: 2, HeightFt: 2}, // below minimum area
		Items: []scene.Item{
			{ID: "item_a", TemplateID: "tpl_car", LengthFt: 15, WidthFt: 6, AngleDeg: 450},
			{ID: "", LengthFt: 5, WidthFt: 5},         // no identity
			{ID: "item_b", LengthFt: 0, WidthFt: 5},   // no size
			{ID: "item_a", LengthFt: 10, WidthFt: 10}, // duplicate id
		},
		Settings: nil,
		Metadata: scene.Metadata{Name: "Loaded", UpdatedAt: "2026-01-02T03:04:05Z"},
	})

	st := s.GetState()
	if st.FloorPlan != nil {
		t.Error("undersized floor plan was installed")
	}
	if len(st.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(st.Items))
	}
	if st.Items[0].AngleDeg != 90 {
		t.Errorf("angle = %v, want normalized 90", st.Items[0].AngleDeg)
	}
	if st.Settings == nil {
		t.Error("nil settings not defaulted")
	}
	if st.Metadata.UpdatedAt != "2026-01-02T03:04:05Z" {
		t.Error("loadState must not restamp the modified timestamp")
	}
}

func TestRenderHandlesSurviveWrites(t *testing.T) {
	s := New()
	s.Mutate(func(sc *scene.Scene) bool {
		sc.Items = append(sc.Items, scene.Item{ID: "item_h", TemplateID: "tpl_car", LengthFt: 15, WidthFt: 6})
		return true
	})

	handle := &struct{ name string }{"canvas-object"}
	s.SetRenderHandle("item_h", handle)

	// A path write round-trips the scene through JSON; the handle is
	// transient but must survive on the live state.
	s.Set("items.0.angleDeg", 90)

	got, ok := s.RenderHandle("item_h")
	if !ok || got != handle {
		t.Error("render handle lost across a path write")
	}

	// Copies never carry handles.
	if s.GetState().Items[0].RenderHandle != nil {
		t.Error("render handle leaked into a deep copy")
	}
}

func TestMutateAbandon(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(scene.Scene) { calls++ })

	ok := s.Mutate(func(sc *scene.Scene) bool {
		sc.Metadata.Name = "should not stick"
		return false
	})
	if ok || calls != 0 {
		t.Error("abandoned mutation committed or notified")
	}
	if s.GetState().Metadata.Name == "should not stick" {
		t.Error("abandoned mutation leaked")
	}
}
