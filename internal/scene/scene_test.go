package scene

import (
	"math"
	"testing"
)

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-450, 270},
		{359.5, 359.5},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); got != tt.want {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFloorPlanValid(t *testing.T) {
	var nilPlan *FloorPlan
	if nilPlan.Valid() {
		t.Error("nil plan valid")
	}
	if (&FloorPlan{WidthFt: 0, HeightFt: 10}).Valid() {
		t.Error("zero width valid")
	}
	if !(&FloorPlan{ID: "plan_a", WidthFt: 40, HeightFt: 30}).Valid() {
		t.Error("real plan invalid")
	}
}

func TestFloorPlanCenter(t *testing.T) {
	plan := &FloorPlan{ID: "plan_a", WidthFt: 40, HeightFt: 30}
	if c := plan.Center(); c.X != 0 || c.Y != 0 {
		t.Errorf("default center = %+v, want origin", c)
	}
	plan.Position = &Point{X: 7, Y: -3}
	if c := plan.Center(); c.X != 7 || c.Y != -3 {
		t.Errorf("positioned center = %+v", c)
	}
}

func TestCloneIsDeepAndDropsHandles(t *testing.T) {
	sc := NewEmptyScene("")
	sc.FloorPlan = &FloorPlan{ID: "plan_a", WidthFt: 40, HeightFt: 30, Locked: true, EntryZone: EntryBottom}
	sc.Items = []Item{{ID: "item_a", TemplateID: "tpl_car", LengthFt: 15, WidthFt: 6, RenderHandle: "canvas-obj"}}
	sc.Settings["showGrid"] = true

	clone := sc.Clone()
	clone.FloorPlan.WidthFt = 99
	clone.Items[0].X = 42
	clone.Settings["showGrid"] = false

	if sc.FloorPlan.WidthFt != 40 || sc.Items[0].X != 0 {
		t.Error("clone shares memory with the original")
	}
	if sc.Settings["showGrid"] != true {
		t.Error("settings not deep copied")
	}
	if clone.Items[0].RenderHandle != nil {
		t.Error("render handle survived cloning")
	}
}

func TestCatalogResolution(t *testing.T) {
	cat := DefaultCatalog()

	car, ok := cat.Get("tpl_car")
	if !ok || car.LengthFt != 15 || car.WidthFt != 6 {
		t.Errorf("tpl_car = %+v, ok=%v", car, ok)
	}
	if car.Category != CategoryRectangle {
		t.Errorf("car category = %q", car.Category)
	}

	boat, ok := cat.Get("tpl_boat")
	if !ok || boat.Category != CategorySpecial || len(boat.Footprint) == 0 {
		t.Error("special template missing its footprint")
	}

	if _, ok := cat.Get("tpl_spaceship"); ok {
		t.Error("unknown template resolved")
	}

	list := cat.List()
	if len(list) == 0 || list[0].ID != "tpl_car" {
		t.Error("list not in registration order")
	}
}

func TestNewCatalogRejectsBadTemplates(t *testing.T) {
	cat := NewCatalog([]Template{
		{ID: "tpl_good", LengthFt: 2, WidthFt: 1},
		{ID: "", LengthFt: 2, WidthFt: 1},
		{ID: "tpl_flat", LengthFt: 0, WidthFt: 1},
		{ID: "tpl_good", LengthFt: 9, WidthFt: 9}, // duplicate id
	})
	if len(cat.List()) != 1 {
		t.Errorf("kept %d templates, want 1", len(cat.List()))
	}
	good, _ := cat.Get("tpl_good")
	if good.LengthFt != 2 {
		t.Error("duplicate overwrote the first registration")
	}
}

func TestSampleScene(t *testing.T) {
	sc := NewSampleScene()
	if !sc.FloorPlan.Valid() {
		t.Fatal("sample has no valid floor plan")
	}
	if len(sc.Items) == 0 {
		t.Fatal("sample has no items")
	}
	seen := make(map[string]bool)
	for _, it := range sc.Items {
		if seen[it.ID] {
			t.Errorf("duplicate item id %s", it.ID)
		}
		seen[it.ID] = true
		if it.AngleDeg < 0 || it.AngleDeg >= 360 {
			t.Errorf("item %s angle %v out of range", it.ID, it.AngleDeg)
		}
	}
}
