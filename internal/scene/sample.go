package scene

import "github.com/planbay/planbay/internal/typeid"

// NewSampleScene builds a small demo layout: a 40x30 ft plan with a bottom
// entry zone and a few items already placed. Used by the playground layout
// and by the wasm bridge's first paint.
func NewSampleScene() Scene {
	s := NewEmptyScene("Sample Garage")
	s.FloorPlan = &FloorPlan{
		ID:        typeid.NewFloorPlanID(),
		WidthFt:   40,
		HeightFt:  30,
		Position:  nil,
		Locked:    true,
		EntryZone: EntryBottom,
	}
	s.Items = []Item{
		{
			ID:         typeid.NewItemID(),
			TemplateID: "tpl_car",
			X:          -10, Y: -5,
			AngleDeg: 0,
			LengthFt: 15, WidthFt: 6,
		},
		{
			ID:         typeid.NewItemID(),
			TemplateID: "tpl_workbench",
			X:          14, Y: -12,
			AngleDeg: 90,
			LengthFt: 6, WidthFt: 2.5,
		},
		{
			ID:         typeid.NewItemID(),
			TemplateID: "tpl_shelf",
			X:          0, Y: -13.5,
			AngleDeg: 0,
			LengthFt: 8, WidthFt: 2,
		},
	}
	s.Settings = map[string]any{
		"showGrid": true,
	}
	return s
}
