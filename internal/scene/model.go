package scene

import (
	"encoding/json"
	"math"
	"time"
)

// EntryZonePosition names the floor plan edge that carries the reserved
// entry band.
type EntryZonePosition string

const (
	EntryTop    EntryZonePosition = "top"
	EntryBottom EntryZonePosition = "bottom"
	EntryLeft   EntryZonePosition = "left"
	EntryRight  EntryZonePosition = "right"
)

// MinFloorPlanAreaSqFt is the smallest usable floor plan area. Plans below
// this are rejected at the boundary.
const MinFloorPlanAreaSqFt = 100.0

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FloorPlan is the rectangular container items are placed in. Width and
// height are fixed once set; replacing the plan installs a new one.
type FloorPlan struct {
	ID       string  `json:"id"`
	WidthFt  float64 `json:"widthFt"`
	HeightFt float64 `json:"heightFt"`
	// Position is the plan center in scene coordinates. Nil means
	// auto-centered at the origin.
	Position  *Point            `json:"position"`
	Locked    bool              `json:"locked"`
	EntryZone EntryZonePosition `json:"entryZonePosition"`
}

// Valid reports whether the plan has usable dimensions.
func (fp *FloorPlan) Valid() bool {
	if fp == nil {
		return false
	}
	if fp.WidthFt <= 0 || fp.HeightFt <= 0 {
		return false
	}
	return fp.WidthFt*fp.HeightFt >= MinFloorPlanAreaSqFt
}

// Center returns the plan center, defaulting to the origin when the
// position is unset.
func (fp *FloorPlan) Center() Point {
	if fp == nil || fp.Position == nil {
		return Point{}
	}
	return *fp.Position
}

// Item is a placeable rectangular object. X and Y are the center of the
// item in scene coordinates; LengthFt runs along the item's local x axis.
type Item struct {
	ID         string  `json:"id"`
	TemplateID string  `json:"itemTemplateId"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	AngleDeg   float64 `json:"angleDeg"`
	LengthFt   float64 `json:"lengthFt"`
	WidthFt    float64 `json:"widthFt"`
	Locked     bool    `json:"locked"`

	// RenderHandle is an opaque, weakly held reference into the external
	// renderer. It is never serialized and may be nil at any time.
	RenderHandle any `json:"-"`
}

type Metadata struct {
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Scene is the root object held by the state store. Item order is paint
// order: later items draw on top. The floor plan, grid and entry-zone
// overlay are static layers beneath every item and are not part of Items.
type Scene struct {
	FloorPlan *FloorPlan     `json:"floorPlan"`
	Items     []Item         `json:"items"`
	Settings  map[string]any `json:"settings"`
	Metadata  Metadata       `json:"metadata"`
}

// NewEmptyScene returns the default scene a new layout starts from.
func NewEmptyScene(name string) Scene {
	now := Timestamp(time.Now())
	return Scene{
		FloorPlan: nil,
		Items:     []Item{},
		Settings:  map[string]any{},
		Metadata: Metadata{
			Name:      name,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Timestamp formats a time the way scene metadata stores it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// NormalizeAngle wraps an angle in degrees into [0, 360). Non-finite
// angles normalize to 0.
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ItemIndex returns the position of the item with the given id, or -1.
func (s *Scene) ItemIndex(id string) int {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return i
		}
	}
	return -1
}

// Item returns the item with the given id, if present.
func (s *Scene) Item(id string) (Item, bool) {
	if i := s.ItemIndex(id); i >= 0 {
		return s.Items[i], true
	}
	return Item{}, false
}

// Clone returns a deep copy of the scene via its JSON form. Render handles
// are transient and deliberately absent from the copy.
func (s Scene) Clone() Scene {
	data, err := json.Marshal(s)
	if err != nil {
		// The scene is plain data; marshal can only fail on a corrupted
		// settings value. Fall back to an empty scene rather than alias.
		return NewEmptyScene(s.Metadata.Name)
	}
	var out Scene
	if err := json.Unmarshal(data, &out); err != nil {
		return NewEmptyScene(s.Metadata.Name)
	}
	if out.Items == nil {
		out.Items = []Item{}
	}
	if out.Settings == nil {
		out.Settings = map[string]any{}
	}
	return out
}
