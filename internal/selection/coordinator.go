// Package selection mediates the multi-item operations of the editor:
// duplicate, copy/paste, alignment, z-order, and rigid group movement.
// Every compound operation runs inside a history suppression scope so a
// logical user action lands as a single undo entry.
package selection

import (
	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/history"
	"github.com/planbay/planbay/internal/scene"
	"github.com/planbay/planbay/internal/state"
	"github.com/planbay/planbay/internal/typeid"
)

// PasteOffsetFt is the fixed delta applied to duplicated and pasted items
// so copies never land exactly on their source.
const PasteOffsetFt = 2.0

// clipboardEntry stores an item snapshot with placement relative to the
// clipboard anchor, not absolute coordinates.
type clipboardEntry struct {
	TemplateID string
	RelX       float64
	RelY       float64
	AngleDeg   float64
	LengthFt   float64
	WidthFt    float64
}

// Coordinator reads and writes the store on behalf of selection-driven
// operations. Its only persistent state is the ephemeral clipboard.
type Coordinator struct {
	store   *state.Store
	history *history.Manager

	clipAnchorX float64
	clipAnchorY float64
	clipboard   []clipboardEntry
}

func New(store *state.Store, hist *history.Manager) *Coordinator {
	return &Coordinator{store: store, history: hist}
}

// Duplicate clones the selected items at a fixed offset, matching each
// source's rotation. All clones land as one history entry. Returns the
// new item ids.
func (c *Coordinator) Duplicate(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	var created []string
	scope := c.history.Begin()
	defer scope.Release()

	changed := c.store.Mutate(func(sc *scene.Scene) bool {
		container, hasPlan := containerRect(sc)
		for _, id := range ids {
			src, ok := sc.Item(id)
			if !ok {
				continue
			}
			clone := src
			clone.ID = typeid.NewItemID()
			clone.RenderHandle = nil
			clone.X += PasteOffsetFt
			clone.Y += PasteOffsetFt
			clone.Locked = false
			if hasPlan {
				hw, hh := geometry.RotatedHalfExtents(clone.LengthFt, clone.WidthFt, clone.AngleDeg)
				clone.X, clone.Y, _ = geometry.ConstrainCenter(clone.X, clone.Y, hw, hh, container)
			}
			sc.Items = append(sc.Items, clone)
			created = append(created, clone.ID)
		}
		return len(created) > 0
	})
	if !changed {
		// Nothing cloned, so no history entry.
		scope.Cancel()
	}
	return created
}

// Copy captures the selected items into the clipboard. Placement is stored
// relative to the group's top-left anchor.
func (c *Coordinator) Copy(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	sc := c.store.GetState()

	var entries []clipboardEntry
	anchorX, anchorY := 0.0, 0.0
	first := true
	for _, id := range ids {
		it, ok := sc.Item(id)
		if !ok {
			continue
		}
		if first || it.X < anchorX {
			anchorX = it.X
		}
		if first || it.Y < anchorY {
			anchorY = it.Y
		}
		first = false
		entries = append(entries, clipboardEntry{
			TemplateID: it.TemplateID,
			RelX:       it.X,
			RelY:       it.Y,
			AngleDeg:   it.AngleDeg,
			LengthFt:   it.LengthFt,
			WidthFt:    it.WidthFt,
		})
	}
	for i := range entries {
		entries[i].RelX -= anchorX
		entries[i].RelY -= anchorY
	}
	c.clipboard = entries
	c.clipAnchorX = anchorX
	c.clipAnchorY = anchorY
	return len(entries)
}

// Paste re-adds the clipboard contents at the source position plus the
// fixed offset, restoring each item's rotation. One history entry.
func (c *Coordinator) Paste() []string {
	if len(c.clipboard) == 0 {
		return nil
	}
	var created []string
	scope := c.history.Begin()
	defer scope.Release()

	changed := c.store.Mutate(func(sc *scene.Scene) bool {
		container, hasPlan := containerRect(sc)
		for _, entry := range c.clipboard {
			it := scene.Item{
				ID:         typeid.NewItemID(),
				TemplateID: entry.TemplateID,
				X:          c.clipAnchorX + entry.RelX + PasteOffsetFt,
				Y:          c.clipAnchorY + entry.RelY + PasteOffsetFt,
				AngleDeg:   scene.NormalizeAngle(entry.AngleDeg),
				LengthFt:   entry.LengthFt,
				WidthFt:    entry.WidthFt,
			}
			if hasPlan {
				hw, hh := geometry.RotatedHalfExtents(it.LengthFt, it.WidthFt, it.AngleDeg)
				it.X, it.Y, _ = geometry.ConstrainCenter(it.X, it.Y, hw, hh, container)
			}
			sc.Items = append(sc.Items, it)
			created = append(created, it.ID)
		}
		return len(created) > 0
	})
	if !changed {
		scope.Cancel()
	}
	return created
}

// HasClipboard reports whether a paste would produce anything.
func (c *Coordinator) HasClipboard() bool {
	return len(c.clipboard) > 0
}

// containerRect derives the floor plan's usable area as an axis-aligned
// rect in scene coordinates.
func containerRect(sc *scene.Scene) (geometry.Rect, bool) {
	fp := sc.FloorPlan
	if !fp.Valid() {
		return geometry.Rect{}, false
	}
	center := fp.Center()
	return geometry.Rect{
		Left:   center.X - fp.WidthFt/2,
		Top:    center.Y - fp.HeightFt/2,
		Width:  fp.WidthFt,
		Height: fp.HeightFt,
	}, true
}

// itemBounds returns the rotated AABB for an item.
func itemBounds(it scene.Item) geometry.Rect {
	return geometry.RotatedBounds(it.X, it.Y, it.LengthFt, it.WidthFt, it.AngleDeg)
}
