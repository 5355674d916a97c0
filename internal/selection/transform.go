package selection

import (
	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/scene"
)

// MoveBy translates every selected item by the same delta, then clamps the
// selection's combined rotated AABB back inside the floor plan as a single
// rigid body. Locked items pin the whole move (a rigid group cannot move
// partially). Returns whether anything moved.
func (c *Coordinator) MoveBy(ids []string, dx, dy float64) bool {
	if len(ids) == 0 || (dx == 0 && dy == 0) {
		return false
	}
	moved := false
	scope := c.history.Begin()
	defer scope.Release()

	c.store.Mutate(func(sc *scene.Scene) bool {
		indexes := selectedIndexes(sc, ids)
		if len(indexes) == 0 {
			return false
		}
		for _, i := range indexes {
			if sc.Items[i].Locked {
				return false
			}
		}
		for _, i := range indexes {
			sc.Items[i].X += dx
			sc.Items[i].Y += dy
		}
		constrainGroup(sc, indexes)
		moved = true
		return true
	})
	if !moved {
		scope.Cancel()
	}
	return moved
}

// RotateBy rotates the selection as a rigid body about the group center:
// each item's angle advances by deltaDeg and its center swings around the
// pivot. The rotated group AABB is then clamped back inside the plan.
func (c *Coordinator) RotateBy(ids []string, deltaDeg float64) bool {
	if len(ids) == 0 || deltaDeg == 0 {
		return false
	}
	rotated := false
	scope := c.history.Begin()
	defer scope.Release()

	c.store.Mutate(func(sc *scene.Scene) bool {
		indexes := selectedIndexes(sc, ids)
		if len(indexes) == 0 {
			return false
		}
		for _, i := range indexes {
			if sc.Items[i].Locked {
				return false
			}
		}

		group := groupBounds(sc, indexes)
		if group.IsEmpty() {
			return false
		}
		pivot := geometry.RotateAbout(deltaDeg, group.CenterX(), group.CenterY())
		for _, i := range indexes {
			it := &sc.Items[i]
			it.X, it.Y = pivot.TransformPoint(it.X, it.Y)
			it.AngleDeg = scene.NormalizeAngle(it.AngleDeg + deltaDeg)
		}
		constrainGroup(sc, indexes)
		rotated = true
		return true
	})
	if !rotated {
		scope.Cancel()
	}
	return rotated
}

// Align lines up the selected items on the requested edge. Fewer than two
// resolvable items is a no-op. One history entry.
func (c *Coordinator) Align(ids []string, edge geometry.AlignEdge) bool {
	if len(ids) < 2 {
		return false
	}
	aligned := false
	scope := c.history.Begin()
	defer scope.Release()

	c.store.Mutate(func(sc *scene.Scene) bool {
		indexes := selectedIndexes(sc, ids)
		if len(indexes) < 2 {
			return false
		}
		boxes := make([]geometry.Rect, len(indexes))
		for n, i := range indexes {
			boxes[n] = itemBounds(sc.Items[i])
		}
		deltas := geometry.Align(boxes, edge)
		if deltas == nil {
			return false
		}
		for n, i := range indexes {
			sc.Items[i].X += deltas[n].DX
			sc.Items[i].Y += deltas[n].DY
		}
		constrainGroup(sc, indexes)
		aligned = true
		return true
	})
	if !aligned {
		scope.Cancel()
	}
	return aligned
}

// BringToFront moves the selection to the end of the paint order,
// preserving the selection's internal ordering. The floor plan, grid, and
// entry-zone overlay are static layers below all items, so reordering can
// never sink an item beneath them.
func (c *Coordinator) BringToFront(ids []string) bool {
	return c.reorder(ids, true)
}

// SendToBack moves the selection to the start of the item list, which is
// still above the static layers.
func (c *Coordinator) SendToBack(ids []string) bool {
	return c.reorder(ids, false)
}

func (c *Coordinator) reorder(ids []string, toFront bool) bool {
	if len(ids) == 0 {
		return false
	}
	changed := false
	scope := c.history.Begin()
	defer scope.Release()

	c.store.Mutate(func(sc *scene.Scene) bool {
		selected := make(map[string]bool, len(ids))
		for _, id := range ids {
			selected[id] = true
		}
		var picked, rest []scene.Item
		for _, it := range sc.Items {
			if selected[it.ID] {
				picked = append(picked, it)
			} else {
				rest = append(rest, it)
			}
		}
		if len(picked) == 0 {
			return false
		}
		next := make([]scene.Item, 0, len(sc.Items))
		if toFront {
			next = append(next, rest...)
			next = append(next, picked...)
		} else {
			next = append(next, picked...)
			next = append(next, rest...)
		}
		changed = true
		sc.Items = next
		return true
	})
	if !changed {
		scope.Cancel()
	}
	return changed
}

func selectedIndexes(sc *scene.Scene, ids []string) []int {
	var out []int
	for _, id := range ids {
		if i := sc.ItemIndex(id); i >= 0 {
			out = append(out, i)
		}
	}
	return out
}

func groupBounds(sc *scene.Scene, indexes []int) geometry.Rect {
	boxes := make([]geometry.Rect, 0, len(indexes))
	for _, i := range indexes {
		boxes = append(boxes, itemBounds(sc.Items[i]))
	}
	return geometry.UnionAll(boxes)
}

// constrainGroup clamps the combined AABB of the given items inside the
// floor plan, translating every member by the same delta so the group
// moves as one rigid body. No floor plan means no constraint.
func constrainGroup(sc *scene.Scene, indexes []int) {
	container, ok := containerRect(sc)
	if !ok {
		return
	}
	group := groupBounds(sc, indexes)
	if group.IsEmpty() {
		return
	}
	dx, dy := geometry.ConstrainDelta(group, container)
	if dx == 0 && dy == 0 {
		return
	}
	for _, i := range indexes {
		sc.Items[i].X += dx
		sc.Items[i].Y += dy
	}
}
