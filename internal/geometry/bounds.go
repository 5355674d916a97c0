package geometry

import "math"

// RotatedHalfExtents computes the axis-aligned half extents of a w x h
// rectangle rotated by angleDeg about its center:
//
//	halfW = (w*|cos| + h*|sin|) / 2
//	halfH = (w*|sin| + h*|cos|) / 2
//
// Constraint and entry-zone checks operate on axis-aligned boxes, so a
// rotated item contributes the AABB of its rotated footprint.
func RotatedHalfExtents(w, h, angleDeg float64) (halfW, halfH float64) {
	if !isFinite(w) || !isFinite(h) || !isFinite(angleDeg) || w <= 0 || h <= 0 {
		return 0, 0
	}
	rad := angleDeg * math.Pi / 180
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	return (w*cos + h*sin) / 2, (w*sin + h*cos) / 2
}

// RotatedBounds returns the axis-aligned bounding box of a w x h rectangle
// centered at (cx, cy) and rotated by angleDeg.
func RotatedBounds(cx, cy, w, h, angleDeg float64) Rect {
	halfW, halfH := RotatedHalfExtents(w, h, angleDeg)
	if halfW == 0 || halfH == 0 || !isFinite(cx) || !isFinite(cy) {
		return Rect{}
	}
	return Rect{Left: cx - halfW, Top: cy - halfH, Width: 2 * halfW, Height: 2 * halfH}
}

// ConstrainDelta computes the minimal translation (dx, dy) that moves a box
// fully inside the container, clamping each side independently. A box wider
// or taller than the container pins to the container's left/top edge. Empty
// or invalid input yields no constraint.
func ConstrainDelta(box, container Rect) (dx, dy float64) {
	if !box.Valid() || !container.Valid() || box.IsEmpty() || container.IsEmpty() {
		return 0, 0
	}
	if box.Left < container.Left {
		dx = container.Left - box.Left
	} else if box.Right() > container.Right() {
		dx = container.Right() - box.Right()
	}
	if box.Left+dx < container.Left {
		dx = container.Left - box.Left
	}
	if box.Top < container.Top {
		dy = container.Top - box.Top
	} else if box.Bottom() > container.Bottom() {
		dy = container.Bottom() - box.Bottom()
	}
	if box.Top+dy < container.Top {
		dy = container.Top - box.Top
	}
	return dx, dy
}

// ConstrainCenter clamps a rotated item's center so its rotated AABB stays
// inside the container. Returns the clamped center and whether it moved.
func ConstrainCenter(cx, cy, halfW, halfH float64, container Rect) (float64, float64, bool) {
	if !isFinite(cx) || !isFinite(cy) || !isFinite(halfW) || !isFinite(halfH) {
		return cx, cy, false
	}
	if halfW <= 0 || halfH <= 0 || !container.Valid() || container.IsEmpty() {
		return cx, cy, false
	}
	box := Rect{Left: cx - halfW, Top: cy - halfH, Width: 2 * halfW, Height: 2 * halfH}
	dx, dy := ConstrainDelta(box, container)
	if dx == 0 && dy == 0 {
		return cx, cy, false
	}
	return cx + dx, cy + dy, true
}
