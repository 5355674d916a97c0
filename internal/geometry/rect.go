// Package geometry holds the pure constraint math for the layout engine.
// Everything operates on axis-aligned rectangles in scene coordinate units;
// rotation is folded in up front by computing rotated bounding boxes. All
// functions are deterministic and tolerate non-finite input by reporting
// "no constraint" instead of propagating NaN.
package geometry

import "math"

// Rect is an axis-aligned bounding box.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64   { return r.Left + r.Width }
func (r Rect) Bottom() float64  { return r.Top + r.Height }
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// IsEmpty reports whether the rect has zero or negative area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Valid reports whether every bound is a finite number.
func (r Rect) Valid() bool {
	return isFinite(r.Left) && isFinite(r.Top) && isFinite(r.Width) && isFinite(r.Height)
}

// Union returns the smallest rect containing both rects.
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	left := min(r.Left, other.Left)
	top := min(r.Top, other.Top)
	right := max(r.Right(), other.Right())
	bottom := max(r.Bottom(), other.Bottom())
	return Rect{Left: left, Top: top, Width: right - left, Height: bottom - top}
}

// Translate returns the rect shifted by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Width: r.Width, Height: r.Height}
}

// Overlaps is the standard AABB intersection test. Touching edges count as
// overlapping. Invalid rects never overlap anything.
func Overlaps(a, b Rect) bool {
	if !a.Valid() || !b.Valid() || a.IsEmpty() || b.IsEmpty() {
		return false
	}
	return !(a.Right() < b.Left || a.Left > b.Right() || a.Bottom() < b.Top || a.Top > b.Bottom())
}

// UnionAll combines a set of rects, skipping empty or invalid ones.
func UnionAll(rects []Rect) Rect {
	var out Rect
	for _, r := range rects {
		if !r.Valid() || r.IsEmpty() {
			continue
		}
		out = out.Union(r)
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
