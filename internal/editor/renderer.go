package editor

import "github.com/planbay/planbay/internal/geometry"

// Renderer is the contract the editor consumes from the external painting
// layer. Handles are opaque: the editor stores and forwards them but never
// interprets their contents, and every method must tolerate handles the
// renderer no longer knows (e.g. after a canvas clear).
type Renderer interface {
	// Bounds returns the current axis-aligned bounding rect for a render
	// object, and whether the handle is still known.
	Bounds(handle any) (geometry.Rect, bool)

	// SetPlacement moves a render object to a center position and
	// rotation in scene coordinates.
	SetPlacement(handle any, x, y, angleDeg float64)

	// SelectedHandles enumerates the render objects currently selected on
	// the canvas.
	SelectedHandles() []any

	// Remove discards a render object. Unknown handles are ignored.
	Remove(handle any)
}

// nopRenderer is used when no renderer is attached (server mode, tests);
// geometry is computed from the scene model instead of queried back.
type nopRenderer struct{}

func (nopRenderer) Bounds(any) (geometry.Rect, bool)            { return geometry.Rect{}, false }
func (nopRenderer) SetPlacement(any, float64, float64, float64) {}
func (nopRenderer) SelectedHandles() []any                      { return nil }
func (nopRenderer) Remove(any)                                  {}
