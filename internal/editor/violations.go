package editor

import (
	"time"

	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/scene"
)

// ViolatingItems scans every item against the floor plan's entry zone and
// returns the ids whose rotated bounds intersect the reserved band. No
// floor plan means no violations.
func (e *Editor) ViolatingItems() []string {
	sc := e.store.GetState()
	container, ok := e.containerRect(&sc)
	if !ok {
		return nil
	}
	side := geometry.Side(sc.FloorPlan.EntryZone)
	var out []string
	for _, it := range sc.Items {
		box := geometry.RotatedBounds(it.X, it.Y, it.LengthFt, it.WidthFt, it.AngleDeg)
		if geometry.ViolatesEntryZone(box, container, side, e.entryZoneFraction) {
			out = append(out, it.ID)
		}
	}
	return out
}

// OnViolations registers the callback fired after each debounced scan.
func (e *Editor) OnViolations(fn func([]string)) {
	e.mu.Lock()
	e.onViolations = fn
	e.mu.Unlock()
}

// ScheduleViolationScan debounces the full entry-zone scan: only the last
// request within the window triggers the recomputation, so a continuous
// drag does not pay the per-event cost of walking every item.
func (e *Editor) ScheduleViolationScan() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.onViolations == nil {
		return
	}
	if e.scanTimer != nil {
		e.scanTimer.Stop()
	}
	e.scanTimer = time.AfterFunc(e.debounceWindow, func() {
		violations := e.ViolatingItems()
		e.mu.Lock()
		fn := e.onViolations
		e.mu.Unlock()
		if fn != nil {
			fn(violations)
		}
	})
}

// ItemBounds returns the rotated AABB for an item, preferring the live
// renderer geometry when a handle is attached and falling back to the
// model otherwise.
func (e *Editor) ItemBounds(id string) (geometry.Rect, bool) {
	if handle, ok := e.store.RenderHandle(id); ok {
		if box, known := e.renderer.Bounds(handle); known && box.Valid() && !box.IsEmpty() {
			return box, true
		}
	}
	sc := e.store.GetState()
	it, ok := sc.Item(id)
	if !ok {
		return geometry.Rect{}, false
	}
	box := geometry.RotatedBounds(it.X, it.Y, it.LengthFt, it.WidthFt, it.AngleDeg)
	return box, !box.IsEmpty()
}

// SampleScene loads the built-in demo layout, used by the playground and
// the wasm bridge.
func (e *Editor) SampleScene() {
	e.LoadScene(scene.NewSampleScene())
}
