// Package editor is the facade over the layout engine: it owns the state
// store, history manager and selection coordinator, exposes the surface
// operations the application calls (add/remove/move items, floor plan,
// undo/redo, batches), and keeps the external renderer in sync.
package editor

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/history"
	"github.com/planbay/planbay/internal/scene"
	"github.com/planbay/planbay/internal/selection"
	"github.com/planbay/planbay/internal/state"
	"github.com/planbay/planbay/internal/typeid"
)

var (
	ErrNoFloorPlan      = errors.New("no floor plan installed")
	ErrUnknownTemplate  = errors.New("unknown item template")
	ErrUnknownItem      = errors.New("unknown item")
	ErrItemLocked       = errors.New("item is locked")
	ErrPlanBelowMinimum = errors.New("floor plan below minimum area")
)

// Options tune an editor instance; zero values take defaults.
type Options struct {
	MaxHistory        int
	EntryZoneFraction float64
	DebounceWindow    time.Duration
	Catalog           *scene.Catalog
	Renderer          Renderer
}

const defaultDebounceWindow = 50 * time.Millisecond

// Editor owns the authoritative scene and the machinery around it. It is
// single-threaded by design: the event loop of the surrounding process is
// expected to serialize calls, and the internal mutex only guards the
// ephemeral bookkeeping (selection, debounce timer).
type Editor struct {
	store    *state.Store
	history  *history.Manager
	sel      *selection.Coordinator
	catalog  *scene.Catalog
	renderer Renderer

	entryZoneFraction float64
	debounceWindow    time.Duration

	mu           sync.Mutex
	selected     []string
	scanTimer    *time.Timer
	onViolations func([]string)
}

func New(opts Options) *Editor {
	if opts.Catalog == nil {
		opts.Catalog = scene.DefaultCatalog()
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer{}
	}
	if opts.EntryZoneFraction <= 0 || opts.EntryZoneFraction > 1 {
		opts.EntryZoneFraction = geometry.DefaultEntryZoneFraction
	}
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = defaultDebounceWindow
	}
	store := state.New()
	hist := history.New(store, opts.MaxHistory)
	return &Editor{
		store:             store,
		history:           hist,
		sel:               selection.New(store, hist),
		catalog:           opts.Catalog,
		renderer:          opts.Renderer,
		entryZoneFraction: opts.EntryZoneFraction,
		debounceWindow:    opts.DebounceWindow,
	}
}

// Store exposes the underlying state store for subscribers (the live
// channel and the wasm bridge listen for scene changes there).
func (e *Editor) Store() *state.Store { return e.store }

// History exposes the history manager for observers.
func (e *Editor) History() *history.Manager { return e.history }

// Catalog returns the item template catalog.
func (e *Editor) Catalog() *scene.Catalog { return e.catalog }

// Scene returns a deep copy of the current scene.
func (e *Editor) Scene() scene.Scene { return e.store.GetState() }

// --- Selection bookkeeping (renderer callback) ---

// SetSelection records the selected item ids, as reported by the
// renderer's selection-changed callback.
func (e *Editor) SetSelection(ids []string) {
	e.mu.Lock()
	e.selected = append([]string(nil), ids...)
	e.mu.Unlock()
}

// Selection returns the currently selected item ids.
func (e *Editor) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.selected...)
}

// --- Floor plan operations ---

// SetFloorPlan installs a new floor plan, replacing any existing one.
// Dimensions are validated at this boundary; the plan arrives locked and
// auto-centered, and layout flags from the previous plan are cleared.
func (e *Editor) SetFloorPlan(widthFt, heightFt float64, entry scene.EntryZonePosition) (scene.FloorPlan, error) {
	if widthFt <= 0 || heightFt <= 0 || widthFt*heightFt < scene.MinFloorPlanAreaSqFt {
		return scene.FloorPlan{}, ErrPlanBelowMinimum
	}
	switch entry {
	case scene.EntryTop, scene.EntryBottom, scene.EntryLeft, scene.EntryRight:
	default:
		entry = scene.EntryBottom
	}
	plan := scene.FloorPlan{
		ID:        typeid.NewFloorPlanID(),
		WidthFt:   widthFt,
		HeightFt:  heightFt,
		Position:  nil,
		Locked:    true,
		EntryZone: entry,
	}
	e.store.Mutate(func(sc *scene.Scene) bool {
		sc.FloorPlan = &plan
		delete(sc.Settings, "planRotated")
		delete(sc.Settings, "planNudged")
		return true
	})
	e.history.Save()
	e.ScheduleViolationScan()
	return plan, nil
}

// ClearFloorPlan removes the floor plan. Items stay where they are; with
// no container there is no constraint.
func (e *Editor) ClearFloorPlan() {
	e.store.Mutate(func(sc *scene.Scene) bool {
		if sc.FloorPlan == nil {
			return false
		}
		sc.FloorPlan = nil
		return true
	})
	e.history.Save()
}

// --- Item operations ---

// AddItem places a new item from the catalog at the given center, angle 0.
// The position is clamped inside the floor plan when one is installed.
func (e *Editor) AddItem(templateID string, x, y float64) (scene.Item, error) {
	tpl, ok := e.catalog.Get(templateID)
	if !ok {
		return scene.Item{}, ErrUnknownTemplate
	}
	item := scene.Item{
		ID:         typeid.NewItemID(),
		TemplateID: tpl.ID,
		X:          x,
		Y:          y,
		AngleDeg:   0,
		LengthFt:   tpl.LengthFt,
		WidthFt:    tpl.WidthFt,
	}
	e.store.Mutate(func(sc *scene.Scene) bool {
		if container, ok := e.containerRect(sc); ok {
			hw, hh := geometry.RotatedHalfExtents(item.LengthFt, item.WidthFt, item.AngleDeg)
			item.X, item.Y, _ = geometry.ConstrainCenter(item.X, item.Y, hw, hh, container)
		}
		sc.Items = append(sc.Items, item)
		return true
	})
	e.history.Save()
	e.ScheduleViolationScan()
	return item, nil
}

// RemoveItem deletes an item and tells the renderer to discard its object.
func (e *Editor) RemoveItem(id string) error {
	var handle any
	removed := e.store.Mutate(func(sc *scene.Scene) bool {
		i := sc.ItemIndex(id)
		if i < 0 {
			return false
		}
		handle = sc.Items[i].RenderHandle
		sc.Items = append(sc.Items[:i], sc.Items[i+1:]...)
		return true
	})
	if !removed {
		return ErrUnknownItem
	}
	if handle != nil {
		e.renderer.Remove(handle)
	}
	e.history.Save()
	e.mu.Lock()
	e.selected = removeID(e.selected, id)
	e.mu.Unlock()
	return nil
}

// MoveItem sets an item's center, clamped inside the floor plan.
func (e *Editor) MoveItem(id string, x, y float64) error {
	return e.updateItem(id, func(it *scene.Item, container geometry.Rect, hasPlan bool) {
		it.X, it.Y = x, y
		if hasPlan {
			hw, hh := geometry.RotatedHalfExtents(it.LengthFt, it.WidthFt, it.AngleDeg)
			it.X, it.Y, _ = geometry.ConstrainCenter(it.X, it.Y, hw, hh, container)
		}
	})
}

// RotateItem sets an item's angle (wrapped to [0, 360)) and re-clamps its
// rotated bounds.
func (e *Editor) RotateItem(id string, angleDeg float64) error {
	return e.updateItem(id, func(it *scene.Item, container geometry.Rect, hasPlan bool) {
		it.AngleDeg = scene.NormalizeAngle(angleDeg)
		if hasPlan {
			hw, hh := geometry.RotatedHalfExtents(it.LengthFt, it.WidthFt, it.AngleDeg)
			it.X, it.Y, _ = geometry.ConstrainCenter(it.X, it.Y, hw, hh, container)
		}
	})
}

// SetItemLocked toggles an item's lock flag.
func (e *Editor) SetItemLocked(id string, locked bool) error {
	found := e.store.Mutate(func(sc *scene.Scene) bool {
		i := sc.ItemIndex(id)
		if i < 0 {
			return false
		}
		sc.Items[i].Locked = locked
		return true
	})
	if !found {
		return ErrUnknownItem
	}
	e.history.Save()
	return nil
}

// updateItem applies a geometry-touching change to one unlocked item,
// captures a history entry, and syncs the renderer.
func (e *Editor) updateItem(id string, apply func(*scene.Item, geometry.Rect, bool)) error {
	var locked bool
	var updated scene.Item
	found := e.store.Mutate(func(sc *scene.Scene) bool {
		i := sc.ItemIndex(id)
		if i < 0 {
			return false
		}
		if sc.Items[i].Locked {
			locked = true
			return false
		}
		container, hasPlan := e.containerRect(sc)
		apply(&sc.Items[i], container, hasPlan)
		sc.Items[i].AngleDeg = scene.NormalizeAngle(sc.Items[i].AngleDeg)
		updated = sc.Items[i]
		return true
	})
	if locked {
		return ErrItemLocked
	}
	if !found {
		return ErrUnknownItem
	}
	if handle, ok := e.store.RenderHandle(id); ok {
		e.renderer.SetPlacement(handle, updated.X, updated.Y, updated.AngleDeg)
	}
	e.history.Save()
	e.ScheduleViolationScan()
	return nil
}

// AttachRenderHandle records the renderer's object for an item. The
// reference is weak: snapshots never carry it and it may be cleared at
// any time.
func (e *Editor) AttachRenderHandle(id string, handle any) {
	e.store.SetRenderHandle(id, handle)
}

// --- History operations ---

// BeginBatch opens a history suppression scope for a compound interactive
// action (continuous drag, multi-step tool). The caller must release it on
// every exit path.
func (e *Editor) BeginBatch() *history.Scope {
	return e.history.Begin()
}

// Undo restores the previous snapshot and re-syncs every renderer object.
func (e *Editor) Undo() bool {
	if !e.history.Undo() {
		return false
	}
	e.syncRenderer()
	e.ScheduleViolationScan()
	return true
}

// Redo restores the next snapshot.
func (e *Editor) Redo() bool {
	if !e.history.Redo() {
		return false
	}
	e.syncRenderer()
	e.ScheduleViolationScan()
	return true
}

// NewLayout resets the scene to the empty default and clears history so
// undo cannot resurrect the destroyed project. Clearing is an explicit
// step here, not a side effect of snapshotting.
func (e *Editor) NewLayout(name string) {
	e.history.Clear()
	e.store.Reset()
	if name != "" {
		e.store.Set("metadata.name", name)
	}
	e.history.Save()
	e.SetSelection(nil)
}

// LoadScene replaces the scene from a restored snapshot (project open) and
// starts history fresh from it.
func (e *Editor) LoadScene(sc scene.Scene) {
	e.history.Clear()
	e.store.LoadState(sc)
	e.history.Save()
	e.SetSelection(nil)
	e.ScheduleViolationScan()
}

// --- Selection operations (delegated) ---

func (e *Editor) DuplicateSelection() []string {
	ids := e.Selection()
	created := e.sel.Duplicate(ids)
	e.ScheduleViolationScan()
	return created
}

func (e *Editor) CopySelection() int { return e.sel.Copy(e.Selection()) }

func (e *Editor) Paste() []string {
	created := e.sel.Paste()
	e.ScheduleViolationScan()
	return created
}

func (e *Editor) AlignSelection(edge geometry.AlignEdge) bool {
	ok := e.sel.Align(e.Selection(), edge)
	if ok {
		e.syncRenderer()
		e.ScheduleViolationScan()
	}
	return ok
}

func (e *Editor) MoveSelectionBy(dx, dy float64) bool {
	ok := e.sel.MoveBy(e.Selection(), dx, dy)
	if ok {
		e.syncRenderer()
		e.ScheduleViolationScan()
	}
	return ok
}

func (e *Editor) RotateSelectionBy(deltaDeg float64) bool {
	ok := e.sel.RotateBy(e.Selection(), deltaDeg)
	if ok {
		e.syncRenderer()
		e.ScheduleViolationScan()
	}
	return ok
}

func (e *Editor) BringSelectionToFront() bool { return e.sel.BringToFront(e.Selection()) }
func (e *Editor) SendSelectionToBack() bool   { return e.sel.SendToBack(e.Selection()) }

// --- Renderer callbacks ---

// ObjectMoved handles the renderer's drag-end callback: the final position
// and rotation for one item. The reported angle is absolute, so zero means
// zero, not "unchanged". Position and angle land in a single update and
// capture one history entry; intermediate drag events should arrive inside
// a batch.
func (e *Editor) ObjectMoved(id string, x, y, angleDeg float64) {
	err := e.updateItem(id, func(it *scene.Item, container geometry.Rect, hasPlan bool) {
		it.X, it.Y = x, y
		it.AngleDeg = scene.NormalizeAngle(angleDeg)
		if hasPlan {
			hw, hh := geometry.RotatedHalfExtents(it.LengthFt, it.WidthFt, it.AngleDeg)
			it.X, it.Y, _ = geometry.ConstrainCenter(it.X, it.Y, hw, hh, container)
		}
	})
	if err != nil {
		slog.Debug("object moved for unknown or locked item", "item", id, "error", err)
	}
}

// ObjectRemoved handles the renderer reporting that an object was deleted
// on the canvas side.
func (e *Editor) ObjectRemoved(id string) {
	if err := e.RemoveItem(id); err != nil {
		slog.Debug("object removed for unknown item", "item", id)
	}
}

// syncRenderer pushes every item's placement back to the renderer, used
// after undo/redo or group operations rearrange the scene wholesale.
// Items whose handles are gone are skipped; the canvas re-adds them on its
// next full refresh.
func (e *Editor) syncRenderer() {
	sc := e.store.GetState()
	for _, it := range sc.Items {
		if handle, ok := e.store.RenderHandle(it.ID); ok {
			e.renderer.SetPlacement(handle, it.X, it.Y, it.AngleDeg)
		}
	}
}

func (e *Editor) containerRect(sc *scene.Scene) (geometry.Rect, bool) {
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

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
