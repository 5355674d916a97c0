//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/planbay/planbay/internal/editor"
	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/history"
	"github.com/planbay/planbay/internal/scene"
)

var (
	ed    *editor.Editor
	batch *history.Scope
)

func main() {
	ed = editor.New(editor.Options{})

	// Create the editor API object
	planbayEditor := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	planbayEditor.Set("newLayout", js.FuncOf(newLayout))
	planbayEditor.Set("loadScene", js.FuncOf(loadScene))
	planbayEditor.Set("loadSampleScene", js.FuncOf(loadSampleScene))
	planbayEditor.Set("setFloorPlan", js.FuncOf(setFloorPlan))
	planbayEditor.Set("clearFloorPlan", js.FuncOf(clearFloorPlan))
	planbayEditor.Set("addItem", js.FuncOf(addItem))
	planbayEditor.Set("moveItem", js.FuncOf(moveItem))
	planbayEditor.Set("rotateItem", js.FuncOf(rotateItem))
	planbayEditor.Set("removeItem", js.FuncOf(removeItem))
	planbayEditor.Set("setItemLocked", js.FuncOf(setItemLocked))
	planbayEditor.Set("setSelection", js.FuncOf(setSelection))
	planbayEditor.Set("duplicateSelection", js.FuncOf(duplicateSelection))
	planbayEditor.Set("copySelection", js.FuncOf(copySelection))
	planbayEditor.Set("paste", js.FuncOf(paste))
	planbayEditor.Set("alignSelection", js.FuncOf(alignSelection))
	planbayEditor.Set("moveSelectionBy", js.FuncOf(moveSelectionBy))
	planbayEditor.Set("rotateSelectionBy", js.FuncOf(rotateSelectionBy))
	planbayEditor.Set("bringToFront", js.FuncOf(bringToFront))
	planbayEditor.Set("sendToBack", js.FuncOf(sendToBack))
	planbayEditor.Set("undo", js.FuncOf(undo))
	planbayEditor.Set("redo", js.FuncOf(redo))
	planbayEditor.Set("beginBatch", js.FuncOf(beginBatch))
	planbayEditor.Set("endBatch", js.FuncOf(endBatch))
	planbayEditor.Set("cancelBatch", js.FuncOf(cancelBatch))
	planbayEditor.Set("objectMoved", js.FuncOf(objectMoved))
	planbayEditor.Set("objectRemoved", js.FuncOf(objectRemoved))
	planbayEditor.Set("onViolations", js.FuncOf(onViolations))

	// --- Queries (frontend ← engine) ---
	planbayEditor.Set("getScene", js.FuncOf(getScene))
	planbayEditor.Set("getSelection", js.FuncOf(getSelection))
	planbayEditor.Set("getViolations", js.FuncOf(getViolations))
	planbayEditor.Set("getTemplates", js.FuncOf(getTemplates))
	planbayEditor.Set("canUndo", js.FuncOf(canUndo))
	planbayEditor.Set("canRedo", js.FuncOf(canRedo))

	// Register on global scope
	js.Global().Set("planbayEditor", planbayEditor)

	// Signal that WASM is ready
	js.Global().Set("planbayWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{}             { return js.ValueOf(map[string]interface{}{"ok": true}) }
func fail(msg string) interface{} { return js.ValueOf(map[string]interface{}{"error": msg}) }
func applied(v bool) interface{}  { return js.ValueOf(map[string]interface{}{"applied": v}) }

func asJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(string(data))
}

// --- Command Handlers ---

func newLayout(this js.Value, args []js.Value) interface{} {
	name := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}
	ed.NewLayout(name)
	return ok()
}

func loadScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing scene JSON")
	}
	var sc scene.Scene
	if err := json.Unmarshal([]byte(args[0].String()), &sc); err != nil {
		return fail(err.Error())
	}
	ed.LoadScene(sc)
	return ok()
}

func loadSampleScene(this js.Value, args []js.Value) interface{} {
	ed.SampleScene()
	return ok()
}

func setFloorPlan(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("setFloorPlan(widthFt, heightFt, entryZone)")
	}
	entry := scene.EntryZonePosition(args[2].String())
	if _, err := ed.SetFloorPlan(args[0].Float(), args[1].Float(), entry); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func clearFloorPlan(this js.Value, args []js.Value) interface{} {
	ed.ClearFloorPlan()
	return ok()
}

func addItem(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("addItem(templateId, x, y)")
	}
	item, err := ed.AddItem(args[0].String(), args[1].Float(), args[2].Float())
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "itemId": item.ID})
}

func moveItem(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("moveItem(itemId, x, y)")
	}
	if err := ed.MoveItem(args[0].String(), args[1].Float(), args[2].Float()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func rotateItem(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("rotateItem(itemId, angleDeg)")
	}
	if err := ed.RotateItem(args[0].String(), args[1].Float()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func removeItem(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("removeItem(itemId)")
	}
	if err := ed.RemoveItem(args[0].String()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func setItemLocked(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("setItemLocked(itemId, locked)")
	}
	if err := ed.SetItemLocked(args[0].String(), args[1].Bool()); err != nil {
		return fail(err.Error())
	}
	return ok()
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		ed.SetSelection(nil)
		return ok()
	}
	arr := args[0]
	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	ed.SetSelection(ids)
	return ok()
}

func duplicateSelection(this js.Value, args []js.Value) interface{} {
	created := ed.DuplicateSelection()
	return asJSON(created)
}

func copySelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(map[string]interface{}{"copied": ed.CopySelection()})
}

func paste(this js.Value, args []js.Value) interface{} {
	created := ed.Paste()
	return asJSON(created)
}

var alignEdges = map[string]geometry.AlignEdge{
	"left":   geometry.AlignLeft,
	"right":  geometry.AlignRight,
	"top":    geometry.AlignTop,
	"bottom": geometry.AlignBottom,
	"center": geometry.AlignCenter,
	"middle": geometry.AlignMiddle,
}

func alignSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("alignSelection(edge)")
	}
	edge, known := alignEdges[args[0].String()]
	if !known {
		return fail("unknown align edge: " + args[0].String())
	}
	return applied(ed.AlignSelection(edge))
}

func moveSelectionBy(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return fail("moveSelectionBy(dx, dy)")
	}
	return applied(ed.MoveSelectionBy(args[0].Float(), args[1].Float()))
}

func rotateSelectionBy(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("rotateSelectionBy(deltaDeg)")
	}
	return applied(ed.RotateSelectionBy(args[0].Float()))
}

func bringToFront(this js.Value, args []js.Value) interface{} {
	return applied(ed.BringSelectionToFront())
}

func sendToBack(this js.Value, args []js.Value) interface{} {
	return applied(ed.SendSelectionToBack())
}

func undo(this js.Value, args []js.Value) interface{} {
	return applied(ed.Undo())
}

func redo(this js.Value, args []js.Value) interface{} {
	return applied(ed.Redo())
}

func beginBatch(this js.Value, args []js.Value) interface{} {
	if batch != nil {
		return fail("batch already open")
	}
	batch = ed.BeginBatch()
	return ok()
}

func endBatch(this js.Value, args []js.Value) interface{} {
	if batch == nil {
		return fail("no open batch")
	}
	batch.Release()
	batch = nil
	return ok()
}

func cancelBatch(this js.Value, args []js.Value) interface{} {
	if batch == nil {
		return fail("no open batch")
	}
	batch.Cancel()
	batch = nil
	return ok()
}

func objectMoved(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return fail("objectMoved(itemId, x, y, angleDeg)")
	}
	ed.ObjectMoved(args[0].String(), args[1].Float(), args[2].Float(), args[3].Float())
	return ok()
}

func objectRemoved(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("objectRemoved(itemId)")
	}
	ed.ObjectRemoved(args[0].String())
	return ok()
}

// onViolations wires the debounced violation scan to a JS callback that
// receives the violating item ids as a JSON array string.
func onViolations(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return fail("onViolations(callback)")
	}
	callback := args[0]
	ed.OnViolations(func(ids []string) {
		data, err := json.Marshal(ids)
		if err != nil {
			return
		}
		callback.Invoke(string(data))
	})
	return ok()
}

// --- Query Handlers ---

func getScene(this js.Value, args []js.Value) interface{} {
	return asJSON(ed.Scene())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return asJSON(ed.Selection())
}

func getViolations(this js.Value, args []js.Value) interface{} {
	ids := ed.ViolatingItems()
	if ids == nil {
		ids = []string{}
	}
	return asJSON(ids)
}

func getTemplates(this js.Value, args []js.Value) interface{} {
	return asJSON(ed.Catalog().List())
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.History().CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(ed.History().CanRedo())
}
