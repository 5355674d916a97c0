package api

import (
	"errors"
	"fmt"

	"github.com/planbay/planbay/internal/geometry"
	"github.com/planbay/planbay/internal/scene"
)

// ErrBadOperation marks malformed or unknown operations; the HTTP layer
// maps it to 400.
var ErrBadOperation = errors.New("bad operation")

// Operation is one editor mutation, submitted over HTTP or the live
// channel. Fields beyond Type are populated per operation type.
type Operation struct {
	Type string `json:"type"`

	// floorplan.set
	WidthFt   float64 `json:"widthFt,omitempty"`
	HeightFt  float64 `json:"heightFt,omitempty"`
	EntryZone string  `json:"entryZonePosition,omitempty"`

	// item.*
	ItemID     string   `json:"itemId,omitempty"`
	TemplateID string   `json:"templateId,omitempty"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	AngleDeg   *float64 `json:"angleDeg,omitempty"`
	Locked     *bool    `json:"locked,omitempty"`

	// selection.*
	Selection []string `json:"selection,omitempty"`
	Edge      string   `json:"edge,omitempty"`
	DX        float64  `json:"dx,omitempty"`
	DY        float64  `json:"dy,omitempty"`
	DeltaDeg  float64  `json:"deltaDeg,omitempty"`

	// layout.new
	Name string `json:"name,omitempty"`

	// batch: nested operations applied inside one history entry
	Ops []Operation `json:"ops,omitempty"`
}

// OpResult reports what an operation did. Applied is false for valid
// requests the engine refused (undo with empty history, align with one
// item); those are not errors.
type OpResult struct {
	Applied bool     `json:"applied"`
	ItemID  string   `json:"itemId,omitempty"`
	Created []string `json:"created,omitempty"`
}

var alignEdges = map[string]geometry.AlignEdge{
	"left":   geometry.AlignLeft,
	"right":  geometry.AlignRight,
	"top":    geometry.AlignTop,
	"bottom": geometry.AlignBottom,
	"center": geometry.AlignCenter,
	"middle": geometry.AlignMiddle,
}

// Apply dispatches one operation against the session's editor.
func (s *Session) Apply(op Operation) (OpResult, error) {
	ed := s.Editor
	switch op.Type {
	case "floorplan.set":
		_, err := ed.SetFloorPlan(op.WidthFt, op.HeightFt, scene.EntryZonePosition(op.EntryZone))
		if err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true}, nil

	case "floorplan.clear":
		ed.ClearFloorPlan()
		return OpResult{Applied: true}, nil

	case "item.add":
		x, y := floatOr(op.X, 0), floatOr(op.Y, 0)
		item, err := ed.AddItem(op.TemplateID, x, y)
		if err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true, ItemID: item.ID}, nil

	case "item.move":
		if op.X == nil || op.Y == nil {
			return OpResult{}, fmt.Errorf("%w: item.move requires x and y", ErrBadOperation)
		}
		if err := ed.MoveItem(op.ItemID, *op.X, *op.Y); err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true}, nil

	case "item.rotate":
		if op.AngleDeg == nil {
			return OpResult{}, fmt.Errorf("%w: item.rotate requires angleDeg", ErrBadOperation)
		}
		if err := ed.RotateItem(op.ItemID, *op.AngleDeg); err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true}, nil

	case "item.remove":
		if err := ed.RemoveItem(op.ItemID); err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true}, nil

	case "item.lock":
		if op.Locked == nil {
			return OpResult{}, fmt.Errorf("%w: item.lock requires locked", ErrBadOperation)
		}
		if err := ed.SetItemLocked(op.ItemID, *op.Locked); err != nil {
			return OpResult{}, err
		}
		return OpResult{Applied: true}, nil

	case "selection.set":
		ed.SetSelection(op.Selection)
		return OpResult{Applied: true}, nil

	case "selection.duplicate":
		created := ed.DuplicateSelection()
		return OpResult{Applied: len(created) > 0, Created: created}, nil

	case "selection.copy":
		return OpResult{Applied: ed.CopySelection() > 0}, nil

	case "selection.paste":
		created := ed.Paste()
		return OpResult{Applied: len(created) > 0, Created: created}, nil

	case "selection.align":
		edge, ok := alignEdges[op.Edge]
		if !ok {
			return OpResult{}, fmt.Errorf("%w: unknown align edge %s", ErrBadOperation, op.Edge)
		}
		return OpResult{Applied: ed.AlignSelection(edge)}, nil

	case "selection.move":
		return OpResult{Applied: ed.MoveSelectionBy(op.DX, op.DY)}, nil

	case "selection.rotate":
		return OpResult{Applied: ed.RotateSelectionBy(op.DeltaDeg)}, nil

	case "order.front":
		return OpResult{Applied: ed.BringSelectionToFront()}, nil

	case "order.back":
		return OpResult{Applied: ed.SendSelectionToBack()}, nil

	case "history.undo":
		return OpResult{Applied: ed.Undo()}, nil

	case "history.redo":
		return OpResult{Applied: ed.Redo()}, nil

	case "layout.new":
		ed.NewLayout(op.Name)
		return OpResult{Applied: true}, nil

	case "layout.sample":
		ed.SampleScene()
		return OpResult{Applied: true}, nil

	case "batch":
		return s.applyBatch(op.Ops)

	default:
		return OpResult{}, fmt.Errorf("%w: unknown type %s", ErrBadOperation, op.Type)
	}
}

// applyBatch runs nested operations inside one suppression scope so the
// whole compound action lands as a single history entry. The first failing
// nested op stops the batch; earlier ops stay applied.
func (s *Session) applyBatch(ops []Operation) (OpResult, error) {
	scope := s.Editor.BeginBatch()
	defer scope.Release()

	result := OpResult{}
	for _, nested := range ops {
		if nested.Type == "batch" {
			return OpResult{}, fmt.Errorf("%w: nested batch operations are not allowed", ErrBadOperation)
		}
		r, err := s.Apply(nested)
		if err != nil {
			return OpResult{}, err
		}
		if r.Applied {
			result.Applied = true
		}
		result.Created = append(result.Created, r.Created...)
		if r.ItemID != "" {
			result.Created = append(result.Created, r.ItemID)
		}
	}
	return result, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
