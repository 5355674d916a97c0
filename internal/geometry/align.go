package geometry

// AlignEdge selects which feature of the selection to line up.
type AlignEdge string

const (
	AlignLeft   AlignEdge = "left"
	AlignRight  AlignEdge = "right"
	AlignTop    AlignEdge = "top"
	AlignBottom AlignEdge = "bottom"
	AlignCenter AlignEdge = "center" // horizontal centers
	AlignMiddle AlignEdge = "middle" // vertical centers
)

// Delta is a per-box translation produced by Align.
type Delta struct {
	DX float64
	DY float64
}

// Align computes the translation for each box so the requested edge lines
// up. Edge alignment targets the extremal coordinate across the boxes;
// center/middle target the mean of the box centers. Sizes never change.
// Fewer than two valid boxes is a no-op (nil). Invalid boxes keep a zero
// delta and do not contribute to the target.
func Align(boxes []Rect, edge AlignEdge) []Delta {
	if len(boxes) < 2 {
		return nil
	}
	deltas := make([]Delta, len(boxes))

	valid := 0
	for _, b := range boxes {
		if b.Valid() && !b.IsEmpty() {
			valid++
		}
	}
	if valid < 2 {
		return nil
	}

	var target float64
	first := true
	switch edge {
	case AlignLeft:
		for _, b := range boxes {
			if !b.Valid() || b.IsEmpty() {
				continue
			}
			if first || b.Left < target {
				target = b.Left
			}
			first = false
		}
	case AlignRight:
		for _, b := range boxes {
			if !b.Valid() || b.IsEmpty() {
				continue
			}
			if first || b.Right() > target {
				target = b.Right()
			}
			first = false
		}
	case AlignTop:
		for _, b := range boxes {
			if !b.Valid() || b.IsEmpty() {
				continue
			}
			if first || b.Top < target {
				target = b.Top
			}
			first = false
		}
	case AlignBottom:
		for _, b := range boxes {
			if !b.Valid() || b.IsEmpty() {
				continue
			}
			if first || b.Bottom() > target {
				target = b.Bottom()
			}
			first = false
		}
	case AlignCenter, AlignMiddle:
		var sum float64
		for _, b := range boxes {
			if !b.Valid() || b.IsEmpty() {
				continue
			}
			if edge == AlignCenter {
				sum += b.CenterX()
			} else {
				sum += b.CenterY()
			}
		}
		target = sum / float64(valid)
	default:
		return nil
	}

	for i, b := range boxes {
		if !b.Valid() || b.IsEmpty() {
			continue
		}
		switch edge {
		case AlignLeft:
			deltas[i].DX = target - b.Left
		case AlignRight:
			deltas[i].DX = target - b.Right()
		case AlignTop:
			deltas[i].DY = target - b.Top
		case AlignBottom:
			deltas[i].DY = target - b.Bottom()
		case AlignCenter:
			deltas[i].DX = target - b.CenterX()
		case AlignMiddle:
			deltas[i].DY = target - b.CenterY()
		}
	}
	return deltas
}
