package geometry

// Side names a container edge.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// DefaultEntryZoneFraction is the share of the container reserved for the
// entry band when no override is configured.
const DefaultEntryZoneFraction = 0.2

// EntryZoneBand returns the reserved band rect for a container and edge.
// The band is measured from the fixed container edge it hugs, which is why
// the four orientations carry their own boundary formulas. Top and bottom
// reserve a height fraction across the full width; left and right reserve a
// width fraction across the full height. An invalid container or fraction
// yields an empty band.
func EntryZoneBand(container Rect, side Side, fraction float64) Rect {
	if !container.Valid() || container.IsEmpty() {
		return Rect{}
	}
	if !isFinite(fraction) || fraction <= 0 || fraction > 1 {
		return Rect{}
	}
	switch side {
	case SideTop:
		band := container.Height * fraction
		return Rect{Left: container.Left, Top: container.Top, Width: container.Width, Height: band}
	case SideBottom:
		band := container.Height * fraction
		return Rect{Left: container.Left, Top: container.Bottom() - band, Width: container.Width, Height: band}
	case SideLeft:
		band := container.Width * fraction
		return Rect{Left: container.Left, Top: container.Top, Width: band, Height: container.Height}
	case SideRight:
		band := container.Width * fraction
		return Rect{Left: container.Right() - band, Top: container.Top, Width: band, Height: container.Height}
	default:
		return Rect{}
	}
}

// ViolatesEntryZone reports whether any part of a box intersects the
// reserved entry band. A box that only touches the band boundary does not
// violate.
func ViolatesEntryZone(box, container Rect, side Side, fraction float64) bool {
	band := EntryZoneBand(container, side, fraction)
	if band.IsEmpty() || !box.Valid() || box.IsEmpty() {
		return false
	}
	// Strict interior intersection: sharing an edge with the band is legal.
	return box.Right() > band.Left && box.Left < band.Right() &&
		box.Bottom() > band.Top && box.Top < band.Bottom()
}
