package windows

import "github.com/1broseidon/vimwn/internal/platform"

// Axis is one of the two dimensions windows are navigated and tiled along.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// String returns the string representation of the axis
func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return "unknown"
	}
}

// Perpendicular returns the other axis.
func (a Axis) Perpendicular() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Coordinate reads the window origin along the axis.
func (a Axis) Coordinate(w *platform.Window) int {
	if a == Horizontal {
		return w.Bounds.X
	}
	return w.Bounds.Y
}
