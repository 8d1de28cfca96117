package editor

import (
	"fmt"
	"image"

	"fs-track-builder/internal/common"
)

// HoverScale enlarges the radius of a hovered waypoint.
const HoverScale = 1.5

// BoundingBox is an axis-aligned box in canvas pixels.
type BoundingBox struct {
	Left, Top, Right, Bottom float64
}

// Waypoint is a movable control point. Its position is in meters, its
// radius and bounding box in pixels.
type Waypoint struct {
	Pos        common.Vec2
	BaseRadius float64
	Radius     float64
	Hovered    bool

	pixel image.Point
	box   BoundingBox
	view  common.ViewTransform
}

// NewWaypoint creates a waypoint at pos with the given selection radius.
func NewWaypoint(pos common.Vec2, radius float64, view common.ViewTransform) *Waypoint {
	w := &Waypoint{
		Pos:        pos,
		BaseRadius: radius,
		Radius:     radius,
		view:       view,
	}
	w.updateBoundingBox()
	return w
}

// IsColliding reports whether the canvas point is inside the bounding box,
// edges included.
func (w *Waypoint) IsColliding(px, py float64) bool {
	return px >= w.box.Left && px <= w.box.Right &&
		py >= w.box.Top && py <= w.box.Bottom
}

// BoundingBox returns the current bounding box.
func (w *Waypoint) BoundingBox() BoundingBox {
	return w.box
}

// Pixel returns the canvas position of the waypoint.
func (w *Waypoint) Pixel() image.Point {
	return w.pixel
}

// UpdateHovering updates the hover state from the mouse position and
// reports whether it changed.
func (w *Waypoint) UpdateHovering(px, py float64) bool {
	hovered := w.IsColliding(px, py)
	if hovered == w.Hovered {
		return false
	}

	w.Hovered = hovered
	w.Radius = w.BaseRadius
	if hovered {
		w.Radius = HoverScale * w.BaseRadius
	}
	w.updateBoundingBox()
	return true
}

// UpdatePosition moves the waypoint to (x, y) meters.
func (w *Waypoint) UpdatePosition(x, y float64) {
	w.Pos = common.Vec2{X: x, Y: y}
	w.updateBoundingBox()
}

// SetView changes the transform used for the bounding box.
func (w *Waypoint) SetView(view common.ViewTransform) {
	w.view = view
	w.updateBoundingBox()
}

func (w *Waypoint) updateBoundingBox() {
	w.pixel = w.view.PointToPixels(w.Pos)
	x, y := float64(w.pixel.X), float64(w.pixel.Y)
	w.box = BoundingBox{
		Left:   x - w.Radius,
		Top:    y - w.Radius,
		Right:  x + w.Radius,
		Bottom: y + w.Radius,
	}
}

func (w *Waypoint) String() string {
	return fmt.Sprintf("(%g, %g)", w.Pos.X, w.Pos.Y)
}
