package common

import "image"

const (
	MinZoom  = 0.4
	MaxZoom  = 2.0
	ZoomStep = 0.2
)

// ViewTransform converts between world distances (meters) and display
// distances (pixels). Pixel = meters * PixelsPerMeter * Zoom + Offset.
type ViewTransform struct {
	PixelsPerMeter float64
	Zoom           float64
	OffsetX        float64 // pan, in pixels
	OffsetY        float64
}

// NewViewTransform returns a transform mapping areaWidth meters onto
// canvasWidth pixels at zoom 1.
func NewViewTransform(areaWidth float64, canvasWidth int) ViewTransform {
	return ViewTransform{
		PixelsPerMeter: float64(canvasWidth) / areaWidth,
		Zoom:           1.0,
	}
}

// Scale returns the effective pixels per meter.
func (t ViewTransform) Scale() float64 {
	zoom := t.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return t.PixelsPerMeter * zoom
}

// ToPixels converts a length in meters to a length in pixels, truncating
// toward zero.
func (t ViewTransform) ToPixels(m float64) int {
	return int(m * t.Scale())
}

// ToMeters converts a length in pixels to a length in meters.
func (t ViewTransform) ToMeters(px float64) float64 {
	return px / t.Scale()
}

// PointToPixels maps a world position to canvas coordinates.
func (t ViewTransform) PointToPixels(p Vec2) image.Point {
	return image.Point{
		X: t.ToPixels(p.X) + int(t.OffsetX),
		Y: t.ToPixels(p.Y) + int(t.OffsetY),
	}
}

// PointsToPixels maps every world position to canvas coordinates.
func (t ViewTransform) PointsToPixels(pts []Vec2) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = t.PointToPixels(p)
	}
	return out
}

// PixelsToPoint maps canvas coordinates back to a world position.
func (t ViewTransform) PixelsToPoint(px, py float64) Vec2 {
	return Vec2{
		X: t.ToMeters(px - t.OffsetX),
		Y: t.ToMeters(py - t.OffsetY),
	}
}

// ZoomIn returns the transform zoomed in by one step, clamped to MaxZoom.
func (t ViewTransform) ZoomIn() ViewTransform {
	t.Zoom += ZoomStep
	if t.Zoom > MaxZoom {
		t.Zoom = MaxZoom
	}
	return t
}

// ZoomOut returns the transform zoomed out by one step, clamped to MinZoom.
func (t ViewTransform) ZoomOut() ViewTransform {
	t.Zoom -= ZoomStep
	if t.Zoom < MinZoom {
		t.Zoom = MinZoom
	}
	return t
}

// Pan returns the transform shifted by (dx, dy) pixels.
func (t ViewTransform) Pan(dx, dy float64) ViewTransform {
	t.OffsetX += dx
	t.OffsetY += dy
	return t
}
