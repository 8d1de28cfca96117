package track

import (
	"math"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/spline"
)

// Centerline is the resampled track center with its normals and curvature.
type Centerline struct {
	Points    []common.Vec2
	Normals   []common.Vec2 // Unit vector pointing to the left boundary
	Curvature []float64     // Signed, 1/m
}

func newCenterline(s *spline.Samples) Centerline {
	return Centerline{Points: s.Points, Normals: s.Normals, Curvature: s.Curvature}
}

// Len returns the number of samples.
func (c Centerline) Len() int {
	return len(c.Points)
}

// ClosestSample finds the sample closest to the given world position.
// Returns -1 when the centerline is empty.
// TODO: use a spatial index if centerlines grow past a few thousand samples.
func (c Centerline) ClosestSample(pos common.Vec2) int {
	minDistSq := math.MaxFloat64
	closestIdx := -1

	for i, p := range c.Points {
		dx := pos.X - p.X
		dy := pos.Y - p.Y
		distSq := dx*dx + dy*dy
		if distSq < minDistSq {
			minDistSq = distSq
			closestIdx = i
		}
	}
	return closestIdx
}

// LateralOffset returns the signed distance of pos from the closest sample,
// projected on its normal (positive toward the left boundary), and the
// sample index.
func (c Centerline) LateralOffset(pos common.Vec2) (float64, int) {
	idx := c.ClosestSample(pos)
	if idx < 0 {
		return 0, -1
	}
	return pos.Sub(c.Points[idx]).Dot(c.Normals[idx]), idx
}

// MaxCurvature converts a minimum turning radius (meters) into the largest
// admissible curvature. A non-positive radius disables the check.
func MaxCurvature(minTurningRadius float64) float64 {
	if minTurningRadius <= 0 {
		return math.Inf(1)
	}
	return 1 / minTurningRadius
}

// Excessive returns the indices of samples whose absolute curvature exceeds
// maxCurvature.
func (c Centerline) Excessive(maxCurvature float64) []int {
	var idx []int
	for i, k := range c.Curvature {
		if math.Abs(k) > maxCurvature {
			idx = append(idx, i)
		}
	}
	return idx
}
