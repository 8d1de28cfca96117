package track

import (
	"math"

	"fs-track-builder/internal/common"
)

// ConeColor tags the role of a cone.
type ConeColor string

const (
	ConeBlue   ConeColor = "blue"   // left boundary
	ConeYellow ConeColor = "yellow" // right boundary
	ConeOrange ConeColor = "orange" // start gate
)

// ConeColors lists the colors in output order.
var ConeColors = []ConeColor{ConeBlue, ConeYellow, ConeOrange}

// Cones maps a color to its cone positions, in meters.
type Cones map[ConeColor][]common.Vec2

// Count returns the total number of cones.
func (c Cones) Count() int {
	total := 0
	for _, pts := range c {
		total += len(pts)
	}
	return total
}

// Pose is a vehicle position (meters) and heading (radians).
type Pose struct {
	X, Y float64
	Yaw  float64
}

// PoseOffset displaces the start pose in the local frame of the first
// centerline sample. Yaw is in radians.
type PoseOffset struct {
	Longitudinal float64
	Lateral      float64
	Yaw          float64
}

// Grid snaps waypoint placement to a square lattice.
type Grid struct {
	Enabled bool
	Size    float64 // meters
}

// Snap returns p snapped to the grid when it is enabled.
func (g Grid) Snap(p common.Vec2) common.Vec2 {
	if !g.Enabled {
		return p
	}
	x, y := SnapToGrid(p.X, p.Y, g.Size)
	return common.Vec2{X: x, Y: y}
}

// SnapToGrid floors each coordinate to the nearest lower multiple of
// gridSize. A non-positive gridSize leaves the coordinates unchanged.
func SnapToGrid(x, y, gridSize float64) (float64, float64) {
	if gridSize <= 0 {
		return x, y
	}
	return gridSize * math.Floor(x/gridSize), gridSize * math.Floor(y/gridSize)
}
