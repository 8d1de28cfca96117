package common

import "math"

// Vec2 represents a 2D vector. Positions are in meters.
type Vec2 struct {
	X, Y float64
}

// Add adds two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub subtracts other from v.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale multiplies the vector by a scalar.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product of v and other.
func (v Vec2) Dot(other Vec2) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Len returns the length (magnitude) of the vector.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the Euclidean distance between v and other.
func (v Vec2) Dist(other Vec2) float64 {
	return other.Sub(v).Len()
}

// Normalize returns a unit vector in the same direction.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Tangent returns the direction obtained by rotating a normal back by 90
// degrees: (-n.y, n.x).
func (v Vec2) Tangent() Vec2 {
	return Vec2{-v.Y, v.X}
}

// ChordLength returns the summed distance between consecutive points.
func ChordLength(pts []Vec2) float64 {
	length := 0.0
	for i := 1; i < len(pts); i++ {
		length += pts[i-1].Dist(pts[i])
	}
	return length
}
