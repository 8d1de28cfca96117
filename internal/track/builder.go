package track

import (
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/spline"

	"github.com/rs/zerolog"
)

// Builder derives the centerline, boundaries, cones and start pose from a
// waypoint sequence. Each stage stores its result for the next one; a
// recompute starts again from ComputeCenterline.
type Builder struct {
	center Centerline
	left   []common.Vec2
	right  []common.Vec2
	cones  Cones

	source rand.Source
	log    zerolog.Logger
}

// NewBuilder creates a builder with no computed state.
func NewBuilder(log zerolog.Logger) *Builder {
	return &Builder{
		cones: emptyCones(),
		log:   log.With().Str("component", "track").Logger(),
	}
}

// SetSource sets the random source used for cone spacing jitter.
func (b *Builder) SetSource(src rand.Source) {
	b.source = src
}

// Centerline returns the last computed centerline.
func (b *Builder) Centerline() Centerline { return b.center }

// Boundaries returns the last computed left and right boundaries, in meters.
func (b *Builder) Boundaries() (left, right []common.Vec2) { return b.left, b.right }

// Cones returns the last computed cones.
func (b *Builder) Cones() Cones { return b.cones }

// ComputeCenterline fits the centerline through the waypoints and returns
// it in canvas coordinates together with its curvature.
func (b *Builder) ComputeCenterline(waypoints []common.Vec2, closeLoop bool, view common.ViewTransform) ([]image.Point, []float64, error) {
	b.center = Centerline{}
	b.left, b.right = nil, nil
	b.cones = emptyCones()

	s, err := spline.Interpolate(waypoints, spline.Options{Periodic: closeLoop, Curvature: true})
	if err != nil {
		return nil, nil, fmt.Errorf("centerline: %w", err)
	}
	b.center = newCenterline(s)

	b.log.Debug().
		Int("waypoints", len(waypoints)).
		Bool("closeLoop", closeLoop).
		Int("samples", b.center.Len()).
		Msg("Computed centerline")

	return view.PointsToPixels(b.center.Points), b.center.Curvature, nil
}

// ComputeSidePoints offsets every centerline sample by half the track width
// along its normal (left) and against it (right). The boundaries are kept
// in meters for cone sampling and returned in canvas coordinates.
func (b *Builder) ComputeSidePoints(trackWidth float64, view common.ViewTransform) ([]image.Point, []image.Point) {
	n := b.center.Len()
	b.left = make([]common.Vec2, n)
	b.right = make([]common.Vec2, n)

	half := 0.5 * trackWidth
	for k := 0; k < n; k++ {
		offset := b.center.Normals[k].Scale(half)
		b.left[k] = b.center.Points[k].Add(offset)
		b.right[k] = b.center.Points[k].Sub(offset)
	}

	return view.PointsToPixels(b.left), view.PointsToPixels(b.right)
}

// ComputeCones samples cones along both boundaries every spacing meters.
//
// The first sample of each side is replaced by a pair of orange cones set
// orangeSpacing apart along the boundary tangent. When the loop is closed
// the last sample of each side is dropped so the seam does not get a
// double cone. No orange cones are placed unless both sides have samples.
func (b *Builder) ComputeCones(spacing, spacingStdDev, orangeSpacing float64, closeLoop bool) (Cones, error) {
	opts := spline.Options{Spacing: spacing, JitterStdDev: spacingStdDev, Source: b.source}

	left, err := spline.Interpolate(b.left, opts)
	if err != nil {
		return nil, fmt.Errorf("left cones: %w", err)
	}
	right, err := spline.Interpolate(b.right, opts)
	if err != nil {
		return nil, fmt.Errorf("right cones: %w", err)
	}

	cones := emptyCones()
	cones[ConeBlue] = sideCones(left, closeLoop)
	cones[ConeYellow] = sideCones(right, closeLoop)

	if !left.Empty() && !right.Empty() {
		cones[ConeOrange] = append(cones[ConeOrange], orangePair(left, orangeSpacing)...)
		cones[ConeOrange] = append(cones[ConeOrange], orangePair(right, orangeSpacing)...)
	}
	b.cones = cones

	b.log.Debug().
		Int("blue", len(cones[ConeBlue])).
		Int("yellow", len(cones[ConeYellow])).
		Int("orange", len(cones[ConeOrange])).
		Msg("Computed cones")

	return cones, nil
}

// ComputeStartPose places the vehicle at the first waypoint, displaced by
// offset in the frame of the first centerline sample. It reports false when
// there is no centerline.
func (b *Builder) ComputeStartPose(waypoints []common.Vec2, offset PoseOffset) (Pose, bool) {
	if b.center.Len() == 0 || len(waypoints) == 0 {
		return Pose{}, false
	}

	n := b.center.Normals[0]
	d := n.Tangent()
	pos := waypoints[0].Add(d.Scale(offset.Longitudinal)).Add(n.Scale(offset.Lateral))

	return Pose{
		X:   pos.X,
		Y:   pos.Y,
		Yaw: math.Atan2(d.Y, d.X) + offset.Yaw,
	}, true
}

func sideCones(s *spline.Samples, closeLoop bool) []common.Vec2 {
	end := s.Len()
	if closeLoop {
		end--
	}
	if end <= 1 {
		return []common.Vec2{}
	}
	out := make([]common.Vec2, end-1)
	copy(out, s.Points[1:end])
	return out
}

func orangePair(s *spline.Samples, orangeSpacing float64) []common.Vec2 {
	d := s.Normals[0].Tangent().Scale(0.5 * orangeSpacing)
	return []common.Vec2{s.Points[0].Add(d), s.Points[0].Sub(d)}
}

func emptyCones() Cones {
	return Cones{
		ConeBlue:   []common.Vec2{},
		ConeYellow: []common.Vec2{},
		ConeOrange: []common.Vec2{},
	}
}
