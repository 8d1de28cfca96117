package track

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/spline"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testView = common.NewViewTransform(40.0, 800)

func straight() []common.Vec2 {
	return []common.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}}
}

func hairpin() []common.Vec2 {
	return []common.Vec2{
		{X: 0, Y: 0}, {X: 12, Y: 1}, {X: 20, Y: 6}, {X: 22, Y: 14},
		{X: 15, Y: 20}, {X: 5, Y: 18}, {X: -3, Y: 10},
	}
}

func TestBuilder_StraightScenario(t *testing.T) {
	b := NewBuilder(zerolog.Nop())

	center, curvature, err := b.ComputeCenterline(straight(), false, testView)
	require.NoError(t, err)
	require.Len(t, center, 30)
	require.Len(t, curvature, 30)
	for _, k := range curvature {
		assert.InDelta(t, 0, k, 1e-9)
	}

	leftPx, rightPx := b.ComputeSidePoints(3.0, testView)
	assert.Len(t, leftPx, 30)
	assert.Len(t, rightPx, 30)

	// Normals are (dy, -dx): heading +x puts the left boundary at -y, which
	// is the driver's left on the y-down canvas.
	left, right := b.Boundaries()
	for k := range left {
		assert.InDelta(t, -1.5, left[k].Y, 1e-9)
		assert.InDelta(t, 1.5, right[k].Y, 1e-9)
	}
	assert.InDelta(t, 0, left[0].X, 1e-9)
	assert.InDelta(t, 10, left[len(left)-1].X, 1e-9)
	assert.Equal(t, -30, leftPx[0].Y)
	assert.Equal(t, 30, rightPx[0].Y)
}

func TestBuilder_SidePointsOffsetByHalfWidth(t *testing.T) {
	for _, closeLoop := range []bool{false, true} {
		b := NewBuilder(zerolog.Nop())
		_, _, err := b.ComputeCenterline(hairpin(), closeLoop, testView)
		require.NoError(t, err)
		b.ComputeSidePoints(4.0, testView)

		c := b.Centerline()
		left, right := b.Boundaries()
		require.Len(t, left, c.Len())
		require.Len(t, right, c.Len())

		for k := range c.Points {
			dl := left[k].Sub(c.Points[k])
			dr := right[k].Sub(c.Points[k])
			assert.InDelta(t, 2.0, dl.Len(), 1e-9)
			assert.InDelta(t, 2.0, dl.Dot(c.Normals[k]), 1e-9)
			assert.InDelta(t, -2.0, dr.Dot(c.Normals[k]), 1e-9)
		}
	}
}

func TestBuilder_SingleWaypoint(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	wps := []common.Vec2{{X: 4, Y: 4}}

	center, curvature, err := b.ComputeCenterline(wps, true, testView)
	require.NoError(t, err)
	assert.Empty(t, center)
	assert.Empty(t, curvature)

	left, right := b.ComputeSidePoints(3.0, testView)
	assert.Empty(t, left)
	assert.Empty(t, right)

	cones, err := b.ComputeCones(3.0, 0.5, 1.0, true)
	require.NoError(t, err)
	assert.Equal(t, 0, cones.Count())
	assert.Len(t, cones, 3)

	_, ok := b.ComputeStartPose(wps, PoseOffset{Longitudinal: 1})
	assert.False(t, ok)
}

func TestBuilder_ConeCounts(t *testing.T) {
	tests := []struct {
		name      string
		closeLoop bool
		dropped   int
	}{
		{"open loop reserves the first sample", false, 1},
		{"closed loop also drops the seam", true, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder(zerolog.Nop())
			_, _, err := b.ComputeCenterline(hairpin(), tc.closeLoop, testView)
			require.NoError(t, err)
			b.ComputeSidePoints(3.0, testView)

			left, right := b.Boundaries()
			ls, err := spline.Interpolate(left, spline.Options{Spacing: 2.5})
			require.NoError(t, err)
			rs, err := spline.Interpolate(right, spline.Options{Spacing: 2.5})
			require.NoError(t, err)

			cones, err := b.ComputeCones(2.5, 0, 1.0, tc.closeLoop)
			require.NoError(t, err)
			assert.Len(t, cones[ConeBlue], ls.Len()-tc.dropped)
			assert.Len(t, cones[ConeYellow], rs.Len()-tc.dropped)
			assert.Len(t, cones[ConeOrange], 4)
			assert.Equal(t, cones, b.Cones())

			// Blue cones are the boundary samples after the first one.
			assert.Equal(t, ls.Points[1], cones[ConeBlue][0])
		})
	}
}

func TestBuilder_OrangeGate(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	_, _, err := b.ComputeCenterline(straight(), false, testView)
	require.NoError(t, err)
	b.ComputeSidePoints(3.0, testView)

	cones, err := b.ComputeCones(3.0, 0, 1.0, false)
	require.NoError(t, err)
	require.Len(t, cones[ConeOrange], 4)

	want := []common.Vec2{{X: 0.5, Y: -1.5}, {X: -0.5, Y: -1.5}, {X: 0.5, Y: 1.5}, {X: -0.5, Y: 1.5}}
	for i, w := range want {
		assert.InDelta(t, 0, w.Dist(cones[ConeOrange][i]), 1e-9, "orange cone %d", i)
	}
	assert.Len(t, cones[ConeBlue], 2)
}

func TestBuilder_NoOrangeWhenBoundaryTooShort(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	_, _, err := b.ComputeCenterline(straight(), false, testView)
	require.NoError(t, err)
	b.ComputeSidePoints(3.0, testView)

	cones, err := b.ComputeCones(50, 0, 1.0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, cones.Count())
}

func TestBuilder_ConeJitterIsSeeded(t *testing.T) {
	run := func() Cones {
		b := NewBuilder(zerolog.Nop())
		b.SetSource(rand.NewPCG(7, 11))
		_, _, err := b.ComputeCenterline(hairpin(), true, testView)
		require.NoError(t, err)
		b.ComputeSidePoints(3.0, testView)
		cones, err := b.ComputeCones(2.0, 0.3, 1.0, true)
		require.NoError(t, err)
		return cones
	}
	assert.Equal(t, run(), run())
}

func TestBuilder_StartPose(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	wps := straight()
	_, _, err := b.ComputeCenterline(wps, false, testView)
	require.NoError(t, err)

	pose, ok := b.ComputeStartPose(wps, PoseOffset{})
	require.True(t, ok)
	assert.InDelta(t, 0, pose.X, 1e-12)
	assert.InDelta(t, 0, pose.Y, 1e-12)
	assert.InDelta(t, 0, pose.Yaw, 1e-12)

	pose, ok = b.ComputeStartPose(wps, PoseOffset{Longitudinal: 2, Lateral: 1, Yaw: 0.1})
	require.True(t, ok)
	assert.InDelta(t, 2, pose.X, 1e-12)
	assert.InDelta(t, -1, pose.Y, 1e-12)
	assert.InDelta(t, 0.1, pose.Yaw, 1e-12)
}

func TestBuilder_StartPoseFollowsHeading(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	wps := []common.Vec2{{X: 1, Y: 1}, {X: 1, Y: 9}}
	_, _, err := b.ComputeCenterline(wps, false, testView)
	require.NoError(t, err)

	pose, ok := b.ComputeStartPose(wps, PoseOffset{Longitudinal: 1})
	require.True(t, ok)
	assert.InDelta(t, 1, pose.X, 1e-12)
	assert.InDelta(t, 2, pose.Y, 1e-12)
	assert.InDelta(t, math.Pi/2, pose.Yaw, 1e-12)
}

func TestBuilder_DegenerateGeometryResetsState(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	_, _, err := b.ComputeCenterline(hairpin(), false, testView)
	require.NoError(t, err)
	b.ComputeSidePoints(3.0, testView)

	wps := []common.Vec2{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 2}, {X: 5, Y: 0}}
	_, _, err = b.ComputeCenterline(wps, false, testView)
	require.Error(t, err)
	assert.True(t, errors.Is(err, spline.ErrDegenerateGeometry))

	assert.Equal(t, 0, b.Centerline().Len())
	left, right := b.Boundaries()
	assert.Empty(t, left)
	assert.Empty(t, right)
}

func TestSnapToGrid(t *testing.T) {
	tests := []struct {
		x, y, size   float64
		wantX, wantY float64
	}{
		{3.7, -2.2, 1.0, 3.0, -3.0},
		{4.0, 4.0, 1.0, 4.0, 4.0},
		{5.3, 1.1, 0.5, 5.0, 1.0},
		{-0.1, 0.1, 2.0, -2.0, 0.0},
		{3.7, -2.2, 0, 3.7, -2.2},
	}

	for _, tc := range tests {
		x, y := SnapToGrid(tc.x, tc.y, tc.size)
		assert.InDelta(t, tc.wantX, x, 1e-12)
		assert.InDelta(t, tc.wantY, y, 1e-12)
	}

	p := Grid{Enabled: false, Size: 1}.Snap(common.Vec2{X: 3.7, Y: -2.2})
	assert.Equal(t, common.Vec2{X: 3.7, Y: -2.2}, p)
	p = Grid{Enabled: true, Size: 1}.Snap(common.Vec2{X: 3.7, Y: -2.2})
	assert.Equal(t, common.Vec2{X: 3, Y: -3}, p)
}

func TestCenterline_Queries(t *testing.T) {
	b := NewBuilder(zerolog.Nop())
	_, _, err := b.ComputeCenterline(straight(), false, testView)
	require.NoError(t, err)
	c := b.Centerline()

	idx := c.ClosestSample(common.Vec2{X: 10.5, Y: 0.2})
	assert.Equal(t, c.Len()-1, idx)

	offset, idx := c.LateralOffset(common.Vec2{X: 0, Y: -0.75})
	assert.Equal(t, 0, idx)
	assert.InDelta(t, 0.75, offset, 1e-12)

	assert.Empty(t, c.Excessive(MaxCurvature(4.5)))
	assert.Equal(t, -1, Centerline{}.ClosestSample(common.Vec2{}))

	bent := Centerline{Curvature: []float64{0.1, -0.3, 0.2, 0.25}}
	assert.Equal(t, []int{1, 3}, bent.Excessive(MaxCurvature(4.5)))
	assert.Empty(t, bent.Excessive(MaxCurvature(0)))
}
