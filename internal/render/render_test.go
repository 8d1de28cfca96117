package render

import (
	"os"
	"path/filepath"
	"testing"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/track"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func buildTrack(t *testing.T) *track.Builder {
	t.Helper()
	b := track.NewBuilder(zerolog.Nop())
	wps := []common.Vec2{
		{X: 0, Y: 0}, {X: 12, Y: 1}, {X: 20, Y: 6}, {X: 22, Y: 14},
		{X: 15, Y: 20}, {X: 5, Y: 18}, {X: -3, Y: 10},
	}
	view := common.NewViewTransform(40, 800)
	_, _, err := b.ComputeCenterline(wps, true, view)
	require.NoError(t, err)
	b.ComputeSidePoints(3.0, view)
	_, err = b.ComputeCones(3.0, 0, 1.0, true)
	require.NoError(t, err)
	return b
}

func TestFromBuilder(t *testing.T) {
	b := buildTrack(t)
	tr := FromBuilder(b, 4.5)

	assert.Len(t, tr.Center, b.Centerline().Len())
	assert.Len(t, tr.Left, len(tr.Center))
	assert.Len(t, tr.Right, len(tr.Center))
	assert.Len(t, tr.Cones[track.ConeOrange], 4)

	tight := FromBuilder(b, 1000)
	assert.NotEmpty(t, tight.Excessive)
}

func TestPlot_SquareRange(t *testing.T) {
	tr := Track{Center: []common.Vec2{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 4}}}

	p, err := Plot(tr, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, p.X.Max-p.X.Min, p.Y.Max-p.Y.Min, 1e-12)
	assert.InDelta(t, 10+2*margin, p.X.Max-p.X.Min, 1e-12)
	assert.InDelta(t, 5, 0.5*(p.X.Min+p.X.Max), 1e-12)
	assert.InDelta(t, 2, 0.5*(p.Y.Min+p.Y.Max), 1e-12)
}

func TestPlot_Empty(t *testing.T) {
	p, err := Plot(Track{}, 0.3)
	require.NoError(t, err)
	assert.InDelta(t, 2*margin, p.X.Max-p.X.Min, 1e-12)
}

func TestSave(t *testing.T) {
	tr := FromBuilder(buildTrack(t), 4.5)
	dir := t.TempDir()

	for _, name := range []string{"track.png", "track.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, tr, 0.3, 4*vg.Inch))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
}
