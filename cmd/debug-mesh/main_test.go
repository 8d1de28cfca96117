package main

import (
	"bytes"
	"math"
	"testing"

	"fs-track-builder/internal/common"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegions(t *testing.T) {
	assert.Empty(t, regions(nil))
	assert.Equal(t,
		[]Region{{0, 2}, {5, 5}, {7, 8}},
		regions([]int{0, 1, 2, 5, 7, 8}))
}

func TestAnalyze_Circle(t *testing.T) {
	var wps []common.Vec2
	for i := 0; i < 12; i++ {
		a := 2 * math.Pi * float64(i) / 12
		wps = append(wps, common.Vec2{X: 10 * math.Cos(a), Y: 10 * math.Sin(a)})
	}

	r, err := analyze(wps, true, 4.5, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 120, r.Samples)
	assert.InDelta(t, 0.1, r.MaxCurvature, 0.01)
	assert.InDelta(t, 2*math.Pi*10, r.Length, 1)
	assert.Empty(t, r.Regions)

	r, err = analyze(wps, true, 20, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, r.Regions, 1)
	assert.Equal(t, Region{0, 119}, r.Regions[0])
}

func TestAnalyze_TooFewWaypoints(t *testing.T) {
	r, err := analyze([]common.Vec2{{X: 1, Y: 1}}, false, 4.5, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, r.Samples)

	var buf bytes.Buffer
	logReport(r, zerolog.New(&buf))
	assert.Contains(t, buf.String(), "Not enough waypoints")
}
