package trackfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/track"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport_Layout(t *testing.T) {
	cones := track.Cones{
		track.ConeBlue:   {{X: 1.234, Y: 2}},
		track.ConeYellow: {},
		track.ConeOrange: {{X: 0.5, Y: -1.5}},
	}
	waypoints := []common.Vec2{{X: 0, Y: 0}, {X: 10.25, Y: 3.5}}
	pose := track.Pose{X: 1.5, Y: -2.25, Yaw: 0.1}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, cones, waypoints, pose))

	want := strings.Join([]string{
		"initial_pose:",
		"  x:    1.50  # x coordinate of the rear axle",
		"  y:   -2.25  # y coordinate of the rear axle",
		"  z:    0.10  # yaw in radians",
		"",
		"cones:",
		"  blue: [",
		"    [1.23, 2.00],",
		"  ]",
		"  yellow: [",
		"  ]",
		"  big_orange: [",
		"    [0.50, -1.50],",
		"  ]",
		"",
		"waypoints: [",
		"  [0.00, 0.00],",
		"  [10.25, 3.50],",
		"]",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestExportDecode_RoundTrip(t *testing.T) {
	cones := track.Cones{
		track.ConeBlue:   {{X: 1.111, Y: -2.226}, {X: 3, Y: 4}},
		track.ConeYellow: {{X: -5.5, Y: 0.004}},
		track.ConeOrange: {{X: 0.5, Y: -1.5}, {X: -0.5, Y: -1.5}},
	}
	waypoints := []common.Vec2{{X: 3.14159, Y: -2.71828}, {X: 12.5, Y: 7.25}, {X: -0.333, Y: 19.999}}
	pose := track.Pose{X: 3.14159, Y: -2.71828, Yaw: -1.2}

	path := filepath.Join(t.TempDir(), "track.yaml")
	require.NoError(t, ExportFile(path, cones, waypoints, pose))

	file, err := DecodeFile(path)
	require.NoError(t, err)

	require.Len(t, file.Waypoints, len(waypoints))
	for i, wp := range waypoints {
		assert.InDelta(t, wp.X, file.Waypoints[i].X, 0.005+1e-9)
		assert.InDelta(t, wp.Y, file.Waypoints[i].Y, 0.005+1e-9)
	}
	for _, color := range track.ConeColors {
		assert.Len(t, file.Cones[color], len(cones[color]), string(color))
	}
	assert.InDelta(t, 3.14, file.InitialPose.X, 1e-9)
	assert.InDelta(t, -2.72, file.InitialPose.Y, 1e-9)
	assert.InDelta(t, -1.2, file.InitialPose.Yaw, 1e-9)

	imported := ImportFile(path, zerolog.Nop())
	assert.Equal(t, file.Waypoints, imported)
}

func TestDecode_EmptyGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, track.Cones{}, nil, track.Pose{}))

	file, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, file.Waypoints)
	assert.Equal(t, 0, file.Cones.Count())
}

func TestDecode_Malformed(t *testing.T) {
	tests := map[string]string{
		"not yaml":          "waypoints: [[1, 2]",
		"missing waypoints": "cones:\n  blue: []\n",
		"short pair":        "waypoints: [[1, 2], [3]]\n",
		"scalar entry":      "waypoints: [1, 2]\n",
		"bad cone":          "cones:\n  blue: [[1, 2, 3]]\nwaypoints: []\n",
	}

	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), err.Error())
		})
	}
}

func TestImportFile_FailuresYieldEmpty(t *testing.T) {
	dir := t.TempDir()

	assert.Empty(t, ImportFile(filepath.Join(dir, "missing.yaml"), zerolog.Nop()))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("waypoints: nope\n"), 0644))
	assert.Empty(t, ImportFile(bad, zerolog.Nop()))

	assert.Empty(t, Import(strings.NewReader("cones: {}\n"), zerolog.Nop()))
	assert.Equal(t,
		[]common.Vec2{{X: 1, Y: 2}},
		Import(strings.NewReader("waypoints: [[1, 2]]\n"), zerolog.Nop()))
}
