// Package trackfile reads and writes the YAML track description consumed by
// the simulator: initial pose, cones by color and the raw waypoints.
package trackfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/track"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// bigOrange is the on-disk name of the orange start gate cones.
const bigOrange = "big_orange"

// ErrMalformed is returned when a track file lacks a well-formed waypoint
// list.
var ErrMalformed = errors.New("malformed track file")

// File is a decoded track file.
type File struct {
	InitialPose track.Pose
	Cones       track.Cones
	Waypoints   []common.Vec2
}

type document struct {
	InitialPose struct {
		X float64 `yaml:"x"`
		Y float64 `yaml:"y"`
		Z float64 `yaml:"z"`
	} `yaml:"initial_pose"`
	Cones     map[string][][]float64 `yaml:"cones"`
	Waypoints *[][]float64           `yaml:"waypoints"`
}

// Export writes the initial pose, every cone group and the waypoints.
// Coordinates are written with two decimals.
func Export(w io.Writer, cones track.Cones, waypoints []common.Vec2, pose track.Pose) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "initial_pose:\n")
	fmt.Fprintf(bw, "  x: %7.2f  # x coordinate of the rear axle\n", pose.X)
	fmt.Fprintf(bw, "  y: %7.2f  # y coordinate of the rear axle\n", pose.Y)
	fmt.Fprintf(bw, "  z: %7.2f  # yaw in radians\n", pose.Yaw)

	fmt.Fprintf(bw, "\ncones:\n")
	for _, color := range track.ConeColors {
		fmt.Fprintf(bw, "  %s: [\n", fileColor(color))
		for _, c := range cones[color] {
			fmt.Fprintf(bw, "    [%.2f, %.2f],\n", c.X, c.Y)
		}
		fmt.Fprintf(bw, "  ]\n")
	}

	fmt.Fprintf(bw, "\nwaypoints: [\n")
	for _, wp := range waypoints {
		fmt.Fprintf(bw, "  [%.2f, %.2f],\n", wp.X, wp.Y)
	}
	fmt.Fprintf(bw, "]\n")

	return bw.Flush()
}

// ExportFile writes the track to path, replacing any existing file.
func ExportFile(path string, cones track.Cones, waypoints []common.Vec2, pose track.Pose) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Export(f, cones, waypoints, pose); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Decode parses a whole track file.
func Decode(r io.Reader) (*File, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Waypoints == nil {
		return nil, fmt.Errorf("%w: missing waypoints", ErrMalformed)
	}

	waypoints, err := toPoints(*doc.Waypoints)
	if err != nil {
		return nil, fmt.Errorf("waypoints: %w", err)
	}

	cones := track.Cones{}
	for _, color := range track.ConeColors {
		cones[color] = []common.Vec2{}
	}
	for name, raw := range doc.Cones {
		pts, err := toPoints(raw)
		if err != nil {
			return nil, fmt.Errorf("cones %s: %w", name, err)
		}
		cones[coneColor(name)] = pts
	}

	return &File{
		InitialPose: track.Pose{X: doc.InitialPose.X, Y: doc.InitialPose.Y, Yaw: doc.InitialPose.Z},
		Cones:       cones,
		Waypoints:   waypoints,
	}, nil
}

// DecodeFile parses the track file at path.
func DecodeFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Import returns the waypoints read from r. Any failure is logged and
// yields an empty slice so the caller can keep its current track.
func Import(r io.Reader, log zerolog.Logger) []common.Vec2 {
	file, err := Decode(r)
	if err != nil {
		log.Warn().Err(err).Msg("Track import failed")
		return []common.Vec2{}
	}
	return file.Waypoints
}

// ImportFile is Import for the file at path.
func ImportFile(path string, log zerolog.Logger) []common.Vec2 {
	log = log.With().Str("path", path).Logger()

	f, err := os.Open(path)
	if err != nil {
		log.Warn().Err(err).Msg("Track import failed")
		return []common.Vec2{}
	}
	defer f.Close()

	waypoints := Import(f, log)
	if len(waypoints) > 0 {
		log.Info().Int("waypoints", len(waypoints)).Msg("Imported track")
	}
	return waypoints
}

func toPoints(raw [][]float64) ([]common.Vec2, error) {
	pts := make([]common.Vec2, len(raw))
	for i, xy := range raw {
		if len(xy) != 2 {
			return nil, fmt.Errorf("%w: entry %d has %d values", ErrMalformed, i, len(xy))
		}
		pts[i] = common.Vec2{X: xy[0], Y: xy[1]}
	}
	return pts, nil
}

func fileColor(c track.ConeColor) string {
	if c == track.ConeOrange {
		return bigOrange
	}
	return string(c)
}

func coneColor(name string) track.ConeColor {
	if name == bigOrange {
		return track.ConeOrange
	}
	return track.ConeColor(name)
}
