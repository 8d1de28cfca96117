package main

import (
	"fmt"
	"math"
	"os"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/config"
	"fs-track-builder/internal/logging"
	"fs-track-builder/internal/track"
	"fs-track-builder/internal/trackfile"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gonum.org/v1/gonum/floats"
)

// Region is a run of consecutive centerline samples, First to Last
// inclusive.
type Region struct {
	First, Last int
}

// Report summarizes the centerline curvature of a track.
type Report struct {
	Samples      int
	Length       float64 // chord length of the centerline, meters
	MaxCurvature float64 // largest |curvature|
	MaxIdx       int
	Limit        float64 // 1 / minimum turning radius
	Regions      []Region
}

// Prints where the centerline of a track file is tighter than the minimum
// turning radius.
//
//	debug-mesh --in track.yaml --track-minturningradius 4.5
func main() {
	fs := pflag.NewFlagSet("debug-mesh", pflag.ExitOnError)
	configPath := fs.String("config", "", "configuration file (yaml or json)")
	in := fs.String("in", "", "track file to inspect (default: files.track)")
	config.AddFlag(fs, "logLevel", "log level: debug, info, warn, error")
	config.AddFlag(fs, "track.closeLoop", "treat the waypoints as a closed loop")
	config.AddFlag(fs, "track.minTurningRadius", "minimum turning radius in meters")
	fs.Parse(os.Args[1:])

	boot := logging.New(os.Stderr, "info")

	v := config.New()
	if err := config.BindFlags(v, fs); err != nil {
		boot.Fatal().Err(err).Msg("Failed to bind flags")
	}
	cfg, err := config.Load(v, *configPath)
	if err != nil {
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	if *in == "" {
		*in = cfg.Files.Track
	}
	file, err := trackfile.DecodeFile(*in)
	if err != nil {
		log.Fatal().Err(err).Str("path", *in).Msg("Failed to read track")
	}

	report, err := analyze(file.Waypoints, cfg.Track.CloseLoop, cfg.Track.MinTurningRadius, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fit centerline")
	}
	logReport(report, log)
}

func analyze(waypoints []common.Vec2, closeLoop bool, minTurningRadius float64, log zerolog.Logger) (*Report, error) {
	b := track.NewBuilder(log)
	view := common.NewViewTransform(1, 1)
	if _, _, err := b.ComputeCenterline(waypoints, closeLoop, view); err != nil {
		return nil, err
	}

	c := b.Centerline()
	r := &Report{
		Samples: c.Len(),
		Length:  common.ChordLength(c.Points),
		MaxIdx:  -1,
		Limit:   track.MaxCurvature(minTurningRadius),
	}
	if c.Len() == 0 {
		return r, nil
	}

	abs := make([]float64, len(c.Curvature))
	for i, k := range c.Curvature {
		abs[i] = math.Abs(k)
	}
	r.MaxIdx = floats.MaxIdx(abs)
	r.MaxCurvature = abs[r.MaxIdx]
	r.Regions = regions(c.Excessive(r.Limit))
	return r, nil
}

// regions groups ascending sample indices into runs of consecutive values.
func regions(idx []int) []Region {
	var out []Region
	for _, i := range idx {
		if n := len(out); n > 0 && out[n-1].Last == i-1 {
			out[n-1].Last = i
			continue
		}
		out = append(out, Region{First: i, Last: i})
	}
	return out
}

func logReport(r *Report, log zerolog.Logger) {
	if r.Samples == 0 {
		log.Warn().Msg("Not enough waypoints for a centerline")
		return
	}

	log.Info().
		Int("samples", r.Samples).
		Float64("length", r.Length).
		Float64("maxCurvature", r.MaxCurvature).
		Int("maxIdx", r.MaxIdx).
		Float64("limit", r.Limit).
		Msg("Centerline curvature")

	for _, reg := range r.Regions {
		log.Warn().
			Str("samples", fmt.Sprintf("%d-%d", reg.First, reg.Last)).
			Msg("Curvature exceeds the minimum turning radius")
	}
	if len(r.Regions) == 0 {
		log.Info().Msg("Track is drivable at the minimum turning radius")
	}
}
