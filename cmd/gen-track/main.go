package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"fs-track-builder/internal/config"
	"fs-track-builder/internal/editor"
	"fs-track-builder/internal/logging"
	"fs-track-builder/internal/render"
	"fs-track-builder/internal/trackfile"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gonum.org/v1/plot/vg"
)

// Builds a complete track file (cones and start pose) from the waypoints of
// an existing one.
//
//	gen-track --in waypoints.yaml --out track.yaml --track-closeloop --plot track.png
func main() {
	fs := pflag.NewFlagSet("gen-track", pflag.ExitOnError)
	configPath := fs.String("config", "", "configuration file (yaml or json)")
	in := fs.String("in", "", "track file to read waypoints from (default: files.track)")
	out := fs.String("out", "", "track file to write (default: same as --in)")
	plotPath := fs.String("plot", "", "also render the track to this image (.png, .svg, .pdf)")
	seed := fs.Uint64("seed", 0, "seed for cone spacing jitter (0 = random)")
	config.AddFlag(fs, "logLevel", "log level: debug, info, warn, error")
	config.AddFlag(fs, "track.width", "track width in meters")
	config.AddFlag(fs, "track.closeLoop", "close the loop")
	config.AddFlag(fs, "cones.spacing", "cone spacing in meters")
	config.AddFlag(fs, "cones.spacingStdDev", "cone spacing jitter in meters")
	config.AddFlag(fs, "cones.orangeSpacing", "distance between the two orange cones of a pair")
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
	if *out == "" {
		*out = *in
	}

	if err := run(cfg, *in, *out, *plotPath, *seed, log); err != nil {
		log.Fatal().Err(err).Msg("Track generation failed")
	}
}

func run(cfg *config.Config, in, out, plotPath string, seed uint64, log zerolog.Logger) error {
	file, err := trackfile.DecodeFile(in)
	if err != nil {
		return fmt.Errorf("read %s: %w", in, err)
	}

	ctrl := editor.NewController(cfg.Params(), cfg.ViewTransform(), log)
	if seed != 0 {
		ctrl.Builder().SetSource(rand.NewPCG(seed, seed))
	}
	if err := ctrl.LoadWaypoints(file.Waypoints); err != nil {
		return err
	}

	res := ctrl.Result()
	if len(res.Center) == 0 {
		return fmt.Errorf("%s: need at least 2 waypoints, got %d", in, len(file.Waypoints))
	}
	if n := len(res.Excessive); n > 0 {
		log.Warn().
			Int("samples", n).
			Float64("minTurningRadius", cfg.Track.MinTurningRadius).
			Msg("Centerline is tighter than the minimum turning radius")
	}

	if err := ctrl.ExportFile(out); err != nil {
		return err
	}

	if plotPath != "" {
		t := render.FromBuilder(ctrl.Builder(), cfg.Track.MinTurningRadius)
		if err := render.Save(plotPath, t, cfg.Cones.Radius, 8*vg.Inch); err != nil {
			return err
		}
		log.Info().Str("path", plotPath).Msg("Rendered track")
	}
	return nil
}
