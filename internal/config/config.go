package config

import (
	"fmt"
	"math"
	"strings"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/editor"
	"fs-track-builder/internal/track"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// TRACKBUILDER_TRACK_WIDTH for track.width.
const EnvPrefix = "TRACKBUILDER"

// ViewConfig holds canvas settings
type ViewConfig struct {
	AreaWidth    float64 `json:"areaWidth" mapstructure:"areaWidth"`
	CanvasWidth  int     `json:"canvasWidth" mapstructure:"canvasWidth"`
	CanvasHeight int     `json:"canvasHeight" mapstructure:"canvasHeight"`
}

// TrackConfig holds track shape settings
type TrackConfig struct {
	Width            float64 `json:"width" mapstructure:"width"`
	CloseLoop        bool    `json:"closeLoop" mapstructure:"closeLoop"`
	MinTurningRadius float64 `json:"minTurningRadius" mapstructure:"minTurningRadius"`
}

// ConesConfig holds cone placement settings
type ConesConfig struct {
	Spacing       float64 `json:"spacing" mapstructure:"spacing"`
	SpacingStdDev float64 `json:"spacingStdDev" mapstructure:"spacingStdDev"`
	OrangeSpacing float64 `json:"orangeSpacing" mapstructure:"orangeSpacing"`
	Radius        float64 `json:"radius" mapstructure:"radius"`
}

// GridConfig holds snapping settings
type GridConfig struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	Size    float64 `json:"size" mapstructure:"size"`
}

// WaypointsConfig holds waypoint display settings
type WaypointsConfig struct {
	Radius float64 `json:"radius" mapstructure:"radius"`
}

// PoseConfig holds the start pose offset. Yaw is in degrees.
type PoseConfig struct {
	Longitudinal float64 `json:"longitudinal" mapstructure:"longitudinal"`
	Lateral      float64 `json:"lateral" mapstructure:"lateral"`
	Yaw          float64 `json:"yaw" mapstructure:"yaw"`
}

// FilesConfig holds default paths
type FilesConfig struct {
	Track string `json:"track" mapstructure:"track"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	View      ViewConfig      `json:"view" mapstructure:"view"`
	Track     TrackConfig     `json:"track" mapstructure:"track"`
	Cones     ConesConfig     `json:"cones" mapstructure:"cones"`
	Grid      GridConfig      `json:"grid" mapstructure:"grid"`
	Waypoints WaypointsConfig `json:"waypoints" mapstructure:"waypoints"`
	Pose      PoseConfig      `json:"pose" mapstructure:"pose"`
	Files     FilesConfig     `json:"files" mapstructure:"files"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")

	v.SetDefault("view.areaWidth", 40.0)
	v.SetDefault("view.canvasWidth", 800)
	v.SetDefault("view.canvasHeight", 600)

	v.SetDefault("track.width", 3.0)
	v.SetDefault("track.closeLoop", false)
	v.SetDefault("track.minTurningRadius", 4.5)

	v.SetDefault("cones.spacing", 3.0)
	v.SetDefault("cones.spacingStdDev", 0.0)
	v.SetDefault("cones.orangeSpacing", 1.0)
	v.SetDefault("cones.radius", 0.3)

	v.SetDefault("grid.enabled", false)
	v.SetDefault("grid.size", 1.0)

	v.SetDefault("waypoints.radius", 5.0)

	v.SetDefault("pose.longitudinal", 0.0)
	v.SetDefault("pose.lateral", 0.0)
	v.SetDefault("pose.yaw", 0.0)

	v.SetDefault("files.track", "track.yaml")
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// FlagName returns the command line flag for key: lowercase, dots replaced
// by dashes, e.g. track.closeLoop -> --track-closeloop.
func FlagName(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), ".", "-")
}

// AddFlag registers the flag for key on fs, typed and defaulted after the
// value set by SetDefaults.
func AddFlag(fs *pflag.FlagSet, key, usage string) {
	defaults := viper.New()
	SetDefaults(defaults)

	name := FlagName(key)
	switch def := defaults.Get(key).(type) {
	case bool:
		fs.Bool(name, def, usage)
	case int:
		fs.Int(name, def, usage)
	case float64:
		fs.Float64(name, def, usage)
	default:
		fs.String(name, defaults.GetString(key), usage)
	}
}

// BindFlags binds command line flags to their keys. Flags are looked up by
// FlagName; flags missing from fs are skipped.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, key := range v.AllKeys() {
		flag := fs.Lookup(FlagName(key))
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	}
	return nil
}

// Load reads the configuration from v, after reading the config file at
// path when it is not empty.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.View.AreaWidth <= 0 || cfg.View.CanvasWidth <= 0 {
		return nil, fmt.Errorf("view: area width and canvas width must be positive")
	}
	return &cfg, nil
}

// ViewTransform returns the initial canvas transform.
func (c *Config) ViewTransform() common.ViewTransform {
	return common.NewViewTransform(c.View.AreaWidth, c.View.CanvasWidth)
}

// Params returns the editor parameters described by the configuration.
func (c *Config) Params() editor.Params {
	return editor.Params{
		TrackWidth:        c.Track.Width,
		ConeSpacing:       c.Cones.Spacing,
		ConeSpacingStdDev: c.Cones.SpacingStdDev,
		OrangeSpacing:     c.Cones.OrangeSpacing,
		CloseLoop:         c.Track.CloseLoop,
		Grid:              track.Grid{Enabled: c.Grid.Enabled, Size: c.Grid.Size},
		MinTurningRadius:  c.Track.MinTurningRadius,
		PoseOffset: track.PoseOffset{
			Longitudinal: c.Pose.Longitudinal,
			Lateral:      c.Pose.Lateral,
			Yaw:          c.Pose.Yaw * math.Pi / 180,
		},
		WaypointRadius: c.Waypoints.Radius,
	}
}
