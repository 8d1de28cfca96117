// Package editor holds the interactive track editing state: waypoints,
// parameters, the add/delete state machine and the recompute pipeline.
package editor

import (
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/track"
	"fs-track-builder/internal/trackfile"

	"github.com/rs/zerolog"
)

// Mode is the action a left click performs.
type Mode int

const (
	ModeAdd Mode = iota
	ModeDelete
)

func (m Mode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeDelete:
		return "delete"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Field names a user-editable numeric parameter.
type Field string

const (
	FieldTrackWidth         Field = "track_width"
	FieldConeSpacing        Field = "cone_spacing"
	FieldConeSpacingStdDev  Field = "cone_spacing_std"
	FieldOrangeSpacing      Field = "orange_spacing"
	FieldGridSize           Field = "grid_size"
	FieldMinTurningRadius   Field = "min_turning_radius"
	FieldOffsetLongitudinal Field = "offset_longitudinal"
	FieldOffsetLateral      Field = "offset_lateral"
	FieldOffsetYaw          Field = "offset_yaw" // degrees
)

// Fields lists the editable fields in display order.
var Fields = []Field{
	FieldTrackWidth, FieldConeSpacing, FieldConeSpacingStdDev, FieldOrangeSpacing,
	FieldGridSize, FieldMinTurningRadius,
	FieldOffsetLongitudinal, FieldOffsetLateral, FieldOffsetYaw,
}

// Params are the track generation parameters.
type Params struct {
	TrackWidth        float64
	ConeSpacing       float64
	ConeSpacingStdDev float64
	OrangeSpacing     float64
	CloseLoop         bool
	Grid              track.Grid
	MinTurningRadius  float64
	PoseOffset        track.PoseOffset // yaw in radians
	WaypointRadius    float64          // pixels
}

// TrackState is the externally owned input of the track builder.
type TrackState struct {
	Waypoints []*Waypoint
	Params    Params
}

// Positions returns the waypoint positions in order.
func (s *TrackState) Positions() []common.Vec2 {
	pts := make([]common.Vec2, len(s.Waypoints))
	for i, wp := range s.Waypoints {
		pts[i] = wp.Pos
	}
	return pts
}

// Result is the output of a full recompute, ready for rendering.
type Result struct {
	Center    []image.Point
	Curvature []float64
	Excessive []int // centerline samples above the max curvature
	Left      []image.Point
	Right     []image.Point
	Cones     track.Cones // meters
	Pose      track.Pose
	HasPose   bool
}

// Controller applies user actions to a TrackState and recomputes the track
// after every edit.
type Controller struct {
	state   TrackState
	view    common.ViewTransform
	builder *track.Builder
	result  Result

	mode     Mode
	dragging bool
	dragIdx  int

	log zerolog.Logger
}

// NewController creates a controller with no waypoints.
func NewController(params Params, view common.ViewTransform, log zerolog.Logger) *Controller {
	return &Controller{
		state:   TrackState{Params: params},
		view:    view,
		builder: track.NewBuilder(log),
		result:  Result{Cones: track.Cones{}},
		log:     log.With().Str("component", "editor").Logger(),
	}
}

// State returns the current track state.
func (c *Controller) State() *TrackState { return &c.state }

// Result returns the last recompute output.
func (c *Controller) Result() Result { return c.result }

// Builder returns the underlying track builder.
func (c *Controller) Builder() *track.Builder { return c.builder }

// View returns the current view transform.
func (c *Controller) View() common.ViewTransform { return c.view }

// Mode returns the current click mode.
func (c *Controller) Mode() Mode { return c.mode }

// SetMode changes the click mode and ends any drag.
func (c *Controller) SetMode(m Mode) {
	c.mode = m
	c.dragging = false
}

// Dragging reports whether a waypoint is being moved.
func (c *Controller) Dragging() bool { return c.dragging }

// Click handles a left click at canvas coordinates. In add mode it starts
// dragging the waypoint under the cursor or creates a new one; in delete
// mode it removes the waypoint under the cursor.
func (c *Controller) Click(px, py float64) error {
	idx := c.waypointAt(px, py, -1)

	switch c.mode {
	case ModeAdd:
		if idx >= 0 {
			c.dragging = true
			c.dragIdx = idx
			return nil
		}
		pos := c.state.Params.Grid.Snap(c.view.PixelsToPoint(px, py))
		if c.occupied(pos, -1) {
			c.log.Debug().Float64("x", pos.X).Float64("y", pos.Y).Msg("Grid cell already occupied")
			return nil
		}
		c.state.Waypoints = append(c.state.Waypoints, NewWaypoint(pos, c.state.Params.WaypointRadius, c.view))
		return c.Recompute()

	case ModeDelete:
		if idx < 0 {
			return nil
		}
		c.state.Waypoints = append(c.state.Waypoints[:idx], c.state.Waypoints[idx+1:]...)
		return c.Recompute()
	}
	return nil
}

// Motion handles mouse motion. It moves the dragged waypoint, or updates
// hover states, and reports whether the canvas needs a redraw.
func (c *Controller) Motion(px, py float64) (bool, error) {
	if !c.dragging {
		redraw := false
		for _, wp := range c.state.Waypoints {
			redraw = wp.UpdateHovering(px, py) || redraw
		}
		return redraw, nil
	}

	pos := c.state.Params.Grid.Snap(c.view.PixelsToPoint(px, py))
	wp := c.state.Waypoints[c.dragIdx]
	if pos == wp.Pos || c.occupied(pos, c.dragIdx) {
		return false, nil
	}
	wp.UpdatePosition(pos.X, pos.Y)
	return true, c.Recompute()
}

// Release ends a drag.
func (c *Controller) Release() {
	c.dragging = false
}

// DeleteLast removes the most recently added waypoint.
func (c *Controller) DeleteLast() error {
	if len(c.state.Waypoints) == 0 {
		return nil
	}
	c.state.Waypoints = c.state.Waypoints[:len(c.state.Waypoints)-1]
	c.dragging = false
	return c.Recompute()
}

// Clear removes every waypoint.
func (c *Controller) Clear() error {
	c.state.Waypoints = nil
	c.dragging = false
	return c.Recompute()
}

// ToggleLoop opens or closes the track.
func (c *Controller) ToggleLoop() error {
	c.state.Params.CloseLoop = !c.state.Params.CloseLoop
	return c.Recompute()
}

// ToggleGrid enables or disables grid snapping.
func (c *Controller) ToggleGrid() {
	c.state.Params.Grid.Enabled = !c.state.Params.Grid.Enabled
}

// ZoomIn zooms the view in by one step.
func (c *Controller) ZoomIn() error { return c.SetView(c.view.ZoomIn()) }

// ZoomOut zooms the view out by one step.
func (c *Controller) ZoomOut() error { return c.SetView(c.view.ZoomOut()) }

// Pan shifts the view by (dx, dy) pixels.
func (c *Controller) Pan(dx, dy float64) error { return c.SetView(c.view.Pan(dx, dy)) }

// SetView replaces the view transform and refreshes every pixel output.
func (c *Controller) SetView(view common.ViewTransform) error {
	c.view = view
	for _, wp := range c.state.Waypoints {
		wp.SetView(view)
	}
	return c.Recompute()
}

// SetField parses text into the named parameter. Unparsable input is
// rejected: the previous value is kept, nothing is recomputed and false is
// returned.
func (c *Controller) SetField(field Field, text string) (bool, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		c.log.Debug().Str("field", string(field)).Str("input", text).Msg("Rejected field value")
		return false, nil
	}

	p := &c.state.Params
	switch field {
	case FieldTrackWidth:
		p.TrackWidth = value
	case FieldConeSpacing:
		p.ConeSpacing = value
	case FieldConeSpacingStdDev:
		p.ConeSpacingStdDev = value
	case FieldOrangeSpacing:
		p.OrangeSpacing = value
	case FieldGridSize:
		p.Grid.Size = value
	case FieldMinTurningRadius:
		p.MinTurningRadius = value
	case FieldOffsetLongitudinal:
		p.PoseOffset.Longitudinal = value
	case FieldOffsetLateral:
		p.PoseOffset.Lateral = value
	case FieldOffsetYaw:
		p.PoseOffset.Yaw = value * math.Pi / 180
	default:
		return false, fmt.Errorf("unknown field %q", field)
	}
	return true, c.Recompute()
}

// FieldValue formats the current value of a field as it would be typed.
func (c *Controller) FieldValue(field Field) string {
	p := c.state.Params
	var v float64
	switch field {
	case FieldTrackWidth:
		v = p.TrackWidth
	case FieldConeSpacing:
		v = p.ConeSpacing
	case FieldConeSpacingStdDev:
		v = p.ConeSpacingStdDev
	case FieldOrangeSpacing:
		v = p.OrangeSpacing
	case FieldGridSize:
		v = p.Grid.Size
	case FieldMinTurningRadius:
		v = p.MinTurningRadius
	case FieldOffsetLongitudinal:
		v = p.PoseOffset.Longitudinal
	case FieldOffsetLateral:
		v = p.PoseOffset.Lateral
	case FieldOffsetYaw:
		v = p.PoseOffset.Yaw * 180 / math.Pi
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LoadWaypoints replaces the waypoints. An empty slice is treated as a
// failed import and leaves the current track untouched.
func (c *Controller) LoadWaypoints(pts []common.Vec2) error {
	if len(pts) == 0 {
		return nil
	}
	wps := make([]*Waypoint, len(pts))
	for i, p := range pts {
		wps[i] = NewWaypoint(p, c.state.Params.WaypointRadius, c.view)
	}
	c.state.Waypoints = wps
	c.dragging = false
	return c.Recompute()
}

// ImportFile loads the waypoints of a track file. It reports false, with
// the current track kept, when the file could not be imported.
func (c *Controller) ImportFile(path string) (bool, error) {
	pts := trackfile.ImportFile(path, c.log)
	if len(pts) == 0 {
		return false, nil
	}
	return true, c.LoadWaypoints(pts)
}

// ExportFile writes the current cones, waypoints and start pose to path.
func (c *Controller) ExportFile(path string) error {
	if err := trackfile.ExportFile(path, c.result.Cones, c.state.Positions(), c.result.Pose); err != nil {
		return err
	}
	c.log.Info().Str("path", path).Int("cones", c.result.Cones.Count()).Msg("Exported track")
	return nil
}

// Recompute runs the whole pipeline: centerline, sides, cones, start pose.
// Only degenerate geometry is reported as an error; missing data yields an
// empty result.
func (c *Controller) Recompute() error {
	p := c.state.Params
	wps := c.state.Positions()
	c.result = Result{Cones: track.Cones{}}

	center, curvature, err := c.builder.ComputeCenterline(wps, p.CloseLoop, c.view)
	if err != nil {
		c.log.Error().Err(err).Int("waypoints", len(wps)).Msg("Recompute failed")
		return err
	}
	if len(center) == 0 {
		return nil
	}

	left, right := c.builder.ComputeSidePoints(p.TrackWidth, c.view)
	cones, err := c.builder.ComputeCones(p.ConeSpacing, p.ConeSpacingStdDev, p.OrangeSpacing, p.CloseLoop)
	if err != nil {
		c.log.Error().Err(err).Msg("Cone placement failed")
		return err
	}
	pose, ok := c.builder.ComputeStartPose(wps, p.PoseOffset)

	c.result = Result{
		Center:    center,
		Curvature: curvature,
		Excessive: c.builder.Centerline().Excessive(track.MaxCurvature(p.MinTurningRadius)),
		Left:      left,
		Right:     right,
		Cones:     cones,
		Pose:      pose,
		HasPose:   ok,
	}
	return nil
}

// waypointAt returns the index of the first waypoint under the canvas
// point, ignoring skip, or -1.
func (c *Controller) waypointAt(px, py float64, skip int) int {
	for i, wp := range c.state.Waypoints {
		if i != skip && wp.IsColliding(px, py) {
			return i
		}
	}
	return -1
}

func (c *Controller) occupied(pos common.Vec2, skip int) bool {
	px := c.view.PointToPixels(pos)
	return c.waypointAt(float64(px.X), float64(px.Y), skip) >= 0
}
