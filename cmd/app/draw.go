package main

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/editor"
	"fs-track-builder/internal/track"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Canvas colors
var (
	ColorBackground = color.RGBA{40, 40, 40, 255}
	ColorGrid       = color.RGBA{60, 60, 60, 255}
	ColorCenterline = color.RGBA{150, 150, 150, 255}
	ColorBoundary   = color.RGBA{230, 230, 230, 255}
	ColorExcessive  = color.RGBA{255, 0, 0, 255}
	ColorWaypoint   = color.RGBA{0, 200, 0, 255}
	ColorHovered    = color.RGBA{120, 255, 120, 255}
	ColorPose       = color.RGBA{255, 0, 255, 255}
	ColorHUD        = color.RGBA{0, 0, 0, 180}
)

var ConeColors = map[track.ConeColor]color.RGBA{
	track.ConeBlue:   {40, 90, 255, 255},
	track.ConeYellow: {255, 220, 0, 255},
	track.ConeOrange: {255, 130, 0, 255},
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(ColorBackground)

	c := g.Ctrl
	res := c.Result()
	view := c.View()

	if c.State().Params.Grid.Enabled {
		g.drawGrid(screen)
	}

	drawPolyline(screen, res.Left, 2, ColorBoundary)
	drawPolyline(screen, res.Right, 2, ColorBoundary)
	drawDashed(screen, res.Center, 1, ColorCenterline)

	for _, k := range res.Excessive {
		p := res.Center[k]
		vector.FillCircle(screen, float32(p.X), float32(p.Y), 3, ColorExcessive, true)
	}

	coneRadius := float32(math.Max(2, float64(view.ToPixels(g.ConeRadius))))
	for _, cc := range track.ConeColors {
		for _, cone := range res.Cones[cc] {
			p := view.PointToPixels(cone)
			vector.FillCircle(screen, float32(p.X), float32(p.Y), coneRadius, ConeColors[cc], true)
		}
	}

	for _, wp := range c.State().Waypoints {
		clr := ColorWaypoint
		if wp.Hovered {
			clr = ColorHovered
		}
		p := wp.Pixel()
		vector.StrokeCircle(screen, float32(p.X), float32(p.Y), float32(wp.Radius), 2, clr, true)
	}

	if res.HasPose {
		g.drawPose(screen, res.Pose)
	}

	g.drawHUD(screen)
}

func (g *Game) drawGrid(screen *ebiten.Image) {
	view := g.Ctrl.View()
	step := view.Scale() * g.Ctrl.State().Params.Grid.Size
	if step < 4 {
		return
	}

	x0 := math.Mod(view.OffsetX, step)
	for x := x0; x < float64(g.Width); x += step {
		vector.StrokeLine(screen, float32(x), 0, float32(x), float32(g.Height), 1, ColorGrid, false)
	}
	y0 := math.Mod(view.OffsetY, step)
	for y := y0; y < float64(g.Height); y += step {
		vector.StrokeLine(screen, 0, float32(y), float32(g.Width), float32(y), 1, ColorGrid, false)
	}
}

// drawPose draws the start position with an arrow along its heading.
func (g *Game) drawPose(screen *ebiten.Image, pose track.Pose) {
	view := g.Ctrl.View()
	start := view.PointToPixels(common.Vec2{X: pose.X, Y: pose.Y})
	length := 1.5
	tip := view.PointToPixels(common.Vec2{X: pose.X + length*math.Cos(pose.Yaw), Y: pose.Y + length*math.Sin(pose.Yaw)})

	vector.FillCircle(screen, float32(start.X), float32(start.Y), 4, ColorPose, true)
	vector.StrokeLine(screen, float32(start.X), float32(start.Y), float32(tip.X), float32(tip.Y), 2, ColorPose, true)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	c := g.Ctrl
	p := c.State().Params
	res := c.Result()

	vector.FillRect(screen, 0, 0, 260, 250, ColorHUD, true)

	msg := "FS TRACK BUILDER\n"
	msg += "----------------\n"
	msg += fmt.Sprintf("Mode:      %s\n", c.Mode())
	msg += fmt.Sprintf("Waypoints: %d\n", len(c.State().Waypoints))
	msg += fmt.Sprintf("Cones:     %d\n", res.Cones.Count())
	msg += fmt.Sprintf("Loop:      %t  Grid: %t\n", p.CloseLoop, p.Grid.Enabled)
	msg += fmt.Sprintf("Zoom:      %.1f\n", c.View().Zoom)

	x, y := ebiten.CursorPosition()
	pos := c.View().PixelsToPoint(float64(x), float64(y))
	msg += fmt.Sprintf("Cursor:    (%.2f, %.2f)\n", pos.X, pos.Y)
	center := c.Builder().Centerline()
	if offset, idx := center.LateralOffset(pos); idx >= 0 {
		msg += fmt.Sprintf("Offset:    %.2f m  k=%.3f\n", offset, center.Curvature[idx])
	}
	if len(res.Excessive) > 0 {
		msg += fmt.Sprintf("Radius < %.1f m at %d samples\n", p.MinTurningRadius, len(res.Excessive))
	}

	if g.Editing {
		field := editor.Fields[g.FieldIdx]
		msg += fmt.Sprintf("\n%s [%s]: %s_\n", field, c.FieldValue(field), string(g.Input))
		msg += "Enter=apply Tab=next Esc=cancel\n"
	} else {
		msg += "\nA/D mode  Bksp undo  C clear\n"
		msg += "L loop  G grid  +/- zoom  arrows pan\n"
		msg += "E export  I import  Tab edit\n"
	}
	msg += g.Status

	ebitenutil.DebugPrint(screen, msg)
}

func drawPolyline(screen *ebiten.Image, pts []image.Point, width float32, clr color.Color) {
	for j := 0; j+1 < len(pts); j++ {
		a, b := pts[j], pts[j+1]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
	}
}

// drawDashed draws every other segment.
func drawDashed(screen *ebiten.Image, pts []image.Point, width float32, clr color.Color) {
	for j := 0; j+1 < len(pts); j += 2 {
		a, b := pts[j], pts[j+1]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
	}
}
