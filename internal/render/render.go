// Package render draws a computed track to a static image.
package render

import (
	"fmt"
	"image/color"
	"math"

	"fs-track-builder/internal/common"
	"fs-track-builder/internal/track"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// margin is added around the data, in meters.
const margin = 2.0

var (
	centerColor    = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	boundaryColor  = color.RGBA{A: 255}
	excessiveColor = color.RGBA{R: 220, A: 255}

	coneColors = map[track.ConeColor]color.Color{
		track.ConeBlue:   color.RGBA{B: 230, A: 255},
		track.ConeYellow: color.RGBA{R: 230, G: 190, A: 255},
		track.ConeOrange: color.RGBA{R: 255, G: 120, A: 255},
	}
)

// Track is everything drawn for a track, in meters.
type Track struct {
	Center    []common.Vec2
	Left      []common.Vec2
	Right     []common.Vec2
	Cones     track.Cones
	Excessive []int // indices into Center
}

// FromBuilder collects the last results of b. Centerline samples with
// |curvature| above 1/minTurningRadius are marked.
func FromBuilder(b *track.Builder, minTurningRadius float64) Track {
	center := b.Centerline()
	left, right := b.Boundaries()
	return Track{
		Center:    center.Points,
		Left:      left,
		Right:     right,
		Cones:     b.Cones(),
		Excessive: center.Excessive(track.MaxCurvature(minTurningRadius)),
	}
}

// Plot builds a top-down plot of t. The Y axis points down, as on the
// editor canvas, and both axes cover the same span.
func Plot(t Track, coneRadius float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Track"
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Add(plotter.NewGrid())

	if len(t.Center) > 1 {
		l, err := plotter.NewLine(toXYs(t.Center))
		if err != nil {
			return nil, fmt.Errorf("centerline: %w", err)
		}
		l.Color = centerColor
		l.Width = vg.Points(1)
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(l)
		p.Legend.Add("centerline", l)
	}

	for _, side := range [][]common.Vec2{t.Left, t.Right} {
		if len(side) < 2 {
			continue
		}
		l, err := plotter.NewLine(toXYs(side))
		if err != nil {
			return nil, fmt.Errorf("boundary: %w", err)
		}
		l.Color = boundaryColor
		l.Width = vg.Points(1.5)
		p.Add(l)
	}

	if len(t.Excessive) > 0 {
		pts := make([]common.Vec2, 0, len(t.Excessive))
		for _, k := range t.Excessive {
			if k >= 0 && k < len(t.Center) {
				pts = append(pts, t.Center[k])
			}
		}
		s, err := scatter(pts, excessiveColor, vg.Points(2))
		if err != nil {
			return nil, fmt.Errorf("curvature: %w", err)
		}
		p.Add(s)
		p.Legend.Add("excessive curvature", s)
	}

	for _, c := range track.ConeColors {
		if len(t.Cones[c]) == 0 {
			continue
		}
		s, err := scatter(t.Cones[c], coneColors[c], vg.Points(math.Max(2, 10*coneRadius)))
		if err != nil {
			return nil, fmt.Errorf("%s cones: %w", c, err)
		}
		p.Add(s)
		p.Legend.Add(string(c), s)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	squareRange(p, t)
	return p, nil
}

// Save renders t to path. The format follows the file extension (.png,
// .svg, .pdf, ...).
func Save(path string, t Track, coneRadius float64, size vg.Length) error {
	p, err := Plot(t, coneRadius)
	if err != nil {
		return err
	}
	if err := p.Save(size, size, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

func scatter(pts []common.Vec2, c color.Color, radius vg.Length) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = radius
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

func toXYs(pts []common.Vec2) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i] = plotter.XY{X: p.X, Y: p.Y}
	}
	return xys
}

// squareRange sets equal X and Y spans covering every drawn point.
func squareRange(p *plot.Plot, t Track) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(pts []common.Vec2) {
		for _, q := range pts {
			minX, maxX = math.Min(minX, q.X), math.Max(maxX, q.X)
			minY, maxY = math.Min(minY, q.Y), math.Max(maxY, q.Y)
		}
	}
	grow(t.Center)
	grow(t.Left)
	grow(t.Right)
	for _, c := range track.ConeColors {
		grow(t.Cones[c])
	}
	if math.IsInf(minX, 1) {
		minX, maxX, minY, maxY = 0, 0, 0, 0
	}

	half := 0.5*math.Max(maxX-minX, maxY-minY) + margin
	cx, cy := 0.5*(minX+maxX), 0.5*(minY+maxY)
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}
