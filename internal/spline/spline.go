// Package spline fits interpolating parametric curves through 2D points and
// resamples them with unit normals and curvature.
package spline

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"fs-track-builder/internal/common"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DenseFactor is the number of samples per input point in dense mode.
const DenseFactor = 10

// minTangent is the smallest first-derivative norm a normal is computed from.
const minTangent = 1e-12

// ErrDegenerateGeometry is returned when a sample has no defined tangent,
// typically because two consecutive input points coincide.
var ErrDegenerateGeometry = errors.New("degenerate geometry")

// Options controls how a fitted curve is resampled.
type Options struct {
	// Periodic closes the curve from the last point back to the first.
	Periodic bool
	// Spacing is the target distance between samples. Zero or negative
	// means dense, parameter-uniform sampling.
	Spacing float64
	// JitterStdDev is the standard deviation (in meters) of the random
	// perturbation applied to interior sample parameters.
	JitterStdDev float64
	// Curvature requests signed curvature at every sample.
	Curvature bool
	// Source drives the jitter draws. Nil uses the global source.
	Source rand.Source
}

// Samples is an index-aligned resampling of a curve.
type Samples struct {
	Points    []common.Vec2
	Normals   []common.Vec2
	Curvature []float64 // nil unless requested
}

// Len returns the number of samples.
func (s *Samples) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Empty reports whether there are no samples.
func (s *Samples) Empty() bool {
	return s.Len() == 0
}

// Interpolate fits a curve through points and resamples it.
//
// Fewer than two points, or a spacing longer than the chord length, yields
// empty samples and a nil error. A sample with a zero-length tangent fails
// with ErrDegenerateGeometry.
func Interpolate(points []common.Vec2, opts Options) (*Samples, error) {
	if len(points) < 2 {
		return &Samples{}, nil
	}

	coords := make([]common.Vec2, len(points), len(points)+1)
	copy(coords, points)
	if opts.Periodic {
		coords = append(coords, points[0])
	}

	length := common.ChordLength(points)
	n := DenseFactor * len(points)
	if opts.Spacing > 0 {
		n = int(length / opts.Spacing)
		if n == 0 {
			return &Samples{}, nil
		}
	}

	c, err := fit(coords, opts.Periodic)
	if err != nil {
		return nil, err
	}

	params := parameters(n)
	if opts.JitterStdDev > 0 && length > 0 {
		jitter(params, opts.JitterStdDev/length, opts.Source)
	}

	out := &Samples{
		Points:  make([]common.Vec2, n),
		Normals: make([]common.Vec2, n),
	}
	if opts.Curvature {
		out.Curvature = make([]float64, n)
	}
	for k, t := range params {
		p, d1, d2 := c.eval(t)
		norm := d1.Len()
		if !(norm > minTangent) || math.IsInf(norm, 0) {
			return nil, fmt.Errorf("sample %d at t=%.4f: %w", k, t, ErrDegenerateGeometry)
		}
		out.Points[k] = p
		out.Normals[k] = common.Vec2{X: d1.Y / norm, Y: -d1.X / norm}
		if opts.Curvature {
			out.Curvature[k] = (d1.X*d2.Y - d1.Y*d2.X) / (norm * norm * norm)
		}
	}
	return out, nil
}

// parameters returns n values evenly spaced over [0, 1].
func parameters(n int) []float64 {
	if n == 1 {
		return []float64{0}
	}
	return floats.Span(make([]float64, n), 0, 1)
}

// jitter perturbs every interior parameter with a zero-mean Gaussian draw
// and clamps the result into [0, 1]. The end parameters stay fixed.
func jitter(params []float64, stdDev float64, src rand.Source) {
	normal := distuv.Normal{Mu: 0, Sigma: stdDev, Src: src}
	for k := 1; k < len(params)-1; k++ {
		params[k] = math.Max(0, math.Min(1, params[k]+normal.Rand()))
	}
}
