package spline

import (
	"fmt"
	"sort"

	"fs-track-builder/internal/common"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// component is one coordinate of a parametric curve, evaluated together
// with its first and second derivatives.
type component interface {
	eval(t float64) (v, d1, d2 float64)
}

// curve is a planar parametric curve over t in [0, 1].
type curve struct {
	x, y component
}

func (c curve) eval(t float64) (p, d1, d2 common.Vec2) {
	x, dx, ddx := c.x.eval(t)
	y, dy, ddy := c.y.eval(t)
	return common.Vec2{X: x, Y: y}, common.Vec2{X: dx, Y: dy}, common.Vec2{X: ddx, Y: ddy}
}

// fit builds an interpolating curve through coords. The degree follows the
// number of coordinates: 2 -> linear, 3 -> quadratic, more -> cubic.
// A periodic fit expects coords to already end with a copy of the first
// point.
func fit(coords []common.Vec2, periodic bool) (curve, error) {
	knots, err := chordKnots(coords)
	if err != nil {
		return curve{}, err
	}

	xs := make([]float64, len(coords))
	ys := make([]float64, len(coords))
	for i, p := range coords {
		xs[i], ys[i] = p.X, p.Y
	}

	switch len(coords) {
	case 2:
		return curve{x: newLinear(knots, xs), y: newLinear(knots, ys)}, nil
	case 3:
		return curve{x: newQuadratic(knots, xs), y: newQuadratic(knots, ys)}, nil
	}

	solve := solveNotAKnot
	if periodic {
		solve = solvePeriodic
	}
	mx, err := solve(knots, xs)
	if err != nil {
		return curve{}, fmt.Errorf("fit x: %w", err)
	}
	my, err := solve(knots, ys)
	if err != nil {
		return curve{}, fmt.Errorf("fit y: %w", err)
	}
	return curve{
		x: &cubic{knots: knots, values: xs, second: mx},
		y: &cubic{knots: knots, values: ys, second: my},
	}, nil
}

// chordKnots returns the normalized cumulative chord length at each
// coordinate. Coincident consecutive coordinates make the parametrization
// singular.
func chordKnots(coords []common.Vec2) ([]float64, error) {
	dist := make([]float64, len(coords))
	for i := 1; i < len(coords); i++ {
		dist[i] = coords[i-1].Dist(coords[i])
		if dist[i] == 0 {
			return nil, fmt.Errorf("points %d and %d coincide: %w", i-1, i, ErrDegenerateGeometry)
		}
	}
	knots := floats.CumSum(make([]float64, len(dist)), dist)
	floats.Scale(1/knots[len(knots)-1], knots)
	knots[len(knots)-1] = 1
	return knots, nil
}

type linear struct {
	t0, t1 float64
	v0     float64
	slope  float64
}

func newLinear(t, v []float64) *linear {
	return &linear{t0: t[0], t1: t[1], v0: v[0], slope: (v[1] - v[0]) / (t[1] - t[0])}
}

func (l *linear) eval(t float64) (float64, float64, float64) {
	return l.v0 + l.slope*(t-l.t0), l.slope, 0
}

// quadratic is the Newton form a + b(t-t0) + c(t-t0)(t-t1).
type quadratic struct {
	t0, t1  float64
	a, b, c float64
}

func newQuadratic(t, v []float64) *quadratic {
	b := (v[1] - v[0]) / (t[1] - t[0])
	c := ((v[2]-v[1])/(t[2]-t[1]) - b) / (t[2] - t[0])
	return &quadratic{t0: t[0], t1: t[1], a: v[0], b: b, c: c}
}

func (q *quadratic) eval(t float64) (float64, float64, float64) {
	v := q.a + q.b*(t-q.t0) + q.c*(t-q.t0)*(t-q.t1)
	d1 := q.b + q.c*(2*t-q.t0-q.t1)
	return v, d1, 2 * q.c
}

// cubic is a C2 piecewise cubic described by its values and second
// derivatives at the knots.
type cubic struct {
	knots  []float64
	values []float64
	second []float64
}

func (c *cubic) eval(t float64) (float64, float64, float64) {
	i := sort.SearchFloat64s(c.knots, t) - 1
	if i < 0 {
		i = 0
	}
	if last := len(c.knots) - 2; i > last {
		i = last
	}

	h := c.knots[i+1] - c.knots[i]
	a := c.knots[i+1] - t
	b := t - c.knots[i]
	m0, m1 := c.second[i], c.second[i+1]
	c0 := c.values[i]/h - m0*h/6
	c1 := c.values[i+1]/h - m1*h/6

	v := m0*a*a*a/(6*h) + m1*b*b*b/(6*h) + c0*a + c1*b
	d1 := -m0*a*a/(2*h) + m1*b*b/(2*h) - c0 + c1
	d2 := (m0*a + m1*b) / h
	return v, d1, d2
}

func steps(knots []float64) []float64 {
	h := make([]float64, len(knots)-1)
	for i := range h {
		h[i] = knots[i+1] - knots[i]
	}
	return h
}

// solveNotAKnot returns the second derivatives of the interpolating cubic
// whose third derivative is continuous across the second and the
// second-to-last knots.
func solveNotAKnot(knots, v []float64) ([]float64, error) {
	n := len(knots)
	h := steps(knots)
	a := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)

	a.Set(0, 0, h[1])
	a.Set(0, 1, -(h[0] + h[1]))
	a.Set(0, 2, h[0])
	for i := 1; i < n-1; i++ {
		a.Set(i, i-1, h[i-1])
		a.Set(i, i, 2*(h[i-1]+h[i]))
		a.Set(i, i+1, h[i])
		rhs.SetVec(i, 6*((v[i+1]-v[i])/h[i]-(v[i]-v[i-1])/h[i-1]))
	}
	last := n - 1
	a.Set(last, last-2, h[last-1])
	a.Set(last, last-1, -(h[last-2] + h[last-1]))
	a.Set(last, last, h[last-2])

	var m mat.VecDense
	if err := m.SolveVec(a, rhs); err != nil {
		return nil, err
	}
	return m.RawVector().Data, nil
}

// solvePeriodic returns the second derivatives of the closed cubic through
// v, where v[len-1] repeats v[0].
func solvePeriodic(knots, v []float64) ([]float64, error) {
	n := len(knots) - 1
	h := steps(knots)
	a := mat.NewDense(n, n, nil)
	rhs := mat.NewVecDense(n, nil)

	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		next := (i + 1) % n
		a.Set(i, prev, a.At(i, prev)+h[prev])
		a.Set(i, i, a.At(i, i)+2*(h[prev]+h[i]))
		a.Set(i, next, a.At(i, next)+h[i])
		rhs.SetVec(i, 6*((v[i+1]-v[i])/h[i]-(v[i]-v[prev])/h[prev]))
	}

	var m mat.VecDense
	if err := m.SolveVec(a, rhs); err != nil {
		return nil, err
	}
	second := make([]float64, n+1)
	copy(second, m.RawVector().Data)
	second[n] = second[0]
	return second, nil
}
