package curve

import (
	"math"

	"github.com/chazu/brep/pkg/geom"
)

// NewNurbs checks the B-spline shape invariants and returns the curve.
func NewNurbs(points []geom.Point3, weights, knots []float64, degree int) (Nurbs, error) {
	n := Nurbs{ControlPoints: points, Weights: weights, Knots: knots, Degree: degree}
	if err := n.Validate(); err != nil {
		return Nurbs{}, err
	}
	return n, nil
}

// Validate reports a geom.ErrDegenerate error when the knot vector or
// weights do not match the control points.
func (n Nurbs) Validate() error {
	switch {
	case n.Degree < 1:
		return geom.Degenerate("nurbs degree %d", n.Degree)
	case len(n.ControlPoints) <= n.Degree:
		return geom.Degenerate("nurbs needs more than %d control points, have %d", n.Degree, len(n.ControlPoints))
	case len(n.Weights) != len(n.ControlPoints):
		return geom.Degenerate("nurbs has %d weights for %d control points", len(n.Weights), len(n.ControlPoints))
	case len(n.Knots) != len(n.ControlPoints)+n.Degree+1:
		return geom.Degenerate("nurbs has %d knots, want %d", len(n.Knots), len(n.ControlPoints)+n.Degree+1)
	}
	for i := 1; i < len(n.Knots); i++ {
		if n.Knots[i] < n.Knots[i-1] {
			return geom.Degenerate("nurbs knots decrease at index %d", i)
		}
	}
	return nil
}

// PointAt evaluates the curve at t.
func (n Nurbs) PointAt(t float64) geom.Point3 {
	return EvalNurbs(n.ControlPoints, n.Weights, n.Knots, n.Degree, t)
}

type deBoorPoint struct {
	p geom.Point3
	w float64
}

// EvalNurbs evaluates a rational B-spline at t with De Boor's algorithm.
//
// When t falls in no span in [degree, n) the span defaults to degree, and
// seed indices past the last control point are clamped to it. With no
// control points, no more control points than the degree, or arrays too
// short for the degree, the origin is returned.
func EvalNurbs(points []geom.Point3, weights, knots []float64, degree int, t float64) geom.Point3 {
	n := len(points)
	if n == 0 || degree < 0 || n <= degree || len(weights) < n || len(knots) < n+degree+1 {
		return geom.Point3{}
	}

	span := degree
	for i := degree; i < n; i++ {
		if t >= knots[i] && t < knots[i+1] {
			span = i
			break
		}
	}

	d := make([]deBoorPoint, degree+1)
	for j := range d {
		idx := min(span-degree+j, n-1)
		d[j] = deBoorPoint{p: points[idx], w: weights[idx]}
	}

	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			i := span - degree + j
			denom := knots[i+degree+1-r] - knots[i]
			alpha := 0.0
			if math.Abs(denom) >= geom.Tolerance {
				alpha = (t - knots[i]) / denom
			}

			w := (1-alpha)*d[j-1].w + alpha*d[j].w
			p := d[j].p
			if math.Abs(w) >= geom.Tolerance {
				p1 := d[j-1].p.MulScalar(d[j-1].w * (1 - alpha))
				p2 := d[j].p.MulScalar(d[j].w * alpha)
				p = p1.Add(p2).MulScalar(1 / w)
			}
			d[j] = deBoorPoint{p: p, w: w}
		}
	}

	return d[degree].p
}
