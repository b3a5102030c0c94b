// Package curve evaluates the geometry carried by topology entities: the
// curve underlying an edge and the surface underlying a face.
package curve

import (
	"math"

	"github.com/chazu/brep/pkg/geom"
)

// Curve is the geometry of an edge. Concrete types are Linear, Arc and
// Nurbs.
type Curve interface {
	curve()
}

// Linear is a straight segment between the edge's vertices.
type Linear struct{}

// Arc is a circular arc in the plane through Center perpendicular to
// Normal. Angles are in radians, measured from the in-plane basis built by
// ArcBasis.
type Arc struct {
	Center     geom.Point3
	Radius     float64
	Normal     geom.Vector3
	StartAngle float64
	EndAngle   float64
}

// Nurbs is a rational B-spline curve.
type Nurbs struct {
	ControlPoints []geom.Point3
	Weights       []float64
	Knots         []float64
	Degree        int
}

func (Linear) curve() {}
func (Arc) curve()    {}
func (Nurbs) curve()  {}

// PointAt evaluates c at t in [0,1]. start and end are the positions of
// the owning edge's vertices; only Linear uses them.
func PointAt(c Curve, start, end geom.Point3, t float64) geom.Point3 {
	switch c := c.(type) {
	case Linear:
		return geom.Lerp(start, end, t)
	case Arc:
		return c.PointAt(t)
	case Nurbs:
		return EvalNurbs(c.ControlPoints, c.Weights, c.Knots, c.Degree, t)
	case nil:
		return geom.Lerp(start, end, t)
	default:
		geom.Invariant("unknown curve type %T", c)
		return geom.Point3{}
	}
}

// ArcBasis returns an orthonormal pair spanning the plane perpendicular
// to normal. X is the reference direction when normal is mostly along Z;
// otherwise Z×normal is.
func ArcBasis(normal geom.Vector3) (u, v geom.Vector3) {
	if math.Abs(normal.Z) > 0.9 {
		u = geom.XAxis
	} else {
		u = geom.NormalizeOrZ(geom.ZAxis.Cross(normal))
	}
	v = normal.Cross(u)
	return u, v
}

// PointAt evaluates the arc at t in [0,1].
func (a Arc) PointAt(t float64) geom.Point3 {
	angle := a.StartAngle + t*(a.EndAngle-a.StartAngle)
	u, v := ArcBasis(a.Normal)
	dir := u.MulScalar(math.Cos(angle)).Add(v.MulScalar(math.Sin(angle)))
	return a.Center.Add(dir.MulScalar(a.Radius))
}

// Sweep is EndAngle - StartAngle.
func (a Arc) Sweep() float64 {
	return a.EndAngle - a.StartAngle
}

// Length approximates the length of c between start and end by summing
// samples chords. Linear curves are measured exactly.
func Length(c Curve, start, end geom.Point3, samples int) float64 {
	switch c := c.(type) {
	case Linear, nil:
		return geom.Distance(start, end)
	case Arc:
		return math.Abs(c.Sweep()) * c.Radius
	}
	if samples < 1 {
		samples = 1
	}
	var total float64
	prev := PointAt(c, start, end, 0)
	for i := 1; i <= samples; i++ {
		p := PointAt(c, start, end, float64(i)/float64(samples))
		total += geom.Distance(prev, p)
		prev = p
	}
	return total
}
