package curve

import "github.com/chazu/brep/pkg/geom"

// Surface is the geometry of a face. Concrete types are Planar,
// Cylindrical, Spherical, Conical, Toroidal and NurbsSurface.
type Surface interface {
	surface()
}

// Planar is a plane with the given normal.
type Planar struct {
	Normal geom.Vector3
}

// Cylindrical is an infinite cylinder around Axis through Center.
type Cylindrical struct {
	Axis   geom.Vector3
	Center geom.Point3
	Radius float64
}

// Spherical is a sphere.
type Spherical struct {
	Center geom.Point3
	Radius float64
}

// Conical is a cone with apex Apex opening along Axis. HalfAngle is in
// radians.
type Conical struct {
	Apex      geom.Point3
	Axis      geom.Vector3
	HalfAngle float64
}

// Toroidal is a torus around Axis through Center.
type Toroidal struct {
	Center      geom.Point3
	Axis        geom.Vector3
	MajorRadius float64
	MinorRadius float64
}

// NurbsSurface is a tensor-product rational B-spline surface.
// ControlPoints and Weights are indexed [u][v].
type NurbsSurface struct {
	ControlPoints [][]geom.Point3
	Weights       [][]float64
	UKnots        []float64
	VKnots        []float64
	UDegree       int
	VDegree       int
}

func (Planar) surface()       {}
func (Cylindrical) surface()  {}
func (Spherical) surface()    {}
func (Conical) surface()      {}
func (Toroidal) surface()     {}
func (NurbsSurface) surface() {}

// NormalAt returns the surface normal used for shading and orientation.
//
// Only Planar is exact. Cylindrical returns its axis rather than the
// radial direction, and every other surface returns +Z.
func NormalAt(s Surface, p geom.Point3) geom.Vector3 {
	switch s := s.(type) {
	case Planar:
		return s.Normal
	case Cylindrical:
		return s.Axis
	default:
		return geom.ZAxis
	}
}

// EvalNurbsSurface evaluates s at (u, v) by running the curve evaluator
// along v for every u row and then once along u.
func EvalNurbsSurface(s NurbsSurface, u, v float64) geom.Point3 {
	if len(s.ControlPoints) == 0 || len(s.Weights) != len(s.ControlPoints) {
		return geom.Point3{}
	}
	rows := make([]geom.Point3, len(s.ControlPoints))
	rowWeights := make([]float64, len(s.ControlPoints))
	for i, row := range s.ControlPoints {
		rows[i] = EvalNurbs(row, s.Weights[i], s.VKnots, s.VDegree, v)
		// Row weight along v, evaluated as a 1D spline of the weights.
		rowWeights[i] = evalWeight(s.Weights[i], s.VKnots, s.VDegree, v)
	}
	return EvalNurbs(rows, rowWeights, s.UKnots, s.UDegree, u)
}

func evalWeight(weights, knots []float64, degree int, t float64) float64 {
	pts := make([]geom.Point3, len(weights))
	ones := make([]float64, len(weights))
	for i, w := range weights {
		pts[i] = geom.Point3{X: w}
		ones[i] = 1
	}
	return EvalNurbs(pts, ones, knots, degree, t).X
}
