// Package geom holds the primitive value types shared by the kernel:
// points, vectors, planes, segments, bounding boxes and rigid transforms.
//
// Vectors are sdfx vectors so kernel data can flow straight into the sdfx
// meshing and export code without conversion.
package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tolerance is the single epsilon used for every near-zero and
// coincidence test in the kernel.
const Tolerance = 1e-6

// Point3 is a position in model space.
type Point3 = v3.Vec

// Vector3 is a direction or displacement in model space.
type Vector3 = v3.Vec

// Point2 is a position in a sketch plane.
type Point2 = v2.Vec

// Unit axes.
var (
	XAxis = Vector3{X: 1}
	YAxis = Vector3{Y: 1}
	ZAxis = Vector3{Z: 1}
)

// Lerp returns a + (b-a)*t.
func Lerp(a, b Point3, t float64) Point3 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Lerp2 is Lerp for sketch points.
func Lerp2(a, b Point2, t float64) Point2 {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Midpoint2 returns the point halfway between a and b.
func Midpoint2(a, b Point2) Point2 {
	return Lerp2(a, b, 0.5)
}

// Distance returns the euclidean distance between a and b.
func Distance(a, b Point3) float64 {
	return a.Sub(b).Length()
}

// ApproxEqual reports whether a and b agree in every component within
// Tolerance.
func ApproxEqual(a, b Point3) bool {
	return math.Abs(a.X-b.X) < Tolerance &&
		math.Abs(a.Y-b.Y) < Tolerance &&
		math.Abs(a.Z-b.Z) < Tolerance
}

// NearZero reports whether |x| is below Tolerance.
func NearZero(x float64) bool {
	return math.Abs(x) < Tolerance
}

// NormalizeOrZ returns v scaled to unit length, or +Z when v is too short
// to carry a direction.
func NormalizeOrZ(v Vector3) Vector3 {
	l := v.Length()
	if l < Tolerance {
		return ZAxis
	}
	return v.MulScalar(1 / l)
}

// Normalize returns v scaled to unit length. The second result is false
// when v is shorter than Tolerance.
func Normalize(v Vector3) (Vector3, bool) {
	l := v.Length()
	if l < Tolerance {
		return Vector3{}, false
	}
	return v.MulScalar(1 / l), true
}

// Cross2 is the z component of the 3D cross product of a and b.
func Cross2(a, b Point2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// DistanceSquared2 is the squared distance between two sketch points.
func DistanceSquared2(a, b Point2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// Distance2 is the distance between two sketch points.
func Distance2(a, b Point2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
