package geom

import (
	"github.com/deadsy/sdfx/sdf"
)

// Transform is an affine map of model space. The zero value is not usable;
// start from Identity.
type Transform struct {
	m sdf.M44
}

// Identity returns the transform that leaves every point in place.
func Identity() Transform {
	return Transform{m: sdf.Identity3d()}
}

// Translation moves points by d.
func Translation(d Vector3) Transform {
	return Transform{m: sdf.Translate3d(d)}
}

// Scaling scales about the origin by s per axis.
func Scaling(s Vector3) Transform {
	return Transform{m: sdf.Scale3d(s)}
}

// UniformScaling scales about the origin by s.
func UniformScaling(s float64) Transform {
	return Scaling(Vector3{X: s, Y: s, Z: s})
}

// RotationX rotates by angle radians about the X axis.
func RotationX(angle float64) Transform {
	return Transform{m: sdf.RotateX(angle)}
}

// RotationY rotates by angle radians about the Y axis.
func RotationY(angle float64) Transform {
	return Transform{m: sdf.RotateY(angle)}
}

// RotationZ rotates by angle radians about the Z axis.
func RotationZ(angle float64) Transform {
	return Transform{m: sdf.RotateZ(angle)}
}

// RotationAbout rotates by angle radians about axis, right-handed around
// its direction.
func RotationAbout(axis Line, angle float64) Transform {
	d := NormalizeOrZ(axis.Direction)
	return Translation(axis.Origin.MulScalar(-1)).
		Then(Transform{m: sdf.Rotate3d(d, angle)}).
		Then(Translation(axis.Origin))
}

// Then returns the transform that applies t first and next second.
func (t Transform) Then(next Transform) Transform {
	return Transform{m: next.m.Mul(t.m)}
}

// Point maps a position.
func (t Transform) Point(p Point3) Point3 {
	return t.m.MulPosition(p)
}

// Vector maps a direction, ignoring translation.
func (t Transform) Vector(v Vector3) Vector3 {
	return t.m.MulPosition(v).Sub(t.m.MulPosition(Vector3{}))
}

// Direction maps a direction and renormalizes it.
func (t Transform) Direction(v Vector3) Vector3 {
	return NormalizeOrZ(t.Vector(v))
}

// Normal maps a surface normal through the inverse transpose of the
// linear part and renormalizes it, so it stays perpendicular to mapped
// tangents under non-uniform scaling. A singular map falls back to
// Direction.
func (t Transform) Normal(n Vector3) Vector3 {
	if t.m.Determinant() == 0 {
		return t.Direction(n)
	}
	inv := t.m.Inverse()
	return NormalizeOrZ(Vector3{
		X: inv[0]*n.X + inv[4]*n.Y + inv[8]*n.Z,
		Y: inv[1]*n.X + inv[5]*n.Y + inv[9]*n.Z,
		Z: inv[2]*n.X + inv[6]*n.Y + inv[10]*n.Z,
	})
}

// ScaleFactor is the mean stretch of the unit axes. It is exact for
// rigid motions and uniform scaling.
func (t Transform) ScaleFactor() float64 {
	return (t.Vector(XAxis).Length() + t.Vector(YAxis).Length() + t.Vector(ZAxis).Length()) / 3
}

// Matrix exposes the underlying sdfx matrix.
func (t Transform) Matrix() sdf.M44 {
	return t.m
}
