package geom

import "math"

// Plane is the set of points p with Normal·p == D.
type Plane struct {
	Normal Vector3
	D      float64
}

// PlaneFromPointNormal builds the plane through origin with the given
// normal. The normal is normalized.
func PlaneFromPointNormal(origin Point3, normal Vector3) (Plane, error) {
	n, ok := Normalize(normal)
	if !ok {
		return Plane{}, Degenerate("plane normal %v", normal)
	}
	return Plane{Normal: n, D: n.Dot(origin)}, nil
}

// PlaneFromPoints builds the plane through three points, oriented by the
// right-hand rule a→b→c.
func PlaneFromPoints(a, b, c Point3) (Plane, error) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < Tolerance {
		return Plane{}, Degenerate("collinear plane points")
	}
	return PlaneFromPointNormal(a, n)
}

// SignedDistance is positive on the side the normal points to.
func (p Plane) SignedDistance(pt Point3) float64 {
	return p.Normal.Dot(pt) - p.D
}

// Project returns the closest point on p to pt.
func (p Plane) Project(pt Point3) Point3 {
	return pt.Sub(p.Normal.MulScalar(p.SignedDistance(pt)))
}

// Line is an infinite line through Origin along the unit Direction.
type Line struct {
	Origin    Point3
	Direction Vector3
}

// NewLine returns the line through a and b.
func NewLine(a, b Point3) (Line, error) {
	d, ok := Normalize(b.Sub(a))
	if !ok {
		return Line{}, Degenerate("line through coincident points")
	}
	return Line{Origin: a, Direction: d}, nil
}

// PointAt returns Origin + Direction*t.
func (l Line) PointAt(t float64) Point3 {
	return l.Origin.Add(l.Direction.MulScalar(t))
}

// ClosestPoint returns the projection of p onto l.
func (l Line) ClosestPoint(p Point3) Point3 {
	return l.PointAt(p.Sub(l.Origin).Dot(l.Direction))
}

// Ray is a half line from Origin along Direction.
type Ray struct {
	Origin    Point3
	Direction Vector3
}

// IntersectPlane returns the ray parameter at which r meets p. The second
// result is false when the ray is parallel to the plane or the hit lies
// behind the origin.
func (r Ray) IntersectPlane(p Plane) (float64, bool) {
	denom := p.Normal.Dot(r.Direction)
	if math.Abs(denom) < Tolerance {
		return 0, false
	}
	t := (p.D - p.Normal.Dot(r.Origin)) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}

// PointAt returns Origin + Direction*t.
func (r Ray) PointAt(t float64) Point3 {
	return r.Origin.Add(r.Direction.MulScalar(t))
}

// IntersectTriangle is the Möller–Trumbore test. It returns the ray
// parameter of the hit.
func (r Ray) IntersectTriangle(a, b, c Point3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	h := r.Direction.Cross(e2)
	det := e1.Dot(h)
	if math.Abs(det) < Tolerance {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := inv * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := inv * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := inv * e2.Dot(q)
	if t < Tolerance {
		return 0, false
	}
	return t, true
}

// Segment is the closed segment from Start to End.
type Segment struct {
	Start Point3
	End   Point3
}

// Length returns |End-Start|.
func (s Segment) Length() float64 {
	return Distance(s.Start, s.End)
}

// Midpoint returns the point halfway along s.
func (s Segment) Midpoint() Point3 {
	return Lerp(s.Start, s.End, 0.5)
}

// PointAt returns the point at parameter t in [0,1].
func (s Segment) PointAt(t float64) Point3 {
	return Lerp(s.Start, s.End, t)
}

// ClosestPoint returns the point of s nearest p.
func (s Segment) ClosestPoint(p Point3) Point3 {
	d := s.End.Sub(s.Start)
	l2 := d.Dot(d)
	if l2 < Tolerance*Tolerance {
		return s.Start
	}
	t := p.Sub(s.Start).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return s.PointAt(t)
}
