package geom

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeOrZ(t *testing.T) {
	tests := []struct {
		name string
		in   Vector3
		want Vector3
	}{
		{"unit x", Vector3{X: 3}, XAxis},
		{"diagonal", Vector3{X: 1, Y: 1}, Vector3{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}},
		{"zero falls back to z", Vector3{}, ZAxis},
		{"tiny falls back to z", Vector3{X: 1e-9}, ZAxis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeOrZ(tt.in)
			if !ApproxEqual(got, tt.want) {
				t.Errorf("NormalizeOrZ(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	b := EmptyBounds()
	if !IsEmptyBounds(b) {
		t.Fatal("EmptyBounds should be empty")
	}

	b = BoundsFromPoints([]Point3{{X: 1, Y: -2, Z: 3}, {X: -1, Y: 4, Z: 0}})
	if IsEmptyBounds(b) {
		t.Fatal("bounds of two points should not be empty")
	}
	if !ApproxEqual(b.Min, Point3{X: -1, Y: -2, Z: 0}) || !ApproxEqual(b.Max, Point3{X: 1, Y: 4, Z: 3}) {
		t.Errorf("bounds = %v..%v", b.Min, b.Max)
	}
	if !BoundsContain(b, Point3{}) {
		t.Error("origin should be inside")
	}
	if BoundsContain(b, Point3{X: 2}) {
		t.Error("x=2 should be outside")
	}

	other := BoundingBox3{Min: Point3{X: 1, Y: 4, Z: 3}, Max: Point3{X: 5, Y: 5, Z: 5}}
	if !BoundsIntersect(b, other) {
		t.Error("touching boxes should intersect")
	}
	u := UnionBounds(b, other)
	if !ApproxEqual(u.Max, Point3{X: 5, Y: 5, Z: 5}) {
		t.Errorf("union max = %v", u.Max)
	}
	if got := UnionBounds(EmptyBounds(), other); got != other {
		t.Errorf("union with empty = %v, want %v", got, other)
	}
}

func TestPlaneFromPoints(t *testing.T) {
	p, err := PlaneFromPoints(Point3{}, Point3{X: 1}, Point3{Y: 1})
	if err != nil {
		t.Fatalf("PlaneFromPoints: %v", err)
	}
	if !ApproxEqual(p.Normal, ZAxis) {
		t.Errorf("normal = %v, want +Z", p.Normal)
	}
	if d := p.SignedDistance(Point3{Z: 2}); math.Abs(d-2) > Tolerance {
		t.Errorf("signed distance = %v, want 2", d)
	}

	_, err = PlaneFromPoints(Point3{}, Point3{X: 1}, Point3{X: 2})
	if !errors.Is(err, ErrDegenerate) {
		t.Errorf("collinear points: err = %v, want ErrDegenerate", err)
	}
}

func TestRayIntersectPlane(t *testing.T) {
	p, _ := PlaneFromPointNormal(Point3{Z: 5}, ZAxis)

	r := Ray{Origin: Point3{}, Direction: ZAxis}
	tt, ok := r.IntersectPlane(p)
	if !ok || math.Abs(tt-5) > Tolerance {
		t.Errorf("hit = (%v, %v), want (5, true)", tt, ok)
	}

	if _, ok := (Ray{Direction: XAxis}).IntersectPlane(p); ok {
		t.Error("parallel ray should miss")
	}
	if _, ok := (Ray{Direction: ZAxis.MulScalar(-1)}).IntersectPlane(p); ok {
		t.Error("plane behind the ray should miss")
	}
}

func TestRayIntersectTriangle(t *testing.T) {
	a, b, c := Point3{}, Point3{X: 1}, Point3{Y: 1}
	r := Ray{Origin: Point3{X: 0.2, Y: 0.2, Z: 1}, Direction: ZAxis.MulScalar(-1)}
	tt, ok := r.IntersectTriangle(a, b, c)
	if !ok || math.Abs(tt-1) > Tolerance {
		t.Errorf("hit = (%v, %v), want (1, true)", tt, ok)
	}
	miss := Ray{Origin: Point3{X: 2, Y: 2, Z: 1}, Direction: ZAxis.MulScalar(-1)}
	if _, ok := miss.IntersectTriangle(a, b, c); ok {
		t.Error("ray outside triangle should miss")
	}
}

func TestSegmentClosestPoint(t *testing.T) {
	s := Segment{Start: Point3{}, End: Point3{X: 10}}
	tests := []struct {
		p    Point3
		want Point3
	}{
		{Point3{X: 5, Y: 3}, Point3{X: 5}},
		{Point3{X: -4, Y: 1}, Point3{}},
		{Point3{X: 12}, Point3{X: 10}},
	}
	for _, tt := range tests {
		if got := s.ClosestPoint(tt.p); !ApproxEqual(got, tt.want) {
			t.Errorf("ClosestPoint(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if s.Length() != 10 {
		t.Errorf("Length = %v", s.Length())
	}
}

func TestTransform(t *testing.T) {
	tr := Translation(Vector3{X: 1, Y: 2, Z: 3})
	if got := tr.Point(Point3{}); !ApproxEqual(got, Point3{X: 1, Y: 2, Z: 3}) {
		t.Errorf("translate point = %v", got)
	}
	if got := tr.Vector(XAxis); !ApproxEqual(got, XAxis) {
		t.Errorf("translate vector = %v, want unchanged", got)
	}

	rot := RotationZ(math.Pi / 2)
	if got := rot.Point(Point3{X: 1}); !ApproxEqual(got, Point3{Y: 1}) {
		t.Errorf("rotate z 90 = %v, want +Y", got)
	}

	composed := UniformScaling(2).Then(Translation(Vector3{X: 1}))
	if got := composed.Point(Point3{X: 1}); !ApproxEqual(got, Point3{X: 3}) {
		t.Errorf("scale then translate = %v, want (3,0,0)", got)
	}
	if f := UniformScaling(2).ScaleFactor(); math.Abs(f-2) > Tolerance {
		t.Errorf("ScaleFactor = %v, want 2", f)
	}
}

func TestRotationAbout(t *testing.T) {
	axis := Line{Origin: Point3{X: 1}, Direction: Vector3{Z: 2}}
	got := RotationAbout(axis, math.Pi/2).Point(Point3{X: 2})
	if !ApproxEqual(got, Point3{X: 1, Y: 1}) {
		t.Errorf("rotate (2,0,0) a quarter turn about x=1 = %v, want (1,1,0)", got)
	}
	if got := RotationAbout(axis, 1).Point(Point3{X: 1, Z: 5}); !ApproxEqual(got, Point3{X: 1, Z: 5}) {
		t.Errorf("point on the axis moved to %v", got)
	}
}

func TestTransformNormal(t *testing.T) {
	tests := []struct {
		name    string
		xf      Transform
		normal  Vector3
		tangent Vector3
	}{
		{"non-uniform scale", Scaling(Vector3{X: 1, Y: 4, Z: 1}), Vector3{X: 1, Y: 1}, Vector3{X: 1, Y: -1}},
		{"rotation", RotationZ(math.Pi / 3), XAxis, YAxis},
		{"scale then translate", Scaling(Vector3{X: 3, Y: 1, Z: 2}).Then(Translation(Vector3{X: 5})), Vector3{X: 1, Z: 1}, Vector3{X: 1, Z: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.xf.Normal(tt.normal)
			if l := n.Length(); math.Abs(l-1) > Tolerance {
				t.Errorf("length = %v, want 1", l)
			}
			if d := n.Dot(tt.xf.Vector(tt.tangent)); math.Abs(d) > Tolerance {
				t.Errorf("normal %v not perpendicular to mapped tangent (dot %v)", n, d)
			}
		})
	}
	if got := Scaling(Vector3{X: 1, Y: 0, Z: 1}).Normal(XAxis); !ApproxEqual(got, XAxis) {
		t.Errorf("singular map normal = %v, want direction fallback +X", got)
	}
}

func TestInvariantPanics(t *testing.T) {
	defer func() {
		r := recover()
		iv, ok := r.(*InvariantViolation)
		if !ok {
			t.Fatalf("recovered %T, want *InvariantViolation", r)
		}
		if iv.Message != "edge 3 missing" {
			t.Errorf("message = %q", iv.Message)
		}
	}()
	Invariant("edge %d missing", 3)
}
