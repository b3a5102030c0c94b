package sketch

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/brep/pkg/geom"
)

func TestAddPointAndLookup(t *testing.T) {
	s := New(PlaneXY)
	a := s.AddPoint(geom.Point2{X: 1, Y: 2})
	b := s.AddConstructionPoint(geom.Point2{X: 3, Y: 4})

	if a != 0 || b != 1 {
		t.Fatalf("ids = %v, %v, want 0, 1", a, b)
	}
	if p := s.Point(b); p == nil || !p.Construction || p.Position.X != 3 {
		t.Errorf("Point(b) = %+v", p)
	}
	if s.Point(5) != nil {
		t.Error("Point(5) should be nil")
	}
	if _, ok := s.Position(5); ok {
		t.Error("Position(5) should fail")
	}
}

func TestEntitiesWithPoint(t *testing.T) {
	s := New(PlaneXY)
	c := s.AddPoint(geom.Point2{})
	p1 := s.AddPoint(geom.Point2{X: 1})
	p2 := s.AddPoint(geom.Point2{Y: 1})

	line := s.AddLine(p1, p2)
	circle := s.AddCircle(c, 2)
	arc := s.AddArc(c, p1, p2, true)
	pt := s.AddPointEntity(p2)

	if diff := cmp.Diff([]EntityID{circle, arc}, s.EntitiesWithPoint(c)); diff != "" {
		t.Errorf("center users mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EntityID{line, arc, pt}, s.EntitiesWithPoint(p2)); diff != "" {
		t.Errorf("p2 users mismatch (-want +got):\n%s", diff)
	}

	got, ok := s.Entity(arc).(Arc)
	if !ok {
		t.Fatalf("Entity(arc) = %T", s.Entity(arc))
	}
	if math.Abs(got.Radius-1) > geom.Tolerance {
		t.Errorf("arc radius = %v, want 1", got.Radius)
	}
	if s.Entity(99) != nil {
		t.Error("Entity(99) should be nil")
	}
	if n := len(s.Lines()); n != 1 {
		t.Errorf("Lines() has %d entries, want 1", n)
	}
}

func TestPlaneMapping(t *testing.T) {
	tests := []struct {
		plane  Plane
		in     geom.Point2
		want   geom.Point3
		normal geom.Vector3
	}{
		{PlaneXY, geom.Point2{X: 1, Y: 2}, geom.Point3{X: 1, Y: 2}, geom.ZAxis},
		{PlaneYZ, geom.Point2{X: 1, Y: 2}, geom.Point3{Y: 1, Z: 2}, geom.XAxis},
		{PlaneXZ, geom.Point2{X: 1, Y: 2}, geom.Point3{X: 1, Z: 2}, geom.YAxis},
	}
	for _, tt := range tests {
		t.Run(tt.plane.String(), func(t *testing.T) {
			s := New(tt.plane)
			got := s.To3D(tt.in)
			if got != tt.want {
				t.Errorf("To3D = %v, want %v", got, tt.want)
			}
			if back := s.From3D(got); back != tt.in {
				t.Errorf("From3D(To3D(p)) = %v, want %v", back, tt.in)
			}
			if n := s.Normal(); n != tt.normal {
				t.Errorf("Normal = %v, want %v", n, tt.normal)
			}
		})
	}
}

func TestParsePlane(t *testing.T) {
	for _, name := range []string{"xy", "yz", "xz"} {
		p, err := ParsePlane(name)
		if err != nil {
			t.Fatalf("ParsePlane(%q): %v", name, err)
		}
		if p.String() != name {
			t.Errorf("round trip %q -> %q", name, p.String())
		}
	}
	if _, err := ParsePlane("uv"); err == nil {
		t.Error("ParsePlane(uv) should fail")
	}
}

func TestCircumcenter(t *testing.T) {
	c, ok := Circumcenter(geom.Point2{}, geom.Point2{X: 2}, geom.Point2{Y: 2})
	if !ok {
		t.Fatal("right triangle should have a circumcenter")
	}
	if math.Abs(c.X-1) > 1e-9 || math.Abs(c.Y-1) > 1e-9 {
		t.Errorf("Circumcenter = %v, want (1,1)", c)
	}
	if _, ok := Circumcenter(geom.Point2{}, geom.Point2{X: 1}, geom.Point2{X: 2}); ok {
		t.Error("collinear points should have no circumcenter")
	}
}

func TestOrient2D(t *testing.T) {
	a, b, c := geom.Point2{}, geom.Point2{X: 1}, geom.Point2{Y: 1}
	if Orient2D(a, b, c) <= 0 {
		t.Error("a b c should turn counter-clockwise")
	}
	if Orient2D(a, c, b) >= 0 {
		t.Error("a c b should turn clockwise")
	}
	if Orient2D(a, b, geom.Point2{X: 2}) != 0 {
		t.Error("collinear points should give zero")
	}
}

func TestArcSweep(t *testing.T) {
	c := geom.Point2{}
	start := geom.Point2{X: 1}
	end := geom.Point2{Y: 1}

	a, sweep := ArcSweep(c, start, end, true)
	if a != 0 || math.Abs(sweep-math.Pi/2) > 1e-12 {
		t.Errorf("ccw: start=%v sweep=%v, want 0, π/2", a, sweep)
	}
	_, sweep = ArcSweep(c, start, end, false)
	if math.Abs(sweep+3*math.Pi/2) > 1e-12 {
		t.Errorf("cw sweep = %v, want -3π/2", sweep)
	}
}
