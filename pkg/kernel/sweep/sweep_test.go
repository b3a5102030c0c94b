package sweep

import (
	"errors"
	"math"
	"testing"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/inspect"
	"github.com/chazu/brep/pkg/primitives"
	"github.com/chazu/brep/pkg/sketch"
	"github.com/chazu/brep/pkg/topology"
)

// rectangle draws a closed outline from x0,y0 to x1,y1 with four separate
// corner points at each shared corner, the way a script of independent
// (point ...) calls would.
func rectangle(sk *sketch.Sketch, x0, y0, x1, y1 float64) {
	corners := []geom.Point2{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}
	for i := range corners {
		a := sk.AddPoint(corners[i])
		b := sk.AddPoint(corners[(i+1)%len(corners)])
		sk.AddLine(a, b)
	}
}

func checkClosed(t *testing.T, s *topology.Solid) {
	t.Helper()
	if !inspect.IsManifold(s) {
		t.Error("solid should be a closed manifold")
	}
	if errs := topology.Errors(topology.Validate(s)); len(errs) != 0 {
		t.Errorf("validation errors: %v", errs)
	}
	if v := inspect.SignedVolume(s); v <= 0 {
		t.Errorf("SignedVolume = %v, faces should wind outward", v)
	}
	for _, f := range s.Faces {
		pts := s.FacePoints(f.ID)
		if len(pts) < 3 {
			continue
		}
		n := geom.NormalizeOrZ(pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0])))
		if d := n.Dot(f.Normal(pts[0])); d < 1-1e-6 {
			t.Errorf("face %v winding normal %v disagrees with surface normal %v", f.ID, n, f.Normal(pts[0]))
		}
	}
}

func TestExtrude(t *testing.T) {
	tests := []struct {
		name     string
		plane    sketch.Plane
		distance float64
		min, max geom.Point3
	}{
		{"xy up", sketch.PlaneXY, 2, geom.Point3{}, geom.Point3{X: 10, Y: 5, Z: 2}},
		{"xy down", sketch.PlaneXY, -2, geom.Point3{Z: -2}, geom.Point3{X: 10, Y: 5}},
		{"xz", sketch.PlaneXZ, 2, geom.Point3{}, geom.Point3{X: 10, Y: 2, Z: 5}},
		{"yz", sketch.PlaneYZ, 2, geom.Point3{}, geom.Point3{X: 2, Y: 10, Z: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := sketch.New(tt.plane)
			rectangle(sk, 0, 0, 10, 5)

			s, err := New().Extrude(sk, tt.distance)
			if err != nil {
				t.Fatalf("Extrude: %v", err)
			}
			if len(s.Faces) != 6 || len(s.Shells) != 1 {
				t.Errorf("faces = %d, shells = %d, want 6 and 1", len(s.Faces), len(s.Shells))
			}
			if v := inspect.Volume(s); math.Abs(v-100) > 1e-9 {
				t.Errorf("Volume = %v, want 100", v)
			}
			b := s.BoundingBox()
			if !geom.ApproxEqual(b.Min, tt.min) || !geom.ApproxEqual(b.Max, tt.max) {
				t.Errorf("bounds = %v, want %v..%v", b, tt.min, tt.max)
			}
			checkClosed(t, s)
		})
	}
}

func TestExtrudeCircleAndRectangle(t *testing.T) {
	sk := sketch.New(sketch.PlaneXY)
	rectangle(sk, 0, 0, 4, 4)
	sk.AddCircle(sk.AddPoint(geom.Point2{X: 20}), 1)

	s, err := (&Sweeper{Segments: 12}).Extrude(sk, 3)
	if err != nil {
		t.Fatalf("Extrude: %v", err)
	}
	if len(s.Shells) != 2 {
		t.Fatalf("shells = %d, want one per profile", len(s.Shells))
	}
	polygon := 0.5 * 12 * math.Sin(2*math.Pi/12)
	if v, want := inspect.Volume(s), 3*(16+polygon); math.Abs(v-want) > 1e-9 {
		t.Errorf("Volume = %v, want %v", v, want)
	}
	checkClosed(t, s)
}

func TestExtrudeErrors(t *testing.T) {
	open := sketch.New(sketch.PlaneXY)
	a, b, c := open.AddPoint(geom.Point2{}), open.AddPoint(geom.Point2{X: 1}), open.AddPoint(geom.Point2{X: 1, Y: 1})
	open.AddLine(a, b)
	open.AddLine(b, c)

	closed := sketch.New(sketch.PlaneXY)
	rectangle(closed, 0, 0, 1, 1)

	tests := []struct {
		name     string
		sk       *sketch.Sketch
		distance float64
		want     error
	}{
		{"open chain", open, 1, ErrNoProfile},
		{"empty sketch", sketch.New(sketch.PlaneXY), 1, ErrNoProfile},
		{"zero distance", closed, 0, geom.ErrDegenerate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Extrude(tt.sk, tt.distance)
			if !errors.Is(err, tt.want) {
				t.Errorf("Extrude error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRevolve(t *testing.T) {
	// A 1x1 square from x=2 to x=3 spun about Y sweeps a faceted annulus.
	yAxis := geom.Line{Direction: geom.YAxis}
	annulus := func(n int) float64 {
		return float64(n) / 2 * math.Sin(2*math.Pi/float64(n)) * (9 - 4)
	}

	tests := []struct {
		name   string
		angle  float64
		faces  int
		volume float64
	}{
		{"full turn", 2 * math.Pi, 32 * 4, annulus(32)},
		{"quarter turn", math.Pi / 2, 8*4 + 2, annulus(32) / 4},
		{"negative quarter turn", -math.Pi / 2, 8*4 + 2, annulus(32) / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := sketch.New(sketch.PlaneXY)
			rectangle(sk, 2, 0, 3, 1)

			s, err := New().Revolve(sk, yAxis, tt.angle)
			if err != nil {
				t.Fatalf("Revolve: %v", err)
			}
			if len(s.Faces) != tt.faces {
				t.Errorf("faces = %d, want %d", len(s.Faces), tt.faces)
			}
			if v := inspect.Volume(s); math.Abs(v-tt.volume) > 1e-6 {
				t.Errorf("Volume = %v, want %v", v, tt.volume)
			}
			checkClosed(t, s)
		})
	}
}

func TestRevolveErrors(t *testing.T) {
	touching := sketch.New(sketch.PlaneXY)
	rectangle(touching, 0, 0, 1, 1)
	apart := sketch.New(sketch.PlaneXY)
	rectangle(apart, 2, 0, 3, 1)

	tests := []struct {
		name  string
		sk    *sketch.Sketch
		axis  geom.Line
		angle float64
		want  error
	}{
		{"profile on axis", touching, geom.Line{Direction: geom.YAxis}, math.Pi, geom.ErrDegenerate},
		{"zero angle", apart, geom.Line{Direction: geom.YAxis}, 0, geom.ErrDegenerate},
		{"no axis direction", apart, geom.Line{}, math.Pi, geom.ErrDegenerate},
		{"no profile", sketch.New(sketch.PlaneXY), geom.Line{Direction: geom.YAxis}, math.Pi, ErrNoProfile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Revolve(tt.sk, tt.axis, tt.angle)
			if !errors.Is(err, tt.want) {
				t.Errorf("Revolve error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPattern(t *testing.T) {
	box := primitives.Box(2, 2, 2)
	s, err := New().Pattern(box, 3, geom.Vector3{X: 5})
	if err != nil {
		t.Fatalf("Pattern: %v", err)
	}
	if len(s.Vertices) != 24 || len(s.Faces) != 18 || len(s.Shells) != 3 {
		t.Errorf("counts = %d vertices, %d faces, %d shells", len(s.Vertices), len(s.Faces), len(s.Shells))
	}
	if v := inspect.Volume(s); math.Abs(v-24) > 1e-9 {
		t.Errorf("Volume = %v, want 24", v)
	}
	b := s.BoundingBox()
	if !geom.ApproxEqual(b.Min, geom.Point3{X: -1, Y: -1, Z: -1}) || !geom.ApproxEqual(b.Max, geom.Point3{X: 11, Y: 1, Z: 1}) {
		t.Errorf("bounds = %v", b)
	}
	if got := box.BoundingBox().Max; !geom.ApproxEqual(got, geom.Point3{X: 1, Y: 1, Z: 1}) {
		t.Errorf("source moved to %v", got)
	}
	checkClosed(t, s)

	if _, err := New().Pattern(box, 0, geom.Vector3{X: 1}); !errors.Is(err, geom.ErrDegenerate) {
		t.Errorf("count 0 error = %v, want ErrDegenerate", err)
	}
}

func TestProfilesJoinCoincidentPoints(t *testing.T) {
	sk := sketch.New(sketch.PlaneXY)
	rectangle(sk, 0, 0, 2, 1)
	if got := Profiles(sk, 8); len(got) != 1 || len(got[0]) != 4 {
		t.Errorf("Profiles = %v, want one 4-point ring", got)
	}
}
