package topology

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
)

// triangle builds a single planar face over three vertices.
func triangle() (*Solid, FaceID) {
	s := NewSolid()
	v0 := s.AddVertex(geom.Point3{})
	v1 := s.AddVertex(geom.Point3{X: 1})
	v2 := s.AddVertex(geom.Point3{Y: 1})
	e0 := s.AddEdge(v0, v1)
	e1 := s.AddEdge(v1, v2)
	e2 := s.AddEdge(v2, v0)
	f := s.AddFace(curve.Planar{Normal: geom.ZAxis})
	s.SetOuterLoop(f, NewLoop(Fwd(e0), Fwd(e1), Fwd(e2)))
	return s, f
}

// tetrahedron builds a closed four-face solid with outward winding.
func tetrahedron() *Solid {
	s := NewSolid()
	a := s.AddVertex(geom.Point3{})
	b := s.AddVertex(geom.Point3{X: 1})
	c := s.AddVertex(geom.Point3{Y: 1})
	d := s.AddVertex(geom.Point3{Z: 1})

	ab := s.AddEdge(a, b)
	bc := s.AddEdge(b, c)
	ca := s.AddEdge(c, a)
	ad := s.AddEdge(a, d)
	bd := s.AddEdge(b, d)
	cd := s.AddEdge(c, d)

	shell := s.AddShell()
	faces := []Loop{
		NewLoop(Rev(ca), Rev(bc), Rev(ab)),  // a c b, bottom
		NewLoop(Fwd(ab), Fwd(bd), Rev(ad)),  // a b d
		NewLoop(Fwd(bc), Fwd(cd), Rev(bd)),  // b c d
		NewLoop(Fwd(ca), Fwd(ad), Rev(cd)),  // c a d
	}
	for _, l := range faces {
		f := s.AddFace(curve.Planar{Normal: geom.ZAxis})
		s.SetOuterLoop(f, l)
		s.AddFaceToShell(shell, f)
	}
	s.CloseShell(shell)
	return s
}

func TestAddVertexAssignsDenseIDs(t *testing.T) {
	s := NewSolid()
	for i := 0; i < 5; i++ {
		if id := s.AddVertex(geom.Point3{X: float64(i)}); id != VertexID(i) {
			t.Fatalf("AddVertex #%d returned %v", i, id)
		}
	}
	if got := s.Vertex(3).Point.X; got != 3 {
		t.Errorf("Vertex(3).Point.X = %v, want 3", got)
	}
	if s.Vertex(5) != nil {
		t.Error("Vertex(5) should be nil")
	}
}

func TestAddEdgeBackReferences(t *testing.T) {
	s := NewSolid()
	a := s.AddVertex(geom.Point3{})
	b := s.AddVertex(geom.Point3{X: 1})
	e := s.AddEdge(a, b)

	if _, ok := s.Edge(e).Curve.(curve.Linear); !ok {
		t.Errorf("default curve = %T, want curve.Linear", s.Edge(e).Curve)
	}
	if diff := cmp.Diff([]EdgeID{e}, s.Vertex(a).Edges); diff != "" {
		t.Errorf("start vertex edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EdgeID{e}, s.Vertex(b).Edges); diff != "" {
		t.Errorf("end vertex edges mismatch (-want +got):\n%s", diff)
	}

	// An edge to a missing vertex is recorded but leaves the solid invalid.
	s.AddEdge(a, 99)
	if s.IsValid() {
		t.Error("edge to missing vertex should make solid invalid")
	}
}

func TestTriangleIsValid(t *testing.T) {
	s, f := triangle()
	if !s.IsValid() {
		t.Fatal("triangle should be valid")
	}
	if got := len(s.Face(f).OuterLoop.Edges); got != 3 {
		t.Errorf("outer loop has %d edges, want 3", got)
	}
	for _, e := range s.Edges {
		if diff := cmp.Diff([]FaceID{f}, e.Faces); diff != "" {
			t.Errorf("edge %v faces mismatch (-want +got):\n%s", e.ID, diff)
		}
	}
}

func TestBrokenLoopReferenceIsInvalid(t *testing.T) {
	s, f := triangle()
	s.Face(f).OuterLoop.Add(EdgeID(42), true)
	if s.IsValid() {
		t.Error("loop referencing edge 42 should be invalid")
	}

	s2, f2 := triangle()
	s2.AddInnerLoop(f2, NewLoop(Fwd(7)))
	if s2.IsValid() {
		t.Error("inner loop referencing missing edge should be invalid")
	}
}

func TestBoundingBoxCache(t *testing.T) {
	s := NewSolid()
	s.AddVertex(geom.Point3{X: -1, Y: 2})
	s.AddVertex(geom.Point3{X: 3, Z: 5})

	b := s.BoundingBox()
	want := geom.BoundingBox3{Min: geom.Point3{X: -1}, Max: geom.Point3{X: 3, Y: 2, Z: 5}}
	if b != want {
		t.Fatalf("BoundingBox = %v, want %v", b, want)
	}

	// Moving a point in place is not seen until the cache is dropped.
	s.Vertex(0).Point = geom.Point3{X: -10}
	if got := s.BoundingBox(); got != want {
		t.Errorf("cached BoundingBox = %v, want %v", got, want)
	}
	s.InvalidateBounds()
	if got := s.BoundingBox().Min.X; got != -10 {
		t.Errorf("after invalidate Min.X = %v, want -10", got)
	}

	// AddVertex invalidates.
	s.AddVertex(geom.Point3{Z: 100})
	if got := s.BoundingBox().Max.Z; got != 100 {
		t.Errorf("after AddVertex Max.Z = %v, want 100", got)
	}
}

func TestEmptySolidBoundingBox(t *testing.T) {
	if b := NewSolid().BoundingBox(); !geom.IsEmptyBounds(b) {
		t.Errorf("empty solid bounds = %v, want empty", b)
	}
}

func TestLoopVerticesFollowDirection(t *testing.T) {
	s := tetrahedron()
	got := s.LoopVertices(s.Face(0).OuterLoop)
	// a c b
	want := []VertexID{0, 2, 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("LoopVertices mismatch (-want +got):\n%s", diff)
	}
}

func TestShellMembership(t *testing.T) {
	s := tetrahedron()
	sh := s.Shell(0)
	if !sh.IsClosed {
		t.Error("shell should be closed")
	}
	if len(sh.Faces) != 4 {
		t.Errorf("shell has %d faces, want 4", len(sh.Faces))
	}
	for _, f := range s.Faces {
		if f.Shell == nil || *f.Shell != 0 {
			t.Errorf("face %v shell = %v", f.ID, f.Shell)
		}
	}
	if s.AddFaceToShell(0, 0) {
		t.Error("adding a face that already has a shell should fail")
	}
	for _, e := range s.Edges {
		if len(e.Faces) != 2 {
			t.Errorf("edge %v has %d faces, want 2", e.ID, len(e.Faces))
		}
	}
}

func TestEdgePointAndLength(t *testing.T) {
	s := NewSolid()
	a := s.AddVertex(geom.Point3{X: 1})
	b := s.AddVertex(geom.Point3{X: -1})
	e := s.AddCurvedEdge(a, b, curve.Arc{Radius: 1, Normal: geom.ZAxis, EndAngle: math.Pi})

	p, ok := s.EdgePoint(e, 0.5)
	if !ok || !geom.ApproxEqual(p, geom.Point3{Y: 1}) {
		t.Errorf("EdgePoint(0.5) = %v, %v", p, ok)
	}
	if l := s.EdgeLength(e, 0); math.Abs(l-math.Pi) > geom.Tolerance {
		t.Errorf("EdgeLength = %v, want π", l)
	}
	if _, ok := s.EdgePoint(EdgeID(9), 0); ok {
		t.Error("EdgePoint on missing edge should fail")
	}
	if s.SetCurve(EdgeID(9), curve.Linear{}) {
		t.Error("SetCurve on missing edge should fail")
	}
}

func TestVertexCoincident(t *testing.T) {
	a := &Vertex{Point: geom.Point3{X: 1}}
	b := &Vertex{Point: geom.Point3{X: 1 + 1e-8}}
	c := &Vertex{Point: geom.Point3{X: 1.1}}
	if !a.Coincident(b) {
		t.Error("points within tolerance should be coincident")
	}
	if a.Coincident(c) {
		t.Error("distant points should not be coincident")
	}
}

func TestFaceNormalOrientation(t *testing.T) {
	f := &Face{Surface: curve.Planar{Normal: geom.ZAxis}}
	if got := f.Normal(geom.Point3{}); !geom.ApproxEqual(got, geom.ZAxis) {
		t.Errorf("outward normal = %v", got)
	}
	f.Orientation = Inward
	if got := f.Normal(geom.Point3{}); !geom.ApproxEqual(got, geom.Vector3{Z: -1}) {
		t.Errorf("inward normal = %v", got)
	}
}

func TestBuilderTransforms(t *testing.T) {
	s := tetrahedron()
	s.BoundingBox()
	NewBuilder(s).Scale(2).Translate(1, 0, 0).Build()

	b := s.BoundingBox()
	want := geom.BoundingBox3{Min: geom.Point3{X: 1}, Max: geom.Point3{X: 3, Y: 2, Z: 2}}
	if !geom.ApproxEqual(b.Min, want.Min) || !geom.ApproxEqual(b.Max, want.Max) {
		t.Errorf("bounds after build = %v, want %v", b, want)
	}

	NewBuilder(s).RotateZ(math.Pi).Build()
	if got := s.Vertex(1).Point; !geom.ApproxEqual(got, geom.Point3{X: -3}) {
		t.Errorf("vertex 1 after rotate = %v, want (-3,0,0)", got)
	}
}

func TestBuilderNonUniformScaleKeepsNormalsPerpendicular(t *testing.T) {
	s := NewSolid()
	a := s.AddVertex(geom.Point3{X: 1})
	b := s.AddVertex(geom.Point3{Y: 1})
	c := s.AddVertex(geom.Point3{Z: 1})
	ab, bc, ca := s.AddEdge(a, b), s.AddEdge(b, c), s.AddEdge(c, a)
	n := geom.NormalizeOrZ(geom.Vector3{X: 1, Y: 1, Z: 1})
	f := s.AddFace(curve.Planar{Normal: n})
	s.SetOuterLoop(f, NewLoop(Fwd(ab), Fwd(bc), Fwd(ca)))
	arc := s.AddCurvedEdge(a, a, curve.Arc{Radius: 1, Normal: n, EndAngle: 2 * math.Pi})

	NewBuilder(s).ScaleXYZ(1, 4, 1).Build()

	pts := s.FacePoints(f)
	got := s.Face(f).Surface.(curve.Planar).Normal
	for i := range pts {
		edge := pts[(i+1)%len(pts)].Sub(pts[i])
		if d := got.Dot(geom.NormalizeOrZ(edge)); math.Abs(d) > 1e-9 {
			t.Errorf("face normal %v not perpendicular to edge %v (dot %v)", got, edge, d)
		}
	}
	if l := got.Length(); math.Abs(l-1) > 1e-9 {
		t.Errorf("face normal length = %v, want 1", l)
	}
	if an := s.Edge(arc).Curve.(curve.Arc).Normal; !geom.ApproxEqual(an, got) {
		t.Errorf("arc normal = %v, want %v", an, got)
	}
}
