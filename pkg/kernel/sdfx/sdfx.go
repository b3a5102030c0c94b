// Package sdfx backs kernel collaborators with the github.com/deadsy/sdfx
// CAD library: STL export of B-Rep solids, and an approximate boolean
// kernel that evaluates convex solids as signed distance fields, combines
// them with sdfx CSG and meshes the result back into a faceted solid.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/chazu/brep/pkg/topology"
)

// Compile-time interface checks.
var (
	_ kernel.Exporter = (*STLExporter)(nil)
	_ kernel.Boolean  = (*Kernel)(nil)
	_ sdf.SDF3        = (*convexSDF)(nil)
)

// ErrEmptySolid is returned when there is nothing to export.
var ErrEmptySolid = errors.New("solid has no triangles")

// STLExporter writes solids as binary STL files.
type STLExporter struct {
	Mesher kernel.Mesher
}

// NewSTLExporter returns an exporter that meshes with the default
// tessellator.
func NewSTLExporter() *STLExporter {
	return &STLExporter{Mesher: tessellate.New()}
}

// Export meshes s and writes it to path.
func (e *STLExporter) Export(path string, s *topology.Solid) error {
	mesher := e.Mesher
	if mesher == nil {
		mesher = tessellate.New()
	}
	m, err := mesher.ToMesh(s)
	if err != nil {
		return fmt.Errorf("sdfx: mesh for %s: %w", path, err)
	}
	tris := Triangles(m)
	if len(tris) == 0 {
		return fmt.Errorf("sdfx: export %s: %w", path, ErrEmptySolid)
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return fmt.Errorf("sdfx: export %s: %w", path, err)
	}
	return nil
}

// Triangles converts a kernel mesh to sdfx triangles.
func Triangles(m *kernel.Mesh) []*sdf.Triangle3 {
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		tris = append(tris, &sdf.Triangle3{a, b, c})
	}
	return tris
}

// convexSDF evaluates a convex polyhedron as the largest signed distance to
// any of its face planes. The value is exact inside and a lower bound
// outside, which is all marching cubes needs.
type convexSDF struct {
	planes []geom.Plane
	bb     sdf.Box3
}

// Evaluate returns the signed distance bound at p.
func (c *convexSDF) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, pl := range c.planes {
		d = math.Max(d, pl.SignedDistance(p))
	}
	return d
}

// BoundingBox returns the axis-aligned bounding box.
func (c *convexSDF) BoundingBox() sdf.Box3 {
	return c.bb
}

// ToSDF converts a closed convex solid to an sdfx SDF3. Faces contribute
// the plane of their outer loop polygon, oriented by its winding.
func ToSDF(s *topology.Solid) (sdf.SDF3, error) {
	var planes []geom.Plane
	for _, f := range s.Faces {
		pts := s.FacePoints(f.ID)
		if len(pts) < 3 {
			continue
		}
		pl, err := geom.PlaneFromPointNormal(pts[0], tessellate.PolygonNormal(pts))
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", f.ID, err)
		}
		planes = append(planes, pl)
	}
	if len(planes) < 4 {
		return nil, fmt.Errorf("solid has %d usable faces, need 4", len(planes))
	}

	for _, v := range s.Vertices {
		for i, pl := range planes {
			if pl.SignedDistance(v.Point) > geom.Tolerance {
				return nil, fmt.Errorf("vertex %s lies outside face plane %d: solid is not convex", v.ID, i)
			}
		}
	}

	// Pad the box so the surface never sits on the sampling boundary.
	bb := s.BoundingBox()
	pad := geom.BoundsSize(bb).MulScalar(0.01).Add(v3.Vec{X: geom.Tolerance, Y: geom.Tolerance, Z: geom.Tolerance})
	bb = sdf.Box3{Min: bb.Min.Sub(pad), Max: bb.Max.Add(pad)}
	return &convexSDF{planes: planes, bb: bb}, nil
}

// DefaultMeshCells controls marching cubes resolution along the longest
// side of the result's bounding box.
const DefaultMeshCells = 64

// Kernel implements kernel.Boolean through sdfx CSG. Operands must be
// closed convex solids; results are faceted approximations whose accuracy
// is set by MeshCells.
type Kernel struct {
	MeshCells int
}

// New returns a Kernel with default resolution.
func New() *Kernel {
	return &Kernel{MeshCells: DefaultMeshCells}
}

// Union returns a ∪ b.
func (k *Kernel) Union(a, b *topology.Solid) (*topology.Solid, error) {
	return k.combine(kernel.OpUnion, a, b)
}

// Difference returns a - b.
func (k *Kernel) Difference(a, b *topology.Solid) (*topology.Solid, error) {
	return k.combine(kernel.OpDifference, a, b)
}

// Intersection returns a ∩ b.
func (k *Kernel) Intersection(a, b *topology.Solid) (*topology.Solid, error) {
	return k.combine(kernel.OpIntersection, a, b)
}

func (k *Kernel) combine(op kernel.BooleanOp, a, b *topology.Solid) (*topology.Solid, error) {
	sa, err := ToSDF(a)
	if err != nil {
		return nil, &kernel.BooleanError{Op: op, Reason: "first operand", Err: err}
	}
	sb, err := ToSDF(b)
	if err != nil {
		return nil, &kernel.BooleanError{Op: op, Reason: "second operand", Err: err}
	}
	if op == kernel.OpIntersection && !geom.BoundsIntersect(a.BoundingBox(), b.BoundingBox()) {
		return nil, &kernel.BooleanError{Op: op, Reason: "result is empty"}
	}

	var s sdf.SDF3
	switch op {
	case kernel.OpUnion:
		s = sdf.Union3D(sa, sb)
	case kernel.OpDifference:
		s = sdf.Difference3D(sa, sb)
	case kernel.OpIntersection:
		s = sdf.Intersect3D(sa, sb)
	default:
		geom.Invariant("unknown boolean op %v", op)
	}

	cells := k.MeshCells
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	tris := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	out := FromTriangles(tris)
	if len(out.Faces) == 0 {
		return nil, &kernel.BooleanError{Op: op, Reason: "result is empty"}
	}
	return out, nil
}

// FromTriangles builds a faceted solid with one planar face per triangle.
// Vertices closer than geom.Tolerance are merged, edges are shared between
// neighbouring faces, and triangles that collapse after merging are
// dropped. The faces form a single closed shell.
func FromTriangles(tris []*sdf.Triangle3) *topology.Solid {
	s := topology.NewSolid()
	type key [3]int64
	quant := func(p v3.Vec) key {
		return key{
			int64(math.Round(p.X / geom.Tolerance)),
			int64(math.Round(p.Y / geom.Tolerance)),
			int64(math.Round(p.Z / geom.Tolerance)),
		}
	}
	verts := make(map[key]topology.VertexID)
	vertex := func(p v3.Vec) topology.VertexID {
		k := quant(p)
		if id, ok := verts[k]; ok {
			return id
		}
		id := s.AddVertex(p)
		verts[k] = id
		return id
	}
	edges := make(map[[2]topology.VertexID]topology.EdgeID)
	step := func(a, b topology.VertexID) topology.LoopEdge {
		if id, ok := edges[[2]topology.VertexID{a, b}]; ok {
			return topology.Fwd(id)
		}
		if id, ok := edges[[2]topology.VertexID{b, a}]; ok {
			return topology.Rev(id)
		}
		id := s.AddEdge(a, b)
		edges[[2]topology.VertexID{a, b}] = id
		return topology.Fwd(id)
	}

	shell := s.AddShell()
	for _, t := range tris {
		a, b, c := vertex(t[0]), vertex(t[1]), vertex(t[2])
		if a == b || b == c || c == a {
			continue
		}
		n, ok := geom.Normalize(t[1].Sub(t[0]).Cross(t[2].Sub(t[0])))
		if !ok {
			continue
		}
		f := s.AddFace(curve.Planar{Normal: n})
		s.SetOuterLoop(f, topology.NewLoop(step(a, b), step(b, c), step(c, a)))
		s.AddFaceToShell(shell, f)
	}
	s.CloseShell(shell)
	return s
}
