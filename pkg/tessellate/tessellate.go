// Package tessellate turns B-Rep solids into triangle meshes. Faces are
// fan-triangulated from their outer loop, which is exact for the convex
// planar faces the primitives produce. Every triangle remembers the face it
// came from so meshes can be picked back into topology.
package tessellate

import (
	"fmt"
	"math"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/topology"
)

// DefaultCurveSamples is how many chords a curved edge is split into.
const DefaultCurveSamples = 8

// Compile-time interface check.
var _ kernel.Mesher = (*Tessellator)(nil)

// Tessellator implements kernel.Mesher.
type Tessellator struct {
	// CurveSamples is the number of chords per curved edge. Straight edges
	// always contribute only their start point.
	CurveSamples int
}

// New returns a Tessellator with default settings.
func New() *Tessellator {
	return &Tessellator{CurveSamples: DefaultCurveSamples}
}

// Part is a named solid.
type Part struct {
	Name  string
	Solid *topology.Solid
}

// Tessellate produces one mesh per part. The solids are never mutated.
func Tessellate(parts []Part, t *Tessellator) ([]*kernel.Mesh, error) {
	if t == nil {
		t = New()
	}
	meshes := make([]*kernel.Mesh, 0, len(parts))
	for i, p := range parts {
		if p.Solid == nil {
			return nil, fmt.Errorf("tessellate: part %d (%q) has no solid", i, p.Name)
		}
		m, err := t.ToMesh(p.Solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %q: %w", p.Name, err)
		}
		if p.Name != "" {
			m.Name = p.Name
		} else {
			m.Name = fmt.Sprintf("part%d", i)
		}
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// ToMesh triangulates every face of s. Faces with fewer than three
// distinct points are skipped; faces whose loops name missing edges or
// vertices are an error.
func (t *Tessellator) ToMesh(s *topology.Solid) (*kernel.Mesh, error) {
	m := &kernel.Mesh{}
	for _, f := range s.Faces {
		pts, err := t.facePolygon(s, f)
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", f.ID, err)
		}
		if len(pts) < 3 {
			continue
		}
		n := PolygonNormal(pts)
		for i := 1; i+1 < len(pts); i++ {
			m.AddTriangle(pts[0], pts[i], pts[i+1], n, f.ID)
		}
	}
	return m, nil
}

// facePolygon walks the outer loop, inserting samples along curved edges.
func (t *Tessellator) facePolygon(s *topology.Solid, f *topology.Face) ([]geom.Point3, error) {
	samples := t.CurveSamples
	if samples < 1 {
		samples = 1
	}
	pts := make([]geom.Point3, 0, f.OuterLoop.Len())
	for _, le := range f.OuterLoop.Edges {
		e := s.Edge(le.Edge)
		if e == nil {
			return nil, fmt.Errorf("missing edge %s", le.Edge)
		}
		seg, ok := s.Segment(le.Edge)
		if !ok {
			return nil, fmt.Errorf("edge %s has a missing vertex", le.Edge)
		}
		if _, straight := e.Curve.(curve.Linear); straight || e.Curve == nil {
			if le.Forward {
				pts = append(pts, seg.Start)
			} else {
				pts = append(pts, seg.End)
			}
			continue
		}
		for i := 0; i < samples; i++ {
			u := float64(i) / float64(samples)
			if !le.Forward {
				u = 1 - u
			}
			pts = append(pts, curve.PointAt(e.Curve, seg.Start, seg.End, u))
		}
	}
	return pts, nil
}

// PolygonNormal returns the unit normal of a polygon by Newell's method,
// or +Z when the polygon has no area.
func PolygonNormal(pts []geom.Point3) geom.Vector3 {
	var n geom.Vector3
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		n.X += (p.Y - q.Y) * (p.Z + q.Z)
		n.Y += (p.Z - q.Z) * (p.X + q.X)
		n.Z += (p.X - q.X) * (p.Y + q.Y)
	}
	l := n.Length()
	if l <= 1e-8 {
		return geom.ZAxis
	}
	return n.MulScalar(1 / l)
}

// EdgeSegments returns a wireframe of s: one chord per edge, in edge order.
// Edges with missing vertices are left out.
func EdgeSegments(s *topology.Solid) []geom.Segment {
	segs := make([]geom.Segment, 0, len(s.Edges))
	for _, e := range s.Edges {
		if seg, ok := s.Segment(e.ID); ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

// Hit is the result of a successful pick.
type Hit struct {
	Face     topology.FaceID
	Triangle int
	Distance float64
	Point    geom.Point3
}

// PickFace casts r against m and returns the nearest triangle hit along
// the ray, reported as the face that produced it.
func PickFace(m *kernel.Mesh, r geom.Ray) (Hit, bool) {
	best := Hit{Distance: math.Inf(1)}
	found := false
	for i := 0; i < m.TriangleCount(); i++ {
		a, b, c := m.Triangle(i)
		d, ok := r.IntersectTriangle(a, b, c)
		if !ok || d >= best.Distance {
			continue
		}
		best = Hit{Triangle: i, Distance: d, Point: r.PointAt(d)}
		if i < len(m.Faces) {
			best.Face = m.Faces[i]
		}
		found = true
	}
	return best, found
}
