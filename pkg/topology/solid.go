package topology

import (
	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
)

// Solid owns the vertex, edge, face and shell arenas of one body.
//
// A Solid is not safe for concurrent use. BoundingBox memoizes into the
// Solid, so even that read needs exclusive access.
type Solid struct {
	Vertices []*Vertex
	Edges    []*Edge
	Faces    []*Face
	Shells   []*Shell

	bounds *geom.BoundingBox3
}

// NewSolid returns an empty solid.
func NewSolid() *Solid {
	return &Solid{}
}

// AddVertex appends a vertex at p and invalidates the cached bounds.
func (s *Solid) AddVertex(p geom.Point3) VertexID {
	id := VertexID(len(s.Vertices))
	s.Vertices = append(s.Vertices, &Vertex{ID: id, Point: p})
	s.bounds = nil
	return id
}

// AddEdge appends a straight edge from start to end and records it on both
// endpoint vertices. Endpoints that do not exist are left for IsValid to
// report.
func (s *Solid) AddEdge(start, end VertexID) EdgeID {
	id := EdgeID(len(s.Edges))
	s.Edges = append(s.Edges, &Edge{ID: id, Start: start, End: end, Curve: curve.Linear{}})
	if v := s.Vertex(start); v != nil {
		v.Edges = append(v.Edges, id)
	}
	if v := s.Vertex(end); v != nil {
		v.Edges = append(v.Edges, id)
	}
	return id
}

// AddCurvedEdge is AddEdge followed by SetCurve.
func (s *Solid) AddCurvedEdge(start, end VertexID, c curve.Curve) EdgeID {
	id := s.AddEdge(start, end)
	s.SetCurve(id, c)
	return id
}

// SetCurve replaces the geometry of an edge. It reports false if the edge
// does not exist.
func (s *Solid) SetCurve(id EdgeID, c curve.Curve) bool {
	e := s.Edge(id)
	if e == nil {
		return false
	}
	e.Curve = c
	return true
}

// AddFace appends an outward face on surface with no loops.
func (s *Solid) AddFace(surface curve.Surface) FaceID {
	id := FaceID(len(s.Faces))
	s.Faces = append(s.Faces, &Face{ID: id, Surface: surface})
	return id
}

// AddShell appends an empty, open shell.
func (s *Solid) AddShell() ShellID {
	id := ShellID(len(s.Shells))
	s.Shells = append(s.Shells, &Shell{ID: id})
	return id
}

// Vertex returns the vertex with the given id, or nil.
func (s *Solid) Vertex(id VertexID) *Vertex {
	if int(id) >= len(s.Vertices) {
		return nil
	}
	return s.Vertices[id]
}

// Edge returns the edge with the given id, or nil.
func (s *Solid) Edge(id EdgeID) *Edge {
	if int(id) >= len(s.Edges) {
		return nil
	}
	return s.Edges[id]
}

// Face returns the face with the given id, or nil.
func (s *Solid) Face(id FaceID) *Face {
	if int(id) >= len(s.Faces) {
		return nil
	}
	return s.Faces[id]
}

// Shell returns the shell with the given id, or nil.
func (s *Solid) Shell(id ShellID) *Shell {
	if int(id) >= len(s.Shells) {
		return nil
	}
	return s.Shells[id]
}

// SetOuterLoop installs loop as the boundary of a face and adds the face
// to every edge the loop uses. It reports false if the face does not
// exist.
func (s *Solid) SetOuterLoop(id FaceID, loop Loop) bool {
	f := s.Face(id)
	if f == nil {
		return false
	}
	f.OuterLoop = loop
	s.linkLoop(id, loop)
	return true
}

// AddInnerLoop adds a hole to a face and links its edges like
// SetOuterLoop.
func (s *Solid) AddInnerLoop(id FaceID, loop Loop) bool {
	f := s.Face(id)
	if f == nil {
		return false
	}
	f.InnerLoops = append(f.InnerLoops, loop)
	s.linkLoop(id, loop)
	return true
}

func (s *Solid) linkLoop(id FaceID, loop Loop) {
	for _, le := range loop.Edges {
		e := s.Edge(le.Edge)
		if e == nil || containsFace(e.Faces, id) {
			continue
		}
		e.Faces = append(e.Faces, id)
	}
}

func containsFace(ids []FaceID, id FaceID) bool {
	for _, f := range ids {
		if f == id {
			return true
		}
	}
	return false
}

// SetOrientation flips a face to point inward or outward.
func (s *Solid) SetOrientation(id FaceID, o Orientation) bool {
	f := s.Face(id)
	if f == nil {
		return false
	}
	f.Orientation = o
	return true
}

// AddFaceToShell puts a face in a shell. A face belongs to at most one
// shell, so moving it out of a previous shell is the caller's concern; it
// reports false if either id is unknown or the face already has a shell.
func (s *Solid) AddFaceToShell(shell ShellID, face FaceID) bool {
	sh, f := s.Shell(shell), s.Face(face)
	if sh == nil || f == nil || f.Shell != nil {
		return false
	}
	sh.Faces = append(sh.Faces, face)
	f.Shell = &shell
	return true
}

// CloseShell marks a shell watertight.
func (s *Solid) CloseShell(id ShellID) bool {
	sh := s.Shell(id)
	if sh == nil {
		return false
	}
	sh.IsClosed = true
	return true
}

// BoundingBox returns the box around every vertex, computing and caching
// it on first use after a mutation. The pointer receiver is what lets a
// read store the cache.
func (s *Solid) BoundingBox() geom.BoundingBox3 {
	if s.bounds != nil {
		return *s.bounds
	}
	b := geom.EmptyBounds()
	for _, v := range s.Vertices {
		b = geom.Expand(b, v.Point)
	}
	s.bounds = &b
	return b
}

// InvalidateBounds drops the cached bounding box. Callers that move
// vertex points in place must call it.
func (s *Solid) InvalidateBounds() {
	s.bounds = nil
}

// IsValid reports whether every edge endpoint and every loop edge refers
// to an entity that exists. It stops at the first dangling reference; use
// Validate for a full report.
func (s *Solid) IsValid() bool {
	for _, e := range s.Edges {
		if s.Vertex(e.Start) == nil || s.Vertex(e.End) == nil {
			return false
		}
	}
	for _, f := range s.Faces {
		for _, l := range f.Loops() {
			for _, le := range l.Edges {
				if s.Edge(le.Edge) == nil {
					return false
				}
			}
		}
	}
	return true
}

// Segment returns the straight chord between an edge's endpoints.
func (s *Solid) Segment(id EdgeID) (geom.Segment, bool) {
	e := s.Edge(id)
	if e == nil {
		return geom.Segment{}, false
	}
	a, b := s.Vertex(e.Start), s.Vertex(e.End)
	if a == nil || b == nil {
		return geom.Segment{}, false
	}
	return geom.Segment{Start: a.Point, End: b.Point}, true
}

// EdgePoint evaluates an edge's curve at t in [0,1].
func (s *Solid) EdgePoint(id EdgeID, t float64) (geom.Point3, bool) {
	seg, ok := s.Segment(id)
	if !ok {
		return geom.Point3{}, false
	}
	return curve.PointAt(s.Edges[id].Curve, seg.Start, seg.End, t), true
}

// EdgeLength approximates the length of an edge's curve. samples is used
// for curves without a closed form.
func (s *Solid) EdgeLength(id EdgeID, samples int) float64 {
	seg, ok := s.Segment(id)
	if !ok {
		return 0
	}
	return curve.Length(s.Edges[id].Curve, seg.Start, seg.End, samples)
}

// LoopVertices returns the vertex each loop step starts from: Start for a
// forward edge, End for a reversed one. Steps whose edge is missing are
// skipped.
func (s *Solid) LoopVertices(l Loop) []VertexID {
	ids := make([]VertexID, 0, len(l.Edges))
	for _, le := range l.Edges {
		e := s.Edge(le.Edge)
		if e == nil {
			continue
		}
		if le.Forward {
			ids = append(ids, e.Start)
		} else {
			ids = append(ids, e.End)
		}
	}
	return ids
}

// LoopPoints is LoopVertices resolved to positions. Missing vertices are
// skipped.
func (s *Solid) LoopPoints(l Loop) []geom.Point3 {
	ids := s.LoopVertices(l)
	pts := make([]geom.Point3, 0, len(ids))
	for _, id := range ids {
		if v := s.Vertex(id); v != nil {
			pts = append(pts, v.Point)
		}
	}
	return pts
}

// FacePoints returns the outer loop polygon of a face.
func (s *Solid) FacePoints(id FaceID) []geom.Point3 {
	f := s.Face(id)
	if f == nil {
		return nil
	}
	return s.LoopPoints(f.OuterLoop)
}
