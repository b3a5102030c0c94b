// Package topology is the boundary representation of a solid: vertices,
// edges, faces and shells stored in per-kind arenas and linked by dense
// integer handles.
//
// A handle is the index of its entity in the owning Solid's arena. Handles
// from one Solid mean nothing in another. Entities are never removed, so a
// handle stays valid for the life of its Solid.
package topology

import (
	"fmt"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
)

// VertexID identifies a vertex within its Solid.
type VertexID uint32

// EdgeID identifies an edge within its Solid.
type EdgeID uint32

// FaceID identifies a face within its Solid.
type FaceID uint32

// ShellID identifies a shell within its Solid.
type ShellID uint32

func (id VertexID) String() string { return fmt.Sprintf("v%d", uint32(id)) }
func (id EdgeID) String() string   { return fmt.Sprintf("e%d", uint32(id)) }
func (id FaceID) String() string   { return fmt.Sprintf("f%d", uint32(id)) }
func (id ShellID) String() string  { return fmt.Sprintf("s%d", uint32(id)) }

// Vertex is a point shared by the edges listed in Edges.
type Vertex struct {
	ID    VertexID
	Point geom.Point3
	// Edges is appended to by Solid.AddEdge and never pruned.
	Edges []EdgeID
}

// Coincident reports whether v and other sit at the same point within
// geom.Tolerance.
func (v *Vertex) Coincident(other *Vertex) bool {
	return geom.ApproxEqual(v.Point, other.Point)
}

// Edge is a curve bounded by two vertices. Faces lists the faces whose
// loops use the edge: two for a manifold interior edge, one on a boundary.
type Edge struct {
	ID    EdgeID
	Start VertexID
	End   VertexID
	Curve curve.Curve
	Faces []FaceID
}

// Other returns the endpoint opposite v.
func (e *Edge) Other(v VertexID) VertexID {
	if e.Start == v {
		return e.End
	}
	return e.Start
}

// LoopEdge is one step of a loop. Forward means the edge is walked from
// Start to End.
type LoopEdge struct {
	Edge    EdgeID
	Forward bool
}

// Loop is a closed, ordered chain of edges bounding a face.
type Loop struct {
	Edges []LoopEdge
}

// NewLoop builds a loop from the given steps.
func NewLoop(edges ...LoopEdge) Loop {
	return Loop{Edges: edges}
}

// Add appends an edge to the loop.
func (l *Loop) Add(e EdgeID, forward bool) {
	l.Edges = append(l.Edges, LoopEdge{Edge: e, Forward: forward})
}

// Len returns the number of edges in the loop.
func (l Loop) Len() int { return len(l.Edges) }

// IsEmpty reports whether the loop has no edges.
func (l Loop) IsEmpty() bool { return len(l.Edges) == 0 }

// Fwd is a forward loop step.
func Fwd(e EdgeID) LoopEdge { return LoopEdge{Edge: e, Forward: true} }

// Rev is a reversed loop step.
func Rev(e EdgeID) LoopEdge { return LoopEdge{Edge: e, Forward: false} }

// Orientation says whether a face's surface normal points out of the
// material or into it.
type Orientation int

const (
	Outward Orientation = iota
	Inward
)

func (o Orientation) String() string {
	switch o {
	case Outward:
		return "outward"
	case Inward:
		return "inward"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Face is a bounded region of a surface. InnerLoops are holes.
type Face struct {
	ID          FaceID
	Surface     curve.Surface
	OuterLoop   Loop
	InnerLoops  []Loop
	Orientation Orientation
	Shell       *ShellID
}

// Loops returns the outer loop followed by the inner loops.
func (f *Face) Loops() []Loop {
	loops := make([]Loop, 0, 1+len(f.InnerLoops))
	loops = append(loops, f.OuterLoop)
	return append(loops, f.InnerLoops...)
}

// AllEdges returns every edge referenced by any of the face's loops, in
// loop order. An edge used twice appears twice.
func (f *Face) AllEdges() []EdgeID {
	var ids []EdgeID
	for _, l := range f.Loops() {
		for _, le := range l.Edges {
			ids = append(ids, le.Edge)
		}
	}
	return ids
}

// Normal returns the face normal, flipped for inward faces.
func (f *Face) Normal(p geom.Point3) geom.Vector3 {
	n := curve.NormalAt(f.Surface, p)
	if f.Orientation == Inward {
		return n.MulScalar(-1)
	}
	return n
}

// Shell is a connected set of faces. IsClosed is set by the builder that
// assembled the shell; it is not derived.
type Shell struct {
	ID       ShellID
	Faces    []FaceID
	IsClosed bool
}
