// Package sweep turns sketch profiles into faceted solids and repeats
// solids along an offset.
//
// A profile is a closed chain of sketch lines, or a circle faceted into a
// regular polygon. Arcs do not take part in profiles, and nested profiles
// become separate shells rather than holes.
package sweep

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/inspect"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/primitives"
	"github.com/chazu/brep/pkg/sketch"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/chazu/brep/pkg/topology"
)

var _ kernel.Sweeper = (*Sweeper)(nil)

// DefaultSegments is the facet count for circles and full revolutions.
const DefaultSegments = 32

// ErrNoProfile is returned when a sketch has no closed profile to sweep.
var ErrNoProfile = errors.New("sketch has no closed profile")

// Sweeper implements kernel.Sweeper with planar-faceted solids.
type Sweeper struct {
	// Segments facets circles and a full revolution. Values below
	// primitives.MinSegments mean DefaultSegments.
	Segments int
}

// New returns a Sweeper with DefaultSegments.
func New() *Sweeper {
	return &Sweeper{Segments: DefaultSegments}
}

func (w *Sweeper) segments() int {
	if w.Segments < primitives.MinSegments {
		return DefaultSegments
	}
	return w.Segments
}

// Extrude sweeps every closed profile of sk by distance along the sketch
// normal. A negative distance extrudes the other way. Each profile becomes
// its own closed shell.
func (w *Sweeper) Extrude(sk *sketch.Sketch, distance float64) (*topology.Solid, error) {
	if geom.NearZero(distance) {
		return nil, fmt.Errorf("extrude: %w", geom.Degenerate("distance %g", distance))
	}
	rings := Profiles(sk, w.segments())
	if len(rings) == 0 {
		return nil, fmt.Errorf("extrude: %w", ErrNoProfile)
	}

	offset := sk.Normal().MulScalar(distance)
	s := topology.NewSolid()
	for _, ring := range rings {
		if tessellate.PolygonNormal(ring).Dot(offset) < 0 {
			reversePoints(ring)
		}
		primitives.AddPrism(s, ring, offset)
	}
	return s, nil
}

// Revolve spins every closed profile of sk about axis by angle radians.
// An angle of a full turn or more closes the solid on itself; anything
// less is capped by the profile at both ends. Profiles touching the axis
// are rejected.
func (w *Sweeper) Revolve(sk *sketch.Sketch, axis geom.Line, angle float64) (*topology.Solid, error) {
	if geom.NearZero(angle) {
		return nil, fmt.Errorf("revolve: %w", geom.Degenerate("angle %g", angle))
	}
	if _, ok := geom.Normalize(axis.Direction); !ok {
		return nil, fmt.Errorf("revolve: %w", geom.Degenerate("axis has no direction"))
	}
	rings := Profiles(sk, w.segments())
	if len(rings) == 0 {
		return nil, fmt.Errorf("revolve: %w", ErrNoProfile)
	}
	axis.Direction = geom.NormalizeOrZ(axis.Direction)
	for _, ring := range rings {
		for _, p := range ring {
			if geom.Distance(p, axis.ClosestPoint(p)) < geom.Tolerance {
				return nil, fmt.Errorf("revolve: %w", geom.Degenerate("profile point %v lies on the axis", p))
			}
		}
	}

	full := math.Abs(angle) >= 2*math.Pi-geom.Tolerance
	if full {
		angle = 2 * math.Pi
	}
	steps := max(primitives.MinSegments, int(math.Ceil(float64(w.segments())*math.Abs(angle)/(2*math.Pi))))

	s := topology.NewSolid()
	for _, ring := range rings {
		part := revolveRing(ring, axis, angle, steps, full)
		appendCopy(s, part, geom.Identity())
	}
	return s, nil
}

// revolveRing builds one closed shell and orients it outward.
func revolveRing(ring []geom.Point3, axis geom.Line, angle float64, steps int, full bool) *topology.Solid {
	s := topology.NewSolid()
	rings := steps + 1
	if full {
		rings = steps
	}

	verts := make([][]topology.VertexID, rings)
	profile := make([][]topology.EdgeID, rings)
	for k := range rings {
		xf := geom.RotationAbout(axis, angle*float64(k)/float64(steps))
		verts[k] = make([]topology.VertexID, len(ring))
		for j, p := range ring {
			verts[k][j] = s.AddVertex(xf.Point(p))
		}
		profile[k] = closeRing(s, verts[k])
	}

	shell := s.AddShell()
	addFace := func(l topology.Loop) {
		f := s.AddFace(nil)
		s.SetOuterLoop(f, l)
		s.AddFaceToShell(shell, f)
	}
	for k := range steps {
		kn := (k + 1) % rings
		around := make([]topology.EdgeID, len(ring))
		for j := range ring {
			around[j] = s.AddEdge(verts[k][j], verts[kn][j])
		}
		for j := range ring {
			jn := (j + 1) % len(ring)
			addFace(topology.NewLoop(
				topology.Fwd(profile[k][j]),
				topology.Fwd(around[jn]),
				topology.Rev(profile[kn][j]),
				topology.Rev(around[j]),
			))
		}
	}
	if !full {
		var start, end topology.Loop
		for j := len(ring) - 1; j >= 0; j-- {
			start.Add(profile[0][j], false)
		}
		for _, e := range profile[steps] {
			end.Add(e, true)
		}
		addFace(start)
		addFace(end)
	}
	s.CloseShell(shell)

	flip := inspect.SignedVolume(s) < 0
	for _, f := range s.Faces {
		if flip {
			f.OuterLoop = reverseLoop(f.OuterLoop)
		}
		f.Surface = curve.Planar{Normal: tessellate.PolygonNormal(s.LoopPoints(f.OuterLoop))}
	}
	return s
}

// Pattern returns count copies of s in one solid, copy i shifted by
// offset*i. s itself is not modified.
func (w *Sweeper) Pattern(s *topology.Solid, count int, offset geom.Vector3) (*topology.Solid, error) {
	if s == nil {
		return nil, errors.New("pattern: nil solid")
	}
	if count < 1 {
		return nil, fmt.Errorf("pattern: %w", geom.Degenerate("count %d", count))
	}
	out := topology.NewSolid()
	for i := range count {
		appendCopy(out, s, geom.Translation(offset.MulScalar(float64(i))))
	}
	return out, nil
}

// Profiles returns the closed outlines of sk in model space. Line chains
// come first, in the order of their first line, then circles faceted into
// segments sides. At a point shared by more than two lines the chain
// follows the first unused one. Open chains and outlines without area are
// left out.
func Profiles(sk *sketch.Sketch, segments int) [][]geom.Point3 {
	var rings [][]geom.Point3
	for _, ids := range lineLoops(sk) {
		ring := make([]geom.Point3, 0, len(ids))
		for _, id := range ids {
			p, ok := sk.Position(id)
			if !ok {
				ring = nil
				break
			}
			ring = append(ring, sk.To3D(p))
		}
		if inspect.PolygonArea(ring) >= geom.Tolerance {
			rings = append(rings, ring)
		}
	}

	n := max(segments, primitives.MinSegments)
	for _, e := range sk.Entities {
		c, ok := e.(sketch.Circle)
		if !ok || c.Radius < geom.Tolerance {
			continue
		}
		center, ok := sk.Position(c.Center)
		if !ok {
			continue
		}
		ring := make([]geom.Point3, n)
		for i := range n {
			a := 2 * math.Pi * float64(i) / float64(n)
			ring[i] = sk.To3D(geom.Point2{X: center.X + c.Radius*math.Cos(a), Y: center.Y + c.Radius*math.Sin(a)})
		}
		rings = append(rings, ring)
	}
	return rings
}

// lineLoops walks the sketch lines into closed chains of point ids.
// Coincident points count as one, so chains close without shared ids.
func lineLoops(sk *sketch.Sketch) [][]sketch.PointID {
	same := coincident(sk)
	canon := func(id sketch.PointID) sketch.PointID {
		if c, ok := same[id]; ok {
			return c
		}
		return id
	}
	var lines []sketch.Line
	for _, l := range sk.Lines() {
		l.Start, l.End = canon(l.Start), canon(l.End)
		if l.Start != l.End {
			lines = append(lines, l)
		}
	}
	byPoint := make(map[sketch.PointID][]int)
	for i, l := range lines {
		byPoint[l.Start] = append(byPoint[l.Start], i)
		byPoint[l.End] = append(byPoint[l.End], i)
	}

	used := make([]bool, len(lines))
	var loops [][]sketch.PointID
	for i, first := range lines {
		if used[i] {
			continue
		}
		used[i] = true
		chain := []sketch.PointID{first.Start}
		at := first.End
		for at != first.Start {
			next := -1
			for _, j := range byPoint[at] {
				if !used[j] {
					next = j
					break
				}
			}
			if next < 0 {
				chain = nil
				break
			}
			used[next] = true
			chain = append(chain, at)
			at = otherEnd(lines[next], at)
		}
		if len(chain) >= 3 {
			loops = append(loops, chain)
		}
	}
	return loops
}

// coincident maps every point to the first point at the same position.
func coincident(sk *sketch.Sketch) map[sketch.PointID]sketch.PointID {
	same := make(map[sketch.PointID]sketch.PointID, len(sk.Points))
	for i, p := range sk.Points {
		same[p.ID] = p.ID
		for _, q := range sk.Points[:i] {
			if geom.Distance2(p.Position, q.Position) < geom.Tolerance {
				same[p.ID] = same[q.ID]
				break
			}
		}
	}
	return same
}

func otherEnd(l sketch.Line, p sketch.PointID) sketch.PointID {
	if l.Start == p {
		return l.End
	}
	return l.Start
}

// closeRing joins ring[i] to ring[i+1], wrapping around.
func closeRing(s *topology.Solid, ring []topology.VertexID) []topology.EdgeID {
	edges := make([]topology.EdgeID, len(ring))
	for i := range ring {
		edges[i] = s.AddEdge(ring[i], ring[(i+1)%len(ring)])
	}
	return edges
}

func reversePoints(pts []geom.Point3) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func reverseLoop(l topology.Loop) topology.Loop {
	out := topology.Loop{Edges: make([]topology.LoopEdge, len(l.Edges))}
	for i, le := range l.Edges {
		out.Edges[len(l.Edges)-1-i] = topology.LoopEdge{Edge: le.Edge, Forward: !le.Forward}
	}
	return out
}

// appendCopy adds src to dst mapped through xf, keeping face loops,
// orientations and shell membership.
func appendCopy(dst, src *topology.Solid, xf geom.Transform) {
	vo := topology.VertexID(len(dst.Vertices))
	eo := topology.EdgeID(len(dst.Edges))
	fo := topology.FaceID(len(dst.Faces))

	for _, v := range src.Vertices {
		dst.AddVertex(xf.Point(v.Point))
	}
	for _, e := range src.Edges {
		dst.AddCurvedEdge(e.Start+vo, e.End+vo, curve.TransformCurve(e.Curve, xf))
	}
	shift := func(l topology.Loop) topology.Loop {
		out := topology.Loop{Edges: make([]topology.LoopEdge, len(l.Edges))}
		for i, le := range l.Edges {
			out.Edges[i] = topology.LoopEdge{Edge: le.Edge + eo, Forward: le.Forward}
		}
		return out
	}
	for _, f := range src.Faces {
		id := dst.AddFace(curve.TransformSurface(f.Surface, xf))
		dst.SetOuterLoop(id, shift(f.OuterLoop))
		for _, h := range f.InnerLoops {
			dst.AddInnerLoop(id, shift(h))
		}
		dst.SetOrientation(id, f.Orientation)
	}
	for _, sh := range src.Shells {
		id := dst.AddShell()
		for _, f := range sh.Faces {
			dst.AddFaceToShell(id, f+fo)
		}
		if sh.IsClosed {
			dst.CloseShell(id)
		}
	}
}
