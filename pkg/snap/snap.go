// Package snap resolves a cursor position in a sketch to the point the
// user most likely means: an existing point, a midpoint, a center, a line
// intersection, a perpendicular foot, or failing all of those the nearest
// grid node.
//
// Resolution only reads the sketch. Concurrent readers are fine as long as
// nothing mutates the sketch during a query.
package snap

import (
	"fmt"
	"math"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/sketch"
)

// Type classifies a snap.
type Type int

const (
	None Type = iota
	Point
	Midpoint
	Center
	Intersection
	Perpendicular
	Grid
)

func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Point:
		return "point"
	case Midpoint:
		return "midpoint"
	case Center:
		return "center"
	case Intersection:
		return "intersection"
	case Perpendicular:
		return "perpendicular"
	case Grid:
		return "grid"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Perpendicular snaps are only offered away from the ends of a line, so
// they do not compete with endpoint and midpoint snaps.
const (
	PerpendicularMinT = 0.05
	PerpendicularMaxT = 0.95
)

// parallelEps guards the 2D cross products and squared lengths below.
const parallelEps = 1e-10

// Result is the outcome of a snap query. Source is the entity the snap
// came from, when there is one.
type Result struct {
	Position geom.Point2
	Type     Type
	Source   *sketch.EntityID
}

// NoSnap returns a result that leaves pos unchanged.
func NoSnap(pos geom.Point2) Result {
	return Result{Position: pos, Type: None}
}

// GridResult snaps pos to the grid.
func GridResult(pos geom.Point2, gridSize float64) Result {
	return Result{Position: ToGrid(pos, gridSize), Type: Grid}
}

func fromEntity(pos geom.Point2, t Type, id sketch.EntityID) Result {
	return Result{Position: pos, Type: t, Source: &id}
}

// ToGrid rounds each axis of pos to the nearest multiple of gridSize. A
// non-positive grid size leaves pos unchanged.
func ToGrid(pos geom.Point2, gridSize float64) geom.Point2 {
	if gridSize <= 0 {
		return pos
	}
	return geom.Point2{
		X: math.Round(pos.X/gridSize) * gridSize,
		Y: math.Round(pos.Y/gridSize) * gridSize,
	}
}

// Enhanced resolves pos against sk. The rules are tried in order and the
// first match wins:
//
//  1. an existing point
//  2. the midpoint of a line or arc
//  3. the center of a circle or arc
//  4. the nearest intersection of two lines
//  5. the perpendicular foot on a line, away from its ends
//  6. the grid
//
// Every rule accepts a candidate strictly closer than tolerance.
func Enhanced(sk *sketch.Sketch, pos geom.Point2, tolerance, gridSize float64) Result {
	tolSq := tolerance * tolerance

	for _, p := range sk.Points {
		if geom.DistanceSquared2(p.Position, pos) < tolSq {
			return Result{Position: p.Position, Type: Point}
		}
	}

	for _, e := range sk.Entities {
		if mid, ok := EntityMidpoint(sk, e); ok && geom.DistanceSquared2(mid, pos) < tolSq {
			return fromEntity(mid, Midpoint, e.EntityID())
		}
	}

	for _, e := range sk.Entities {
		var center sketch.PointID
		switch e := e.(type) {
		case sketch.Circle:
			center = e.Center
		case sketch.Arc:
			center = e.Center
		default:
			continue
		}
		if c, ok := sk.Position(center); ok && geom.DistanceSquared2(c, pos) < tolSq {
			return fromEntity(c, Center, e.EntityID())
		}
	}

	if r, ok := FindNearestIntersection(sk, pos, tolerance); ok {
		return r
	}

	for _, l := range sk.Lines() {
		a, okA := sk.Position(l.Start)
		b, okB := sk.Position(l.End)
		if !okA || !okB {
			continue
		}
		if foot, ok := PerpendicularFoot(pos, a, b); ok && geom.DistanceSquared2(foot, pos) < tolSq {
			return fromEntity(foot, Perpendicular, l.ID)
		}
	}

	return GridResult(pos, gridSize)
}

// Position is the two-rule resolver: the nearest existing point within
// tolerance, otherwise the grid. It also returns the id of the point it
// snapped to.
func Position(sk *sketch.Sketch, pos geom.Point2, tolerance, gridSize float64) (geom.Point2, *sketch.PointID) {
	if id, ok := FindPointAt(sk, pos, tolerance); ok {
		return sk.Points[id].Position, &id
	}
	return ToGrid(pos, gridSize), nil
}

// FindPointAt returns the point nearest pos that lies strictly within
// tolerance.
func FindPointAt(sk *sketch.Sketch, pos geom.Point2, tolerance float64) (sketch.PointID, bool) {
	var best sketch.PointID
	found := false
	bestDist := tolerance
	for _, p := range sk.Points {
		if d := geom.Distance2(p.Position, pos); d < bestDist {
			bestDist = d
			best = p.ID
			found = true
		}
	}
	return best, found
}

// FindEntityAt returns the entity whose outline passes nearest pos,
// strictly within tolerance. Arcs are measured against their full circle.
func FindEntityAt(sk *sketch.Sketch, pos geom.Point2, tolerance float64) (sketch.EntityID, bool) {
	var best sketch.EntityID
	found := false
	bestDist := tolerance
	for _, e := range sk.Entities {
		d := math.Inf(1)
		switch e := e.(type) {
		case sketch.Line:
			a, okA := sk.Position(e.Start)
			b, okB := sk.Position(e.End)
			if okA && okB {
				d = PointToSegmentDistance(pos, a, b)
			}
		case sketch.Circle:
			if c, ok := sk.Position(e.Center); ok {
				d = math.Abs(geom.Distance2(c, pos) - e.Radius)
			}
		case sketch.Arc:
			if c, ok := sk.Position(e.Center); ok {
				d = math.Abs(geom.Distance2(c, pos) - e.Radius)
			}
		case sketch.PointEntity:
			if p, ok := sk.Position(e.Point); ok {
				d = geom.Distance2(p, pos)
			}
		}
		if d < bestDist {
			bestDist = d
			best = e.EntityID()
			found = true
		}
	}
	return best, found
}

// EntityMidpoint returns the midpoint of a line, or the point halfway
// along an arc's sweep. Other entities and entities with missing points
// have none.
func EntityMidpoint(sk *sketch.Sketch, e sketch.Entity) (geom.Point2, bool) {
	switch e := e.(type) {
	case sketch.Line:
		a, okA := sk.Position(e.Start)
		b, okB := sk.Position(e.End)
		if !okA || !okB {
			return geom.Point2{}, false
		}
		return geom.Midpoint2(a, b), true
	case sketch.Arc:
		c, okC := sk.Position(e.Center)
		s, okS := sk.Position(e.Start)
		end, okE := sk.Position(e.End)
		if !okC || !okS || !okE {
			return geom.Point2{}, false
		}
		start, sweep := sketch.ArcSweep(c, s, end, e.CCW)
		mid := start + sweep/2
		return geom.Point2{
			X: c.X + e.Radius*math.Cos(mid),
			Y: c.Y + e.Radius*math.Sin(mid),
		}, true
	}
	return geom.Point2{}, false
}

// FindNearestIntersection intersects every pair of lines in sk and returns
// the crossing closest to pos, if it is strictly within tolerance.
func FindNearestIntersection(sk *sketch.Sketch, pos geom.Point2, tolerance float64) (Result, bool) {
	type seg struct{ a, b geom.Point2 }
	var segs []seg
	for _, l := range sk.Lines() {
		a, okA := sk.Position(l.Start)
		b, okB := sk.Position(l.End)
		if okA && okB {
			segs = append(segs, seg{a, b})
		}
	}

	tolSq := tolerance * tolerance
	bestSq := math.Inf(1)
	var best geom.Point2
	found := false
	for i := range segs {
		for j := i + 1; j < len(segs); j++ {
			p, ok := LineLineIntersection(segs[i].a, segs[i].b, segs[j].a, segs[j].b)
			if !ok {
				continue
			}
			if d := geom.DistanceSquared2(p, pos); d < tolSq && d < bestSq {
				bestSq = d
				best = p
				found = true
			}
		}
	}
	if !found {
		return Result{}, false
	}
	return Result{Position: best, Type: Intersection}, true
}

// LineLineIntersection returns where segments a1-a2 and b1-b2 cross.
// Parallel segments and crossings outside either segment give false.
func LineLineIntersection(a1, a2, b1, b2 geom.Point2) (geom.Point2, bool) {
	d1 := a2.Sub(a1)
	d2 := b2.Sub(b1)
	cross := geom.Cross2(d1, d2)
	if math.Abs(cross) < parallelEps {
		return geom.Point2{}, false
	}
	d := b1.Sub(a1)
	t := geom.Cross2(d, d2) / cross
	u := geom.Cross2(d, d1) / cross
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geom.Point2{}, false
	}
	return a1.Add(d1.MulScalar(t)), true
}

// PerpendicularFoot projects p onto segment a-b. It fails for a degenerate
// segment or when the projection lands in the outer 5% at either end.
func PerpendicularFoot(p, a, b geom.Point2) (geom.Point2, bool) {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < parallelEps {
		return geom.Point2{}, false
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < PerpendicularMinT || t > PerpendicularMaxT {
		return geom.Point2{}, false
	}
	return a.Add(ab.MulScalar(t)), true
}

// PointToSegmentDistance is the distance from p to the closest point of
// segment a-b.
func PointToSegmentDistance(p, a, b geom.Point2) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < parallelEps {
		return math.Hypot(ap.X, ap.Y)
	}
	t := math.Max(0, math.Min(1, ap.Dot(ab)/l2))
	return p.Sub(a.Add(ab.MulScalar(t))).Length()
}
