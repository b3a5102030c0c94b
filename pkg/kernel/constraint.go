package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/sketch"
)

// Constraint is a sketch constraint. Residual is zero when the constraint
// holds and grows with the squared error otherwise. References to missing
// points or entities of the wrong kind give Unresolved, so they never
// count as satisfied.
type Constraint interface {
	Residual(sk *sketch.Sketch) float64
	constraint()
}

// Unresolved is the residual of a constraint whose references do not
// resolve to geometry of the right kind.
var Unresolved = math.Inf(1)

// Geometric constraints.
type (
	Horizontal    struct{ Line sketch.EntityID }
	Vertical      struct{ Line sketch.EntityID }
	Parallel      struct{ Line1, Line2 sketch.EntityID }
	Perpendicular struct{ Line1, Line2 sketch.EntityID }
	Coincident    struct{ P1, P2 sketch.PointID }
	Tangent       struct{ Entity1, Entity2 sketch.EntityID }
	Concentric    struct{ Entity1, Entity2 sketch.EntityID }
)

// Dimensional constraints. Angle values are radians.
type (
	Distance struct {
		P1, P2 sketch.PointID
		Value  float64
	}
	HorizontalDistance struct {
		P1, P2 sketch.PointID
		Value  float64
	}
	VerticalDistance struct {
		P1, P2 sketch.PointID
		Value  float64
	}
	Angle struct {
		Line1, Line2 sketch.EntityID
		Value        float64
	}
	Radius struct {
		Entity sketch.EntityID
		Value  float64
	}
	Diameter struct {
		Entity sketch.EntityID
		Value  float64
	}
)

func (Horizontal) constraint()         {}
func (Vertical) constraint()           {}
func (Parallel) constraint()           {}
func (Perpendicular) constraint()      {}
func (Coincident) constraint()         {}
func (Tangent) constraint()            {}
func (Concentric) constraint()         {}
func (Distance) constraint()           {}
func (HorizontalDistance) constraint() {}
func (VerticalDistance) constraint()   {}
func (Angle) constraint()              {}
func (Radius) constraint()             {}
func (Diameter) constraint()           {}

func (c Horizontal) Residual(sk *sketch.Sketch) float64 {
	a, b, ok := lineEnds(sk, c.Line)
	if !ok {
		return Unresolved
	}
	dy := b.Y - a.Y
	return dy * dy
}

func (c Vertical) Residual(sk *sketch.Sketch) float64 {
	a, b, ok := lineEnds(sk, c.Line)
	if !ok {
		return Unresolved
	}
	dx := b.X - a.X
	return dx * dx
}

func (c Parallel) Residual(sk *sketch.Sketch) float64 {
	d1, d2, ok := lineDirections(sk, c.Line1, c.Line2)
	if !ok {
		return Unresolved
	}
	x := geom.Cross2(d1, d2)
	return x * x
}

func (c Perpendicular) Residual(sk *sketch.Sketch) float64 {
	d1, d2, ok := lineDirections(sk, c.Line1, c.Line2)
	if !ok {
		return Unresolved
	}
	x := d1.Dot(d2)
	return x * x
}

func (c Coincident) Residual(sk *sketch.Sketch) float64 {
	a, okA := sk.Position(c.P1)
	b, okB := sk.Position(c.P2)
	if !okA || !okB {
		return Unresolved
	}
	return geom.DistanceSquared2(a, b)
}

// Residual for a line and a circle compares the center's distance to the
// line with the radius. For two circles it takes the smaller of the
// external and internal tangency errors.
func (c Tangent) Residual(sk *sketch.Sketch) float64 {
	if a, b, ok := lineEnds(sk, c.Entity1); ok {
		if center, r, ok := circleOf(sk, c.Entity2); ok {
			return lineCircleError(a, b, center, r)
		}
		return Unresolved
	}
	if a, b, ok := lineEnds(sk, c.Entity2); ok {
		if center, r, ok := circleOf(sk, c.Entity1); ok {
			return lineCircleError(a, b, center, r)
		}
		return Unresolved
	}
	c1, r1, ok1 := circleOf(sk, c.Entity1)
	c2, r2, ok2 := circleOf(sk, c.Entity2)
	if !ok1 || !ok2 {
		return Unresolved
	}
	d := geom.Distance2(c1, c2)
	ext := d - (r1 + r2)
	in := d - math.Abs(r1-r2)
	return math.Min(ext*ext, in*in)
}

func lineCircleError(a, b, center geom.Point2, r float64) float64 {
	ab := b.Sub(a)
	l := ab.Length()
	if l < geom.Tolerance {
		return 0
	}
	d := math.Abs(geom.Cross2(ab, center.Sub(a))) / l
	e := d - r
	return e * e
}

func (c Concentric) Residual(sk *sketch.Sketch) float64 {
	c1, _, ok1 := circleOf(sk, c.Entity1)
	c2, _, ok2 := circleOf(sk, c.Entity2)
	if !ok1 || !ok2 {
		return Unresolved
	}
	return geom.DistanceSquared2(c1, c2)
}

func (c Distance) Residual(sk *sketch.Sketch) float64 {
	a, okA := sk.Position(c.P1)
	b, okB := sk.Position(c.P2)
	if !okA || !okB {
		return Unresolved
	}
	e := geom.Distance2(a, b) - c.Value
	return e * e
}

func (c HorizontalDistance) Residual(sk *sketch.Sketch) float64 {
	a, okA := sk.Position(c.P1)
	b, okB := sk.Position(c.P2)
	if !okA || !okB {
		return Unresolved
	}
	e := math.Abs(b.X-a.X) - c.Value
	return e * e
}

func (c VerticalDistance) Residual(sk *sketch.Sketch) float64 {
	a, okA := sk.Position(c.P1)
	b, okB := sk.Position(c.P2)
	if !okA || !okB {
		return Unresolved
	}
	e := math.Abs(b.Y-a.Y) - c.Value
	return e * e
}

func (c Angle) Residual(sk *sketch.Sketch) float64 {
	d1, d2, ok := lineDirections(sk, c.Line1, c.Line2)
	if !ok {
		return Unresolved
	}
	e := math.Acos(math.Max(-1, math.Min(1, d1.Dot(d2)))) - c.Value
	return e * e
}

func (c Radius) Residual(sk *sketch.Sketch) float64 {
	_, r, ok := circleOf(sk, c.Entity)
	if !ok {
		return Unresolved
	}
	e := r - c.Value
	return e * e
}

func (c Diameter) Residual(sk *sketch.Sketch) float64 {
	_, r, ok := circleOf(sk, c.Entity)
	if !ok {
		return Unresolved
	}
	e := 2*r - c.Value
	return e * e
}

func lineEnds(sk *sketch.Sketch, id sketch.EntityID) (a, b geom.Point2, ok bool) {
	l, isLine := sk.Entity(id).(sketch.Line)
	if !isLine {
		return a, b, false
	}
	a, okA := sk.Position(l.Start)
	b, okB := sk.Position(l.End)
	return a, b, okA && okB
}

// lineDirections returns unit directions for two lines.
func lineDirections(sk *sketch.Sketch, l1, l2 sketch.EntityID) (d1, d2 geom.Point2, ok bool) {
	a1, b1, ok1 := lineEnds(sk, l1)
	a2, b2, ok2 := lineEnds(sk, l2)
	if !ok1 || !ok2 {
		return d1, d2, false
	}
	d1, d2 = b1.Sub(a1), b2.Sub(a2)
	n1, n2 := d1.Length(), d2.Length()
	if n1 < geom.Tolerance || n2 < geom.Tolerance {
		return d1, d2, false
	}
	return d1.MulScalar(1 / n1), d2.MulScalar(1 / n2), true
}

func circleOf(sk *sketch.Sketch, id sketch.EntityID) (center geom.Point2, radius float64, ok bool) {
	switch e := sk.Entity(id).(type) {
	case sketch.Circle:
		center, ok = sk.Position(e.Center)
		return center, e.Radius, ok
	case sketch.Arc:
		center, ok = sk.Position(e.Center)
		return center, e.Radius, ok
	}
	return center, 0, false
}

// DOFState classifies how well a sketch is constrained.
type DOFState int

const (
	FullyConstrained DOFState = iota
	UnderConstrained
	OverConstrained
)

// DOFStatus is the outcome of counting degrees of freedom. Count is the
// number of free DOF when under-constrained and the number of redundant
// constraints when over-constrained.
type DOFStatus struct {
	State DOFState
	Count int
}

func (s DOFStatus) String() string {
	switch s.State {
	case FullyConstrained:
		return "Fully constrained"
	case UnderConstrained:
		return fmt.Sprintf("Under-constrained by %d DOF", s.Count)
	case OverConstrained:
		return fmt.Sprintf("Over-constrained (%d redundant)", s.Count)
	default:
		return fmt.Sprintf("DOFState(%d)", int(s.State))
	}
}

// Analysis summarises a constraint set against a sketch.
type Analysis struct {
	Status          DOFStatus
	TotalDOF        int
	ConstraintCount int
	// RemainingDOF is positive when under-constrained, negative when over.
	RemainingDOF int
	Satisfied    []bool
}

// Analyze counts two DOF per sketch point and one per constraint. It does
// not detect dependent constraints. A constraint is satisfied when its
// residual is below geom.Tolerance.
func Analyze(sk *sketch.Sketch, constraints []Constraint) Analysis {
	total := 2 * len(sk.Points)
	remaining := total - len(constraints)

	var status DOFStatus
	switch {
	case remaining == 0:
		status = DOFStatus{State: FullyConstrained}
	case remaining > 0:
		status = DOFStatus{State: UnderConstrained, Count: remaining}
	default:
		status = DOFStatus{State: OverConstrained, Count: -remaining}
	}

	satisfied := make([]bool, len(constraints))
	for i, c := range constraints {
		satisfied[i] = c.Residual(sk) < geom.Tolerance
	}

	return Analysis{
		Status:          status,
		TotalDOF:        total,
		ConstraintCount: len(constraints),
		RemainingDOF:    remaining,
		Satisfied:       satisfied,
	}
}

// SatisfiedCount returns how many constraints hold.
func (a Analysis) SatisfiedCount() int {
	n := 0
	for _, ok := range a.Satisfied {
		if ok {
			n++
		}
	}
	return n
}

// UnsatisfiedCount returns how many constraints do not hold.
func (a Analysis) UnsatisfiedCount() int {
	return len(a.Satisfied) - a.SatisfiedCount()
}
