// Package kernel defines the collaborators that sit around the B-Rep core:
// meshing, export, booleans, sweeps and sketch constraint solving.
// Implementations (tessellate, sdfx) live behind these interfaces so the
// rest of the system can swap backends without change.
package kernel

import (
	"fmt"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/sketch"
	"github.com/chazu/brep/pkg/topology"
)

// Mesher turns a solid into triangles.
type Mesher interface {
	ToMesh(s *topology.Solid) (*Mesh, error)
}

// Exporter writes a solid to a file.
type Exporter interface {
	Export(path string, s *topology.Solid) error
}

// Boolean combines two solids. Operands are not modified.
type Boolean interface {
	Union(a, b *topology.Solid) (*topology.Solid, error)
	Difference(a, b *topology.Solid) (*topology.Solid, error)
	Intersection(a, b *topology.Solid) (*topology.Solid, error)
}

// BooleanOp names a boolean operation.
type BooleanOp int

const (
	OpUnion BooleanOp = iota
	OpDifference
	OpIntersection
)

func (op BooleanOp) String() string {
	switch op {
	case OpUnion:
		return "union"
	case OpDifference:
		return "difference"
	case OpIntersection:
		return "intersection"
	default:
		return fmt.Sprintf("BooleanOp(%d)", int(op))
	}
}

// BooleanError reports a failed boolean operation.
type BooleanError struct {
	Op     BooleanOp
	Reason string
	Err    error
}

func (e *BooleanError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("boolean %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("boolean %s: %s", e.Op, e.Reason)
}

func (e *BooleanError) Unwrap() error { return e.Err }

// Sweeper builds solids from sketches and copies solids.
type Sweeper interface {
	// Extrude sweeps the closed profiles of sk along its plane normal.
	Extrude(sk *sketch.Sketch, distance float64) (*topology.Solid, error)
	// Revolve spins the profiles of sk about axis by angle radians.
	Revolve(sk *sketch.Sketch, axis geom.Line, angle float64) (*topology.Solid, error)
	// Pattern places count copies of s, each shifted by offset from the last.
	Pattern(s *topology.Solid, count int, offset geom.Vector3) (*topology.Solid, error)
}

// ConstraintSolver moves sketch points until the constraints hold.
type ConstraintSolver interface {
	Solve(sk *sketch.Sketch, constraints []Constraint) (DOFStatus, error)
}
