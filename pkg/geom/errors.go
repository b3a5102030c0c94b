package geom

import (
	"errors"
	"fmt"
)

// ErrDegenerate marks a recoverable geometric degeneracy: a zero-length
// direction, collinear plane points, a malformed curve definition.
var ErrDegenerate = errors.New("degenerate geometry")

// InvariantViolation is raised (via panic) when a kernel data structure is
// found in a state no public builder can produce.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Message
}

// Invariant panics with an *InvariantViolation.
func Invariant(format string, args ...any) {
	panic(&InvariantViolation{Message: fmt.Sprintf(format, args...)})
}

// Degenerate wraps ErrDegenerate with context.
func Degenerate(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDegenerate)
}
