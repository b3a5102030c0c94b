package topology

import (
	"fmt"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
)

// ValidationSeverity indicates whether a finding makes the solid unusable
// or is merely suspicious.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken reference or shape
	SeverityWarning                           // legal but not a closed manifold
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. Entity names the
// offending entity ("e3", "f0"); it is empty for solid-level findings.
type ValidationError struct {
	Entity   string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Entity, e.Message)
}

// Validate checks every reference and shape rule in s and returns all
// findings. Unlike IsValid it does not stop at the first problem. It never
// mutates s.
func Validate(s *Solid) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateEdges(s)...)
	errs = append(errs, validateLoops(s)...)
	errs = append(errs, validateShells(s)...)
	return errs
}

// Errors filters findings down to SeverityError.
func Errors(findings []ValidationError) []ValidationError {
	var errs []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			errs = append(errs, f)
		}
	}
	return errs
}

// validateEdges checks endpoints, degenerate straight edges, curve shape
// and face usage counts.
func validateEdges(s *Solid) []ValidationError {
	var errs []ValidationError

	for _, e := range s.Edges {
		start, end := s.Vertex(e.Start), s.Vertex(e.End)
		if start == nil {
			errs = append(errs, ValidationError{
				Entity:   e.ID.String(),
				Message:  fmt.Sprintf("start vertex %s does not exist", e.Start),
				Severity: SeverityError,
			})
		}
		if end == nil {
			errs = append(errs, ValidationError{
				Entity:   e.ID.String(),
				Message:  fmt.Sprintf("end vertex %s does not exist", e.End),
				Severity: SeverityError,
			})
		}

		switch c := e.Curve.(type) {
		case curve.Linear, nil:
			if start != nil && end != nil && start.Coincident(end) {
				errs = append(errs, ValidationError{
					Entity:   e.ID.String(),
					Message:  "straight edge has zero length",
					Severity: SeverityWarning,
				})
			}
		case curve.Nurbs:
			if err := c.Validate(); err != nil {
				errs = append(errs, ValidationError{
					Entity:   e.ID.String(),
					Message:  err.Error(),
					Severity: SeverityError,
				})
			}
		case curve.Arc:
			if c.Radius <= geom.Tolerance {
				errs = append(errs, ValidationError{
					Entity:   e.ID.String(),
					Message:  fmt.Sprintf("arc radius %g is not positive", c.Radius),
					Severity: SeverityError,
				})
			}
		}

		for _, fid := range e.Faces {
			if s.Face(fid) == nil {
				errs = append(errs, ValidationError{
					Entity:   e.ID.String(),
					Message:  fmt.Sprintf("face reference %s does not exist", fid),
					Severity: SeverityError,
				})
			}
		}
		if n := len(e.Faces); n != 2 {
			errs = append(errs, ValidationError{
				Entity:   e.ID.String(),
				Message:  fmt.Sprintf("edge is used by %d faces, manifold needs 2", n),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateLoops checks that loop edges exist and that consecutive steps
// share a vertex.
func validateLoops(s *Solid) []ValidationError {
	var errs []ValidationError

	for _, f := range s.Faces {
		if f.OuterLoop.IsEmpty() {
			errs = append(errs, ValidationError{
				Entity:   f.ID.String(),
				Message:  "face has no outer loop",
				Severity: SeverityWarning,
			})
		}
		for li, l := range f.Loops() {
			missing := false
			for _, le := range l.Edges {
				if s.Edge(le.Edge) == nil {
					missing = true
					errs = append(errs, ValidationError{
						Entity:   f.ID.String(),
						Message:  fmt.Sprintf("loop %d references missing edge %s", li, le.Edge),
						Severity: SeverityError,
					})
				}
			}
			if missing {
				continue
			}
			if gap, ok := loopGap(s, l); ok {
				errs = append(errs, ValidationError{
					Entity:   f.ID.String(),
					Message:  fmt.Sprintf("loop %d is not closed after step %d", li, gap),
					Severity: SeverityError,
				})
			}
		}
		if f.Shell != nil && s.Shell(*f.Shell) == nil {
			errs = append(errs, ValidationError{
				Entity:   f.ID.String(),
				Message:  fmt.Sprintf("shell reference %s does not exist", *f.Shell),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// loopGap returns the first step whose end vertex is not the next step's
// start vertex, wrapping around.
func loopGap(s *Solid, l Loop) (int, bool) {
	n := len(l.Edges)
	for i, le := range l.Edges {
		e := s.Edges[le.Edge]
		tail := e.End
		if !le.Forward {
			tail = e.Start
		}
		next := l.Edges[(i+1)%n]
		ne := s.Edges[next.Edge]
		head := ne.Start
		if !next.Forward {
			head = ne.End
		}
		if tail != head {
			return i, true
		}
	}
	return 0, false
}

// validateShells checks shell membership in both directions and warns
// about open shells.
func validateShells(s *Solid) []ValidationError {
	var errs []ValidationError

	for _, sh := range s.Shells {
		for _, fid := range sh.Faces {
			f := s.Face(fid)
			if f == nil {
				errs = append(errs, ValidationError{
					Entity:   sh.ID.String(),
					Message:  fmt.Sprintf("face reference %s does not exist", fid),
					Severity: SeverityError,
				})
				continue
			}
			if f.Shell == nil || *f.Shell != sh.ID {
				errs = append(errs, ValidationError{
					Entity:   sh.ID.String(),
					Message:  fmt.Sprintf("face %s does not point back to this shell", fid),
					Severity: SeverityError,
				})
			}
		}
		if !sh.IsClosed {
			errs = append(errs, ValidationError{
				Entity:   sh.ID.String(),
				Message:  "shell is not closed",
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}
