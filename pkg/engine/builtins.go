package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/primitives"
	"github.com/chazu/brep/pkg/sketch"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/chazu/brep/pkg/topology"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms script source before passing it to zygomys.
// It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: horizontal-distance -> horizontal_distance
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, kwPrefix...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Only when the hyphen sits between identifier characters; otherwise
		// it is the minus operator.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpPoint refers to a sketch point.
type sexpPoint struct {
	id sketch.PointID
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point #%d)", p.id)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpEntity refers to a sketch entity.
type sexpEntity struct {
	id   sketch.EntityID
	kind string
}

func (e *sexpEntity) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", e.kind, e.id)
}
func (e *sexpEntity) Type() *zygo.RegisteredType { return nil }

// sexpConstraint wraps a sketch constraint.
type sexpConstraint struct {
	c kernel.Constraint
}

func (c *sexpConstraint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(constraint %T)", c.c)
}
func (c *sexpConstraint) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a 3D vector.
type sexpVec3 struct {
	vec geom.Vector3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpSolid wraps a B-Rep solid.
type sexpSolid struct {
	solid *topology.Solid
	name  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string {
	if s.name != "" {
		return fmt.Sprintf("(part %q)", s.name)
	}
	return fmt.Sprintf("(solid %d faces)", len(s.solid.Faces))
}
func (s *sexpSolid) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// number reads an optional numeric keyword, returning def when absent.
func (a kwArgs) number(key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

// integer reads an optional integer keyword, returning def when absent.
func (a kwArgs) integer(key string, def int) (int, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// flag reports whether a boolean keyword is set. A bare keyword counts as
// true.
func (a kwArgs) flag(key string) (bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return false, nil
	}
	if v == zygo.SexpNull {
		return true, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

// at reads the optional :at placement.
func (a kwArgs) at() (geom.Point3, error) {
	v, ok := a.kw["at"]
	if !ok {
		return geom.Point3{}, nil
	}
	p, err := toVec3(v)
	if err != nil {
		return geom.Point3{}, fmt.Errorf("at: %w", err)
	}
	return p, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an integer from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a SexpBool.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_xy) and plain strings ("xy").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toPoint(s zygo.Sexp) (sketch.PointID, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.id, nil
	}
	return 0, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

func toEntity(s zygo.Sexp) (sketch.EntityID, error) {
	if e, ok := s.(*sexpEntity); ok {
		return e.id, nil
	}
	return 0, fmt.Errorf("expected sketch entity, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (geom.Vector3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return geom.Vector3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (*topology.Solid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v.solid, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// points collects point refs, flattening any lists among them.
func points(args []zygo.Sexp) ([]sketch.PointID, error) {
	var ids []sketch.PointID
	for i, a := range args {
		if _, ok := a.(*sexpPoint); !ok {
			items, err := sexpListToSlice(a)
			if err == nil {
				nested, err := points(items)
				if err != nil {
					return nil, err
				}
				ids = append(ids, nested...)
				continue
			}
		}
		id, err := toPoint(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DefaultSegments is the facet count used around round primitives when
// the script does not pass :segments.
const DefaultSegments = 32

// ErrNoBoolean is returned by the boolean builtins when the engine has no
// boolean kernel.
var ErrNoBoolean = errors.New("no boolean kernel configured")

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the sketch and part builtins into a zygomys
// environment. They populate res during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, res *Result, boolean kernel.Boolean, sweeper kernel.Sweeper, segments int) {
	sk := res.Sketch

	// (plane :xz)
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("plane requires exactly 1 argument, got %d", len(args))
		}
		s, err := toKeywordString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		p, err := sketch.ParsePlane(s)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: %w", err)
		}
		if len(sk.Points) > 0 {
			return zygo.SexpNull, fmt.Errorf("plane must be set before any point is added")
		}
		sk.Plane = p
		return zygo.SexpNull, nil
	})

	// (point 10 20 :construction)
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("point requires x and y, got %d arguments", len(pa.positional))
		}
		x, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: x: %w", err)
		}
		y, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: y: %w", err)
		}
		construction, err := pa.flag("construction")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		pos := geom.Point2{X: x, Y: y}
		if construction {
			return &sexpPoint{id: sk.AddConstructionPoint(pos)}, nil
		}
		return &sexpPoint{id: sk.AddPoint(pos)}, nil
	})

	// (line p1 p2)
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("line requires 2 points, got %d arguments", len(args))
		}
		ids, err := points(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return &sexpEntity{id: sk.AddLine(ids[0], ids[1]), kind: "line"}, nil
	})

	// (polyline p1 p2 p3 :closed)
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		ids, err := points(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		if len(ids) < 2 {
			return zygo.SexpNull, fmt.Errorf("polyline requires at least 2 points, got %d", len(ids))
		}
		closed, err := pa.flag("closed")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		var lines []zygo.Sexp
		for i := 0; i+1 < len(ids); i++ {
			lines = append(lines, &sexpEntity{id: sk.AddLine(ids[i], ids[i+1]), kind: "line"})
		}
		if closed && len(ids) > 2 {
			lines = append(lines, &sexpEntity{id: sk.AddLine(ids[len(ids)-1], ids[0]), kind: "line"})
		}
		return zygo.MakeList(lines), nil
	})

	// (rect x y w h) adds four corners and four lines, counter-clockwise
	// from (x, y).
	env.AddFunction("rect", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rect requires x, y, width and height, got %d arguments", len(args))
		}
		var v [4]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rect: argument %d: %w", i+1, err)
			}
			v[i] = f
		}
		x, y, w, h := v[0], v[1], v[2], v[3]
		corners := []sketch.PointID{
			sk.AddPoint(geom.Point2{X: x, Y: y}),
			sk.AddPoint(geom.Point2{X: x + w, Y: y}),
			sk.AddPoint(geom.Point2{X: x + w, Y: y + h}),
			sk.AddPoint(geom.Point2{X: x, Y: y + h}),
		}
		lines := make([]zygo.Sexp, 0, 4)
		for i := range corners {
			lines = append(lines, &sexpEntity{id: sk.AddLine(corners[i], corners[(i+1)%4]), kind: "line"})
		}
		return zygo.MakeList(lines), nil
	})

	// (circle center 5)
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("circle requires a center and a radius, got %d arguments", len(args))
		}
		c, err := toPoint(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
		}
		r, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
		}
		if r <= 0 {
			return zygo.SexpNull, fmt.Errorf("circle: radius must be positive, got %g", r)
		}
		return &sexpEntity{id: sk.AddCircle(c, r), kind: "circle"}, nil
	})

	// (arc center start end :cw)
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("arc requires center, start and end points, got %d", len(pa.positional))
		}
		ids, err := points(pa.positional)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		cw, err := pa.flag("cw")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return &sexpEntity{id: sk.AddArc(ids[0], ids[1], ids[2], !cw), kind: "arc"}, nil
	})

	registerConstraints(env, res)
	registerSolids(env, res, boolean, segments)
	registerSweeps(env, res, sweeper)
}

// registerConstraints installs the constraint builtins. Each one appends
// to res.Constraints. Angles are given in degrees.
func registerConstraints(env *zygo.Zlisp, res *Result) {
	add := func(c kernel.Constraint) (zygo.Sexp, error) {
		res.Constraints = append(res.Constraints, c)
		return &sexpConstraint{c: c}, nil
	}

	oneEntity := map[string]func(sketch.EntityID) kernel.Constraint{
		"horizontal": func(l sketch.EntityID) kernel.Constraint { return kernel.Horizontal{Line: l} },
		"vertical":   func(l sketch.EntityID) kernel.Constraint { return kernel.Vertical{Line: l} },
	}
	for fn, mk := range oneEntity {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 1 {
				return zygo.SexpNull, fmt.Errorf("%s requires 1 line, got %d arguments", name, len(args))
			}
			l, err := toEntity(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return add(mk(l))
		})
	}

	twoEntities := map[string]func(a, b sketch.EntityID) kernel.Constraint{
		"parallel":      func(a, b sketch.EntityID) kernel.Constraint { return kernel.Parallel{Line1: a, Line2: b} },
		"perpendicular": func(a, b sketch.EntityID) kernel.Constraint { return kernel.Perpendicular{Line1: a, Line2: b} },
		"tangent":       func(a, b sketch.EntityID) kernel.Constraint { return kernel.Tangent{Entity1: a, Entity2: b} },
		"concentric":    func(a, b sketch.EntityID) kernel.Constraint { return kernel.Concentric{Entity1: a, Entity2: b} },
	}
	for fn, mk := range twoEntities {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires 2 entities, got %d arguments", name, len(args))
			}
			a, err := toEntity(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			b, err := toEntity(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return add(mk(a, b))
		})
	}

	env.AddFunction("coincident", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("coincident requires 2 points, got %d arguments", len(args))
		}
		ids, err := points(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("coincident: %w", err)
		}
		return add(kernel.Coincident{P1: ids[0], P2: ids[1]})
	})

	// Registered with underscores; the preprocessor rewrites the kebab-case
	// spellings.
	pointDims := map[string]func(a, b sketch.PointID, v float64) kernel.Constraint{
		"distance": func(a, b sketch.PointID, v float64) kernel.Constraint {
			return kernel.Distance{P1: a, P2: b, Value: v}
		},
		"horizontal_distance": func(a, b sketch.PointID, v float64) kernel.Constraint {
			return kernel.HorizontalDistance{P1: a, P2: b, Value: v}
		},
		"vertical_distance": func(a, b sketch.PointID, v float64) kernel.Constraint {
			return kernel.VerticalDistance{P1: a, P2: b, Value: v}
		},
	}
	for fn, mk := range pointDims {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 3 {
				return zygo.SexpNull, fmt.Errorf("%s requires 2 points and a value, got %d arguments", name, len(args))
			}
			ids, err := points(args[:2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			v, err := toFloat64(args[2])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: value: %w", name, err)
			}
			return add(mk(ids[0], ids[1], v))
		})
	}

	env.AddFunction("angle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("angle requires 2 lines and degrees, got %d arguments", len(args))
		}
		a, err := toEntity(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: %w", err)
		}
		b, err := toEntity(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: %w", err)
		}
		deg, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("angle: value: %w", err)
		}
		return add(kernel.Angle{Line1: a, Line2: b, Value: deg * math.Pi / 180})
	})

	sizeDims := map[string]func(e sketch.EntityID, v float64) kernel.Constraint{
		"radius":   func(e sketch.EntityID, v float64) kernel.Constraint { return kernel.Radius{Entity: e, Value: v} },
		"diameter": func(e sketch.EntityID, v float64) kernel.Constraint { return kernel.Diameter{Entity: e, Value: v} },
	}
	for fn, mk := range sizeDims {
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires an entity and a value, got %d arguments", name, len(args))
			}
			e, err := toEntity(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			v, err := toFloat64(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: value: %w", name, err)
			}
			return add(mk(e, v))
		})
	}
}

// checkPartName rejects names that cannot be used as a file name in an
// export directory.
func checkPartName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return fmt.Errorf("invalid part name %q", name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("part name %q must not contain a path separator", name)
	}
	return nil
}

// registerSolids installs the solid builtins. Transforms modify the solid
// they are given and return it. segments is the default facet count for
// round primitives.
func registerSolids(env *zygo.Zlisp, res *Result, boolean kernel.Boolean, segments int) {
	if segments < 3 {
		segments = DefaultSegments
	}

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: geom.Vector3{X: v[0], Y: v[1], Z: v[2]}}, nil
	})

	// dims reads n positive numbers from the front of the positional args.
	dims := func(fn string, pa kwArgs, names ...string) ([]float64, error) {
		if len(pa.positional) != len(names) {
			return nil, fmt.Errorf("%s requires %s, got %d arguments", fn, strings.Join(names, ", "), len(pa.positional))
		}
		out := make([]float64, len(names))
		for i, n := range names {
			f, err := toFloat64(pa.positional[i])
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", fn, n, err)
			}
			if f <= 0 {
				return nil, fmt.Errorf("%s: %s must be positive, got %g", fn, n, f)
			}
			out[i] = f
		}
		return out, nil
	}

	// (box 2 3 4 :at (vec3 0 0 2))
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := dims("box", pa, "width", "depth", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		at, err := pa.at()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: %w", err)
		}
		return &sexpSolid{solid: primitives.BoxAt(at, d[0], d[1], d[2])}, nil
	})

	// (cylinder 1 2 :segments 32)
	env.AddFunction("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := dims("cylinder", pa, "radius", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		seg, err := pa.integer("segments", segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		at, err := pa.at()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cylinder: %w", err)
		}
		return &sexpSolid{solid: primitives.CylinderAt(at, d[0], d[1], seg)}, nil
	})

	// (sphere 1 :u 32 :v 16)
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := dims("sphere", pa, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		u, err := pa.integer("u", segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		v, err := pa.integer("v", segments/2)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		at, err := pa.at()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("sphere: %w", err)
		}
		return &sexpSolid{solid: primitives.SphereAt(at, d[0], u, v)}, nil
	})

	// (cone 1 2 :segments 32), placed by the center of its base.
	env.AddFunction("cone", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d, err := dims("cone", pa, "radius", "height")
		if err != nil {
			return zygo.SexpNull, err
		}
		seg, err := pa.integer("segments", segments)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cone: %w", err)
		}
		at, err := pa.at()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cone: %w", err)
		}
		return &sexpSolid{solid: primitives.ConeAt(at, d[0], d[1], seg)}, nil
	})

	// (translate s (vec3 1 0 0))
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires a solid and a vec3, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		v, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		topology.NewBuilder(s).Translate(v.X, v.Y, v.Z).Build()
		return args[0], nil
	})

	// (rotate s :z 90) rotates about X, then Y, then Z, in degrees.
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("rotate requires a solid")
		}
		s, err := toSolid(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		var deg [3]float64
		for i, axis := range []string{"x", "y", "z"} {
			if deg[i], err = pa.number(axis, 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
			}
		}
		const rad = math.Pi / 180
		topology.NewBuilder(s).RotateX(deg[0] * rad).RotateY(deg[1] * rad).RotateZ(deg[2] * rad).Build()
		return pa.positional[0], nil
	})

	// (scale s 2)
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale requires a solid and a factor, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		f, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		if f <= 0 {
			return zygo.SexpNull, fmt.Errorf("scale: factor must be positive, got %g", f)
		}
		topology.NewBuilder(s).Scale(f).Build()
		return args[0], nil
	})

	// (defpart "name" solid)
	env.AddFunction("defpart", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("defpart requires a name and a solid")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: name: %w", err)
		}
		if err := checkPartName(partName); err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		if res.Part(partName) != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: part %q already defined", partName)
		}
		s, err := toSolid(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defpart: %w", err)
		}
		res.Parts = append(res.Parts, tessellate.Part{Name: partName, Solid: s})
		return &sexpSolid{solid: s, name: partName}, nil
	})

	// (part "name")
	env.AddFunction("part", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("part requires a name argument")
		}
		partName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("part: name: %w", err)
		}
		p := res.Part(partName)
		if p == nil {
			return zygo.SexpNull, fmt.Errorf("part: no part named %q", partName)
		}
		return &sexpSolid{solid: p.Solid, name: partName}, nil
	})

	ops := map[string]func(a, b *topology.Solid) (*topology.Solid, error){}
	if boolean != nil {
		ops["union"] = boolean.Union
		ops["difference"] = boolean.Difference
		ops["intersection"] = boolean.Intersection
	}
	for _, fn := range []string{"union", "difference", "intersection"} {
		op := ops[fn]
		env.AddFunction(fn, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if op == nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, ErrNoBoolean)
			}
			if len(args) != 2 {
				return zygo.SexpNull, fmt.Errorf("%s requires 2 solids, got %d arguments", name, len(args))
			}
			a, err := toSolid(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			b, err := toSolid(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			out, err := op(a, b)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return &sexpSolid{solid: out}, nil
		})
	}
}

// registerSweeps installs extrude and revolve, which build solids from the
// closed profiles of the current sketch, and pattern.
func registerSweeps(env *zygo.Zlisp, res *Result, sweeper kernel.Sweeper) {
	// (extrude 10)
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires a distance, got %d arguments", len(args))
		}
		d, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: distance: %w", err)
		}
		s, err := sweeper.Extrude(res.Sketch, d)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (revolve 360 :axis :y :at (vec3 0 0 0)), angle in degrees about a
	// model axis through :at.
	env.AddFunction("revolve", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("revolve requires an angle")
		}
		deg, err := toFloat64(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: angle: %w", err)
		}
		dir := geom.YAxis
		if v, ok := pa.kw["axis"]; ok {
			k, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("revolve: axis: %w", err)
			}
			switch k {
			case "x":
				dir = geom.XAxis
			case "y":
				dir = geom.YAxis
			case "z":
				dir = geom.ZAxis
			default:
				return zygo.SexpNull, fmt.Errorf("revolve: axis must be :x, :y or :z, got %q", k)
			}
		}
		at, err := pa.at()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("revolve: %w", err)
		}
		s, err := sweeper.Revolve(res.Sketch, geom.Line{Origin: at, Direction: dir}, deg*math.Pi/180)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: s}, nil
	})

	// (pattern s 4 (vec3 10 0 0))
	env.AddFunction("pattern", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("pattern requires a solid, a count and a vec3, got %d arguments", len(args))
		}
		s, err := toSolid(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pattern: %w", err)
		}
		n, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pattern: count: %w", err)
		}
		off, err := toVec3(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pattern: %w", err)
		}
		out, err := sweeper.Pattern(s, n, off)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpSolid{solid: out}, nil
	})
}
