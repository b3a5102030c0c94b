package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chazu/brep/pkg/config"
	"github.com/chazu/brep/pkg/engine"
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/inspect"
	"github.com/chazu/brep/pkg/kernel"
	"github.com/chazu/brep/pkg/kernel/sdfx"
	"github.com/chazu/brep/pkg/kernel/sweep"
	"github.com/chazu/brep/pkg/primitives"
	"github.com/chazu/brep/pkg/snap"
	"github.com/chazu/brep/pkg/tessellate"
	"github.com/chazu/brep/pkg/topology"
)

// colorPalette is a default palette used to assign distinct colors to parts.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the script engine to the kernel collaborators.
type App struct {
	cfg      *config.Config
	engine   *engine.Engine
	mesher   *tessellate.Tessellator
	exporter kernel.Exporter
}

// MeshData is the serializable mesh format for one part.
type MeshData struct {
	Vertices []float32 `json:"vertices" yaml:"-"`
	Normals  []float32 `json:"normals" yaml:"-"`
	Indices  []uint32  `json:"indices" yaml:"-"`
	PartName string    `json:"partName" yaml:"part"`
	Color    string    `json:"color" yaml:"color"`
	// Triangles is len(Indices)/3, reported for readers that skip the buffers.
	Triangles int             `json:"triangles" yaml:"triangles"`
	Summary   inspect.Summary `json:"summary" yaml:"summary"`
}

// EvalErrorData is a serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line" yaml:"line,omitempty"`
	Col     int    `json:"col" yaml:"col,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// SketchData summarizes the sketch a script built.
type SketchData struct {
	Plane       string `json:"plane" yaml:"plane"`
	Points      int    `json:"points" yaml:"points"`
	Entities    int    `json:"entities" yaml:"entities"`
	Constraints int    `json:"constraints" yaml:"constraints"`
	DOF         string `json:"dof" yaml:"dof"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Sketch   SketchData      `json:"sketch" yaml:"sketch"`
	Meshes   []MeshData      `json:"meshes" yaml:"meshes"`
	Errors   []EvalErrorData `json:"errors" yaml:"errors"`
	Warnings []EvalErrorData `json:"warnings" yaml:"warnings"`
}

// NewApp creates an App from cfg, using defaults when cfg is nil.
func NewApp(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	eng := engine.NewEngine()
	eng.Timeout = cfg.Engine.Timeout
	eng.Segments = cfg.Mesh.Segments
	eng.Boolean = &sdfx.Kernel{MeshCells: cfg.Mesh.BooleanCells}
	eng.Sweeper = &sweep.Sweeper{Segments: cfg.Mesh.Segments}

	mesher := &tessellate.Tessellator{CurveSamples: cfg.Mesh.CurveSamples}
	return &App{
		cfg:      cfg,
		engine:   eng,
		mesher:   mesher,
		exporter: &sdfx.STLExporter{Mesher: mesher},
	}
}

// evaluate runs source and converts failures to EvalErrorData. The result
// is nil when there were errors.
func (a *App) evaluate(source string) (*engine.Result, []EvalErrorData) {
	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		return nil, []EvalErrorData{{Message: err.Error()}}
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, 0, len(evalErrs))
		for _, e := range evalErrs {
			out = append(out, EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
		}
		return nil, out
	}
	return res, nil
}

// Evaluate takes Lisp source and returns mesh data, errors and warnings.
// Unsatisfied sketch constraints and structural findings that do not stop
// meshing are reported as warnings.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	res, errs := a.evaluate(source)
	if errs != nil {
		result.Errors = append(result.Errors, errs...)
		return result
	}

	an := kernel.Analyze(res.Sketch, res.Constraints)
	result.Sketch = SketchData{
		Plane:       res.Sketch.Plane.String(),
		Points:      len(res.Sketch.Points),
		Entities:    len(res.Sketch.Entities),
		Constraints: len(res.Constraints),
		DOF:         an.Status.String(),
	}
	for i, ok := range an.Satisfied {
		if !ok {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("constraint %d (%T) is not satisfied", i, res.Constraints[i]),
			})
		}
	}

	for _, p := range res.Parts {
		for _, f := range topology.Validate(p.Solid) {
			if f.Severity == topology.SeverityError {
				result.Errors = append(result.Errors, EvalErrorData{
					Message: fmt.Sprintf("part %q: %s", p.Name, f.Error()),
				})
				continue
			}
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: fmt.Sprintf("part %q: %s", p.Name, f.Error()),
			})
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	meshes, err := tessellate.Tessellate(res.Parts, a.mesher)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices:  m.Vertices,
			Normals:   m.Normals,
			Indices:   m.Indices,
			PartName:  m.Name,
			Color:     colorPalette[i%len(colorPalette)],
			Triangles: m.TriangleCount(),
			Summary:   inspect.Summarize(res.Parts[i].Solid),
		})
	}

	return result
}

// Snap evaluates source and resolves the cursor (x, y) against its sketch
// with the configured tolerance and grid.
func (a *App) Snap(source string, x, y float64) (snap.Result, error) {
	res, errs := a.evaluate(source)
	if errs != nil {
		return snap.Result{}, fmt.Errorf("evaluate: %s", errs[0].Message)
	}
	return snap.Enhanced(res.Sketch, geom.Point2{X: x, Y: y}, a.cfg.Snap.Tolerance, a.cfg.Snap.GridSize), nil
}

// Export evaluates source and writes one STL file per part into the
// configured export directory. It returns the written paths.
func (a *App) Export(source string) ([]string, error) {
	res, errs := a.evaluate(source)
	if errs != nil {
		return nil, fmt.Errorf("evaluate: %s", errs[0].Message)
	}
	if len(res.Parts) == 0 {
		return nil, fmt.Errorf("script defines no parts")
	}
	if err := os.MkdirAll(a.cfg.Export.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	var paths []string
	for _, p := range res.Parts {
		file := p.Name + ".stl"
		if filepath.Base(file) != file || !filepath.IsLocal(file) {
			return paths, fmt.Errorf("part %q: name is not a plain file name", p.Name)
		}
		path := filepath.Join(a.cfg.Export.Dir, file)
		if err := a.exporter.Export(path, p.Solid); err != nil {
			return paths, fmt.Errorf("part %q: %w", p.Name, err)
		}
		log.Printf("Exported %s", path)
		paths = append(paths, path)
	}
	return paths, nil
}

// Primitive builds a named primitive at the origin with size as its
// characteristic dimension: edge length, or radius for round shapes.
func (a *App) Primitive(name string, size float64) (*topology.Solid, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %g", size)
	}
	seg := a.cfg.Mesh.Segments
	switch name {
	case "box":
		return primitives.Box(size, size, size), nil
	case "cylinder":
		return primitives.Cylinder(size, 2*size, seg), nil
	case "cone":
		return primitives.Cone(size, 2*size, seg), nil
	case "sphere":
		return primitives.Sphere(size, seg, seg/2), nil
	}
	return nil, fmt.Errorf("unknown primitive %q (want box, cylinder, cone or sphere)", name)
}

// Inspect summarizes a named primitive.
func (a *App) Inspect(name string, size float64) (inspect.Summary, error) {
	s, err := a.Primitive(name, size)
	if err != nil {
		return inspect.Summary{}, err
	}
	return inspect.Summarize(s), nil
}
