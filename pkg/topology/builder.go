package topology

import (
	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
)

// Builder applies a chain of rigid and scaling transforms to a solid.
//
//	s := topology.NewBuilder(primitives.Box(2, 3, 4)).
//		Translate(1, 0, 0).
//		RotateZ(math.Pi / 4).
//		Build()
type Builder struct {
	solid *Solid
	xf    geom.Transform
}

// NewBuilder starts a chain on s. s is modified in place by Build.
func NewBuilder(s *Solid) *Builder {
	return &Builder{solid: s, xf: geom.Identity()}
}

// Translate moves the solid by (x, y, z).
func (b *Builder) Translate(x, y, z float64) *Builder {
	return b.Transform(geom.Translation(geom.Vector3{X: x, Y: y, Z: z}))
}

// Scale scales uniformly about the origin.
func (b *Builder) Scale(f float64) *Builder {
	return b.Transform(geom.UniformScaling(f))
}

// ScaleXYZ scales each axis about the origin.
func (b *Builder) ScaleXYZ(x, y, z float64) *Builder {
	return b.Transform(geom.Scaling(geom.Vector3{X: x, Y: y, Z: z}))
}

// RotateX rotates about the X axis by angle radians.
func (b *Builder) RotateX(angle float64) *Builder {
	return b.Transform(geom.RotationX(angle))
}

// RotateY rotates about the Y axis by angle radians.
func (b *Builder) RotateY(angle float64) *Builder {
	return b.Transform(geom.RotationY(angle))
}

// RotateZ rotates about the Z axis by angle radians.
func (b *Builder) RotateZ(angle float64) *Builder {
	return b.Transform(geom.RotationZ(angle))
}

// Transform appends an arbitrary transform to the chain.
func (b *Builder) Transform(t geom.Transform) *Builder {
	b.xf = b.xf.Then(t)
	return b
}

// Build applies the accumulated transform to every vertex, edge curve and
// face surface, and returns the solid.
func (b *Builder) Build() *Solid {
	s := b.solid
	for _, v := range s.Vertices {
		v.Point = b.xf.Point(v.Point)
	}
	for _, e := range s.Edges {
		e.Curve = curve.TransformCurve(e.Curve, b.xf)
	}
	for _, f := range s.Faces {
		f.Surface = curve.TransformSurface(f.Surface, b.xf)
	}
	s.InvalidateBounds()
	b.xf = geom.Identity()
	return s
}
