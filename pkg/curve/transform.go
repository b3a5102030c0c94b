package curve

import "github.com/chazu/brep/pkg/geom"

// TransformCurve maps c through t. Radii scale by t.ScaleFactor. Arc
// angles are kept while the in-plane basis is rebuilt from the mapped
// normal, so a rotation that tilts the normal also shifts the arc's phase.
func TransformCurve(c Curve, t geom.Transform) Curve {
	switch c := c.(type) {
	case Linear, nil:
		return c
	case Arc:
		return Arc{
			Center:     t.Point(c.Center),
			Radius:     c.Radius * t.ScaleFactor(),
			Normal:     t.Normal(c.Normal),
			StartAngle: c.StartAngle,
			EndAngle:   c.EndAngle,
		}
	case Nurbs:
		pts := make([]geom.Point3, len(c.ControlPoints))
		for i, p := range c.ControlPoints {
			pts[i] = t.Point(p)
		}
		return Nurbs{
			ControlPoints: pts,
			Weights:       append([]float64(nil), c.Weights...),
			Knots:         append([]float64(nil), c.Knots...),
			Degree:        c.Degree,
		}
	default:
		geom.Invariant("unknown curve type %T", c)
		return nil
	}
}

// TransformSurface maps s through t.
func TransformSurface(s Surface, t geom.Transform) Surface {
	k := t.ScaleFactor()
	switch s := s.(type) {
	case Planar:
		return Planar{Normal: t.Normal(s.Normal)}
	case Cylindrical:
		return Cylindrical{Axis: t.Direction(s.Axis), Center: t.Point(s.Center), Radius: s.Radius * k}
	case Spherical:
		return Spherical{Center: t.Point(s.Center), Radius: s.Radius * k}
	case Conical:
		return Conical{Apex: t.Point(s.Apex), Axis: t.Direction(s.Axis), HalfAngle: s.HalfAngle}
	case Toroidal:
		return Toroidal{
			Center:      t.Point(s.Center),
			Axis:        t.Direction(s.Axis),
			MajorRadius: s.MajorRadius * k,
			MinorRadius: s.MinorRadius * k,
		}
	case NurbsSurface:
		grid := make([][]geom.Point3, len(s.ControlPoints))
		weights := make([][]float64, len(s.Weights))
		for i, row := range s.ControlPoints {
			grid[i] = make([]geom.Point3, len(row))
			for j, p := range row {
				grid[i][j] = t.Point(p)
			}
		}
		for i, row := range s.Weights {
			weights[i] = append([]float64(nil), row...)
		}
		return NurbsSurface{
			ControlPoints: grid,
			Weights:       weights,
			UKnots:        append([]float64(nil), s.UKnots...),
			VKnots:        append([]float64(nil), s.VKnots...),
			UDegree:       s.UDegree,
			VDegree:       s.VDegree,
		}
	case nil:
		return nil
	default:
		geom.Invariant("unknown surface type %T", s)
		return nil
	}
}
