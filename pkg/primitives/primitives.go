// Package primitives builds closed, faceted solids for the standard shapes.
//
// Every primitive returns a single closed shell whose faces are wound
// counter-clockwise seen from outside, and whose edges are each shared by
// exactly two faces.
package primitives

import (
	"math"

	"github.com/chazu/brep/pkg/curve"
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/topology"
)

// Minimum facet counts.
const (
	MinSegments  = 3
	MinUSegments = 4
	MinVSegments = 2
)

var (
	negX = geom.Vector3{X: -1}
	negY = geom.Vector3{Y: -1}
	negZ = geom.Vector3{Z: -1}
)

// Box returns a width × depth × height box centred on the origin.
func Box(width, depth, height float64) *topology.Solid {
	return BoxAt(geom.Point3{}, width, depth, height)
}

// BoxAt returns a box centred on center. Width runs along X, depth along Y
// and height along Z.
func BoxAt(center geom.Point3, width, depth, height float64) *topology.Solid {
	s := topology.NewSolid()
	hw, hd, hh := width/2, depth/2, height/2

	corner := func(sx, sy, sz float64) topology.VertexID {
		return s.AddVertex(geom.Point3{X: center.X + sx*hw, Y: center.Y + sy*hd, Z: center.Z + sz*hh})
	}
	v0 := corner(-1, -1, -1)
	v1 := corner(1, -1, -1)
	v2 := corner(1, 1, -1)
	v3 := corner(-1, 1, -1)
	v4 := corner(-1, -1, 1)
	v5 := corner(1, -1, 1)
	v6 := corner(1, 1, 1)
	v7 := corner(-1, 1, 1)

	b0, b1, b2, b3 := s.AddEdge(v0, v1), s.AddEdge(v1, v2), s.AddEdge(v2, v3), s.AddEdge(v3, v0)
	t0, t1, t2, t3 := s.AddEdge(v4, v5), s.AddEdge(v5, v6), s.AddEdge(v6, v7), s.AddEdge(v7, v4)
	u0, u1, u2, u3 := s.AddEdge(v0, v4), s.AddEdge(v1, v5), s.AddEdge(v2, v6), s.AddEdge(v3, v7)

	rev, fwd := topology.Rev, topology.Fwd
	faces := []struct {
		normal geom.Vector3
		loop   topology.Loop
	}{
		{negZ, topology.NewLoop(rev(b3), rev(b2), rev(b1), rev(b0))},
		{geom.ZAxis, topology.NewLoop(fwd(t0), fwd(t1), fwd(t2), fwd(t3))},
		{negY, topology.NewLoop(fwd(b0), fwd(u1), rev(t0), rev(u0))},
		{geom.YAxis, topology.NewLoop(fwd(b2), fwd(u3), rev(t2), rev(u2))},
		{negX, topology.NewLoop(fwd(b3), fwd(u0), rev(t3), rev(u3))},
		{geom.XAxis, topology.NewLoop(fwd(b1), fwd(u2), rev(t1), rev(u1))},
	}

	shell := s.AddShell()
	for _, f := range faces {
		addFace(s, shell, curve.Planar{Normal: f.normal}, f.loop)
	}
	s.CloseShell(shell)
	return s
}

// Cylinder returns a Z-aligned cylinder centred on the origin, faceted
// into segments sides.
func Cylinder(radius, height float64, segments int) *topology.Solid {
	return CylinderAt(geom.Point3{}, radius, height, segments)
}

// CylinderAt returns a Z-aligned cylinder centred on center.
func CylinderAt(center geom.Point3, radius, height float64, segments int) *topology.Solid {
	s := topology.NewSolid()
	n := max(segments, MinSegments)
	hh := height / 2

	bottom := make([]topology.VertexID, n)
	top := make([]topology.VertexID, n)
	for i := range n {
		x, y := ringPoint(center, radius, i, n)
		bottom[i] = s.AddVertex(geom.Point3{X: x, Y: y, Z: center.Z - hh})
		top[i] = s.AddVertex(geom.Point3{X: x, Y: y, Z: center.Z + hh})
	}
	bottomEdges := ringEdges(s, bottom)
	topEdges := ringEdges(s, top)
	sideEdges := make([]topology.EdgeID, n)
	for i := range n {
		sideEdges[i] = s.AddEdge(bottom[i], top[i])
	}

	shell := s.AddShell()
	addFace(s, shell, curve.Planar{Normal: negZ}, reversedRing(bottomEdges))
	addFace(s, shell, curve.Planar{Normal: geom.ZAxis}, forwardRing(topEdges))

	for i := range n {
		next := (i + 1) % n
		a := s.Vertex(bottom[i]).Point
		b := s.Vertex(bottom[next]).Point
		mid := geom.Lerp(a, b, 0.5)
		normal, ok := geom.Normalize(geom.Vector3{X: mid.X - center.X, Y: mid.Y - center.Y})
		if !ok {
			normal = geom.XAxis
		}
		addFace(s, shell, curve.Planar{Normal: normal}, topology.NewLoop(
			topology.Fwd(bottomEdges[i]),
			topology.Fwd(sideEdges[next]),
			topology.Rev(topEdges[i]),
			topology.Rev(sideEdges[i]),
		))
	}
	s.CloseShell(shell)
	return s
}

// Prism returns the solid swept by moving the polygon ring along offset.
// ring must wind counter-clockwise seen from the offset side.
func Prism(ring []geom.Point3, offset geom.Vector3) *topology.Solid {
	s := topology.NewSolid()
	AddPrism(s, ring, offset)
	return s
}

// AddPrism adds a prism to s as a new closed shell and returns the shell.
// Side faces are planar with normals taken from each ring edge crossed
// with the sweep direction.
func AddPrism(s *topology.Solid, ring []geom.Point3, offset geom.Vector3) topology.ShellID {
	n := len(ring)
	up := geom.NormalizeOrZ(offset)

	bottom := make([]topology.VertexID, n)
	top := make([]topology.VertexID, n)
	for i, p := range ring {
		bottom[i] = s.AddVertex(p)
		top[i] = s.AddVertex(p.Add(offset))
	}
	bottomEdges := ringEdges(s, bottom)
	topEdges := ringEdges(s, top)
	sideEdges := make([]topology.EdgeID, n)
	for i := range n {
		sideEdges[i] = s.AddEdge(bottom[i], top[i])
	}

	shell := s.AddShell()
	addFace(s, shell, curve.Planar{Normal: up.MulScalar(-1)}, reversedRing(bottomEdges))
	addFace(s, shell, curve.Planar{Normal: up}, forwardRing(topEdges))
	for i := range n {
		next := (i + 1) % n
		normal := geom.NormalizeOrZ(ring[next].Sub(ring[i]).Cross(up))
		addFace(s, shell, curve.Planar{Normal: normal}, topology.NewLoop(
			topology.Fwd(bottomEdges[i]),
			topology.Fwd(sideEdges[next]),
			topology.Rev(topEdges[i]),
			topology.Rev(sideEdges[i]),
		))
	}
	s.CloseShell(shell)
	return shell
}

// Sphere returns a UV sphere centred on the origin with uSegments
// divisions of longitude and vSegments of latitude.
func Sphere(radius float64, uSegments, vSegments int) *topology.Solid {
	return SphereAt(geom.Point3{}, radius, uSegments, vSegments)
}

// SphereAt returns a UV sphere centred on center.
func SphereAt(center geom.Point3, radius float64, uSegments, vSegments int) *topology.Solid {
	s := topology.NewSolid()
	nu := max(uSegments, MinUSegments)
	nv := max(vSegments, MinVSegments)
	surface := curve.Spherical{Center: center, Radius: radius}

	north := s.AddVertex(geom.Point3{X: center.X, Y: center.Y, Z: center.Z + radius})
	rings := make([][]topology.VertexID, nv-1)
	for j := range rings {
		phi := math.Pi * float64(j+1) / float64(nv)
		z := center.Z + radius*math.Cos(phi)
		r := radius * math.Sin(phi)
		rings[j] = make([]topology.VertexID, nu)
		for i := range nu {
			x, y := ringPoint(center, r, i, nu)
			rings[j][i] = s.AddVertex(geom.Point3{X: x, Y: y, Z: z})
		}
	}
	south := s.AddVertex(geom.Point3{X: center.X, Y: center.Y, Z: center.Z - radius})

	latitudes := make([][]topology.EdgeID, len(rings))
	for j, ring := range rings {
		latitudes[j] = ringEdges(s, ring)
	}
	// meridians[j][i] runs from rings[j][i] down to rings[j+1][i].
	meridians := make([][]topology.EdgeID, len(rings)-1)
	for j := range meridians {
		meridians[j] = make([]topology.EdgeID, nu)
		for i := range nu {
			meridians[j][i] = s.AddEdge(rings[j][i], rings[j+1][i])
		}
	}
	northEdges := make([]topology.EdgeID, nu)
	southEdges := make([]topology.EdgeID, nu)
	last := rings[len(rings)-1]
	for i := range nu {
		northEdges[i] = s.AddEdge(north, rings[0][i])
		southEdges[i] = s.AddEdge(last[i], south)
	}

	shell := s.AddShell()
	for i := range nu {
		next := (i + 1) % nu
		addFace(s, shell, surface, topology.NewLoop(
			topology.Fwd(northEdges[i]),
			topology.Fwd(latitudes[0][i]),
			topology.Rev(northEdges[next]),
		))
	}
	for j := range meridians {
		for i := range nu {
			next := (i + 1) % nu
			addFace(s, shell, surface, topology.NewLoop(
				topology.Fwd(meridians[j][i]),
				topology.Fwd(latitudes[j+1][i]),
				topology.Rev(meridians[j][next]),
				topology.Rev(latitudes[j][i]),
			))
		}
	}
	for i := range nu {
		next := (i + 1) % nu
		addFace(s, shell, surface, topology.NewLoop(
			topology.Fwd(southEdges[i]),
			topology.Rev(southEdges[next]),
			topology.Rev(latitudes[len(rings)-1][i]),
		))
	}
	s.CloseShell(shell)
	return s
}

// Cone returns a Z-aligned cone with its base centred on the origin and its
// apex at (0, 0, height).
func Cone(baseRadius, height float64, segments int) *topology.Solid {
	return ConeAt(geom.Point3{}, baseRadius, height, segments)
}

// ConeAt returns a cone whose base is centred on baseCenter.
func ConeAt(baseCenter geom.Point3, baseRadius, height float64, segments int) *topology.Solid {
	s := topology.NewSolid()
	n := max(segments, MinSegments)

	apexPoint := geom.Point3{X: baseCenter.X, Y: baseCenter.Y, Z: baseCenter.Z + height}
	apex := s.AddVertex(apexPoint)
	base := make([]topology.VertexID, n)
	for i := range n {
		x, y := ringPoint(baseCenter, baseRadius, i, n)
		base[i] = s.AddVertex(geom.Point3{X: x, Y: y, Z: baseCenter.Z})
	}
	baseEdges := ringEdges(s, base)
	sideEdges := make([]topology.EdgeID, n)
	for i, v := range base {
		sideEdges[i] = s.AddEdge(apex, v)
	}

	shell := s.AddShell()
	addFace(s, shell, curve.Planar{Normal: negZ}, reversedRing(baseEdges))

	side := curve.Conical{Apex: apexPoint, Axis: geom.ZAxis, HalfAngle: math.Atan(baseRadius / height)}
	for i := range n {
		next := (i + 1) % n
		addFace(s, shell, side, topology.NewLoop(
			topology.Fwd(sideEdges[i]),
			topology.Fwd(baseEdges[i]),
			topology.Rev(sideEdges[next]),
		))
	}
	s.CloseShell(shell)
	return s
}

func addFace(s *topology.Solid, shell topology.ShellID, surface curve.Surface, loop topology.Loop) topology.FaceID {
	f := s.AddFace(surface)
	s.SetOuterLoop(f, loop)
	s.AddFaceToShell(shell, f)
	return f
}

func ringPoint(center geom.Point3, radius float64, i, n int) (x, y float64) {
	angle := 2 * math.Pi * float64(i) / float64(n)
	return center.X + radius*math.Cos(angle), center.Y + radius*math.Sin(angle)
}

// ringEdges joins ring[i] to ring[i+1], wrapping around.
func ringEdges(s *topology.Solid, ring []topology.VertexID) []topology.EdgeID {
	edges := make([]topology.EdgeID, len(ring))
	for i := range ring {
		edges[i] = s.AddEdge(ring[i], ring[(i+1)%len(ring)])
	}
	return edges
}

func forwardRing(edges []topology.EdgeID) topology.Loop {
	var l topology.Loop
	for _, e := range edges {
		l.Add(e, true)
	}
	return l
}

// reversedRing walks a counter-clockwise ring clockwise, for faces that
// look down -Z.
func reversedRing(edges []topology.EdgeID) topology.Loop {
	var l topology.Loop
	for i := len(edges) - 1; i >= 0; i-- {
		l.Add(edges[i], false)
	}
	return l
}
