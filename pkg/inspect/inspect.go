// Package inspect answers aggregate questions about a solid: whether it is
// a closed manifold, how much volume it encloses and how much surface it
// has.
//
// Volume and area treat every face as the planar polygon formed by its
// outer loop. Holes and curved surfaces are ignored, and a face with fewer
// than three loop vertices contributes nothing.
package inspect

import (
	"math"

	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/topology"
)

// IsManifold reports whether every edge is shared by exactly two faces and
// every shell is marked closed.
func IsManifold(s *topology.Solid) bool {
	for _, e := range s.Edges {
		if len(e.Faces) != 2 {
			return false
		}
	}
	for _, sh := range s.Shells {
		if !sh.IsClosed {
			return false
		}
	}
	return true
}

// Volume returns the enclosed volume by summing signed tetrahedra from the
// origin over a fan triangulation of each face.
func Volume(s *topology.Solid) float64 {
	return math.Abs(SignedVolume(s))
}

// SignedVolume is Volume without the absolute value. It is negative when
// the outer loops wind inward.
func SignedVolume(s *topology.Solid) float64 {
	var total float64
	for _, f := range s.Faces {
		pts := s.LoopPoints(f.OuterLoop)
		if len(pts) < 3 {
			continue
		}
		v0 := pts[0]
		for i := 1; i+1 < len(pts); i++ {
			total += v0.Dot(pts[i].Cross(pts[i+1])) / 6
		}
	}
	return total
}

// SurfaceArea returns the summed area of each face's fan triangulation.
func SurfaceArea(s *topology.Solid) float64 {
	var total float64
	for _, f := range s.Faces {
		total += PolygonArea(s.LoopPoints(f.OuterLoop))
	}
	return total
}

// PolygonArea is the fan-triangulated area of a planar polygon.
func PolygonArea(pts []geom.Point3) float64 {
	if len(pts) < 3 {
		return 0
	}
	var area float64
	v0 := pts[0]
	for i := 1; i+1 < len(pts); i++ {
		area += pts[i].Sub(v0).Cross(pts[i+1].Sub(v0)).Length() / 2
	}
	return area
}

// Centroid returns the mean of all vertex positions. It is the origin for
// an empty solid.
func Centroid(s *topology.Solid) geom.Point3 {
	if len(s.Vertices) == 0 {
		return geom.Point3{}
	}
	var sum geom.Point3
	for _, v := range s.Vertices {
		sum = sum.Add(v.Point)
	}
	return sum.MulScalar(1 / float64(len(s.Vertices)))
}

// Summary is the set of derived figures reported for a solid.
type Summary struct {
	Vertices    int               `json:"vertices" yaml:"vertices"`
	Edges       int               `json:"edges" yaml:"edges"`
	Faces       int               `json:"faces" yaml:"faces"`
	Shells      int               `json:"shells" yaml:"shells"`
	Valid       bool              `json:"valid" yaml:"valid"`
	Manifold    bool              `json:"manifold" yaml:"manifold"`
	Volume      float64           `json:"volume" yaml:"volume"`
	SurfaceArea float64           `json:"surface_area" yaml:"surface_area"`
	Bounds      geom.BoundingBox3 `json:"bounds" yaml:"bounds"`
}

// Summarize computes every figure in Summary. It fills the bounds cache of
// s.
func Summarize(s *topology.Solid) Summary {
	return Summary{
		Vertices:    len(s.Vertices),
		Edges:       len(s.Edges),
		Faces:       len(s.Faces),
		Shells:      len(s.Shells),
		Valid:       s.IsValid(),
		Manifold:    IsManifold(s),
		Volume:      Volume(s),
		SurfaceArea: SurfaceArea(s),
		Bounds:      s.BoundingBox(),
	}
}
