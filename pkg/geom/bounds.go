package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// BoundingBox3 is an axis-aligned box. The empty box has Min at +Inf and
// Max at -Inf so that expanding it by any point yields that point.
type BoundingBox3 = sdf.Box3

// EmptyBounds returns the identity element for Expand and UnionBounds.
func EmptyBounds() BoundingBox3 {
	inf := math.Inf(1)
	return BoundingBox3{
		Min: Point3{X: inf, Y: inf, Z: inf},
		Max: Point3{X: -inf, Y: -inf, Z: -inf},
	}
}

// BoundsFromPoints returns the tightest box containing pts.
func BoundsFromPoints(pts []Point3) BoundingBox3 {
	b := EmptyBounds()
	for _, p := range pts {
		b = Expand(b, p)
	}
	return b
}

// Expand grows b to include p.
func Expand(b BoundingBox3, p Point3) BoundingBox3 {
	return BoundingBox3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// UnionBounds returns the smallest box containing a and b.
func UnionBounds(a, b BoundingBox3) BoundingBox3 {
	return BoundingBox3{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// IsEmptyBounds reports whether b contains no points.
func IsEmptyBounds(b BoundingBox3) bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// BoundsContain reports whether p lies inside b, inclusive.
func BoundsContain(b BoundingBox3, p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// BoundsIntersect reports whether a and b overlap, touching included.
func BoundsIntersect(a, b BoundingBox3) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// BoundsCenter returns the midpoint of b.
func BoundsCenter(b BoundingBox3) Point3 {
	return Lerp(b.Min, b.Max, 0.5)
}

// BoundsSize returns the extent of b along each axis.
func BoundsSize(b BoundingBox3) Vector3 {
	return b.Max.Sub(b.Min)
}
