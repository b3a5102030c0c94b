package sketch

import (
	"math"

	"github.com/chazu/brep/pkg/geom"
)

// Circumcenter returns the centre of the circle through three points. It
// fails for collinear or nearly collinear points.
func Circumcenter(p1, p2, p3 geom.Point2) (geom.Point2, bool) {
	d := 2 * (p1.X*(p2.Y-p3.Y) + p2.X*(p3.Y-p1.Y) + p3.X*(p1.Y-p2.Y))
	if math.Abs(d) < 1e-8 {
		return geom.Point2{}, false
	}
	s1 := p1.X*p1.X + p1.Y*p1.Y
	s2 := p2.X*p2.X + p2.Y*p2.Y
	s3 := p3.X*p3.X + p3.Y*p3.Y
	return geom.Point2{
		X: (s1*(p2.Y-p3.Y) + s2*(p3.Y-p1.Y) + s3*(p1.Y-p2.Y)) / d,
		Y: (s1*(p3.X-p2.X) + s2*(p1.X-p3.X) + s3*(p2.X-p1.X)) / d,
	}, true
}

// Orient2D is twice the signed area of triangle abc; positive for a
// counter-clockwise turn.
func Orient2D(a, b, c geom.Point2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// ArcSweep returns the angles of an arc's start and end around its center
// and the signed sweep between them. The sweep is positive for CCW arcs and
// negative otherwise, with magnitude in [0, 2π).
func ArcSweep(center, start, end geom.Point2, ccw bool) (startAngle, sweep float64) {
	startAngle = math.Atan2(start.Y-center.Y, start.X-center.X)
	endAngle := math.Atan2(end.Y-center.Y, end.X-center.X)
	sweep = endAngle - startAngle
	if ccw {
		if sweep < 0 {
			sweep += 2 * math.Pi
		}
	} else {
		if sweep > 0 {
			sweep -= 2 * math.Pi
		}
	}
	return startAngle, sweep
}
