// Package sketch holds 2D sketch geometry: points on a sketch plane and
// the lines, arcs and circles that reference them.
package sketch

import (
	"fmt"

	"github.com/chazu/brep/pkg/geom"
)

// Plane is the model plane a sketch is drawn on.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneYZ
	PlaneXZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneYZ:
		return "yz"
	case PlaneXZ:
		return "xz"
	default:
		return fmt.Sprintf("Plane(%d)", int(p))
	}
}

// ParsePlane accepts "xy", "yz" or "xz".
func ParsePlane(s string) (Plane, error) {
	switch s {
	case "xy", "XY":
		return PlaneXY, nil
	case "yz", "YZ":
		return PlaneYZ, nil
	case "xz", "XZ":
		return PlaneXZ, nil
	}
	return 0, fmt.Errorf("unknown sketch plane %q", s)
}

// PointID is the index of a point in its sketch.
type PointID uint32

// EntityID identifies an entity in its sketch.
type EntityID uint32

// Point is a sketch point. Construction points guide the drawing but are
// not part of the profile.
type Point struct {
	ID           PointID
	Position     geom.Point2
	Construction bool
}

// Entity is a piece of sketch geometry. Concrete types are Line, Arc,
// Circle and PointEntity.
type Entity interface {
	EntityID() EntityID
	entity()
}

// Line is the segment between two points.
type Line struct {
	ID    EntityID
	Start PointID
	End   PointID
}

// Arc runs from Start to End around Center. CCW means counter-clockwise
// in sketch coordinates.
type Arc struct {
	ID     EntityID
	Center PointID
	Start  PointID
	End    PointID
	Radius float64
	CCW    bool
}

// Circle is a full circle.
type Circle struct {
	ID     EntityID
	Center PointID
	Radius float64
}

// PointEntity places a standalone point in the profile.
type PointEntity struct {
	ID    EntityID
	Point PointID
}

func (e Line) EntityID() EntityID        { return e.ID }
func (e Arc) EntityID() EntityID         { return e.ID }
func (e Circle) EntityID() EntityID      { return e.ID }
func (e PointEntity) EntityID() EntityID { return e.ID }

func (Line) entity()        {}
func (Arc) entity()         {}
func (Circle) entity()      {}
func (PointEntity) entity() {}

// Sketch is a set of points and entities on one plane.
type Sketch struct {
	Plane    Plane
	Points   []Point
	Entities []Entity
	Solved   bool
}

// New returns an empty sketch on plane.
func New(plane Plane) *Sketch {
	return &Sketch{Plane: plane}
}

// AddPoint appends a point and returns its id.
func (s *Sketch) AddPoint(p geom.Point2) PointID {
	id := PointID(len(s.Points))
	s.Points = append(s.Points, Point{ID: id, Position: p})
	return id
}

// AddConstructionPoint appends a construction point.
func (s *Sketch) AddConstructionPoint(p geom.Point2) PointID {
	id := s.AddPoint(p)
	s.Points[id].Construction = true
	return id
}

// AddEntity appends e as given and returns its id. Callers choosing their
// own ids are responsible for keeping them unique.
func (s *Sketch) AddEntity(e Entity) EntityID {
	s.Entities = append(s.Entities, e)
	return e.EntityID()
}

func (s *Sketch) nextEntityID() EntityID {
	return EntityID(len(s.Entities))
}

// AddLine appends a line between two existing points.
func (s *Sketch) AddLine(start, end PointID) EntityID {
	return s.AddEntity(Line{ID: s.nextEntityID(), Start: start, End: end})
}

// AddCircle appends a circle.
func (s *Sketch) AddCircle(center PointID, radius float64) EntityID {
	return s.AddEntity(Circle{ID: s.nextEntityID(), Center: center, Radius: radius})
}

// AddArc appends an arc. The radius is taken from the center-to-start
// distance.
func (s *Sketch) AddArc(center, start, end PointID, ccw bool) EntityID {
	var r float64
	if c, p := s.Point(center), s.Point(start); c != nil && p != nil {
		r = p.Position.Sub(c.Position).Length()
	}
	return s.AddEntity(Arc{ID: s.nextEntityID(), Center: center, Start: start, End: end, Radius: r, CCW: ccw})
}

// AddPointEntity marks an existing point as part of the profile.
func (s *Sketch) AddPointEntity(p PointID) EntityID {
	return s.AddEntity(PointEntity{ID: s.nextEntityID(), Point: p})
}

// Point returns the point with the given id, or nil.
func (s *Sketch) Point(id PointID) *Point {
	if int(id) >= len(s.Points) {
		return nil
	}
	return &s.Points[id]
}

// Position returns the position of a point.
func (s *Sketch) Position(id PointID) (geom.Point2, bool) {
	p := s.Point(id)
	if p == nil {
		return geom.Point2{}, false
	}
	return p.Position, true
}

// Entity returns the entity with the given id, or nil.
func (s *Sketch) Entity(id EntityID) Entity {
	for _, e := range s.Entities {
		if e.EntityID() == id {
			return e
		}
	}
	return nil
}

// EntitiesWithPoint returns the ids of every entity that references p.
func (s *Sketch) EntitiesWithPoint(p PointID) []EntityID {
	var ids []EntityID
	for _, e := range s.Entities {
		if References(e, p) {
			ids = append(ids, e.EntityID())
		}
	}
	return ids
}

// References reports whether e uses point p.
func References(e Entity, p PointID) bool {
	switch e := e.(type) {
	case Line:
		return e.Start == p || e.End == p
	case Arc:
		return e.Center == p || e.Start == p || e.End == p
	case Circle:
		return e.Center == p
	case PointEntity:
		return e.Point == p
	}
	return false
}

// To3D lifts a sketch point into model space.
func (s *Sketch) To3D(p geom.Point2) geom.Point3 {
	switch s.Plane {
	case PlaneYZ:
		return geom.Point3{Y: p.X, Z: p.Y}
	case PlaneXZ:
		return geom.Point3{X: p.X, Z: p.Y}
	default:
		return geom.Point3{X: p.X, Y: p.Y}
	}
}

// From3D projects a model point onto the sketch plane.
func (s *Sketch) From3D(p geom.Point3) geom.Point2 {
	switch s.Plane {
	case PlaneYZ:
		return geom.Point2{X: p.Y, Y: p.Z}
	case PlaneXZ:
		return geom.Point2{X: p.X, Y: p.Z}
	default:
		return geom.Point2{X: p.X, Y: p.Y}
	}
}

// Normal is the model-space normal of the sketch plane.
func (s *Sketch) Normal() geom.Vector3 {
	switch s.Plane {
	case PlaneYZ:
		return geom.XAxis
	case PlaneXZ:
		return geom.YAxis
	default:
		return geom.ZAxis
	}
}

// Lines returns every Line entity in order.
func (s *Sketch) Lines() []Line {
	var lines []Line
	for _, e := range s.Entities {
		if l, ok := e.(Line); ok {
			lines = append(lines, l)
		}
	}
	return lines
}
