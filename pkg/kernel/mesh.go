package kernel

import (
	"github.com/chazu/brep/pkg/geom"
	"github.com/chazu/brep/pkg/topology"
)

// Mesh is a triangle mesh suitable for rendering and export.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	// Faces records, per triangle, the B-Rep face it was cut from.
	Faces []topology.FaceID `json:"faces"`
	Name  string            `json:"name"`
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i as a point.
func (m *Mesh) Vertex(i uint32) geom.Point3 {
	return geom.Point3{
		X: float64(m.Vertices[3*i]),
		Y: float64(m.Vertices[3*i+1]),
		Z: float64(m.Vertices[3*i+2]),
	}
}

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c geom.Point3) {
	return m.Vertex(m.Indices[3*i]), m.Vertex(m.Indices[3*i+1]), m.Vertex(m.Indices[3*i+2])
}

// AddTriangle appends a flat-shaded triangle owned by face.
func (m *Mesh) AddTriangle(a, b, c geom.Point3, n geom.Vector3, face topology.FaceID) {
	base := uint32(m.VertexCount())
	for _, p := range [3]geom.Point3{a, b, c} {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	m.Indices = append(m.Indices, base, base+1, base+2)
	m.Faces = append(m.Faces, face)
}
