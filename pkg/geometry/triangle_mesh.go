package geometry

import (
	"math"
	"sort"

	"github.com/leroyvn/mitsuba2/pkg/core"
)

// Triangle represents a single triangle with explicit vertices
type Triangle struct {
	V0, V1, V2 core.Vec3
}

// Normal returns the geometric normal of the triangle
func (t Triangle) Normal() core.Vec3 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	return 0.5 * t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length()
}

// Hit tests ray-triangle intersection using the Möller-Trumbore algorithm
func (t Triangle) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < 1e-12 {
		return nil, false // Ray parallel to triangle plane
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return nil, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return nil, false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit > tMax {
		return nil, false
	}

	hit := &HitRecord{
		T:     tHit,
		Point: ray.At(tHit),
	}
	hit.SetFaceNormal(ray, t.Normal())

	return hit, true
}

// TriangleMesh represents an indexed triangle mesh. It supports both ray
// intersection and uniform area sampling over its surface, so it can serve
// as a ray target or ray origin shape for sensors.
type TriangleMesh struct {
	Triangles []Triangle

	bounds   core.AABB
	cumAreas []float64 // Cumulative triangle areas for area-weighted sampling
	area     float64
}

// NewTriangleMesh creates a mesh from a vertex buffer and a flat index buffer
// (three indices per triangle). Degenerate (zero-area) triangles are dropped.
func NewTriangleMesh(vertices []core.Vec3, indices []int) *TriangleMesh {
	mesh := &TriangleMesh{bounds: core.NewEmptyAABB()}

	for i := 0; i+2 < len(indices); i += 3 {
		tri := Triangle{
			V0: vertices[indices[i]],
			V1: vertices[indices[i+1]],
			V2: vertices[indices[i+2]],
		}
		area := tri.Area()
		if area == 0 {
			continue
		}

		mesh.Triangles = append(mesh.Triangles, tri)
		mesh.area += area
		mesh.cumAreas = append(mesh.cumAreas, mesh.area)

		for _, v := range [3]core.Vec3{tri.V0, tri.V1, tri.V2} {
			mesh.bounds = mesh.bounds.Union(core.NewAABB(v, v))
		}
	}

	return mesh
}

// Hit tests if a ray intersects any triangle of the mesh, returning the
// closest intersection
func (m *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	if !m.bounds.Hit(ray, tMin, tMax) {
		return nil, false
	}

	var closest *HitRecord
	closestSoFar := tMax

	for _, tri := range m.Triangles {
		if hit, ok := tri.Hit(ray, tMin, closestSoFar); ok {
			closest = hit
			closestSoFar = hit.T
		}
	}

	return closest, closest != nil
}

// BoundingBox returns the axis-aligned bounding box for this mesh
func (m *TriangleMesh) BoundingBox() core.AABB {
	return m.bounds
}

// SamplePosition draws a point uniformly over the mesh surface: the triangle
// is selected proportionally to its area, then a point is drawn uniformly
// inside it
func (m *TriangleMesh) SamplePosition(time float64, sample core.Vec2) PositionSample {
	if len(m.Triangles) == 0 {
		return PositionSample{}
	}

	// Reuse sample.X for triangle selection by rescaling it to the
	// selected triangle's area interval
	target := sample.X * m.area
	idx := sort.SearchFloat64s(m.cumAreas, target)
	if idx >= len(m.Triangles) {
		idx = len(m.Triangles) - 1
	}

	lo := 0.0
	if idx > 0 {
		lo = m.cumAreas[idx-1]
	}
	u1 := (target - lo) / (m.cumAreas[idx] - lo)

	// Uniform barycentric sampling
	su := math.Sqrt(u1)
	b0 := 1 - su
	b1 := sample.Y * su

	tri := m.Triangles[idx]
	point := tri.V0.Multiply(b0).
		Add(tri.V1.Multiply(b1)).
		Add(tri.V2.Multiply(1 - b0 - b1))

	return PositionSample{
		Point:  point,
		Normal: tri.Normal(),
		PDF:    1.0 / m.area,
	}
}

// SurfaceArea returns the total surface area of the mesh
func (m *TriangleMesh) SurfaceArea() float64 {
	return m.area
}
