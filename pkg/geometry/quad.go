package geometry

import (
	"math"

	"github.com/leroyvn/mitsuba2/pkg/core"
)

// Quad represents a rectangular surface defined by a corner and two edge vectors
type Quad struct {
	Corner core.Vec3 // One corner of the quad
	U      core.Vec3 // First edge vector
	V      core.Vec3 // Second edge vector
	Normal core.Vec3 // Normal vector (computed from U × V)
	D      float64   // Plane equation constant: ax + by + cz = d
	W      core.Vec3 // Cached cross product for barycentric coordinates
	area   float64   // Cached surface area |U × V|
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3) *Quad {
	cross := u.Cross(v)
	normal := cross.Normalize()

	return &Quad{
		Corner: corner,
		U:      u,
		V:      v,
		Normal: normal,
		D:      normal.Dot(corner),
		W:      normal.Multiply(1.0 / normal.Dot(cross)),
		area:   cross.Length(),
	}
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the quad plane
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	// Check if hit point is within the quad bounds using barycentric coordinates
	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))
	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return nil, false
	}

	hit := &HitRecord{
		T:     t,
		Point: hitPoint,
	}
	hit.SetFaceNormal(ray, q.Normal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this quad
func (q *Quad) BoundingBox() core.AABB {
	corners := [4]core.Vec3{
		q.Corner,
		q.Corner.Add(q.U),
		q.Corner.Add(q.V),
		q.Corner.Add(q.U).Add(q.V),
	}

	box := core.NewAABB(corners[0], corners[0])
	for _, c := range corners[1:] {
		box = box.Union(core.NewAABB(c, c))
	}

	// Pad flat axes so the slab test stays reliable
	padding := core.NewVec3(1e-8, 1e-8, 1e-8)
	return core.NewAABB(box.Min.Subtract(padding), box.Max.Add(padding))
}

// SamplePosition draws a point uniformly on the quad surface
func (q *Quad) SamplePosition(time float64, sample core.Vec2) PositionSample {
	return PositionSample{
		Point:  q.Corner.Add(q.U.Multiply(sample.X)).Add(q.V.Multiply(sample.Y)),
		Normal: q.Normal,
		PDF:    1.0 / q.area,
	}
}

// SurfaceArea returns the total surface area of the quad
func (q *Quad) SurfaceArea() float64 {
	return q.area
}
