package geometry

import "github.com/leroyvn/mitsuba2/pkg/core"

// HitRecord contains information about a ray-surface intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal at intersection
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Multiply(-1)
	}
}

// Shape interface for objects that can be hit by rays
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool)
	BoundingBox() core.AABB
}

// PositionSample describes a point sampled on a surface. PDF is expressed in
// the per-unit-area measure over the surface.
type PositionSample struct {
	Point  core.Vec3
	Normal core.Vec3
	PDF    float64
}

// AreaSampler is the capability of sampling points on a surface. Shapes
// implementing it can serve as ray targets for sensors that aim rays at
// geometry.
type AreaSampler interface {
	// SamplePosition draws a surface point from the shape at the given time
	SamplePosition(time float64, sample core.Vec2) PositionSample

	// SurfaceArea returns the total surface area of the shape
	SurfaceArea() float64
}
