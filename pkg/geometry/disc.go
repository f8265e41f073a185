package geometry

import (
	"math"

	"github.com/leroyvn/mitsuba2/pkg/core"
)

// Disc represents a circular disc in 3D space
type Disc struct {
	Center core.Vec3 // Center of the disc
	Normal core.Vec3 // Normal vector (pointing "up" from the disc)
	Radius float64   // Radius of the disc
	Right  core.Vec3 // Right vector (perpendicular to normal)
	Up     core.Vec3 // Up vector (perpendicular to normal and right)
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64) *Disc {
	n := normal.Normalize()
	right, up := core.CoordinateSystem(n)

	return &Disc{
		Center: center,
		Normal: n,
		Radius: radius,
		Right:  right,
		Up:     up,
	}
}

// Hit tests if a ray intersects with the disc
func (d *Disc) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-8 {
		return nil, false // Ray is parallel to disc
	}

	t := d.Normal.Dot(d.Center.Subtract(ray.Origin)) / denom
	if t < tMin || t > tMax {
		return nil, false
	}

	// Check if intersection point is within disc radius
	hitPoint := ray.At(t)
	if hitPoint.Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return nil, false
	}

	hit := &HitRecord{
		T:     t,
		Point: hitPoint,
	}
	hit.SetFaceNormal(ray, d.Normal)

	return hit, true
}

// BoundingBox returns the axis-aligned bounding box for this disc
func (d *Disc) BoundingBox() core.AABB {
	// Conservative: box of the enclosing sphere, padded against flatness
	extent := core.NewVec3(d.Radius+1e-8, d.Radius+1e-8, d.Radius+1e-8)
	return core.NewAABB(d.Center.Subtract(extent), d.Center.Add(extent))
}

// SamplePosition draws a point uniformly on the disc surface
func (d *Disc) SamplePosition(time float64, sample core.Vec2) PositionSample {
	offset := core.SamplePointInUnitDisk(sample)
	point := d.Center.
		Add(d.Right.Multiply(offset.X * d.Radius)).
		Add(d.Up.Multiply(offset.Y * d.Radius))

	return PositionSample{
		Point:  point,
		Normal: d.Normal,
		PDF:    1.0 / d.SurfaceArea(),
	}
}

// SurfaceArea returns the total surface area of the disc
func (d *Disc) SurfaceArea() float64 {
	return math.Pi * d.Radius * d.Radius
}
