package core

// RayEpsilon is the tolerance used when inflating bounding volumes and
// validating reconstruction filter radii, keeping boundary points strictly
// inside the volumes they were sampled on.
const RayEpsilon = 1e-4

// Ray represents a ray with an origin, direction and associated time value.
// The time value selects the scene state for time-varying transforms.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Time      float64
}

// NewRay creates a new ray at time zero
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction}
}

// NewRayAt creates a new ray with an explicit time value
func NewRayAt(origin, direction Vec3, time float64) Ray {
	return Ray{Origin: origin, Direction: direction, Time: time}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// RayDifferential is a ray augmented with offset rays for the neighboring
// film samples. HasDifferentials is false when the generating sensor cannot
// provide them; consumers must check the flag before using the offsets.
type RayDifferential struct {
	Ray
	HasDifferentials bool
	OriginX, OriginY Vec3
	DirX, DirY       Vec3
}
