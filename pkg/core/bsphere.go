package core

// BoundingSphere represents a sphere enclosing a set of points, typically the
// whole scene. A radius of zero marks the sphere as unset: sensors use this
// to detect ray generation before a scene has been attached.
type BoundingSphere struct {
	Center Vec3
	Radius float64
}

// NewBoundingSphere creates a new bounding sphere
func NewBoundingSphere(center Vec3, radius float64) BoundingSphere {
	return BoundingSphere{Center: center, Radius: radius}
}

// IsValid reports whether the sphere has a positive radius
func (bs BoundingSphere) IsValid() bool {
	return bs.Radius > 0
}

// Contains reports whether the point lies inside or on the sphere
func (bs BoundingSphere) Contains(p Vec3) bool {
	return p.Subtract(bs.Center).LengthSquared() <= bs.Radius*bs.Radius
}
