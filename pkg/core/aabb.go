package core

import "math"

// AABB represents an axis-aligned bounding box. The zero value from
// NewEmptyAABB is the empty box (Min=+Inf, Max=-Inf), which is also how
// objects that occupy no region of space report their bounds.
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// NewEmptyAABB creates the empty (invalid) bounding box
func NewEmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{
		Min: NewVec3(inf, inf, inf),
		Max: NewVec3(-inf, -inf, -inf),
	}
}

// IsEmpty reports whether the box contains no points
func (aabb AABB) IsEmpty() bool {
	return aabb.Min.X > aabb.Max.X || aabb.Min.Y > aabb.Max.Y || aabb.Min.Z > aabb.Max.Z
}

// Union returns the smallest box containing both boxes
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: NewVec3(
			math.Min(aabb.Min.X, other.Min.X),
			math.Min(aabb.Min.Y, other.Min.Y),
			math.Min(aabb.Min.Z, other.Min.Z),
		),
		Max: NewVec3(
			math.Max(aabb.Max.X, other.Max.X),
			math.Max(aabb.Max.Y, other.Max.Y),
			math.Max(aabb.Max.Z, other.Max.Z),
		),
	}
}

// Center returns the center point of the box
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// LongestAxis returns the index (0=X, 1=Y, 2=Z) of the longest extent
func (aabb AABB) LongestAxis() int {
	extent := aabb.Max.Subtract(aabb.Min)
	if extent.X >= extent.Y && extent.X >= extent.Z {
		return 0
	}
	if extent.Y >= extent.Z {
		return 1
	}
	return 2
}

// BoundingSphere returns the sphere centered on the box enclosing all of it.
// The empty box yields the zero-radius sphere.
func (aabb AABB) BoundingSphere() BoundingSphere {
	if aabb.IsEmpty() {
		return BoundingSphere{}
	}
	center := aabb.Center()
	return BoundingSphere{
		Center: center,
		Radius: aabb.Max.Subtract(center).Length(),
	}
}

// Hit tests if a ray intersects with this AABB using the slab method
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	mins := [3]float64{aabb.Min.X, aabb.Min.Y, aabb.Min.Z}
	maxs := [3]float64{aabb.Max.X, aabb.Max.Y, aabb.Max.Z}
	origins := [3]float64{ray.Origin.X, ray.Origin.Y, ray.Origin.Z}
	directions := [3]float64{ray.Direction.X, ray.Direction.Y, ray.Direction.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(directions[axis]) < 1e-12 {
			// Ray is parallel to this slab
			if origins[axis] < mins[axis] || origins[axis] > maxs[axis] {
				return false
			}
			continue
		}

		invDirection := 1.0 / directions[axis]
		t1 := (mins[axis] - origins[axis]) * invDirection
		t2 := (maxs[axis] - origins[axis]) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMax < tMin {
			return false
		}
	}
	return true
}
