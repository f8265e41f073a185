// Package scene holds the scene container shared by sensors and tracers:
// the shape list, its acceleration structure, and the world bounds derived
// from it.
package scene

import (
	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/geometry"
)

// Scene contains the geometry visible to sensors and tracers
type Scene struct {
	Shapes []geometry.Shape
	BVH    *geometry.BVH // Acceleration structure, built by Preprocess
}

// NewScene creates a scene from a list of shapes and builds its
// acceleration structure
func NewScene(shapes ...geometry.Shape) *Scene {
	s := &Scene{Shapes: shapes}
	s.Preprocess()
	return s
}

// Preprocess rebuilds the acceleration structure and world bounds.
// Must be called again after the shape list changes.
func (s *Scene) Preprocess() {
	s.BVH = geometry.NewBVH(s.Shapes)
}

// Hit tests a ray against all shapes in the scene
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*geometry.HitRecord, bool) {
	if s.BVH == nil {
		return nil, false
	}
	return s.BVH.Hit(ray, tMin, tMax)
}

// BoundingSphere returns the sphere enclosing all scene geometry.
// An empty or unpreprocessed scene yields a zero-radius sphere.
func (s *Scene) BoundingSphere() core.BoundingSphere {
	if s.BVH == nil {
		return core.BoundingSphere{}
	}
	return core.NewBoundingSphere(s.BVH.Center, s.BVH.Radius)
}
