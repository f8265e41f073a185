package geometry

import "github.com/leroyvn/mitsuba2/pkg/core"

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape // Multiple shapes for leaf nodes (nil for internal nodes)
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object
// intersection. Center and Radius describe the bounding sphere of the whole
// tree; an empty tree has radius 0.
type BVH struct {
	Root   *BVHNode
	Center core.Vec3
	Radius float64
}

// Leaf threshold: if we have this many or fewer shapes, store them in a leaf node
const leafThreshold = 8

// NewBVH constructs a BVH from a slice of shapes
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}

	// Copy the shapes slice so concurrent builders don't race on reordering
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	root := buildBVH(shapesCopy)
	sphere := root.BoundingBox.BoundingSphere()

	return &BVH{
		Root:   root,
		Center: sphere.Center,
		Radius: sphere.Radius,
	}
}

// buildBVH recursively builds the BVH using median splits along the longest
// axis of the node bounds
func buildBVH(shapes []Shape) *BVHNode {
	boundingBox := shapes[0].BoundingBox()
	for _, shape := range shapes[1:] {
		boundingBox = boundingBox.Union(shape.BoundingBox())
	}

	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	axis := boundingBox.LongestAxis()
	splitPos := axisValue(boundingBox.Center(), axis)

	var leftShapes, rightShapes []Shape
	for _, shape := range shapes {
		if axisValue(shape.BoundingBox().Center(), axis) < splitPos {
			leftShapes = append(leftShapes, shape)
		} else {
			rightShapes = append(rightShapes, shape)
		}
	}

	// Degenerate split, keep everything in one leaf
	if len(leftShapes) == 0 || len(rightShapes) == 0 {
		return &BVHNode{BoundingBox: boundingBox, Shapes: shapes}
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(leftShapes),
		Right:       buildBVH(rightShapes),
	}
}

func axisValue(v core.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Hit tests if a ray intersects any shape in the BVH, returning the closest
// intersection
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	return hitNode(bvh.Root, ray, tMin, tMax)
}

// hitNode recursively tests ray intersection with BVH nodes
func hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (*HitRecord, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return nil, false
	}

	// Leaf node: linear search over its shapes
	if node.Shapes != nil {
		var closest *HitRecord
		closestSoFar := tMax
		for _, shape := range node.Shapes {
			if hit, ok := shape.Hit(ray, tMin, closestSoFar); ok {
				closest = hit
				closestSoFar = hit.T
			}
		}
		return closest, closest != nil
	}

	// Internal node: visit both children, keep the closer hit
	leftHit, leftOk := hitNode(node.Left, ray, tMin, tMax)
	if leftOk {
		tMax = leftHit.T
	}
	rightHit, rightOk := hitNode(node.Right, ray, tMin, tMax)
	if rightOk {
		return rightHit, true
	}
	return leftHit, leftOk
}
