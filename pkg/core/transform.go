package core

import "math"

// Transform represents an affine transformation as a 4x4 row-major matrix
// with an implicit (0,0,0,1) bottom row behavior for points and vectors.
type Transform struct {
	m [4][4]float64
}

// IdentityTransform returns the identity transformation
func IdentityTransform() Transform {
	var t Transform
	for i := 0; i < 4; i++ {
		t.m[i][i] = 1
	}
	return t
}

// NewTransform creates a transformation from an explicit 4x4 matrix
func NewTransform(m [4][4]float64) Transform {
	return Transform{m: m}
}

// LookAt builds the transformation mapping the local frame to world space so
// that the local +Z axis points from origin toward target, with the local +Y
// axis aligned as closely as possible with up.
func LookAt(origin, target, up Vec3) Transform {
	dir := target.Subtract(origin).Normalize()
	left := up.Cross(dir).Normalize()
	newUp := dir.Cross(left)

	return Transform{m: [4][4]float64{
		{left.X, newUp.X, dir.X, origin.X},
		{left.Y, newUp.Y, dir.Y, origin.Y},
		{left.Z, newUp.Z, dir.Z, origin.Z},
		{0, 0, 0, 1},
	}}
}

// ApplyPoint transforms a point, including translation
func (t Transform) ApplyPoint(p Vec3) Vec3 {
	return Vec3{
		X: t.m[0][0]*p.X + t.m[0][1]*p.Y + t.m[0][2]*p.Z + t.m[0][3],
		Y: t.m[1][0]*p.X + t.m[1][1]*p.Y + t.m[1][2]*p.Z + t.m[1][3],
		Z: t.m[2][0]*p.X + t.m[2][1]*p.Y + t.m[2][2]*p.Z + t.m[2][3],
	}
}

// ApplyVector transforms a direction vector, ignoring translation
func (t Transform) ApplyVector(v Vec3) Vec3 {
	return Vec3{
		X: t.m[0][0]*v.X + t.m[0][1]*v.Y + t.m[0][2]*v.Z,
		Y: t.m[1][0]*v.X + t.m[1][1]*v.Y + t.m[1][2]*v.Z,
		Z: t.m[2][0]*v.X + t.m[2][1]*v.Y + t.m[2][2]*v.Z,
	}
}

// CoordinateSystem builds an arbitrary but consistent orthonormal frame
// (s, t) perpendicular to the given unit vector n
func CoordinateSystem(n Vec3) (Vec3, Vec3) {
	var helper Vec3
	if math.Abs(n.X) > 0.1 {
		helper = NewVec3(0, 1, 0)
	} else {
		helper = NewVec3(1, 0, 0)
	}

	s := helper.Cross(n).Normalize()
	t := n.Cross(s)
	return s, t
}

// AnimatedTransform is a transformation that may vary over time. Most
// instances are static; the two-keyframe form interpolates the matrices
// component-wise, which is adequate for the small motions sensors use.
type AnimatedTransform struct {
	start, end Transform
	t0, t1     float64
	animated   bool
}

// NewAnimatedTransform wraps a static transformation
func NewAnimatedTransform(t Transform) *AnimatedTransform {
	return &AnimatedTransform{start: t, end: t}
}

// NewAnimatedTransformLerp creates a transformation interpolating between two
// keyframes over the time interval [t0, t1]
func NewAnimatedTransformLerp(start, end Transform, t0, t1 float64) *AnimatedTransform {
	return &AnimatedTransform{start: start, end: end, t0: t0, t1: t1, animated: t1 > t0}
}

// Eval returns the transformation at the given time value
func (at *AnimatedTransform) Eval(time float64) Transform {
	if !at.animated {
		return at.start
	}

	s := (time - at.t0) / (at.t1 - at.t0)
	s = math.Max(0, math.Min(1, s))

	var result Transform
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			result.m[i][j] = at.start.m[i][j]*(1-s) + at.end.m[i][j]*s
		}
	}
	return result
}
