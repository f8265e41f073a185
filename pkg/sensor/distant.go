package sensor

import (
	"fmt"
	"math"

	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/geometry"
	"github.com/leroyvn/mitsuba2/pkg/scene"
)

// DistantSensor records radiance arriving from a single distant direction,
// as if measuring illumination from an infinitely far away source. Sampled
// rays travel toward the configured direction (or away from it when
// FlipDirections is set) and are aimed and positioned according to the
// resolved target and origin strategies:
//
//   - RayTarget unset: target points are sampled uniformly on the cross
//     section of the scene's bounding sphere.
//   - RayTarget a point: rays aim at that fixed point.
//   - RayTarget a surface-sampleable shape: target points are sampled on its
//     surface.
//   - RayOrigin unset: origins are placed algebraically outside the scene's
//     bounding sphere.
//   - RayOrigin a shape: origins are found by projecting the target backward
//     along the ray direction onto that shape; when the projection misses,
//     the sample is invalid and carries zero weight.
//
// The film resolution selects how ray directions are drawn: a 1x1 film uses
// the single configured direction, an Nx1 film sweeps directions within the
// plane of the sensor axis and its up vector, and any other film samples the
// full hemisphere facing the axis.
type DistantSensor struct {
	worldTransform *core.AnimatedTransform
	film           *Film
	flip           bool
	mode           directionMode
	target         targetStrategy
	origin         originStrategy

	// Written once by SetScene before any sampling; radius 0 means unbound
	bsphere core.BoundingSphere
}

// DistantConfig is the configuration surface of the distant sensor.
type DistantConfig struct {
	// ToWorld places the sensor frame in the world; exclusive with Direction
	ToWorld *core.AnimatedTransform

	// Direction orients the sensor's reference hemisphere; exclusive with
	// ToWorld. Orientation optionally controls the frame's up vector as
	// up = normalize(direction × orientation); without it an arbitrary
	// consistent perpendicular frame is used.
	Direction   *core.Vec3
	Orientation *core.Vec3

	// FlipDirections reverses sampled ray directions. Default: false
	FlipDirections bool

	// RayTarget selects the target strategy: nil, a core.Vec3 point, or a
	// geometry.AreaSampler shape
	RayTarget interface{}

	// RayOrigin selects the origin strategy: nil or a geometry.Shape
	RayOrigin interface{}

	// Film is required; its resolution drives direction sampling
	Film *Film

	// Logger receives configuration warnings; may be nil
	Logger core.Logger
}

// directionMode selects how ray directions are sampled, derived from the
// film resolution at construction
type directionMode int

const (
	directionSingle     directionMode = iota // 1x1 film: fixed axis direction
	directionPlanar                          // Nx1 film: sweep in the axis/up plane
	directionHemisphere                      // NxM film: full hemisphere
)

func (m directionMode) String() string {
	switch m {
	case directionSingle:
		return "single"
	case directionPlanar:
		return "planar"
	default:
		return "hemisphere"
	}
}

// NewDistantSensor resolves the configuration into a specialized sensor.
// Configuration errors (conflicting transform parameters, unusable target or
// origin values, missing film) abort construction.
func NewDistantSensor(config DistantConfig) (*DistantSensor, error) {
	if config.Film == nil {
		return nil, fmt.Errorf("distant sensor: film is required")
	}

	d := &DistantSensor{
		film: config.Film,
		flip: config.FlipDirections,
	}

	// Resolve the world transform, possibly from a direction vector
	switch {
	case config.Direction != nil && config.ToWorld != nil:
		return nil, fmt.Errorf("distant sensor: only one of Direction and ToWorld may be specified")
	case config.Direction != nil:
		direction := config.Direction.Normalize()
		var up core.Vec3
		if config.Orientation != nil {
			up = direction.Cross(*config.Orientation).Normalize()
		} else {
			_, up = core.CoordinateSystem(direction)
		}
		d.worldTransform = core.NewAnimatedTransform(
			core.LookAt(core.Vec3{}, direction, up))
	case config.ToWorld != nil:
		d.worldTransform = config.ToWorld
	default:
		d.worldTransform = core.NewAnimatedTransform(core.IdentityTransform())
	}

	// Film resolution selects the direction sampling mode
	switch {
	case config.Film.Width == 1 && config.Film.Height == 1:
		d.mode = directionSingle
	case config.Film.Height == 1:
		d.mode = directionPlanar
		if config.Logger != nil {
			config.Logger.Printf("distant sensor: sampling directions in the axis plane")
		}
	default:
		d.mode = directionHemisphere
	}

	// Wide filters blend samples across direction-domain boundaries and
	// silently bias results
	if config.Film.Filter.Radius() > 0.5+core.RayEpsilon {
		if config.Logger != nil {
			config.Logger.Printf("distant sensor: reconstruction filter radius %g exceeds 0.5; "+
				"use a filter with radius 0.5 or lower (e.g. the default box filter)",
				config.Film.Filter.Radius())
		}
	}

	// Resolve the target strategy structurally: point literal first, then
	// surface-sampling capability
	switch target := config.RayTarget.(type) {
	case nil:
		d.target = diskTarget{}
	case core.Vec3:
		d.target = pointTarget{point: target}
	case geometry.AreaSampler:
		d.target = shapeTarget{shape: target}
	default:
		return nil, fmt.Errorf("distant sensor: RayTarget must be a core.Vec3 or a surface-sampleable shape, got %T", target)
	}

	// Resolve the origin strategy
	switch origin := config.RayOrigin.(type) {
	case nil:
		d.origin = bsphereOrigin{}
	case geometry.Shape:
		d.origin = shapeOrigin{shape: origin}
	default:
		return nil, fmt.Errorf("distant sensor: RayOrigin must be a ray-intersectable shape, got %T", origin)
	}

	return d, nil
}

// SetScene caches the scene's bounding sphere for origin and target
// placement. The radius is clamped to a small positive value and inflated so
// points on the mathematical sphere still test strictly inside. Must
// complete before concurrent sampling starts.
func (d *DistantSensor) SetScene(sc *scene.Scene) {
	bsphere := sc.BoundingSphere()
	bsphere.Radius = math.Max(core.RayEpsilon, bsphere.Radius*(1+core.RayEpsilon))
	d.bsphere = bsphere
}

// sampleContext carries the per-sample values shared by the target and
// origin strategies
type sampleContext struct {
	time      float64
	aperture  core.Vec2
	trafo     core.Transform
	direction core.Vec3 // World-space ray direction
	bsphere   core.BoundingSphere
}

// targetStrategy picks the point a generated ray is aimed at. Resolved once
// at construction; the per-sample path dispatches through the interface
// without re-inspecting the configuration.
type targetStrategy interface {
	// sampleTarget returns the target point, the scalar factor applied to
	// the spectral weight, and whether the sample is usable
	sampleTarget(ctx *sampleContext) (core.Vec3, float64, bool)

	// originClearance returns how many bounding-sphere radii the origin must
	// retreat along the ray to clear the scene geometry
	originClearance() float64

	describe() string
}

// originStrategy places the point a generated ray departs from
type originStrategy interface {
	// solveOrigin returns the ray origin and whether one could be found
	solveOrigin(ctx *sampleContext, target core.Vec3, clearance float64) (core.Vec3, bool)

	describe() string
}

// pointTarget aims every ray at one fixed point. The point is certain, so it
// contributes no density to the weight.
type pointTarget struct {
	point core.Vec3
}

func (t pointTarget) sampleTarget(ctx *sampleContext) (core.Vec3, float64, bool) {
	return t.point, 1.0, true
}

func (t pointTarget) originClearance() float64 { return 2 }

func (t pointTarget) describe() string {
	return fmt.Sprintf("point (%g, %g, %g)", t.point.X, t.point.Y, t.point.Z)
}

// shapeTarget samples target points on a surface. The weight converts the
// per-area density into a per-unit-area importance estimate.
//
// The surface foreshortening cosine against the ray direction is
// deliberately not applied here, while the targetless strategy divides by an
// analogous cosine. The asymmetry is preserved as found; whether it should
// be corrected is an open question.
type shapeTarget struct {
	shape geometry.AreaSampler
}

func (t shapeTarget) sampleTarget(ctx *sampleContext) (core.Vec3, float64, bool) {
	ps := t.shape.SamplePosition(ctx.time, ctx.aperture)
	if ps.PDF <= 0 {
		return ps.Point, 0, false
	}
	return ps.Point, 1.0 / (ps.PDF * t.shape.SurfaceArea()), true
}

func (t shapeTarget) originClearance() float64 { return 2 }

func (t shapeTarget) describe() string { return "shape" }

// diskTarget samples target points uniformly on the cross section of the
// scene's bounding sphere, perpendicular to the sensor axis. The cosine
// division compensates for the projection of the disk as seen along the
// sampled direction; when that cosine vanishes the weight degenerates and
// the sample is invalidated rather than carrying a non-finite weight.
type diskTarget struct{}

func (t diskTarget) sampleTarget(ctx *sampleContext) (core.Vec3, float64, bool) {
	if !ctx.bsphere.IsValid() {
		return core.Vec3{}, 0, false // Sensor not bound to a scene yet
	}

	offset := core.SamplePointInUnitDisk(ctx.aperture)
	perpOffset := ctx.trafo.ApplyVector(core.NewVec3(offset.X, offset.Y, 0))
	target := ctx.bsphere.Center.Add(perpOffset.Multiply(ctx.bsphere.Radius))

	cosTheta := ctx.direction.Negate().Dot(core.NewVec3(0, 0, 1))
	weight := 1.0 / cosTheta
	if math.IsInf(weight, 0) || math.IsNaN(weight) {
		return target, 0, false
	}
	return target, weight, true
}

// The disk already spans the sphere cross section, so one radius clears it
func (t diskTarget) originClearance() float64 { return 1 }

func (t diskTarget) describe() string { return "none" }

// shapeOrigin projects the target backward along the ray direction onto a
// shape. A missed projection is the designed soft-failure path: the sample
// comes back invalid, not an error.
type shapeOrigin struct {
	shape geometry.Shape
}

func (o shapeOrigin) solveOrigin(ctx *sampleContext, target core.Vec3, clearance float64) (core.Vec3, bool) {
	probe := core.NewRayAt(target, ctx.direction.Negate(), ctx.time)
	hit, ok := o.shape.Hit(probe, 0, math.Inf(1))
	if !ok {
		return core.Vec3{}, false
	}
	return hit.Point, true
}

func (o shapeOrigin) describe() string { return "shape" }

// bsphereOrigin retreats from the target along the ray by a multiple of the
// bounding-sphere radius. Purely algebraic, no intersection test.
type bsphereOrigin struct{}

func (o bsphereOrigin) solveOrigin(ctx *sampleContext, target core.Vec3, clearance float64) (core.Vec3, bool) {
	if !ctx.bsphere.IsValid() {
		return core.Vec3{}, false // Sensor not bound to a scene yet
	}
	return target.Subtract(ctx.direction.Multiply(clearance * ctx.bsphere.Radius)), true
}

func (o bsphereOrigin) describe() string { return "bounding_sphere" }

// SampleRay generates a world-space ray with importance weight. Pure with
// respect to the sensor state; safe for unsynchronized concurrent use after
// SetScene.
func (d *DistantSensor) SampleRay(time, wavelengthSample float64, filmSample, apertureSample core.Vec2) RaySample {
	// 1. Sample the spectrum
	wavelengths, wavWeight := core.SampleWavelengths(wavelengthSample)

	// 2. Sample the ray direction in the local frame and map it to world
	// space. Rays point toward the sensor axis unless flipped.
	trafo := d.worldTransform.Eval(time)

	v0 := core.NewVec3(0, 0, 1)
	switch d.mode {
	case directionHemisphere:
		v0 = core.SampleUniformHemisphere(filmSample)
	case directionPlanar:
		sinPhi, cosPhi := math.Sincos(math.Pi * filmSample.X)
		v0 = core.NewVec3(cosPhi, 0, sinPhi)
	}

	var direction core.Vec3
	if d.flip {
		direction = trafo.ApplyVector(v0)
	} else {
		direction = trafo.ApplyVector(v0.Negate())
	}

	ctx := sampleContext{
		time:      time,
		aperture:  apertureSample,
		trafo:     trafo,
		direction: direction,
		bsphere:   d.bsphere,
	}

	// 3. Sample the target point and its weight factor
	target, targetScale, valid := d.target.sampleTarget(&ctx)

	// 4. Solve for the origin point
	origin, originOK := d.origin.solveOrigin(&ctx, target, d.target.originClearance())
	valid = valid && originOK

	weight := wavWeight.Scale(targetScale)
	if !weight.IsFinite() {
		valid = false
	}
	if !valid {
		weight = core.Spectrum{}
	}

	return RaySample{
		Ray:         core.NewRayAt(origin, direction, time),
		Wavelengths: wavelengths,
		Weight:      weight,
		Valid:       valid,
	}
}

// SampleRayDifferential generates a differential ray. This sensor cannot
// provide differentials; HasDifferentials is always false and consumers must
// treat them as unavailable.
func (d *DistantSensor) SampleRayDifferential(time, wavelengthSample float64, filmSample, apertureSample core.Vec2) RayDifferentialSample {
	s := d.SampleRay(time, wavelengthSample, filmSample, apertureSample)
	return RayDifferentialSample{
		Ray: core.RayDifferential{
			Ray:              s.Ray,
			HasDifferentials: false,
		},
		Wavelengths: s.Wavelengths,
		Weight:      s.Weight,
		Valid:       s.Valid,
	}
}

// Film returns the sensor's film
func (d *DistantSensor) Film() *Film {
	return d.film
}

// BoundingBox returns the empty box: this sensor occupies no finite region
// of space
func (d *DistantSensor) BoundingBox() core.AABB {
	return core.NewEmptyAABB()
}

// String describes the resolved sensor configuration
func (d *DistantSensor) String() string {
	return fmt.Sprintf("DistantSensor[target=%s, origin=%s, directions=%s, flip=%v, film=%dx%d]",
		d.target.describe(), d.origin.describe(), d.mode, d.flip,
		d.film.Width, d.film.Height)
}
