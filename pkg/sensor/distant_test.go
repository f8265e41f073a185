package sensor

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/geometry"
	"github.com/leroyvn/mitsuba2/pkg/scene"
)

var _ Sensor = (*DistantSensor)(nil)

// testLogger records log lines for assertions
type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// unitSphereScene is a unit sphere at the origin; its bounding sphere has
// radius sqrt(3) before inflation
func unitSphereScene() *scene.Scene {
	return scene.NewScene(geometry.NewSphere(core.Vec3{}, 1))
}

func direction(v core.Vec3) *core.Vec3 {
	return &v
}

func TestDistant_Construction_Errors(t *testing.T) {
	film := NewFilm(1, 1, nil)

	tests := []struct {
		name   string
		config DistantConfig
	}{
		{"missing film", DistantConfig{}},
		{"direction and toWorld conflict", DistantConfig{
			Film:      film,
			Direction: direction(core.NewVec3(0, 0, 1)),
			ToWorld:   core.NewAnimatedTransform(core.IdentityTransform()),
		}},
		{"unusable target type", DistantConfig{
			Film:      film,
			RayTarget: "not a shape",
		}},
		{"unusable origin type", DistantConfig{
			Film:      film,
			RayOrigin: 42,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDistantSensor(tt.config); err == nil {
				t.Error("Expected a construction error, got nil")
			}
		})
	}
}

func TestDistant_SingleMode_FixedDirection(t *testing.T) {
	// A 1x1 film fixes the ray direction to the sensor axis regardless of the
	// film sample. Rays travel toward the axis, so the world direction is the
	// negated axis.
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(41)))
	for i := 0; i < 100; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		if vecDist(s.Ray.Direction, core.NewVec3(0, 0, -1)) > 1e-12 {
			t.Fatalf("Sample %d direction %v, want (0,0,-1)", i, s.Ray.Direction)
		}
		if math.Abs(s.Ray.Direction.Length()-1.0) > 1e-12 {
			t.Fatalf("Sample %d direction not unit length", i)
		}
	}
}

func TestDistant_FlipDirections(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction:      direction(core.NewVec3(0, 0, 1)),
		FlipDirections: true,
		RayTarget:      core.NewVec3(0, 0, 0),
		Film:           NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	if !s.Valid {
		t.Fatal("Sample invalid")
	}
	if vecDist(s.Ray.Direction, core.NewVec3(0, 0, 1)) > 1e-12 {
		t.Errorf("Flipped direction %v, want (0,0,1)", s.Ray.Direction)
	}
}

func TestDistant_PlanarMode_SweepsAxisPlane(t *testing.T) {
	// An Nx1 film sweeps directions within the plane spanned by the sensor
	// axis and its up vector. For axis (0,0,1) with orientation (1,0,0) the up
	// vector is (0,1,0) and sampled directions must have zero y component.
	sensor, err := NewDistantSensor(DistantConfig{
		Direction:   direction(core.NewVec3(0, 0, 1)),
		Orientation: direction(core.NewVec3(1, 0, 0)),
		RayTarget:   core.NewVec3(0, 0, 0),
		Film:        NewFilm(32, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(43)))
	for i := 0; i < 200; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		if math.Abs(s.Ray.Direction.Y) > 1e-12 {
			t.Fatalf("Sample %d direction %v leaves the sweep plane", i, s.Ray.Direction)
		}
		if math.Abs(s.Ray.Direction.Length()-1.0) > 1e-12 {
			t.Fatalf("Sample %d direction not unit length", i)
		}
	}
}

func TestDistant_HemisphereMode_FacesAxis(t *testing.T) {
	// A full-resolution film samples the hemisphere facing the sensor axis:
	// every unflipped direction has a non-positive component along the axis
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(16, 16, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	axis := core.NewVec3(0, 0, 1)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(47)))
	for i := 0; i < 500; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		if s.Ray.Direction.Dot(axis) > 1e-12 {
			t.Fatalf("Sample %d direction %v points away from the axis hemisphere", i, s.Ray.Direction)
		}
	}
}

func TestDistant_PointTarget_OriginAtFixedOffset(t *testing.T) {
	// With a point target and bounding-sphere origins, every origin sits at
	// target - direction * (2 * radius)
	target := core.NewVec3(0.25, -0.5, 0.125)
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: target,
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	radius := math.Sqrt(3) * (1 + core.RayEpsilon)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(53)))
	for i := 0; i < 100; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		want := target.Subtract(s.Ray.Direction.Multiply(2 * radius))
		if vecDist(s.Ray.Origin, want) > 1e-9 {
			t.Fatalf("Sample %d origin %v, want %v", i, s.Ray.Origin, want)
		}
	}
}

func TestDistant_PointTarget_WeightIsSpectralWeight(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	const wavelengthSample = 0.37
	s := sensor.SampleRay(0, wavelengthSample, core.NewVec2(0.5, 0.5), core.NewVec2(0.3, 0.7))
	_, want := core.SampleWavelengths(wavelengthSample)

	if !s.Valid {
		t.Fatal("Sample invalid")
	}
	if s.Weight != want {
		t.Errorf("Weight %v, want the bare spectral weight %v", s.Weight, want)
	}
}

func TestDistant_ShapeTargetWeightOmitsCosine(t *testing.T) {
	// Surface targets weight samples by 1/(pdf * area) with no foreshortening
	// cosine, so a quad tilted against the ray direction yields exactly the
	// spectral weight (uniform sampling makes pdf * area = 1). The targetless
	// strategy divides by its projection cosine instead; this pins the
	// difference in behavior.
	tilted := geometry.NewQuad(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(2, 0, 2), // Tilted 45 degrees out of the xy-plane
		core.NewVec3(0, 2, 0),
	)
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: tilted,
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	const wavelengthSample = 0.61
	_, want := core.SampleWavelengths(wavelengthSample)

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(59)))
	for i := 0; i < 100; i++ {
		s := sensor.SampleRay(0, wavelengthSample, sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		for c := range s.Weight {
			if math.Abs(s.Weight[c]-want[c]) > 1e-9*want[c] {
				t.Fatalf("Sample %d weight %v, want %v (no cosine term)", i, s.Weight, want)
			}
		}
	}
}

func TestDistant_ShapeTarget_RaysReachSurface(t *testing.T) {
	target := geometry.NewSphere(core.NewVec3(0, 0, 0), 0.5)
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: target,
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(61)))
	for i := 0; i < 200; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		// The ray must pass through a point on the target sphere's surface
		if _, ok := target.Hit(s.Ray, 0, math.Inf(1)); !ok {
			t.Fatalf("Sample %d ray misses its own target surface", i)
		}
	}
}

func TestDistant_NoTarget_OriginsOutsideScene(t *testing.T) {
	// Targetless sampling aims at the bounding-sphere cross section and
	// retreats one radius, so origins never sit inside the bounding sphere
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sc := unitSphereScene()
	sensor.SetScene(sc)

	bsphere := sc.BoundingSphere()
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(67)))
	for i := 0; i < 500; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		dist := s.Ray.Origin.Subtract(bsphere.Center).Length()
		if dist < bsphere.Radius {
			t.Fatalf("Sample %d origin %v inside the scene bounds (dist %f < %f)",
				i, s.Ray.Origin, dist, bsphere.Radius)
		}
	}
}

func TestDistant_RoundTrip_DefaultStrategies(t *testing.T) {
	// Axis (0,0,1), no target, no origin, 1x1 film: rays travel along
	// (0,0,-1) and depart from one bounding-sphere radius behind the disk
	// cross section, i.e. at z = radius, with nonzero finite weight
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	radius := math.Sqrt(3) * (1 + core.RayEpsilon)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(89)))
	for i := 0; i < 100; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		if !s.Valid {
			t.Fatalf("Sample %d invalid", i)
		}
		if vecDist(s.Ray.Direction, core.NewVec3(0, 0, -1)) > 1e-12 {
			t.Fatalf("Sample %d direction %v, want (0,0,-1)", i, s.Ray.Direction)
		}
		if math.Abs(s.Ray.Origin.Z-radius) > 1e-9 {
			t.Fatalf("Sample %d origin z = %f, want %f", i, s.Ray.Origin.Z, radius)
		}
		if s.Weight.IsZero() || !s.Weight.IsFinite() {
			t.Fatalf("Sample %d weight %v, want nonzero finite", i, s.Weight)
		}
	}
}

func TestDistant_NoTarget_GrazingDirectionInvalid(t *testing.T) {
	// The targetless weight divides by the projection cosine against the world
	// z axis. A sensor axis in the xy-plane makes that cosine zero, which must
	// invalidate samples instead of producing non-finite weights.
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(1, 0, 0)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.25, 0.75))
	if s.Valid {
		t.Error("Grazing sample should be invalid")
	}
	if !s.Weight.IsZero() {
		t.Errorf("Invalid sample weight %v, want exactly zero", s.Weight)
	}
}

func TestDistant_ShapeOrigin_ProjectsOntoShape(t *testing.T) {
	// Origins back-projected onto a quad above the scene must lie on that quad
	originQuad := geometry.NewQuad(
		core.NewVec3(-50, -50, 10),
		core.NewVec3(100, 0, 0),
		core.NewVec3(0, 100, 0),
	)
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		RayOrigin: originQuad,
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	if !s.Valid {
		t.Fatal("Sample invalid")
	}
	if math.Abs(s.Ray.Origin.Z-10) > 1e-9 {
		t.Errorf("Origin %v not on the origin surface at z=10", s.Ray.Origin)
	}
}

func TestDistant_ShapeOrigin_MissInvalidatesSample(t *testing.T) {
	// A tiny origin shape far off-axis can never be reached by the backward
	// projection; the sample must come back invalid with zero weight
	offAxis := geometry.NewSphere(core.NewVec3(100, 100, 100), 0.1)
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		RayOrigin: offAxis,
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	if s.Valid {
		t.Error("Sample should be invalid when the origin projection misses")
	}
	if !s.Weight.IsZero() {
		t.Errorf("Invalid sample weight %v, want exactly zero", s.Weight)
	}
}

func TestDistant_UnboundSensorProducesInvalidSamples(t *testing.T) {
	// Bounding-sphere strategies cannot run before SetScene
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	s := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	if s.Valid {
		t.Error("Sample from an unbound sensor should be invalid")
	}
	if !s.Weight.IsZero() {
		t.Errorf("Invalid sample weight %v, want exactly zero", s.Weight)
	}
}

func TestDistant_SetScene_InflatesRadius(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	want := math.Sqrt(3) * (1 + core.RayEpsilon)
	if math.Abs(sensor.bsphere.Radius-want) > 1e-12 {
		t.Errorf("Cached radius %v, want %v", sensor.bsphere.Radius, want)
	}

	// An empty scene clamps the radius to the epsilon floor
	sensor.SetScene(scene.NewScene())
	if sensor.bsphere.Radius != core.RayEpsilon {
		t.Errorf("Empty-scene radius %v, want %v", sensor.bsphere.Radius, core.RayEpsilon)
	}
}

func TestDistant_WavelengthsWithinVisibleRange(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	sampler := core.NewRandomSampler(rand.New(rand.NewSource(71)))
	for i := 0; i < 100; i++ {
		s := sensor.SampleRay(0, sampler.Get1D(), sampler.Get2D(), sampler.Get2D())
		for c, lambda := range s.Wavelengths {
			if lambda < core.MinWavelength || lambda > core.MaxWavelength {
				t.Fatalf("Sample %d wavelength[%d] = %f outside visible range", i, c, lambda)
			}
		}
		if !s.Weight.IsFinite() {
			t.Fatalf("Sample %d weight not finite: %v", i, s.Weight)
		}
	}
}

func TestDistant_AnimatedTransform(t *testing.T) {
	// A sensor rotating from -z rays at t=0 to +x rays at t=1 must evaluate
	// its transform at the sample time
	start := core.LookAt(core.Vec3{}, core.NewVec3(0, 0, 1), core.NewVec3(0, 1, 0))
	end := core.LookAt(core.Vec3{}, core.NewVec3(-1, 0, 0), core.NewVec3(0, 1, 0))
	sensor, err := NewDistantSensor(DistantConfig{
		ToWorld:   core.NewAnimatedTransformLerp(start, end, 0, 1),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s0 := sensor.SampleRay(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	s1 := sensor.SampleRay(1, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))

	if vecDist(s0.Ray.Direction, core.NewVec3(0, 0, -1)) > 1e-12 {
		t.Errorf("t=0 direction %v, want (0,0,-1)", s0.Ray.Direction)
	}
	if vecDist(s1.Ray.Direction, core.NewVec3(1, 0, 0)) > 1e-12 {
		t.Errorf("t=1 direction %v, want (1,0,0)", s1.Ray.Direction)
	}
	if s0.Ray.Time != 0 || s1.Ray.Time != 1 {
		t.Error("Sample time not carried onto the rays")
	}
}

func TestDistant_FilterRadiusWarning(t *testing.T) {
	logger := &testLogger{}
	_, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, NewGaussianFilter(2, 2)),
		Logger:    logger,
	})
	if err != nil {
		t.Fatal(err)
	}

	found := false
	for _, line := range logger.lines {
		if strings.Contains(line, "filter radius") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a filter-radius warning, got %v", logger.lines)
	}

	// The default box filter stays silent
	logger = &testLogger{}
	if _, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
		Logger:    logger,
	}); err != nil {
		t.Fatal(err)
	}
	for _, line := range logger.lines {
		if strings.Contains(line, "filter radius") {
			t.Errorf("Unexpected filter warning: %s", line)
		}
	}
}

func TestDistant_SampleRayDifferential_NoDifferentials(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	sensor.SetScene(unitSphereScene())

	s := sensor.SampleRayDifferential(0, 0.5, core.NewVec2(0.5, 0.5), core.NewVec2(0.5, 0.5))
	if s.Ray.HasDifferentials {
		t.Error("Distant sensor must not report ray differentials")
	}
	if !s.Valid {
		t.Error("Sample invalid")
	}
	if vecDist(s.Ray.Direction, core.NewVec3(0, 0, -1)) > 1e-12 {
		t.Errorf("Differential ray direction %v, want (0,0,-1)", s.Ray.Direction)
	}
}

func TestDistant_String(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(1, 2, 3),
		Film:      NewFilm(32, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	desc := sensor.String()
	for _, want := range []string{"point (1, 2, 3)", "bounding_sphere", "planar", "32x1"} {
		if !strings.Contains(desc, want) {
			t.Errorf("String() = %q, missing %q", desc, want)
		}
	}
}

func TestDistant_BoundingBoxIsEmpty(t *testing.T) {
	sensor, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !sensor.BoundingBox().IsEmpty() {
		t.Error("Sensor at infinity should report an empty bounding box")
	}
}

func vecDist(a, b core.Vec3) float64 {
	return a.Subtract(b).Length()
}
