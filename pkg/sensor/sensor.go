// Package sensor implements virtual measurement devices that convert film
// samples into world-space rays with importance weights.
package sensor

import (
	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/scene"
)

// RaySample is the result of sampling a ray from a sensor. Weight is exactly
// zero whenever Valid is false, so estimators may accumulate it without
// checking the flag.
type RaySample struct {
	Ray         core.Ray
	Wavelengths core.Wavelengths
	Weight      core.Spectrum
	Valid       bool
}

// RayDifferentialSample is the differential-ray variant of RaySample. For
// sensors that cannot provide differentials, Ray.HasDifferentials is false.
type RayDifferentialSample struct {
	Ray         core.RayDifferential
	Wavelengths core.Wavelengths
	Weight      core.Spectrum
	Valid       bool
}

// Sensor is a virtual measurement device. Implementations must be safe for
// unsynchronized concurrent use once SetScene has completed.
type Sensor interface {
	// SampleRay generates a world-space ray with importance weight from
	// uniform samples: a wavelength sample, a film (pixel) sample and an
	// aperture sample, all in [0,1)
	SampleRay(time, wavelengthSample float64, filmSample, apertureSample core.Vec2) RaySample

	// SampleRayDifferential is SampleRay for differential rays
	SampleRayDifferential(time, wavelengthSample float64, filmSample, apertureSample core.Vec2) RayDifferentialSample

	// SetScene attaches the sensor to a scene, fixing the world bounds used
	// during sampling. Must complete before concurrent sampling starts.
	SetScene(sc *scene.Scene)

	// Film returns the sensor's film
	Film() *Film

	// BoundingBox returns the region of space the sensor occupies; sensors
	// placed at infinity return the empty box
	BoundingBox() core.AABB

	// String describes the resolved sensor configuration
	String() string
}

// RayRequest bundles the per-sample inputs of SampleRay for batch processing
type RayRequest struct {
	Time             float64
	WavelengthSample float64
	FilmSample       core.Vec2
	ApertureSample   core.Vec2
}

// SampleRays generates a batch of rays. The active mask marks requests that
// are disabled on entry: their results come back invalid with zero weight,
// mirroring lane-masked execution. A nil mask means all requests are active.
// Requests are independent; failures invalidate single samples, never the
// batch.
func SampleRays(s Sensor, requests []RayRequest, active []bool) []RaySample {
	samples := make([]RaySample, len(requests))
	for i, req := range requests {
		if active != nil && !active[i] {
			continue // Zero value: invalid, zero weight
		}
		samples[i] = s.SampleRay(req.Time, req.WavelengthSample, req.FilmSample, req.ApertureSample)
	}
	return samples
}
