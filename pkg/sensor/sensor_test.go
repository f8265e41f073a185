package sensor

import (
	"math/rand"
	"testing"

	"github.com/leroyvn/mitsuba2/pkg/core"
)

func batchSensor(t *testing.T) *DistantSensor {
	t.Helper()
	s, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		RayTarget: core.NewVec3(0, 0, 0),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	s.SetScene(unitSphereScene())
	return s
}

func batchRequests(n int, seed int64) []RayRequest {
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(seed)))
	requests := make([]RayRequest, n)
	for i := range requests {
		requests[i] = RayRequest{
			WavelengthSample: sampler.Get1D(),
			FilmSample:       sampler.Get2D(),
			ApertureSample:   sampler.Get2D(),
		}
	}
	return requests
}

func TestSampleRays_NilMaskActivatesAll(t *testing.T) {
	s := batchSensor(t)
	samples := SampleRays(s, batchRequests(16, 73), nil)

	if len(samples) != 16 {
		t.Fatalf("Got %d samples, want 16", len(samples))
	}
	for i, sample := range samples {
		if !sample.Valid {
			t.Errorf("Sample %d invalid", i)
		}
	}
}

func TestSampleRays_MaskedLanesComeBackInvalid(t *testing.T) {
	s := batchSensor(t)
	requests := batchRequests(8, 79)
	active := make([]bool, len(requests))
	for i := range active {
		active[i] = i%2 == 0
	}

	samples := SampleRays(s, requests, active)
	for i, sample := range samples {
		if active[i] {
			if !sample.Valid {
				t.Errorf("Active sample %d invalid", i)
			}
			continue
		}
		if sample.Valid {
			t.Errorf("Masked sample %d came back valid", i)
		}
		if !sample.Weight.IsZero() {
			t.Errorf("Masked sample %d weight %v, want exactly zero", i, sample.Weight)
		}
	}
}

func TestSampleRays_PerSampleFailuresDoNotPoisonBatch(t *testing.T) {
	// An unbound sensor fails every origin solve; the batch itself must still
	// come back complete with per-sample invalidation
	s, err := NewDistantSensor(DistantConfig{
		Direction: direction(core.NewVec3(0, 0, 1)),
		Film:      NewFilm(1, 1, nil),
	})
	if err != nil {
		t.Fatal(err)
	}

	samples := SampleRays(s, batchRequests(4, 83), nil)
	if len(samples) != 4 {
		t.Fatalf("Got %d samples, want 4", len(samples))
	}
	for i, sample := range samples {
		if sample.Valid || !sample.Weight.IsZero() {
			t.Errorf("Sample %d should be invalid with zero weight", i)
		}
	}
}
