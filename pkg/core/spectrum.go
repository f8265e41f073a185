package core

import "math"

// Spectral sampling operates on small packets of wavelengths traced together:
// a hero wavelength drawn from the sampling density plus equally shifted
// rotations of it, each carried with its own importance weight.
const (
	// SpectrumSamples is the number of wavelengths traced per ray
	SpectrumSamples = 4

	// MinWavelength and MaxWavelength bound the sampled visible range, in nm
	MinWavelength = 360.0
	MaxWavelength = 830.0
)

// Wavelengths holds the wavelengths (in nm) associated with one ray
type Wavelengths [SpectrumSamples]float64

// Spectrum holds one value per sampled wavelength, used for importance
// weights and radiance estimates
type Spectrum [SpectrumSamples]float64

// NewConstantSpectrum returns a spectrum with every channel set to v
func NewConstantSpectrum(v float64) Spectrum {
	var s Spectrum
	for i := range s {
		s[i] = v
	}
	return s
}

// Scale returns the spectrum multiplied by a scalar
func (s Spectrum) Scale(k float64) Spectrum {
	var out Spectrum
	for i := range s {
		out[i] = s[i] * k
	}
	return out
}

// Add returns the channel-wise sum of two spectra
func (s Spectrum) Add(other Spectrum) Spectrum {
	var out Spectrum
	for i := range s {
		out[i] = s[i] + other[i]
	}
	return out
}

// IsZero reports whether every channel is exactly zero
func (s Spectrum) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// IsFinite reports whether every channel is finite (no NaN or Inf)
func (s Spectrum) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxComponent returns the largest channel value
func (s Spectrum) MaxComponent() float64 {
	out := s[0]
	for _, v := range s[1:] {
		out = math.Max(out, v)
	}
	return out
}

// visibleWavelengthPDF is the sampling density for SampleWavelengths, a
// smooth bump over the visible range peaking near 538 nm
func visibleWavelengthPDF(lambda float64) float64 {
	if lambda < MinWavelength || lambda > MaxWavelength {
		return 0
	}
	x := math.Cosh(0.0072 * (lambda - 538))
	return 0.0039398042 / (x * x)
}

// sampleVisibleWavelength inverts the CDF of visibleWavelengthPDF. The
// result is clamped so rounding near u=0 or u=1 cannot escape the range.
func sampleVisibleWavelength(u float64) float64 {
	lambda := 538 - 138.888889*math.Atanh(0.85691062-1.82750197*u)
	return math.Max(MinWavelength, math.Min(MaxWavelength, lambda))
}

// SampleWavelengths importance-samples a packet of wavelengths over the
// visible range. The first wavelength is drawn from a density concentrated
// where typical observers are most sensitive; the remaining ones are equally
// shifted rotations of the same sample. The returned spectrum holds the
// reciprocal density per channel and multiplies any radiance estimate made
// with these wavelengths.
func SampleWavelengths(u float64) (Wavelengths, Spectrum) {
	var wavelengths Wavelengths
	var weight Spectrum

	for i := 0; i < SpectrumSamples; i++ {
		ui := u + float64(i)/SpectrumSamples
		if ui >= 1 {
			ui -= 1
		}

		lambda := sampleVisibleWavelength(ui)
		wavelengths[i] = lambda

		pdf := visibleWavelengthPDF(lambda)
		if pdf > 0 {
			weight[i] = 1.0 / pdf
		}
	}

	return wavelengths, weight
}

// SampleWavelengthsUniform draws a packet of wavelengths uniformly over the
// visible range, with the constant reciprocal density as weight
func SampleWavelengthsUniform(u float64) (Wavelengths, Spectrum) {
	var wavelengths Wavelengths

	for i := 0; i < SpectrumSamples; i++ {
		ui := u + float64(i)/SpectrumSamples
		if ui >= 1 {
			ui -= 1
		}
		wavelengths[i] = MinWavelength + ui*(MaxWavelength-MinWavelength)
	}

	return wavelengths, NewConstantSpectrum(MaxWavelength - MinWavelength)
}
