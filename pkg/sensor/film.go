package sensor

import "math"

// ReconstructionFilter describes the image reconstruction filter associated
// with a film. Sensors only consult the support radius; Eval is provided for
// splatting code.
type ReconstructionFilter interface {
	// Radius returns the filter support radius in pixels
	Radius() float64

	// Eval evaluates the (unnormalized) filter at a 1D offset from its center
	Eval(x float64) float64
}

// BoxFilter is the default reconstruction filter: constant over a half-pixel
// radius
type BoxFilter struct {
	radius float64
}

// NewBoxFilter creates a box filter with the standard half-pixel radius
func NewBoxFilter() *BoxFilter {
	return &BoxFilter{radius: 0.5}
}

// Radius returns the filter support radius
func (f *BoxFilter) Radius() float64 { return f.radius }

// Eval evaluates the filter at a 1D offset
func (f *BoxFilter) Eval(x float64) float64 {
	if math.Abs(x) <= f.radius {
		return 1.0
	}
	return 0.0
}

// TentFilter falls off linearly to zero at its radius
type TentFilter struct {
	radius float64
}

// NewTentFilter creates a tent filter with the given support radius
func NewTentFilter(radius float64) *TentFilter {
	return &TentFilter{radius: radius}
}

// Radius returns the filter support radius
func (f *TentFilter) Radius() float64 { return f.radius }

// Eval evaluates the filter at a 1D offset
func (f *TentFilter) Eval(x float64) float64 {
	return math.Max(0, f.radius-math.Abs(x))
}

// GaussianFilter is a truncated Gaussian
type GaussianFilter struct {
	radius float64
	alpha  float64
	offset float64
}

// NewGaussianFilter creates a Gaussian filter with the given support radius
// and falloff rate alpha
func NewGaussianFilter(radius, alpha float64) *GaussianFilter {
	return &GaussianFilter{
		radius: radius,
		alpha:  alpha,
		offset: math.Exp(-alpha * radius * radius),
	}
}

// Radius returns the filter support radius
func (f *GaussianFilter) Radius() float64 { return f.radius }

// Eval evaluates the filter at a 1D offset
func (f *GaussianFilter) Eval(x float64) float64 {
	return math.Max(0, math.Exp(-f.alpha*x*x)-f.offset)
}

// Film describes the sensor's discretized image plane: its resolution and
// reconstruction filter. For direction-sampling sensors the resolution
// selects how ray directions are drawn.
type Film struct {
	Width  int
	Height int
	Filter ReconstructionFilter
}

// NewFilm creates a film; a nil filter defaults to the box filter
func NewFilm(width, height int, filter ReconstructionFilter) *Film {
	if filter == nil {
		filter = NewBoxFilter()
	}
	return &Film{Width: width, Height: height, Filter: filter}
}
