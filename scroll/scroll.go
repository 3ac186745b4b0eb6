// Package scroll turns page scroll samples into camera targets.
package scroll

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateMetrics is returned when the scroll percentage cannot be computed,
// e.g. when the content is shorter than the viewport.
var ErrDegenerateMetrics = errors.New("scroll: degenerate scroll metrics")

// Metrics is one sample of the page scroll state
type Metrics struct {
	// Top is the distance of the page top from the viewport top, <= 0 while scrolled down
	Top            float64
	ScrollTop      float64
	ScrollHeight   float64
	ViewportHeight float64
}

// At builds the metrics of a page of the given height scrolled by offset pixels
func At(offset, scrollHeight, viewportHeight float64) Metrics {
	return Metrics{
		Top:            -offset,
		ScrollTop:      offset,
		ScrollHeight:   scrollHeight,
		ViewportHeight: viewportHeight,
	}
}

// Extent returns the scrollable distance
func (m Metrics) Extent() float64 {
	return m.ScrollHeight - m.ViewportHeight
}

// Percent returns ScrollTop / Extent clamped to [0,1].
// A non-positive extent or a non-finite result yields 0 and ErrDegenerateMetrics.
func (m Metrics) Percent() (float64, error) {
	extent := m.Extent()
	if !(extent > 0) {
		return 0, ErrDegenerateMetrics
	}

	p := m.ScrollTop / extent
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, ErrDegenerateMetrics
	}

	return mgl64.Clamp(p, 0, 1), nil
}

// Scrolled returns a copy of m scrolled by delta pixels, kept inside the page
func (m Metrics) Scrolled(delta float64) Metrics {
	offset := m.ScrollTop + delta
	offset = math.Min(offset, math.Max(m.Extent(), 0))
	offset = math.Max(offset, 0)

	return At(offset, m.ScrollHeight, m.ViewportHeight)
}

// Mapping converts a scroll sample into a camera target
type Mapping struct {
	// Cz and Cy scale the scroll offset into the depth and height of the target
	Cz float64
	Cy float64
	// X0, Y0 and Z0 are the target at the top of the page
	X0 float64
	Y0 float64
	Z0 float64
	// AnchorX is the x of the reference object the camera drifts to, minus Offset
	AnchorX float64
	Offset  float64
}

// Target computes the camera target for the offset top and the percentage p
func (mp Mapping) Target(top, p float64) mgl64.Vec3 {
	return mgl64.Vec3{
		Lerp(mp.X0, mp.AnchorX-mp.Offset, p),
		mp.Y0 + top*mp.Cy,
		mp.Z0 + top*mp.Cz,
	}
}

// Rest returns the target at the top of the page
func (mp Mapping) Rest() mgl64.Vec3 {
	return mgl64.Vec3{mp.X0, mp.Y0, mp.Z0}
}

// Sample computes the target for m. The degenerate guard still returns a usable
// target, built with a zero percentage, alongside ErrDegenerateMetrics.
func (mp Mapping) Sample(m Metrics) (mgl64.Vec3, error) {
	p, err := m.Percent()

	top := m.Top
	if math.IsNaN(top) || math.IsInf(top, 0) {
		top, err = 0, ErrDegenerateMetrics
	}

	return mp.Target(top, p), err
}

// Lerp returns a + c*(b-a)
func Lerp(a, b, c float64) float64 {
	return a + c*(b-a)
}
