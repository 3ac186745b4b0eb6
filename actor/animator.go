package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phase is the per-frame input of an Animator
type Phase struct {
	// Step is the oscillator phase, strictly increasing frame after frame
	Step float64
	// Distance is how far the camera still is from its target
	Distance float64
}

// Animator applies a closed-form procedural animation to a transform
type Animator interface {
	Animate(transform *Transform, phase Phase)
}

// Spin rotates continuously at Rate, plus DistanceRate scaled by the camera distance.
// The extra term makes objects spin faster while the camera travels and settle when it arrives.
type Spin struct {
	Rate         mgl64.Vec3
	DistanceRate mgl64.Vec3
}

// Delta returns the rotation increment for a given phase
func (s Spin) Delta(phase Phase) mgl64.Vec3 {
	return s.Rate.Add(s.DistanceRate.Mul(phase.Distance))
}

func (s Spin) Animate(transform *Transform, phase Phase) {
	transform.Rotate(s.Delta(phase))
}

// Flight oscillates position with sin(step) around Origin, rolls with sin(step)
// and yaws with cos(step + PhaseShift).
type Flight struct {
	Origin     mgl64.Vec3
	Amplitude  mgl64.Vec3
	RollRate   float64
	YawRate    float64
	PhaseShift float64
}

// NewFlight creates a Flight with the usual quarter-turn yaw phase shift
func NewFlight(origin, amplitude mgl64.Vec3, rollRate, yawRate float64) Flight {
	return Flight{
		Origin:     origin,
		Amplitude:  amplitude,
		RollRate:   rollRate,
		YawRate:    yawRate,
		PhaseShift: math.Pi / 4,
	}
}

// Offset returns the position and the rotation increment at the given step
func (f Flight) Offset(step float64) (position mgl64.Vec3, rotation mgl64.Vec3) {
	s := math.Sin(step)
	position = f.Origin.Add(f.Amplitude.Mul(s))
	rotation = mgl64.Vec3{0, f.YawRate * math.Cos(step+f.PhaseShift), f.RollRate * s}

	return position, rotation
}

func (f Flight) Animate(transform *Transform, phase Phase) {
	position, rotation := f.Offset(phase.Step)
	transform.Position = position
	transform.Rotate(rotation)
}

// Waddle oscillates position with cos(step) around Origin and rolls with cos(step)
type Waddle struct {
	Origin    mgl64.Vec3
	Amplitude mgl64.Vec3
	RollRate  float64
}

// Offset returns the position and the rotation increment at the given step
func (w Waddle) Offset(step float64) (position mgl64.Vec3, rotation mgl64.Vec3) {
	c := math.Cos(step)

	return w.Origin.Add(w.Amplitude.Mul(c)), mgl64.Vec3{0, 0, w.RollRate * c}
}

func (w Waddle) Animate(transform *Transform, phase Phase) {
	position, rotation := w.Offset(phase.Step)
	transform.Position = position
	transform.Rotate(rotation)
}

// Bob is a small sin(step) drift around Origin, without rotation
type Bob struct {
	Origin    mgl64.Vec3
	Amplitude mgl64.Vec3
}

// Offset returns the position at the given step
func (b Bob) Offset(step float64) mgl64.Vec3 {
	return b.Origin.Add(b.Amplitude.Mul(math.Sin(step)))
}

func (b Bob) Animate(transform *Transform, phase Phase) {
	transform.Position = b.Offset(phase.Step)
}
