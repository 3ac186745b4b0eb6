package actor

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Starfield is the static backdrop: points scattered inside Bounds
type Starfield struct {
	Bounds AABB
	Stars  []mgl64.Vec3
}

// NewStarfield scatters count stars uniformly inside bounds.
// The same seed always produces the same field.
func NewStarfield(count int, bounds AABB, seed uint64) Starfield {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	stars := make([]mgl64.Vec3, count)
	for i := range stars {
		stars[i] = bounds.Lerp(mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()})
	}

	return Starfield{Bounds: bounds, Stars: stars}
}
