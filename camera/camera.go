// Package camera holds the perspective camera eased toward its scroll target.
package camera

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Camera is a perspective camera looking down -Z
type Camera struct {
	Position mgl64.Vec3
	// Fovy is the vertical field of view, in degrees
	Fovy   float64
	Aspect float64
	Near   float64
	Far    float64

	projection mgl64.Mat4
}

// New creates a camera and computes its projection
func New(position mgl64.Vec3, fovy, aspect, near, far float64) *Camera {
	c := &Camera{
		Position: position,
		Fovy:     fovy,
		Aspect:   aspect,
		Near:     near,
		Far:      far,
	}
	c.UpdateProjection()

	return c
}

// UpdateProjection recomputes the projection matrix after a field change
func (c *Camera) UpdateProjection() {
	c.projection = mgl64.Perspective(mgl64.DegToRad(c.Fovy), c.Aspect, c.Near, c.Far)
}

// SetViewport sets the aspect ratio from the viewport size.
// A degenerate viewport keeps the previous aspect.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float64(width) / float64(height)
	c.UpdateProjection()
}

// Projection returns the projection matrix
func (c *Camera) Projection() mgl64.Mat4 {
	return c.projection
}

// View returns the view matrix. The camera never rotates, it only translates.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.Translate3D(-c.Position.X(), -c.Position.Y(), -c.Position.Z())
}

// DistanceTo returns the euclidean distance from the camera to target
func (c *Camera) DistanceTo(target mgl64.Vec3) float64 {
	return c.Position.Sub(target).Len()
}

// Ease moves the camera by the fraction alpha of the remaining way to target
func (c *Camera) Ease(target mgl64.Vec3, alpha float64) {
	c.Position = Lerp(c.Position, target, alpha)
}

// Project maps a world point to viewport pixels.
// ok is false for points behind the camera or outside the depth range.
func (c *Camera) Project(world mgl64.Vec3, width, height int) (x, y, depth float64, ok bool) {
	clip := c.projection.Mul4(c.View()).Mul4x1(world.Vec4(1))
	if clip.W() <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.Vec3().Mul(1 / clip.W())
	if ndc.Z() < -1 || ndc.Z() > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)

	return x, y, clip.W(), true
}

// Lerp interpolates linearly between a and b
func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
