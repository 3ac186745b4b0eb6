package actor

import "github.com/go-gl/mathgl/mgl64"

// Transform represents the placement of a scene object.
// Rotation holds Euler angles in radians, applied in X, Y, Z order.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Position: mgl64.Vec3{0, 0, 0},
		Rotation: mgl64.Vec3{0, 0, 0},
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Rotate adds delta to the current Euler angles
func (t *Transform) Rotate(delta mgl64.Vec3) {
	t.Rotation = t.Rotation.Add(delta)
}

// Matrix returns the model matrix: translation * rotation * scale
func (t Transform) Matrix() mgl64.Mat4 {
	scale := t.Scale
	if scale == (mgl64.Vec3{}) {
		scale = mgl64.Vec3{1, 1, 1}
	}

	rotation := mgl64.AnglesToQuat(t.Rotation.X(), t.Rotation.Y(), t.Rotation.Z(), mgl64.XYZ).Mat4()

	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(rotation).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

// Apply transforms a local point into world space
func (t Transform) Apply(local mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(local, t.Matrix())
}
