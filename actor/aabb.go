package actor

import "github.com/go-gl/mathgl/mgl64"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Cube returns the AABB centered on the origin with the given edge length
func Cube(size float64) AABB {
	h := size / 2

	return AABB{
		Min: mgl64.Vec3{-h, -h, -h},
		Max: mgl64.Vec3{h, h, h},
	}
}

// Size returns the extent on each axis
func (a AABB) Size() mgl64.Vec3 {
	return a.Max.Sub(a.Min)
}

// Lerp maps a point with coordinates in [0,1] into the box
func (a AABB) Lerp(u mgl64.Vec3) mgl64.Vec3 {
	size := a.Size()

	return mgl64.Vec3{
		a.Min.X() + u.X()*size.X(),
		a.Min.Y() + u.Y()*size.Y(),
		a.Min.Z() + u.Z()*size.Z(),
	}
}
