package component

import "math"

// Transform is an entity's placement relative to its parent (or to the
// scene origin for roots). Rotation is in degrees.
type Transform struct {
	X, Y     float64
	Rotation float64
}

// GlobalTransform is the scene-space placement derived from the chain of
// Transforms. Written only by TransformSystem.
type GlobalTransform struct {
	X, Y     float64
	Rotation float64
}

// Compose places local inside parent: the local offset is rotated by the
// parent's rotation, then translated.
func Compose(parent GlobalTransform, local Transform) GlobalTransform {
	rad := parent.Rotation * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return GlobalTransform{
		X:        parent.X + local.X*cos - local.Y*sin,
		Y:        parent.Y + local.X*sin + local.Y*cos,
		Rotation: math.Mod(parent.Rotation+local.Rotation, 360),
	}
}

// Root returns the global placement of an entity with no parent.
func Root(local Transform) GlobalTransform {
	return GlobalTransform{X: local.X, Y: local.Y, Rotation: math.Mod(local.Rotation, 360)}
}
