package transform

import "github.com/go-gl/mathgl/mgl32"

// TransformBuilderOption is a functional option applied to a Transform during construction via New.
type TransformBuilderOption func(*Transform)

// WithPosition sets the translation.
//
// Parameters:
//   - x, y, z: the position components
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithPosition(x, y, z float32) TransformBuilderOption {
	return func(t *Transform) {
		t.Position = mgl32.Vec3{x, y, z}
	}
}

// WithRotation sets the Euler rotation in radians.
//
// Parameters:
//   - x, y, z: rotation about each axis in radians
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithRotation(x, y, z float32) TransformBuilderOption {
	return func(t *Transform) {
		t.Rotation = mgl32.Vec3{x, y, z}
	}
}

// WithScale sets the scale. For sprites the x and y components are the quad size in world units.
//
// Parameters:
//   - x, y, z: the scale components
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithScale(x, y, z float32) TransformBuilderOption {
	return func(t *Transform) {
		t.Scale = mgl32.Vec3{x, y, z}
	}
}

// WithParent makes the transform relative to a borrowed parent.
//
// Parameters:
//   - parent: the parent transform, or nil for a root transform
//
// Returns:
//   - TransformBuilderOption: option function to apply
func WithParent(parent *Transform) TransformBuilderOption {
	return func(t *Transform) {
		t.Parent = parent
	}
}
