package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option for configuring a Camera via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithOrthographic selects an orthographic projection over the given viewport.
//
// Parameters:
//   - left, right, bottom, top: the viewport edges in world units
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrthographic(left, right, bottom, top float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projectionType = ProjectionOrthographic
		c.left, c.right, c.bottom, c.top = left, right, bottom, top
	}
}

// WithPerspective selects a perspective projection.
//
// Parameters:
//   - fov: vertical field of view in radians
//   - aspect: width / height
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPerspective(fov, aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.projectionType = ProjectionPerspective
		c.fov = fov
		c.aspect = aspect
	}
}

// WithClipPlanes sets the near and far clipping planes.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClipPlanes(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

// WithPosition sets the eye position.
//
// Parameters:
//   - x, y, z: the eye position
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithTarget sets the look-at point.
//
// Parameters:
//   - x, y, z: the target position
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}
	}
}
