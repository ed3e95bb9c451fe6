package camera

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// ProjectionType selects how a Camera builds its projection matrix.
type ProjectionType int

const (
	// ProjectionOrthographic maps a viewport rectangle in world units directly to clip space.
	// This is the default and the usual choice for 2D sprite and text rendering.
	ProjectionOrthographic ProjectionType = iota

	// ProjectionPerspective uses a vertical field of view and aspect ratio.
	ProjectionPerspective
)

type cameraImpl struct {
	mu *sync.Mutex

	projectionType ProjectionType

	position mgl32.Vec3
	target   mgl32.Vec3
	up       mgl32.Vec3

	// orthographic viewport in world units
	left, right, bottom, top float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
}

// Camera holds the projection and view settings used when a batch is drawn.
// Matrices are recomputed eagerly whenever a setter changes a parameter, so the getters are cheap
// and safe to call from the render thread while another goroutine adjusts the camera.
type Camera interface {
	// ProjectionType returns the kind of projection the camera builds.
	//
	// Returns:
	//   - ProjectionType: orthographic or perspective
	ProjectionType() ProjectionType

	// Position returns the camera eye position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position in world space
	Position() mgl32.Vec3

	// Target returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target in world space
	Target() mgl32.Vec3

	// Viewport returns the orthographic viewport rectangle.
	//
	// Returns:
	//   - left, right, bottom, top: the viewport edges in world units
	Viewport() (left, right, bottom, top float32)

	// Fov returns the vertical field of view in radians used by perspective projection.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height) used by perspective projection.
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// Near returns the near clipping plane distance.
	//
	// Returns:
	//   - float32: near plane distance
	Near() float32

	// Far returns the far clipping plane distance.
	//
	// Returns:
	//   - float32: far plane distance
	Far() float32

	// ViewMatrix returns the world-to-view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the view-to-clip matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewProjectionMatrix returns ProjectionMatrix() * ViewMatrix().
	//
	// Returns:
	//   - mgl32.Mat4: the combined matrix
	ViewProjectionMatrix() mgl32.Mat4

	// SetPosition moves the eye and recomputes the view matrix.
	//
	// Parameters:
	//   - x, y, z: the new eye position
	SetPosition(x, y, z float32)

	// SetTarget changes the look-at point and recomputes the view matrix.
	//
	// Parameters:
	//   - x, y, z: the new target position
	SetTarget(x, y, z float32)

	// SetViewport changes the orthographic viewport and recomputes the projection.
	//
	// Parameters:
	//   - left, right, bottom, top: the viewport edges in world units
	SetViewport(left, right, bottom, top float32)

	// SetAspect changes the perspective aspect ratio and recomputes the projection.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Resize adapts the camera to a new surface size. Orthographic cameras map the viewport to
	// (0, width, 0, height) so one world unit equals one pixel; perspective cameras update their aspect ratio.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a Camera with the provided options. Without options the camera is orthographic over a
// 1280x720 viewport at the origin, looking down -Z with +Y up, so world z in [-1, 1] is visible.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:             &sync.Mutex{},
		projectionType: ProjectionOrthographic,
		position:       mgl32.Vec3{0, 0, 0},
		target:         mgl32.Vec3{0, 0, -1},
		up:             mgl32.Vec3{0, 1, 0},
		right:          1280,
		top:            720,
		fov:            mgl32.DegToRad(60),
		aspect:         16.0 / 9.0,
		near:           -1,
		far:            1,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.projectionType == ProjectionPerspective && c.near <= 0 {
		c.near, c.far = 0.1, 1000
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) ProjectionType() ProjectionType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionType
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Viewport() (left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left, c.right, c.bottom, c.top
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near
}

func (c *cameraImpl) Far() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix.Mul4(c.viewMatrix)
}

func (c *cameraImpl) SetPosition(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = mgl32.Vec3{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) SetViewport(left, right, bottom, top float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.left, c.right, c.bottom, c.top = left, right, bottom, top
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.projectionType {
	case ProjectionPerspective:
		c.aspect = float32(width) / float32(height)
	default:
		c.left, c.right, c.bottom, c.top = 0, float32(width), 0, float32(height)
	}
	c.updateMatrices()
}

// updateMatrices recomputes the view and projection matrices. The caller must hold c.mu.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.position, c.target, c.up)
	switch c.projectionType {
	case ProjectionPerspective:
		c.projectionMatrix = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	default:
		c.projectionMatrix = mgl32.Ortho(c.left, c.right, c.bottom, c.top, c.near, c.far)
	}
}
