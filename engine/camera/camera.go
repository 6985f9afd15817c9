// Package camera implements the perspective camera component. A camera owns
// its projection settings; its view matrix is derived from the world matrix
// of the scene entity it is attached to.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	fov    float32
	aspect float32
	near   float32
	far    float32

	projection      mgl32.Mat4
	projectionDirty bool
}

// Camera holds perspective projection settings and derives the render
// matrices for the frame. The projection matrix is cached and recomputed
// only when a setting changes; the view matrix is the inverse of the camera
// entity's world matrix and is recomputed per call.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// SetFov sets the vertical field of view in radians.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float32)

	// SetAspectRatio sets the aspect ratio. The renderer calls this when
	// the render surface is resized; setting the same value is a no-op and
	// does not invalidate the cached projection.
	//
	// Parameters:
	//   - aspect: the aspect ratio (width / height)
	SetAspectRatio(aspect float32)

	// SetNear sets the near clipping plane distance.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float32)

	// SetFar sets the far clipping plane distance.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float32)

	// ProjectionMatrix returns the perspective projection matrix,
	// recomputing it if a setting changed since the last call.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// ViewMatrix derives the view matrix from the camera entity's world
	// matrix.
	//
	// Parameters:
	//   - world: the camera entity's world transform matrix
	//
	// Returns:
	//   - mgl32.Mat4: the inverse of the world matrix
	ViewMatrix(world mgl32.Mat4) mgl32.Mat4

	// ViewProjectionMatrix derives the combined projection * view matrix.
	//
	// Parameters:
	//   - world: the camera entity's world transform matrix
	//
	// Returns:
	//   - mgl32.Mat4: the view-projection matrix
	ViewProjectionMatrix(world mgl32.Mat4) mgl32.Mat4

	// Position extracts the camera's world position from its entity's
	// world matrix.
	//
	// Parameters:
	//   - world: the camera entity's world transform matrix
	//
	// Returns:
	//   - mgl32.Vec3: the translation component
	Position(world mgl32.Mat4) mgl32.Vec3
}

var _ Camera = &cameraImpl{}

// NewCamera creates a perspective camera. Defaults: 45 degree vertical fov,
// 1.0 aspect, near 0.1, far 100.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		fov:             mgl32.DegToRad(45),
		aspect:          1.0,
		near:            0.1,
		far:             100.0,
		projectionDirty: true,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) SetFov(fov float32) {
	c.fov = fov
	c.projectionDirty = true
}

func (c *cameraImpl) SetAspectRatio(aspect float32) {
	if c.aspect == aspect {
		return
	}
	c.aspect = aspect
	c.projectionDirty = true
}

func (c *cameraImpl) SetNear(near float32) {
	c.near = near
	c.projectionDirty = true
}

func (c *cameraImpl) SetFar(far float32) {
	c.far = far
	c.projectionDirty = true
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	if c.projectionDirty {
		c.projection = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
		c.projectionDirty = false
	}
	return c.projection
}

func (c *cameraImpl) ViewMatrix(world mgl32.Mat4) mgl32.Mat4 {
	return world.Inv()
}

func (c *cameraImpl) ViewProjectionMatrix(world mgl32.Mat4) mgl32.Mat4 {
	return c.ProjectionMatrix().Mul4(c.ViewMatrix(world))
}

func (c *cameraImpl) Position(world mgl32.Mat4) mgl32.Vec3 {
	return mgl32.Vec3{world[12], world[13], world[14]}
}
