package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option applied to a camera during construction via NewCamera.
type CameraBuilderOption func(*cameraImpl)

// WithMode sets the initial projection mode.
//
// Parameters:
//   - m: the projection mode
//
// Returns:
//   - CameraBuilderOption: a function that sets the mode
func WithMode(m Mode) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.mode = m
	}
}

// WithPosition sets the initial world-space eye position.
//
// Parameters:
//   - x, y, z: eye position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the eye position
func WithPosition(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = mgl32.Vec3{x, y, z}
	}
}

// WithOrigin sets the initial navigation origin.
//
// Parameters:
//   - x, y, z: origin components
//
// Returns:
//   - CameraBuilderOption: a function that sets the origin
func WithOrigin(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.origin = mgl32.Vec3{x, y, z}
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = mgl32.Vec3{x, y, z}.Normalize()
	}
}

// WithPerspective sets the perspective projection parameters.
//
// Parameters:
//   - p: field of view in radians and clipping distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the perspective parameters
func WithPerspective(p Perspective) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.perspective = p
	}
}

// WithOrthogonal sets the orthogonal projection extents.
//
// Parameters:
//   - o: view-space extents and clipping distances
//
// Returns:
//   - CameraBuilderOption: a function that sets the orthogonal extents
func WithOrthogonal(o Orthogonal) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.orthogonal = o
	}
}

// WithViewport sets the initial viewport size in pixels.
//
// Parameters:
//   - width, height: the viewport size
//
// Returns:
//   - CameraBuilderOption: a function that sets the viewport
func WithViewport(width, height int) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width > 0 && height > 0 {
			c.width, c.height = width, height
		}
	}
}
