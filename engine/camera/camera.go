package camera

import (
	"math"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects the projection used by a Camera.
type Mode int

const (
	// ModePerspective uses a symmetric perspective frustum defined by a vertical field of view.
	ModePerspective Mode = iota
	// ModeOrthogonal uses a parallel projection defined by view-space extents.
	ModeOrthogonal
)

func (m Mode) String() string {
	if m == ModeOrthogonal {
		return "orthogonal"
	}
	return "perspective"
}

// ParseMode converts a settings value ("perspective" or "orthogonal") into a Mode.
//
// Returns:
//   - Mode: the parsed mode
//   - bool: false if the name is not recognised
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "perspective":
		return ModePerspective, true
	case "orthogonal":
		return ModeOrthogonal, true
	}
	return ModePerspective, false
}

// Perspective holds the parameters of the perspective projection.
type Perspective struct {
	// Fov is the vertical field of view in radians.
	Fov  float32
	Near float32
	Far  float32
}

// Orthogonal holds the view-space extents of the orthogonal projection.
type Orthogonal struct {
	Left   float32
	Right  float32
	Top    float32
	Bottom float32
	Near   float32
	Far    float32
}

type cameraImpl struct {
	mode Mode

	position mgl32.Vec3
	origin   mgl32.Vec3
	up       mgl32.Vec3
	distance float32

	perspective Perspective
	orthogonal  Orthogonal

	width, height int
	meter         float32

	view           mgl32.Mat4
	projection     mgl32.Mat4
	viewProjection mgl32.Mat4

	revision uint64
}

// Camera defines the interface for the viewer camera.
// The camera holds both projection parameter sets, a world-space eye position, a navigation origin
// used as the orbit and zoom pivot, and a framing distance. Matrices are recomputed eagerly on every
// mutation so that reads are cheap during drawing and picking.
type Camera interface {
	// Mode returns the active projection mode.
	Mode() Mode

	// SetMode switches the projection mode.
	//
	// Parameters:
	//   - m: the projection mode
	SetMode(m Mode)

	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// SetPosition sets the world-space eye position. The camera keeps looking at the navigation origin.
	//
	// Parameters:
	//   - p: the eye position
	SetPosition(p mgl32.Vec3)

	// Origin returns the navigation origin (orbit and zoom pivot).
	Origin() mgl32.Vec3

	// SetOrigin moves the navigation origin without moving the eye.
	//
	// Parameters:
	//   - o: the new origin
	SetOrigin(o mgl32.Vec3)

	// Up returns the camera up vector.
	Up() mgl32.Vec3

	// SetUp sets the camera up vector.
	//
	// Parameters:
	//   - up: the up vector, need not be normalized
	SetUp(up mgl32.Vec3)

	// Distance returns the framing distance set by SetTarget or ZoomTo.
	// It is the distance used by Show when placing the camera.
	Distance() float32

	// SetDistance overrides the framing distance.
	//
	// Parameters:
	//   - d: the framing distance, must be positive
	SetDistance(d float32)

	// Direction returns the normalized viewing direction, from the eye towards the origin.
	Direction() mgl32.Vec3

	// Perspective returns the perspective projection parameters.
	Perspective() Perspective

	// SetPerspective replaces the perspective projection parameters.
	//
	// Parameters:
	//   - p: the new parameters
	SetPerspective(p Perspective)

	// Orthogonal returns the orthogonal projection extents.
	Orthogonal() Orthogonal

	// SetOrthogonal replaces the orthogonal projection extents.
	//
	// Parameters:
	//   - o: the new extents
	SetOrthogonal(o Orthogonal)

	// Viewport returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: the viewport size
	Viewport() (width, height int)

	// SetViewport sets the viewport size in pixels. Non-positive sizes are ignored.
	//
	// Parameters:
	//   - width, height: the viewport size
	SetViewport(width, height int)

	// Aspect returns the viewport aspect ratio (width / height).
	Aspect() float32

	// Meter returns the number of world units per meter.
	Meter() float32

	// SetMeter sets the number of world units per meter.
	SetMeter(meter float32)

	// View returns the current view matrix (column-major).
	View() mgl32.Mat4

	// Projection returns the current projection matrix for the active mode (column-major, [0, 1] depth).
	Projection() mgl32.Mat4

	// ViewProjection returns the combined Projection * View matrix.
	ViewProjection() mgl32.Mat4

	// Frustum returns the world-space view frustum of the current matrices.
	Frustum() common.Frustum

	// Uniform returns the GPU representation of the camera.
	Uniform() GPUCameraUniform

	// Revision returns a counter that increases on every mutation. Used for frame change detection.
	Revision() uint64
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera looking down -Z at the world origin with default perspective settings.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mode:     ModePerspective,
		position: mgl32.Vec3{0, 0, 10},
		up:       mgl32.Vec3{0, 1, 0},
		distance: 10,
		perspective: Perspective{
			Fov:  45.0 * (math.Pi / 180.0), // radians
			Near: 0.1,
			Far:  1000.0,
		},
		orthogonal: Orthogonal{
			Left: -10, Right: 10, Top: 10, Bottom: -10,
			Near: 0.1, Far: 1000,
		},
		width:  1,
		height: 1,
		meter:  1,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Mode() Mode {
	return c.mode
}

func (c *cameraImpl) SetMode(m Mode) {
	c.mode = m
	c.updateMatrices()
}

func (c *cameraImpl) Position() mgl32.Vec3 {
	return c.position
}

func (c *cameraImpl) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateMatrices()
}

func (c *cameraImpl) Origin() mgl32.Vec3 {
	return c.origin
}

func (c *cameraImpl) SetOrigin(o mgl32.Vec3) {
	c.origin = o
	c.updateMatrices()
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	return c.up
}

func (c *cameraImpl) SetUp(up mgl32.Vec3) {
	if up.Len() < 1e-8 {
		return
	}
	c.up = up.Normalize()
	c.updateMatrices()
}

func (c *cameraImpl) Distance() float32 {
	return c.distance
}

func (c *cameraImpl) SetDistance(d float32) {
	if d <= 0 {
		return
	}
	c.distance = d
	c.revision++
}

func (c *cameraImpl) Direction() mgl32.Vec3 {
	d := c.origin.Sub(c.position)
	if d.Len() < 1e-8 {
		return c.view.Row(2).Vec3().Mul(-1)
	}
	return d.Normalize()
}

func (c *cameraImpl) Perspective() Perspective {
	return c.perspective
}

func (c *cameraImpl) SetPerspective(p Perspective) {
	c.perspective = p
	c.updateMatrices()
}

func (c *cameraImpl) Orthogonal() Orthogonal {
	return c.orthogonal
}

func (c *cameraImpl) SetOrthogonal(o Orthogonal) {
	c.orthogonal = o
	c.updateMatrices()
}

func (c *cameraImpl) Viewport() (width, height int) {
	return c.width, c.height
}

func (c *cameraImpl) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width, c.height = width, height
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	return float32(c.width) / float32(c.height)
}

func (c *cameraImpl) Meter() float32 {
	return c.meter
}

func (c *cameraImpl) SetMeter(meter float32) {
	c.meter = meter
	c.revision++
}

func (c *cameraImpl) View() mgl32.Mat4 {
	return c.view
}

func (c *cameraImpl) Projection() mgl32.Mat4 {
	return c.projection
}

func (c *cameraImpl) ViewProjection() mgl32.Mat4 {
	return c.viewProjection
}

func (c *cameraImpl) Frustum() common.Frustum {
	return common.ExtractFrustumFromMatrix(c.viewProjection)
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	return GPUCameraUniform{
		ViewProj:       c.viewProjection,
		View:           c.view,
		CameraPosition: c.position,
		Meter:          c.meter,
	}
}

func (c *cameraImpl) Revision() uint64 {
	return c.revision
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// The previous view matrix is kept when the eye coincides with the origin or looks along the up vector.
func (c *cameraImpl) updateMatrices() {
	c.revision++

	forward := c.origin.Sub(c.position)
	if forward.Len() > 1e-8 && forward.Normalize().Cross(c.up).Len() > 1e-6 {
		c.view = mgl32.LookAtV(c.position, c.origin, c.up)
	} else if c.view == (mgl32.Mat4{}) {
		c.view = mgl32.Translate3D(-c.position[0], -c.position[1], -c.position[2])
	}

	switch c.mode {
	case ModeOrthogonal:
		o := c.orthogonal
		c.projection = common.OrthographicZO(o.Left, o.Right, o.Bottom, o.Top, o.Near, o.Far)
	default:
		p := c.perspective
		c.projection = common.PerspectiveZO(p.Fov, c.Aspect(), p.Near, p.Far)
	}
	c.viewProjection = c.projection.Mul4(c.view)
}
