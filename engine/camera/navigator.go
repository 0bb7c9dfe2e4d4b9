package camera

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// NavigationMode selects what a primary-button drag does.
type NavigationMode int

const (
	NavigationOrbit NavigationMode = iota
	NavigationFixedOrbit
	NavigationFreeOrbit
	NavigationPan
	NavigationZoom
	NavigationNone
)

var navigationModeNames = map[NavigationMode]string{
	NavigationOrbit:      "orbit",
	NavigationFixedOrbit: "fixed-orbit",
	NavigationFreeOrbit:  "free-orbit",
	NavigationPan:        "pan",
	NavigationZoom:       "zoom",
	NavigationNone:       "none",
}

func (m NavigationMode) String() string {
	return navigationModeNames[m]
}

// ParseNavigationMode converts a settings value such as "fixed-orbit" into a NavigationMode.
//
// Returns:
//   - NavigationMode: the parsed mode
//   - bool: false if the name is not recognised
func ParseNavigationMode(name string) (NavigationMode, bool) {
	for m, n := range navigationModeNames {
		if n == name {
			return m, true
		}
	}
	return NavigationOrbit, false
}

// worldUp is the vertical axis of the Y-up world.
var worldUp = mgl32.Vec3{0, 1, 0}

type navigatorImpl struct {
	camera Camera
	mode   NavigationMode

	orbitSensitivity float32
	zoomFactor       float32
	dragZoomScale    float32
	minDistance      float32
}

// Navigator translates screen-space gestures into camera motion relative to the navigation origin.
// Deltas are in pixels; positive dx is rightwards and positive dy is downwards, as reported by the window.
type Navigator interface {
	// Camera returns the camera driven by the navigator.
	Camera() Camera

	// Mode returns the active navigation mode.
	Mode() NavigationMode

	// SetMode sets the navigation mode applied by primary-button drags.
	//
	// Parameters:
	//   - m: the navigation mode
	SetMode(m NavigationMode)

	// Drag applies a pointer drag. Primary-button drags use the active mode; other buttons always pan.
	// Nothing happens in NavigationNone.
	//
	// Parameters:
	//   - primary: true for the primary (left) button
	//   - dx, dy: the pointer delta in pixels
	Drag(primary bool, dx, dy float32)

	// Wheel applies a scroll-wheel zoom. Nothing happens in NavigationNone.
	//
	// Parameters:
	//   - steps: wheel steps, positive zooms in
	Wheel(steps float32)

	// Pan translates the eye and origin together in the view plane so that the content under the
	// pointer follows it.
	//
	// Parameters:
	//   - dx, dy: the pointer delta in pixels
	Pan(dx, dy float32)

	// Zoom moves the eye towards (positive) or away from the origin. In orthogonal mode the extents
	// are scaled instead.
	//
	// Parameters:
	//   - steps: zoom steps, each scaling the distance by the zoom factor
	Zoom(steps float32)

	// Orbit rotates the eye around the origin: horizontally about the world vertical axis and
	// vertically about the camera right axis, never tipping over the pole.
	//
	// Parameters:
	//   - dx, dy: the pointer delta in pixels
	Orbit(dx, dy float32)

	// FixedOrbit rotates the eye around the origin about the world vertical axis only.
	//
	// Parameters:
	//   - dx: the horizontal pointer delta in pixels
	FixedOrbit(dx float32)

	// FreeOrbit rotates the eye around the origin about the camera's own up and right axes, without
	// any constraint. The up vector follows the rotation.
	//
	// Parameters:
	//   - dx, dy: the pointer delta in pixels
	FreeOrbit(dx, dy float32)
}

var _ Navigator = &navigatorImpl{}

// NewNavigator creates a Navigator driving the given camera, in orbit mode by default.
//
// Parameters:
//   - c: the camera to drive
//   - options: functional options to configure the navigator
//
// Returns:
//   - Navigator: the newly created navigator
func NewNavigator(c Camera, options ...NavigatorBuilderOption) Navigator {
	n := &navigatorImpl{
		camera:           c,
		mode:             NavigationOrbit,
		orbitSensitivity: 0.01,
		zoomFactor:       0.9,
		dragZoomScale:    0.02,
		minDistance:      1e-3,
	}
	for _, option := range options {
		option(n)
	}
	return n
}

func (n *navigatorImpl) Camera() Camera {
	return n.camera
}

func (n *navigatorImpl) Mode() NavigationMode {
	return n.mode
}

func (n *navigatorImpl) SetMode(m NavigationMode) {
	n.mode = m
}

func (n *navigatorImpl) Drag(primary bool, dx, dy float32) {
	if n.mode == NavigationNone {
		return
	}
	if !primary {
		n.Pan(dx, dy)
		return
	}
	switch n.mode {
	case NavigationOrbit:
		n.Orbit(dx, dy)
	case NavigationFixedOrbit:
		n.FixedOrbit(dx)
	case NavigationFreeOrbit:
		n.FreeOrbit(dx, dy)
	case NavigationPan:
		n.Pan(dx, dy)
	case NavigationZoom:
		n.Zoom(-dy * n.dragZoomScale)
	}
}

func (n *navigatorImpl) Wheel(steps float32) {
	if n.mode == NavigationNone {
		return
	}
	n.Zoom(steps)
}

func (n *navigatorImpl) Pan(dx, dy float32) {
	c := n.camera
	right, up, _ := n.axes()
	wpp := n.worldPerPixel()

	offset := right.Mul(-dx * wpp).Add(up.Mul(dy * wpp))
	c.SetOrigin(c.Origin().Add(offset))
	c.SetPosition(c.Position().Add(offset))
}

func (n *navigatorImpl) Zoom(steps float32) {
	c := n.camera
	scale := math32.Pow(n.zoomFactor, steps)

	if c.Mode() == ModeOrthogonal {
		o := c.Orthogonal()
		o.Left *= scale
		o.Right *= scale
		o.Top *= scale
		o.Bottom *= scale
		c.SetOrthogonal(o)
		return
	}

	offset := c.Position().Sub(c.Origin())
	d := offset.Len()
	if d < 1e-8 {
		return
	}
	nd := math32.Max(d*scale, n.minDistance)
	c.SetPosition(c.Origin().Add(offset.Mul(nd / d)))
}

func (n *navigatorImpl) Orbit(dx, dy float32) {
	n.rotate(worldUp, -dx*n.orbitSensitivity, -dy*n.orbitSensitivity, true)
}

func (n *navigatorImpl) FixedOrbit(dx float32) {
	n.rotate(worldUp, -dx*n.orbitSensitivity, 0, true)
}

func (n *navigatorImpl) FreeOrbit(dx, dy float32) {
	_, up, _ := n.axes()
	n.rotate(up, -dx*n.orbitSensitivity, -dy*n.orbitSensitivity, false)
}

// rotate turns the eye offset and up vector about yawAxis by yaw, then about the camera right axis
// by pitch. With clampPole set, a pitch that would turn the camera upside down is dropped.
func (n *navigatorImpl) rotate(yawAxis mgl32.Vec3, yaw, pitch float32, clampPole bool) {
	c := n.camera
	offset := c.Position().Sub(c.Origin())
	if offset.Len() < 1e-8 {
		return
	}
	up := c.Up()

	qYaw := mgl32.QuatRotate(yaw, yawAxis.Normalize())
	offset = qYaw.Rotate(offset)
	up = qYaw.Rotate(up)

	if pitch != 0 {
		right := offset.Mul(-1).Cross(up)
		if right.Len() > 1e-8 {
			qPitch := mgl32.QuatRotate(pitch, right.Normalize())
			pOffset, pUp := qPitch.Rotate(offset), qPitch.Rotate(up)
			if !clampPole || pUp.Dot(worldUp) > -1e-4 {
				offset, up = pOffset, pUp
			}
		}
	}

	c.SetUp(up)
	c.SetPosition(c.Origin().Add(offset))
}

// axes returns the camera right, up and forward vectors in world space.
func (n *navigatorImpl) axes() (right, up, forward mgl32.Vec3) {
	v := n.camera.View()
	return v.Row(0).Vec3(), v.Row(1).Vec3(), v.Row(2).Vec3().Mul(-1)
}

// worldPerPixel returns the size of one pixel in world units at the origin's depth.
func (n *navigatorImpl) worldPerPixel() float32 {
	c := n.camera
	_, height := c.Viewport()
	if c.Mode() == ModeOrthogonal {
		o := c.Orthogonal()
		return (o.Top - o.Bottom) / float32(height)
	}
	d := c.Position().Sub(c.Origin()).Len()
	return 2 * d * math32.Tan(c.Perspective().Fov/2) / float32(height)
}
