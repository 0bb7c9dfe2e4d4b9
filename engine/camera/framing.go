package camera

import (
	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ViewType names one of the canonical directional views.
type ViewType string

const (
	ViewTop    ViewType = "top"
	ViewBottom ViewType = "bottom"
	ViewFront  ViewType = "front"
	ViewBack   ViewType = "back"
	ViewLeft   ViewType = "left"
	ViewRight  ViewType = "right"
)

// viewDirections maps each view to its viewing direction and up vector in the Y-up, right-handed
// world. The front view looks along +Z, so the camera ends up on the -Z side of the origin.
var viewDirections = map[ViewType]struct {
	dir mgl32.Vec3
	up  mgl32.Vec3
}{
	ViewFront:  {mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
	ViewBack:   {mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
	ViewLeft:   {mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	ViewRight:  {mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
	ViewTop:    {mgl32.Vec3{0, -1, 0}, mgl32.Vec3{0, 0, 1}},
	ViewBottom: {mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 0, -1}},
}

// ViewDirection returns the viewing direction and up vector of a canonical view.
//
// Parameters:
//   - v: the view type
//
// Returns:
//   - dir: the normalized direction from the eye towards the origin
//   - up: the up vector
//   - ok: false if v is not a known view
func ViewDirection(v ViewType) (dir, up mgl32.Vec3, ok bool) {
	d, ok := viewDirections[v]
	return d.dir, d.up, ok
}

// FrameDistance returns the smallest eye distance from the region centroid at which the region's
// bounding sphere fits the viewport at the camera's current field of view.
//
// Parameters:
//   - c: the camera supplying field of view and aspect ratio
//   - r: the region to frame
//
// Returns:
//   - float32: the framing distance
func FrameDistance(c Camera, r common.Region) float32 {
	radius := r.Radius()
	if radius <= 0 {
		radius = 1
	}
	fovY := c.Perspective().Fov
	fovX := 2 * math32.Atan(math32.Tan(fovY/2)*c.Aspect())
	return radius / math32.Sin(math32.Min(fovY, fovX)/2)
}

// SetTarget moves the navigation origin to the region centroid and sets the framing distance.
// The eye does not move.
//
// Parameters:
//   - c: the camera to update
//   - r: the target region
//
// Returns:
//   - bool: false if the region is invalid, in which case the camera is unchanged
func SetTarget(c Camera, r common.Region) bool {
	if !r.Valid() {
		return false
	}
	c.SetOrigin(r.Centroid())
	c.SetDistance(FrameDistance(c, r))
	fitOrthogonal(c, r.Radius())
	return true
}

// Show places the camera at origin - direction * distance for one of the canonical views.
//
// Parameters:
//   - c: the camera to update
//   - v: the view type
//
// Returns:
//   - bool: false if v is not a known view
func Show(c Camera, v ViewType) bool {
	dir, up, ok := ViewDirection(v)
	if !ok {
		return false
	}
	c.SetUp(up)
	c.SetPosition(c.Origin().Sub(dir.Mul(c.Distance())))
	return true
}

// ZoomTo frames a region: the origin moves to its centroid and the eye moves along the current
// viewing direction to the framing distance.
//
// Parameters:
//   - c: the camera to update
//   - r: the region to frame
//
// Returns:
//   - bool: false if the region is invalid, in which case the camera is unchanged
func ZoomTo(c Camera, r common.Region) bool {
	dir := c.Direction()
	if !SetTarget(c, r) {
		return false
	}
	c.SetPosition(c.Origin().Sub(dir.Mul(c.Distance())))
	return true
}

// FitClipping sets the near and far planes of both projections so that the whole scene region
// lies between them as seen from the current eye. Nothing is updated when the planes already match.
//
// Parameters:
//   - c: the camera to update
//   - scene: the union region of everything that must stay visible
func FitClipping(c Camera, scene common.Region) {
	if !scene.Valid() {
		return
	}
	radius := math32.Max(scene.Radius(), 1e-3)
	d := c.Position().Sub(scene.Centroid()).Len()

	far := (d + radius) * 1.1
	near := math32.Max((d-radius)*0.9, far*1e-4)

	p := c.Perspective()
	if p.Near != near || p.Far != far {
		p.Near, p.Far = near, far
		c.SetPerspective(p)
	}

	o := c.Orthogonal()
	oNear, oFar := d-radius*1.1, d+radius*1.1
	if o.Near != oNear || o.Far != oFar {
		o.Near, o.Far = oNear, oFar
		c.SetOrthogonal(o)
	}
}

// fitOrthogonal sizes the orthogonal extents so that a sphere of the given radius fills the viewport.
func fitOrthogonal(c Camera, radius float32) {
	if radius <= 0 {
		return
	}
	halfW, halfH := radius, radius
	if aspect := c.Aspect(); aspect >= 1 {
		halfW = radius * aspect
	} else {
		halfH = radius / aspect
	}
	o := c.Orthogonal()
	o.Left, o.Right, o.Bottom, o.Top = -halfW, halfW, -halfH, halfH
	c.SetOrthogonal(o)
}
