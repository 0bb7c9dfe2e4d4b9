package material

import (
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Pass identifies one pass over the geometry. Every pass draws the same triangles; the fragment
// rules below decide which fragments survive.
type Pass int

const (
	// PassOpaque writes depth and draws every fragment that is not translucent.
	PassOpaque Pass = iota
	// PassTranslucent blends translucent fragments over the opaque result without writing depth.
	PassTranslucent
	// PassPick writes encoded product identifiers into the picking target.
	PassPick
)

const (
	// Ambient is the light level of a surface facing away from both lights.
	Ambient float32 = 0.3
	// XRayAlpha is the opacity of products drawn translucent in x-ray mode.
	XRayAlpha float32 = 0.1
)

// Visible reports whether a fragment of a product in state s survives the given pass.
// Hidden products never survive; picking-only products survive the pick pass only.
//
// Parameters:
//   - s: the product state
//   - alpha: the alpha channel of the base colour
//   - mode: the rendering mode
//   - pass: the pass being drawn
//
// Returns:
//   - bool: true if the fragment is drawn
func Visible(s state.State, alpha uint8, mode RenderingMode, pass Pass) bool {
	if s == state.Hidden {
		return false
	}
	if pass == PassPick {
		return true
	}
	if s == state.PickingOnly {
		return false
	}
	if pass == PassOpaque {
		return !translucent(s, alpha, mode)
	}
	return translucent(s, alpha, mode)
}

func translucent(s state.State, alpha uint8, mode RenderingMode) bool {
	if mode == ModeXRay {
		return s != state.XRayVisible && s != state.Highlighted
	}
	return alpha < 255
}

// BaseColour resolves the colour of a product before lighting: the highlighting colour wins over an
// override style, which wins over the default style baked into the geometry.
//
// Parameters:
//   - def: the default colour
//   - override: the override style colour, used when styled is true
//   - styled: whether the product has an override style
//   - s: the product state
//   - highlight: the highlighting colour
//
// Returns:
//   - [4]uint8: the resolved RGBA colour
func BaseColour(def, override [4]uint8, styled bool, s state.State, highlight [4]uint8) [4]uint8 {
	if s == state.Highlighted {
		return highlight
	}
	if styled {
		return override
	}
	return def
}

// Clipped reports whether a world position lies beyond an enabled clipping plane.
func (g *GPURenderSettings) Clipped(p mgl32.Vec3) bool {
	if g.ClippingA != 0 && planeDistance(g.ClippingPlaneA, p) > 0 {
		return true
	}
	return g.ClippingB != 0 && planeDistance(g.ClippingPlaneB, p) > 0
}

// Shade lights a base colour at a world position and applies the rendering mode.
//
// Parameters:
//   - base: the resolved base colour
//   - pos: the world-space fragment position
//   - normal: the world-space normal, need not be normalized
//   - pass: PassOpaque or PassTranslucent
//
// Returns:
//   - [4]float32: the output RGBA colour in [0, 1]
func (g *GPURenderSettings) Shade(base [4]uint8, pos, normal mgl32.Vec3, pass Pass) [4]float32 {
	c := NormalizeColour(base)

	light := float32(1)
	if n := normal.Len(); n > 1e-8 {
		nn := normal.Mul(1 / n)
		light = math32.Min(Ambient+
			lambert(nn, pos, g.LightA)+
			lambert(nn, pos, g.LightB), 1)
	}
	rgb := mgl32.Vec3{c[0] * light, c[1] * light, c[2] * light}

	if RenderingMode(g.Mode) == ModeGrayscale {
		l := rgb.Dot(mgl32.Vec3{0.299, 0.587, 0.114})
		rgb = mgl32.Vec3{l, l, l}
	}

	alpha := float32(1)
	if pass == PassTranslucent {
		alpha = c[3]
		if RenderingMode(g.Mode) == ModeXRay {
			alpha = XRayAlpha
		}
	}
	return [4]float32{rgb[0], rgb[1], rgb[2], alpha}
}

// lambert returns the two-sided diffuse contribution of one point light.
func lambert(n, pos mgl32.Vec3, l [4]float32) float32 {
	dir := mgl32.Vec3{l[0], l[1], l[2]}.Sub(pos)
	if dir.Len() < 1e-8 {
		return 0
	}
	return math32.Abs(n.Dot(dir.Normalize())) * l[3]
}

func planeDistance(p [4]float32, q mgl32.Vec3) float32 {
	return p[0]*q[0] + p[1]*q[1] + p[2]*q[2] + p[3]
}
