// Package material describes how the shaded pass colours surfaces: the rendering mode, two point
// lights, the highlighting colour, the background and up to two clipping planes. The same rules are
// evaluated by the WGSL fragment shaders and by the CPU rasterizer of the software backend.
package material

import "fmt"

// RenderingMode changes fragment behaviour only; geometry is never affected.
type RenderingMode uint32

const (
	// ModeNormal shades products with their lit colour.
	ModeNormal RenderingMode = iota
	// ModeGrayscale outputs the luminance of the lit colour.
	ModeGrayscale
	// ModeXRay draws every product translucent except x-ray-visible and highlighted ones.
	ModeXRay
)

var renderingModeNames = map[RenderingMode]string{
	ModeNormal:    "normal",
	ModeGrayscale: "grayscale",
	ModeXRay:      "xray",
}

func (m RenderingMode) String() string {
	if n, ok := renderingModeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("mode(%d)", uint32(m))
}

// ParseRenderingMode converts a settings value ("normal", "grayscale" or "xray") into a RenderingMode.
//
// Returns:
//   - RenderingMode: the parsed mode
//   - bool: false if the name is not recognised
func ParseRenderingMode(name string) (RenderingMode, bool) {
	for m, n := range renderingModeNames {
		if n == name {
			return m, true
		}
	}
	return ModeNormal, false
}

// Light is a point light: world position in xyz and intensity in w.
type Light [4]float32

// ClippingPlane is the plane equation a*x + b*y + c*z + d = 0. Fragments on the positive side are
// discarded while the plane is enabled.
type ClippingPlane [4]float32

const (
	// SlotA addresses light A and clipping plane A.
	SlotA = 0
	// SlotB addresses light B and clipping plane B.
	SlotB = 1
)

type material struct {
	mode       RenderingMode
	background [4]uint8
	highlight  [4]uint8
	lights     [2]Light
	planes     [2]ClippingPlane
	clipping   [2]bool
	revision   uint64
}

// Material defines the interface for the frame-global appearance settings.
// Every setter bumps the revision so that the frame loop can detect changes.
type Material interface {
	// Mode returns the active rendering mode.
	Mode() RenderingMode

	// SetMode sets the rendering mode.
	//
	// Parameters:
	//   - m: the rendering mode
	SetMode(m RenderingMode)

	// Background returns the RGBA clear colour.
	Background() [4]uint8

	// SetBackground sets the RGBA clear colour.
	SetBackground(c [4]uint8)

	// HighlightingColour returns the RGBA colour of highlighted products.
	HighlightingColour() [4]uint8

	// SetHighlightingColour sets the RGBA colour of highlighted products.
	SetHighlightingColour(c [4]uint8)

	// Light returns light A (SlotA) or B (SlotB).
	Light(slot int) Light

	// SetLight replaces light A (SlotA) or B (SlotB). Other slots are ignored.
	//
	// Parameters:
	//   - slot: SlotA or SlotB
	//   - l: position and intensity
	SetLight(slot int, l Light)

	// ClippingPlane returns clipping plane A (SlotA) or B (SlotB) and whether it is enabled.
	ClippingPlane(slot int) (ClippingPlane, bool)

	// SetClippingPlane replaces the equation of clipping plane A (SlotA) or B (SlotB) without
	// changing whether it is enabled.
	//
	// Parameters:
	//   - slot: SlotA or SlotB
	//   - p: the plane equation
	SetClippingPlane(slot int, p ClippingPlane)

	// SetClipping enables or disables clipping plane A (SlotA) or B (SlotB).
	SetClipping(slot int, enabled bool)

	// Uniform returns the GPU representation of the settings.
	Uniform() GPURenderSettings

	// Revision returns a counter that increases on every mutation.
	Revision() uint64
}

var _ Material = &material{}

// NewMaterial creates the appearance settings with the viewer defaults: light grey background,
// orange highlighting, a strong light above the model and a weak one below it, no clipping.
//
// Parameters:
//   - options: functional options to configure the settings
//
// Returns:
//   - Material: the newly created settings
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		mode:       ModeNormal,
		background: [4]uint8{230, 230, 230, 255},
		highlight:  [4]uint8{255, 173, 33, 255},
		lights: [2]Light{
			{0, 1000000, 200000, 0.8},
			{0, -500000, 50000, 0.2},
		},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *material) Mode() RenderingMode {
	return m.mode
}

func (m *material) SetMode(mode RenderingMode) {
	m.mode = mode
	m.revision++
}

func (m *material) Background() [4]uint8 {
	return m.background
}

func (m *material) SetBackground(c [4]uint8) {
	m.background = c
	m.revision++
}

func (m *material) HighlightingColour() [4]uint8 {
	return m.highlight
}

func (m *material) SetHighlightingColour(c [4]uint8) {
	m.highlight = c
	m.revision++
}

func (m *material) Light(slot int) Light {
	if !validSlot(slot) {
		return Light{}
	}
	return m.lights[slot]
}

func (m *material) SetLight(slot int, l Light) {
	if !validSlot(slot) {
		return
	}
	m.lights[slot] = l
	m.revision++
}

func (m *material) ClippingPlane(slot int) (ClippingPlane, bool) {
	if !validSlot(slot) {
		return ClippingPlane{}, false
	}
	return m.planes[slot], m.clipping[slot]
}

func (m *material) SetClippingPlane(slot int, p ClippingPlane) {
	if !validSlot(slot) {
		return
	}
	m.planes[slot] = p
	m.revision++
}

func (m *material) SetClipping(slot int, enabled bool) {
	if !validSlot(slot) {
		return
	}
	m.clipping[slot] = enabled
	m.revision++
}

func (m *material) Uniform() GPURenderSettings {
	return GPURenderSettings{
		LightA:         m.lights[SlotA],
		LightB:         m.lights[SlotB],
		ClippingPlaneA: m.planes[SlotA],
		ClippingPlaneB: m.planes[SlotB],
		Highlight:      NormalizeColour(m.highlight),
		Mode:           uint32(m.mode),
		ClippingA:      boolToUint(m.clipping[SlotA]),
		ClippingB:      boolToUint(m.clipping[SlotB]),
	}
}

func (m *material) Revision() uint64 {
	return m.revision
}

// NormalizeColour converts an 8-bit RGBA colour to [0, 1] floats.
func NormalizeColour(c [4]uint8) [4]float32 {
	return [4]float32{float32(c[0]) / 255, float32(c[1]) / 255, float32(c[2]) / 255, float32(c[3]) / 255}
}

func validSlot(slot int) bool {
	return slot == SlotA || slot == SlotB
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
