package state

import "fmt"

// State is the visibility/highlight classification of a product, stored in the red channel of the
// per-model lookup texture. Values are the upper end of the byte range so that they never collide
// with style indices.
type State uint8

const (
	// Undefined means visible with the default (or overridden) style. Every product starts here.
	Undefined State = 0xFF
	// Hidden products produce no fragments in either the shaded or the picking pass.
	Hidden State = 0xFE
	// Highlighted products are drawn with the renderer's highlighting colour.
	Highlighted State = 0xFD
	// XRayVisible products stay opaque while the renderer is in x-ray mode.
	XRayVisible State = 0xFC
	// PickingOnly products are invisible but still resolve in the picking pass.
	PickingOnly State = 0xFB
)

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	switch s {
	case Undefined, Hidden, Highlighted, XRayVisible, PickingOnly:
		return true
	}
	return false
}

func (s State) String() string {
	switch s {
	case Undefined:
		return "undefined"
	case Hidden:
		return "hidden"
	case Highlighted:
		return "highlighted"
	case XRayVisible:
		return "xray-visible"
	case PickingOnly:
		return "picking-only"
	}
	return fmt.Sprintf("state(0x%02X)", uint8(s))
}

// Style is an override-style index stored in the green channel of the per-model lookup texture.
type Style uint8

const (
	// MaxStyles is the number of definable style slots (indices 0 to MaxStyles-1).
	MaxStyles = 224

	// NoStyle means the product keeps its default appearance.
	NoStyle Style = 0xFF

	// Unstyled may be passed to SetStyle to remove an override; it is stored as NoStyle.
	Unstyled Style = 0xFE
)

// Valid reports whether s can be assigned to a product.
func (s Style) Valid() bool {
	return int(s) < MaxStyles || s == NoStyle || s == Unstyled
}
