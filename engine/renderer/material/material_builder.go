package material

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*material)

// WithMode sets the initial rendering mode.
//
// Parameters:
//   - m: the rendering mode
//
// Returns:
//   - MaterialBuilderOption: a function that sets the rendering mode
func WithMode(m RenderingMode) MaterialBuilderOption {
	return func(mat *material) {
		mat.mode = m
	}
}

// WithBackground sets the RGBA clear colour.
//
// Parameters:
//   - c: the clear colour, 0-255 per channel
//
// Returns:
//   - MaterialBuilderOption: a function that sets the clear colour
func WithBackground(c [4]uint8) MaterialBuilderOption {
	return func(mat *material) {
		mat.background = c
	}
}

// WithHighlightingColour sets the colour of highlighted products.
//
// Parameters:
//   - c: the highlighting colour, 0-255 per channel
//
// Returns:
//   - MaterialBuilderOption: a function that sets the highlighting colour
func WithHighlightingColour(c [4]uint8) MaterialBuilderOption {
	return func(mat *material) {
		mat.highlight = c
	}
}

// WithLights replaces both point lights.
//
// Parameters:
//   - a, b: position and intensity of light A and light B
//
// Returns:
//   - MaterialBuilderOption: a function that sets the lights
func WithLights(a, b Light) MaterialBuilderOption {
	return func(mat *material) {
		mat.lights = [2]Light{a, b}
	}
}

// WithClippingPlane sets and enables one clipping plane.
//
// Parameters:
//   - slot: SlotA or SlotB
//   - p: the plane equation
//
// Returns:
//   - MaterialBuilderOption: a function that sets and enables the plane
func WithClippingPlane(slot int, p ClippingPlane) MaterialBuilderOption {
	return func(mat *material) {
		if validSlot(slot) {
			mat.planes[slot] = p
			mat.clipping[slot] = true
		}
	}
}
