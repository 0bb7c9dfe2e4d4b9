package picking

import "log"

// Source renders the picking pass and reads back one pixel of it.
type Source interface {
	// PickPixel renders the colour-coded pass and returns the texel at (x, y) in framebuffer pixels.
	// The visible framebuffer is not touched.
	PickPixel(x, y int) ([4]uint8, error)
}

// picker is the implementation of the Picker interface.
type picker struct {
	source Source
	before func()
	after  func(productID int)
}

// Picker resolves the product under a screen coordinate.
type Picker interface {
	// GetID renders one picking pass and decodes the pixel at (x, y).
	//
	// Parameters:
	//   - x, y: framebuffer coordinates, origin at the top-left corner
	//
	// Returns:
	//   - int: the product ID, or NoHit for background, outside coordinates and failed passes
	GetID(x, y int) int
}

var _ Picker = &picker{}

// NewPicker creates a Picker reading from the given source.
//
// Parameters:
//   - src: the picking pass renderer
//   - options: functional options to configure the picker
//
// Returns:
//   - Picker: the newly created picker
func NewPicker(src Source, options ...PickerBuilderOption) Picker {
	p := &picker{source: src}
	for _, option := range options {
		option(p)
	}
	return p
}

func (p *picker) GetID(x, y int) int {
	if p.before != nil {
		p.before()
	}
	id := NoHit
	texel, err := p.source.PickPixel(x, y)
	if err != nil {
		log.Printf("[Picker] picking pass at (%d, %d) failed: %v", x, y, err)
	} else {
		id = DecodeID(texel)
	}
	if p.after != nil {
		p.after(id)
	}
	return id
}
