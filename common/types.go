// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"encoding/binary"
	"math"
)

// LookupTextureWidth is the fixed texel width of every data texture (vertex positions, transforms,
// product states, styles). Element index i lives at row i / LookupTextureWidth, column i % LookupTextureWidth.
// The shaders hard-code the same value.
const LookupTextureWidth = 1024

// TexelFormat identifies how the bytes of a TextureStagingData are interpreted on the GPU.
type TexelFormat int

const (
	// TexelFormatRGBA8Unorm stores four normalized bytes per texel (colours).
	TexelFormatRGBA8Unorm TexelFormat = iota

	// TexelFormatRGBA8Uint stores four unsigned bytes per texel, read as integers (state/style tables).
	TexelFormatRGBA8Uint

	// TexelFormatRGBA32Float stores four little-endian float32 values per texel (positions, matrices).
	TexelFormatRGBA32Float
)

// BytesPerTexel returns the size of one texel in bytes.
func (f TexelFormat) BytesPerTexel() uint32 {
	if f == TexelFormatRGBA32Float {
		return 16
	}
	return 4
}

// TextureStagingData holds texel data for a texture binding pending GPU upload.
// Data textures are always LookupTextureWidth wide so that element addressing is fixed.
type TextureStagingData struct {
	// Pixels is the raw texel data, BytesPerTexel bytes per texel, row-major.
	Pixels []byte
	// Width is the width of the texture in texels.
	Width uint32
	// Height is the height of the texture in texels.
	Height uint32
	// Format describes the texel layout of Pixels.
	Format TexelFormat
}

// LookupAddress maps a linear element index to its (row, col) texel in a lookup texture.
//
// Parameters:
//   - index: the element index
//
// Returns:
//   - row, col: the texel coordinates
func LookupAddress(index int) (row, col int) {
	return index / LookupTextureWidth, index % LookupTextureWidth
}

// NewLookupTexture allocates a zeroed lookup texture large enough for count elements of texelsPerElement texels each.
// A texture always has at least one row so that it can be bound even when the table is empty.
//
// Parameters:
//   - count: the number of elements
//   - texelsPerElement: the number of consecutive texels occupied by each element
//   - format: the texel format
//
// Returns:
//   - TextureStagingData: the zeroed texture
func NewLookupTexture(count, texelsPerElement int, format TexelFormat) TextureStagingData {
	texels := count * texelsPerElement
	height := (texels + LookupTextureWidth - 1) / LookupTextureWidth
	if height == 0 {
		height = 1
	}
	return TextureStagingData{
		Pixels: make([]byte, height*LookupTextureWidth*int(format.BytesPerTexel())),
		Width:  LookupTextureWidth,
		Height: uint32(height),
		Format: format,
	}
}

// SetTexelBytes writes a 4-byte texel at the given texel index. Only valid for 8-bit formats.
func (t *TextureStagingData) SetTexelBytes(index int, v [4]uint8) {
	off := index * 4
	copy(t.Pixels[off:off+4], v[:])
}

// TexelBytes reads the 4-byte texel at the given texel index. Only valid for 8-bit formats.
func (t *TextureStagingData) TexelBytes(index int) [4]uint8 {
	off := index * 4
	return [4]uint8{t.Pixels[off], t.Pixels[off+1], t.Pixels[off+2], t.Pixels[off+3]}
}

// SetTexelFloats writes a 4-float texel at the given texel index. Only valid for TexelFormatRGBA32Float.
func (t *TextureStagingData) SetTexelFloats(index int, v [4]float32) {
	off := index * 16
	for i := range 4 {
		binary.LittleEndian.PutUint32(t.Pixels[off+i*4:], math.Float32bits(v[i]))
	}
}

// TexelFloats reads the 4-float texel at the given texel index. Only valid for TexelFormatRGBA32Float.
func (t *TextureStagingData) TexelFloats(index int) [4]float32 {
	off := index * 16
	var out [4]float32
	for i := range 4 {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(t.Pixels[off+i*4:]))
	}
	return out
}
