package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPURenderSettingsSource is the canonical WGSL definition of the RenderSettings struct.
// Matches GPURenderSettings layout exactly (96 bytes, std430 aligned).
//
//go:embed assets/render_settings.wgsl
var GPURenderSettingsSource string

// GPURenderSettings is the GPU-aligned uniform holding the frame-global shading parameters.
// Matches the WGSL RenderSettings struct layout exactly (see GPURenderSettingsSource).
// Size: 96 bytes.
type GPURenderSettings struct {
	LightA         [4]float32 // offset  0: point light A position (xyz) and intensity (w)
	LightB         [4]float32 // offset 16: point light B position (xyz) and intensity (w)
	ClippingPlaneA [4]float32 // offset 32: plane equation a, b, c, d
	ClippingPlaneB [4]float32 // offset 48: plane equation a, b, c, d
	Highlight      [4]float32 // offset 64: normalized highlighting colour
	Mode           uint32     // offset 80: RenderingMode
	ClippingA      uint32     // offset 84: 1 when plane A is enabled
	ClippingB      uint32     // offset 88: 1 when plane B is enabled
	_              uint32     // offset 92: padding to 16-byte alignment
}

// Size returns the size of the GPURenderSettings struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (96)
func (g *GPURenderSettings) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPURenderSettings struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 96-byte buffer ready for GPU upload
func (g *GPURenderSettings) Marshal() []byte {
	buf := make([]byte, g.Size())
	vectors := [][4]float32{g.LightA, g.LightB, g.ClippingPlaneA, g.ClippingPlaneB, g.Highlight}
	for v, vec := range vectors {
		for i := range 4 {
			binary.LittleEndian.PutUint32(buf[v*16+i*4:], math.Float32bits(vec[i]))
		}
	}
	binary.LittleEndian.PutUint32(buf[80:84], g.Mode)
	binary.LittleEndian.PutUint32(buf[84:88], g.ClippingA)
	binary.LittleEndian.PutUint32(buf[88:92], g.ClippingB)
	return buf
}
