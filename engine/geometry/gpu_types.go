package geometry

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct.
// Matches GPUVertex layout exactly (32 bytes).
//
//go:embed assets/vertex.wgsl
var GPUVertexSource string

// GPUVertexSize is the stride of one GPUVertex in the vertex buffer.
const GPUVertexSize = 32

// GPUVertex is one triangle corner in the vertex stream. Positions are not stored inline; the
// shader fetches them from the vertex-position texture through PositionIndex and applies the
// matrix addressed by TransformIndex from the transform texture.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
type GPUVertex struct {
	PositionIndex  uint32     // offset  0: texel index into the vertex-position texture
	Normal         [3]float32 // offset  4: vertex normal before transform
	ProductIndex   uint32     // offset 16: row of the product in the state lookup texture
	PickID         uint32     // offset 20: product ID + 1, written by the picking pass
	TransformIndex int32      // offset 24: matrix index into the transform texture, -1 for identity
	StyleIndex     uint32     // offset 28: default style texel
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, GPUVertexSize)
	g.put(buf)
	return buf
}

func (g *GPUVertex) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], g.PositionIndex)
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Normal[0]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Normal[1]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Normal[2]))
	binary.LittleEndian.PutUint32(buf[16:20], g.ProductIndex)
	binary.LittleEndian.PutUint32(buf[20:24], g.PickID)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(g.TransformIndex))
	binary.LittleEndian.PutUint32(buf[28:32], g.StyleIndex)
}

// MarshalVertices serializes a vertex stream into one contiguous buffer.
//
// Parameters:
//   - vertices: the vertex stream
//
// Returns:
//   - []byte: len(vertices)*GPUVertexSize bytes
func MarshalVertices(vertices []GPUVertex) []byte {
	buf := make([]byte, len(vertices)*GPUVertexSize)
	for i := range vertices {
		vertices[i].put(buf[i*GPUVertexSize:])
	}
	return buf
}
