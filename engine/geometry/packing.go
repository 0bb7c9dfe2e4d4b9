package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultColour is used for triangles of a payload that carries no style table.
var DefaultColour = [4]uint8{200, 200, 200, 255}

// PackedData is the GPU layout of one model, ready to be uploaded by a renderer backend.
type PackedData struct {
	// Vertices is the deduplicated vertex stream.
	Vertices []GPUVertex
	// Indices holds three entries per triangle into Vertices.
	Indices []uint32
	// PositionTexture holds one RGBA32Float texel (x, y, z, 1) per feed vertex.
	PositionTexture common.TextureStagingData
	// TransformTexture holds four RGBA32Float texels per matrix, one per column.
	TransformTexture common.TextureStagingData
	// StyleTexture holds one RGBA8Unorm texel per default style.
	StyleTexture common.TextureStagingData
	// Products is the product table in row order; ProductIndex values index into it.
	Products []ProductInfo
	// Transforms holds the column-major matrices, parallel to TransformTexture.
	Transforms []mgl32.Mat4
	// Region is the model bounding region.
	Region common.Region
	// TriangleCount is the number of triangles in the model.
	TriangleCount int
}

// Pack validates p and converts it into its GPU layout. Identical triangle corners are shared
// through the index buffer so that the vertex stream stays close to the feed vertex count.
//
// Parameters:
//   - p: the parsed payload
//
// Returns:
//   - *PackedData: the GPU layout
//   - error: wraps common.ErrLoad if the payload is inconsistent
func Pack(p *Payload) (*PackedData, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("failed to pack geometry: %w", err)
	}

	out := &PackedData{
		Indices:       make([]uint32, 0, len(p.Indices)),
		Products:      p.Products,
		TriangleCount: p.TriangleCount(),
	}

	rows := make(map[int]uint32, len(p.Products))
	for row, prod := range p.Products {
		rows[prod.ID] = uint32(row)
	}

	seen := make(map[GPUVertex]uint32, p.VertexCount())
	for tri := range out.TriangleCount {
		productID := int(p.TriangleProducts[tri])
		for corner := range 3 {
			vi := p.Indices[tri*3+corner]
			v := GPUVertex{
				PositionIndex:  vi,
				Normal:         [3]float32{p.Normals[vi*3], p.Normals[vi*3+1], p.Normals[vi*3+2]},
				ProductIndex:   rows[productID],
				PickID:         uint32(productID) + 1,
				TransformIndex: p.TriangleTransforms[tri],
				StyleIndex:     p.TriangleStyles[tri],
			}
			if len(p.Styles) == 0 {
				v.StyleIndex = 0
			}
			idx, ok := seen[v]
			if !ok {
				idx = uint32(len(out.Vertices))
				seen[v] = idx
				out.Vertices = append(out.Vertices, v)
			}
			out.Indices = append(out.Indices, idx)
		}
	}

	out.PositionTexture = common.NewLookupTexture(p.VertexCount(), 1, common.TexelFormatRGBA32Float)
	for i := range p.VertexCount() {
		out.PositionTexture.SetTexelFloats(i, [4]float32{p.Positions[i*3], p.Positions[i*3+1], p.Positions[i*3+2], 1})
	}

	out.Transforms = make([]mgl32.Mat4, p.TransformCount())
	out.TransformTexture = common.NewLookupTexture(len(out.Transforms), 4, common.TexelFormatRGBA32Float)
	for i := range out.Transforms {
		m := common.RowMajorToMat4(p.Transforms[i*16 : i*16+16])
		out.Transforms[i] = m
		for col := range 4 {
			c := m.Col(col)
			out.TransformTexture.SetTexelFloats(i*4+col, [4]float32{c[0], c[1], c[2], c[3]})
		}
	}

	styles := p.Styles
	if len(styles) == 0 {
		styles = [][4]uint8{DefaultColour}
	}
	out.StyleTexture = common.NewLookupTexture(len(styles), 1, common.TexelFormatRGBA8Unorm)
	for i, c := range styles {
		out.StyleTexture.SetTexelBytes(i, c)
	}

	out.Region = p.Region
	if !out.Region.Valid() {
		out.Region = computeRegion(p, out.Transforms)
	}
	return out, nil
}

// Position returns the world-space position of a vertex of the packed stream.
//
// Parameters:
//   - v: the vertex
//
// Returns:
//   - mgl32.Vec3: the transformed position
func (d *PackedData) Position(v GPUVertex) mgl32.Vec3 {
	t := d.PositionTexture.TexelFloats(int(v.PositionIndex))
	p := mgl32.Vec3{t[0], t[1], t[2]}
	if v.TransformIndex < 0 {
		return p
	}
	world, _ := common.TransformPoint(d.Transforms[v.TransformIndex], p)
	return world
}

// computeRegion derives the model region from the product regions, falling back to the transformed
// vertex positions when the product table carries none.
func computeRegion(p *Payload, transforms []mgl32.Mat4) common.Region {
	r := common.EmptyRegion()
	for _, prod := range p.Products {
		r = r.Union(prod.Region)
	}
	if r.Valid() {
		return r
	}
	for tri := range p.TriangleCount() {
		for corner := range 3 {
			vi := p.Indices[tri*3+corner]
			pos := mgl32.Vec3{p.Positions[vi*3], p.Positions[vi*3+1], p.Positions[vi*3+2]}
			if t := p.TriangleTransforms[tri]; t >= 0 {
				pos, _ = common.TransformPoint(transforms[t], pos)
			}
			r = r.Extend(pos)
		}
	}
	return r
}
