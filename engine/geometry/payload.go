// Package geometry converts a parsed geometry feed into GPU-ready layouts and owns the resulting
// per-model Handle.
package geometry

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bim/common"
)

// ProductInfo is one row of a model's product table.
type ProductInfo struct {
	ID     int
	Type   common.ProductType
	Region common.Region
}

// Payload is a fully parsed geometry feed for one model. Arrays are flat and tightly packed.
type Payload struct {
	// Positions holds vertexCount*3 world or model-space coordinates.
	Positions []float32
	// Normals holds vertexCount*3 normal components.
	Normals []float32
	// Indices holds triangleCount*3 vertex indices.
	Indices []uint32
	// TriangleProducts holds the product ID of each triangle.
	TriangleProducts []int32
	// TriangleTransforms holds the transform table index of each triangle, -1 for identity.
	TriangleTransforms []int32
	// TriangleStyles holds the default style index of each triangle.
	TriangleStyles []uint32
	// Transforms holds transformCount row-major 4x4 matrices.
	Transforms []float32
	// Products is the product table, in row order.
	Products []ProductInfo
	// Styles holds the default RGBA colours referenced by TriangleStyles.
	Styles [][4]uint8
	// Region is the model bounding region from the feed header.
	Region common.Region
}

// VertexCount returns the number of vertices in the payload.
func (p *Payload) VertexCount() int {
	return len(p.Positions) / 3
}

// TriangleCount returns the number of triangles in the payload.
func (p *Payload) TriangleCount() int {
	return len(p.Indices) / 3
}

// TransformCount returns the number of matrices in the transform table.
func (p *Payload) TransformCount() int {
	return len(p.Transforms) / 16
}

// Validate checks the payload for internal consistency.
//
// Returns:
//   - error: wraps common.ErrLoad describing the first inconsistency found, or nil
func (p *Payload) Validate() error {
	if len(p.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3: %w", len(p.Positions), common.ErrLoad)
	}
	if len(p.Normals) != len(p.Positions) {
		return fmt.Errorf("normals length %d does not match positions length %d: %w", len(p.Normals), len(p.Positions), common.ErrLoad)
	}
	if len(p.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d is not a multiple of 3: %w", len(p.Indices), common.ErrLoad)
	}
	if len(p.Transforms)%16 != 0 {
		return fmt.Errorf("transforms length %d is not a multiple of 16: %w", len(p.Transforms), common.ErrLoad)
	}
	if len(p.Products) == 0 {
		return fmt.Errorf("empty product table: %w", common.ErrLoad)
	}

	tc := p.TriangleCount()
	if len(p.TriangleProducts) != tc || len(p.TriangleTransforms) != tc || len(p.TriangleStyles) != tc {
		return fmt.Errorf("per-triangle arrays do not match triangle count %d: %w", tc, common.ErrLoad)
	}

	vc := uint32(p.VertexCount())
	for i, idx := range p.Indices {
		if idx >= vc {
			return fmt.Errorf("index %d references vertex %d of %d: %w", i, idx, vc, common.ErrLoad)
		}
	}

	known := make(map[int]struct{}, len(p.Products))
	for _, prod := range p.Products {
		if prod.ID < 0 {
			return fmt.Errorf("negative product ID %d: %w", prod.ID, common.ErrLoad)
		}
		if _, dup := known[prod.ID]; dup {
			return fmt.Errorf("duplicate product ID %d: %w", prod.ID, common.ErrLoad)
		}
		known[prod.ID] = struct{}{}
	}

	trc := int32(p.TransformCount())
	for tri := range tc {
		if _, ok := known[int(p.TriangleProducts[tri])]; !ok {
			return fmt.Errorf("triangle %d references unknown product %d: %w", tri, p.TriangleProducts[tri], common.ErrLoad)
		}
		if t := p.TriangleTransforms[tri]; t < -1 || t >= trc {
			return fmt.Errorf("triangle %d references transform %d of %d: %w", tri, t, trc, common.ErrLoad)
		}
		if len(p.Styles) > 0 && int(p.TriangleStyles[tri]) >= len(p.Styles) {
			return fmt.Errorf("triangle %d references style %d of %d: %w", tri, p.TriangleStyles[tri], len(p.Styles), common.ErrLoad)
		}
	}
	return nil
}
