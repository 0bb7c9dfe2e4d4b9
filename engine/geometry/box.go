package geometry

import (
	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Box describes one axis-aligned box product for BoxPayload.
type Box struct {
	ID     int
	Type   common.ProductType
	Region common.Region
	Colour [4]uint8
}

// boxFaces lists each face of a box as its outward normal and the four corner indices of
// Region.Corners, wound counter-clockwise when seen from outside.
var boxFaces = [6]struct {
	normal  mgl32.Vec3
	corners [4]int
}{
	{mgl32.Vec3{-1, 0, 0}, [4]int{0, 4, 6, 2}},
	{mgl32.Vec3{1, 0, 0}, [4]int{1, 3, 7, 5}},
	{mgl32.Vec3{0, -1, 0}, [4]int{0, 1, 5, 4}},
	{mgl32.Vec3{0, 1, 0}, [4]int{2, 6, 7, 3}},
	{mgl32.Vec3{0, 0, -1}, [4]int{0, 2, 3, 1}},
	{mgl32.Vec3{0, 0, 1}, [4]int{4, 5, 7, 6}},
}

// BoxPayload builds a payload made of one box per product, with flat per-face normals and
// identity transforms. Each box gets its own default style.
//
// Parameters:
//   - boxes: the products to generate
//
// Returns:
//   - *Payload: the generated payload
func BoxPayload(boxes ...Box) *Payload {
	p := &Payload{Region: common.EmptyRegion()}
	for i, b := range boxes {
		corners := b.Region.Corners()
		for _, face := range boxFaces {
			base := uint32(len(p.Positions) / 3)
			for _, c := range face.corners {
				p.Positions = append(p.Positions, corners[c][0], corners[c][1], corners[c][2])
				p.Normals = append(p.Normals, face.normal[0], face.normal[1], face.normal[2])
			}
			p.Indices = append(p.Indices, base, base+1, base+2, base, base+2, base+3)
			for range 2 {
				p.TriangleProducts = append(p.TriangleProducts, int32(b.ID))
				p.TriangleTransforms = append(p.TriangleTransforms, -1)
				p.TriangleStyles = append(p.TriangleStyles, uint32(i))
			}
		}
		p.Products = append(p.Products, ProductInfo{ID: b.ID, Type: b.Type, Region: b.Region})
		p.Styles = append(p.Styles, b.Colour)
		p.Region = p.Region.Union(b.Region)
	}
	return p
}
