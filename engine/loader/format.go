package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
)

const (
	// feedMagic is "BIMG" read as a little-endian uint32.
	feedMagic   uint32 = 0x474D4942
	feedVersion uint32 = 1

	feedHeaderSize  = 52
	feedProductSize = 32
)

var (
	errInvalidMagic   = fmt.Errorf("invalid geometry feed magic: %w", common.ErrLoad)
	errInvalidVersion = fmt.Errorf("unsupported geometry feed version: %w", common.ErrLoad)
	errTruncated      = fmt.Errorf("truncated geometry feed: %w", common.ErrLoad)
)

// feedHeader is the fixed-size header of a geometry feed.
type feedHeader struct {
	Magic          uint32
	Version        uint32
	VertexCount    uint32
	TriangleCount  uint32
	ProductCount   uint32
	TransformCount uint32
	StyleCount     uint32
	Min            [3]float32
	Max            [3]float32
}

// feedProduct is one row of the product table of a geometry feed.
type feedProduct struct {
	ID   int32
	Type int32
	Min  [3]float32
	Max  [3]float32
}

// bodySize returns the number of bytes following the header.
func (h *feedHeader) bodySize() uint64 {
	vc, tc := uint64(h.VertexCount), uint64(h.TriangleCount)
	return vc*3*4*2 + // positions, normals
		tc*3*4 + // indices
		tc*4*3 + // triProduct, triTransform, triStyle
		uint64(h.TransformCount)*16*4 +
		uint64(h.ProductCount)*feedProductSize +
		uint64(h.StyleCount)*4
}

// Decode reads a complete geometry feed and validates it.
//
// Parameters:
//   - r: the reader providing the feed
//
// Returns:
//   - *geometry.Payload: the parsed payload
//   - error: wraps common.ErrLoad if the feed is malformed or inconsistent
func Decode(r io.Reader) (*geometry.Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read geometry feed: %v: %w", err, common.ErrLoad)
	}
	return DecodeBytes(data)
}

// DecodeBytes parses a complete in-memory geometry feed and validates it.
//
// Parameters:
//   - data: the feed bytes
//
// Returns:
//   - *geometry.Payload: the parsed payload
//   - error: wraps common.ErrLoad if the feed is malformed or inconsistent
func DecodeBytes(data []byte) (*geometry.Payload, error) {
	if len(data) < feedHeaderSize {
		return nil, errTruncated
	}

	r := bytes.NewReader(data)
	var header feedHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read feed header: %v: %w", err, common.ErrLoad)
	}
	if header.Magic != feedMagic {
		return nil, errInvalidMagic
	}
	if header.Version != feedVersion {
		return nil, errInvalidVersion
	}
	// checked before any allocation so a corrupt count can not exhaust memory
	if uint64(len(data)-feedHeaderSize) < header.bodySize() {
		return nil, errTruncated
	}

	p := &geometry.Payload{
		Positions:          make([]float32, header.VertexCount*3),
		Normals:            make([]float32, header.VertexCount*3),
		Indices:            make([]uint32, header.TriangleCount*3),
		TriangleProducts:   make([]int32, header.TriangleCount),
		TriangleTransforms: make([]int32, header.TriangleCount),
		TriangleStyles:     make([]uint32, header.TriangleCount),
		Transforms:         make([]float32, header.TransformCount*16),
		Region:             common.Region{Min: header.Min, Max: header.Max},
	}
	products := make([]feedProduct, header.ProductCount)
	styles := make([][4]uint8, header.StyleCount)

	for _, dst := range []any{
		p.Positions,
		p.Normals,
		p.Indices,
		p.TriangleProducts,
		p.TriangleTransforms,
		p.TriangleStyles,
		p.Transforms,
		products,
		styles,
	} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, errTruncated
		}
	}

	p.Products = make([]geometry.ProductInfo, len(products))
	for i, fp := range products {
		p.Products[i] = geometry.ProductInfo{
			ID:     int(fp.ID),
			Type:   common.ProductType(fp.Type),
			Region: common.Region{Min: fp.Min, Max: fp.Max},
		}
	}
	p.Styles = styles

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Encode writes a payload as a geometry feed. Decode(Encode(p)) reproduces p.
//
// Parameters:
//   - w: the destination
//   - p: the payload to write
//
// Returns:
//   - error: wraps common.ErrLoad if the payload is inconsistent, or the write error
func Encode(w io.Writer, p *geometry.Payload) error {
	if err := p.Validate(); err != nil {
		return err
	}

	header := feedHeader{
		Magic:          feedMagic,
		Version:        feedVersion,
		VertexCount:    uint32(p.VertexCount()),
		TriangleCount:  uint32(p.TriangleCount()),
		ProductCount:   uint32(len(p.Products)),
		TransformCount: uint32(p.TransformCount()),
		StyleCount:     uint32(len(p.Styles)),
		Min:            p.Region.Min,
		Max:            p.Region.Max,
	}
	products := make([]feedProduct, len(p.Products))
	for i, prod := range p.Products {
		products[i] = feedProduct{
			ID:   int32(prod.ID),
			Type: int32(prod.Type),
			Min:  prod.Region.Min,
			Max:  prod.Region.Max,
		}
	}

	var buf bytes.Buffer
	buf.Grow(feedHeaderSize + int(header.bodySize()))
	for _, src := range []any{
		&header,
		p.Positions,
		p.Normals,
		p.Indices,
		p.TriangleProducts,
		p.TriangleTransforms,
		p.TriangleStyles,
		p.Transforms,
		products,
		p.Styles,
	} {
		if err := binary.Write(&buf, binary.LittleEndian, src); err != nil {
			return fmt.Errorf("failed to encode geometry feed: %w", err)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}
