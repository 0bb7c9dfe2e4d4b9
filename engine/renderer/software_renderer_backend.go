package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// wEpsilon rejects triangles with a corner on or behind the eye plane.
const wEpsilon = 1e-6

// SoftwareBackend is implemented by the BackendTypeSoftware backend.
type SoftwareBackend interface {
	RendererBackend

	// Image returns the colour target of the last Render. The image is reused between frames.
	//
	// Returns:
	//   - *image.RGBA: the colour target
	Image() *image.RGBA
}

type softwareResources struct {
	data     *geometry.PackedData
	released bool
}

func (r *softwareResources) Release() {
	r.released = true
	r.data = nil
}

type softwareRendererBackendImpl struct {
	width, height int

	colour    *image.RGBA
	depth     []float32
	pick      []uint8
	pickDepth []float32
}

var _ SoftwareBackend = &softwareRendererBackendImpl{}

func newSoftwareRendererBackend() *softwareRendererBackendImpl {
	return &softwareRendererBackendImpl{}
}

// rasterVertex is one triangle corner after the vertex stage.
type rasterVertex struct {
	clip   mgl32.Vec4
	world  mgl32.Vec3
	normal mgl32.Vec3
}

// fragment is called for every covered pixel centre with the pixel index, the depth and the
// perspective-correct world position.
type fragment func(pixel int, z float32, world mgl32.Vec3)

func (b *softwareRendererBackendImpl) Configure(width, height int) {
	b.width, b.height = width, height
	b.colour = image.NewRGBA(image.Rect(0, 0, width, height))
	b.depth = make([]float32, width*height)
	b.pick = make([]uint8, width*height*4)
	b.pickDepth = make([]float32, width*height)
}

func (b *softwareRendererBackendImpl) Upload(data *geometry.PackedData) (geometry.Resources, error) {
	return &softwareResources{data: data}, nil
}

func (b *softwareRendererBackendImpl) Image() *image.RGBA {
	return b.colour
}

func (b *softwareRendererBackendImpl) Render(frame *Frame) error {
	bg := frame.Background
	fill := color.RGBA{R: bg[0], G: bg[1], B: bg[2], A: bg[3]}
	for i := 0; i < len(b.colour.Pix); i += 4 {
		b.colour.Pix[i], b.colour.Pix[i+1], b.colour.Pix[i+2], b.colour.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	for i := range b.depth {
		b.depth[i] = 1
	}

	for _, pass := range []material.Pass{material.PassOpaque, material.PassTranslucent} {
		for i := range frame.Items {
			item := &frame.Items[i]
			if item.Culled {
				continue
			}
			data, err := softwareData(item)
			if err != nil {
				return err
			}
			b.drawModel(frame, item, data, pass)
		}
	}
	return nil
}

func (b *softwareRendererBackendImpl) RenderPick(frame *Frame, x, y int) ([4]uint8, error) {
	clear(b.pick)
	for i := range b.pickDepth {
		b.pickDepth[i] = 1
	}
	for i := range frame.Items {
		item := &frame.Items[i]
		if item.Culled {
			continue
		}
		data, err := softwareData(item)
		if err != nil {
			return [4]uint8{}, err
		}
		b.drawModel(frame, item, data, material.PassPick)
	}

	off := (y*b.width + x) * 4
	return [4]uint8{b.pick[off], b.pick[off+1], b.pick[off+2], b.pick[off+3]}, nil
}

func (b *softwareRendererBackendImpl) Release() {
	b.colour = nil
	b.depth, b.pick, b.pickDepth = nil, nil, nil
}

func softwareData(item *DrawItem) (*geometry.PackedData, error) {
	res, ok := item.Resources.(*softwareResources)
	if !ok {
		return nil, fmt.Errorf("model %d was not uploaded by the software backend: %w", item.ModelID, common.ErrConfiguration)
	}
	if res.released {
		return nil, fmt.Errorf("model %d: %w", item.ModelID, common.ErrReleased)
	}
	return res.data, nil
}

// drawModel runs the vertex and fragment rules of one pass over every triangle of a model.
func (b *softwareRendererBackendImpl) drawModel(frame *Frame, item *DrawItem, data *geometry.PackedData, pass material.Pass) {
	settings := &frame.Settings
	viewProj := mgl32.Mat4(frame.Camera.ViewProj)
	mode := material.RenderingMode(settings.Mode)
	highlight := denormalizeColour(settings.Highlight)

	for tri := range len(data.Indices) / 3 {
		first := data.Vertices[data.Indices[tri*3]]

		visual, ok := texelBytes(&item.States, int(first.ProductIndex))
		if !ok {
			visual = [4]uint8{uint8(state.Undefined), uint8(state.NoStyle)}
		}
		s, style := state.State(visual[0]), state.Style(visual[1])

		var override [4]uint8
		styled := style != state.NoStyle
		if styled {
			override, styled = texelBytes(&frame.Styles, int(style))
		}
		def, _ := texelBytes(&data.StyleTexture, int(first.StyleIndex))
		base := material.BaseColour(def, override, styled, s, highlight)
		if !material.Visible(s, base[3], mode, pass) {
			continue
		}

		var corners [3]rasterVertex
		for c := range 3 {
			v := data.Vertices[data.Indices[tri*3+c]]
			world := data.Position(v)
			corners[c] = rasterVertex{
				clip:   viewProj.Mul4x1(world.Vec4(1)),
				world:  world,
				normal: worldNormal(data, v),
			}
		}
		// flat normal of the first corner; the box and feed normals are per face
		normal := corners[0].normal

		switch pass {
		case material.PassOpaque:
			b.rasterize(corners, func(px int, z float32, world mgl32.Vec3) {
				if settings.Clipped(world) || z >= b.depth[px] {
					return
				}
				b.depth[px] = z
				b.writeColour(px, settings.Shade(base, world, normal, pass), false)
			})
		case material.PassTranslucent:
			b.rasterize(corners, func(px int, z float32, world mgl32.Vec3) {
				if settings.Clipped(world) || z >= b.depth[px] {
					return
				}
				b.writeColour(px, settings.Shade(base, world, normal, pass), true)
			})
		case material.PassPick:
			id := first.PickID
			b.rasterize(corners, func(px int, z float32, world mgl32.Vec3) {
				if settings.Clipped(world) || z >= b.pickDepth[px] {
					return
				}
				b.pickDepth[px] = z
				off := px * 4
				b.pick[off], b.pick[off+1], b.pick[off+2], b.pick[off+3] = uint8(id), uint8(id>>8), uint8(id>>16), uint8(id>>24)
			})
		}
	}
}

// rasterize covers the pixel centres inside a triangle. Depth is interpolated linearly in screen
// space and the world position perspective-correctly, matching the GPU.
func (b *softwareRendererBackendImpl) rasterize(v [3]rasterVertex, frag fragment) {
	var sx, sy, sz, invW [3]float32
	for i := range 3 {
		w := v[i].clip.W()
		if w <= wEpsilon {
			return
		}
		invW[i] = 1 / w
		sx[i] = (v[i].clip.X()*invW[i]*0.5 + 0.5) * float32(b.width)
		sy[i] = (0.5 - v[i].clip.Y()*invW[i]*0.5) * float32(b.height)
		sz[i] = v[i].clip.Z() * invW[i]
	}

	area := edge(sx[0], sy[0], sx[1], sy[1], sx[2], sy[2])
	if math32.Abs(area) < 1e-12 {
		return
	}

	minX := max(0, int(math32.Floor(min(sx[0], sx[1], sx[2]))))
	maxX := min(b.width-1, int(math32.Ceil(max(sx[0], sx[1], sx[2]))))
	minY := max(0, int(math32.Floor(min(sy[0], sy[1], sy[2]))))
	maxY := min(b.height-1, int(math32.Ceil(max(sy[0], sy[1], sy[2]))))

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(sx[1], sy[1], sx[2], sy[2], px, py) / area
			w1 := edge(sx[2], sy[2], sx[0], sy[0], px, py) / area
			w2 := edge(sx[0], sy[0], sx[1], sy[1], px, py) / area
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*sz[0] + w1*sz[1] + w2*sz[2]
			if z < 0 || z > 1 {
				continue
			}
			q0, q1, q2 := w0*invW[0], w1*invW[1], w2*invW[2]
			world := v[0].world.Mul(q0).Add(v[1].world.Mul(q1)).Add(v[2].world.Mul(q2)).Mul(1 / (q0 + q1 + q2))
			frag(y*b.width+x, z, world)
		}
	}
}

func (b *softwareRendererBackendImpl) writeColour(px int, c [4]float32, blend bool) {
	off := px * 4
	pix := b.colour.Pix[off : off+4 : off+4]
	if !blend {
		for i := range 4 {
			pix[i] = toByte(c[i])
		}
		return
	}
	a := c[3]
	for i := range 3 {
		pix[i] = toByte(c[i]*a + float32(pix[i])/255*(1-a))
	}
	pix[3] = toByte(a + float32(pix[3])/255*(1-a))
}

// edge is twice the signed area of the triangle (a, b, p).
func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

func worldNormal(data *geometry.PackedData, v geometry.GPUVertex) mgl32.Vec3 {
	n := mgl32.Vec3(v.Normal)
	if v.TransformIndex < 0 {
		return n
	}
	return data.Transforms[v.TransformIndex].Mul4x1(n.Vec4(0)).Vec3()
}

// texelBytes reads an 8-bit texel, reporting false if the texture does not hold it.
func texelBytes(t *common.TextureStagingData, index int) ([4]uint8, bool) {
	if index < 0 || (index+1)*4 > len(t.Pixels) {
		return [4]uint8{}, false
	}
	return t.TexelBytes(index), true
}

func toByte(f float32) uint8 {
	return uint8(common.Clamp(f, 0, 1)*255 + 0.5)
}

func denormalizeColour(c [4]float32) [4]uint8 {
	return [4]uint8{toByte(c[0]), toByte(c[1]), toByte(c[2]), toByte(c[3])}
}
