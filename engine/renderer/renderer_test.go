package renderer

import (
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSize = 64

var testBackground = [4]uint8{10, 20, 30, 255}

type testScene struct {
	renderer Renderer
	camera   camera.Camera
	table    state.Table
	material material.Material
	handles  []geometry.Handle
}

func newTestScene(t *testing.T, options ...material.MaterialBuilderOption) *testScene {
	t.Helper()
	r, err := NewRenderer(BackendTypeSoftware, testSize, testSize)
	require.NoError(t, err)
	t.Cleanup(r.Release)

	return &testScene{
		renderer: r,
		camera:   camera.NewCamera(camera.WithViewport(testSize, testSize)),
		table:    state.NewTable(),
		material: material.NewMaterial(append([]material.MaterialBuilderOption{material.WithBackground(testBackground)}, options...)...),
	}
}

func (s *testScene) load(t *testing.T, modelID int, boxes ...geometry.Box) geometry.Handle {
	t.Helper()
	h, err := geometry.NewHandle(modelID, geometry.BoxPayload(boxes...), s.renderer)
	require.NoError(t, err)

	entries := make([]state.ProductEntry, 0, h.ProductCount())
	for _, p := range h.Products() {
		entries = append(entries, state.ProductEntry{ID: p.ID, Type: p.Type})
	}
	require.NoError(t, s.table.AddModel(modelID, entries))
	s.handles = append(s.handles, h)
	return h
}

func (s *testScene) frame() *Frame {
	styles, stylesChanged := s.table.StyleTexture()
	f := &Frame{
		Camera:        s.camera.Uniform(),
		Frustum:       s.camera.Frustum(),
		Settings:      s.material.Uniform(),
		Background:    s.material.Background(),
		Styles:        styles,
		StylesChanged: stylesChanged,
	}
	for _, h := range s.handles {
		if h.Released() {
			continue
		}
		states, changed := s.table.LookupTexture(h.ModelID())
		f.Items = append(f.Items, DrawItem{
			ModelID:       h.ModelID(),
			Region:        h.Region(),
			TriangleCount: h.TriangleCount(),
			Resources:     h.Resources(),
			States:        states,
			StatesChanged: changed,
		})
	}
	return f
}

func (s *testScene) pixel(t *testing.T, x, y int) color.RGBA {
	t.Helper()
	sw, ok := s.renderer.Backend().(SoftwareBackend)
	require.True(t, ok)
	return sw.Image().RGBAAt(x, y)
}

func background() color.RGBA {
	return color.RGBA{R: testBackground[0], G: testBackground[1], B: testBackground[2], A: testBackground[3]}
}

func unitBox(id int, colour [4]uint8) geometry.Box {
	return geometry.Box{
		ID:     id,
		Type:   common.TypeWall,
		Region: common.NewRegion(-1, -1, -1, 1, 1, 1),
		Colour: colour,
	}
}

func TestNewRendererValidation(t *testing.T) {
	_, err := NewRenderer(BackendTypeSoftware, 0, 10)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = NewRenderer(BackendTypeWGPU, 10, 10)
	assert.ErrorIs(t, err, common.ErrConfiguration, "wgpu without a surface")

	_, err = NewRenderer(RendererBackendType(42), 10, 10)
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestParseBackendType(t *testing.T) {
	tests := []struct {
		in      string
		want    RendererBackendType
		wantErr bool
	}{
		{"wgpu", BackendTypeWGPU, false},
		{"", BackendTypeWGPU, false},
		{"Software", BackendTypeSoftware, false},
		{"cpu", BackendTypeSoftware, false},
		{"vulkan", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBackendType(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, common.ErrConfiguration, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDrawAndPick(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))

	require.NoError(t, s.renderer.Draw(s.frame()))
	centre := s.pixel(t, testSize/2, testSize/2)
	assert.NotEqual(t, background(), centre)
	assert.Greater(t, centre.R, centre.G)
	assert.Equal(t, background(), s.pixel(t, 0, 0))

	stats := s.renderer.Stats()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 12, stats.Triangles)

	raw, err := s.renderer.Pick(s.frame(), testSize/2, testSize/2)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{6, 0, 0, 0}, raw, "product ID + 1, little-endian")

	raw, err = s.renderer.Pick(s.frame(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{}, raw)

	raw, err = s.renderer.Pick(s.frame(), -1, testSize)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{}, raw, "outside the target")
}

func TestHiddenProductIsNotDrawnOrPicked(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	require.NoError(t, s.table.SetState(state.Hidden, state.Product(5)))

	require.NoError(t, s.renderer.Draw(s.frame()))
	assert.Equal(t, background(), s.pixel(t, testSize/2, testSize/2))

	raw, err := s.renderer.Pick(s.frame(), testSize/2, testSize/2)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{}, raw)
}

func TestPickingOnlyIsPickedButNotDrawn(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	require.NoError(t, s.table.SetState(state.PickingOnly, state.Product(5)))

	require.NoError(t, s.renderer.Draw(s.frame()))
	assert.Equal(t, background(), s.pixel(t, testSize/2, testSize/2))

	raw, err := s.renderer.Pick(s.frame(), testSize/2, testSize/2)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{6, 0, 0, 0}, raw)
}

func TestHighlightOverridesStyle(t *testing.T) {
	s := newTestScene(t, material.WithHighlightingColour([4]uint8{0, 0, 255, 255}))
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	require.NoError(t, s.table.DefineStyle(0, []int{0, 255, 0, 255}))
	require.NoError(t, s.table.SetStyle(0, state.Product(5)))

	require.NoError(t, s.renderer.Draw(s.frame()))
	styled := s.pixel(t, testSize/2, testSize/2)
	assert.Greater(t, styled.G, styled.R)

	require.NoError(t, s.table.SetState(state.Highlighted, state.Product(5)))
	require.NoError(t, s.renderer.Draw(s.frame()))
	highlighted := s.pixel(t, testSize/2, testSize/2)
	assert.Greater(t, highlighted.B, highlighted.G)
}

func TestTranslucentBlendsWithBackground(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 255, 255, 128}))

	require.NoError(t, s.renderer.Draw(s.frame()))
	centre := s.pixel(t, testSize/2, testSize/2)
	assert.NotEqual(t, background(), centre)
	assert.Less(t, centre.R, uint8(255))
	assert.Greater(t, centre.R, testBackground[0])
}

func TestClippingPlaneRemovesFragments(t *testing.T) {
	s := newTestScene(t, material.WithClippingPlane(0, material.ClippingPlane{1, 0, 0, 2}))
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))

	require.NoError(t, s.renderer.Draw(s.frame()))
	assert.Equal(t, background(), s.pixel(t, testSize/2, testSize/2))

	raw, err := s.renderer.Pick(s.frame(), testSize/2, testSize/2)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{}, raw)
}

func TestUnloadLeavesOtherModelsIntact(t *testing.T) {
	s := newTestScene(t)
	a := s.load(t, 1, geometry.Box{ID: 5, Region: common.NewRegion(-3, -1, -1, -1, 1, 1), Colour: [4]uint8{255, 0, 0, 255}})
	s.load(t, 2, geometry.Box{ID: 9, Region: common.NewRegion(1, -1, -1, 3, 1, 1), Colour: [4]uint8{0, 255, 0, 255}})

	require.NoError(t, s.renderer.Draw(s.frame()))
	leftX, rightX := testSize/2-12, testSize/2+12
	assert.NotEqual(t, background(), s.pixel(t, leftX, testSize/2))
	assert.NotEqual(t, background(), s.pixel(t, rightX, testSize/2))

	require.NoError(t, a.Release())
	s.table.RemoveModel(1)

	require.NoError(t, s.renderer.Draw(s.frame()))
	assert.Equal(t, background(), s.pixel(t, leftX, testSize/2))
	assert.NotEqual(t, background(), s.pixel(t, rightX, testSize/2))
	assert.Equal(t, 1, s.renderer.Stats().DrawCalls)

	raw, err := s.renderer.Pick(s.frame(), rightX, testSize/2)
	require.NoError(t, err)
	assert.Equal(t, [4]uint8{10, 0, 0, 0}, raw)
}

func TestReleasedResourcesFailToDraw(t *testing.T) {
	s := newTestScene(t)
	h := s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	f := s.frame()
	require.NoError(t, h.Release())

	err := s.renderer.Draw(f)
	assert.ErrorIs(t, err, common.ErrReleased)
}

func TestFrustumCulling(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	// behind the camera, which sits at z=10 looking down -Z
	s.load(t, 2, geometry.Box{ID: 6, Region: common.NewRegion(-1, -1, 20, 1, 1, 22), Colour: [4]uint8{0, 255, 0, 255}})

	f := s.frame()
	require.NoError(t, s.renderer.Draw(f))
	stats := s.renderer.Stats()
	assert.Equal(t, 1, stats.DrawCalls)
	assert.Equal(t, 1, stats.Culled)
	assert.Equal(t, 12, stats.Triangles)
	assert.False(t, f.Items[0].Culled)
	assert.True(t, f.Items[1].Culled)
}

func TestResize(t *testing.T) {
	s := newTestScene(t)
	s.renderer.Resize(32, 16)
	w, h := s.renderer.Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)

	s.renderer.Resize(0, 0)
	w, h = s.renderer.Size()
	assert.Equal(t, 32, w, "minimized windows are ignored")
	assert.Equal(t, 16, h)

	require.NoError(t, s.renderer.Draw(s.frame()))
	sw := s.renderer.Backend().(SoftwareBackend)
	assert.Equal(t, 32, sw.Image().Bounds().Dx())
}

func TestCheckSoftware(t *testing.T) {
	res := Check(BackendTypeSoftware)
	assert.True(t, res.NoErrors)
	assert.True(t, res.NoWarnings)

	res = Check(RendererBackendType(42))
	assert.False(t, res.NoErrors)
}

func TestUndefinedStyleDrawsDefaultColour(t *testing.T) {
	s := newTestScene(t)
	s.load(t, 1, unitBox(5, [4]uint8{255, 0, 0, 255}))
	require.NoError(t, s.renderer.Draw(s.frame()))
	plain := s.pixel(t, testSize/2, testSize/2)

	require.NoError(t, s.table.SetStyle(9, state.Product(5)))
	require.NoError(t, s.renderer.Draw(s.frame()))
	assert.Equal(t, plain, s.pixel(t, testSize/2, testSize/2), "an empty style slot is not transparent")

	require.NoError(t, s.table.DefineStyle(9, []int{0, 255, 0, 255}))
	require.NoError(t, s.renderer.Draw(s.frame()))
	styled := s.pixel(t, testSize/2, testSize/2)
	assert.Greater(t, styled.G, styled.R)
}
