package material

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRenderingMode(t *testing.T) {
	for _, name := range []string{"normal", "grayscale", "xray"} {
		m, ok := ParseRenderingMode(name)
		require.True(t, ok, name)
		assert.Equal(t, name, m.String())
	}
	_, ok := ParseRenderingMode("wireframe")
	assert.False(t, ok)
}

func TestMaterialRevisionAndSlots(t *testing.T) {
	m := NewMaterial(WithMode(ModeGrayscale))
	assert.Equal(t, ModeGrayscale, m.Mode())

	rev := m.Revision()
	m.SetClippingPlane(SlotA, ClippingPlane{0, 1, 0, -5})
	m.SetClipping(SlotA, true)
	assert.Greater(t, m.Revision(), rev)

	p, enabled := m.ClippingPlane(SlotA)
	assert.True(t, enabled)
	assert.Equal(t, ClippingPlane{0, 1, 0, -5}, p)

	rev = m.Revision()
	m.SetLight(7, Light{1, 2, 3, 4})
	assert.Equal(t, rev, m.Revision(), "unknown slot is ignored")
}

func TestUniformMarshalLayout(t *testing.T) {
	m := NewMaterial(WithHighlightingColour([4]uint8{255, 0, 0, 255}), WithClippingPlane(SlotB, ClippingPlane{1, 0, 0, 0}))
	u := m.Uniform()
	require.Equal(t, 96, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 96)
	assert.Equal(t, uint32(0), u.ClippingA)
	assert.Equal(t, uint32(1), u.ClippingB)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, u.Highlight)
	assert.Equal(t, byte(1), buf[88])
}

func TestVisibleRules(t *testing.T) {
	tests := []struct {
		name  string
		s     state.State
		alpha uint8
		mode  RenderingMode
		pass  Pass
		want  bool
	}{
		{"hidden never drawn", state.Hidden, 255, ModeNormal, PassOpaque, false},
		{"hidden never picked", state.Hidden, 255, ModeNormal, PassPick, false},
		{"picking only is picked", state.PickingOnly, 255, ModeNormal, PassPick, true},
		{"picking only is not shaded", state.PickingOnly, 255, ModeNormal, PassOpaque, false},
		{"opaque colour in opaque pass", state.Undefined, 255, ModeNormal, PassOpaque, true},
		{"translucent colour skips opaque pass", state.Undefined, 128, ModeNormal, PassOpaque, false},
		{"translucent colour in translucent pass", state.Undefined, 128, ModeNormal, PassTranslucent, true},
		{"xray makes undefined translucent", state.Undefined, 255, ModeXRay, PassTranslucent, true},
		{"xray keeps xray-visible opaque", state.XRayVisible, 255, ModeXRay, PassOpaque, true},
		{"xray keeps highlighted opaque", state.Highlighted, 255, ModeXRay, PassOpaque, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.s, tt.alpha, tt.mode, tt.pass))
		})
	}
}

func TestBaseColourPrecedence(t *testing.T) {
	def := [4]uint8{1, 1, 1, 255}
	override := [4]uint8{2, 2, 2, 255}
	hl := [4]uint8{3, 3, 3, 255}

	assert.Equal(t, def, BaseColour(def, override, false, state.Undefined, hl))
	assert.Equal(t, override, BaseColour(def, override, true, state.Undefined, hl))
	assert.Equal(t, hl, BaseColour(def, override, true, state.Highlighted, hl))
}

func TestShadeGrayscaleAndClipping(t *testing.T) {
	m := NewMaterial(WithMode(ModeGrayscale), WithClippingPlane(SlotA, ClippingPlane{0, 1, 0, -5}))
	u := m.Uniform()

	c := u.Shade([4]uint8{255, 0, 0, 255}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0}, PassOpaque)
	assert.InDelta(t, c[0], c[1], 1e-6)
	assert.InDelta(t, c[1], c[2], 1e-6)
	assert.Equal(t, float32(1), c[3])

	assert.True(t, u.Clipped(mgl32.Vec3{0, 6, 0}))
	assert.False(t, u.Clipped(mgl32.Vec3{0, 4, 0}))
}

func TestShadeXRayAlpha(t *testing.T) {
	u := NewMaterial(WithMode(ModeXRay)).Uniform()
	c := u.Shade([4]uint8{200, 200, 200, 255}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0}, PassTranslucent)
	assert.Equal(t, XRayAlpha, c[3])
}
