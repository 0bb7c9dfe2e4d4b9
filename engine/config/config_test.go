package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tomlSettings = `
background = [0, 0, 0, 255]
renderingMode = "xray"
camera = "orthogonal"
clippingA = true
clippingPlaneA = [1.0, 0.0, 0.0, -2.5]

[window]
backend = "software"
width = 640

[perspectiveCamera]
fov = 60.0

[loader]
workers = 4
cache = true
`

const yamlSettings = `
background: [0, 0, 0, 255]
renderingMode: xray
camera: orthogonal
clippingA: true
clippingPlaneA: [1.0, 0.0, 0.0, -2.5]
window:
  backend: software
  width: 640
perspectiveCamera:
  fov: 60
loader:
  workers: 4
  cache: true
`

func assertParsed(t *testing.T, s Settings) {
	t.Helper()
	assert.Equal(t, [4]int{0, 0, 0, 255}, s.Background)
	assert.Equal(t, "xray", s.RenderingMode)
	assert.Equal(t, "orthogonal", s.Camera)
	assert.True(t, s.ClippingA)
	assert.Equal(t, [4]float32{1, 0, 0, -2.5}, s.ClippingPlaneA)
	assert.Equal(t, "software", s.Window.Backend)
	assert.Equal(t, 640, s.Window.Width)
	assert.Equal(t, float32(60), s.PerspectiveCamera.Fov)
	assert.Equal(t, 4, s.Loader.Workers)
	assert.True(t, s.Loader.Cache)

	// untouched values keep their defaults
	def := Default()
	assert.Equal(t, def.Window.Height, s.Window.Height)
	assert.Equal(t, def.HighlightingColour, s.HighlightingColour)
	assert.Equal(t, def.PerspectiveCamera.Near, s.PerspectiveCamera.Near)
	assert.Equal(t, def.NavigationMode, s.NavigationMode)
}

func TestParse(t *testing.T) {
	s, err := Parse([]byte(tomlSettings), FormatTOML)
	require.NoError(t, err)
	assertParsed(t, s)

	s, err = Parse([]byte(yamlSettings), FormatYAML)
	require.NoError(t, err)
	assertParsed(t, s)

	s, err = Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestParseRejectsBadInput(t *testing.T) {
	_, err := Parse([]byte("unknownKey = 1"), FormatTOML)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Parse([]byte("unknownKey: 1"), FormatYAML)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Parse([]byte("background = \"red\""), FormatTOML)
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Parse(nil, Format(9))
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"viewer.toml": tomlSettings,
		"viewer.yaml": yamlSettings,
		"viewer.YML":  yamlSettings,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		s, err := Load(path)
		require.NoError(t, err, name)
		assertParsed(t, s)
	}

	_, err := Load(filepath.Join(dir, "viewer.json"))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, common.ErrConfiguration)
}

func TestMarshalRoundTrip(t *testing.T) {
	want := Default()
	want.Profiling = true
	want.ClippingPlaneB = [4]float32{0, 0, 1, 3}

	for _, format := range []Format{FormatTOML, FormatYAML} {
		data, err := Marshal(want, format)
		require.NoError(t, err)
		got, err := Parse(data, format)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestToMap(t *testing.T) {
	s := Default()
	s.Background = [4]int{-5, 300, 12, 255}
	m := s.ToMap()

	assert.Equal(t, [4]uint8{0, 255, 12, 255}, m["background"])
	assert.Equal(t, [4]uint8{255, 173, 33, 255}, m["highlightingColour"])
	assert.Equal(t, float32(45), m["perspectiveCamera.fov"])
	assert.Equal(t, "perspective", m["camera"])
	assert.Equal(t, false, m["clippingA"])
	assert.IsType(t, [4]float32{}, m["lightA"])
	assert.Len(t, m, 22)
}
