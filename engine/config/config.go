// Package config reads viewer settings files. TOML and YAML are supported, selected by file
// extension; both map onto the same Settings struct.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of a settings file.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// Perspective holds the perspective camera settings. Fov is in degrees.
type Perspective struct {
	Fov  float32 `toml:"fov" yaml:"fov"`
	Near float32 `toml:"near" yaml:"near"`
	Far  float32 `toml:"far" yaml:"far"`
}

// Orthogonal holds the orthogonal camera settings.
type Orthogonal struct {
	Left   float32 `toml:"left" yaml:"left"`
	Right  float32 `toml:"right" yaml:"right"`
	Top    float32 `toml:"top" yaml:"top"`
	Bottom float32 `toml:"bottom" yaml:"bottom"`
	Near   float32 `toml:"near" yaml:"near"`
	Far    float32 `toml:"far" yaml:"far"`
}

// Window holds the window and renderer settings that only apply at construction.
type Window struct {
	Title   string `toml:"title" yaml:"title"`
	Width   int    `toml:"width" yaml:"width"`
	Height  int    `toml:"height" yaml:"height"`
	Backend string `toml:"backend" yaml:"backend"`
	MSAA    int    `toml:"msaa" yaml:"msaa"`
	VSync   bool   `toml:"vsync" yaml:"vsync"`
}

// Loader holds the geometry loader settings.
type Loader struct {
	Workers int  `toml:"workers" yaml:"workers"`
	Cache   bool `toml:"cache" yaml:"cache"`
}

// Settings is the content of a viewer settings file. The viewer section maps one to one onto the
// batch setting names accepted by Viewer.Set.
type Settings struct {
	Window Window `toml:"window" yaml:"window"`
	Loader Loader `toml:"loader" yaml:"loader"`

	Background         [4]int      `toml:"background" yaml:"background"`
	HighlightingColour [4]int      `toml:"highlightingColour" yaml:"highlightingColour"`
	LightA             [4]float32  `toml:"lightA" yaml:"lightA"`
	LightB             [4]float32  `toml:"lightB" yaml:"lightB"`
	NavigationMode     string      `toml:"navigationMode" yaml:"navigationMode"`
	RenderingMode      string      `toml:"renderingMode" yaml:"renderingMode"`
	Camera             string      `toml:"camera" yaml:"camera"`
	PerspectiveCamera  Perspective `toml:"perspectiveCamera" yaml:"perspectiveCamera"`
	OrthogonalCamera   Orthogonal  `toml:"orthogonalCamera" yaml:"orthogonalCamera"`
	ClippingPlaneA     [4]float32  `toml:"clippingPlaneA" yaml:"clippingPlaneA"`
	ClippingPlaneB     [4]float32  `toml:"clippingPlaneB" yaml:"clippingPlaneB"`
	ClippingA          bool        `toml:"clippingA" yaml:"clippingA"`
	ClippingB          bool        `toml:"clippingB" yaml:"clippingB"`
	Meter              float32     `toml:"meter" yaml:"meter"`
	Profiling          bool        `toml:"profiling" yaml:"profiling"`
}

// Default returns the settings used when no file is given. They match the viewer defaults.
func Default() Settings {
	return Settings{
		Window: Window{
			Title:   "oxy-bim",
			Width:   1280,
			Height:  720,
			Backend: "wgpu",
			MSAA:    4,
			VSync:   true,
		},
		Loader: Loader{
			Workers: 2,
		},
		Background:         [4]int{230, 230, 230, 255},
		HighlightingColour: [4]int{255, 173, 33, 255},
		LightA:             [4]float32{0, 1000000, 200000, 0.8},
		LightB:             [4]float32{0, -500000, 50000, 0.2},
		NavigationMode:     "orbit",
		RenderingMode:      "normal",
		Camera:             "perspective",
		PerspectiveCamera:  Perspective{Fov: 45, Near: 0, Far: 0},
		OrthogonalCamera:   Orthogonal{Left: -10, Right: 10, Top: 10, Bottom: -10, Near: 0, Far: 0},
		Meter:              1,
	}
}

// FormatFromPath selects the format by file extension.
//
// Parameters:
//   - path: the settings file path
//
// Returns:
//   - Format: the format
//   - error: wraps common.ErrConfiguration for an unknown extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported settings file %s: %w", path, common.ErrConfiguration)
	}
}

// Load reads a settings file. Values missing from the file keep their defaults.
//
// Parameters:
//   - path: the settings file path, .toml, .yaml or .yml
//
// Returns:
//   - Settings: the settings
//   - error: wraps common.ErrConfiguration if the file can not be read or parsed
func Load(path string) (Settings, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %v: %w", path, err, common.ErrConfiguration)
	}
	return Parse(data, format)
}

// Parse decodes settings from memory. Values missing from data keep their defaults.
//
// Parameters:
//   - data: the encoded settings
//   - format: the encoding
//
// Returns:
//   - Settings: the settings
//   - error: wraps common.ErrConfiguration if data can not be parsed
func Parse(data []byte, format Format) (Settings, error) {
	s := Default()
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&s)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&s)
		if err != nil && len(bytes.TrimSpace(data)) == 0 {
			err = nil
		}
	default:
		err = fmt.Errorf("unknown format %d", format)
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %v: %w", err, common.ErrConfiguration)
	}
	return s, nil
}

// Marshal encodes settings in the given format.
//
// Parameters:
//   - s: the settings
//   - format: the encoding
//
// Returns:
//   - []byte: the encoded settings
//   - error: the encoder error
func Marshal(s Settings, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(s)
	}
	return toml.Marshal(s)
}

// ToMap converts the viewer section into the batch form accepted by Viewer.Set. Colours become
// [4]uint8, vectors [4]float32 and scalars float32.
//
// Returns:
//   - map[string]any: the batch settings
func (s Settings) ToMap() map[string]any {
	return map[string]any{
		"background":              colour(s.Background),
		"highlightingColour":      colour(s.HighlightingColour),
		"lightA":                  s.LightA,
		"lightB":                  s.LightB,
		"navigationMode":          s.NavigationMode,
		"renderingMode":           s.RenderingMode,
		"camera":                  s.Camera,
		"perspectiveCamera.fov":   s.PerspectiveCamera.Fov,
		"perspectiveCamera.near":  s.PerspectiveCamera.Near,
		"perspectiveCamera.far":   s.PerspectiveCamera.Far,
		"orthogonalCamera.left":   s.OrthogonalCamera.Left,
		"orthogonalCamera.right":  s.OrthogonalCamera.Right,
		"orthogonalCamera.top":    s.OrthogonalCamera.Top,
		"orthogonalCamera.bottom": s.OrthogonalCamera.Bottom,
		"orthogonalCamera.near":   s.OrthogonalCamera.Near,
		"orthogonalCamera.far":    s.OrthogonalCamera.Far,
		"clippingPlaneA":          s.ClippingPlaneA,
		"clippingPlaneB":          s.ClippingPlaneB,
		"clippingA":               s.ClippingA,
		"clippingB":               s.ClippingB,
		"meter":                   s.Meter,
		"profiling":               s.Profiling,
	}
}

func colour(c [4]int) [4]uint8 {
	var out [4]uint8
	for i, v := range c {
		out[i] = uint8(min(max(v, 0), 255))
	}
	return out
}
