package engine

import (
	"log"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

// setter applies one batch setting. It returns false when the value has the wrong type.
type setter func(v *viewer, value any) bool

var setters = map[string]setter{
	"background":         colourSetter(material.Material.SetBackground),
	"highlightingColour": colourSetter(material.Material.SetHighlightingColour),
	"lightA":             lightSetter(material.SlotA),
	"lightB":             lightSetter(material.SlotB),
	"clippingPlaneA":     planeSetter(material.SlotA),
	"clippingPlaneB":     planeSetter(material.SlotB),
	"clippingA":          clippingSetter(material.SlotA),
	"clippingB":          clippingSetter(material.SlotB),

	"renderingMode": func(v *viewer, value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		m, ok := material.ParseRenderingMode(strings.ToLower(s))
		if ok {
			v.renderState.material.SetMode(m)
		}
		return ok
	},
	"navigationMode": func(v *viewer, value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		m, ok := camera.ParseNavigationMode(strings.ToLower(s))
		if ok {
			v.cameraState.navigator.SetMode(m)
		}
		return ok
	},
	"camera": func(v *viewer, value any) bool {
		s, ok := value.(string)
		if !ok {
			return false
		}
		m, ok := camera.ParseMode(strings.ToLower(s))
		if ok {
			v.cameraState.camera.SetMode(m)
		}
		return ok
	},
	"meter": floatSetter(func(v *viewer, f float32) {
		v.cameraState.camera.SetMeter(f)
	}),
	"profiling": func(v *viewer, value any) bool {
		b, ok := value.(bool)
		if ok {
			v.renderState.profiling = b
		}
		return ok
	},

	// field of view is given in degrees
	"perspectiveCamera.fov": perspectiveSetter(func(p *camera.Perspective, f float32) {
		p.Fov = mgl32.DegToRad(f)
	}),
	"perspectiveCamera.near": perspectiveSetter(func(p *camera.Perspective, f float32) { p.Near = f }),
	"perspectiveCamera.far":  perspectiveSetter(func(p *camera.Perspective, f float32) { p.Far = f }),

	"orthogonalCamera.left":   orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Left = f }),
	"orthogonalCamera.right":  orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Right = f }),
	"orthogonalCamera.top":    orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Top = f }),
	"orthogonalCamera.bottom": orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Bottom = f }),
	"orthogonalCamera.near":   orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Near = f }),
	"orthogonalCamera.far":    orthogonalSetter(func(o *camera.Orthogonal, f float32) { o.Far = f }),
}

func (v *viewer) Set(settings map[string]any) {
	// sorted so that a batch always applies in the same order
	names := make([]string, 0, len(settings))
	for name := range settings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := settings[name]
		set, ok := setters[name]
		if !ok {
			log.Printf("[Viewer] ignoring unknown setting %q", name)
			continue
		}
		clip := clippingDistance(name)
		if f, ok := toFloat(value); clip && ok && f == 0 {
			// zero keeps near and far fitted to the loaded models
			continue
		}
		if !set(v, value) {
			log.Printf("[Viewer] ignoring setting %q: unsupported value %v (%T)", name, value, value)
			continue
		}
		if clip {
			v.cameraState.autoClip = false
		}
	}
}

// clippingDistance reports whether a setting names a near or far plane. Setting one turns off the
// automatic fit of near and far to the loaded models.
func clippingDistance(name string) bool {
	return strings.HasSuffix(name, ".near") || strings.HasSuffix(name, ".far")
}

func colourSetter(apply func(material.Material, [4]uint8)) setter {
	return func(v *viewer, value any) bool {
		c, ok := toColour(value)
		if ok {
			apply(v.renderState.material, c)
		}
		return ok
	}
}

func lightSetter(slot int) setter {
	return func(v *viewer, value any) bool {
		l, ok := toVec4(value)
		if ok {
			v.renderState.material.SetLight(slot, material.Light(l))
		}
		return ok
	}
}

func planeSetter(slot int) setter {
	return func(v *viewer, value any) bool {
		p, ok := toVec4(value)
		if ok {
			v.renderState.material.SetClippingPlane(slot, material.ClippingPlane(p))
		}
		return ok
	}
}

func clippingSetter(slot int) setter {
	return func(v *viewer, value any) bool {
		b, ok := value.(bool)
		if ok {
			v.renderState.material.SetClipping(slot, b)
		}
		return ok
	}
}

func floatSetter(apply func(v *viewer, f float32)) setter {
	return func(v *viewer, value any) bool {
		f, ok := toFloat(value)
		if ok {
			apply(v, f)
		}
		return ok
	}
}

func perspectiveSetter(apply func(p *camera.Perspective, f float32)) setter {
	return floatSetter(func(v *viewer, f float32) {
		p := v.cameraState.camera.Perspective()
		apply(&p, f)
		v.cameraState.camera.SetPerspective(p)
	})
}

func orthogonalSetter(apply func(o *camera.Orthogonal, f float32)) setter {
	return floatSetter(func(v *viewer, f float32) {
		o := v.cameraState.camera.Orthogonal()
		apply(&o, f)
		v.cameraState.camera.SetOrthogonal(o)
	})
}

func toFloat(value any) (float32, bool) {
	switch f := value.(type) {
	case float32:
		return f, true
	case float64:
		return float32(f), true
	case int:
		return float32(f), true
	case int64:
		return float32(f), true
	}
	return 0, false
}

func toVec4(value any) ([4]float32, bool) {
	var out [4]float32
	switch vec := value.(type) {
	case [4]float32:
		return vec, true
	case material.Light:
		return [4]float32(vec), true
	case material.ClippingPlane:
		return [4]float32(vec), true
	case []float32:
		if len(vec) != 4 {
			return out, false
		}
		copy(out[:], vec)
		return out, true
	case []float64:
		if len(vec) != 4 {
			return out, false
		}
		for i, f := range vec {
			out[i] = float32(f)
		}
		return out, true
	case []any:
		if len(vec) != 4 {
			return out, false
		}
		for i, e := range vec {
			f, ok := toFloat(e)
			if !ok {
				return out, false
			}
			out[i] = f
		}
		return out, true
	}
	return out, false
}

func toColour(value any) ([4]uint8, bool) {
	var out [4]uint8
	switch c := value.(type) {
	case [4]uint8:
		return c, true
	case []uint8:
		if len(c) != 4 {
			return out, false
		}
		copy(out[:], c)
		return out, true
	case []int:
		if len(c) != 4 {
			return out, false
		}
		for i, n := range c {
			out[i] = uint8(n)
		}
		return out, true
	case [4]int:
		for i, n := range c {
			out[i] = uint8(n)
		}
		return out, true
	}
	return out, false
}
