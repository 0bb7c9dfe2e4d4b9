package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-bim/engine/loader"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/Carmen-Shannon/oxy-bim/engine/window"
)

// ViewerBuilderOption is a functional option for configuring a Viewer.
// Use the With* functions to create options that are applied directly to the viewer instance.
type ViewerBuilderOption func(*viewer)

// WithWindow sets the window the viewer draws into and reads input from. Required for the wgpu backend.
//
// Parameters:
//   - w: an open Window
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithWindow(w window.Window) ViewerBuilderOption {
	return func(v *viewer) {
		v.window = w
	}
}

// WithBackend selects the renderer backend. Defaults to wgpu.
//
// Parameters:
//   - t: the backend type
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithBackend(t renderer.RendererBackendType) ViewerBuilderOption {
	return func(v *viewer) {
		v.backendType = t
	}
}

// WithViewport sets the initial viewport size. A window's framebuffer size takes precedence.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithViewport(width, height int) ViewerBuilderOption {
	return func(v *viewer) {
		v.width, v.height = width, height
	}
}

// WithMSAA sets the multisample count of the visible target.
//
// Parameters:
//   - count: renderer.MSAAOff or renderer.MSAA4x
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithMSAA(count renderer.MSAASampleCount) ViewerBuilderOption {
	return func(v *viewer) {
		v.msaa = count
	}
}

// WithVSync selects between vertical-sync and uncapped presentation.
//
// Parameters:
//   - enabled: true for vertical sync (default)
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithVSync(enabled bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.presentMode = renderer.PresentModeVSync
		if !enabled {
			v.presentMode = renderer.PresentModeUncapped
		}
	}
}

// WithForceFallbackAdapter requests a CPU fallback adapter from WGPU.
//
// Parameters:
//   - force: true to force the fallback adapter
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithForceFallbackAdapter(force bool) ViewerBuilderOption {
	return func(v *viewer) {
		v.fallback = force
	}
}

// WithLoaderOptions passes options to the geometry loader, e.g. worker count or caching.
//
// Parameters:
//   - options: loader options
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithLoaderOptions(options ...loader.LoaderBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.loaderOpts = append(v.loaderOpts, options...)
	}
}

// WithTableOptions passes options to the product state table, e.g. predefined styles.
//
// Parameters:
//   - options: table options
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithTableOptions(options ...state.TableBuilderOption) ViewerBuilderOption {
	return func(v *viewer) {
		v.tableOpts = append(v.tableOpts, options...)
	}
}

// WithSettings applies a batch of settings once the viewer is constructed, as if passed to Set.
//
// Parameters:
//   - settings: setting names mapped to values
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSettings(settings map[string]any) ViewerBuilderOption {
	return func(v *viewer) {
		v.settings = settings
	}
}

// WithClickSlop sets how far, in pixels, the pointer may travel between press and release for the
// gesture to still count as a click.
//
// Parameters:
//   - px: the distance in pixels
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithClickSlop(px float32) ViewerBuilderOption {
	return func(v *viewer) {
		v.clickSlopPx = px
	}
}

// WithFrameInterval sets how long the loop waits for input between frames while models are started.
//
// Parameters:
//   - d: the frame interval, 1/60 s by default
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithFrameInterval(d time.Duration) ViewerBuilderOption {
	return func(v *viewer) {
		if d > 0 {
			v.frameTime = d
		}
	}
}
