// Package renderer draws the loaded models. One shared program draws every started model with one
// indexed draw call per pass; per-product appearance comes from lookup textures sampled in the
// fragment stage, so draw-call count does not grow with the number of products or instances.
package renderer

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/cogentcore/webgpu/wgpu"
)

// ModelShaderSource is the annotated WGSL program shared by every pass.
//
//go:embed assets/model.wgsl
var ModelShaderSource string

// Surface is the presentation target of the wgpu backend. Implemented by window.Window.
type Surface interface {
	// SurfaceDescriptor returns the platform surface descriptor.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	width, height int
	stats         Stats

	// Pre-creation config collected from builder options
	surface              Surface
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// The Renderer owns the backend, uploads model geometry and draws complete frames described by a
// Frame. It is confined to the frame thread.
type Renderer interface {
	geometry.Uploader

	// Type returns the backend type.
	//
	// Returns:
	//   - RendererBackendType: the backend in use
	Type() RendererBackendType

	// Backend returns the backend implementation. The software backend exposes its image through
	// SoftwareBackend.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Resize configures the backend for a new target size. Non-positive sizes are ignored, which is
	// what a minimized window reports.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Size returns the current target size.
	//
	// Returns:
	//   - width, height: the size in pixels
	Size() (width, height int)

	// Draw culls the frame items against the frustum and draws one complete frame.
	//
	// Parameters:
	//   - frame: the frame description
	//
	// Returns:
	//   - error: an error if the backend failed; the previous image stays on screen
	Draw(frame *Frame) error

	// Pick draws the pick pass and returns the raw pick colour at (x, y). Pixels outside the target
	// return the cleared value.
	//
	// Parameters:
	//   - frame: the frame description
	//   - x, y: the pixel in target coordinates, origin top-left
	//
	// Returns:
	//   - [4]uint8: the pick colour, all zero for no hit
	//   - error: an error if the backend failed
	Pick(frame *Frame, x, y int) ([4]uint8, error)

	// Stats returns the statistics of the last Draw.
	//
	// Returns:
	//   - Stats: draw calls, culled models and triangles
	Stats() Stats

	// Release frees the backend.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer with the given backend.
//
// Parameters:
//   - backendType: the backend to use
//   - width, height: the initial target size
//   - options: functional options to configure the Renderer
//
// Returns:
//   - Renderer: the new renderer
//   - error: wraps common.ErrConfiguration if the size is invalid, the wgpu backend has no surface,
//     or the GPU adapter or device could not be acquired
func NewRenderer(backendType RendererBackendType, width, height int, options ...RendererBuilderOption) (r Renderer, err error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d: %w", width, height, common.ErrConfiguration)
	}

	rend := &renderer{
		backendType: backendType,
		width:       width,
		height:      height,
		presentMode: PresentModeVSync,
		msaa:        MSAA4x,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(rend)
	}

	switch backendType {
	case BackendTypeSoftware:
		rend.backend = newSoftwareRendererBackend()
	case BackendTypeWGPU:
		if rend.surface == nil {
			return nil, fmt.Errorf("wgpu backend requires a surface: %w", common.ErrConfiguration)
		}
		defer func() {
			if rec := recover(); rec != nil {
				r, err = nil, fmt.Errorf("failed to initialize wgpu backend: %v: %w", rec, common.ErrConfiguration)
			}
		}()
		rend.backend = newWGPURendererBackend(rend.surface.SurfaceDescriptor(), rend.forceFallbackAdapter, rend.msaa, rend.presentMode)
	default:
		return nil, fmt.Errorf("unknown backend %v: %w", backendType, common.ErrConfiguration)
	}

	rend.backend.Configure(width, height)
	return rend, nil
}

func (r *renderer) Type() RendererBackendType {
	return r.backendType
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 || (width == r.width && height == r.height) {
		return
	}
	r.width, r.height = width, height
	r.backend.Configure(width, height)
}

func (r *renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *renderer) UploadHandle(data *geometry.PackedData) (geometry.Resources, error) {
	if data == nil {
		return nil, errors.New("no geometry to upload")
	}
	return r.backend.Upload(data)
}

func (r *renderer) Draw(frame *Frame) error {
	r.stats = frame.cull()
	return r.backend.Render(frame)
}

func (r *renderer) Pick(frame *Frame, x, y int) ([4]uint8, error) {
	if x < 0 || y < 0 || x >= r.width || y >= r.height {
		return [4]uint8{}, nil
	}
	frame.cull()
	return r.backend.RenderPick(frame, x, y)
}

func (r *renderer) Stats() Stats {
	return r.stats
}

func (r *renderer) Release() {
	if r.backend != nil {
		r.backend.Release()
	}
}
