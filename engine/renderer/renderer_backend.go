package renderer

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU backend drawing into a window surface.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeSoftware selects the CPU rasterizer drawing into an in-memory image. It needs no
	// window or GPU and follows the same shading rules as the shader.
	BackendTypeSoftware
)

func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeSoftware:
		return "software"
	default:
		return fmt.Sprintf("RendererBackendType(%d)", int(t))
	}
}

// ParseBackendType parses "wgpu" or "software", case-insensitively.
func ParseBackendType(s string) (RendererBackendType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wgpu", "gpu", "":
		return BackendTypeWGPU, nil
	case "software", "cpu":
		return BackendTypeSoftware, nil
	default:
		return 0, fmt.Errorf("unknown renderer backend %q: %w", s, common.ErrConfiguration)
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. This is the default: the
	// viewer only draws on change, so there is nothing to gain from tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default for the wgpu backend.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is implemented by every backend. All calls happen on the frame thread.
type RendererBackend interface {
	// Configure (re)allocates the size-dependent targets.
	//
	// Parameters:
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	Configure(width, height int)

	// Upload allocates the resources of one model. Allocation is all-or-nothing.
	//
	// Parameters:
	//   - data: the packed model
	//
	// Returns:
	//   - geometry.Resources: the allocated resources
	//   - error: an error if any allocation failed
	Upload(data *geometry.PackedData) (geometry.Resources, error)

	// Render draws one frame: clear, opaque pass, translucent pass. Culled items are skipped but
	// their changed lookup tables are still written.
	//
	// Parameters:
	//   - frame: the frame description
	//
	// Returns:
	//   - error: an error if the frame could not be drawn
	Render(frame *Frame) error

	// RenderPick draws the pick pass into the off-screen target and reads back one pixel.
	// The visible target is not touched.
	//
	// Parameters:
	//   - frame: the frame description
	//   - x, y: the pixel, already checked to be inside the target
	//
	// Returns:
	//   - [4]uint8: the RGBA value of the pick target at (x, y)
	//   - error: an error if the pass or the read-back failed
	RenderPick(frame *Frame, x, y int) ([4]uint8, error)

	// Release frees every backend-owned resource. Model resources are released by their handles.
	Release()
}
