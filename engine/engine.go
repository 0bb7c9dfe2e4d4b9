// Package engine is the BIM viewer: it composes the renderer, the camera, the product state table,
// the loader, picking and events behind one Viewer and runs the cooperative frame loop.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/loader"
	"github.com/Carmen-Shannon/oxy-bim/engine/picking"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/Carmen-Shannon/oxy-bim/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// AllModels addresses every loaded model in Start and Stop, and the full extent in SetCameraTarget and
// ZoomTo.
const AllModels = -1

// viewer implements the Viewer interface. Everything except the pending queue is confined to the
// frame thread.
type viewer struct {
	cameraState CameraState
	styleState  StyleState
	renderState RenderState

	window window.Window
	loader loader.Loader
	picker picking.Picker
	bus    events.Bus
	plugin events.PluginHost[Viewer]
	input  pointerTracker

	ctx    context.Context
	cancel context.CancelFunc

	pendingMu sync.Mutex
	pending   []func()

	// construction config collected from builder options
	backendType renderer.RendererBackendType
	width       int
	height      int
	msaa        renderer.MSAASampleCount
	presentMode renderer.PresentMode
	fallback    bool
	loaderOpts  []loader.LoaderBuilderOption
	tableOpts   []state.TableBuilderOption
	settings    map[string]any
	clickSlopPx float32
	frameTime   time.Duration

	released    bool
	nextModelID int
}

// Viewer is the public operation surface of the BIM viewer.
//
// Every method must be called from the frame thread, the goroutine that created the Viewer and calls
// Run or Frame. Asynchronous loads complete on that thread too.
type Viewer interface {
	// Set applies a batch of settings by name. Unknown names and values of the wrong type are logged
	// and ignored; values are not range checked.
	//
	// Parameters:
	//   - settings: setting names mapped to values, see config.Settings.ToMap for the accepted types
	Set(settings map[string]any)

	// LoadModel starts loading a geometry feed in the background. The handle is created on the frame
	// thread at the next frame boundary, firing "loaded" with the new model ID or "error" on failure.
	//
	// Parameters:
	//   - src: the feed source
	//   - tag: an opaque value reported with the "loaded" event
	//
	// Returns:
	//   - int: the loader request ID
	LoadModel(src loader.Source, tag string) int

	// LoadPayload creates a model from an already decoded payload immediately, firing "loaded".
	//
	// Parameters:
	//   - payload: the decoded geometry
	//   - tag: an opaque value reported with the "loaded" event
	//
	// Returns:
	//   - int: the new model ID
	//   - error: wraps common.ErrLoad for an inconsistent payload or the upload error
	LoadPayload(payload *geometry.Payload, tag string) (int, error)

	// UnloadModel schedules the release of a model between frames and fires "unloaded" once it is
	// gone. The model stops drawing immediately.
	//
	// Parameters:
	//   - modelID: the model to unload
	//
	// Returns:
	//   - bool: false if the model is not loaded
	UnloadModel(modelID int) bool

	// Models returns the IDs of the loaded models in load order.
	Models() []int

	// SetState assigns a visual state to products of every loaded model.
	//
	// Returns:
	//   - error: wraps common.ErrRange for an undefined state
	SetState(s state.State, target state.Target) error

	// GetState returns the state of a product, state.Undefined if it was never set or does not exist.
	GetState(productID int) state.State

	// ResetStates returns every product to state.Undefined, hiding spaces when hideSpaces is true.
	ResetStates(hideSpaces bool)

	// DefineStyle defines the RGBA colour of a style slot.
	//
	// Returns:
	//   - error: wraps common.ErrRange for a bad index or colour
	DefineStyle(index int, colour []int) error

	// SetStyle assigns an override style to products of every loaded model.
	//
	// Returns:
	//   - error: wraps common.ErrRange for an out-of-range style
	SetStyle(style state.Style, target state.Target) error

	// GetStyle returns the override style of a product, state.NoStyle if it has none.
	GetStyle(productID int) state.Style

	// ResetStyles removes every style override.
	ResetStyles()

	// GetModelState captures the visual state of one model.
	//
	// Returns:
	//   - state.Snapshot: the snapshot
	//   - bool: false if the model is not loaded
	GetModelState(modelID int) (state.Snapshot, bool)

	// RestoreModelState replaces the visual state of one model.
	//
	// Returns:
	//   - error: wraps common.ErrReference for an unknown model or common.ErrRange for a bad snapshot
	RestoreModelState(modelID int, snap state.Snapshot) error

	// GetProductType returns the type of a product, common.TypeUnknown if it does not exist.
	GetProductType(productID int) common.ProductType

	// SetCameraPosition moves the eye. The camera keeps looking at the navigation origin.
	SetCameraPosition(p mgl32.Vec3)

	// GetCameraPosition returns the world-space eye position.
	GetCameraPosition() mgl32.Vec3

	// SetCameraTarget moves the navigation origin to a product centroid, or to the centre of every
	// loaded model for AllModels.
	//
	// Returns:
	//   - bool: false if the product does not exist or nothing is loaded; the camera is unchanged
	SetCameraTarget(productID int) bool

	// Show targets every loaded model and looks at it from a canonical direction.
	//
	// Returns:
	//   - bool: false for an unknown view or when nothing is loaded
	Show(v camera.ViewType) bool

	// ZoomTo frames one product, or every loaded model for AllModels, keeping the view direction.
	//
	// Returns:
	//   - bool: false if the target does not exist
	ZoomTo(productID int) bool

	// Start adds a model, or every model for AllModels, to the render loop. Starting AllModels before
	// anything is loaded also starts the models loaded later.
	Start(modelID int)

	// Stop removes a model, or every model for AllModels, from the render loop.
	Stop(modelID int)

	// Draw draws one frame now, regardless of change detection.
	//
	// Returns:
	//   - error: the renderer error; the frame is skipped
	Draw() error

	// Frame runs one pass of the frame loop: pending tasks, then a draw if IsChanged.
	//
	// Returns:
	//   - bool: true if a frame was drawn
	Frame() bool

	// IsChanged reports whether the camera, the styling, the settings, the viewport or the set of
	// started models changed since the last drawn frame.
	IsChanged() bool

	// GetID returns the product under a framebuffer pixel, picking.NoHit for the background.
	GetID(x, y int) int

	// HandlePointer routes a pointer sample: listeners are notified, drags navigate, wheel zooms and a
	// primary click picks.
	//
	// Parameters:
	//   - name: the pointer event name
	//   - e: the sample
	HandlePointer(name events.Name, e events.PointerEvent)

	// Resize changes the viewport size.
	Resize(width, height int)

	// On registers an event listener.
	//
	// Returns:
	//   - uuid.UUID: the token for Off
	On(name events.Name, l events.Listener) uuid.UUID

	// Off removes an event listener.
	//
	// Returns:
	//   - bool: false if the token is not registered for name
	Off(name events.Name, token uuid.UUID) bool

	// AddPlugin registers a plugin and calls its Init hook.
	//
	// Returns:
	//   - bool: false if the plugin is already registered or is not comparable
	AddPlugin(p events.Plugin) bool

	// RemovePlugin unregisters a plugin and calls its OnRemove hook.
	//
	// Returns:
	//   - bool: false if the plugin is not registered
	RemovePlugin(p events.Plugin) bool

	// Camera returns the viewer camera.
	Camera() camera.Camera

	// Navigator returns the gesture navigator driving the camera.
	Navigator() camera.Navigator

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Run drives the frame loop with the window until it is closed or ctx is cancelled. The loop
	// sleeps in the window's event wait while no model is started.
	//
	// Returns:
	//   - error: wraps common.ErrConfiguration if the viewer has no window
	Run(ctx context.Context) error

	// Release unloads every model and frees the renderer. The viewer is unusable afterwards.
	Release()
}

var _ Viewer = &viewer{}

// NewViewer creates a Viewer. The wgpu backend needs a window; the software backend runs headless.
//
// Parameters:
//   - options: functional options to configure the viewer
//
// Returns:
//   - Viewer: the new viewer
//   - error: wraps common.ErrConfiguration if the renderer could not be created
func NewViewer(options ...ViewerBuilderOption) (Viewer, error) {
	v := &viewer{
		backendType: renderer.BackendTypeWGPU,
		width:       1280,
		height:      720,
		msaa:        renderer.MSAA4x,
		presentMode: renderer.PresentModeVSync,
		bus:         events.NewBus(),
		plugin:      events.NewPluginHost[Viewer](),
		clickSlopPx: 3,
		frameTime:   time.Second / 60,
	}
	for _, opt := range options {
		opt(v)
	}
	if v.window != nil {
		v.width, v.height = common.Coalesce(v.window.Width(), v.width), common.Coalesce(v.window.Height(), v.height)
	}

	rendOpts := []renderer.RendererBuilderOption{
		renderer.WithMSAA(v.msaa),
		renderer.WithPresentMode(v.presentMode),
		renderer.WithForceFallbackAdapter(v.fallback),
	}
	if v.window != nil {
		rendOpts = append(rendOpts, renderer.WithSurface(v.window))
	}
	rend, err := renderer.NewRenderer(v.backendType, v.width, v.height, rendOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create viewer: %w", err)
	}

	v.ctx, v.cancel = context.WithCancel(context.Background())
	v.renderState = newRenderState(rend)
	v.styleState = newStyleState(v.tableOpts...)
	v.cameraState = newCameraState(v.width, v.height)
	v.loader = loader.NewLoader(loader.BackendTypeFeed, append([]loader.LoaderBuilderOption{loader.WithDispatcher(v)}, v.loaderOpts...)...)
	v.picker = picking.NewPicker(v, picking.WithHooks(v.plugin.BeforePick, v.plugin.AfterPick))

	if v.window != nil {
		v.window.SetResizeCallback(v.Resize)
		v.window.SetPointerCallback(v.HandlePointer)
	}
	if v.settings != nil {
		v.Set(v.settings)
	}
	return v, nil
}

func (v *viewer) Camera() camera.Camera {
	return v.cameraState.camera
}

func (v *viewer) Navigator() camera.Navigator {
	return v.cameraState.navigator
}

func (v *viewer) Renderer() renderer.Renderer {
	return v.renderState.renderer
}

func (v *viewer) On(name events.Name, l events.Listener) uuid.UUID {
	return v.bus.On(name, l)
}

func (v *viewer) Off(name events.Name, token uuid.UUID) bool {
	return v.bus.Off(name, token)
}

func (v *viewer) AddPlugin(p events.Plugin) bool {
	if !v.plugin.Add(p, v) {
		return false
	}
	v.renderState.invalidate()
	return true
}

func (v *viewer) RemovePlugin(p events.Plugin) bool {
	if !v.plugin.Remove(p) {
		return false
	}
	v.renderState.invalidate()
	return true
}

func (v *viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.renderState.renderer.Resize(width, height)
	v.cameraState.camera.SetViewport(width, height)
}

func (v *viewer) Release() {
	if v.released {
		return
	}
	v.released = true
	v.cancel()
	v.ProcessPending()
	for _, h := range v.renderState.handles {
		v.releaseHandle(h)
	}
	v.renderState.handles = nil
	v.renderState.renderer.Release()
}

// Check reports whether a renderer backend can run on this machine, before any viewer is created.
//
// Parameters:
//   - backendType: the backend to check
//
// Returns:
//   - renderer.CheckResult: hard errors and warnings
func Check(backendType renderer.RendererBackendType) renderer.CheckResult {
	return renderer.Check(backendType)
}
