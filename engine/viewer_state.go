package engine

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
)

// CameraState groups the camera, its navigator and the framing extent of the loaded models.
type CameraState struct {
	camera    camera.Camera
	navigator camera.Navigator

	// extent is the union region of every loaded model.
	extent common.Region
	// framed is set once the first model has been framed with the front view.
	framed bool
	// autoClip fits near and far to the extent before each frame. Cleared when near or far are set
	// explicitly.
	autoClip bool
}

func newCameraState(width, height int) CameraState {
	c := camera.NewCamera(camera.WithViewport(width, height))
	return CameraState{
		camera:    c,
		navigator: camera.NewNavigator(c),
		extent:    common.EmptyRegion(),
		autoClip:  true,
	}
}

// fitClipping keeps the loaded models between the near and far planes.
func (cs *CameraState) fitClipping() {
	if cs.autoClip && cs.extent.Valid() {
		camera.FitClipping(cs.camera, cs.extent)
	}
}

// include extends the extent by a newly loaded region. The first region is framed from the front.
func (cs *CameraState) include(r common.Region) {
	if !r.Valid() {
		return
	}
	cs.extent = cs.extent.Union(r)
	if cs.framed {
		return
	}
	cs.framed = true
	camera.SetTarget(cs.camera, cs.extent)
	camera.Show(cs.camera, camera.ViewFront)
}

// recompute rebuilds the extent from the remaining handles after an unload.
func (cs *CameraState) recompute(handles []geometry.Handle) {
	cs.extent = common.EmptyRegion()
	for _, h := range handles {
		if r := h.Region(); r.Valid() {
			cs.extent = cs.extent.Union(r)
		}
	}
	if len(handles) == 0 {
		cs.framed = false
	}
}

// StyleState owns the product state and style table shared by every model.
type StyleState struct {
	table state.Table
}

func newStyleState(options ...state.TableBuilderOption) StyleState {
	return StyleState{table: state.NewTable(options...)}
}

// frameKey fingerprints everything that affects the image. A frame is drawn when it differs from the
// key of the last drawn frame.
type frameKey struct {
	camera, styles, material, scene uint64
	width, height                   int
}

// RenderState groups the renderer, the frame-global appearance, the loaded handles and the change
// detection of the frame loop.
type RenderState struct {
	renderer renderer.Renderer
	material material.Material

	// handles are the loaded models in load order.
	handles []geometry.Handle
	// startAll is applied to models as they are loaded.
	startAll bool
	// revision increases when the started set, the handles or the plugins change.
	revision uint64

	drawn    frameKey
	hasDrawn bool

	profiler  *profiler.Profiler
	profiling bool
}

func newRenderState(r renderer.Renderer) RenderState {
	return RenderState{
		renderer: r,
		material: material.NewMaterial(),
		startAll: true,
		profiler: profiler.NewProfiler(),
	}
}

// invalidate forces the next Frame to draw.
func (rs *RenderState) invalidate() {
	rs.revision++
}

// animating reports whether any model is started.
func (rs *RenderState) animating() bool {
	return slices.ContainsFunc(rs.handles, geometry.Handle.Started)
}

// find returns the loaded handle of a model.
func (rs *RenderState) find(modelID int) (geometry.Handle, int) {
	i := slices.IndexFunc(rs.handles, func(h geometry.Handle) bool { return h.ModelID() == modelID })
	if i < 0 {
		return nil, -1
	}
	return rs.handles[i], i
}
