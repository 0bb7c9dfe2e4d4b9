package engine

import (
	"bytes"
	"context"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/loader"
	"github.com/Carmen-Shannon/oxy-bim/engine/picking"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/Carmen-Shannon/oxy-bim/engine/window"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewportSize = 64

func newTestViewer(t *testing.T, options ...ViewerBuilderOption) *viewer {
	t.Helper()
	base := []ViewerBuilderOption{
		WithBackend(renderer.BackendTypeSoftware),
		WithViewport(viewportSize, viewportSize),
	}
	v, err := NewViewer(append(base, options...)...)
	require.NoError(t, err)
	t.Cleanup(v.Release)
	return v.(*viewer)
}

func box(id int, minX, minY, minZ, maxX, maxY, maxZ float32) geometry.Box {
	return geometry.Box{
		ID:     id,
		Type:   common.TypeWall,
		Region: common.NewRegion(minX, minY, minZ, maxX, maxY, maxZ),
		Colour: [4]uint8{200, 200, 200, 255},
	}
}

func (v *viewer) pixel(t *testing.T, x, y int) color.RGBA {
	t.Helper()
	sw, ok := v.Renderer().Backend().(renderer.SoftwareBackend)
	require.True(t, ok)
	return sw.Image().RGBAAt(x, y)
}

// recorder counts events by name.
type recorder struct {
	events []events.Event
}

func record(v Viewer, names ...events.Name) *recorder {
	r := &recorder{}
	for _, n := range names {
		v.On(n, func(e events.Event) { r.events = append(r.events, e) })
	}
	return r
}

func (r *recorder) named(n events.Name) []events.Event {
	var out []events.Event
	for _, e := range r.events {
		if e.Name == n {
			out = append(out, e)
		}
	}
	return out
}

func TestNewViewerValidation(t *testing.T) {
	_, err := NewViewer(WithBackend(renderer.BackendTypeWGPU))
	assert.ErrorIs(t, err, common.ErrConfiguration, "wgpu needs a window")

	_, err = NewViewer(WithBackend(renderer.BackendTypeSoftware), WithViewport(0, 0))
	assert.ErrorIs(t, err, common.ErrConfiguration)

	v := newTestViewer(t)
	assert.ErrorIs(t, v.Run(context.Background()), common.ErrConfiguration, "run needs a window")
}

func TestFirstLoadShowsFrontView(t *testing.T) {
	v := newTestViewer(t)
	rec := record(v, events.Loaded)

	region := common.NewRegion(0, 0, 0, 10, 10, 10)
	id, err := v.LoadPayload(geometry.BoxPayload(box(1, 0, 0, 0, 10, 10, 10)), "model-a")
	require.NoError(t, err)

	loaded := rec.named(events.Loaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, id, loaded[0].ModelID)
	assert.Equal(t, "model-a", loaded[0].Tag)

	pos := v.GetCameraPosition()
	centre := region.Centroid()
	assert.Less(t, pos.Z(), centre.Z(), "front view looks from the -Z side")
	assert.InDelta(t, centre.X(), pos.X(), 1e-3)
	assert.InDelta(t, centre.Y(), pos.Y(), 1e-3)
	assert.InDelta(t, camera.FrameDistance(v.Camera(), region), pos.Sub(centre).Len(), 1e-2)
	assert.Equal(t, centre, v.Camera().Origin())

	// a second model extends the extent without moving the camera
	_, err = v.LoadPayload(geometry.BoxPayload(box(2, 20, 0, 0, 30, 10, 10)), "model-b")
	require.NoError(t, err)
	assert.Equal(t, pos, v.GetCameraPosition())
	assert.Equal(t, []int{0, 1}, v.Models())
}

func TestFrameChangeDetection(t *testing.T) {
	v := newTestViewer(t)
	rec := record(v, events.Frame)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	assert.True(t, v.Frame())
	assert.False(t, v.IsChanged())
	assert.False(t, v.Frame(), "nothing changed")

	require.NoError(t, v.SetState(state.Highlighted, state.Product(5)))
	assert.True(t, v.IsChanged())
	assert.True(t, v.Frame())

	v.Navigator().Wheel(1)
	assert.True(t, v.Frame())

	v.Resize(32, 32)
	assert.True(t, v.Frame())

	assert.Len(t, rec.named(events.Frame), 4)

	require.NoError(t, v.Draw(), "draw ignores change detection")
	assert.Len(t, rec.named(events.Frame), 5)
}

func TestHiddenProductIsNotPicked(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	require.True(t, v.Frame())
	assert.NotEqual(t, v.pixel(t, 0, 0), v.pixel(t, 32, 32))
	assert.Equal(t, 5, v.GetID(32, 32))
	assert.Equal(t, picking.NoHit, v.GetID(0, 0))
	assert.Equal(t, picking.NoHit, v.GetID(-1, 500), "outside the viewport")

	require.NoError(t, v.SetState(state.Hidden, state.Products(5)))
	require.True(t, v.Frame())
	assert.Equal(t, v.pixel(t, 0, 0), v.pixel(t, 32, 32), "no visible fragments")
	assert.Equal(t, picking.NoHit, v.GetID(32, 32))

	require.NoError(t, v.SetState(state.PickingOnly, state.Product(5)))
	require.True(t, v.Frame())
	assert.Equal(t, v.pixel(t, 0, 0), v.pixel(t, 32, 32))
	assert.Equal(t, 5, v.GetID(32, 32), "picking-only products still resolve")
}

func TestUnloadLeavesOtherModelIntact(t *testing.T) {
	v := newTestViewer(t)
	rec := record(v, events.Unloaded)

	a, err := v.LoadPayload(geometry.BoxPayload(box(1, 0, 0, 0, 4, 4, 4), box(9, 0, -3, 0, 1, -2, 1)), "a")
	require.NoError(t, err)
	b, err := v.LoadPayload(geometry.BoxPayload(box(2, 6, 0, 0, 10, 4, 4), box(9, 9, -3, 0, 10, -2, 1)), "b")
	require.NoError(t, err)
	require.True(t, v.Show(camera.ViewFront))

	require.NoError(t, v.SetState(state.Highlighted, state.Product(9)))
	require.NoError(t, v.DefineStyle(3, []int{0, 0, 255, 255}))
	require.NoError(t, v.SetStyle(3, state.Product(2)))
	before, ok := v.GetModelState(b)
	require.True(t, ok)

	require.True(t, v.Frame())
	left, right := v.GetID(16, 32), v.GetID(48, 32)
	assert.ElementsMatch(t, []int{1, 2}, []int{left, right})

	assert.True(t, v.UnloadModel(a))
	assert.False(t, v.UnloadModel(a), "already unloaded")
	assert.Equal(t, []int{b}, v.Models())
	assert.Empty(t, rec.named(events.Unloaded), "release waits for the frame boundary")

	require.True(t, v.Frame())
	unloaded := rec.named(events.Unloaded)
	require.Len(t, unloaded, 1)
	assert.Equal(t, a, unloaded[0].ModelID)

	after, ok := v.GetModelState(b)
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.Equal(t, state.Highlighted, v.GetState(9))
	assert.Equal(t, state.Style(3), v.GetStyle(2))
	assert.Equal(t, common.TypeUnknown, v.GetProductType(1))
	assert.Equal(t, common.TypeWall, v.GetProductType(2))

	gone, kept := left, right
	x, keptX := 16, 48
	if left == 2 {
		gone, kept = right, left
		x, keptX = 48, 16
	}
	assert.Equal(t, 1, gone)
	assert.Equal(t, picking.NoHit, v.GetID(x, 32))
	assert.Equal(t, kept, v.GetID(keptX, 32))
}

func TestCameraTargets(t *testing.T) {
	v := newTestViewer(t)

	assert.False(t, v.ZoomTo(AllModels), "nothing loaded")
	assert.False(t, v.Show(camera.ViewTop), "nothing loaded")
	assert.False(t, v.SetCameraTarget(AllModels))

	_, err := v.LoadPayload(geometry.BoxPayload(box(1, 0, 0, 0, 2, 2, 2), box(2, 10, 0, 0, 12, 2, 2)), "")
	require.NoError(t, err)
	origin := v.Camera().Origin()

	assert.False(t, v.SetCameraTarget(999))
	assert.Equal(t, origin, v.Camera().Origin())
	assert.False(t, v.ZoomTo(999))
	assert.False(t, v.Show(camera.ViewType("diagonal")))

	require.True(t, v.SetCameraTarget(2))
	assert.Equal(t, mgl32.Vec3{11, 1, 1}, v.Camera().Origin())

	require.True(t, v.ZoomTo(1))
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, v.Camera().Origin())
	assert.InDelta(t, camera.FrameDistance(v.Camera(), common.NewRegion(0, 0, 0, 2, 2, 2)),
		v.GetCameraPosition().Sub(v.Camera().Origin()).Len(), 1e-3)

	require.True(t, v.Show(camera.ViewTop))
	assert.Greater(t, v.GetCameraPosition().Y(), v.Camera().Origin().Y())

	v.SetCameraPosition(mgl32.Vec3{6, 1, -40})
	assert.Equal(t, mgl32.Vec3{6, 1, -40}, v.GetCameraPosition())
}

func TestClickPicksAndDragNavigates(t *testing.T) {
	v := newTestViewer(t)
	rec := record(v, events.Pick, events.MouseDown, events.MouseUp)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)
	require.True(t, v.Frame())

	click := events.PointerEvent{PixelX: 32, PixelY: 32, Button: events.ButtonPrimary}
	v.HandlePointer(events.MouseDown, click)
	v.HandlePointer(events.MouseMove, events.PointerEvent{PixelX: 33, PixelY: 32, Button: events.ButtonPrimary})
	v.HandlePointer(events.MouseUp, click)

	picks := rec.named(events.Pick)
	require.Len(t, picks, 1)
	assert.Equal(t, 5, picks[0].ProductID)
	require.NotNil(t, picks[0].Pointer)
	assert.Equal(t, 32, picks[0].Pointer.PixelX)
	assert.Len(t, rec.named(events.MouseDown), 1, "pointer events are forwarded")
	assert.False(t, v.IsChanged(), "movement inside the click slop does not navigate")

	before := v.GetCameraPosition()
	v.HandlePointer(events.MouseDown, click)
	v.HandlePointer(events.MouseMove, events.PointerEvent{PixelX: 50, PixelY: 40})
	v.HandlePointer(events.MouseUp, events.PointerEvent{PixelX: 50, PixelY: 40})
	assert.Len(t, rec.named(events.Pick), 1, "a drag is not a click")
	assert.NotEqual(t, before, v.GetCameraPosition())

	// background clicks report no hit
	v.HandlePointer(events.TouchStart, events.PointerEvent{PixelX: 0, PixelY: 0, Touch: true})
	v.HandlePointer(events.TouchEnd, events.PointerEvent{PixelX: 0, PixelY: 0, Touch: true})
	picks = rec.named(events.Pick)
	require.Len(t, picks, 2)
	assert.Equal(t, picking.NoHit, picks[1].ProductID)

	distance := v.GetCameraPosition().Sub(v.Camera().Origin()).Len()
	v.HandlePointer(events.MouseWheel, events.PointerEvent{Wheel: 1})
	assert.Less(t, v.GetCameraPosition().Sub(v.Camera().Origin()).Len(), distance)
}

func TestStartStop(t *testing.T) {
	v := newTestViewer(t)
	v.Stop(AllModels)

	id, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)
	require.True(t, v.Frame())
	assert.Equal(t, 0, v.Renderer().Stats().DrawCalls, "stopped before load")
	assert.False(t, v.renderState.animating())

	v.Start(AllModels)
	require.True(t, v.Frame())
	assert.Equal(t, 1, v.Renderer().Stats().DrawCalls)
	assert.True(t, v.renderState.animating())

	v.Stop(id)
	require.True(t, v.Frame())
	assert.Equal(t, 0, v.Renderer().Stats().DrawCalls)

	v.Start(id)
	v.Start(id)
	require.True(t, v.Frame())
	assert.False(t, v.Frame())
	assert.Equal(t, 1, v.Renderer().Stats().DrawCalls)

	_, err = v.LoadPayload(geometry.BoxPayload(box(6, 3, 3, 3, 4, 4, 4)), "")
	require.NoError(t, err)
	require.True(t, v.Frame())
	assert.Equal(t, 2, v.Renderer().Stats().DrawCalls+v.Renderer().Stats().Culled, "started by default")
}

func TestSet(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	v.Set(map[string]any{
		"background":            [4]uint8{1, 2, 3, 255},
		"highlightingColour":    []int{0, 255, 0, 255},
		"renderingMode":         "XRAY",
		"navigationMode":        "fixed-orbit",
		"perspectiveCamera.fov": float32(60),
		"clippingPlaneA":        []float64{1, 0, 0, 0},
		"clippingA":             true,
		"lightA":                [4]float32{0, 10, 0, 1},
		"meter":                 1000,
		"profiling":             true,
		"unknown":               1,
		"clippingB":             "yes",
	})

	mat := v.renderState.material
	assert.Equal(t, [4]uint8{1, 2, 3, 255}, mat.Background())
	assert.Equal(t, [4]uint8{0, 255, 0, 255}, mat.HighlightingColour())
	assert.Equal(t, material.ModeXRay, mat.Mode())
	assert.Equal(t, camera.NavigationFixedOrbit, v.Navigator().Mode())
	assert.InDelta(t, math32.Pi/3, v.Camera().Perspective().Fov, 1e-5)
	plane, on := mat.ClippingPlane(material.SlotA)
	assert.True(t, on)
	assert.Equal(t, material.ClippingPlane{1, 0, 0, 0}, plane)
	_, on = mat.ClippingPlane(material.SlotB)
	assert.False(t, on, "values of the wrong type are ignored")
	assert.Equal(t, material.Light{0, 10, 0, 1}, mat.Light(material.SlotA))
	assert.Equal(t, float32(1000), v.Camera().Meter())
	assert.True(t, v.renderState.profiling)
	assert.True(t, v.cameraState.autoClip)

	require.True(t, v.Frame())
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, v.pixel(t, 0, 0))

	v.Set(map[string]any{"perspectiveCamera.near": 0.0})
	assert.True(t, v.cameraState.autoClip, "zero keeps automatic clipping")
	v.Set(map[string]any{"perspectiveCamera.near": 0.5, "camera": "orthogonal", "orthogonalCamera.left": -3})
	assert.False(t, v.cameraState.autoClip)
	assert.Equal(t, float32(0.5), v.Camera().Perspective().Near)
	assert.Equal(t, camera.ModeOrthogonal, v.Camera().Mode())
	assert.Equal(t, float32(-3), v.Camera().Orthogonal().Left)
}

func TestAsyncLoad(t *testing.T) {
	v := newTestViewer(t, WithLoaderOptions(loader.WithWorkers(1)))
	rec := record(v, events.Loaded, events.Error)

	var buf bytes.Buffer
	require.NoError(t, loader.Encode(&buf, geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1))))
	v.LoadModel(loader.BytesSource("good", buf.Bytes()), "good")
	v.LoadModel(loader.BytesSource("bad", buf.Bytes()[:10]), "bad")

	deadline := time.Now().Add(5 * time.Second)
	for len(rec.events) < 2 && time.Now().Before(deadline) {
		v.Frame()
		time.Sleep(5 * time.Millisecond)
	}

	loaded := rec.named(events.Loaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, "good", loaded[0].Tag)
	failed := rec.named(events.Error)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Tag)
	assert.ErrorIs(t, failed[0].Err, common.ErrLoad)
	assert.Len(t, v.Models(), 1, "a failed load leaves other models intact")

	_, err := v.LoadPayload(&geometry.Payload{}, "empty")
	assert.ErrorIs(t, err, common.ErrLoad)
	assert.Len(t, rec.named(events.Error), 2)
	assert.Len(t, v.Models(), 1)
}

type testPlugin struct {
	calls []string
	owner Viewer
}

func (p *testPlugin) Init(v Viewer) { p.owner = v; p.calls = append(p.calls, "init") }
func (p *testPlugin) OnBeforeDraw() { p.calls = append(p.calls, "beforeDraw") }
func (p *testPlugin) OnAfterDraw() { p.calls = append(p.calls, "afterDraw") }
func (p *testPlugin) OnBeforePick() { p.calls = append(p.calls, "beforePick") }
func (p *testPlugin) OnAfterPick(productID int) { p.calls = append(p.calls, "afterPick") }
func (p *testPlugin) OnRemove() { p.calls = append(p.calls, "remove") }

func TestPlugins(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	p := &testPlugin{}
	require.True(t, v.AddPlugin(p))
	assert.False(t, v.AddPlugin(p))
	assert.Same(t, v, p.owner)

	require.True(t, v.Frame())
	assert.Equal(t, 5, v.GetID(32, 32))
	require.True(t, v.RemovePlugin(p))
	assert.False(t, v.RemovePlugin(p))
	v.Frame()

	assert.Equal(t, []string{"init", "beforeDraw", "afterDraw", "beforePick", "afterPick", "remove"}, p.calls)
}

func TestRelease(t *testing.T) {
	v := newTestViewer(t)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	v.Release()
	v.Release()
	assert.ErrorIs(t, v.Draw(), common.ErrReleased)
	_, err = v.LoadPayload(geometry.BoxPayload(box(6, 0, 0, 0, 1, 1, 1)), "")
	assert.ErrorIs(t, err, common.ErrReleased)
	assert.Equal(t, picking.NoHit, v.GetID(32, 32))
}

// fakeWindow stands in for a desktop window. Waits return immediately so the loop spins.
type fakeWindow struct {
	resize  func(width, height int)
	pointer window.PointerCallback
	keyDown func(keyCode uint32)

	waits    atomic.Int32
	timeouts atomic.Int32
	wakes    atomic.Int32
	onWait   func()
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.resize = cb }
func (w *fakeWindow) SetPointerCallback(cb window.PointerCallback) { w.pointer = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(keyCode uint32)) { w.keyDown = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }
func (w *fakeWindow) IsRunning() bool { return true }
func (w *fakeWindow) Close() error { return nil }
func (w *fakeWindow) Wake() { w.wakes.Add(1) }
func (w *fakeWindow) Width() int { return viewportSize }
func (w *fakeWindow) Height() int { return viewportSize }

func (w *fakeWindow) WaitEvents() {
	w.waits.Add(1)
	if w.onWait != nil {
		w.onWait()
	}
}

func (w *fakeWindow) WaitEventsTimeout(time.Duration) {
	w.timeouts.Add(1)
	if w.onWait != nil {
		w.onWait()
	}
}

func TestRunWithWindow(t *testing.T) {
	win := &fakeWindow{}
	v := newTestViewer(t, WithWindow(win))
	require.NotNil(t, win.pointer, "pointer input is routed to the viewer")
	require.NotNil(t, win.resize)

	rec := record(v, events.Frame, events.Pick)
	_, err := v.LoadPayload(geometry.BoxPayload(box(5, -1, -1, -1, 1, 1, 1)), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	win.onWait = func() {
		frames++
		switch frames {
		case 1:
			win.pointer(events.MouseDown, events.PointerEvent{PixelX: 32, PixelY: 32, Button: events.ButtonPrimary})
			win.pointer(events.MouseUp, events.PointerEvent{PixelX: 32, PixelY: 32, Button: events.ButtonPrimary})
		case 2:
			v.Stop(AllModels)
		case 3:
			v.Post(func() {})
		case 4:
			cancel()
		}
	}

	assert.ErrorIs(t, v.Run(ctx), context.Canceled)
	assert.Equal(t, int32(2), win.timeouts.Load(), "animated frames are paced")
	assert.Equal(t, int32(2), win.waits.Load(), "stopped models wait for events")
	assert.GreaterOrEqual(t, win.wakes.Load(), int32(1), "posted tasks wake the loop")
	assert.Len(t, rec.named(events.Frame), 2)
	picks := rec.named(events.Pick)
	require.Len(t, picks, 1)
	assert.Equal(t, 5, picks[0].ProductID)

	win.resize(32, 16)
	w, h := v.Renderer().Size()
	assert.Equal(t, 32, w)
	assert.Equal(t, 16, h)
}
