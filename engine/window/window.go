package window

import (
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/cogentcore/webgpu/wgpu"
)

// PointerCallback receives normalized pointer samples.
type PointerCallback func(name events.Name, e events.PointerEvent)

// Window provides platform windowing and input event handling.
// Wraps platform-specific window implementations with a common interface.
//
// Every method except Wake must be called from the thread that created the window.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving new width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetPointerCallback sets the callback for mouse button, movement and scroll events.
	// Samples carry framebuffer pixel coordinates and coordinates normalized to the viewport.
	//
	// Parameters:
	//   - callback: function receiving the event name and the sample
	SetPointerCallback(callback PointerCallback)

	// SetKeyDownCallback sets the callback for key press events.
	//
	// Parameters:
	//   - callback: function receiving the virtual key code
	SetKeyDownCallback(callback func(keyCode uint32))

	// SurfaceDescriptor returns a wgpu.SurfaceDescriptor suitable for creating a WebGPU surface.
	// The descriptor is platform-appropriate (Windows HWND, X11 Xlib, Wayland, macOS Metal, etc.)
	// and is created by the wgpuglfw bridge from the underlying GLFW window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform-specific surface descriptor, or nil if window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning returns true if the window is still active.
	//
	// Returns:
	//   - bool: true if window is running, false if closed
	IsRunning() bool

	// Close closes the window and releases platform resources.
	//
	// Returns:
	//   - error: error if close operation fails
	Close() error

	// WaitEvents blocks until at least one event arrives, then processes it. Used by the viewer
	// loop while nothing is animating.
	WaitEvents()

	// WaitEventsTimeout blocks until an event arrives or the timeout elapses, then processes pending
	// events. Used by the viewer loop to pace animated frames.
	//
	// Parameters:
	//   - timeout: the longest wait
	WaitEventsTimeout(timeout time.Duration)

	// Wake unblocks a pending WaitEvents. Safe to call from any goroutine.
	Wake()

	// Width returns the current framebuffer width in pixels.
	//
	// Returns:
	//   - int: width in pixels
	Width() int

	// Height returns the current framebuffer height in pixels.
	//
	// Returns:
	//   - int: height in pixels
	Height() int
}

// engineWindow is the implementation of the Window interface.
// Holds window configuration, GLFW state, input tracking and event callbacks.
type engineWindow struct {
	// title is the window title displayed in the title bar.
	title string

	// minWidth and minHeight bound the window size during resize.
	minWidth  int
	minHeight int

	// width and height are the current framebuffer size in pixels.
	width  int
	height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	// pressed is the button held down, ButtonNone if none.
	pressed events.Button

	// lastX and lastY are the framebuffer coordinates of the previous cursor sample.
	lastX, lastY float32

	onResize  func(width, height int)
	onPointer PointerCallback
	onKeyDown func(keyCode uint32)
}

var _ Window = &engineWindow{}

// NewWindow creates a new Window with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: an error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "oxy-bim",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetPointerCallback(callback PointerCallback) {
	w.onPointer = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) WaitEventsTimeout(timeout time.Duration) {
	platformWaitEventsTimeout(timeout)
}

func (w *engineWindow) WaitEvents() {
	platformWaitEvents()
}

func (w *engineWindow) Wake() {
	platformWake()
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// pointer builds a sample at framebuffer coordinates (x, y) and forwards it.
func (w *engineWindow) pointer(name events.Name, x, y float32, button events.Button, wheel float32) {
	e := events.PointerEvent{
		PixelX: int(x),
		PixelY: int(y),
		DX:     x - w.lastX,
		DY:     y - w.lastY,
		Wheel:  wheel,
		Button: button,
	}
	if w.width > 0 && w.height > 0 {
		e.X = x / float32(w.width)
		e.Y = y / float32(w.height)
	}
	if name != events.MouseMove {
		e.DX, e.DY = 0, 0
	}
	w.lastX, w.lastY = x, y
	if w.onPointer != nil {
		w.onPointer(name, e)
	}
}
