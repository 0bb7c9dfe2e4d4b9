// Package events carries the viewer's lifecycle and pointer notifications to listeners and plugins.
package events

// Name identifies an event kind.
type Name string

const (
	// Loaded fires after a model's GPU resources are allocated. ModelID and Tag are set.
	Loaded Name = "loaded"
	// Unloaded fires after a model's GPU resources are released. ModelID is set.
	Unloaded Name = "unloaded"
	// Pick fires after a click resolved a product. ProductID is set, -1 for background; Pointer is set.
	Pick Name = "pick"
	// Frame fires after each frame that was actually drawn.
	Frame Name = "frame"
	// Error fires when a load fails. Err and Tag are set.
	Error Name = "error"

	MouseDown  Name = "mouseDown"
	MouseUp    Name = "mouseUp"
	MouseMove  Name = "mouseMove"
	MouseWheel Name = "mouseWheel"
	TouchStart Name = "touchStart"
	TouchMove  Name = "touchMove"
	TouchEnd   Name = "touchEnd"
)

// Button identifies a pointer button.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// PointerEvent is a pointer or touch sample forwarded from the window.
type PointerEvent struct {
	// X and Y are normalized to [0, 1] across the viewport, origin at the top-left corner.
	X, Y float32
	// PixelX and PixelY are the framebuffer coordinates of the sample.
	PixelX, PixelY int
	// DX and DY are the pixel deltas since the previous sample of the same kind.
	DX, DY float32
	// Wheel is the scroll amount for MouseWheel events, positive away from the user.
	Wheel  float32
	Button Button
	// Touch is true for samples that came from a touch screen.
	Touch bool
}

// Event is the payload delivered to listeners.
type Event struct {
	Name      Name
	ModelID   int
	Tag       string
	ProductID int
	Pointer   *PointerEvent
	Err       error
}
