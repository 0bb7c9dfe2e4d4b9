package engine

import (
	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/chewxy/math32"
)

// pointerTracker follows one press-move-release gesture to tell clicks from drags.
type pointerTracker struct {
	down    bool
	button  events.Button
	dragged bool

	startX, startY float32
	lastX, lastY   float32
}

func (v *viewer) HandlePointer(name events.Name, e events.PointerEvent) {
	v.bus.Fire(events.Event{Name: name, Pointer: &e})

	t := &v.input
	x, y := float32(e.PixelX), float32(e.PixelY)
	switch name {
	case events.MouseDown, events.TouchStart:
		button := e.Button
		if e.Touch || name == events.TouchStart {
			button = events.ButtonPrimary
		}
		*t = pointerTracker{down: true, button: button, startX: x, startY: y, lastX: x, lastY: y}

	case events.MouseMove, events.TouchMove:
		if !t.down {
			return
		}
		dx, dy := x-t.lastX, y-t.lastY
		t.lastX, t.lastY = x, y
		if !t.dragged && math32.Hypot(x-t.startX, y-t.startY) > v.clickSlopPx {
			t.dragged = true
		}
		if t.dragged {
			v.cameraState.navigator.Drag(t.button == events.ButtonPrimary, dx, dy)
		}

	case events.MouseUp, events.TouchEnd:
		if !t.down {
			return
		}
		click := !t.dragged && t.button == events.ButtonPrimary
		*t = pointerTracker{}
		if click {
			id := v.GetID(e.PixelX, e.PixelY)
			v.bus.Fire(events.Event{Name: events.Pick, ProductID: id, Pointer: &e})
		}

	case events.MouseWheel:
		v.cameraState.navigator.Wheel(e.Wheel)
	}
}
