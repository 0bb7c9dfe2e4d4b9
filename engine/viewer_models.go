package engine

import (
	"fmt"
	"log"
	"slices"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/loader"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
)

// Post queues a task for the next frame boundary and wakes the window. Safe to call from any
// goroutine; the loader delivers its results through it.
func (v *viewer) Post(task func()) {
	v.pendingMu.Lock()
	v.pending = append(v.pending, task)
	v.pendingMu.Unlock()
	if v.window != nil {
		v.window.Wake()
	}
}

// ProcessPending runs the queued tasks on the calling goroutine. Frame calls it first; callers that
// drive the viewer without Frame call it themselves.
func (v *viewer) ProcessPending() {
	v.pendingMu.Lock()
	tasks := v.pending
	v.pending = nil
	v.pendingMu.Unlock()

	for _, task := range tasks {
		runTask(task)
	}
}

func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Viewer] pending task panicked: %v", r)
		}
	}()
	task()
}

func (v *viewer) LoadModel(src loader.Source, tag string) int {
	return v.loader.Load(v.ctx, src, tag, v.completeLoad)
}

// completeLoad runs on the frame thread once a background load finished.
func (v *viewer) completeLoad(r loader.Result) {
	if v.released {
		return
	}
	if r.Err != nil {
		v.bus.Fire(events.Event{Name: events.Error, Tag: r.Tag, Err: r.Err})
		return
	}
	// LoadPayload reports its own failures
	_, _ = v.LoadPayload(r.Payload, r.Tag)
}

func (v *viewer) LoadPayload(payload *geometry.Payload, tag string) (int, error) {
	if v.released {
		return -1, fmt.Errorf("viewer is released: %w", common.ErrReleased)
	}
	modelID := v.nextModelID
	h, err := v.createHandle(modelID, payload, tag)
	if err != nil {
		log.Printf("[Viewer] failed to load model %q: %v", tag, err)
		v.bus.Fire(events.Event{Name: events.Error, Tag: tag, Err: err})
		return -1, err
	}
	v.nextModelID++

	rs := &v.renderState
	rs.handles = append(rs.handles, h)
	rs.invalidate()
	v.cameraState.include(h.Region())

	v.bus.Fire(events.Event{Name: events.Loaded, ModelID: modelID, Tag: tag})
	return modelID, nil
}

// createHandle uploads the payload and registers its products. Nothing stays allocated on error.
func (v *viewer) createHandle(modelID int, payload *geometry.Payload, tag string) (geometry.Handle, error) {
	if payload == nil {
		return nil, fmt.Errorf("no payload: %w", common.ErrLoad)
	}
	h, err := geometry.NewHandle(modelID, payload, v.renderState.renderer,
		geometry.WithTag(tag),
		geometry.WithStarted(v.renderState.startAll),
	)
	if err != nil {
		return nil, err
	}

	products := h.Products()
	entries := make([]state.ProductEntry, len(products))
	for i, p := range products {
		entries[i] = state.ProductEntry{ID: p.ID, Type: p.Type}
	}
	if err := v.styleState.table.AddModel(modelID, entries); err != nil {
		v.releaseHandle(h)
		return nil, err
	}
	return h, nil
}

func (v *viewer) UnloadModel(modelID int) bool {
	rs := &v.renderState
	h, i := rs.find(modelID)
	if h == nil {
		return false
	}
	rs.handles = slices.Delete(rs.handles, i, i+1)
	rs.invalidate()
	v.styleState.table.RemoveModel(modelID)
	v.cameraState.recompute(rs.handles)

	// GPU resources may still be referenced by a frame in progress
	v.Post(func() {
		v.releaseHandle(h)
		v.bus.Fire(events.Event{Name: events.Unloaded, ModelID: modelID, Tag: h.Tag()})
	})
	return true
}

func (v *viewer) releaseHandle(h geometry.Handle) {
	if err := h.Release(); err != nil {
		log.Printf("[Viewer] failed to release model %d: %v", h.ModelID(), err)
	}
}

func (v *viewer) Models() []int {
	ids := make([]int, len(v.renderState.handles))
	for i, h := range v.renderState.handles {
		ids[i] = h.ModelID()
	}
	return ids
}

func (v *viewer) Start(modelID int) {
	v.setStarted(modelID, true)
}

func (v *viewer) Stop(modelID int) {
	v.setStarted(modelID, false)
}

func (v *viewer) setStarted(modelID int, started bool) {
	rs := &v.renderState
	if modelID == AllModels {
		rs.startAll = started
		for _, h := range rs.handles {
			h.SetStarted(started)
		}
		rs.invalidate()
		return
	}
	if h, _ := rs.find(modelID); h != nil && h.Started() != started {
		h.SetStarted(started)
		rs.invalidate()
	}
}
