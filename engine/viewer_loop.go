package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/events"
	"github.com/Carmen-Shannon/oxy-bim/engine/profiler"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer"
)

func (v *viewer) Run(ctx context.Context) error {
	if v.window == nil {
		return fmt.Errorf("viewer has no window to run: %w", common.ErrConfiguration)
	}
	stop := context.AfterFunc(ctx, v.window.Wake)
	defer stop()

	for v.window.IsRunning() && ctx.Err() == nil {
		v.Frame()
		if v.renderState.animating() {
			v.window.WaitEventsTimeout(v.frameTime)
		} else {
			// nothing to animate: sleep until input, a finished load or cancellation
			v.window.WaitEvents()
		}
	}
	return ctx.Err()
}

func (v *viewer) Frame() (drawn bool) {
	v.ProcessPending()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Viewer] frame skipped: %v", r)
			drawn = false
		}
		if rs := &v.renderState; rs.profiling {
			stats := rs.renderer.Stats()
			rs.profiler.Tick(profiler.Sample{
				Drawn:     drawn,
				DrawCalls: stats.DrawCalls,
				Culled:    stats.Culled,
				Triangles: stats.Triangles,
				Duration:  time.Since(start),
			})
		}
	}()

	v.cameraState.fitClipping()
	if !v.IsChanged() {
		return false
	}
	if err := v.Draw(); err != nil {
		log.Printf("[Viewer] frame skipped: %v", err)
		return false
	}
	return true
}

func (v *viewer) Draw() (err error) {
	if v.released {
		return fmt.Errorf("viewer is released: %w", common.ErrReleased)
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("draw panicked: %v", r)
		}
	}()

	v.plugin.BeforeDraw()
	key := v.frameKey()
	if err := v.renderState.renderer.Draw(v.buildFrame()); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	v.renderState.drawn, v.renderState.hasDrawn = key, true
	v.plugin.AfterDraw()
	v.bus.Fire(events.Event{Name: events.Frame})
	return nil
}

func (v *viewer) IsChanged() bool {
	rs := &v.renderState
	return !rs.hasDrawn || rs.drawn != v.frameKey()
}

func (v *viewer) frameKey() frameKey {
	w, h := v.renderState.renderer.Size()
	return frameKey{
		camera:   v.cameraState.camera.Revision(),
		styles:   v.styleState.table.Revision(),
		material: v.renderState.material.Revision(),
		scene:    v.renderState.revision,
		width:    w,
		height:   h,
	}
}

// buildFrame assembles the started models with their lookup textures, rebuilding dirty ones.
func (v *viewer) buildFrame() *renderer.Frame {
	cam := v.cameraState.camera
	mat := v.renderState.material
	table := v.styleState.table

	styles, stylesChanged := table.StyleTexture()
	frame := &renderer.Frame{
		Camera:        cam.Uniform(),
		Frustum:       cam.Frustum(),
		Settings:      mat.Uniform(),
		Background:    mat.Background(),
		Styles:        styles,
		StylesChanged: stylesChanged,
		Items:         make([]renderer.DrawItem, 0, len(v.renderState.handles)),
	}
	for _, h := range v.renderState.handles {
		if !h.Started() {
			continue
		}
		states, changed := table.LookupTexture(h.ModelID())
		frame.Items = append(frame.Items, renderer.DrawItem{
			ModelID:       h.ModelID(),
			Region:        h.Region(),
			TriangleCount: h.TriangleCount(),
			Resources:     h.Resources(),
			States:        states,
			StatesChanged: changed,
		})
	}
	return frame
}

// PickPixel renders the picking pass of the current frame and reads one texel. Used by the picker.
func (v *viewer) PickPixel(x, y int) ([4]uint8, error) {
	if v.released {
		return [4]uint8{}, fmt.Errorf("viewer is released: %w", common.ErrReleased)
	}
	return v.renderState.renderer.Pick(v.buildFrame(), x, y)
}

func (v *viewer) GetID(x, y int) int {
	return v.picker.GetID(x, y)
}
