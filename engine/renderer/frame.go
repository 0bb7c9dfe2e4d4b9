package renderer

import (
	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
	"github.com/Carmen-Shannon/oxy-bim/engine/renderer/material"
)

// Frame is everything one draw or pick pass needs. It is assembled by the viewer on the frame thread
// and only read by the renderer, except for DrawItem.Culled which the renderer sets.
type Frame struct {
	// Camera is the camera uniform of this frame.
	Camera camera.GPUCameraUniform
	// Frustum is the view frustum extracted from Camera.ViewProj, used for culling.
	Frustum common.Frustum
	// Settings is the render settings uniform of this frame.
	Settings material.GPURenderSettings
	// Background is the clear colour.
	Background [4]uint8
	// Styles is the shared override-style texture.
	Styles common.TextureStagingData
	// StylesChanged is true when Styles must be rewritten on the GPU.
	StylesChanged bool
	// Items are the started models, in load order.
	Items []DrawItem
}

// DrawItem is one model of a Frame.
type DrawItem struct {
	ModelID       int
	Region        common.Region
	TriangleCount int
	// Resources are the handle's resources, created by the same renderer.
	Resources geometry.Resources
	// States is the model's product state lookup texture.
	States common.TextureStagingData
	// StatesChanged is true when States must be rewritten before drawing.
	StatesChanged bool
	// Culled is set by the renderer when Region lies outside Frustum.
	Culled bool
}

// Stats describes the last drawn frame.
type Stats struct {
	// DrawCalls is the number of indexed draw calls per pass, one per visible model.
	DrawCalls int
	// Culled is the number of models skipped by frustum culling.
	Culled int
	// Triangles is the number of triangles submitted per pass.
	Triangles int
}

// cull marks the items outside the frustum and returns the frame statistics.
func (f *Frame) cull() Stats {
	var s Stats
	for i := range f.Items {
		item := &f.Items[i]
		item.Culled = item.Region.Valid() && !f.Frustum.IntersectsRegion(item.Region)
		if item.Culled {
			s.Culled++
			continue
		}
		s.DrawCalls++
		s.Triangles += item.TriangleCount
	}
	return s
}
