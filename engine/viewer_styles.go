package engine

import (
	"github.com/Carmen-Shannon/oxy-bim/common"
	"github.com/Carmen-Shannon/oxy-bim/engine/camera"
	"github.com/Carmen-Shannon/oxy-bim/engine/state"
	"github.com/go-gl/mathgl/mgl32"
)

func (v *viewer) SetState(s state.State, target state.Target) error {
	return v.styleState.table.SetState(s, target)
}

func (v *viewer) GetState(productID int) state.State {
	return v.styleState.table.ProductState(productID)
}

func (v *viewer) ResetStates(hideSpaces bool) {
	v.styleState.table.ResetStates(hideSpaces)
}

func (v *viewer) DefineStyle(index int, colour []int) error {
	return v.styleState.table.DefineStyle(index, colour)
}

func (v *viewer) SetStyle(style state.Style, target state.Target) error {
	return v.styleState.table.SetStyle(style, target)
}

func (v *viewer) GetStyle(productID int) state.Style {
	return v.styleState.table.ProductStyle(productID)
}

func (v *viewer) ResetStyles() {
	v.styleState.table.ResetStyles()
}

func (v *viewer) GetModelState(modelID int) (state.Snapshot, bool) {
	return v.styleState.table.ModelState(modelID)
}

func (v *viewer) RestoreModelState(modelID int, snap state.Snapshot) error {
	return v.styleState.table.RestoreModelState(modelID, snap)
}

func (v *viewer) GetProductType(productID int) common.ProductType {
	return v.styleState.table.ProductType(productID)
}

func (v *viewer) SetCameraPosition(p mgl32.Vec3) {
	v.cameraState.camera.SetPosition(p)
}

func (v *viewer) GetCameraPosition() mgl32.Vec3 {
	return v.cameraState.camera.Position()
}

func (v *viewer) SetCameraTarget(productID int) bool {
	r, ok := v.targetRegion(productID)
	if !ok {
		return false
	}
	return camera.SetTarget(v.cameraState.camera, r)
}

func (v *viewer) Show(view camera.ViewType) bool {
	if _, _, ok := camera.ViewDirection(view); !ok {
		return false
	}
	if !v.SetCameraTarget(AllModels) {
		return false
	}
	return camera.Show(v.cameraState.camera, view)
}

func (v *viewer) ZoomTo(productID int) bool {
	r, ok := v.targetRegion(productID)
	if !ok {
		return false
	}
	return camera.ZoomTo(v.cameraState.camera, r)
}

// targetRegion resolves a product region, or the full extent for AllModels.
func (v *viewer) targetRegion(productID int) (common.Region, bool) {
	if productID == AllModels {
		return v.cameraState.extent, v.cameraState.extent.Valid()
	}
	for _, h := range v.renderState.handles {
		if r, ok := h.ProductRegion(productID); ok {
			return r, r.Valid()
		}
	}
	return common.Region{}, false
}
