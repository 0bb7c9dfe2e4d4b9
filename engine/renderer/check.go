package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// requiredBindGroups is the number of bind groups the model program uses.
	requiredBindGroups = 2

	// recommendedTextureDimension is the lookup texture height below which large models no longer fit.
	recommendedTextureDimension = 8192
)

// CheckResult reports whether a backend can run on this machine.
type CheckResult struct {
	// Errors are problems that prevent the backend from running.
	Errors []string
	// Warnings are limitations that may prevent large models from loading.
	Warnings []string
	// NoErrors is true when Errors is empty.
	NoErrors bool
	// NoWarnings is true when Warnings is empty.
	NoWarnings bool
}

// Check reports whether the given backend can run without creating a window or a device. The
// software backend always passes.
//
// Parameters:
//   - backendType: the backend to check
//
// Returns:
//   - CheckResult: the errors and warnings found
func Check(backendType RendererBackendType) CheckResult {
	var res CheckResult
	if backendType == BackendTypeWGPU {
		res.Errors, res.Warnings = checkWGPU()
	} else if backendType != BackendTypeSoftware {
		res.Errors = append(res.Errors, fmt.Sprintf("unknown renderer backend %v", backendType))
	}
	res.NoErrors = len(res.Errors) == 0
	res.NoWarnings = len(res.Warnings) == 0
	return res
}

func checkWGPU() (errs, warnings []string) {
	defer func() {
		if rec := recover(); rec != nil {
			errs = append(errs, fmt.Sprintf("wgpu is not available: %v", rec))
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		return append(errs, fmt.Sprintf("no GPU adapter available: %v", err)), warnings
	}
	defer adapter.Release()

	limits := adapter.GetLimits().Limits
	if limits.MaxBindGroups < requiredBindGroups {
		errs = append(errs, fmt.Sprintf("adapter supports %d bind groups, %d are required", limits.MaxBindGroups, requiredBindGroups))
	}
	if limits.MaxTextureDimension2D < recommendedTextureDimension {
		warnings = append(warnings, fmt.Sprintf("maximum texture size %d is below %d; large models may fail to load", limits.MaxTextureDimension2D, recommendedTextureDimension))
	}
	return errs, warnings
}
