package gpu

import "github.com/cogentcore/webgpu/wgpu"

// HandleBuilderOption configures a Handle before the device is requested.
type HandleBuilderOption func(*wgpuHandle)

// WithVSync selects Fifo presentation when enabled and Immediate otherwise.
//
// Parameters:
//   - enabled: whether presentation waits for vertical blank
//
// Returns:
//   - HandleBuilderOption: the option to apply
func WithVSync(enabled bool) HandleBuilderOption {
	return func(h *wgpuHandle) {
		if enabled {
			h.presentMode = wgpu.PresentModeFifo
		} else {
			h.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software fallback adapter.
func WithForceFallbackAdapter(force bool) HandleBuilderOption {
	return func(h *wgpuHandle) {
		h.forceFallback = force
	}
}
