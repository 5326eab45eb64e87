package render_engine

import "github.com/cogentcore/webgpu/wgpu"

// Clear colours of the engines.
var (
	SkyColor   = [4]float64{0.43, 0.72, 0.72, 1}
	BlackColor = [4]float64{0, 0, 0, 1}
)

// options is the configuration shared by every engine.
type options struct {
	clearColor [4]float64
	cullMode   wgpu.CullMode
	wireframe  bool
}

func newOptions(clear [4]float64, opts []EngineOption) options {
	o := options{clearColor: clear, cullMode: wgpu.CullModeBack}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// EngineOption is a functional option applied to an engine during construction.
type EngineOption func(*options)

// WithClearColor overrides the engine's clear colour.
//
// Parameters:
//   - c: RGBA in [0, 1]
//
// Returns:
//   - EngineOption: a function that sets the clear colour
func WithClearColor(c [4]float64) EngineOption {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithCullMode sets face culling for every pipeline of the engine. Back-face culling is the default.
//
// Parameters:
//   - mode: the cull mode, wgpu.CullModeNone to draw both sides
//
// Returns:
//   - EngineOption: a function that sets the cull mode
func WithCullMode(mode wgpu.CullMode) EngineOption {
	return func(o *options) {
		o.cullMode = mode
	}
}

// WithWireframe draws triangle edges as lines.
func WithWireframe(enabled bool) EngineOption {
	return func(o *options) {
		o.wireframe = enabled
	}
}
