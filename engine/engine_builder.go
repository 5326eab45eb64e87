package engine

import (
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/profiler"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
	"github.com/lelepado01/RenderingEngine/engine/scene"
	"github.com/lelepado01/RenderingEngine/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithWindow sets the window whose message loop Run drives. An engine without one can still be
// stepped with Frame.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer frames are drawn through. Required.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithDevice sets the device uploads and pipeline rebuilds go through. Required.
//
// Parameters:
//   - d: the device
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDevice(d gpu.Device) EngineBuilderOption {
	return func(e *engine) {
		e.device = d
	}
}

// WithScene sets the scene to draw. Required.
//
// Parameters:
//   - s: the scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithController replaces the default camera controller, e.g. to change key bindings.
func WithController(c camera.CameraController) EngineBuilderOption {
	return func(e *engine) {
		e.controller = c
	}
}

// WithClock replaces the wall clock frame times are measured with.
func WithClock(c *profiler.Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
	}
}

// WithProfiler enables the periodic stats report.
//
// Parameters:
//   - p: the profiler, ticked after every drawn frame; nil disables profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWatcher enables shader hot reload from the files w reports.
func WithWatcher(w shader.Watcher) EngineBuilderOption {
	return func(e *engine) {
		e.watcher = w
	}
}
