// Package engine runs the frame loop. Each window iteration advances the clock, rebuilds
// pipelines whose shaders changed on disk, updates the scene from this frame's input and draws
// it through the renderer.
package engine

import (
	"errors"
	"fmt"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/profiler"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
	"github.com/lelepado01/RenderingEngine/engine/scene"
	"github.com/lelepado01/RenderingEngine/engine/window"
)

// maxFailedFrames is how many frames in a row may fail to acquire a surface texture before the
// loop gives up.
const maxFailedFrames = 10

var (
	// ErrIncomplete is returned by NewEngine when the renderer, device or scene is missing.
	ErrIncomplete = errors.New("engine needs a renderer, a device and a scene")

	// ErrNoWindow is returned by Run on an engine built without a window.
	ErrNoWindow = errors.New("engine has no window")
)

// engine implements the Engine interface.
type engine struct {
	window     window.Window
	renderer   renderer.Renderer
	device     gpu.Device
	scene      scene.Scene
	controller camera.CameraController
	clock      *profiler.Clock
	profiler   *profiler.Profiler
	watcher    shader.Watcher

	frames       uint64
	failedFrames int
	err          error
}

// Engine drives one scene through a renderer, one frame per window iteration.
type Engine interface {
	// Scene returns the scene being drawn.
	Scene() scene.Scene

	// Frames returns how many frames were drawn.
	Frames() uint64

	// Frame runs one iteration: clock, shader reload, scene update, draw and profiling.
	//
	// Returns:
	//   - error: a scene failure, a frame that could not be submitted, or too many frames in a
	//     row without a surface texture
	Frame() error

	// Run wires the window events and runs the message loop until the window closes or a frame
	// fails. Must be called from the main goroutine.
	//
	// Returns:
	//   - error: the frame failure that stopped the loop, nil on a normal close
	Run() error

	// Close stops the shader watcher and releases the scene.
	Close()
}

var _ Engine = &engine{}

// NewEngine creates an Engine from its parts.
//
// Parameters:
//   - options: functional options supplying the renderer, device, scene and optional parts
//
// Returns:
//   - Engine: the engine
//   - error: ErrIncomplete
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := &engine{}
	for _, opt := range options {
		opt(e)
	}
	if e.renderer == nil || e.device == nil || e.scene == nil {
		return nil, ErrIncomplete
	}
	if e.controller == nil {
		e.controller = camera.NewCameraController()
	}
	if e.clock == nil {
		e.clock = profiler.NewClock(nil)
	}
	return e, nil
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Frames() uint64 {
	return e.frames
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}
	e.bindWindow()
	e.window.ProcessMessages()
	return e.err
}

// bindWindow routes window events to the controller, the camera and the renderer.
func (e *engine) bindWindow() {
	e.window.SetKeyDownCallback(e.controller.KeyDown)
	e.window.SetKeyUpCallback(e.controller.KeyUp)
	e.window.SetMouseMoveCallback(e.controller.MouseMove)
	e.window.SetFocusCallback(func(focused bool) {
		if !focused {
			e.controller.Reset()
		}
	})
	e.window.SetScrollCallback(e.zoom)
	e.window.SetResizeCallback(e.resize)
	e.window.SetUpdateCallback(func() bool {
		if err := e.Frame(); err != nil {
			common.Logger().Error("frame failed", "frame", e.frames, "error", err)
			e.err = err
			return false
		}
		return true
	})
}

// zoom moves an orbiting camera towards its target; other cameras ignore the wheel.
func (e *engine) zoom(delta float32) {
	if c, ok := e.scene.Camera().(*camera.ThirdPersonCamera); ok {
		c.Zoom(delta)
	}
}

func (e *engine) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.renderer.Resize(width, height)
	e.scene.SetAspect(float32(width) / float32(height))
}

func (e *engine) Frame() error {
	dt := e.clock.Tick()
	stats := e.renderer.Stats()
	stats.Reset()
	stats.FPS = e.clock.FPS()
	stats.FrameTime = e.clock.Delta()

	e.reload()

	if err := e.scene.Update(e.device, dt, e.controller, stats); err != nil {
		return err
	}
	e.controller.EndFrame()

	if e.window != nil && (e.window.Width() <= 0 || e.window.Height() <= 0) {
		// minimised: nothing to present to
		return nil
	}

	e.renderer.SetClearColor(e.scene.Engine().ClearColor())
	pass, err := e.renderer.BeginFrame()
	if err != nil {
		e.failedFrames++
		if e.failedFrames >= maxFailedFrames {
			return fmt.Errorf("no surface texture for %d frames: %w", e.failedFrames, err)
		}
		common.Logger().Warn("frame skipped", "error", err)
		return nil
	}
	e.failedFrames = 0

	if err := e.scene.Render(pass, stats); err != nil {
		// the pass is open; end it so the renderer stays usable
		_ = e.renderer.EndFrame()
		return err
	}
	if err := e.renderer.EndFrame(); err != nil {
		return err
	}
	e.frames++

	if e.profiler != nil {
		e.profiler.Tick(stats)
	}
	return nil
}

// reload rebuilds the pipelines of shaders the watcher saw change. Failures keep the previous
// pipeline and are only logged.
func (e *engine) reload() {
	if e.watcher == nil {
		return
	}
	changed := e.watcher.Changed()
	if len(changed) == 0 {
		return
	}
	common.Logger().Debug("shader files changed", "files", changed)
	if _, err := e.scene.Reload(e.device, changed); err != nil {
		common.Logger().Warn("shader reload incomplete", "error", err)
	}
}

func (e *engine) Close() {
	if e.watcher != nil {
		if err := e.watcher.Close(); err != nil {
			common.Logger().Warn("failed to stop shader watcher", "error", err)
		}
		e.watcher = nil
	}
	if e.scene != nil {
		e.scene.Release(e.device)
		e.scene = nil
	}
}
