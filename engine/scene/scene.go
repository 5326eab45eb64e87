// Package scene ties a camera, the render engine drawing through it and the content feeding that
// engine into the unit the frame loop advances and draws each frame.
package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/render_engine"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

// Content is world data streamed into a render engine, e.g. terrain tiles or a voxel world.
type Content interface {
	// Update advances the content to the camera's current view and uploads what changed.
	//
	// Parameters:
	//   - device: the device to upload through
	//   - cam: the camera after this frame's movement
	//   - stats: frame counters, may be nil
	//
	// Returns:
	//   - error: generation or upload failed
	Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error

	// Release frees the content's GPU resources.
	Release(device gpu.Device)
}

// Scene is what the frame loop drives: a camera, the engine drawing through it and the content
// feeding that engine.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// Engine returns the render engine.
	Engine() render_engine.Engine

	// Update moves the camera by one frame of input, then lets every content and the engine
	// upload their per-frame state.
	//
	// Parameters:
	//   - device: the device to upload through
	//   - dt: frame time in seconds
	//   - in: this frame's input, may be nil
	//   - stats: frame counters, may be nil
	//
	// Returns:
	//   - error: the first content or engine failure
	Update(device gpu.Device, dt float32, in camera.Input, stats *renderer.Stats) error

	// Render records the engine's draws into pass.
	Render(pass gpu.RenderPass, stats *renderer.Stats) error

	// SetAspect forwards a new framebuffer aspect ratio to the camera.
	SetAspect(aspect float32)

	// Reload rebuilds every pipeline whose shader depends on one of the changed files. A
	// shader that fails to load or build is reported and its previous pipeline kept.
	//
	// Parameters:
	//   - device: the device to build on
	//   - changed: file names relative to the shader source
	//
	// Returns:
	//   - int: pipelines rebuilt
	//   - error: every failure, joined
	Reload(device gpu.Device, changed []string) (int, error)

	// Release frees the engine and every content.
	Release(device gpu.Device)
}

type sceneImpl struct {
	name     string
	camera   camera.Camera
	engine   render_engine.Engine
	contents []Content
	shaders  shader.PreProcessor
}

var _ Scene = &sceneImpl{}

// NewScene creates a scene drawing eng through cam.
//
// Parameters:
//   - name: identifier for logging
//   - cam: the camera
//   - eng: the render engine
//   - options: variadic list of SceneBuilderOption functions
//
// Returns:
//   - Scene: the scene
func NewScene(name string, cam camera.Camera, eng render_engine.Engine, options ...SceneBuilderOption) Scene {
	s := &sceneImpl{
		name:   name,
		camera: cam,
		engine: eng,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *sceneImpl) Name() string {
	return s.name
}

func (s *sceneImpl) Camera() camera.Camera {
	return s.camera
}

func (s *sceneImpl) Engine() render_engine.Engine {
	return s.engine
}

func (s *sceneImpl) Update(device gpu.Device, dt float32, in camera.Input, stats *renderer.Stats) error {
	s.camera.Update(dt, in)
	for _, c := range s.contents {
		if err := c.Update(device, s.camera, stats); err != nil {
			return fmt.Errorf("scene %q: %w", s.name, err)
		}
	}
	if err := s.engine.Update(device, s.camera, stats); err != nil {
		return fmt.Errorf("scene %q: %w", s.name, err)
	}
	return nil
}

func (s *sceneImpl) Render(pass gpu.RenderPass, stats *renderer.Stats) error {
	return s.engine.Render(pass, stats)
}

func (s *sceneImpl) SetAspect(aspect float32) {
	s.camera.SetAspect(aspect)
}

func (s *sceneImpl) Reload(device gpu.Device, changed []string) (int, error) {
	if s.shaders == nil || len(changed) == 0 {
		return 0, nil
	}

	var errs []error
	rebuilt := 0
	for _, old := range s.engine.Shaders() {
		if old.Path() == "" || !slices.ContainsFunc(changed, old.DependsOn) {
			continue
		}
		fresh, err := shader.Load(s.shaders, old.Key(), old.Path())
		if err == nil {
			err = s.engine.Rebuild(device, fresh)
		}
		if err != nil {
			common.Logger().Warn("shader reload failed, keeping previous pipeline",
				"scene", s.name, "shader", old.Key(), "error", err)
			errs = append(errs, err)
			continue
		}
		common.Logger().Info("shader reloaded", "scene", s.name, "shader", old.Key())
		rebuilt++
	}
	return rebuilt, errors.Join(errs...)
}

func (s *sceneImpl) Release(device gpu.Device) {
	s.engine.Release(device)
	for _, c := range s.contents {
		c.Release(device)
	}
	s.contents = nil
}
