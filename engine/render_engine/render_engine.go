// Package render_engine holds the three renderers the application can run: meshes lit by point
// lights, voxel worlds drawn face by face, and instanced terrain drawn through indirect
// arguments. Each engine owns its pipelines and shared bind groups, uploads camera state in
// Update and records its draws into the frame's render pass in Render.
package render_engine

import (
	"errors"
	"fmt"

	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

var (
	// ErrGroupCountMismatch is returned when a shader declares a different number of bind groups
	// than the engine binds.
	ErrGroupCountMismatch = errors.New("shader bind group count does not match engine")

	// ErrUnknownShader is returned by Rebuild for a shader key the engine does not use.
	ErrUnknownShader = errors.New("shader not used by engine")

	// ErrMissingShader is returned when content needs a pipeline whose shader was not supplied.
	ErrMissingShader = errors.New("missing shader")

	// ErrUnknownKind is returned by ParseKind for a name it does not know.
	ErrUnknownKind = errors.New("unknown engine kind")
)

// Kind names an engine.
type Kind string

const (
	KindMesh     Kind = "mesh"
	KindVoxel    Kind = "voxel"
	KindIndirect Kind = "indirect"
)

// Shader keys. Engines look their shaders up by these keys and Rebuild matches on them.
const (
	ShaderInstanced = "instanced"
	ShaderStandard  = "standard"
	ShaderVoxel     = "voxel"
	ShaderTerrain   = "terrain"
)

// Group names shared by the engines' programs.
const (
	groupCamera    = "camera"
	groupLights    = "lights"
	groupMaterials = "materials"
	groupMaterial  = "material"
	groupModel     = "model"
	groupPalette   = "palette"
)

// Engine is one way of drawing a frame.
type Engine interface {
	// Kind returns the engine's kind.
	Kind() Kind

	// ClearColor returns the colour the frame's pass should clear to.
	ClearColor() [4]float64

	// Shaders returns the shaders the engine's pipelines were last built from.
	Shaders() []shader.Shader

	// Rebuild recompiles the pipeline using the shader's key. On failure the previous pipeline
	// stays in use.
	//
	// Parameters:
	//   - device: the device to build on
	//   - s: the new shader, keyed like the one it replaces
	//
	// Returns:
	//   - error: ErrUnknownShader, ErrGroupCountMismatch or a build failure
	Rebuild(device gpu.Device, s shader.Shader) error

	// Update uploads per-frame state: the camera uniform and anything derived from it.
	//
	// Parameters:
	//   - device: the device to write through
	//   - cam: the active camera
	//   - stats: frame counters, may be nil
	//
	// Returns:
	//   - error: a write failed
	Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error

	// Render records the engine's draws.
	//
	// Parameters:
	//   - pass: the frame's render pass
	//   - stats: frame counters, may be nil
	//
	// Returns:
	//   - error: a model refers to state the engine does not hold
	Render(pass gpu.RenderPass, stats *renderer.Stats) error

	// Release frees the engine's pipelines and shared groups. Models handed to the engine are
	// released by their owner.
	Release(device gpu.Device)
}

// newCameraGroup uploads the camera's current uniform.
func newCameraGroup(device gpu.Device, cam camera.Camera) (bind_group_provider.BindGroupProvider, error) {
	p, err := bind_group_provider.NewUniformBuffer(device, cam.UniformData(), camera.UniformSize,
		bind_group_provider.WithLabel(groupCamera))
	if err != nil {
		return nil, fmt.Errorf("failed to create camera group: %w", err)
	}
	return p, nil
}

// writeCamera rewrites the camera uniform in place.
func writeCamera(device gpu.Device, p bind_group_provider.BindGroupProvider, cam camera.Camera, stats *renderer.Stats) error {
	data := cam.UniformData()
	if err := p.Write(device, 0, data); err != nil {
		return err
	}
	stats.AddBytes(uint64(len(data)))
	return nil
}

// shaderFor returns the shader keyed key, or ErrMissingShader.
func shaderFor(shaders map[string]shader.Shader, key string) (shader.Shader, error) {
	s, ok := shaders[key]
	if !ok || s == nil {
		return nil, fmt.Errorf("%w: %q", ErrMissingShader, key)
	}
	return s, nil
}

// ParseKind converts a configured engine name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindMesh, KindVoxel, KindIndirect:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}
