package render_engine

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

// IndirectEngine draws indirect models, typically terrain tiles, with the arguments stored in
// each model's indirect buffer. Groups: 0 camera, 1 voxel palette.
type IndirectEngine struct {
	opts   options
	format wgpu.TextureFormat

	camera  bind_group_provider.BindGroupProvider
	palette bind_group_provider.BindGroupProvider

	models  []*model.IndirectModel
	program *program
}

var _ Engine = &IndirectEngine{}

// NewIndirectEngine uploads the camera and palette and builds the terrain pipeline.
//
// Parameters:
//   - device: the device to build on
//   - format: the colour target format
//   - cam: the camera whose uniform is uploaded first
//   - shaders: must hold ShaderTerrain
//   - models: the models to draw; more can be added with AddModel
//   - opts: variadic list of EngineOption functions
//
// Returns:
//   - *IndirectEngine: the engine
//   - error: a missing shader or a build failure
func NewIndirectEngine(device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, shaders map[string]shader.Shader, models []*model.IndirectModel, opts ...EngineOption) (*IndirectEngine, error) {
	s, err := shaderFor(shaders, ShaderTerrain)
	if err != nil {
		return nil, err
	}
	e := &IndirectEngine{
		opts:   newOptions(SkyColor, opts),
		format: format,
		models: append([]*model.IndirectModel(nil), models...),
	}

	if e.camera, err = newCameraGroup(device, cam); err != nil {
		return nil, err
	}
	if e.palette, err = model.NewPaletteBuffer(device); err != nil {
		e.Release(device)
		return nil, fmt.Errorf("failed to create palette group: %w", err)
	}

	e.program = newProgram("terrain", pipeline.VertexTypeInstanced, e.opts.cullMode, e.opts.wireframe,
		model.InstancedModelVertexLayout(), model.PositionInstanceLayout())
	e.program.addGroup(groupCamera, e.camera.BindGroupLayout())
	e.program.addGroup(groupPalette, e.palette.BindGroupLayout())
	if err := e.program.build(device, format, s); err != nil {
		e.Release(device)
		return nil, err
	}
	return e, nil
}

// AddModel appends a model to the draw list.
func (e *IndirectEngine) AddModel(m *model.IndirectModel) {
	e.models = append(e.models, m)
}

// Models returns the draw list.
func (e *IndirectEngine) Models() []*model.IndirectModel {
	return e.models
}

func (e *IndirectEngine) Kind() Kind {
	return KindIndirect
}

func (e *IndirectEngine) ClearColor() [4]float64 {
	return e.opts.clearColor
}

func (e *IndirectEngine) Shaders() []shader.Shader {
	return []shader.Shader{e.program.shader}
}

func (e *IndirectEngine) Rebuild(device gpu.Device, s shader.Shader) error {
	if s.Key() != ShaderTerrain {
		return fmt.Errorf("%w: %q", ErrUnknownShader, s.Key())
	}
	return e.program.build(device, e.format, s)
}

func (e *IndirectEngine) Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error {
	return writeCamera(device, e.camera, cam, stats)
}

func (e *IndirectEngine) Render(pass gpu.RenderPass, stats *renderer.Stats) error {
	e.program.use(pass)
	pass.SetBindGroup(e.program.group(groupCamera), e.camera.BindGroup(), nil)
	pass.SetBindGroup(e.program.group(groupPalette), e.palette.BindGroup(), nil)
	for _, m := range e.models {
		renderer.DrawModelIndirect(pass, m, stats)
	}
	return nil
}

func (e *IndirectEngine) Release(device gpu.Device) {
	if e.program != nil {
		e.program.releasePipeline(device)
	}
	if e.palette != nil {
		e.palette.Release(device)
	}
	if e.camera != nil {
		e.camera.Release(device)
	}
}
