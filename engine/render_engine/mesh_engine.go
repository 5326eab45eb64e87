package render_engine

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/light"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

// ModelUniformSize is the size of a standard model's uniform: one mat4 transform.
const ModelUniformSize = 64

var identity = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// MeshContent is what a MeshEngine draws.
type MeshContent struct {
	Instanced []*model.InstancedModel
	Standard  []*model.StandardModel
	Lights    []light.Light
}

// MeshEngine draws OBJ models lit by point lights. Instanced models bind
//
//	0 camera, 1 lights, 2 materials (the model's packed array)
//
// and standard models bind
//
//	0 camera, 1 lights, 2 material (per mesh), 3 model transform.
type MeshEngine struct {
	opts    options
	format  wgpu.TextureFormat
	shaders map[string]shader.Shader

	camera bind_group_provider.BindGroupProvider
	lights bind_group_provider.BindGroupProvider

	// lightCapacity is fixed at construction: the storage layout carries the binding size.
	lightCapacity int

	content MeshContent

	instanced *program
	standard  *program
}

var _ Engine = &MeshEngine{}

// NewMeshEngine uploads the camera and lights and builds a pipeline for each kind of model
// present in content.
//
// Parameters:
//   - device: the device to build on
//   - format: the colour target format
//   - cam: the camera whose uniform is uploaded first
//   - shaders: ShaderInstanced and ShaderStandard sources; only those content needs are required
//   - content: models and lights
//   - opts: variadic list of EngineOption functions
//
// Returns:
//   - *MeshEngine: the engine
//   - error: a missing shader, a model uniform of the wrong size, or a build failure
func NewMeshEngine(device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, shaders map[string]shader.Shader, content MeshContent, opts ...EngineOption) (*MeshEngine, error) {
	e := &MeshEngine{
		opts:    newOptions(SkyColor, opts),
		format:  format,
		shaders: make(map[string]shader.Shader),
	}
	for k, s := range shaders {
		e.shaders[k] = s
	}

	var err error
	if e.camera, err = newCameraGroup(device, cam); err != nil {
		return nil, err
	}
	e.lightCapacity = min(max(len(content.Lights), 1), light.MaxGPULights)
	e.content.Lights = content.Lights
	data := e.lightData()
	e.lights, err = bind_group_provider.NewStorageBuffer(device, data, uint64(len(data)),
		bind_group_provider.WithLabel(groupLights))
	if err != nil {
		e.Release(device)
		return nil, fmt.Errorf("failed to create light group: %w", err)
	}

	for _, m := range content.Instanced {
		if err := e.AddInstanced(device, m); err != nil {
			e.Release(device)
			return nil, err
		}
	}
	for _, m := range content.Standard {
		if err := e.AddStandard(device, m); err != nil {
			e.Release(device)
			return nil, err
		}
	}
	return e, nil
}

// AddInstanced adds an instanced model, building the instanced pipeline on first use.
func (e *MeshEngine) AddInstanced(device gpu.Device, m *model.InstancedModel) error {
	if e.instanced == nil {
		s, err := shaderFor(e.shaders, ShaderInstanced)
		if err != nil {
			return err
		}
		p := newProgram("mesh instanced", pipeline.VertexTypeInstanced, e.opts.cullMode, e.opts.wireframe,
			model.InstancedModelVertexLayout(), model.PositionInstanceLayout())
		p.addGroup(groupCamera, e.camera.BindGroupLayout())
		p.addGroup(groupLights, e.lights.BindGroupLayout())
		p.addGroup(groupMaterials, m.Materials.BindGroupLayout())
		if err := p.build(device, e.format, s); err != nil {
			return err
		}
		e.instanced = p
	}
	e.content.Instanced = append(e.content.Instanced, m)
	return nil
}

// AddStandard adds a standard model, building the standard pipeline on first use. A model
// without a uniform is given an identity transform.
func (e *MeshEngine) AddStandard(device gpu.Device, m *model.StandardModel) error {
	if m.Uniform == nil {
		u, err := bind_group_provider.NewUniformFrom(device, identity[:],
			bind_group_provider.WithLabel(m.Name+" "+groupModel))
		if err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
		m.SetUniformBuffer(device, u)
	}
	if size := m.Uniform.ByteSize(); size != ModelUniformSize {
		return fmt.Errorf("model %q: %w: uniform is %d bytes, want %d",
			m.Name, bind_group_provider.ErrBindingSizeMismatch, size, ModelUniformSize)
	}

	if e.standard == nil {
		s, err := shaderFor(e.shaders, ShaderStandard)
		if err != nil {
			return err
		}
		p := newProgram("mesh standard", pipeline.VertexTypeStandard, e.opts.cullMode, e.opts.wireframe,
			model.StandardModelVertexLayout())
		p.addGroup(groupCamera, e.camera.BindGroupLayout())
		p.addGroup(groupLights, e.lights.BindGroupLayout())
		p.addGroup(groupMaterial, m.Materials.BindGroupLayout())
		p.addGroup(groupModel, m.Uniform.BindGroupLayout())
		if err := p.build(device, e.format, s); err != nil {
			return err
		}
		e.standard = p
	}
	e.content.Standard = append(e.content.Standard, m)
	return nil
}

// SetLights replaces the light list, uploaded on the next Update. Enabled lights past the
// capacity the engine was built with are not drawn.
func (e *MeshEngine) SetLights(lights []light.Light) {
	e.content.Lights = lights
}

// LightCapacity returns how many lights the light group holds.
func (e *MeshEngine) LightCapacity() int {
	return e.lightCapacity
}

// lightData marshals the enabled lights into exactly lightCapacity records, zero-filled.
func (e *MeshEngine) lightData() []byte {
	size := (&light.GPULight{}).Size()
	data, n := light.MarshalLights(e.content.Lights)
	if n > e.lightCapacity {
		common.Logger().Warn("lights over capacity dropped", "enabled", n, "capacity", e.lightCapacity)
	}
	out := make([]byte, e.lightCapacity*size)
	copy(out, data[:min(len(data), len(out))])
	return out
}

func (e *MeshEngine) Kind() Kind {
	return KindMesh
}

func (e *MeshEngine) ClearColor() [4]float64 {
	return e.opts.clearColor
}

func (e *MeshEngine) Shaders() []shader.Shader {
	var out []shader.Shader
	for _, p := range []*program{e.instanced, e.standard} {
		if p != nil {
			out = append(out, p.shader)
		}
	}
	return out
}

func (e *MeshEngine) Rebuild(device gpu.Device, s shader.Shader) error {
	var p *program
	switch s.Key() {
	case ShaderInstanced:
		p = e.instanced
	case ShaderStandard:
		p = e.standard
	default:
		return fmt.Errorf("%w: %q", ErrUnknownShader, s.Key())
	}
	if p != nil {
		if err := p.build(device, e.format, s); err != nil {
			return err
		}
	}
	e.shaders[s.Key()] = s
	return nil
}

func (e *MeshEngine) Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error {
	if err := writeCamera(device, e.camera, cam, stats); err != nil {
		return err
	}

	data := e.lightData()
	if err := e.lights.Write(device, 0, data); err != nil {
		return err
	}
	stats.AddBytes(uint64(len(data)))
	return nil
}

func (e *MeshEngine) Render(pass gpu.RenderPass, stats *renderer.Stats) error {
	if e.instanced != nil && len(e.content.Instanced) > 0 {
		e.bindShared(pass, e.instanced)
		materials := e.instanced.group(groupMaterials)
		for _, m := range e.content.Instanced {
			renderer.DrawModelInstanced(pass, m, materials, stats)
		}
	}

	if e.standard != nil && len(e.content.Standard) > 0 {
		e.bindShared(pass, e.standard)
		material := e.standard.group(groupMaterial)
		transform := e.standard.group(groupModel)
		for _, m := range e.content.Standard {
			pass.SetBindGroup(transform, m.Uniform.BindGroup(), nil)
			if err := renderer.DrawModel(pass, m, material, stats); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *MeshEngine) bindShared(pass gpu.RenderPass, p *program) {
	p.use(pass)
	pass.SetBindGroup(p.group(groupCamera), e.camera.BindGroup(), nil)
	pass.SetBindGroup(p.group(groupLights), e.lights.BindGroup(), nil)
}

func (e *MeshEngine) Release(device gpu.Device) {
	for _, p := range []*program{e.instanced, e.standard} {
		if p != nil {
			p.releasePipeline(device)
		}
	}
	if e.camera != nil {
		e.camera.Release(device)
	}
	if e.lights != nil {
		e.lights.Release(device)
	}
}
