package render_engine

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

// VoxelEngine draws a voxel set as six instanced face quads, skipping the faces that point away
// from the camera. Groups: 0 camera, 1 voxel palette.
type VoxelEngine struct {
	opts   options
	format wgpu.TextureFormat

	camera  bind_group_provider.BindGroupProvider
	palette bind_group_provider.BindGroupProvider

	faces   [len(model.Faces)]*model.VoxelFaceModel
	forward mgl32.Vec3

	program *program
}

var _ Engine = &VoxelEngine{}

// NewVoxelEngine uploads the camera, the palette and one face model per direction, all fed the
// same voxel instances.
//
// Parameters:
//   - device: the device to build on
//   - format: the colour target format
//   - cam: the camera whose uniform is uploaded first
//   - shaders: must hold ShaderVoxel
//   - voxels: one instance per voxel, may be empty
//   - opts: variadic list of EngineOption functions
//
// Returns:
//   - *VoxelEngine: the engine
//   - error: a missing shader or a build failure
func NewVoxelEngine(device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, shaders map[string]shader.Shader, voxels []model.PositionInstanceData, opts ...EngineOption) (*VoxelEngine, error) {
	s, err := shaderFor(shaders, ShaderVoxel)
	if err != nil {
		return nil, err
	}
	e := &VoxelEngine{
		opts:    newOptions(BlackColor, opts),
		format:  format,
		forward: cam.Forward(),
	}

	if e.camera, err = newCameraGroup(device, cam); err != nil {
		return nil, err
	}
	if e.palette, err = model.NewPaletteBuffer(device); err != nil {
		e.Release(device)
		return nil, fmt.Errorf("failed to create palette group: %w", err)
	}
	for i, f := range model.Faces {
		if e.faces[i], err = model.NewVoxelFaceModel(device, f, voxels); err != nil {
			e.Release(device)
			return nil, err
		}
	}

	e.program = newProgram("voxel", pipeline.VertexTypeInstanced, e.opts.cullMode, e.opts.wireframe,
		model.VoxelVertexLayout(), model.PositionInstanceLayout())
	e.program.addGroup(groupCamera, e.camera.BindGroupLayout())
	e.program.addGroup(groupPalette, e.palette.BindGroupLayout())
	if err := e.program.build(device, format, s); err != nil {
		e.Release(device)
		return nil, err
	}
	return e, nil
}

// SetVoxels replaces the instances of every face.
//
// Parameters:
//   - device: the device to allocate on
//   - voxels: one instance per voxel
//
// Returns:
//   - error: an allocation failed; faces already updated keep the new instances
func (e *VoxelEngine) SetVoxels(device gpu.Device, voxels []model.PositionInstanceData) error {
	for _, f := range e.faces {
		if err := f.UpdateInstances(device, voxels); err != nil {
			return err
		}
	}
	return nil
}

// VoxelCount returns how many voxels each face draws.
func (e *VoxelEngine) VoxelCount() int {
	return int(e.faces[0].InstanceCount)
}

func (e *VoxelEngine) Kind() Kind {
	return KindVoxel
}

func (e *VoxelEngine) ClearColor() [4]float64 {
	return e.opts.clearColor
}

func (e *VoxelEngine) Shaders() []shader.Shader {
	return []shader.Shader{e.program.shader}
}

func (e *VoxelEngine) Rebuild(device gpu.Device, s shader.Shader) error {
	if s.Key() != ShaderVoxel {
		return fmt.Errorf("%w: %q", ErrUnknownShader, s.Key())
	}
	return e.program.build(device, e.format, s)
}

func (e *VoxelEngine) Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error {
	e.forward = cam.Forward()
	return writeCamera(device, e.camera, cam, stats)
}

func (e *VoxelEngine) Render(pass gpu.RenderPass, stats *renderer.Stats) error {
	e.program.use(pass)
	pass.SetBindGroup(e.program.group(groupCamera), e.camera.BindGroup(), nil)
	pass.SetBindGroup(e.program.group(groupPalette), e.palette.BindGroup(), nil)
	for _, f := range e.faces {
		if f.Face.VisibleFrom(e.forward) {
			renderer.DrawVoxelFace(pass, f, stats)
		}
	}
	return nil
}

func (e *VoxelEngine) Release(device gpu.Device) {
	if e.program != nil {
		e.program.releasePipeline(device)
	}
	for i, f := range e.faces {
		if f != nil {
			f.Release(device)
			e.faces[i] = nil
		}
	}
	if e.palette != nil {
		e.palette.Release(device)
	}
	if e.camera != nil {
		e.camera.Release(device)
	}
}
