package render_engine

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu/gputest"
	"github.com/lelepado01/RenderingEngine/engine/light"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const format = wgpu.TextureFormatBGRA8Unorm

// wgsl returns a minimal shader declaring one binding in each of groups bind groups.
func wgsl(groups int) string {
	var b strings.Builder
	for g := range groups {
		fmt.Fprintf(&b, "@group(%d) @binding(0) var<storage, read> g%d: array<vec4<f32>>;\n", g, g)
	}
	b.WriteString("@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(); }\n")
	b.WriteString("@fragment fn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(); }\n")
	return b.String()
}

func mustShader(t *testing.T, key string, groups int) shader.Shader {
	t.Helper()
	s, err := shader.NewShader(key, wgsl(groups))
	require.NoError(t, err)
	return s
}

func quad(material int) model.Geometry {
	return model.Geometry{
		Positions:     [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		Indices:       []uint32{0, 1, 2, 0, 2, 3},
		MaterialIndex: material,
	}
}

func instances(n int) []model.PositionInstanceData {
	out := make([]model.PositionInstanceData, n)
	for i := range out {
		out[i] = model.NewPositionInstance([3]float32{float32(i), 0, 0}, 1, model.VoxelRed)
	}
	return out
}

func TestMeshEngineInstanced(t *testing.T) {
	d := gputest.NewDevice()
	cam := camera.NewFPSCamera(1)

	a, err := model.NewInstancedModel(d, model.Asset{Name: "a", Meshes: []model.Geometry{quad(0)}}, instances(3))
	require.NoError(t, err)
	b, err := model.NewInstancedModel(d, model.Asset{Name: "b", Meshes: []model.Geometry{quad(0)}}, instances(2))
	require.NoError(t, err)

	e, err := NewMeshEngine(d, format, cam, map[string]shader.Shader{ShaderInstanced: mustShader(t, ShaderInstanced, 3)},
		MeshContent{Instanced: []*model.InstancedModel{a, b}, Lights: []light.Light{light.NewLight(), light.NewLight()}})
	require.NoError(t, err)
	assert.Equal(t, SkyColor, e.ClearColor())
	assert.Equal(t, KindMesh, e.Kind())
	require.Len(t, e.Shaders(), 1)
	assert.Len(t, d.PipelineLayouts[e.instanced.pipelineLayout].BindGroupLayouts, 3)

	pass := &gputest.RenderPass{}
	stats := &renderer.Stats{}
	require.NoError(t, e.Render(pass, stats))

	ops := pass.Ops()
	require.GreaterOrEqual(t, len(ops), 3)
	assert.Equal(t, []string{"SetPipeline", "SetBindGroup", "SetBindGroup"}, ops[:3])
	assert.Same(t, e.instanced.pipeline.RenderPipeline(), pass.Calls[0].Pipeline)
	assert.Equal(t, uint32(0), pass.Calls[1].Slot)
	assert.Same(t, e.camera.BindGroup(), pass.Calls[1].Group)
	assert.Equal(t, uint32(1), pass.Calls[2].Slot)
	assert.Same(t, e.lights.BindGroup(), pass.Calls[2].Group)

	var materialGroups []uint32
	for _, c := range pass.Calls[3:] {
		if c.Op == "SetBindGroup" {
			materialGroups = append(materialGroups, c.Slot)
		}
	}
	assert.Equal(t, []uint32{2, 2}, materialGroups)
	assert.Equal(t, 2, stats.DrawCalls)
	assert.Equal(t, 5, stats.InstancesDrawn)
}

func TestMeshEngineStandardGetsIdentityTransform(t *testing.T) {
	d := gputest.NewDevice()
	m, err := model.NewStandardModel(d, model.Asset{Name: "fish", Meshes: []model.Geometry{quad(0)}}, 0)
	require.NoError(t, err)
	require.Nil(t, m.Uniform)

	e, err := NewMeshEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderStandard: mustShader(t, ShaderStandard, 4)},
		MeshContent{Standard: []*model.StandardModel{m}})
	require.NoError(t, err)
	require.NotNil(t, m.Uniform)
	assert.Equal(t, uint64(ModelUniformSize), m.Uniform.ByteSize())
	assert.Equal(t, 1, e.LightCapacity())

	pass := &gputest.RenderPass{}
	require.NoError(t, e.Render(pass, nil))
	assert.Equal(t, []string{
		"SetPipeline", "SetBindGroup", "SetBindGroup",
		"SetBindGroup",
		"SetVertexBuffer", "SetIndexBuffer", "SetBindGroup", "DrawIndexed",
	}, pass.Ops())
	assert.Equal(t, uint32(3), pass.Calls[3].Slot)
	assert.Same(t, m.Uniform.BindGroup(), pass.Calls[3].Group)
	assert.Equal(t, uint32(2), pass.Calls[6].Slot)
}

func TestMeshEngineRejectsWrongUniformSize(t *testing.T) {
	d := gputest.NewDevice()
	e, err := NewMeshEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderStandard: mustShader(t, ShaderStandard, 4)}, MeshContent{})
	require.NoError(t, err)

	m, err := model.NewStandardModel(d, model.Asset{Name: "tinted", Meshes: []model.Geometry{quad(0)}}, 0)
	require.NoError(t, err)
	wide, err := newCameraGroup(d, camera.NewFPSCamera(1))
	require.NoError(t, err)
	m.SetUniformBuffer(d, wide)

	assert.ErrorIs(t, e.AddStandard(d, m), bind_group_provider.ErrBindingSizeMismatch)
	assert.Nil(t, e.standard)
}

func TestMeshEngineMissingShader(t *testing.T) {
	d := gputest.NewDevice()
	a, err := model.NewInstancedModel(d, model.Asset{Name: "a", Meshes: []model.Geometry{quad(0)}}, instances(1))
	require.NoError(t, err)

	_, err = NewMeshEngine(d, format, camera.NewFPSCamera(1), nil, MeshContent{Instanced: []*model.InstancedModel{a}})
	assert.ErrorIs(t, err, ErrMissingShader)

	e, err := NewMeshEngine(d, format, camera.NewFPSCamera(1), nil, MeshContent{})
	require.NoError(t, err)
	assert.Empty(t, e.Shaders())
	pass := &gputest.RenderPass{}
	require.NoError(t, e.Render(pass, nil))
	assert.Empty(t, pass.Calls)
}

func TestGroupCountMismatch(t *testing.T) {
	d := gputest.NewDevice()
	a, err := model.NewInstancedModel(d, model.Asset{Name: "a", Meshes: []model.Geometry{quad(0)}}, instances(1))
	require.NoError(t, err)

	_, err = NewMeshEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderInstanced: mustShader(t, ShaderInstanced, 2)},
		MeshContent{Instanced: []*model.InstancedModel{a}})
	assert.ErrorIs(t, err, ErrGroupCountMismatch)

	_, err = NewVoxelEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderVoxel: mustShader(t, ShaderVoxel, 3)}, nil)
	assert.ErrorIs(t, err, ErrGroupCountMismatch)
}

func TestMeshEngineUpdateWritesCameraAndLights(t *testing.T) {
	d := gputest.NewDevice()
	lights := []light.Light{light.NewLight(), light.NewLight(light.WithPosition(10, 0, 0))}
	e, err := NewMeshEngine(d, format, camera.NewFPSCamera(1), nil, MeshContent{Lights: lights})
	require.NoError(t, err)
	assert.Equal(t, 2, e.LightCapacity())

	cam := camera.NewFPSCamera(1, camera.WithPosition([3]float32{1, 2, 3}))
	stats := &renderer.Stats{}
	require.NoError(t, e.Update(d, cam, stats))
	assert.Equal(t, uint64(camera.UniformSize+2*64), stats.BytesToGPU)
	assert.Equal(t, cam.UniformData(), d.Buffers[e.camera.Binding(0).Buffer].Data)

	e.SetLights(append(lights, light.NewLight()))
	stats.Reset()
	require.NoError(t, e.Update(d, cam, stats))
	assert.Equal(t, uint64(camera.UniformSize+2*64), stats.BytesToGPU)

	e.SetLights(nil)
	require.NoError(t, e.Update(d, cam, nil))
	assert.Equal(t, make([]byte, 128), d.Buffers[e.lights.Binding(0).Buffer].Data)
}

func TestRebuild(t *testing.T) {
	d := gputest.NewDevice()
	e, err := NewVoxelEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderVoxel: mustShader(t, ShaderVoxel, 2)}, instances(1))
	require.NoError(t, err)
	old := e.program.pipeline.RenderPipeline()

	next := mustShader(t, ShaderVoxel, 2)
	require.NoError(t, e.Rebuild(d, next))
	assert.NotSame(t, old, e.program.pipeline.RenderPipeline())
	assert.True(t, d.IsReleased(old))
	assert.Same(t, next, e.Shaders()[0])

	current := e.program.pipeline.RenderPipeline()
	d.Err = assert.AnError
	assert.Error(t, e.Rebuild(d, mustShader(t, ShaderVoxel, 2)))
	assert.Same(t, current, e.program.pipeline.RenderPipeline())
	assert.Same(t, next, e.Shaders()[0])

	assert.ErrorIs(t, e.Rebuild(d, mustShader(t, ShaderTerrain, 2)), ErrUnknownShader)
	assert.ErrorIs(t, e.Rebuild(d, mustShader(t, ShaderVoxel, 1)), ErrGroupCountMismatch)
}

func TestVoxelEngineCullsFacesAwayFromCamera(t *testing.T) {
	d := gputest.NewDevice()
	cam := camera.NewFPSCamera(1)
	e, err := NewVoxelEngine(d, format, cam, map[string]shader.Shader{ShaderVoxel: mustShader(t, ShaderVoxel, 2)}, instances(4))
	require.NoError(t, err)
	assert.Equal(t, BlackColor, e.ClearColor())
	assert.Equal(t, 4, e.VoxelCount())
	require.NoError(t, e.Update(d, cam, nil))

	pass := &gputest.RenderPass{}
	stats := &renderer.Stats{}
	require.NoError(t, e.Render(pass, stats))

	// looking down -z hides only the front faces
	assert.Equal(t, 5, pass.Count("DrawIndexed"))
	assert.Equal(t, 20, stats.InstancesDrawn)

	var visible []*wgpu.Buffer
	for _, c := range pass.Calls {
		if c.Op == "SetIndexBuffer" {
			visible = append(visible, c.Buffer)
		}
	}
	for _, f := range e.faces {
		if f.Face == model.FaceFront {
			assert.NotContains(t, visible, f.Mesh.IndexBuffer)
		} else {
			assert.Contains(t, visible, f.Mesh.IndexBuffer)
		}
	}
}

func TestVoxelEngineSetVoxels(t *testing.T) {
	d := gputest.NewDevice()
	e, err := NewVoxelEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderVoxel: mustShader(t, ShaderVoxel, 2)}, nil)
	require.NoError(t, err)

	pass := &gputest.RenderPass{}
	require.NoError(t, e.Render(pass, nil))
	assert.Zero(t, pass.Count("DrawIndexed"))

	require.NoError(t, e.SetVoxels(d, instances(7)))
	assert.Equal(t, 7, e.VoxelCount())
	for _, f := range e.faces {
		assert.Equal(t, uint32(7), f.InstanceCount)
	}
}

func TestIndirectEngine(t *testing.T) {
	d := gputest.NewDevice()
	tiles, err := model.NewIndirectModel(d, model.Asset{Name: "tile", Meshes: []model.Geometry{quad(0)}}, instances(9))
	require.NoError(t, err)

	_, err = NewIndirectEngine(d, format, camera.NewFPSCamera(1), nil, nil)
	assert.ErrorIs(t, err, ErrMissingShader)

	e, err := NewIndirectEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderTerrain: mustShader(t, ShaderTerrain, 2)}, nil,
		WithClearColor(BlackColor), WithWireframe(true), WithCullMode(wgpu.CullModeNone))
	require.NoError(t, err)
	assert.Equal(t, BlackColor, e.ClearColor())
	assert.Equal(t, wgpu.CullModeNone, e.program.pipeline.CullMode())
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, e.program.pipeline.Topology())

	e.AddModel(tiles)
	require.Len(t, e.Models(), 1)

	pass := &gputest.RenderPass{}
	stats := &renderer.Stats{}
	require.NoError(t, e.Render(pass, stats))
	assert.Equal(t, []string{
		"SetPipeline", "SetBindGroup", "SetBindGroup",
		"SetVertexBuffer", "SetIndexBuffer", "SetVertexBuffer", "DrawIndexedIndirect",
	}, pass.Ops())
	assert.Same(t, e.palette.BindGroup(), pass.Calls[2].Group)
	assert.Equal(t, 9, stats.InstancesDrawn)
}

func TestReleaseFreesSharedGroups(t *testing.T) {
	d := gputest.NewDevice()
	e, err := NewIndirectEngine(d, format, camera.NewFPSCamera(1), map[string]shader.Shader{ShaderTerrain: mustShader(t, ShaderTerrain, 2)}, nil)
	require.NoError(t, err)
	cameraBuf := e.camera.Binding(0).Buffer
	pipe := e.program.pipeline.RenderPipeline()
	layout := e.program.pipelineLayout

	e.Release(d)
	assert.True(t, d.IsReleased(cameraBuf))
	assert.True(t, d.IsReleased(pipe))
	assert.True(t, d.IsReleased(layout))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("voxel")
	require.NoError(t, err)
	assert.Equal(t, KindVoxel, k)

	_, err = ParseKind("raytraced")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
