package pipeline

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShader = "@vertex fn vs_main() {} @fragment fn fs_main() {}"

func vertexLayout(step wgpu.VertexStepMode) wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: 12,
		StepMode:    step,
		Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, ShaderLocation: 0}},
	}
}

func TestBuildFixedState(t *testing.T) {
	d := gputest.NewDevice()
	layout, err := NewLayoutBuilder("layout").Build(d)
	require.NoError(t, err)

	p, err := NewBuilder("mesh").
		SetVertexShader("mesh.wgsl", testShader, VertexTypeStandard).
		SetFragmentShader("mesh.wgsl", testShader, wgpu.TextureFormatBGRA8UnormSrgb).
		AddVertexBufferLayout(vertexLayout(wgpu.VertexStepModeVertex)).
		SetPipelineLayout(layout).
		Build(d)
	require.NoError(t, err)

	desc, ok := d.RenderPipelines[p.RenderPipeline()]
	require.True(t, ok)
	assert.Equal(t, "vs_main", desc.Vertex.EntryPoint)
	assert.Equal(t, "fs_main", desc.Fragment.EntryPoint)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, desc.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, desc.Primitive.FrontFace)
	assert.Equal(t, wgpu.CullModeBack, desc.Primitive.CullMode)
	assert.Equal(t, gpu.DepthFormat, desc.DepthStencil.Format)
	assert.Equal(t, wgpu.CompareFunctionLess, desc.DepthStencil.DepthCompare)
	assert.True(t, desc.DepthStencil.DepthWriteEnabled)
	assert.Equal(t, uint32(1), desc.Multisample.Count)
	assert.Equal(t, wgpu.TextureFormatBGRA8UnormSrgb, desc.Fragment.Targets[0].Format)
	assert.Same(t, layout, desc.Layout)
	assert.Len(t, desc.Vertex.Buffers, 1)

	// identical sources compile once
	assert.Len(t, d.ShaderSources, 1)
}

func TestWireframeUsesLineList(t *testing.T) {
	d := gputest.NewDevice()

	p, err := NewBuilder("wire").
		SetVertexShader("a", testShader, VertexTypeStandard).
		SetFragmentShader("a", testShader, wgpu.TextureFormatBGRA8Unorm).
		SetWireframe(true).
		SetCullMode(wgpu.CullModeNone).
		Build(d)
	require.NoError(t, err)

	assert.Equal(t, wgpu.PrimitiveTopologyLineList, p.Topology())
	assert.Equal(t, wgpu.CullModeNone, d.RenderPipelines[p.RenderPipeline()].Primitive.CullMode)
}

func TestMissingShaders(t *testing.T) {
	d := gputest.NewDevice()

	_, err := NewBuilder("x").SetFragmentShader("f", testShader, wgpu.TextureFormatBGRA8Unorm).Build(d)
	assert.ErrorIs(t, err, ErrMissingVertexShader)

	_, err = NewBuilder("x").SetVertexShader("v", testShader, VertexTypeStandard).Build(d)
	assert.ErrorIs(t, err, ErrMissingFragmentShader)

	assert.Empty(t, d.RenderPipelines)
}

func TestBuilderIsConsumed(t *testing.T) {
	d := gputest.NewDevice()
	b := NewBuilder("once").
		SetVertexShader("v", testShader, VertexTypeStandard).
		SetFragmentShader("f", testShader, wgpu.TextureFormatBGRA8Unorm)

	_, err := b.Build(d)
	require.NoError(t, err)
	_, err = b.Build(d)
	assert.ErrorIs(t, err, ErrBuilderConsumed)
	assert.Len(t, d.RenderPipelines, 1)
}

func TestInstancedNeedsInstanceLayout(t *testing.T) {
	d := gputest.NewDevice()

	_, err := NewBuilder("inst").
		SetVertexShader("v", testShader, VertexTypeInstanced).
		SetFragmentShader("f", testShader, wgpu.TextureFormatBGRA8Unorm).
		AddVertexBufferLayout(vertexLayout(wgpu.VertexStepModeVertex)).
		Build(d)
	assert.ErrorIs(t, err, ErrMissingInstanceLayout)

	p, err := NewBuilder("inst").
		SetVertexShader("v", testShader, VertexTypeInstanced).
		SetFragmentShader("f", testShader, wgpu.TextureFormatBGRA8Unorm).
		AddVertexBufferLayout(vertexLayout(wgpu.VertexStepModeVertex)).
		AddVertexBufferLayout(vertexLayout(wgpu.VertexStepModeInstance)).
		Build(d)
	require.NoError(t, err)
	assert.Equal(t, 2, p.VertexBufferLayouts())
}

func TestDeviceFailureReleasesModules(t *testing.T) {
	d := gputest.NewDevice()
	b := NewBuilder("fail").
		SetVertexShader("v", testShader, VertexTypeStandard).
		SetFragmentShader("f", testShader+" ", wgpu.TextureFormatBGRA8Unorm)

	// both modules compile, then the pipeline itself fails
	p, err := b.Build(&failingPipelineDevice{Device: d})
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Len(t, d.Released, 2)
}

type failingPipelineDevice struct {
	*gputest.Device
}

func (f *failingPipelineDevice) CreateRenderPipeline(*wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return nil, errors.New("validation failed")
}

func TestReleaseLeavesLayout(t *testing.T) {
	d := gputest.NewDevice()
	layout, err := NewLayoutBuilder("l").Build(d)
	require.NoError(t, err)

	p, err := NewBuilder("r").
		SetVertexShader("v", testShader, VertexTypeStandard).
		SetFragmentShader("f", testShader, wgpu.TextureFormatBGRA8Unorm).
		SetPipelineLayout(layout).
		Build(d)
	require.NoError(t, err)

	rp := p.RenderPipeline()
	p.Release(d)
	assert.True(t, d.IsReleased(rp))
	assert.False(t, d.IsReleased(layout))
	assert.Nil(t, p.RenderPipeline())
}

func TestLayoutBuilderGroupOrder(t *testing.T) {
	d := gputest.NewDevice()
	a, b := &wgpu.BindGroupLayout{}, &wgpu.BindGroupLayout{}

	lb := NewLayoutBuilder("ordered").AddBindGroupLayout(a).AddBindGroupLayout(b)
	assert.Equal(t, 2, lb.Len())
	layout, err := lb.Build(d)
	require.NoError(t, err)
	groups := d.PipelineLayouts[layout].BindGroupLayouts
	require.Len(t, groups, 2)
	assert.Same(t, a, groups[0])
	assert.Same(t, b, groups[1])
}

func TestRenderPassDescriptorClears(t *testing.T) {
	view, depth := &wgpu.TextureView{}, &wgpu.TextureView{}
	desc := RenderPassDescriptor(view, depth, [4]float64{0.1, 0.2, 0.3, 1})

	require.Len(t, desc.ColorAttachments, 1)
	assert.Equal(t, wgpu.LoadOpClear, desc.ColorAttachments[0].LoadOp)
	assert.Equal(t, wgpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, desc.ColorAttachments[0].ClearValue)
	assert.Same(t, depth, desc.DepthStencilAttachment.View)
	assert.InDelta(t, 1.0, desc.DepthStencilAttachment.DepthClearValue, 1e-9)
}
