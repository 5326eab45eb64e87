package pipeline

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// VertexType tags the vertex input contract a vertex shader expects.
type VertexType int

const (
	// VertexTypeStandard reads one per-vertex buffer.
	VertexTypeStandard VertexType = iota

	// VertexTypeInstanced reads a per-vertex buffer plus at least one per-instance buffer.
	VertexTypeInstanced
)

func (t VertexType) String() string {
	if t == VertexTypeInstanced {
		return "instanced"
	}
	return "standard"
}

// Entry point names every shader module must export.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	label          string
	vertexType     VertexType
	renderPipeline *wgpu.RenderPipeline
	layout         *wgpu.PipelineLayout
	modules        []*wgpu.ShaderModule
	cullMode       wgpu.CullMode
	topology       wgpu.PrimitiveTopology
	vertexLayouts  int
}

// Pipeline is a built render pipeline together with the state it was configured with.
type Pipeline interface {
	// Label returns the pipeline's debug label.
	Label() string

	// VertexType returns the vertex input contract of the pipeline's vertex shader.
	VertexType() VertexType

	// RenderPipeline returns the device-side pipeline object.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline to pass to SetPipeline
	RenderPipeline() *wgpu.RenderPipeline

	// Layout returns the pipeline layout the pipeline was built with, nil for an automatic layout.
	Layout() *wgpu.PipelineLayout

	// CullMode returns the configured face culling.
	CullMode() wgpu.CullMode

	// Topology returns TriangleList, or LineList for wireframe pipelines.
	Topology() wgpu.PrimitiveTopology

	// VertexBufferLayouts returns how many vertex buffer slots the pipeline reads.
	VertexBufferLayouts() int

	// Release drops the pipeline and the shader modules it compiled. The pipeline layout is
	// owned by the caller and is left alone.
	//
	// Parameters:
	//   - device: the device the pipeline was built on
	Release(device gpu.Device)
}

var _ Pipeline = &pipeline{}

func (p *pipeline) Label() string {
	return p.label
}

func (p *pipeline) VertexType() VertexType {
	return p.vertexType
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) Layout() *wgpu.PipelineLayout {
	return p.layout
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) VertexBufferLayouts() int {
	return p.vertexLayouts
}

func (p *pipeline) Release(device gpu.Device) {
	if p.renderPipeline != nil {
		device.ReleaseResource(p.renderPipeline)
		p.renderPipeline = nil
	}
	for _, m := range p.modules {
		device.ReleaseResource(m)
	}
	p.modules = nil
}
