package render_engine

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group"
	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
)

// program is one render pipeline together with the named bind group layouts it was built
// against. Groups are registered in bind order; the same index is used for the pipeline layout
// and for SetBindGroup.
type program struct {
	label string

	slots   *bind_group.Slots
	layouts []*wgpu.BindGroupLayout

	vertexType    pipeline.VertexType
	vertexLayouts []wgpu.VertexBufferLayout
	cullMode      wgpu.CullMode
	wireframe     bool

	shader         shader.Shader
	pipelineLayout *wgpu.PipelineLayout
	pipeline       pipeline.Pipeline
}

func newProgram(label string, vertexType pipeline.VertexType, cullMode wgpu.CullMode, wireframe bool, vertexLayouts ...wgpu.VertexBufferLayout) *program {
	return &program{
		label:         label,
		slots:         bind_group.NewSlots(),
		vertexType:    vertexType,
		vertexLayouts: vertexLayouts,
		cullMode:      cullMode,
		wireframe:     wireframe,
	}
}

// addGroup registers a named group at the next index. Group names are fixed per engine.
func (p *program) addGroup(name string, layout *wgpu.BindGroupLayout) uint32 {
	i := p.slots.MustAdd(name)
	p.layouts = append(p.layouts, layout)
	return i
}

// group returns the index registered for name. Names are fixed at construction, so a miss is a
// programming error.
func (p *program) group(name string) uint32 {
	i, ok := p.slots.Index(name)
	if !ok {
		panic(fmt.Sprintf("render_engine: %s has no group %q", p.label, name))
	}
	return i
}

// build compiles s against the registered groups. On failure the previous pipeline stays in
// use.
func (p *program) build(device gpu.Device, format wgpu.TextureFormat, s shader.Shader) error {
	if s == nil {
		s = p.shader
	}
	if s == nil {
		return fmt.Errorf("%s: %w", p.label, pipeline.ErrMissingVertexShader)
	}
	if n := s.GroupCount(); n != p.slots.Len() {
		return fmt.Errorf("%w: %s shader %q declares %d groups, engine binds %d %v",
			ErrGroupCountMismatch, p.label, s.Key(), n, p.slots.Len(), p.slots.Names())
	}

	lb := pipeline.NewLayoutBuilder(p.label)
	for _, l := range p.layouts {
		lb.AddBindGroupLayout(l)
	}
	layout, err := lb.Build(device)
	if err != nil {
		return err
	}

	b := pipeline.NewBuilder(p.label).
		SetVertexShader(s.Key(), s.Source(), p.vertexType).
		SetFragmentShader(s.Key(), s.Source(), format).
		SetCullMode(p.cullMode).
		SetWireframe(p.wireframe).
		SetPipelineLayout(layout)
	for _, vl := range p.vertexLayouts {
		b.AddVertexBufferLayout(vl)
	}
	built, err := b.Build(device)
	if err != nil {
		device.ReleaseResource(layout)
		return err
	}

	p.releasePipeline(device)
	p.shader = s
	p.pipelineLayout = layout
	p.pipeline = built
	common.Logger().Debug("pipeline built", "program", p.label, "shader", s.Key(), "groups", p.slots.Len())
	return nil
}

func (p *program) use(pass gpu.RenderPass) {
	pass.SetPipeline(p.pipeline.RenderPipeline())
}

func (p *program) releasePipeline(device gpu.Device) {
	if p.pipeline != nil {
		p.pipeline.Release(device)
		p.pipeline = nil
	}
	if p.pipelineLayout != nil {
		device.ReleaseResource(p.pipelineLayout)
		p.pipelineLayout = nil
	}
}
