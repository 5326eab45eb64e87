package pipeline

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

var (
	// ErrMissingVertexShader is returned by Build when SetVertexShader was never called.
	ErrMissingVertexShader = errors.New("pipeline has no vertex shader")

	// ErrMissingFragmentShader is returned by Build when SetFragmentShader was never called.
	ErrMissingFragmentShader = errors.New("pipeline has no fragment shader")

	// ErrBuilderConsumed is returned by Build on a builder that already built a pipeline.
	ErrBuilderConsumed = errors.New("pipeline builder already consumed")

	// ErrMissingInstanceLayout is returned when an instanced vertex shader has no per-instance buffer layout.
	ErrMissingInstanceLayout = errors.New("instanced pipeline has no instance-step vertex buffer layout")
)

type shaderStage struct {
	label  string
	source string
}

// Builder accumulates render pipeline state. Depth testing (Depth32Float, less, writes on),
// counter-clockwise front faces and single sampling are fixed for every pipeline.
type Builder interface {
	// SetVertexShader sets the WGSL source whose vs_main is the vertex stage.
	//
	// Parameters:
	//   - label: debug label for the shader module
	//   - source: preprocessed WGSL source
	//   - vertexType: the vertex input contract of the shader
	//
	// Returns:
	//   - Builder: the same builder
	SetVertexShader(label, source string, vertexType VertexType) Builder

	// SetFragmentShader sets the WGSL source whose fs_main is the fragment stage.
	//
	// Parameters:
	//   - label: debug label for the shader module
	//   - source: preprocessed WGSL source
	//   - format: color target format, usually the surface format
	//
	// Returns:
	//   - Builder: the same builder
	SetFragmentShader(label, source string, format wgpu.TextureFormat) Builder

	// AddVertexBufferLayout appends a vertex buffer layout. Slot n reads the n-th layout added.
	AddVertexBufferLayout(layout wgpu.VertexBufferLayout) Builder

	// SetCullMode sets face culling; CullModeNone disables it.
	SetCullMode(mode wgpu.CullMode) Builder

	// SetWireframe switches the topology between triangle list and line list.
	SetWireframe(enabled bool) Builder

	// SetPipelineLayout sets the bind group layouts in group order. A nil layout asks the
	// device for an automatic one.
	SetPipelineLayout(layout *wgpu.PipelineLayout) Builder

	// Build compiles the shaders and creates the pipeline. The builder is consumed: any later
	// call returns ErrBuilderConsumed.
	//
	// Parameters:
	//   - device: the device to build on
	//
	// Returns:
	//   - Pipeline: the built pipeline
	//   - error: a missing shader, a consumed builder, or a device failure
	Build(device gpu.Device) (Pipeline, error)
}

type builder struct {
	label string

	vertex     *shaderStage
	vertexType VertexType
	fragment   *shaderStage
	format     wgpu.TextureFormat

	vertexLayouts []wgpu.VertexBufferLayout
	cullMode      wgpu.CullMode
	wireframe     bool
	layout        *wgpu.PipelineLayout

	consumed bool
}

var _ Builder = &builder{}

// NewBuilder creates a pipeline builder with back-face culling and solid triangles.
//
// Parameters:
//   - label: debug label for the pipeline
//
// Returns:
//   - Builder: an empty builder
func NewBuilder(label string) Builder {
	return &builder{
		label:    label,
		cullMode: wgpu.CullModeBack,
	}
}

func (b *builder) SetVertexShader(label, source string, vertexType VertexType) Builder {
	b.vertex = &shaderStage{label: label, source: source}
	b.vertexType = vertexType
	return b
}

func (b *builder) SetFragmentShader(label, source string, format wgpu.TextureFormat) Builder {
	b.fragment = &shaderStage{label: label, source: source}
	b.format = format
	return b
}

func (b *builder) AddVertexBufferLayout(layout wgpu.VertexBufferLayout) Builder {
	b.vertexLayouts = append(b.vertexLayouts, layout)
	return b
}

func (b *builder) SetCullMode(mode wgpu.CullMode) Builder {
	b.cullMode = mode
	return b
}

func (b *builder) SetWireframe(enabled bool) Builder {
	b.wireframe = enabled
	return b
}

func (b *builder) SetPipelineLayout(layout *wgpu.PipelineLayout) Builder {
	b.layout = layout
	return b
}

func (b *builder) topology() wgpu.PrimitiveTopology {
	if b.wireframe {
		return wgpu.PrimitiveTopologyLineList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

func (b *builder) validate() error {
	if b.consumed {
		return ErrBuilderConsumed
	}
	if b.vertex == nil {
		return ErrMissingVertexShader
	}
	if b.fragment == nil {
		return ErrMissingFragmentShader
	}
	if b.vertexType == VertexTypeInstanced {
		for _, l := range b.vertexLayouts {
			if l.StepMode == wgpu.VertexStepModeInstance {
				return nil
			}
		}
		return ErrMissingInstanceLayout
	}
	return nil
}

func (b *builder) Build(device gpu.Device) (Pipeline, error) {
	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", b.label, err)
	}
	b.consumed = true

	p := &pipeline{
		label:         b.label,
		vertexType:    b.vertexType,
		layout:        b.layout,
		cullMode:      b.cullMode,
		topology:      b.topology(),
		vertexLayouts: len(b.vertexLayouts),
	}

	vertexModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          b.vertex.label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: b.vertex.source},
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: failed to compile vertex shader %q: %w", b.label, b.vertex.label, err)
	}
	p.modules = append(p.modules, vertexModule)

	// a single source file usually carries both entry points
	fragmentModule := vertexModule
	if b.fragment.source != b.vertex.source {
		fragmentModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          b.fragment.label,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: b.fragment.source},
		})
		if err != nil {
			p.Release(device)
			return nil, fmt.Errorf("pipeline %q: failed to compile fragment shader %q: %w", b.label, b.fragment.label, err)
		}
		p.modules = append(p.modules, fragmentModule)
	}

	rp, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  b.label,
		Layout: b.layout,
		Vertex: wgpu.VertexState{
			Module:     vertexModule,
			EntryPoint: VertexEntryPoint,
			Buffers:    b.vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fragmentModule,
			EntryPoint: FragmentEntryPoint,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.format,
					Blend:     &wgpu.BlendStateReplace,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  b.cullMode,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            gpu.DepthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		p.Release(device)
		return nil, fmt.Errorf("pipeline %q: failed to create render pipeline: %w", b.label, err)
	}
	p.renderPipeline = rp

	common.Logger().Debug("pipeline built", "label", b.label, "vertex", b.vertexType, "topology", p.topology, "cull", p.cullMode, "buffers", len(b.vertexLayouts))
	return p, nil
}
