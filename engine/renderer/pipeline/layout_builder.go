package pipeline

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// LayoutBuilder collects bind group layouts in group order.
type LayoutBuilder interface {
	// AddBindGroupLayout appends a layout. The n-th layout added becomes group n.
	AddBindGroupLayout(layout *wgpu.BindGroupLayout) LayoutBuilder

	// Len returns the number of groups added so far.
	Len() int

	// Build creates the pipeline layout.
	//
	// Parameters:
	//   - device: the device to build on
	//
	// Returns:
	//   - *wgpu.PipelineLayout: the layout
	//   - error: a device failure
	Build(device gpu.Device) (*wgpu.PipelineLayout, error)
}

type layoutBuilder struct {
	label   string
	layouts []*wgpu.BindGroupLayout
}

var _ LayoutBuilder = &layoutBuilder{}

// NewLayoutBuilder creates an empty pipeline layout builder.
func NewLayoutBuilder(label string) LayoutBuilder {
	return &layoutBuilder{label: label}
}

func (b *layoutBuilder) AddBindGroupLayout(layout *wgpu.BindGroupLayout) LayoutBuilder {
	b.layouts = append(b.layouts, layout)
	return b
}

func (b *layoutBuilder) Len() int {
	return len(b.layouts)
}

func (b *layoutBuilder) Build(device gpu.Device) (*wgpu.PipelineLayout, error) {
	layout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            b.label,
		BindGroupLayouts: b.layouts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline layout %q: %w", b.label, err)
	}
	return layout, nil
}
