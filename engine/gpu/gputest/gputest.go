// Package gputest provides recording fakes of gpu.Device and gpu.RenderPass for tests that
// exercise resource construction and draw submission without a GPU.
package gputest

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// BufferRecord is what the fake device remembers about a created buffer.
type BufferRecord struct {
	Label string
	Size  uint64
	Usage wgpu.BufferUsage
	Data  []byte
}

// Call is one recorded render pass command.
type Call struct {
	Op       string
	Slot     uint32
	Count    uint32
	Instance uint32
	Buffer   *wgpu.Buffer
	Group    *wgpu.BindGroup
	Pipeline *wgpu.RenderPipeline
}

// Device is a gpu.Device that hands out distinct opaque handles and records every descriptor.
// The handles must never be passed to real wgpu calls.
type Device struct {
	// Err, when set, is returned by the next create call and then cleared.
	Err error

	Buffers          map[*wgpu.Buffer]*BufferRecord
	BufferOrder      []*wgpu.Buffer
	Layouts          map[*wgpu.BindGroupLayout]wgpu.BindGroupLayoutDescriptor
	BindGroups       map[*wgpu.BindGroup]wgpu.BindGroupDescriptor
	PipelineLayouts  map[*wgpu.PipelineLayout]wgpu.PipelineLayoutDescriptor
	ShaderSources    map[*wgpu.ShaderModule]string
	RenderPipelines  map[*wgpu.RenderPipeline]wgpu.RenderPipelineDescriptor
	Released         []gpu.Releaser
	BytesWritten     int
	BindGroupCreates int
	LayoutCreates    int
}

var _ gpu.Device = &Device{}

// NewDevice returns an empty recording device.
func NewDevice() *Device {
	return &Device{
		Buffers:         make(map[*wgpu.Buffer]*BufferRecord),
		Layouts:         make(map[*wgpu.BindGroupLayout]wgpu.BindGroupLayoutDescriptor),
		BindGroups:      make(map[*wgpu.BindGroup]wgpu.BindGroupDescriptor),
		PipelineLayouts: make(map[*wgpu.PipelineLayout]wgpu.PipelineLayoutDescriptor),
		ShaderSources:   make(map[*wgpu.ShaderModule]string),
		RenderPipelines: make(map[*wgpu.RenderPipeline]wgpu.RenderPipelineDescriptor),
	}
}

func (d *Device) takeErr() error {
	err := d.Err
	d.Err = nil
	return err
}

func (d *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	b := &wgpu.Buffer{}
	d.Buffers[b] = &BufferRecord{Label: desc.Label, Size: desc.Size, Usage: desc.Usage}
	d.BufferOrder = append(d.BufferOrder, b)
	return b, nil
}

func (d *Device) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	if err := d.takeErr(); err != nil {
		return err
	}
	rec, ok := d.Buffers[buf]
	if !ok {
		return errUnknownBuffer
	}
	end := offset + uint64(len(data))
	if uint64(len(rec.Data)) < end {
		grown := make([]byte, end)
		copy(grown, rec.Data)
		rec.Data = grown
	}
	copy(rec.Data[offset:end], data)
	d.BytesWritten += len(data)
	return nil
}

func (d *Device) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	l := &wgpu.BindGroupLayout{}
	cp := *desc
	cp.Entries = slices.Clone(desc.Entries)
	d.Layouts[l] = cp
	d.LayoutCreates++
	return l, nil
}

func (d *Device) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	g := &wgpu.BindGroup{}
	cp := *desc
	cp.Entries = slices.Clone(desc.Entries)
	d.BindGroups[g] = cp
	d.BindGroupCreates++
	return g, nil
}

func (d *Device) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	l := &wgpu.PipelineLayout{}
	cp := *desc
	cp.BindGroupLayouts = slices.Clone(desc.BindGroupLayouts)
	d.PipelineLayouts[l] = cp
	return l, nil
}

func (d *Device) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	m := &wgpu.ShaderModule{}
	if desc.WGSLDescriptor != nil {
		d.ShaderSources[m] = desc.WGSLDescriptor.Code
	}
	return m, nil
}

func (d *Device) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	if err := d.takeErr(); err != nil {
		return nil, err
	}
	p := &wgpu.RenderPipeline{}
	d.RenderPipelines[p] = *desc
	return p, nil
}

func (d *Device) ReleaseResource(r gpu.Releaser) {
	d.Released = append(d.Released, r)
}

// IsReleased reports whether r was passed to ReleaseResource.
func (d *Device) IsReleased(r gpu.Releaser) bool {
	return slices.Contains(d.Released, r)
}

// RenderPass is a gpu.RenderPass that records every command in order.
type RenderPass struct {
	Calls []Call
}

var _ gpu.RenderPass = &RenderPass{}

func (p *RenderPass) SetPipeline(pipeline *wgpu.RenderPipeline) {
	p.Calls = append(p.Calls, Call{Op: "SetPipeline", Pipeline: pipeline})
}

func (p *RenderPass) SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, _ []uint32) {
	p.Calls = append(p.Calls, Call{Op: "SetBindGroup", Slot: groupIndex, Group: group})
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, _, _ uint64) {
	p.Calls = append(p.Calls, Call{Op: "SetVertexBuffer", Slot: slot, Buffer: buffer})
}

func (p *RenderPass) SetIndexBuffer(buffer *wgpu.Buffer, _ wgpu.IndexFormat, _, _ uint64) {
	p.Calls = append(p.Calls, Call{Op: "SetIndexBuffer", Buffer: buffer})
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, _ uint32, _ int32, _ uint32) {
	p.Calls = append(p.Calls, Call{Op: "DrawIndexed", Count: indexCount, Instance: instanceCount})
}

func (p *RenderPass) DrawIndexedIndirect(indirectBuffer *wgpu.Buffer, _ uint64) {
	p.Calls = append(p.Calls, Call{Op: "DrawIndexedIndirect", Buffer: indirectBuffer})
}

// Ops returns the recorded command names in order.
func (p *RenderPass) Ops() []string {
	ops := make([]string, len(p.Calls))
	for i, c := range p.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how many recorded commands have the given name.
func (p *RenderPass) Count(op string) int {
	n := 0
	for _, c := range p.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}
