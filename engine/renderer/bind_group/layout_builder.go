// Package bind_group builds bind group layouts and the bind groups that conform to them.
// Binding indices are positional: the n-th entry added to a builder gets binding n.
package bind_group

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// ResourceKind identifies what a binding slot holds.
type ResourceKind int

const (
	ResourceUniformBuffer ResourceKind = iota
	ResourceStorageBuffer
	ResourceTexture
	ResourceSampler
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUniformBuffer:
		return "uniform"
	case ResourceStorageBuffer:
		return "storage"
	case ResourceTexture:
		return "texture"
	case ResourceSampler:
		return "sampler"
	default:
		return fmt.Sprintf("ResourceKind(%d)", int(k))
	}
}

// Visibility selects the shader stages that can see a binding.
type Visibility int

const (
	VisibilityVertex Visibility = iota
	VisibilityFragment
	VisibilityAll
)

// ShaderStage converts the visibility into wgpu shader stage flags.
func (v Visibility) ShaderStage() wgpu.ShaderStage {
	switch v {
	case VisibilityVertex:
		return wgpu.ShaderStageVertex
	case VisibilityFragment:
		return wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
}

// LayoutEntry is one binding slot of a layout.
type LayoutEntry struct {
	Binding    uint32
	Kind       ResourceKind
	Visibility Visibility
	MinSize    uint64
}

// wgpuEntry converts the slot to its wgpu form. Storage buffers are bound read-only so that
// they are legal in the vertex stage as well.
func (e LayoutEntry) wgpuEntry() wgpu.BindGroupLayoutEntry {
	out := wgpu.BindGroupLayoutEntry{
		Binding:    e.Binding,
		Visibility: e.Visibility.ShaderStage(),
	}
	switch e.Kind {
	case ResourceUniformBuffer:
		out.Buffer = wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeUniform,
			MinBindingSize: e.MinSize,
		}
	case ResourceStorageBuffer:
		out.Buffer = wgpu.BufferBindingLayout{
			Type:           wgpu.BufferBindingTypeReadOnlyStorage,
			MinBindingSize: e.MinSize,
		}
	case ResourceTexture:
		out.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case ResourceSampler:
		out.Sampler = wgpu.SamplerBindingLayout{
			Type: wgpu.SamplerBindingTypeFiltering,
		}
	}
	return out
}

// Layout is a built bind group layout together with the slots it was built from.
type Layout struct {
	handle  *wgpu.BindGroupLayout
	entries []LayoutEntry
}

// Handle returns the device-side layout object.
func (l *Layout) Handle() *wgpu.BindGroupLayout {
	return l.handle
}

// Entries returns a copy of the layout's slots in binding order.
func (l *Layout) Entries() []LayoutEntry {
	return append([]LayoutEntry(nil), l.entries...)
}

// Len returns the number of binding slots.
func (l *Layout) Len() int {
	return len(l.entries)
}

// LayoutBuilder accumulates binding slots in the order resources will later be supplied.
type LayoutBuilder interface {
	// AddEntry appends one slot at binding index Len() and returns the builder for chaining.
	//
	// Parameters:
	//   - kind: the resource kind held by the slot
	//   - visibility: the shader stages that see the slot
	//   - minSize: minimum binding size in bytes for buffer slots, 0 for none
	//
	// Returns:
	//   - LayoutBuilder: the same builder
	AddEntry(kind ResourceKind, visibility Visibility, minSize uint64) LayoutBuilder

	// Len returns the number of slots added so far, which is also the next binding index.
	Len() int

	// Entries returns a copy of the accumulated slots.
	Entries() []LayoutEntry

	// Build creates the immutable device-side layout. An empty builder yields a valid empty layout.
	//
	// Parameters:
	//   - device: the device to create the layout on
	//
	// Returns:
	//   - *Layout: the built layout
	//   - error: the device rejected the descriptor
	Build(device gpu.Device) (*Layout, error)
}

type layoutBuilder struct {
	label   string
	entries []LayoutEntry
}

var _ LayoutBuilder = &layoutBuilder{}

// NewLayoutBuilder creates an empty layout builder.
//
// Parameters:
//   - label: debug label for the built layout
//
// Returns:
//   - LayoutBuilder: a builder with no slots
func NewLayoutBuilder(label string) LayoutBuilder {
	return &layoutBuilder{label: label}
}

func (b *layoutBuilder) AddEntry(kind ResourceKind, visibility Visibility, minSize uint64) LayoutBuilder {
	b.entries = append(b.entries, LayoutEntry{
		Binding:    uint32(len(b.entries)),
		Kind:       kind,
		Visibility: visibility,
		MinSize:    minSize,
	})
	return b
}

func (b *layoutBuilder) Len() int {
	return len(b.entries)
}

func (b *layoutBuilder) Entries() []LayoutEntry {
	return append([]LayoutEntry(nil), b.entries...)
}

func (b *layoutBuilder) Build(device gpu.Device) (*Layout, error) {
	wgpuEntries := make([]wgpu.BindGroupLayoutEntry, len(b.entries))
	for i, e := range b.entries {
		wgpuEntries[i] = e.wgpuEntry()
	}

	handle, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   b.label,
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group layout %q: %w", b.label, err)
	}
	return &Layout{handle: handle, entries: b.Entries()}, nil
}
