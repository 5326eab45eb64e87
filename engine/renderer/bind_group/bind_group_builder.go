package bind_group

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// ErrLayoutMismatch is returned when a bind group's entries do not structurally match the layout
// it is built against (different count or a different resource kind at some binding).
var ErrLayoutMismatch = errors.New("bind group entries do not match layout")

// Entry is one concrete resource binding.
type Entry struct {
	Binding     uint32
	Kind        ResourceKind
	Buffer      *wgpu.Buffer
	Offset      uint64
	Size        uint64
	TextureView *wgpu.TextureView
	Sampler     *wgpu.Sampler
}

func (e Entry) wgpuEntry() wgpu.BindGroupEntry {
	out := wgpu.BindGroupEntry{Binding: e.Binding}
	switch e.Kind {
	case ResourceUniformBuffer, ResourceStorageBuffer:
		out.Buffer = e.Buffer
		out.Offset = e.Offset
		out.Size = e.Size
	case ResourceTexture:
		out.TextureView = e.TextureView
	case ResourceSampler:
		out.Sampler = e.Sampler
	}
	return out
}

// Builder accumulates resource bindings in the order of the layout they will be built against.
type Builder interface {
	// AddUniformBuffer appends a uniform buffer binding covering bytes [0, size).
	//
	// Parameters:
	//   - buf: the uniform buffer
	//   - size: bound byte range
	//
	// Returns:
	//   - Builder: the same builder
	AddUniformBuffer(buf *wgpu.Buffer, size uint64) Builder

	// AddStorageBuffer appends a storage buffer binding covering bytes [0, size).
	AddStorageBuffer(buf *wgpu.Buffer, size uint64) Builder

	// AddTexture appends a texture view binding.
	AddTexture(view *wgpu.TextureView) Builder

	// AddSampler appends a sampler binding.
	AddSampler(sampler *wgpu.Sampler) Builder

	// Len returns the number of bindings added so far.
	Len() int

	// Entries returns a copy of the accumulated bindings.
	Entries() []Entry

	// Build validates the bindings against layout and creates the bind group.
	//
	// Parameters:
	//   - device: the device to create the group on
	//   - layout: the layout the group must conform to
	//
	// Returns:
	//   - *wgpu.BindGroup: the built group
	//   - error: ErrLayoutMismatch, or the device rejected the descriptor
	Build(device gpu.Device, layout *Layout) (*wgpu.BindGroup, error)
}

type builder struct {
	label   string
	entries []Entry
}

var _ Builder = &builder{}

// NewBuilder creates an empty bind group builder.
//
// Parameters:
//   - label: debug label for the built group
//
// Returns:
//   - Builder: a builder with no bindings
func NewBuilder(label string) Builder {
	return &builder{label: label}
}

func (b *builder) add(e Entry) Builder {
	e.Binding = uint32(len(b.entries))
	b.entries = append(b.entries, e)
	return b
}

func (b *builder) AddUniformBuffer(buf *wgpu.Buffer, size uint64) Builder {
	return b.add(Entry{Kind: ResourceUniformBuffer, Buffer: buf, Size: size})
}

func (b *builder) AddStorageBuffer(buf *wgpu.Buffer, size uint64) Builder {
	return b.add(Entry{Kind: ResourceStorageBuffer, Buffer: buf, Size: size})
}

func (b *builder) AddTexture(view *wgpu.TextureView) Builder {
	return b.add(Entry{Kind: ResourceTexture, TextureView: view})
}

func (b *builder) AddSampler(sampler *wgpu.Sampler) Builder {
	return b.add(Entry{Kind: ResourceSampler, Sampler: sampler})
}

func (b *builder) Len() int {
	return len(b.entries)
}

func (b *builder) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

func (b *builder) Build(device gpu.Device, layout *Layout) (*wgpu.BindGroup, error) {
	if err := b.validate(layout); err != nil {
		return nil, err
	}

	wgpuEntries := make([]wgpu.BindGroupEntry, len(b.entries))
	for i, e := range b.entries {
		wgpuEntries[i] = e.wgpuEntry()
	}

	group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   b.label,
		Layout:  layout.Handle(),
		Entries: wgpuEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bind group %q: %w", b.label, err)
	}
	return group, nil
}

func (b *builder) validate(layout *Layout) error {
	if layout.Len() != len(b.entries) {
		return fmt.Errorf("%w: %q has %d entries, layout has %d", ErrLayoutMismatch, b.label, len(b.entries), layout.Len())
	}
	for i, want := range layout.entries {
		got := b.entries[i]
		if got.Kind != want.Kind {
			return fmt.Errorf("%w: %q binding %d is %s, layout expects %s", ErrLayoutMismatch, b.label, i, got.Kind, want.Kind)
		}
		if want.MinSize > 0 && got.Size > 0 && got.Size < want.MinSize {
			return fmt.Errorf("%w: %q binding %d size %d below layout minimum %d", ErrLayoutMismatch, b.label, i, got.Size, want.MinSize)
		}
	}
	return nil
}
