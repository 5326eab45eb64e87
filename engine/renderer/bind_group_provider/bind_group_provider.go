// Package bind_group_provider owns GPU buffers together with the bind group layout and bind
// group that expose them to shaders. A provider starts with one binding, grows by appending
// bindings and can swap the buffer behind any binding. Layouts and bind groups are immutable on
// the device, so every structural change rebuilds them wholesale in binding order.
package bind_group_provider

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
)

var (
	// ErrBindingIndexOutOfRange is returned by Update and Write for an index >= Len().
	ErrBindingIndexOutOfRange = errors.New("binding index out of range")

	// ErrBindingSizeMismatch is returned by Update when the new size differs from the size the
	// layout declared at that binding.
	ErrBindingSizeMismatch = errors.New("binding size does not match layout")

	// ErrBindingSizeExceedsData is returned when a binding claims more bytes than its data holds.
	ErrBindingSizeExceedsData = errors.New("binding size exceeds data length")
)

// Kind selects between uniform and storage providers.
type Kind int

const (
	KindUniform Kind = iota
	KindStorage
)

func (k Kind) bufferKind() buffer.Kind {
	if k == KindStorage {
		return buffer.KindStorage
	}
	return buffer.KindUniform
}

func (k Kind) resourceKind() bind_group.ResourceKind {
	if k == KindStorage {
		return bind_group.ResourceStorageBuffer
	}
	return bind_group.ResourceUniformBuffer
}

func (k Kind) String() string {
	if k == KindStorage {
		return "storage"
	}
	return "uniform"
}

// Binding is one (buffer, byte size) pair owned by a provider.
type Binding struct {
	Buffer *wgpu.Buffer
	Size   uint64
}

// BindGroupProvider owns an ordered list of bindings plus the layout and bind group built from
// them. Invariant: Len() == Layout().Len() == number of bind group entries.
type BindGroupProvider interface {
	// Label returns the provider's debug label.
	Label() string

	// Kind reports whether the provider holds uniform or storage buffers.
	Kind() Kind

	// Len returns the number of bindings.
	Len() int

	// Binding returns the binding at index i.
	//
	// Parameters:
	//   - i: binding index in [0, Len())
	//
	// Returns:
	//   - Binding: the buffer and size at i
	Binding(i int) Binding

	// Bindings returns a copy of all bindings in binding order.
	Bindings() []Binding

	// Layout returns the current bind group layout.
	Layout() *bind_group.Layout

	// BindGroupLayout returns the device-side handle of the current layout.
	BindGroupLayout() *wgpu.BindGroupLayout

	// BindGroup returns the current bind group.
	BindGroup() *wgpu.BindGroup

	// ByteSize returns the sum of all binding sizes.
	ByteSize() uint64

	// AddBinding allocates a buffer from data and appends it as binding Len(). The layout and
	// bind group are rebuilt from scratch over every binding in order.
	//
	// Parameters:
	//   - device: the device to allocate on
	//   - data: initial buffer contents
	//   - size: bound byte size, at most len(data)
	//
	// Returns:
	//   - error: allocation or rebuild failed; the provider is left unchanged
	AddBinding(device gpu.Device, data []byte, size uint64) error

	// Update replaces the buffer behind binding index with a new one allocated from data and
	// rebuilds only the bind group. The binding count never changes.
	//
	// Parameters:
	//   - device: the device to allocate on
	//   - index: binding to replace
	//   - data: new buffer contents
	//   - size: bound byte size, must equal the size the layout declared at index
	//
	// Returns:
	//   - error: ErrBindingIndexOutOfRange, ErrBindingSizeMismatch, or a device failure
	Update(device gpu.Device, index int, data []byte, size uint64) error

	// Write overwrites the contents of binding index in place through the queue. Nothing is
	// reallocated or rebuilt.
	//
	// Parameters:
	//   - device: the device whose queue performs the write
	//   - index: binding to write
	//   - data: bytes to write at offset 0, at most the binding size
	//
	// Returns:
	//   - error: ErrBindingIndexOutOfRange, ErrBindingSizeExceedsData, or a queue failure
	Write(device gpu.Device, index int, data []byte) error

	// Release drops every buffer plus the layout and bind group.
	Release(device gpu.Device)
}

type bindGroupProvider struct {
	label      string
	kind       Kind
	visibility bind_group.Visibility

	bindings  []Binding
	layout    *bind_group.Layout
	bindGroup *wgpu.BindGroup
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewUniformBuffer creates a single-binding uniform provider visible to all stages.
//
// Parameters:
//   - device: the device to allocate on
//   - data: initial buffer contents
//   - size: bound byte size
//   - options: functional options (label, visibility)
//
// Returns:
//   - BindGroupProvider: the provider with one binding
//   - error: allocation or build failed
func NewUniformBuffer(device gpu.Device, data []byte, size uint64, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	return newBindGroupProvider(device, KindUniform, bind_group.VisibilityAll, data, size, options...)
}

// NewStorageBuffer creates a single-binding storage provider visible to the fragment stage.
//
// Parameters:
//   - device: the device to allocate on
//   - data: initial buffer contents
//   - size: bound byte size
//   - options: functional options (label, visibility)
//
// Returns:
//   - BindGroupProvider: the provider with one binding
//   - error: allocation or build failed
func NewStorageBuffer(device gpu.Device, data []byte, size uint64, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	return newBindGroupProvider(device, KindStorage, bind_group.VisibilityFragment, data, size, options...)
}

// NewUniformFrom is NewUniformBuffer over plain-data records, bound at their full byte size.
func NewUniformFrom[T any](device gpu.Device, data []T, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	return NewUniformBuffer(device, common.SliceToBytes(data), buffer.ByteSize(data), options...)
}

// NewStorageFrom is NewStorageBuffer over plain-data records, bound at their full byte size.
func NewStorageFrom[T any](device gpu.Device, data []T, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	return NewStorageBuffer(device, common.SliceToBytes(data), buffer.ByteSize(data), options...)
}

func newBindGroupProvider(device gpu.Device, kind Kind, visibility bind_group.Visibility, data []byte, size uint64, options ...BindGroupProviderOption) (BindGroupProvider, error) {
	p := &bindGroupProvider{
		label:      kind.String() + " buffer",
		kind:       kind,
		visibility: visibility,
	}
	for _, opt := range options {
		opt(p)
	}

	if err := p.AddBinding(device, data, size); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Kind() Kind {
	return p.kind
}

func (p *bindGroupProvider) Len() int {
	return len(p.bindings)
}

func (p *bindGroupProvider) Binding(i int) Binding {
	return p.bindings[i]
}

func (p *bindGroupProvider) Bindings() []Binding {
	return append([]Binding(nil), p.bindings...)
}

func (p *bindGroupProvider) Layout() *bind_group.Layout {
	return p.layout
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	if p.layout == nil {
		return nil
	}
	return p.layout.Handle()
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) ByteSize() uint64 {
	var total uint64
	for _, b := range p.bindings {
		total += b.Size
	}
	return total
}

func (p *bindGroupProvider) AddBinding(device gpu.Device, data []byte, size uint64) error {
	if size > uint64(len(data)) {
		return fmt.Errorf("%w: %q size %d, data %d bytes", ErrBindingSizeExceedsData, p.label, size, len(data))
	}

	buf, err := buffer.CreateBytes(device, fmt.Sprintf("%s %d", p.label, len(p.bindings)), p.kind.bufferKind(), data)
	if err != nil {
		return err
	}

	next := append(p.Bindings(), Binding{Buffer: buf, Size: size})

	layout, err := p.buildLayout(device, next)
	if err != nil {
		device.ReleaseResource(buf)
		return err
	}
	group, err := p.buildBindGroup(device, layout, next)
	if err != nil {
		device.ReleaseResource(layout.Handle())
		device.ReleaseResource(buf)
		return err
	}

	p.releaseGroup(device)
	p.releaseLayout(device)
	p.bindings = next
	p.layout = layout
	p.bindGroup = group

	common.Logger().Debug("binding added", "provider", p.label, "kind", p.kind, "bindings", len(p.bindings), "size", size)
	return nil
}

func (p *bindGroupProvider) Update(device gpu.Device, index int, data []byte, size uint64) error {
	if index < 0 || index >= len(p.bindings) {
		return fmt.Errorf("%w: %q index %d, %d bindings", ErrBindingIndexOutOfRange, p.label, index, len(p.bindings))
	}
	if declared := p.layout.Entries()[index].MinSize; size != declared {
		return fmt.Errorf("%w: %q binding %d declared %d bytes, got %d", ErrBindingSizeMismatch, p.label, index, declared, size)
	}
	if size > uint64(len(data)) {
		return fmt.Errorf("%w: %q size %d, data %d bytes", ErrBindingSizeExceedsData, p.label, size, len(data))
	}

	buf, err := buffer.CreateBytes(device, fmt.Sprintf("%s %d", p.label, index), p.kind.bufferKind(), data)
	if err != nil {
		return err
	}

	next := p.Bindings()
	old := next[index].Buffer
	next[index] = Binding{Buffer: buf, Size: size}

	group, err := p.buildBindGroup(device, p.layout, next)
	if err != nil {
		device.ReleaseResource(buf)
		return err
	}

	p.releaseGroup(device)
	device.ReleaseResource(old)
	p.bindings = next
	p.bindGroup = group
	return nil
}

func (p *bindGroupProvider) Write(device gpu.Device, index int, data []byte) error {
	if index < 0 || index >= len(p.bindings) {
		return fmt.Errorf("%w: %q index %d, %d bindings", ErrBindingIndexOutOfRange, p.label, index, len(p.bindings))
	}
	b := p.bindings[index]
	if uint64(len(data)) > common.AlignUp(b.Size, 4) {
		return fmt.Errorf("%w: %q binding %d holds %d bytes, got %d", ErrBindingSizeExceedsData, p.label, index, b.Size, len(data))
	}
	if err := device.WriteBuffer(b.Buffer, 0, data); err != nil {
		return fmt.Errorf("failed to write %q binding %d: %w", p.label, index, err)
	}
	return nil
}

func (p *bindGroupProvider) Release(device gpu.Device) {
	p.releaseGroup(device)
	p.releaseLayout(device)
	for _, b := range p.bindings {
		device.ReleaseResource(b.Buffer)
	}
	p.bindings = nil
}

func (p *bindGroupProvider) buildLayout(device gpu.Device, bindings []Binding) (*bind_group.Layout, error) {
	lb := bind_group.NewLayoutBuilder(p.label + " layout")
	for _, b := range bindings {
		lb.AddEntry(p.kind.resourceKind(), p.visibility, b.Size)
	}
	return lb.Build(device)
}

func (p *bindGroupProvider) buildBindGroup(device gpu.Device, layout *bind_group.Layout, bindings []Binding) (*wgpu.BindGroup, error) {
	gb := bind_group.NewBuilder(p.label + " bind group")
	for _, b := range bindings {
		switch p.kind {
		case KindStorage:
			gb.AddStorageBuffer(b.Buffer, b.Size)
		default:
			gb.AddUniformBuffer(b.Buffer, b.Size)
		}
	}
	return gb.Build(device, layout)
}

func (p *bindGroupProvider) releaseGroup(device gpu.Device) {
	if p.bindGroup != nil {
		device.ReleaseResource(p.bindGroup)
		p.bindGroup = nil
	}
}

func (p *bindGroupProvider) releaseLayout(device gpu.Device) {
	if p.layout != nil {
		device.ReleaseResource(p.layout.Handle())
		p.layout = nil
	}
}
