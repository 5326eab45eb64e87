package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
)

// IndirectModel is an instanced model whose draw arguments live in a GPU buffer, one
// IndirectArgs record per mesh at offset i*IndirectArgsSize. It carries no materials: instances
// index the palette the engine binds.
type IndirectModel struct {
	Name           string
	Meshes         []*Mesh
	InstanceBuffer *wgpu.Buffer
	IndirectBuffer *wgpu.Buffer
	InstanceCount  uint32
}

// NewIndirectModel uploads asset as InstancedModelVertex geometry, the instances, and the
// argument records that draw every mesh over all of them.
//
// Parameters:
//   - device: the device to allocate on
//   - asset: the parsed model
//   - instances: one record per drawn copy, may be empty
//
// Returns:
//   - *IndirectModel: the uploaded model
//   - error: no meshes or a device failure
func NewIndirectModel(device gpu.Device, asset Asset, instances []PositionInstanceData) (*IndirectModel, error) {
	if len(asset.Meshes) == 0 {
		return nil, fmt.Errorf("%q: %w", asset.Name, ErrNoMeshes)
	}

	m := &IndirectModel{Name: asset.Name}

	for i, g := range asset.Meshes {
		mesh, err := NewMesh(device, meshName(asset.Name, g, i), InstancedVertices(g), g.Indices, g.MaterialIndex)
		if err != nil {
			m.Release(device)
			return nil, err
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	if err := m.UpdateInstances(device, instances); err != nil {
		m.Release(device)
		return nil, err
	}
	return m, nil
}

// IndirectArgs returns the argument records for the current instance count.
func (m *IndirectModel) IndirectArgs() []IndirectArgs {
	args := make([]IndirectArgs, len(m.Meshes))
	for i, mesh := range m.Meshes {
		args[i] = IndirectArgs{
			IndexCount:    mesh.IndexCount,
			InstanceCount: m.InstanceCount,
		}
	}
	return args
}

// IndirectOffset returns the byte offset of mesh i's argument record.
func (m *IndirectModel) IndirectOffset(i int) uint64 {
	return uint64(i) * IndirectArgsSize
}

// UpdateInstances reallocates both the instance buffer and the argument buffer, releasing the
// old ones.
func (m *IndirectModel) UpdateInstances(device gpu.Device, instances []PositionInstanceData) error {
	ib, err := buffer.Create(device, m.Name+" instances", buffer.KindInstance, instances)
	if err != nil {
		return fmt.Errorf("indirect model %q: %w", m.Name, err)
	}

	count := m.InstanceCount
	m.InstanceCount = uint32(len(instances))
	ab, err := buffer.Create(device, m.Name+" indirect args", buffer.KindIndirect, m.IndirectArgs())
	if err != nil {
		m.InstanceCount = count
		device.ReleaseResource(ib)
		return fmt.Errorf("indirect model %q: %w", m.Name, err)
	}

	if m.InstanceBuffer != nil {
		device.ReleaseResource(m.InstanceBuffer)
	}
	if m.IndirectBuffer != nil {
		device.ReleaseResource(m.IndirectBuffer)
	}
	m.InstanceBuffer = ib
	m.IndirectBuffer = ab
	return nil
}

// InstanceByteSize returns the bytes held by the instance buffer's records.
func (m *IndirectModel) InstanceByteSize() uint64 {
	return uint64(m.InstanceCount) * common.SizeOf[PositionInstanceData]()
}

// Release frees meshes, instances and arguments.
func (m *IndirectModel) Release(device gpu.Device) {
	releaseMeshes(device, m.Meshes)
	m.Meshes = nil
	for _, b := range []*wgpu.Buffer{m.InstanceBuffer, m.IndirectBuffer} {
		if b != nil {
			device.ReleaseResource(b)
		}
	}
	m.InstanceBuffer = nil
	m.IndirectBuffer = nil
	m.InstanceCount = 0
}
