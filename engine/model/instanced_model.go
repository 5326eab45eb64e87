package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
)

// InstancedModel draws every mesh once per instance record. All materials share one packed
// storage binding indexed by the instance's material index.
type InstancedModel struct {
	Name           string
	Meshes         []*Mesh
	Materials      bind_group_provider.BindGroupProvider
	InstanceBuffer *wgpu.Buffer
	InstanceCount  uint32
}

// NewInstancedModel uploads asset as InstancedModelVertex geometry plus the given instances.
//
// Parameters:
//   - device: the device to allocate on
//   - asset: the parsed model
//   - instances: one record per drawn copy, may be empty
//
// Returns:
//   - *InstancedModel: the uploaded model
//   - error: no meshes, a textured material or a device failure
func NewInstancedModel(device gpu.Device, asset Asset, instances []PositionInstanceData) (*InstancedModel, error) {
	if len(asset.Meshes) == 0 {
		return nil, fmt.Errorf("%q: %w", asset.Name, ErrNoMeshes)
	}

	materials, err := NewPackedMaterials(device, asset.Name, asset.Materials)
	if err != nil {
		return nil, err
	}
	m := &InstancedModel{Name: asset.Name, Materials: materials}

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

	common.Logger().Debug("instanced model uploaded", "model", asset.Name, "meshes", len(m.Meshes), "instances", m.InstanceCount)
	return m, nil
}

// UpdateInstances reallocates the instance buffer from instances and releases the old one.
func (m *InstancedModel) UpdateInstances(device gpu.Device, instances []PositionInstanceData) error {
	buf, err := buffer.Create(device, m.Name+" instances", buffer.KindInstance, instances)
	if err != nil {
		return fmt.Errorf("instanced model %q: %w", m.Name, err)
	}
	if m.InstanceBuffer != nil {
		device.ReleaseResource(m.InstanceBuffer)
	}
	m.InstanceBuffer = buf
	m.InstanceCount = uint32(len(instances))
	return nil
}

// InstanceByteSize returns the bytes held by the instance buffer's records.
func (m *InstancedModel) InstanceByteSize() uint64 {
	return uint64(m.InstanceCount) * common.SizeOf[PositionInstanceData]()
}

// Release frees meshes, materials and instances.
func (m *InstancedModel) Release(device gpu.Device) {
	releaseMeshes(device, m.Meshes)
	m.Meshes = nil
	if m.Materials != nil {
		m.Materials.Release(device)
		m.Materials = nil
	}
	if m.InstanceBuffer != nil {
		device.ReleaseResource(m.InstanceBuffer)
		m.InstanceBuffer = nil
	}
	m.InstanceCount = 0
}
