package model

import (
	"errors"
	"fmt"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/bind_group_provider"
)

// ErrNoMeshes is returned when a model is built from an asset without geometry.
var ErrNoMeshes = errors.New("model has no meshes")

// StandardModel is a model drawn once per frame, one draw per mesh, each mesh binding its own
// material group.
type StandardModel struct {
	Name      string
	Meshes    []*Mesh
	Materials MaterialBuffer

	// Uniform is an optional per-model uniform (a transform, a tint). Nil until SetUniformBuffer.
	Uniform bind_group_provider.BindGroupProvider
}

// NewStandardModel uploads every mesh of asset as StandardModelVertex geometry, tagging vertices
// with modelID, and gives each material its own storage group.
//
// Parameters:
//   - device: the device to allocate on
//   - asset: the parsed model
//   - modelID: value written into every vertex's ModelID
//
// Returns:
//   - *StandardModel: the uploaded model
//   - error: no meshes, a textured or missing material, or a device failure
func NewStandardModel(device gpu.Device, asset Asset, modelID float32) (*StandardModel, error) {
	if len(asset.Meshes) == 0 {
		return nil, fmt.Errorf("%q: %w", asset.Name, ErrNoMeshes)
	}

	materials, err := NewMaterialBuffer(device, asset.Name, asset.Materials)
	if err != nil {
		return nil, err
	}

	m := &StandardModel{Name: asset.Name, Materials: materials}
	for i, g := range asset.Meshes {
		if g.MaterialIndex >= materials.Len() {
			m.Release(device)
			return nil, fmt.Errorf("%q mesh %d: %w: %d of %d", asset.Name, i, ErrMaterialIndexOutOfRange, g.MaterialIndex, materials.Len())
		}
		mesh, err := NewMesh(device, meshName(asset.Name, g, i), StandardVertices(g, modelID), g.Indices, g.MaterialIndex)
		if err != nil {
			m.Release(device)
			return nil, err
		}
		m.Meshes = append(m.Meshes, mesh)
	}

	common.Logger().Debug("standard model uploaded", "model", asset.Name, "meshes", len(m.Meshes), "materials", materials.Len())
	return m, nil
}

// SetUniformBuffer attaches a per-model uniform provider, releasing any previous one.
func (m *StandardModel) SetUniformBuffer(device gpu.Device, p bind_group_provider.BindGroupProvider) {
	if m.Uniform != nil {
		m.Uniform.Release(device)
	}
	m.Uniform = p
}

// UpdateUniformBuffer replaces binding 0 of the model uniform. It is a no-op without one.
func (m *StandardModel) UpdateUniformBuffer(device gpu.Device, data []byte, size uint64) error {
	if m.Uniform == nil {
		return nil
	}
	return m.Uniform.Update(device, 0, data, size)
}

// ByteSize returns the bytes the model keeps on the GPU besides geometry.
func (m *StandardModel) ByteSize() uint64 {
	n := m.Materials.ByteSize()
	if m.Uniform != nil {
		n += m.Uniform.ByteSize()
	}
	return n
}

// Release frees meshes, materials and the uniform.
func (m *StandardModel) Release(device gpu.Device) {
	releaseMeshes(device, m.Meshes)
	m.Meshes = nil
	if m.Materials != nil {
		m.Materials.Release(device)
	}
	if m.Uniform != nil {
		m.Uniform.Release(device)
		m.Uniform = nil
	}
}

func meshName(model string, g Geometry, i int) string {
	if g.Name != "" {
		return model + "/" + g.Name
	}
	return fmt.Sprintf("%s/%d", model, i)
}
