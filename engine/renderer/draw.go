package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/model"
)

// Vertex buffer slots shared by every pipeline: geometry at 0, per-instance records at 1.
const (
	VertexSlot   uint32 = 0
	InstanceSlot uint32 = 1
)

func bindMesh(pass gpu.RenderPass, mesh *model.Mesh) {
	pass.SetVertexBuffer(VertexSlot, mesh.VertexBuffer, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(mesh.IndexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

// DrawMesh draws one mesh once, binding its material's group at materialGroup.
//
// Parameters:
//   - pass: the render pass, with the pipeline and shared groups already set
//   - mesh: the mesh to draw
//   - materials: the owning model's materials
//   - materialGroup: the bind group index the pipeline expects materials at
//   - stats: frame counters, may be nil
//
// Returns:
//   - error: the mesh names a material the buffer does not hold
func DrawMesh(pass gpu.RenderPass, mesh *model.Mesh, materials model.MaterialBuffer, materialGroup uint32, stats *Stats) error {
	material, err := materials.Provider(mesh.MaterialIndex)
	if err != nil {
		return fmt.Errorf("mesh %q: %w", mesh.Name, err)
	}
	bindMesh(pass, mesh)
	pass.SetBindGroup(materialGroup, material.BindGroup(), nil)
	pass.DrawIndexed(mesh.IndexCount, 1, 0, 0, 0)
	stats.AddDraw(1)
	return nil
}

// DrawModel draws every mesh of a standard model once.
func DrawModel(pass gpu.RenderPass, m *model.StandardModel, materialGroup uint32, stats *Stats) error {
	for _, mesh := range m.Meshes {
		if err := DrawMesh(pass, mesh, m.Materials, materialGroup, stats); err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
	}
	return nil
}

// DrawModelInstanced draws every mesh of m once per instance, with the packed materials bound at
// materialGroup. A model without instances records nothing.
//
// Parameters:
//   - pass: the render pass, with the pipeline and shared groups already set
//   - m: the model to draw
//   - materialGroup: the bind group index the pipeline expects materials at
//   - stats: frame counters, may be nil
func DrawModelInstanced(pass gpu.RenderPass, m *model.InstancedModel, materialGroup uint32, stats *Stats) {
	if m.InstanceCount == 0 {
		return
	}
	for _, mesh := range m.Meshes {
		bindMesh(pass, mesh)
		pass.SetBindGroup(materialGroup, m.Materials.BindGroup(), nil)
		pass.SetVertexBuffer(InstanceSlot, m.InstanceBuffer, 0, wgpu.WholeSize)
		pass.DrawIndexed(mesh.IndexCount, m.InstanceCount, 0, 0, 0)
		stats.AddDraw(m.InstanceCount)
	}
}

// DrawModelIndirect draws every mesh of m with the arguments stored in its indirect buffer,
// mesh i reading the record at m.IndirectOffset(i).
func DrawModelIndirect(pass gpu.RenderPass, m *model.IndirectModel, stats *Stats) {
	if m.InstanceCount == 0 {
		return
	}
	for i, mesh := range m.Meshes {
		bindMesh(pass, mesh)
		pass.SetVertexBuffer(InstanceSlot, m.InstanceBuffer, 0, wgpu.WholeSize)
		pass.DrawIndexedIndirect(m.IndirectBuffer, m.IndirectOffset(i))
		stats.AddDraw(m.InstanceCount)
	}
}

// DrawVoxelFace draws one face quad per voxel instance.
func DrawVoxelFace(pass gpu.RenderPass, m *model.VoxelFaceModel, stats *Stats) {
	if m.InstanceCount == 0 {
		return
	}
	bindMesh(pass, m.Mesh)
	pass.SetVertexBuffer(InstanceSlot, m.InstanceBuffer, 0, wgpu.WholeSize)
	pass.DrawIndexed(m.Mesh.IndexCount, m.InstanceCount, 0, 0, 0)
	stats.AddDraw(m.InstanceCount)
}
