package model

import (
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
)

const vec4Size = uint64(unsafe.Sizeof([4]float32{}))

// VoxelVertex is one corner of a voxel face quad.
// Size: 16 bytes.
type VoxelVertex struct {
	Position [4]float32 // offset 0, location 0
}

// Size returns the size of the VoxelVertex struct in bytes.
func (v *VoxelVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// VoxelVertexLayout describes VoxelVertex as vertex buffer slot input.
//
// Returns:
//   - wgpu.VertexBufferLayout: the per-vertex layout, location 0
func VoxelVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(VoxelVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
		},
	}
}

// InstancedModelVertex is the vertex of a mesh drawn many times from an instance buffer.
// Size: 40 bytes.
type InstancedModelVertex struct {
	Position  [4]float32 // offset  0, location 0
	Normal    [4]float32 // offset 16, location 1
	TexCoords [2]float32 // offset 32, location 2
}

// Size returns the size of the InstancedModelVertex struct in bytes.
func (v *InstancedModelVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// InstancedModelVertexLayout describes InstancedModelVertex, locations 0 to 2.
func InstancedModelVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(InstancedModelVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x4, Offset: vec4Size, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x2, Offset: 2 * vec4Size, ShaderLocation: 2},
		},
	}
}

// StandardModelVertex is the vertex of a mesh drawn once.
// Size: 64 bytes.
type StandardModelVertex struct {
	Position  [4]float32 // offset  0, location 0
	Normal    [4]float32 // offset 16, location 1
	TexCoords [4]float32 // offset 32, location 2
	ModelID   [4]float32 // offset 48, location 3
}

// Size returns the size of the StandardModelVertex struct in bytes.
func (v *StandardModelVertex) Size() int {
	return int(unsafe.Sizeof(*v))
}

// StandardModelVertexLayout describes StandardModelVertex, locations 0 to 3.
func StandardModelVertexLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(StandardModelVertex{})),
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
			{Format: wgpu.VertexFormatFloat32x4, Offset: vec4Size, ShaderLocation: 1},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 2 * vec4Size, ShaderLocation: 2},
			{Format: wgpu.VertexFormatFloat32x4, Offset: 3 * vec4Size, ShaderLocation: 3},
		},
	}
}

// PositionInstanceData is one drawn copy of a mesh: where it sits, how big it is, and which
// material palette entry colours it.
// Size: 32 bytes.
type PositionInstanceData struct {
	Position      [4]float32 // offset  0, location 3: xyz world position, w size
	MaterialIndex [4]float32 // offset 16, location 4: x material index
}

// Size returns the size of the PositionInstanceData struct in bytes.
func (d *PositionInstanceData) Size() int {
	return int(unsafe.Sizeof(*d))
}

// NewPositionInstance builds an instance at center with edge length size.
func NewPositionInstance(center [3]float32, size float32, material uint32) PositionInstanceData {
	return PositionInstanceData{
		Position:      [4]float32{center[0], center[1], center[2], size},
		MaterialIndex: [4]float32{float32(material), 0, 0, 0},
	}
}

// PositionInstanceLayout describes PositionInstanceData as per-instance input, locations 3 and 4.
func PositionInstanceLayout() wgpu.VertexBufferLayout {
	return wgpu.VertexBufferLayout{
		ArrayStride: uint64(unsafe.Sizeof(PositionInstanceData{})),
		StepMode:    wgpu.VertexStepModeInstance,
		Attributes: []wgpu.VertexAttribute{
			{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 3},
			{Format: wgpu.VertexFormatFloat32x4, Offset: vec4Size, ShaderLocation: 4},
		},
	}
}

// IndirectArgs is the argument record read by DrawIndexedIndirect.
// Size: 20 bytes.
type IndirectArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// IndirectArgsSize is the stride between consecutive IndirectArgs records.
const IndirectArgsSize = uint64(unsafe.Sizeof(IndirectArgs{}))
