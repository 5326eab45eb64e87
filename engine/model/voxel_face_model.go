package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
)

// Face is one side of a unit voxel.
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceLeft
	FaceRight
	FaceFront
	FaceBack
)

// Faces lists every face in a fixed order.
var Faces = [6]Face{FaceTop, FaceBottom, FaceLeft, FaceRight, FaceFront, FaceBack}

func (f Face) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	default:
		return fmt.Sprintf("Face(%d)", int(f))
	}
}

// Normal returns the outward unit normal of the face. Front faces -z.
func (f Face) Normal() mgl32.Vec3 {
	switch f {
	case FaceTop:
		return mgl32.Vec3{0, 1, 0}
	case FaceBottom:
		return mgl32.Vec3{0, -1, 0}
	case FaceLeft:
		return mgl32.Vec3{-1, 0, 0}
	case FaceRight:
		return mgl32.Vec3{1, 0, 0}
	case FaceFront:
		return mgl32.Vec3{0, 0, -1}
	default:
		return mgl32.Vec3{0, 0, 1}
	}
}

// VisibleFrom reports whether a camera looking along forward can see this face on any voxel:
// the direction opposite the face normal must not point away from the view direction.
func (f Face) VisibleFrom(forward mgl32.Vec3) bool {
	return f.Normal().Mul(-1).Dot(forward) >= 0
}

// faceQuad returns the four corners and two counter-clockwise triangles of a face of the unit
// cube centred on the origin.
func faceQuad(f Face) ([4]VoxelVertex, [6]uint32) {
	v := func(x, y, z float32) VoxelVertex { return VoxelVertex{Position: [4]float32{x, y, z, 0.5}} }
	switch f {
	case FaceTop:
		return [4]VoxelVertex{v(-0.5, 0.5, -0.5), v(0.5, 0.5, -0.5), v(-0.5, 0.5, 0.5), v(0.5, 0.5, 0.5)}, [6]uint32{0, 3, 1, 0, 2, 3}
	case FaceBottom:
		return [4]VoxelVertex{v(-0.5, -0.5, -0.5), v(0.5, -0.5, -0.5), v(-0.5, -0.5, 0.5), v(0.5, -0.5, 0.5)}, [6]uint32{0, 1, 3, 0, 3, 2}
	case FaceLeft:
		return [4]VoxelVertex{v(-0.5, -0.5, -0.5), v(-0.5, 0.5, -0.5), v(-0.5, 0.5, 0.5), v(-0.5, -0.5, 0.5)}, [6]uint32{0, 2, 1, 0, 3, 2}
	case FaceRight:
		return [4]VoxelVertex{v(0.5, -0.5, -0.5), v(0.5, 0.5, -0.5), v(0.5, 0.5, 0.5), v(0.5, -0.5, 0.5)}, [6]uint32{0, 1, 2, 0, 2, 3}
	case FaceFront:
		return [4]VoxelVertex{v(-0.5, -0.5, -0.5), v(0.5, -0.5, -0.5), v(0.5, 0.5, -0.5), v(-0.5, 0.5, -0.5)}, [6]uint32{0, 2, 1, 0, 3, 2}
	default:
		return [4]VoxelVertex{v(-0.5, -0.5, 0.5), v(0.5, -0.5, 0.5), v(0.5, 0.5, 0.5), v(-0.5, 0.5, 0.5)}, [6]uint32{0, 1, 2, 0, 2, 3}
	}
}

// VoxelFaceModel draws one face of every voxel instance. Six of them, one per Face, make a
// voxel world whose hidden sides can be skipped per frame.
type VoxelFaceModel struct {
	Face           Face
	Mesh           *Mesh
	InstanceBuffer *wgpu.Buffer
	InstanceCount  uint32
}

// NewVoxelFaceModel uploads the quad of face and the instances.
func NewVoxelFaceModel(device gpu.Device, face Face, instances []PositionInstanceData) (*VoxelFaceModel, error) {
	vertices, indices := faceQuad(face)
	mesh, err := NewMesh(device, "voxel "+face.String(), vertices[:], indices[:], 0)
	if err != nil {
		return nil, err
	}
	m := &VoxelFaceModel{Face: face, Mesh: mesh}
	if err := m.UpdateInstances(device, instances); err != nil {
		m.Release(device)
		return nil, err
	}
	return m, nil
}

// UpdateInstances reallocates the instance buffer and releases the old one.
func (m *VoxelFaceModel) UpdateInstances(device gpu.Device, instances []PositionInstanceData) error {
	buf, err := buffer.Create(device, "voxel "+m.Face.String()+" instances", buffer.KindInstance, instances)
	if err != nil {
		return fmt.Errorf("voxel face %s: %w", m.Face, err)
	}
	if m.InstanceBuffer != nil {
		device.ReleaseResource(m.InstanceBuffer)
	}
	m.InstanceBuffer = buf
	m.InstanceCount = uint32(len(instances))
	return nil
}

// InstanceByteSize returns the bytes held by the instance buffer's records.
func (m *VoxelFaceModel) InstanceByteSize() uint64 {
	return uint64(m.InstanceCount) * common.SizeOf[PositionInstanceData]()
}

// Release frees the quad and the instances.
func (m *VoxelFaceModel) Release(device gpu.Device) {
	if m.Mesh != nil {
		m.Mesh.Release(device)
	}
	if m.InstanceBuffer != nil {
		device.ReleaseResource(m.InstanceBuffer)
		m.InstanceBuffer = nil
	}
	m.InstanceCount = 0
}
