package model

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
)

// Geometry is parsed, single-index triangle geometry. Positions, Normals and TexCoords are
// parallel; Normals and TexCoords may be empty.
type Geometry struct {
	Name          string
	Positions     [][3]float32
	Normals       [][3]float32
	TexCoords     [][2]float32
	Indices       []uint32
	MaterialIndex int
}

// Asset is everything a model file yields.
type Asset struct {
	Name      string
	Meshes    []Geometry
	Materials []Material
}

// Mesh is one uploaded piece of geometry.
type Mesh struct {
	Name          string
	VertexBuffer  *wgpu.Buffer
	IndexBuffer   *wgpu.Buffer
	IndexCount    uint32
	VertexCount   uint32
	MaterialIndex int
}

// NewMesh uploads vertices and 32-bit indices.
//
// Parameters:
//   - device: the device to allocate on
//   - name: debug label
//   - vertices: vertex records matching the pipeline's slot 0 layout
//   - indices: triangle (or line) list indices
//   - materialIndex: the material the mesh is drawn with
//
// Returns:
//   - *Mesh: the uploaded mesh
//   - error: a device failure
func NewMesh[V any](device gpu.Device, name string, vertices []V, indices []uint32, materialIndex int) (*Mesh, error) {
	vb, err := buffer.Create(device, name+" vertices", buffer.KindVertex, vertices)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", name, err)
	}
	ib, err := buffer.Create(device, name+" indices", buffer.KindIndex, indices)
	if err != nil {
		device.ReleaseResource(vb)
		return nil, fmt.Errorf("mesh %q: %w", name, err)
	}
	return &Mesh{
		Name:          name,
		VertexBuffer:  vb,
		IndexBuffer:   ib,
		IndexCount:    uint32(len(indices)),
		VertexCount:   uint32(len(vertices)),
		MaterialIndex: materialIndex,
	}, nil
}

// Release frees the mesh buffers.
func (m *Mesh) Release(device gpu.Device) {
	if m.VertexBuffer != nil {
		device.ReleaseResource(m.VertexBuffer)
		m.VertexBuffer = nil
	}
	if m.IndexBuffer != nil {
		device.ReleaseResource(m.IndexBuffer)
		m.IndexBuffer = nil
	}
}

func releaseMeshes(device gpu.Device, meshes []*Mesh) {
	for _, m := range meshes {
		m.Release(device)
	}
}

// ComputeNormals returns smooth per-vertex normals: each triangle's area-weighted face normal
// is added to its three corners and the sums are normalised. Vertices no triangle touches get
// the zero vector.
//
// Parameters:
//   - positions: vertex positions
//   - indices: triangle list indices into positions
//
// Returns:
//   - [][3]float32: one unit normal per position
func ComputeNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	sums := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		pa, pb, pc := mgl32.Vec3(positions[a]), mgl32.Vec3(positions[b]), mgl32.Vec3(positions[c])
		// unnormalised cross product: its length is twice the triangle area
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		sums[a] = sums[a].Add(n)
		sums[b] = sums[b].Add(n)
		sums[c] = sums[c].Add(n)
	}

	normals := make([][3]float32, len(positions))
	for i, s := range sums {
		if s.Len() > 0 {
			normals[i] = s.Normalize()
		}
	}
	return normals
}

// normalsOf returns g's normals, computing them when the source had none.
func normalsOf(g Geometry) [][3]float32 {
	if len(g.Normals) == len(g.Positions) {
		return g.Normals
	}
	return ComputeNormals(g.Positions, g.Indices)
}

// StandardVertices expands g into StandardModelVertex records tagged with modelID.
func StandardVertices(g Geometry, modelID float32) []StandardModelVertex {
	normals := normalsOf(g)
	out := make([]StandardModelVertex, len(g.Positions))
	for i, p := range g.Positions {
		v := StandardModelVertex{
			Position: [4]float32{p[0], p[1], p[2], 1},
			Normal:   [4]float32{normals[i][0], normals[i][1], normals[i][2], 0},
			ModelID:  [4]float32{modelID, 0, 0, 0},
		}
		if i < len(g.TexCoords) {
			v.TexCoords = [4]float32{g.TexCoords[i][0], g.TexCoords[i][1], 0, 0}
		}
		out[i] = v
	}
	return out
}

// InstancedVertices expands g into InstancedModelVertex records.
func InstancedVertices(g Geometry) []InstancedModelVertex {
	normals := normalsOf(g)
	out := make([]InstancedModelVertex, len(g.Positions))
	for i, p := range g.Positions {
		v := InstancedModelVertex{
			Position: [4]float32{p[0], p[1], p[2], 1},
			Normal:   [4]float32{normals[i][0], normals[i][1], normals[i][2], 0},
		}
		if i < len(g.TexCoords) {
			v.TexCoords = g.TexCoords[i]
		}
		out[i] = v
	}
	return out
}
