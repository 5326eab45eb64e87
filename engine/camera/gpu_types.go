package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// UniformSize is the byte size of GPUCameraUniform.
const UniformSize = 80

// GPUCameraUniform is the layout of the camera uniform buffer: four view-projection columns
// followed by the camera position row. Matches the WGSL struct
//
//	struct Camera { view_proj: mat4x4<f32>, position: vec4<f32> }
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset  0: column-major view-projection matrix
	Position [4]float32  // offset 64: world-space position, w = 0
}

// Size returns the size of the GPUCameraUniform struct in bytes.
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a little-endian byte buffer for GPU upload.
//
// Returns:
//   - []byte: the serialized uniform (UniformSize bytes)
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i, v := range g.ViewProj {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	for i, v := range g.Position {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(v))
	}
	return buf
}
