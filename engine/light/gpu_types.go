package light

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// MaxGPULights caps how many lights MarshalLights writes. The shader iterates arrayLength of
// the storage array, so the cap only bounds the buffer.
const MaxGPULights = 256

// GPULight is the storage layout of one Phong light: four vec4 rows, the w of each row unused.
// Matches the WGSL struct
//
//	struct Light { position: vec4<f32>, ambient: vec4<f32>, diffuse: vec4<f32>, specular: vec4<f32> }
type GPULight struct {
	Position [4]float32 // offset  0
	Ambient  [4]float32 // offset 16
	Diffuse  [4]float32 // offset 32
	Specular [4]float32 // offset 48
}

// Size returns the size of the GPULight struct in bytes (64).
func (g *GPULight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPULight struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func (g *GPULight) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec4(buf[0:], g.Position)
	putVec4(buf[16:], g.Ambient)
	putVec4(buf[32:], g.Diffuse)
	putVec4(buf[48:], g.Specular)
	return buf
}

// GPUDirectionalLight is the uniform layout of a directional light: direction then colour,
// each with w = 1.
type GPUDirectionalLight struct {
	Direction [4]float32 // offset  0
	Color     [4]float32 // offset 16
}

// Size returns the size of the GPUDirectionalLight struct in bytes (32).
func (g *GPUDirectionalLight) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUDirectionalLight struct into a byte buffer suitable for GPU upload.
func (g *GPUDirectionalLight) Marshal() []byte {
	buf := make([]byte, g.Size())
	putVec4(buf[0:], g.Direction)
	putVec4(buf[16:], g.Color)
	return buf
}

// MarshalLights writes the enabled lights, in order, as a GPULight array. Lights past
// MaxGPULights are dropped. With no enabled light a single zero light is written so the
// storage binding is never empty; it contributes nothing to shading.
//
// Parameters:
//   - lights: the lights to marshal
//
// Returns:
//   - []byte: the storage buffer contents
//   - int: how many lights were written, not counting the zero placeholder
func MarshalLights(lights []Light) ([]byte, int) {
	size := (&GPULight{}).Size()
	buf := make([]byte, 0, size*max(1, min(len(lights), MaxGPULights)))
	count := 0
	for _, l := range lights {
		if !l.Enabled() {
			continue
		}
		if count == MaxGPULights {
			break
		}
		g := ToGPULight(l)
		buf = append(buf, g.Marshal()...)
		count++
	}
	if count == 0 {
		buf = make([]byte, size)
	}
	return buf, count
}

// ToGPULight converts a Light into its storage layout.
func ToGPULight(l Light) GPULight {
	return GPULight{
		Position: vec4(l.Position(), 0),
		Ambient:  vec4(l.Ambient(), 0),
		Diffuse:  vec4(l.Diffuse(), 0),
		Specular: vec4(l.Specular(), 0),
	}
}

func vec4(v [3]float32, w float32) [4]float32 {
	return [4]float32{v[0], v[1], v[2], w}
}

func putVec4(buf []byte, v [4]float32) {
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}
