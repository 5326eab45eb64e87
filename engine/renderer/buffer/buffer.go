// Package buffer allocates typed GPU buffers from plain-data records.
package buffer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// Kind is the role a buffer plays in the pipeline. It decides the usage flags.
type Kind int

const (
	KindVertex Kind = iota
	KindIndex
	KindUniform
	KindInstance
	KindStorage
	KindIndirect
)

func (k Kind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindIndex:
		return "index"
	case KindUniform:
		return "uniform"
	case KindInstance:
		return "instance"
	case KindStorage:
		return "storage"
	case KindIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Usage returns the wgpu usage flags implied by the kind. Every kind carries CopyDst because
// contents are uploaded through the queue, and uniforms must stay overwritable.
//
// Returns:
//   - wgpu.BufferUsage: the usage flags for this kind
func (k Kind) Usage() wgpu.BufferUsage {
	switch k {
	case KindVertex, KindInstance:
		return wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case KindIndex:
		return wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	case KindUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	case KindStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
	case KindIndirect:
		return wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst
	default:
		return wgpu.BufferUsageCopyDst
	}
}

// minBufferSize keeps zero-length payloads (an empty instance list) allocatable.
const minBufferSize = 16

// CreateBytes allocates a buffer of the given kind and uploads data into it. The allocation is
// rounded up to a multiple of 4 bytes, and never smaller than 16 bytes.
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label for the buffer
//   - kind: buffer role deciding usage flags
//   - data: initial contents
//
// Returns:
//   - *wgpu.Buffer: the initialised buffer
//   - error: allocation or upload failed
func CreateBytes(device gpu.Device, label string, kind Kind, data []byte) (*wgpu.Buffer, error) {
	size := max(common.AlignUp(uint64(len(data)), 4), minBufferSize)

	buf, err := device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: kind.Usage(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s buffer %q: %w", kind, label, err)
	}

	if len(data) == 0 {
		return buf, nil
	}

	payload := data
	if rem := len(data) % 4; rem != 0 {
		payload = make([]byte, len(data)+4-rem)
		copy(payload, data)
	}
	if err := device.WriteBuffer(buf, 0, payload); err != nil {
		device.ReleaseResource(buf)
		return nil, fmt.Errorf("failed to upload %s buffer %q: %w", kind, label, err)
	}
	return buf, nil
}

// Create allocates a buffer of the given kind from a homogeneous slice of plain-data records.
// T must be a fixed-layout value type without pointers (float32/uint32 arrays and structs of them).
//
// Parameters:
//   - device: the device to allocate on
//   - label: debug label for the buffer
//   - kind: buffer role deciding usage flags
//   - data: records to upload
//
// Returns:
//   - *wgpu.Buffer: the initialised buffer
//   - error: allocation or upload failed
func Create[T any](device gpu.Device, label string, kind Kind, data []T) (*wgpu.Buffer, error) {
	return CreateBytes(device, label, kind, common.SliceToBytes(data))
}

// ByteSize returns the number of bytes len(data) records of T occupy.
func ByteSize[T any](data []T) uint64 {
	return common.SizeOf[T]() * uint64(len(data))
}
