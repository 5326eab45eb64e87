package common

import (
	"math"
	"math/bits"
	"unsafe"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of plain-data records
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}

// SizeOf returns the size in bytes of one record of type T.
func SizeOf[T any]() uint64 {
	var zero T
	return uint64(unsafe.Sizeof(zero))
}

// ManhattanXZ returns the taxicab distance between a and b on the horizontal plane.
// The vertical component is ignored so that terrain chunks are kept or dropped by map position only.
//
// Parameters:
//   - a, b: world-space positions
//
// Returns:
//   - float32: |a.x-b.x| + |a.z-b.z|
func ManhattanXZ(a, b [3]float32) float32 {
	return float32(math.Abs(float64(a[0]-b[0])) + math.Abs(float64(a[2]-b[2])))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns floor(log2(n)) for n > 0, and 0 otherwise.
func Log2(n int) int {
	if n <= 0 {
		return 0
	}
	return bits.Len(uint(n)) - 1
}

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
func AlignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
