// Package spatial holds the voxel partitions: an editable Octree for sparse worlds and a
// fixed-depth Quadtree for bulk terrain generation. Both keep their nodes in an arena where
// the eight children of a node occupy one contiguous block.
package spatial

import (
	"errors"
	"fmt"

	"github.com/lelepado01/RenderingEngine/common"
)

var (
	// ErrOutOfBounds is returned for a point outside the root region.
	ErrOutOfBounds = errors.New("point outside partition bounds")

	// ErrInvalidSize is returned for a root size that is zero or not a power of two.
	ErrInvalidSize = errors.New("partition size must be a power of two")
)

// noChildren marks a leaf.
const noChildren int32 = -1

// arena stores nodes in blocks of eight. Released blocks are reused before the slice grows.
type arena[T any] struct {
	nodes []T
	free  []int32
}

// alloc8 returns the index of a block of eight nodes initialised by fill(octant).
func (a *arena[T]) alloc8(fill func(octant int) T) int32 {
	var first int32
	if n := len(a.free); n > 0 {
		first = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		first = int32(len(a.nodes))
		var zero T
		for range 8 {
			a.nodes = append(a.nodes, zero)
		}
	}
	for i := range 8 {
		a.nodes[first+int32(i)] = fill(i)
	}
	return first
}

func (a *arena[T]) release(first int32) {
	a.free = append(a.free, first)
}

// live returns the number of nodes reachable from the root.
func (a *arena[T]) live() int {
	return len(a.nodes) - 8*len(a.free)
}

// octant returns the child index of p in a region starting at lo with the given half size:
// bit 0 is set past the x midpoint, bit 1 past y, bit 2 past z.
func octant(p, lo [3]uint32, half uint32) int {
	i := 0
	if p[0] >= lo[0]+half {
		i |= 1
	}
	if p[1] >= lo[1]+half {
		i |= 2
	}
	if p[2] >= lo[2]+half {
		i |= 4
	}
	return i
}

// childMin returns the minimum corner of octant i.
func childMin(lo [3]uint32, half uint32, i int) [3]uint32 {
	c := lo
	if i&1 != 0 {
		c[0] += half
	}
	if i&2 != 0 {
		c[1] += half
	}
	if i&4 != 0 {
		c[2] += half
	}
	return c
}

func validateSize(size uint32) error {
	if !common.IsPowerOfTwo(int(size)) {
		return fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	return nil
}

func checkBounds(p [3]uint32, size uint32) error {
	if p[0] >= size || p[1] >= size || p[2] >= size {
		return fmt.Errorf("%w: (%d, %d, %d) not in [0, %d)", ErrOutOfBounds, p[0], p[1], p[2], size)
	}
	return nil
}
