package spatial

import (
	"github.com/lelepado01/RenderingEngine/engine/model"
)

// DefaultOctreeSize is the side of the world cube in voxels.
const DefaultOctreeSize = 64

// Empty is the material of an unoccupied voxel.
const Empty uint32 = 0

type octNode struct {
	min      [3]uint32
	size     uint32
	material uint32
	first    int32
}

// Leaf describes a leaf region of a partition.
type Leaf struct {
	Min      [3]uint32
	Size     uint32
	Depth    int
	Material uint32
}

// Octree is a sparse voxel volume. Leaves hold a material for their whole region; eight sibling
// leaves with the same material are joined into their parent after every edit.
type Octree struct {
	arena arena[octNode]
	size  uint32
}

// NewOctree creates an empty octree covering [0, size) on every axis.
//
// Parameters:
//   - size: side of the root cube, a power of two
//
// Returns:
//   - *Octree: the tree, a single empty leaf
//   - error: ErrInvalidSize
func NewOctree(size uint32) (*Octree, error) {
	if err := validateSize(size); err != nil {
		return nil, err
	}
	t := &Octree{size: size}
	t.arena.nodes = []octNode{{size: size, material: Empty, first: noChildren}}
	return t, nil
}

// Size returns the side of the root cube.
func (t *Octree) Size() uint32 {
	return t.size
}

// Insert sets the voxel at (x, y, z) to material.
func (t *Octree) Insert(x, y, z, material uint32) error {
	p := [3]uint32{x, y, z}
	if err := checkBounds(p, t.size); err != nil {
		return err
	}
	t.set(0, p, material)
	return nil
}

// Remove clears the voxel at (x, y, z) to Empty.
func (t *Octree) Remove(x, y, z uint32) error {
	return t.Insert(x, y, z, Empty)
}

// Get returns the material of the voxel at (x, y, z).
func (t *Octree) Get(x, y, z uint32) (uint32, error) {
	l, err := t.LeafAt(x, y, z)
	return l.Material, err
}

// LeafAt returns the leaf region containing (x, y, z).
func (t *Octree) LeafAt(x, y, z uint32) (Leaf, error) {
	p := [3]uint32{x, y, z}
	if err := checkBounds(p, t.size); err != nil {
		return Leaf{}, err
	}
	n, depth := int32(0), 0
	for t.arena.nodes[n].first != noChildren {
		node := t.arena.nodes[n]
		n = node.first + int32(octant(p, node.min, node.size/2))
		depth++
	}
	node := t.arena.nodes[n]
	return Leaf{Min: node.min, Size: node.size, Depth: depth, Material: node.material}, nil
}

// set writes material at p under node n, splitting leaves on the way down and joining on the
// way back up.
func (t *Octree) set(n int32, p [3]uint32, material uint32) {
	node := t.arena.nodes[n]
	if node.first == noChildren {
		if node.material == material {
			return
		}
		if node.size == 1 {
			t.arena.nodes[n].material = material
			return
		}
		t.split(n)
	}

	node = t.arena.nodes[n]
	t.set(node.first+int32(octant(p, node.min, node.size/2)), p, material)
	t.join(n)
}

// split gives leaf n eight leaf children carrying its material.
func (t *Octree) split(n int32) {
	parent := t.arena.nodes[n]
	half := parent.size / 2
	first := t.arena.alloc8(func(i int) octNode {
		return octNode{min: childMin(parent.min, half, i), size: half, material: parent.material, first: noChildren}
	})
	t.arena.nodes[n].first = first
	t.arena.nodes[n].material = Empty
}

// join collapses n into a leaf when its children are leaves sharing one material.
func (t *Octree) join(n int32) {
	first := t.arena.nodes[n].first
	if first == noChildren {
		return
	}
	material := t.arena.nodes[first].material
	for i := range int32(8) {
		c := t.arena.nodes[first+i]
		if c.first != noChildren || c.material != material {
			return
		}
	}
	t.arena.release(first)
	t.arena.nodes[n].first = noChildren
	t.arena.nodes[n].material = material
}

// Leaves returns every leaf in octant order.
func (t *Octree) Leaves() []Leaf {
	var out []Leaf
	t.walk(0, 0, func(n octNode, depth int) {
		out = append(out, Leaf{Min: n.min, Size: n.size, Depth: depth, Material: n.material})
	})
	return out
}

func (t *Octree) walk(n int32, depth int, visit func(octNode, int)) {
	node := t.arena.nodes[n]
	if node.first == noChildren {
		visit(node, depth)
		return
	}
	for i := range int32(8) {
		t.walk(node.first+i, depth+1, visit)
	}
}

// Instances returns one instance per non-empty leaf, centred on the leaf and scaled to its size.
// The order follows the tree and changes with edits.
func (t *Octree) Instances() []model.PositionInstanceData {
	var out []model.PositionInstanceData
	t.walk(0, 0, func(n octNode, _ int) {
		if n.material == Empty {
			return
		}
		half := float32(n.size) / 2
		center := [3]float32{float32(n.min[0]) + half, float32(n.min[1]) + half, float32(n.min[2]) + half}
		out = append(out, model.NewPositionInstance(center, float32(n.size), n.material))
	})
	return out
}

// NodeCount returns the number of live nodes, root included.
func (t *Octree) NodeCount() int {
	return t.arena.live()
}
