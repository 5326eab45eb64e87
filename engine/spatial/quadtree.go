package spatial

import (
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/model"
)

type quadNode struct {
	min       [3]uint32
	size      uint32
	remaining int
	full      bool
	material  uint32
	first     int32
}

// Quadtree is a fixed-depth cubic partition for terrain. A root of 2^k cells per side subdivides
// at most k times; reaching the last level marks the cell full. Eight full sibling leaves are
// merged whatever their materials, so solid regions emit a single scaled instance tinted with
// the material of the first octant. Eight empty sibling leaves collapse back into their parent.
type Quadtree struct {
	arena        arena[quadNode]
	cellsPerSide uint32
	origin       [3]float32
	cellSize     float32
}

// QuadtreeOption configures a Quadtree.
type QuadtreeOption func(*Quadtree)

// WithOrigin places cell (0, 0, 0) at origin in world units.
func WithOrigin(origin [3]float32) QuadtreeOption {
	return func(q *Quadtree) {
		q.origin = origin
	}
}

// WithCellSize sets the world size of one cell.
func WithCellSize(size float32) QuadtreeOption {
	return func(q *Quadtree) {
		q.cellSize = size
	}
}

// NewQuadtree creates an empty tree of cellsPerSide cells per axis.
//
// Parameters:
//   - cellsPerSide: a power of two, 2^k
//   - options: world placement
//
// Returns:
//   - *Quadtree: the tree, a single empty leaf with k subdivisions remaining
//   - error: ErrInvalidSize
func NewQuadtree(cellsPerSide uint32, options ...QuadtreeOption) (*Quadtree, error) {
	if err := validateSize(cellsPerSide); err != nil {
		return nil, err
	}
	q := &Quadtree{cellsPerSide: cellsPerSide, cellSize: 1}
	for _, option := range options {
		option(q)
	}
	q.arena.nodes = []quadNode{{
		size:      cellsPerSide,
		remaining: common.Log2(int(cellsPerSide)),
		first:     noChildren,
	}}
	return q, nil
}

// CellsPerSide returns the root size in cells.
func (q *Quadtree) CellsPerSide() uint32 {
	return q.cellsPerSide
}

// Insert marks the cell at (x, y, z) full with material. Inside a merged region the cell is
// already full and the call changes nothing.
func (q *Quadtree) Insert(x, y, z, material uint32) error {
	p := [3]uint32{x, y, z}
	if err := checkBounds(p, q.cellsPerSide); err != nil {
		return err
	}
	q.insert(0, p, material)
	return nil
}

func (q *Quadtree) insert(n int32, p [3]uint32, material uint32) {
	node := q.arena.nodes[n]
	if node.first == noChildren {
		if node.remaining == 0 {
			q.arena.nodes[n].full = true
			q.arena.nodes[n].material = material
			return
		}
		// a merged region is already solid and keeps its representative material
		if node.full {
			return
		}
		q.split(n)
	}

	node = q.arena.nodes[n]
	q.insert(node.first+int32(octant(p, node.min, node.size/2)), p, material)
	q.merge(n)
}

// Remove clears the cell at (x, y, z). A merged leaf on the way down is split first so its
// other cells stay full.
func (q *Quadtree) Remove(x, y, z uint32) error {
	p := [3]uint32{x, y, z}
	if err := checkBounds(p, q.cellsPerSide); err != nil {
		return err
	}
	q.remove(0, p)
	return nil
}

func (q *Quadtree) remove(n int32, p [3]uint32) {
	node := q.arena.nodes[n]
	if node.first == noChildren {
		if !node.full {
			return
		}
		if node.remaining == 0 {
			q.arena.nodes[n].full = false
			q.arena.nodes[n].material = 0
			return
		}
		q.split(n)
	}

	node = q.arena.nodes[n]
	q.remove(node.first+int32(octant(p, node.min, node.size/2)), p)
	q.merge(n)
}

func (q *Quadtree) split(n int32) {
	parent := q.arena.nodes[n]
	if parent.remaining <= 0 {
		panic("spatial: split below the last quadtree level")
	}
	half := parent.size / 2
	first := q.arena.alloc8(func(i int) quadNode {
		return quadNode{
			min:       childMin(parent.min, half, i),
			size:      half,
			remaining: parent.remaining - 1,
			full:      parent.full,
			material:  parent.material,
			first:     noChildren,
		}
	})
	q.arena.nodes[n].first = first
	q.arena.nodes[n].full = false
	q.arena.nodes[n].material = 0
}

// merge collapses n when its children are leaves that are either all full or all empty.
func (q *Quadtree) merge(n int32) {
	first := q.arena.nodes[n].first
	if first == noChildren {
		return
	}
	full := q.arena.nodes[first].full
	for i := range int32(8) {
		c := q.arena.nodes[first+i]
		if c.first != noChildren || c.full != full {
			return
		}
	}
	material := uint32(0)
	if full {
		material = q.arena.nodes[first].material
	}
	q.arena.release(first)
	q.arena.nodes[n].first = noChildren
	q.arena.nodes[n].full = full
	q.arena.nodes[n].material = material
}

// IsFull reports whether the cell at (x, y, z) is full.
func (q *Quadtree) IsFull(x, y, z uint32) (bool, error) {
	p := [3]uint32{x, y, z}
	if err := checkBounds(p, q.cellsPerSide); err != nil {
		return false, err
	}
	n := int32(0)
	for q.arena.nodes[n].first != noChildren {
		node := q.arena.nodes[n]
		n = node.first + int32(octant(p, node.min, node.size/2))
	}
	return q.arena.nodes[n].full, nil
}

func (q *Quadtree) walk(n int32, depth int, visit func(quadNode, int)) {
	node := q.arena.nodes[n]
	if node.first == noChildren {
		visit(node, depth)
		return
	}
	for i := range int32(8) {
		q.walk(node.first+i, depth+1, visit)
	}
}

// Leaves returns every leaf in octant order. Material is zero for empty leaves.
func (q *Quadtree) Leaves() []Leaf {
	var out []Leaf
	q.walk(0, 0, func(n quadNode, depth int) {
		l := Leaf{Min: n.min, Size: n.size, Depth: depth}
		if n.full {
			l.Material = n.material
		}
		out = append(out, l)
	})
	return out
}

// FullLeaves returns the number of full leaves.
func (q *Quadtree) FullLeaves() int {
	count := 0
	q.walk(0, 0, func(n quadNode, _ int) {
		if n.full {
			count++
		}
	})
	return count
}

// Data returns one instance per full leaf in world units: the leaf's centre, its side, and its
// material.
func (q *Quadtree) Data() []model.PositionInstanceData {
	var out []model.PositionInstanceData
	q.walk(0, 0, func(n quadNode, _ int) {
		if !n.full {
			return
		}
		half := float32(n.size) / 2
		center := [3]float32{
			q.origin[0] + (float32(n.min[0])+half)*q.cellSize,
			q.origin[1] + (float32(n.min[1])+half)*q.cellSize,
			q.origin[2] + (float32(n.min[2])+half)*q.cellSize,
		}
		out = append(out, model.NewPositionInstance(center, float32(n.size)*q.cellSize, n.material))
	})
	return out
}

// NodeCount returns the number of live nodes, root included.
func (q *Quadtree) NodeCount() int {
	return q.arena.live()
}
