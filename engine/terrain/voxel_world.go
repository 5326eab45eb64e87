package terrain

import (
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/spatial"
)

// DefaultVerticalScale converts world height into voxels for NewVoxelWorld.
const DefaultVerticalScale = 0.25

// VoxelWorld is an editable voxel volume filled from a height function. Each column rises to
// fillHeight plus the scaled height at its centre; voxels take the band of their own height.
type VoxelWorld struct {
	tree    *spatial.Octree
	changed bool
}

// VoxelWorldBuilderOption is a function that configures world generation.
type VoxelWorldBuilderOption func(*voxelWorldOptions)

type voxelWorldOptions struct {
	fillHeight    int
	verticalScale float32
	heights       HeightSource
}

// WithFillHeight sets the base column height in voxels.
func WithFillHeight(n int) VoxelWorldBuilderOption {
	return func(o *voxelWorldOptions) {
		o.fillHeight = n
	}
}

// WithVerticalScale sets voxels per world unit of height.
func WithVerticalScale(s float32) VoxelWorldBuilderOption {
	return func(o *voxelWorldOptions) {
		o.verticalScale = s
	}
}

// WithHeights sets the height function. Without one the world is flat at the fill height.
func WithHeights(h HeightSource) VoxelWorldBuilderOption {
	return func(o *voxelWorldOptions) {
		o.heights = h
	}
}

// NewVoxelWorld fills an octree of the given size.
//
// Parameters:
//   - size: side of the world cube in voxels, a power of two
//   - options: variadic list of VoxelWorldBuilderOption functions
//
// Returns:
//   - *VoxelWorld: the filled world
//   - error: spatial.ErrInvalidSize
func NewVoxelWorld(size uint32, options ...VoxelWorldBuilderOption) (*VoxelWorld, error) {
	tree, err := spatial.NewOctree(size)
	if err != nil {
		return nil, err
	}
	o := voxelWorldOptions{fillHeight: int(size / 4), verticalScale: DefaultVerticalScale}
	for _, option := range options {
		option(&o)
	}

	w := &VoxelWorld{tree: tree, changed: true}
	for z := range size {
		for x := range size {
			top := o.fillHeight
			if o.heights != nil {
				top += int(o.heights.Height(float32(x)+0.5, float32(z)+0.5) * o.verticalScale)
			}
			top = min(max(top, 1), int(size))
			for y := range uint32(top) {
				if err := tree.Insert(x, y, z, w.materialAt(y)); err != nil {
					return nil, err
				}
			}
		}
	}
	common.Logger().Debug("voxel world filled", "size", size, "nodes", tree.NodeCount())
	return w, nil
}

func (w *VoxelWorld) materialAt(y uint32) uint32 {
	return Band(float32(y) / float32(w.tree.Size()))
}

// Size returns the side of the world cube.
func (w *VoxelWorld) Size() uint32 {
	return w.tree.Size()
}

// Set places a voxel of material, or of its height band when material is spatial.Empty.
func (w *VoxelWorld) Set(x, y, z, material uint32) error {
	if material == spatial.Empty {
		material = w.materialAt(y)
	}
	if err := w.tree.Insert(x, y, z, material); err != nil {
		return err
	}
	w.changed = true
	return nil
}

// Clear empties a voxel.
func (w *VoxelWorld) Clear(x, y, z uint32) error {
	if err := w.tree.Remove(x, y, z); err != nil {
		return err
	}
	w.changed = true
	return nil
}

// Get returns the material at a voxel, spatial.Empty when unoccupied.
func (w *VoxelWorld) Get(x, y, z uint32) (uint32, error) {
	return w.tree.Get(x, y, z)
}

// Surface returns the height of the topmost occupied voxel of column (x, z), or -1 when the
// column is empty or out of bounds.
func (w *VoxelWorld) Surface(x, z uint32) int {
	for y := int(w.tree.Size()) - 1; y >= 0; y-- {
		m, err := w.tree.Get(x, uint32(y), z)
		if err != nil {
			return -1
		}
		if m != spatial.Empty {
			return y
		}
	}
	return -1
}

// Instances returns one instance per occupied leaf and marks the world clean.
func (w *VoxelWorld) Instances() []model.PositionInstanceData {
	w.changed = false
	return w.tree.Instances()
}

// Changed reports whether the world was edited since the last Instances call.
func (w *VoxelWorld) Changed() bool {
	return w.changed
}

// NodeCount returns the octree's live node count.
func (w *VoxelWorld) NodeCount() int {
	return w.tree.NodeCount()
}
