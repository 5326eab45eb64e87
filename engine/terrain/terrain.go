// Package terrain generates the procedural content the voxel and indirect engines draw: a tile
// map of quadtree chunks streamed around the camera, and an editable octree voxel world. Both
// read heights from a HeightSource, either a TIFF heightmap or simplex noise.
package terrain

import (
	"errors"

	"github.com/lelepado01/RenderingEngine/engine/model"
)

// MapHeight is the world height of the highest heightmap sample.
const MapHeight float32 = 250

// Raw heightmap samples are normalised as (v - heightmapOffset) / heightmapRange * MapHeight.
const (
	heightmapOffset float32 = 2961
	heightmapRange  float32 = 54606
)

// Material thresholds over the mixed noise/height value. The height contributes half.
const (
	heightContribution float32 = 0.5

	thresholdWater float32 = 0.4
	thresholdSand  float32 = 0.5
	thresholdGrass float32 = 0.6
)

var (
	// ErrInvalidTileMap is returned for non-positive chunk or tile parameters.
	ErrInvalidTileMap = errors.New("invalid tile map parameters")

	// ErrEmptyHeightmap is returned for a heightmap without pixels.
	ErrEmptyHeightmap = errors.New("heightmap has no samples")
)

// HeightSource returns the terrain height at a world position. Implementations must be safe for
// concurrent use: chunks are generated in parallel.
type HeightSource interface {
	Height(x, z float32) float32
}

// Band maps a value in [0, 1] to a palette material using the fixed thresholds: water, sand,
// grass, snow.
func Band(v float32) uint32 {
	switch {
	case v < thresholdWater:
		return model.VoxelBlue
	case v < thresholdSand:
		return model.VoxelYellow
	case v < thresholdGrass:
		return model.VoxelGreen
	default:
		return model.VoxelWhite
	}
}
