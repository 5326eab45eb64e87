package terrain

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/spatial"
)

// ChunkCoord addresses a chunk on the xz grid.
type ChunkCoord [2]int32

// Chunk is a square of tiles whose columns are packed into a quadtree. Uniform spans of a
// material merge into larger cubes, so Instances is usually much shorter than the tile count.
type Chunk struct {
	Coord  ChunkCoord
	Center [3]float32

	min, max  mgl32.Vec3
	tiles     int
	instances []model.PositionInstanceData
}

// Instances returns the chunk's compacted cube instances.
func (c *Chunk) Instances() []model.PositionInstanceData {
	return c.instances
}

// Bounds returns the world box enclosing every cube of the chunk.
func (c *Chunk) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	return c.min, c.max
}

// Tiles returns the number of tile columns the chunk covers.
func (c *Chunk) Tiles() int {
	return c.tiles
}

// chunkGrid is the geometry shared by every chunk of a map.
type chunkGrid struct {
	chunkSize int
	tileSize  float32
}

func (g chunkGrid) worldSize() float32 {
	return float32(g.chunkSize) * g.tileSize
}

// origin returns the world position of tile (0, 0) of the chunk.
func (g chunkGrid) origin(c ChunkCoord) [3]float32 {
	s := g.worldSize()
	return [3]float32{float32(c[0]) * s, 0, float32(c[1]) * s}
}

func (g chunkGrid) center(c ChunkCoord) [3]float32 {
	o := g.origin(c)
	half := g.worldSize() / 2
	return [3]float32{o[0] + half, 0, o[2] + half}
}

// coordOf returns the chunk containing the world position.
func (g chunkGrid) coordOf(p [3]float32) ChunkCoord {
	s := g.worldSize()
	return ChunkCoord{
		int32(math.Floor(float64(p[0] / s))),
		int32(math.Floor(float64(p[2] / s))),
	}
}

// cellsPerSide is the quadtree size: the chunk side rounded up to a power of two.
func (g chunkGrid) cellsPerSide() uint32 {
	return g.treeSide(0)
}

// treeSide returns the smallest power of two covering both the chunk side and relief+1 levels.
func (g chunkGrid) treeSide(relief int32) uint32 {
	need := max(uint32(g.chunkSize), uint32(relief)+1)
	n := uint32(1)
	for n < need {
		n <<= 1
	}
	return n
}

// generateChunk samples heights and materials for every tile of the chunk and fills each
// column from its lowest 4-neighbour up to its own height, so steep slopes show no gaps. Column
// heights are measured in tiles above the chunk's lowest tile; the tree grows past the chunk side
// when the relief needs it.
func generateChunk(g chunkGrid, coord ChunkCoord, heights HeightSource, materials *MaterialMap) (*Chunk, error) {
	origin := g.origin(coord)
	n := g.chunkSize

	// one-tile border for the neighbour minimum
	level := make([]int32, (n+2)*(n+2))
	at := func(i, j int) *int32 { return &level[(j+1)*(n+2)+(i+1)] }
	world := func(i, j int) (float32, float32) {
		return origin[0] + float32(i)*g.tileSize, origin[2] + float32(j)*g.tileSize
	}
	lowest, highest := int32(math.MaxInt32), int32(math.MinInt32)
	for j := -1; j <= n; j++ {
		for i := -1; i <= n; i++ {
			x, z := world(i, j)
			l := int32(math.Floor(float64(heights.Height(x, z) / g.tileSize)))
			*at(i, j) = l
			if i >= 0 && i < n && j >= 0 && j < n {
				lowest = min(lowest, l)
				highest = max(highest, l)
			}
		}
	}

	side := g.treeSide(highest - lowest)
	base := float32(lowest) * g.tileSize
	tree, err := spatial.NewQuadtree(side,
		spatial.WithOrigin([3]float32{origin[0], base, origin[2]}),
		spatial.WithCellSize(g.tileSize))
	if err != nil {
		return nil, err
	}

	top := int32(0)
	for j := range n {
		for i := range n {
			l := *at(i, j)
			floor := min(l, *at(i-1, j), *at(i+1, j), *at(i, j-1), *at(i, j+1))
			hi := l - lowest
			lo := min(max(floor-lowest, 0), hi)
			top = max(top, hi)

			x, z := world(i, j)
			material := materials.Material(x, z, float32(l)*g.tileSize)
			for y := lo; y <= hi; y++ {
				if err := tree.Insert(uint32(i), uint32(y), uint32(j), material); err != nil {
					return nil, err
				}
			}
		}
	}

	c := &Chunk{
		Coord:     coord,
		Center:    g.center(coord),
		min:       mgl32.Vec3{origin[0], base, origin[2]},
		max:       mgl32.Vec3{origin[0] + g.worldSize(), base + float32(top+1)*g.tileSize, origin[2] + g.worldSize()},
		tiles:     n * n,
		instances: tree.Data(),
	}
	common.Logger().Debug("chunk generated", "x", coord[0], "z", coord[1],
		"side", side, "instances", len(c.instances), "nodes", tree.NodeCount())
	return c, nil
}
