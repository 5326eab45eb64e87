package terrain

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/model"
)

// Tile map defaults.
const (
	DefaultChunksInView = 5
	DefaultChunkSize    = 30
	DefaultTileSize     = 2
	DefaultWorkers      = 4
	DefaultSeed         = 0
)

// TileMap streams terrain chunks around a moving position. Chunks farther than
// chunksInView*chunkSize*tileSize (Manhattan, xz) are dropped; missing chunks in range are
// generated in parallel.
type TileMap interface {
	// Update drops chunks out of range of position and generates the missing ones. It blocks
	// until every new chunk is built.
	//
	// Parameters:
	//   - position: the world position the map is centred on
	//
	// Returns:
	//   - int: chunks added
	//   - int: chunks dropped
	//   - error: a chunk failed to generate; chunks built before it are kept
	Update(position [3]float32) (int, int, error)

	// Instances returns the cube instances of every chunk that intersects the frustum, or of
	// every chunk when frustum is nil.
	Instances(frustum *common.Frustum) []model.PositionInstanceData

	// Upload writes Instances(frustum) into m when the set of visible chunks changed since the
	// last upload.
	//
	// Parameters:
	//   - device: the device to allocate on
	//   - m: the terrain model
	//   - frustum: the camera frustum, may be nil
	//
	// Returns:
	//   - bool: whether m was rewritten
	//   - error: an allocation failure
	Upload(device gpu.Device, m *model.IndirectModel, frustum *common.Frustum) (bool, error)

	// Chunks returns the loaded chunks sorted by coordinate.
	Chunks() []*Chunk

	// Chunk returns the loaded chunk at coord.
	Chunk(coord ChunkCoord) (*Chunk, bool)

	// MaxDistance returns the retention distance in world units.
	MaxDistance() float32

	// ChunkCoordOf returns the chunk containing a world position.
	ChunkCoordOf(position [3]float32) ChunkCoord
}

// tileMapImpl is the implementation of the TileMap interface.
type tileMapImpl struct {
	grid         chunkGrid
	chunksInView int
	workers      int
	seed         int64
	heights      HeightSource
	materials    *MaterialMap

	pool   worker.DynamicWorkerPool
	chunks map[ChunkCoord]*Chunk

	// uploaded is the sorted visible set last written by Upload; nil before the first upload.
	uploaded []ChunkCoord
	dirty    bool
}

var _ TileMap = &tileMapImpl{}

// NewTileMap creates an empty tile map. Call Update to load the chunks around a position.
//
// Parameters:
//   - options: variadic list of TileMapBuilderOption functions
//
// Returns:
//   - TileMap: the map
//   - error: ErrInvalidTileMap
func NewTileMap(options ...TileMapBuilderOption) (TileMap, error) {
	t := &tileMapImpl{
		grid:         chunkGrid{chunkSize: DefaultChunkSize, tileSize: DefaultTileSize},
		chunksInView: DefaultChunksInView,
		workers:      DefaultWorkers,
		seed:         DefaultSeed,
		chunks:       make(map[ChunkCoord]*Chunk),
	}
	for _, option := range options {
		option(t)
	}
	if t.grid.chunkSize <= 0 || t.grid.tileSize <= 0 || t.chunksInView <= 0 || t.workers <= 0 {
		return nil, fmt.Errorf("%w: chunks in view %d, chunk size %d, tile size %g, workers %d",
			ErrInvalidTileMap, t.chunksInView, t.grid.chunkSize, t.grid.tileSize, t.workers)
	}
	if t.heights == nil {
		t.heights = NewNoiseHeight(t.seed, DefaultNoiseFrequency, DefaultNoiseAmplitude)
	}
	if t.materials == nil {
		t.materials = NewMaterialMap(t.seed, DefaultMaterialFrequency)
	}
	t.pool = worker.NewDynamicWorkerPool(t.workers, 256, 1*time.Second)
	return t, nil
}

func (t *tileMapImpl) MaxDistance() float32 {
	return float32(t.chunksInView) * t.grid.worldSize()
}

func (t *tileMapImpl) ChunkCoordOf(position [3]float32) ChunkCoord {
	return t.grid.coordOf(position)
}

func (t *tileMapImpl) Update(position [3]float32) (int, int, error) {
	limit := t.MaxDistance()

	dropped := 0
	for coord, c := range t.chunks {
		if common.ManhattanXZ(c.Center, position) >= limit {
			delete(t.chunks, coord)
			dropped++
		}
	}

	center := t.grid.coordOf(position)
	var missing []ChunkCoord
	for i := center[0] - int32(t.chunksInView); i < center[0]+int32(t.chunksInView); i++ {
		for j := center[1] - int32(t.chunksInView); j < center[1]+int32(t.chunksInView); j++ {
			coord := ChunkCoord{i, j}
			if _, ok := t.chunks[coord]; ok {
				continue
			}
			if common.ManhattanXZ(t.grid.center(coord), position) < limit {
				missing = append(missing, coord)
			}
		}
	}

	built, err := t.generate(missing)
	for _, c := range built {
		t.chunks[c.Coord] = c
	}
	if len(built) > 0 || dropped > 0 {
		t.dirty = true
		common.Logger().Debug("tile map updated", "added", len(built), "dropped", dropped, "loaded", len(t.chunks))
	}
	return len(built), dropped, err
}

// generate builds the chunks on the worker pool, one task per chunk, and waits for all of them.
func (t *tileMapImpl) generate(coords []ChunkCoord) ([]*Chunk, error) {
	if len(coords) == 0 {
		return nil, nil
	}

	results := make([]*Chunk, len(coords))
	errs := make([]error, len(coords))
	var wg sync.WaitGroup
	for i, coord := range coords {
		wg.Add(1)
		t.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				results[i], errs[i] = generateChunk(t.grid, coord, t.heights, t.materials)
				return nil, nil
			},
		})
	}
	wg.Wait()

	built := make([]*Chunk, 0, len(coords))
	var first error
	for i, c := range results {
		if errs[i] != nil {
			if first == nil {
				first = fmt.Errorf("chunk (%d, %d): %w", coords[i][0], coords[i][1], errs[i])
			}
			continue
		}
		built = append(built, c)
	}
	return built, first
}

func (t *tileMapImpl) Chunks() []*Chunk {
	out := make([]*Chunk, 0, len(t.chunks))
	for _, c := range t.chunks {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Chunk) int { return compareCoords(a.Coord, b.Coord) })
	return out
}

func (t *tileMapImpl) Chunk(coord ChunkCoord) (*Chunk, bool) {
	c, ok := t.chunks[coord]
	return c, ok
}

func (t *tileMapImpl) visible(frustum *common.Frustum) []*Chunk {
	chunks := t.Chunks()
	if frustum == nil {
		return chunks
	}
	out := chunks[:0]
	for _, c := range chunks {
		if frustum.IntersectsAABB(c.Bounds()) {
			out = append(out, c)
		}
	}
	return out
}

func (t *tileMapImpl) Instances(frustum *common.Frustum) []model.PositionInstanceData {
	var out []model.PositionInstanceData
	for _, c := range t.visible(frustum) {
		out = append(out, c.instances...)
	}
	return out
}

func (t *tileMapImpl) Upload(device gpu.Device, m *model.IndirectModel, frustum *common.Frustum) (bool, error) {
	chunks := t.visible(frustum)
	coords := make([]ChunkCoord, len(chunks))
	for i, c := range chunks {
		coords[i] = c.Coord
	}
	if !t.dirty && t.uploaded != nil && slices.Equal(coords, t.uploaded) {
		return false, nil
	}

	var instances []model.PositionInstanceData
	for _, c := range chunks {
		instances = append(instances, c.instances...)
	}
	if err := m.UpdateInstances(device, instances); err != nil {
		return false, fmt.Errorf("failed to upload terrain: %w", err)
	}
	t.uploaded = coords
	t.dirty = false
	return true, nil
}

func compareCoords(a, b ChunkCoord) int {
	if a[0] != b[0] {
		return int(a[0] - b[0])
	}
	return int(a[1] - b[1])
}
