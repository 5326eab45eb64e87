package terrain

// TileMapBuilderOption is a function that configures a TileMap during construction.
type TileMapBuilderOption func(*tileMapImpl)

// WithChunksInView sets how many chunks are kept on each side of the centre chunk.
func WithChunksInView(n int) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.chunksInView = n
	}
}

// WithChunkSize sets the chunk side in tiles.
func WithChunkSize(n int) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.grid.chunkSize = n
	}
}

// WithTileSize sets the world size of one tile.
func WithTileSize(size float32) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.grid.tileSize = size
	}
}

// WithWorkers sets the maximum number of chunks generated at once.
func WithWorkers(n int) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.workers = n
	}
}

// WithSeed sets the seed of the default noise sources.
func WithSeed(seed int64) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.seed = seed
	}
}

// WithHeightSource is an option builder that replaces the noise heights, typically with a
// Heightmap.
//
// Parameters:
//   - h: the height source, safe for concurrent use
//
// Returns:
//   - TileMapBuilderOption: a function that applies the height option to a tileMapImpl
func WithHeightSource(h HeightSource) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.heights = h
	}
}

// WithMaterialMap replaces the default material map.
func WithMaterialMap(m *MaterialMap) TileMapBuilderOption {
	return func(t *tileMapImpl) {
		t.materials = m
	}
}
