package terrain

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu/gputest"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/tiff"
)

type heightFunc func(x, z float32) float32

func (f heightFunc) Height(x, z float32) float32 { return f(x, z) }

func flat(h float32) HeightSource {
	return heightFunc(func(_, _ float32) float32 { return h })
}

// uniformMaterials samples the noise at one point only, so material depends on height alone.
func uniformMaterials() *MaterialMap {
	return NewMaterialMap(1, 0)
}

func TestBand(t *testing.T) {
	assert.Equal(t, model.VoxelBlue, Band(0))
	assert.Equal(t, model.VoxelBlue, Band(0.39))
	assert.Equal(t, model.VoxelYellow, Band(0.4))
	assert.Equal(t, model.VoxelGreen, Band(0.55))
	assert.Equal(t, model.VoxelWhite, Band(0.6))
	assert.Equal(t, model.VoxelWhite, Band(1))
}

func encodeTIFF(t *testing.T, img image.Image) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, tiff.Encode(&buf, img, nil))
	return &buf
}

func TestDecodeHeightmap(t *testing.T) {
	img := image.NewGray16(image.Rect(0, 0, 4, 2))
	for y := range 2 {
		for x := range 4 {
			img.SetGray16(x, y, color.Gray16{Y: 2961})
		}
	}
	img.SetGray16(0, 0, color.Gray16{Y: 2961 + 54606})

	h, err := DecodeHeightmap(encodeTIFF(t, img), 2)
	require.NoError(t, err)
	w, d := h.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, d)

	// the map is centred on the origin: pixel (0, 0) covers x in [-4, -2), z in [-2, 0)
	assert.InDelta(t, MapHeight, h.Height(-4, -2), 1e-3)
	assert.InDelta(t, MapHeight, h.Height(-100, -100), 1e-3, "clamped to the corner")
	assert.InDelta(t, 0, h.Height(2, 0), 1e-3)
	assert.InDelta(t, 0, h.Height(100, 100), 1e-3)
}

func TestDecodeHeightmapRejectsGarbage(t *testing.T) {
	_, err := DecodeHeightmap(bytes.NewBufferString("not a tiff"), 1)
	assert.Error(t, err)
}

func TestOpenHeightSourceFallsBackToNoise(t *testing.T) {
	assert.IsType(t, &NoiseHeight{}, OpenHeightSource("", 2, 0))
	assert.IsType(t, &NoiseHeight{}, OpenHeightSource(t.TempDir()+"/missing.tif", 2, 0))
}

func TestNoiseHeight(t *testing.T) {
	a := NewNoiseHeight(7, DefaultNoiseFrequency, 50)
	b := NewNoiseHeight(7, DefaultNoiseFrequency, 50)
	for x := float32(-500); x <= 500; x += 37 {
		for z := float32(-500); z <= 500; z += 41 {
			h := a.Height(x, z)
			assert.GreaterOrEqual(t, h, float32(0))
			assert.LessOrEqual(t, h, float32(50))
			assert.Equal(t, h, b.Height(x, z))
		}
	}
}

func TestMaterialMap(t *testing.T) {
	m := NewMaterialMap(3, DefaultMaterialFrequency)
	for x := float32(0); x < 200; x += 13 {
		v := m.Value(x, x, 0)
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(0.5))
		assert.NotEqual(t, model.VoxelWhite, m.Material(x, x, 0))

		assert.GreaterOrEqual(t, m.Value(x, x, MapHeight), float32(0.5))
		assert.Contains(t, []uint32{model.VoxelGreen, model.VoxelWhite}, m.Material(x, x, MapHeight))
	}
}

func TestChunkFillsSlopeWithoutGaps(t *testing.T) {
	g := chunkGrid{chunkSize: 4, tileSize: 1}
	slope := heightFunc(func(x, _ float32) float32 { return x })

	c, err := generateChunk(g, ChunkCoord{0, 0}, slope, uniformMaterials())
	require.NoError(t, err)
	assert.Equal(t, 16, c.Tiles())
	assert.Equal(t, [3]float32{2, 0, 2}, c.Center)

	// columns 0..3 reach levels 0..3 and fill down to their left neighbour: 1+2+2+2 cells per row
	assert.Len(t, c.Instances(), 28)
	lo, hi := c.Bounds()
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mgl32.Vec3{4, 4, 4}, hi)
}

func TestChunkMergesUniformBlocks(t *testing.T) {
	g := chunkGrid{chunkSize: 4, tileSize: 1}
	plateau := heightFunc(func(x, z float32) float32 {
		if x >= 0 && x < 2 && z >= 0 && z < 2 {
			return 1
		}
		return 0
	})

	c, err := generateChunk(g, ChunkCoord{0, 0}, plateau, uniformMaterials())
	require.NoError(t, err)

	// the 2x2 plateau fills a 2x2x2 block that merges into one cube; 12 flat tiles stay unit sized
	require.Len(t, c.Instances(), 13)
	var merged []model.PositionInstanceData
	for _, in := range c.Instances() {
		if in.Position[3] == 2 {
			merged = append(merged, in)
		}
	}
	require.Len(t, merged, 1)
	assert.Equal(t, [4]float32{1, 1, 1, 2}, merged[0].Position)
}

func TestChunkKeepsColumnsTallerThanTheChunk(t *testing.T) {
	g := chunkGrid{chunkSize: 4, tileSize: 1}
	spire := heightFunc(func(x, z float32) float32 {
		if x >= 0 && x < 1 && z >= 0 && z < 1 {
			return 40
		}
		return 0
	})

	c, err := generateChunk(g, ChunkCoord{0, 0}, spire, uniformMaterials())
	require.NoError(t, err)

	// 41 unit cubes for the spire column and one for each of the 15 flat tiles
	assert.Len(t, c.Instances(), 56)
	top := float32(0)
	for _, in := range c.Instances() {
		top = max(top, in.Position[1])
	}
	assert.Equal(t, float32(40.5), top)
	_, hi := c.Bounds()
	assert.Equal(t, float32(41), hi[1])
	assert.Equal(t, uint32(64), g.treeSide(40))
}

func TestChunkGrid(t *testing.T) {
	g := chunkGrid{chunkSize: DefaultChunkSize, tileSize: DefaultTileSize}
	assert.Equal(t, float32(60), g.worldSize())
	assert.Equal(t, uint32(32), g.cellsPerSide())
	assert.Equal(t, ChunkCoord{0, 0}, g.coordOf([3]float32{59, 100, 0}))
	assert.Equal(t, ChunkCoord{-1, 1}, g.coordOf([3]float32{-0.5, 0, 61}))
	assert.Equal(t, [3]float32{-30, 0, 90}, g.center(ChunkCoord{-1, 1}))
}

func TestNewTileMapValidates(t *testing.T) {
	_, err := NewTileMap(WithChunkSize(0))
	assert.ErrorIs(t, err, ErrInvalidTileMap)
	_, err = NewTileMap(WithTileSize(-1))
	assert.ErrorIs(t, err, ErrInvalidTileMap)

	m, err := NewTileMap()
	require.NoError(t, err)
	assert.Equal(t, float32(300), m.MaxDistance())
}

func smallMap(t *testing.T) TileMap {
	t.Helper()
	m, err := NewTileMap(
		WithChunksInView(2),
		WithChunkSize(4),
		WithTileSize(1),
		WithWorkers(2),
		WithHeightSource(flat(0)),
		WithMaterialMap(uniformMaterials()),
	)
	require.NoError(t, err)
	return m
}

func TestTileMapUpdate(t *testing.T) {
	m := smallMap(t)

	added, dropped, err := m.Update([3]float32{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Zero(t, dropped)

	var coords []ChunkCoord
	for _, c := range m.Chunks() {
		coords = append(coords, c.Coord)
	}
	assert.Equal(t, []ChunkCoord{{-1, -1}, {-1, 0}, {0, -1}, {0, 0}}, coords)
	assert.Len(t, m.Instances(nil), 4*16)

	added, dropped, err = m.Update([3]float32{0, 50, 0})
	require.NoError(t, err)
	assert.Zero(t, added, "height does not move the map")
	assert.Zero(t, dropped)

	added, dropped, err = m.Update([3]float32{40, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 4, dropped)
	_, ok := m.Chunk(ChunkCoord{9, -1})
	assert.True(t, ok)
	_, ok = m.Chunk(ChunkCoord{0, 0})
	assert.False(t, ok)
	for _, c := range m.Chunks() {
		assert.Less(t, common.ManhattanXZ(c.Center, [3]float32{40, 0, 0}), m.MaxDistance())
	}
}

func TestTileMapUploadOnlyOnChange(t *testing.T) {
	d := gputest.NewDevice()
	cube, err := model.NewIndirectModel(d, model.Asset{Name: "tile", Meshes: []model.Geometry{{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2},
	}}}, nil)
	require.NoError(t, err)

	m := smallMap(t)
	_, _, err = m.Update([3]float32{0, 0, 0})
	require.NoError(t, err)

	changed, err := m.Upload(d, cube, nil)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint32(64), cube.InstanceCount)

	changed, err = m.Upload(d, cube, nil)
	require.NoError(t, err)
	assert.False(t, changed)

	// looking down -z from just above the ground leaves only the chunks in front
	cam := camera.NewFPSCamera(1, camera.WithPosition(mgl32.Vec3{0, 0.5, 0}))
	f := common.ExtractFrustum(cam.ViewProjection())
	assert.Len(t, m.Instances(&f), 2*16)
	changed, err = m.Upload(d, cube, &f)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, uint32(32), cube.InstanceCount)

	_, _, err = m.Update([3]float32{40, 0, 0})
	require.NoError(t, err)
	changed, err = m.Upload(d, cube, nil)
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestVoxelWorldFlat(t *testing.T) {
	w, err := NewVoxelWorld(8)
	require.NoError(t, err)
	assert.Equal(t, uint32(8), w.Size())
	assert.True(t, w.Changed())

	// two blue layers: each lower octant holds four full 2-voxel blocks over four empty ones
	instances := w.Instances()
	assert.Len(t, instances, 16)
	for _, in := range instances {
		assert.Equal(t, float32(2), in.Position[3])
		assert.Equal(t, float32(model.VoxelBlue), in.MaterialIndex[0])
	}
	assert.False(t, w.Changed())

	assert.Equal(t, 1, w.Surface(3, 3))
	m, err := w.Get(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, model.VoxelBlue, m)
	m, err = w.Get(0, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, spatial.Empty, m)
}

func TestVoxelWorldEdits(t *testing.T) {
	w, err := NewVoxelWorld(8)
	require.NoError(t, err)
	w.Instances()

	require.NoError(t, w.Set(0, 2, 0, spatial.Empty))
	assert.True(t, w.Changed())
	m, err := w.Get(0, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, Band(2.0/8), m)
	assert.Equal(t, 2, w.Surface(0, 0))

	require.NoError(t, w.Set(0, 7, 0, model.VoxelRed))
	m, err = w.Get(0, 7, 0)
	require.NoError(t, err)
	assert.Equal(t, model.VoxelRed, m)

	require.NoError(t, w.Clear(0, 7, 0))
	require.NoError(t, w.Clear(0, 2, 0))
	assert.Equal(t, 1, w.Surface(0, 0))
	assert.Len(t, w.Instances(), 16, "clearing the edits joins the blocks again")

	assert.ErrorIs(t, w.Set(8, 0, 0, model.VoxelRed), spatial.ErrOutOfBounds)
	assert.ErrorIs(t, w.Clear(0, 0, 9), spatial.ErrOutOfBounds)
	assert.Equal(t, -1, w.Surface(9, 0))
}

func TestVoxelWorldFromHeights(t *testing.T) {
	_, err := NewVoxelWorld(6)
	assert.ErrorIs(t, err, spatial.ErrInvalidSize)

	w, err := NewVoxelWorld(8, WithHeights(flat(8)), WithVerticalScale(0.25), WithFillHeight(2))
	require.NoError(t, err)

	// columns rise to 2 + 8*0.25 = 4: the lower half is four full blue octants
	instances := w.Instances()
	require.Len(t, instances, 4)
	for _, in := range instances {
		assert.Equal(t, float32(4), in.Position[3])
	}
	assert.Equal(t, 3, w.Surface(7, 7))
}
