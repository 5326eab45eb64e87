package scene

import (
	"fmt"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/render_engine"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/buffer"
	"github.com/lelepado01/RenderingEngine/engine/terrain"
)

// TerrainContent streams a tile map into an indirect model: chunks follow the camera and only
// those inside the view frustum are uploaded.
type TerrainContent struct {
	tiles terrain.TileMap
	model *model.IndirectModel
}

var _ Content = &TerrainContent{}

// NewTerrainContent creates the indirect model the tiles are drawn with, a unit cube scaled per
// instance. It starts empty; the first Update fills it.
//
// Parameters:
//   - device: the device to allocate on
//   - tiles: the tile map to stream
//
// Returns:
//   - *TerrainContent: the content
//   - error: the model could not be created
func NewTerrainContent(device gpu.Device, tiles terrain.TileMap) (*TerrainContent, error) {
	m, err := model.NewIndirectModel(device, model.UnitCube("terrain tile"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create terrain model: %w", err)
	}
	return &TerrainContent{tiles: tiles, model: m}, nil
}

// Model returns the model the engine should draw.
func (c *TerrainContent) Model() *model.IndirectModel {
	return c.model
}

// TileMap returns the streamed tile map.
func (c *TerrainContent) TileMap() terrain.TileMap {
	return c.tiles
}

func (c *TerrainContent) Update(device gpu.Device, cam camera.Camera, stats *renderer.Stats) error {
	added, dropped, err := c.tiles.Update([3]float32(cam.Position()))
	if err != nil {
		return err
	}
	if added > 0 || dropped > 0 {
		common.Logger().Debug("terrain chunks streamed", "added", added, "dropped", dropped,
			"loaded", len(c.tiles.Chunks()))
	}

	frustum := common.ExtractFrustum(cam.ViewProjection())
	uploaded, err := c.tiles.Upload(device, c.model, &frustum)
	if err != nil {
		return err
	}
	if uploaded {
		stats.AddBytes(c.model.InstanceByteSize() + uint64(len(c.model.Meshes))*model.IndirectArgsSize)
	}
	return nil
}

func (c *TerrainContent) Release(device gpu.Device) {
	c.model.Release(device)
}

// WorldContent re-uploads an octree voxel world into a voxel engine whenever it was edited.
type WorldContent struct {
	world  *terrain.VoxelWorld
	engine *render_engine.VoxelEngine
}

var _ Content = &WorldContent{}

// NewWorldContent binds world to engine. Pending edits are uploaded by the first Update.
func NewWorldContent(world *terrain.VoxelWorld, engine *render_engine.VoxelEngine) *WorldContent {
	return &WorldContent{world: world, engine: engine}
}

// World returns the edited world.
func (c *WorldContent) World() *terrain.VoxelWorld {
	return c.world
}

func (c *WorldContent) Update(device gpu.Device, _ camera.Camera, stats *renderer.Stats) error {
	if !c.world.Changed() {
		return nil
	}
	voxels := c.world.Instances()
	if err := c.engine.SetVoxels(device, voxels); err != nil {
		return fmt.Errorf("failed to upload voxel world: %w", err)
	}
	stats.AddBytes(uint64(len(model.Faces)) * buffer.ByteSize(voxels))
	return nil
}

// Release is a no-op: the face models belong to the engine.
func (c *WorldContent) Release(gpu.Device) {}
