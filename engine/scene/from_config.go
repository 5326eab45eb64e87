package scene

import (
	"fmt"
	"io/fs"
	"math"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/config"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/light"
	"github.com/lelepado01/RenderingEngine/engine/loader"
	"github.com/lelepado01/RenderingEngine/engine/model"
	"github.com/lelepado01/RenderingEngine/engine/render_engine"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
	"github.com/lelepado01/RenderingEngine/engine/terrain"
)

// Shader file names, relative to the shader source.
var shaderFiles = map[string]string{
	render_engine.ShaderInstanced: "instanced.wgsl",
	render_engine.ShaderStandard:  "standard.wgsl",
	render_engine.ShaderVoxel:     "voxel.wgsl",
	render_engine.ShaderTerrain:   "terrain.wgsl",
}

const (
	instanceSpacing float32 = 3
	lightRadius     float32 = 20
	lightHeight     float32 = 15
)

// Sources are the file systems a scene reads from.
type Sources struct {
	// Shaders holds the WGSL files, named as in shaderFiles.
	Shaders fs.FS

	// Models holds the OBJ named by the model config and its MTL libraries. Nil draws a unit cube.
	Models fs.FS

	// ModelPath is the OBJ name inside Models.
	ModelPath string
}

// FromConfig builds the camera, the configured engine and its content.
//
// Parameters:
//   - cfg: a validated configuration
//   - device: the device to build on
//   - format: the colour target format
//   - aspect: the initial framebuffer aspect ratio
//   - src: where shaders and models are read from
//
// Returns:
//   - Scene: the scene, named after the engine kind
//   - error: an unknown kind, a shader or model that fails to load, or a device failure
func FromConfig(cfg config.Config, device gpu.Device, format wgpu.TextureFormat, aspect float32, src Sources) (Scene, error) {
	cam, err := newCamera(cfg.Camera, aspect)
	if err != nil {
		return nil, err
	}
	kind, err := render_engine.ParseKind(cfg.Engine.Kind)
	if err != nil {
		return nil, err
	}
	opts, err := engineOptions(cfg.Engine)
	if err != nil {
		return nil, err
	}

	pp := shader.NewPreProcessor(src.Shaders)
	switch kind {
	case render_engine.KindMesh:
		return buildMesh(cfg, device, format, cam, pp, src, opts)
	case render_engine.KindVoxel:
		return buildVoxel(cfg, device, format, cam, pp, opts)
	default:
		return buildTerrain(cfg, device, format, cam, pp, opts)
	}
}

func newCamera(c config.Camera, aspect float32) (camera.Camera, error) {
	opts := []camera.CameraBuilderOption{
		camera.WithPosition(mgl32.Vec3(c.Position)),
		camera.WithSpeed(c.Speed),
		camera.WithFov(c.Fov),
		camera.WithClip(c.Near, c.Far),
	}
	if c.Sensitivity > 0 {
		opts = append(opts, camera.WithSensitivity(c.Sensitivity))
	}
	return camera.New(camera.Kind(c.Kind), aspect, opts...)
}

// ParseCullMode converts a configured cull mode name.
func ParseCullMode(s string) (wgpu.CullMode, error) {
	switch s {
	case "none":
		return wgpu.CullModeNone, nil
	case "front":
		return wgpu.CullModeFront, nil
	case "back":
		return wgpu.CullModeBack, nil
	default:
		return wgpu.CullModeNone, fmt.Errorf("%w: cull mode %q", config.ErrInvalid, s)
	}
}

func engineOptions(e config.Engine) ([]render_engine.EngineOption, error) {
	cull, err := ParseCullMode(e.Cull)
	if err != nil {
		return nil, err
	}
	return []render_engine.EngineOption{
		render_engine.WithClearColor(e.ClearColor),
		render_engine.WithCullMode(cull),
		render_engine.WithWireframe(e.Wireframe),
	}, nil
}

func loadShaders(pp shader.PreProcessor, keys ...string) (map[string]shader.Shader, error) {
	out := make(map[string]shader.Shader, len(keys))
	for _, k := range keys {
		s, err := shader.Load(pp, k, shaderFiles[k])
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

func buildMesh(cfg config.Config, device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, pp shader.PreProcessor, src Sources, opts []render_engine.EngineOption) (Scene, error) {
	shaders, err := loadShaders(pp, render_engine.ShaderInstanced, render_engine.ShaderStandard)
	if err != nil {
		return nil, err
	}

	asset := model.UnitCube("cube")
	if src.Models != nil && src.ModelPath != "" {
		if asset, err = loader.NewLoader(src.Models).Load(src.ModelPath); err != nil {
			return nil, fmt.Errorf("failed to load model: %w", err)
		}
	}

	standard, err := model.NewStandardModel(device, asset, 0)
	if err != nil {
		return nil, err
	}
	instanced, err := model.NewInstancedModel(device, asset, GridInstances(cfg.Model.Instances, len(asset.Materials)))
	if err != nil {
		standard.Release(device)
		return nil, err
	}

	eng, err := render_engine.NewMeshEngine(device, format, cam, shaders, render_engine.MeshContent{
		Instanced: []*model.InstancedModel{instanced},
		Standard:  []*model.StandardModel{standard},
		Lights:    RingLights(cfg.Model.Lights),
	}, opts...)
	if err != nil {
		standard.Release(device)
		instanced.Release(device)
		return nil, err
	}
	return NewScene(string(render_engine.KindMesh), cam, eng,
		WithContent(&modelContent{standard: standard, instanced: instanced}),
		WithShaderSource(pp)), nil
}

func buildVoxel(cfg config.Config, device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, pp shader.PreProcessor, opts []render_engine.EngineOption) (Scene, error) {
	shaders, err := loadShaders(pp, render_engine.ShaderVoxel)
	if err != nil {
		return nil, err
	}

	worldOpts := []terrain.VoxelWorldBuilderOption{terrain.WithFillHeight(cfg.World.FillHeight)}
	if cfg.Terrain.Heightmap != "" {
		worldOpts = append(worldOpts, terrain.WithHeights(
			terrain.OpenHeightSource(cfg.Terrain.Heightmap, cfg.Terrain.TileSize, cfg.Terrain.Seed)))
	}
	world, err := terrain.NewVoxelWorld(cfg.World.Size, worldOpts...)
	if err != nil {
		return nil, err
	}

	eng, err := render_engine.NewVoxelEngine(device, format, cam, shaders, world.Instances(), opts...)
	if err != nil {
		return nil, err
	}
	return NewScene(string(render_engine.KindVoxel), cam, eng,
		WithContent(NewWorldContent(world, eng)),
		WithShaderSource(pp)), nil
}

func buildTerrain(cfg config.Config, device gpu.Device, format wgpu.TextureFormat, cam camera.Camera, pp shader.PreProcessor, opts []render_engine.EngineOption) (Scene, error) {
	shaders, err := loadShaders(pp, render_engine.ShaderTerrain)
	if err != nil {
		return nil, err
	}

	t := cfg.Terrain
	tiles, err := terrain.NewTileMap(
		terrain.WithChunksInView(t.ChunksInView),
		terrain.WithChunkSize(t.ChunkSize),
		terrain.WithTileSize(t.TileSize),
		terrain.WithWorkers(t.Workers),
		terrain.WithSeed(t.Seed),
		terrain.WithHeightSource(terrain.OpenHeightSource(t.Heightmap, t.TileSize, t.Seed)),
	)
	if err != nil {
		return nil, err
	}
	content, err := NewTerrainContent(device, tiles)
	if err != nil {
		return nil, err
	}

	eng, err := render_engine.NewIndirectEngine(device, format, cam, shaders,
		[]*model.IndirectModel{content.Model()}, opts...)
	if err != nil {
		content.Release(device)
		return nil, err
	}
	return NewScene(string(render_engine.KindIndirect), cam, eng,
		WithContent(content),
		WithShaderSource(pp)), nil
}

// GridInstances lays n unit instances out on a square grid in the xz plane, starting beside the
// origin so they do not overlap the standard model drawn there. Materials cycle through the
// model's first materials entries.
//
// Parameters:
//   - n: instance count
//   - materials: how many materials the model has, at least 1 is assumed
//
// Returns:
//   - []model.PositionInstanceData: the instances, row by row
func GridInstances(n, materials int) []model.PositionInstanceData {
	if n <= 0 {
		return nil
	}
	materials = max(materials, 1)
	side := int(math.Ceil(math.Sqrt(float64(n))))
	out := make([]model.PositionInstanceData, n)
	for i := range out {
		x := float32(i%side+1) * instanceSpacing
		z := float32(i/side) * instanceSpacing
		out[i] = model.NewPositionInstance([3]float32{x, 0, z}, 1, uint32(i%materials))
	}
	return out
}

// RingLights places n default point lights evenly on a horizontal circle above the origin.
func RingLights(n int) []light.Light {
	lights := make([]light.Light, 0, n)
	for i := range n {
		angle := 2 * math.Pi * float64(i) / float64(n)
		lights = append(lights, light.NewLight(light.WithPosition(
			lightRadius*float32(math.Cos(angle)),
			lightHeight,
			lightRadius*float32(math.Sin(angle)),
		)))
	}
	return lights
}

// modelContent owns the mesh engine's models; they never change after construction.
type modelContent struct {
	standard  *model.StandardModel
	instanced *model.InstancedModel
}

func (m *modelContent) Update(gpu.Device, camera.Camera, *renderer.Stats) error {
	return nil
}

func (m *modelContent) Release(device gpu.Device) {
	m.standard.Release(device)
	m.instanced.Release(device)
}
