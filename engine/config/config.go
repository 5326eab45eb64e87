// Package config loads the application settings from a TOML file layered over built-in
// defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the whole application configuration.
type Config struct {
	Window   Window   `toml:"window"`
	Camera   Camera   `toml:"camera"`
	Engine   Engine   `toml:"engine"`
	Terrain  Terrain  `toml:"terrain"`
	World    World    `toml:"world"`
	Model    Model    `toml:"model"`
	Log      Log      `toml:"log"`
	Profiler Profiler `toml:"profiler"`
}

// Window configures the OS window and presentation.
type Window struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

// Camera configures the active camera.
type Camera struct {
	Kind        string     `toml:"kind"`
	Position    [3]float32 `toml:"position"`
	Speed       float32    `toml:"speed"`
	Sensitivity float32    `toml:"sensitivity"` // 0 keeps the camera kind's default
	Fov         float32    `toml:"fov"`
	Near        float32    `toml:"near"`
	Far         float32    `toml:"far"`
}

// Engine selects and configures the render engine.
type Engine struct {
	Kind       string     `toml:"kind"`
	Wireframe  bool       `toml:"wireframe"`
	Cull       string     `toml:"cull"`
	ClearColor [4]float64 `toml:"clear_color"`
	ShaderDir  string     `toml:"shader_dir"`
	HotReload  bool       `toml:"hot_reload"`
}

// Terrain configures the streamed tile map.
type Terrain struct {
	ChunksInView int     `toml:"chunks_in_view"`
	ChunkSize    int     `toml:"chunk_size"`
	TileSize     float32 `toml:"tile_size"`
	Heightmap    string  `toml:"heightmap"`
	Seed         int64   `toml:"seed"`
	Workers      int     `toml:"workers"`
}

// World configures the octree voxel world.
type World struct {
	Size       uint32 `toml:"size"`
	FillHeight int    `toml:"fill_height"`
}

// Model names the OBJ the mesh engine draws, and how many copies.
type Model struct {
	Path      string `toml:"path"`
	Instances int    `toml:"instances"`
	Lights    int    `toml:"lights"`
}

// Log configures the structured logger.
type Log struct {
	Level string `toml:"level"`
}

// Profiler configures the periodic stats line.
type Profiler struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window: Window{Width: 1280, Height: 720, Title: "Rendering Engine", VSync: true},
		Camera: Camera{
			Kind:     "fps",
			Position: [3]float32{0, 40, 0},
			Speed:    20,
			Fov:      45,
			Near:     0.1,
			Far:      1000,
		},
		Engine: Engine{
			Kind:       "indirect",
			Cull:       "back",
			ClearColor: [4]float64{0.43, 0.72, 0.72, 1},
			ShaderDir:  "assets/shaders",
		},
		Terrain: Terrain{ChunksInView: 5, ChunkSize: 30, TileSize: 2, Workers: 4},
		World:   World{Size: 64, FillHeight: 16},
		Model:   Model{Path: "assets/models/cube.obj", Instances: 100, Lights: 2},
		Log:     Log{Level: "info"},
		Profiler: Profiler{
			Enabled:  true,
			Interval: Duration(defaultProfilerInterval),
		},
	}
}

// Load reads the TOML file at path over Default and validates the result. A missing file yields
// the defaults.
//
// Parameters:
//   - path: the config file, may be empty
//
// Returns:
//   - Config: the merged configuration
//   - error: a read, decode or validation failure
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		common.Logger().Warn("config file not found, using defaults", "path", path)
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode overlays TOML data on cfg. Keys the file omits keep their current values; unknown keys
// are rejected.
func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return err
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Window.Width > 0 && c.Window.Height > 0, "window size %dx%d", c.Window.Width, c.Window.Height)
	check(c.Camera.Kind == "fps" || c.Camera.Kind == "third_person", "camera kind %q", c.Camera.Kind)
	check(c.Camera.Fov > 0 && c.Camera.Fov < 180, "camera fov %g", c.Camera.Fov)
	check(c.Camera.Near > 0 && c.Camera.Far > c.Camera.Near, "camera clip %g..%g", c.Camera.Near, c.Camera.Far)
	check(c.Camera.Speed >= 0, "camera speed %g", c.Camera.Speed)
	check(c.Camera.Sensitivity >= 0, "camera sensitivity %g", c.Camera.Sensitivity)
	check(c.Engine.Kind == "mesh" || c.Engine.Kind == "voxel" || c.Engine.Kind == "indirect", "engine kind %q", c.Engine.Kind)
	check(c.Engine.Cull == "none" || c.Engine.Cull == "front" || c.Engine.Cull == "back", "cull mode %q", c.Engine.Cull)
	check(c.Terrain.ChunksInView > 0, "terrain chunks in view %d", c.Terrain.ChunksInView)
	check(c.Terrain.ChunkSize > 0, "terrain chunk size %d", c.Terrain.ChunkSize)
	check(c.Terrain.TileSize > 0, "terrain tile size %g", c.Terrain.TileSize)
	check(c.Terrain.Workers > 0, "terrain workers %d", c.Terrain.Workers)
	check(common.IsPowerOfTwo(int(c.World.Size)), "world size %d is not a power of two", c.World.Size)
	check(c.World.FillHeight >= 0 && c.World.FillHeight <= int(c.World.Size), "world fill height %d", c.World.FillHeight)
	check(c.Model.Instances >= 0, "model instances %d", c.Model.Instances)
	check(c.Model.Lights >= 0, "model lights %d", c.Model.Lights)
	check(c.Profiler.Interval >= 0, "profiler interval %s", c.Profiler.Interval)

	return errors.Join(errs...)
}
