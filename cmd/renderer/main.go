// Command renderer opens a window and draws the configured engine: an OBJ model, a streamed
// terrain or an octree voxel world.
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/lelepado01/RenderingEngine/assets"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine"
	"github.com/lelepado01/RenderingEngine/engine/config"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/profiler"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/renderer/shader"
	"github.com/lelepado01/RenderingEngine/engine/scene"
	"github.com/lelepado01/RenderingEngine/engine/window"
)

const reloadDebounce = 100 * time.Millisecond

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration")
	engineKind := flag.String("engine", "", "engine kind override: mesh, voxel or indirect")
	flag.Parse()

	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := run(*configPath, *engineKind); err != nil {
		common.Logger().Error("renderer stopped", "error", err)
		os.Exit(1)
	}
}

func run(configPath, engineKind string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg.Engine.Kind = common.Coalesce(engineKind, cfg.Engine.Kind)
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: common.ParseLevel(cfg.Log.Level),
	})))

	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithCursorCapture(true),
	)
	if err != nil {
		return err
	}
	defer win.Close()

	handle, err := gpu.NewHandle(win.SurfaceDescriptor(), win.Width(), win.Height(),
		gpu.WithVSync(cfg.Window.VSync))
	if err != nil {
		return err
	}
	defer handle.Release()

	shaders, shaderDir := shaderSource(cfg.Engine.ShaderDir)
	models, modelPath := modelSource(cfg.Model.Path)
	sc, err := scene.FromConfig(cfg, handle, handle.SurfaceFormat(), win.Aspect(), scene.Sources{
		Shaders:   shaders,
		Models:    models,
		ModelPath: modelPath,
	})
	if err != nil {
		return err
	}

	opts := []engine.EngineBuilderOption{
		engine.WithWindow(win),
		engine.WithRenderer(renderer.NewRenderer(handle)),
		engine.WithDevice(handle),
		engine.WithScene(sc),
	}
	if cfg.Profiler.Enabled {
		opts = append(opts, engine.WithProfiler(profiler.NewProfiler(common.Logger(),
			profiler.WithInterval(time.Duration(cfg.Profiler.Interval)))))
	}
	if cfg.Engine.HotReload {
		if shaderDir == "" {
			common.Logger().Warn("hot reload needs a shader directory on disk, using embedded shaders",
				"shader_dir", cfg.Engine.ShaderDir)
		} else {
			w, err := shader.NewWatcher(shaderDir, reloadDebounce)
			if err != nil {
				sc.Release(handle)
				return err
			}
			opts = append(opts, engine.WithWatcher(w))
		}
	}

	eng, err := engine.NewEngine(opts...)
	if err != nil {
		sc.Release(handle)
		return err
	}
	defer eng.Close()

	common.Logger().Info("renderer started", "engine", sc.Engine().Kind(), "scene", sc.Name(),
		"width", win.Width(), "height", win.Height())
	if err := eng.Run(); err != nil {
		return fmt.Errorf("frame loop: %w", err)
	}
	common.Logger().Info("renderer closed", "frames", eng.Frames())
	return nil
}

// shaderSource reads shaders from dir when it exists on disk, from the embedded copies
// otherwise. The returned directory is empty for embedded shaders.
func shaderSource(dir string) (fs.FS, string) {
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		return os.DirFS(dir), dir
	}
	return assets.Shaders(), ""
}

// modelSource resolves the OBJ path against the disk first, then the embedded models by base
// name. An empty path draws the built-in cube.
func modelSource(p string) (fs.FS, string) {
	if p == "" {
		return nil, ""
	}
	if _, err := os.Stat(p); err == nil {
		return os.DirFS(filepath.Dir(p)), filepath.Base(p)
	}
	return assets.Models(), path.Base(filepath.ToSlash(p))
}
