package engine

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/assets"
	"github.com/lelepado01/RenderingEngine/common"
	"github.com/lelepado01/RenderingEngine/engine/camera"
	"github.com/lelepado01/RenderingEngine/engine/config"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu/gputest"
	"github.com/lelepado01/RenderingEngine/engine/profiler"
	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/lelepado01/RenderingEngine/engine/scene"
	"github.com/lelepado01/RenderingEngine/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	stats    renderer.Stats
	clear    [4]float64
	beginErr error
	pass     *gputest.RenderPass
	begun    int
	ended    int
	size     [2]int
}

var _ renderer.Renderer = &fakeRenderer{}

func (r *fakeRenderer) BeginFrame() (gpu.RenderPass, error) {
	if r.beginErr != nil {
		return nil, r.beginErr
	}
	r.begun++
	r.pass = &gputest.RenderPass{}
	return r.pass, nil
}

func (r *fakeRenderer) EndFrame() error {
	r.ended++
	return nil
}

func (r *fakeRenderer) SetClearColor(c [4]float64) { r.clear = c }
func (r *fakeRenderer) ClearColor() [4]float64     { return r.clear }
func (r *fakeRenderer) Resize(width, height int)   { r.size = [2]int{width, height} }
func (r *fakeRenderer) Stats() *renderer.Stats     { return &r.stats }

// fakeWindow runs script then the update callback for a fixed number of iterations.
type fakeWindow struct {
	width, height int
	iterations    int
	script        func(w *fakeWindow, i int)
	closed        bool

	onUpdate    func() bool
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseMove func(x, y int32)
	onFocus     func(focused bool)
}

var _ window.Window = &fakeWindow{}

func (w *fakeWindow) SetUpdateCallback(cb func() bool)         { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(int, int))      { w.onResize = cb }
func (w *fakeWindow) SetScrollCallback(cb func(float32))       { w.onScroll = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))       { w.onKeyDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(uint32))         { w.onKeyUp = cb }
func (w *fakeWindow) SetMouseMoveCallback(cb func(x, y int32)) { w.onMouseMove = cb }
func (w *fakeWindow) SetFocusCallback(cb func(bool))           { w.onFocus = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}
func (w *fakeWindow) IsRunning() bool { return !w.closed }
func (w *fakeWindow) RequestClose()   { w.closed = true }
func (w *fakeWindow) Close() error    { w.closed = true; return nil }
func (w *fakeWindow) Width() int      { return w.width }
func (w *fakeWindow) Height() int     { return w.height }
func (w *fakeWindow) Aspect() float32 { return float32(w.width) / float32(w.height) }

func (w *fakeWindow) ProcessMessages() {
	for i := 0; i < w.iterations && !w.closed; i++ {
		if w.script != nil {
			w.script(w, i)
		}
		if w.onUpdate != nil && !w.onUpdate() {
			return
		}
	}
}

type fakeWatcher struct {
	pending [][]string
	closed  bool
}

func (w *fakeWatcher) Changed() []string {
	if len(w.pending) == 0 {
		return nil
	}
	next := w.pending[0]
	w.pending = w.pending[1:]
	return next
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

// failingScene wraps a real scene and fails the chosen step.
type failingScene struct {
	scene.Scene
	updateErr error
	renderErr error
}

func (s *failingScene) Update(d gpu.Device, dt float32, in camera.Input, stats *renderer.Stats) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Scene.Update(d, dt, in, stats)
}

func (s *failingScene) Render(pass gpu.RenderPass, stats *renderer.Stats) error {
	if s.renderErr != nil {
		return s.renderErr
	}
	return s.Scene.Render(pass, stats)
}

// steppingClock advances 100ms per tick.
func steppingClock() *profiler.Clock {
	t := time.Unix(0, 0)
	return profiler.NewClock(func() time.Time {
		t = t.Add(100 * time.Millisecond)
		return t
	})
}

func voxelScene(t *testing.T, d gpu.Device, cameraKind string, shaders fs.FS) scene.Scene {
	t.Helper()
	cfg := config.Default()
	cfg.Engine.Kind = "voxel"
	cfg.Camera.Kind = cameraKind
	cfg.World.Size = 4
	cfg.World.FillHeight = 1
	cfg.Engine.ClearColor = [4]float64{0.1, 0.2, 0.3, 1}
	sc, err := scene.FromConfig(cfg, d, wgpu.TextureFormatBGRA8Unorm, 1, scene.Sources{Shaders: shaders})
	require.NoError(t, err)
	return sc
}

func newTestEngine(t *testing.T, sc scene.Scene, options ...EngineBuilderOption) (Engine, *fakeRenderer, *gputest.Device) {
	t.Helper()
	d := gputest.NewDevice()
	if sc == nil {
		sc = voxelScene(t, d, "fps", assets.Shaders())
	}
	r := &fakeRenderer{}
	opts := append([]EngineBuilderOption{
		WithRenderer(r),
		WithDevice(d),
		WithScene(sc),
		WithClock(steppingClock()),
	}, options...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	return e, r, d
}

func TestNewEngineRequiresParts(t *testing.T) {
	_, err := NewEngine(WithRenderer(&fakeRenderer{}), WithDevice(gputest.NewDevice()))
	assert.ErrorIs(t, err, ErrIncomplete)
}

func TestFrameDrawsScene(t *testing.T) {
	e, r, _ := newTestEngine(t, nil)

	require.NoError(t, e.Frame())
	assert.Equal(t, uint64(1), e.Frames())
	assert.Equal(t, 1, r.begun)
	assert.Equal(t, 1, r.ended)
	assert.Equal(t, [4]float64{0.1, 0.2, 0.3, 1}, r.clear)
	assert.Equal(t, "SetPipeline", r.pass.Ops()[0])
	assert.Positive(t, r.stats.BytesToGPU)
}

func TestFrameResetsStats(t *testing.T) {
	e, r, _ := newTestEngine(t, nil)

	require.NoError(t, e.Frame())
	draws, bytes := r.stats.DrawCalls, r.stats.BytesToGPU
	require.NoError(t, e.Frame())
	assert.Equal(t, draws, r.stats.DrawCalls)
	assert.Equal(t, bytes, r.stats.BytesToGPU)
	assert.Equal(t, 100*time.Millisecond, r.stats.FrameTime)
	assert.InDelta(t, 10, r.stats.FPS, 1e-9)
}

func TestFrameSkipsUntilSurfaceGivesUp(t *testing.T) {
	e, r, _ := newTestEngine(t, nil)
	r.beginErr = errors.New("surface outdated")

	for range maxFailedFrames - 1 {
		require.NoError(t, e.Frame())
	}
	err := e.Frame()
	assert.ErrorIs(t, err, r.beginErr)
	assert.Zero(t, e.Frames())

	r.beginErr = nil
	require.NoError(t, e.Frame())
	assert.Equal(t, uint64(1), e.Frames())
}

func TestFrameRenderErrorEndsPass(t *testing.T) {
	d := gputest.NewDevice()
	errRender := errors.New("render failed")
	sc := &failingScene{Scene: voxelScene(t, d, "fps", assets.Shaders()), renderErr: errRender}
	e, r, _ := newTestEngine(t, sc)

	assert.ErrorIs(t, e.Frame(), errRender)
	assert.Equal(t, 1, r.ended)
	assert.Zero(t, e.Frames())
}

func TestFrameSkipsMinimisedWindow(t *testing.T) {
	e, r, _ := newTestEngine(t, nil, WithWindow(&fakeWindow{}))

	require.NoError(t, e.Frame())
	assert.Zero(t, r.begun)
	assert.Positive(t, r.stats.BytesToGPU, "the scene still updates")
}

func TestFrameTicksProfiler(t *testing.T) {
	ft := time.Unix(0, 0)
	p := profiler.NewProfiler(common.Logger(),
		profiler.WithInterval(time.Nanosecond),
		profiler.WithTimeSource(func() time.Time { ft = ft.Add(time.Second); return ft }))
	e, _, _ := newTestEngine(t, nil, WithProfiler(p))

	require.NoError(t, e.Frame())
	assert.Equal(t, uint64(1), e.Frames())
}

func TestRunWithoutWindow(t *testing.T) {
	e, _, _ := newTestEngine(t, nil)
	assert.ErrorIs(t, e.Run(), ErrNoWindow)
}

func TestRunMovesCameraFromKeys(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600, iterations: 3}
	w.script = func(w *fakeWindow, i int) {
		if i == 0 {
			w.onKeyDown(common.KeyW)
		}
	}
	e, _, _ := newTestEngine(t, nil, WithWindow(w))
	start := e.Scene().Camera().Position()

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(3), e.Frames())
	assert.Less(t, e.Scene().Camera().Position().Z(), start.Z(), "forward is -z")
}

func TestRunFocusLossReleasesKeys(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600, iterations: 3}
	w.script = func(w *fakeWindow, i int) {
		if i == 0 {
			w.onKeyDown(common.KeyW)
			w.onFocus(false)
		}
	}
	e, _, _ := newTestEngine(t, nil, WithWindow(w))
	start := e.Scene().Camera().Position()

	require.NoError(t, e.Run())
	assert.Equal(t, start, e.Scene().Camera().Position())
}

func TestRunResizeUpdatesRendererAndCamera(t *testing.T) {
	w := &fakeWindow{width: 800, height: 600, iterations: 1}
	w.script = func(w *fakeWindow, _ int) {
		w.onResize(1600, 400)
		w.onResize(0, 0)
	}
	e, r, _ := newTestEngine(t, nil, WithWindow(w))
	before := e.Scene().Camera().ViewProjection()

	require.NoError(t, e.Run())
	assert.Equal(t, [2]int{1600, 400}, r.size)
	assert.NotEqual(t, before, e.Scene().Camera().ViewProjection())
}

func TestRunScrollZoomsOrbitCamera(t *testing.T) {
	d := gputest.NewDevice()
	sc := voxelScene(t, d, "third_person", assets.Shaders())
	orbit, ok := sc.Camera().(*camera.ThirdPersonCamera)
	require.True(t, ok)
	start := orbit.Distance()

	w := &fakeWindow{width: 800, height: 600, iterations: 1}
	w.script = func(w *fakeWindow, _ int) { w.onScroll(1) }
	e, _, _ := newTestEngine(t, sc, WithWindow(w))

	require.NoError(t, e.Run())
	assert.Equal(t, start-1, orbit.Distance())
}

func TestRunStopsOnFrameError(t *testing.T) {
	d := gputest.NewDevice()
	errUpdate := errors.New("update failed")
	sc := &failingScene{Scene: voxelScene(t, d, "fps", assets.Shaders()), updateErr: errUpdate}
	w := &fakeWindow{width: 800, height: 600, iterations: 5}
	e, _, _ := newTestEngine(t, sc, WithWindow(w))

	assert.ErrorIs(t, e.Run(), errUpdate)
	assert.Zero(t, e.Frames())
}

func TestFrameReloadsWatchedShaders(t *testing.T) {
	shaders := fstest.MapFS{}
	for _, name := range []string{"common.wgsl", "voxel.wgsl"} {
		data, err := fs.ReadFile(assets.Shaders(), name)
		require.NoError(t, err)
		shaders[name] = &fstest.MapFile{Data: data}
	}
	d := gputest.NewDevice()
	sc := voxelScene(t, d, "fps", shaders)
	require.Len(t, d.RenderPipelines, 1)

	watcher := &fakeWatcher{pending: [][]string{{"voxel.wgsl"}, {"voxel.wgsl"}}}
	r := &fakeRenderer{}
	e, err := NewEngine(WithRenderer(r), WithDevice(d), WithScene(sc), WithWatcher(watcher))
	require.NoError(t, err)

	require.NoError(t, e.Frame())
	assert.Len(t, d.RenderPipelines, 2)

	shaders["voxel.wgsl"].Data = []byte("broken")
	require.NoError(t, e.Frame(), "a bad shader only logs")
	assert.Len(t, d.RenderPipelines, 2)
	assert.Equal(t, uint64(2), e.Frames())

	e.Close()
	assert.True(t, watcher.closed)
	assert.NotEmpty(t, d.Released)
}
