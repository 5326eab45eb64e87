package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/lelepado01/RenderingEngine/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time { return f.t }

func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestClockTick(t *testing.T) {
	ft := &fakeTime{t: time.Unix(100, 0)}
	c := NewClock(ft.now)

	assert.Zero(t, c.Tick(), "first tick has no delta")
	assert.Zero(t, c.FPS())

	ft.advance(20 * time.Millisecond)
	assert.InDelta(t, 0.02, c.Tick(), 1e-6)
	assert.Equal(t, 20*time.Millisecond, c.Delta())
	assert.InDelta(t, 50, c.FPS(), 1e-6)

	ft.advance(10 * time.Millisecond)
	c.Tick()
	// 50 + (100-50)*0.1
	assert.InDelta(t, 55, c.FPS(), 1e-6)
	assert.Equal(t, 30*time.Millisecond, c.Time())
}

func TestClockClampsStalls(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	c := NewClock(ft.now)
	c.Tick()

	ft.advance(5 * time.Second)
	assert.InDelta(t, maxDelta.Seconds(), c.Tick(), 1e-6)
	assert.Equal(t, 5*time.Second, c.Time())
}

func TestProfilerReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ft := &fakeTime{t: time.Unix(0, 0)}
	p := NewProfiler(logger, WithTimeSource(ft.now), WithInterval(500*time.Millisecond))

	stats := &renderer.Stats{}
	for range 9 {
		stats.Reset()
		stats.AddDraw(10)
		stats.AddDraw(20)
		stats.AddBytes(64)
		ft.advance(50 * time.Millisecond)
		assert.Nil(t, p.Tick(stats))
	}
	assert.Empty(t, buf.String())

	ft.advance(50 * time.Millisecond)
	r := p.Tick(stats)
	require.NotNil(t, r)
	assert.InDelta(t, 20, r.FPS, 1e-9)
	assert.Equal(t, 50*time.Millisecond, r.FrameTime)
	assert.InDelta(t, 2, r.DrawCalls, 1e-9)
	assert.InDelta(t, 30, r.InstancesDrawn, 1e-9)
	assert.Equal(t, uint64(640), r.BytesToGPU)
	assert.Positive(t, r.HeapMB)
	assert.Contains(t, buf.String(), "msg=profiler")
	assert.Contains(t, buf.String(), "draw_calls=2")

	// counters start over
	ft.advance(100 * time.Millisecond)
	assert.Nil(t, p.Tick(nil))
}

func TestProfilerNilStats(t *testing.T) {
	ft := &fakeTime{t: time.Unix(0, 0)}
	p := NewProfiler(slog.New(slog.DiscardHandler), WithTimeSource(ft.now))

	ft.advance(2 * time.Second)
	r := p.Tick(nil)
	require.NotNil(t, r)
	assert.InDelta(t, 0.5, r.FPS, 1e-9)
	assert.Zero(t, r.DrawCalls)
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(slog.New(slog.DiscardHandler), WithInterval(0))
	assert.Equal(t, time.Second, p.updateInterval)
}
