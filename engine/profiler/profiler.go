package profiler

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/lelepado01/RenderingEngine/engine/renderer"
)

// Profiler tracks frame rate, draw counters and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	frameCount     int
	drawCalls      int
	instances      int
	bytesToGPU     uint64
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Report is one interval's summary.
type Report struct {
	FPS            float64
	FrameTime      time.Duration
	DrawCalls      float64 // per frame
	InstancesDrawn float64 // per frame
	BytesToGPU     uint64  // whole interval
	HeapMB         float64
	AllocRateMB    float64
	GCCount        uint32
	LastPauseUs    uint64
	MaxPauseUs     uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: where reports are written
//   - options: variadic list of ProfilerOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger, options ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         logger,
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame, after the frame's draws, to track frame timing.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - stats: the frame's counters, may be nil
//
// Returns:
//   - *Report: the report logged this tick, nil otherwise
func (p *Profiler) Tick(stats *renderer.Stats) *Report {
	p.frameCount++
	if stats != nil {
		p.drawCalls += stats.DrawCalls
		p.instances += stats.InstancesDrawn
		p.bytesToGPU += stats.BytesToGPU
	}

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return nil
	}

	frames := float64(p.frameCount)
	r := &Report{
		FPS:            frames / elapsed.Seconds(),
		FrameTime:      elapsed / time.Duration(p.frameCount),
		DrawCalls:      float64(p.drawCalls) / frames,
		InstancesDrawn: float64(p.instances) / frames,
		BytesToGPU:     p.bytesToGPU,
	}
	p.readMemory(r, elapsed)

	p.logger.Info("profiler",
		"fps", r.FPS,
		"frame_time", r.FrameTime,
		"draw_calls", r.DrawCalls,
		"instances", r.InstancesDrawn,
		"bytes_to_gpu", r.BytesToGPU,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
	)

	p.frameCount = 0
	p.drawCalls = 0
	p.instances = 0
	p.bytesToGPU = 0
	p.lastTime = currentTime
	return r
}

func (p *Profiler) readMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc: Bytes of allocated heap objects (live memory)
	// TotalAlloc: Cumulative bytes allocated for heap objects (tracks churn)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of last 256 GC pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount+255)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
