package renderer

import "time"

// Stats counts the work of one frame. Uploads and draw functions add to it; the frame loop resets it
// before a frame's first upload. A nil *Stats is accepted everywhere and counts nothing.
type Stats struct {
	FPS            float64
	FrameTime      time.Duration
	DrawCalls      int
	InstancesDrawn int
	BytesToGPU     uint64
}

// Reset clears the per-frame counters. FPS and FrameTime are left to the clock.
func (s *Stats) Reset() {
	if s == nil {
		return
	}
	s.DrawCalls = 0
	s.InstancesDrawn = 0
	s.BytesToGPU = 0
}

// AddDraw records one draw call of instances copies.
func (s *Stats) AddDraw(instances uint32) {
	if s == nil {
		return
	}
	s.DrawCalls++
	s.InstancesDrawn += int(instances)
}

// AddBytes records n bytes uploaded to the GPU.
func (s *Stats) AddBytes(n uint64) {
	if s == nil {
		return
	}
	s.BytesToGPU += n
}
