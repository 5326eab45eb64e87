// Package renderer drives one frame at a time: it opens the main render pass on the surface,
// hands it to the active engine, then ends and submits it. The package-level Draw functions
// encode the model draws into any gpu.RenderPass.
package renderer

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/engine/gpu"
	"github.com/lelepado01/RenderingEngine/engine/renderer/pipeline"
)

var (
	// ErrFrameInProgress is returned by BeginFrame before the previous frame was ended.
	ErrFrameInProgress = errors.New("frame already begun")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("no frame in progress")
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	handle gpu.Handle

	clearColor [4]float64
	stats      Stats

	frame *gpu.Frame
	pass  *wgpu.RenderPassEncoder
}

// Renderer owns the per-frame render pass.
type Renderer interface {
	// BeginFrame acquires the next surface texture and opens the main pass, cleared to the clear
	// color and depth 1.0.
	//
	// Returns:
	//   - gpu.RenderPass: the pass to draw into until EndFrame
	//   - error: ErrFrameInProgress, or the surface texture could not be acquired
	BeginFrame() (gpu.RenderPass, error)

	// EndFrame ends the pass, submits the frame and presents it.
	//
	// Returns:
	//   - error: ErrNoFrame, or the pass or command buffer could not be finished
	EndFrame() error

	// SetClearColor sets the color the next frames clear to.
	//
	// Parameters:
	//   - c: RGBA in [0, 1]
	SetClearColor(c [4]float64)

	// ClearColor returns the current clear color.
	ClearColor() [4]float64

	// Resize reconfigures the surface for a new framebuffer size.
	Resize(width, height int)

	// Stats returns the frame counters. The caller resets them before the frame's uploads.
	Stats() *Stats
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer presenting through handle.
//
// Parameters:
//   - handle: the GPU handle owning the surface
//   - options: variadic list of RendererBuilderOption functions
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(handle gpu.Handle, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		handle:     handle,
		clearColor: [4]float64{0, 0, 0, 1},
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

func (r *renderer) BeginFrame() (gpu.RenderPass, error) {
	if r.frame != nil {
		return nil, ErrFrameInProgress
	}
	frame, err := r.handle.BeginFrame()
	if err != nil {
		return nil, err
	}
	r.frame = frame
	r.pass = pipeline.BeginRenderPass(frame.Encoder, frame.View, frame.DepthView, r.clearColor)
	return r.pass, nil
}

func (r *renderer) EndFrame() error {
	if r.frame == nil {
		return ErrNoFrame
	}
	frame, pass := r.frame, r.pass
	r.frame, r.pass = nil, nil

	err := pass.End()
	pass.Release()
	if err != nil {
		return fmt.Errorf("failed to end render pass: %w", err)
	}
	return r.handle.Submit(frame)
}

func (r *renderer) SetClearColor(c [4]float64) {
	r.clearColor = c
}

func (r *renderer) ClearColor() [4]float64 {
	return r.clearColor
}

func (r *renderer) Resize(width, height int) {
	r.handle.Resize(width, height)
}

func (r *renderer) Stats() *Stats {
	return &r.stats
}
