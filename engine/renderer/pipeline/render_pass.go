package pipeline

import "github.com/cogentcore/webgpu/wgpu"

// RenderPassDescriptor describes a pass with one color attachment and a depth attachment,
// both cleared on load and stored on end. Depth clears to 1.0.
//
// Parameters:
//   - view: the color target, usually the current surface texture view
//   - depthView: the Depth32Float view matching the color target's size
//   - clear: the RGBA clear color
//
// Returns:
//   - *wgpu.RenderPassDescriptor: the descriptor
func RenderPassDescriptor(view, depthView *wgpu.TextureView, clear [4]float64) *wgpu.RenderPassDescriptor {
	return &wgpu.RenderPassDescriptor{
		Label: "main pass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: clear[0], G: clear[1], B: clear[2], A: clear[3]},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}
}

// BeginRenderPass opens a pass on encoder using RenderPassDescriptor.
func BeginRenderPass(encoder *wgpu.CommandEncoder, view, depthView *wgpu.TextureView, clear [4]float64) *wgpu.RenderPassEncoder {
	return encoder.BeginRenderPass(RenderPassDescriptor(view, depthView, clear))
}
