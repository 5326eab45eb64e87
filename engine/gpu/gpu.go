// Package gpu wraps the WebGPU device, queue and surface behind the small set of calls the
// rest of the engine needs. Resource builders depend on the Device interface only, draw
// submission depends on RenderPass only.
package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthFormat is the depth attachment format shared by every pipeline and render pass.
const DepthFormat = wgpu.TextureFormatDepth32Float

// Device is the resource-creation surface of a GPU device.
type Device interface {
	// CreateBuffer allocates an uninitialised GPU buffer.
	//
	// Parameters:
	//   - desc: label, size and usage of the buffer
	//
	// Returns:
	//   - *wgpu.Buffer: the new buffer
	//   - error: the device rejected the allocation
	CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error)

	// WriteBuffer schedules a copy of data into buf at offset through the device queue.
	//
	// Parameters:
	//   - buf: destination buffer, must carry CopyDst usage
	//   - offset: byte offset into buf, multiple of 4
	//   - data: bytes to copy, length multiple of 4
	//
	// Returns:
	//   - error: the queue rejected the write
	WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error

	// CreateBindGroupLayout builds an immutable bind group layout.
	CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error)

	// CreateBindGroup builds an immutable bind group against a layout.
	CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error)

	// CreatePipelineLayout builds a pipeline layout from bind group layouts in group order.
	CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error)

	// CreateShaderModule compiles WGSL source.
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)

	// CreateRenderPipeline builds a render pipeline.
	CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error)

	// ReleaseResource drops a device object that its owner replaced or no longer needs.
	ReleaseResource(r Releaser)
}

// Releaser is any device object with an explicit release, e.g. *wgpu.Buffer or *wgpu.BindGroup.
type Releaser interface {
	Release()
}

// RenderPass is the draw-recording surface of a render pass encoder.
type RenderPass interface {
	SetPipeline(pipeline *wgpu.RenderPipeline)
	SetBindGroup(groupIndex uint32, group *wgpu.BindGroup, dynamicOffsets []uint32)
	SetVertexBuffer(slot uint32, buffer *wgpu.Buffer, offset, size uint64)
	SetIndexBuffer(buffer *wgpu.Buffer, format wgpu.IndexFormat, offset, size uint64)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	DrawIndexedIndirect(indirectBuffer *wgpu.Buffer, indirectOffset uint64)
}

var _ RenderPass = (*wgpu.RenderPassEncoder)(nil)

// Frame holds the per-frame objects acquired by Handle.BeginFrame.
type Frame struct {
	// Encoder records the frame's commands.
	Encoder *wgpu.CommandEncoder

	// View is the swapchain texture view to render into.
	View *wgpu.TextureView

	// DepthView is the depth attachment matching the surface size.
	DepthView *wgpu.TextureView

	surfaceTexture *wgpu.Texture
}

// Handle owns the GPU device, its queue and the presentation surface.
type Handle interface {
	Device

	// WGPUDevice returns the underlying wgpu device.
	WGPUDevice() *wgpu.Device

	// Queue returns the device submission queue.
	Queue() *wgpu.Queue

	// SurfaceFormat returns the color format the surface was configured with.
	SurfaceFormat() wgpu.TextureFormat

	// Resize reconfigures the surface and recreates the depth texture.
	// Zero dimensions are ignored (minimised window).
	//
	// Parameters:
	//   - width, height: new framebuffer size in pixels
	Resize(width, height int)

	// Size returns the configured surface size in pixels.
	Size() (width, height int)

	// BeginFrame acquires the next surface texture and opens a command encoder.
	//
	// Returns:
	//   - *Frame: the frame to record into
	//   - error: the surface texture could not be acquired
	BeginFrame() (*Frame, error)

	// Submit finishes the frame's encoder, submits it, presents the surface and releases the
	// frame's transient objects.
	//
	// Parameters:
	//   - frame: the frame returned by BeginFrame
	//
	// Returns:
	//   - error: the command buffer could not be finished
	Submit(frame *Frame) error

	// Release destroys the device-side objects owned by the handle.
	Release()
}
