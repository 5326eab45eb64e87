package gpu

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lelepado01/RenderingEngine/common"
)

type wgpuHandle struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	forceFallback bool

	width  int
	height int

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView
}

var _ Handle = &wgpuHandle{}

// NewHandle creates the WebGPU instance, adapter, device and queue for the given surface and
// configures the surface at the requested size.
//
// Parameters:
//   - surfaceDescriptor: platform surface descriptor, typically from the window package
//   - width, height: initial framebuffer size in pixels
//   - options: functional options (present mode, fallback adapter)
//
// Returns:
//   - Handle: the ready-to-use GPU handle
//   - error: adapter or device acquisition failed
func NewHandle(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...HandleBuilderOption) (Handle, error) {
	runtime.LockOSThread()
	h := &wgpuHandle{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(h)
	}
	h.surface = h.instance.CreateSurface(surfaceDescriptor)

	adapter, err := h.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: h.forceFallback,
		CompatibleSurface:    h.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	h.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	h.device = device
	h.queue = device.GetQueue()

	capabilities := h.surface.GetCapabilities(h.adapter)
	if len(capabilities.Formats) == 0 {
		return nil, fmt.Errorf("surface reports no supported formats")
	}
	h.surfaceFormat = capabilities.Formats[0]

	h.Resize(width, height)
	common.Logger().Debug("gpu handle created", "format", h.surfaceFormat, "width", h.width, "height", h.height)
	return h, nil
}

func (h *wgpuHandle) CreateBuffer(desc *wgpu.BufferDescriptor) (*wgpu.Buffer, error) {
	return h.device.CreateBuffer(desc)
}

func (h *wgpuHandle) WriteBuffer(buf *wgpu.Buffer, offset uint64, data []byte) error {
	return h.queue.WriteBuffer(buf, offset, data)
}

func (h *wgpuHandle) CreateBindGroupLayout(desc *wgpu.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	return h.device.CreateBindGroupLayout(desc)
}

func (h *wgpuHandle) CreateBindGroup(desc *wgpu.BindGroupDescriptor) (*wgpu.BindGroup, error) {
	return h.device.CreateBindGroup(desc)
}

func (h *wgpuHandle) CreatePipelineLayout(desc *wgpu.PipelineLayoutDescriptor) (*wgpu.PipelineLayout, error) {
	return h.device.CreatePipelineLayout(desc)
}

func (h *wgpuHandle) CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error) {
	return h.device.CreateShaderModule(desc)
}

func (h *wgpuHandle) CreateRenderPipeline(desc *wgpu.RenderPipelineDescriptor) (*wgpu.RenderPipeline, error) {
	return h.device.CreateRenderPipeline(desc)
}

func (h *wgpuHandle) ReleaseResource(r Releaser) {
	if r != nil {
		r.Release()
	}
}

func (h *wgpuHandle) WGPUDevice() *wgpu.Device {
	return h.device
}

func (h *wgpuHandle) Queue() *wgpu.Queue {
	return h.queue
}

func (h *wgpuHandle) SurfaceFormat() wgpu.TextureFormat {
	return h.surfaceFormat
}

func (h *wgpuHandle) Size() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

func (h *wgpuHandle) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	capabilities := h.surface.GetCapabilities(h.adapter)
	h.surface.Configure(h.adapter, h.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      h.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: h.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	h.width = width
	h.height = height

	if h.depthView != nil {
		h.depthView.Release()
	}
	if h.depthTexture != nil {
		h.depthTexture.Release()
	}

	depthTexture, err := h.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        DepthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		panic(fmt.Sprintf("gpu: failed to create depth texture: %v", err))
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("gpu: failed to create depth view: %v", err))
	}
	h.depthTexture = depthTexture
	h.depthView = depthView
}

func (h *wgpuHandle) BeginFrame() (*Frame, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	surfaceTexture, err := h.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire surface texture: %w", err)
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create surface view: %w", err)
	}

	encoder, err := h.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return nil, fmt.Errorf("failed to create command encoder: %w", err)
	}

	return &Frame{
		Encoder:        encoder,
		View:           view,
		DepthView:      h.depthView,
		surfaceTexture: surfaceTexture,
	}, nil
}

func (h *wgpuHandle) Submit(frame *Frame) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	defer func() {
		frame.Encoder.Release()
		frame.View.Release()
		frame.surfaceTexture.Release()
	}()

	commandBuffer, err := frame.Encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("failed to finish command encoder: %w", err)
	}
	defer commandBuffer.Release()

	h.queue.Submit(commandBuffer)
	h.surface.Present()
	return nil
}

func (h *wgpuHandle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.depthView != nil {
		h.depthView.Release()
	}
	if h.depthTexture != nil {
		h.depthTexture.Release()
	}
	h.queue.Release()
	h.device.Release()
	h.adapter.Release()
	h.surface.Release()
	h.instance.Release()
}
