// Package window opens the OS window the engine presents into and forwards its input events.
package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// Window is the OS window the engine presents into. Its event callbacks run on the goroutine
// running ProcessMessages.
type Window interface {
	// SetUpdateCallback sets the per-iteration frame function; returning false ends the loop.
	SetUpdateCallback(callback func() bool)

	// SetResizeCallback sets the function told about new framebuffer sizes, in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the wheel handler. Positive deltas scroll away from the user.
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the handler for key presses, receiving common.Key* codes.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the handler for key releases.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetMouseMoveCallback sets the handler for absolute cursor positions.
	SetMouseMoveCallback(callback func(x, y int32))

	// SetFocusCallback sets the focus handler. Keys released while unfocused are never reported,
	// so held input should be dropped when focused is false.
	SetFocusCallback(callback func(focused bool))

	// SurfaceDescriptor describes the native window for wgpu surface creation.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, nil once the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is open and no close was requested.
	IsRunning() bool

	// RequestClose ends the message loop after the current iteration.
	RequestClose()

	// Close destroys the window.
	//
	// Returns:
	//   - error: the window was never opened or is already closed
	Close() error

	// ProcessMessages polls events and calls the update callback until the window closes or
	// the callback returns false.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int

	// Aspect returns width over height, 1 for a zero-height framebuffer.
	Aspect() float32
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	title               string
	minWidth, minHeight int
	width, height       int // framebuffer pixels
	captureCursor       bool

	// internalWindow is the platform state, a *glfwState while open.
	internalWindow any

	onUpdate    func() bool
	onResize    func(width, height int)
	onScroll    func(delta float32)
	onKeyDown   func(keyCode uint32)
	onKeyUp     func(keyCode uint32)
	onMouseMove func(x, y int32)
	onFocus     func(focused bool)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a Window with the specified options.
// Applies default values first, then each option in order. Must be called from the main
// goroutine, which then has to run ProcessMessages.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
//   - error: the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Rendering Engine",
		minWidth:  320,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, fmt.Errorf("failed to create platform window: %w", err)
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func() bool) {
	w.onUpdate = callback
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetMouseMoveCallback(callback func(x, y int32)) {
	w.onMouseMove = callback
}

func (w *engineWindow) SetFocusCallback(callback func(focused bool)) {
	w.onFocus = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) RequestClose() {
	platformRequestClose(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for platformProcessMessages(w) {
		if w.onUpdate != nil && !w.onUpdate() {
			platformRequestClose(w)
			return
		}
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

func (w *engineWindow) Aspect() float32 {
	return aspect(w.width, w.height)
}

func aspect(width, height int) float32 {
	if height <= 0 {
		return 1
	}
	return float32(width) / float32(height)
}
