package window

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/lelepado01/RenderingEngine/common"
)

var errNotOpen = errors.New("window is not open")

// glfwState is the GLFW side of an engineWindow.
type glfwState struct {
	handle  *glfw.Window
	closing bool
}

func glfwOf(w *engineWindow) (*glfwState, bool) {
	gs, ok := w.internalWindow.(*glfwState)
	return gs, ok && gs != nil
}

// newPlatformWindow opens a GLFW window without a GL context and routes its events to w's
// callbacks. The calling goroutine is locked to its thread for the window's lifetime.
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	// the surface comes from wgpu, not from a GL context
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	handle, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %w", err)
	}
	handle.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)
	if w.captureCursor {
		handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
		if glfw.RawMouseMotionSupported() {
			handle.SetInputMode(glfw.RawMouseMotion, glfw.True)
		}
	}

	gs := &glfwState{handle: handle}
	w.internalWindow = gs
	bindEvents(w, gs)

	// pixels, not screen coordinates: they differ on high-DPI displays
	w.width, w.height = handle.GetFramebufferSize()
	return nil
}

func bindEvents(w *engineWindow, gs *glfwState) {
	gs.handle.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		onKey(w, gs, key, action)
	})
	gs.handle.SetScrollCallback(func(_ *glfw.Window, _, dy float64) {
		if w.onScroll != nil {
			w.onScroll(float32(dy))
		}
	})
	gs.handle.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		if w.onMouseMove != nil {
			w.onMouseMove(int32(x), int32(y))
		}
	})
	gs.handle.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if w.onFocus != nil {
			w.onFocus(focused)
		}
	})
	gs.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
}

// onKey closes the window on Escape and forwards presses and releases. Repeats are dropped.
func onKey(w *engineWindow, gs *glfwState, key glfw.Key, action glfw.Action) {
	if key == glfw.Key(common.KeyEsc) {
		if action == glfw.Press {
			gs.closing = true
			gs.handle.SetShouldClose(true)
		}
		return
	}
	switch {
	case action == glfw.Press && w.onKeyDown != nil:
		w.onKeyDown(uint32(key))
	case action == glfw.Release && w.onKeyUp != nil:
		w.onKeyUp(uint32(key))
	}
}

func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gs, ok := glfwOf(w)
	if !ok {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gs.handle)
}

func platformIsRunningCheck(w *engineWindow) bool {
	gs, ok := glfwOf(w)
	return ok && !gs.closing && !gs.handle.ShouldClose()
}

func platformRequestClose(w *engineWindow) {
	if gs, ok := glfwOf(w); ok {
		gs.closing = true
		gs.handle.SetShouldClose(true)
	}
}

// platformCloseWindow destroys the window and shuts GLFW down.
func platformCloseWindow(w *engineWindow) error {
	gs, ok := glfwOf(w)
	if !ok {
		return errNotOpen
	}
	gs.handle.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls pending events without blocking.
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
