package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These exercise the platform-independent half of the window; creating a GLFW window needs a
// display.

func TestOptions(t *testing.T) {
	w := &engineWindow{title: "x", width: 1280, height: 720}
	for _, opt := range []WindowBuilderOption{
		WithTitle("Terrain"),
		WithSize(800, 600),
		WithMinSize(100, 50),
		WithCursorCapture(true),
	} {
		opt(w)
	}
	assert.Equal(t, "Terrain", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, 100, w.minWidth)
	assert.Equal(t, 50, w.minHeight)
	assert.True(t, w.captureCursor)
}

func TestOptionsIgnoreEmptyValues(t *testing.T) {
	w := &engineWindow{title: "x", width: 1280, height: 720}
	WithTitle("")(w)
	WithSize(0, 600)(w)
	assert.Equal(t, "x", w.title)
	assert.Equal(t, 1280, w.Width())
	assert.Equal(t, 720, w.Height())
}

func TestAspect(t *testing.T) {
	w := &engineWindow{width: 1600, height: 800}
	assert.InDelta(t, 2, w.Aspect(), 1e-6)

	w.height = 0
	assert.InDelta(t, 1, w.Aspect(), 1e-6)
}

func TestUninitialisedWindow(t *testing.T) {
	w := &engineWindow{}
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	w.RequestClose()

	called := false
	w.SetUpdateCallback(func() bool { called = true; return true })
	w.ProcessMessages()
	assert.False(t, called)
}
