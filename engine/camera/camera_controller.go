package camera

// Action is a movement intent a key can be bound to.
type Action int

const (
	MoveForward Action = iota
	MoveBack
	MoveLeft
	MoveRight
	MoveUp
	MoveDown
)

// Input is the per-frame input state a camera reads in Update.
type Input interface {
	// Held reports whether any key bound to a is down.
	Held(a Action) bool

	// LookDelta returns the cursor movement accumulated since the last frame.
	//
	// Returns:
	//   - dx, dy: pixels, x to the right and y downward
	LookDelta() (dx, dy float32)
}

// CameraController turns raw window events into camera Input. Wire its event methods to the
// window callbacks and call EndFrame once the camera has been updated.
type CameraController interface {
	Input

	// KeyDown records a key press.
	//
	// Parameters:
	//   - keyCode: the window key code
	KeyDown(keyCode uint32)

	// KeyUp records a key release.
	//
	// Parameters:
	//   - keyCode: the window key code
	KeyUp(keyCode uint32)

	// MouseMove records an absolute cursor position. The first position only sets the
	// reference point.
	//
	// Parameters:
	//   - x, y: cursor position in window pixels
	MouseMove(x, y int32)

	// Reset releases every key, e.g. when the window loses focus.
	Reset()

	// EndFrame clears the accumulated cursor delta.
	EndFrame()
}
