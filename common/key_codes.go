package common

// Key codes delivered by the window. They match GLFW's, which uses ASCII for printable keys.
const (
	KeyW     = 87
	KeyA     = 65
	KeyS     = 83
	KeyD     = 68
	KeyQ     = 81
	KeyE     = 69
	KeyX     = 88
	KeySpace = 32

	KeyEsc        = 256
	KeyRight      = 262
	KeyLeft       = 263
	KeyDown       = 264
	KeyUp         = 265
	KeyLeftShift  = 340
	KeyRightShift = 344
)
