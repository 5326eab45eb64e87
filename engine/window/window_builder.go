package window

// WindowBuilderOption is a functional option for configuring an engineWindow.
// Use the With* functions to create options.
type WindowBuilderOption func(w *engineWindow)

// WithTitle sets the window title displayed in the title bar.
//
// Parameters:
//   - title: the window title text
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		if title != "" {
			w.title = title
		}
	}
}

// WithSize sets the initial window size. Non-positive values keep the default.
//
// Parameters:
//   - width, height: initial size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 && height > 0 {
			w.width = width
			w.height = height
		}
	}
}

// WithMinSize sets the smallest size the window can be resized to.
//
// Parameters:
//   - width, height: minimum size in screen coordinates
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithMinSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = width
		w.minHeight = height
	}
}

// WithCursorCapture hides the cursor and reports unbounded motion, for mouse look.
//
// Parameters:
//   - enabled: if true, the cursor is captured while the window has focus
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithCursorCapture(enabled bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.captureCursor = enabled
	}
}
