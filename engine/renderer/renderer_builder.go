package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithClearColor sets the initial clear color.
//
// Parameters:
//   - c: RGBA in [0, 1]
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color to a renderer
func WithClearColor(c [4]float64) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}
