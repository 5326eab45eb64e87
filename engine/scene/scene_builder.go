package scene

import "github.com/lelepado01/RenderingEngine/engine/renderer/shader"

// SceneBuilderOption is a functional option for configuring a Scene.
type SceneBuilderOption func(*sceneImpl)

// WithContent appends content updated before the engine each frame, in the order given.
//
// Parameters:
//   - c: the content
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithContent(c Content) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.contents = append(s.contents, c)
	}
}

// WithShaderSource sets the pre-processor Reload reads changed shaders through. Without one,
// Reload does nothing.
//
// Parameters:
//   - pp: the pre-processor the engine's shaders were loaded with
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShaderSource(pp shader.PreProcessor) SceneBuilderOption {
	return func(s *sceneImpl) {
		s.shaders = pp
	}
}
