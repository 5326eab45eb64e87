package bind_group_provider

import "github.com/lelepado01/RenderingEngine/engine/renderer/bind_group"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLabel sets the debug label used for the provider's buffers, layout and bind group.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - BindGroupProviderOption: a function that sets the label
func WithLabel(label string) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.label = label
	}
}

// WithVisibility overrides the default stage visibility of every binding
// (all stages for uniform providers, fragment for storage providers).
//
// Parameters:
//   - v: the shader stages that see the provider's bindings
//
// Returns:
//   - BindGroupProviderOption: a function that sets the visibility
func WithVisibility(v bind_group.Visibility) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.visibility = v
	}
}
