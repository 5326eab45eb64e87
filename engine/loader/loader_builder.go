package loader

import (
	"github.com/lelepado01/RenderingEngine/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithAsset pre-populates the cache, e.g. with procedurally built geometry.
//
// Parameters:
//   - key: the cache key
//   - asset: the asset returned for key
//
// Returns:
//   - LoaderBuilderOption: a function that applies the option to a loader
func WithAsset(key string, asset model.Asset) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[key] = asset
	}
}
