package terrain

import (
	"github.com/ojrac/opensimplex-go"
)

// DefaultMaterialFrequency spreads one material patch over a few dozen tiles.
const DefaultMaterialFrequency = 1.0 / 64

// MaterialMap picks a tile's material from a noise map mixed with its normalised height.
type MaterialMap struct {
	noise     opensimplex.Noise
	frequency float64
}

// NewMaterialMap creates a material map.
func NewMaterialMap(seed int64, frequency float64) *MaterialMap {
	return &MaterialMap{
		noise:     opensimplex.NewNormalized(seed),
		frequency: frequency,
	}
}

// Value returns the mixed value in [0, 1] before banding.
func (m *MaterialMap) Value(x, z, height float32) float32 {
	r := float32(m.noise.Eval2(float64(x)*m.frequency, float64(z)*m.frequency))
	h := min(max(height/MapHeight, 0), 1)
	return r*(1-heightContribution) + h*heightContribution
}

// Material returns the palette material of the tile at (x, z) with the given height.
func (m *MaterialMap) Material(x, z, height float32) uint32 {
	return Band(m.Value(x, z, height))
}
