package terrain

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"

	"github.com/lelepado01/RenderingEngine/common"
	"github.com/ojrac/opensimplex-go"
	"golang.org/x/image/tiff"
)

// Heightmap samples a decoded greyscale TIFF. One pixel covers one tile; the map is centred on
// the world origin and clamps at its edges.
type Heightmap struct {
	width, height int
	tileSize      float32
	samples       []float32
}

var _ HeightSource = &Heightmap{}

// DecodeHeightmap reads a TIFF and normalises every pixel to world height.
//
// Parameters:
//   - r: the TIFF stream
//   - tileSize: world size of one pixel
//
// Returns:
//   - *Heightmap: the decoded map
//   - error: a decode failure or ErrEmptyHeightmap
func DecodeHeightmap(r io.Reader, tileSize float32) (*Heightmap, error) {
	img, err := tiff.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode heightmap: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyHeightmap
	}

	h := &Heightmap{
		width:    b.Dx(),
		height:   b.Dy(),
		tileSize: tileSize,
		samples:  make([]float32, b.Dx()*b.Dy()),
	}
	for y := range h.height {
		for x := range h.width {
			h.samples[y*h.width+x] = normalizeSample(rawSample(img, b.Min.X+x, b.Min.Y+y))
		}
	}
	return h, nil
}

// LoadHeightmap opens and decodes the TIFF at path.
func LoadHeightmap(path string, tileSize float32) (*Heightmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h, err := DecodeHeightmap(f, tileSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

// rawSample returns the pixel as an unsigned 16-bit value. 8-bit maps are widened the way
// color.Gray16Model does.
func rawSample(img image.Image, x, y int) float32 {
	if g, ok := img.(*image.Gray16); ok {
		return float32(g.Gray16At(x, y).Y)
	}
	return float32(color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
}

func normalizeSample(v float32) float32 {
	return (v - heightmapOffset) / heightmapRange * MapHeight
}

// Size returns the map size in pixels.
func (h *Heightmap) Size() (width, height int) {
	return h.width, h.height
}

func (h *Heightmap) Height(x, z float32) float32 {
	px := int(math.Floor(float64(x/h.tileSize))) + h.width/2
	pz := int(math.Floor(float64(z/h.tileSize))) + h.height/2
	px = min(max(px, 0), h.width-1)
	pz = min(max(pz, 0), h.height-1)
	return h.samples[pz*h.width+px]
}

// NoiseHeight is fractal simplex noise scaled to world height, used when no heightmap is
// available.
type NoiseHeight struct {
	noise     opensimplex.Noise
	frequency float64
	amplitude float32
	octaves   int
}

var _ HeightSource = &NoiseHeight{}

// Noise defaults: hills a few chunks wide and a fifth of MapHeight tall.
const (
	DefaultNoiseFrequency = 1.0 / 256
	DefaultNoiseAmplitude = MapHeight / 5
	defaultNoiseOctaves   = 4
)

// NewNoiseHeight creates a noise height source.
//
// Parameters:
//   - seed: noise seed
//   - frequency: cycles per world unit of the first octave
//   - amplitude: world height of a full-scale sample
//
// Returns:
//   - *NoiseHeight: the source, heights in [0, amplitude]
func NewNoiseHeight(seed int64, frequency float64, amplitude float32) *NoiseHeight {
	return &NoiseHeight{
		noise:     opensimplex.NewNormalized(seed),
		frequency: frequency,
		amplitude: amplitude,
		octaves:   defaultNoiseOctaves,
	}
}

func (n *NoiseHeight) Height(x, z float32) float32 {
	return float32(fbm(n.noise, float64(x)*n.frequency, float64(z)*n.frequency, n.octaves)) * n.amplitude
}

// fbm sums octaves of normalised noise, halving the weight and doubling the frequency each
// time. The result stays in [0, 1].
func fbm(noise opensimplex.Noise, x, y float64, octaves int) float64 {
	var sum, norm float64
	weight := 1.0
	for range octaves {
		sum += noise.Eval2(x, y) * weight
		norm += weight
		x, y = x*2, y*2
		weight /= 2
	}
	return sum / norm
}

// OpenHeightSource loads the heightmap at path, falling back to noise when path is empty or
// the file cannot be read.
//
// Parameters:
//   - path: TIFF path, may be empty
//   - tileSize: world size of one heightmap pixel
//   - seed: noise seed for the fallback
//
// Returns:
//   - HeightSource: the heightmap or the noise fallback
func OpenHeightSource(path string, tileSize float32, seed int64) HeightSource {
	if path != "" {
		h, err := LoadHeightmap(path, tileSize)
		if err == nil {
			w, d := h.Size()
			common.Logger().Debug("heightmap loaded", "path", path, "width", w, "height", d)
			return h
		}
		common.Logger().Warn("heightmap unavailable, using noise", "path", path, "error", err)
	}
	return NewNoiseHeight(seed, DefaultNoiseFrequency, DefaultNoiseAmplitude)
}
