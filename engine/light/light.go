// Package light holds the scene lights the mesh engine shades with and their GPU layouts.
package light

import "math"

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	position [3]float32
	ambient  [3]float32
	diffuse  [3]float32
	specular [3]float32
	enabled  bool
}

// Light is a point light with Phong ambient, diffuse and specular terms.
//
// Lights are owned by the application and marshaled into the engine's light storage buffer each
// frame via MarshalLights.
type Light interface {
	// Position returns the world-space position of the light.
	//
	// Returns:
	//   - [3]float32: position as (x, y, z)
	Position() [3]float32

	// Ambient returns the ambient term.
	//
	// Returns:
	//   - [3]float32: RGB
	Ambient() [3]float32

	// Diffuse returns the diffuse term.
	//
	// Returns:
	//   - [3]float32: RGB
	Diffuse() [3]float32

	// Specular returns the specular term.
	//
	// Returns:
	//   - [3]float32: RGB
	Specular() [3]float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped during GPU buffer marshaling.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// SetPosition sets the world-space position of the light.
	//
	// Parameters:
	//   - x, y, z: position components
	SetPosition(x, y, z float32)

	// SetAmbient sets the ambient term.
	SetAmbient(r, g, b float32)

	// SetDiffuse sets the diffuse term.
	SetDiffuse(r, g, b float32)

	// SetSpecular sets the specular term.
	SetSpecular(r, g, b float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)
}

var _ Light = &lightImpl{}

// NewLight creates an enabled light at (15, 0, 15) with a dim reddish diffuse term, then applies
// the options.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		position: [3]float32{15, 0, 15},
		ambient:  [3]float32{0.5, 0.5, 0.5},
		diffuse:  [3]float32{0.2, 0.1, 0.1},
		specular: [3]float32{0.1, 0.1, 0.1},
		enabled:  true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Position() [3]float32 {
	return l.position
}

func (l *lightImpl) Ambient() [3]float32 {
	return l.ambient
}

func (l *lightImpl) Diffuse() [3]float32 {
	return l.diffuse
}

func (l *lightImpl) Specular() [3]float32 {
	return l.specular
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetPosition(x, y, z float32) {
	l.position = [3]float32{x, y, z}
}

func (l *lightImpl) SetAmbient(r, g, b float32) {
	l.ambient = [3]float32{r, g, b}
}

func (l *lightImpl) SetDiffuse(r, g, b float32) {
	l.diffuse = [3]float32{r, g, b}
}

func (l *lightImpl) SetSpecular(r, g, b float32) {
	l.specular = [3]float32{r, g, b}
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

// DirectionalLight is a light at infinity, such as the sun.
type DirectionalLight struct {
	Direction [3]float32
	Color     [3]float32
}

// NewDirectionalLight returns a warm light shining down and diagonally across the scene.
func NewDirectionalLight() DirectionalLight {
	return DirectionalLight{
		Direction: normalize3(0.5, -0.5, 0.5),
		Color:     [3]float32{1, 1, 0.5},
	}
}

// GPU returns the uniform layout of d.
func (d DirectionalLight) GPU() GPUDirectionalLight {
	return GPUDirectionalLight{
		Direction: vec4(d.Direction, 1),
		Color:     vec4(d.Color, 1),
	}
}

// normalize3 returns the unit vector of (x, y, z), or straight down for a zero vector.
func normalize3(x, y, z float32) [3]float32 {
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l == 0 {
		return [3]float32{0, -1, 0}
	}
	return [3]float32{x / l, y / l, z / l}
}
