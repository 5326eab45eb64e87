package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestNewLightDefaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, [3]float32{15, 0, 15}, l.Position())
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, l.Ambient())
	assert.Equal(t, [3]float32{0.2, 0.1, 0.1}, l.Diffuse())
	assert.Equal(t, [3]float32{0.1, 0.1, 0.1}, l.Specular())
	assert.True(t, l.Enabled())
}

func TestGPULightLayout(t *testing.T) {
	l := NewLight(WithPosition(10, 0, 0), WithAmbient(1, 2, 3), WithDiffuse(4, 5, 6), WithSpecular(7, 8, 9))
	g := ToGPULight(l)
	require.Equal(t, 64, g.Size())

	assert.Equal(t, []float32{
		10, 0, 0, 0,
		1, 2, 3, 0,
		4, 5, 6, 0,
		7, 8, 9, 0,
	}, floats(g.Marshal()))
}

func TestMarshalLightsSkipsDisabled(t *testing.T) {
	a := NewLight(WithPosition(1, 0, 0))
	b := NewLight(WithPosition(2, 0, 0), WithEnabled(false))
	c := NewLight(WithPosition(3, 0, 0))

	buf, n := MarshalLights([]Light{a, b, c})
	assert.Equal(t, 2, n)
	require.Len(t, buf, 128)
	f := floats(buf)
	assert.Equal(t, float32(1), f[0])
	assert.Equal(t, float32(3), f[16])

	b.SetEnabled(true)
	_, n = MarshalLights([]Light{a, b, c})
	assert.Equal(t, 3, n)
}

func TestMarshalLightsNeverEmpty(t *testing.T) {
	buf, n := MarshalLights(nil)
	assert.Zero(t, n)
	assert.Equal(t, make([]byte, 64), buf)

	buf, n = MarshalLights([]Light{NewLight(WithEnabled(false))})
	assert.Zero(t, n)
	assert.Len(t, buf, 64)
}

func TestMarshalLightsCap(t *testing.T) {
	lights := make([]Light, MaxGPULights+3)
	for i := range lights {
		lights[i] = NewLight()
	}
	buf, n := MarshalLights(lights)
	assert.Equal(t, MaxGPULights, n)
	assert.Len(t, buf, MaxGPULights*64)
}

func TestDirectionalLight(t *testing.T) {
	d := NewDirectionalLight()
	s := float32(1 / math.Sqrt(3))
	assert.InDeltaSlice(t, []float32{s, -s, s}, d.Direction[:], 1e-6)

	g := d.GPU()
	require.Equal(t, 32, g.Size())
	f := floats(g.Marshal())
	assert.Equal(t, float32(1), f[3])
	assert.Equal(t, []float32{1, 1, 0.5, 1}, f[4:8])
}

func TestSetters(t *testing.T) {
	l := NewLight()
	l.SetPosition(1, 2, 3)
	l.SetAmbient(0, 0, 0)
	l.SetDiffuse(1, 1, 1)
	l.SetSpecular(0.5, 0.5, 0.5)
	assert.Equal(t, [3]float32{1, 2, 3}, l.Position())
	assert.Equal(t, [3]float32{0, 0, 0}, l.Ambient())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Diffuse())
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, l.Specular())
}
