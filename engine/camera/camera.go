// Package camera produces the view-projection data the engines upload each frame. Two variants
// share the Camera interface: a free-flying first-person camera and a camera orbiting a target.
package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownKind is returned by New for a kind it does not know.
var ErrUnknownKind = errors.New("unknown camera kind")

// Kind selects a camera variant.
type Kind string

const (
	KindFPS         Kind = "fps"
	KindThirdPerson Kind = "third_person"
)

// Defaults shared by both variants. Angles are in degrees.
const (
	DefaultFov   float32 = 45
	DefaultNear  float32 = 0.1
	DefaultFar   float32 = 1000
	DefaultSpeed float32 = 20

	// pitch stays short of the poles so the look-at basis never degenerates
	maxPitch float32 = 89
)

// OpenGLToWGPU remaps OpenGL clip depth [-1, 1] to the [0, 1] range WebGPU expects.
var OpenGLToWGPU = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

var worldUp = mgl32.Vec3{0, 1, 0}

// Camera is the capability set the engines need from a camera.
type Camera interface {
	// ViewProjection returns projection * view, already remapped to WebGPU clip depth.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view-projection matrix
	ViewProjection() mgl32.Mat4

	// Position returns the world-space eye position.
	Position() mgl32.Vec3

	// Forward returns the unit view direction.
	Forward() mgl32.Vec3

	// UniformData returns the GPUCameraUniform bytes for the current state.
	//
	// Returns:
	//   - []byte: UniformSize bytes
	UniformData() []byte

	// SetAspect sets the projection aspect ratio (width / height).
	//
	// Parameters:
	//   - aspect: the aspect ratio; non-positive values are ignored
	SetAspect(aspect float32)

	// Rotate turns the camera by a cursor delta scaled by the camera's sensitivity.
	//
	// Parameters:
	//   - dx: horizontal cursor delta, positive to the right
	//   - dy: vertical cursor delta, positive downward
	Rotate(dx, dy float32)

	// Update applies one frame of input: the cursor delta rotates, held movement actions
	// translate at the camera speed.
	//
	// Parameters:
	//   - dt: frame time in seconds
	//   - in: the input state of this frame, may be nil
	Update(dt float32, in Input)
}

// New creates a camera of the given kind.
//
// Parameters:
//   - kind: KindFPS or KindThirdPerson
//   - aspect: the initial aspect ratio
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - Camera: the camera
//   - error: ErrUnknownKind
func New(kind Kind, aspect float32, options ...CameraBuilderOption) (Camera, error) {
	switch kind {
	case KindFPS:
		return NewFPSCamera(aspect, options...), nil
	case KindThirdPerson:
		return NewThirdPersonCamera(aspect, options...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// base holds the state both variants share.
type base struct {
	position mgl32.Vec3
	forward  mgl32.Vec3

	yaw   float32
	pitch float32

	speed       float32
	sensitivity float32
	distance    float32

	fov    float32
	aspect float32
	near   float32
	far    float32
}

func newBase(aspect, sensitivity float32) base {
	return base{
		forward:     mgl32.Vec3{0, 0, -1},
		yaw:         -90,
		speed:       DefaultSpeed,
		sensitivity: sensitivity,
		fov:         DefaultFov,
		aspect:      aspect,
		near:        DefaultNear,
		far:         DefaultFar,
	}
}

func (b *base) ViewProjection() mgl32.Mat4 {
	proj := mgl32.Perspective(mgl32.DegToRad(b.fov), b.aspect, b.near, b.far)
	view := mgl32.LookAtV(b.position, b.position.Add(b.forward), worldUp)
	return OpenGLToWGPU.Mul4(proj).Mul4(view)
}

func (b *base) Position() mgl32.Vec3 {
	return b.position
}

func (b *base) Forward() mgl32.Vec3 {
	return b.forward
}

func (b *base) UniformData() []byte {
	u := GPUCameraUniform{
		ViewProj: b.ViewProjection(),
		Position: b.position.Vec4(0),
	}
	return u.Marshal()
}

func (b *base) SetAspect(aspect float32) {
	if aspect > 0 {
		b.aspect = aspect
	}
}

// turn applies a scaled cursor delta to yaw and pitch.
func (b *base) turn(dx, dy float32) {
	b.yaw += dx * b.sensitivity
	b.pitch = mgl32.Clamp(b.pitch-dy*b.sensitivity, -maxPitch, maxPitch)
}

// momentum sums the held movement directions, each at full speed, and keeps the result at speed.
// Cancelling directions give zero.
func (b *base) momentum(in Input, forward mgl32.Vec3) mgl32.Vec3 {
	if in == nil {
		return mgl32.Vec3{}
	}
	right := forward.Cross(worldUp)
	if right.Len() > 0 {
		right = right.Normalize()
	}
	directions := [...]struct {
		action Action
		dir    mgl32.Vec3
	}{
		{MoveForward, forward},
		{MoveBack, forward.Mul(-1)},
		{MoveRight, right},
		{MoveLeft, right.Mul(-1)},
		{MoveUp, worldUp},
		{MoveDown, worldUp.Mul(-1)},
	}
	var m mgl32.Vec3
	for _, d := range directions {
		if !in.Held(d.action) {
			continue
		}
		m = m.Add(d.dir.Mul(b.speed))
		if l := m.Len(); l > 1e-6 {
			m = m.Mul(b.speed / l)
		} else {
			m = mgl32.Vec3{}
		}
	}
	return m
}

func sincos(deg float32) (float32, float32) {
	s, c := math.Sincos(float64(mgl32.DegToRad(deg)))
	return float32(s), float32(c)
}
