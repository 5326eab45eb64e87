package camera

import "github.com/go-gl/mathgl/mgl32"

// DefaultFPSSensitivity is the degrees turned per cursor pixel by an FPS camera.
const DefaultFPSSensitivity float32 = 0.05

// FPSCamera flies freely: yaw and pitch steer the view, movement follows the full view direction.
type FPSCamera struct {
	base
}

var _ Camera = &FPSCamera{}

// NewFPSCamera creates a first-person camera at the origin looking down -z.
//
// Parameters:
//   - aspect: the initial aspect ratio
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - *FPSCamera: the camera
func NewFPSCamera(aspect float32, options ...CameraBuilderOption) *FPSCamera {
	c := &FPSCamera{base: newBase(aspect, DefaultFPSSensitivity)}
	for _, opt := range options {
		opt(&c.base)
	}
	c.look()
	return c
}

func (c *FPSCamera) Rotate(dx, dy float32) {
	c.turn(dx, dy)
	c.look()
}

func (c *FPSCamera) Update(dt float32, in Input) {
	if in != nil {
		if dx, dy := in.LookDelta(); dx != 0 || dy != 0 {
			c.Rotate(dx, dy)
		}
	}
	c.position = c.position.Add(c.momentum(in, c.forward).Mul(dt))
}

// SetPosition moves the eye without changing the view direction.
func (c *FPSCamera) SetPosition(p mgl32.Vec3) {
	c.position = p
}

func (c *FPSCamera) look() {
	sy, cy := sincos(c.yaw)
	sp, cp := sincos(c.pitch)
	c.forward = mgl32.Vec3{cy * cp, sp, sy * cp}.Normalize()
}
