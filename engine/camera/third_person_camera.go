package camera

import "github.com/go-gl/mathgl/mgl32"

const (
	// DefaultThirdPersonSensitivity is the degrees turned per cursor pixel by a third-person camera.
	DefaultThirdPersonSensitivity float32 = 0.1

	// DefaultDistance is the orbit radius of a third-person camera.
	DefaultDistance float32 = 15

	minDistance float32 = 2
)

// ThirdPersonCamera orbits a target point and always looks at it. Yaw swings it around the
// target; pitch tilts the orbit. Movement input moves the target on the horizontal plane, with
// explicit up and down actions for height.
type ThirdPersonCamera struct {
	base
	target mgl32.Vec3
}

var _ Camera = &ThirdPersonCamera{}

// NewThirdPersonCamera creates a camera orbiting the origin. WithPosition sets the target.
//
// Parameters:
//   - aspect: the initial aspect ratio
//   - options: variadic list of CameraBuilderOption functions
//
// Returns:
//   - *ThirdPersonCamera: the camera
func NewThirdPersonCamera(aspect float32, options ...CameraBuilderOption) *ThirdPersonCamera {
	b := newBase(aspect, DefaultThirdPersonSensitivity)
	b.yaw = 0
	b.distance = DefaultDistance
	for _, opt := range options {
		opt(&b)
	}
	c := &ThirdPersonCamera{base: b, target: b.position}
	c.orbit()
	return c
}

func (c *ThirdPersonCamera) Rotate(dx, dy float32) {
	c.turn(dx, dy)
	c.orbit()
}

func (c *ThirdPersonCamera) Update(dt float32, in Input) {
	if in != nil {
		if dx, dy := in.LookDelta(); dx != 0 || dy != 0 {
			c.turn(dx, dy)
		}
	}
	planar := mgl32.Vec3{c.forward.X(), 0, c.forward.Z()}
	if planar.Len() > 0 {
		planar = planar.Normalize()
	}
	c.target = c.target.Add(c.momentum(in, planar).Mul(dt))
	c.orbit()
}

// Target returns the point the camera orbits.
func (c *ThirdPersonCamera) Target() mgl32.Vec3 {
	return c.target
}

// SetTarget moves the orbit centre, carrying the camera along.
//
// Parameters:
//   - t: the new world-space target
func (c *ThirdPersonCamera) SetTarget(t mgl32.Vec3) {
	c.target = t
	c.orbit()
}

// Distance returns the orbit radius.
func (c *ThirdPersonCamera) Distance() float32 {
	return c.distance
}

// Zoom moves the camera toward the target for positive delta and away for negative delta, one
// unit per step, never closer than two units.
func (c *ThirdPersonCamera) Zoom(delta float32) {
	c.distance = max(c.distance-delta, minDistance)
	c.orbit()
}

// orbit places the eye on the orbit sphere and aims it at the target.
func (c *ThirdPersonCamera) orbit() {
	sy, cy := sincos(c.yaw)
	_, cp := sincos(c.pitch)
	offset := mgl32.Vec3{sy, cp, cy}.Mul(c.distance)
	c.position = c.target.Add(offset)
	c.forward = offset.Mul(-1).Normalize()
}
