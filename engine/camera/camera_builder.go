package camera

import "github.com/go-gl/mathgl/mgl32"

// CameraBuilderOption is a functional option applied to either camera variant during construction.
type CameraBuilderOption func(*base)

// WithPosition sets the eye position of an FPS camera, or the target of a third-person camera.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - CameraBuilderOption: a function that sets the position
func WithPosition(p mgl32.Vec3) CameraBuilderOption {
	return func(b *base) {
		b.position = p
	}
}

// WithFov sets the vertical field of view.
//
// Parameters:
//   - degrees: field of view in degrees
//
// Returns:
//   - CameraBuilderOption: a function that sets the field of view
func WithFov(degrees float32) CameraBuilderOption {
	return func(b *base) {
		b.fov = degrees
	}
}

// WithClip sets the near and far clipping plane distances.
//
// Parameters:
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - CameraBuilderOption: a function that sets the clipping planes
func WithClip(near, far float32) CameraBuilderOption {
	return func(b *base) {
		b.near = near
		b.far = far
	}
}

// WithSpeed sets the movement speed in world units per second.
func WithSpeed(speed float32) CameraBuilderOption {
	return func(b *base) {
		b.speed = speed
	}
}

// WithSensitivity sets the degrees turned per cursor pixel.
func WithSensitivity(sensitivity float32) CameraBuilderOption {
	return func(b *base) {
		b.sensitivity = sensitivity
	}
}

// WithYawPitch sets the initial orientation.
//
// Parameters:
//   - yaw: rotation about +y in degrees
//   - pitch: elevation in degrees, clamped to ±89
//
// Returns:
//   - CameraBuilderOption: a function that sets the orientation
func WithYawPitch(yaw, pitch float32) CameraBuilderOption {
	return func(b *base) {
		b.yaw = yaw
		b.pitch = mgl32.Clamp(pitch, -maxPitch, maxPitch)
	}
}

// WithDistance sets the orbit radius of a third-person camera. FPS cameras ignore it.
func WithDistance(distance float32) CameraBuilderOption {
	return func(b *base) {
		b.distance = distance
	}
}
