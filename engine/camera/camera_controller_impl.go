package camera

import (
	"sync"

	"github.com/lelepado01/RenderingEngine/common"
)

// cameraControllerImpl is the implementation of CameraController. Window callbacks may arrive on
// a different goroutine than the frame loop, so state is guarded.
type cameraControllerImpl struct {
	mu *sync.Mutex

	bindings map[uint32]Action
	down     map[uint32]bool

	lastX, lastY int32
	seen         bool
	dx, dy       float32
}

var _ CameraController = &cameraControllerImpl{}

// DefaultBindings maps WASD and the arrow keys to planar movement, space to up and left shift
// to down.
func DefaultBindings() map[uint32]Action {
	return map[uint32]Action{
		common.KeyW:         MoveForward,
		common.KeyS:         MoveBack,
		common.KeyA:         MoveLeft,
		common.KeyD:         MoveRight,
		common.KeyUp:        MoveForward,
		common.KeyDown:      MoveBack,
		common.KeyLeft:      MoveLeft,
		common.KeyRight:     MoveRight,
		common.KeySpace:     MoveUp,
		common.KeyLeftShift: MoveDown,
	}
}

// NewCameraController creates a controller with DefaultBindings.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:       &sync.Mutex{},
		bindings: DefaultBindings(),
		down:     make(map[uint32]bool),
	}
	for _, opt := range options {
		opt(cc)
	}
	return cc
}

func (cc *cameraControllerImpl) Held(a Action) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	for key, pressed := range cc.down {
		if pressed && cc.bindings[key] == a {
			return true
		}
	}
	return false
}

func (cc *cameraControllerImpl) LookDelta() (float32, float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.dx, cc.dy
}

func (cc *cameraControllerImpl) KeyDown(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if _, ok := cc.bindings[keyCode]; ok {
		cc.down[keyCode] = true
	}
}

func (cc *cameraControllerImpl) KeyUp(keyCode uint32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	delete(cc.down, keyCode)
}

func (cc *cameraControllerImpl) MouseMove(x, y int32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.seen {
		cc.dx += float32(x - cc.lastX)
		cc.dy += float32(y - cc.lastY)
	}
	cc.lastX, cc.lastY, cc.seen = x, y, true
}

func (cc *cameraControllerImpl) Reset() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	clear(cc.down)
	cc.seen = false
	cc.dx, cc.dy = 0, 0
}

func (cc *cameraControllerImpl) EndFrame() {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.dx, cc.dy = 0, 0
}
