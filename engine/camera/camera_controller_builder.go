package camera

// CameraControllerOption is a functional option for configuring a CameraController.
type CameraControllerOption func(*cameraControllerImpl)

// WithBinding binds a key to an action, replacing any previous binding of that key.
//
// Parameters:
//   - keyCode: the window key code
//   - a: the action the key triggers
//
// Returns:
//   - CameraControllerOption: functional option to add the binding
func WithBinding(keyCode uint32, a Action) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.bindings[keyCode] = a
	}
}

// WithBindings replaces the whole key map.
//
// Parameters:
//   - bindings: key code to action
//
// Returns:
//   - CameraControllerOption: functional option to set the key map
func WithBindings(bindings map[uint32]Action) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.bindings = make(map[uint32]Action, len(bindings))
		for k, a := range bindings {
			cc.bindings[k] = a
		}
	}
}
