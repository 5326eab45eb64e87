package bind_group

import "fmt"

// Slots maps symbolic names to bind group indices. Engines register every group they bind,
// in pipeline layout order, and look indices up by name when drawing, so that a shader's
// @group(n) and the draw-time SetBindGroup(n) cannot drift apart silently.
type Slots struct {
	names []string
	index map[string]uint32
}

// NewSlots creates an empty registry.
func NewSlots() *Slots {
	return &Slots{index: make(map[string]uint32)}
}

// Add registers name at the next group index.
//
// Parameters:
//   - name: unique slot name, e.g. "camera" or "material:0"
//
// Returns:
//   - uint32: the group index assigned to name
//   - error: name is already registered
func (s *Slots) Add(name string) (uint32, error) {
	if _, ok := s.index[name]; ok {
		return 0, fmt.Errorf("bind group slot %q already registered", name)
	}
	i := uint32(len(s.names))
	s.names = append(s.names, name)
	s.index[name] = i
	return i, nil
}

// MustAdd is Add for static registrations whose names are known to be unique.
func (s *Slots) MustAdd(name string) uint32 {
	i, err := s.Add(name)
	if err != nil {
		panic(fmt.Sprintf("bind_group: %v", err))
	}
	return i
}

// Index returns the group index registered for name.
func (s *Slots) Index(name string) (uint32, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Names returns the registered names in group order.
func (s *Slots) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of registered slots.
func (s *Slots) Len() int {
	return len(s.names)
}
