package bind_group_provider

import (
	"errors"

	"github.com/lelepado01/RenderingEngine/engine/gpu"
)

// BufferWrite describes a single in-place write of Data into binding Binding of Provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Data     []byte
}

// WriteAll performs every write in order and joins the failures.
//
// Parameters:
//   - device: the device whose queue performs the writes
//   - writes: the writes to perform
//
// Returns:
//   - error: the joined errors of the failed writes, nil if all succeeded
func WriteAll(device gpu.Device, writes []BufferWrite) error {
	var errs []error
	for _, w := range writes {
		if err := w.Provider.Write(device, w.Binding, w.Data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
