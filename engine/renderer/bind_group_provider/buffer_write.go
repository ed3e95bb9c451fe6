package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// BufferWrite is a pending upload of staged bytes into one buffer binding of a BindGroupProvider. Writes are
// collected while a provider's resources are resolved and flushed to the queue once every buffer exists.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// Buffer returns the destination buffer, nil if the provider has none at Binding.
func (w BufferWrite) Buffer() *wgpu.Buffer {
	if w.Provider == nil {
		return nil
	}
	return w.Provider.Buffer(w.Binding)
}

// Padded returns Data zero-padded to a multiple of 4 bytes, which queue writes require. Aligned data is
// returned as is.
func (w BufferWrite) Padded() []byte {
	if len(w.Data)%4 == 0 {
		return w.Data
	}
	padded := make([]byte, (len(w.Data)+3)&^3)
	copy(padded, w.Data)
	return padded
}

// Fits reports whether the padded write stays within a buffer of size bytes.
//
// Parameters:
//   - size: the destination buffer size in bytes
//
// Returns:
//   - bool: true if Offset plus the padded length does not exceed size
func (w BufferWrite) Fits(size uint64) bool {
	return w.Offset+uint64(len(w.Padded())) <= size
}
