package device

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
)

// MemoryDevice keeps an image in a byte slice. Used by tests and by the
// shell when no image path is configured.
type MemoryDevice struct {
	mu   sync.Mutex
	data []byte
}

var _ interfaces.BlockDevice = (*MemoryDevice)(nil)

// NewMemoryDevice returns a device backed by data
func NewMemoryDevice(data []byte) *MemoryDevice {
	return &MemoryDevice{data: data}
}

// ReadAt copies from the buffer; reading past the end is an error
func (m *MemoryDevice) ReadAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return 0, fmt.Errorf("disk read error: offset %d length %d out of range (size %d): %w", off, len(p), len(m.data), io.ErrUnexpectedEOF)
	}
	return copy(p, m.data[off:]), nil
}

// WriteAt copies into the buffer, growing it if needed
func (m *MemoryDevice) WriteAt(p []byte, off int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if off < 0 {
		return 0, fmt.Errorf("disk write error: negative offset %d", off)
	}
	if end := off + int64(len(p)); end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	return copy(m.data[off:], p), nil
}

// Size returns the buffer length
func (m *MemoryDevice) Size() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data)), nil
}

// Truncate resizes the buffer, keeping existing content
func (m *MemoryDevice) Truncate(size int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if size < 0 {
		return fmt.Errorf("invalid size %d", size)
	}
	resized := make([]byte, size)
	copy(resized, m.data)
	m.data = resized
	return nil
}

// Sync is a no-op
func (m *MemoryDevice) Sync() error {
	return nil
}

// Close is a no-op so the same buffer can be reopened
func (m *MemoryDevice) Close() error {
	return nil
}

// Bytes returns a copy of the buffer
func (m *MemoryDevice) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out
}

// MemoryOpener hands out one MemoryDevice per path so that reopening a path
// sees earlier writes
type MemoryOpener struct {
	mu      sync.Mutex
	devices map[string]*MemoryDevice
}

var _ interfaces.DeviceOpener = (*MemoryOpener)(nil)

// NewMemoryOpener returns an opener with no images
func NewMemoryOpener() *MemoryOpener {
	return &MemoryOpener{devices: make(map[string]*MemoryDevice)}
}

// Open returns the device for path, creating an empty one if allowed
func (o *MemoryOpener) Open(path string, create bool) (interfaces.BlockDevice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if dev, ok := o.devices[path]; ok {
		return dev, nil
	}
	if !create {
		return nil, fmt.Errorf("failed to open image %s: %w", path, os.ErrNotExist)
	}
	dev := NewMemoryDevice(nil)
	o.devices[path] = dev
	return dev, nil
}

// Device returns the device for path, or nil
func (o *MemoryOpener) Device(path string) *MemoryDevice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.devices[path]
}
