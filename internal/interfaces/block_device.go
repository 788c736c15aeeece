// File: internal/interfaces/block_device.go
package interfaces

import "io"

// BlockDevice is the backing store an image lives on
type BlockDevice interface {
	io.ReaderAt
	io.WriterAt
	io.Closer

	// Size returns the current size of the device in bytes
	Size() (int64, error)

	// Truncate resizes the device, zero-filling any growth
	Truncate(size int64) error

	// Sync flushes pending writes to stable storage
	Sync() error
}

// DeviceOpener opens the device behind an image path. Every engine
// operation opens the device, works on it, and closes it again.
type DeviceOpener interface {
	// Open opens an existing image, or creates an empty one when create is true
	Open(path string, create bool) (BlockDevice, error)
}
