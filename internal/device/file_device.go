package device

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
)

// FileDevice provides access to an image stored in a regular host file
type FileDevice struct {
	file       *os.File
	syncWrites bool
}

var _ interfaces.BlockDevice = (*FileDevice)(nil)

// FileOpener opens image files on the host filesystem
type FileOpener struct {
	// SyncWrites forces an fsync after every write
	SyncWrites bool
}

var _ interfaces.DeviceOpener = (*FileOpener)(nil)

// NewFileOpener creates an opener from device configuration
func NewFileOpener(config *DeviceConfig) *FileOpener {
	if config == nil {
		return &FileOpener{}
	}
	return &FileOpener{SyncWrites: config.SyncWrites}
}

// Open opens an image file read-write, creating it when create is true
func (o *FileOpener) Open(path string, create bool) (interfaces.BlockDevice, error) {
	return OpenFile(path, create, o.SyncWrites)
}

// OpenFile opens an image file read-write
func OpenFile(path string, create, syncWrites bool) (*FileDevice, error) {
	if path == "" {
		return nil, fmt.Errorf("image path is required")
	}

	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}

	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	return &FileDevice{file: file, syncWrites: syncWrites}, nil
}

// ReadAt fills p from offset off. A short read is an error.
func (d *FileDevice) ReadAt(p []byte, off int64) (int, error) {
	n, err := d.file.ReadAt(p, off)
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return n, fmt.Errorf("disk read error at offset %d (%d of %d bytes): %w", off, n, len(p), err)
	}
	return n, nil
}

// WriteAt writes p at offset off
func (d *FileDevice) WriteAt(p []byte, off int64) (int, error) {
	n, err := d.file.WriteAt(p, off)
	if err != nil {
		return n, fmt.Errorf("disk write error at offset %d (%d of %d bytes): %w", off, n, len(p), err)
	}
	if d.syncWrites {
		if err := d.Sync(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Size returns the current size of the image file
func (d *FileDevice) Size() (int64, error) {
	stat, err := d.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat image file: %w", err)
	}
	return stat.Size(), nil
}

// Truncate resizes the image file
func (d *FileDevice) Truncate(size int64) error {
	if err := d.file.Truncate(size); err != nil {
		return fmt.Errorf("failed to truncate image file: %w", err)
	}
	return nil
}

// Sync flushes the image file to disk
func (d *FileDevice) Sync() error {
	if err := d.file.Sync(); err != nil {
		return fmt.Errorf("disk sync error: %w", err)
	}
	return nil
}

// Close closes the image file
func (d *FileDevice) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// Path returns the host path of the image
func (d *FileDevice) Path() string {
	return d.file.Name()
}
