package services

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/managers/allocation"
	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/parsers/blocks"
)

// ErrorKind classifies an engine failure
type ErrorKind uint8

const (
	// KindIO is a failed read, write or open of the backing file
	KindIO ErrorKind = iota + 1

	// KindIntegrity is an image that does not look like a minifs image
	KindIntegrity

	// KindExhausted is an inode, block, directory or descriptor limit
	KindExhausted

	// KindLogical is a request that makes no sense for the current tree
	KindLogical
)

// String returns a human-readable error kind
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindIntegrity:
		return "integrity"
	case KindExhausted:
		return "exhausted"
	case KindLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// Integrity errors
var (
	ErrBadMagic     = errors.New("bad magic")
	ErrNoRoot       = errors.New("root directory is not allocated")
	ErrCorruptBlock = blocks.ErrMixedPayload
)

// Capacity errors
var (
	ErrNoFreeInode      = allocation.ErrNoFreeInode
	ErrNoFreeBlock      = allocation.ErrNoFreeBlock
	ErrNoFreeDescriptor = descriptors.ErrNoFreeDescriptor
	ErrDirectoryFull    = errors.New("can't create more files in this dir")
	ErrInodeFull        = errors.New("inode has no free block slots")
)

// Logical errors
var (
	ErrNotFound       = errors.New("no such file or directory")
	ErrNotDirectory   = errors.New("not a directory")
	ErrIsDirectory    = errors.New("is a directory")
	ErrExists         = errors.New("file already exist")
	ErrAlreadyOpen    = descriptors.ErrAlreadyOpen
	ErrNotOpen        = descriptors.ErrNotOpen
	ErrSeekOutOfRange = errors.New("position out of range")
	ErrInvalidPath    = errors.New("invalid path")
	ErrNameTooLong    = errors.New("name too long")
)

// Error is returned by every FileSystem operation
type Error struct {
	Op   string
	Path string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an engine error, or 0 for foreign errors
func KindOf(err error) ErrorKind {
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return fsErr.Kind
	}
	return 0
}

// wrapError attaches op and path to err and classifies it. Errors that are
// already wrapped are returned unchanged.
func wrapError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var fsErr *Error
	if errors.As(err, &fsErr) {
		return err
	}
	return &Error{Op: op, Path: path, Kind: classify(err), Err: err}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrBadMagic),
		errors.Is(err, ErrNoRoot),
		errors.Is(err, ErrCorruptBlock):
		return KindIntegrity
	case errors.Is(err, ErrNoFreeInode),
		errors.Is(err, ErrNoFreeBlock),
		errors.Is(err, ErrNoFreeDescriptor),
		errors.Is(err, ErrDirectoryFull),
		errors.Is(err, ErrInodeFull):
		return KindExhausted
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNotDirectory),
		errors.Is(err, ErrIsDirectory),
		errors.Is(err, ErrExists),
		errors.Is(err, ErrAlreadyOpen),
		errors.Is(err, ErrNotOpen),
		errors.Is(err, ErrSeekOutOfRange),
		errors.Is(err, ErrInvalidPath),
		errors.Is(err, ErrNameTooLong):
		return KindLogical
	default:
		return KindIO
	}
}
