// File: internal/interfaces/descriptors.go
package interfaces

// DescriptorTable manages open-file handles
type DescriptorTable interface {
	// Reserve opens a handle for an inode, rejecting a second open of the same inode
	Reserve(inodeID uint16) (uint16, error)

	// Free closes a handle
	Free(handle uint16) error

	// IsReserved checks whether a handle is open
	IsReserved(handle uint16) bool

	// InodeID returns the inode behind an open handle
	InodeID(handle uint16) (uint16, error)

	// Position returns the byte offset of an open handle
	Position(handle uint16) (uint32, error)

	// SetPosition moves an open handle
	SetPosition(handle uint16, pos uint32) error
}
