// File: internal/interfaces/allocation.go
package interfaces

// InodeAllocator reserves and releases inode ids
type InodeAllocator interface {
	// ReserveInode returns the first free inode id and marks it reserved
	ReserveInode() (uint16, error)

	// FreeInode releases a reserved inode id
	FreeInode(id uint16) (uint16, error)

	// IsInodeReserved checks the reservation flag for an inode id
	IsInodeReserved(id uint16) bool
}

// BlockAllocator reserves and releases block ids
type BlockAllocator interface {
	// ReserveBlock returns the first free block id and marks it reserved
	ReserveBlock() (uint16, error)

	// FreeBlock releases a reserved block id
	FreeBlock(id uint16) (uint16, error)

	// IsBlockReserved checks the reservation flag for a block id
	IsBlockReserved(id uint16) bool
}

// Allocator owns both allocation bitmaps
type Allocator interface {
	InodeAllocator
	BlockAllocator

	// FreeInodes returns the number of unreserved inode ids
	FreeInodes() int

	// FreeBlocks returns the number of unreserved block ids
	FreeBlocks() int
}
