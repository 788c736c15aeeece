package allocation

import (
	"errors"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

var (
	// ErrNoFreeInode is returned when every inode id is reserved
	ErrNoFreeInode = errors.New("can't create more inodes")

	// ErrNoFreeBlock is returned when every block id is reserved
	ErrNoFreeBlock = errors.New("can't create more blocks")

	// ErrAlreadyFree is returned when releasing an id that is not reserved
	ErrAlreadyFree = errors.New("id was already released")
)

// BitmapAllocator owns the inode and block bitmaps of a superblock and is
// the only code that flips their bits. Allocation is first-fit from id 0.
type BitmapAllocator struct {
	superblock *types.SuperblockT
}

var _ interfaces.Allocator = (*BitmapAllocator)(nil)

// NewBitmapAllocator wraps the bitmaps of sb
func NewBitmapAllocator(sb *types.SuperblockT) *BitmapAllocator {
	return &BitmapAllocator{superblock: sb}
}

// Superblock returns the superblock whose bitmaps are managed
func (a *BitmapAllocator) Superblock() *types.SuperblockT {
	return a.superblock
}

// ReserveInode reserves the lowest free inode id. On exhaustion it returns
// InodesCount, which callers must never treat as a valid id.
func (a *BitmapAllocator) ReserveInode() (uint16, error) {
	id, ok := reserveFirst(a.superblock.ReservedInodes)
	if !ok {
		return a.superblock.Info.InodesCount, ErrNoFreeInode
	}
	return id, nil
}

// FreeInode releases an inode id. Double free returns InodesCount and
// ErrAlreadyFree.
func (a *BitmapAllocator) FreeInode(id uint16) (uint16, error) {
	if !release(a.superblock.ReservedInodes, id) {
		return a.superblock.Info.InodesCount, ErrAlreadyFree
	}
	return id, nil
}

// IsInodeReserved checks the inode bitmap
func (a *BitmapAllocator) IsInodeReserved(id uint16) bool {
	return int(id) < len(a.superblock.ReservedInodes) && a.superblock.ReservedInodes[id]
}

// ReserveBlock reserves the lowest free block id. On exhaustion it returns
// BlocksCount.
func (a *BitmapAllocator) ReserveBlock() (uint16, error) {
	id, ok := reserveFirst(a.superblock.ReservedBlocks)
	if !ok {
		return a.superblock.Info.BlocksCount, ErrNoFreeBlock
	}
	return id, nil
}

// FreeBlock releases a block id. Double free returns BlocksCount and
// ErrAlreadyFree.
func (a *BitmapAllocator) FreeBlock(id uint16) (uint16, error) {
	if !release(a.superblock.ReservedBlocks, id) {
		return a.superblock.Info.BlocksCount, ErrAlreadyFree
	}
	return id, nil
}

// IsBlockReserved checks the block bitmap
func (a *BitmapAllocator) IsBlockReserved(id uint16) bool {
	return int(id) < len(a.superblock.ReservedBlocks) && a.superblock.ReservedBlocks[id]
}

// FreeInodes returns the number of unreserved inode ids
func (a *BitmapAllocator) FreeInodes() int {
	return countFree(a.superblock.ReservedInodes)
}

// FreeBlocks returns the number of unreserved block ids
func (a *BitmapAllocator) FreeBlocks() int {
	return countFree(a.superblock.ReservedBlocks)
}

func reserveFirst(bitmap []bool) (uint16, bool) {
	for id, reserved := range bitmap {
		if !reserved {
			bitmap[id] = true
			return uint16(id), true
		}
	}
	return 0, false
}

func release(bitmap []bool, id uint16) bool {
	if int(id) >= len(bitmap) || !bitmap[id] {
		return false
	}
	bitmap[id] = false
	return true
}

func countFree(bitmap []bool) int {
	free := 0
	for _, reserved := range bitmap {
		if !reserved {
			free++
		}
	}
	return free
}
