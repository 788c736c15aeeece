package types

// Inodes
// The inode table follows the descriptor table. Each record is a fixed
// header followed by BlocksCount block-id slots, of which at most
// BlocksCountInInode are ever populated.

// InodeT describes a file or directory and the blocks it owns.
type InodeT struct {
	// The inode's own id, also its index in the inode table.
	ID uint16

	// The number of populated entries in BlockIDs.
	BlocksUsed uint16

	// True for regular files, false for directories.
	IsFile bool

	// Block ids owned by this inode. Length is BlocksCount on disk.
	BlockIDs []uint16
}

// NewInode returns an empty inode sized for the given parameters.
func NewInode(id uint16, isFile bool, info FsInfoT) *InodeT {
	return &InodeT{
		ID:       id,
		IsFile:   isFile,
		BlockIDs: make([]uint16, info.BlocksCount),
	}
}

// IsDirectory reports whether the inode is a directory.
func (i *InodeT) IsDirectory() bool {
	return !i.IsFile
}

// FirstBlock returns the first owned block id. Directories keep all of
// their records there.
func (i *InodeT) FirstBlock() uint16 {
	return i.BlockIDs[0]
}

// AppendBlock records a newly allocated block at the next free slot.
func (i *InodeT) AppendBlock(blockID uint16) {
	i.BlockIDs[i.BlocksUsed] = blockID
	i.BlocksUsed++
}

// IsFull reports whether the inode has reached its per-inode block cap.
func (i *InodeT) IsFull() bool {
	return i.BlocksUsed >= BlocksCountInInode
}
