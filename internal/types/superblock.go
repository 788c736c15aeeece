package types

// Superblock
// The superblock sits at offset 0 of the image. It holds the filesystem
// parameters followed by the inode and block allocation bitmaps.

// FsInfoT holds the global filesystem parameters.
// Layout: six packed little-endian uint16 values in field order.
type FsInfoT struct {
	// The number of inode records in the inode table.
	InodesCount uint16

	// The size of one block in bytes, header included.
	BlockSize uint16

	// The number of blocks in the block region.
	BlocksCount uint16

	// The size of the fixed name buffer in a directory record.
	MaxPathLen uint16

	// The number of slots in the descriptor table.
	DescriptorsCount uint16

	// Must equal Magic on every mount.
	Magic uint16
}

// SuperblockT is the parameter header plus both allocation bitmaps.
// Each bitmap entry occupies one byte on disk (0 = free, 1 = reserved).
type SuperblockT struct {
	// Global filesystem parameters.
	Info FsInfoT

	// Reservation flag per inode id, InodesCount entries.
	ReservedInodes []bool

	// Reservation flag per block id, BlocksCount entries.
	ReservedBlocks []bool
}

// DefaultFsInfo returns the parameters written by format.
func DefaultFsInfo() FsInfoT {
	return FsInfoT{
		InodesCount:      InodesCount,
		BlockSize:        BlockSize,
		BlocksCount:      BlocksCount,
		MaxPathLen:       MaxPathLen,
		DescriptorsCount: DescriptorsCount,
		Magic:            Magic,
	}
}

// NewSuperblock returns a superblock with the given parameters and both
// bitmaps cleared.
func NewSuperblock(info FsInfoT) *SuperblockT {
	return &SuperblockT{
		Info:           info,
		ReservedInodes: make([]bool, info.InodesCount),
		ReservedBlocks: make([]bool, info.BlocksCount),
	}
}

// IsValid reports whether the magic matches.
func (fi FsInfoT) IsValid() bool {
	return fi.Magic == Magic
}

// SuperblockSize is the on-disk size of the superblock.
func (fi FsInfoT) SuperblockSize() int64 {
	return FsInfoSize + int64(fi.InodesCount) + int64(fi.BlocksCount)
}

// DescriptorTableSize is the on-disk size of the descriptor table.
func (fi FsInfoT) DescriptorTableSize() int64 {
	return int64(fi.DescriptorsCount) * DescriptorEntrySize
}

// InodeSize is the on-disk stride of one inode record. Every inode carries
// one block-id slot per block in the filesystem.
func (fi FsInfoT) InodeSize() int64 {
	return InodeHeaderSize + int64(fi.BlocksCount)*BlockIDSize
}

// InodeTableSize is the on-disk size of the whole inode table.
func (fi FsInfoT) InodeTableSize() int64 {
	return int64(fi.InodesCount) * fi.InodeSize()
}

// RecordSize is the on-disk size of one directory record.
func (fi FsInfoT) RecordSize() int {
	return RecordInodeIDSize + int(fi.MaxPathLen)
}

// MaxDataPerBlock is the payload capacity of a data block.
func (fi FsInfoT) MaxDataPerBlock() uint32 {
	return uint32(fi.BlockSize) - BlockHeaderSize
}

// MaxRecordsPerBlock is how many directory records fit in one block,
// truncated down.
func (fi FsInfoT) MaxRecordsPerBlock() uint8 {
	return uint8(fi.MaxDataPerBlock() / uint32(fi.RecordSize()))
}

// MaxFileSize is the largest number of bytes a single file can hold.
func (fi FsInfoT) MaxFileSize() uint32 {
	return fi.MaxDataPerBlock() * uint32(BlocksCountInInode)
}

// MaxNameLen is the longest name that still leaves room for a NUL
// terminator in a directory record.
func (fi FsInfoT) MaxNameLen() int {
	return int(fi.MaxPathLen) - 1
}

// DescriptorTableOffset is where the descriptor table starts.
func (fi FsInfoT) DescriptorTableOffset() int64 {
	return fi.SuperblockSize()
}

// InodeTableOffset is where the inode table starts.
func (fi FsInfoT) InodeTableOffset() int64 {
	return fi.SuperblockSize() + fi.DescriptorTableSize()
}

// InodeOffset is the absolute offset of inode id.
func (fi FsInfoT) InodeOffset(id uint16) int64 {
	return fi.InodeTableOffset() + int64(id)*fi.InodeSize()
}

// BlockRegionOffset is where block 0 starts.
func (fi FsInfoT) BlockRegionOffset() int64 {
	return fi.InodeTableOffset() + fi.InodeTableSize()
}

// BlockOffset is the absolute offset of block id.
func (fi FsInfoT) BlockOffset(id uint16) int64 {
	return fi.BlockRegionOffset() + int64(id)*int64(fi.BlockSize)
}

// ImageSize is the total size of a formatted image.
func (fi FsInfoT) ImageSize() int64 {
	return fi.BlockRegionOffset() + int64(fi.BlocksCount)*int64(fi.BlockSize)
}
