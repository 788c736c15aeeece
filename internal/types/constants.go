package types

import "encoding/binary"

// ByteOrder is the byte order of every multi-byte field in an image.
var ByteOrder binary.ByteOrder = binary.LittleEndian

// Format Constants
// These values are fixed at format time and written into every image.
// Changing any of them produces images that existing tools cannot mount.

const (
	// BlockSize is the size in bytes of one block in the block region,
	// header included.
	BlockSize uint16 = 128

	// InodesCount is the number of inode records in the inode table.
	InodesCount uint16 = 128

	// BlocksCount is the number of blocks in the block region.
	BlocksCount uint16 = 128

	// BlocksCountInInode is the maximum number of data blocks a single inode
	// may own. The on-disk inode still reserves BlocksCount slots.
	BlocksCountInInode uint16 = 8

	// MaxPathLen is the size of the fixed name buffer in a directory record.
	// Names are NUL padded, so the longest usable name is MaxPathLen-1 bytes.
	MaxPathLen uint16 = 16

	// DescriptorsCount is the number of slots in the open-file table.
	DescriptorsCount uint16 = 16

	// Magic identifies an image formatted by this tool.
	Magic uint16 = 0xFAF

	// RootInodeID is the inode of the root directory.
	RootInodeID uint16 = 0

	// RootBlockID is the directory block of the root directory.
	RootBlockID uint16 = 0
)

// Packed record sizes
const (
	// FsInfoSize is the size of the parameter header at offset 0:
	// six little-endian uint16 fields.
	FsInfoSize = 12

	// InodeHeaderSize covers id (u16), blocks_used (u16) and is_file (u8).
	InodeHeaderSize = 5

	// BlockHeaderSize covers block_id (u16), inode_id (u16),
	// records_count (u8) and data_size (u16).
	BlockHeaderSize = 7

	// DescriptorEntrySize is reserved (u8) + inode_id (u16) + position (u32).
	DescriptorEntrySize = 7

	// BlockIDSize is the size of one entry in an inode's block-id array.
	BlockIDSize = 2

	// RecordInodeIDSize is the size of the inode id prefix of a directory record.
	RecordInodeIDSize = 2
)

// Well-known directory record names
const (
	// DotName is the self link written first in every directory block.
	DotName = "."

	// DotDotName is the parent link written second in every directory block.
	// The root directory points it at itself.
	DotDotName = ".."

	// PathSeparator delimits path components.
	PathSeparator = "/"
)
