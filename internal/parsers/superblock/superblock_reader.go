package superblock

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// SuperblockReader provides parsing capabilities for the superblock region
// The superblock is the parameter header followed by the inode and block bitmaps
type SuperblockReader struct {
	superblock *types.SuperblockT
	data       []byte
	endian     binary.ByteOrder
}

// NewSuperblockReader creates a new superblock reader
// data must hold at least the parameter header and both bitmaps it describes
func NewSuperblockReader(data []byte, endian binary.ByteOrder) (*SuperblockReader, error) {
	info, err := ParseFsInfo(data, endian)
	if err != nil {
		return nil, err
	}

	need := info.SuperblockSize()
	if int64(len(data)) < need {
		return nil, fmt.Errorf("data too small for superblock: %d bytes, need at least %d", len(data), need)
	}

	sb, err := parseSuperblock(data, info, endian)
	if err != nil {
		return nil, fmt.Errorf("failed to parse superblock: %w", err)
	}

	return &SuperblockReader{
		superblock: sb,
		data:       data,
		endian:     endian,
	}, nil
}

// ParseFsInfo parses the 12 byte parameter header at the start of data
func ParseFsInfo(data []byte, endian binary.ByteOrder) (types.FsInfoT, error) {
	var info types.FsInfoT
	if len(data) < types.FsInfoSize {
		return info, fmt.Errorf("data too small for fs info: %d bytes, need at least %d", len(data), types.FsInfoSize)
	}

	offset := 0

	// uint16_t inodes_count
	info.InodesCount = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t block_size
	info.BlockSize = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t blocks_count
	info.BlocksCount = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t max_path_len
	info.MaxPathLen = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t descriptors_count
	info.DescriptorsCount = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t magic
	info.Magic = endian.Uint16(data[offset : offset+2])

	return info, nil
}

// parseSuperblock decodes both bitmaps following the parameter header
func parseSuperblock(data []byte, info types.FsInfoT, endian binary.ByteOrder) (*types.SuperblockT, error) {
	sb := types.NewSuperblock(info)
	offset := types.FsInfoSize

	for i := range sb.ReservedInodes {
		sb.ReservedInodes[i] = data[offset] != 0
		offset++
	}

	for i := range sb.ReservedBlocks {
		sb.ReservedBlocks[i] = data[offset] != 0
		offset++
	}

	return sb, nil
}

// SerializeSuperblock encodes a superblock into its packed on-disk form
func SerializeSuperblock(sb *types.SuperblockT, endian binary.ByteOrder) []byte {
	data := make([]byte, sb.Info.SuperblockSize())
	PutFsInfo(data, sb.Info, endian)

	offset := types.FsInfoSize
	for _, reserved := range sb.ReservedInodes {
		data[offset] = boolByte(reserved)
		offset++
	}
	for _, reserved := range sb.ReservedBlocks {
		data[offset] = boolByte(reserved)
		offset++
	}

	return data
}

// PutFsInfo writes the parameter header into the first 12 bytes of data
func PutFsInfo(data []byte, info types.FsInfoT, endian binary.ByteOrder) {
	endian.PutUint16(data[0:2], info.InodesCount)
	endian.PutUint16(data[2:4], info.BlockSize)
	endian.PutUint16(data[4:6], info.BlocksCount)
	endian.PutUint16(data[6:8], info.MaxPathLen)
	endian.PutUint16(data[8:10], info.DescriptorsCount)
	endian.PutUint16(data[10:12], info.Magic)
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// GetSuperblock returns the parsed superblock
func (sr *SuperblockReader) GetSuperblock() *types.SuperblockT {
	return sr.superblock
}

// Info returns the filesystem parameters
func (sr *SuperblockReader) Info() types.FsInfoT {
	return sr.superblock.Info
}

// Magic returns the stored magic value
func (sr *SuperblockReader) Magic() uint16 {
	return sr.superblock.Info.Magic
}

// IsValid returns true if the magic matches a formatted image
func (sr *SuperblockReader) IsValid() bool {
	return sr.superblock.Info.IsValid()
}

// FreeInodeCount returns the number of unreserved inode ids
func (sr *SuperblockReader) FreeInodeCount() int {
	return countFree(sr.superblock.ReservedInodes)
}

// FreeBlockCount returns the number of unreserved block ids
func (sr *SuperblockReader) FreeBlockCount() int {
	return countFree(sr.superblock.ReservedBlocks)
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
