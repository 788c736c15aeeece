package inodes

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// InodeReader provides parsing capabilities for inode records
// An inode record is a 5 byte header followed by one block-id slot per block in the filesystem
type InodeReader struct {
	inode  *types.InodeT
	data   []byte
	endian binary.ByteOrder
}

// NewInodeReader creates a new inode reader
// The record stride depends on the filesystem parameters, so they are required
func NewInodeReader(data []byte, info types.FsInfoT, endian binary.ByteOrder) (*InodeReader, error) {
	size := info.InodeSize()
	if int64(len(data)) < size {
		return nil, fmt.Errorf("data too small for inode: %d bytes, need at least %d", len(data), size)
	}

	inode, err := parseInode(data, info, endian)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inode: %w", err)
	}

	return &InodeReader{
		inode:  inode,
		data:   data,
		endian: endian,
	}, nil
}

// parseInode parses raw bytes into an InodeT structure
func parseInode(data []byte, info types.FsInfoT, endian binary.ByteOrder) (*types.InodeT, error) {
	inode := types.NewInode(0, false, info)
	offset := 0

	// uint16_t id
	inode.ID = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t blocks_count
	inode.BlocksUsed = endian.Uint16(data[offset : offset+2])
	offset += 2

	// bool is_file
	inode.IsFile = data[offset] != 0
	offset++

	if inode.BlocksUsed > info.BlocksCount {
		return nil, fmt.Errorf("inode %d claims %d blocks, filesystem has %d", inode.ID, inode.BlocksUsed, info.BlocksCount)
	}

	// uint16_t block_ids[blocks_count]
	for i := range inode.BlockIDs {
		inode.BlockIDs[i] = endian.Uint16(data[offset : offset+2])
		offset += 2
	}

	return inode, nil
}

// SerializeInode encodes an inode into its fixed-stride on-disk form
func SerializeInode(inode *types.InodeT, info types.FsInfoT, endian binary.ByteOrder) []byte {
	data := make([]byte, info.InodeSize())
	offset := 0

	endian.PutUint16(data[offset:offset+2], inode.ID)
	offset += 2
	endian.PutUint16(data[offset:offset+2], inode.BlocksUsed)
	offset += 2
	if inode.IsFile {
		data[offset] = 1
	}
	offset++

	for i := 0; i < int(info.BlocksCount) && i < len(inode.BlockIDs); i++ {
		endian.PutUint16(data[offset:offset+2], inode.BlockIDs[i])
		offset += 2
	}

	return data
}

// GetInode returns the parsed inode
func (ir *InodeReader) GetInode() *types.InodeT {
	return ir.inode
}

// ID returns the inode id
func (ir *InodeReader) ID() uint16 {
	return ir.inode.ID
}

// IsFile returns true for regular files
func (ir *InodeReader) IsFile() bool {
	return ir.inode.IsFile
}

// IsDirectory returns true for directories
func (ir *InodeReader) IsDirectory() bool {
	return !ir.inode.IsFile
}

// BlocksUsed returns the number of populated block-id slots
func (ir *InodeReader) BlocksUsed() uint16 {
	return ir.inode.BlocksUsed
}

// BlockIDs returns only the populated block ids
func (ir *InodeReader) BlockIDs() []uint16 {
	return ir.inode.BlockIDs[:ir.inode.BlocksUsed]
}
