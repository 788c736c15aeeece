package blocks

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// ErrMixedPayload is returned for a block whose header claims both directory records and data
var ErrMixedPayload = errors.New("block with data and records")

// BlockReader provides parsing capabilities for blocks in the block region
// A block is a 7 byte header followed by directory records, raw data, or nothing
type BlockReader struct {
	block  *types.BlockT
	data   []byte
	endian binary.ByteOrder
}

// NewBlockReader creates a new block reader
// data is the full on-disk block, BlockSize bytes
func NewBlockReader(data []byte, info types.FsInfoT, endian binary.ByteOrder) (*BlockReader, error) {
	header, err := ParseBlockInfo(data, endian)
	if err != nil {
		return nil, err
	}

	block, err := parseBlockPayload(data, header, info, endian)
	if err != nil {
		return nil, fmt.Errorf("failed to parse block %d: %w", header.BlockID, err)
	}

	return &BlockReader{
		block:  block,
		data:   data,
		endian: endian,
	}, nil
}

// ParseBlockInfo parses the fixed block header
func ParseBlockInfo(data []byte, endian binary.ByteOrder) (types.BlockInfoT, error) {
	var header types.BlockInfoT
	if len(data) < types.BlockHeaderSize {
		return header, fmt.Errorf("data too small for block header: %d bytes, need at least %d", len(data), types.BlockHeaderSize)
	}

	offset := 0

	// uint16_t block_id
	header.BlockID = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint16_t inode_id
	header.InodeID = endian.Uint16(data[offset : offset+2])
	offset += 2

	// uint8_t records_count
	header.RecordsCount = data[offset]
	offset++

	// uint16_t data_size
	header.DataSize = endian.Uint16(data[offset : offset+2])

	return header, nil
}

// parseBlockPayload decodes the payload selected by the header
func parseBlockPayload(data []byte, header types.BlockInfoT, info types.FsInfoT, endian binary.ByteOrder) (*types.BlockT, error) {
	block := &types.BlockT{Info: header, Kind: types.PayloadEmpty}

	switch {
	case header.RecordsCount != 0 && header.DataSize != 0:
		return nil, ErrMixedPayload

	case header.RecordsCount != 0:
		if header.RecordsCount > info.MaxRecordsPerBlock() {
			return nil, fmt.Errorf("records count %d exceeds block capacity %d", header.RecordsCount, info.MaxRecordsPerBlock())
		}
		recordSize := info.RecordSize()
		need := types.BlockHeaderSize + int(header.RecordsCount)*recordSize
		if len(data) < need {
			return nil, fmt.Errorf("data too small for %d records: %d bytes, need %d", header.RecordsCount, len(data), need)
		}

		block.Kind = types.PayloadDirectory
		block.Records = make([]types.BlockRecordT, header.RecordsCount)
		offset := types.BlockHeaderSize
		for i := range block.Records {
			block.Records[i] = parseBlockRecord(data[offset:offset+recordSize], info, endian)
			offset += recordSize
		}

	case header.DataSize != 0:
		capacity := info.MaxDataPerBlock()
		if uint32(header.DataSize) > capacity {
			return nil, fmt.Errorf("data size %d exceeds block capacity %d", header.DataSize, capacity)
		}
		need := types.BlockHeaderSize + int(header.DataSize)
		if len(data) < need {
			return nil, fmt.Errorf("data too small for payload: %d bytes, need %d", len(data), need)
		}

		block.Kind = types.PayloadData
		block.Data = make([]byte, capacity)
		copy(block.Data, data[types.BlockHeaderSize:need])
	}

	return block, nil
}

// parseBlockRecord decodes one directory record
func parseBlockRecord(data []byte, info types.FsInfoT, endian binary.ByteOrder) types.BlockRecordT {
	name := make([]byte, info.MaxPathLen)
	copy(name, data[types.RecordInodeIDSize:])
	return types.BlockRecordT{
		InodeID: endian.Uint16(data[0:types.RecordInodeIDSize]),
		Name:    name,
	}
}

// SerializeBlock encodes a block into its on-disk form
// Directory blocks are written with only the records present; data blocks
// always carry the full payload capacity so blocks keep a fixed stride
func SerializeBlock(block *types.BlockT, info types.FsInfoT, endian binary.ByteOrder) ([]byte, error) {
	header := block.Info
	switch block.Kind {
	case types.PayloadDirectory:
		header.RecordsCount = uint8(len(block.Records))
	case types.PayloadEmpty:
		header.RecordsCount = 0
		header.DataSize = 0
	}

	if header.RecordsCount != 0 && header.DataSize != 0 {
		return nil, ErrMixedPayload
	}

	size := types.BlockHeaderSize
	switch block.Kind {
	case types.PayloadDirectory:
		if header.RecordsCount > info.MaxRecordsPerBlock() {
			return nil, fmt.Errorf("records count %d exceeds block capacity %d", header.RecordsCount, info.MaxRecordsPerBlock())
		}
		size += len(block.Records) * info.RecordSize()
	case types.PayloadData:
		if uint32(header.DataSize) > info.MaxDataPerBlock() {
			return nil, fmt.Errorf("data size %d exceeds block capacity %d", header.DataSize, info.MaxDataPerBlock())
		}
		size += int(info.MaxDataPerBlock())
	}

	data := make([]byte, size)
	endian.PutUint16(data[0:2], header.BlockID)
	endian.PutUint16(data[2:4], header.InodeID)
	data[4] = header.RecordsCount
	endian.PutUint16(data[5:7], header.DataSize)

	offset := types.BlockHeaderSize
	switch block.Kind {
	case types.PayloadDirectory:
		recordSize := info.RecordSize()
		for _, record := range block.Records {
			endian.PutUint16(data[offset:offset+types.RecordInodeIDSize], record.InodeID)
			copy(data[offset+types.RecordInodeIDSize:offset+recordSize], record.Name)
			offset += recordSize
		}
	case types.PayloadData:
		copy(data[offset:], block.Data)
	}

	return data, nil
}

// GetBlock returns the parsed block
func (br *BlockReader) GetBlock() *types.BlockT {
	return br.block
}

// BlockID returns the block id from the header
func (br *BlockReader) BlockID() uint16 {
	return br.block.Info.BlockID
}

// InodeID returns the owning inode id
func (br *BlockReader) InodeID() uint16 {
	return br.block.Info.InodeID
}

// Kind returns the payload kind
func (br *BlockReader) Kind() types.PayloadKind {
	return br.block.Kind
}

// IsDirectory returns true if the block holds directory records
func (br *BlockReader) IsDirectory() bool {
	return br.block.Kind == types.PayloadDirectory
}

// IsEmpty returns true if the block has neither records nor data
func (br *BlockReader) IsEmpty() bool {
	return br.block.Kind == types.PayloadEmpty
}

// Records returns the directory records
func (br *BlockReader) Records() []types.BlockRecordT {
	return br.block.Records
}

// Data returns the meaningful data bytes
func (br *BlockReader) Data() []byte {
	return br.block.Bytes()
}
