package types

import "bytes"

// Blocks
// Every block starts with a fixed header. The payload is either an array
// of directory records or raw file bytes, never both.

// BlockInfoT is the fixed block header.
type BlockInfoT struct {
	// The block's own id, also its index in the block region.
	BlockID uint16

	// The inode that owns this block.
	InodeID uint16

	// Number of directory records in the payload. Zero for data blocks.
	RecordsCount uint8

	// Number of meaningful data bytes in the payload. Zero for directory blocks.
	DataSize uint16
}

// BlockRecordT is one directory entry.
type BlockRecordT struct {
	// The inode the entry points at.
	InodeID uint16

	// NUL padded name, MaxPathLen bytes on disk.
	Name []byte
}

// NewBlockRecord builds a record with the name padded to maxPathLen.
func NewBlockRecord(inodeID uint16, name string, maxPathLen uint16) BlockRecordT {
	buf := make([]byte, maxPathLen)
	copy(buf, name)
	return BlockRecordT{InodeID: inodeID, Name: buf}
}

// NameString returns the record name up to the first NUL.
func (r BlockRecordT) NameString() string {
	if i := bytes.IndexByte(r.Name, 0); i >= 0 {
		return string(r.Name[:i])
	}
	return string(r.Name)
}

// PayloadKind tags the in-memory form of a block payload.
type PayloadKind uint8

const (
	// PayloadEmpty is a freshly allocated block with no content yet.
	PayloadEmpty PayloadKind = iota

	// PayloadDirectory holds directory records.
	PayloadDirectory

	// PayloadData holds raw file bytes.
	PayloadData
)

// String returns a human-readable payload kind.
func (k PayloadKind) String() string {
	switch k {
	case PayloadDirectory:
		return "directory"
	case PayloadData:
		return "data"
	default:
		return "empty"
	}
}

// BlockT is a header plus a tagged payload. Records is only meaningful for
// PayloadDirectory and Data only for PayloadData; Data is always sized to
// the block's full payload capacity.
type BlockT struct {
	Info    BlockInfoT
	Kind    PayloadKind
	Records []BlockRecordT
	Data    []byte
}

// NewEmptyBlock returns a block with no payload.
func NewEmptyBlock(blockID, inodeID uint16) *BlockT {
	return &BlockT{
		Info: BlockInfoT{BlockID: blockID, InodeID: inodeID},
		Kind: PayloadEmpty,
	}
}

// NewDirectoryBlock returns a directory block holding the given records.
func NewDirectoryBlock(blockID, inodeID uint16, records []BlockRecordT) *BlockT {
	return &BlockT{
		Info: BlockInfoT{
			BlockID:      blockID,
			InodeID:      inodeID,
			RecordsCount: uint8(len(records)),
		},
		Kind:    PayloadDirectory,
		Records: records,
	}
}

// AppendRecord adds a directory record and converts an empty block into a
// directory block.
func (b *BlockT) AppendRecord(record BlockRecordT) {
	b.Kind = PayloadDirectory
	b.Records = append(b.Records, record)
	b.Info.RecordsCount = uint8(len(b.Records))
}

// EnsureData converts an empty block into a data block with a zeroed
// payload of the given capacity.
func (b *BlockT) EnsureData(capacity uint32) {
	if b.Kind == PayloadData && uint32(len(b.Data)) >= capacity {
		return
	}
	data := make([]byte, capacity)
	copy(data, b.Data)
	b.Data = data
	b.Kind = PayloadData
}

// Bytes returns the meaningful data bytes of a data block.
func (b *BlockT) Bytes() []byte {
	if b.Kind != PayloadData {
		return nil
	}
	return b.Data[:b.Info.DataSize]
}
