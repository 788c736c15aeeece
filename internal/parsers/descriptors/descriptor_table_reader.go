package descriptors

import (
	"encoding/binary"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// DescriptorTableReader provides parsing capabilities for the persisted open-file table
// The table is three parallel arrays: reserved flags, inode ids, positions
type DescriptorTableReader struct {
	table  *types.DescriptorTableT
	data   []byte
	endian binary.ByteOrder
}

// NewDescriptorTableReader creates a new descriptor table reader
func NewDescriptorTableReader(data []byte, count uint16, endian binary.ByteOrder) (*DescriptorTableReader, error) {
	need := int(count) * types.DescriptorEntrySize
	if len(data) < need {
		return nil, fmt.Errorf("data too small for descriptor table: %d bytes, need at least %d", len(data), need)
	}

	return &DescriptorTableReader{
		table:  parseDescriptorTable(data, count, endian),
		data:   data,
		endian: endian,
	}, nil
}

// parseDescriptorTable decodes the three arrays in order
func parseDescriptorTable(data []byte, count uint16, endian binary.ByteOrder) *types.DescriptorTableT {
	table := types.NewDescriptorTable(count)
	offset := 0

	// bool reserved_fd[descriptors_count]
	for i := range table.Reserved {
		table.Reserved[i] = data[offset] != 0
		offset++
	}

	// uint16_t fd_to_inode[descriptors_count]
	for i := range table.InodeIDs {
		table.InodeIDs[i] = endian.Uint16(data[offset : offset+2])
		offset += 2
	}

	// uint32_t fd_to_position[descriptors_count]
	for i := range table.Positions {
		table.Positions[i] = endian.Uint32(data[offset : offset+4])
		offset += 4
	}

	return table
}

// SerializeDescriptorTable encodes the table into its contiguous on-disk form
func SerializeDescriptorTable(table *types.DescriptorTableT, endian binary.ByteOrder) []byte {
	count := table.Len()
	data := make([]byte, count*types.DescriptorEntrySize)
	offset := 0

	for _, reserved := range table.Reserved {
		if reserved {
			data[offset] = 1
		}
		offset++
	}
	for _, id := range table.InodeIDs {
		endian.PutUint16(data[offset:offset+2], id)
		offset += 2
	}
	for _, pos := range table.Positions {
		endian.PutUint32(data[offset:offset+4], pos)
		offset += 4
	}

	return data
}

// GetDescriptorTable returns the parsed table
func (dr *DescriptorTableReader) GetDescriptorTable() *types.DescriptorTableT {
	return dr.table
}

// Count returns the number of slots
func (dr *DescriptorTableReader) Count() int {
	return dr.table.Len()
}

// ReservedCount returns how many descriptors are currently open
func (dr *DescriptorTableReader) ReservedCount() int {
	n := 0
	for _, reserved := range dr.table.Reserved {
		if reserved {
			n++
		}
	}
	return n
}
