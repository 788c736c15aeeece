package descriptors

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

func TestNewDescriptorTableReader(t *testing.T) {
	const count = 4
	data := make([]byte, count*types.DescriptorEntrySize)
	endian := binary.LittleEndian

	// reserved flags
	data[0] = 1
	data[2] = 1
	// inode ids start at offset 4
	endian.PutUint16(data[4:6], 12)
	endian.PutUint16(data[8:10], 30)
	// positions start at offset 12
	endian.PutUint32(data[12:16], 100)
	endian.PutUint32(data[20:24], 968)

	reader, err := NewDescriptorTableReader(data, count, endian)
	if err != nil {
		t.Fatalf("NewDescriptorTableReader() failed: %v", err)
	}

	table := reader.GetDescriptorTable()
	if reader.Count() != count {
		t.Errorf("Count() = %d, want %d", reader.Count(), count)
	}
	if reader.ReservedCount() != 2 {
		t.Errorf("ReservedCount() = %d, want 2", reader.ReservedCount())
	}
	if !table.Reserved[0] || table.Reserved[1] || !table.Reserved[2] {
		t.Errorf("Reserved = %v", table.Reserved)
	}
	if table.InodeIDs[0] != 12 || table.InodeIDs[2] != 30 {
		t.Errorf("InodeIDs = %v", table.InodeIDs)
	}
	if table.Positions[0] != 100 || table.Positions[2] != 968 {
		t.Errorf("Positions = %v", table.Positions)
	}

	if !bytes.Equal(SerializeDescriptorTable(table, endian), data) {
		t.Error("SerializeDescriptorTable() did not reproduce the input bytes")
	}
}

func TestDescriptorTableReader_TooSmall(t *testing.T) {
	_, err := NewDescriptorTableReader(make([]byte, 10), types.DescriptorsCount, binary.LittleEndian)
	if err == nil {
		t.Error("NewDescriptorTableReader() should have failed with too small data")
	}
}

func TestSerializeDescriptorTable_Size(t *testing.T) {
	table := types.NewDescriptorTable(types.DescriptorsCount)
	data := SerializeDescriptorTable(table, binary.LittleEndian)
	if len(data) != 112 {
		t.Errorf("serialized size = %d, want 112", len(data))
	}
}
