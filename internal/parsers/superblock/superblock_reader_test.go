package superblock

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

func buildSuperblockData(info types.FsInfoT, reservedInodes, reservedBlocks []int) []byte {
	data := make([]byte, info.SuperblockSize())
	endian := binary.LittleEndian

	endian.PutUint16(data[0:2], info.InodesCount)
	endian.PutUint16(data[2:4], info.BlockSize)
	endian.PutUint16(data[4:6], info.BlocksCount)
	endian.PutUint16(data[6:8], info.MaxPathLen)
	endian.PutUint16(data[8:10], info.DescriptorsCount)
	endian.PutUint16(data[10:12], info.Magic)

	for _, id := range reservedInodes {
		data[types.FsInfoSize+id] = 1
	}
	for _, id := range reservedBlocks {
		data[types.FsInfoSize+int(info.InodesCount)+id] = 1
	}
	return data
}

func TestNewSuperblockReader(t *testing.T) {
	info := types.DefaultFsInfo()
	data := buildSuperblockData(info, []int{0, 5}, []int{0, 1, 127})

	reader, err := NewSuperblockReader(data, binary.LittleEndian)
	if err != nil {
		t.Fatalf("NewSuperblockReader() failed: %v", err)
	}

	if reader.Magic() != 0xFAF {
		t.Errorf("Magic() = %#x, want 0xFAF", reader.Magic())
	}

	if !reader.IsValid() {
		t.Error("IsValid() should be true for a formatted superblock")
	}

	if reader.Info() != info {
		t.Errorf("Info() = %+v, want %+v", reader.Info(), info)
	}

	sb := reader.GetSuperblock()
	if !sb.ReservedInodes[0] || !sb.ReservedInodes[5] || sb.ReservedInodes[1] {
		t.Errorf("inode bitmap decoded incorrectly: %v", sb.ReservedInodes[:6])
	}
	if !sb.ReservedBlocks[127] || sb.ReservedBlocks[2] {
		t.Error("block bitmap decoded incorrectly")
	}

	if reader.FreeInodeCount() != 126 {
		t.Errorf("FreeInodeCount() = %d, want 126", reader.FreeInodeCount())
	}
	if reader.FreeBlockCount() != 125 {
		t.Errorf("FreeBlockCount() = %d, want 125", reader.FreeBlockCount())
	}
}

func TestSuperblockReader_BadMagic(t *testing.T) {
	info := types.DefaultFsInfo()
	info.Magic = 0x1234
	data := buildSuperblockData(info, nil, nil)

	reader, err := NewSuperblockReader(data, binary.LittleEndian)
	if err != nil {
		t.Fatalf("NewSuperblockReader() failed: %v", err)
	}

	if reader.IsValid() {
		t.Error("IsValid() should be false when magic does not match")
	}
}

func TestSuperblockReader_TooSmall(t *testing.T) {
	_, err := NewSuperblockReader(make([]byte, 8), binary.LittleEndian)
	if err == nil {
		t.Error("NewSuperblockReader() should have failed with data shorter than the header")
	}

	info := types.DefaultFsInfo()
	data := buildSuperblockData(info, nil, nil)
	_, err = NewSuperblockReader(data[:100], binary.LittleEndian)
	if err == nil {
		t.Error("NewSuperblockReader() should have failed with truncated bitmaps")
	}
}

func TestSerializeSuperblock(t *testing.T) {
	info := types.DefaultFsInfo()
	sb := types.NewSuperblock(info)
	sb.ReservedInodes[0] = true
	sb.ReservedInodes[5] = true
	sb.ReservedBlocks[0] = true
	sb.ReservedBlocks[1] = true
	sb.ReservedBlocks[127] = true

	got := SerializeSuperblock(sb, binary.LittleEndian)
	want := buildSuperblockData(info, []int{0, 5}, []int{0, 1, 127})

	if !bytes.Equal(got, want) {
		t.Errorf("SerializeSuperblock() produced unexpected bytes")
	}

	if int64(len(got)) != 268 {
		t.Errorf("serialized size = %d, want 268", len(got))
	}
}
