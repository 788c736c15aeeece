package inodes

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

func TestNewInodeReader(t *testing.T) {
	info := types.DefaultFsInfo()
	data := make([]byte, info.InodeSize())
	endian := binary.LittleEndian

	endian.PutUint16(data[0:2], 7) // id
	endian.PutUint16(data[2:4], 3) // blocks_count
	data[4] = 1                    // is_file
	endian.PutUint16(data[5:7], 10)
	endian.PutUint16(data[7:9], 11)
	endian.PutUint16(data[9:11], 42)

	reader, err := NewInodeReader(data, info, endian)
	if err != nil {
		t.Fatalf("NewInodeReader() failed: %v", err)
	}

	if reader.ID() != 7 {
		t.Errorf("ID() = %d, want 7", reader.ID())
	}
	if !reader.IsFile() || reader.IsDirectory() {
		t.Error("inode should be a file")
	}
	if reader.BlocksUsed() != 3 {
		t.Errorf("BlocksUsed() = %d, want 3", reader.BlocksUsed())
	}

	got := reader.BlockIDs()
	want := []uint16{10, 11, 42}
	if len(got) != len(want) {
		t.Fatalf("BlockIDs() length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("BlockIDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if len(reader.GetInode().BlockIDs) != int(info.BlocksCount) {
		t.Errorf("block-id array length = %d, want %d", len(reader.GetInode().BlockIDs), info.BlocksCount)
	}
}

func TestInodeReader_TooSmall(t *testing.T) {
	info := types.DefaultFsInfo()
	_, err := NewInodeReader(make([]byte, 20), info, binary.LittleEndian)
	if err == nil {
		t.Error("NewInodeReader() should have failed with too small data")
	}
}

func TestInodeReader_CorruptBlockCount(t *testing.T) {
	info := types.DefaultFsInfo()
	data := make([]byte, info.InodeSize())
	binary.LittleEndian.PutUint16(data[2:4], info.BlocksCount+1)

	_, err := NewInodeReader(data, info, binary.LittleEndian)
	if err == nil {
		t.Error("NewInodeReader() should reject a block count above the filesystem block count")
	}
}

func TestSerializeInode(t *testing.T) {
	info := types.DefaultFsInfo()
	inode := types.NewInode(3, false, info)
	inode.AppendBlock(9)

	data := SerializeInode(inode, info, binary.LittleEndian)

	if int64(len(data)) != 261 {
		t.Errorf("serialized size = %d, want 261", len(data))
	}

	reader, err := NewInodeReader(data, info, binary.LittleEndian)
	if err != nil {
		t.Fatalf("NewInodeReader() failed: %v", err)
	}
	if reader.IsFile() {
		t.Error("directory inode decoded as file")
	}
	if reader.BlocksUsed() != 1 || reader.BlockIDs()[0] != 9 {
		t.Errorf("unexpected block ids %v", reader.BlockIDs())
	}

	if !bytes.Equal(data[:5], []byte{3, 0, 1, 0, 0}) {
		t.Errorf("header bytes = %v", data[:5])
	}
}
