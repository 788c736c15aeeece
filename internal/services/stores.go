package services

import (
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/parsers/blocks"
	dtparser "github.com/deploymenttheory/go-minifs/internal/parsers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/parsers/inodes"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

// Inode store

// readInode loads inode id from the inode table. The id is not checked
// against the bitmap.
func (v *volume) readInode(id uint16) (*types.InodeT, error) {
	if id >= v.info.InodesCount {
		return nil, fmt.Errorf("inode id %d out of range", id)
	}

	data := make([]byte, v.info.InodeSize())
	if _, err := v.device.ReadAt(data, v.info.InodeOffset(id)); err != nil {
		return nil, fmt.Errorf("failed to read inode %d: %w", id, err)
	}

	reader, err := inodes.NewInodeReader(data, v.info, v.endian)
	if err != nil {
		return nil, fmt.Errorf("inode %d: %w", id, err)
	}

	return reader.GetInode(), nil
}

// writeInode stores inode at the slot for its id
func (v *volume) writeInode(inode *types.InodeT) error {
	data := inodes.SerializeInode(inode, v.info, v.endian)
	if _, err := v.device.WriteAt(data, v.info.InodeOffset(inode.ID)); err != nil {
		return fmt.Errorf("failed to write inode %d: %w", inode.ID, err)
	}
	return nil
}

// Block store

// readBlock loads block id and decodes its payload
func (v *volume) readBlock(id uint16) (*types.BlockT, error) {
	if id >= v.info.BlocksCount {
		return nil, fmt.Errorf("block id %d out of range", id)
	}

	data := make([]byte, v.info.BlockSize)
	if _, err := v.device.ReadAt(data, v.info.BlockOffset(id)); err != nil {
		return nil, fmt.Errorf("failed to read block %d: %w", id, err)
	}

	reader, err := blocks.NewBlockReader(data, v.info, v.endian)
	if err != nil {
		return nil, err
	}

	return reader.GetBlock(), nil
}

// writeBlock stores block at the slot for its id
func (v *volume) writeBlock(block *types.BlockT) error {
	data, err := blocks.SerializeBlock(block, v.info, v.endian)
	if err != nil {
		return fmt.Errorf("failed to encode block %d: %w", block.Info.BlockID, err)
	}
	if _, err := v.device.WriteAt(data, v.info.BlockOffset(block.Info.BlockID)); err != nil {
		return fmt.Errorf("failed to write block %d: %w", block.Info.BlockID, err)
	}
	return nil
}

// Descriptor table store

// readDescriptors loads the open-file table and wraps it in a manager
func (v *volume) readDescriptors() (*descriptors.DescriptorManager, error) {
	data := make([]byte, v.info.DescriptorTableSize())
	if _, err := v.device.ReadAt(data, v.info.DescriptorTableOffset()); err != nil {
		return nil, fmt.Errorf("failed to read descriptor table: %w", err)
	}

	reader, err := dtparser.NewDescriptorTableReader(data, v.info.DescriptorsCount, v.endian)
	if err != nil {
		return nil, err
	}

	return descriptors.NewDescriptorManager(reader.GetDescriptorTable()), nil
}

// writeDescriptors persists the whole open-file table
func (v *volume) writeDescriptors(m *descriptors.DescriptorManager) error {
	data := dtparser.SerializeDescriptorTable(m.Table(), v.endian)
	if _, err := v.device.WriteAt(data, v.info.DescriptorTableOffset()); err != nil {
		return fmt.Errorf("failed to write descriptor table: %w", err)
	}
	return nil
}
