package services

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
	"github.com/deploymenttheory/go-minifs/internal/managers/allocation"
	"github.com/deploymenttheory/go-minifs/internal/parsers/superblock"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

// volume is one open session on an image: the device, the parsed
// superblock and the allocator over its bitmaps. A volume lives for the
// duration of a single FileSystem call.
type volume struct {
	device interfaces.BlockDevice
	info   types.FsInfoT
	sb     *types.SuperblockT
	alloc  *allocation.BitmapAllocator
	endian binary.ByteOrder
	logger *slog.Logger
}

// mountVolume opens an existing image and validates its superblock
func (fs *FileSystem) mountVolume() (*volume, error) {
	device, err := fs.opener.Open(fs.imagePath, false)
	if err != nil {
		return nil, err
	}

	v := &volume{
		device: device,
		endian: fs.endian,
		logger: fs.logger,
	}

	if err := v.loadSuperblock(); err != nil {
		device.Close()
		return nil, err
	}

	return v, nil
}

// createVolume opens the image for formatting, truncating any previous
// content, and installs a fresh superblock in memory
func (fs *FileSystem) createVolume(info types.FsInfoT) (*volume, error) {
	device, err := fs.opener.Open(fs.imagePath, true)
	if err != nil {
		return nil, err
	}

	if err := device.Truncate(0); err != nil {
		device.Close()
		return nil, err
	}
	if err := device.Truncate(info.ImageSize()); err != nil {
		device.Close()
		return nil, err
	}

	sb := types.NewSuperblock(info)
	return &volume{
		device: device,
		info:   info,
		sb:     sb,
		alloc:  allocation.NewBitmapAllocator(sb),
		endian: fs.endian,
		logger: fs.logger,
	}, nil
}

func (v *volume) close() error {
	return v.device.Close()
}

// loadSuperblock reads the parameter header, checks the magic, then reads
// the bitmaps it describes
func (v *volume) loadSuperblock() error {
	header := make([]byte, types.FsInfoSize)
	if _, err := v.device.ReadAt(header, 0); err != nil {
		return fmt.Errorf("failed to read fs info: %w", err)
	}

	info, err := superblock.ParseFsInfo(header, v.endian)
	if err != nil {
		return err
	}
	if !info.IsValid() {
		return fmt.Errorf("%w: got 0x%X, want 0x%X", ErrBadMagic, info.Magic, types.Magic)
	}

	data := make([]byte, info.SuperblockSize())
	if _, err := v.device.ReadAt(data, 0); err != nil {
		return fmt.Errorf("failed to read superblock: %w", err)
	}

	reader, err := superblock.NewSuperblockReader(data, v.endian)
	if err != nil {
		return err
	}

	v.info = info
	v.sb = reader.GetSuperblock()
	v.alloc = allocation.NewBitmapAllocator(v.sb)

	if !v.alloc.IsInodeReserved(types.RootInodeID) {
		return ErrNoRoot
	}

	return nil
}

// writeSuperblock persists the parameter header and both bitmaps
func (v *volume) writeSuperblock() error {
	data := superblock.SerializeSuperblock(v.sb, v.endian)
	if _, err := v.device.WriteAt(data, 0); err != nil {
		return fmt.Errorf("failed to write superblock: %w", err)
	}
	return nil
}

// release returns ids taken by a failed create to the allocator, newest first
func (v *volume) release(inodeID, blockID uint16, haveBlock bool) {
	if haveBlock {
		if _, err := v.alloc.FreeBlock(blockID); err != nil {
			v.logger.Warn("failed to release block", "block_id", blockID, "error", err)
		}
	}
	if _, err := v.alloc.FreeInode(inodeID); err != nil {
		v.logger.Warn("failed to release inode", "inode_id", inodeID, "error", err)
	}
	v.logger.Debug("released allocation", "inode_id", inodeID, "block_id", blockID)
}
