package services

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

// FileSystem runs minifs operations against one image. It holds no state
// between calls: each operation opens the image, validates the superblock,
// applies its change and closes the image again. A FileSystem is not safe
// for concurrent use.
type FileSystem struct {
	imagePath string
	opener    interfaces.DeviceOpener
	endian    binary.ByteOrder
	logger    *slog.Logger
}

// Option configures a FileSystem
type Option func(*FileSystem)

// WithLogger sets the logger used for allocation and unwind events
func WithLogger(logger *slog.Logger) Option {
	return func(fs *FileSystem) {
		if logger != nil {
			fs.logger = logger
		}
	}
}

// NewFileSystem creates a FileSystem for the image at imagePath
func NewFileSystem(imagePath string, opener interfaces.DeviceOpener, opts ...Option) (*FileSystem, error) {
	if imagePath == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}
	if opener == nil {
		return nil, fmt.Errorf("device opener cannot be nil")
	}

	fs := &FileSystem{
		imagePath: imagePath,
		opener:    opener,
		endian:    types.ByteOrder,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(fs)
	}

	return fs, nil
}

// ImagePath returns the path of the backing image
func (fs *FileSystem) ImagePath() string {
	return fs.imagePath
}

// Format writes an empty filesystem to the image, replacing any previous
// content, and creates the root directory
func (fs *FileSystem) Format() (err error) {
	const op = "init"
	info := types.DefaultFsInfo()

	v, err := fs.createVolume(info)
	if err != nil {
		return wrapError(op, fs.imagePath, err)
	}
	defer fs.closeVolume(v, op, fs.imagePath, &err)

	// Superblock and an empty descriptor table
	if err := v.writeSuperblock(); err != nil {
		return wrapError(op, fs.imagePath, err)
	}
	if err := v.writeDescriptors(descriptors.NewDescriptorManager(types.NewDescriptorTable(info.DescriptorsCount))); err != nil {
		return wrapError(op, fs.imagePath, err)
	}

	// Root directory
	rootID, err := v.createDir(types.RootInodeID, true)
	if err != nil {
		return wrapError(op, fs.imagePath, err)
	}
	if rootID != types.RootInodeID {
		return wrapError(op, fs.imagePath, fmt.Errorf("%w: root allocated as inode %d", ErrNoRoot, rootID))
	}

	fs.logger.Info("formatted image", "image", fs.imagePath, "size", info.ImageSize())
	return nil
}

// CheckMagic opens the image and validates its superblock: the magic must
// match and the root inode must be allocated
func (fs *FileSystem) CheckMagic() (err error) {
	const op = "read_fs"

	v, err := fs.mountVolume()
	if err != nil {
		return wrapError(op, fs.imagePath, err)
	}
	defer fs.closeVolume(v, op, fs.imagePath, &err)

	return nil
}

// Layout holds the absolute offsets of each image region
type Layout struct {
	DescriptorTableOffset int64 `json:"descriptor_table_offset" yaml:"descriptor_table_offset"`
	InodeTableOffset      int64 `json:"inode_table_offset" yaml:"inode_table_offset"`
	BlockRegionOffset     int64 `json:"block_region_offset" yaml:"block_region_offset"`
	ImageSize             int64 `json:"image_size" yaml:"image_size"`
}

// FsReport summarizes the parameters and usage of an image
type FsReport struct {
	InodesCount        uint16 `json:"inodes_count" yaml:"inodes_count"`
	BlocksCount        uint16 `json:"blocks_count" yaml:"blocks_count"`
	BlockSize          uint16 `json:"block_size" yaml:"block_size"`
	MaxPathLen         uint16 `json:"max_path_len" yaml:"max_path_len"`
	DescriptorsCount   uint16 `json:"descriptors_count" yaml:"descriptors_count"`
	Magic              uint16 `json:"magic" yaml:"magic"`
	FreeInodes         int    `json:"free_inodes" yaml:"free_inodes"`
	FreeBlocks         int    `json:"free_blocks" yaml:"free_blocks"`
	OpenDescriptors    int    `json:"open_descriptors" yaml:"open_descriptors"`
	MaxDataPerBlock    uint32 `json:"max_data_per_block" yaml:"max_data_per_block"`
	MaxRecordsPerBlock uint8  `json:"max_records_per_block" yaml:"max_records_per_block"`
	MaxFileSize        uint32 `json:"max_file_size" yaml:"max_file_size"`
	Layout             Layout `json:"layout" yaml:"layout"`
}

// Info reports the filesystem parameters, free counts and region offsets
func (fs *FileSystem) Info() (report *FsReport, err error) {
	const op = "info"

	v, err := fs.mountVolume()
	if err != nil {
		return nil, wrapError(op, fs.imagePath, err)
	}
	defer fs.closeVolume(v, op, fs.imagePath, &err)

	table, err := v.readDescriptors()
	if err != nil {
		return nil, wrapError(op, fs.imagePath, err)
	}

	info := v.info
	return &FsReport{
		InodesCount:        info.InodesCount,
		BlocksCount:        info.BlocksCount,
		BlockSize:          info.BlockSize,
		MaxPathLen:         info.MaxPathLen,
		DescriptorsCount:   info.DescriptorsCount,
		Magic:              info.Magic,
		FreeInodes:         v.alloc.FreeInodes(),
		FreeBlocks:         v.alloc.FreeBlocks(),
		OpenDescriptors:    len(table.Open()),
		MaxDataPerBlock:    info.MaxDataPerBlock(),
		MaxRecordsPerBlock: info.MaxRecordsPerBlock(),
		MaxFileSize:        info.MaxFileSize(),
		Layout: Layout{
			DescriptorTableOffset: info.DescriptorTableOffset(),
			InodeTableOffset:      info.InodeTableOffset(),
			BlockRegionOffset:     info.BlockRegionOffset(),
			ImageSize:             info.ImageSize(),
		},
	}, nil
}

// FileStat describes the inode behind a path
type FileStat struct {
	Path       string   `json:"path" yaml:"path"`
	InodeID    uint16   `json:"inode_id" yaml:"inode_id"`
	IsFile     bool     `json:"is_file" yaml:"is_file"`
	BlocksUsed uint16   `json:"blocks_used" yaml:"blocks_used"`
	BlockIDs   []uint16 `json:"block_ids" yaml:"block_ids"`

	// Size is the data length for files and the record count for directories
	Size uint32 `json:"size" yaml:"size"`
}

// Stat returns inode details for path
func (fs *FileSystem) Stat(path string) (stat *FileStat, err error) {
	const op = "stat"

	v, err := fs.mountVolume()
	if err != nil {
		return nil, wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	id, err := v.resolve(path)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	inode, err := v.readInode(id)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	stat = &FileStat{
		Path:       path,
		InodeID:    inode.ID,
		IsFile:     inode.IsFile,
		BlocksUsed: inode.BlocksUsed,
		BlockIDs:   append([]uint16(nil), inode.BlockIDs[:inode.BlocksUsed]...),
	}

	if inode.IsFile {
		stat.Size, err = v.fileSize(inode)
	} else {
		var dir *types.BlockT
		if dir, err = v.readDirectory(id); err == nil {
			stat.Size = uint32(len(dir.Records))
		}
	}
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	return stat, nil
}

// Descriptors lists the open descriptors stored in the image
func (fs *FileSystem) Descriptors() (open []descriptors.OpenDescriptor, err error) {
	const op = "descriptors"

	v, err := fs.mountVolume()
	if err != nil {
		return nil, wrapError(op, fs.imagePath, err)
	}
	defer fs.closeVolume(v, op, fs.imagePath, &err)

	table, err := v.readDescriptors()
	if err != nil {
		return nil, wrapError(op, fs.imagePath, err)
	}

	return table.Open(), nil
}

// closeVolume closes v and reports a close failure through errp when the
// operation itself succeeded
func (fs *FileSystem) closeVolume(v *volume, op, path string, errp *error) {
	if err := v.close(); err != nil {
		if *errp == nil {
			*errp = wrapError(op, path, err)
			return
		}
		fs.logger.Warn("failed to close image", "op", op, "error", err)
	}
}
