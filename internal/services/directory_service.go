package services

import (
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// DirEntry is one record of a directory listing
type DirEntry struct {
	Name    string `json:"name" yaml:"name"`
	InodeID uint16 `json:"inode_id" yaml:"inode_id"`
	IsFile  bool   `json:"is_file" yaml:"is_file"`
}

// String renders the entry the way ls prints it
func (e DirEntry) String() string {
	if e.IsFile {
		return e.Name + " -- file"
	}
	return e.Name
}

// List returns the records of the directory at path in on-disk order,
// including "." and ".."
func (fs *FileSystem) List(path string) (entries []DirEntry, err error) {
	const op = "ls"

	v, err := fs.mountVolume()
	if err != nil {
		return nil, wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	id, err := v.resolve(path)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	dir, err := v.readDirectory(id)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	entries = make([]DirEntry, 0, len(dir.Records))
	for _, record := range dir.Records {
		child, err := v.readInode(record.InodeID)
		if err != nil {
			return nil, wrapError(op, path, err)
		}
		entries = append(entries, DirEntry{
			Name:    record.NameString(),
			InodeID: record.InodeID,
			IsFile:  child.IsFile,
		})
	}

	return entries, nil
}

// MakeDir creates an empty directory at path
func (fs *FileSystem) MakeDir(path string) error {
	return fs.create("mkdir", path, false)
}

// MakeFile creates an empty file at path
func (fs *FileSystem) MakeFile(path string) error {
	return fs.create("touch", path, true)
}

func (fs *FileSystem) create(op, path string, isFile bool) (err error) {
	v, err := fs.mountVolume()
	if err != nil {
		return wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	parentPath, name, err := SplitPath(path, v.info.MaxNameLen())
	if err != nil {
		return wrapError(op, path, err)
	}

	parentID, err := v.resolve(parentPath)
	if err != nil {
		return wrapError(op, path, err)
	}

	parent, err := v.readDirectory(parentID)
	if err != nil {
		return wrapError(op, path, err)
	}

	// Check the parent before allocating anything so a failure leaks no ids
	if _, exists := lookup(parent, name); exists {
		return wrapError(op, path, ErrExists)
	}
	if len(parent.Records) >= int(v.info.MaxRecordsPerBlock()) {
		return wrapError(op, path, ErrDirectoryFull)
	}

	var childID uint16
	if isFile {
		childID, err = v.createFile(parentID)
	} else {
		childID, err = v.createDir(parentID, false)
	}
	if err != nil {
		return wrapError(op, path, err)
	}

	if err := v.insertRecord(parent, name, childID); err != nil {
		child, readErr := v.readInode(childID)
		if readErr == nil {
			v.release(childID, child.FirstBlock(), true)
		} else {
			v.release(childID, 0, false)
		}
		if sbErr := v.writeSuperblock(); sbErr != nil {
			fs.logger.Warn("failed to persist released allocation", "path", path, "error", sbErr)
		}
		return wrapError(op, path, err)
	}

	fs.logger.Debug("created entry", "op", op, "path", path, "inode_id", childID)
	return nil
}

// createDir allocates a directory inode and its block holding "." and "..".
// The root directory is its own parent.
func (v *volume) createDir(parentID uint16, isRoot bool) (uint16, error) {
	return v.createInode(false, func(inodeID, blockID uint16) *types.BlockT {
		if isRoot {
			parentID = inodeID
		}
		return types.NewDirectoryBlock(blockID, inodeID, []types.BlockRecordT{
			types.NewBlockRecord(inodeID, types.DotName, v.info.MaxPathLen),
			types.NewBlockRecord(parentID, types.DotDotName, v.info.MaxPathLen),
		})
	})
}

// createFile allocates a file inode with one empty block. The parent is
// not touched.
func (v *volume) createFile(parentID uint16) (uint16, error) {
	return v.createInode(true, func(inodeID, blockID uint16) *types.BlockT {
		block := types.NewEmptyBlock(blockID, inodeID)
		block.EnsureData(v.info.MaxDataPerBlock())
		return block
	})
}

// createInode reserves an inode and a block, persists block, inode and
// superblock in that order, and unwinds the reservations on failure
func (v *volume) createInode(isFile bool, newBlock func(inodeID, blockID uint16) *types.BlockT) (uint16, error) {
	inodeID, err := v.alloc.ReserveInode()
	if err != nil {
		return inodeID, err
	}

	blockID, err := v.alloc.ReserveBlock()
	if err != nil {
		v.release(inodeID, 0, false)
		return blockID, err
	}

	fail := func(err error) (uint16, error) {
		v.release(inodeID, blockID, true)
		return v.info.InodesCount, err
	}

	if err := v.writeBlock(newBlock(inodeID, blockID)); err != nil {
		return fail(err)
	}

	inode := types.NewInode(inodeID, isFile, v.info)
	inode.AppendBlock(blockID)
	if err := v.writeInode(inode); err != nil {
		return fail(err)
	}

	if err := v.writeSuperblock(); err != nil {
		return fail(err)
	}

	v.logger.Debug("allocated inode", "inode_id", inodeID, "block_id", blockID, "is_file", isFile)
	return inodeID, nil
}

// insertRecord appends a record for id to the parent directory block
func (v *volume) insertRecord(parent *types.BlockT, name string, id uint16) error {
	if len(parent.Records) >= int(v.info.MaxRecordsPerBlock()) {
		return fmt.Errorf("%w: block %d", ErrDirectoryFull, parent.Info.BlockID)
	}
	parent.AppendRecord(types.NewBlockRecord(id, name, v.info.MaxPathLen))
	return v.writeBlock(parent)
}
