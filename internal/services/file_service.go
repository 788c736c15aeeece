package services

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-minifs/internal/managers/descriptors"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

func handlePath(handle uint16) string {
	return fmt.Sprintf("fd %d", handle)
}

// Open reserves a descriptor for the file at path. A file can be open
// through at most one descriptor.
func (fs *FileSystem) Open(path string) (handle uint16, err error) {
	const op = "open"

	v, err := fs.mountVolume()
	if err != nil {
		return 0, wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	id, err := v.resolve(path)
	if err != nil {
		return 0, wrapError(op, path, err)
	}

	inode, err := v.readInode(id)
	if err != nil {
		return 0, wrapError(op, path, err)
	}
	if !inode.IsFile {
		return 0, wrapError(op, path, ErrIsDirectory)
	}

	table, err := v.readDescriptors()
	if err != nil {
		return 0, wrapError(op, path, err)
	}

	handle, err = table.Reserve(id)
	if err != nil {
		return handle, wrapError(op, path, err)
	}

	if err := v.writeDescriptors(table); err != nil {
		return 0, wrapError(op, path, err)
	}

	fs.logger.Debug("opened file", "path", path, "fd", handle, "inode_id", id)
	return handle, nil
}

// Close releases a descriptor
func (fs *FileSystem) Close(handle uint16) (err error) {
	const op = "close"
	path := handlePath(handle)

	v, err := fs.mountVolume()
	if err != nil {
		return wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	table, err := v.readDescriptors()
	if err != nil {
		return wrapError(op, path, err)
	}

	if err := table.Free(handle); err != nil {
		return wrapError(op, path, err)
	}

	return wrapError(op, path, v.writeDescriptors(table))
}

// Seek moves a descriptor to pos. Positions past the end of the file's
// data, or at or past the maximum file size, are rejected.
func (fs *FileSystem) Seek(handle uint16, pos uint32) (err error) {
	const op = "lseek"
	path := handlePath(handle)

	v, err := fs.mountVolume()
	if err != nil {
		return wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	table, inode, err := v.openInode(handle)
	if err != nil {
		return wrapError(op, path, err)
	}

	if pos >= v.info.MaxFileSize() {
		return wrapError(op, path, fmt.Errorf("%w: %d >= max file size %d", ErrSeekOutOfRange, pos, v.info.MaxFileSize()))
	}

	size, err := v.fileSize(inode)
	if err != nil {
		return wrapError(op, path, err)
	}
	if pos > size {
		return wrapError(op, path, fmt.Errorf("%w: %d is past end of file (%d bytes)", ErrSeekOutOfRange, pos, size))
	}

	if err := table.SetPosition(handle, pos); err != nil {
		return wrapError(op, path, err)
	}

	return wrapError(op, path, v.writeDescriptors(table))
}

// Read returns up to size bytes from the descriptor's position and
// advances it. A negative size reads to the end of the file.
func (fs *FileSystem) Read(handle uint16, size int) (data []byte, err error) {
	const op = "read"
	path := handlePath(handle)

	v, err := fs.mountVolume()
	if err != nil {
		return nil, wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	table, inode, err := v.openInode(handle)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	pos, err := table.Position(handle)
	if err != nil {
		return nil, wrapError(op, path, err)
	}

	maxFile := int(v.info.MaxFileSize())
	if size < 0 || size > maxFile {
		size = maxFile
	}

	capacity := v.info.MaxDataPerBlock()
	data = make([]byte, 0, size)
	for len(data) < size {
		index := pos / capacity
		offset := pos % capacity
		if index >= uint32(inode.BlocksUsed) {
			break
		}

		block, err := v.readBlock(inode.BlockIDs[index])
		if err != nil {
			return nil, wrapError(op, path, err)
		}

		available := uint32(block.Info.DataSize)
		if available <= offset {
			break
		}

		n := min(uint32(size-len(data)), available-offset)
		data = append(data, block.Data[offset:offset+n]...)
		pos += n
	}

	if err := table.SetPosition(handle, pos); err != nil {
		return nil, wrapError(op, path, err)
	}
	if err := v.writeDescriptors(table); err != nil {
		return nil, wrapError(op, path, err)
	}

	return data, nil
}

// Write stores data at the descriptor's position and advances it, growing
// the file one block at a time. When the file or the block pool runs out of
// room the write stops early and the short count is returned without error.
func (fs *FileSystem) Write(handle uint16, data []byte) (written int, err error) {
	const op = "write"
	path := handlePath(handle)

	v, err := fs.mountVolume()
	if err != nil {
		return 0, wrapError(op, path, err)
	}
	defer fs.closeVolume(v, op, path, &err)

	table, inode, err := v.openInode(handle)
	if err != nil {
		return 0, wrapError(op, path, err)
	}

	pos, err := table.Position(handle)
	if err != nil {
		return 0, wrapError(op, path, err)
	}

	if maxFile := int(v.info.MaxFileSize()); len(data) > maxFile {
		data = data[:maxFile]
	}

	written, writeErr := v.writeData(inode, &pos, data)

	// Persist what was written even when the loop stopped on an I/O error
	if err := table.SetPosition(handle, pos); err != nil {
		return written, wrapError(op, path, err)
	}
	if err := v.writeDescriptors(table); err != nil {
		return written, wrapError(op, path, err)
	}
	if err := v.writeInode(inode); err != nil {
		return written, wrapError(op, path, err)
	}
	if err := v.writeSuperblock(); err != nil {
		return written, wrapError(op, path, err)
	}

	if writeErr != nil {
		return written, wrapError(op, path, writeErr)
	}
	if written < len(data) {
		fs.logger.Info("short write", "fd", handle, "written", written, "requested", len(data))
	}

	return written, nil
}

// writeData is the block loop behind Write. Capacity exhaustion ends the
// loop without an error.
func (v *volume) writeData(inode *types.InodeT, pos *uint32, data []byte) (int, error) {
	capacity := v.info.MaxDataPerBlock()
	written := 0

	for written < len(data) {
		index := *pos / capacity
		offset := *pos % capacity

		var block *types.BlockT
		if index < uint32(inode.BlocksUsed) {
			existing, err := v.readBlock(inode.BlockIDs[index])
			if err != nil {
				return written, err
			}
			block = existing
		} else {
			if inode.IsFull() {
				v.logger.Debug("write stopped", "inode_id", inode.ID, "reason", ErrInodeFull)
				break
			}

			blockID, err := v.alloc.ReserveBlock()
			if err != nil {
				v.logger.Debug("write stopped", "inode_id", inode.ID, "reason", err)
				break
			}

			inode.AppendBlock(blockID)
			if err := v.writeInode(inode); err != nil {
				return written, err
			}
			block = types.NewEmptyBlock(blockID, inode.ID)
			v.logger.Debug("allocated data block", "inode_id", inode.ID, "block_id", blockID)
		}

		block.EnsureData(capacity)
		n := min(uint32(len(data)-written), capacity-offset)
		copy(block.Data[offset:offset+n], data[written:written+int(n)])
		if end := uint16(offset + n); end > block.Info.DataSize {
			block.Info.DataSize = end
		}

		if err := v.writeBlock(block); err != nil {
			return written, err
		}

		written += int(n)
		*pos += n
	}

	return written, nil
}

// ReadTo reads up to size bytes from the descriptor into a host file.
// A negative size reads to the end of the file.
func (fs *FileSystem) ReadTo(handle uint16, hostPath string, size int) (int, error) {
	data, err := fs.Read(handle, size)
	if err != nil {
		return 0, err
	}

	if err := os.WriteFile(hostPath, data, 0o644); err != nil {
		return 0, wrapError("read_to", hostPath, err)
	}

	return len(data), nil
}

// WriteFrom writes the contents of a host file through the descriptor
func (fs *FileSystem) WriteFrom(handle uint16, hostPath string) (int, error) {
	data, err := os.ReadFile(hostPath)
	if err != nil {
		return 0, wrapError("write_from", hostPath, err)
	}

	return fs.Write(handle, data)
}

// openInode loads the descriptor table and the file behind an open handle
func (v *volume) openInode(handle uint16) (*descriptors.DescriptorManager, *types.InodeT, error) {
	table, err := v.readDescriptors()
	if err != nil {
		return nil, nil, err
	}

	id, err := table.InodeID(handle)
	if err != nil {
		return nil, nil, err
	}

	inode, err := v.readInode(id)
	if err != nil {
		return nil, nil, err
	}
	if !inode.IsFile {
		return nil, nil, fmt.Errorf("%w: fd %d points at inode %d", ErrIsDirectory, handle, id)
	}

	return table, inode, nil
}

// fileSize counts data bytes up to the first block that is not full
func (v *volume) fileSize(inode *types.InodeT) (uint32, error) {
	capacity := v.info.MaxDataPerBlock()
	var size uint32

	for i := uint16(0); i < inode.BlocksUsed; i++ {
		block, err := v.readBlock(inode.BlockIDs[i])
		if err != nil {
			return 0, err
		}
		size += uint32(block.Info.DataSize)
		if uint32(block.Info.DataSize) < capacity {
			break
		}
	}

	return size, nil
}
