package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

// pathComponents splits an absolute path into its non-empty components.
// "/" yields no components.
func pathComponents(path string) ([]string, error) {
	if !strings.HasPrefix(path, types.PathSeparator) {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidPath, path)
	}

	var components []string
	for _, part := range strings.Split(path, types.PathSeparator) {
		if part == "" {
			continue
		}
		components = append(components, part)
	}
	return components, nil
}

// SplitPath separates a path to be created into its parent directory and
// the new name. maxNameLen is the longest name a directory record can hold.
func SplitPath(path string, maxNameLen int) (parent, name string, err error) {
	if path == "" {
		return "", "", fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if strings.HasSuffix(path, types.PathSeparator) && path != types.PathSeparator {
		return "", "", fmt.Errorf("%w: %q ends with a separator", ErrInvalidPath, path)
	}

	components, err := pathComponents(path)
	if err != nil {
		return "", "", err
	}
	if len(components) == 0 {
		return "", "", fmt.Errorf("%w: root cannot be created", ErrInvalidPath)
	}

	name = components[len(components)-1]
	if err := validateName(name, maxNameLen); err != nil {
		return "", "", err
	}

	parent = types.PathSeparator + strings.Join(components[:len(components)-1], types.PathSeparator)
	return parent, name, nil
}

func validateName(name string, maxNameLen int) error {
	if name == types.DotName || name == types.DotDotName {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidPath, name)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: name contains NUL", ErrInvalidPath)
	}
	if len(name) > maxNameLen {
		return fmt.Errorf("%w: %q is %d bytes, max %d", ErrNameTooLong, name, len(name), maxNameLen)
	}
	return nil
}

// resolve walks path from the root one component at a time and returns
// the inode id it names
func (v *volume) resolve(path string) (uint16, error) {
	components, err := pathComponents(path)
	if err != nil {
		return 0, err
	}

	current := types.RootInodeID
	for _, name := range components {
		dir, err := v.readDirectory(current)
		if err != nil {
			return 0, err
		}

		record, ok := lookup(dir, name)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		current = record.InodeID
	}

	return current, nil
}

// readDirectory loads the directory block of inode id. Files are rejected
// with ErrNotDirectory.
func (v *volume) readDirectory(id uint16) (*types.BlockT, error) {
	inode, err := v.readInode(id)
	if err != nil {
		return nil, err
	}
	if !inode.IsDirectory() {
		return nil, fmt.Errorf("%w: inode %d", ErrNotDirectory, id)
	}

	block, err := v.readBlock(inode.FirstBlock())
	if err != nil {
		return nil, err
	}
	if block.Kind != types.PayloadDirectory {
		return nil, fmt.Errorf("%w: directory inode %d owns a %s block", ErrCorruptBlock, id, block.Kind)
	}

	return block, nil
}

// lookup scans a directory block for name
func lookup(dir *types.BlockT, name string) (types.BlockRecordT, bool) {
	want := []byte(name)
	for _, record := range dir.Records {
		if bytes.Equal(bytes.TrimRight(record.Name, "\x00"), want) {
			return record, true
		}
	}
	return types.BlockRecordT{}, false
}
