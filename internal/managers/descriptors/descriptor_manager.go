package descriptors

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-minifs/internal/interfaces"
	"github.com/deploymenttheory/go-minifs/internal/types"
)

var (
	// ErrAlreadyOpen is returned when opening an inode that already has a descriptor
	ErrAlreadyOpen = errors.New("can't open same inode twice")

	// ErrNoFreeDescriptor is returned when every descriptor slot is reserved
	ErrNoFreeDescriptor = errors.New("all descriptors are reserved")

	// ErrNotOpen is returned for a handle that is closed or out of range
	ErrNotOpen = errors.New("descriptor is closed")
)

// DescriptorManager applies open/close/seek policy to a descriptor table
type DescriptorManager struct {
	table *types.DescriptorTableT
}

var _ interfaces.DescriptorTable = (*DescriptorManager)(nil)

// NewDescriptorManager wraps a decoded descriptor table
func NewDescriptorManager(table *types.DescriptorTableT) *DescriptorManager {
	return &DescriptorManager{table: table}
}

// Table returns the managed table
func (m *DescriptorManager) Table() *types.DescriptorTableT {
	return m.table
}

// Reserve opens a descriptor for inodeID with position 0. If the table is
// full the returned handle equals the table length.
func (m *DescriptorManager) Reserve(inodeID uint16) (uint16, error) {
	for fd := range m.table.Reserved {
		if m.table.Reserved[fd] && m.table.InodeIDs[fd] == inodeID {
			return uint16(m.table.Len()), fmt.Errorf("inode %d is open as fd %d: %w", inodeID, fd, ErrAlreadyOpen)
		}
	}

	for fd, reserved := range m.table.Reserved {
		if !reserved {
			m.table.Reserved[fd] = true
			m.table.InodeIDs[fd] = inodeID
			m.table.Positions[fd] = 0
			return uint16(fd), nil
		}
	}

	return uint16(m.table.Len()), ErrNoFreeDescriptor
}

// Free closes a descriptor and clears its slot
func (m *DescriptorManager) Free(handle uint16) error {
	if !m.IsReserved(handle) {
		return fmt.Errorf("fd %d: %w", handle, ErrNotOpen)
	}

	m.table.Reserved[handle] = false
	m.table.InodeIDs[handle] = 0
	m.table.Positions[handle] = 0
	return nil
}

// IsReserved checks whether handle is open
func (m *DescriptorManager) IsReserved(handle uint16) bool {
	return int(handle) < m.table.Len() && m.table.Reserved[handle]
}

// InodeID returns the inode behind an open handle
func (m *DescriptorManager) InodeID(handle uint16) (uint16, error) {
	if !m.IsReserved(handle) {
		return 0, fmt.Errorf("fd %d: %w", handle, ErrNotOpen)
	}
	return m.table.InodeIDs[handle], nil
}

// Position returns the byte offset of an open handle
func (m *DescriptorManager) Position(handle uint16) (uint32, error) {
	if !m.IsReserved(handle) {
		return 0, fmt.Errorf("fd %d: %w", handle, ErrNotOpen)
	}
	return m.table.Positions[handle], nil
}

// SetPosition moves an open handle
func (m *DescriptorManager) SetPosition(handle uint16, pos uint32) error {
	if !m.IsReserved(handle) {
		return fmt.Errorf("fd %d: %w", handle, ErrNotOpen)
	}
	m.table.Positions[handle] = pos
	return nil
}

// OpenDescriptor describes one reserved slot
type OpenDescriptor struct {
	Handle   uint16 `json:"handle" yaml:"handle"`
	InodeID  uint16 `json:"inode_id" yaml:"inode_id"`
	Position uint32 `json:"position" yaml:"position"`
}

// Open lists all reserved descriptors in handle order
func (m *DescriptorManager) Open() []OpenDescriptor {
	var open []OpenDescriptor
	for fd, reserved := range m.table.Reserved {
		if reserved {
			open = append(open, OpenDescriptor{
				Handle:   uint16(fd),
				InodeID:  m.table.InodeIDs[fd],
				Position: m.table.Positions[fd],
			})
		}
	}
	return open
}
