package types

// Descriptor Table
// The open-file table is stored right after the superblock as three
// parallel arrays: reserved flags, inode ids and byte positions. It lives in
// the image, so open descriptors survive process restarts.

// DescriptorTableT maps a descriptor handle to an inode and a position.
type DescriptorTableT struct {
	// Reservation flag per handle.
	Reserved []bool

	// Inode id per handle.
	InodeIDs []uint16

	// Byte offset per handle.
	Positions []uint32
}

// NewDescriptorTable returns an empty table with count slots.
func NewDescriptorTable(count uint16) *DescriptorTableT {
	return &DescriptorTableT{
		Reserved:  make([]bool, count),
		InodeIDs:  make([]uint16, count),
		Positions: make([]uint32, count),
	}
}

// Len returns the number of slots.
func (dt *DescriptorTableT) Len() int {
	return len(dt.Reserved)
}
