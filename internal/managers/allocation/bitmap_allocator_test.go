package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deploymenttheory/go-minifs/internal/types"
)

func newAllocator() *BitmapAllocator {
	return NewBitmapAllocator(types.NewSuperblock(types.DefaultFsInfo()))
}

func TestReserveInodeFirstFit(t *testing.T) {
	a := newAllocator()

	for want := uint16(0); want < 3; want++ {
		id, err := a.ReserveInode()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	_, err := a.FreeInode(1)
	require.NoError(t, err)

	id, err := a.ReserveInode()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id, "freed id should be reused first")
}

func TestReserveInodeExhaustion(t *testing.T) {
	a := newAllocator()

	for i := 0; i < int(types.InodesCount); i++ {
		_, err := a.ReserveInode()
		require.NoError(t, err)
	}
	assert.Equal(t, 0, a.FreeInodes())

	id, err := a.ReserveInode()
	assert.ErrorIs(t, err, ErrNoFreeInode)
	assert.Equal(t, types.InodesCount, id, "exhaustion returns the capacity sentinel")

	// bitmap is still usable after a failed reservation
	freed, err := a.FreeInode(77)
	require.NoError(t, err)
	assert.Equal(t, uint16(77), freed)

	id, err = a.ReserveInode()
	require.NoError(t, err)
	assert.Equal(t, uint16(77), id)
}

func TestReserveBlockExhaustion(t *testing.T) {
	a := newAllocator()

	for i := 0; i < int(types.BlocksCount); i++ {
		_, err := a.ReserveBlock()
		require.NoError(t, err)
	}

	id, err := a.ReserveBlock()
	assert.ErrorIs(t, err, ErrNoFreeBlock)
	assert.Equal(t, types.BlocksCount, id)
}

func TestDoubleFree(t *testing.T) {
	a := newAllocator()

	id, err := a.ReserveBlock()
	require.NoError(t, err)

	_, err = a.FreeBlock(id)
	require.NoError(t, err)
	assert.False(t, a.IsBlockReserved(id))

	sentinel, err := a.FreeBlock(id)
	assert.ErrorIs(t, err, ErrAlreadyFree)
	assert.Equal(t, types.BlocksCount, sentinel)

	sentinel, err = a.FreeInode(5)
	assert.ErrorIs(t, err, ErrAlreadyFree)
	assert.Equal(t, types.InodesCount, sentinel)
}

func TestFreeOutOfRange(t *testing.T) {
	a := newAllocator()

	_, err := a.FreeInode(types.InodesCount + 10)
	assert.ErrorIs(t, err, ErrAlreadyFree)
	assert.False(t, a.IsInodeReserved(types.InodesCount+10))
}

func TestAllocatorMutatesSuperblock(t *testing.T) {
	sb := types.NewSuperblock(types.DefaultFsInfo())
	a := NewBitmapAllocator(sb)

	_, err := a.ReserveInode()
	require.NoError(t, err)
	_, err = a.ReserveBlock()
	require.NoError(t, err)

	assert.True(t, sb.ReservedInodes[0])
	assert.True(t, sb.ReservedBlocks[0])
	assert.Same(t, sb, a.Superblock())
	assert.Equal(t, int(types.InodesCount)-1, a.FreeInodes())
	assert.Equal(t, int(types.BlocksCount)-1, a.FreeBlocks())
}
