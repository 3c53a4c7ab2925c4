package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLeavesReclaimableTail(t *testing.T) {
	r, err := newRegion(Tiny, 8)
	require.NoError(t, err)
	defer func() { require.NoError(t, unmapRegion(r)) }()

	whole := r.first.payloadBytes
	split(r.first, 8)

	assert.False(t, r.first.free)
	assert.Equal(t, uintptr(8), r.first.payloadBytes)
	require.NotNil(t, r.first.next)
	assert.True(t, r.first.next.free)
	assert.Equal(t, whole-blockHeaderSize-8, r.first.next.payloadBytes)
	assert.Same(t, r.first, r.first.next.prev)
}

func TestSplitKeepsWholeBlockWhenTailTooSmall(t *testing.T) {
	r, err := newRegion(Large, 16)
	require.NoError(t, err)
	defer func() { require.NoError(t, unmapRegion(r)) }()

	// The block is already exactly the requested size: no room for a tail.
	split(r.first, 16)
	assert.False(t, r.first.free)
	assert.Equal(t, uintptr(16), r.first.payloadBytes)
	assert.Nil(t, r.first.next)
}

func TestFirstFitSkipsWrongClassAndBusyBlocks(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	a := p.Allocate(8)
	require.NotNil(t, a)
	b := p.Allocate(32)
	require.NotNil(t, b)
	// A SMALL region, prepended at the head of the pool, also has free
	// space, but it is the wrong class for a TINY request.
	s := p.Allocate(200)
	require.NotNil(t, s)

	// a is still live (busy), so firstFit for a small request must return
	// the free remainder carved after b, not a itself.
	found := p.firstFit(Tiny, 8)
	require.NotNil(t, found)
	assert.True(t, found.free)
	assert.Equal(t, Tiny, p.findRegion(payloadPointer(found)).class)
}

func TestAllocateInClassGrowsPoolOnExhaustion(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	before := p.head
	assert.Nil(t, before)

	ptr := p.Allocate(8)
	require.NotNil(t, ptr)
	require.NotNil(t, p.head)
	assert.Equal(t, Tiny, p.head.class)
}
