package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesceMergesAdjacentFreeRun(t *testing.T) {
	r, err := newRegion(Tiny, 8)
	require.NoError(t, err)
	defer func() { require.NoError(t, unmapRegion(r)) }()

	whole := r.first.payloadBytes

	split(r.first, 8)
	a := r.first
	tail := a.next
	require.NotNil(t, tail)
	split(tail, 8)
	b := tail
	require.NotNil(t, b.next)

	// a and b are both used; the block after b is the still-free remainder.
	a.free = true
	b.free = true
	coalesce(r)

	assert.True(t, fullyFree(r))
	assert.Nil(t, r.first.next)
	assert.Equal(t, whole, r.first.payloadBytes)
}

func TestCoalesceLeavesUsedBlockAlone(t *testing.T) {
	r, err := newRegion(Tiny, 8)
	require.NoError(t, err)
	defer func() { require.NoError(t, unmapRegion(r)) }()

	split(r.first, 8)
	require.NotNil(t, r.first.next)
	// r.first is used, r.first.next is free: nothing to merge.
	coalesce(r)

	require.NotNil(t, r.first.next)
	assert.False(t, r.first.free)
	assert.True(t, r.first.next.free)
}

func TestFullyFreeFalseWhenAnyBlockUsed(t *testing.T) {
	r, err := newRegion(Tiny, 8)
	require.NoError(t, err)
	defer func() { require.NoError(t, unmapRegion(r)) }()

	split(r.first, 8)
	assert.False(t, fullyFree(r))
}
