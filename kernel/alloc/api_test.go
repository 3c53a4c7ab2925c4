package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tinyRegionCount(p *Pool) int {
	n := 0
	for r := p.head; r != nil; r = r.next {
		if r.class == Tiny {
			n++
		}
	}
	return n
}

// S1: a zero-size request yields a writable, releasable pointer and leaves
// the pool usable afterward.
func TestScenarioZeroSizeAllocation(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	q := p.Allocate(0)
	require.NotNil(t, q)

	*(*byte)(q) = 0x5A
	assert.Equal(t, byte(0x5A), *(*byte)(q))

	p.Release(q)

	again := p.Allocate(8)
	assert.NotNil(t, again)
}

// S2: releasing a TINY block and immediately requesting the same size
// reuses the same region (first-fit finds the just-freed block). A second
// live block keeps the region from draining, and so from being unmapped,
// when a is released.
func TestScenarioTinyReuse(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	a := p.Allocate(50)
	require.NotNil(t, a)
	keep := p.Allocate(50)
	require.NotNil(t, keep)
	region := p.findRegion(a)
	require.NotNil(t, region)

	p.Release(a)

	b := p.Allocate(50)
	require.NotNil(t, b)
	assert.Equal(t, region, p.findRegion(b))
}

// S3: three adjacent blocks allocated in order; releasing the two outer
// ones and then the middle one coalesces all three into one free span big
// enough to satisfy a request none of the three alone could. A live guard
// block after z keeps the region mapped and keeps the span from merging
// with the region's free remainder.
func TestScenarioCoalescingAcrossReleaseOrder(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	x := p.Allocate(30)
	y := p.Allocate(30)
	z := p.Allocate(30)
	guard := p.Allocate(30)
	require.NotNil(t, x)
	require.NotNil(t, y)
	require.NotNil(t, z)
	require.NotNil(t, guard)

	region := p.findRegion(x)
	require.NotNil(t, region)

	p.Release(x)
	p.Release(z)
	p.Release(y)

	w := p.Allocate(TinyMax)
	require.NotNil(t, w)
	assert.Equal(t, region, p.findRegion(w))
	assert.Equal(t, x, w)
}

// S4: releasing every block from a burst of TINY allocations drains and
// unmaps every TINY region.
func TestScenarioRegionReclaimAfterBurst(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	ptrs := make([]unsafe.Pointer, 150)
	for i := range ptrs {
		ptrs[i] = p.Allocate(32)
		require.NotNil(t, ptrs[i])
	}
	assert.Greater(t, tinyRegionCount(p), 0)

	for _, ptr := range ptrs {
		p.Release(ptr)
	}

	assert.Equal(t, 0, tinyRegionCount(p))
}

// S5: a LARGE request gets its own singleton region, sized exactly to the
// aligned payload, and the region is unmapped the instant it is released.
func TestScenarioLargeIsolationAndImmediateUnmap(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	ptr := p.Allocate(100000)
	require.NotNil(t, ptr)

	region := p.findRegion(ptr)
	require.NotNil(t, region)
	assert.Equal(t, Large, region.class)
	assert.False(t, region.first.free)
	assert.Equal(t, uintptr(100000), region.first.payloadBytes)
	assert.Nil(t, region.first.next)

	p.Release(ptr)
	assert.Nil(t, p.findRegion(ptr))

	n := 0
	for r := p.head; r != nil; r = r.next {
		n++
	}
	assert.Equal(t, 0, n)
}

func TestAllocateReturnsEightByteAligned(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	for _, n := range []int{0, 1, 7, 8, 9, 63, 64, 65, 1024, 1025, 100000} {
		ptr := p.Allocate(n)
		require.NotNil(t, ptr)
		assert.Zero(t, uintptr(ptr)%alignment, "size %d", n)
	}
}

func TestReleaseNilAndUnknownPointerAreNoOps(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	p.Release(nil)

	var stackVar byte
	p.Release(unsafe.Pointer(&stackVar))
}

func TestDoubleReleaseIsAbsorbed(t *testing.T) {
	p := NewPool()
	defer func() { require.NoError(t, p.Shutdown()) }()

	ptr := p.Allocate(40)
	require.NotNil(t, ptr)
	p.Release(ptr)
	assert.NotPanics(t, func() { p.Release(ptr) })
}
