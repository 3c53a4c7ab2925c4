package alloc

import "unsafe"

// regionHeader sits at the very start of an OS-mapped virtual range. The
// pointer to a regionHeader *is* the region's base address — there is no
// separate bookkeeping allocation, which is what lets release() recover
// the original mmap'd slice from nothing but the header pointer.
type regionHeader struct {
	class      Class
	totalBytes uintptr
	next       *regionHeader // singly-linked pool membership
	first      *blockHeader  // head of this region's block chain
}

// blockHeader precedes every block's payload. The user-visible pointer
// handed out by Allocate is exactly unsafe.Pointer(block) + blockHeaderSize.
type blockHeader struct {
	payloadBytes uintptr
	free         bool
	next         *blockHeader
	prev         *blockHeader
}

var (
	regionHeaderSize = unsafe.Sizeof(regionHeader{})
	blockHeaderSize  = unsafe.Sizeof(blockHeader{})
)

// payloadPointer returns the user-visible address for a block.
func payloadPointer(b *blockHeader) unsafe.Pointer {
	return unsafe.Add(unsafe.Pointer(b), blockHeaderSize)
}

// blockFromPayload recovers a block header from a user pointer, assuming
// the pointer genuinely is one this allocator handed out. Callers must
// validate via Pool.findRegion before trusting the result.
func blockFromPayload(p unsafe.Pointer) *blockHeader {
	return (*blockHeader)(unsafe.Add(p, -int(blockHeaderSize)))
}

// regionBase/regionEnd as uintptr, used for the reverse-pointer lookup's
// ordering comparisons (Go defines == and != on pointers, not < or <=).
func regionBase(r *regionHeader) uintptr {
	return uintptr(unsafe.Pointer(r))
}

func regionEnd(r *regionHeader) uintptr {
	return regionBase(r) + r.totalBytes
}
