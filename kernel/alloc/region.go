package alloc

import (
	"fmt"
	"unsafe"

	"github.com/nmxmxh/vmalloc/kernel/mmap"
)

// regionBytesFor computes the exact byte count to request from the OS for
// a new region of the given class. TINY/SMALL are fixed page multiples;
// LARGE is sized to fit exactly one block of the aligned payload.
func regionBytesFor(class Class, aligned int) int {
	switch class {
	case Tiny:
		return tinyRegionBytes()
	case Small:
		return smallRegionBytes()
	default:
		return int(regionHeaderSize) + int(blockHeaderSize) + aligned
	}
}

// newRegion obtains a fresh region from the OS, installs its header, and
// tiles it with a single block spanning the whole payload area. For
// TINY/SMALL the sole block starts free; for LARGE it starts used, since
// a LARGE region only ever has the one block that satisfied its request.
func newRegion(class Class, aligned int) (*regionHeader, error) {
	totalBytes := regionBytesFor(class, aligned)

	data, err := mmap.Map(totalBytes)
	if err != nil {
		return nil, fmt.Errorf("alloc: %w: %v", ErrOutOfMemory, err)
	}

	region := (*regionHeader)(unsafe.Pointer(&data[0]))
	region.class = class
	region.totalBytes = uintptr(totalBytes)
	region.next = nil

	block := (*blockHeader)(unsafe.Add(unsafe.Pointer(region), regionHeaderSize))
	block.payloadBytes = uintptr(totalBytes) - regionHeaderSize - blockHeaderSize
	block.free = class != Large
	block.next = nil
	block.prev = nil

	region.first = block

	return region, nil
}

// unmapRegion returns a region's pages to the OS. It reconstructs the
// original mmap slice from the header pointer and recorded size — the
// only bookkeeping a region needs is its own header.
func unmapRegion(r *regionHeader) error {
	data := unsafe.Slice((*byte)(unsafe.Pointer(r)), int(r.totalBytes))
	return mmap.Unmap(data)
}
