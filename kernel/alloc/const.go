// Package alloc is a general-purpose dynamic memory allocator: a drop-in
// engine for malloc/free/realloc-shaped call sites that carves OS pages
// into size-classed regions and, within a region, a doubly-linked chain
// of blocks.
//
// The three public operations — Allocate, Release, Resize — and the
// Snapshot reader all serialize on a single mutex per Pool. A Pool is
// safe for concurrent use from multiple goroutines; the package-level
// functions operate on one process-wide default Pool, mirroring a libc
// allocator's single shared heap.
package alloc

import "github.com/nmxmxh/vmalloc/kernel/mmap"

// Class is the size-class policy bucket a request falls into.
type Class int

const (
	Tiny Class = iota
	Small
	Large
)

func (c Class) String() string {
	switch c {
	case Tiny:
		return "TINY"
	case Small:
		return "SMALL"
	case Large:
		return "LARGE"
	default:
		return "UNKNOWN"
	}
}

const (
	// TinyMax is the largest aligned payload size still routed to a
	// TINY multi-block region.
	TinyMax = 64
	// SmallMax is the largest aligned payload size still routed to a
	// SMALL multi-block region. Anything larger gets a dedicated LARGE
	// singleton region.
	SmallMax = 1024

	// alignment every returned payload pointer honors.
	alignment = 8

	// minSplitTail is the smallest payload a split-off free tail may
	// have. A candidate block is split only when its leftover beyond the
	// satisfied request holds a block header plus this many bytes; a
	// smaller leftover is handed out as internal fragmentation instead.
	minSplitTail = 8
)

// tinyPages and smallPages fix TINY/SMALL region sizes as multiples of
// the OS page size, independent of any one request's size.
var (
	tinyPages  = 16
	smallPages = 128
)

func tinyRegionBytes() int {
	return tinyPages * mmap.PageSize
}

func smallRegionBytes() int {
	return smallPages * mmap.PageSize
}

func roundUp8(n int) int {
	return (n + 7) &^ 7
}

// classify maps a requested byte count to its aligned size and region
// class. A request of zero is coerced to one byte so the allocator still
// returns a distinct, releasable pointer.
func classify(requested int) (aligned int, class Class) {
	if requested <= 0 {
		requested = 1
	}
	aligned = roundUp8(requested)

	switch {
	case aligned <= TinyMax:
		class = Tiny
	case aligned <= SmallMax:
		class = Small
	default:
		class = Large
	}
	return aligned, class
}
