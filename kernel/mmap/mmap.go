// Package mmap is the allocator's one collaborator with the operating
// system: given a byte count it returns a zeroed, readable/writable,
// process-private virtual region aligned to the page size, or it releases
// one previously returned. Everything above this package deals in typed
// Region/Block handles; this package is the only place that talks to the
// kernel directly and the only place raw page addresses originate.
package mmap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PageSize is the OS page size, read once at process start. Region sizes
// are always expressed as multiples of it.
var PageSize = unix.Getpagesize()

// Map obtains a new, zeroed, process-private virtual region of size bytes
// from the OS. size need not be a multiple of PageSize: Map passes it
// through unchanged, the returned slice has exactly size bytes, and the
// OS backs it with whole pages.
//
// The returned slice aliases the mapped pages directly — its Data pointer
// is the region base address used for all subsequent header arithmetic.
func Map(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: invalid size %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}

	return data, nil
}

// Unmap releases a region previously returned by Map. size must match the
// exact byte count originally requested.
func Unmap(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}

// RoundUpPages rounds n up to the nearest multiple of PageSize.
func RoundUpPages(n int) int {
	if n <= 0 {
		return PageSize
	}
	return (n + PageSize - 1) / PageSize * PageSize
}
