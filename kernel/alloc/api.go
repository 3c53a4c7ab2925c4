package alloc

import (
	"unsafe"

	"github.com/nmxmxh/vmalloc/kernel/utils"
)

// Allocate returns a pointer to a fresh block of at least n payload bytes,
// or nil if the OS mapping primitive could not supply pages. A request of
// zero bytes is coerced to one, so the returned pointer is always
// distinct and always releasable.
func (p *Pool) Allocate(n int) unsafe.Pointer {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.allocateLocked(n)
}

func (p *Pool) allocateLocked(n int) unsafe.Pointer {
	aligned, class := classify(n)

	block, err := p.allocateInClass(class, aligned)
	if err != nil {
		oomTotal.Inc()
		poolLog.Warn("allocate failed", utils.Int("requested", n), utils.Err(err))
		return nil
	}

	allocationsTotal.Inc()
	bytesInUse.Add(float64(block.payloadBytes))
	return payloadPointer(block)
}

// Release returns a block to the pool. A nil pointer is a no-op. A
// pointer that does not resolve to any live region is silently ignored —
// this also absorbs the common double-free case where the first release
// already unmapped the owning region.
func (p *Pool) Release(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.releaseLocked(ptr)
}

func (p *Pool) releaseLocked(ptr unsafe.Pointer) {
	region := p.findRegion(ptr)
	if region == nil {
		return
	}

	block := blockFromPayload(ptr)
	if block.free {
		// Already free: the region is still mapped only because some
		// other block in it is live. Treat as a no-op rather than
		// double-counting bytesInUse or re-running coalesce.
		return
	}

	bytesInUse.Add(-float64(block.payloadBytes))
	block.free = true
	coalesce(region)
	p.recycle(region)
	releasesTotal.Inc()
}

// recycle returns a region to the OS once it can no longer hold a live
// block: a LARGE region unconditionally (it only ever has the one block,
// now free), a TINY/SMALL region once coalescing has collapsed it to a
// single free block spanning the whole payload area.
func (p *Pool) recycle(region *regionHeader) {
	if region.class != Large && !fullyFree(region) {
		return
	}

	p.unlink(region)
	if err := unmapRegion(region); err != nil {
		poolLog.Error("failed to unmap drained region", utils.Any("class", region.class), utils.Err(err))
		return
	}
	regionsMapped.Dec()
	poolLog.Info("region unmapped", utils.Any("class", region.class))
}

// Allocate allocates from the process-wide default pool.
func Allocate(n int) unsafe.Pointer { return defaultPool.Allocate(n) }

// Release releases to the process-wide default pool.
func Release(ptr unsafe.Pointer) { defaultPool.Release(ptr) }

// Resize resizes within the process-wide default pool.
func Resize(ptr unsafe.Pointer, n int) unsafe.Pointer { return defaultPool.Resize(ptr, n) }

// Shutdown tears down the process-wide default pool, unmapping every
// region still live. See Pool.Shutdown.
func Shutdown() error { return defaultPool.Shutdown() }
