package alloc

import (
	"sync"
	"unsafe"

	"go.uber.org/multierr"

	"github.com/nmxmxh/vmalloc/kernel/utils"
)

var poolLog = utils.DefaultLogger("alloc")

// Pool is the heap-wide state: an unordered singly-linked list of live
// regions plus the one mutex that guards all access to it and,
// transitively, to every region and block inside it.
type Pool struct {
	mu   sync.Mutex
	head *regionHeader
}

// NewPool creates an empty, independent heap. Production code normally
// never needs this — use the package-level Allocate/Release/Resize, which
// share one process-wide default Pool — but tests want isolated heaps so
// one test's regions can't leak into another's invariant checks.
func NewPool() *Pool {
	return &Pool{}
}

// defaultPool is the process-wide shared heap, lazily nothing-but-static:
// a zero-value Pool is already fully usable, so there is no init routine
// and no teardown during normal operation (Shutdown exists, but nothing
// calls it automatically).
var defaultPool = NewPool()

// Default returns the process-wide shared heap that the package-level
// Allocate/Release/Resize functions operate on.
func Default() *Pool {
	return defaultPool
}

// prepend adds a freshly constructed region to the front of the pool's
// region list. Caller must hold p.mu. List order carries no meaning.
func (p *Pool) prepend(r *regionHeader) {
	r.next = p.head
	p.head = r
}

// unlink removes a region from the pool's region list. Caller must hold
// p.mu and r must actually be a member of this pool.
func (p *Pool) unlink(r *regionHeader) {
	if p.head == r {
		p.head = r.next
		return
	}
	for cur := p.head; cur != nil; cur = cur.next {
		if cur.next == r {
			cur.next = r.next
			return
		}
	}
}

// findRegion is the reverse-pointer lookup: given any address, return the
// region that contains it. The lower bound is strict — an address equal
// to the region base is the header itself, never a user payload. Caller
// must hold p.mu.
func (p *Pool) findRegion(addr unsafe.Pointer) *regionHeader {
	a := uintptr(addr)
	for r := p.head; r != nil; r = r.next {
		base := regionBase(r)
		if a > base && a < regionEnd(r) {
			return r
		}
	}
	return nil
}

// Shutdown unmaps every remaining region in the pool regardless of class
// and empties it. This is not part of the allocator's core contract —
// spec.md's design has no teardown operation, by design, since the heap
// is meant to live for the whole process — but an embedder that wants to
// hand every mapped page back to the OS before exiting (or a test that
// wants a clean slate) needs some way to do it. Every unmap failure is
// reported, not just the first.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs error
	for r := p.head; r != nil; {
		next := r.next
		if err := unmapRegion(r); err != nil {
			errs = multierr.Append(errs, err)
		} else {
			regionsMapped.Add(-1)
		}
		r = next
	}
	p.head = nil
	return errs
}
