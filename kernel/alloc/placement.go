package alloc

import (
	"unsafe"

	"github.com/nmxmxh/vmalloc/kernel/utils"
)

// firstFit scans the pool in list order and, within each class-matching
// region, scans its block chain in address order, returning the first
// free block large enough for aligned bytes. No best-fit, no rotation of
// the search cursor — ties go to whichever region/block comes first.
func (p *Pool) firstFit(class Class, aligned int) *blockHeader {
	for r := p.head; r != nil; r = r.next {
		if r.class != class {
			continue
		}
		for b := r.first; b != nil; b = b.next {
			if b.free && int(b.payloadBytes) >= aligned {
				return b
			}
		}
	}
	return nil
}

// split carves a used block of exactly aligned bytes out of a free block,
// handing the remainder back as a new free block spliced into the chain.
// It only splits when the remainder can hold a useful tail (another
// header plus at least minSplitTail bytes of payload); otherwise the
// whole block is handed out and the excess is accepted as fragmentation.
func split(b *blockHeader, aligned int) {
	remainder := int(b.payloadBytes) - aligned
	if remainder < int(blockHeaderSize)+minSplitTail {
		b.free = false
		return
	}

	tail := (*blockHeader)(unsafe.Add(unsafe.Pointer(b), int(blockHeaderSize)+aligned))
	tail.payloadBytes = uintptr(remainder - int(blockHeaderSize))
	tail.free = true
	tail.prev = b
	tail.next = b.next
	if b.next != nil {
		b.next.prev = tail
	}

	b.next = tail
	b.payloadBytes = uintptr(aligned)
	b.free = false
}

// allocateInClass finds or creates a region of the given class and
// returns a used block of at least aligned payload bytes (exactly aligned
// unless the leftover was too small to split off). Caller must hold p.mu.
func (p *Pool) allocateInClass(class Class, aligned int) (*blockHeader, error) {
	if class != Large {
		if b := p.firstFit(class, aligned); b != nil {
			split(b, aligned)
			return b, nil
		}
	}

	region, err := newRegion(class, aligned)
	if err != nil {
		return nil, err
	}
	p.prepend(region)
	regionsMapped.Inc()
	poolLog.Info("region mapped", utils.Any("class", class), utils.Int("totalBytes", int(region.totalBytes)))

	block := region.first
	if class != Large {
		// A brand new region's sole block spans the whole payload area
		// and starts free; split it down to the request like any other
		// candidate block.
		split(block, aligned)
	}
	return block, nil
}
