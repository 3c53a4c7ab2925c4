package alloc

// BlockSnapshot describes one used block, informationally — addresses are
// plain integers here so consumers outside this package (the diagnostics
// reader) never need to import "unsafe" just to read a dump.
type BlockSnapshot struct {
	Payload uintptr
	Length  int
}

// RegionSnapshot describes one live region and its used blocks.
type RegionSnapshot struct {
	Class Class
	Base  uintptr
	End   uintptr
	Used  []BlockSnapshot
}

// Snapshot takes a consistent, point-in-time view of every live region
// and its used blocks, under the pool lock. It performs no mutation; it
// is the sole contract the diagnostics reader relies on.
func (p *Pool) Snapshot() []RegionSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []RegionSnapshot
	for r := p.head; r != nil; r = r.next {
		rs := RegionSnapshot{
			Class: r.class,
			Base:  regionBase(r),
			End:   regionEnd(r),
		}
		for b := r.first; b != nil; b = b.next {
			if b.free {
				continue
			}
			rs.Used = append(rs.Used, BlockSnapshot{
				Payload: uintptr(payloadPointer(b)),
				Length:  int(b.payloadBytes),
			})
		}
		out = append(out, rs)
	}
	return out
}
