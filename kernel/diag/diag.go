// Package diag is the allocator's pure reader: it consumes a consistent
// snapshot of the pool's state and turns it into the textual and
// machine-readable dumps described by the allocator's diagnostics
// contract. It never reaches into pool internals directly — everything
// here is built on kernel/alloc.Pool.Snapshot, so this package cannot
// mutate allocator state even by accident.
package diag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pbnjay/memory"

	"github.com/nmxmxh/vmalloc/kernel/alloc"
)

// RegionReport is one region's contribution to a Report, in address-sorted
// order within its class.
type RegionReport struct {
	Class     alloc.Class       `json:"class"`
	Base      uintptr           `json:"base"`
	End       uintptr           `json:"end"`
	Used      []alloc.BlockSnapshot `json:"used"`
	UsedBytes int               `json:"usedBytes"`
}

// ClassReport groups every live region of one class together with the
// class's running byte total.
type ClassReport struct {
	Class   alloc.Class    `json:"class"`
	Regions []RegionReport `json:"regions"`
	Total   int            `json:"total"`
}

// Report is the machine-readable form of a dump: one entry per class that
// currently has at least one live region, plus the grand total across all
// classes and the host's total installed memory for scale.
type Report struct {
	Classes          []ClassReport `json:"classes"`
	GrandTotal       int           `json:"grandTotal"`
	SystemMemoryByte uint64        `json:"systemMemoryBytes"`
}

// Snapshot takes a point-in-time Report of the given pool. It acquires the
// pool's lock for exactly the duration of alloc.(*Pool).Snapshot and does
// no further synchronization of its own.
func Snapshot(p *alloc.Pool) Report {
	regions := p.Snapshot()

	byClass := map[alloc.Class][]RegionReport{}
	for _, r := range regions {
		used := 0
		for _, b := range r.Used {
			used += b.Length
		}
		byClass[r.Class] = append(byClass[r.Class], RegionReport{
			Class:     r.Class,
			Base:      r.Base,
			End:       r.End,
			Used:      r.Used,
			UsedBytes: used,
		})
	}

	var report Report
	for _, class := range []alloc.Class{alloc.Tiny, alloc.Small, alloc.Large} {
		rrs, ok := byClass[class]
		if !ok {
			continue
		}
		sort.Slice(rrs, func(i, j int) bool { return rrs[i].Base < rrs[j].Base })

		total := 0
		for _, rr := range rrs {
			total += rr.UsedBytes
		}
		report.Classes = append(report.Classes, ClassReport{
			Class:   class,
			Regions: rrs,
			Total:   total,
		})
		report.GrandTotal += total
	}

	report.SystemMemoryByte = memory.TotalMemory()
	return report
}

// Dump renders a Report as the textual form described by the allocator's
// diagnostics contract: per class, each region's used blocks as
// "<start> - <end> : <N> bytes", a per-class "Total : <N> bytes" line,
// a grand total, and a trailing system-memory line for scale.
func Dump(p *alloc.Pool) string {
	return FormatReport(Snapshot(p))
}

// FormatReport renders an already-taken Report. Split out from Dump so
// callers that already hold a Report (e.g. the HTTP JSON endpoint, which
// wants the same data both ways) don't pay for a second snapshot.
func FormatReport(report Report) string {
	var b strings.Builder

	for _, cr := range report.Classes {
		fmt.Fprintf(&b, "%s:\n", cr.Class)
		for _, rr := range cr.Regions {
			for _, block := range rr.Used {
				start := block.Payload
				end := start + uintptr(block.Length)
				fmt.Fprintf(&b, "  %#x - %#x : %d bytes\n", start, end, block.Length)
			}
		}
		fmt.Fprintf(&b, "  Total : %d bytes\n", cr.Total)
	}
	fmt.Fprintf(&b, "Grand total : %d bytes\n", report.GrandTotal)
	fmt.Fprintf(&b, "System memory: %d/%d bytes\n", report.GrandTotal, report.SystemMemoryByte)

	return b.String()
}
