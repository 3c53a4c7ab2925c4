package alloc

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are package-level, matching the pattern used for block
// allocator instrumentation elsewhere in the ecosystem (counters created
// once at package init, registered from init() through a sync.Once, incremented at
// the same call sites that already hold the pool mutex so no extra
// synchronization is introduced).
var (
	allocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vmalloc",
		Name:      "allocations_total",
		Help:      "Total number of successful Allocate calls.",
	})
	releasesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vmalloc",
		Name:      "releases_total",
		Help:      "Total number of Release calls that freed a live block.",
	})
	oomTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vmalloc",
		Name:      "oom_total",
		Help:      "Total number of Allocate/Resize calls that failed because the OS mapping primitive declined to hand back pages.",
	})
	regionsMapped = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vmalloc",
		Name:      "regions_mapped",
		Help:      "Number of regions currently mapped across all pools.",
	})
	bytesInUse = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "vmalloc",
		Name:      "bytes_in_use",
		Help:      "Sum of payload_bytes across all currently-used blocks.",
	})
)

var registerMetricsOnce sync.Once

// registerMetrics registers the package's collectors with the default
// Prometheus registry. It is safe to call repeatedly and from multiple
// pools — the collectors themselves are package-level singletons.
func registerMetrics() {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(allocationsTotal)
		prometheus.MustRegister(releasesTotal)
		prometheus.MustRegister(oomTotal)
		prometheus.MustRegister(regionsMapped)
		prometheus.MustRegister(bytesInUse)
	})
}

func init() {
	registerMetrics()
}
