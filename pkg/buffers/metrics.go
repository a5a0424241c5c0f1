package buffers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds the allocator metrics. It is separate from the default
// prometheus registry so that embedding programs opt in explicitly.
var Registry = prometheus.NewRegistry()

var (
	allocsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "allocs_total",
			Help:      "Total number of successful Alloc calls",
		},
	)

	reallocsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "reallocs_total",
			Help:      "Total number of successful Realloc calls",
		},
	)

	freesTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "frees_total",
			Help:      "Total number of Free calls",
		},
	)

	failuresTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "failures_total",
			Help:      "Total number of allocation requests refused",
		},
	)

	liveBytes = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "live_bytes",
			Help:      "Bytes currently handed out across all allocators",
		},
	)

	requestSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "estr",
			Subsystem: "allocator",
			Name:      "request_bytes",
			Help:      "Size of Alloc and Realloc requests",
			Buckets:   prometheus.ExponentialBuckets(MinClassSize, 4, 8),
		},
	)
)

func observeAlloc(size int) {
	allocsTotal.Inc()
	liveBytes.Add(float64(size))
	requestSize.Observe(float64(size))
}

func observeRealloc(from, to int) {
	reallocsTotal.Inc()
	liveBytes.Add(float64(to - from))
	requestSize.Observe(float64(to))
}

func observeFree(size int) {
	freesTotal.Inc()
	liveBytes.Sub(float64(size))
}

func observeFailure() {
	failuresTotal.Inc()
}
