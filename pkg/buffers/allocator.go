// Package buffers provides the memory allocators backing estr strings.
// An Allocator hands out byte slices with allocate/reallocate/free
// semantics and reports exhaustion as ErrOutOfMemory instead of panicking.
package buffers

import (
	"errors"
	"sync/atomic"
)

// ErrOutOfMemory is the only failure an Allocator reports.
var ErrOutOfMemory = errors.New("buffers: out of memory")

// Allocator abstracts the storage behind a string value.
type Allocator interface {
	// Alloc returns a slice of exactly size bytes. Its content is unspecified.
	Alloc(size int) ([]byte, error)
	// Realloc returns a slice of exactly size bytes whose first
	// min(len(buf), size) bytes equal buf. On failure buf is untouched.
	// On success buf must not be used again.
	Realloc(buf []byte, size int) ([]byte, error)
	// Free releases buf. buf must not be used again.
	Free(buf []byte)
}

// Stats is a point-in-time snapshot of an allocator's counters.
type Stats struct {
	Allocs    uint64 `json:"allocs"`
	Reallocs  uint64 `json:"reallocs"`
	Frees     uint64 `json:"frees"`
	Failures  uint64 `json:"failures"`
	LiveBytes int64  `json:"live_bytes"`
}

// StatsProvider is implemented by allocators that keep counters.
type StatsProvider interface {
	Stats() Stats
}

// counters is shared by the allocators in this package.
type counters struct {
	allocs    atomic.Uint64
	reallocs  atomic.Uint64
	frees     atomic.Uint64
	failures  atomic.Uint64
	liveBytes atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Allocs:    c.allocs.Load(),
		Reallocs:  c.reallocs.Load(),
		Frees:     c.frees.Load(),
		Failures:  c.failures.Load(),
		LiveBytes: c.liveBytes.Load(),
	}
}

// HeapAllocator allocates straight from the Go heap.
// A positive Limit caps the number of live bytes it will hand out.
type HeapAllocator struct {
	Limit int64

	c counters
}

// NewHeapAllocator creates a heap allocator. limit <= 0 means unlimited.
func NewHeapAllocator(limit int64) *HeapAllocator {
	return &HeapAllocator{Limit: limit}
}

// reserve accounts delta live bytes, refusing growth past a positive limit.
func (c *counters) reserve(limit, delta int64) bool {
	for {
		live := c.liveBytes.Load()
		if limit > 0 && delta > 0 && live > limit-delta {
			return false
		}
		if c.liveBytes.CompareAndSwap(live, live+delta) {
			return true
		}
	}
}

func (h *HeapAllocator) fail() ([]byte, error) {
	h.c.failures.Add(1)
	observeFailure()
	return nil, ErrOutOfMemory
}

// Alloc implements Allocator.
func (h *HeapAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 || !h.c.reserve(h.Limit, int64(size)) {
		return h.fail()
	}
	h.c.allocs.Add(1)
	observeAlloc(size)
	return make([]byte, size), nil
}

// Realloc implements Allocator.
func (h *HeapAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	if size < 0 || !h.c.reserve(h.Limit, int64(size)-int64(len(buf))) {
		return h.fail()
	}
	h.c.reallocs.Add(1)
	observeRealloc(len(buf), size)
	if size <= cap(buf) {
		return buf[:size], nil
	}
	next := make([]byte, size)
	copy(next, buf)
	return next, nil
}

// Free implements Allocator.
func (h *HeapAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	h.c.frees.Add(1)
	h.c.liveBytes.Add(-int64(len(buf)))
	observeFree(len(buf))
}

// Stats implements StatsProvider.
func (h *HeapAllocator) Stats() Stats {
	return h.c.snapshot()
}

// Default is the allocator used when none is given.
var Default Allocator = NewHeapAllocator(0)
