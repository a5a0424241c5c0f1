package buffers

import (
	"math/bits"
	"sync"
)

const (
	// MinClassSize is the smallest pooled buffer capacity.
	MinClassSize = 16
	// MaxClassSize is the largest pooled buffer capacity. Bigger requests
	// are allocated directly and never pooled.
	MaxClassSize = 64 * 1024

	minClassShift = 4
	numClasses    = 13 // 16B .. 64KiB
)

// sizedPool holds buffers of one capacity.
type sizedPool struct {
	size int
	pool sync.Pool
}

func newSizedPool(size int) *sizedPool {
	sp := &sizedPool{size: size}
	sp.pool.New = func() interface{} {
		buf := make([]byte, size)
		return &buf
	}
	return sp
}

func (sp *sizedPool) get() []byte {
	return *(sp.pool.Get().(*[]byte))
}

func (sp *sizedPool) put(buf []byte) {
	buf = buf[:sp.size]
	sp.pool.Put(&buf)
}

// PoolAllocator recycles buffers through power-of-two size classes.
// The returned slices have the requested length and the class capacity,
// so a Realloc that stays inside the class does not move the data.
type PoolAllocator struct {
	Limit int64

	classes [numClasses]*sizedPool
	c       counters
}

// NewPoolAllocator creates a pooled allocator. limit <= 0 means unlimited.
func NewPoolAllocator(limit int64) *PoolAllocator {
	p := &PoolAllocator{Limit: limit}
	for i := range p.classes {
		p.classes[i] = newSizedPool(MinClassSize << i)
	}
	return p
}

// classFor returns the index of the smallest class holding size bytes,
// or -1 when size is above MaxClassSize.
func classFor(size int) int {
	if size > MaxClassSize {
		return -1
	}
	if size <= MinClassSize {
		return 0
	}
	return bits.Len(uint(size-1)) - minClassShift
}

// classOf returns the class a buffer of capacity c belongs to, or -1.
func classOf(c int) int {
	if c < MinClassSize || c > MaxClassSize || c&(c-1) != 0 {
		return -1
	}
	return bits.Len(uint(c)) - 1 - minClassShift
}

func (p *PoolAllocator) fail() ([]byte, error) {
	p.c.failures.Add(1)
	observeFailure()
	return nil, ErrOutOfMemory
}

func (p *PoolAllocator) get(size int) []byte {
	if i := classFor(size); i >= 0 {
		return p.classes[i].get()[:size]
	}
	return make([]byte, size)
}

func (p *PoolAllocator) put(buf []byte) {
	if i := classOf(cap(buf)); i >= 0 {
		p.classes[i].put(buf[:cap(buf)])
	}
}

// Alloc implements Allocator.
func (p *PoolAllocator) Alloc(size int) ([]byte, error) {
	if size < 0 || !p.c.reserve(p.Limit, int64(size)) {
		return p.fail()
	}
	p.c.allocs.Add(1)
	observeAlloc(size)
	return p.get(size), nil
}

// Realloc implements Allocator.
func (p *PoolAllocator) Realloc(buf []byte, size int) ([]byte, error) {
	if size < 0 || !p.c.reserve(p.Limit, int64(size)-int64(len(buf))) {
		return p.fail()
	}
	p.c.reallocs.Add(1)
	observeRealloc(len(buf), size)
	if size <= cap(buf) {
		return buf[:size], nil
	}
	next := p.get(size)
	copy(next, buf)
	p.put(buf)
	return next, nil
}

// Free implements Allocator.
func (p *PoolAllocator) Free(buf []byte) {
	if buf == nil {
		return
	}
	p.c.frees.Add(1)
	p.c.liveBytes.Add(-int64(len(buf)))
	observeFree(len(buf))
	p.put(buf)
}

// Stats implements StatsProvider.
func (p *PoolAllocator) Stats() Stats {
	return p.c.snapshot()
}
