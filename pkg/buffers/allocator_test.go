package buffers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHeapAllocatorAllocFree(t *testing.T) {
	h := NewHeapAllocator(0)

	buf, err := h.Alloc(24)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if len(buf) != 24 {
		t.Fatalf("Expected 24 bytes, got %d", len(buf))
	}
	if got := h.Stats().LiveBytes; got != 24 {
		t.Errorf("Expected 24 live bytes, got %d", got)
	}

	h.Free(buf)
	st := h.Stats()
	if st.LiveBytes != 0 {
		t.Errorf("Expected 0 live bytes after Free, got %d", st.LiveBytes)
	}
	if st.Allocs != 1 || st.Frees != 1 {
		t.Errorf("Unexpected counters: %+v", st)
	}
}

func TestHeapAllocatorReallocPreservesContent(t *testing.T) {
	h := NewHeapAllocator(0)
	buf, err := h.Alloc(4)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	copy(buf, "abcd")

	next, err := h.Realloc(buf, 64)
	if err != nil {
		t.Fatalf("Realloc failed: %v", err)
	}
	if len(next) != 64 {
		t.Fatalf("Expected 64 bytes, got %d", len(next))
	}
	if !bytes.Equal(next[:4], []byte("abcd")) {
		t.Errorf("Content lost across Realloc: %q", next[:4])
	}
	if got := h.Stats().LiveBytes; got != 64 {
		t.Errorf("Expected 64 live bytes, got %d", got)
	}
}

func TestHeapAllocatorLimit(t *testing.T) {
	h := NewHeapAllocator(32)
	before := testutil.ToFloat64(failuresTotal)

	buf, err := h.Alloc(16)
	if err != nil {
		t.Fatalf("Alloc within limit failed: %v", err)
	}
	if _, err := h.Alloc(17); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Expected ErrOutOfMemory, got %v", err)
	}

	copy(buf, "keep")
	if _, err := h.Realloc(buf, 33); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("Expected ErrOutOfMemory from Realloc, got %v", err)
	}
	if string(buf[:4]) != "keep" {
		t.Errorf("Failed Realloc modified the buffer: %q", buf[:4])
	}

	if _, err := h.Realloc(buf, 32); err != nil {
		t.Errorf("Realloc up to the limit failed: %v", err)
	}

	if got := h.Stats().Failures; got != 2 {
		t.Errorf("Expected 2 failures, got %d", got)
	}
	if delta := testutil.ToFloat64(failuresTotal) - before; delta != 2 {
		t.Errorf("Expected failures metric to grow by 2, got %v", delta)
	}
}

func TestHeapAllocatorNegativeSize(t *testing.T) {
	h := NewHeapAllocator(0)
	if _, err := h.Alloc(-1); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Expected ErrOutOfMemory for negative size, got %v", err)
	}
	if _, err := h.Realloc(nil, -1); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("Expected ErrOutOfMemory for negative Realloc, got %v", err)
	}
}

func TestFreeNil(t *testing.T) {
	h := NewHeapAllocator(0)
	h.Free(nil)
	if st := h.Stats(); st.Frees != 0 {
		t.Errorf("Free(nil) should be a no-op, got %+v", st)
	}
}
