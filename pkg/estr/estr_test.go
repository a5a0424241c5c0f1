package estr

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"estr-go/pkg/buffers"
)

func mustNew(t *testing.T, b []byte) *Str {
	t.Helper()
	s, err := NewFromBytes(b)
	if err != nil {
		t.Fatalf("NewFromBytes failed: %v", err)
	}
	return s
}

func expectPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Expected panic containing %q", want)
		}
		if msg, _ := r.(string); !strings.Contains(msg, want) {
			t.Errorf("Panic %v does not mention %q", r, want)
		}
	}()
	fn()
}

func TestNewRoundsHint(t *testing.T) {
	tests := []struct {
		hint    uint64
		wantCap uint64
		wantInc uint64
	}{
		{0, 0, MinGrowthIncrement},
		{1, 8, MinGrowthIncrement},
		{8, 8, MinGrowthIncrement},
		{9, 16, 16},
		{17, 24, 24},
		{100000, 100000, MaxGrowthIncrement},
	}
	for _, tt := range tests {
		s, err := New(tt.hint)
		if err != nil {
			t.Fatalf("New(%d) failed: %v", tt.hint, err)
		}
		if s.Len() != 0 {
			t.Errorf("New(%d): expected length 0, got %d", tt.hint, s.Len())
		}
		if s.Cap() != tt.wantCap {
			t.Errorf("New(%d): expected capacity %d, got %d", tt.hint, tt.wantCap, s.Cap())
		}
		if s.GrowthIncrement() != tt.wantInc {
			t.Errorf("New(%d): expected increment %d, got %d", tt.hint, tt.wantInc, s.GrowthIncrement())
		}
		s.Destroy()
	}
}

func TestNewHintOverflow(t *testing.T) {
	if _, err := New(^uint64(0)); !errors.Is(err, ErrAllocation) {
		t.Errorf("Expected ErrAllocation for an impossible hint, got %v", err)
	}
}

func TestNewFromCString(t *testing.T) {
	s, err := NewFromCString([]byte("hello\x00"), 5)
	if err != nil {
		t.Fatalf("NewFromCString failed: %v", err)
	}
	if s.String() != "hello" {
		t.Errorf("Expected %q, got %q", "hello", s.String())
	}
	if s.Cap() != 8 {
		t.Errorf("Expected capacity 8, got %d", s.Cap())
	}

	// A slice that simply ends at n is accepted too.
	s, err = NewFromCString([]byte("abc"), 3)
	if err != nil {
		t.Fatalf("NewFromCString failed: %v", err)
	}
	if s.String() != "abc" {
		t.Errorf("Expected %q, got %q", "abc", s.String())
	}
}

func TestNewFromCStringContract(t *testing.T) {
	expectPanic(t, "not a terminator", func() { NewFromCString([]byte("hello\x00"), 3) })
	expectPanic(t, "terminator at 1", func() { NewFromCString([]byte("a\x00b\x00"), 3) })
	expectPanic(t, "out of range", func() { NewFromCString([]byte("ab"), 5) })
}

func TestNewFromBytesKeepsZeros(t *testing.T) {
	in := []byte{0, 'a', 0, 0, 'b'}
	s := mustNew(t, in)
	if s.Len() != 5 {
		t.Fatalf("Expected length 5, got %d", s.Len())
	}
	if !bytes.Equal(s.Bytes(), in) {
		t.Errorf("Expected %v, got %v", in, s.Bytes())
	}
}

func TestBytesIsACopy(t *testing.T) {
	s := mustNew(t, []byte("abc"))
	b := s.Bytes()
	b[0] = 'X'
	if s.String() != "abc" {
		t.Errorf("Modifying Bytes() changed the string: %q", s.String())
	}
}

func TestDestroy(t *testing.T) {
	h := buffers.NewHeapAllocator(0)
	s, err := NewWithAllocator(h, 32)
	if err != nil {
		t.Fatalf("NewWithAllocator failed: %v", err)
	}
	if s.Allocator() != h {
		t.Errorf("Allocator() does not return the constructing allocator")
	}
	s.Destroy()
	if got := h.Stats().LiveBytes; got != 0 {
		t.Errorf("Expected storage released, %d live bytes remain", got)
	}

	expectPanic(t, "Append on destroyed string", func() { s.Append([]byte("x")) })
	expectPanic(t, "Len on destroyed string", func() { s.Len() })
	expectPanic(t, "ToCString on destroyed string", func() { s.ToCString(nil) })
	expectPanic(t, "Destroy on destroyed string", func() { s.Destroy() })

	other := mustNew(t, nil)
	expectPanic(t, "Compare on destroyed string", func() { Compare(other, s) })
}

func TestNilString(t *testing.T) {
	var s *Str
	expectPanic(t, "Len on nil string", func() { s.Len() })
}

func TestCountByte(t *testing.T) {
	s := mustNew(t, []byte{0, 'a', 0, 'a', 'a'})
	if got := s.CountByte(0); got != 2 {
		t.Errorf("CountByte(0) = %d, want 2", got)
	}
	if got := s.CountByte('a'); got != 3 {
		t.Errorf("CountByte('a') = %d, want 3", got)
	}
}
