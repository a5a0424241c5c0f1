// Package estr implements a counted, binary-safe growable byte string.
//
// A Str keeps its length separately from its storage, so zero bytes are
// ordinary content. Storage comes from a buffers.Allocator and grows by an
// increment that doubles on every growth event up to MaxGrowthIncrement.
// A Str is not safe for concurrent use.
package estr

import (
	"bytes"
	"errors"
	"fmt"

	"estr-go/pkg/buffers"
)

const (
	// MaxGrowthIncrement caps the growth increment.
	MaxGrowthIncrement = 65535
	// MinGrowthIncrement is the increment given to strings created with a
	// small capacity hint.
	MinGrowthIncrement = 16
)

// ErrAllocation reports that storage could not be obtained. It is the only
// error the operations of this package return.
var ErrAllocation = errors.New("estr: allocation failure")

// Str is a dynamic byte string.
type Str struct {
	buf   []byte // len(buf) is the capacity
	n     uint64
	inc   uint64
	alloc buffers.Allocator
	freed bool
}

// roundUp8 rounds n up to the next multiple of 8.
func roundUp8(n uint64) uint64 {
	if n&0x07 != 0 {
		n = n - n&0x07 + 8
	}
	return n
}

func clampIncrement(n uint64) uint64 {
	switch {
	case n < MinGrowthIncrement:
		return MinGrowthIncrement
	case n > MaxGrowthIncrement:
		return MaxGrowthIncrement
	}
	return n
}

func allocErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrAllocation, err)
}

// New creates an empty string with room for at least lenHint bytes, using
// buffers.Default.
func New(lenHint uint64) (*Str, error) {
	return NewWithAllocator(buffers.Default, lenHint)
}

// NewWithAllocator is New with an explicit allocator.
func NewWithAllocator(a buffers.Allocator, lenHint uint64) (*Str, error) {
	if a == nil {
		a = buffers.Default
	}
	size := roundUp8(lenHint)
	if size < lenHint || size > maxInt {
		return nil, allocErr("estr: new", buffers.ErrOutOfMemory)
	}
	buf, err := a.Alloc(int(size))
	if err != nil {
		return nil, allocErr("estr: new", err)
	}
	return &Str{
		buf:   buf,
		inc:   clampIncrement(size),
		alloc: a,
	}, nil
}

// NewFromCString copies a NUL-terminated string of known length n.
// cstr[:n] must not contain a zero byte, and cstr must either end at n or
// carry its terminator at cstr[n]; anything else panics.
func NewFromCString(cstr []byte, n int) (*Str, error) {
	if n < 0 || n > len(cstr) {
		panic(fmt.Sprintf("estr: NewFromCString: length %d out of range for %d bytes", n, len(cstr)))
	}
	if n < len(cstr) && cstr[n] != 0 {
		panic(fmt.Sprintf("estr: NewFromCString: byte %d is not a terminator", n))
	}
	for i := 0; i < n; i++ {
		if cstr[i] == 0 {
			panic(fmt.Sprintf("estr: NewFromCString: terminator at %d before length %d", i, n))
		}
	}
	return NewFromBytes(cstr[:n])
}

// NewFromBytes copies b, which may contain zero bytes, into a new string.
func NewFromBytes(b []byte) (*Str, error) {
	return NewFromBytesWithAllocator(buffers.Default, b)
}

// NewFromBytesWithAllocator is NewFromBytes with an explicit allocator.
func NewFromBytesWithAllocator(a buffers.Allocator, b []byte) (*Str, error) {
	s, err := NewWithAllocator(a, uint64(len(b)))
	if err != nil {
		return nil, err
	}
	copy(s.buf, b)
	s.n = uint64(len(b))
	return s, nil
}

// Destroy releases the storage. The string must not be used afterwards;
// doing so panics.
func (s *Str) Destroy() {
	s.mustLive("Destroy")
	s.alloc.Free(s.buf)
	s.buf = nil
	s.n = 0
	s.freed = true
}

func (s *Str) mustLive(op string) {
	if s == nil {
		panic("estr: " + op + " on nil string")
	}
	if s.freed {
		panic("estr: " + op + " on destroyed string")
	}
}

// Len returns the number of content bytes.
func (s *Str) Len() uint64 {
	s.mustLive("Len")
	return s.n
}

// Cap returns the number of bytes the storage can hold.
func (s *Str) Cap() uint64 {
	s.mustLive("Cap")
	return uint64(len(s.buf))
}

// GrowthIncrement returns the step used by the next small growth.
func (s *Str) GrowthIncrement() uint64 {
	s.mustLive("GrowthIncrement")
	return s.inc
}

// Allocator returns the allocator that owns the storage.
func (s *Str) Allocator() buffers.Allocator {
	s.mustLive("Allocator")
	return s.alloc
}

// CountByte returns how many content bytes equal c.
func (s *Str) CountByte(c byte) int {
	s.mustLive("CountByte")
	return bytes.Count(s.buf[:s.n], []byte{c})
}

// Bytes returns a copy of the content.
func (s *Str) Bytes() []byte {
	s.mustLive("Bytes")
	out := make([]byte, s.n)
	copy(out, s.buf[:s.n])
	return out
}

// String returns the content as a Go string, zero bytes included.
func (s *Str) String() string {
	s.mustLive("String")
	return string(s.buf[:s.n])
}
