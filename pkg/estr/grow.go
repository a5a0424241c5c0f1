package estr

import (
	"math"

	"estr-go/pkg/buffers"
	"estr-go/pkg/log"
)

const maxInt = uint64(math.MaxInt)

// saturatingDouble returns min(2*g, MaxGrowthIncrement) without overflowing.
func saturatingDouble(g uint64) uint64 {
	if g > MaxGrowthIncrement/2 {
		return MaxGrowthIncrement
	}
	return 2 * g
}

// nextCapacity computes the capacity after a growth event that must make
// room for need more bytes, and the increment to use afterwards.
// Requests larger than the increment get exactly what they asked for; small
// ones add the current capacity plus one increment.
func nextCapacity(capacity, inc, need uint64) (newCap, newInc uint64, ok bool) {
	var added uint64
	if need > inc {
		added = need
	} else {
		added = capacity + inc
	}
	newCap = capacity + added
	if newCap < capacity || newCap > maxInt {
		return 0, inc, false
	}
	return newCap, saturatingDouble(inc), true
}

// extend grows the storage by at least need bytes. On failure the string
// is left as it was.
func (s *Str) extend(need uint64) error {
	capacity := uint64(len(s.buf))
	newCap, newInc, ok := nextCapacity(capacity, s.inc, need)
	if !ok {
		log.Warn().Uint64("capacity", capacity).Uint64("need", need).Msg("estr: capacity overflow")
		return allocErr("estr: extend", buffers.ErrOutOfMemory)
	}

	buf, err := s.alloc.Realloc(s.buf, int(newCap))
	if err != nil {
		log.Warn().Err(err).Uint64("capacity", capacity).Uint64("requested", newCap).Msg("estr: growth failed")
		return allocErr("estr: extend", err)
	}
	log.Debug().Uint64("from", capacity).Uint64("to", newCap).Uint64("increment", newInc).Msg("estr: grown")

	s.buf = buf
	s.inc = newInc
	return nil
}
