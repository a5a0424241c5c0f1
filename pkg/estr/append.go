package estr

import "estr-go/pkg/buffers"

// Append adds b to the end of the string. Either all of b is appended or,
// when the storage cannot grow, nothing is and the error wraps ErrAllocation.
// Growth may move the storage.
func (s *Str) Append(b []byte) error {
	s.mustLive("Append")
	newLen := s.n + uint64(len(b))
	if newLen < s.n {
		return allocErr("estr: append", buffers.ErrOutOfMemory)
	}
	if capacity := uint64(len(s.buf)); newLen > capacity {
		if err := s.extend(newLen - capacity); err != nil {
			return err
		}
	}
	copy(s.buf[s.n:newLen], b)
	s.n = newLen
	return nil
}

// AppendString is Append for a Go string.
func (s *Str) AppendString(str string) error {
	s.mustLive("AppendString")
	newLen := s.n + uint64(len(str))
	if capacity := uint64(len(s.buf)); newLen > capacity {
		if err := s.extend(newLen - capacity); err != nil {
			return err
		}
	}
	copy(s.buf[s.n:newLen], str)
	s.n = newLen
	return nil
}

// AppendByte adds a single byte.
func (s *Str) AppendByte(c byte) error {
	s.mustLive("AppendByte")
	if s.n == uint64(len(s.buf)) {
		if err := s.extend(1); err != nil {
			return err
		}
	}
	s.buf[s.n] = c
	s.n++
	return nil
}

// AppendStr adds the content of other. other may be s itself.
func (s *Str) AppendStr(other *Str) error {
	other.mustLive("AppendStr")
	if other == s {
		return s.Append(s.Bytes())
	}
	return s.Append(other.buf[:other.n])
}

// Reset empties the string, keeping its storage and growth increment.
func (s *Str) Reset() {
	s.mustLive("Reset")
	s.n = 0
}

// Write implements io.Writer on top of Append.
func (s *Str) Write(p []byte) (int, error) {
	if err := s.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
