package estr

import "bytes"

// escapeBytes trims nulEsc at its own terminator, if it has one.
func escapeBytes(nulEsc []byte) []byte {
	if i := bytes.IndexByte(nulEsc, 0); i >= 0 {
		return nulEsc[:i]
	}
	return nulEsc
}

// CStringSize returns the number of bytes ToCString produces for content
// holding nbrNUL zero bytes when each is replaced by lenEsc bytes,
// terminator included.
func CStringSize(length, nbrNUL, lenEsc int) int {
	return length + nbrNUL*(lenEsc-1) + 1
}

// ToCString returns a newly allocated NUL-terminated copy of the content.
// Every embedded zero byte is replaced by nulEsc; a nil or empty nulEsc
// drops them. nulEsc ends at its first zero byte, if any.
//
// The result is allocated from the string's allocator and is independent
// of s. It may be handed back with s.Allocator().Free once no longer used.
func (s *Str) ToCString(nulEsc []byte) ([]byte, error) {
	s.mustLive("ToCString")
	c := s.buf[:s.n]
	nbrNUL := s.CountByte(0)

	if nbrNUL == 0 {
		cstr, err := s.alloc.Alloc(len(c) + 1)
		if err != nil {
			return nil, allocErr("estr: to cstring", err)
		}
		copy(cstr, c)
		cstr[len(c)] = 0
		return cstr, nil
	}

	esc := escapeBytes(nulEsc)
	lenEsc := len(esc)
	cstr, err := s.alloc.Alloc(CStringSize(len(c), nbrNUL, lenEsc))
	if err != nil {
		return nil, allocErr("estr: to cstring", err)
	}

	iDst := 0
	for _, ch := range c {
		if ch != 0 {
			cstr[iDst] = ch
			iDst++
			continue
		}
		if lenEsc == 1 {
			cstr[iDst] = esc[0]
			iDst++
		} else {
			iDst += copy(cstr[iDst:], esc)
		}
	}
	cstr[iDst] = 0
	return cstr, nil
}
