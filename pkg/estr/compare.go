package estr

// Compare orders strings by length first and only then by content: a
// shorter string is always less than a longer one, whatever its bytes.
// For equal lengths the result is the difference of the first pair of
// differing bytes, compared unsigned, or 0 when the strings are equal.
func Compare(a, b *Str) int {
	a.mustLive("Compare")
	b.mustLive("Compare")
	switch {
	case a.n < b.n:
		return -1
	case a.n > b.n:
		return 1
	}
	c1, c2 := a.buf[:a.n], b.buf[:b.n]
	for i := range c1 {
		if c1[i] != c2[i] {
			return int(c1[i]) - int(c2[i])
		}
	}
	return 0
}

// Equal reports whether a and b hold the same bytes.
func Equal(a, b *Str) bool {
	return Compare(a, b) == 0
}
