package fn

import "testing"

func TestSign(t *testing.T) {
	for in, want := range map[int]int{-254: -1, -1: -1, 0: 0, 1: 1, 200: 1} {
		if got := Sign(in); got != want {
			t.Errorf("Sign(%d) = %d, want %d", in, got, want)
		}
	}
	if T(false, "a", "b") != "b" {
		t.Errorf("T(false) should pick the second value")
	}
}
