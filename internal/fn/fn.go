// Package fn holds small generic helpers.
package fn

// T is short for ternary.
func T[V any](condition bool, trueVal, falseVal V) V {
	if condition {
		return trueVal
	}
	return falseVal
}

// Sign folds a three-way comparison result to -1, 0 or 1.
func Sign(n int) int {
	if n == 0 {
		return 0
	}
	return T(n < 0, -1, 1)
}
