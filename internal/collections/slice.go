// Package collections provides generic collection utilities.
package collections

// Concat joins multiple slices of the same type into one, preserving the
// order of the inputs and of the elements within each input.
func Concat[T any](slices ...[]T) []T {
	total := 0
	for _, s := range slices {
		total += len(s)
	}

	out := make([]T, 0, total)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}

// Insert returns a copy of s with v inserted at position i. The position
// must be within [0, len(s)].
func Insert[T any](s []T, i int, v T) []T {
	out := make([]T, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, v)
	return append(out, s[i:]...)
}
