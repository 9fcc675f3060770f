package main

// posStep is the gap between adjacent recomputed positions. Recomputing
// dense positions for the whole affected collection keeps the ordering
// invariant trivially true and avoids the no-room-between-neighbors
// failure mode of midpoint insertion.
const posStep = 1000

type idPosition struct {
	ID       string
	Position int64
}

// positionsForIDs assigns position (index+1)*posStep to each id in input
// order. Deterministic, total, no error cases.
func positionsForIDs(ids []string) []idPosition {
	out := make([]idPosition, len(ids))
	for i, id := range ids {
		out[i] = idPosition{ID: id, Position: int64(i+1) * posStep}
	}
	return out
}

// insertAt returns a new slice with item inserted at index. Out-of-range
// indices clamp to [0, len(s)] rather than error.
func insertAt[T any](s []T, index int, item T) []T {
	if index < 0 {
		index = 0
	}
	if index > len(s) {
		index = len(s)
	}
	next := make([]T, 0, len(s)+1)
	next = append(next, s[:index]...)
	next = append(next, item)
	next = append(next, s[index:]...)
	return next
}

// removeOne removes the first element matching the predicate and returns
// the remaining slice, the removed element and its index. A miss is
// signaled with index -1 and the zero value; callers must check.
func removeOne[T any](s []T, match func(T) bool) (next []T, removed T, index int) {
	for i, v := range s {
		if match(v) {
			next = make([]T, 0, len(s)-1)
			next = append(next, s[:i]...)
			next = append(next, s[i+1:]...)
			return next, v, i
		}
	}
	var zero T
	return s, zero, -1
}

// isPermutation reports whether b contains exactly the elements of a,
// order aside, counting duplicates.
func isPermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}
