package expr

import "sort"

// LeapfrogJoin intersects k ascending uint64 sequences in one pass. Inputs
// must be sorted and duplicate-free; the result is sorted. The cursors visit
// the lists round-robin, and a lagging cursor leaps to the current maximum
// with an exponential probe followed by a bounded binary search, so a seek
// costs O(1 + log(N_max/N_min)) amortized.
func LeapfrogJoin(indexes [][]uint64) []uint64 {
	var result []uint64
	for _, index := range indexes {
		if len(index) == 0 {
			return result
		}
	}

	sort.Slice(indexes, func(i, j int) bool {
		return indexes[i][0] < indexes[j][0]
	})

	cursors := make([]int, len(indexes))
	max := indexes[len(indexes)-1][0]
	at := 0

	for {
		index := indexes[at]
		value := index[cursors[at]]
		if value == max {
			result = append(result, value)
			cursors[at]++
		} else {
			cursors[at] = leapfrogSeek(index, cursors[at], max)
		}
		if cursors[at] >= len(index) {
			return result
		}
		max = index[cursors[at]]
		at = (at + 1) % len(indexes)
	}
}

// leapfrogSeek returns the first position at or after from whose value is
// >= target. Exponential probe to bracket the target, then binary search
// within the bracket.
func leapfrogSeek(index []uint64, from int, target uint64) int {
	bound := 1
	for from+bound < len(index) && index[from+bound] < target {
		bound *= 2
	}
	lo := from + bound/2
	hi := from + bound
	if hi > len(index) {
		hi = len(index)
	}
	return lo + sort.Search(hi-lo, func(i int) bool {
		return index[lo+i] >= target
	})
}
