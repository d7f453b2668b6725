package expr

import (
	"math/bits"

	"github.com/quiverdb/quiver/internal/types"
)

// Number constrains the columns that take the vectorized scan path.
type Number interface {
	~int64 | ~float64
}

const laneWidth = 8

// CollectIndexes returns the positions in vec whose value satisfies pred.
// The body mirrors a SIMD compare-and-compress-store: each 8-wide chunk is
// compared into a bitmask, then the set bit positions are appended. A
// platform with real vector support can swap the chunk body without changing
// observable behavior; the scalar tail handles the remainder.
func CollectIndexes[T Number](vec []T, pred func(T) bool) []uint64 {
	out := make([]uint64, 0, len(vec)/4+1)
	i := 0
	for ; i+laneWidth <= len(vec); i += laneWidth {
		var mask uint8
		if pred(vec[i]) {
			mask |= 1 << 0
		}
		if pred(vec[i+1]) {
			mask |= 1 << 1
		}
		if pred(vec[i+2]) {
			mask |= 1 << 2
		}
		if pred(vec[i+3]) {
			mask |= 1 << 3
		}
		if pred(vec[i+4]) {
			mask |= 1 << 4
		}
		if pred(vec[i+5]) {
			mask |= 1 << 5
		}
		if pred(vec[i+6]) {
			mask |= 1 << 6
		}
		if pred(vec[i+7]) {
			mask |= 1 << 7
		}
		for mask != 0 {
			out = append(out, uint64(i+bits.TrailingZeros8(mask)))
			mask &= mask - 1
		}
	}
	for ; i < len(vec); i++ {
		if pred(vec[i]) {
			out = append(out, uint64(i))
		}
	}
	return out
}

// Predicate builds the comparison closure CollectIndexes runs for a numeric
// column scan. Unknown and non-ordered operations yield nil, meaning the
// scan matches nothing.
func Predicate[T Number](op types.Operation, value T) func(T) bool {
	switch op {
	case types.EQ:
		return func(x T) bool { return x == value }
	case types.NEQ:
		return func(x T) bool { return x != value }
	case types.GT:
		return func(x T) bool { return x > value }
	case types.GTE:
		return func(x T) bool { return x >= value }
	case types.LT:
		return func(x T) bool { return x < value }
	case types.LTE:
		return func(x T) bool { return x <= value }
	default:
		return nil
	}
}
