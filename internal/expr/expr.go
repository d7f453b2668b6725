// Package expr is the typed comparison kernel behind find and filter. It
// evaluates a single operation against scalar, string, and list operands;
// null checks never reach it — they are answered from the tombstone bitmaps
// by the callers.
package expr

import (
	"cmp"
	"strings"

	"github.com/quiverdb/quiver/internal/types"
)

// Evaluate applies op to a totally ordered scalar pair. Operations outside
// the ordered set return false.
func Evaluate[T cmp.Ordered](op types.Operation, a, b T) bool {
	switch op {
	case types.EQ:
		return a == b
	case types.NEQ:
		return a != b
	case types.GT:
		return a > b
	case types.GTE:
		return a >= b
	case types.LT:
		return a < b
	case types.LTE:
		return a <= b
	default:
		return false
	}
}

// EvaluateBool orders booleans with false < true, so GT(a,b) is a AND NOT b.
func EvaluateBool(op types.Operation, a, b bool) bool {
	switch op {
	case types.EQ:
		return a == b
	case types.NEQ:
		return a != b
	case types.GT:
		return a && !b
	case types.GTE:
		return a || !b
	case types.LT:
		return !a && b
	case types.LTE:
		return !a || b
	default:
		return false
	}
}

// EvaluateString adds the substring family to the ordered operations.
// Ordering is lexicographic byte order.
func EvaluateString(op types.Operation, a, b string) bool {
	switch op {
	case types.StartsWith:
		return strings.HasPrefix(a, b)
	case types.Contains:
		return strings.Contains(a, b)
	case types.EndsWith:
		return strings.HasSuffix(a, b)
	case types.NotStartsWith:
		return !strings.HasPrefix(a, b)
	case types.NotContains:
		return !strings.Contains(a, b)
	case types.NotEndsWith:
		return !strings.HasSuffix(a, b)
	default:
		return Evaluate(op, a, b)
	}
}

// EvaluateSlice compares two lists. EQ and NEQ are elementwise; GT, GTE, LT
// and LTE compare lengths; STARTS_WITH and ENDS_WITH are prefix and suffix matches on the outer list;
// CONTAINS is multiset inclusion of b in a.
func EvaluateSlice[T comparable](op types.Operation, a, b []T) bool {
	switch op {
	case types.EQ:
		return sliceEqual(a, b)
	case types.NEQ:
		return !sliceEqual(a, b)
	case types.GT:
		return len(a) > len(b)
	case types.GTE:
		return len(a) >= len(b)
	case types.LT:
		return len(a) < len(b)
	case types.LTE:
		return len(a) <= len(b)
	case types.StartsWith:
		return slicePrefix(a, b)
	case types.Contains:
		return sliceIncludes(a, b)
	case types.EndsWith:
		return sliceSuffix(a, b)
	case types.NotStartsWith:
		return !slicePrefix(a, b)
	case types.NotContains:
		return !sliceIncludes(a, b)
	case types.NotEndsWith:
		return !sliceSuffix(a, b)
	default:
		return false
	}
}

func sliceEqual[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func slicePrefix[T comparable](a, b []T) bool {
	if len(a) < len(b) {
		return false
	}
	for i := range b {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sliceSuffix[T comparable](a, b []T) bool {
	if len(a) < len(b) {
		return false
	}
	offset := len(a) - len(b)
	for i := range b {
		if a[offset+i] != b[i] {
			return false
		}
	}
	return true
}

// sliceIncludes reports whether a contains every element of b, with
// multiplicity.
func sliceIncludes[T comparable](a, b []T) bool {
	if len(b) > len(a) {
		return false
	}
	counts := make(map[T]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}
