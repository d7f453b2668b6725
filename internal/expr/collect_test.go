package expr

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/quiverdb/quiver/internal/types"
)

func naiveCollect[T Number](vec []T, pred func(T) bool) []uint64 {
	var out []uint64
	for i, v := range vec {
		if pred(v) {
			out = append(out, uint64(i))
		}
	}
	return out
}

func TestCollectIndexesMatchesScalarLoop(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		vec := rapid.SliceOfN(rapid.Int64Range(-100, 100), 0, 100).Draw(t, "vec")
		threshold := rapid.Int64Range(-100, 100).Draw(t, "threshold")
		pred := func(x int64) bool { return x > threshold }

		got := CollectIndexes(vec, pred)
		want := naiveCollect(vec, pred)
		if len(got) != len(want) {
			t.Fatalf("length %d, want %d", len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("index %d: %d, want %d", i, got[i], want[i])
			}
		}
	})
}

func TestCollectIndexesChunkBoundaries(t *testing.T) {
	// Exercise vectors straddling the 8-wide chunk boundary.
	for _, n := range []int{0, 1, 7, 8, 9, 15, 16, 17} {
		vec := make([]int64, n)
		for i := range vec {
			vec[i] = int64(i % 2)
		}
		got := CollectIndexes(vec, func(x int64) bool { return x == 1 })
		want := naiveCollect(vec, func(x int64) bool { return x == 1 })
		if len(got) != len(want) {
			t.Errorf("n=%d: %d matches, want %d", n, len(got), len(want))
		}
	}
}

func TestPredicate(t *testing.T) {
	tests := []struct {
		op    types.Operation
		value float64
		x     float64
		want  bool
	}{
		{types.EQ, 2.5, 2.5, true},
		{types.NEQ, 2.5, 2.5, false},
		{types.GT, 1, 2, true},
		{types.GTE, 2, 2, true},
		{types.LT, 3, 2, true},
		{types.LTE, 2, 3, false},
	}
	for _, tt := range tests {
		pred := Predicate(tt.op, tt.value)
		if pred == nil {
			t.Fatalf("Predicate(%v) = nil", tt.op)
		}
		if got := pred(tt.x); got != tt.want {
			t.Errorf("Predicate(%v, %v)(%v) = %v, want %v", tt.op, tt.value, tt.x, got, tt.want)
		}
	}
	if Predicate(types.Contains, int64(1)) != nil {
		t.Error("non-ordered operation must yield nil predicate")
	}
}
