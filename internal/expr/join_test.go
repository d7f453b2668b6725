package expr

import (
	"sort"
	"testing"

	"pgregory.net/rapid"
)

func naiveIntersection(sets [][]uint64) []uint64 {
	if len(sets) == 0 {
		return nil
	}
	counts := make(map[uint64]int)
	for _, set := range sets {
		seen := make(map[uint64]bool)
		for _, v := range set {
			if !seen[v] {
				seen[v] = true
				counts[v]++
			}
		}
	}
	var out []uint64
	for v, c := range counts {
		if c == len(sets) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLeapfrogJoinBasic(t *testing.T) {
	tests := []struct {
		name   string
		inputs [][]uint64
		want   []uint64
	}{
		{
			name:   "two lists",
			inputs: [][]uint64{{1, 3, 5, 7}, {3, 4, 5}},
			want:   []uint64{3, 5},
		},
		{
			name:   "three lists",
			inputs: [][]uint64{{0, 1, 2, 10, 11}, {1, 2, 3, 10}, {2, 10, 20}},
			want:   []uint64{2, 10},
		},
		{
			name:   "empty input short-circuits",
			inputs: [][]uint64{{1, 2}, {}},
			want:   nil,
		},
		{
			name:   "disjoint",
			inputs: [][]uint64{{1, 2}, {3, 4}},
			want:   nil,
		},
		{
			name:   "identical",
			inputs: [][]uint64{{5, 6}, {5, 6}},
			want:   []uint64{5, 6},
		},
		{
			name:   "single list",
			inputs: [][]uint64{{4, 8}},
			want:   []uint64{4, 8},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs := make([][]uint64, len(tt.inputs))
			for i := range tt.inputs {
				inputs[i] = append([]uint64(nil), tt.inputs[i]...)
			}
			got := LeapfrogJoin(inputs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestLeapfrogJoinMatchesSetIntersection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		k := rapid.IntRange(1, 5).Draw(t, "k")
		sets := make([][]uint64, k)
		for i := range sets {
			values := rapid.SliceOfNDistinct(rapid.Uint64Range(0, 200), 0, 80, rapid.ID).Draw(t, "set")
			sort.Slice(values, func(a, b int) bool { return values[a] < values[b] })
			sets[i] = values
		}
		want := naiveIntersection(sets)
		got := LeapfrogJoin(sets)
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("got %v, want %v", got, want)
			}
		}
	})
}

func TestLeapfrogSeek(t *testing.T) {
	index := []uint64{2, 4, 6, 8, 10, 12, 14, 16, 18, 20}
	tests := []struct {
		from   int
		target uint64
		want   int
	}{
		{0, 1, 0},
		{0, 2, 0},
		{0, 7, 3},
		{0, 20, 9},
		{0, 21, 10},
		{4, 15, 7},
	}
	for _, tt := range tests {
		if got := leapfrogSeek(index, tt.from, tt.target); got != tt.want {
			t.Errorf("leapfrogSeek(from=%d, target=%d) = %d, want %d", tt.from, tt.target, got, tt.want)
		}
	}
}
