package expr

import (
	"testing"

	"github.com/quiverdb/quiver/internal/types"
)

func TestEvaluateOrdered(t *testing.T) {
	tests := []struct {
		name string
		op   types.Operation
		a, b int64
		want bool
	}{
		{"eq hit", types.EQ, 5, 5, true},
		{"eq miss", types.EQ, 5, 6, false},
		{"neq", types.NEQ, 5, 6, true},
		{"gt", types.GT, 7, 5, true},
		{"gt equal", types.GT, 5, 5, false},
		{"gte equal", types.GTE, 5, 5, true},
		{"lt", types.LT, 4, 5, true},
		{"lte above", types.LTE, 6, 5, false},
		{"string op on ints", types.StartsWith, 5, 5, false},
		{"unknown", types.UnknownOperation, 5, 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(tt.op, tt.a, tt.b); got != tt.want {
				t.Errorf("Evaluate(%v, %d, %d) = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEvaluateBoolOrdering(t *testing.T) {
	// false < true, so GT(a,b) == a && !b and LT(a,b) == !a && b.
	if !EvaluateBool(types.GT, true, false) {
		t.Error("GT(true, false) should hold")
	}
	if EvaluateBool(types.GT, false, true) {
		t.Error("GT(false, true) should not hold")
	}
	if !EvaluateBool(types.LT, false, true) {
		t.Error("LT(false, true) should hold")
	}
	if EvaluateBool(types.LT, true, true) {
		t.Error("LT(true, true) should not hold")
	}
	if !EvaluateBool(types.GTE, true, true) {
		t.Error("GTE(true, true) should hold")
	}
}

func TestEvaluateString(t *testing.T) {
	tests := []struct {
		name string
		op   types.Operation
		a, b string
		want bool
	}{
		{"starts with", types.StartsWith, "graph", "gra", true},
		{"starts with miss", types.StartsWith, "graph", "ph", false},
		{"contains", types.Contains, "quiver", "ive", true},
		{"ends with", types.EndsWith, "quiver", "ver", true},
		{"not starts with", types.NotStartsWith, "graph", "ph", true},
		{"not contains", types.NotContains, "quiver", "xyz", true},
		{"not ends with", types.NotEndsWith, "quiver", "ver", false},
		{"lexicographic gt", types.GT, "b", "a", true},
		{"lexicographic lte", types.LTE, "a", "b", true},
		{"eq", types.EQ, "same", "same", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateString(tt.op, tt.a, tt.b); got != tt.want {
				t.Errorf("EvaluateString(%v, %q, %q) = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEvaluateSlice(t *testing.T) {
	tests := []struct {
		name string
		op   types.Operation
		a, b []int64
		want bool
	}{
		{"eq", types.EQ, []int64{1, 2, 3}, []int64{1, 2, 3}, true},
		{"eq order matters", types.EQ, []int64{1, 2, 3}, []int64{3, 2, 1}, false},
		{"neq", types.NEQ, []int64{1}, []int64{2}, true},
		{"gt by length", types.GT, []int64{1, 2, 3}, []int64{9, 9}, true},
		{"lt by length", types.LT, []int64{1}, []int64{0, 0}, true},
		{"gte equal content", types.GTE, []int64{1, 2}, []int64{1, 2}, true},
		{"lte shorter", types.LTE, []int64{1}, []int64{1, 2}, true},
		{"prefix", types.StartsWith, []int64{1, 2, 3}, []int64{1, 2}, true},
		{"prefix miss", types.StartsWith, []int64{1, 2, 3}, []int64{2}, false},
		{"suffix", types.EndsWith, []int64{1, 2, 3}, []int64{2, 3}, true},
		{"suffix miss", types.EndsWith, []int64{1, 2, 3}, []int64{1, 2}, false},
		{"contains multiset", types.Contains, []int64{3, 1, 2, 1}, []int64{1, 1, 2}, true},
		{"contains multiplicity", types.Contains, []int64{1, 2}, []int64{1, 1}, false},
		{"not contains", types.NotContains, []int64{1, 2}, []int64{3}, true},
		{"unknown", types.IsNull, []int64{1}, []int64{1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateSlice(tt.op, tt.a, tt.b); got != tt.want {
				t.Errorf("EvaluateSlice(%v, %v, %v) = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestEvaluateSliceStrings(t *testing.T) {
	if !EvaluateSlice(types.Contains, []string{"a", "b", "c"}, []string{"c", "a"}) {
		t.Error("string multiset contains should hold")
	}
	if !EvaluateSlice(types.StartsWith, []string{"x", "y"}, []string{"x"}) {
		t.Error("string prefix should hold")
	}
}
