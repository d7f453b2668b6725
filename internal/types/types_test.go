package types

import "testing"

func TestParseOperation(t *testing.T) {
	tests := []struct {
		in   string
		want Operation
	}{
		{"eq", EQ},
		{"==", EQ},
		{"NEQ", NEQ},
		{"<>", NEQ},
		{">", GT},
		{"gte", GTE},
		{"<", LT},
		{"lte", LTE},
		{"is_null", IsNull},
		{"not_is_null", NotIsNull},
		{"starts_with", StartsWith},
		{"CONTAINS", Contains},
		{"ends_with", EndsWith},
		{"not_starts_with", NotStartsWith},
		{"not_contains", NotContains},
		{"not_ends_with", NotEndsWith},
		{"sideways", UnknownOperation},
		{"", UnknownOperation},
	}
	for _, tt := range tests {
		if got := ParseOperation(tt.in); got != tt.want {
			t.Errorf("ParseOperation(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOperationRoundTrip(t *testing.T) {
	for op := EQ; op < UnknownOperation; op++ {
		if got := ParseOperation(op.String()); got != op {
			t.Errorf("round trip %v -> %q -> %v", op, op.String(), got)
		}
	}
}

func TestParseDataType(t *testing.T) {
	tests := []struct {
		in   string
		want DataType
	}{
		{"boolean", BooleanType},
		{"integer", IntegerType},
		{"double", DoubleType},
		{"string", StringType},
		{"boolean_list", BooleanListType},
		{"integer_list", IntegerListType},
		{"double_list", DoubleListType},
		{"string_list", StringListType},
		{"date", DateType},
		{"date_list", DateListType},
		{"", NullType},
		{"decimal", NullType},
	}
	for _, tt := range tests {
		if got := ParseDataType(tt.in); got != tt.want {
			t.Errorf("ParseDataType(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		in   any
		want DataType
	}{
		{true, BooleanType},
		{int64(1), IntegerType},
		{1.5, DoubleType},
		{"s", StringType},
		{[]bool{true}, BooleanListType},
		{[]int64{1}, IntegerListType},
		{[]float64{1}, DoubleListType},
		{[]string{"a"}, StringListType},
		{nil, NullType},
		{struct{}{}, NullType},
	}
	for _, tt := range tests {
		if got := KindOf(tt.in); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(5); got != int64(5) {
		t.Errorf("Normalize(int) = %v (%T)", got, got)
	}
	if got := Normalize(uint32(7)); got != int64(7) {
		t.Errorf("Normalize(uint32) = %v", got)
	}
	if got := Normalize(float32(2)); got != float64(2) {
		t.Errorf("Normalize(float32) = %v", got)
	}
	ints, ok := Normalize([]int{1, 2}).([]int64)
	if !ok || len(ints) != 2 || ints[1] != 2 {
		t.Errorf("Normalize([]int) = %v", ints)
	}
	mixed, ok := Normalize([]any{"a", "b"}).([]string)
	if !ok || len(mixed) != 2 {
		t.Errorf("Normalize([]any strings) = %v", mixed)
	}
	if got := Normalize("untouched"); got != "untouched" {
		t.Errorf("Normalize(string) = %v", got)
	}
}

func TestDirections(t *testing.T) {
	if ParseDirection("in") != DirectionIn || ParseDirection("OUT") != DirectionOut {
		t.Error("ParseDirection failed")
	}
	if ParseDirection("") != DirectionBoth {
		t.Error("default direction not both")
	}
	if DirectionIn.String() != "in" || DirectionOut.String() != "out" || DirectionBoth.String() != "both" {
		t.Error("Direction.String failed")
	}
}
