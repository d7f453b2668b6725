package types

// DataType tags a property column. The numeric order is fixed: it matches
// the column kind ids used during JSON coercion and must not be rearranged.
type DataType uint8

const (
	NullType DataType = iota
	BooleanType
	IntegerType
	DoubleType
	StringType
	BooleanListType
	IntegerListType
	DoubleListType
	StringListType
	DateType
	DateListType
)

var dataTypeNames = []string{
	"",
	"boolean",
	"integer",
	"double",
	"string",
	"boolean_list",
	"integer_list",
	"double_list",
	"string_list",
	"date",
	"date_list",
}

func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return ""
}

// ParseDataType returns NullType for anything outside the allowed set.
func ParseDataType(s string) DataType {
	for i, name := range dataTypeNames {
		if i > 0 && name == s {
			return DataType(i)
		}
	}
	return NullType
}

// KindOf reports the DataType a dynamic property value carries. Dates are
// indistinguishable from doubles at the value level; they come back as
// DoubleType and the column tag decides the interpretation.
func KindOf(v any) DataType {
	switch v.(type) {
	case bool:
		return BooleanType
	case int64:
		return IntegerType
	case float64:
		return DoubleType
	case string:
		return StringType
	case []bool:
		return BooleanListType
	case []int64:
		return IntegerListType
	case []float64:
		return DoubleListType
	case []string:
		return StringListType
	default:
		return NullType
	}
}
