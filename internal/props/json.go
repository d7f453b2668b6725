package props

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/quiverdb/quiver/internal/types"
)

// decodeValue parses raw JSON keeping integer/float distinction via
// json.Number, since the coercion rules treat 230 and 230.0 differently.
func decodeValue(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func isFloatSyntax(n json.Number) bool {
	s := n.String()
	return strings.ContainsAny(s, ".eE")
}

// numberToInt applies the signed-integer coercion: JSON integers parse
// directly, and unsigned values outside the int64 range convert via bit-cast
// semantics rather than failing.
func numberToInt(n json.Number) (int64, bool) {
	if isFloatSyntax(n) {
		return 0, false
	}
	if v, err := n.Int64(); err == nil {
		return v, true
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return int64(u), true
	}
	return 0, false
}

func numberToFloat(n json.Number) (float64, bool) {
	if v, ok := numberToInt(n); ok {
		return float64(v), true
	}
	v, err := n.Float64()
	return v, err == nil
}

// parseDate accepts seconds-since-epoch numbers or ISO-8601 strings and
// returns seconds since epoch as a float.
func parseDate(v any) (float64, bool) {
	switch d := v.(type) {
	case json.Number:
		return numberToFloat(d)
	case string:
		t, err := time.Parse(time.RFC3339, d)
		if err != nil {
			return 0, false
		}
		return float64(t.UnixNano()) / float64(time.Second), true
	default:
		return 0, false
	}
}

// SetFromJSON coerces one raw JSON value into the declared column at pos.
// On any coercion failure the slot is tombstoned and false is returned; the
// failure stays local to this property.
func (p *Properties) SetFromJSON(key string, pos uint64, raw []byte) bool {
	kind, ok := p.kinds[key]
	if !ok {
		return false
	}
	value, err := decodeValue(raw)
	if err != nil {
		p.Delete(key, pos)
		return false
	}
	if p.setDecoded(kind, key, pos, value) {
		return true
	}
	p.Delete(key, pos)
	return false
}

// setDecoded applies the per-tag coercion table from the decoded form.
// List coercions skip elements of the wrong shape rather than failing.
func (p *Properties) setDecoded(kind types.DataType, key string, pos uint64, value any) bool {
	switch kind {
	case types.BooleanType:
		if v, ok := value.(bool); ok {
			return p.SetBoolean(key, pos, v)
		}

	case types.IntegerType:
		if n, ok := value.(json.Number); ok {
			if v, ok := numberToInt(n); ok {
				return p.SetInteger(key, pos, v)
			}
		}

	case types.DoubleType:
		if n, ok := value.(json.Number); ok {
			if v, ok := numberToFloat(n); ok {
				return p.SetDouble(key, pos, v)
			}
		}

	case types.DateType:
		if v, ok := parseDate(value); ok {
			return p.SetDate(key, pos, v)
		}

	case types.StringType:
		if v, ok := value.(string); ok {
			return p.SetString(key, pos, v)
		}

	case types.BooleanListType:
		if arr, ok := value.([]any); ok {
			list := make([]bool, 0, len(arr))
			for _, child := range arr {
				if v, ok := child.(bool); ok {
					list = append(list, v)
				}
			}
			return p.SetBooleanList(key, pos, list)
		}

	case types.IntegerListType:
		if arr, ok := value.([]any); ok {
			list := make([]int64, 0, len(arr))
			for _, child := range arr {
				if n, ok := child.(json.Number); ok {
					if v, ok := numberToInt(n); ok {
						list = append(list, v)
					}
				}
			}
			return p.SetIntegerList(key, pos, list)
		}

	case types.DoubleListType:
		if arr, ok := value.([]any); ok {
			list := make([]float64, 0, len(arr))
			for _, child := range arr {
				if n, ok := child.(json.Number); ok {
					if v, ok := numberToFloat(n); ok {
						list = append(list, v)
					}
				}
			}
			return p.SetDoubleList(key, pos, list)
		}

	case types.DateListType:
		if arr, ok := value.([]any); ok {
			list := make([]float64, 0, len(arr))
			for _, child := range arr {
				if v, ok := parseDate(child); ok {
					list = append(list, v)
				}
			}
			return p.SetDoubleList(key, pos, list)
		}

	case types.StringListType:
		if arr, ok := value.([]any); ok {
			list := make([]string, 0, len(arr))
			for _, child := range arr {
				if v, ok := child.(string); ok {
					list = append(list, v)
				}
			}
			return p.SetStringList(key, pos, list)
		}
	}
	return false
}

// SetAllFromJSON ingests a JSON object into the row at pos. Every key must
// be declared in the schema and coerce cleanly for the call to report
// success; properties that do coerce are applied regardless, matching the
// local-failure policy.
func (p *Properties) SetAllFromJSON(pos uint64, raw []byte) bool {
	if len(raw) == 0 {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var object map[string]any
	if err := dec.Decode(&object); err != nil {
		return false
	}
	valid := 0
	for key, value := range object {
		kind, ok := p.kinds[key]
		if !ok {
			continue
		}
		if p.setDecoded(kind, key, pos, value) {
			valid++
		} else {
			p.Delete(key, pos)
		}
	}
	return valid == len(object)
}
