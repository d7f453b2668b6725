package types

// Normalize maps caller-friendly Go values onto the engine's canonical
// property representation: int64 for integers, float64 for doubles, and the
// four canonical slice types for lists. Anything already canonical — or not
// a property value at all — passes through unchanged.
func Normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case []int:
		out := make([]int64, len(x))
		for i, e := range x {
			out[i] = int64(e)
		}
		return out
	case []float32:
		out := make([]float64, len(x))
		for i, e := range x {
			out[i] = float64(e)
		}
		return out
	case []any:
		// Mixed JSON-decoded arrays: settle on the first element's shape.
		if len(x) == 0 {
			return x
		}
		switch x[0].(type) {
		case bool:
			out := make([]bool, 0, len(x))
			for _, e := range x {
				if b, ok := e.(bool); ok {
					out = append(out, b)
				}
			}
			return out
		case string:
			out := make([]string, 0, len(x))
			for _, e := range x {
				if s, ok := e.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case float64:
			out := make([]float64, 0, len(x))
			for _, e := range x {
				if f, ok := e.(float64); ok {
					out = append(out, f)
				}
			}
			return out
		case int, int64:
			out := make([]int64, 0, len(x))
			for _, e := range x {
				switch n := e.(type) {
				case int:
					out = append(out, int64(n))
				case int64:
					out = append(out, n)
				}
			}
			return out
		}
		return x
	default:
		return v
	}
}
