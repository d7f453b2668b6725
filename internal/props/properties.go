// Package props implements the columnar property layer. Each entity type
// owns one Properties value; each declared property is a dense, type-tagged
// column (a plain slice) plus a roaring tombstone bitmap. Storage is by
// within-shard position: column index i holds the property of the entity at
// position i, so the columns stay parallel to the entity store's own
// vectors.
package props

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/quiverdb/quiver/internal/types"
)

// Tombstone values occupy dead slots so the slices stay dense. They are
// never observable: a set tombstone bit hides the slot from every reader.
const (
	tombstoneBoolean = false
	tombstoneInteger = int64(-9223372036854775808)
	tombstoneDouble  = float64(0)
	tombstoneString  = ""
)

// Properties is the per-entity-type columnar store. Not safe for concurrent
// use; the owning shard serializes all access.
type Properties struct {
	kinds   map[string]types.DataType
	deleted map[string]*roaring64.Bitmap

	booleans     map[string][]bool
	integers     map[string][]int64
	doubles      map[string][]float64
	strings      map[string][]string
	booleanLists map[string][][]bool
	integerLists map[string][][]int64
	doubleLists  map[string][][]float64
	stringLists  map[string][][]string
}

func New() *Properties {
	return &Properties{
		kinds:        make(map[string]types.DataType),
		deleted:      make(map[string]*roaring64.Bitmap),
		booleans:     make(map[string][]bool),
		integers:     make(map[string][]int64),
		doubles:      make(map[string][]float64),
		strings:      make(map[string][]string),
		booleanLists: make(map[string][][]bool),
		integerLists: make(map[string][][]int64),
		doubleLists:  make(map[string][][]float64),
		stringLists:  make(map[string][][]string),
	}
}

// Clear drops every column and tombstone map.
func (p *Properties) Clear() {
	*p = *New()
}

// TypeOf returns the declared tag of a property, NullType if undeclared.
func (p *Properties) TypeOf(key string) types.DataType {
	return p.kinds[key]
}

// Kinds returns property name -> tag name for the whole schema.
func (p *Properties) Kinds() map[string]string {
	out := make(map[string]string, len(p.kinds))
	for key, kind := range p.kinds {
		out[key] = kind.String()
	}
	return out
}

// SetType declares a property column. Redeclaring with the same tag is
// idempotent and returns the tag; a different tag is a schema conflict and
// returns NullType. Dates share the double columns: only the tag differs.
func (p *Properties) SetType(key string, kind types.DataType) types.DataType {
	if kind == types.NullType || kind > types.DateListType {
		return types.NullType
	}
	if existing, ok := p.kinds[key]; ok {
		if existing == kind {
			return kind
		}
		return types.NullType
	}
	p.kinds[key] = kind
	p.deleted[key] = roaring64.New()
	switch kind {
	case types.BooleanType:
		p.booleans[key] = nil
	case types.IntegerType:
		p.integers[key] = nil
	case types.DoubleType, types.DateType:
		p.doubles[key] = nil
	case types.StringType:
		p.strings[key] = nil
	case types.BooleanListType:
		p.booleanLists[key] = nil
	case types.IntegerListType:
		p.integerLists[key] = nil
	case types.DoubleListType, types.DateListType:
		p.doubleLists[key] = nil
	case types.StringListType:
		p.stringLists[key] = nil
	}
	return kind
}

// RemoveType drops the column and its tombstones entirely.
func (p *Properties) RemoveType(key string) bool {
	kind, ok := p.kinds[key]
	if !ok {
		return false
	}
	delete(p.kinds, key)
	delete(p.deleted, key)
	switch kind {
	case types.BooleanType:
		delete(p.booleans, key)
	case types.IntegerType:
		delete(p.integers, key)
	case types.DoubleType, types.DateType:
		delete(p.doubles, key)
	case types.StringType:
		delete(p.strings, key)
	case types.BooleanListType:
		delete(p.booleanLists, key)
	case types.IntegerListType:
		delete(p.integerLists, key)
	case types.DoubleListType, types.DateListType:
		delete(p.doubleLists, key)
	case types.StringListType:
		delete(p.stringLists, key)
	}
	return true
}

// grow extends a column to cover pos, tombstoning the newly exposed slots.
// Positions between the old length and pos have never been written for this
// property, so they must read as null.
func grow[T any](vec []T, pos uint64, dead *roaring64.Bitmap, tombstone T) []T {
	for uint64(len(vec)) <= pos {
		dead.Add(uint64(len(vec)))
		vec = append(vec, tombstone)
	}
	return vec
}

func (p *Properties) SetBoolean(key string, pos uint64, value bool) bool {
	if p.kinds[key] != types.BooleanType {
		return false
	}
	p.booleans[key] = grow(p.booleans[key], pos, p.deleted[key], tombstoneBoolean)
	p.booleans[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetInteger(key string, pos uint64, value int64) bool {
	if p.kinds[key] != types.IntegerType {
		return false
	}
	p.integers[key] = grow(p.integers[key], pos, p.deleted[key], tombstoneInteger)
	p.integers[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetDouble(key string, pos uint64, value float64) bool {
	kind := p.kinds[key]
	if kind != types.DoubleType && kind != types.DateType {
		return false
	}
	p.doubles[key] = grow(p.doubles[key], pos, p.deleted[key], tombstoneDouble)
	p.doubles[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

// SetDate stores seconds since epoch; dates are doubles with a date tag.
func (p *Properties) SetDate(key string, pos uint64, value float64) bool {
	return p.SetDouble(key, pos, value)
}

func (p *Properties) SetString(key string, pos uint64, value string) bool {
	if p.kinds[key] != types.StringType {
		return false
	}
	p.strings[key] = grow(p.strings[key], pos, p.deleted[key], tombstoneString)
	p.strings[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetBooleanList(key string, pos uint64, value []bool) bool {
	if p.kinds[key] != types.BooleanListType {
		return false
	}
	p.booleanLists[key] = grow(p.booleanLists[key], pos, p.deleted[key], nil)
	p.booleanLists[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetIntegerList(key string, pos uint64, value []int64) bool {
	if p.kinds[key] != types.IntegerListType {
		return false
	}
	p.integerLists[key] = grow(p.integerLists[key], pos, p.deleted[key], nil)
	p.integerLists[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetDoubleList(key string, pos uint64, value []float64) bool {
	kind := p.kinds[key]
	if kind != types.DoubleListType && kind != types.DateListType {
		return false
	}
	p.doubleLists[key] = grow(p.doubleLists[key], pos, p.deleted[key], nil)
	p.doubleLists[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

func (p *Properties) SetStringList(key string, pos uint64, value []string) bool {
	if p.kinds[key] != types.StringListType {
		return false
	}
	p.stringLists[key] = grow(p.stringLists[key], pos, p.deleted[key], nil)
	p.stringLists[key][pos] = value
	p.deleted[key].Remove(pos)
	return true
}

// SetValue dispatches a dynamic value to the typed setter for the declared
// column, promoting int64 to double where the tag asks for it.
func (p *Properties) SetValue(key string, pos uint64, value any) bool {
	switch p.kinds[key] {
	case types.BooleanType:
		if v, ok := value.(bool); ok {
			return p.SetBoolean(key, pos, v)
		}
	case types.IntegerType:
		if v, ok := value.(int64); ok {
			return p.SetInteger(key, pos, v)
		}
	case types.DoubleType, types.DateType:
		switch v := value.(type) {
		case float64:
			return p.SetDouble(key, pos, v)
		case int64:
			return p.SetDouble(key, pos, float64(v))
		}
	case types.StringType:
		if v, ok := value.(string); ok {
			return p.SetString(key, pos, v)
		}
	case types.BooleanListType:
		if v, ok := value.([]bool); ok {
			return p.SetBooleanList(key, pos, v)
		}
	case types.IntegerListType:
		if v, ok := value.([]int64); ok {
			return p.SetIntegerList(key, pos, v)
		}
	case types.DoubleListType, types.DateListType:
		switch v := value.(type) {
		case []float64:
			return p.SetDoubleList(key, pos, v)
		case []int64:
			promoted := make([]float64, len(v))
			for i, x := range v {
				promoted[i] = float64(x)
			}
			return p.SetDoubleList(key, pos, promoted)
		}
	case types.StringListType:
		if v, ok := value.([]string); ok {
			return p.SetStringList(key, pos, v)
		}
	}
	return false
}

// Get returns the property value at pos, or nil when the slot is deleted,
// out of range, or the property undeclared.
func (p *Properties) Get(key string, pos uint64) any {
	kind, ok := p.kinds[key]
	if !ok || p.deleted[key].Contains(pos) {
		return nil
	}
	switch kind {
	case types.BooleanType:
		if vec := p.booleans[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.IntegerType:
		if vec := p.integers[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.DoubleType, types.DateType:
		if vec := p.doubles[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.StringType:
		if vec := p.strings[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.BooleanListType:
		if vec := p.booleanLists[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.IntegerListType:
		if vec := p.integerLists[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.DoubleListType, types.DateListType:
		if vec := p.doubleLists[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	case types.StringListType:
		if vec := p.stringLists[key]; pos < uint64(len(vec)) {
			return vec[pos]
		}
	}
	return nil
}

// GetAll collects the full property row for one entity position, skipping
// deleted slots.
func (p *Properties) GetAll(pos uint64) map[string]any {
	row := make(map[string]any)
	for key := range p.kinds {
		if value := p.Get(key, pos); value != nil {
			row[key] = value
		}
	}
	return row
}

// Delete tombstones one property slot, keeping the storage.
func (p *Properties) Delete(key string, pos uint64) bool {
	if _, ok := p.kinds[key]; !ok {
		return false
	}
	p.deleted[key].Add(pos)
	return true
}

// DeleteAll tombstones the entire row for an entity position.
func (p *Properties) DeleteAll(pos uint64) bool {
	for key := range p.kinds {
		p.deleted[key].Add(pos)
	}
	return true
}

// IsDeleted reports whether the slot is tombstoned. Undeclared properties
// read as deleted.
func (p *Properties) IsDeleted(key string, pos uint64) bool {
	dead, ok := p.deleted[key]
	if !ok {
		return true
	}
	return dead.Contains(pos)
}

// DeletedMap exposes the tombstone bitmap for blank-bitmap algebra in the
// find pipeline. Returns an empty bitmap for undeclared properties.
func (p *Properties) DeletedMap(key string) *roaring64.Bitmap {
	if dead, ok := p.deleted[key]; ok {
		return dead
	}
	return roaring64.New()
}

func (p *Properties) DeletedCount(key string) uint64 {
	return p.DeletedMap(key).GetCardinality()
}

// Columns used by the find pipeline. Each returns the dense value vector
// for a declared property of that tag (nil otherwise).

func (p *Properties) Booleans(key string) []bool         { return p.booleans[key] }
func (p *Properties) Integers(key string) []int64        { return p.integers[key] }
func (p *Properties) Doubles(key string) []float64       { return p.doubles[key] }
func (p *Properties) Strings(key string) []string        { return p.strings[key] }
func (p *Properties) BooleanLists(key string) [][]bool   { return p.booleanLists[key] }
func (p *Properties) IntegerLists(key string) [][]int64  { return p.integerLists[key] }
func (p *Properties) DoubleLists(key string) [][]float64 { return p.doubleLists[key] }
func (p *Properties) StringLists(key string) [][]string  { return p.stringLists[key] }

// ColumnLength is the value-vector bound used by the not-null scans. A
// schema-declared column with no writes has length zero, so not-null counts
// on it are zero.
func (p *Properties) ColumnLength(key string) uint64 {
	switch p.kinds[key] {
	case types.BooleanType:
		return uint64(len(p.booleans[key]))
	case types.IntegerType:
		return uint64(len(p.integers[key]))
	case types.DoubleType, types.DateType:
		return uint64(len(p.doubles[key]))
	case types.StringType:
		return uint64(len(p.strings[key]))
	case types.BooleanListType:
		return uint64(len(p.booleanLists[key]))
	case types.IntegerListType:
		return uint64(len(p.integerLists[key]))
	case types.DoubleListType, types.DateListType:
		return uint64(len(p.doubleLists[key]))
	case types.StringListType:
		return uint64(len(p.stringLists[key]))
	default:
		return 0
	}
}
