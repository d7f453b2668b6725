package store

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/quiverdb/quiver/internal/expr"
	"github.com/quiverdb/quiver/internal/ids"
	"github.com/quiverdb/quiver/internal/props"
	"github.com/quiverdb/quiver/internal/types"
)

// pager implements the skip/limit pacing shared by every query shape:
// current counts accepted rows, rows are yielded while skip < current <=
// skip+limit, and the scan stops as soon as the window is full. A zero
// limit means unbounded.
type pager struct {
	skip, limit, current uint64
}

// take records one accepted row and reports whether it lands in the window.
func (p *pager) take() bool {
	p.current++
	return p.current > p.skip
}

// full reports whether the window is complete and the scan can stop.
func (p *pager) full() bool {
	return p.limit > 0 && p.current >= p.skip+p.limit
}

// blanks is the union of the column's tombstones and the entity deleted
// bitmap; positions it contains are invisible to predicates.
func blanks(p *props.Properties, entityDeleted *roaring64.Bitmap, property string) *roaring64.Bitmap {
	blank := p.DeletedMap(property).Clone()
	blank.Or(entityDeleted)
	return blank
}

// normalizeScalar coerces the caller's value to the column's runtime type.
// The only implicit conversions are int64 -> double when the column is a
// double (or date) column and []int64 -> []float64 when it is a double (or
// date) list column; everything else must match exactly.
func normalizeScalar(kind types.DataType, value any) (any, bool) {
	switch kind {
	case types.BooleanType:
		v, ok := value.(bool)
		return v, ok
	case types.IntegerType:
		v, ok := value.(int64)
		return v, ok
	case types.DoubleType, types.DateType:
		switch v := value.(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		}
	case types.StringType:
		v, ok := value.(string)
		return v, ok
	case types.BooleanListType:
		v, ok := value.([]bool)
		return v, ok
	case types.IntegerListType:
		v, ok := value.([]int64)
		return v, ok
	case types.DoubleListType, types.DateListType:
		switch v := value.(type) {
		case []float64:
			return v, true
		case []int64:
			promoted := make([]float64, len(v))
			for i, x := range v {
				promoted[i] = float64(x)
			}
			return promoted, true
		}
	case types.StringListType:
		v, ok := value.([]string)
		return v, ok
	}
	return nil, false
}

// scanColumn walks the column's live matching positions in ascending order,
// calling visit for each; visit returns false to stop early. Numeric
// columns go through the vectorized index collection; the rest iterate with
// the kernel.
func scanColumn(p *props.Properties, entityDeleted *roaring64.Bitmap, property string, op types.Operation, value any, visit func(uint64) bool) {
	kind := p.TypeOf(property)
	normalized, ok := normalizeScalar(kind, value)
	if !ok {
		return
	}
	blank := blanks(p, entityDeleted, property)

	switch kind {
	case types.IntegerType:
		scanNumeric(p.Integers(property), blank, op, normalized.(int64), visit)
	case types.DoubleType, types.DateType:
		scanNumeric(p.Doubles(property), blank, op, normalized.(float64), visit)
	case types.BooleanType:
		typed := normalized.(bool)
		scanRows(len(p.Booleans(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateBool(op, p.Booleans(property)[pos], typed)
		})
	case types.StringType:
		typed := normalized.(string)
		scanRows(len(p.Strings(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateString(op, p.Strings(property)[pos], typed)
		})
	case types.BooleanListType:
		typed := normalized.([]bool)
		scanRows(len(p.BooleanLists(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateSlice(op, p.BooleanLists(property)[pos], typed)
		})
	case types.IntegerListType:
		typed := normalized.([]int64)
		scanRows(len(p.IntegerLists(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateSlice(op, p.IntegerLists(property)[pos], typed)
		})
	case types.DoubleListType, types.DateListType:
		typed := normalized.([]float64)
		scanRows(len(p.DoubleLists(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateSlice(op, p.DoubleLists(property)[pos], typed)
		})
	case types.StringListType:
		typed := normalized.([]string)
		scanRows(len(p.StringLists(property)), blank, visit, func(pos uint64) bool {
			return expr.EvaluateSlice(op, p.StringLists(property)[pos], typed)
		})
	}
}

func scanNumeric[T expr.Number](vec []T, blank *roaring64.Bitmap, op types.Operation, value T, visit func(uint64) bool) {
	pred := expr.Predicate(op, value)
	if pred == nil {
		return
	}
	for _, pos := range expr.CollectIndexes(vec, pred) {
		if blank.Contains(pos) {
			continue
		}
		if !visit(pos) {
			return
		}
	}
}

func scanRows(length int, blank *roaring64.Bitmap, visit func(uint64) bool, match func(uint64) bool) {
	for pos := uint64(0); pos < uint64(length); pos++ {
		if blank.Contains(pos) {
			continue
		}
		if !match(pos) {
			continue
		}
		if !visit(pos) {
			return
		}
	}
}

// nullPositions is the bitmap behind IS_NULL: slots tombstoned in the
// column, minus entities that are themselves deleted.
func nullPositions(p *props.Properties, entityDeleted *roaring64.Bitmap, property string) *roaring64.Bitmap {
	blank := p.DeletedMap(property).Clone()
	blank.AndNot(entityDeleted)
	return blank
}

// notNullPositions is the bitmap behind NOT_IS_NULL: the written range of
// the column minus both deleted bitmaps. A declared column with no writes
// has an empty range.
func notNullPositions(p *props.Properties, entityDeleted *roaring64.Bitmap, property string) *roaring64.Bitmap {
	blank := roaring64.New()
	if max := p.ColumnLength(property); max > 0 {
		blank.AddRange(0, max)
	}
	blank.AndNot(entityDeleted)
	blank.AndNot(p.DeletedMap(property))
	return blank
}

// findCount answers the count shape for one column without materializing
// ids.
func findCount(p *props.Properties, entityDeleted *roaring64.Bitmap, property string, op types.Operation, value any) uint64 {
	if p == nil || p.TypeOf(property) == types.NullType {
		return 0
	}
	switch op {
	case types.IsNull:
		return nullPositions(p, entityDeleted, property).GetCardinality()
	case types.NotIsNull:
		return notNullPositions(p, entityDeleted, property).GetCardinality()
	}
	var count uint64
	scanColumn(p, entityDeleted, property, op, value, func(uint64) bool {
		count++
		return true
	})
	return count
}

// findIDs answers the ids shape with skip/limit pacing, packing positions
// into external ids with the store's codec.
func findIDs(p *props.Properties, entityDeleted *roaring64.Bitmap, codec ids.Codec, typeID uint16, property string, op types.Operation, value any, skip, limit uint64) []uint64 {
	if p == nil || p.TypeOf(property) == types.NullType {
		return nil
	}
	var out []uint64
	pg := pager{skip: skip, limit: limit}
	emit := func(pos uint64) bool {
		if pg.take() {
			if external, err := codec.Pack(typeID, pos); err == nil {
				out = append(out, external)
			}
		}
		return !pg.full()
	}
	switch op {
	case types.IsNull:
		iteratePositions(nullPositions(p, entityDeleted, property), emit)
	case types.NotIsNull:
		iteratePositions(notNullPositions(p, entityDeleted, property), emit)
	default:
		scanColumn(p, entityDeleted, property, op, value, emit)
	}
	return out
}

func iteratePositions(bitmap *roaring64.Bitmap, visit func(uint64) bool) {
	it := bitmap.Iterator()
	for it.HasNext() {
		if !visit(it.Next()) {
			return
		}
	}
}
