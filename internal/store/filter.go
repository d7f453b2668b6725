package store

import (
	"container/heap"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/quiverdb/quiver/internal/expr"
	"github.com/quiverdb/quiver/internal/ids"
	"github.com/quiverdb/quiver/internal/props"
	"github.com/quiverdb/quiver/internal/types"
)

// The filter family starts from a caller-supplied id list instead of
// scanning the column. Ids of deleted entities are dropped first, then the
// predicate runs against the single slot each id addresses.

// removeDeleted drops ids whose position is tombstoned in the entity
// bitmap.
func removeDeleted(idList []uint64, codec ids.Codec, entityDeleted *roaring64.Bitmap) []uint64 {
	live := make([]uint64, 0, len(idList))
	for _, id := range idList {
		if entityDeleted.Contains(codec.PosOf(id)) {
			continue
		}
		live = append(live, id)
	}
	return live
}

// evaluateAt applies the kernel to the property slot one id addresses.
// Missing values never match.
func evaluateAt(p *props.Properties, pos uint64, property string, op types.Operation, normalized any) bool {
	switch p.TypeOf(property) {
	case types.BooleanType:
		if vec := p.Booleans(property); pos < uint64(len(vec)) {
			return expr.EvaluateBool(op, vec[pos], normalized.(bool))
		}
	case types.IntegerType:
		if vec := p.Integers(property); pos < uint64(len(vec)) {
			return expr.Evaluate(op, vec[pos], normalized.(int64))
		}
	case types.DoubleType, types.DateType:
		if vec := p.Doubles(property); pos < uint64(len(vec)) {
			return expr.Evaluate(op, vec[pos], normalized.(float64))
		}
	case types.StringType:
		if vec := p.Strings(property); pos < uint64(len(vec)) {
			return expr.EvaluateString(op, vec[pos], normalized.(string))
		}
	case types.BooleanListType:
		if vec := p.BooleanLists(property); pos < uint64(len(vec)) {
			return expr.EvaluateSlice(op, vec[pos], normalized.([]bool))
		}
	case types.IntegerListType:
		if vec := p.IntegerLists(property); pos < uint64(len(vec)) {
			return expr.EvaluateSlice(op, vec[pos], normalized.([]int64))
		}
	case types.DoubleListType, types.DateListType:
		if vec := p.DoubleLists(property); pos < uint64(len(vec)) {
			return expr.EvaluateSlice(op, vec[pos], normalized.([]float64))
		}
	case types.StringListType:
		if vec := p.StringLists(property); pos < uint64(len(vec)) {
			return expr.EvaluateSlice(op, vec[pos], normalized.([]string))
		}
	}
	return false
}

// filterMatches returns the ids from the (already liveness-filtered) list
// that satisfy the operation, in input order.
func filterMatches(p *props.Properties, entityDeleted *roaring64.Bitmap, codec ids.Codec, live []uint64, property string, op types.Operation, value any) []uint64 {
	switch op {
	case types.IsNull:
		var out []uint64
		for _, id := range live {
			if p.IsDeleted(property, codec.PosOf(id)) {
				out = append(out, id)
			}
		}
		return out
	case types.NotIsNull:
		max := p.ColumnLength(property)
		var out []uint64
		for _, id := range live {
			pos := codec.PosOf(id)
			if pos < max && !p.IsDeleted(property, pos) {
				out = append(out, id)
			}
		}
		return out
	}

	normalized, ok := normalizeScalar(p.TypeOf(property), value)
	if !ok {
		return nil
	}
	blank := blanks(p, entityDeleted, property)
	var out []uint64
	for _, id := range live {
		pos := codec.PosOf(id)
		if blank.Contains(pos) {
			continue
		}
		if evaluateAt(p, pos, property, op, normalized) {
			out = append(out, id)
		}
	}
	return out
}

// filterCount answers the count shape; sort never applies to counting.
func filterCount(p *props.Properties, entityDeleted *roaring64.Bitmap, codec ids.Codec, idList []uint64, property string, op types.Operation, value any) uint64 {
	if p == nil || p.TypeOf(property) == types.NullType {
		return 0
	}
	live := removeDeleted(idList, codec, entityDeleted)
	return uint64(len(filterMatches(p, entityDeleted, codec, live, property, op, value)))
}

// filterIDs answers the ids shape. With SortNone the matches keep input
// order and page directly. With a sort order the matching rows are
// materialized as (id, value) pairs — rows whose sort property is null are
// excluded — partially sorted up to skip+limit, and the window is cut from
// the sorted sequence.
func filterIDs(p *props.Properties, entityDeleted *roaring64.Bitmap, codec ids.Codec, idList []uint64, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) []uint64 {
	if p == nil || p.TypeOf(property) == types.NullType {
		return nil
	}
	live := removeDeleted(idList, codec, entityDeleted)
	matches := filterMatches(p, entityDeleted, codec, live, property, op, value)

	if order == types.SortNone || op == types.IsNull {
		var out []uint64
		pg := pager{skip: skip, limit: limit}
		for _, id := range matches {
			if pg.full() {
				break
			}
			if pg.take() {
				out = append(out, id)
			}
		}
		return out
	}
	return sortWindow(p, codec, matches, property, skip, limit, order)
}

// sortedHit pairs an id with the value it sorts by.
type sortedHit struct {
	id    uint64
	value any
}

// hitHeap is a bounded max-heap (by the sort order's "worst" element) used
// for the partial sort: it keeps the best skip+limit rows in O(N log L).
type hitHeap struct {
	hits  []sortedHit
	kind  types.DataType
	worse func(kind types.DataType, a, b any) bool
}

func (h *hitHeap) Len() int           { return len(h.hits) }
func (h *hitHeap) Swap(i, j int)      { h.hits[i], h.hits[j] = h.hits[j], h.hits[i] }
func (h *hitHeap) Push(x any)         { h.hits = append(h.hits, x.(sortedHit)) }
func (h *hitHeap) Less(i, j int) bool { return h.worse(h.kind, h.hits[j].value, h.hits[i].value) }
func (h *hitHeap) Pop() any {
	last := h.hits[len(h.hits)-1]
	h.hits = h.hits[:len(h.hits)-1]
	return last
}

// LessValue orders two property values of the same kind. Lists order by
// length; booleans by false < true. Exported for the cross-shard sorted
// merge in the graph layer.
func LessValue(kind types.DataType, a, b any) bool {
	switch kind {
	case types.BooleanType:
		return !a.(bool) && b.(bool)
	case types.IntegerType:
		return a.(int64) < b.(int64)
	case types.DoubleType, types.DateType:
		return a.(float64) < b.(float64)
	case types.StringType:
		return a.(string) < b.(string)
	case types.BooleanListType:
		return len(a.([]bool)) < len(b.([]bool))
	case types.IntegerListType:
		return len(a.([]int64)) < len(b.([]int64))
	case types.DoubleListType, types.DateListType:
		return len(a.([]float64)) < len(b.([]float64))
	case types.StringListType:
		return len(a.([]string)) < len(b.([]string))
	default:
		return false
	}
}

// IDValue pairs an id with the property value it sorts by; the graph layer
// merges per-shard hits with it.
type IDValue struct {
	ID    uint64
	Value any
}

// filterHits returns every matching (id, value) pair with a non-null sort
// value, unsorted; the cross-shard coordinator does the ordering.
func filterHits(p *props.Properties, entityDeleted *roaring64.Bitmap, codec ids.Codec, idList []uint64, property string, op types.Operation, value any) []IDValue {
	live := removeDeleted(idList, codec, entityDeleted)
	matches := filterMatches(p, entityDeleted, codec, live, property, op, value)
	hits := make([]IDValue, 0, len(matches))
	for _, id := range matches {
		if v := p.Get(property, codec.PosOf(id)); v != nil {
			hits = append(hits, IDValue{ID: id, Value: v})
		}
	}
	return hits
}

func sortWindow(p *props.Properties, codec ids.Codec, matches []uint64, property string, skip, limit uint64, order types.Sort) []uint64 {
	kind := p.TypeOf(property)
	less := LessValue
	if order == types.SortDescending {
		less = func(kind types.DataType, a, b any) bool { return LessValue(kind, b, a) }
	}

	keep := skip + limit
	h := &hitHeap{kind: kind, worse: less}
	var all []sortedHit
	for _, id := range matches {
		value := p.Get(property, codec.PosOf(id))
		if value == nil {
			continue
		}
		hit := sortedHit{id: id, value: value}
		if limit == 0 {
			all = append(all, hit)
			continue
		}
		if uint64(h.Len()) < keep {
			heap.Push(h, hit)
		} else if less(kind, hit.value, h.hits[0].value) {
			h.hits[0] = hit
			heap.Fix(h, 0)
		}
	}
	if limit == 0 {
		sort.SliceStable(all, func(i, j int) bool { return less(kind, all[i].value, all[j].value) })
	} else {
		all = h.hits
		sort.SliceStable(all, func(i, j int) bool { return less(kind, all[i].value, all[j].value) })
	}

	var out []uint64
	pg := pager{skip: skip, limit: limit}
	for _, hit := range all {
		if pg.full() {
			break
		}
		if pg.take() {
			out = append(out, hit.id)
		}
	}
	return out
}
