package graph

import (
	"context"
	"sort"

	"github.com/quiverdb/quiver/internal/expr"
	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/store"
	"github.com/quiverdb/quiver/internal/telemetry"
	"github.com/quiverdb/quiver/internal/types"
)

// Find scans a property column across every shard; filter starts from a
// caller-supplied id list. Peered results merge in shard-index order, which
// makes cross-shard pagination deterministic: the count pass sizes each
// shard's window, the fetch pass collects exactly the windowed slice.

// FindNodeCount counts nodes whose property satisfies the operation.
func (g *Graph) FindNodeCount(ctx context.Context, typeName, property string, op types.Operation, value any) (uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindNode, typeName)
	if err != nil || typeID == 0 {
		return 0, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Nodes.FindCount(typeID, property, op, normalized)
	})
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// FindNodeIDs pages matching node ids across shards.
func (g *Graph) FindNodeIDs(ctx context.Context, typeName, property string, op types.Operation, value any, skip, limit uint64) ([]uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindNode, typeName)
	if err != nil || typeID == 0 {
		return nil, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Nodes.FindCount(typeID, property, op, normalized)
	})
	if err != nil {
		return nil, err
	}
	var merged [][]uint64
	for i, w := range window(counts, skip, limit) {
		if w.Take == 0 {
			continue
		}
		s := g.shards[i]
		wi := w
		idList, err := shard.Run(ctx, s, func() []uint64 {
			return s.Nodes.FindIDs(typeID, property, op, normalized, wi.Skip, wi.Take)
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, idList)
	}
	return pageMerged(merged, 0, 0), nil
}

// FindNodes pages matching nodes.
func (g *Graph) FindNodes(ctx context.Context, typeName, property string, op types.Operation, value any, skip, limit uint64) ([]types.Node, error) {
	idList, err := g.FindNodeIDs(ctx, typeName, property, op, value, skip, limit)
	if err != nil {
		return nil, err
	}
	return g.nodesByIDs(ctx, idList)
}

// FindRelationshipCount counts relationships whose property satisfies the
// operation.
func (g *Graph) FindRelationshipCount(ctx context.Context, typeName, property string, op types.Operation, value any) (uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindRelationship, typeName)
	if err != nil || typeID == 0 {
		return 0, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Rels.FindCount(typeID, property, op, normalized)
	})
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// FindRelationshipIDs pages matching relationship ids.
func (g *Graph) FindRelationshipIDs(ctx context.Context, typeName, property string, op types.Operation, value any, skip, limit uint64) ([]uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindRelationship, typeName)
	if err != nil || typeID == 0 {
		return nil, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Rels.FindCount(typeID, property, op, normalized)
	})
	if err != nil {
		return nil, err
	}
	var merged [][]uint64
	for i, w := range window(counts, skip, limit) {
		if w.Take == 0 {
			continue
		}
		s := g.shards[i]
		wi := w
		idList, err := shard.Run(ctx, s, func() []uint64 {
			return s.Rels.FindIDs(typeID, property, op, normalized, wi.Skip, wi.Take)
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, idList)
	}
	return pageMerged(merged, 0, 0), nil
}

// FindRelationships pages matching relationships.
func (g *Graph) FindRelationships(ctx context.Context, typeName, property string, op types.Operation, value any, skip, limit uint64) ([]types.Relationship, error) {
	idList, err := g.FindRelationshipIDs(ctx, typeName, property, op, value, skip, limit)
	if err != nil {
		return nil, err
	}
	return g.relationshipsByIDs(ctx, idList)
}

// splitByShard partitions an id list per owning shard, keeping each
// shard's ids in input order.
func (g *Graph) splitByShard(idList []uint64) [][]uint64 {
	out := make([][]uint64, len(g.shards))
	codec := g.shards[0].Codec()
	for _, id := range idList {
		idx := codec.ShardOf(id)
		out[idx] = append(out[idx], id)
	}
	return out
}

// FilterNodeCount counts the input ids that are live and satisfy the
// operation.
func (g *Graph) FilterNodeCount(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any) (uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindNode, typeName)
	if err != nil || typeID == 0 {
		return 0, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	byShard := g.splitByShard(idList)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Nodes.FilterCount(byShard[s.ID()], typeID, property, op, normalized)
	})
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// FilterNodeIDs filters the input list and pages the result. With a sort
// order, matching (id, value) pairs merge across shards and a stable sort
// by value decides the page.
func (g *Graph) FilterNodeIDs(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) ([]uint64, error) {
	return g.filterIDs(ctx, idList, types.KindNode, typeName, property, op, value, skip, limit, order)
}

// FilterNodes filters the input list and returns node bodies.
func (g *Graph) FilterNodes(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) ([]types.Node, error) {
	matched, err := g.FilterNodeIDs(ctx, idList, typeName, property, op, value, skip, limit, order)
	if err != nil {
		return nil, err
	}
	return g.nodesByIDs(ctx, matched)
}

// FilterRelationshipCount counts the input relationship ids that match.
func (g *Graph) FilterRelationshipCount(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any) (uint64, error) {
	typeID, err := g.typeIDOf(ctx, types.KindRelationship, typeName)
	if err != nil || typeID == 0 {
		return 0, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	byShard := g.splitByShard(idList)
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		return s.Rels.FilterCount(byShard[s.ID()], typeID, property, op, normalized)
	})
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// FilterRelationshipIDs filters and pages relationship ids, optionally
// sorted by the property value.
func (g *Graph) FilterRelationshipIDs(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) ([]uint64, error) {
	return g.filterIDs(ctx, idList, types.KindRelationship, typeName, property, op, value, skip, limit, order)
}

// FilterRelationships filters the input list and returns bodies.
func (g *Graph) FilterRelationships(ctx context.Context, idList []uint64, typeName, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) ([]types.Relationship, error) {
	matched, err := g.FilterRelationshipIDs(ctx, idList, typeName, property, op, value, skip, limit, order)
	if err != nil {
		return nil, err
	}
	return g.relationshipsByIDs(ctx, matched)
}

func (g *Graph) filterIDs(ctx context.Context, idList []uint64, kind types.Kind, typeName, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) ([]uint64, error) {
	typeID, err := g.typeIDOf(ctx, kind, typeName)
	if err != nil || typeID == 0 {
		return nil, err
	}
	telemetry.QueryServed(ctx)
	normalized := types.Normalize(value)
	byShard := g.splitByShard(idList)

	if order == types.SortNone || op == types.IsNull {
		lists, err := peered(ctx, g, func(s *shard.Shard) []uint64 {
			var keep uint64
			if limit > 0 {
				keep = skip + limit
			}
			if kind == types.KindRelationship {
				return s.Rels.FilterIDs(byShard[s.ID()], typeID, property, op, normalized, 0, keep, types.SortNone)
			}
			return s.Nodes.FilterIDs(byShard[s.ID()], typeID, property, op, normalized, 0, keep, types.SortNone)
		})
		if err != nil {
			return nil, err
		}
		return pageMerged(lists, skip, limit), nil
	}

	hitLists, err := peered(ctx, g, func(s *shard.Shard) []store.IDValue {
		if kind == types.KindRelationship {
			return s.Rels.FilterHits(byShard[s.ID()], typeID, property, op, normalized)
		}
		return s.Nodes.FilterHits(byShard[s.ID()], typeID, property, op, normalized)
	})
	if err != nil {
		return nil, err
	}
	propKind, err := g.propertyKind(ctx, kind, typeID, property)
	if err != nil {
		return nil, err
	}
	var hits []store.IDValue
	for _, list := range hitLists {
		hits = append(hits, list...)
	}
	less := store.LessValue
	if order == types.SortDescending {
		less = func(k types.DataType, a, b any) bool { return store.LessValue(k, b, a) }
	}
	sort.SliceStable(hits, func(i, j int) bool { return less(propKind, hits[i].Value, hits[j].Value) })

	var out []uint64
	var current uint64
	for _, hit := range hits {
		current++
		if current <= skip {
			continue
		}
		out = append(out, hit.ID)
		if limit > 0 && uint64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (g *Graph) propertyKind(ctx context.Context, kind types.Kind, typeID uint16, property string) (types.DataType, error) {
	auth := g.authority()
	return shard.Run(ctx, auth, func() types.DataType {
		if kind == types.KindRelationship {
			return auth.Rels.Properties(typeID).TypeOf(property)
		}
		return auth.Nodes.Properties(typeID).TypeOf(property)
	})
}

// Predicate is one conjunct of a multi-property find.
type Predicate struct {
	Property  string
	Operation types.Operation
	Value     any
}

// FindNodeIDsAll intersects several predicates over one node type with the
// leapfrog join and pages the intersection. Each predicate's full id set is
// collected first; the join then runs over the sorted sets.
func (g *Graph) FindNodeIDsAll(ctx context.Context, typeName string, predicates []Predicate, skip, limit uint64) ([]uint64, error) {
	if len(predicates) == 0 {
		return nil, nil
	}
	idSets := make([][]uint64, 0, len(predicates))
	for _, p := range predicates {
		idList, err := g.FindNodeIDs(ctx, typeName, p.Property, p.Operation, p.Value, 0, 0)
		if err != nil {
			return nil, err
		}
		sort.Slice(idList, func(i, j int) bool { return idList[i] < idList[j] })
		idSets = append(idSets, idList)
	}
	joined := expr.LeapfrogJoin(idSets)
	var out []uint64
	var current uint64
	for _, id := range joined {
		current++
		if current <= skip {
			continue
		}
		out = append(out, id)
		if limit > 0 && uint64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}
