package graph

import (
	"context"
	"fmt"

	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/telemetry"
	"github.com/quiverdb/quiver/internal/types"
)

// RelationshipAdd creates a directed relationship homed on the starting
// node's shard. When the ending node lives elsewhere, its shard splices the
// incoming link before the id is returned; a vanished ending node rolls the
// relationship back.
func (g *Graph) RelationshipAdd(ctx context.Context, relTypeName string, fromID, toID uint64, properties []byte) (uint64, error) {
	if relTypeName == "" || fromID == 0 || toID == 0 {
		return 0, fmt.Errorf("relationship type and endpoints: %w", types.ErrInvalidArgument)
	}
	relTypeID, err := g.ensureTypeID(ctx, types.KindRelationship, relTypeName)
	if err != nil {
		return 0, err
	}
	home := g.shardOf(fromID)
	res, err := shard.Run(ctx, home, func() addResult {
		relID, err := home.AddRelationshipLocal(relTypeID, fromID, toID, properties)
		return addResult{id: relID, err: err}
	})
	if err != nil {
		return 0, err
	}
	if res.id == 0 {
		return 0, fmt.Errorf("add relationship %s: %w", relTypeName, res.err)
	}

	link := types.Link{NodeID: fromID, RelationshipID: res.id}
	target := g.shardOf(toID)
	spliced, err := shard.Run(ctx, target, func() bool {
		return target.SpliceIncoming(toID, relTypeID, link)
	})
	if err != nil {
		return 0, err
	}
	if !spliced {
		if _, rbErr := shard.Run(ctx, home, func() struct{} {
			home.RollbackRelationship(relTypeID, fromID, res.id)
			return struct{}{}
		}); rbErr != nil {
			return 0, rbErr
		}
		return 0, fmt.Errorf("ending node %d: %w", toID, types.ErrNotFound)
	}
	telemetry.RelationshipCreated(ctx)
	return res.id, res.err
}

// RelationshipAddByKeys resolves both endpoints by (type, key) first.
func (g *Graph) RelationshipAddByKeys(ctx context.Context, relTypeName, fromType, fromKey, toType, toKey string, properties []byte) (uint64, error) {
	fromID, err := g.NodeIDByKey(ctx, fromType, fromKey)
	if err != nil {
		return 0, err
	}
	toID, err := g.NodeIDByKey(ctx, toType, toKey)
	if err != nil {
		return 0, err
	}
	if fromID == 0 || toID == 0 {
		return 0, fmt.Errorf("relationship endpoints: %w", types.ErrNotFound)
	}
	return g.RelationshipAdd(ctx, relTypeName, fromID, toID, properties)
}

// RelationshipGet fetches by external id; zero value means not found.
func (g *Graph) RelationshipGet(ctx context.Context, id uint64) (types.Relationship, error) {
	home := g.shardOf(id)
	return shard.Run(ctx, home, func() types.Relationship {
		return home.Rels.RelationshipByID(id)
	})
}

// RelationshipRemove tombstones the relationship and detaches both
// endpoints' links.
func (g *Graph) RelationshipRemove(ctx context.Context, id uint64) (bool, error) {
	home := g.shardOf(id)
	type removal struct {
		toID      uint64
		relTypeID uint16
		ok        bool
	}
	res, err := shard.Run(ctx, home, func() removal {
		toID, relTypeID, ok := home.RemoveRelationshipLocal(id)
		return removal{toID: toID, relTypeID: relTypeID, ok: ok}
	})
	if err != nil {
		return false, err
	}
	if !res.ok {
		return false, nil
	}
	target := g.shardOf(res.toID)
	if _, err := shard.Run(ctx, target, func() bool {
		return target.DetachIncomingLink(res.toID, res.relTypeID, id)
	}); err != nil {
		return false, err
	}
	telemetry.RelationshipRemoved(ctx)
	return true, nil
}

// onRelationship runs fn on the relationship's home shard with resolved
// coordinates; dead ids yield the zero T.
func onRelationship[T any](ctx context.Context, g *Graph, id uint64, fn func(s *shard.Shard, typeID uint16, pos uint64) T) (T, error) {
	home := g.shardOf(id)
	return shard.Run(ctx, home, func() T {
		var zero T
		typeID := home.Codec().TypeOf(id)
		pos := home.Codec().PosOf(id)
		if !home.Rels.ValidRelationshipID(typeID, pos) {
			return zero
		}
		return fn(home, typeID, pos)
	})
}

func (g *Graph) RelationshipPropertyGet(ctx context.Context, id uint64, property string) (any, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) any {
		return s.Rels.Properties(typeID).Get(property, pos)
	})
}

func (g *Graph) RelationshipPropertySet(ctx context.Context, id uint64, property string, value any) (bool, error) {
	normalized := types.Normalize(value)
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Rels.Properties(typeID).SetValue(property, pos, normalized)
	})
}

func (g *Graph) RelationshipPropertySetFromJSON(ctx context.Context, id uint64, property string, raw []byte) (bool, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Rels.Properties(typeID).SetFromJSON(property, pos, raw)
	})
}

func (g *Graph) RelationshipPropertyDelete(ctx context.Context, id uint64, property string) (bool, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Rels.Properties(typeID).Delete(property, pos)
	})
}

func (g *Graph) RelationshipPropertiesGet(ctx context.Context, id uint64) (map[string]any, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) map[string]any {
		return s.Rels.Properties(typeID).GetAll(pos)
	})
}

func (g *Graph) RelationshipPropertiesSetFromJSON(ctx context.Context, id uint64, raw []byte) (bool, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Rels.Properties(typeID).SetAllFromJSON(pos, raw)
	})
}

func (g *Graph) RelationshipPropertiesReset(ctx context.Context, id uint64, raw []byte) (bool, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		s.Rels.Properties(typeID).DeleteAll(pos)
		return s.Rels.Properties(typeID).SetAllFromJSON(pos, raw)
	})
}

func (g *Graph) RelationshipPropertiesDelete(ctx context.Context, id uint64) (bool, error) {
	return onRelationship(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Rels.Properties(typeID).DeleteAll(pos)
	})
}

// AllRelationshipIDs pages live relationship ids across shards, optionally
// scoped to a type.
func (g *Graph) AllRelationshipIDs(ctx context.Context, typeName string, skip, limit uint64) ([]uint64, error) {
	var typeID uint16
	if typeName != "" {
		var err error
		typeID, err = g.typeIDOf(ctx, types.KindRelationship, typeName)
		if err != nil {
			return nil, err
		}
		if typeID == 0 {
			return nil, fmt.Errorf("relationship type %q: %w", typeName, types.ErrNotFound)
		}
	}
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		if typeName == "" {
			var total uint64
			for _, c := range s.Rels.Counts() {
				total += c
			}
			return total
		}
		return s.Rels.Count(typeID)
	})
	if err != nil {
		return nil, err
	}
	windows := window(counts, skip, limit)
	var merged [][]uint64
	for i, w := range windows {
		if w.Take == 0 {
			continue
		}
		s := g.shards[i]
		wi := w
		idList, err := shard.Run(ctx, s, func() []uint64 {
			if typeName == "" {
				return s.Rels.AllIDs(wi.Skip, wi.Take)
			}
			return s.Rels.AllIDsOfType(typeID, wi.Skip, wi.Take)
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, idList)
	}
	return pageMerged(merged, 0, 0), nil
}

// AllRelationships pages live relationships.
func (g *Graph) AllRelationships(ctx context.Context, typeName string, skip, limit uint64) ([]types.Relationship, error) {
	idList, err := g.AllRelationshipIDs(ctx, typeName, skip, limit)
	if err != nil {
		return nil, err
	}
	return g.relationshipsByIDs(ctx, idList)
}
