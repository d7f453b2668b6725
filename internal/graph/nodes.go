package graph

import (
	"context"
	"fmt"

	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/telemetry"
	"github.com/quiverdb/quiver/internal/types"
)

// NodeAddEmpty creates a node with its key and no properties. The owning shard comes
// from the (type, key) hash; the external id it returns encodes that shard
// forever.
func (g *Graph) NodeAddEmpty(ctx context.Context, typeName, key string) (uint64, error) {
	return g.nodeAdd(ctx, typeName, key, nil)
}

// NodeAdd creates a node and ingests its JSON properties.
func (g *Graph) NodeAdd(ctx context.Context, typeName, key string, properties []byte) (uint64, error) {
	return g.nodeAdd(ctx, typeName, key, properties)
}

type addResult struct {
	id  uint64
	err error
}

func (g *Graph) nodeAdd(ctx context.Context, typeName, key string, properties []byte) (uint64, error) {
	if typeName == "" || key == "" {
		return 0, fmt.Errorf("node type and key: %w", types.ErrInvalidArgument)
	}
	typeID, err := g.ensureTypeID(ctx, types.KindNode, typeName)
	if err != nil {
		return 0, err
	}
	owner := g.shardForKey(typeName, key)
	res, err := shard.Run(ctx, owner, func() addResult {
		id, err := owner.Nodes.Add(typeID, key, properties)
		return addResult{id: id, err: err}
	})
	if err != nil {
		return 0, err
	}
	if res.err != nil && res.id == 0 {
		return 0, fmt.Errorf("add node %s/%s: %w", typeName, key, res.err)
	}
	telemetry.NodeCreated(ctx)
	return res.id, res.err
}

// NodeGet fetches a node by external id; a zero node means not found.
func (g *Graph) NodeGet(ctx context.Context, id uint64) (types.Node, error) {
	owner := g.shardOf(id)
	return shard.Run(ctx, owner, func() types.Node {
		return owner.Nodes.NodeByID(id)
	})
}

// NodeGetByKey fetches a node by (type, key).
func (g *Graph) NodeGetByKey(ctx context.Context, typeName, key string) (types.Node, error) {
	owner := g.shardForKey(typeName, key)
	return shard.Run(ctx, owner, func() types.Node {
		typeID := owner.Nodes.TypeID(typeName)
		pos, ok := owner.Nodes.PosOfKey(typeID, key)
		if !ok {
			return types.Node{}
		}
		return owner.Nodes.Node(typeID, pos)
	})
}

// NodeIDByKey resolves (type, key) to an external id, 0 when absent.
func (g *Graph) NodeIDByKey(ctx context.Context, typeName, key string) (uint64, error) {
	owner := g.shardForKey(typeName, key)
	return shard.Run(ctx, owner, func() uint64 {
		return owner.Nodes.IDOfKey(owner.Nodes.TypeID(typeName), key)
	})
}

// NodeRemove deletes a node and cascades through every incident
// relationship: each one is tombstoned on its home shard and detached from
// the surviving endpoint's groups before the node's own storage is erased.
func (g *Graph) NodeRemove(ctx context.Context, id uint64) (bool, error) {
	owner := g.shardOf(id)
	plan, err := shard.Run(ctx, owner, func() shard.RemovalPlan {
		plan, _ := owner.PlanNodeRemoval(id)
		return plan
	})
	if err != nil {
		return false, err
	}
	if plan.NodeTypeID == 0 {
		return false, nil
	}
	for idx, relIDs := range plan.RelsByShard {
		s := g.shards[idx]
		if _, err := shard.Run(ctx, s, func() struct{} {
			s.TombstoneRels(relIDs)
			return struct{}{}
		}); err != nil {
			return false, err
		}
	}
	for idx, detaches := range plan.DetachByShard {
		s := g.shards[idx]
		if _, err := shard.Run(ctx, s, func() struct{} {
			s.ApplyDetaches(detaches)
			return struct{}{}
		}); err != nil {
			return false, err
		}
	}
	removed, err := shard.Run(ctx, owner, func() bool {
		return owner.FinishNodeRemoval(plan)
	})
	if err != nil {
		return false, err
	}
	if removed {
		telemetry.NodeRemoved(ctx)
	}
	return removed, nil
}

// NodeRemoveByKey resolves the id and removes the node.
func (g *Graph) NodeRemoveByKey(ctx context.Context, typeName, key string) (bool, error) {
	id, err := g.NodeIDByKey(ctx, typeName, key)
	if err != nil || id == 0 {
		return false, err
	}
	return g.NodeRemove(ctx, id)
}

// onNode runs fn on the node's shard with its resolved coordinates; fn
// never runs for a dead id and the zero T comes back instead.
func onNode[T any](ctx context.Context, g *Graph, id uint64, fn func(s *shard.Shard, typeID uint16, pos uint64) T) (T, error) {
	owner := g.shardOf(id)
	return shard.Run(ctx, owner, func() T {
		var zero T
		typeID := owner.Codec().TypeOf(id)
		pos := owner.Codec().PosOf(id)
		if !owner.Nodes.ValidNodeID(typeID, pos) {
			return zero
		}
		return fn(owner, typeID, pos)
	})
}

// NodePropertyGet returns one property value, nil when unset.
func (g *Graph) NodePropertyGet(ctx context.Context, id uint64, property string) (any, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) any {
		return s.Nodes.Properties(typeID).Get(property, pos)
	})
}

// NodePropertySet writes one typed property value.
func (g *Graph) NodePropertySet(ctx context.Context, id uint64, property string, value any) (bool, error) {
	normalized := types.Normalize(value)
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Nodes.Properties(typeID).SetValue(property, pos, normalized)
	})
}

// NodePropertySetFromJSON coerces one raw JSON value into the column.
func (g *Graph) NodePropertySetFromJSON(ctx context.Context, id uint64, property string, raw []byte) (bool, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Nodes.Properties(typeID).SetFromJSON(property, pos, raw)
	})
}

// NodePropertyDelete tombstones one property slot.
func (g *Graph) NodePropertyDelete(ctx context.Context, id uint64, property string) (bool, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Nodes.Properties(typeID).Delete(property, pos)
	})
}

// NodePropertiesGet returns the full property row.
func (g *Graph) NodePropertiesGet(ctx context.Context, id uint64) (map[string]any, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) map[string]any {
		return s.Nodes.Properties(typeID).GetAll(pos)
	})
}

// NodePropertiesSetFromJSON ingests a JSON object into the row. Partial
// coercion failures apply what they can and report false.
func (g *Graph) NodePropertiesSetFromJSON(ctx context.Context, id uint64, raw []byte) (bool, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Nodes.Properties(typeID).SetAllFromJSON(pos, raw)
	})
}

// NodePropertiesReset clears the row, then ingests the object.
func (g *Graph) NodePropertiesReset(ctx context.Context, id uint64, raw []byte) (bool, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		s.Nodes.Properties(typeID).DeleteAll(pos)
		return s.Nodes.Properties(typeID).SetAllFromJSON(pos, raw)
	})
}

// NodePropertiesDelete tombstones the whole row.
func (g *Graph) NodePropertiesDelete(ctx context.Context, id uint64) (bool, error) {
	return onNode(ctx, g, id, func(s *shard.Shard, typeID uint16, pos uint64) bool {
		return s.Nodes.Properties(typeID).DeleteAll(pos)
	})
}

// AllNodeIDs pages live node ids across all shards, optionally scoped to a
// type. Results are deterministic: shard order, then type, then position.
func (g *Graph) AllNodeIDs(ctx context.Context, typeName string, skip, limit uint64) ([]uint64, error) {
	typeID, err := g.resolveOptionalNodeType(ctx, typeName)
	if err != nil {
		return nil, err
	}
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		if typeName == "" {
			var total uint64
			for _, c := range s.Nodes.Counts() {
				total += c
			}
			return total
		}
		return s.Nodes.Count(typeID)
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
				return s.Nodes.AllIDs(wi.Skip, wi.Take)
			}
			return s.Nodes.AllIDsOfType(typeID, wi.Skip, wi.Take)
		})
		if err != nil {
			return nil, err
		}
		merged = append(merged, idList)
	}
	return pageMerged(merged, 0, 0), nil
}

// AllNodes pages live nodes; same ordering contract as AllNodeIDs.
func (g *Graph) AllNodes(ctx context.Context, typeName string, skip, limit uint64) ([]types.Node, error) {
	idList, err := g.AllNodeIDs(ctx, typeName, skip, limit)
	if err != nil {
		return nil, err
	}
	return g.nodesByIDs(ctx, idList)
}

func (g *Graph) resolveOptionalNodeType(ctx context.Context, typeName string) (uint16, error) {
	if typeName == "" {
		return 0, nil
	}
	typeID, err := g.typeIDOf(ctx, types.KindNode, typeName)
	if err != nil {
		return 0, err
	}
	if typeID == 0 {
		return 0, fmt.Errorf("node type %q: %w", typeName, types.ErrNotFound)
	}
	return typeID, nil
}
