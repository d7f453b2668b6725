package graph

import (
	"context"

	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/telemetry"
	"github.com/quiverdb/quiver/internal/types"
)

// typeFilterOn builds the group filter from relationship type names,
// resolved against the shard's replicated catalog. Must run on the shard's
// goroutine. Unknown names resolve to id 0, which no group carries.
func typeFilterOn(s *shard.Shard, relTypeNames []string) shard.TypeFilter {
	if len(relTypeNames) == 0 {
		return shard.AllTypes()
	}
	relTypeIDs := make([]uint16, 0, len(relTypeNames))
	for _, name := range relTypeNames {
		relTypeIDs = append(relTypeIDs, s.Rels.TypeID(name))
	}
	return shard.TypesOf(relTypeIDs...)
}

// NodeDegree counts the links in the selected groups. Direction and
// relationship types narrow the selection; no types means all types.
func (g *Graph) NodeDegree(ctx context.Context, id uint64, direction types.Direction, relTypeNames ...string) (uint64, error) {
	owner := g.shardOf(id)
	telemetry.TraversalServed(ctx)
	return shard.Run(ctx, owner, func() uint64 {
		degree, _ := owner.NodeDegree(id, direction, typeFilterOn(owner, relTypeNames))
		return degree
	})
}

// NodeDegreeByKey is NodeDegree addressed by (type, key).
func (g *Graph) NodeDegreeByKey(ctx context.Context, typeName, key string, direction types.Direction, relTypeNames ...string) (uint64, error) {
	id, err := g.NodeIDByKey(ctx, typeName, key)
	if err != nil || id == 0 {
		return 0, err
	}
	return g.NodeDegree(ctx, id, direction, relTypeNames...)
}

// nodeLinks collects the selected links on the owner shard.
func (g *Graph) nodeLinks(ctx context.Context, id uint64, direction types.Direction, relTypeNames []string) ([]types.Link, error) {
	owner := g.shardOf(id)
	return shard.Run(ctx, owner, func() []types.Link {
		links, _ := owner.NodeLinks(id, direction, typeFilterOn(owner, relTypeNames))
		return links
	})
}

// NodeRelationships returns the relationships behind the selected links, in
// link order (outgoing groups before incoming for both-direction queries).
func (g *Graph) NodeRelationships(ctx context.Context, id uint64, direction types.Direction, relTypeNames ...string) ([]types.Relationship, error) {
	links, err := g.nodeLinks(ctx, id, direction, relTypeNames)
	if err != nil {
		return nil, err
	}
	telemetry.TraversalServed(ctx)
	relIDs := make([]uint64, 0, len(links))
	for _, link := range links {
		relIDs = append(relIDs, link.RelationshipID)
	}
	return g.relationshipsByIDs(ctx, relIDs)
}

// NodeRelationshipsByKey is NodeRelationships addressed by (type, key).
func (g *Graph) NodeRelationshipsByKey(ctx context.Context, typeName, key string, direction types.Direction, relTypeNames ...string) ([]types.Relationship, error) {
	id, err := g.NodeIDByKey(ctx, typeName, key)
	if err != nil || id == 0 {
		return nil, err
	}
	return g.NodeRelationships(ctx, id, direction, relTypeNames...)
}

// NodeNeighbors returns the opposite endpoint of each selected link, one
// node per link, in link order.
func (g *Graph) NodeNeighbors(ctx context.Context, id uint64, direction types.Direction, relTypeNames ...string) ([]types.Node, error) {
	links, err := g.nodeLinks(ctx, id, direction, relTypeNames)
	if err != nil {
		return nil, err
	}
	telemetry.TraversalServed(ctx)
	nodeIDs := make([]uint64, 0, len(links))
	for _, link := range links {
		nodeIDs = append(nodeIDs, link.NodeID)
	}
	return g.nodesByIDs(ctx, nodeIDs)
}

// NodeNeighborsByKey is NodeNeighbors addressed by (type, key).
func (g *Graph) NodeNeighborsByKey(ctx context.Context, typeName, key string, direction types.Direction, relTypeNames ...string) ([]types.Node, error) {
	id, err := g.NodeIDByKey(ctx, typeName, key)
	if err != nil || id == 0 {
		return nil, err
	}
	return g.NodeNeighbors(ctx, id, direction, relTypeNames...)
}

// NodeConnected returns every relationship between a and b in the chosen
// direction and type filter. The scan runs on a's shard — its groups alone
// identify the connecting relationships — and the bodies are fetched from
// wherever each relationship is homed.
func (g *Graph) NodeConnected(ctx context.Context, a, b uint64, direction types.Direction, relTypeNames ...string) ([]types.Relationship, error) {
	owner := g.shardOf(a)
	relIDs, err := shard.Run(ctx, owner, func() []uint64 {
		relIDs, _ := owner.ConnectedRelIDs(a, b, direction, typeFilterOn(owner, relTypeNames))
		return relIDs
	})
	if err != nil {
		return nil, err
	}
	telemetry.TraversalServed(ctx)
	return g.relationshipsByIDs(ctx, relIDs)
}

// NodeConnectedByKeys is NodeConnected addressed by two (type, key) pairs.
func (g *Graph) NodeConnectedByKeys(ctx context.Context, aType, aKey, bType, bKey string, direction types.Direction, relTypeNames ...string) ([]types.Relationship, error) {
	a, err := g.NodeIDByKey(ctx, aType, aKey)
	if err != nil || a == 0 {
		return nil, err
	}
	b, err := g.NodeIDByKey(ctx, bType, bKey)
	if err != nil || b == 0 {
		return nil, err
	}
	return g.NodeConnected(ctx, a, b, direction, relTypeNames...)
}
