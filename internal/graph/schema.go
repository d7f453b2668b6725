package graph

import (
	"context"
	"fmt"

	"github.com/quiverdb/quiver/internal/debug"
	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/types"
)

// Schema writes originate on the authority shard and are mirrored to every
// other shard before they are acknowledged, so no shard can observe a type
// id it does not know.

// TypeAdd registers an entity type. Idempotent: re-adding an existing type
// succeeds.
func (g *Graph) TypeAdd(ctx context.Context, kind types.Kind, name string) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("type name: %w", types.ErrInvalidArgument)
	}
	_, err := g.ensureTypeID(ctx, kind, name)
	if err != nil {
		return false, err
	}
	return true, nil
}

// ensureTypeID resolves a type name to its id, allocating on the authority
// shard and propagating to the rest of the cluster on first use.
func (g *Graph) ensureTypeID(ctx context.Context, kind types.Kind, name string) (uint16, error) {
	auth := g.authority()
	typeID, err := shard.Run(ctx, auth, func() uint16 {
		if kind == types.KindRelationship {
			return auth.Rels.InsertOrGetTypeID(name)
		}
		return auth.Nodes.InsertOrGetTypeID(name)
	})
	if err != nil {
		return 0, err
	}
	if typeID == 0 {
		return 0, fmt.Errorf("type %q: %w", name, types.ErrInvalidArgument)
	}
	if _, err := peered(ctx, g, func(s *shard.Shard) bool {
		if kind == types.KindRelationship {
			return s.Rels.AddTypeID(name, typeID)
		}
		return s.Nodes.AddTypeID(name, typeID)
	}); err != nil {
		return 0, err
	}
	debug.Logf("graph %q: %s type %q -> %d", g.name, kind, name, typeID)
	return typeID, nil
}

// typeIDOf is the read path: any shard's replica answers.
func (g *Graph) typeIDOf(ctx context.Context, kind types.Kind, name string) (uint16, error) {
	auth := g.authority()
	return shard.Run(ctx, auth, func() uint16 {
		if kind == types.KindRelationship {
			return auth.Rels.TypeID(name)
		}
		return auth.Nodes.TypeID(name)
	})
}

// TypeDelete removes a type once its live count across all shards is zero.
func (g *Graph) TypeDelete(ctx context.Context, kind types.Kind, name string) (bool, error) {
	typeID, err := g.typeIDOf(ctx, kind, name)
	if err != nil || typeID == 0 {
		return false, err
	}
	counts, err := peered(ctx, g, func(s *shard.Shard) uint64 {
		if kind == types.KindRelationship {
			return s.Rels.Count(typeID)
		}
		return s.Nodes.Count(typeID)
	})
	if err != nil {
		return false, err
	}
	var total uint64
	for _, c := range counts {
		total += c
	}
	if total > 0 {
		return false, fmt.Errorf("type %q has %d live entities: %w", name, total, types.ErrInvalidArgument)
	}
	oks, err := peered(ctx, g, func(s *shard.Shard) bool {
		if kind == types.KindRelationship {
			return s.Rels.DeleteTypeID(name)
		}
		return s.Nodes.DeleteTypeID(name)
	})
	if err != nil {
		return false, err
	}
	for _, ok := range oks {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// TypesList returns the registered type names for one entity kind.
func (g *Graph) TypesList(ctx context.Context, kind types.Kind) ([]string, error) {
	auth := g.authority()
	return shard.Run(ctx, auth, func() []string {
		if kind == types.KindRelationship {
			return auth.Rels.Types()
		}
		return auth.Nodes.Types()
	})
}

// TypeGet returns the property schema of a type: property name -> data type
// name.
func (g *Graph) TypeGet(ctx context.Context, kind types.Kind, name string) (map[string]string, error) {
	typeID, err := g.typeIDOf(ctx, kind, name)
	if err != nil {
		return nil, err
	}
	if typeID == 0 {
		return nil, fmt.Errorf("type %q: %w", name, types.ErrNotFound)
	}
	auth := g.authority()
	return shard.Run(ctx, auth, func() map[string]string {
		if kind == types.KindRelationship {
			return auth.Rels.Properties(typeID).Kinds()
		}
		return auth.Nodes.Properties(typeID).Kinds()
	})
}

// CountsByType sums live entities per type name across shards.
func (g *Graph) CountsByType(ctx context.Context, kind types.Kind) (map[string]uint64, error) {
	perShard, err := peered(ctx, g, func(s *shard.Shard) map[uint16]uint64 {
		if kind == types.KindRelationship {
			return s.Rels.Counts()
		}
		return s.Nodes.Counts()
	})
	if err != nil {
		return nil, err
	}
	byID := make(map[uint16]uint64)
	for _, counts := range perShard {
		for typeID, count := range counts {
			byID[typeID] += count
		}
	}
	auth := g.authority()
	return shard.Run(ctx, auth, func() map[string]uint64 {
		out := make(map[string]uint64, len(byID))
		for typeID, count := range byID {
			var name string
			if kind == types.KindRelationship {
				name = auth.Rels.TypeName(typeID)
			} else {
				name = auth.Nodes.TypeName(typeID)
			}
			if name != "" {
				out[name] = count
			}
		}
		return out
	})
}

// PropertyAdd declares a property column on a type. The returned tag is the
// declared data type, or NullType when the name is already bound to a
// different tag.
func (g *Graph) PropertyAdd(ctx context.Context, kind types.Kind, typeName, property, dataType string) (types.DataType, error) {
	tag := types.ParseDataType(dataType)
	if tag == types.NullType {
		return types.NullType, fmt.Errorf("data type %q: %w", dataType, types.ErrInvalidArgument)
	}
	typeID, err := g.ensureTypeID(ctx, kind, typeName)
	if err != nil {
		return types.NullType, err
	}
	results, err := peered(ctx, g, func(s *shard.Shard) types.DataType {
		if kind == types.KindRelationship {
			return s.Rels.Properties(typeID).SetType(property, tag)
		}
		return s.Nodes.Properties(typeID).SetType(property, tag)
	})
	if err != nil {
		return types.NullType, err
	}
	for _, r := range results {
		if r == types.NullType {
			return types.NullType, fmt.Errorf("property %q: %w", property, types.ErrAlreadyExists)
		}
	}
	return tag, nil
}

// PropertyDelete removes the column from every shard.
func (g *Graph) PropertyDelete(ctx context.Context, kind types.Kind, typeName, property string) (bool, error) {
	typeID, err := g.typeIDOf(ctx, kind, typeName)
	if err != nil || typeID == 0 {
		return false, err
	}
	oks, err := peered(ctx, g, func(s *shard.Shard) bool {
		if kind == types.KindRelationship {
			return s.Rels.Properties(typeID).RemoveType(property)
		}
		return s.Nodes.Properties(typeID).RemoveType(property)
	})
	if err != nil {
		return false, err
	}
	for _, ok := range oks {
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
