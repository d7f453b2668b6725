package store

import "github.com/quiverdb/quiver/internal/types"

// Find scans a whole property column; Filter starts from a caller-supplied
// id list. Both come in count, id, and entity shapes.

func (s *NodeStore) FindCount(typeID uint16, property string, op types.Operation, value any) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return findCount(s.properties[typeID], s.deleted[typeID], property, op, value)
}

func (s *NodeStore) FindIDs(typeID uint16, property string, op types.Operation, value any, skip, limit uint64) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return findIDs(s.properties[typeID], s.deleted[typeID], s.codec, typeID, property, op, value, skip, limit)
}

func (s *NodeStore) FindNodes(typeID uint16, property string, op types.Operation, value any, skip, limit uint64) []types.Node {
	return s.nodesOf(s.FindIDs(typeID, property, op, value, skip, limit))
}

func (s *NodeStore) FilterCount(idList []uint64, typeID uint16, property string, op types.Operation, value any) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return filterCount(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value)
}

func (s *NodeStore) FilterIDs(idList []uint64, typeID uint16, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return filterIDs(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value, skip, limit, order)
}

func (s *NodeStore) FilterNodes(idList []uint64, typeID uint16, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) []types.Node {
	return s.nodesOf(s.FilterIDs(idList, typeID, property, op, value, skip, limit, order))
}

func (s *RelationshipStore) FindCount(typeID uint16, property string, op types.Operation, value any) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return findCount(s.properties[typeID], s.deleted[typeID], property, op, value)
}

func (s *RelationshipStore) FindIDs(typeID uint16, property string, op types.Operation, value any, skip, limit uint64) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return findIDs(s.properties[typeID], s.deleted[typeID], s.codec, typeID, property, op, value, skip, limit)
}

func (s *RelationshipStore) FindRelationships(typeID uint16, property string, op types.Operation, value any, skip, limit uint64) []types.Relationship {
	return s.relationshipsOf(s.FindIDs(typeID, property, op, value, skip, limit))
}

func (s *RelationshipStore) FilterCount(idList []uint64, typeID uint16, property string, op types.Operation, value any) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return filterCount(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value)
}

func (s *RelationshipStore) FilterIDs(idList []uint64, typeID uint16, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return filterIDs(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value, skip, limit, order)
}

func (s *RelationshipStore) FilterRelationships(idList []uint64, typeID uint16, property string, op types.Operation, value any, skip, limit uint64, order types.Sort) []types.Relationship {
	return s.relationshipsOf(s.FilterIDs(idList, typeID, property, op, value, skip, limit, order))
}

// FilterHits exposes matching (id, value) pairs for the cross-shard sorted
// merge; rows whose property is null are excluded.
func (s *NodeStore) FilterHits(idList []uint64, typeID uint16, property string, op types.Operation, value any) []IDValue {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return filterHits(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value)
}

func (s *RelationshipStore) FilterHits(idList []uint64, typeID uint16, property string, op types.Operation, value any) []IDValue {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return filterHits(s.properties[typeID], s.deleted[typeID], s.codec, idList, property, op, value)
}
