package store

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/quiverdb/quiver/internal/ids"
	"github.com/quiverdb/quiver/internal/props"
	"github.com/quiverdb/quiver/internal/types"
)

// RelationshipStore keeps every relationship homed on one shard. A
// relationship lives on the shard of its starting node; the endpoint vectors
// are parallel per-type arrays indexed by within-shard position.
type RelationshipStore struct {
	codec ids.Codec

	typeToID map[string]uint16
	idToType []string

	startingNodeIDs [][]uint64
	endingNodeIDs   [][]uint64
	properties      []*props.Properties
	deleted         []*roaring64.Bitmap
	liveCounts      []uint64
}

func NewRelationshipStore(codec ids.Codec) *RelationshipStore {
	return &RelationshipStore{
		codec:           codec,
		typeToID:        map[string]uint16{"": 0},
		idToType:        []string{""},
		startingNodeIDs: [][]uint64{nil},
		endingNodeIDs:   [][]uint64{nil},
		properties:      []*props.Properties{nil},
		deleted:         []*roaring64.Bitmap{nil},
		liveCounts:      []uint64{0},
	}
}

func (s *RelationshipStore) Codec() ids.Codec { return s.codec }

// AddTypeID installs a replicated relationship type id. Same contract as the
// node catalog: names and ids bind once.
func (s *RelationshipStore) AddTypeID(name string, typeID uint16) bool {
	if name == "" || typeID == 0 {
		return false
	}
	if existing, ok := s.typeToID[name]; ok {
		return existing == typeID
	}
	for uint16(len(s.idToType)) <= typeID {
		s.idToType = append(s.idToType, "")
		s.startingNodeIDs = append(s.startingNodeIDs, nil)
		s.endingNodeIDs = append(s.endingNodeIDs, nil)
		s.properties = append(s.properties, nil)
		s.deleted = append(s.deleted, nil)
		s.liveCounts = append(s.liveCounts, 0)
	}
	if s.idToType[typeID] != "" {
		return false
	}
	s.typeToID[name] = typeID
	s.idToType[typeID] = name
	s.properties[typeID] = props.New()
	s.deleted[typeID] = roaring64.New()
	return true
}

func (s *RelationshipStore) InsertOrGetTypeID(name string) uint16 {
	if name == "" {
		return 0
	}
	if id, ok := s.typeToID[name]; ok {
		return id
	}
	id := uint16(len(s.idToType))
	if !s.AddTypeID(name, id) {
		return 0
	}
	return id
}

func (s *RelationshipStore) TypeID(name string) uint16 {
	return s.typeToID[name]
}

func (s *RelationshipStore) TypeName(typeID uint16) string {
	if int(typeID) < len(s.idToType) {
		return s.idToType[typeID]
	}
	return ""
}

func (s *RelationshipStore) ValidTypeID(typeID uint16) bool {
	return typeID > 0 && int(typeID) < len(s.idToType) && s.idToType[typeID] != ""
}

func (s *RelationshipStore) DeleteTypeID(name string) bool {
	typeID, ok := s.typeToID[name]
	if !ok || typeID == 0 {
		return false
	}
	if s.liveCounts[typeID] > 0 {
		return false
	}
	s.startingNodeIDs[typeID] = nil
	s.endingNodeIDs[typeID] = nil
	s.properties[typeID] = props.New()
	s.deleted[typeID] = roaring64.New()
	return true
}

func (s *RelationshipStore) Types() []string {
	out := make([]string, 0, len(s.idToType)-1)
	for _, name := range s.idToType[1:] {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

func (s *RelationshipStore) TypeIDs() []uint16 {
	out := make([]uint16, 0, len(s.idToType)-1)
	for id, name := range s.idToType {
		if id > 0 && name != "" {
			out = append(out, uint16(id))
		}
	}
	return out
}

func (s *RelationshipStore) Count(typeID uint16) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return s.liveCounts[typeID]
}

func (s *RelationshipStore) Counts() map[uint16]uint64 {
	out := make(map[uint16]uint64)
	for _, typeID := range s.TypeIDs() {
		out[typeID] = s.liveCounts[typeID]
	}
	return out
}

func (s *RelationshipStore) Properties(typeID uint16) *props.Properties {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return s.properties[typeID]
}

func (s *RelationshipStore) DeletedMap(typeID uint16) *roaring64.Bitmap {
	return s.deleted[typeID]
}

func (s *RelationshipStore) ValidRelationshipID(typeID uint16, pos uint64) bool {
	if !s.ValidTypeID(typeID) {
		return false
	}
	return pos < uint64(len(s.startingNodeIDs[typeID])) && !s.deleted[typeID].Contains(pos)
}

// Add allocates a position (reusing the lowest freed one), records the
// endpoints, and returns the external id. Splicing the adjacency links on
// the endpoint nodes is the shard's job.
func (s *RelationshipStore) Add(typeID uint16, fromID, toID uint64) (uint64, error) {
	if !s.ValidTypeID(typeID) {
		return 0, types.ErrInvalidArgument
	}
	var pos uint64
	if !s.deleted[typeID].IsEmpty() {
		pos = s.deleted[typeID].Minimum()
		s.deleted[typeID].Remove(pos)
		s.startingNodeIDs[typeID][pos] = fromID
		s.endingNodeIDs[typeID][pos] = toID
	} else {
		pos = uint64(len(s.startingNodeIDs[typeID]))
		s.startingNodeIDs[typeID] = append(s.startingNodeIDs[typeID], fromID)
		s.endingNodeIDs[typeID] = append(s.endingNodeIDs[typeID], toID)
	}
	external, err := s.codec.Pack(typeID, pos)
	if err != nil {
		s.deleted[typeID].Add(pos)
		return 0, err
	}
	s.liveCounts[typeID]++
	return external, nil
}

// RemoveLocal tombstones the relationship's own storage. The endpoint
// groups are detached by the shard before this call.
func (s *RelationshipStore) RemoveLocal(typeID uint16, pos uint64) bool {
	if !s.ValidRelationshipID(typeID, pos) {
		return false
	}
	s.properties[typeID].DeleteAll(pos)
	s.deleted[typeID].Add(pos)
	s.liveCounts[typeID]--
	return true
}

// Endpoints returns (from, to) for a live relationship.
func (s *RelationshipStore) Endpoints(typeID uint16, pos uint64) (uint64, uint64, bool) {
	if !s.ValidRelationshipID(typeID, pos) {
		return 0, 0, false
	}
	return s.startingNodeIDs[typeID][pos], s.endingNodeIDs[typeID][pos], true
}

// Relationship materializes the full entity by value.
func (s *RelationshipStore) Relationship(typeID uint16, pos uint64) types.Relationship {
	from, to, ok := s.Endpoints(typeID, pos)
	if !ok {
		return types.Relationship{}
	}
	external, err := s.codec.Pack(typeID, pos)
	if err != nil {
		return types.Relationship{}
	}
	return types.Relationship{
		ID:             external,
		Type:           s.idToType[typeID],
		StartingNodeID: from,
		EndingNodeID:   to,
		Properties:     s.properties[typeID].GetAll(pos),
	}
}

func (s *RelationshipStore) RelationshipByID(id uint64) types.Relationship {
	return s.Relationship(s.codec.TypeOf(id), s.codec.PosOf(id))
}

// AllIDs pages live relationship ids across every type.
func (s *RelationshipStore) AllIDs(skip, limit uint64) []uint64 {
	var out []uint64
	pg := pager{skip: skip, limit: limit}
	for _, typeID := range s.TypeIDs() {
		for pos := uint64(0); pos < uint64(len(s.startingNodeIDs[typeID])); pos++ {
			if pg.full() {
				return out
			}
			if s.deleted[typeID].Contains(pos) {
				continue
			}
			if pg.take() {
				if external, err := s.codec.Pack(typeID, pos); err == nil {
					out = append(out, external)
				}
			}
		}
	}
	return out
}

// AllIDsOfType pages live relationship ids of one type in position order.
func (s *RelationshipStore) AllIDsOfType(typeID uint16, skip, limit uint64) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	var out []uint64
	pg := pager{skip: skip, limit: limit}
	for pos := uint64(0); pos < uint64(len(s.startingNodeIDs[typeID])); pos++ {
		if pg.full() {
			return out
		}
		if s.deleted[typeID].Contains(pos) {
			continue
		}
		if pg.take() {
			if external, err := s.codec.Pack(typeID, pos); err == nil {
				out = append(out, external)
			}
		}
	}
	return out
}

func (s *RelationshipStore) AllRelationships(skip, limit uint64) []types.Relationship {
	return s.relationshipsOf(s.AllIDs(skip, limit))
}

func (s *RelationshipStore) AllRelationshipsOfType(typeID uint16, skip, limit uint64) []types.Relationship {
	return s.relationshipsOf(s.AllIDsOfType(typeID, skip, limit))
}

func (s *RelationshipStore) relationshipsOf(idList []uint64) []types.Relationship {
	out := make([]types.Relationship, 0, len(idList))
	for _, id := range idList {
		out = append(out, s.RelationshipByID(id))
	}
	return out
}
