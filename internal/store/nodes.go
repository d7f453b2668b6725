// Package store holds the per-shard storage engines: the node store with
// its type catalog, key indexes and adjacency groups, the relationship
// store with its endpoint vectors, and the shared find/filter pipeline that
// scans their property columns. Nothing in this package is safe for
// concurrent use — each shard owns one NodeStore and one RelationshipStore
// and serializes access through its task loop.
package store

import (
	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/tidwall/btree"

	"github.com/quiverdb/quiver/internal/ids"
	"github.com/quiverdb/quiver/internal/props"
	"github.com/quiverdb/quiver/internal/types"
)

// NodeStore keeps every node owned by one shard, organized by type. All
// per-type vectors (keys, adjacency, property columns) are parallel, indexed
// by the node's within-shard position.
type NodeStore struct {
	codec ids.Codec

	typeToID map[string]uint16
	idToType []string

	keyIndex   []*btree.Map[string, uint64]
	keys       [][]string
	properties []*props.Properties
	outgoing   [][][]types.Group
	incoming   [][][]types.Group
	deleted    []*roaring64.Bitmap
}

// NewNodeStore reserves type id 0 as the empty sentinel.
func NewNodeStore(codec ids.Codec) *NodeStore {
	return &NodeStore{
		codec:      codec,
		typeToID:   map[string]uint16{"": 0},
		idToType:   []string{""},
		keyIndex:   []*btree.Map[string, uint64]{nil},
		keys:       [][]string{nil},
		properties: []*props.Properties{nil},
		outgoing:   [][][]types.Group{nil},
		incoming:   [][][]types.Group{nil},
		deleted:    []*roaring64.Bitmap{nil},
	}
}

func (s *NodeStore) Codec() ids.Codec { return s.codec }

// AddTypeID installs a replicated type id allocated by the authority shard.
// It fails if the name or the id is already bound to something else.
func (s *NodeStore) AddTypeID(name string, typeID uint16) bool {
	if name == "" || typeID == 0 {
		return false
	}
	if existing, ok := s.typeToID[name]; ok {
		return existing == typeID
	}
	for uint16(len(s.idToType)) <= typeID {
		s.idToType = append(s.idToType, "")
		s.keyIndex = append(s.keyIndex, nil)
		s.keys = append(s.keys, nil)
		s.properties = append(s.properties, nil)
		s.outgoing = append(s.outgoing, nil)
		s.incoming = append(s.incoming, nil)
		s.deleted = append(s.deleted, nil)
	}
	if s.idToType[typeID] != "" {
		return false
	}
	s.typeToID[name] = typeID
	s.idToType[typeID] = name
	s.keyIndex[typeID] = btree.NewMap[string, uint64](32)
	s.properties[typeID] = props.New()
	s.deleted[typeID] = roaring64.New()
	return true
}

// InsertOrGetTypeID allocates the next id on first use. Only the authority
// shard calls this; other shards receive the result through AddTypeID.
func (s *NodeStore) InsertOrGetTypeID(name string) uint16 {
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

// TypeID returns 0 when the name is unknown on this shard.
func (s *NodeStore) TypeID(name string) uint16 {
	return s.typeToID[name]
}

func (s *NodeStore) TypeName(typeID uint16) string {
	if int(typeID) < len(s.idToType) {
		return s.idToType[typeID]
	}
	return ""
}

func (s *NodeStore) ValidTypeID(typeID uint16) bool {
	return typeID > 0 && int(typeID) < len(s.idToType) && s.idToType[typeID] != ""
}

// DeleteTypeID succeeds only when no live node of the type remains. The
// type's storage is reset but the id is never handed out again.
func (s *NodeStore) DeleteTypeID(name string) bool {
	typeID, ok := s.typeToID[name]
	if !ok || typeID == 0 {
		return false
	}
	if s.Count(typeID) > 0 {
		return false
	}
	s.keyIndex[typeID] = btree.NewMap[string, uint64](32)
	s.keys[typeID] = nil
	s.properties[typeID] = props.New()
	s.outgoing[typeID] = nil
	s.incoming[typeID] = nil
	s.deleted[typeID] = roaring64.New()
	return true
}

// Types lists the live type names.
func (s *NodeStore) Types() []string {
	out := make([]string, 0, len(s.idToType)-1)
	for _, name := range s.idToType[1:] {
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// TypeIDs lists the live type ids.
func (s *NodeStore) TypeIDs() []uint16 {
	out := make([]uint16, 0, len(s.idToType)-1)
	for id, name := range s.idToType {
		if id > 0 && name != "" {
			out = append(out, uint16(id))
		}
	}
	return out
}

// Count is the live node count for one type on this shard.
func (s *NodeStore) Count(typeID uint16) uint64 {
	if !s.ValidTypeID(typeID) {
		return 0
	}
	return uint64(s.keyIndex[typeID].Len())
}

// Counts maps type id to live count for every type on this shard.
func (s *NodeStore) Counts() map[uint16]uint64 {
	out := make(map[uint16]uint64)
	for _, typeID := range s.TypeIDs() {
		out[typeID] = s.Count(typeID)
	}
	return out
}

// Properties exposes the property store of one type for the find pipeline
// and schema operations.
func (s *NodeStore) Properties(typeID uint16) *props.Properties {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	return s.properties[typeID]
}

func (s *NodeStore) DeletedMap(typeID uint16) *roaring64.Bitmap {
	return s.deleted[typeID]
}

// ValidNodeID reports whether (typeID, pos) addresses a live node.
func (s *NodeStore) ValidNodeID(typeID uint16, pos uint64) bool {
	if !s.ValidTypeID(typeID) {
		return false
	}
	return pos < uint64(len(s.keys[typeID])) && !s.deleted[typeID].Contains(pos)
}

// AddEmpty creates a node with no properties. Duplicate keys within a type
// fail; freed positions are reused lowest-first before the tail grows.
func (s *NodeStore) AddEmpty(typeID uint16, key string) (uint64, error) {
	if !s.ValidTypeID(typeID) {
		return 0, types.ErrInvalidArgument
	}
	index := s.keyIndex[typeID]
	if _, ok := index.Get(key); ok {
		return 0, types.ErrAlreadyExists
	}
	var pos uint64
	if !s.deleted[typeID].IsEmpty() {
		pos = s.deleted[typeID].Minimum()
		s.deleted[typeID].Remove(pos)
		s.keys[typeID][pos] = key
		s.outgoing[typeID][pos] = nil
		s.incoming[typeID][pos] = nil
	} else {
		pos = uint64(len(s.keys[typeID]))
		s.keys[typeID] = append(s.keys[typeID], key)
		s.outgoing[typeID] = append(s.outgoing[typeID], nil)
		s.incoming[typeID] = append(s.incoming[typeID], nil)
	}
	external, err := s.codec.Pack(typeID, pos)
	if err != nil {
		s.keys[typeID][pos] = ""
		s.deleted[typeID].Add(pos)
		return 0, err
	}
	index.Set(key, pos)
	return external, nil
}

// Add creates the node and ingests its JSON properties. A property batch
// that does not fully apply leaves the node in place with the slots that did
// coerce; the error reports the partial failure.
func (s *NodeStore) Add(typeID uint16, key string, properties []byte) (uint64, error) {
	external, err := s.AddEmpty(typeID, key)
	if err != nil {
		return 0, err
	}
	if len(properties) > 0 {
		if !s.properties[typeID].SetAllFromJSON(s.codec.PosOf(external), properties) {
			return external, types.ErrPropertyCoercion
		}
	}
	return external, nil
}

// PosOfKey resolves a key to its position; ok is false for unknown keys.
func (s *NodeStore) PosOfKey(typeID uint16, key string) (uint64, bool) {
	if !s.ValidTypeID(typeID) {
		return 0, false
	}
	return s.keyIndex[typeID].Get(key)
}

// IDOfKey resolves (type, key) to the external id, 0 when absent.
func (s *NodeStore) IDOfKey(typeID uint16, key string) uint64 {
	pos, ok := s.PosOfKey(typeID, key)
	if !ok {
		return 0
	}
	external, err := s.codec.Pack(typeID, pos)
	if err != nil {
		return 0
	}
	return external
}

// Key returns the key stored at a live position.
func (s *NodeStore) Key(typeID uint16, pos uint64) string {
	if !s.ValidNodeID(typeID, pos) {
		return ""
	}
	return s.keys[typeID][pos]
}

// Node materializes the full entity by value.
func (s *NodeStore) Node(typeID uint16, pos uint64) types.Node {
	if !s.ValidNodeID(typeID, pos) {
		return types.Node{}
	}
	external, err := s.codec.Pack(typeID, pos)
	if err != nil {
		return types.Node{}
	}
	return types.Node{
		ID:         external,
		Type:       s.idToType[typeID],
		Key:        s.keys[typeID][pos],
		Properties: s.properties[typeID].GetAll(pos),
	}
}

// NodeByID materializes a node from its external id.
func (s *NodeStore) NodeByID(id uint64) types.Node {
	return s.Node(s.codec.TypeOf(id), s.codec.PosOf(id))
}

// RemoveLocal erases the node's own storage: key index entry, property row,
// groups, and the position joins the free list. Detaching the node's
// relationships is the shard's job — it happens before this call.
func (s *NodeStore) RemoveLocal(typeID uint16, pos uint64) bool {
	if !s.ValidNodeID(typeID, pos) {
		return false
	}
	s.keyIndex[typeID].Delete(s.keys[typeID][pos])
	s.keys[typeID][pos] = ""
	s.properties[typeID].DeleteAll(pos)
	s.outgoing[typeID][pos] = nil
	s.incoming[typeID][pos] = nil
	s.deleted[typeID].Add(pos)
	return true
}

// Outgoing returns the outgoing groups of a live node, nil otherwise.
func (s *NodeStore) Outgoing(typeID uint16, pos uint64) []types.Group {
	if !s.ValidNodeID(typeID, pos) {
		return nil
	}
	return s.outgoing[typeID][pos]
}

// Incoming returns the incoming groups of a live node, nil otherwise.
func (s *NodeStore) Incoming(typeID uint16, pos uint64) []types.Group {
	if !s.ValidNodeID(typeID, pos) {
		return nil
	}
	return s.incoming[typeID][pos]
}

// AttachOutgoing appends (to, rel) to the node's outgoing group for the
// relationship type, creating the group on first use.
func (s *NodeStore) AttachOutgoing(typeID uint16, pos uint64, relTypeID uint16, link types.Link) bool {
	if !s.ValidNodeID(typeID, pos) {
		return false
	}
	s.outgoing[typeID][pos] = attach(s.outgoing[typeID][pos], relTypeID, link)
	return true
}

// AttachIncoming appends (from, rel) to the node's incoming group.
func (s *NodeStore) AttachIncoming(typeID uint16, pos uint64, relTypeID uint16, link types.Link) bool {
	if !s.ValidNodeID(typeID, pos) {
		return false
	}
	s.incoming[typeID][pos] = attach(s.incoming[typeID][pos], relTypeID, link)
	return true
}

// DetachOutgoing removes the link carrying relID from the outgoing group.
func (s *NodeStore) DetachOutgoing(typeID uint16, pos uint64, relTypeID uint16, relID uint64) bool {
	if !s.ValidNodeID(typeID, pos) {
		return false
	}
	return detach(s.outgoing[typeID][pos], relTypeID, relID)
}

// DetachIncoming removes the link carrying relID from the incoming group.
func (s *NodeStore) DetachIncoming(typeID uint16, pos uint64, relTypeID uint16, relID uint64) bool {
	if !s.ValidNodeID(typeID, pos) {
		return false
	}
	return detach(s.incoming[typeID][pos], relTypeID, relID)
}

func attach(groups []types.Group, relTypeID uint16, link types.Link) []types.Group {
	for i := range groups {
		if groups[i].RelTypeID == relTypeID {
			groups[i].Links = append(groups[i].Links, link)
			return groups
		}
	}
	return append(groups, types.Group{RelTypeID: relTypeID, Links: []types.Link{link}})
}

func detach(groups []types.Group, relTypeID uint16, relID uint64) bool {
	for i := range groups {
		if groups[i].RelTypeID != relTypeID {
			continue
		}
		links := groups[i].Links
		for j := range links {
			if links[j].RelationshipID == relID {
				groups[i].Links = append(links[:j], links[j+1:]...)
				return true
			}
		}
	}
	return false
}

// AllIDs pages live node ids across every type in (type, position) order.
func (s *NodeStore) AllIDs(skip, limit uint64) []uint64 {
	var out []uint64
	pg := pager{skip: skip, limit: limit}
	for _, typeID := range s.TypeIDs() {
		for pos := uint64(0); pos < uint64(len(s.keys[typeID])); pos++ {
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

// AllIDsOfType pages live node ids of one type in position order.
func (s *NodeStore) AllIDsOfType(typeID uint16, skip, limit uint64) []uint64 {
	if !s.ValidTypeID(typeID) {
		return nil
	}
	var out []uint64
	pg := pager{skip: skip, limit: limit}
	for pos := uint64(0); pos < uint64(len(s.keys[typeID])); pos++ {
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

// AllNodes pages live nodes across every type.
func (s *NodeStore) AllNodes(skip, limit uint64) []types.Node {
	return s.nodesOf(s.AllIDs(skip, limit))
}

// AllNodesOfType pages live nodes of one type.
func (s *NodeStore) AllNodesOfType(typeID uint16, skip, limit uint64) []types.Node {
	return s.nodesOf(s.AllIDsOfType(typeID, skip, limit))
}

func (s *NodeStore) nodesOf(idList []uint64) []types.Node {
	out := make([]types.Node, 0, len(idList))
	for _, id := range idList {
		out = append(out, s.NodeByID(id))
	}
	return out
}
