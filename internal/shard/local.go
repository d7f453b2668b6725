package shard

import (
	"github.com/quiverdb/quiver/internal/types"
)

// Composite operations executed inside a shard task. They combine store
// mutations that must land together; the graph layer sequences the
// cross-shard halves.

// Detach names one adjacency-group edit on some node: remove the link that
// carries RelID from the node's group for RelTypeID.
type Detach struct {
	NodeID    uint64
	RelTypeID uint16
	RelID     uint64
	Incoming  bool
}

// RemovalPlan is what cascading a node delete requires from the rest of the
// cluster: relationships to tombstone grouped by their home shard, and
// group edits on the surviving endpoints grouped by their shard.
type RemovalPlan struct {
	NodeTypeID    uint16
	NodePos       uint64
	RelsByShard   map[int][]uint64
	DetachByShard map[int][]Detach
}

// PlanNodeRemoval walks both adjacency sides of a node and builds the
// cascade plan. Links that point back at the node itself need no detach —
// its groups disappear with it.
func (s *Shard) PlanNodeRemoval(id uint64) (RemovalPlan, bool) {
	typeID := s.codec.TypeOf(id)
	pos := s.codec.PosOf(id)
	if !s.Nodes.ValidNodeID(typeID, pos) {
		return RemovalPlan{}, false
	}
	plan := RemovalPlan{
		NodeTypeID:    typeID,
		NodePos:       pos,
		RelsByShard:   make(map[int][]uint64),
		DetachByShard: make(map[int][]Detach),
	}
	for _, group := range s.Nodes.Outgoing(typeID, pos) {
		for _, link := range group.Links {
			home := s.codec.ShardOf(link.RelationshipID)
			plan.RelsByShard[home] = append(plan.RelsByShard[home], link.RelationshipID)
			if link.NodeID == id {
				continue
			}
			plan.DetachByShard[s.codec.ShardOf(link.NodeID)] = append(
				plan.DetachByShard[s.codec.ShardOf(link.NodeID)],
				Detach{NodeID: link.NodeID, RelTypeID: group.RelTypeID, RelID: link.RelationshipID, Incoming: true})
		}
	}
	for _, group := range s.Nodes.Incoming(typeID, pos) {
		for _, link := range group.Links {
			home := s.codec.ShardOf(link.RelationshipID)
			plan.RelsByShard[home] = append(plan.RelsByShard[home], link.RelationshipID)
			if link.NodeID == id {
				continue
			}
			plan.DetachByShard[s.codec.ShardOf(link.NodeID)] = append(
				plan.DetachByShard[s.codec.ShardOf(link.NodeID)],
				Detach{NodeID: link.NodeID, RelTypeID: group.RelTypeID, RelID: link.RelationshipID, Incoming: false})
		}
	}
	return plan, true
}

// ApplyDetaches edits local nodes' groups per the cascade plan.
func (s *Shard) ApplyDetaches(detaches []Detach) {
	for _, d := range detaches {
		typeID := s.codec.TypeOf(d.NodeID)
		pos := s.codec.PosOf(d.NodeID)
		if d.Incoming {
			s.Nodes.DetachIncoming(typeID, pos, d.RelTypeID, d.RelID)
		} else {
			s.Nodes.DetachOutgoing(typeID, pos, d.RelTypeID, d.RelID)
		}
	}
}

// TombstoneRels marks local relationships deleted without touching any
// groups; the plan has already scheduled the group edits.
func (s *Shard) TombstoneRels(relIDs []uint64) {
	for _, relID := range relIDs {
		s.Rels.RemoveLocal(s.codec.TypeOf(relID), s.codec.PosOf(relID))
	}
}

// FinishNodeRemoval erases the node itself.
func (s *Shard) FinishNodeRemoval(plan RemovalPlan) bool {
	return s.Nodes.RemoveLocal(plan.NodeTypeID, plan.NodePos)
}

// AddRelationshipLocal allocates the relationship on this shard (the home
// of the starting node), ingests properties, and attaches the outgoing
// link. Returns the relationship id and an error per the add contract; the
// incoming link on the ending node is not attached here. A property
// batch that does not fully coerce keeps the relationship and reports
// ErrPropertyCoercion.
func (s *Shard) AddRelationshipLocal(relTypeID uint16, fromID, toID uint64, properties []byte) (uint64, error) {
	fromType := s.codec.TypeOf(fromID)
	fromPos := s.codec.PosOf(fromID)
	if !s.Nodes.ValidNodeID(fromType, fromPos) {
		return 0, types.ErrNotFound
	}
	relID, err := s.Rels.Add(relTypeID, fromID, toID)
	if err != nil {
		return 0, err
	}
	var propErr error
	if len(properties) > 0 {
		if !s.Rels.Properties(relTypeID).SetAllFromJSON(s.codec.PosOf(relID), properties) {
			propErr = types.ErrPropertyCoercion
		}
	}
	s.Nodes.AttachOutgoing(fromType, fromPos, relTypeID, types.Link{NodeID: toID, RelationshipID: relID})
	return relID, propErr
}

// SpliceIncoming attaches the incoming half of a relationship to a local
// ending node. False means the node is gone and the caller must roll the
// relationship back.
func (s *Shard) SpliceIncoming(toID uint64, relTypeID uint16, link types.Link) bool {
	return s.Nodes.AttachIncoming(s.codec.TypeOf(toID), s.codec.PosOf(toID), relTypeID, link)
}

// RollbackRelationship undoes AddRelationshipLocal after a failed splice.
func (s *Shard) RollbackRelationship(relTypeID uint16, fromID, relID uint64) {
	s.Nodes.DetachOutgoing(s.codec.TypeOf(fromID), s.codec.PosOf(fromID), relTypeID, relID)
	s.Rels.RemoveLocal(relTypeID, s.codec.PosOf(relID))
}

// RemoveRelationshipLocal tombstones a local relationship and detaches the
// outgoing link from its (local) starting node. It returns the ending node
// id so the caller can detach the incoming side wherever that node lives.
func (s *Shard) RemoveRelationshipLocal(relID uint64) (toID uint64, relTypeID uint16, ok bool) {
	relTypeID = s.codec.TypeOf(relID)
	pos := s.codec.PosOf(relID)
	fromID, endID, ok := s.Rels.Endpoints(relTypeID, pos)
	if !ok {
		return 0, 0, false
	}
	s.Nodes.DetachOutgoing(s.codec.TypeOf(fromID), s.codec.PosOf(fromID), relTypeID, relID)
	s.Rels.RemoveLocal(relTypeID, pos)
	return endID, relTypeID, true
}

// DetachIncomingLink removes the incoming half on a local ending node.
func (s *Shard) DetachIncomingLink(toID uint64, relTypeID uint16, relID uint64) bool {
	return s.Nodes.DetachIncoming(s.codec.TypeOf(toID), s.codec.PosOf(toID), relTypeID, relID)
}
