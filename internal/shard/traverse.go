package shard

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/quiverdb/quiver/internal/types"
)

// TypeFilter selects which relationship-type groups a traversal touches:
// all of them, a single type, or a set.
type TypeFilter struct {
	set mapset.Set[uint16]
}

// AllTypes admits every group.
func AllTypes() TypeFilter {
	return TypeFilter{}
}

// TypesOf admits only the given relationship type ids. An empty list admits
// everything.
func TypesOf(relTypeIDs ...uint16) TypeFilter {
	if len(relTypeIDs) == 0 {
		return TypeFilter{}
	}
	return TypeFilter{set: mapset.NewThreadUnsafeSet(relTypeIDs...)}
}

func (f TypeFilter) admits(relTypeID uint16) bool {
	return f.set == nil || f.set.Contains(relTypeID)
}

// groupsFor resolves the adjacency sides a direction consults.
func (s *Shard) groupsFor(typeID uint16, pos uint64, direction types.Direction) [][]types.Group {
	switch direction {
	case types.DirectionOut:
		return [][]types.Group{s.Nodes.Outgoing(typeID, pos)}
	case types.DirectionIn:
		return [][]types.Group{s.Nodes.Incoming(typeID, pos)}
	default:
		return [][]types.Group{s.Nodes.Outgoing(typeID, pos), s.Nodes.Incoming(typeID, pos)}
	}
}

// NodeDegree counts links in the selected groups. ok is false when the node
// is not live here.
func (s *Shard) NodeDegree(id uint64, direction types.Direction, filter TypeFilter) (uint64, bool) {
	typeID := s.codec.TypeOf(id)
	pos := s.codec.PosOf(id)
	if !s.Nodes.ValidNodeID(typeID, pos) {
		return 0, false
	}
	var degree uint64
	for _, side := range s.groupsFor(typeID, pos, direction) {
		for _, group := range side {
			if filter.admits(group.RelTypeID) {
				degree += uint64(len(group.Links))
			}
		}
	}
	return degree, true
}

// NodeLinks returns the selected links in group order, outgoing before
// incoming when the direction is both.
func (s *Shard) NodeLinks(id uint64, direction types.Direction, filter TypeFilter) ([]types.Link, bool) {
	typeID := s.codec.TypeOf(id)
	pos := s.codec.PosOf(id)
	if !s.Nodes.ValidNodeID(typeID, pos) {
		return nil, false
	}
	var links []types.Link
	for _, side := range s.groupsFor(typeID, pos, direction) {
		for _, group := range side {
			if filter.admits(group.RelTypeID) {
				links = append(links, group.Links...)
			}
		}
	}
	return links, true
}

// ConnectedRelIDs scans this node's groups for links to other and returns
// the connecting relationship ids. The caller resolves the bodies: ids from
// the outgoing side are homed here, ids from the incoming side are homed on
// the other node's shard.
func (s *Shard) ConnectedRelIDs(id, other uint64, direction types.Direction, filter TypeFilter) ([]uint64, bool) {
	typeID := s.codec.TypeOf(id)
	pos := s.codec.PosOf(id)
	if !s.Nodes.ValidNodeID(typeID, pos) {
		return nil, false
	}
	var relIDs []uint64
	for _, side := range s.groupsFor(typeID, pos, direction) {
		for _, group := range side {
			if !filter.admits(group.RelTypeID) {
				continue
			}
			for _, link := range group.Links {
				if link.NodeID == other {
					relIDs = append(relIDs, link.RelationshipID)
				}
			}
		}
	}
	return relIDs, true
}
