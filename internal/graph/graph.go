// Package graph is the library-level API over the shard set. It routes each
// operation to the owning shard — by the shard bits of an external id, or by
// key hash for keyed operations — and fans peered operations out to every
// shard, merging results in shard-index order so cross-shard result order is
// deterministic.
package graph

import (
	"context"
	"hash/fnv"

	"golang.org/x/sync/errgroup"

	"github.com/quiverdb/quiver/internal/debug"
	"github.com/quiverdb/quiver/internal/shard"
	"github.com/quiverdb/quiver/internal/types"
)

// Graph owns the shards of one named graph.
type Graph struct {
	name   string
	shards []*shard.Shard
}

// New builds and starts shardCount shards. Shard 0 is the schema authority.
func New(name string, shardCount int) *Graph {
	if shardCount < 1 {
		shardCount = 1
	}
	g := &Graph{name: name, shards: make([]*shard.Shard, shardCount)}
	for i := range g.shards {
		g.shards[i] = shard.New(i, shardCount)
		g.shards[i].Start()
	}
	debug.Logf("graph %q started with %d shards", name, shardCount)
	return g
}

func (g *Graph) Name() string    { return g.name }
func (g *Graph) ShardCount() int { return len(g.shards) }

// Close stops every shard and waits for their task loops to drain.
func (g *Graph) Close() {
	for _, s := range g.shards {
		s.Stop()
	}
	debug.Logf("graph %q stopped", g.name)
}

// shardOf routes an external id to its owning shard.
func (g *Graph) shardOf(id uint64) *shard.Shard {
	return g.shards[g.shards[0].Codec().ShardOf(id)]
}

// shardForKey routes a keyed node operation. The hash covers type and key
// so a type's nodes spread across shards.
func (g *Graph) shardForKey(typeName, key string) *shard.Shard {
	h := fnv.New64a()
	h.Write([]byte(typeName))
	h.Write([]byte{0})
	h.Write([]byte(key))
	return g.shards[h.Sum64()%uint64(len(g.shards))]
}

// authority is the shard that owns schema writes.
func (g *Graph) authority() *shard.Shard {
	return g.shards[0]
}

// peered fans fn out to every shard and collects the results in shard-index
// order. A cancellation abandons the pending responses and discards the
// partial result.
func peered[T any](ctx context.Context, g *Graph, fn func(*shard.Shard) T) ([]T, error) {
	results := make([]T, len(g.shards))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, s := range g.shards {
		eg.Go(func() error {
			v, err := shard.Run(egCtx, s, func() T { return fn(s) })
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// window computes each shard's (skip, take) slice of a paged peered result
// from the per-shard totals, walking shards in index order. take is 0 for
// shards that contribute nothing; limit 0 means unbounded.
func window(counts []uint64, skip, limit uint64) []struct{ Skip, Take uint64 } {
	out := make([]struct{ Skip, Take uint64 }, len(counts))
	remainingSkip := skip
	unbounded := limit == 0
	remaining := limit
	for i, count := range counts {
		if remainingSkip >= count {
			remainingSkip -= count
			continue
		}
		available := count - remainingSkip
		take := available
		if !unbounded {
			if remaining == 0 {
				break
			}
			if take > remaining {
				take = remaining
			}
			remaining -= take
		}
		out[i] = struct{ Skip, Take uint64 }{Skip: remainingSkip, Take: take}
		remainingSkip = 0
	}
	return out
}

// pageMerged applies a global skip/limit to an already shard-ordered merge.
func pageMerged(idLists [][]uint64, skip, limit uint64) []uint64 {
	var out []uint64
	var current uint64
	for _, list := range idLists {
		for _, id := range list {
			current++
			if current <= skip {
				continue
			}
			out = append(out, id)
			if limit > 0 && uint64(len(out)) >= limit {
				return out
			}
		}
	}
	return out
}

// nodesByIDs fetches node bodies across shards, returning them in input
// order. Unknown ids yield zero nodes, which the caller filters or reports.
func (g *Graph) nodesByIDs(ctx context.Context, idList []uint64) ([]types.Node, error) {
	byShard := make(map[int][]uint64)
	for _, id := range idList {
		idx := g.shards[0].Codec().ShardOf(id)
		byShard[idx] = append(byShard[idx], id)
	}
	fetched := make(map[uint64]types.Node, len(idList))
	for idx, shardIDs := range byShard {
		s := g.shards[idx]
		nodes, err := shard.Run(ctx, s, func() []types.Node {
			out := make([]types.Node, 0, len(shardIDs))
			for _, id := range shardIDs {
				out = append(out, s.Nodes.NodeByID(id))
			}
			return out
		})
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			if n.ID != 0 {
				fetched[n.ID] = n
			}
		}
	}
	out := make([]types.Node, 0, len(idList))
	for _, id := range idList {
		if n, ok := fetched[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// relationshipsByIDs is the relationship twin of nodesByIDs.
func (g *Graph) relationshipsByIDs(ctx context.Context, idList []uint64) ([]types.Relationship, error) {
	byShard := make(map[int][]uint64)
	for _, id := range idList {
		idx := g.shards[0].Codec().ShardOf(id)
		byShard[idx] = append(byShard[idx], id)
	}
	fetched := make(map[uint64]types.Relationship, len(idList))
	for idx, shardIDs := range byShard {
		s := g.shards[idx]
		rels, err := shard.Run(ctx, s, func() []types.Relationship {
			out := make([]types.Relationship, 0, len(shardIDs))
			for _, id := range shardIDs {
				out = append(out, s.Rels.RelationshipByID(id))
			}
			return out
		})
		if err != nil {
			return nil, err
		}
		for _, r := range rels {
			if r.ID != 0 {
				fetched[r.ID] = r
			}
		}
	}
	out := make([]types.Relationship, 0, len(idList))
	for _, id := range idList {
		if r, ok := fetched[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}
