// Package shard implements the single-threaded owners of the graph's
// partitions. Each Shard runs one goroutine that drains a FIFO task queue;
// everything the shard owns — its node store, relationship store, property
// columns — is touched only from that goroutine, so no locks guard shard
// state. Cross-shard work is expressed as tasks submitted to the other
// shard's queue.
package shard

import (
	"context"

	"github.com/quiverdb/quiver/internal/debug"
	"github.com/quiverdb/quiver/internal/ids"
	"github.com/quiverdb/quiver/internal/store"
	"github.com/quiverdb/quiver/internal/types"
)

const taskQueueDepth = 1024

// Shard owns one slice of the graph.
type Shard struct {
	id    int
	codec ids.Codec

	Nodes *store.NodeStore
	Rels  *store.RelationshipStore

	tasks   chan func()
	stopped chan struct{}
}

// New builds the shard with its stores; Start launches the task loop.
func New(id, shardCount int) *Shard {
	codec := ids.NewCodec(id, shardCount)
	return &Shard{
		id:      id,
		codec:   codec,
		Nodes:   store.NewNodeStore(codec),
		Rels:    store.NewRelationshipStore(codec),
		tasks:   make(chan func(), taskQueueDepth),
		stopped: make(chan struct{}),
	}
}

func (s *Shard) ID() int { return s.id }

func (s *Shard) Codec() ids.Codec { return s.codec }

// Start launches the shard's task loop. Tasks from one submitter run in
// submission order; a task runs to completion before the next begins, which
// is the per-shard atomicity guarantee.
func (s *Shard) Start() {
	go func() {
		defer close(s.stopped)
		for task := range s.tasks {
			task()
		}
	}()
	debug.Logf("shard %d started", s.id)
}

// Stop closes the task queue; the loop runs the tasks already queued, then
// exits, and Stop waits for that.
func (s *Shard) Stop() {
	close(s.tasks)
	<-s.stopped
	debug.Logf("shard %d stopped", s.id)
}

// Run submits fn to the shard and awaits its result. Cancellation before
// the task is picked up — or while awaiting the result — returns
// ErrCancelled; a task already queued still executes, but its result is
// dropped, matching the coordinator-drops-responses model.
func Run[T any](ctx context.Context, s *Shard, fn func() T) (T, error) {
	var zero T
	if ctx.Err() != nil {
		return zero, types.ErrCancelled
	}
	result := make(chan T, 1)
	wrapped := func() { result <- fn() }
	select {
	case s.tasks <- wrapped:
	case <-ctx.Done():
		return zero, types.ErrCancelled
	}
	select {
	case v := <-result:
		return v, nil
	case <-ctx.Done():
		return zero, types.ErrCancelled
	}
}
