package shard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quiverdb/quiver/internal/types"
)

func startShard(t *testing.T) *Shard {
	t.Helper()
	s := New(0, 1)
	s.Start()
	t.Cleanup(s.Stop)
	return s
}

func TestRunReturnsResult(t *testing.T) {
	s := startShard(t)
	got, err := Run(context.Background(), s, func() int { return 42 })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != 42 {
		t.Fatalf("got %d", got)
	}
}

func TestRunOrdering(t *testing.T) {
	// Tasks from one submitter run in submission order.
	s := startShard(t)
	var order []int
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		if _, err := Run(ctx, s, func() struct{} {
			order = append(order, i)
			return struct{}{}
		}); err != nil {
			t.Fatalf("Run %d: %v", i, err)
		}
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("order[%d] = %d", i, v)
		}
	}
}

func TestRunCancellation(t *testing.T) {
	s := startShard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, s, func() int { return 1 })
	if !errors.Is(err, types.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
}

func TestRunCancellationMidTask(t *testing.T) {
	// A task that outlives the caller's context still completes, but the
	// caller sees the cancellation.
	s := startShard(t)
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_, _ = Run(context.Background(), s, func() struct{} {
			<-release
			return struct{}{}
		})
		close(done)
	}()
	// Give the blocking task time to occupy the loop.
	time.Sleep(10 * time.Millisecond)
	cancel()
	_, err := Run(ctx, s, func() int { return 1 })
	if !errors.Is(err, types.ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	close(release)
	<-done
}

func TestPlanNodeRemovalUnknown(t *testing.T) {
	s := startShard(t)
	if _, ok := s.PlanNodeRemoval(123456); ok {
		t.Fatal("plan for unknown node succeeded")
	}
}
