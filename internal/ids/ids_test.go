package ids

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/quiverdb/quiver/internal/types"
)

func TestShardBitsFor(t *testing.T) {
	tests := []struct {
		shards int
		bits   uint8
	}{
		{1, 0},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{8, 3},
		{9, 4},
		{64, 6},
	}
	for _, tt := range tests {
		if got := ShardBitsFor(tt.shards); got != tt.bits {
			t.Errorf("ShardBitsFor(%d) = %d, want %d", tt.shards, got, tt.bits)
		}
	}
}

func TestPackRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		shardCount := rapid.IntRange(1, 64).Draw(t, "shardCount")
		shardIdx := rapid.IntRange(0, shardCount-1).Draw(t, "shard")
		codec := NewCodec(shardIdx, shardCount)
		typeID := uint16(rapid.IntRange(1, 1<<16-1).Draw(t, "type"))
		pos := rapid.Uint64Range(0, codec.MaxPosition()).Draw(t, "pos")

		id, err := codec.Pack(typeID, pos)
		if err != nil {
			t.Fatalf("Pack(%d, %d): %v", typeID, pos, err)
		}
		if got := codec.TypeOf(id); got != typeID {
			t.Fatalf("TypeOf = %d, want %d", got, typeID)
		}
		if got := codec.PosOf(id); got != pos {
			t.Fatalf("PosOf = %d, want %d", got, pos)
		}
		if got := codec.ShardOf(id); got != shardIdx {
			t.Fatalf("ShardOf = %d, want %d", got, shardIdx)
		}
	})
}

func TestPackOverflow(t *testing.T) {
	codec := NewCodec(0, 4)
	if _, err := codec.Pack(1, codec.MaxPosition()); err != nil {
		t.Fatalf("max position must pack: %v", err)
	}
	_, err := codec.Pack(1, codec.MaxPosition()+1)
	if !errors.Is(err, types.ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestShardRouting(t *testing.T) {
	// Ids packed by different shards of the same cluster route back to
	// their packers.
	const shardCount = 4
	for idx := 0; idx < shardCount; idx++ {
		codec := NewCodec(idx, shardCount)
		id, err := codec.Pack(7, 42)
		if err != nil {
			t.Fatalf("Pack: %v", err)
		}
		// Any codec of the cluster routes the id.
		other := NewCodec(0, shardCount)
		if got := other.ShardOf(id); got != idx {
			t.Errorf("ShardOf(shard %d id) = %d", idx, got)
		}
	}
}

func TestSentinelTypeZero(t *testing.T) {
	codec := NewCodec(0, 1)
	id, err := codec.Pack(0, 0)
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	if id != 0 {
		t.Fatalf("sentinel pack = %d, want 0", id)
	}
}
