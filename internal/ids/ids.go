// Package ids packs and unpacks the 64-bit external entity identifiers.
//
// An external id encodes, from the low bits up: the shard index (ShardBits
// wide), the 16-bit type id, and the within-shard position in the remaining
// high bits. Clients treat the value as opaque; only equality is meaningful
// to them. The shard bits make routing a mask-and-shift, so any shard can
// forward a foreign id without a lookup.
package ids

import (
	"math/bits"

	"github.com/quiverdb/quiver/internal/types"
)

const typeBits = 16

// Codec packs ids for one shard. ShardOf and friends work on ids from any
// shard of the same cluster because the bit layout is cluster-wide.
type Codec struct {
	shard     uint16
	shardBits uint8
}

// ShardBitsFor returns how many low bits are needed to address n shards.
// One shard needs zero bits.
func ShardBitsFor(n int) uint8 {
	if n <= 1 {
		return 0
	}
	return uint8(bits.Len(uint(n - 1)))
}

// NewCodec builds the codec for shard index shard out of shardCount total.
func NewCodec(shard, shardCount int) Codec {
	return Codec{shard: uint16(shard), shardBits: ShardBitsFor(shardCount)}
}

// MaxPosition is the largest packable within-shard position for this codec.
func (c Codec) MaxPosition() uint64 {
	return (uint64(1) << (64 - typeBits - c.shardBits)) - 1
}

// Pack encodes (type, position) plus this codec's shard into an external id.
// Position overflow is the one failure mode: it means the shard has exhausted
// its id space for the layout and the caller's allocation must fail.
func (c Codec) Pack(typeID uint16, pos uint64) (uint64, error) {
	if pos > c.MaxPosition() {
		return 0, types.ErrOverflow
	}
	return pos<<(typeBits+c.shardBits) | uint64(typeID)<<c.shardBits | uint64(c.shard), nil
}

// TypeOf extracts the 16-bit type id.
func (c Codec) TypeOf(id uint64) uint16 {
	return uint16(id >> c.shardBits)
}

// PosOf extracts the within-shard position.
func (c Codec) PosOf(id uint64) uint64 {
	return id >> (typeBits + c.shardBits)
}

// ShardOf extracts the shard index. Cheap and deterministic; it is the
// routing function for every id-addressed operation.
func (c Codec) ShardOf(id uint64) int {
	return int(id & (uint64(1)<<c.shardBits - 1))
}

// Shard is the index this codec packs into new ids.
func (c Codec) Shard() int {
	return int(c.shard)
}
