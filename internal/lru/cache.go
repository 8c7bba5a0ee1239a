// Package lru is a byte budgeted, sharded least recently used cache of
// encoded responses.
package lru

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pbnjay/memory"
	"github.com/pkg/errors"
)

var ErrIllegalCapacity = errors.New("illegal lru cache capacity")
var ErrInvalidSharding = errors.New("invalid sharding")

const (
	DefaultShards = 16

	maxDefaultBytes = 64 << 20
	minDefaultBytes = 1 << 20
)

type OnEvict func(k uint64, v []byte)

type Cache struct {
	capacity uint64
	shards   []*lruShard
}

func NewCache(shards int, maxTotalBytes uint64, onEvict OnEvict) (*Cache, error) {
	if shards < 1 {
		return nil, ErrInvalidSharding
	}

	if maxTotalBytes < uint64(shards) {
		return nil, errors.Wrapf(ErrIllegalCapacity, "%d bytes for %d shards", maxTotalBytes, shards)
	}

	c := Cache{
		capacity: uint64(shards),
		shards:   make([]*lruShard, shards),
	}

	shardMaxBytes := maxTotalBytes / c.capacity
	for i := range c.shards {
		c.shards[i] = newLruShard(shardMaxBytes, onEvict)
	}

	return &c, nil
}

// DefaultMaxBytes is 1/256 of the system memory, kept between 1 and 64 MiB.
func DefaultMaxBytes() uint64 {
	total := memory.TotalMemory() / 256
	if total > maxDefaultBytes {
		return maxDefaultBytes
	}

	if total < minDefaultBytes {
		return minDefaultBytes
	}

	return total
}

// KeyFor hashes a string key such as an identity key.
func KeyFor(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Add stores value under key and reports whether something was evicted.
func (c *Cache) Add(key uint64, value []byte) bool {
	_, evicted := c.getShard(key).add(key, value)
	return evicted
}

func (c *Cache) Get(key uint64) ([]byte, bool) {
	return c.getShard(key).get(key)
}

func (c *Cache) Remove(key uint64) {
	c.getShard(key).remove(key)
}

func (c *Cache) Purge() {
	for i := range c.shards {
		c.shards[i].purge()
	}
}

func (c *Cache) Len() int {
	n := 0
	for i := range c.shards {
		n += c.shards[i].len()
	}

	return n
}

func (c *Cache) Bytes() uint64 {
	var n uint64
	for i := range c.shards {
		n += c.shards[i].bytes()
	}

	return n
}

func (c *Cache) getShard(key uint64) *lruShard {
	bs := make([]byte, 8)
	binary.LittleEndian.PutUint64(bs, key)
	return c.shards[xxhash.Sum64(bs)%c.capacity]
}
