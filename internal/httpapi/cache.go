package httpapi

import (
	"bytes"
	"sync"

	"github.com/denismitr/todostore/internal/lru"
)

// ResponseCache is what the list cache needs from an lru cache.
type ResponseCache interface {
	Get(key uint64) ([]byte, bool)
	// Add stores value under key and reports whether something was evicted.
	Add(key uint64, value []byte) bool
	Remove(key uint64)
	Purge()
	Len() int
}

// ListCache keeps encoded list responses per identity. Every invalidation
// bumps a generation so a response computed from an older snapshot is
// never stored after the invalidation that made it stale.
type ListCache struct {
	mu    sync.Mutex
	cache ResponseCache
	gens  map[uint64]uint64
	epoch uint64
}

func NewListCache(c ResponseCache) *ListCache {
	if c == nil {
		c = lru.NullCache{}
	}

	return &ListCache{cache: c, gens: make(map[uint64]uint64)}
}

type generation struct {
	identity string
	key      uint64
	gen      uint64
	epoch    uint64
}

// entries are stored as identity key, a NUL byte, then the body, so that
// a hash collision between two identities is detected on read. Identity
// keys come from http headers and never contain NUL.
func encodeEntry(identityKey string, body []byte) []byte {
	b := make([]byte, 0, len(identityKey)+1+len(body))
	b = append(b, identityKey...)
	b = append(b, 0)
	return append(b, body...)
}

func decodeEntry(identityKey string, entry []byte) ([]byte, bool) {
	i := bytes.IndexByte(entry, 0)
	if i < 0 || string(entry[:i]) != identityKey {
		return nil, false
	}

	return entry[i+1:], true
}

func (lc *ListCache) get(identityKey string) ([]byte, generation, bool) {
	k := lru.KeyFor(identityKey)

	lc.mu.Lock()
	defer lc.mu.Unlock()

	g := generation{identity: identityKey, key: k, gen: lc.gens[k], epoch: lc.epoch}
	entry, ok := lc.cache.Get(k)
	if !ok {
		return nil, g, false
	}

	body, ok := decodeEntry(identityKey, entry)
	return body, g, ok
}

func (lc *ListCache) put(g generation, body []byte) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.epoch != g.epoch || lc.gens[g.key] != g.gen {
		return
	}

	lc.cache.Add(g.key, encodeEntry(g.identity, body))
}

// Invalidate is meant to be the store's OnChange callback. Nil keys mean
// the whole document was replaced.
func (lc *ListCache) Invalidate(keys []string) {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if keys == nil {
		lc.epoch++
		lc.gens = make(map[uint64]uint64)
		lc.cache.Purge()
		return
	}

	for _, key := range keys {
		k := lru.KeyFor(key)
		lc.gens[k]++
		lc.cache.Remove(k)
	}
}

func (lc *ListCache) len() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.cache.Len()
}
