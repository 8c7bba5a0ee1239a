package lru

// NullCache is used when response caching is switched off.
type NullCache struct{}

func (NullCache) Add(key uint64, value []byte) bool { return false }

func (NullCache) Get(key uint64) ([]byte, bool) { return nil, false }

func (NullCache) Remove(key uint64) {}

func (NullCache) Purge() {}

func (NullCache) Len() int { return 0 }
