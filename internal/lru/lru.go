package lru

import (
	"container/list"
	"sync"
)

// lruShard is one independently locked slice of the cache. Entries are
// ordered most recently used first.
type lruShard struct {
	mu         sync.Mutex
	totalBytes uint64
	maxBytes   uint64
	evictList  *list.List
	elems      map[uint64]*list.Element
	onEvict    OnEvict
}

func newLruShard(maxBytes uint64, onEvict OnEvict) *lruShard {
	return &lruShard{
		maxBytes:  maxBytes,
		evictList: list.New(),
		elems:     make(map[uint64]*list.Element),
		onEvict:   onEvict,
	}
}

type entry struct {
	key   uint64
	value []byte
}

func (ls *lruShard) get(key uint64) ([]byte, bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	elem, ok := ls.elems[key]
	if !ok {
		return nil, false
	}

	ls.evictList.MoveToFront(elem)
	return elem.Value.(*entry).value, true
}

// add stores value under key and reports whether older entries had to be
// evicted to make room. A value larger than the shard is not stored.
func (ls *lruShard) add(key uint64, value []byte) (stored, evicted bool) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	size := uint64(len(value))
	if size > ls.maxBytes {
		if elem, ok := ls.elems[key]; ok {
			ls.removeElement(elem)
		}
		return false, false
	}

	if elem, ok := ls.elems[key]; ok {
		e := elem.Value.(*entry)
		ls.totalBytes -= uint64(len(e.value))
		e.value = value
		ls.totalBytes += size
		ls.evictList.MoveToFront(elem)
	} else {
		ls.elems[key] = ls.evictList.PushFront(&entry{key: key, value: value})
		ls.totalBytes += size
	}

	for ls.totalBytes > ls.maxBytes {
		oldest := ls.evictList.Back()
		if oldest == nil || oldest.Value.(*entry).key == key {
			break
		}

		k, v := ls.removeElement(oldest)
		evicted = true
		if ls.onEvict != nil {
			ls.onEvict(k, v)
		}
	}

	return true, evicted
}

func (ls *lruShard) remove(key uint64) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	elem, ok := ls.elems[key]
	if !ok {
		return false
	}

	ls.removeElement(elem)
	return true
}

func (ls *lruShard) purge() {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	ls.elems = make(map[uint64]*list.Element)
	ls.evictList.Init()
	ls.totalBytes = 0
}

func (ls *lruShard) len() int {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return len(ls.elems)
}

func (ls *lruShard) bytes() uint64 {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.totalBytes
}

// removeElement expects mu to be held.
func (ls *lruShard) removeElement(elem *list.Element) (uint64, []byte) {
	ls.evictList.Remove(elem)

	kv := elem.Value.(*entry)
	delete(ls.elems, kv.key)
	ls.totalBytes -= uint64(len(kv.value))
	return kv.key, kv.value
}
