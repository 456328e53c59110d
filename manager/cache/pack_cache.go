package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dot5enko/segment-rc/schema"
)

// PackKey addresses one decoded column pack of a segment.
type PackKey struct {
	Segment uuid.UUID
	Column  int
	Pack    int
}

type PackCacheItem struct {
	Key    PackKey
	Values *schema.PackValues

	RtStats *CacheStats
}

// PackCache keeps decoded packs, evicting the oldest insert once maxPacks
// are held. Cached values are shared and must not be modified.
type PackCache struct {
	storage       map[PackKey]*PackCacheItem
	order         *TypedRingBuffer[PackKey]
	storageLocker sync.RWMutex

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewPackCache returns a cache for maxPacks packs, a non positive size disables caching.
func NewPackCache(maxPacks int) *PackCache {
	return &PackCache{
		storage: make(map[PackKey]*PackCacheItem),
		order:   NewTypedRingBuffer[PackKey](max(maxPacks, 0)),
	}
}

func (c *PackCache) Get(key PackKey) (*schema.PackValues, bool) {

	c.storageLocker.RLock()
	item, ok := c.storage[key]
	c.storageLocker.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	c.hits.Add(1)
	item.RtStats.Reads.Add(1)

	return item.Values, true
}

func (c *PackCache) Put(key PackKey, values *schema.PackValues) {

	if c.order.Cap() == 0 {
		return
	}

	c.storageLocker.Lock()
	defer c.storageLocker.Unlock()

	if item, ok := c.storage[key]; ok {
		item.Values = values
		return
	}

	if evicted, ok := c.order.Push(key); ok {
		delete(c.storage, evicted)
		c.evictions.Add(1)
	}

	c.storage[key] = &PackCacheItem{
		Key:     key,
		Values:  values,
		RtStats: &CacheStats{Created: time.Now()},
	}
}

// ItemStats returns the usage of a cached pack.
func (c *PackCache) ItemStats(key PackKey) (reads int64, created time.Time, ok bool) {

	c.storageLocker.RLock()
	defer c.storageLocker.RUnlock()

	item, ok := c.storage[key]
	if !ok {
		return 0, time.Time{}, false
	}

	return item.RtStats.Reads.Load(), item.RtStats.Created, true
}

// DropSegment removes every pack of a segment.
func (c *PackCache) DropSegment(id uuid.UUID) {

	c.storageLocker.Lock()
	defer c.storageLocker.Unlock()

	for key := range c.storage {
		if key.Segment == id {
			delete(c.storage, key)
		}
	}

	c.order.Filter(func(key PackKey) bool {
		return key.Segment != id
	})
}

func (c *PackCache) Stats() Stats {

	c.storageLocker.RLock()
	items := len(c.storage)
	c.storageLocker.RUnlock()

	return Stats{
		Items:     items,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}
