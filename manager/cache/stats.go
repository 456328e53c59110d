package cache

import (
	"sync/atomic"
	"time"
)

// CacheStats tracks the use of one cached pack.
type CacheStats struct {
	Reads   atomic.Int64
	Created time.Time
}

// Stats is a snapshot of the whole cache.
type Stats struct {
	Items     int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// BufferStats is a snapshot of a read buffer pool. Busy counts reads that
// found no free buffer and allocated.
type BufferStats struct {
	Buffers  int
	Free     int
	Borrowed int64
	Busy     int64
}
