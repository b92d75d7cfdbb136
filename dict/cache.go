package dict

import (
	"sync"

	"github.com/cockroachdb/swiss"
)

// hotTermCache is a bounded cache of recent Get results, keyed by term. It
// is invisible to Get's documented contract (found/not-found); a hit just
// skips the super-block search and key-block walk. Built on
// cockroachdb/swiss.Map, the open-addressing hash map pebble's own tooling
// uses wherever it needs a fast in-memory map that doesn't need to be
// ordered (unlike the on-disk dictionary itself, which must stay ordered).
type hotTermCache struct {
	mu       sync.Mutex
	m        *swiss.Map[string, []byte]
	capacity int
}

func newHotTermCache(capacity int) *hotTermCache {
	if capacity <= 0 {
		return nil
	}
	return &hotTermCache{
		m:        swiss.New[string, []byte](capacity),
		capacity: capacity,
	}
}

func (c *hotTermCache) get(key []byte) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m.Get(string(key))
	return v, ok
}

func (c *hotTermCache) put(key, value []byte) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.m.Len() >= c.capacity {
		// Simple clear-on-full eviction (no LRU bookkeeping): cheap and
		// bounds memory without adding a second data structure.
		c.m = swiss.New[string, []byte](c.capacity)
	}
	c.m.Put(string(key), append([]byte(nil), value...))
}
