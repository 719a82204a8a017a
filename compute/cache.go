package compute

import (
	"container/list"
	"fmt"
)

// DefaultPlanCacheCapacity bounds a CachingCompiler when the caller does not
// choose a capacity
const DefaultPlanCacheCapacity = 64

// CacheStats counts cache activity since construction
type CacheStats struct {
	Hits      int
	Misses    int
	Evictions int
}

// CachingCompiler wraps a Compiler with a bounded least-recently-used plan
// cache keyed by request fingerprint. Minibatch shapes repeat heavily during
// training, so after warmup nearly every Compile call is a cache hit and
// returns the identical plan without recompiling.
//
// Not safe for concurrent use; each trainer owns its own instance.
type CachingCompiler struct {
	inner    Compiler
	capacity int
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	stats    CacheStats
}

type cacheEntry struct {
	key  string
	plan Plan
}

// NewCachingCompiler wraps a compiler with an LRU plan cache of the given
// capacity. A capacity of zero selects DefaultPlanCacheCapacity.
func NewCachingCompiler(inner Compiler, capacity int) (*CachingCompiler, error) {
	if inner == nil {
		return nil, fmt.Errorf("nil inner compiler")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("negative cache capacity %d", capacity)
	}
	if capacity == 0 {
		capacity = DefaultPlanCacheCapacity
	}
	return &CachingCompiler{
		inner:    inner,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}, nil
}

// Compile returns the cached plan for a structurally identical request, or
// compiles and caches a new one, evicting the least recently used plan when
// the cache is full.
func (c *CachingCompiler) Compile(req *Request) (Plan, error) {
	key := req.Fingerprint()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		c.stats.Hits++
		return elem.Value.(*cacheEntry).plan, nil
	}

	plan, err := c.inner.Compile(req)
	if err != nil {
		return nil, fmt.Errorf("compiling request: %w", err)
	}
	c.stats.Misses++

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
		c.stats.Evictions++
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, plan: plan})
	return plan, nil
}

// Stats returns a snapshot of the cache counters
func (c *CachingCompiler) Stats() CacheStats {
	return c.stats
}
