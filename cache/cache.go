// Package cache implements a byte-budget, recency-ordered image cache with
// pluggable cost accounting and storage policy.
package cache

import (
	"container/list"
	"sync"

	"github.com/imageloading/animatedcache/core"
)

// entry is the unit owned by the cache.  Images are treated as immutable
// once stored.
type entry struct {
	key  core.RequestKey
	img  *core.Image
	cost int64
}

// Cache maps request fingerprints to decoded images under a byte budget.
// Least-recently-used entries are evicted when the budget is exceeded.
// All methods are safe for concurrent use; a single mutex guards the entry
// map, the cost counter, and the recency order together.
type Cache struct {
	mu       sync.Mutex
	capacity int64
	cost     int64
	entries  map[core.RequestKey]*list.Element
	order    *list.List // front = most recently used

	costFn  core.CostFunc
	policy  core.StorePolicy
	logger  core.Logger
	metrics core.MetricsCollector
	hooks   []core.Hook
}

// Option configures a Cache.
type Option func(*Cache)

// WithCostFunc overrides the cost estimate used for each stored image.
func WithCostFunc(f core.CostFunc) Option { return func(c *Cache) { c.costFn = f } }

// WithStorePolicy gates which images may be stored at all.
func WithStorePolicy(p core.StorePolicy) Option { return func(c *Cache) { c.policy = p } }

// WithLogger attaches a structured logger.
func WithLogger(l core.Logger) Option { return func(c *Cache) { c.logger = l } }

// WithMetrics attaches a metrics collector.
func WithMetrics(m core.MetricsCollector) Option { return func(c *Cache) { c.metrics = m } }

// WithHook registers an event observer.
func WithHook(h core.Hook) Option { return func(c *Cache) { c.hooks = append(c.hooks, h) } }

// New creates a Cache with the given byte capacity.  The default cost
// function is AnimatedAwareCost and the default policy admits everything.
func New(capacity int64, opts ...Option) *Cache {
	c := &Cache{
		capacity: capacity,
		entries:  make(map[core.RequestKey]*list.Element),
		order:    list.New(),
		costFn:   AnimatedAwareCost,
		policy:   AllowAll,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set inserts or replaces the image for key and marks it most recently used.
// When the store policy refuses img the call is a silent no-op.  Insertion
// may trigger eviction of least-recently-used entries until the total cost
// fits the capacity again; an image costing more than the whole capacity
// evicts everything, itself included.
func (c *Cache) Set(key core.RequestKey, img *core.Image) {
	if img == nil {
		return
	}
	if !c.policy(img) {
		if c.metrics != nil {
			c.metrics.RecordRefusal()
		}
		if c.logger != nil {
			c.logger.Debug("cache.store.refused", "key", string(key), "kind", string(img.Kind()))
		}
		return
	}

	cost := c.costFn(img)

	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		old := elem.Value.(*entry)
		c.cost += cost - old.cost
		old.img = img
		old.cost = cost
		c.order.MoveToFront(elem)
	} else {
		elem := c.order.PushFront(&entry{key: key, img: img, cost: cost})
		c.entries[key] = elem
		c.cost += cost
	}
	evicted := c.evictLocked()
	total := c.cost
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordStore(cost)
		for _, e := range evicted {
			c.metrics.RecordEviction(e.cost)
		}
		c.metrics.SetResidentCost(total)
	}
	for _, h := range c.hooks {
		h.OnStore(key, img, cost)
		for _, e := range evicted {
			h.OnEvict(e.key, e.cost)
		}
	}
	if c.logger != nil && len(evicted) > 0 {
		c.logger.Debug("cache.evicted", "count", len(evicted), "resident_bytes", total)
	}
}

// Image returns the cached image for key, bumping its recency, or nil on a
// miss.  Lookups never block on decoding; only materialised entries are
// served.
func (c *Cache) Image(key core.RequestKey) *core.Image {
	c.mu.Lock()
	elem, ok := c.entries[key]
	var img *core.Image
	if ok {
		c.order.MoveToFront(elem)
		img = elem.Value.(*entry).img
	}
	c.mu.Unlock()

	if c.metrics != nil {
		if ok {
			c.metrics.RecordHit()
		} else {
			c.metrics.RecordMiss()
		}
	}
	for _, h := range c.hooks {
		if ok {
			h.OnHit(key)
		} else {
			h.OnMiss(key)
		}
	}
	return img
}

// Remove deletes the entry for key if present; no-op otherwise.
func (c *Cache) Remove(key core.RequestKey) {
	c.mu.Lock()
	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
	total := c.cost
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SetResidentCost(total)
	}
}

// RemoveAll clears every entry and resets the cost counter.
func (c *Cache) RemoveAll() {
	c.mu.Lock()
	c.entries = make(map[core.RequestKey]*list.Element)
	c.order.Init()
	c.cost = 0
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SetResidentCost(0)
	}
}

// Len returns the number of resident entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Cost returns the summed cost of resident entries in bytes.
func (c *Cache) Cost() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cost
}

// Capacity returns the configured byte budget.
func (c *Cache) Capacity() int64 { return c.capacity }

// evictLocked removes least-recently-used entries until the cost fits the
// capacity or the cache is empty.  Caller holds c.mu.
func (c *Cache) evictLocked() []*entry {
	var evicted []*entry
	for c.cost > c.capacity && c.order.Len() > 0 {
		back := c.order.Back()
		evicted = append(evicted, back.Value.(*entry))
		c.removeLocked(back)
	}
	return evicted
}

func (c *Cache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.order.Remove(elem)
	delete(c.entries, e.key)
	c.cost -= e.cost
}
