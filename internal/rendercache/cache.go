package rendercache

import (
	"container/list"
	"sync"

	"github.com/cosmic-gao/nexo-sub000/internal/vdom"
)

const (
	defaultCapacity = 500
	evictToFraction = 0.8
)

type entry struct {
	id      string
	version int64
	node    vdom.Node
}

// Cache is a bounded LRU render cache keyed by block id, storing the
// virtual node synthesized for a block at a given version (§4.8). When
// capacity is exceeded it evicts least-recently-used entries down to
// evictToFraction of capacity.
type Cache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List // front = most recently used
	items    map[string]*list.Element
}

// Option configures a Cache.
type Option func(*Cache)

// WithCapacity overrides the default capacity of 500 entries.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// New creates an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{capacity: defaultCapacity, ll: list.New(), items: make(map[string]*list.Element)}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached node for id only if it was stored at exactly
// version; otherwise it reports a miss (§4.8 "returns the cached node
// only if versions match").
func (c *Cache) Get(id string, version int64) (vdom.Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[id]
	if !ok {
		return vdom.Node{}, false
	}
	e := el.Value.(*entry)
	if e.version != version {
		return vdom.Node{}, false
	}
	c.ll.MoveToFront(el)
	return e.node, true
}

// Put stores node for id at version, evicting the least-recently-used
// entries if the cache is over capacity.
func (c *Cache) Put(id string, version int64, node vdom.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[id]; ok {
		e := el.Value.(*entry)
		e.version = version
		e.node = node
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&entry{id: id, version: version, node: node})
	c.items[id] = el
	if c.ll.Len() > c.capacity {
		c.evict()
	}
}

// Invalidate drops the cached entry for id, if any (§4.8 invalidate).
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[id]; ok {
		c.ll.Remove(el)
		delete(c.items, id)
	}
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

func (c *Cache) evict() {
	target := int(float64(c.capacity) * evictToFraction)
	for c.ll.Len() > target {
		back := c.ll.Back()
		if back == nil {
			return
		}
		e := back.Value.(*entry)
		c.ll.Remove(back)
		delete(c.items, e.id)
	}
}
