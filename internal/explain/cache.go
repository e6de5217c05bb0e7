package explain

import "sync"

// fifoCache is a bounded map that evicts the oldest insertion first.
type fifoCache struct {
	mu    sync.Mutex
	cap   int
	items map[string]string
	order []string
}

func newFIFOCache(capacity int) *fifoCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &fifoCache{cap: capacity, items: make(map[string]string, capacity)}
}

func (c *fifoCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *fifoCache) Put(key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; ok {
		c.items[key] = val
		return
	}
	for len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
	c.items[key] = val
	c.order = append(c.order, key)
}

func (c *fifoCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
