package cache

// node is an entry of the recency list. The head is the most recently used.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// Stats counts lookups since the cache was created or last cleared.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits over lookups, 0 without lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// LRU maps keys to values and evicts the least recently used entry once
// more than its capacity is stored.
type LRU[K comparable, V any] struct {
	capacity int
	entries  map[K]*node[K, V]
	head     *node[K, V]
	tail     *node[K, V]
	stats    Stats
}

// New returns an empty cache holding at most capacity entries. A capacity
// below 1 is raised to 1.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	capacity = max(capacity, 1)
	return &LRU[K, V]{
		capacity: capacity,
		entries:  make(map[K]*node[K, V], capacity),
	}
}

// Get returns the value stored for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	n, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		var zero V
		return zero, false
	}
	c.stats.Hits++
	c.moveToFront(n)
	return n.value, true
}

// Put stores value for key, replacing any previous value.
func (c *LRU[K, V]) Put(key K, value V) {
	if n, ok := c.entries[key]; ok {
		n.value = value
		c.moveToFront(n)
		return
	}
	n := &node[K, V]{key: key, value: value}
	c.entries[key] = n
	c.pushFront(n)
	if len(c.entries) > c.capacity {
		oldest := c.tail
		c.unlink(oldest)
		delete(c.entries, oldest.key)
		c.stats.Evictions++
	}
}

// GetOrCreate returns the cached value for key, calling create and storing
// its result on a miss.
func (c *LRU[K, V]) GetOrCreate(key K, create func() V) V {
	if v, ok := c.Get(key); ok {
		return v
	}
	v := create()
	c.Put(key, v)
	return v
}

// Delete removes key and reports whether it was present.
func (c *LRU[K, V]) Delete(key K) bool {
	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.entries, key)
	return true
}

// Clear removes every entry and resets the statistics.
func (c *LRU[K, V]) Clear() {
	clear(c.entries)
	c.head, c.tail = nil, nil
	c.stats = Stats{}
}

// Len returns the number of entries.
func (c *LRU[K, V]) Len() int { return len(c.entries) }

// Stats returns the current statistics.
func (c *LRU[K, V]) Stats() Stats {
	s := c.stats
	s.Len = len(c.entries)
	s.Capacity = c.capacity
	return s
}

func (c *LRU[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *LRU[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

// unlink detaches n, fixing head and tail.
func (c *LRU[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}
