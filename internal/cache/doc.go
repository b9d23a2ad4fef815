// Package cache provides a bounded least-recently-used map.
//
//	c := cache.New[string, []int](128)
//	c.Put("key", []int{1, 2})
//	v, ok := c.Get("key")
//
// An LRU is not safe for concurrent use. Its owners only touch it from the
// frame loop.
package cache
