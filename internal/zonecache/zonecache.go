// Package zonecache provides a load-once cache for zone backends. Rule
// data is expensive to parse and safe to share, so each distinct name is
// loaded at most once per process; concurrent first requests for the same
// name collapse into a single load.
package zonecache

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache maps names to values that are loaded at most once. The zero value
// is ready to use. There is no eviction: a loaded value lives for the
// lifetime of the cache.
type Cache[V any] struct {
	mu    sync.Mutex
	m     map[string]V
	group singleflight.Group
}

// Get returns the cached value for name, calling load to produce it if it
// has not been loaded yet. Concurrent calls for the same name share one
// invocation of load. A failed load caches nothing, so a later call may
// retry.
func (c *Cache[V]) Get(name string, load func() (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.m[name]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.m[name]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.m == nil {
			c.m = make(map[string]V)
		}
		c.m[name] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Len returns the number of loaded entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
