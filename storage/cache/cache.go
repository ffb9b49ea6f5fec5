// Package cache implements the read-through cache the resource clients sit
// on: entries are grouped under named tags and a whole tag is dropped at once
// whenever a mutation succeeds for its resource type.
package cache

import "sync"

type bucket struct {
	gen     uint64
	entries map[string]interface{}
}

// Cache is a process-wide tagged cache. One instance is shared by every
// resource client; writes only happen through Invalidate.
type Cache struct {
	mu   sync.RWMutex
	tags map[string]*bucket
}

func New() *Cache {
	return &Cache{tags: make(map[string]*bucket)}
}

// GetOrLoad returns the value cached under (tag, key), running loader on a
// miss. Loader errors are returned as-is and never cached.
//
// Two same-key calls racing on a cold entry may both run the loader; the
// loser's store is harmless. A store is skipped when the tag was invalidated
// while the loader ran, so an in-flight read can never resurrect data from
// before an invalidation.
func (c *Cache) GetOrLoad(tag, key string, loader func() (interface{}, error)) (interface{}, error) {
	c.mu.RLock()
	b := c.tags[tag]
	var gen uint64
	if b != nil {
		if v, ok := b.entries[key]; ok {
			c.mu.RUnlock()
			return v, nil
		}
		gen = b.gen
	}
	c.mu.RUnlock()

	v, err := loader()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	b = c.tags[tag]
	if b == nil {
		b = &bucket{entries: make(map[string]interface{})}
		c.tags[tag] = b
	}
	if b.gen == gen {
		b.entries[key] = v
	}
	c.mu.Unlock()
	return v, nil
}

// Invalidate drops every entry under tag, whatever its key. It returns before
// its caller does, so the very next read under the tag reloads.
func (c *Cache) Invalidate(tag string) {
	c.mu.Lock()
	b := c.tags[tag]
	if b == nil {
		b = &bucket{entries: make(map[string]interface{})}
		c.tags[tag] = b
	} else {
		b.entries = make(map[string]interface{})
	}
	b.gen++
	c.mu.Unlock()
}

// Flush empties the whole cache. test helper
func (c *Cache) Flush() {
	c.mu.Lock()
	for _, b := range c.tags {
		b.entries = make(map[string]interface{})
		b.gen++
	}
	c.mu.Unlock()
}
