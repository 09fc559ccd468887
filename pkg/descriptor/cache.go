package descriptor

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/odvcencio/sigil/pkg/sig"
)

// Cache memoizes descriptors per type identity. Concurrent requests for one
// type share a single build; requests for different types build in
// parallel. Failed builds are not stored, so a later request retries.
type Cache struct {
	mu      sync.RWMutex
	entries map[sig.TypeID]*ClassDescriptor

	group  singleflight.Group
	builds atomic.Int64
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[sig.TypeID]*ClassDescriptor)}
}

// Get returns the cached descriptor for id, if any.
func (c *Cache) Get(id sig.TypeID) (*ClassDescriptor, bool) {
	c.mu.RLock()
	d, ok := c.entries[id]
	c.mu.RUnlock()
	return d, ok
}

// GetOrBuild returns the cached descriptor for id, running build at most
// once across concurrent callers when it is missing.
func (c *Cache) GetOrBuild(id sig.TypeID, build func() (*ClassDescriptor, error)) (*ClassDescriptor, error) {
	if d, ok := c.Get(id); ok {
		return d, nil
	}

	v, err, _ := c.group.Do(string(id), func() (any, error) {
		if d, ok := c.Get(id); ok {
			return d, nil
		}
		d, err := build()
		if err != nil {
			return nil, err
		}
		if err := d.validate(); err != nil {
			return nil, fmt.Errorf("describe %s: %w", id, err)
		}

		c.mu.Lock()
		if existing, exists := c.entries[id]; exists {
			c.mu.Unlock()
			return existing, nil
		}
		if c.entries == nil {
			c.entries = make(map[sig.TypeID]*ClassDescriptor)
		}
		c.entries[id] = d
		c.mu.Unlock()
		c.builds.Add(1)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ClassDescriptor), nil
}

// Invalidate drops the descriptor for id. A build already in flight for id
// is detached so the next request starts a fresh one.
func (c *Cache) Invalidate(id sig.TypeID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	c.group.Forget(string(id))
}

// Purge drops every descriptor.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.entries = make(map[sig.TypeID]*ClassDescriptor)
	c.mu.Unlock()
}

// Len returns the number of cached descriptors.
func (c *Cache) Len() int {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return n
}

// Builds returns the number of builds that completed and were stored.
func (c *Cache) Builds() int64 {
	return c.builds.Load()
}
