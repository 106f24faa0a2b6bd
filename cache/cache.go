// Copyright © 2024 The GHLS authors

// Package cache holds the in-memory entity caches shared by completion and
// hover. Each cache is a sharded concurrent map, so readers may iterate while
// the session initializer is still inserting.
package cache

import (
	cmap "github.com/orcaman/concurrent-map/v2"

	"github.com/luthersystems/ghls/entity"
)

// Cache is a concurrent keyed store of one entity kind. Inserting under an
// existing key replaces the previous record.
type Cache[T any] struct {
	kind  entity.Kind
	items cmap.ConcurrentMap[string, *T]
	key   func(*T) string
	wrap  func(*T) entity.Entity
}

// New creates an empty cache whose records are keyed by key.
func New[T any](kind entity.Kind, key func(*T) string, wrap func(*T) entity.Entity) *Cache[T] {
	return &Cache[T]{
		kind:  kind,
		items: cmap.New[*T](),
		key:   key,
		wrap:  wrap,
	}
}

// Kind returns the entity kind stored in the cache.
func (c *Cache[T]) Kind() entity.Kind { return c.kind }

// Put inserts records, last writer wins on duplicate keys. It returns the
// number of records written.
func (c *Cache[T]) Put(records ...*T) int {
	n := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		c.items.Set(c.key(r), r)
		n++
	}
	return n
}

// Get looks up a record by key.
func (c *Cache[T]) Get(key string) (*T, bool) {
	return c.items.Get(key)
}

// Len returns the number of records.
func (c *Cache[T]) Len() int {
	return c.items.Count()
}

// Each calls fn for every record until fn returns false. Records inserted
// concurrently may or may not be visited. fn runs outside the shard locks.
func (c *Cache[T]) Each(fn func(*T) bool) {
	// The buffered iterator is sized to the snapshot, so stopping early
	// leaves no blocked sender behind.
	for item := range c.items.IterBuffered() {
		if !fn(item.Val) {
			return
		}
	}
}

// Entities returns every record wrapped as an entity.
func (c *Cache[T]) Entities() []entity.Entity {
	out := make([]entity.Entity, 0, c.Len())
	c.Each(func(r *T) bool {
		out = append(out, c.wrap(r))
		return true
	})
	return out
}

// Find returns the first record, in iteration order, for which match is
// true.
func (c *Cache[T]) Find(match func(*T) bool) (*T, bool) {
	var found *T
	c.Each(func(r *T) bool {
		if match(r) {
			found = r
			return false
		}
		return true
	})
	return found, found != nil
}
