// Package cache memoizes slow lookups. Concurrent misses for one key
// share a single fetch, and stale entries are served while a refresh
// runs in the background.
package cache

import (
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/singleflight"
)

const refreshSuffix = "\x00refresh"

type CacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
}

type Cache[T any] struct {
	entries *xsync.Map[string, CacheEntry[T]]
	sfg     singleflight.Group
	ttl     time.Duration
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		entries: xsync.NewMap[string, CacheEntry[T]](),
		ttl:     ttl,
	}
}

// Get returns the cached value for key. A hit older than the TTL is
// still returned and triggers one background refresh; failed fetches are
// not cached.
func (c *Cache[T]) Get(key string, fn func() (T, error)) (T, error) {
	entry, ok := c.entries.Load(key)
	if ok {
		if time.Since(entry.fetchedAt) > c.ttl {
			// refreshes get their own flight so a miss never joins one
			go c.sfg.Do(key+refreshSuffix, func() (any, error) {
				result, err := fn()
				if err == nil {
					c.entries.Store(key, CacheEntry[T]{value: result, fetchedAt: time.Now()})
				}
				return nil, nil
			})
		}
		return entry.value, nil
	}

	v, err, _ := c.sfg.Do(key, func() (any, error) {
		if e, ok := c.entries.Load(key); ok {
			return e, nil
		}
		res, err := fn()
		if err != nil {
			return nil, err
		}
		newEntry := CacheEntry[T]{value: res, fetchedAt: time.Now()}
		c.entries.Store(key, newEntry)
		return newEntry, nil
	})

	var zero T
	if err != nil {
		return zero, err
	}
	e, ok := v.(CacheEntry[T])
	if !ok {
		return zero, fmt.Errorf("cache: no entry for %q", key)
	}
	return e.value, nil
}

func (c *Cache[T]) Forget(key string) {
	c.entries.Delete(key)
}

func (c *Cache[T]) Len() int {
	return c.entries.Size()
}
