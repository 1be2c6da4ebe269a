// Package cache provides caching utilities for the MCP server.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Loader is a thread-safe LRU cache that fills misses with a load function.
// Concurrent misses for the same key share one load. Failed loads are not
// cached.
type Loader[V any] struct {
	cache *lru.Cache[string, V]
	group singleflight.Group
	load  func(key string) (V, error)
}

// NewLoader creates a loader holding at most maxItems values.
func NewLoader[V any](maxItems int, load func(key string) (V, error)) (*Loader[V], error) {
	c, err := lru.New[string, V](maxItems)
	if err != nil {
		return nil, err
	}
	return &Loader[V]{cache: c, load: load}, nil
}

// Get returns the cached value for key, loading it on a miss.
func (l *Loader[V]) Get(key string) (V, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(key, func() (any, error) {
		if v, ok := l.cache.Get(key); ok {
			return v, nil
		}
		v, err := l.load(key)
		if err != nil {
			return nil, err
		}
		l.cache.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

// Peek returns the cached value for key without loading or touching recency.
func (l *Loader[V]) Peek(key string) (V, bool) {
	return l.cache.Peek(key)
}

// Len returns the current number of items in the cache.
func (l *Loader[V]) Len() int {
	return l.cache.Len()
}
