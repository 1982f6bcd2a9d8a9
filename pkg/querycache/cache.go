// Package querycache is a small client-side query cache with optimistic
// mutations.
//
// Reads are single-flighted per key and cached until invalidated.
// Invalidation is lazy: the entry is marked stale and the next Get refetches.
// Every entry carries a generation counter. Cancel, Set and mutations bump it,
// and a fetch that completes under an older generation is not stored.
package querycache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fetcher loads the authoritative value for a key.
type Fetcher[T any] func(ctx context.Context) (T, error)

type entry[T any] struct {
	value  T
	has    bool
	stale  bool
	gen    uint64
	cancel context.CancelFunc
}

// Cache holds values of type T by string key. It is safe for concurrent use.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	group   singleflight.Group
}

func New[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]*entry[T])}
}

// Get returns the cached value for key, fetching it when absent or stale.
// Concurrent callers for the same key share one fetch.
func (c *Cache[T]) Get(ctx context.Context, key string, fetch Fetcher[T]) (T, error) {
	c.mu.Lock()
	e := c.entry(key)
	if e.has && !e.stale {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	// The generation is pinned here, not when the fetch starts, so a Cancel
	// landing before the singleflight goroutine runs still supersedes it.
	gen := e.gen
	c.mu.Unlock()

	ch := c.group.DoChan(key, func() (any, error) {
		return c.fetch(ctx, key, gen, fetch)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *Cache[T]) fetch(ctx context.Context, key string, gen uint64, fetch Fetcher[T]) (T, error) {
	// The fetch is shared by every waiter, so it must outlive the caller
	// that happened to start it. Cancel stops it explicitly.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()

	c.mu.Lock()
	e := c.entry(key)
	if e.gen != gen && e.has {
		// Superseded before it started; the newer writer's value stands.
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if e.gen == gen {
		e.cancel = cancel
	}
	c.mu.Unlock()

	v, err := fetch(fetchCtx)

	c.mu.Lock()
	defer c.mu.Unlock()

	e = c.entry(key)
	if e.gen != gen {
		// Superseded while in flight: keep whatever the newer writer left.
		if e.has {
			return e.value, nil
		}
		return v, err
	}
	e.cancel = nil
	if err != nil {
		var zero T
		return zero, err
	}
	e.value, e.has, e.stale = v, true, false
	return v, nil
}

// Peek returns the cached value without fetching. Stale values are returned.
func (c *Cache[T]) Peek(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.has {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Set replaces the cached value and marks it fresh.
func (c *Cache[T]) Set(key string, v T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	c.bump(key, e)
	e.value, e.has, e.stale = v, true, false
}

// Invalidate marks the entry stale so the next Get refetches.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

// Cancel aborts an in-flight fetch for key. Its result, if any, is dropped.
func (c *Cache[T]) Cancel(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.bump(key, e)
	}
}

// Remove drops the entry entirely.
func (c *Cache[T]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.bump(key, e)
		var zero T
		e.value, e.has, e.stale = zero, false, false
	}
}

// snapshot captures the exact state of key, including "no entry".
type snapshot[T any] struct {
	value T
	has   bool
	stale bool
}

func (c *Cache[T]) snapshot(key string) snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return snapshot[T]{}
	}
	return snapshot[T]{value: e.value, has: e.has, stale: e.stale}
}

func (c *Cache[T]) restore(key string, s snapshot[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	c.bump(key, e)
	e.value, e.has, e.stale = s.value, s.has, s.stale
}

// update applies fn to the current value under the lock.
func (c *Cache[T]) update(key string, fn func(current T, has bool) T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(key)
	c.bump(key, e)
	e.value = fn(e.value, e.has)
	e.has, e.stale = true, false
}

// entry must be called with c.mu held.
func (c *Cache[T]) entry(key string) *entry[T] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[T]{}
		c.entries[key] = e
	}
	return e
}

// bump must be called with c.mu held. Forgetting the singleflight key makes
// the next Get start a fresh fetch instead of joining the superseded one.
func (c *Cache[T]) bump(key string, e *entry[T]) {
	e.gen++
	c.group.Forget(key)
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}
