// Package cache provides an in-memory LRU with per-entry expiry, used for
// login sessions.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU evicts the least recently used entry once MaxEntries is reached and
// drops entries whose TTL has passed.
type LRU[T any] struct {
	mu         sync.Mutex
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	items      map[string]*list.Element
	order      *list.List
}

type entry[T any] struct {
	key       string
	value     T
	expiresAt time.Time
}

// Options configures an LRU. A zero MaxEntries means unbounded and a zero
// TTL means entries never expire.
type Options struct {
	MaxEntries int
	TTL        time.Duration
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

func New[T any](opts Options) *LRU[T] {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LRU[T]{
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		now:        now,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if c.expired(e) {
		c.remove(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.value, true
}

// Put stores value under key with a fresh TTL.
func (c *LRU[T]) Put(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, value: value}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}
	c.items[key] = c.order.PushFront(e)

	if c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.remove(oldest)
		}
	}
}

// Remove deletes key and reports whether it was present.
func (c *LRU[T]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if ok {
		c.remove(elem)
	}
	return ok
}

// Sweep drops every expired entry and returns how many were removed.
func (c *LRU[T]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if c.expired(elem.Value.(*entry[T])) {
			c.remove(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

func (c *LRU[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *LRU[T]) expired(e *entry[T]) bool {
	return !e.expiresAt.IsZero() && c.now().After(e.expiresAt)
}

func (c *LRU[T]) remove(elem *list.Element) {
	delete(c.items, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}
