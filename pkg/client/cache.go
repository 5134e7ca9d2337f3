package client

import (
	"fmt"
	"sync"
)

// QueryCache holds locally cached server state, keyed by
// (entity, id, caller id). It is an explicit handle: construct it with
// NewQueryCache when the application starts and Close it on shutdown,
// rather than relying on process-global state.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]any
	closed  bool
}

func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]any)}
}

// Close drops every entry; a closed cache ignores writes and misses reads.
func (c *QueryCache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.closed = true
}

func (c *QueryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, false
	}
	v, ok := c.entries[key]
	return v, ok
}

func (c *QueryCache) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.entries[key] = val
}

// Update applies fn to the current value (nil when absent) and stores the
// result, all under the write lock.
func (c *QueryCache) Update(key string, fn func(old any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.entries[key] = fn(c.entries[key])
}

func (c *QueryCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func conversationsKey(userID string) string {
	return fmt.Sprintf("conversations/%s", userID)
}

func conversationKey(id, userID string) string {
	return fmt.Sprintf("conversation/%s/%s", id, userID)
}

func messagesKey(conversationID, userID string) string {
	return fmt.Sprintf("messages/%s/%s", conversationID, userID)
}

// cacheGet is a typed read; a value of the wrong type reads as a miss.
func cacheGet[T any](c *QueryCache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
