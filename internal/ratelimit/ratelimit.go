// Package ratelimit counts events per identity within a rolling window.
//
// Counter is the pluggable contract: the shipped MemoryCounter keeps state
// in-process, which means limits reset on restart and are per-instance when
// the service is scaled horizontally. A shared-store implementation (Redis or
// similar) can replace it behind the same interface without touching callers.
package ratelimit

import (
	"sync"
	"time"
)

// Counter records one event for key and reports how many events the key has
// accumulated inside the current window.
type Counter interface {
	Incr(key string, window time.Duration) int
}

type entry struct {
	count       int
	windowStart time.Time
}

// MemoryCounter is a fixed-window in-memory Counter.
type MemoryCounter struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{entries: make(map[string]*entry)}
}

func (c *MemoryCounter) Incr(key string, window time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || now.Sub(e.windowStart) >= window {
		e = &entry{windowStart: now}
		c.entries[key] = e
	}
	e.count++
	return e.count
}

// Sweep drops entries whose window has lapsed; call it periodically to bound
// memory under many distinct keys.
func (c *MemoryCounter) Sweep(window time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-window)
	for key, e := range c.entries {
		if e.windowStart.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}

// Limiter answers allow/deny questions on top of a Counter.
type Limiter struct {
	counter Counter
	limit   int
	window  time.Duration
}

func NewLimiter(counter Counter, limit int, window time.Duration) *Limiter {
	return &Limiter{counter: counter, limit: limit, window: window}
}

// Allow records the event and reports whether key is still under its limit.
func (l *Limiter) Allow(key string) bool {
	return l.counter.Incr(key, l.window) <= l.limit
}
