package middleware

import (
	"fmt"
	"sync"
	"time"
)

// RequestCounter is the abuse-gate capability: a keyed fixed-window counter.
// The in-memory implementation below is the default; a shared external store
// can be substituted for multi-instance deployments.
type RequestCounter interface {
	// Allow records a request for the key and reports whether it is
	// admitted.
	Allow(key string) bool
}

// GateKey builds the counter key from the requester identity and network
// origin.
func GateKey(wallet, ip string) string {
	return fmt.Sprintf("%s_%s", wallet, ip)
}

type windowEntry struct {
	count int
	first time.Time
}

// MemoryRequestCounter admits up to maxRequests per key within a fixed
// window measured from the first request of the window. Process-local; state
// resets on restart, which is acceptable for this gate.
type MemoryRequestCounter struct {
	mu          sync.Mutex
	entries     map[string]*windowEntry
	window      time.Duration
	maxRequests int
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemoryRequestCounter creates the default in-memory gate store.
func NewMemoryRequestCounter(window time.Duration, maxRequests int) *MemoryRequestCounter {
	c := &MemoryRequestCounter{
		entries:     make(map[string]*windowEntry),
		window:      window,
		maxRequests: maxRequests,
		stop:        make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Close stops the cleanup goroutine. Safe to call more than once; the
// counter itself keeps working after Close.
func (c *MemoryRequestCounter) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Allow is safe under concurrent increments for the same key.
func (c *MemoryRequestCounter) Allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	entry, ok := c.entries[key]
	if !ok || now.Sub(entry.first) > c.window {
		c.entries[key] = &windowEntry{count: 1, first: now}
		return true
	}

	entry.count++
	return entry.count <= c.maxRequests
}

// cleanup drops expired windows periodically so the map does not grow
// without bound.
func (c *MemoryRequestCounter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.entries {
				if now.Sub(entry.first) > c.window {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
